package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mistql-lang/mistql-go/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	streamWriteTimeout = 10 * time.Second
	streamPongWait     = 60 * time.Second
	streamPingPeriod   = (streamPongWait * 9) / 10
)

// handleStream upgrades to a WebSocket and evaluates one query per incoming
// text frame against the same instance used by handleQuery, streaming each
// result back as its own frame. The connection stays open until the client
// disconnects or sends malformed JSON.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Get().Debugw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	clientID := ClientID(r.Context())
	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(streamPongWait))
		return nil
	})

	done := make(chan struct{})
	go s.streamPinger(conn, done)
	defer close(done)

	for {
		var req queryRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		started := time.Now()
		result, err := s.instance.Query(req.Query, req.Data)

		if s.audit != nil {
			rec := AuditRecord{ClientID: clientID, Query: req.Query, Succeeded: err == nil, Duration: time.Since(started), EvaluatedAt: started}
			if err != nil {
				rec.Error = err.Error()
			}
			if auditErr := s.audit.Record(r.Context(), rec); auditErr != nil {
				logging.Get().Debugw("failed to record streamed query audit entry", "error", auditErr)
			}
		}

		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err != nil {
			_ = conn.WriteJSON(errorResponse{Error: err.Error()})
			continue
		}
		if werr := conn.WriteJSON(queryResponse{Result: result}); werr != nil {
			return
		}
	}
}

func (s *Server) streamPinger(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
