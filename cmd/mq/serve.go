package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mistql-lang/mistql-go/internal/config"
	"github.com/mistql-lang/mistql-go/internal/logging"
	"github.com/mistql-lang/mistql-go/internal/server"
	"github.com/mistql-lang/mistql-go/pkg/mistql"
)

var serveVerbose bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MistQL query service",
	Long:  "Start an HTTP server exposing /query and /stream endpoints for evaluating MistQL queries over the network.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	var logger *zap.SugaredLogger
	var err error
	if serveVerbose {
		logger, err = logging.NewDevelopment()
	} else {
		logger, err = logging.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logging.Set(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var cache *server.QueryCache
	if cfg.Cache.RedisURL != "" {
		cache, err = server.NewQueryCache(cfg.Cache.RedisURL, time.Duration(cfg.Cache.TTLSecs)*time.Second)
		if err != nil {
			return fmt.Errorf("connecting to query cache: %w", err)
		}
	}

	audit, err := server.OpenAuditLog(cfg.Audit.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}

	srv := server.New(cfg, mistql.New(nil), cache, audit)
	return server.Run(srv, 30*time.Second)
}
