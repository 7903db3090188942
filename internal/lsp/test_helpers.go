package lsp

// This file contains test helpers for LSP server testing.
// Note: Due to unexported methods in the jsonrpc2.Request interface,
// unit testing the JSON-RPC handler wiring directly is challenging, so
// server_test.go and handlers_test.go instead exercise the pieces a request
// handler calls into (documentStore, diagnose, identAt) directly.
//
// Integration testing should be performed using a real LSP client.
