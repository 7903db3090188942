package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mistql-lang/mistql-go/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the MistQL Language Server Protocol server",
	Long: `Start the MistQL Language Server Protocol (LSP) server.

The server provides editor integration for .mql query files:
  • Diagnostics on lex/parse errors
  • Completion over standard library built-ins
  • Hover documentation for a built-in under the cursor

It communicates via JSON-RPC over stdin/stdout and is normally started
automatically by an editor, not run by hand.`,
	RunE: runLSP,
}

func runLSP(cmd *cobra.Command, args []string) error {
	server := lsp.NewServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return server.Run(ctx)
}
