package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	mqerrors "github.com/mistql-lang/mistql-go/internal/compiler/errors"
)

var (
	// Version information - set at build time via -ldflags.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// opts holds the MISTQL_-prefixed environment overrides loaded once at
// startup (output indent width, NO_COLOR).
var opts = loadCLIOptions()

func main() {
	applyCLIOptions(opts)

	rootCmd := &cobra.Command{
		Use:   "mq <query> [file]",
		Short: "Query JSON-like data with MistQL",
		Long: `mq evaluates a MistQL query against a JSON document.
Reads the document from the given file, or from stdin if no file is given,
and prints the result as indented JSON.`,
		Args: cobra.RangeArgs(1, 2),
		// Arguments and flags are validated before this hook runs, so usage
		// is printed for those errors and not for failures inside RunE.
		PersistentPreRun: func(cmd *cobra.Command, args []string) { cmd.SilenceUsage = true },
		RunE:             runQuery,
	}
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(builtinsCmd)

	if err := rootCmd.Execute(); err != nil {
		printQueryError(err)
		os.Exit(1)
	}
}

// printQueryError renders err to stderr, using the caret-diagram formatter
// for a positioned *errors.QueryError and falling back to its plain message
// for anything else (a cobra usage error, an I/O failure).
func printQueryError(err error) {
	if qe, ok := err.(*mqerrors.QueryError); ok {
		fmt.Fprintln(os.Stderr, color.RedString(qe.Diagram()))
		return
	}
	fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
}
