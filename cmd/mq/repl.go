package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/mistql-lang/mistql-go/pkg/mistql"
)

var replDataFile string

var replCmd = &cobra.Command{
	Use:   "repl [file]",
	Short: "Start an interactive MistQL session",
	Long: `Start an interactive prompt that evaluates each query you enter against
the same JSON document, printing the result after every line. Enter an
empty line or Ctrl-D to exit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRepl,
}

func init() {
	replCmd.Flags().StringVarP(&replDataFile, "data", "d", "", "JSON file to query (defaults to the positional argument, or {} if neither is given)")
}

func runRepl(cmd *cobra.Command, args []string) error {
	dataFile := replDataFile
	if dataFile == "" && len(args) == 1 {
		dataFile = args[0]
	}

	var raw []byte
	var err error
	if dataFile != "" {
		raw, err = os.ReadFile(dataFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", dataFile, err)
		}
	} else {
		raw = []byte("{}")
	}

	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parsing input JSON: %w", err)
	}

	fmt.Println("mq repl: enter a query, empty line or Ctrl-D to exit")
	for {
		var query string
		prompt := &survey.Input{Message: "mq>"}
		if err := survey.AskOne(prompt, &query); err != nil {
			// Ctrl-D or Ctrl-C both surface here as an error from the
			// underlying terminal reader; either one ends the session.
			return nil
		}
		if query == "" {
			return nil
		}

		result, err := mistql.Query(query, data)
		if err != nil {
			printQueryError(err)
			continue
		}
		out, err := json.MarshalIndent(result, "", opts.indent)
		if err != nil {
			printQueryError(err)
			continue
		}
		fmt.Println(string(out))
	}
}
