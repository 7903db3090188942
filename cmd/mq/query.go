package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mistql-lang/mistql-go/pkg/mistql"
)

func runQuery(cmd *cobra.Command, args []string) error {
	query := args[0]

	var raw []byte
	var err error
	if len(args) == 2 {
		raw, err = os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[1], err)
		}
	} else {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	var data interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parsing input JSON: %w", err)
		}
	}

	result, err := mistql.Query(query, data)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", opts.indent)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
