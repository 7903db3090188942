package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mistql-lang/mistql-go/internal/compiler/builtins"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the MistQL standard library",
	Long:  "Print every built-in function's signature and description, grouped by namespace.",
	RunE:  runBuiltins,
}

func runBuiltins(cmd *cobra.Command, args []string) error {
	for _, ns := range builtins.Namespaces() {
		fmt.Println(color.New(color.Bold).Sprint(ns))
		for _, def := range builtins.Catalogue[ns] {
			fmt.Printf("  %-55s %s\n", def.Signature, def.Description)
		}
	}
	return nil
}
