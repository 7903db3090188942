package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/viper"
)

// cliOptions holds the handful of output knobs the CLI lets an operator
// override via MISTQL_-prefixed environment variables, read once at
// startup with viper the way the query server reads its own MQ_ settings.
type cliOptions struct {
	indent  string
	noColor bool
}

func loadCLIOptions() cliOptions {
	v := viper.New()
	v.SetEnvPrefix("MISTQL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("indent_width", 2)
	v.SetDefault("no_color", false)

	width := v.GetInt("indent_width")
	if width < 0 {
		width = 0
	}

	return cliOptions{
		indent:  strings.Repeat(" ", width),
		noColor: v.GetBool("no_color"),
	}
}

// applyCLIOptions installs opts process-wide: MISTQL_NO_COLOR forces off
// fatih/color's TTY-detected coloring regardless of terminal.
func applyCLIOptions(opts cliOptions) {
	if opts.noColor {
		color.NoColor = true
	}
}
