// Package cli provides the command-line interface for healrunner.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to healrunner.yaml",
		EnvVars: []string{"HEALRUNNER_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "driver",
		Aliases: []string{"d"},
		Usage:   "Driver to use (chrome, mock)",
		Value:   "chrome",
		EnvVars: []string{"HEALRUNNER_DRIVER"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"HEALRUNNER_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "healrunner",
		Usage:   "Self-healing web test runner",
		Version: Version,
		Description: `Healrunner executes YAML test cases against a live page, resolving
elements through ranked selector candidates with automatic fallback
when the primary selector breaks.

Examples:
  healrunner run cases/
  healrunner run login.yaml --elements elements.yaml
  healrunner run cases/ --repeats 3 --driver mock
  healrunner validate cases/`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			runCommand,
			validateCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
