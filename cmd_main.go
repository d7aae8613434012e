package main

import (
	"context"

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	covlog "github.com/checkmate-ci/covcheck/internal/log"
	"github.com/checkmate-ci/covcheck/sdk"
)

func cmdMain() *cobra.Command {
	var mainCmd = &cobra.Command{
		Use:   "covcheck",
		Short: "covcheck - test coverage gate for CI",
		Long: `
covcheck discovers test files, runs them under a coverage-measurement tool,
parses the resulting report and fails the build when coverage falls below a
configurable threshold.

Every flag can also be set through a COVCHECK_* environment variable, e.g.
COVCHECK_MINIMUM_COVERAGE=90.
`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			covlog.Initialize(context.Background(), &covlog.Conf{
				Level:  viper.GetString("log_level"),
				Format: viper.GetString("log_format"),
			})

			if viper.GetString("log_level") == "debug" {
				if err := agent.Listen(agent.Options{}); err != nil {
					sdk.Exit("Error on starting gops agent: %v\n", err)
				}
			}
		},
	}

	pflags := mainCmd.PersistentFlags()

	pflags.String("log-level", "info", "Log Level: debug, info, warning, error")
	viper.BindPFlag("log_level", pflags.Lookup("log-level"))

	pflags.String("log-format", "text", "Log Format: text, json, discard")
	viper.BindPFlag("log_format", pflags.Lookup("log-format"))

	viper.SetEnvPrefix("covcheck")
	viper.AutomaticEnv()

	return mainCmd
}
