package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/checkmate-ci/covcheck/internal/checker"
	"github.com/checkmate-ci/covcheck/internal/discover"
	covlog "github.com/checkmate-ci/covcheck/internal/log"
	"github.com/checkmate-ci/covcheck/internal/runner"
	"github.com/checkmate-ci/covcheck/sdk"
)

func cmdCheck() *cobra.Command {
	c := &cobra.Command{
		Use:   "check",
		Short: "Run tests under the coverage tool and enforce the threshold",
		Long: `
covcheck check discovers test files, runs them through the delegated
coverage tool, renders the requested report artifact and fails when line
coverage is below --minimum-coverage.

Exit codes: 0 coverage gate passed, 1 gate failed, 2 invalid usage,
3 the coverage tool could not be run.
`,
		Run: checkCmd(),
	}

	flags := c.Flags()

	flags.Float64("minimum-coverage", 80, "Minimum coverage percentage required, 0-100 (-1 means no minimum)")
	viper.BindPFlag("minimum_coverage", flags.Lookup("minimum-coverage"))

	flags.String("test-paths", "tests/,test/,**/test_*.py,**/tests.py", "Comma-separated list of test directories, files or glob patterns")
	viper.BindPFlag("test_paths", flags.Lookup("test-paths"))

	flags.String("source-paths", ".", "Comma-separated list of source directories to measure")
	viper.BindPFlag("source_paths", flags.Lookup("source-paths"))

	flags.String("exclude-paths", "tests/,test/,**/test_*.py,**/tests.py,setup.py,conftest.py", "Comma-separated list of paths excluded from measurement")
	viper.BindPFlag("exclude_paths", flags.Lookup("exclude-paths"))

	flags.String("fail-on-low-coverage", "true", "Whether to fail when coverage is below the minimum")
	viper.BindPFlag("fail_on_low_coverage", flags.Lookup("fail-on-low-coverage"))

	flags.String("report-format", "term", "Coverage report artifact format: term, html, xml, json")
	viper.BindPFlag("report_format", flags.Lookup("report-format"))

	flags.String("coverage-binary", "coverage", "Name or path of the delegated coverage tool")
	viper.BindPFlag("coverage_binary", flags.Lookup("coverage-binary"))

	flags.String("working-directory", "", "Workspace root (default: current directory)")
	viper.BindPFlag("working_directory", flags.Lookup("working-directory"))

	flags.String("report-url", "", "Optional HTTP endpoint receiving the parsed report as JSON")
	viper.BindPFlag("report_url", flags.Lookup("report-url"))

	return c
}

func checkCmd() func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx := context.WithValue(context.Background(), covlog.Command, "check")

		workdir := viper.GetString("working_directory")
		if workdir == "" {
			var err error
			workdir, err = os.Getwd()
			if err != nil {
				sdk.Exit("cannot get current directory: %v\n", err)
			}
		}

		format, err := runner.ParseArtifactFormat(viper.GetString("report_format"))
		if err != nil {
			sdk.ExitCode(sdk.ExitUsage, "%v\n", err)
		}

		cfg := checker.Config{
			MinimumCoverage:   viper.GetFloat64("minimum_coverage"),
			TestPaths:         discover.SplitList(viper.GetString("test_paths")),
			SourcePaths:       discover.SplitList(viper.GetString("source_paths")),
			ExcludePaths:      discover.SplitList(viper.GetString("exclude_paths")),
			FailOnLowCoverage: strings.EqualFold(viper.GetString("fail_on_low_coverage"), "true"),
			ReportFormat:      format,
			CoverageBinary:    viper.GetString("coverage_binary"),
			WorkingDirectory:  workdir,
			ReportURL:         viper.GetString("report_url"),
		}
		if err := cfg.Check(); err != nil {
			sdk.ExitCode(sdk.ExitUsage, "%v\n", err)
		}

		res, err := checker.New(cfg, afero.NewOsFs(), os.Stdout, nil).Run(ctx)
		if err != nil {
			sdk.ExitCode(sdk.ExitToolFailure, "%v\n", err)
		}
		if code := res.ExitCode(); code != 0 {
			sdk.ExitCode(code, "%s\n", res.Reason)
		}

		fmt.Printf("coverage %.2f%% (%d/%d lines), %d test files\n",
			res.Percentage, res.Summary.CoveredLines, res.Summary.TotalLines, res.TestsFound)
	}
}
