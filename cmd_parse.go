package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rockbears/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/checkmate-ci/covcheck/internal/gha"
	covlog "github.com/checkmate-ci/covcheck/internal/log"
	"github.com/checkmate-ci/covcheck/internal/notify"
	"github.com/checkmate-ci/covcheck/internal/report"
	"github.com/checkmate-ci/covcheck/sdk"
)

func cmdParse() *cobra.Command {
	c := &cobra.Command{
		Use:   "parse",
		Short: "Parse existing coverage reports and enforce the threshold",
		Long: `
covcheck parse reads coverage reports already produced by another tool,
merges them and checks the result against --minimum.

It displays the number of covered lines, the total number of lines and the
coverage percentage.

Examples:
	$ ls
	lcov.info	coverage.xml
	$ covcheck parse --format lcov lcov.info
	120 150 80.00
	$ covcheck parse --format cobertura --minimum 90 coverage.xml
`,
		Run: parseCmd(),
	}

	flags := c.Flags()

	flags.String("format", "cobertura", "Report format: lcov, cobertura, clover, coverprofile")
	viper.BindPFlag("parse_format", flags.Lookup("format"))

	flags.Float64("minimum", -1, "Minimum coverage percentage required (-1 means no minimum)")
	viper.BindPFlag("parse_minimum", flags.Lookup("minimum"))

	flags.String("report-url", "", "Optional HTTP endpoint receiving the parsed report as JSON")
	viper.BindPFlag("parse_report_url", flags.Lookup("report-url"))

	return c
}

func parseCmd() func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx := context.WithValue(context.Background(), covlog.Command, "parse")

		format, err := report.ParseFormat(viper.GetString("parse_format"))
		if err != nil {
			sdk.ExitCode(sdk.ExitUsage, "%v\n", err)
		}

		minimum := viper.GetFloat64("parse_minimum")
		if minimum != -1 && (minimum < 0 || minimum > 100) {
			sdk.ExitCode(sdk.ExitUsage, "minimum must be between 0 and 100 (or -1 to disable), got %.2f\n", minimum)
		}

		var paths []string
		for _, arg := range args {
			matches, err := filepath.Glob(arg)
			if err != nil {
				log.Warn(ctx, "invalid pattern %q: %v", arg, err)
				continue
			}
			paths = append(paths, matches...)
		}
		if len(paths) == 0 {
			sdk.ExitCode(sdk.ExitToolFailure, "no report file matched %v\n", args)
		}

		sum, err := report.ParseFiles(paths, format)
		if err != nil {
			sdk.ExitCode(sdk.ExitToolFailure, "%v\n", err)
		}

		fmt.Println(sum.CoveredLines, sum.TotalLines, fmt.Sprintf("%.2f", sum.Percentage()))

		pub := gha.NewPublisher()
		outputs := gha.Outputs{
			Percentage: sum.Percentage(),
			TestsFound: sum.Files,
			Artifact:   paths[0],
			Summary:    sum,
		}
		if pub.Enabled() {
			pub.PublishOutputs(ctx, outputs)
			pub.PublishSummary(ctx, outputs, minimum, sum.Meets(minimum))
		}

		if url := viper.GetString("parse_report_url"); url != "" {
			n := &notify.Notifier{URL: url}
			if err := n.Send(ctx, sum); err != nil {
				log.Warn(ctx, "cannot notify report endpoint: %v", err)
			}
		}

		if !sum.Meets(minimum) {
			pub.AnnotateFailure("coverage %.2f%% is below the required %.2f%%", sum.Percentage(), minimum)
			sdk.ExitCode(sdk.ExitGateFailure, "coverage %.2f%% is below the required %.2f%%\n", sum.Percentage(), minimum)
		}
	}
}
