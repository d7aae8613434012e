// Package checker orchestrates the coverage gate: discover test files, run
// the delegated tool, parse the report, enforce the threshold and publish
// the outcome.
package checker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsamin/go-dump"
	"github.com/pkg/errors"
	"github.com/rockbears/log"
	"github.com/spf13/afero"

	"github.com/checkmate-ci/covcheck/internal/discover"
	"github.com/checkmate-ci/covcheck/internal/gha"
	"github.com/checkmate-ci/covcheck/internal/notify"
	"github.com/checkmate-ci/covcheck/internal/report"
	"github.com/checkmate-ci/covcheck/internal/runner"
)

// Status of a finished check.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFail    Status = "Fail"
)

// Result of a coverage gate run.
type Result struct {
	Status     Status         `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Percentage float64        `json:"percentage"`
	TestsFound int            `json:"tests_found"`
	Artifact   string         `json:"artifact"`
	Summary    report.Summary `json:"summary"`
}

// Config carries every input of the check command.
type Config struct {
	MinimumCoverage   float64
	TestPaths         []string
	SourcePaths       []string
	ExcludePaths      []string
	FailOnLowCoverage bool
	ReportFormat      runner.ArtifactFormat
	CoverageBinary    string
	WorkingDirectory  string
	ReportURL         string
}

// Check validates the configuration. A minimum of -1 disables the gate.
func (c Config) Check() error {
	if c.MinimumCoverage != -1 && (c.MinimumCoverage < 0 || c.MinimumCoverage > 100) {
		return errors.Errorf("minimum coverage must be between 0 and 100 (or -1 to disable), got %.2f", c.MinimumCoverage)
	}
	if _, err := runner.ParseArtifactFormat(string(c.ReportFormat)); err != nil {
		return err
	}
	return nil
}

// Checker runs the pipeline.
type Checker struct {
	cfg       Config
	fs        afero.Fs
	out       io.Writer
	publisher *gha.Publisher
	notifier  *notify.Notifier
}

// New builds a checker over the given filesystem and output writer.
func New(cfg Config, fs afero.Fs, out io.Writer, pub *gha.Publisher) *Checker {
	if out == nil {
		out = os.Stdout
	}
	if pub == nil {
		pub = gha.NewPublisher()
	}
	return &Checker{
		cfg:       cfg,
		fs:        fs,
		out:       out,
		publisher: pub,
		notifier:  &notify.Notifier{URL: cfg.ReportURL},
	}
}

// Run executes the gate. The returned error is reserved for fatal failures
// of the delegated tool; a below-threshold result is carried by the Result
// status instead.
func (c *Checker) Run(ctx context.Context) (Result, error) {
	log.Info(ctx, "starting coverage check (minimum %.2f%%)", c.cfg.MinimumCoverage)

	files := discover.TestFiles(ctx, c.fs, c.cfg.WorkingDirectory, c.cfg.TestPaths)
	log.Info(ctx, "found %d test files", len(files))
	for _, f := range files {
		fmt.Fprintf(c.out, "  %s\n", f)
	}

	if len(files) == 0 {
		return c.noTests(ctx), nil
	}

	run := &runner.Runner{
		Fs:               c.fs,
		Binary:           c.cfg.CoverageBinary,
		WorkingDirectory: c.cfg.WorkingDirectory,
		SourcePaths:      c.cfg.SourcePaths,
		ExcludePaths:     c.cfg.ExcludePaths,
		Out:              c.out,
	}

	if err := run.Run(ctx, files); err != nil {
		return Result{Status: StatusFail, Reason: err.Error(), TestsFound: len(files)}, err
	}

	cob, err := run.Cobertura(ctx)
	if err != nil {
		return Result{Status: StatusFail, Reason: err.Error(), TestsFound: len(files)}, err
	}

	sum, err := report.Parse(filepath.Join(c.cfg.WorkingDirectory, cob), report.Cobertura)
	if err != nil {
		return Result{Status: StatusFail, Reason: err.Error(), TestsFound: len(files)}, err
	}

	// The artifact format never changes the measured number, which always
	// comes from the cobertura report above.
	artifact, err := run.Render(ctx, c.cfg.ReportFormat)
	if err != nil {
		log.Warn(ctx, "cannot render %s report: %v", c.cfg.ReportFormat, err)
		artifact = runner.DefaultArtifact(c.cfg.ReportFormat)
	}

	if table, err := run.Report(ctx); err == nil && table != "" {
		fmt.Fprintln(c.out, table)
	}

	res := Result{
		Percentage: sum.Percentage(),
		TestsFound: len(files),
		Artifact:   artifact,
		Summary:    sum,
	}

	passed := sum.Meets(c.cfg.MinimumCoverage)
	switch {
	case passed:
		res.Status = StatusSuccess
		log.Info(ctx, "coverage %.2f%% meets the required %.2f%%", res.Percentage, c.cfg.MinimumCoverage)
	case !c.cfg.FailOnLowCoverage:
		res.Status = StatusSuccess
		res.Reason = fmt.Sprintf("coverage %.2f%% is below the required %.2f%% (not failing, fail-on-low-coverage is disabled)", res.Percentage, c.cfg.MinimumCoverage)
		log.Warn(ctx, "%s", res.Reason)
	default:
		res.Status = StatusFail
		res.Reason = fmt.Sprintf("coverage %.2f%% is below the required %.2f%%", res.Percentage, c.cfg.MinimumCoverage)
		log.Error(ctx, "%s", res.Reason)
	}

	c.publish(ctx, res, passed)

	if s, errD := dump.Sdump(res); errD == nil {
		log.Debug(ctx, "check result: %s", s)
	}
	return res, nil
}

// noTests handles the empty-discovery edge: outputs are still published and
// the gate fails unless fail-on-low-coverage is disabled.
func (c *Checker) noTests(ctx context.Context) Result {
	res := Result{
		Status:   StatusFail,
		Reason:   "no test files found",
		Artifact: runner.DefaultArtifact(c.cfg.ReportFormat),
	}
	if !c.cfg.FailOnLowCoverage {
		res.Status = StatusSuccess
	}
	log.Warn(ctx, "no test files found")
	c.publish(ctx, res, false)
	return res
}

func (c *Checker) publish(ctx context.Context, res Result, passed bool) {
	out := gha.Outputs{
		Percentage: res.Percentage,
		TestsFound: res.TestsFound,
		Artifact:   res.Artifact,
		Summary:    res.Summary,
	}
	c.publisher.PublishOutputs(ctx, out)
	c.publisher.PublishSummary(ctx, out, c.cfg.MinimumCoverage, passed)
	if !passed {
		c.publisher.AnnotateFailure("%s", res.Reason)
	}

	if err := c.notifier.Send(ctx, res.Summary); err != nil {
		log.Warn(ctx, "cannot notify report endpoint: %v", err)
	}
}

// ExitCode maps a result to the process exit code of the check command.
func (r Result) ExitCode() int {
	if r.Status == StatusFail {
		return 1
	}
	return 0
}
