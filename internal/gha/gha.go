// Package gha publishes results to the GitHub Actions runtime: step outputs,
// the job summary and failure annotations. Outside a GitHub runner every
// publication is a no-op.
package gha

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rockbears/log"
	"github.com/sethvargo/go-githubactions"

	"github.com/checkmate-ci/covcheck/internal/report"
)

// Outputs is everything covcheck exposes to the calling workflow.
type Outputs struct {
	Percentage float64
	TestsFound int
	Artifact   string
	Summary    report.Summary
}

// Publisher writes to the GitHub Actions control files.
type Publisher struct {
	action *githubactions.Action
	getenv func(string) string
}

// NewPublisher builds a publisher against the real GitHub environment.
func NewPublisher() *Publisher {
	return &Publisher{action: githubactions.New(), getenv: os.Getenv}
}

// NewPublisherFrom builds a publisher with an injected environment, for tests.
func NewPublisherFrom(getenv func(string) string, opts ...githubactions.Option) *Publisher {
	opts = append(opts, githubactions.WithGetenv(getenv))
	return &Publisher{action: githubactions.New(opts...), getenv: getenv}
}

// Enabled tells whether a GitHub output file is available.
func (p *Publisher) Enabled() bool {
	return p.getenv("GITHUB_OUTPUT") != ""
}

// PublishOutputs sets the action outputs, the three of the documented
// contract plus the raw counters of the parsed report.
func (p *Publisher) PublishOutputs(ctx context.Context, o Outputs) {
	if !p.Enabled() {
		log.Warn(ctx, "GITHUB_OUTPUT is not set, skipping action outputs")
		return
	}

	p.action.SetOutput("coverage_percentage", fmt.Sprintf("%.2f", o.Percentage))
	p.action.SetOutput("tests_found", fmt.Sprintf("%d", o.TestsFound))
	p.action.SetOutput("coverage_report", o.Artifact)

	p.action.SetOutput("covered_lines", fmt.Sprintf("%d", o.Summary.CoveredLines))
	p.action.SetOutput("total_lines", fmt.Sprintf("%d", o.Summary.TotalLines))
	p.action.SetOutput("covered_branches", fmt.Sprintf("%d", o.Summary.CoveredBranches))
	p.action.SetOutput("total_branches", fmt.Sprintf("%d", o.Summary.TotalBranches))
}

// PublishSummary appends a markdown table to the job summary.
func (p *Publisher) PublishSummary(ctx context.Context, o Outputs, minimum float64, passed bool) {
	if p.getenv("GITHUB_STEP_SUMMARY") == "" {
		return
	}

	status := "✅ passed"
	if !passed {
		status = "❌ failed"
	}

	var b strings.Builder
	b.WriteString("### Coverage check\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Coverage | %.2f%% |\n", o.Percentage)
	if minimum >= 0 {
		fmt.Fprintf(&b, "| Required | %.2f%% |\n", minimum)
	}
	fmt.Fprintf(&b, "| Tests found | %d |\n", o.TestsFound)
	fmt.Fprintf(&b, "| Lines | %d/%d |\n", o.Summary.CoveredLines, o.Summary.TotalLines)
	if o.Summary.TotalBranches > 0 {
		fmt.Fprintf(&b, "| Branches | %d/%d |\n", o.Summary.CoveredBranches, o.Summary.TotalBranches)
	}
	fmt.Fprintf(&b, "| Status | %s |\n", status)

	p.action.AddStepSummary(b.String())
}

// AnnotateFailure emits an ::error:: workflow command.
func (p *Publisher) AnnotateFailure(format string, args ...interface{}) {
	if p.getenv("GITHUB_ACTIONS") != "true" {
		return
	}
	p.action.Errorf(format, args...)
}
