// Package report parses coverage reports and evaluates them against a
// minimum-coverage threshold.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	coverage "github.com/sguiheux/go-coverage"
)

// Format identifies a coverage report file format.
type Format string

const (
	Lcov         Format = "lcov"
	Cobertura    Format = "cobertura"
	Clover       Format = "clover"
	Coverprofile Format = "coverprofile"
)

// ParseFormat validates a format name coming from a flag.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Lcov, Cobertura, Clover, Coverprofile:
		return f, nil
	default:
		return "", errors.Errorf("unsupported coverage report format %q (want lcov, cobertura, clover or coverprofile)", s)
	}
}

// Summary aggregates the counters of one or more coverage reports.
// For Go coverprofiles, statements are counted as lines.
type Summary struct {
	Files            int `json:"files"`
	TotalLines       int `json:"total_lines"`
	CoveredLines     int `json:"covered_lines"`
	TotalFunctions   int `json:"total_functions"`
	CoveredFunctions int `json:"covered_functions"`
	TotalBranches    int `json:"total_branches"`
	CoveredBranches  int `json:"covered_branches"`
}

// Percentage returns the line coverage in percent, rounded to two decimals.
// A report with no measurable line counts as fully covered.
func (s Summary) Percentage() float64 {
	if s.TotalLines == 0 {
		return 100
	}
	p := 100 * float64(s.CoveredLines) / float64(s.TotalLines)
	return math.Round(p*100) / 100
}

// Meets tells whether the summary satisfies the given minimum percentage.
// The boundary is inclusive; a negative minimum disables the gate.
func (s Summary) Meets(minimum float64) bool {
	if minimum < 0 {
		return true
	}
	return s.Percentage() >= minimum
}

// Merge adds the counters of another summary.
func (s *Summary) Merge(other Summary) {
	s.Files += other.Files
	s.TotalLines += other.TotalLines
	s.CoveredLines += other.CoveredLines
	s.TotalFunctions += other.TotalFunctions
	s.CoveredFunctions += other.CoveredFunctions
	s.TotalBranches += other.TotalBranches
	s.CoveredBranches += other.CoveredBranches
}

func (s Summary) String() string {
	return fmt.Sprintf("%d/%d lines covered (%.2f%%)", s.CoveredLines, s.TotalLines, s.Percentage())
}

// Parse reads a single report file in the given format.
func Parse(path string, format Format) (Summary, error) {
	if format == Coverprofile {
		return parseCoverprofile(path)
	}

	var mode coverage.CoverageMode
	switch format {
	case Lcov:
		mode = coverage.LCOV
	case Cobertura:
		mode = coverage.COBERTURA
	case Clover:
		mode = coverage.CLOVER
	default:
		return Summary{}, errors.Errorf("unsupported coverage report format %q", format)
	}

	rep, err := coverage.New(path, mode).Parse()
	if err != nil {
		return Summary{}, errors.Wrapf(err, "cannot parse %s report %s", format, path)
	}

	return Summary{
		Files:            len(rep.Files),
		TotalLines:       rep.TotalLines,
		CoveredLines:     rep.CoveredLines,
		TotalFunctions:   rep.TotalFunctions,
		CoveredFunctions: rep.CoveredFunctions,
		TotalBranches:    rep.TotalBranches,
		CoveredBranches:  rep.CoveredBranches,
	}, nil
}

// ParseFiles parses every given file and merges the results.
func ParseFiles(paths []string, format Format) (Summary, error) {
	var sum Summary
	for _, p := range paths {
		s, err := Parse(p, format)
		if err != nil {
			return Summary{}, err
		}
		sum.Merge(s)
	}
	return sum, nil
}
