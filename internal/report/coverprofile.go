package report

import (
	"github.com/pkg/errors"
	"golang.org/x/tools/cover"
)

// parseCoverprofile reads a Go `go test -coverprofile` file. Statements are
// the unit of measure, reported through the line counters of the summary.
func parseCoverprofile(path string) (Summary, error) {
	profiles, err := cover.ParseProfiles(path)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "cannot parse coverprofile %s", path)
	}

	var sum Summary
	sum.Files = len(profiles)
	for _, p := range profiles {
		for _, b := range p.Blocks {
			sum.TotalLines += b.NumStmt
			if b.Count > 0 {
				sum.CoveredLines += b.NumStmt
			}
		}
	}
	return sum, nil
}
