package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, v := range []string{"lcov", "cobertura", "clover", "coverprofile", " Cobertura "} {
		f, err := ParseFormat(v)
		assert.NoError(t, err)
		assert.NotEmpty(t, f)
	}

	_, err := ParseFormat("junit")
	assert.Error(t, err)
}

func TestSummaryPercentage(t *testing.T) {
	s := Summary{TotalLines: 8, CoveredLines: 6}
	assert.Equal(t, 75.0, s.Percentage())

	s = Summary{TotalLines: 3, CoveredLines: 1}
	assert.Equal(t, 33.33, s.Percentage())

	// no measurable line counts as fully covered
	s = Summary{}
	assert.Equal(t, 100.0, s.Percentage())
}

func TestSummaryMeets(t *testing.T) {
	s := Summary{TotalLines: 8, CoveredLines: 6}

	assert.True(t, s.Meets(70))
	assert.True(t, s.Meets(75), "boundary is inclusive")
	assert.False(t, s.Meets(75.01))
	assert.True(t, s.Meets(-1), "negative minimum disables the gate")
	assert.False(t, s.Meets(100))
}

func TestSummaryMerge(t *testing.T) {
	s := Summary{Files: 1, TotalLines: 8, CoveredLines: 6, TotalBranches: 4, CoveredBranches: 2}
	s.Merge(Summary{Files: 2, TotalLines: 2, CoveredLines: 2})

	assert.Equal(t, 3, s.Files)
	assert.Equal(t, 10, s.TotalLines)
	assert.Equal(t, 8, s.CoveredLines)
	assert.Equal(t, 4, s.TotalBranches)
	assert.Equal(t, 80.0, s.Percentage())
}

func TestParseCobertura(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "results.xml")
	require.NoError(t, os.WriteFile(fpath, []byte(coberturaResult), os.ModePerm))

	sum, err := Parse(fpath, Cobertura)
	require.NoError(t, err)

	assert.Equal(t, 8, sum.TotalLines)
	assert.Equal(t, 6, sum.CoveredLines)
	assert.Equal(t, 4, sum.TotalBranches)
	assert.Equal(t, 2, sum.CoveredBranches)
	assert.Equal(t, 75.0, sum.Percentage())
}

func TestParseCoverprofile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "cover.out")
	require.NoError(t, os.WriteFile(fpath, []byte(coverprofileResult), os.ModePerm))

	sum, err := Parse(fpath, Coverprofile)
	require.NoError(t, err)

	assert.Equal(t, 5, sum.TotalLines)
	assert.Equal(t, 3, sum.CoveredLines)
	assert.Equal(t, 60.0, sum.Percentage())
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.xml"), Cobertura)
	assert.Error(t, err)

	_, err = Parse(filepath.Join(t.TempDir(), "nope.out"), Coverprofile)
	assert.Error(t, err)
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	f1 := filepath.Join(dir, "a.out")
	f2 := filepath.Join(dir, "b.out")
	require.NoError(t, os.WriteFile(f1, []byte(coverprofileResult), os.ModePerm))
	require.NoError(t, os.WriteFile(f2, []byte(coverprofileResult), os.ModePerm))

	sum, err := ParseFiles([]string{f1, f2}, Coverprofile)
	require.NoError(t, err)
	assert.Equal(t, 10, sum.TotalLines)
	assert.Equal(t, 6, sum.CoveredLines)
}

const coberturaResult = `<?xml version="1.0" ?>
<!DOCTYPE coverage SYSTEM "http://cobertura.sourceforge.net/xml/coverage-04.dtd">
<coverage lines-valid="8"  lines-covered="6"  line-rate="1"  branches-valid="4"  branches-covered="2"  branch-rate="1"  timestamp="1394890504210" complexity="0" version="0.1">
    <sources>
        <source>/workspace</source>
    </sources>
    <packages>
        <package name="app"  line-rate="1"  branch-rate="1" >
            <classes>
                <class name="cc.py"  filename="cc.py"  line-rate="1"  branch-rate="1" >
                    <methods>
                        <method name="normalize"  hits="11"  signature="()V" >
                            <lines><line number="1"  hits="11" /></lines>
                        </method>
                    </methods>
                    <lines>
                        <line number="1"  hits="11" />
                        <line number="2"  hits="11" />
                        <line number="3"  hits="11" />
                        <line number="4"  hits="11" />
                        <line number="5"  hits="0" />
                        <line number="6"  hits="0" />
                        <line number="7"  hits="11"  branch="true"  condition-coverage="50% (2/4)" />
                        <line number="8"  hits="11" />
                    </lines>
                </class>
            </classes>
        </package>
    </packages>
</coverage>`

const coverprofileResult = `mode: set
example.com/app/app.go:3.10,5.2 3 1
example.com/app/app.go:7.10,9.2 2 0
`
