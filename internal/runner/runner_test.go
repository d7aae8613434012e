package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArtifactFormat(t *testing.T) {
	for _, v := range []string{"term", "html", "xml", "json", " TERM "} {
		f, err := ParseArtifactFormat(v)
		assert.NoError(t, err)
		assert.NotEmpty(t, f)
	}

	_, err := ParseArtifactFormat("pdf")
	assert.Error(t, err)
}

func TestDefaultArtifact(t *testing.T) {
	assert.Equal(t, "terminal_output", DefaultArtifact(Term))
	assert.Equal(t, filepath.Join("htmlcov", "index.html"), DefaultArtifact(HTML))
	assert.Equal(t, "coverage.xml", DefaultArtifact(XML))
	assert.Equal(t, "coverage.json", DefaultArtifact(JSON))
}

func TestBuildRunArgs(t *testing.T) {
	r := &Runner{
		SourcePaths:  []string{".", "src"},
		ExcludePaths: []string{"tests/", "setup.py"},
	}

	args := r.BuildRunArgs([]string{"tests/test_app.py"})
	assert.Equal(t, []string{
		"run",
		"--source=.", "--source=src",
		"--omit", "tests/", "--omit", "setup.py",
		"-m", "pytest", "tests/test_app.py",
	}, args)

	// without explicit test files, fall back to unittest discovery
	args = r.BuildRunArgs(nil)
	assert.Equal(t, []string{
		"run",
		"--source=.", "--source=src",
		"--omit", "tests/", "--omit", "setup.py",
		"-m", "unittest", "discover",
	}, args)
}

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "coverage")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0755))

	fs := afero.NewOsFs()

	// direct path, PATH not consulted
	p, err := LookPath(fs, bin)
	require.NoError(t, err)
	assert.Equal(t, bin, p)

	// by name through PATH
	t.Setenv("PATH", dir)
	p, err = LookPath(fs, "coverage")
	require.NoError(t, err)
	assert.Equal(t, bin, p)

	_, err = LookPath(fs, "no-such-tool-xyz")
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestRunStreamsOutput(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "coverage")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho collecting\necho oops >&2\nexit 0\n"), 0755))

	var buf bytes.Buffer
	r := &Runner{
		Fs:               afero.NewOsFs(),
		Binary:           bin,
		WorkingDirectory: dir,
		SourcePaths:      []string{"."},
		Out:              &buf,
	}

	require.NoError(t, r.Run(context.TODO(), []string{"test_app.py"}))
	assert.Contains(t, buf.String(), "collecting")
	assert.Contains(t, buf.String(), "oops")
}

func TestRunFailingTestsAreNotFatal(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "coverage")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nexit 1\n"), 0755))

	r := &Runner{
		Fs:               afero.NewOsFs(),
		Binary:           bin,
		WorkingDirectory: dir,
		Out:              new(bytes.Buffer),
	}

	assert.NoError(t, r.Run(context.TODO(), []string{"test_app.py"}))
}

func TestRunToolNotFound(t *testing.T) {
	r := &Runner{
		Fs:               afero.NewOsFs(),
		Binary:           filepath.Join(t.TempDir(), "missing"),
		WorkingDirectory: t.TempDir(),
		Out:              new(bytes.Buffer),
	}

	err := r.Run(context.TODO(), []string{"test_app.py"})
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestRenderWithoutToolInvocation(t *testing.T) {
	r := &Runner{Fs: afero.NewOsFs()}

	// term and xml never spawn the tool from Render
	p, err := r.Render(context.TODO(), Term)
	require.NoError(t, err)
	assert.Equal(t, "terminal_output", p)

	p, err = r.Render(context.TODO(), XML)
	require.NoError(t, err)
	assert.Equal(t, CoberturaFile, p)
}

func TestReportCapturesTable(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "coverage")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho 'Name Stmts Miss Cover'\n"), 0755))

	r := &Runner{
		Fs:               afero.NewOsFs(),
		Binary:           bin,
		WorkingDirectory: dir,
	}

	out, err := r.Report(context.TODO())
	require.NoError(t, err)
	assert.Contains(t, out, "Name Stmts Miss Cover")
}
