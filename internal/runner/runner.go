// Package runner drives the delegated coverage-measurement tool.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"strings"

	"github.com/kardianos/osext"
	"github.com/pkg/errors"
	"github.com/rockbears/log"
	"github.com/spf13/afero"
)

// ArtifactFormat identifies the report artifact requested by the caller.
type ArtifactFormat string

const (
	Term ArtifactFormat = "term"
	HTML ArtifactFormat = "html"
	XML  ArtifactFormat = "xml"
	JSON ArtifactFormat = "json"
)

// ParseArtifactFormat validates a report-format flag value.
func ParseArtifactFormat(s string) (ArtifactFormat, error) {
	switch f := ArtifactFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case Term, HTML, XML, JSON:
		return f, nil
	default:
		return "", errors.Errorf("unsupported report format %q (want term, html, xml or json)", s)
	}
}

// CoberturaFile is the report always produced for measurement, whatever
// artifact format was requested.
const CoberturaFile = "coverage.xml"

// DefaultArtifact returns the artifact path advertised for a format, even
// when nothing could be rendered.
func DefaultArtifact(f ArtifactFormat) string {
	switch f {
	case HTML:
		return path.Join("htmlcov", "index.html")
	case XML:
		return CoberturaFile
	case JSON:
		return "coverage.json"
	default:
		return "terminal_output"
	}
}

// Runner invokes the coverage tool inside a workspace.
type Runner struct {
	Fs               afero.Fs
	Binary           string
	WorkingDirectory string
	SourcePaths      []string
	ExcludePaths     []string
	Out              io.Writer
}

// BuildRunArgs builds the argument list of the `coverage run` invocation.
// With test files the pytest runner is used, otherwise unittest discovery.
func (r *Runner) BuildRunArgs(testFiles []string) []string {
	args := []string{"run"}
	for _, s := range r.SourcePaths {
		args = append(args, "--source="+s)
	}
	for _, e := range r.ExcludePaths {
		args = append(args, "--omit", e)
	}
	if len(testFiles) > 0 {
		args = append(args, "-m", "pytest")
		args = append(args, testFiles...)
	} else {
		args = append(args, "-m", "unittest", "discover")
	}
	return args
}

// Run executes the tests under the coverage tool, streaming their output.
// A non-zero exit of the test run is not an error: the coverage data is
// still produced and the gate decides. Only a tool that cannot be started
// is fatal.
func (r *Runner) Run(ctx context.Context, testFiles []string) error {
	bin, err := LookPath(r.Fs, r.Binary)
	if err != nil {
		return errors.Wrapf(err, "%q", r.Binary)
	}

	args := r.BuildRunArgs(testFiles)
	log.Info(ctx, "running %s %s", bin, strings.Join(args, " "))

	cmd := r.command(ctx, bin, args)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "cannot get stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "cannot get stderr pipe")
	}

	outchan := r.stream(stdout)
	errchan := r.stream(stderr)

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "cannot start %s", bin)
	}

	<-outchan
	<-errchan
	if err := cmd.Wait(); err != nil {
		// Failing tests still leave usable coverage data behind.
		log.Warn(ctx, "test run finished with failures: %v", err)
	}
	return nil
}

// Render produces the requested report artifact and returns its path. The
// terminal format returns no path; its text comes from Report.
func (r *Runner) Render(ctx context.Context, format ArtifactFormat) (string, error) {
	switch format {
	case HTML:
		if err := r.tool(ctx, "html", "-d", "htmlcov"); err != nil {
			return "", err
		}
		return path.Join("htmlcov", "index.html"), nil
	case XML:
		// already produced by Cobertura for measurement
		return CoberturaFile, nil
	case JSON:
		if err := r.tool(ctx, "json", "-o", "coverage.json"); err != nil {
			return "", err
		}
		return "coverage.json", nil
	default:
		return "terminal_output", nil
	}
}

// Report captures the human-readable `coverage report` table.
func (r *Runner) Report(ctx context.Context) (string, error) {
	bin, err := LookPath(r.Fs, r.Binary)
	if err != nil {
		return "", errors.Wrapf(err, "%q", r.Binary)
	}
	var buf bytes.Buffer
	cmd := r.command(ctx, bin, []string{"report"})
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		// `coverage report` exits non-zero under --fail-under, the table
		// is printed anyway.
		log.Debug(ctx, "coverage report exited: %v", err)
	}
	return buf.String(), nil
}

// Cobertura writes the cobertura XML report used for measurement and
// returns its path.
func (r *Runner) Cobertura(ctx context.Context) (string, error) {
	if err := r.tool(ctx, "xml", "-o", CoberturaFile); err != nil {
		return "", err
	}
	return CoberturaFile, nil
}

func (r *Runner) tool(ctx context.Context, args ...string) error {
	bin, err := LookPath(r.Fs, r.Binary)
	if err != nil {
		return errors.Wrapf(err, "%q", r.Binary)
	}
	log.Debug(ctx, "running %s %s", bin, strings.Join(args, " "))
	cmd := r.command(ctx, bin, args)
	cmd.Stdout = r.out()
	cmd.Stderr = r.out()
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s %s failed", bin, strings.Join(args, " "))
	}
	return nil
}

func (r *Runner) command(ctx context.Context, bin string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = r.WorkingDirectory
	cmd.Env = []string{}
	// filter technical env variables
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "COVCHECK_") {
			continue
		}
		cmd.Env = append(cmd.Env, e)
	}

	if selfpath, err := osext.Executable(); err == nil {
		for i := range cmd.Env {
			if strings.HasPrefix(cmd.Env[i], "PATH=") {
				cmd.Env[i] = fmt.Sprintf("%s:%s", cmd.Env[i], path.Dir(selfpath))
				break
			}
		}
	}
	return cmd
}

func (r *Runner) stream(rd io.ReadCloser) chan struct{} {
	done := make(chan struct{})
	go func() {
		reader := bufio.NewReader(rd)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				fmt.Fprint(r.out(), line)
			}
			if err != nil {
				rd.Close()
				close(done)
				return
			}
		}
	}()
	return done
}

func (r *Runner) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}
