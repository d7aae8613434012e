// Package discover locates test files in a workspace from a list of glob
// patterns, directories and plain file paths.
package discover

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-zglob"
	"github.com/rockbears/log"
	"github.com/spf13/afero"
)

// SplitList splits a comma-separated flag value, trimming blanks and
// dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// isTestFileName matches the test-file naming conventions of the delegated
// tool's ecosystem: test_*.py, *_test.py and tests.py.
func isTestFileName(name string) bool {
	if !strings.HasSuffix(name, ".py") {
		return false
	}
	return strings.HasPrefix(name, "test_") ||
		strings.HasSuffix(name, "_test.py") ||
		name == "tests.py"
}

// TestFiles resolves the given patterns against the workspace. Invalid
// patterns and paths that do not exist yield zero matches, never an error.
// Results are unique, workspace-relative and sorted.
func TestFiles(ctx context.Context, fs afero.Fs, workdir string, patterns []string) []string {
	seen := map[string]struct{}{}

	for _, pattern := range patterns {
		for _, f := range resolve(ctx, fs, workdir, pattern) {
			if rel, err := filepath.Rel(workdir, f); err == nil && !strings.HasPrefix(rel, "..") {
				f = rel
			}
			seen[f] = struct{}{}
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func resolve(ctx context.Context, fs afero.Fs, workdir, pattern string) []string {
	full := pattern
	if !filepath.IsAbs(full) {
		full = filepath.Join(workdir, pattern)
	}

	switch {
	case strings.Contains(pattern, "**"):
		// afero has no recursive globbing, zglob works on the host
		// filesystem only.
		matches, err := zglob.Glob(full)
		if err != nil {
			log.Warn(ctx, "invalid pattern %q: %v", pattern, err)
			return nil
		}
		return onlyFiles(fs, matches)

	case strings.ContainsAny(pattern, "*?["):
		matches, err := afero.Glob(fs, full)
		if err != nil {
			log.Warn(ctx, "invalid pattern %q: %v", pattern, err)
			return nil
		}
		return onlyFiles(fs, matches)
	}

	fi, err := fs.Stat(full)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn(ctx, "cannot stat %q: %v", pattern, err)
		}
		return nil
	}

	if !fi.IsDir() {
		if isTestFileName(filepath.Base(full)) || strings.HasSuffix(full, ".py") {
			return []string{full}
		}
		return nil
	}

	var files []string
	err = afero.Walk(fs, full, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if !info.IsDir() && isTestFileName(filepath.Base(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		log.Warn(ctx, "cannot walk %q: %v", pattern, err)
	}
	return files
}

func onlyFiles(fs afero.Fs, paths []string) []string {
	var files []string
	for _, p := range paths {
		if fi, err := fs.Stat(p); err == nil && !fi.IsDir() {
			files = append(files, p)
		}
	}
	return files
}
