package runner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ErrToolNotFound is the error resulting if a path search failed to find the
// coverage executable.
var ErrToolNotFound = errors.New("coverage tool not found in $PATH")

func findExecutable(fs afero.Fs, file string) error {
	d, err := fs.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return os.ErrPermission
}

// LookPath searches for an executable named file in the directories named by
// the PATH environment variable. If file contains a slash, it is tried
// directly and the PATH is not consulted.
func LookPath(fs afero.Fs, file string) (string, error) {
	if strings.Contains(file, "/") {
		err := findExecutable(fs, file)
		if err == nil {
			return file, nil
		}
		return "", ErrToolNotFound
	}
	path := os.Getenv("PATH")
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(fs, path); err == nil {
			return path, nil
		}
	}
	return "", ErrToolNotFound
}
