// Package fsutil holds small path helpers shared by the config loader and
// the detector.
package fsutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "home dir")
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// Resolve expands '~' and makes path absolute. An empty path stays empty.
func Resolve(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	p, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", path)
	}
	return abs, nil
}

// PathExists reports whether path exists. Errors other than not-exist count
// as existing so callers surface them on open.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// FirstExisting returns the first candidate that exists after '~' expansion.
func FirstExisting(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		p, err := ExpandHome(c)
		if err != nil {
			continue
		}
		if PathExists(p) {
			return p, true
		}
	}
	return "", false
}
