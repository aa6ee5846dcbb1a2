// Package artifact locates built package files on disk.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound means the pattern matched nothing under the search root. It is
// distinct from an invalid search root: "nothing built yet" and "the output
// directory does not exist" call for different messages upstream.
var ErrNotFound = errors.New("no artifact matches pattern")

// Artifact is a located package file.
type Artifact struct {
	Path     string
	Platform string // linux-64, osx-64, win-64, noarch; empty when untagged
	Format   string // conda, tar.bz2, whl, tar.gz
}

// knownPlatforms are the conda platform tags used as subdirectory names in
// build and conversion output trees.
var knownPlatforms = map[string]bool{
	"linux-64":  true,
	"linux-32":  true,
	"osx-64":    true,
	"osx-arm64": true,
	"win-64":    true,
	"win-32":    true,
	"noarch":    true,
}

// Locate finds the artifact matching pattern under root. The pattern is a
// filename glob matched one and two levels deep (platform subdirectories).
// When several files match, the lexicographically first path wins; the
// selection must be stable across runs regardless of directory listing order.
func Locate(root, pattern string) (*Artifact, error) {
	matches, err := matchAll(root, pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s under %s", ErrNotFound, pattern, root)
	}
	return fromPath(matches[0]), nil
}

// LocateAll returns every matching artifact under root in lexicographic
// order. An empty result is ErrNotFound, same as Locate.
func LocateAll(root, pattern string) ([]*Artifact, error) {
	matches, err := matchAll(root, pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s under %s", ErrNotFound, pattern, root)
	}
	arts := make([]*Artifact, 0, len(matches))
	for _, m := range matches {
		arts = append(arts, fromPath(m))
	}
	return arts, nil
}

func matchAll(root, pattern string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			// A missing output directory means nothing was built yet,
			// which is the same condition as an empty one.
			return nil, fmt.Errorf("%w: output directory %s does not exist", ErrNotFound, root)
		}
		return nil, fmt.Errorf("search root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("search root %s is not a directory", root)
	}

	var matches []string
	for _, glob := range []string{
		filepath.Join(root, pattern),
		filepath.Join(root, "*", pattern),
	} {
		found, err := filepath.Glob(glob)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, f := range found {
			if fi, err := os.Stat(f); err == nil && !fi.IsDir() {
				matches = append(matches, f)
			}
		}
	}

	sort.Strings(matches)
	return matches, nil
}

func fromPath(path string) *Artifact {
	a := &Artifact{Path: path}
	if dir := filepath.Base(filepath.Dir(path)); knownPlatforms[dir] {
		a.Platform = dir
	}
	a.Format = formatOf(path)
	return a
}

func formatOf(path string) string {
	name := filepath.Base(path)
	switch {
	case strings.HasSuffix(name, ".tar.bz2"):
		return "tar.bz2"
	case strings.HasSuffix(name, ".tar.gz"):
		return "tar.gz"
	default:
		return strings.TrimPrefix(filepath.Ext(name), ".")
	}
}
