// Package bundle packages function sources into deterministic zip archives.
package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Packaging errors.
var (
	// ErrPackaging indicates a file that could not be globbed, opened or read.
	ErrPackaging = errors.New("packaging failed")

	// ErrPathCollision indicates two different files mapping to the same archive path.
	ErrPathCollision = errors.New("archive path collision")

	// ErrBadPattern indicates an invalid or non-relative glob pattern.
	ErrBadPattern = errors.New("bad glob pattern")
)

// match is a regular file found by a pattern.
type match struct {
	// rel is the slash-separated path relative to the root.
	rel string
	// full is the path on disk.
	full string
}

// Expand returns the regular files matched by patterns below root, sorted and
// without duplicates. An empty root is the working directory. Patterns use
// doublestar syntax: "**" crosses directories and hidden entries match like
// any other. Directories matched by a pattern are dropped, not walked.
func Expand(patterns []string, root string) ([]string, error) {
	matches, err := expand(patterns, root)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = m.full
	}
	return paths, nil
}

func expand(patterns []string, root string) ([]match, error) {
	base := root
	if base == "" {
		base = "."
	}

	if len(patterns) > 0 {
		info, err := os.Stat(base)
		if err != nil {
			return nil, fmt.Errorf("%w: root %q: %v", ErrPackaging, root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: root %q is not a directory", ErrPackaging, root)
		}
	}

	fsys := os.DirFS(base)
	seen := make(map[string]bool)
	var matches []match

	for _, raw := range patterns {
		pattern, err := normalizePattern(raw)
		if err != nil {
			return nil, err
		}

		found, err := doublestar.Glob(fsys, pattern, doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("%w: glob %q in %q: %v", ErrPackaging, raw, base, err)
		}

		for _, rel := range found {
			if seen[rel] {
				continue
			}
			full := filepath.Join(root, filepath.FromSlash(rel))

			// Stat follows symlinks so linked files are packaged by content.
			info, err := os.Stat(full)
			if err != nil {
				return nil, fmt.Errorf("%w: stat %s: %v", ErrPackaging, full, err)
			}
			if !info.Mode().IsRegular() {
				continue
			}

			seen[rel] = true
			matches = append(matches, match{rel: rel, full: full})
		}
	}

	slices.SortFunc(matches, func(a, b match) int {
		return strings.Compare(a.rel, b.rel)
	})
	return matches, nil
}

// expandExcludes returns the regular files matched by exclude patterns.
// Excludes are relative to the working directory and, unlike include
// patterns, may climb out of it with leading ".." segments. A pattern whose
// base directory does not exist matches nothing.
func expandExcludes(patterns []string) ([]string, error) {
	var files []string
	for _, raw := range patterns {
		pattern, err := cleanPattern(raw)
		if err != nil {
			return nil, err
		}

		base, rest := doublestar.SplitPattern(pattern)
		if hasParent(rest) {
			return nil, fmt.Errorf("%w: %q may only use \"..\" before its first wildcard", ErrBadPattern, raw)
		}
		dir := filepath.FromSlash(base)
		info, err := os.Stat(dir)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: exclude %q: %v", ErrPackaging, raw, err)
		}

		found, err := doublestar.Glob(os.DirFS(dir), rest, doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("%w: glob %q in %q: %v", ErrPackaging, raw, dir, err)
		}
		for _, rel := range found {
			full := filepath.Join(dir, filepath.FromSlash(rel))
			info, err := os.Stat(full)
			if err != nil {
				return nil, fmt.Errorf("%w: stat %s: %v", ErrPackaging, full, err)
			}
			if info.Mode().IsRegular() {
				files = append(files, full)
			}
		}
	}
	return files, nil
}

// normalizePattern converts an include pattern to an io/fs pattern that
// stays below its root.
func normalizePattern(raw string) (string, error) {
	pattern, err := cleanPattern(raw)
	if err != nil {
		return "", err
	}
	if hasParent(pattern) {
		return "", fmt.Errorf("%w: %q must not leave its root", ErrBadPattern, raw)
	}
	return pattern, nil
}

func cleanPattern(raw string) (string, error) {
	pattern := filepath.ToSlash(strings.TrimSpace(raw))
	for strings.HasPrefix(pattern, "./") {
		pattern = strings.TrimPrefix(pattern, "./")
	}

	if pattern == "" {
		return "", fmt.Errorf("%w: empty pattern", ErrBadPattern)
	}
	if path.IsAbs(pattern) || filepath.IsAbs(raw) {
		return "", fmt.Errorf("%w: %q must be relative", ErrBadPattern, raw)
	}
	if !doublestar.ValidatePattern(pattern) {
		return "", fmt.Errorf("%w: %q", ErrBadPattern, raw)
	}
	return pattern, nil
}

func hasParent(pattern string) bool {
	return slices.Contains(strings.Split(pattern, "/"), "..")
}
