package bundle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// modTime is stamped on every entry so identical inputs give identical bytes.
var modTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Spec describes what to package.
type Spec struct {
	// Includes maps a root directory to glob patterns below it.
	Includes map[string][]string

	// Excludes are glob patterns relative to the working directory.
	Excludes []string
}

// Entry is one file stored in an archive.
type Entry struct {
	// Path is the slash-separated path inside the archive.
	Path string

	// Root is the include root the file was found under.
	Root string

	// Source is the file on disk.
	Source string

	// Mode holds the source permission bits.
	Mode fs.FileMode

	Data []byte
}

// Archive is an in-memory zip of a unit's files.
type Archive struct {
	entries []Entry
	data    []byte
}

// Pack builds the archive for spec. For every include root the matched files
// minus the excluded files are stored relative to that root, ordered by
// (root, relative path). Two different files landing on the same archive path
// fail with ErrPathCollision; any unreadable file fails with ErrPackaging.
func Pack(spec Spec) (*Archive, error) {
	excluded, err := excludedSet(spec.Excludes)
	if err != nil {
		return nil, fmt.Errorf("expand excludes: %w", err)
	}

	var entries []Entry
	sources := make(map[string]string)

	for _, root := range slices.Sorted(maps.Keys(spec.Includes)) {
		matches, err := expand(spec.Includes[root], root)
		if err != nil {
			return nil, fmt.Errorf("expand includes for %q: %w", root, err)
		}

		for _, m := range matches {
			abs, err := filepath.Abs(m.full)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrPackaging, m.full, err)
			}
			if excluded[abs] {
				continue
			}

			if prev, ok := sources[m.rel]; ok {
				if prev == abs {
					continue
				}
				return nil, fmt.Errorf("%w: %s from both %s and %s", ErrPathCollision, m.rel, prev, abs)
			}
			sources[m.rel] = abs

			entries = append(entries, Entry{Path: m.rel, Root: root, Source: m.full})
		}
	}

	for i := range entries {
		if err := entries[i].read(); err != nil {
			return nil, err
		}
	}

	data, err := encode(entries)
	if err != nil {
		return nil, err
	}

	return &Archive{entries: entries, data: data}, nil
}

func excludedSet(patterns []string) (map[string]bool, error) {
	files, err := expandExcludes(patterns)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPackaging, f, err)
		}
		set[abs] = true
	}
	return set, nil
}

func (e *Entry) read() error {
	f, err := os.Open(e.Source)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrPackaging, e.Source, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrPackaging, e.Source, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is no longer a regular file", ErrPackaging, e.Source)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrPackaging, e.Source, err)
	}

	e.Mode = info.Mode().Perm()
	e.Data = data
	return nil
}

// encode writes entries into a zip in order.
func encode(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range entries {
		header := &zip.FileHeader{
			Name:     e.Path,
			Method:   zip.Deflate,
			Modified: modTime,
		}
		header.SetMode(e.Mode)

		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("%w: create entry %s: %v", ErrPackaging, e.Path, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("%w: write entry %s: %v", ErrPackaging, e.Path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: finish archive: %v", ErrPackaging, err)
	}
	return buf.Bytes(), nil
}

// Bytes returns the encoded zip.
func (a *Archive) Bytes() []byte {
	return a.data
}

// Size returns the encoded zip size in bytes.
func (a *Archive) Size() int64 {
	return int64(len(a.data))
}

// Len returns the number of files in the archive.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entries returns the archive entries in archive order.
func (a *Archive) Entries() []Entry {
	return slices.Clone(a.entries)
}

// Paths returns the archive paths in archive order.
func (a *Archive) Paths() []string {
	paths := make([]string, len(a.entries))
	for i, e := range a.entries {
		paths[i] = e.Path
	}
	return paths
}

// SHA256 returns the hex digest of the encoded zip.
func (a *Archive) SHA256() string {
	sum := sha256.Sum256(a.data)
	return hex.EncodeToString(sum[:])
}

// WriteTo writes the encoded zip to w.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.data)
	return int64(n), err
}

// String lists the archive contents, one path per line.
func (a *Archive) String() string {
	return strings.Join(a.Paths(), "\n")
}
