// Package archive walks evidence documents packed into zip archives.
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/encoding"
)

// Entry is a file found in archive. Name is the path inside archive,
// converted to UTF-8 when archive stores legacy encoded names.
type Entry struct {
	Name string
	File *zip.File
}

// WalkFunc is called for every entry accepted by match, archive is the path
// passed to Walk. Returning an error stops the walk.
type WalkFunc func(archive string, e Entry) error

// Walk visits regular files of archive for which match returns true (nil
// match accepts everything) in natural order of their names, so "Tab 2"
// comes before "Tab 10". Names of entries without UTF-8 flag are decoded
// with cp when it is not nil. Archives with absolute names or path traversal
// components are rejected as a whole.
func Walk(archive string, cp encoding.Encoding, match func(name string) bool, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	var entries []Entry
	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		name, err := decodeName(f, cp)
		if err != nil {
			return fmt.Errorf("zip entry %q: %w", f.Name, err)
		}
		if match == nil || match(name) {
			entries = append(entries, Entry{Name: name, File: f})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return natural.Less(entries[i].Name, entries[j].Name)
	})

	for _, e := range entries {
		if err := walkFn(archive, e); err != nil {
			return err
		}
	}
	return nil
}

func decodeName(f *zip.File, cp encoding.Encoding) (string, error) {
	if cp == nil || !f.NonUTF8 {
		return f.Name, nil
	}
	name, err := cp.NewDecoder().String(f.Name)
	if err != nil {
		return "", fmt.Errorf("unable to decode name: %w", err)
	}
	return name, nil
}

// isSafePath returns false for absolute names and names with ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
