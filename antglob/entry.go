package antglob

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/afero"
)

// EntryKind distinguishes files from folders.
type EntryKind int

const (
	File EntryKind = iota
	Folder
)

func (k EntryKind) String() string {
	if k == Folder {
		return "folder"
	}
	return "file"
}

// VanishedError indicates that an entry enumerated during scanning was
// removed from disk before it could be used. The whole reconciliation
// depends on an unchanging view, so this is fatal rather than skipped.
type VanishedError struct {
	Path string
}

func (e *VanishedError) Error() string {
	return fmt.Sprintf("entry must remain on disk during processing but vanished: %q", e.Path)
}

// Entry is an immutable snapshot of one file or folder below a base folder.
// Kind, size and modification time are captured at construction. Equality
// and ordering are defined over Parts only.
type Entry struct {
	Kind    EntryKind
	Parts   []string
	Size    int64
	ModTime time.Time
}

// NewEntry stats baseDir joined with parts and snapshots the result.
func NewEntry(fsys afero.Fs, baseDir string, parts []string) (Entry, error) {
	entry := Entry{Parts: parts}
	absPath := entry.AbsolutePath(baseDir)
	info, err := fsys.Stat(absPath)
	if err != nil {
		return Entry{}, &VanishedError{Path: absPath}
	}
	switch {
	case info.IsDir():
		entry.Kind = Folder
	case info.Mode().IsRegular():
		entry.Kind = File
	default:
		return Entry{}, fmt.Errorf("entry must be a file or folder: %q", absPath)
	}
	entry.Size = info.Size()
	entry.ModTime = info.ModTime()
	return entry, nil
}

// Name returns the last path segment, or "" for a rootless entry.
func (e Entry) Name() string {
	if len(e.Parts) == 0 {
		return ""
	}
	return e.Parts[len(e.Parts)-1]
}

// RelPath returns the slash-separated path relative to the base folder.
func (e Entry) RelPath() string {
	return path.Join(e.Parts...)
}

// AbsolutePath returns the entry's path below baseDir in the native
// separator style.
func (e Entry) AbsolutePath(baseDir string) string {
	return filepath.Join(append([]string{baseDir}, e.Parts...)...)
}

func (e Entry) String() string {
	return fmt.Sprintf("<%s %q>", e.Kind, e.RelPath())
}

// CompareEntries orders folders before files and, within the same kind,
// lexicographically by parts. This is the canonical ordering used
// throughout a punch.
func CompareEntries(a, b Entry) int {
	if a.Kind != b.Kind {
		if a.Kind == Folder {
			return -1
		}
		return 1
	}
	return slices.Compare(a.Parts, b.Parts)
}

// SortEntries returns the entries in canonical order with duplicate paths
// removed, keeping the first occurrence of each path.
func SortEntries(entries []Entry) []Entry {
	seen := make(map[string]bool, len(entries))
	sorted := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		relPath := entry.RelPath()
		if seen[relPath] {
			continue
		}
		seen[relPath] = true
		sorted = append(sorted, entry)
	}
	slices.SortStableFunc(sorted, CompareEntries)
	return sorted
}
