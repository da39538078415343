package antglob

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FolderSuffix marks folder results returned by Find, distinguishing them
// from file results.
const FolderSuffix = "/"

// IsFolderPath reports whether a path returned by Find denotes a folder.
func IsFolderPath(p string) bool {
	return strings.HasSuffix(p, FolderSuffix)
}

// Find walks the tree below root and returns the relative slash-separated
// paths matching the set, in depth-first directory order. Excluded children
// are skipped entirely, including recursion. A directory whose descendants
// yield nothing but whose own path matches the set is returned as an empty
// matching folder, tagged with FolderSuffix.
//
// With includeFolders, every ancestor folder of a yielded path that has not
// been yielded yet is back-filled in top-down order, so folders nested
// arbitrarily deep without their own pattern match are still materialized.
// Without includeFolders, only files are returned.
func (s *PatternSet) Find(fsys afero.Fs, root string, includeFolders bool) ([]string, error) {
	var results []string
	yieldedFolders := make(map[string]bool)

	yieldFolder := func(folder string) {
		yieldedFolders[folder] = true
		results = append(results, folder+FolderSuffix)
	}

	// emit appends one result, back-filling unyielded ancestors first.
	emit := func(relPath string) {
		if includeFolders {
			dir := path.Dir(strings.TrimSuffix(relPath, FolderSuffix))
			var missing []string
			for dir != "." && dir != "" && !yieldedFolders[dir] {
				missing = append(missing, dir)
				dir = path.Dir(dir)
			}
			for i := len(missing) - 1; i >= 0; i-- {
				yieldFolder(missing[i])
			}
		}
		if IsFolderPath(relPath) {
			yieldFolder(strings.TrimSuffix(relPath, FolderSuffix))
		} else {
			results = append(results, relPath)
		}
	}

	var walk func(parts []string) (bool, error)
	walk = func(parts []string) (bool, error) {
		dirPath := filepath.Join(append([]string{root}, parts...)...)
		infos, err := afero.ReadDir(fsys, dirPath)
		if err != nil {
			return false, fmt.Errorf("list folder %q: %w", dirPath, err)
		}
		found := false
		for _, info := range infos {
			childParts := append(append([]string{}, parts...), info.Name())
			if len(s.excludes) > 0 && matchAny(childParts, s.excludes) {
				continue
			}
			if info.IsDir() {
				childFound, err := walk(childParts)
				if err != nil {
					return false, err
				}
				if childFound {
					found = true
				}
				continue
			}
			if len(s.includes) == 0 || matchAny(childParts, s.includes) {
				emit(path.Join(childParts...))
				found = true
			}
		}
		if includeFolders && !found && len(parts) > 0 && s.MatchParts(parts) {
			emit(path.Join(parts...) + FolderSuffix)
			found = true
		}
		return found, nil
	}

	if _, err := walk(nil); err != nil {
		return nil, err
	}
	return results, nil
}

// FindEntries walks the tree below root and returns a snapshot Entry for
// every matching file plus every folder needed to contain one, in the order
// produced by Find. An entry vanishing between enumeration and stat is a
// fatal VanishedError.
func (s *PatternSet) FindEntries(fsys afero.Fs, root string) ([]Entry, error) {
	paths, err := s.Find(fsys, root, true)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(paths))
	for _, relPath := range paths {
		entry, err := NewEntry(fsys, root, SplitPath(relPath, false))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
