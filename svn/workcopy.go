package svn

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/treepunch/treepunch/antglob"
	"github.com/treepunch/treepunch/logging"
)

// specialPathPatternText matches Subversion's own metadata folders, which
// must never be treated as work copy content.
const specialPathPatternText = "**/.svn, **/_svn"

// WorkCopy is a checked out Subversion work copy.
type WorkCopy struct {
	fs     afero.Fs
	runner Runner
	root   string
}

// NewWorkCopy wraps the work copy at root. The folder does not have to
// exist yet; Checkout creates it.
func NewWorkCopy(fsys afero.Fs, runner Runner, root string) *WorkCopy {
	return &WorkCopy{fs: fsys, runner: runner, root: root}
}

// Root returns the absolute path of the work copy folder.
func (w *WorkCopy) Root() string {
	return w.root
}

// AbsolutePath resolves a path relative to the work copy root.
func (w *WorkCopy) AbsolutePath(relPath string) string {
	return filepath.Join(w.root, relPath)
}

// Detect returns the depot URL the folder at path is checked out from, or
// an error if it is not a Subversion work copy.
func Detect(runner Runner, path string) (string, error) {
	lines, err := runner.Run(path, "svn", "info")
	if err != nil {
		return "", fmt.Errorf("detect work copy at %q: %w", path, err)
	}
	for _, line := range lines {
		if url, found := strings.CutPrefix(line, "URL: "); found {
			return url, nil
		}
	}
	return "", fmt.Errorf("folder %q must be a subversion work copy but svn info reports no URL", path)
}

// ListEntries enumerates files and folders below relPath, filtered by set.
// Subversion metadata folders are always excluded.
func (w *WorkCopy) ListEntries(relPath string, set *antglob.PatternSet) ([]antglob.Entry, error) {
	if set == nil {
		set = antglob.NewPatternSet(true)
	}
	if err := set.Exclude(specialPathPatternText); err != nil {
		return nil, err
	}
	return set.FindEntries(w.fs, w.AbsolutePath(relPath))
}

// Status reports the state of every path below relPath that svn considers
// noteworthy. With noIgnore, ignored paths are reported too.
func (w *WorkCopy) Status(relPath string, noIgnore bool) ([]PathStatus, error) {
	args := []string{"status", "--xml", "--non-interactive"}
	if noIgnore {
		args = append(args, "--no-ignore")
	}
	args = append(args, relPath)
	lines, err := w.runner.Run(w.root, "svn", args...)
	if err != nil {
		return nil, err
	}
	return parseStatus(lines)
}

// Check verifies the work copy has no pending changes and fails with a
// PendingChangesError otherwise.
func (w *WorkCopy) Check() error {
	statuses, err := w.Status(".", false)
	if err != nil {
		return err
	}
	var pending []PathStatus
	for _, status := range statuses {
		if !status.IsClean() {
			pending = append(pending, status)
		}
	}
	if len(pending) > 0 {
		return &PendingChangesError{Root: w.root, Pending: pending}
	}
	return nil
}

// Add puts the given paths under version control. Must be called with at
// least one path.
func (w *WorkCopy) Add(relPaths []string, recursive bool) error {
	args := []string{"add", "--non-interactive"}
	if !recursive {
		args = append(args, "--non-recursive")
	}
	return w.runPaths(args, relPaths)
}

// Remove deletes the given paths from version control and disk. Must be
// called with at least one path.
func (w *WorkCopy) Remove(relPaths []string, recursive, force bool) error {
	args := []string{"remove", "--non-interactive"}
	if !recursive {
		args = append(args, "--non-recursive")
	}
	if force {
		args = append(args, "--force")
	}
	return w.runPaths(args, relPaths)
}

// Move renames source to target, keeping version history attached.
func (w *WorkCopy) Move(source, target string, force bool) error {
	args := []string{"move", "--non-interactive"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, source, target)
	_, err := w.runner.Run(w.root, "svn", args...)
	return err
}

// Commit sends local changes below the given paths to the repository. Must
// be called with at least one path.
func (w *WorkCopy) Commit(relPaths []string, message string) error {
	log := logging.Sub("svn")
	log.Info("commit changes", "root", w.root, "paths", len(relPaths))
	args := []string{"commit", "--non-interactive", "--message", message}
	return w.runPaths(args, relPaths)
}

// Checkout creates the work copy from the given depot URL. Runs in the
// parent of the work copy root.
func (w *WorkCopy) Checkout(depotURL string) error {
	log := logging.Sub("svn")
	log.Info("check out work copy", "url", depotURL, "root", w.root)
	parent := filepath.Dir(w.root)
	_, err := w.runner.Run(parent, "svn", "checkout", "--non-interactive", depotURL, filepath.Base(w.root))
	return err
}

// Update brings the work copy up to date with the repository.
func (w *WorkCopy) Update() error {
	log := logging.Sub("svn")
	log.Info("update work copy", "root", w.root)
	_, err := w.runner.Run(w.root, "svn", "update", "--non-interactive")
	return err
}

// Reset reverts all local modifications, restoring every versioned path to
// its pristine state. Unversioned paths are left alone.
func (w *WorkCopy) Reset() error {
	log := logging.Sub("svn")
	log.Info("reset work copy", "root", w.root)
	_, err := w.runner.Run(w.root, "svn", "revert", "--recursive", "--non-interactive", ".")
	return err
}

// Purge resets the work copy and additionally deletes unversioned and
// ignored paths, leaving an exact checkout.
func (w *WorkCopy) Purge() error {
	if err := w.Reset(); err != nil {
		return err
	}
	statuses, err := w.Status(".", true)
	if err != nil {
		return err
	}
	log := logging.Sub("svn")
	for _, status := range statuses {
		if status.Item != StatusUnversioned && status.Item != StatusIgnored {
			continue
		}
		log.Info("purge entry", "path", status.Path)
		if err := w.fs.RemoveAll(w.AbsolutePath(status.Path)); err != nil {
			return fmt.Errorf("purge %q: %w", status.Path, err)
		}
	}
	return nil
}

// runPaths runs an svn subcommand on a non-empty path list in one call.
func (w *WorkCopy) runPaths(args, relPaths []string) error {
	if len(relPaths) == 0 {
		return fmt.Errorf("at least one path must be given for: svn %s", args[0])
	}
	_, err := w.runner.Run(w.root, "svn", append(args, relPaths...)...)
	return err
}
