// Package punch implements the reconciliation engine. A punch aligns the
// contents of an unversioned external folder with a version-controlled work
// copy and applies the minimal set of transfer, add, move and remove
// operations through a working-copy backend.
package punch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/treepunch/treepunch/antglob"
	"github.com/treepunch/treepunch/logging"
)

// MoveMode selects how renamed files are handled.
type MoveMode string

const (
	// MoveName detects files added and removed under the same name in
	// different folders and turns them into backend moves.
	MoveName MoveMode = "name"
	// MoveNone always uses add and remove.
	MoveNone MoveMode = "none"
)

// MoveModeByName resolves a move mode name.
func MoveModeByName(name string) (MoveMode, error) {
	switch MoveMode(name) {
	case MoveName:
		return MoveName, nil
	case MoveNone:
		return MoveNone, nil
	}
	return "", fmt.Errorf("move mode is %q but must be one of: name, none", name)
}

// WorkCopy is the version-control backend collaborator. All operations are
// blocking; path slices must be non-empty.
type WorkCopy interface {
	// Root returns the absolute path of the work copy folder.
	Root() string
	// ListEntries enumerates the work copy below relPath, filtered by set.
	ListEntries(relPath string, set *antglob.PatternSet) ([]antglob.Entry, error)
	// Add registers the given paths with the backend in one call.
	Add(paths []string, recursive bool) error
	// Remove deletes the given paths from backend and disk in one call.
	Remove(paths []string, recursive, force bool) error
	// Move renames source to target, keeping history attached.
	Move(source, target string, force bool) error
}

// Move pairs a removed source entry with the added target entry it was
// matched to.
type Move struct {
	Source antglob.Entry
	Target antglob.Entry
}

// Result summarizes one punch.
type Result struct {
	Transferred int
	Added       int
	Moved       int
	Removed     int
	Duration    time.Duration
}

// Changed reports whether the punch performed any backend mutation beyond
// re-copying unchanged paths.
func (r Result) Changed() bool {
	return r.Added > 0 || r.Moved > 0 || r.Removed > 0
}

// plan holds the transient state of one punch. Created fresh at punch start
// and released on every exit path.
type plan struct {
	externalRoot string
	// originals maps a transformed external path back to the original
	// external entry, whose content is the copy source.
	originals  map[string]antglob.Entry
	toTransfer []antglob.Entry
	toAdd      []antglob.Entry
	toRemove   []antglob.Entry
	moves      []Move
}

// Puncher reconciles an external tree with a work copy. A Puncher performs
// at most one punch at a time; concurrent calls fail with
// ErrPunchInProgress. Configure the exported fields before the first punch.
type Puncher struct {
	fs   afero.Fs
	work WorkCopy

	MoveMode      MoveMode
	NameTransform NameTransform
	TextOptions   *TextOptions

	mu   sync.Mutex
	plan *plan
}

// NewPuncher creates a Puncher applying changes through the given backend.
func NewPuncher(fsys afero.Fs, work WorkCopy) *Puncher {
	return &Puncher{fs: fsys, work: work, MoveMode: MoveName}
}

// Punch enumerates the external folder and the work copy using the given
// ant pattern lists, aligns the two trees and applies the difference in the
// order transfer, add, move, remove. Precondition violations are detected
// before any change; partial application already performed on the backend
// when a later phase fails is not rolled back.
func (p *Puncher) Punch(externalRoot, includeText, excludeText, workOnlyText string) (Result, error) {
	if !p.mu.TryLock() {
		return Result{}, ErrPunchInProgress
	}
	defer p.mu.Unlock()
	p.plan = &plan{externalRoot: externalRoot, originals: make(map[string]antglob.Entry)}
	defer func() { p.plan = nil }()

	l := logging.Sub("puncher")
	started := time.Now()

	externalEntries, workEntries, err := p.scan(l, externalRoot, includeText, excludeText, workOnlyText)
	if err != nil {
		return Result{}, err
	}

	renamedEntries, err := p.transformExternal(workEntries, externalEntries)
	if err != nil {
		return Result{}, err
	}

	p.align(l, workEntries, renamedEntries)

	if p.MoveMode != MoveNone {
		p.detectMoves(l)
	}

	if err := p.apply(l); err != nil {
		return Result{}, err
	}

	result := Result{
		Transferred: len(p.plan.toTransfer),
		Added:       len(p.plan.toAdd),
		Moved:       len(p.plan.moves),
		Removed:     len(p.plan.toRemove),
		Duration:    time.Since(started),
	}
	l.Info("punch complete",
		"transferred", result.Transferred,
		"added", result.Added,
		"moved", result.Moved,
		"removed", result.Removed,
		"duration", result.Duration,
	)
	return result, nil
}

// scan enumerates both trees in canonical order and enforces the work-only
// pattern: work-only entries must never appear in the external tree.
func (p *Puncher) scan(l *slog.Logger, externalRoot, includeText, excludeText, workOnlyText string) (external, work []antglob.Entry, err error) {
	set := antglob.NewPatternSet(true)
	if includeText != "" {
		if err := set.Include(includeText); err != nil {
			return nil, nil, err
		}
	}
	if excludeText != "" {
		if err := set.Exclude(excludeText); err != nil {
			return nil, nil, err
		}
	}

	externalEntries, err := set.FindEntries(p.fs, externalRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("scan external folder: %w", err)
	}
	externalEntries = antglob.SortEntries(externalEntries)
	l.Info("found external entries", "count", len(externalEntries), "root", externalRoot)

	if workOnlyText != "" {
		workOnlySet := antglob.NewPatternSet(false)
		if err := workOnlySet.Include(workOnlyText); err != nil {
			return nil, nil, err
		}
		for _, entry := range externalEntries {
			if workOnlySet.MatchParts(entry.Parts) {
				return nil, nil, &WorkOnlyViolationError{Path: entry.RelPath()}
			}
		}
		if err := set.Exclude(workOnlyText); err != nil {
			return nil, nil, err
		}
	}

	workEntries, err := p.work.ListEntries("", set)
	if err != nil {
		return nil, nil, fmt.Errorf("scan work copy: %w", err)
	}
	workEntries = antglob.SortEntries(workEntries)
	l.Info("found work entries", "count", len(workEntries), "root", p.work.Root())

	return externalEntries, workEntries, nil
}

// transformExternal verifies the name transformation is a no-op on the
// existing work copy, then applies it to the external entries, rejecting
// transformations under which two distinct external paths collapse.
func (p *Puncher) transformExternal(workEntries, externalEntries []antglob.Entry) ([]antglob.Entry, error) {
	if p.NameTransform == nil {
		for _, entry := range externalEntries {
			p.plan.originals[entry.RelPath()] = entry
		}
		return externalEntries, nil
	}

	violations := make(map[string]string)
	for _, entry := range workEntries {
		transformed, err := p.transformedParts(entry)
		if err != nil {
			return nil, err
		}
		if !slices.Equal(transformed, entry.Parts) {
			violations[entry.RelPath()] = filepath.ToSlash(filepath.Join(transformed...))
		}
	}
	if len(violations) > 0 {
		return nil, &NameTransformationError{Violations: violations}
	}

	renamed := make([]antglob.Entry, 0, len(externalEntries))
	for _, entry := range externalEntries {
		transformed, err := p.transformedParts(entry)
		if err != nil {
			return nil, err
		}
		renamedEntry := entry
		renamedEntry.Parts = transformed
		target := renamedEntry.RelPath()
		if existing, clashed := p.plan.originals[target]; clashed {
			return nil, &NameClashError{First: existing.RelPath(), Second: entry.RelPath(), Target: target}
		}
		p.plan.originals[target] = entry
		renamed = append(renamed, renamedEntry)
	}
	return antglob.SortEntries(renamed), nil
}

func (p *Puncher) transformedParts(entry antglob.Entry) ([]string, error) {
	transformed := p.NameTransform(entry.Parts, entry)
	if len(transformed) != len(entry.Parts) {
		return nil, fmt.Errorf("name transformation must preserve the segment count of %q but produced %d segments", entry.RelPath(), len(transformed))
	}
	return transformed, nil
}

// align runs a longest-common-subsequence diff between the work entries and
// the transformed external entries and schedules the resulting operations.
func (p *Puncher) align(l *slog.Logger, workEntries, renamedEntries []antglob.Entry) {
	workPaths := relPaths(workEntries)
	externalPaths := relPaths(renamedEntries)

	matcher := difflib.NewMatcher(workPaths, externalPaths)
	for _, op := range matcher.GetOpCodes() {
		if logging.Enabled(slog.LevelDebug) {
			l.Debug("align opcode", "tag", string(op.Tag), "i1", op.I1, "i2", op.I2, "j1", op.J1, "j2", op.J2)
		}
		switch op.Tag {
		case 'e':
			p.scheduleTransfer(l, renamedEntries[op.J1:op.J2])
		case 'i':
			p.scheduleAdd(l, renamedEntries[op.J1:op.J2])
		case 'd':
			p.scheduleRemove(l, workEntries[op.I1:op.I2])
		case 'r':
			p.scheduleReplace(l, workEntries[op.I1:op.I2], renamedEntries[op.J1:op.J2])
		}
	}
}

// scheduleReplace partitions the union of a replace run: entries present on
// both sides are transferred, external-only entries added, work-only entries
// removed. The union is processed in canonical order.
func (p *Puncher) scheduleReplace(l *slog.Logger, workRun, externalRun []antglob.Entry) {
	inWork := make(map[string]bool, len(workRun))
	for _, entry := range workRun {
		inWork[entry.RelPath()] = true
	}
	inExternal := make(map[string]bool, len(externalRun))
	for _, entry := range externalRun {
		inExternal[entry.RelPath()] = true
	}

	// External entries first so that a path present on both sides keeps the
	// external snapshot, which is the copy source.
	union := antglob.SortEntries(append(append([]antglob.Entry{}, externalRun...), workRun...))
	for _, entry := range union {
		relPath := entry.RelPath()
		switch {
		case inExternal[relPath] && inWork[relPath]:
			p.scheduleTransfer(l, []antglob.Entry{entry})
		case inExternal[relPath]:
			p.scheduleAdd(l, []antglob.Entry{entry})
		default:
			p.scheduleRemove(l, []antglob.Entry{entry})
		}
	}
}

// inLastRemovedFolder reports whether the entry is covered by the most
// recently scheduled removed folder. Such entries are not scheduled
// independently; their fate is decided by the ancestor's removal.
func (p *Puncher) inLastRemovedFolder(entry antglob.Entry) bool {
	if len(p.plan.toRemove) == 0 {
		return false
	}
	last := p.plan.toRemove[len(p.plan.toRemove)-1]
	if last.Kind != antglob.Folder || len(entry.Parts) < len(last.Parts) {
		return false
	}
	return slices.Equal(entry.Parts[:len(last.Parts)], last.Parts)
}

func (p *Puncher) scheduleTransfer(l *slog.Logger, entries []antglob.Entry) {
	for _, entry := range entries {
		if p.inLastRemovedFolder(entry) {
			l.Debug("skip transfer in removed folder", "path", entry.RelPath())
			continue
		}
		p.plan.toTransfer = append(p.plan.toTransfer, entry)
	}
}

func (p *Puncher) scheduleAdd(l *slog.Logger, entries []antglob.Entry) {
	for _, entry := range entries {
		if p.inLastRemovedFolder(entry) {
			l.Debug("skip add in removed folder", "path", entry.RelPath())
			continue
		}
		p.plan.toAdd = append(p.plan.toAdd, entry)
	}
}

func (p *Puncher) scheduleRemove(l *slog.Logger, entries []antglob.Entry) {
	for _, entry := range entries {
		if p.inLastRemovedFolder(entry) {
			l.Debug("skip remove in removed folder", "path", entry.RelPath())
			continue
		}
		p.plan.toRemove = append(p.plan.toRemove, entry)
	}
}

type moveKey struct {
	name string
	kind antglob.EntryKind
}

// detectMoves pairs files scheduled for add and remove under the same name
// and turns each pair into a move. Folders are never detected as moved.
func (p *Puncher) detectMoves(l *slog.Logger) {
	removedByKey := lo.GroupBy(p.plan.toRemove, func(e antglob.Entry) moveKey {
		return moveKey{name: e.Name(), kind: e.Kind}
	})
	addedByKey := lo.GroupBy(p.plan.toAdd, func(e antglob.Entry) moveKey {
		return moveKey{name: e.Name(), kind: e.Kind}
	})

	keys := lo.Keys(addedByKey)
	sort.Slice(keys, func(i, j int) bool { return keys[i].name < keys[j].name })

	for _, key := range keys {
		if key.kind != antglob.File {
			continue
		}
		removed, found := removedByKey[key]
		if !found {
			continue
		}
		source := removed[0]
		target := addedByKey[key][0]
		l.Debug("schedule move", "source", source.RelPath(), "target", target.RelPath())
		p.plan.toRemove = dropEntry(p.plan.toRemove, source)
		p.plan.toAdd = dropEntry(p.plan.toAdd, target)
		p.plan.moves = append(p.plan.moves, Move{Source: source, Target: target})
	}
}

// apply performs the scheduled operations in fixed order: transfer, add,
// move, remove. Add and remove issue one batched backend call each.
func (p *Puncher) apply(l *slog.Logger) error {
	if len(p.plan.toTransfer) > 0 {
		files, folders := countKinds(p.plan.toTransfer)
		l.Info("transfer entries", "files", files, "folders", folders)
		for _, entry := range p.plan.toTransfer {
			if err := p.materialize(entry); err != nil {
				return err
			}
		}
	}

	if len(p.plan.toAdd) > 0 {
		files, folders := countKinds(p.plan.toAdd)
		l.Info("add entries", "files", files, "folders", folders)
		for _, entry := range p.plan.toAdd {
			if err := p.materialize(entry); err != nil {
				return err
			}
		}
		if err := p.work.Add(relPaths(p.plan.toAdd), false); err != nil {
			return err
		}
	}

	for _, move := range p.plan.moves {
		l.Info("move entry", "source", move.Source.RelPath(), "target", move.Target.RelPath())
		if err := p.work.Move(move.Source.RelPath(), move.Target.RelPath(), true); err != nil {
			return err
		}
		// The moved file's content may have changed as well.
		if err := p.copyEntry(move.Target); err != nil {
			return err
		}
	}

	if len(p.plan.toRemove) > 0 {
		files, folders := countKinds(p.plan.toRemove)
		l.Info("remove entries", "files", files, "folders", folders)
		if err := p.work.Remove(relPaths(p.plan.toRemove), true, true); err != nil {
			return err
		}
	}
	return nil
}

// materialize creates a folder or copies a file into the work copy.
func (p *Puncher) materialize(entry antglob.Entry) error {
	if entry.Kind == antglob.Folder {
		return p.fs.MkdirAll(p.workPath(entry), 0o755)
	}
	return p.copyEntry(entry)
}

// copyEntry copies the original external content behind a (possibly
// transformed) entry into the work copy, text-aware.
func (p *Puncher) copyEntry(entry antglob.Entry) error {
	original, found := p.plan.originals[entry.RelPath()]
	if !found {
		return fmt.Errorf("no external source for %q", entry.RelPath())
	}
	src := original.AbsolutePath(p.plan.externalRoot)
	dst := p.workPath(entry)
	if p.TextOptions.IsText(entry) {
		return copyTextFile(p.fs, src, dst, p.TextOptions)
	}
	return copyFile(p.fs, src, dst)
}

func (p *Puncher) workPath(entry antglob.Entry) string {
	return entry.AbsolutePath(p.work.Root())
}

func relPaths(entries []antglob.Entry) []string {
	return lo.Map(entries, func(e antglob.Entry, _ int) string { return e.RelPath() })
}

func countKinds(entries []antglob.Entry) (files, folders int) {
	for _, entry := range entries {
		if entry.Kind == antglob.Folder {
			folders++
		} else {
			files++
		}
	}
	return files, folders
}

// dropEntry removes the first entry with the same path from the slice.
func dropEntry(entries []antglob.Entry, target antglob.Entry) []antglob.Entry {
	for i, entry := range entries {
		if slices.Equal(entry.Parts, target.Parts) {
			return append(entries[:i:i], entries[i+1:]...)
		}
	}
	return entries
}
