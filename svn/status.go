package svn

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Status is the state of one work copy path as reported by svn status.
type Status string

const (
	StatusAdded       Status = "added"
	StatusConflicted  Status = "conflicted"
	StatusExternal    Status = "external"
	StatusIgnored     Status = "ignored"
	StatusIncomplete  Status = "incomplete"
	StatusMerged      Status = "merged"
	StatusMissing     Status = "missing"
	StatusModified    Status = "modified"
	StatusNone        Status = "none"
	StatusNormal      Status = "normal"
	StatusObstructed  Status = "obstructed"
	StatusRemoved     Status = "deleted"
	StatusReplaced    Status = "replaced"
	StatusUnversioned Status = "unversioned"
)

// IsClean reports whether the status requires no attention before a punch.
func (s Status) IsClean() bool {
	switch s {
	case StatusExternal, StatusIgnored, StatusNone, StatusNormal:
		return true
	}
	return false
}

// IsModified reports whether the path carries a local edit that a commit
// would pick up. Unversioned and ignored paths are not modifications.
func (s Status) IsModified() bool {
	switch s {
	case StatusAdded, StatusConflicted, StatusIncomplete, StatusMerged, StatusMissing,
		StatusModified, StatusObstructed, StatusRemoved, StatusReplaced:
		return true
	}
	return false
}

// IsResettable reports whether a revert restores the path to a clean state.
// Unversioned and ignored paths need a purge instead.
func (s Status) IsResettable() bool {
	switch s {
	case StatusAdded, StatusConflicted, StatusMerged, StatusModified, StatusRemoved, StatusReplaced:
		return true
	}
	return false
}

// PathStatus pairs a work copy path with its item and property status.
type PathStatus struct {
	Path  string
	Item  Status
	Props Status
}

// IsClean reports whether both the item and its properties are clean.
func (p PathStatus) IsClean() bool {
	return p.Item.IsClean() && p.Props.IsClean()
}

// PendingChangesError indicates a work copy with local changes that a punch
// would silently fold in or clobber.
type PendingChangesError struct {
	Root    string
	Pending []PathStatus
}

func (e *PendingChangesError) Error() string {
	paths := make([]string, 0, len(e.Pending))
	for _, status := range e.Pending {
		paths = append(paths, fmt.Sprintf("%s (%s)", status.Path, status.Item))
	}
	return fmt.Sprintf("work copy %q must not have pending changes: %s", e.Root, strings.Join(paths, ", "))
}

// XML layout of "svn status --xml" output.
type statusXML struct {
	Targets []struct {
		Path    string `xml:"path,attr"`
		Entries []struct {
			Path     string `xml:"path,attr"`
			WcStatus struct {
				Item  string `xml:"item,attr"`
				Props string `xml:"props,attr"`
			} `xml:"wc-status"`
		} `xml:"entry"`
	} `xml:"target"`
}

// parseStatus decodes svn status --xml output into path statuses.
func parseStatus(lines []string) ([]PathStatus, error) {
	var doc statusXML
	if err := xml.Unmarshal([]byte(strings.Join(lines, "\n")), &doc); err != nil {
		return nil, fmt.Errorf("parse status xml: %w", err)
	}
	var result []PathStatus
	for _, target := range doc.Targets {
		for _, entry := range target.Entries {
			result = append(result, PathStatus{
				Path:  entry.Path,
				Item:  Status(entry.WcStatus.Item),
				Props: Status(entry.WcStatus.Props),
			})
		}
	}
	return result, nil
}
