package punch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrPunchInProgress is returned when Punch is called while another punch is
// still in flight on the same Puncher.
var ErrPunchInProgress = errors.New("another punch is already in flight")

// NameClashError indicates that two distinct external entries collapse to
// the same path under the configured name transformation.
type NameClashError struct {
	First  string
	Second string
	Target string
}

func (e *NameClashError) Error() string {
	return fmt.Sprintf("name clash must be resolved: %q and %q both transform to %q", e.First, e.Second, e.Target)
}

// NameTransformationError indicates that existing work copy entries would
// change their path under the configured name transformation. Violations
// maps each existing path to the path it would be transformed to.
type NameTransformationError struct {
	Violations map[string]string
}

func (e *NameTransformationError) Error() string {
	paths := make([]string, 0, len(e.Violations))
	for existing := range e.Violations {
		paths = append(paths, existing)
	}
	sort.Strings(paths)
	return fmt.Sprintf("name transformation must not change existing work copy entries: %s", strings.Join(paths, ", "))
}

// WorkOnlyViolationError indicates that an entry matching the work-only
// pattern was found in the external tree. Work-only entries, such as helper
// scripts, must exist solely in the work copy.
type WorkOnlyViolationError struct {
	Path string
}

func (e *WorkOnlyViolationError) Error() string {
	return fmt.Sprintf("entry in external folder must exist only in work copy: %q", e.Path)
}
