package antglob

import "strings"

// DefaultExcludes lists patterns excluded by default, similar to ant 1.8.2:
// SCM bookkeeping, editor backups and OS metadata files.
var DefaultExcludes = []string{
	"**/*~",
	"**/#*#",
	"**/.#*",
	"**/%*%",
	"**/._*",
	"**/CVS",
	"**/CVS/**",
	"**/.cvsignore",
	"**/SCCS",
	"**/SCCS/**",
	"**/vssver.scc",
	"**/.svn",
	"**/.svn/**",
	"**/.DS_Store",
	"**/.git",
	"**/.git/**",
	"**/.gitattributes",
	"**/.gitignore",
	"**/.gitmodules",
	"**/.hg",
	"**/.hg/**",
	"**/.hgignore",
	"**/.hgsub",
	"**/.hgsubstate",
	"**/.hgtags",
	"**/.bzr",
	"**/.bzr/**",
	"**/.bzrignore",
}

// ParseList compiles a pattern list separated by commas or, if no comma is
// present, by blanks.
func ParseList(text string) ([]*Pattern, error) {
	var texts []string
	if strings.Contains(text, ",") {
		for _, part := range strings.Split(text, ",") {
			texts = append(texts, strings.TrimSpace(part))
		}
	} else {
		texts = strings.Fields(text)
	}
	patterns := make([]*Pattern, 0, len(texts))
	for _, t := range texts {
		pattern, err := NewPattern(t)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

// PatternSet decides membership for a path using ordered include and exclude
// pattern lists. With no include patterns, everything is included. Constructed
// once, then used read-only.
type PatternSet struct {
	includes []*Pattern
	excludes []*Pattern
}

// NewPatternSet creates a pattern set that includes everything. With
// useDefaultExcludes, the excludes are seeded with DefaultExcludes.
func NewPatternSet(useDefaultExcludes bool) *PatternSet {
	s := &PatternSet{}
	if useDefaultExcludes {
		for _, text := range DefaultExcludes {
			pattern, err := NewPattern(text)
			if err != nil {
				// The built-in list is known to compile.
				panic(err)
			}
			s.excludes = append(s.excludes, pattern)
		}
	}
	return s
}

// Include adds one or more include patterns from a comma- or blank-separated
// list.
func (s *PatternSet) Include(text string) error {
	patterns, err := ParseList(text)
	if err != nil {
		return err
	}
	s.includes = append(s.includes, patterns...)
	return nil
}

// Exclude adds one or more exclude patterns from a comma- or blank-separated
// list.
func (s *PatternSet) Exclude(text string) error {
	patterns, err := ParseList(text)
	if err != nil {
		return err
	}
	s.excludes = append(s.excludes, patterns...)
	return nil
}

// Match reports whether the given path belongs to the set.
func (s *PatternSet) Match(path string) bool {
	return s.MatchParts(SplitPath(path, false))
}

// MatchParts reports whether the given path segments belong to the set:
// included (or includes empty) and not excluded.
func (s *PatternSet) MatchParts(parts []string) bool {
	if len(s.includes) > 0 && !matchAny(parts, s.includes) {
		return false
	}
	return !(len(s.excludes) > 0 && matchAny(parts, s.excludes))
}

func matchAny(parts []string, patterns []*Pattern) bool {
	for _, pattern := range patterns {
		if pattern.MatchParts(parts) {
			return true
		}
	}
	return false
}
