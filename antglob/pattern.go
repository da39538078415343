// Package antglob implements ant-style pattern matching and globbing over
// hierarchical paths, with support for the multi-level "**" wildcard.
//
// Pattern syntax:
//
//   - "/" or "\" separate path segments; "\" is unified to "/".
//   - "*" matches any run of characters within one segment.
//   - "?" matches any single character.
//   - "[seq]" matches any character in seq, "[!seq]" any character not in seq.
//   - "**" matches zero or more whole segments.
//   - A pattern ending in a separator gets "**" appended, meaning everything
//     under that folder.
package antglob

import (
	"fmt"
	"regexp"
	"strings"
)

const allMagic = "**"

// ItemKind classifies one pattern segment.
type ItemKind int

const (
	// One matches a single segment by exact equality.
	One ItemKind = iota
	// Many matches a single segment by shell-style wildcards.
	Many
	// All matches zero or more whole segments.
	All
)

func (k ItemKind) String() string {
	switch k {
	case One:
		return "one"
	case Many:
		return "many"
	case All:
		return "all"
	}
	return fmt.Sprintf("ItemKind(%d)", int(k))
}

// PatternItem matches a single segment of a path. Immutable after
// construction.
type PatternItem struct {
	Kind ItemKind
	Text string
	re   *regexp.Regexp
}

func newPatternItem(text string) PatternItem {
	switch {
	case text == allMagic:
		return PatternItem{Kind: All, Text: text}
	case strings.ContainsAny(text, "*?["):
		return PatternItem{Kind: Many, Text: text, re: regexp.MustCompile(translateGlob(text))}
	default:
		return PatternItem{Kind: One, Text: text}
	}
}

// Match reports whether a single path segment satisfies this item.
func (it PatternItem) Match(segment string) bool {
	switch it.Kind {
	case All:
		return true
	case Many:
		return it.re.MatchString(segment)
	default:
		return it.Text == segment
	}
}

// translateGlob converts a shell-style wildcard segment into an anchored
// regular expression supporting "*", "?", "[seq]" and "[!seq]".
func translateGlob(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); {
		c := pattern[i]
		i++
		switch c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i
			if j < len(pattern) && pattern[j] == '!' {
				j++
			}
			if j < len(pattern) && pattern[j] == ']' {
				j++
			}
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j >= len(pattern) {
				// Unterminated class matches a literal bracket.
				b.WriteString(`\[`)
			} else {
				inner := strings.ReplaceAll(pattern[i:j], `\`, `\\`)
				b.WriteByte('[')
				switch {
				case strings.HasPrefix(inner, "!"):
					b.WriteByte('^')
					b.WriteString(inner[1:])
				case strings.HasPrefix(inner, "^"):
					b.WriteString(`\^`)
					b.WriteString(inner[1:])
				default:
					b.WriteString(inner)
				}
				b.WriteByte(']')
				i = j + 1
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return b.String()
}

// Pattern is a compiled ant-style pattern: an ordered sequence of segment
// matchers. Stateless after construction.
type Pattern struct {
	Items []PatternItem
	text  string
}

// NewPattern compiles a single pattern string. A pattern containing two
// consecutive "**" segments is rejected; collapse them first.
func NewPattern(text string) (*Pattern, error) {
	segments := SplitPath(text, true)
	items := make([]PatternItem, 0, len(segments))
	for _, segment := range segments {
		items = append(items, newPatternItem(segment))
	}
	for i := 1; i < len(items); i++ {
		if items[i].Kind == All && items[i-1].Kind == All {
			return nil, fmt.Errorf("pattern %q: consecutive %q segments must be collapsed into one", text, allMagic)
		}
	}
	return &Pattern{Items: items, text: text}, nil
}

func (p *Pattern) String() string {
	return p.text
}

// Match reports whether the given slash- or backslash-separated path
// satisfies the pattern.
func (p *Pattern) Match(path string) bool {
	return p.MatchParts(SplitPath(path, false))
}

// MatchParts reports whether the given path segments satisfy the pattern.
func (p *Pattern) MatchParts(parts []string) bool {
	return matchSegments(parts, p.Items)
}

// matchSegments is the core matcher. It consumes literal and wildcard items
// iteratively and handles each "**" by locating the leftmost span of text
// segments that satisfies the sub-pattern up to the next "**" (or, for a
// trailing sub-pattern, the equal-length suffix of the text).
func matchSegments(text []string, items []PatternItem) bool {
	for {
		if len(items) == 0 {
			return len(text) == 0
		}
		if len(text) == 0 {
			// A pattern remains but no text: only a single trailing "**",
			// lone "*" or empty literal segment can still match.
			if len(items) != 1 {
				return false
			}
			switch items[0].Kind {
			case All:
				return true
			case Many:
				return items[0].Text == "*"
			default:
				return items[0].Text == ""
			}
		}

		first := items[0]
		if first.Kind != All {
			if !first.Match(text[0]) {
				return false
			}
			text, items = text[1:], items[1:]
			continue
		}

		// "**" at the end consumes everything.
		if len(items) == 1 {
			return true
		}

		next := nextAllIndex(items)
		if next < 0 {
			// Last "**": the rest of the pattern must match the
			// equal-length suffix of the text.
			tail := items[1:]
			if len(text) < len(tail) {
				return false
			}
			text, items = text[len(text)-len(tail):], tail
			continue
		}

		// Another "**" follows: find the leftmost span of text segments
		// matching the items strictly between the two "**".
		between := items[1:next]
		idx := indexOfMatchingSpan(text, between)
		if idx < 0 {
			return false
		}
		text, items = text[idx+len(between):], items[next:]
	}
}

// nextAllIndex returns the index of the next All item after items[0], or -1.
func nextAllIndex(items []PatternItem) int {
	for i := 1; i < len(items); i++ {
		if items[i].Kind == All {
			return i
		}
	}
	return -1
}

// indexOfMatchingSpan returns the first index in text where a span of
// len(items) segments matches items element-wise, or -1.
func indexOfMatchingSpan(text []string, items []PatternItem) int {
	for i := 0; i+len(items) <= len(text); i++ {
		if spanMatches(text[i:i+len(items)], items) {
			return i
		}
	}
	return -1
}

func spanMatches(text []string, items []PatternItem) bool {
	for i, it := range items {
		if !it.Match(text[i]) {
			return false
		}
	}
	return true
}

// SplitPath splits a path or pattern into segments, unifying "\" to "/" and
// dropping empty segments. When isPattern is true and the text ends in a
// separator, "**" is appended so that everything under the folder matches.
func SplitPath(text string, isPattern bool) []string {
	text = strings.ReplaceAll(text, `\`, "/")
	if isPattern && strings.HasSuffix(text, "/") {
		text += allMagic
	}
	var parts []string
	for _, part := range strings.Split(text, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
