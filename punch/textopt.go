package punch

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/treepunch/treepunch/antglob"
)

// Newline sequences for converted text files.
const (
	NewlineDos  = "\r\n"
	NewlineUnix = "\n"
)

// NativeNewline returns the newline sequence of the current platform.
func NativeNewline() string {
	if runtime.GOOS == "windows" {
		return NewlineDos
	}
	return NewlineUnix
}

// NewlineByName resolves a newline mode name: "native", "dos"/"crlf" or
// "unix"/"lf".
func NewlineByName(name string) (string, error) {
	switch name {
	case "native":
		return NativeNewline(), nil
	case "dos", "crlf":
		return NewlineDos, nil
	case "unix", "lf":
		return NewlineUnix, nil
	}
	return "", fmt.Errorf("newline is %q but must be one of: crlf, dos, lf, native, unix", name)
}

// PreserveTabs is the tab size indicating that tabs should be kept as-is.
const PreserveTabs = 0

// TextOptions decides which entries are text files and how their lines are
// normalized when copied.
type TextOptions struct {
	patterns   *antglob.PatternSet
	newline    string
	tabSize    int
	stripChars string
}

// NewTextOptions builds TextOptions. patternText selects which entries count
// as text (empty means none). newline is the line terminator to write,
// tabSize the column width for tab expansion (PreserveTabs keeps tabs) and
// stripTrailing additionally removes trailing tabs and spaces.
func NewTextOptions(patternText, newline string, tabSize int, stripTrailing bool) (*TextOptions, error) {
	if newline != NewlineDos && newline != NewlineUnix {
		return nil, fmt.Errorf("newline must be %q or %q but is %q", NewlineDos, NewlineUnix, newline)
	}
	if tabSize < PreserveTabs {
		return nil, fmt.Errorf("tab size is %d but must be at least %d", tabSize, PreserveTabs)
	}
	options := &TextOptions{
		newline:    newline,
		tabSize:    tabSize,
		stripChars: "\n\r",
	}
	if stripTrailing {
		options.stripChars += "\t "
	}
	if patternText != "" {
		options.patterns = antglob.NewPatternSet(true)
		if err := options.patterns.Include(patternText); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// IsText reports whether the entry is a text file. Without a text pattern
// set, nothing is text. Safe to call on a nil receiver.
func (o *TextOptions) IsText(entry antglob.Entry) bool {
	if o == nil || o.patterns == nil {
		return false
	}
	return o.patterns.MatchParts(entry.Parts)
}

// ConvertedLine normalizes one line: trailing newline characters (and, when
// configured, trailing whitespace) are stripped, tabs are expanded, and the
// configured newline sequence is appended.
func (o *TextOptions) ConvertedLine(line string) string {
	result := strings.TrimRight(line, o.stripChars)
	if o.tabSize != PreserveTabs {
		result = expandTabs(result, o.tabSize)
	}
	return result + o.newline
}

// expandTabs replaces tabs with spaces up to the next multiple of tabSize
// columns. The column count restarts after embedded newline characters.
func expandTabs(text string, tabSize int) string {
	if !strings.ContainsRune(text, '\t') {
		return text
	}
	var b strings.Builder
	column := 0
	for _, r := range text {
		switch r {
		case '\t':
			pad := tabSize - column%tabSize
			b.WriteString(strings.Repeat(" ", pad))
			column += pad
		case '\n', '\r':
			b.WriteRune(r)
			column = 0
		default:
			b.WriteRune(r)
			column++
		}
	}
	return b.String()
}
