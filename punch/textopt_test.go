package punch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treepunch/treepunch/antglob"
)

func TestNewlineByName(t *testing.T) {
	for _, name := range []string{"dos", "crlf"} {
		newline, err := NewlineByName(name)
		require.NoError(t, err)
		assert.Equal(t, NewlineDos, newline)
	}
	for _, name := range []string{"unix", "lf"} {
		newline, err := NewlineByName(name)
		require.NoError(t, err)
		assert.Equal(t, NewlineUnix, newline)
	}

	native, err := NewlineByName("native")
	require.NoError(t, err)
	assert.Equal(t, NativeNewline(), native)

	_, err = NewlineByName("mac")
	require.Error(t, err)
}

func TestTextOptions_ConvertedLine(t *testing.T) {
	options, err := NewTextOptions("**/*.txt", NewlineUnix, PreserveTabs, false)
	require.NoError(t, err)

	assert.Equal(t, "hello\n", options.ConvertedLine("hello\r\n"))
	assert.Equal(t, "hello\n", options.ConvertedLine("hello\n"))
	assert.Equal(t, "  indented\n", options.ConvertedLine("  indented"))
	assert.Equal(t, "trailing  \n", options.ConvertedLine("trailing  \r\n"))
}

func TestTextOptions_StripTrailing(t *testing.T) {
	options, err := NewTextOptions("**/*.txt", NewlineDos, PreserveTabs, true)
	require.NoError(t, err)

	assert.Equal(t, "trailing\r\n", options.ConvertedLine("trailing \t \n"))
	assert.Equal(t, "  keep leading\r\n", options.ConvertedLine("  keep leading\n"))
}

func TestTextOptions_TabExpansion(t *testing.T) {
	options, err := NewTextOptions("**/*.txt", NewlineUnix, 4, false)
	require.NoError(t, err)

	assert.Equal(t, "    x\n", options.ConvertedLine("\tx\n"))
	assert.Equal(t, "ab  x\n", options.ConvertedLine("ab\tx\n"))
	assert.Equal(t, "abcd    x\n", options.ConvertedLine("abcd\tx\n"))
}

func TestTextOptions_IsText(t *testing.T) {
	options, err := NewTextOptions("**/*.txt", NewlineUnix, PreserveTabs, false)
	require.NoError(t, err)

	assert.True(t, options.IsText(antglob.Entry{Parts: []string{"sub", "hugo.txt"}}))
	assert.False(t, options.IsText(antglob.Entry{Parts: []string{"hugo.png"}}))

	var none *TextOptions
	assert.False(t, none.IsText(antglob.Entry{Parts: []string{"hugo.txt"}}))
}

func TestNewTextOptions_Validation(t *testing.T) {
	_, err := NewTextOptions("**/*.txt", "\r", PreserveTabs, false)
	require.Error(t, err)

	_, err = NewTextOptions("**/*.txt", NewlineUnix, -1, false)
	require.Error(t, err)
}
