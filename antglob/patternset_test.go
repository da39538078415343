package antglob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseList_CommaSeparated(t *testing.T) {
	patterns, err := ParseList("**/*.txt, **/*.png")
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.True(t, patterns[0].Match("hugo.txt"))
	assert.True(t, patterns[1].Match("sub/hugo.png"))
}

func TestParseList_BlankSeparated(t *testing.T) {
	patterns, err := ParseList("**/*.txt **/*.png")
	require.NoError(t, err)
	assert.Len(t, patterns, 2)
}

func TestPatternSet_EmptyIncludesEverything(t *testing.T) {
	set := NewPatternSet(false)
	assert.True(t, set.Match("anything/at/all.txt"))
}

func TestPatternSet_IncludeAndExclude(t *testing.T) {
	set := NewPatternSet(false)
	require.NoError(t, set.Include("**/*.txt"))
	require.NoError(t, set.Exclude("**/generated/**"))

	assert.True(t, set.Match("docs/readme.txt"))
	assert.False(t, set.Match("docs/readme.png"))
	assert.False(t, set.Match("generated/readme.txt"))
	assert.False(t, set.Match("docs/generated/deep/readme.txt"))
}

func TestPatternSet_DefaultExcludes(t *testing.T) {
	set := NewPatternSet(true)

	assert.True(t, set.Match("hugo.txt"))
	assert.True(t, set.Match("hugo.png"))
	assert.False(t, set.Match("hugo.txt~"))
	assert.False(t, set.Match(".svn"))
	assert.False(t, set.Match("sub/.svn/entries"))
	assert.False(t, set.Match(".DS_Store"))
	assert.False(t, set.Match("sub/.gitignore"))
}

func TestPatternSet_IncludesWithDefaultExcludes(t *testing.T) {
	set := NewPatternSet(true)
	require.NoError(t, set.Include("*.png, *.jpg"))

	assert.True(t, set.Match("hugo.png"))
	assert.True(t, set.Match("hugo.jpg"))
	assert.False(t, set.Match("hugo.txt"))
}

func TestPatternSet_InvalidPatternReported(t *testing.T) {
	set := NewPatternSet(false)
	err := set.Include("a/**/**/b")
	require.Error(t, err)
}
