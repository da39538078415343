package antglob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern_LiteralSegments(t *testing.T) {
	pattern, err := NewPattern("source/tools/build.xml")
	require.NoError(t, err)

	assert.True(t, pattern.Match("source/tools/build.xml"))
	assert.False(t, pattern.Match("source/tools"))
	assert.False(t, pattern.Match("source/tools/build.xml/extra"))
	assert.False(t, pattern.Match("source/tools/build.XML"))
}

func TestPattern_SegmentWildcards(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		matched bool
	}{
		{"*.txt", "hugo.txt", true},
		{"*.txt", "hugo.png", false},
		{"*.txt", "sub/hugo.txt", false},
		{"hugo.???", "hugo.txt", true},
		{"hugo.???", "hugo.text", false},
		{"hugo.[tp]xt", "hugo.txt", true},
		{"hugo.[tp]xt", "hugo.pxt", true},
		{"hugo.[tp]xt", "hugo.axt", false},
		{"hugo.[!t]xt", "hugo.pxt", true},
		{"hugo.[!t]xt", "hugo.txt", false},
	}
	for _, test := range tests {
		pattern, err := NewPattern(test.pattern)
		require.NoError(t, err)
		assert.Equal(t, test.matched, pattern.Match(test.path), "%s ~ %s", test.pattern, test.path)
	}
}

func TestPattern_AllMatchesEverything(t *testing.T) {
	pattern, err := NewPattern("**")
	require.NoError(t, err)

	assert.True(t, pattern.MatchParts(nil))
	assert.True(t, pattern.Match("hugo.txt"))
	assert.True(t, pattern.Match("deeply/nested/hugo.txt"))
}

func TestPattern_AllWithSuffix(t *testing.T) {
	pattern, err := NewPattern("**/*.txt")
	require.NoError(t, err)

	assert.True(t, pattern.Match("hugo.txt"))
	assert.True(t, pattern.Match("some/folder/hugo.txt"))
	assert.False(t, pattern.Match("hugo.png"))
	assert.False(t, pattern.MatchParts(nil))
}

func TestPattern_AllWithPrefix(t *testing.T) {
	pattern, err := NewPattern("source/**")
	require.NoError(t, err)

	assert.True(t, pattern.Match("source"))
	assert.True(t, pattern.Match("source/hugo.txt"))
	assert.True(t, pattern.Match("source/sub/hugo.txt"))
	assert.False(t, pattern.Match("tools/hugo.txt"))
}

func TestPattern_AllBetweenSegments(t *testing.T) {
	pattern, err := NewPattern("source/**/test/**/*.java")
	require.NoError(t, err)

	assert.True(t, pattern.Match("source/test/HugoTest.java"))
	assert.True(t, pattern.Match("source/a/b/test/c/HugoTest.java"))
	assert.False(t, pattern.Match("source/a/b/c/HugoTest.java"))
	assert.False(t, pattern.Match("source/test/HugoTest.class"))
}

func TestPattern_TrailingSeparatorMeansEverythingBelow(t *testing.T) {
	pattern, err := NewPattern("source/")
	require.NoError(t, err)

	assert.True(t, pattern.Match("source"))
	assert.True(t, pattern.Match("source/sub/hugo.txt"))
	assert.False(t, pattern.Match("tools"))
}

func TestPattern_BackslashSeparators(t *testing.T) {
	pattern, err := NewPattern(`source\tools\*.xml`)
	require.NoError(t, err)

	assert.True(t, pattern.Match("source/tools/build.xml"))
	assert.True(t, pattern.Match(`source\tools\build.xml`))
}

func TestPattern_ConsecutiveAllRejected(t *testing.T) {
	_, err := NewPattern("source/**/**/*.java")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consecutive")
}

func TestPattern_EmptyMatchesOnlyEmpty(t *testing.T) {
	pattern, err := NewPattern("")
	require.NoError(t, err)

	assert.True(t, pattern.MatchParts(nil))
	assert.False(t, pattern.Match("hugo.txt"))
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c.txt"}, SplitPath("a/b/c.txt", false))
	assert.Equal(t, []string{"a", "b"}, SplitPath(`a\b`, false))
	assert.Equal(t, []string{"a", "b"}, SplitPath("a//b/", false))
	assert.Nil(t, SplitPath("", false))

	// Pattern mode appends "**" for a trailing separator.
	assert.Equal(t, []string{"a", "**"}, SplitPath("a/", true))
}

func TestTranslateGlob_UnterminatedClassIsLiteral(t *testing.T) {
	pattern, err := NewPattern("hugo[")
	require.NoError(t, err)
	assert.True(t, pattern.Match("hugo["))
	assert.False(t, pattern.Match("hugox"))
}
