package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeSplitsOnWhitespace(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, Tokenize("foo bar"))
}

func TestTokenizeQuotedSpanKeepsSpaces(t *testing.T) {
	assert.Equal(t, []string{"foo bar", "baz"}, Tokenize(`"foo bar" baz`))
}

func TestTokenizeBackslashEscapesNextByte(t *testing.T) {
	assert.Equal(t, []string{"a b"}, Tokenize(`a\ b`))
}

func TestCompilePlainCaseInsensitiveByDefault(t *testing.T) {
	toks, err := Compile("HELLO", Flags{})
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, PlainCaseInsensitive, toks[0].Matcher)
	assert.True(t, toks[0].Match([]byte("say hello world")))
}

func TestCompileAutoMatchCasePromotesUppercaseToken(t *testing.T) {
	toks, err := Compile("Hello", Flags{AutoMatchCase: true})
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, PlainCaseSensitive, toks[0].Matcher)
	assert.False(t, toks[0].Match([]byte("hello world")))
	assert.True(t, toks[0].Match([]byte("Hello world")))
}

func TestCompileWildcardToken(t *testing.T) {
	toks, err := Compile("*.txt", Flags{})
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.True(t, toks[0].Match([]byte("notes.txt")))
	assert.False(t, toks[0].Match([]byte("notes.md")))
}

func TestCompileRegexPromotionOnMetaCharacter(t *testing.T) {
	toks, err := Compile("^foo.*bar$", Flags{EnableRegex: true})
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, Regex, toks[0].Matcher)
	assert.True(t, toks[0].Match([]byte("foobazbar")))
}

func TestCompileRegexBadPatternReturnsError(t *testing.T) {
	_, err := Compile("(unclosed", Flags{EnableRegex: true})
	require.Error(t, err)
	var bad *BadPatternError
	assert.ErrorAs(t, err, &bad)
}

func TestCompileUnicodeTokenUsesFoldMatcher(t *testing.T) {
	toks, err := Compile("café", Flags{})
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, PlainCaseInsensitiveUnicode, toks[0].Matcher)
	assert.True(t, toks[0].Match([]byte("CAFÉ menu")))
}

func TestTokenHasPathSeparatorReflectsSlash(t *testing.T) {
	toks, err := Compile("a/b", Flags{})
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.True(t, toks[0].HasPathSeparator)
}
