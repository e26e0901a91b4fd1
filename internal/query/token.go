// Package query implements tokenization, compiled matchers and the
// parallel, worker-pool query engine described in fsearch's core design.
//
// The worker fan-out is grounded on the teacher's analyze.Scanner
// (bounded-concurrency fan-out via goroutines + sync.WaitGroup); result
// bounding is a plain per-partition match-count cap, enforced exactly at
// merge time — see engine.go.
package query

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// MatcherKind enumerates the compiled matcher variants from spec §3/§4.6.
type MatcherKind int

const (
	PlainCaseSensitive MatcherKind = iota
	PlainCaseInsensitive
	PlainCaseInsensitiveUnicode
	Wildcard
	WildcardCaseInsensitive
	Regex
)

// Token is one compiled query sub-pattern.
type Token struct {
	Text             string
	HasPathSeparator bool
	Matcher          MatcherKind

	wildcard *wildcardPattern
	regex    *regexp2.Regexp
}

// regexMetaChars is the set of characters that, when enable_regex is on
// and any appear in the raw query text, promote the whole query to a
// single regex token (spec §4.6).
const regexMetaChars = `${()*+.?[\^{|}`

// Flags mirrors the Query-level flags that influence tokenization and
// compilation (spec §3).
type Flags struct {
	MatchCase        bool
	AutoMatchCase    bool
	EnableRegex      bool
	SearchInPath     bool
	AutoSearchInPath bool
}

// Tokenize splits text into whitespace/quote-delimited sub-strings per
// spec §4.6: a run of whitespace separates tokens, a double quote opens a
// verbatim span in which only backslash escapes, and a bare backslash
// outside quotes escapes the next byte.
func Tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	haveCur := false

	flush := func() {
		if haveCur {
			tokens = append(tokens, cur.String())
			cur.Reset()
			haveCur = false
		}
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes):
			cur.WriteRune(runes[i+1])
			haveCur = true
			i++
		case r == '"':
			inQuote = !inQuote
			haveCur = true
		case !inQuote && isSpace(r):
			flush()
		default:
			cur.WriteRune(r)
			haveCur = true
		}
	}
	flush()
	return tokens
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

// Compile builds the Token list for a raw query string under flags. An
// empty token list means "empty query".
func Compile(text string, flags Flags) ([]Token, error) {
	if flags.EnableRegex && strings.ContainsAny(text, regexMetaChars) {
		tok, err := compileRegexToken(text, flags)
		if err != nil {
			return nil, err
		}
		return []Token{tok}, nil
	}

	raw := Tokenize(text)
	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		tok, err := compilePlainToken(t, flags)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func compileRegexToken(pattern string, flags Flags) (Token, error) {
	opts := regexp2.None
	if !caseSensitiveFor(pattern, flags) {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return Token{}, &BadPatternError{Pattern: pattern, Err: err}
	}
	return Token{
		Text:             pattern,
		HasPathSeparator: strings.Contains(pattern, "/"),
		Matcher:          Regex,
		regex:            re,
	}, nil
}

func compilePlainToken(text string, flags Flags) (Token, error) {
	hasPathSep := strings.Contains(text, "/")
	caseSensitive := caseSensitiveFor(text, flags)

	if strings.ContainsAny(text, "*?") {
		pat, err := compileWildcard(text)
		if err != nil {
			return Token{}, &BadPatternError{Pattern: text, Err: err}
		}
		kind := WildcardCaseInsensitive
		if caseSensitive {
			kind = Wildcard
		}
		return Token{
			Text:             text,
			HasPathSeparator: hasPathSep,
			Matcher:          kind,
			wildcard:         pat,
		}, nil
	}

	kind := PlainCaseInsensitive
	if caseSensitive {
		kind = PlainCaseSensitive
	} else if !isASCII(text) {
		kind = PlainCaseInsensitiveUnicode
	}
	return Token{
		Text:             text,
		HasPathSeparator: hasPathSep,
		Matcher:          kind,
	}, nil
}

// caseSensitiveFor implements the auto-case-sensitivity rule: if
// AutoMatchCase is on and the token contains any uppercase rune, the
// token compiles case-sensitive regardless of MatchCase; otherwise it
// respects MatchCase.
func caseSensitiveFor(text string, flags Flags) bool {
	if flags.AutoMatchCase {
		for _, r := range text {
			if unicode.IsUpper(r) {
				return true
			}
		}
	}
	return flags.MatchCase
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// BadPatternError reports a wildcard/regex compile failure (spec §7).
// Compile and NewQuery return it as their error; no Query is built for
// text that fails to compile.
type BadPatternError struct {
	Pattern string
	Err     error
}

func (e *BadPatternError) Error() string {
	return "bad pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *BadPatternError) Unwrap() error { return e.Err }

// Match reports whether haystack satisfies the token, dispatching to the
// compiled matcher. haystack is chosen by the caller per §4.6's haystack
// rule (basename or full path, per-token).
func (t *Token) Match(haystack []byte) bool {
	switch t.Matcher {
	case PlainCaseSensitive:
		return bytes.Contains(haystack, []byte(t.Text))
	case PlainCaseInsensitive:
		return bytes.Contains(bytes.ToLower(haystack), bytes.ToLower([]byte(t.Text)))
	case PlainCaseInsensitiveUnicode:
		return matchUnicodeFold(haystack, t.Text)
	case Wildcard, WildcardCaseInsensitive:
		return t.wildcard.match(haystack, t.Matcher == WildcardCaseInsensitive)
	case Regex:
		ok, _ := t.regex.MatchString(string(haystack))
		return ok
	default:
		return false
	}
}
