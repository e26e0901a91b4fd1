package query

import "github.com/cboxdoerfer/fsearch-sub000/internal/indexarray"

// FilterKind enumerates the coarse pre-match rule a Filter applies (spec
// §3).
type FilterKind int

const (
	FilterAny FilterKind = iota
	FilterFilesOnly
	FilterFoldersOnly
	FilterWithQuery
)

// Filter is a coarse pre-match rule: a Kind plus, for FilterWithQuery, its
// own compiled sub-tokens and haystack choice.
type Filter struct {
	Kind         FilterKind
	Tokens       []Token
	SearchInPath bool
}

// Query is a compiled search request: text, flags, optional filter, a
// result-size cap, and the two observer callbacks (spec §3, §6.4).
type Query struct {
	Text   string
	Tokens []Token
	Flags  Flags
	Filter *Filter

	// MaxResults caps the number of matches returned; 0 means unlimited.
	MaxResults int

	// PassOnEmpty: if Text tokenizes to nothing and this is true, Run
	// produces the first MaxResults filter-passing entries with no
	// tokenization/fan-out (spec §4.6's empty-query fast path).
	PassOnEmpty bool

	OnResult    func(*Result)
	OnCancelled func()
}

// NewQuery compiles text into a Query. filter, if non-nil, is used as-is:
// its Tokens (for FilterWithQuery) must already be compiled by the caller
// via Compile, the same way text is compiled here — NewQuery only owns
// the main query text's compilation.
func NewQuery(text string, flags Flags, filter *Filter, maxResults int, passOnEmpty bool) (*Query, error) {
	tokens, err := Compile(text, flags)
	if err != nil {
		return nil, err
	}
	return &Query{
		Text:        text,
		Tokens:      tokens,
		Flags:       flags,
		Filter:      filter,
		MaxResults:  maxResults,
		PassOnEmpty: passOnEmpty,
	}, nil
}

// Result is the outcome of running a Query against an index array.
type Result struct {
	Matches    []indexarray.Ref
	NumFolders int
	NumFiles   int
	Query      *Query
}
