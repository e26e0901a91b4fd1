package query

import (
	"bytes"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cboxdoerfer/fsearch-sub000/internal/indexarray"
	"github.com/cboxdoerfer/fsearch-sub000/internal/indextree"
	"github.com/cboxdoerfer/fsearch-sub000/internal/pool"
)

// MaxWorkers bounds the engine's thread pool, per spec §4.6.
const MaxWorkers = 64

// Engine holds a fixed worker count, set once at construction. Each Run
// starts one goroutine per partition (at most that many) and waits for
// them all; no goroutines persist between runs.
type Engine struct {
	workers int
}

// New creates an Engine sized min(runtime.NumCPU(), MaxWorkers), or an
// explicit worker count when workers > 0.
func New(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	if workers < 1 {
		workers = 1
	}
	return &Engine{workers: workers}
}

// workerRange is a contiguous slice of an Array assigned to one worker.
type workerRange struct {
	start, end int // [start, end)
}

func partition(total, workers int) []workerRange {
	if workers > total {
		workers = total
	}
	if workers < 1 {
		return nil
	}
	ranges := make([]workerRange, 0, workers)
	base := total / workers
	rem := total % workers
	start := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < rem {
			size++
		}
		ranges = append(ranges, workerRange{start: start, end: start + size})
		start += size
	}
	return ranges
}

// Run executes q against arr. cancelled is polled by every worker at each
// candidate entry and may be set concurrently by a coordinator that wants
// to abort this run early; Run returns (nil, false) if cancellation was
// observed before the merge step completed, per spec §4.6/§5.
func (e *Engine) Run(q *Query, arr *indexarray.Array, cancelled *atomic.Bool) (*Result, bool) {
	if len(q.Tokens) == 0 && q.PassOnEmpty {
		return e.runEmptyFastPath(q, arr, cancelled)
	}
	if len(q.Tokens) == 0 && !q.PassOnEmpty {
		return &Result{Query: q}, true
	}

	ranges := partition(arr.Len(), e.workers)
	refs := arr.Slice()

	type workerOut struct {
		matches    []indexarray.Ref
		numFolders int
		numFiles   int
	}
	outs := make([]workerOut, len(ranges))

	var wg sync.WaitGroup
	for i, rg := range ranges {
		wg.Add(1)
		go func(i int, rg workerRange) {
			defer wg.Done()
			buf := new(bytes.Buffer)
			localCap := rg.end - rg.start + 1
			matches := make([]indexarray.Ref, 0, localCap)
			folders, files := 0, 0

			for idx := rg.start; idx < rg.end; idx++ {
				if cancelled.Load() {
					return
				}
				ref := refs[idx]
				if !matchEntry(ref, q, buf) {
					continue
				}
				matches = append(matches, ref)
				if ref.Pool.Get(ref.Node).IsDir {
					folders++
				} else {
					files++
				}
				// Coarse early-exit: once this worker alone has banked
				// as many matches as the whole query's cap, there's no point
				// continuing to scan its range — the merge step still
				// enforces the exact cap in thread-index order.
				if q.MaxResults > 0 && len(matches) >= q.MaxResults {
					break
				}
			}
			outs[i] = workerOut{matches: matches, numFolders: folders, numFiles: files}
		}(i, rg)
	}
	wg.Wait()

	if cancelled.Load() {
		return nil, false
	}

	result := &Result{Query: q}
	for _, o := range outs {
		result.Matches = append(result.Matches, o.matches...)
		result.NumFolders += o.numFolders
		result.NumFiles += o.numFiles
	}
	if q.MaxResults > 0 && len(result.Matches) > q.MaxResults {
		trimmed := result.Matches[:q.MaxResults]
		result.NumFolders, result.NumFiles = 0, 0
		for _, ref := range trimmed {
			if ref.Pool.Get(ref.Node).IsDir {
				result.NumFolders++
			} else {
				result.NumFiles++
			}
		}
		result.Matches = trimmed
	}
	return result, true
}

// runEmptyFastPath implements spec §4.6's single linear scan for an empty
// query text with PassOnEmpty set: no tokenization, no worker fan-out.
func (e *Engine) runEmptyFastPath(q *Query, arr *indexarray.Array, cancelled *atomic.Bool) (*Result, bool) {
	result := &Result{Query: q}
	refs := arr.Slice()
	for _, ref := range refs {
		if cancelled.Load() {
			return nil, false
		}
		if !passesFilter(ref, q.Filter, nil) {
			continue
		}
		result.Matches = append(result.Matches, ref)
		if ref.Pool.Get(ref.Node).IsDir {
			result.NumFolders++
		} else {
			result.NumFiles++
		}
		if q.MaxResults > 0 && len(result.Matches) >= q.MaxResults {
			break
		}
	}
	return result, true
}

// matchEntry applies the filter pass then the token pass to one
// candidate entry, per spec §4.6.
func matchEntry(ref indexarray.Ref, q *Query, pathBuf *bytes.Buffer) bool {
	if !passesFilter(ref, q.Filter, pathBuf) {
		return false
	}
	e := ref.Pool.Get(ref.Node)
	for i := range q.Tokens {
		tok := &q.Tokens[i]
		haystack := haystackFor(ref, e, tok, q.Flags, pathBuf)
		if !tok.Match(haystack) {
			return false
		}
	}
	return true
}

func passesFilter(ref indexarray.Ref, f *Filter, pathBuf *bytes.Buffer) bool {
	if f == nil {
		return true
	}
	e := ref.Pool.Get(ref.Node)
	switch f.Kind {
	case FilterFilesOnly:
		if e.IsDir {
			return false
		}
	case FilterFoldersOnly:
		if !e.IsDir {
			return false
		}
	}
	if len(f.Tokens) == 0 {
		return true
	}
	var haystack []byte
	if f.SearchInPath {
		if pathBuf == nil {
			pathBuf = new(bytes.Buffer)
		}
		indextree.BuildFullPathInto(ref.Pool, ref.Node, pathBuf)
		haystack = pathBuf.Bytes()
	} else {
		haystack = e.Name
	}
	for _, tok := range f.Tokens {
		if !tok.Match(haystack) {
			return false
		}
	}
	return true
}

// haystackFor chooses the per-token haystack per spec §4.6: the full path
// if search-in-path is globally on, or auto-search-in-path is on and this
// token has a path separator; the basename otherwise.
func haystackFor(ref indexarray.Ref, e *pool.Entry, tok *Token, flags Flags, buf *bytes.Buffer) []byte {
	usePath := flags.SearchInPath || (flags.AutoSearchInPath && tok.HasPathSeparator)
	if !usePath {
		return e.Name
	}
	indextree.BuildFullPathInto(ref.Pool, ref.Node, buf)
	// Copy out: buf is reused by the next call in this worker's loop, but
	// a query may have multiple tokens each wanting the full path — build
	// fresh bytes so earlier tokens in the same entry aren't clobbered.
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}
