// Package indexarray implements the flat, sorted projection over every
// per-root tree that the query engine scans. It is a thin typed wrapper
// around a slice plus a natural-order comparator, grounded on the same
// sort.Slice-then-walk-back pattern the teacher's analyze.Scanner uses to
// sort DirEntry.Children by size after a scan completes.
package indexarray

import (
	"sort"

	"github.com/cboxdoerfer/fsearch-sub000/internal/pool"
)

// Ref is one slot of the array: the pool an entry lives in plus its
// NodeID. The array spans every per-root tree, so each slot must carry its
// own pool reference.
type Ref struct {
	Pool *pool.Pool
	Node pool.NodeID
}

// Array is a flat ordered sequence of Refs across all indexed roots.
type Array struct {
	refs []Ref
}

// Build allocates an Array with the given capacity and zero length.
func Build(capacity int) *Array {
	return &Array{refs: make([]Ref, 0, capacity)}
}

// Append adds ref at the end.
func (a *Array) Append(ref Ref) {
	a.refs = append(a.refs, ref)
}

// InsertAt places ref at index i. The caller must ensure i is within
// capacity and that it isn't overwriting a slot still needed elsewhere.
func (a *Array) InsertAt(i int, ref Ref) {
	if i == len(a.refs) {
		a.refs = append(a.refs, ref)
		return
	}
	a.refs[i] = ref
}

// Resize grows the array's length to n, within its existing capacity, so
// that InsertAt can place entries at arbitrary indices up front — used by
// the incremental "place each entry at its already-known position"
// rebuild path, which never appends in order the way a fresh build does.
func (a *Array) Resize(n int) {
	a.refs = a.refs[:n]
}

// Get returns the Ref at index i.
func (a *Array) Get(i int) Ref { return a.refs[i] }

// Len returns the number of Refs.
func (a *Array) Len() int { return len(a.refs) }

// Slice exposes the underlying backing slice for the query engine's
// worker-range partitioning. Callers must not grow it.
func (a *Array) Slice() []Ref { return a.refs }

// Less is the comparator signature used by Sort and SortWith.
type Less func(a, b Ref) bool

// Sort stably reorders the array using compare.
func (a *Array) Sort(compare Less) {
	sort.SliceStable(a.refs, func(i, j int) bool {
		return compare(a.refs[i], a.refs[j])
	})
}

// CtxLess is the comparator signature used by SortWith, carrying an opaque
// context so a caller can pass state to the comparator without a
// closure-captured mutable global.
type CtxLess func(a, b Ref, ctx any) bool

// SortWith stably reorders the array using compare and ctx.
func (a *Array) SortWith(compare CtxLess, ctx any) {
	sort.SliceStable(a.refs, func(i, j int) bool {
		return compare(a.refs[i], a.refs[j], ctx)
	})
}

// WriteBackPositions iterates the (now sorted) array and writes i into
// each entry's Pos field — the only link from a sorted position back to
// its entry, consumed by the query engine's result-assembly step.
func (a *Array) WriteBackPositions() {
	for i, ref := range a.refs {
		ref.Pool.Get(ref.Node).Pos = uint32(i)
	}
}

// BinarySearch looks for key among the (sorted) refs using compare, which
// must return <0, 0, >0 the way sort.Search's comparator does but framed
// as a three-way compare against a Ref at index i. It returns the matching
// index and true, or (0, false) if key isn't present.
func (a *Array) BinarySearch(key any, compare func(key any, ref Ref, ctx any) int, ctx any) (int, bool) {
	lo, hi := 0, len(a.refs)
	for lo < hi {
		mid := (lo + hi) / 2
		c := compare(key, a.refs[mid], ctx)
		switch {
		case c == 0:
			return mid, true
		case c < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return 0, false
}

// NaturalCompare implements case-preserving, numeric-aware ("file2" <
// "file10") byte-string comparison. No natural-sort library appears
// anywhere in the retrieval pack, so this is hand-written against the
// standard library only.
func NaturalCompare(a, b []byte) int {
	i, j := 0, 0
	tie := 0 // first leading-zero difference, used only if all else is equal
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			// Compare the full run of digits numerically, ignoring
			// leading zeros, so "file02" == "file2" in magnitude but the
			// shorter/no-leading-zero run sorts first on a tie.
			starti, startj := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na := trimLeadingZeros(a[starti:i])
			nb := trimLeadingZeros(b[startj:j])
			if len(na) != len(nb) {
				if len(na) < len(nb) {
					return -1
				}
				return 1
			}
			for k := range na {
				if na[k] != nb[k] {
					if na[k] < nb[k] {
						return -1
					}
					return 1
				}
			}
			if tie == 0 && i-starti != j-startj {
				tie = 1
				if i-starti < j-startj {
					tie = -1
				}
			}
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	default:
		return tie
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b)-1 && b[i] == '0' {
		i++
	}
	return b[i:]
}

// FoldersFirstNatural is the Less used by Array.Sort to realize the spec's
// sort order: folders before files, then natural order within each class.
func FoldersFirstNatural(a, b Ref) bool {
	ea, eb := a.Pool.Get(a.Node), b.Pool.Get(b.Node)
	if ea.IsDir != eb.IsDir {
		return ea.IsDir
	}
	return NaturalCompare(ea.Name, eb.Name) < 0
}
