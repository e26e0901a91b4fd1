// Package indextree implements the per-root tree of filesystem entries
// described in fsearch's core design: a parent/child/sibling tree whose
// nodes live in a pool.Pool and are addressed by pool.NodeID handles rather
// than raw pointers (see pool.Pool's doc comment for why).
package indextree

import (
	"bytes"

	"github.com/cboxdoerfer/fsearch-sub000/internal/pool"
)

// Tree is a single indexed root's tree: a pool owning every node plus the
// NodeID of the root. The root's Parent link is always pool.NilNode.
type Tree struct {
	Pool *pool.Pool
	Root pool.NodeID
}

// New allocates a root node in a fresh pool. name is the root's display
// name: empty string for the filesystem root "/", or the indexed path
// verbatim otherwise (per spec, the root's own name is never split into
// path components).
func New(blockSize int, name []byte) *Tree {
	p := pool.New(blockSize)
	root := p.Alloc()
	e := p.Get(root)
	e.Name = name
	e.IsDir = true
	e.Parent = pool.NilNode
	return &Tree{Pool: p, Root: root}
}

// AppendChild links node as the last child of parent, walking the sibling
// chain to the tail — O(children of parent).
func AppendChild(p *pool.Pool, parent, node pool.NodeID) {
	pe := p.Get(parent)
	ne := p.Get(node)
	ne.Parent = parent
	ne.NextSibling = pool.NilNode
	if pe.FirstChild == pool.NilNode {
		pe.FirstChild = node
		return
	}
	cur := pe.FirstChild
	for {
		ce := p.Get(cur)
		if ce.NextSibling == pool.NilNode {
			ce.NextSibling = node
			return
		}
		cur = ce.NextSibling
	}
}

// PrependChild links node as the first child of parent in O(1), the way
// the scanner does it for speed (insertion order doesn't matter until the
// index array is sorted).
func PrependChild(p *pool.Pool, parent, node pool.NodeID) {
	pe := p.Get(parent)
	ne := p.Get(node)
	ne.Parent = parent
	ne.NextSibling = pe.FirstChild
	pe.FirstChild = node
}

// Unlink detaches node from its parent's child list. O(children of parent)
// in the worst case, since the list is singly linked.
func Unlink(p *pool.Pool, node pool.NodeID) {
	ne := p.Get(node)
	parent := ne.Parent
	if parent == pool.NilNode {
		return
	}
	pe := p.Get(parent)
	if pe.FirstChild == node {
		pe.FirstChild = ne.NextSibling
		ne.Parent = pool.NilNode
		ne.NextSibling = pool.NilNode
		return
	}
	cur := pe.FirstChild
	for cur != pool.NilNode {
		ce := p.Get(cur)
		if ce.NextSibling == node {
			ce.NextSibling = ne.NextSibling
			ne.Parent = pool.NilNode
			ne.NextSibling = pool.NilNode
			return
		}
		cur = ce.NextSibling
	}
}

// IsRoot reports whether node has no parent.
func IsRoot(p *pool.Pool, node pool.NodeID) bool {
	return p.Get(node).Parent == pool.NilNode
}

// Root walks Parent links up to the tree's root.
func Root(p *pool.Pool, node pool.NodeID) pool.NodeID {
	for {
		e := p.Get(node)
		if e.Parent == pool.NilNode {
			return node
		}
		node = e.Parent
	}
}

// Depth counts Parent links from node to its root; the root itself is
// depth 1, per spec.
func Depth(p *pool.Pool, node pool.NodeID) int {
	d := 1
	for {
		e := p.Get(node)
		if e.Parent == pool.NilNode {
			return d
		}
		node = e.Parent
		d++
	}
}

// NChildren counts node's direct children.
func NChildren(p *pool.Pool, node pool.NodeID) int {
	n := 0
	ChildrenForEach(p, node, func(pool.NodeID) { n++ })
	return n
}

// NNodes counts node and every descendant.
func NNodes(p *pool.Pool, node pool.NodeID) int {
	n := 0
	Traverse(p, node, func(pool.NodeID) { n++ })
	return n
}

// ChildrenForEach visits node's direct children, in sibling (insertion)
// order.
func ChildrenForEach(p *pool.Pool, node pool.NodeID, fn func(pool.NodeID)) {
	cur := p.Get(node).FirstChild
	for cur != pool.NilNode {
		next := p.Get(cur).NextSibling
		fn(cur)
		cur = next
	}
}

// Traverse performs a depth-first pre-order walk of node's whole subtree,
// including node itself.
func Traverse(p *pool.Pool, node pool.NodeID, fn func(pool.NodeID)) {
	fn(node)
	ChildrenForEach(p, node, func(child pool.NodeID) {
		Traverse(p, child, fn)
	})
}

// BuildFullPathInto writes "/name1/name2/.../nameK" (root-first) into buf,
// growing buf as needed (the path is never truncated), and reports whether
// anything was written.
// buf is reset before writing so callers can reuse one buffer across many
// calls (the query engine does this once per worker).
func BuildFullPathInto(p *pool.Pool, node pool.NodeID, buf *bytes.Buffer) bool {
	buf.Reset()

	// Collect root-to-node chain on a small stack of NodeIDs.
	var chain []pool.NodeID
	for cur := node; ; {
		e := p.Get(cur)
		chain = append(chain, cur)
		if e.Parent == pool.NilNode {
			break
		}
		cur = e.Parent
	}

	// chain is leaf-to-root; walk it in reverse (root-first).
	for i := len(chain) - 1; i >= 0; i-- {
		e := p.Get(chain[i])
		if i == len(chain)-1 {
			// Root component: "/" if the root's name is empty, else the
			// root's own text verbatim (it may itself start with "/").
			if len(e.Name) == 0 {
				buf.WriteByte('/')
			} else {
				buf.Write(e.Name)
			}
			continue
		}
		if buf.Len() == 0 || buf.Bytes()[buf.Len()-1] != '/' {
			buf.WriteByte('/')
		}
		buf.Write(e.Name)
	}

	return buf.Len() > 0
}
