// Package persist implements the binary save/load format for a single
// per-root tree (spec §4.5), and the path-hashed on-disk location for it
// (spec §4.6... §6.1).
//
// The wire-format helpers are small named wrappers around encoding/binary,
// grounded on go-git-go-git's utils/binary package — the pack's own
// example of not hand-rolling byte shuffling when the standard library
// already has a binary.Write/Read pair to wrap.
package persist

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/cboxdoerfer/fsearch-sub000/internal/indextree"
	"github.com/cboxdoerfer/fsearch-sub000/internal/pool"
	"github.com/cboxdoerfer/fsearch-sub000/internal/xdgpaths"
)

// Magic identifies an fsearch database file.
var Magic = [4]byte{'F', 'S', 'D', 'B'}

const (
	MajorVersion = 0
	MinorVersion = 1
)

// Error kinds, per spec §7.
var (
	ErrCorrupt         = errors.New("persist: corrupt database file")
	ErrVersionMismatch = errors.New("persist: unsupported database version")
)

// PathFor returns the per-root database file path:
// <xdg-data>/fsearch/database/<sha256(displayPath)>/database.db.
// displayPath is "/" for the filesystem root, else the absolute indexed
// path, per spec §6.1.
func PathFor(displayPath string) string {
	if displayPath == "" {
		displayPath = "/"
	}
	sum := sha256.Sum256([]byte(displayPath))
	hash := hex.EncodeToString(sum[:])
	return filepath.Join(xdgpaths.DatabaseDir(), hash, "database.db")
}

// Save writes tree's full node stream to path, creating parent directories
// as needed.
func Save(tree *indextree.Tree, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeHeader(w, tree); err != nil {
		return err
	}
	if err := writeSubtree(w, tree.Pool, tree.Root, true); err != nil {
		return err
	}
	return w.Flush()
}

func writeHeader(w io.Writer, tree *indextree.Tree) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(MajorVersion)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(MinorVersion)); err != nil {
		return err
	}
	total := 0
	indextree.Traverse(tree.Pool, tree.Root, func(pool.NodeID) { total++ })
	return binary.Write(w, binary.LittleEndian, uint32(total))
}

// writeSubtree implements spec §4.5's encoding: emit node's own fields,
// then — only if node is a directory — each child's subtree in order
// followed by a single end-of-children delimiter. A file never has
// children, so it never emits a delimiter of its own; the delimiter
// belongs to whichever directory is currently being closed, which is the
// only node Load ever needs to "pop" out of.
func writeSubtree(w *bufio.Writer, p *pool.Pool, node pool.NodeID, isRoot bool) error {
	e := p.Get(node)

	name := e.Name
	if isRoot && len(name) == 0 {
		name = []byte("/")
	}
	if err := writeFields(w, name, e); err != nil {
		return err
	}
	if !e.IsDir {
		return nil
	}

	for child := e.FirstChild; child != pool.NilNode; child = p.Get(child).NextSibling {
		if err := writeSubtree(w, p, child, false); err != nil {
			return err
		}
	}
	return writeDelimiter(w)
}

func writeFields(w *bufio.Writer, name []byte, e *pool.Entry) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(name))); err != nil {
		return err
	}
	if _, err := w.Write(name); err != nil {
		return err
	}
	isDir := uint8(0)
	if e.IsDir {
		isDir = 1
	}
	if err := binary.Write(w, binary.LittleEndian, isDir); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(e.Size)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(e.MTime)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, e.Pos)
}

func writeDelimiter(w *bufio.Writer) error {
	return binary.Write(w, binary.LittleEndian, uint16(0))
}

// Load reads a database file back into a fresh Tree.
func Load(path string) (*indextree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmtCorrupt(err)
	}
	if magic != Magic {
		return nil, ErrCorrupt
	}

	var major, minor uint8
	if err := binary.Read(r, binary.LittleEndian, &major); err != nil {
		return nil, fmtCorrupt(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &minor); err != nil {
		return nil, fmtCorrupt(err)
	}
	if major != MajorVersion || minor != MinorVersion {
		return nil, ErrVersionMismatch
	}

	var total uint32
	if err := binary.Read(r, binary.LittleEndian, &total); err != nil {
		return nil, fmtCorrupt(err)
	}

	var rootNameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &rootNameLen); err != nil {
		return nil, fmtCorrupt(err)
	}
	if rootNameLen == 0 {
		return nil, ErrCorrupt
	}

	p := pool.New(pool.BlockSize)
	root, err := readSubtree(r, p, pool.NilNode, rootNameLen, true)
	if err != nil {
		return nil, err
	}
	return &indextree.Tree{Pool: p, Root: root}, nil
}

// readSubtree reads one node's own fields (nameLen already consumed by the
// caller) and, if it is a directory, its children up to and including its
// own end-of-children delimiter — the mirror image of writeSubtree. If
// parent isn't pool.NilNode the new node is linked under it.
func readSubtree(r *bufio.Reader, p *pool.Pool, parent pool.NodeID, nameLen uint16, isRoot bool) (pool.NodeID, error) {
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return pool.NilNode, fmtCorrupt(err)
	}
	if isRoot && bytes.Equal(name, []byte("/")) {
		// The root's name is serialised as "/" even when the in-memory
		// representation uses the empty string; normalise back.
		name = nil
	}

	var isDirByte uint8
	var size, mtime uint64
	var pos uint32
	if err := binary.Read(r, binary.LittleEndian, &isDirByte); err != nil {
		return pool.NilNode, fmtCorrupt(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return pool.NilNode, fmtCorrupt(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &mtime); err != nil {
		return pool.NilNode, fmtCorrupt(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &pos); err != nil {
		return pool.NilNode, fmtCorrupt(err)
	}

	node := p.Alloc()
	ne := p.Get(node)
	ne.Name = name
	ne.IsDir = isDirByte != 0
	ne.Size = int64(size)
	ne.MTime = int64(mtime)
	ne.Pos = pos

	if parent != pool.NilNode {
		indextree.AppendChild(p, parent, node)
	}
	if !ne.IsDir {
		return node, nil
	}

	for {
		var childNameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &childNameLen); err != nil {
			return pool.NilNode, fmtCorrupt(err)
		}
		if childNameLen == 0 {
			return node, nil
		}
		if _, err := readSubtree(r, p, node, childNameLen, false); err != nil {
			return pool.NilNode, err
		}
	}
}

func fmtCorrupt(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrCorrupt
	}
	return ErrCorrupt
}
