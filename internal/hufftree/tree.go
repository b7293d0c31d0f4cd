// Package hufftree implements the Huffman tree: building a code table
// by a pre-order walk, binary serialization/deserialization that
// reconstructs parentage from a flat pre-order stream, and a
// state-stepping decoder that descends one opcode bit at a time.
package hufftree

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/archivelab/huffman/internal/node"
)

var (
	// ErrUnparsed is returned by Serialize when Parse has not been run
	// since the last structural mutation.
	ErrUnparsed = errors.New("hufftree: tree has not been parsed")
	// ErrEmpty is returned by Serialize on a tree with no root.
	ErrEmpty = errors.New("hufftree: tree is empty")
	// ErrNotConnectable is returned by Connect when parent is a leaf.
	ErrNotConnectable = errors.New("hufftree: leaf node cannot have children")
	// ErrInvalidOpcode is returned by StateStep for an opcode other than 0 or 1.
	ErrInvalidOpcode = errors.New("hufftree: opcode must be 0 or 1")
	// ErrNoCurrent is returned by StateStep when current is nil.
	ErrNoCurrent = errors.New("hufftree: no current node to step from")
	// ErrCorruptTree is returned by Deserialize on a truncated or malformed stream.
	ErrCorruptTree = errors.New("hufftree: corrupt or truncated tree stream")
)

// Tree owns a root node and tracks whether Parse has run since the
// last structural mutation. State machine:
//
//	[empty] --AddRoot--> [unparsed] --Parse--> [parsed]
//	                        ^  mutation          |
//	                        +--------------------+
type Tree struct {
	Root   *node.Node
	count  uint64
	parsed bool
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{}
}

// AddRoot sets the tree's root, resetting the parsed bit.
func (t *Tree) AddRoot(n *node.Node) {
	t.Root = n
	t.parsed = false
}

// Connect attaches a and b as children of parent. parent must be a
// non-leaf node. Canonical ordering rule: if b is a leaf, a becomes
// the left child and b the right; otherwise b becomes left and a
// becomes right. This rule is cosmetic — it only affects which side
// of the tree a subtree appears on — but it must be preserved because
// the serialized pre-order form depends on it.
func (t *Tree) Connect(parent, a, b *node.Node) error {
	if parent.IsLeaf {
		return ErrNotConnectable
	}
	if b.IsLeaf {
		parent.Left, parent.Right = a, b
	} else {
		parent.Left, parent.Right = b, a
	}
	t.parsed = false
	return nil
}

// Count returns the number of nodes reachable from Root. It is only
// reliable after Parse has run.
func (t *Tree) Count() uint64 {
	return t.count
}

// Parsed reports whether Parse has run since the last structural mutation.
func (t *Tree) Parsed() bool {
	return t.parsed
}

// Parse walks the tree depth-first in pre-order, maintaining an
// opcode accumulator ('0' on descending left, '1' on descending
// right), and returns the resulting code table. It also recomputes
// Count and sets the parsed bit.
//
// Degenerate case: a tree built from a single distinct input byte has
// a root that is itself a leaf. Rather than emit an empty opcode
// string for that symbol (state_step could never descend), the lone
// leaf is promoted under a synthetic internal root alongside a second
// leaf for the same symbol, so every leaf gets a non-empty code and
// every internal node keeps exactly two children.
func (t *Tree) Parse() (map[byte]string, error) {
	if t.Root == nil {
		return nil, ErrEmpty
	}

	if t.Root.IsLeaf && t.Root.Left == nil && t.Root.Right == nil {
		twin := node.NewLeaf(t.Root.Symbol, t.Root.Frequency)
		synthetic := node.NewInternal(t.Root.Frequency)
		if err := t.Connect(synthetic, twin, t.Root); err != nil {
			return nil, err
		}
		t.Root = synthetic
	}

	table := make(map[byte]string)
	t.count = 0

	var walk func(n *node.Node, prefix []byte)
	walk = func(n *node.Node, prefix []byte) {
		t.count++
		if n.IsLeaf {
			table[n.Symbol] = string(prefix)
			return
		}
		walk(n.Left, append(prefix, '0'))
		walk(n.Right, append(prefix, '1'))
	}
	walk(t.Root, make([]byte, 0, 32))

	t.parsed = true
	return table, nil
}

// Serialize writes Count as a little-endian u64, then the pre-order
// sequence of (symbol, is_leaf) byte pairs, one per node, to w. All
// artifact I/O in this codec proceeds at monotonically increasing
// offsets, so a plain sequential io.Writer suffices; there is no need
// to seek. Parse must have run since the last structural mutation.
func (t *Tree) Serialize(w io.Writer) error {
	if !t.parsed {
		return ErrUnparsed
	}
	if t.count < 1 {
		return ErrEmpty
	}

	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], t.count)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	var walk func(n *node.Node) error
	walk = func(n *node.Node) error {
		var buf [2]byte
		buf[0] = n.Symbol
		if n.IsLeaf {
			buf[1] = 1
		}
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
		if n.IsLeaf {
			return nil
		}
		if err := walk(n.Left); err != nil {
			return err
		}
		return walk(n.Right)
	}

	return walk(t.Root)
}

// Deserialize reads a tree previously written by Serialize from r. It
// reconstructs parentage from the flat pre-order stream: for a
// non-leaf at index k, its left child lives at k+1, and its right
// child lives at leftSubtreeLastIndex+1, where leftSubtreeLastIndex is
// returned by the recursive reconstruction of the left subtree (a
// leaf's reconstruction returns its own index). This invariant holds
// only because every internal node has exactly two children — and
// because nodes are read back in exactly the pre-order they were
// written in, a plain sequential io.Reader is enough; the index
// bookkeeping below exists only to verify the stream against Count,
// not to seek.
func Deserialize(r io.Reader) (*Tree, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, ErrCorruptTree
	}
	count := binary.LittleEndian.Uint64(header[:])
	if count == 0 {
		return nil, ErrCorruptTree
	}

	readNode := func() (*node.Node, error) {
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, ErrCorruptTree
		}
		return &node.Node{Symbol: buf[0], IsLeaf: buf[1] != 0, Frequency: 1}, nil
	}

	root, err := readNode()
	if err != nil {
		return nil, err
	}

	var build func(n *node.Node, index uint64) (uint64, error)
	build = func(n *node.Node, index uint64) (uint64, error) {
		if n.IsLeaf {
			return index, nil
		}

		leftIndex := index + 1
		left, err := readNode()
		if err != nil {
			return 0, err
		}
		n.Left = left

		leftLast, err := build(left, leftIndex)
		if err != nil {
			return 0, err
		}

		rightIndex := leftLast + 1
		right, err := readNode()
		if err != nil {
			return 0, err
		}
		n.Right = right

		return build(right, rightIndex)
	}

	last, err := build(root, 0)
	if err != nil {
		return nil, err
	}
	if last+1 != count {
		return nil, ErrCorruptTree
	}

	return &Tree{Root: root, count: count, parsed: true}, nil
}

// StateStep descends once from current toward left (opcode 0) or
// right (opcode 1). If the child is a leaf, its symbol is returned and
// the next node is the tree's root, so the next call restarts the
// traversal; otherwise the child itself is returned and no symbol is
// emitted.
func (t *Tree) StateStep(current *node.Node, opcode int) (next *node.Node, emitted *byte, err error) {
	if current == nil {
		return nil, nil, ErrNoCurrent
	}
	if opcode != 0 && opcode != 1 {
		return nil, nil, ErrInvalidOpcode
	}

	var child *node.Node
	if opcode == 0 {
		child = current.Left
	} else {
		child = current.Right
	}
	if child == nil {
		return nil, nil, ErrCorruptTree
	}

	if child.IsLeaf {
		symbol := child.Symbol
		return t.Root, &symbol, nil
	}
	return child, nil, nil
}
