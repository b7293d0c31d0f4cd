// Package node defines the dual-role record shared by the frequency
// list and the Huffman tree: a single node type carries both list
// links (prev/next) and tree links (left/right). Leaves use one set at
// a time; an internal node built by the encoder's merge loop sits in
// the list with its children already connected, so both are live.
package node

// InternalSymbol is the out-of-band sentinel used for non-leaf nodes.
// It collides with the legal input byte 0xFF; IsLeaf, not Symbol, is
// the disambiguator (see Node.IsLeaf).
const InternalSymbol = 0xFF

// Node is reused in two structural roles: as an entry in an
// ascending-frequency list (Prev/Next) and as a node in the Huffman
// tree (Left/Right). Leaves never have children; internal nodes
// always have exactly two.
type Node struct {
	Symbol    byte
	IsLeaf    bool
	Frequency uint64

	Left, Right *Node
	Prev, Next  *Node
}

// NewLeaf creates a node representing a literal input byte.
func NewLeaf(symbol byte, frequency uint64) *Node {
	return &Node{Symbol: symbol, IsLeaf: true, Frequency: frequency}
}

// NewInternal creates a non-leaf node whose symbol carries no meaning.
func NewInternal(frequency uint64) *Node {
	return &Node{Symbol: InternalSymbol, IsLeaf: false, Frequency: frequency}
}
