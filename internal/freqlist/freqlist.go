// Package freqlist implements the ascending-frequency list used to
// build a Huffman tree: byte frequencies are accumulated one symbol at
// a time, and the two least-frequent nodes can be repeatedly extracted
// to fold into the tree.
package freqlist

import "github.com/archivelab/huffman/internal/node"

// List is a singly/doubly linked ascending-frequency sequence. The
// head always holds the globally minimum frequency.
type List struct {
	head  *node.Node
	count int
}

// New returns an empty frequency list.
func New() *List {
	return &List{}
}

// Count returns the number of nodes currently in the list.
func (l *List) Count() int {
	return l.count
}

// search finds an existing leaf for symbol, or nil.
func (l *List) search(symbol byte) *node.Node {
	for n := l.head; n != nil; n = n.Next {
		if n.IsLeaf && n.Symbol == symbol {
			return n
		}
	}
	return nil
}

// addHead inserts n at the head of the list.
func (l *List) addHead(n *node.Node) {
	if l.head == nil {
		l.head = n
	} else {
		l.head.Prev = n
		n.Next = l.head
		l.head = n
	}
	l.count++
}

// bubble moves n rightward while its frequency exceeds its neighbor's,
// swapping list positions until the ascending order invariant holds.
func (l *List) bubble(n *node.Node) {
	for {
		next := n.Next
		if next == nil || n.Frequency <= next.Frequency {
			return
		}
		l.swap(n, next)
	}
}

// swap exchanges the list positions of adjacent nodes a (followed by) b.
func (l *List) swap(a, b *node.Node) {
	prev := a.Prev
	next := b.Next

	if prev != nil {
		prev.Next = b
	} else {
		l.head = b
	}
	if next != nil {
		next.Prev = a
	}

	b.Prev = prev
	b.Next = a
	a.Prev = b
	a.Next = next
}

// AddOrIncrement inserts a new leaf for symbol, or increments an
// existing leaf's frequency by one, then restores ascending order.
//
// A fresh internal ("special") node is signaled by symbol ==
// node.InternalSymbol with freq != 0; it is always inserted fresh,
// never coalesced with an existing entry even if its sentinel symbol
// happens to match one already in the list. On the increment path the
// freq argument is ignored: the frequency always advances by exactly
// one, matching a one-byte-at-a-time encode pass.
func (l *List) AddOrIncrement(symbol byte, freq uint64) *node.Node {
	special := symbol == node.InternalSymbol && freq != 0

	var n *node.Node
	if !special {
		n = l.search(symbol)
	}

	if n == nil {
		if special {
			n = &node.Node{Symbol: symbol, IsLeaf: false, Frequency: freq}
		} else {
			if freq == 0 {
				freq = 1
			}
			n = node.NewLeaf(symbol, freq)
		}
		l.addHead(n)
	} else {
		n.Frequency++
	}

	l.bubble(n)
	return n
}

// Insert adds an already-constructed node to the list and restores
// ascending order. Unlike AddOrIncrement, it never searches for or
// coalesces with an existing entry — it exists for the encoder's merge
// loop, which builds a brand-new internal node (with its children
// already connected) on each iteration and must reinsert that exact
// node, not a fresh copy, so the tree above it stays reachable from the
// list until its own turn to merge.
func (l *List) Insert(n *node.Node) {
	l.addHead(n)
	l.bubble(n)
}

// Remaining returns the sole node left in the list once GetTwoMin has
// been called until it fails — the root of the tree under
// construction. It returns nil if the list is empty or still holds two
// or more nodes.
func (l *List) Remaining() *node.Node {
	if l.count != 1 {
		return nil
	}
	return l.head
}

// GetTwoMin detaches and returns the first two nodes in the list —
// always the two smallest, since the list is kept sorted. It fails
// when fewer than two nodes remain; that failure is the signal that
// tree construction is complete.
func (l *List) GetTwoMin() (first, second *node.Node, ok bool) {
	if l.count < 2 {
		return nil, nil, false
	}

	first = l.head
	second = first.Next
	third := second.Next

	first.Next = nil
	second.Prev = nil
	second.Next = nil
	if third != nil {
		third.Prev = nil
	}

	l.head = third
	l.count -= 2

	return first, second, true
}
