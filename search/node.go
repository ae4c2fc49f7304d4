package search

import (
	"fmt"
	"strconv"
)

// Key identifies a joint configuration: the ordered robot positions. Two nodes
// reached by different paths share a Key when every robot index maps to the
// same position. The empty Key is never a valid configuration and marks the
// absence of a parent.
type Key string

// KeyOf encodes positions as a comma separated list, which is collision free.
func KeyOf(positions []int) Key {
	buf := make([]byte, 0, len(positions)*4)
	for _, p := range positions {
		buf = strconv.AppendInt(buf, int64(p), 10)
		buf = append(buf, ',')
	}
	return Key(buf)
}

// Node is an immutable snapshot of the joint configuration with its
// accumulated cost G and heuristic estimate H. The parent is referenced by
// Key into the closed list rather than by pointer, so the explored tree is
// not retained through the open list.
type Node struct {
	G      int
	H      float64
	Robots []int
	Parent Key
	key    Key
}

// NewNode copies robots so later mutation by the caller cannot alias the node.
func NewNode(g int, robots []int, parent Key) *Node {
	cp := append([]int(nil), robots...)
	return &Node{
		G:      g,
		Robots: cp,
		Parent: parent,
		key:    KeyOf(cp),
	}
}

// Key is the node's configuration identity.
func (n *Node) Key() Key { return n.key }

// F is the total evaluation g+h.
func (n *Node) F() float64 { return float64(n.G) + n.H }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.Parent == "" }

// Equal compares configurations only; cost and parent are ignored.
func (n *Node) Equal(other *Node) bool {
	return other != nil && n.key == other.key
}

func (n *Node) String() string {
	return fmt.Sprintf("Node{g=%d f=%.2f robots=%v}", n.G, n.F(), n.Robots)
}
