package search

import (
	"container/heap"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// entry is a heap slot; index is maintained for heap.Fix.
type entry struct {
	node  *Node
	seq   uint64
	index int
}

// nodeHeap orders entries by ascending f, then by insertion order.
type nodeHeap []*entry

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	fi, fj := h[i].node.F(), h[j].node.F()
	if fi != fj {
		return fi < fj
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *nodeHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// OpenList is the A* frontier: a priority queue by f paired with a membership
// map keyed by configuration, so it never holds two live entries for the same
// configuration. Ties on f are broken by insertion order.
type OpenList struct {
	heap    nodeHeap
	members map[Key]*entry
	seq     uint64
}

func NewOpenList() *OpenList {
	return &OpenList{members: map[Key]*entry{}}
}

// Insert adds the node unless its configuration is already queued, in which
// case it is a no-op returning false.
func (ol *OpenList) Insert(n *Node) bool {
	if _, ok := ol.members[n.Key()]; ok {
		return false
	}
	e := &entry{node: n, seq: ol.seq}
	ol.seq++
	heap.Push(&ol.heap, e)
	ol.members[n.Key()] = e
	return true
}

// Improve replaces the queued node of the same configuration when n has a
// strictly lower f, and reports whether it did.
func (ol *OpenList) Improve(n *Node) bool {
	e, ok := ol.members[n.Key()]
	if !ok || n.F() >= e.node.F() {
		return false
	}
	e.node = n
	heap.Fix(&ol.heap, e.index)
	return true
}

// Get returns the queued node for a configuration.
func (ol *OpenList) Get(k Key) (*Node, bool) {
	e, ok := ol.members[k]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Contains reports whether the configuration is queued.
func (ol *OpenList) Contains(k Key) bool {
	_, ok := ol.members[k]
	return ok
}

// ExtractMin removes and returns the node with the smallest f, dropping it
// from the membership map in the same step.
func (ol *OpenList) ExtractMin() (*Node, error) {
	if err := ol.Validate(); err != nil {
		return nil, err
	}
	if len(ol.heap) == 0 {
		return nil, fmt.Errorf("%w: extract from empty open list", ErrInvariant)
	}
	e := heap.Pop(&ol.heap).(*entry)
	if ol.members[e.node.Key()] != e {
		return nil, fmt.Errorf("%w: open list member missing for key %q", ErrInvariant, e.node.Key())
	}
	delete(ol.members, e.node.Key())
	return e.node, nil
}

// Len is the number of queued configurations. A size mismatch between the
// heap and the membership map is logged; Validate reports it as an error.
func (ol *OpenList) Len() int {
	if len(ol.heap) != len(ol.members) {
		log.WithFields(log.Fields{
			"heap":    len(ol.heap),
			"members": len(ol.members),
		}).Error("open list heap and membership map are not synchronous")
	}
	return len(ol.members)
}

// IsEmpty reports whether nothing is queued.
func (ol *OpenList) IsEmpty() bool {
	return ol.Len() == 0
}

// Validate checks that the heap and the membership map agree in size.
func (ol *OpenList) Validate() error {
	if len(ol.heap) != len(ol.members) {
		return fmt.Errorf("%w: open list heap has %d entries, membership map %d",
			ErrInvariant, len(ol.heap), len(ol.members))
	}
	return nil
}
