package search

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"robosearch/atomic_float"
)

// Stats are the diagnostic counters of one finished search. They are
// informational and play no part in the algorithm.
type Stats struct {
	Heuristic string        `json:"heuristic"`
	Variant   Variant       `json:"variant"`
	Outcome   string        `json:"outcome"`
	Expanded  int64         `json:"expanded"`
	Generated int64         `json:"generated"`
	Elapsed   time.Duration `json:"elapsed"`
	Cost      int           `json:"cost"`
}

func (s Stats) String() string {
	return fmt.Sprintf("%s/%s %s: expanded=%d generated=%d cost=%d elapsed=%v",
		s.Heuristic, s.Variant, s.Outcome, s.Expanded, s.Generated, s.Cost, s.Elapsed)
}

// Progress exposes live counters of a running search. The engine writes it
// from the search goroutine; anything else may read it at any time.
type Progress struct {
	running   int32
	expanded  int64
	generated int64
	frontier  *atomic_float.AtomicFloat64
}

func NewProgress() *Progress {
	return &Progress{
		frontier: atomic_float.NewAtomicFloat64(math.Inf(1)),
	}
}

func (p *Progress) reset() {
	atomic.StoreInt64(&p.expanded, 0)
	atomic.StoreInt64(&p.generated, 0)
	p.frontier.AtomicSet(math.Inf(1))
	atomic.StoreInt32(&p.running, 1)
}

func (p *Progress) finish() {
	atomic.StoreInt32(&p.running, 0)
}

func (p *Progress) expand(f float64) int64 {
	p.frontier.AtomicSet(f)
	return atomic.AddInt64(&p.expanded, 1)
}

func (p *Progress) generate() {
	atomic.AddInt64(&p.generated, 1)
}

// Running reports whether a search is in flight.
func (p *Progress) Running() bool { return atomic.LoadInt32(&p.running) == 1 }

// Expanded is the number of nodes taken off the open list so far.
func (p *Progress) Expanded() int64 { return atomic.LoadInt64(&p.expanded) }

// Generated is the number of children admitted to the open list so far.
func (p *Progress) Generated() int64 { return atomic.LoadInt64(&p.generated) }

// Frontier is the f value of the last expanded node; it only grows under a
// consistent heuristic. +Inf before the first expansion.
func (p *Progress) Frontier() float64 { return p.frontier.AtomicRead() }
