package search

import (
	"errors"

	"robosearch/robots"
)

var (
	// ErrNoRobots rejects a search over zero robots.
	ErrNoRobots = robots.ErrNoRobots
	// ErrInvariant marks a programming error detected during a search: open and
	// closed lists out of sync, a position off the grid, a broken parent chain.
	// The search is aborted; it is never a normal outcome.
	ErrInvariant = errors.New("search invariant violated")
	// ErrExpansionLimit is returned when MaxExpansions is reached before a verdict.
	ErrExpansionLimit = errors.New("expansion limit reached")
)

// Outcome is the verdict of a search that ran to completion.
type Outcome int

const (
	// Solved means every robot reached its goal; the result carries the plan.
	Solved Outcome = iota
	// Exhausted means the open list emptied without reaching the goal.
	// It is a normal result, not an error.
	Exhausted
)

func (o Outcome) String() string {
	switch o {
	case Solved:
		return "solved"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}
