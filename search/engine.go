package search

import (
	"context"
	"fmt"
	"math"
	"time"

	"robosearch/heuristics"
	"robosearch/models"

	log "github.com/sirupsen/logrus"
)

// cancelCheckInterval is how many expansions pass between two context checks.
// FUTURE: derive it from the branching factor, 256 expansions of five robots
// is far longer than 256 expansions of one.
const cancelCheckInterval = 256

// MaxRobots bounds the robot count of an engine. The simultaneous variant
// materializes 5^n move combinations up front.
const MaxRobots = 6

// Options tune a single Engine.
type Options struct {
	Variant Variant
	// Reopen re-queues a strictly better node for an already expanded
	// configuration. When false, only the closed-list entry is replaced.
	Reopen bool
	// MaxExpansions stops the search with ErrExpansionLimit; zero is unbounded.
	MaxExpansions int
}

// Result is what a search that reached a verdict returns.
type Result struct {
	Outcome Outcome
	// Winner is the goal node, nil unless Solved.
	Winner *Node
	// Paths holds one forward-ordered move list per robot, nil unless Solved.
	// Every list has the same length; a robot that waits gets models.None.
	Paths [][]models.Direction
	Stats Stats
}

// Engine runs A* over joint robot configurations on one grid. The grid is
// borrowed for the lifetime of the level session and never mutated.
// An Engine runs one search at a time.
type Engine struct {
	grid     *models.Grid
	goals    []int
	opts     Options
	progress *Progress
}

// NewEngine builds an engine for robots whose goals are given index-aligned.
func NewEngine(grid *models.Grid, goals []int, opts Options) (*Engine, error) {
	if len(goals) == 0 {
		return nil, ErrNoRobots
	}
	if len(goals) > MaxRobots {
		return nil, fmt.Errorf("%w: %d robots, at most %d are supported", models.ErrBadLevel, len(goals), MaxRobots)
	}
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvariant)
	}
	for i, g := range goals {
		if !grid.InBounds(g) || !grid.Walkable(g) {
			return nil, fmt.Errorf("robot %d goal %d: %w", i, g, models.ErrBadLevel)
		}
	}
	if opts.Variant == "" {
		opts.Variant = Simultaneous
	}
	return &Engine{
		grid:     grid,
		goals:    append([]int(nil), goals...),
		opts:     opts,
		progress: NewProgress(),
	}, nil
}

// Progress returns the live counters, readable while Search runs.
func (e *Engine) Progress() *Progress { return e.progress }

// directions returns the per-robot move options of the configured variant.
func (e *Engine) directions() []models.Direction {
	if e.opts.Variant == Sequential {
		return models.Cardinals
	}
	return models.WithStay
}

// run holds the mutable state of one search.
type run struct {
	*Engine
	h      heuristics.Provider
	open   *OpenList
	closed map[Key]*Node
	combos [][]models.Direction
}

// Search looks for a joint plan bringing every robot from start to its goal.
// A search that empties the open list returns Outcome Exhausted with a nil
// error. Errors are reserved for cancellation, the expansion limit, bad input
// and internal invariant violations.
func (e *Engine) Search(ctx context.Context, start []int, h heuristics.Provider) (*Result, error) {
	if len(start) != len(e.goals) {
		return nil, fmt.Errorf("%w: %d start positions for %d robots", ErrInvariant, len(start), len(e.goals))
	}
	if err := e.validateStart(start); err != nil {
		return nil, err
	}

	r := &run{
		Engine: e,
		h:      h,
		open:   NewOpenList(),
		closed: map[Key]*Node{},
	}
	if e.opts.Variant == Simultaneous {
		r.combos = MoveCombinations(len(start), e.directions())
	}

	e.progress.reset()
	defer e.progress.finish()

	began := time.Now()
	fields := log.Fields{
		"heuristic": h.Kind(),
		"variant":   e.opts.Variant,
		"robots":    len(start),
	}
	log.WithFields(fields).Info("search started")

	winner, err := r.loop(ctx, start)
	stats := Stats{
		Heuristic: string(h.Kind()),
		Variant:   e.opts.Variant,
		Expanded:  e.progress.Expanded(),
		Generated: e.progress.Generated(),
		Elapsed:   time.Since(began),
	}
	fields["expanded"] = stats.Expanded
	fields["generated"] = stats.Generated
	fields["elapsed"] = stats.Elapsed
	if err != nil {
		log.WithFields(fields).WithError(err).Error("search aborted")
		return nil, err
	}

	result := &Result{Outcome: Exhausted, Stats: stats}
	if winner != nil {
		paths, cost, err := r.reconstruct(winner)
		if err != nil {
			log.WithFields(fields).WithError(err).Error("path reconstruction failed")
			return nil, err
		}
		result.Outcome = Solved
		result.Winner = winner
		result.Paths = paths
		result.Stats.Cost = cost
	}
	result.Stats.Outcome = result.Outcome.String()

	fields["outcome"] = result.Outcome
	fields["cost"] = result.Stats.Cost
	log.WithFields(fields).Info("search finished")
	return result, nil
}

func (e *Engine) validateStart(start []int) error {
	seen := make(map[int]int, len(start))
	for i, p := range start {
		if !e.grid.InBounds(p) || !e.grid.Walkable(p) {
			return fmt.Errorf("%w: robot %d starts on unusable cell %d", ErrInvariant, i, p)
		}
		if j, ok := seen[p]; ok {
			return fmt.Errorf("%w: robots %d and %d share cell %d", ErrInvariant, j, i, p)
		}
		seen[p] = i
	}
	return nil
}

// loop is the A* main loop. It returns the goal node, or nil when the open
// list runs dry.
func (r *run) loop(ctx context.Context, start []int) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search not started: %w", err)
	}
	root, ok := r.withEstimate(NewNode(0, start, ""))
	if !ok {
		log.WithField("robots", start).Debug("some goal is unreachable from the start")
		return nil, nil
	}
	r.open.Insert(root)
	r.progress.generate()

	for !r.open.IsEmpty() {
		node, err := r.open.ExtractMin()
		if err != nil {
			return nil, err
		}
		expanded := r.progress.expand(node.F())
		if _, ok := r.closed[node.Key()]; !ok {
			r.closed[node.Key()] = node
		}

		if r.isGoal(node) {
			return node, nil
		}

		if expanded%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("search cancelled after %d expansions: %w", expanded, err)
			}
			log.WithFields(log.Fields{
				"expanded": expanded,
				"open":     r.open.Len(),
				"closed":   len(r.closed),
				"f":        node.F(),
			}).Debug("search progress")
		}
		if r.opts.MaxExpansions > 0 && expanded >= int64(r.opts.MaxExpansions) {
			return nil, fmt.Errorf("%w: %d expansions", ErrExpansionLimit, expanded)
		}

		var children []*Node
		if r.opts.Variant == Sequential {
			children, err = r.expandSequential(node)
		} else {
			children, err = r.expandSimultaneous(node)
		}
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			r.consider(child)
		}
	}
	return nil, nil
}

func (r *run) isGoal(n *Node) bool {
	for i, p := range n.Robots {
		if p != r.goals[i] {
			return false
		}
	}
	return true
}

// expandSimultaneous builds one child per move combination. Each robot's
// move is checked against the parent snapshot and against cells already
// claimed by lower-index robots of the same combination, so robots never
// swap or land together. Only robots that actually move add cost; a
// combination where nobody moves is dropped.
func (r *run) expandSimultaneous(node *Node) ([]*Node, error) {
	children := make([]*Node, 0, len(r.combos))
	for _, combo := range r.combos {
		positions := append([]int(nil), node.Robots...)
		cost := 0
		moved := false
		for i, d := range combo {
			dest, ok, err := r.grid.Destination(node.Robots, i, d)
			if err != nil {
				return nil, r.invariant(err, node, i, d)
			}
			if !ok || claimed(positions[:i], dest) {
				continue
			}
			positions[i] = dest
			cost += r.grid.Cost(dest)
			moved = true
		}
		if !moved {
			continue
		}
		children = append(children, NewNode(node.G+cost, positions, node.Key()))
	}
	return children, nil
}

// expandSequential moves exactly one robot per child, over the four cardinal
// directions.
func (r *run) expandSequential(node *Node) ([]*Node, error) {
	dirs := r.directions()
	children := make([]*Node, 0, len(node.Robots)*len(dirs))
	for i := range node.Robots {
		for _, d := range dirs {
			dest, ok, err := r.grid.Destination(node.Robots, i, d)
			if err != nil {
				return nil, r.invariant(err, node, i, d)
			}
			if !ok {
				continue
			}
			positions := append([]int(nil), node.Robots...)
			positions[i] = dest
			children = append(children, NewNode(node.G+r.grid.Cost(dest), positions, node.Key()))
		}
	}
	return children, nil
}

func claimed(positions []int, pos int) bool {
	for _, p := range positions {
		if p == pos {
			return true
		}
	}
	return false
}

func (r *run) invariant(err error, node *Node, robot int, d models.Direction) error {
	log.WithFields(log.Fields{
		"key":   node.Key(),
		"robot": robot,
		"pos":   node.Robots[robot],
		"dir":   d,
	}).WithError(err).Error("move left the grid")
	return fmt.Errorf("%w: robot %d at %d moving %v: %v", ErrInvariant, robot, node.Robots[robot], d, err)
}

// consider files a freshly built child. A child whose configuration was
// already expanded only replaces the closed entry when strictly better, and is
// queued again when re-opening is on. Otherwise it goes to the open list,
// improving a queued duplicate when re-opening is on.
func (r *run) consider(child *Node) {
	child, ok := r.withEstimate(child)
	if !ok {
		return
	}
	if prev, ok := r.closed[child.Key()]; ok {
		if child.F() >= prev.F() {
			return
		}
		r.closed[child.Key()] = child
		if r.opts.Reopen {
			if r.open.Insert(child) {
				r.progress.generate()
			} else {
				r.open.Improve(child)
			}
		}
		return
	}
	if r.open.Insert(child) {
		r.progress.generate()
	} else if r.opts.Reopen {
		r.open.Improve(child)
	}
}

// withEstimate sets n.H and reports false when some robot cannot reach its
// goal at all, which only an exact cost field can tell.
func (r *run) withEstimate(n *Node) (*Node, bool) {
	n.H = r.h.TotalEstimate(n.Robots)
	return n, !math.IsInf(n.H, 1)
}
