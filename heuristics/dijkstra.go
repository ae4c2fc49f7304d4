package heuristics

import (
	"math"

	"robosearch/models"

	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"
)

// Dijkstra holds, per robot, the exact cost from every cell to that robot's
// goal, accounting for walls and trap costs but not for other robots. Cells
// that cannot reach the goal keep +Inf.
type Dijkstra struct {
	field
}

func NewDijkstra(grid *models.Grid, goals []int) *Dijkstra {
	d := &Dijkstra{field: newField(grid, len(goals))}
	for robot, goal := range goals {
		d.costField(robot, goal)
	}
	return d
}

func (d *Dijkstra) Kind() Kind     { return DijkstraKind }
func (d *Dijkstra) String() string { return d.dump(DijkstraKind, "%.0f") }

type frontierItem struct {
	pos  int
	cost float64
}

// costField runs a single-source shortest path seeded at the goal and
// propagated backward: stepping from a neighbor into the current cell costs
// the current cell's cost, so that is what the neighbor's estimate adds.
func (d *Dijkstra) costField(robot, goal int) {
	values := d.values[robot]
	for i := range values {
		values[i] = math.Inf(1)
	}
	if !d.grid.InBounds(goal) {
		return
	}
	values[goal] = 0

	frontier := heap.New[frontierItem](func(a, b frontierItem) bool { return a.cost < b.cost })
	frontier.Push(frontierItem{pos: goal, cost: 0})
	settled := mapset.New[int]()

	for frontier.Size() > 0 {
		cur, _ := frontier.Pop()
		// Stale entries are left in the heap when a cell improves.
		if settled.Has(cur.pos) || cur.cost > values[cur.pos] {
			continue
		}
		settled.Put(cur.pos)

		for _, dir := range models.Cardinals {
			next, err := d.grid.Step(cur.pos, dir)
			if err != nil || settled.Has(next) || !d.grid.Walkable(next) {
				continue
			}
			candidate := values[cur.pos] + float64(d.grid.Cost(cur.pos))
			if candidate < values[next] {
				values[next] = candidate
				frontier.Push(frontierItem{pos: next, cost: candidate})
			}
		}
	}
}
