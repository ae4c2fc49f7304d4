package search

import (
	"fmt"

	"robosearch/models"

	log "github.com/sirupsen/logrus"
)

// reconstruct walks parent keys from the winner back to the root through the
// closed list. Each step yields one direction per robot, derived from the
// position delta between child and parent; walking backward fills the lists
// in reverse, so they are flipped before returning. The cost is recomputed
// from the moves actually taken, since a replaced closed entry may have moved
// the chain off the winner's recorded g.
func (r *run) reconstruct(winner *Node) ([][]models.Direction, int, error) {
	n := len(winner.Robots)
	backward := make([][]models.Direction, n)
	cost := 0

	node := winner
	for steps := 0; !node.IsRoot(); steps++ {
		if steps > len(r.closed) {
			return nil, 0, fmt.Errorf("%w: parent chain from %q does not reach the root", ErrInvariant, winner.Key())
		}
		parent, ok := r.closed[node.Parent]
		if !ok {
			log.WithField("key", node.Parent).Error("closed list miss while backtracking")
			return nil, 0, fmt.Errorf("%w: parent %q missing from closed list", ErrInvariant, node.Parent)
		}
		for i := range node.Robots {
			d, err := r.grid.DirectionOf(node.Robots[i] - parent.Robots[i])
			if err != nil {
				log.WithFields(log.Fields{
					"key":   node.Key(),
					"robot": i,
					"pos":   node.Robots[i],
				}).Error("robot jumped between parent and child")
				return nil, 0, fmt.Errorf("%w: %v", ErrInvariant, err)
			}
			if d != models.None {
				cost += r.grid.Cost(node.Robots[i])
			}
			backward[i] = append(backward[i], d)
		}
		node = parent
	}

	paths := make([][]models.Direction, n)
	for i, moves := range backward {
		path := make([]models.Direction, len(moves))
		for j, d := range moves {
			path[len(moves)-1-j] = d
		}
		paths[i] = path
	}
	return paths, cost, nil
}

// Replay plays paths from start without a robot set, checking every step the
// way a live replay would. It returns the final positions and the cost paid,
// or an error naming the first illegal move. The session validates plans
// with it before loading them.
func Replay(grid *models.Grid, start []int, paths [][]models.Direction) ([]int, int, error) {
	positions := append([]int(nil), start...)
	if len(paths) != len(positions) {
		return nil, 0, fmt.Errorf("%w: %d paths for %d robots", ErrInvariant, len(paths), len(positions))
	}
	steps := 0
	for _, p := range paths {
		if len(p) > steps {
			steps = len(p)
		}
	}
	cost := 0
	for t := 0; t < steps; t++ {
		snapshot := append([]int(nil), positions...)
		for i, p := range paths {
			if t >= len(p) || p[t] == models.None {
				continue
			}
			dest, ok, err := grid.Destination(snapshot, i, p[t])
			if err != nil {
				return nil, 0, err
			}
			if !ok || claimed(positions[:i], dest) {
				return nil, 0, fmt.Errorf("step %d: robot %d cannot move %v from %d", t, i, p[t], positions[i])
			}
			positions[i] = dest
			cost += grid.Cost(dest)
		}
	}
	return positions, cost, nil
}
