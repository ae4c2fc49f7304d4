// heuristics provides the cost-to-goal estimators used by the search engine.
// Every provider precomputes one dense field per robot (one value per grid cell)
// when it is built, so lookups during the search are O(1).
package heuristics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"robosearch/models"
)

// Kind names a heuristic.
type Kind string

const (
	ManhattanKind Kind = "manhattan"
	EuclideanKind Kind = "euclidean"
	DijkstraKind  Kind = "dijkstra"
)

// ErrUnknownKind is returned for a heuristic name that is not one of the Kinds.
var ErrUnknownKind = errors.New("unknown heuristic")

// ParseKind accepts a Kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case ManhattanKind, EuclideanKind, DijkstraKind:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Provider estimates the remaining cost to a robot's goal. TotalEstimate sums
// the per-robot estimates of a joint configuration; robots are treated as
// independent, so mutual exclusion is ignored by every provider.
type Provider interface {
	Kind() Kind
	Estimate(pos, robot int) float64
	TotalEstimate(positions []int) float64
}

// New builds the provider of the given kind for the grid and the goals,
// index-aligned to robot identity.
func New(kind Kind, grid *models.Grid, goals []int) (Provider, error) {
	switch kind {
	case ManhattanKind:
		return NewManhattan(grid, goals), nil
	case EuclideanKind:
		return NewEuclidean(grid, goals), nil
	case DijkstraKind:
		return NewDijkstra(grid, goals), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// field is the shared per-robot estimate storage.
type field struct {
	grid   *models.Grid
	values [][]float64
}

func newField(grid *models.Grid, robots int) field {
	values := make([][]float64, robots)
	for i := range values {
		values[i] = make([]float64, grid.Size())
	}
	return field{grid: grid, values: values}
}

func (f *field) Estimate(pos, robot int) float64 {
	return f.values[robot][pos]
}

func (f *field) TotalEstimate(positions []int) (total float64) {
	for robot, pos := range positions {
		total += f.values[robot][pos]
	}
	return
}

// dump prints every robot's field row by row; unreachable cells print as "-".
func (f *field) dump(kind Kind, format string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s heuristic\n", kind)
	for robot, values := range f.values {
		fmt.Fprintf(&sb, "robot %d:\n", robot)
		for r := 0; r < f.grid.Rows(); r++ {
			for c := 0; c < f.grid.Columns(); c++ {
				v := values[f.grid.Index(r, c)]
				if math.IsInf(v, 1) {
					sb.WriteString(" -")
					continue
				}
				fmt.Fprintf(&sb, " "+format, v)
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Manhattan is |drow| + |dcol| to the goal. Walls and traps are ignored.
type Manhattan struct {
	field
}

func NewManhattan(grid *models.Grid, goals []int) *Manhattan {
	m := &Manhattan{field: newField(grid, len(goals))}
	for robot, goal := range goals {
		gr, gc := grid.RowOf(goal), grid.ColumnOf(goal)
		for pos := range m.values[robot] {
			dr := math.Abs(float64(grid.RowOf(pos) - gr))
			dc := math.Abs(float64(grid.ColumnOf(pos) - gc))
			m.values[robot][pos] = dr + dc
		}
	}
	return m
}

func (m *Manhattan) Kind() Kind     { return ManhattanKind }
func (m *Manhattan) String() string { return m.dump(ManhattanKind, "%.0f") }

// Euclidean is the straight-line distance to the goal.
type Euclidean struct {
	field
}

func NewEuclidean(grid *models.Grid, goals []int) *Euclidean {
	e := &Euclidean{field: newField(grid, len(goals))}
	for robot, goal := range goals {
		gr, gc := grid.RowOf(goal), grid.ColumnOf(goal)
		for pos := range e.values[robot] {
			dr := float64(grid.RowOf(pos) - gr)
			dc := float64(grid.ColumnOf(pos) - gc)
			e.values[robot][pos] = math.Hypot(dr, dc)
		}
	}
	return e
}

func (e *Euclidean) Kind() Kind     { return EuclideanKind }
func (e *Euclidean) String() string { return e.dump(EuclideanKind, "%.2f") }
