package models

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Cell is the immutable classification of a single grid position.
// The cell type determines both whether a robot may stand on it and
// what it costs to step into it.
type Cell int

const (
	Empty Cell = iota
	Trap
	Goal
	Wall
)

// Traversal costs. WALL_COST is only a blocking sentinel and must never be
// summed into a path cost; walkability is checked first.
const (
	EMPTY_COST = 1
	TRAP_COST  = 5
	GOAL_COST  = 1
	WALL_COST  = 127
)

// Cost returns the price of stepping into the cell.
func (c Cell) Cost() int {
	switch c {
	case Empty:
		return EMPTY_COST
	case Trap:
		return TRAP_COST
	case Goal:
		return GOAL_COST
	default:
		return WALL_COST
	}
}

// Walkable reports whether a robot may occupy the cell. Wall is the only
// non-walkable kind.
func (c Cell) Walkable() bool {
	return c != Wall
}

// Rune is the level-file encoding of the cell.
func (c Cell) Rune() rune {
	switch c {
	case Empty:
		return 'E'
	case Trap:
		return 'T'
	case Goal:
		return 'G'
	default:
		return 'W'
	}
}

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Trap:
		return "trap"
	case Goal:
		return "goal"
	default:
		return "wall"
	}
}

// Direction is one of the four cardinal moves, or None (stay in place).
// The index delta of a direction depends on the grid's column count, so
// deltas are obtained from the Grid rather than from the Direction itself.
type Direction int

const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

// Cardinals lists the four moving directions in the order used for expansion.
var Cardinals = []Direction{Left, Up, Right, Down}

// WithStay lists the cardinals plus None, for simultaneous-move expansion.
var WithStay = []Direction{Left, Up, Right, Down, None}

func (d Direction) String() string {
	switch d {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return "NONE"
	}
}

// ParseDirection accepts the names printed by String, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(s) {
	case "UP":
		return Up, nil
	case "DOWN":
		return Down, nil
	case "LEFT":
		return Left, nil
	case "RIGHT":
		return Right, nil
	case "NONE", "STAY":
		return None, nil
	}
	return None, fmt.Errorf("unknown direction %q", s)
}

// ErrOutOfBounds signals a position outside [0, rows*columns), or a move that
// would leave the grid. This is a programming error: callers pre-validate.
var ErrOutOfBounds = errors.New("position out of grid bounds")

// Grid is the rectangular level, addressed by a single index
// pos = row*columns + column. It is read-only once built.
type Grid struct {
	rows, columns int
	cells         []Cell
}

// NewGrid wraps a row-major slice of cells. The slice is copied.
func NewGrid(rows, columns int, cells []Cell) (*Grid, error) {
	if rows <= 0 || columns <= 0 {
		return nil, fmt.Errorf("%w: grid must be non-empty, got %dx%d", ErrBadLevel, rows, columns)
	}
	if len(cells) != rows*columns {
		return nil, fmt.Errorf("%w: %d cells for a %dx%d grid", ErrBadLevel, len(cells), rows, columns)
	}
	cp := make([]Cell, len(cells))
	copy(cp, cells)
	return &Grid{rows: rows, columns: columns, cells: cp}, nil
}

func (g *Grid) Rows() int    { return g.rows }
func (g *Grid) Columns() int { return g.columns }
func (g *Grid) Size() int    { return len(g.cells) }

// Cells returns a copy of the row-major cells.
func (g *Grid) Cells() []Cell {
	cp := make([]Cell, len(g.cells))
	copy(cp, g.cells)
	return cp
}

// Index converts (row, column) into a linear position.
func (g *Grid) Index(row, column int) int {
	return row*g.columns + column
}

func (g *Grid) RowOf(pos int) int    { return pos / g.columns }
func (g *Grid) ColumnOf(pos int) int { return pos % g.columns }

// InBounds reports whether pos addresses a cell of the grid.
func (g *Grid) InBounds(pos int) bool {
	return pos >= 0 && pos < len(g.cells)
}

// At returns the cell at pos. Out-of-range lookups are logged and answered
// with Wall, which blocks the caller rather than corrupting its state.
func (g *Grid) At(pos int) Cell {
	if !g.InBounds(pos) {
		log.WithField("pos", pos).Error("grid lookup out of range")
		return Wall
	}
	return g.cells[pos]
}

// Cost is shorthand for At(pos).Cost().
func (g *Grid) Cost(pos int) int {
	return g.At(pos).Cost()
}

// Walkable is shorthand for At(pos).Walkable().
func (g *Grid) Walkable(pos int) bool {
	return g.At(pos).Walkable()
}

// Delta returns the signed index delta of d for this grid's column count.
func (g *Grid) Delta(d Direction) int {
	switch d {
	case Up:
		return -g.columns
	case Down:
		return g.columns
	case Left:
		return -1
	case Right:
		return 1
	default:
		return 0
	}
}

// DirectionOf maps a delta back to its direction. A delta matching no
// direction means two positions were not adjacent.
func (g *Grid) DirectionOf(delta int) (Direction, error) {
	switch delta {
	case 0:
		return None, nil
	case -g.columns:
		return Up, nil
	case g.columns:
		return Down, nil
	case -1:
		return Left, nil
	case 1:
		return Right, nil
	}
	return None, fmt.Errorf("%w: delta %d is not a single step", ErrOutOfBounds, delta)
}

// Step applies d to pos. Leaving the grid, including wrapping across a row
// edge, is an error; bordered levels never trigger it.
func (g *Grid) Step(pos int, d Direction) (int, error) {
	if !g.InBounds(pos) {
		return -1, fmt.Errorf("%w: pos=%d", ErrOutOfBounds, pos)
	}
	col := g.ColumnOf(pos)
	if (d == Left && col == 0) || (d == Right && col == g.columns-1) {
		return -1, fmt.Errorf("%w: pos=%d dir=%v", ErrOutOfBounds, pos, d)
	}
	next := pos + g.Delta(d)
	if !g.InBounds(next) {
		return -1, fmt.Errorf("%w: pos=%d dir=%v", ErrOutOfBounds, next, d)
	}
	return next, nil
}

// Destination returns where robot i would land by taking d from the joint
// configuration positions, and whether that move is legal: the destination
// must be walkable and no robot of the configuration may stand on it.
// None is never legal since the robot itself occupies its own cell.
func (g *Grid) Destination(positions []int, i int, d Direction) (dest int, ok bool, err error) {
	if d == None {
		return positions[i], false, nil
	}
	if dest, err = g.Step(positions[i], d); err != nil {
		return -1, false, err
	}
	if !g.Walkable(dest) {
		return dest, false, nil
	}
	for _, p := range positions {
		if p == dest {
			return dest, false, nil
		}
	}
	return dest, true, nil
}

// String renders the grid in level-file encoding, one row per line.
func (g *Grid) String() string {
	var sb strings.Builder
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.columns; c++ {
			sb.WriteRune(g.cells[g.Index(r, c)].Rune())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
