package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Assignment is one robot's start and goal position, captured at load time.
type Assignment struct {
	Start, Goal int
}

// Level is what a level loader hands to the search core: the grid and the
// ordered robot assignments. Order is robot identity.
type Level struct {
	Grid        *Grid
	Assignments []Assignment
}

// ErrBadLevel wraps every level validation failure.
var ErrBadLevel = errors.New("malformed level")

// Built-in levels, in the same row encoding as level files. Goals are
// stamped by Convert from the assignments.
var (
	// DebugLevel is the 5x5 single-robot level used for development.
	DebugLevel = []string{
		"WWWWW",
		"WEEEW",
		"WEEEW",
		"WEEEW",
		"WWWWW",
	}
	DebugAssignments = []Assignment{{Start: 6, Goal: 18}}

	// DefaultLevel has two robots whose direct routes cross, and a trap strip
	// that the Dijkstra heuristic routes around.
	DefaultLevel = []string{
		"WWWWWWWWW",
		"WEEEEEEEW",
		"WEWWEWWEW",
		"WEETTTEEW",
		"WEWWEWWEW",
		"WEEEEEEEW",
		"WWWWWWWWW",
	}
	DefaultAssignments = []Assignment{
		{Start: 28, Goal: 34},
		{Start: 13, Goal: 49},
	}
)

// Convert builds a level from in-memory rows (W wall, E empty, T trap, G goal)
// and robot assignments, then validates it.
func Convert(rows []string, assignments []Assignment) (*Level, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrBadLevel)
	}
	columns := len(rows[0])
	cells := make([]Cell, 0, len(rows)*columns)
	for r, line := range rows {
		if len(line) != columns {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrBadLevel, r, len(line), columns)
		}
		for c, ch := range line {
			cell, err := cellFromRune(ch)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d col %d: %v", ErrBadLevel, r, c, err)
			}
			cells = append(cells, cell)
		}
	}

	for _, a := range assignments {
		if a.Goal >= 0 && a.Goal < len(cells) && cells[a.Goal].Walkable() {
			cells[a.Goal] = Goal
		}
	}

	grid, err := NewGrid(len(rows), columns, cells)
	if err != nil {
		return nil, err
	}
	level := &Level{Grid: grid, Assignments: append([]Assignment(nil), assignments...)}
	if err = level.Validate(); err != nil {
		return nil, err
	}
	return level, nil
}

func cellFromRune(ch rune) (Cell, error) {
	switch ch {
	case 'E', ' ':
		return Empty, nil
	case 'T':
		return Trap, nil
	case 'G':
		return Goal, nil
	case 'W':
		return Wall, nil
	}
	return Wall, fmt.Errorf("unknown cell %q", ch)
}

// Validate checks the invariants the search core assumes: at least one robot,
// a wall border, walkable and distinct starts and goals.
func (lv *Level) Validate() error {
	g := lv.Grid
	if len(lv.Assignments) == 0 {
		return fmt.Errorf("%w: no robots", ErrBadLevel)
	}
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Columns(); c++ {
			border := r == 0 || c == 0 || r == g.Rows()-1 || c == g.Columns()-1
			if border && g.At(g.Index(r, c)).Walkable() {
				return fmt.Errorf("%w: open border at row %d col %d", ErrBadLevel, r, c)
			}
		}
	}
	starts := map[int]bool{}
	goals := map[int]bool{}
	for i, a := range lv.Assignments {
		if !g.InBounds(a.Start) || !g.InBounds(a.Goal) {
			return fmt.Errorf("%w: robot %d start=%d goal=%d", ErrOutOfBounds, i, a.Start, a.Goal)
		}
		if !g.Walkable(a.Start) || !g.Walkable(a.Goal) {
			return fmt.Errorf("%w: robot %d starts or ends on a wall", ErrBadLevel, i)
		}
		if starts[a.Start] {
			return fmt.Errorf("%w: duplicate start %d", ErrBadLevel, a.Start)
		}
		if goals[a.Goal] {
			return fmt.Errorf("%w: duplicate goal %d", ErrBadLevel, a.Goal)
		}
		starts[a.Start] = true
		goals[a.Goal] = true
	}
	return nil
}

// ReadLevel decodes the level file format: one "start,goal" line per robot,
// a line starting with ';', then the grid rows.
//
//	6,18
//	;
//	WWWWW
//	WEEEW
//	...
func ReadLevel(reader io.Reader) (*Level, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)

	assignments := []Assignment{}
	rows := []string{}
	inGrid := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if !inGrid {
			if strings.HasPrefix(line, ";") {
				inGrid = true
				continue
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			a, err := parseAssignment(line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadLevel, lineNo, err)
			}
			assignments = append(assignments, a)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !inGrid {
		return nil, fmt.Errorf("%w: missing ';' separator", ErrBadLevel)
	}
	return Convert(rows, assignments)
}

func parseAssignment(line string) (a Assignment, err error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		err = fmt.Errorf("bad robot locations %q", line)
		return
	}
	if a.Start, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return
	}
	a.Goal, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	return
}

// LoadLevel reads a level file from disk.
func LoadLevel(path string) (*Level, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level: %w", err)
	}
	defer file.Close()
	return ReadLevel(file)
}
