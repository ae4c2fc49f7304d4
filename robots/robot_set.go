// robots holds everything about the robots that is not needed during a search:
// key locations, planned move stacks, replay flags and facing. Search nodes only
// carry bare positions, so this state is kept out of them.
package robots

import (
	"errors"
	"fmt"
	"strings"

	"robosearch/models"

	log "github.com/sirupsen/logrus"
)

// KeyLocations is a robot's start and goal. Start is refreshed before every
// search, since robots may have been moved by hand.
type KeyLocations struct {
	Start, Goal int
}

// ErrNoRobots is returned when a robot set would be built over zero robots.
var ErrNoRobots = errors.New("robot set is empty")

// RobotSet is the ordered list of robots; index is identity for the session.
// It is not safe for concurrent use; the session serializes access.
type RobotSet struct {
	grid      *models.Grid
	positions []int
	keys      []KeyLocations
	stacks    [][]models.Direction
	replaying []bool
	facing    []models.Direction
}

// NewRobotSet places one robot per assignment on its start position.
func NewRobotSet(grid *models.Grid, assignments []models.Assignment) (*RobotSet, error) {
	if len(assignments) == 0 {
		return nil, ErrNoRobots
	}
	rs := &RobotSet{
		grid:      grid,
		positions: make([]int, len(assignments)),
		keys:      make([]KeyLocations, len(assignments)),
		stacks:    make([][]models.Direction, len(assignments)),
		replaying: make([]bool, len(assignments)),
		facing:    make([]models.Direction, len(assignments)),
	}
	for i, a := range assignments {
		if !grid.InBounds(a.Start) || !grid.InBounds(a.Goal) {
			return nil, fmt.Errorf("robot %d: %w", i, models.ErrOutOfBounds)
		}
		rs.positions[i] = a.Start
		rs.keys[i] = KeyLocations{Start: a.Start, Goal: a.Goal}
		// Robots face down until they first move.
		rs.facing[i] = models.Down
	}
	return rs, nil
}

// Len is the number of robots.
func (rs *RobotSet) Len() int { return len(rs.positions) }

// Positions returns a copy of the current joint configuration.
func (rs *RobotSet) Positions() []int {
	return append([]int(nil), rs.positions...)
}

// Goals returns the goal of every robot, index-aligned.
func (rs *RobotSet) Goals() []int {
	goals := make([]int, len(rs.keys))
	for i, k := range rs.keys {
		goals[i] = k.Goal
	}
	return goals
}

func (rs *RobotSet) Goal(i int) int  { return rs.keys[i].Goal }
func (rs *RobotSet) Start(i int) int { return rs.keys[i].Start }

// Facing is the last direction robot i tried to take, a presentation hint.
func (rs *RobotSet) Facing(i int) models.Direction { return rs.facing[i] }

// IsAnyAt reports whether some robot stands on pos.
func (rs *RobotSet) IsAnyAt(pos int) bool {
	return rs.IndexAt(pos) >= 0
}

// IndexAt returns the index of the robot standing on pos, or -1.
func (rs *RobotSet) IndexAt(pos int) int {
	for i, p := range rs.positions {
		if p == pos {
			return i
		}
	}
	return -1
}

// GoalIndexAt returns the index of the robot whose goal is pos, or -1.
func (rs *RobotSet) GoalIndexAt(pos int) int {
	for i, k := range rs.keys {
		if k.Goal == pos {
			return i
		}
	}
	return -1
}

// IsGoalReachedAt reports whether pos is some robot's goal and that robot is on it.
func (rs *RobotSet) IsGoalReachedAt(pos int) bool {
	i := rs.GoalIndexAt(pos)
	return i >= 0 && rs.positions[i] == pos
}

// IsOnGoal reports whether robot i stands on its own goal.
func (rs *RobotSet) IsOnGoal(i int) bool {
	if i < 0 || i >= len(rs.positions) {
		log.WithField("robot", i).Error("robot index out of range")
		return false
	}
	return rs.positions[i] == rs.keys[i].Goal
}

// AllOnGoals reports whether every robot is on its own goal, pairwise by index.
func (rs *RobotSet) AllOnGoals() bool {
	return OnGoals(rs.positions, rs.Goals())
}

// OnGoals is the goal test over a bare configuration.
func OnGoals(positions, goals []int) bool {
	for i, p := range positions {
		if p != goals[i] {
			return false
		}
	}
	return true
}

// ReInit prepares the set for a new search: current positions become the
// new starts, stale move stacks are dropped and replay flags cleared.
func (rs *RobotSet) ReInit() {
	for i := range rs.positions {
		rs.keys[i].Start = rs.positions[i]
		rs.stacks[i] = rs.stacks[i][:0]
		rs.replaying[i] = false
	}
}

// Load installs the planned moves, one forward-ordered slice per robot, and
// marks every robot that has moves for replay. Moves are stored as stacks
// whose top is the next move to play.
func (rs *RobotSet) Load(paths [][]models.Direction) error {
	if len(paths) != len(rs.positions) {
		return fmt.Errorf("got %d paths for %d robots", len(paths), len(rs.positions))
	}
	for i, path := range paths {
		stack := make([]models.Direction, 0, len(path))
		for j := len(path) - 1; j >= 0; j-- {
			stack = append(stack, path[j])
		}
		rs.stacks[i] = stack
		rs.replaying[i] = len(stack) > 0
	}
	return nil
}

// Push stacks one move on top of robot i's plan.
func (rs *RobotSet) Push(i int, d models.Direction) {
	rs.stacks[i] = append(rs.stacks[i], d)
}

// Pending is the number of planned moves left for robot i.
func (rs *RobotSet) Pending(i int) int { return len(rs.stacks[i]) }

// SetAllReplaying sets every robot's replay flag.
func (rs *RobotSet) SetAllReplaying(replaying bool) {
	for i := range rs.replaying {
		rs.replaying[i] = replaying
	}
}

// Replaying reports whether any robot still has a plan to play.
func (rs *RobotSet) Replaying() bool {
	for _, r := range rs.replaying {
		if r {
			return true
		}
	}
	return false
}

func (rs *RobotSet) pop(i int) models.Direction {
	top := len(rs.stacks[i]) - 1
	d := rs.stacks[i][top]
	rs.stacks[i] = rs.stacks[i][:top]
	return d
}

// Advance plays one planned move for every robot still replaying. Each move
// is re-validated against the live configuration; an illegal move is
// discarded, never requeued, and only updates the robot's facing. Advance
// returns false once nothing is left to replay.
func (rs *RobotSet) Advance() bool {
	if !rs.Replaying() {
		return false
	}
	for i := range rs.positions {
		rs.advanceOne(i)
	}
	return true
}

func (rs *RobotSet) advanceOne(i int) {
	if !rs.replaying[i] {
		return
	}
	if len(rs.stacks[i]) == 0 {
		rs.replaying[i] = false
		return
	}
	d := rs.pop(i)
	if len(rs.stacks[i]) == 0 {
		rs.replaying[i] = false
	}
	if d == models.None {
		return
	}
	rs.facing[i] = d
	// NOTE: robots move in index order, so a robot may step into a cell its
	// lower-index neighbor just vacated. Plans from the search never need this.
	dest, ok, err := rs.grid.Destination(rs.positions, i, d)
	if err != nil {
		log.WithFields(log.Fields{"robot": i, "dir": d}).WithError(err).Warn("replay move dropped")
		return
	}
	if ok {
		rs.positions[i] = dest
	}
}

// MoveManually steps robot i in direction d when no replay is in progress.
// It returns whether the robot moved.
func (rs *RobotSet) MoveManually(i int, d models.Direction) bool {
	if rs.Replaying() || i < 0 || i >= len(rs.positions) {
		return false
	}
	rs.facing[i] = d
	dest, ok, err := rs.grid.Destination(rs.positions, i, d)
	if err != nil || !ok {
		return false
	}
	rs.positions[i] = dest
	return true
}

func (rs *RobotSet) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "RobotSet: %d robots\n", len(rs.positions))
	for i, k := range rs.keys {
		fmt.Fprintf(&sb, "\trobot %d: start=%d goal=%d pos=%d\n", i, k.Start, k.Goal, rs.positions[i])
	}
	return sb.String()
}
