package session

import (
	"robosearch/search"
)

// RobotView is one robot as the presentation layer sees it.
type RobotView struct {
	Index   int    `json:"index"`
	Pos     int    `json:"pos"`
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Goal    int    `json:"goal"`
	OnGoal  bool   `json:"onGoal"`
	Facing  string `json:"facing"`
	Pending int    `json:"pending"`
}

// Snapshot is a consistent copy of the session state taken under the lock.
type Snapshot struct {
	State     string        `json:"state"`
	Replaying bool          `json:"replaying"`
	Robots    []RobotView   `json:"robots"`
	Stats     *search.Stats `json:"stats,omitempty"`
	Expanded  int64         `json:"expanded"`
	Generated int64         `json:"generated"`
}

// Snapshot copies everything a view needs in one critical section.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid := s.level.Grid
	snap := Snapshot{
		State:     s.state.String(),
		Replaying: s.robots.Replaying(),
		Robots:    make([]RobotView, s.robots.Len()),
		Expanded:  s.engine.Progress().Expanded(),
		Generated: s.engine.Progress().Generated(),
	}
	for i, pos := range s.robots.Positions() {
		snap.Robots[i] = RobotView{
			Index:   i,
			Pos:     pos,
			Row:     grid.RowOf(pos),
			Column:  grid.ColumnOf(pos),
			Goal:    s.robots.Goal(i),
			OnGoal:  s.robots.IsOnGoal(i),
			Facing:  s.robots.Facing(i).String(),
			Pending: s.robots.Pending(i),
		}
	}
	if s.stats != nil {
		stats := *s.stats
		snap.Stats = &stats
	}
	return snap
}
