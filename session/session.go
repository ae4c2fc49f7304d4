// session is the facade the presentation layer drives: one level, one robot
// set, one search engine, and the state machine that keeps searches, replay
// and manual moves from overlapping.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"robosearch/heuristics"
	"robosearch/models"
	"robosearch/robots"
	"robosearch/search"

	log "github.com/sirupsen/logrus"
)

// State of the session's search state machine.
type State int

const (
	Idle State = iota
	Searching
	Solved
	Exhausted
)

func (st State) String() string {
	switch st {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Solved:
		return "solved"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// ErrBusy rejects a search launched while another search or a replay runs.
var ErrBusy = errors.New("a search or replay is in progress")

// Session serializes all access to the robot set. The search itself runs
// without holding the lock; the Searching state keeps others out meanwhile.
type Session struct {
	mu     sync.Mutex
	level  *models.Level
	cfg    *search.Config
	robots *robots.RobotSet
	engine *search.Engine
	state  State
	stats  *search.Stats
}

// New builds a session over a validated level.
func New(level *models.Level, cfg *search.Config) (*Session, error) {
	if cfg == nil {
		cfg = search.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rs, err := robots.NewRobotSet(level.Grid, level.Assignments)
	if err != nil {
		return nil, err
	}
	engine, err := search.NewEngine(level.Grid, rs.Goals(), cfg.Options())
	if err != nil {
		return nil, err
	}
	return &Session{
		level:  level,
		cfg:    cfg,
		robots: rs,
		engine: engine,
	}, nil
}

// Grid is the level grid; it is read-only.
func (s *Session) Grid() *models.Grid { return s.level.Grid }

// Progress exposes the live counters of the running or last search.
func (s *Session) Progress() *search.Progress { return s.engine.Progress() }

// LaunchSearch runs a search from the robots' current positions with the
// given heuristic, or the configured one when kind is empty, and loads the
// plan for replay on success. An exhausted search leaves the robots where
// they are and is not an error. It blocks until the search ends.
func (s *Session) LaunchSearch(ctx context.Context, kind heuristics.Kind) (*search.Result, error) {
	if kind == "" {
		var err error
		if kind, err = s.cfg.HeuristicKind(); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	if s.state == Searching || s.robots.Replaying() {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.state = Searching
	s.stats = nil
	s.robots.ReInit()
	start := s.robots.Positions()
	goals := s.robots.Goals()
	s.mu.Unlock()

	// TODO: add a cancel route; a running search only stops on its deadline or at shutdown.
	result, err := s.search(ctx, kind, start, goals)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Idle
		return nil, err
	}
	s.stats = &result.Stats
	if result.Outcome != search.Solved {
		s.state = Exhausted
		return result, nil
	}
	if err = s.robots.Load(result.Paths); err != nil {
		s.state = Idle
		return nil, fmt.Errorf("%w: %v", search.ErrInvariant, err)
	}
	s.state = Solved
	return result, nil
}

func (s *Session) search(ctx context.Context, kind heuristics.Kind, start, goals []int) (*search.Result, error) {
	h, err := heuristics.New(kind, s.level.Grid, goals)
	if err != nil {
		return nil, err
	}
	log.Debug(h)

	searchCtx, cancel, err := s.cfg.WithSearchDeadline(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	result, err := s.engine.Search(searchCtx, start, h)
	if err != nil {
		return nil, err
	}
	if result.Outcome == search.Solved {
		end, _, err := search.Replay(s.level.Grid, start, result.Paths)
		if err != nil {
			return nil, fmt.Errorf("%w: plan does not replay: %v", search.ErrInvariant, err)
		}
		if !robots.OnGoals(end, goals) {
			return nil, fmt.Errorf("%w: plan ends at %v, goals are %v", search.ErrInvariant, end, goals)
		}
	}
	return result, nil
}

// IsSearchingOrReplaying reports whether manual moves and new searches are
// currently locked out.
func (s *Session) IsSearchingOrReplaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Searching || s.robots.Replaying()
}

// AdvanceReplay plays one step of the loaded plan and reports whether
// anything happened. Safe to call at any time; once the plan is spent the
// session returns to Idle.
func (s *Session) AdvanceReplay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Searching {
		return false
	}
	advanced := s.robots.Advance()
	if !s.robots.Replaying() && (s.state == Solved || s.state == Exhausted) {
		s.state = Idle
	}
	return advanced
}

// MoveRobotManually steps one robot unless a search or replay is running.
func (s *Session) MoveRobotManually(robot int, d models.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Searching {
		return false
	}
	if !s.robots.MoveManually(robot, d) {
		return false
	}
	s.state = Idle
	return true
}

// RobotPositions returns the current joint configuration.
func (s *Session) RobotPositions() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.robots.Positions()
}

func (s *Session) IsRobotOnGoal(robot int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.robots.IsOnGoal(robot)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns the counters of the last finished search.
func (s *Session) Stats() (search.Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return search.Stats{}, false
	}
	return *s.stats, true
}
