// board_views contains the views derived from the Board view-model: the grid
// with its robots, and the search status panel.
package board_views

import (
	"fmt"
	"time"

	"robosearch/models"
	"robosearch/session"
)

// Tile is a grid cell placed in board coordinates; tiles never change for a level.
type Tile struct {
	Pos, X, Y int
	Fill      string
	Label     string
}

// Marker is a robot placed in board coordinates, with its goal.
type Marker struct {
	Index        int
	X, Y         int
	GoalX, GoalY int
	Color        string
	Stroke       string
	Arrow        string
	Pending      int
	OnGoal       bool
}

// Status is the text shown in the status panel.
type Status struct {
	State     string
	Heuristic string
	Expanded  string
	Generated string
	Cost      string
	Elapsed   string
}

// Board is the view-model: fields are immediately usable as view parameters.
type Board struct {
	Rows, Columns int
	Tiles         []Tile
	Robots        []Marker
	Status        Status
}

var palette = []string{"royalblue", "darkorange", "seagreen", "crimson", "purple", "teal"}

// NewConverter returns the snapshot to Board conversion for one grid. Tiles
// are computed once and shared by every Board.
func NewConverter(grid *models.Grid) func(session.Snapshot) Board {
	tiles := Tiles(grid)
	return func(snap session.Snapshot) Board {
		return Board{
			Rows:    grid.Rows(),
			Columns: grid.Columns(),
			Tiles:   tiles,
			Robots:  markers(grid, snap),
			Status:  status(snap),
		}
	}
}

func Tiles(grid *models.Grid) []Tile {
	tiles := make([]Tile, grid.Size())
	for pos := range tiles {
		cell := grid.At(pos)
		tiles[pos] = Tile{
			Pos:   pos,
			X:     grid.ColumnOf(pos),
			Y:     grid.RowOf(pos),
			Fill:  getFill(cell),
			Label: fmt.Sprintf("%d", pos),
		}
	}
	return tiles
}

func markers(grid *models.Grid, snap session.Snapshot) []Marker {
	out := make([]Marker, len(snap.Robots))
	for i, r := range snap.Robots {
		stroke := "black"
		if r.OnGoal {
			stroke = "gold"
		}
		out[i] = Marker{
			Index:   r.Index,
			X:       r.Column,
			Y:       r.Row,
			GoalX:   grid.ColumnOf(r.Goal),
			GoalY:   grid.RowOf(r.Goal),
			Color:   palette[i%len(palette)],
			Stroke:  stroke,
			Arrow:   getArrow(r.Facing),
			Pending: r.Pending,
			OnGoal:  r.OnGoal,
		}
	}
	return out
}

func status(snap session.Snapshot) Status {
	st := Status{
		State:     snap.State,
		Heuristic: "-",
		Expanded:  fmt.Sprintf("%d", snap.Expanded),
		Generated: fmt.Sprintf("%d", snap.Generated),
		Cost:      "-",
		Elapsed:   "-",
	}
	if snap.Stats != nil {
		st.Heuristic = snap.Stats.Heuristic
		st.Cost = fmt.Sprintf("%d", snap.Stats.Cost)
		st.Elapsed = snap.Stats.Elapsed.Round(time.Microsecond).String()
	}
	return st
}

func getFill(cell models.Cell) (fill string) {
	switch cell {
	case models.Wall:
		fill = "dimgray"
	case models.Trap:
		fill = "salmon"
	case models.Goal:
		fill = "lightyellow"
	default:
		fill = "whitesmoke"
	}
	return
}

func getArrow(facing string) string {
	switch facing {
	case "UP":
		return "↑"
	case "DOWN":
		return "↓"
	case "LEFT":
		return "←"
	case "RIGHT":
		return "→"
	}
	return "•"
}
