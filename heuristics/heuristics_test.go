package heuristics

import (
	"errors"
	"math"
	"strings"
	"testing"

	"robosearch/models"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOpenRoom(t *testing.T) {
	Convey("Given the debug room with a goal at 18", t, func() {
		level, err := models.Convert(models.DebugLevel, models.DebugAssignments)
		So(err, ShouldBeNil)
		goals := []int{18}

		Convey("Manhattan counts row and column steps", func() {
			h := NewManhattan(level.Grid, goals)
			So(h.Estimate(6, 0), ShouldEqual, 4)
			So(h.Estimate(18, 0), ShouldEqual, 0)
			So(h.TotalEstimate([]int{7}), ShouldEqual, 3)
		})

		Convey("Euclidean is the straight line", func() {
			h := NewEuclidean(level.Grid, goals)
			So(h.Estimate(6, 0), ShouldAlmostEqual, math.Sqrt2*2, 1e-9)
			So(h.Estimate(8, 0), ShouldEqual, 2)
		})

		Convey("Without obstacles Dijkstra equals Manhattan on walkable cells", func() {
			m := NewManhattan(level.Grid, goals)
			d := NewDijkstra(level.Grid, goals)
			for pos := 0; pos < level.Grid.Size(); pos++ {
				if level.Grid.Walkable(pos) {
					So(d.Estimate(pos, 0), ShouldEqual, m.Estimate(pos, 0))
				} else {
					So(math.IsInf(d.Estimate(pos, 0), 1), ShouldBeTrue)
				}
			}
		})

		Convey("New dispatches on kind", func() {
			for _, kind := range []Kind{ManhattanKind, EuclideanKind, DijkstraKind} {
				p, err := New(kind, level.Grid, goals)
				So(err, ShouldBeNil)
				So(p.Kind(), ShouldEqual, kind)
			}
			_, err := New("astral", level.Grid, goals)
			So(errors.Is(err, ErrUnknownKind), ShouldBeTrue)
		})

		Convey("Kinds parse from config strings", func() {
			kind, err := ParseKind("Dijkstra")
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, DijkstraKind)
			_, err = ParseKind("")
			So(errors.Is(err, ErrUnknownKind), ShouldBeTrue)
		})
	})
}

func TestDijkstraObstacles(t *testing.T) {
	Convey("Given walls and traps", t, func() {
		level, err := models.Convert([]string{
			"WWWWWWW",
			"WETTTEW",
			"WEEEEEW",
			"WWWWWWW",
		}, []models.Assignment{{Start: 8, Goal: 12}, {Start: 15, Goal: 19}})
		So(err, ShouldBeNil)
		d := NewDijkstra(level.Grid, []int{12, 19})

		Convey("Traps are routed around when cheaper", func() {
			So(d.Estimate(8, 0), ShouldEqual, 6)
			So(d.Estimate(11, 0), ShouldEqual, 1)
			So(d.Estimate(10, 0), ShouldEqual, 4)
		})

		Convey("Each robot gets its own field and the total sums them", func() {
			So(d.Estimate(15, 1), ShouldEqual, 4)
			So(d.TotalEstimate([]int{8, 15}), ShouldEqual, 10)
		})

		Convey("The dump prints unreachable cells as dashes", func() {
			out := d.String()
			So(out, ShouldStartWith, "dijkstra heuristic\n")
			So(strings.Count(out, "robot "), ShouldEqual, 2)
			So(out, ShouldContainSubstring, " -")
		})
	})

	Convey("Given a goal sealed off by walls", t, func() {
		level, err := models.Convert([]string{
			"WWWWW",
			"WEEEW",
			"WWWWW",
			"WEEEW",
			"WWWWW",
		}, []models.Assignment{{Start: 6, Goal: 16}})
		So(err, ShouldBeNil)

		Convey("Cells on the other side stay unreachable", func() {
			d := NewDijkstra(level.Grid, []int{16})
			So(math.IsInf(d.Estimate(6, 0), 1), ShouldBeTrue)
			So(d.Estimate(18, 0), ShouldEqual, 2)
		})
	})
}
