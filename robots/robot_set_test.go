package robots

import (
	"errors"
	"testing"

	"robosearch/models"

	. "github.com/smartystreets/goconvey/convey"
)

var room = []string{
	"WWWWW",
	"WEEEW",
	"WEEEW",
	"WEEEW",
	"WWWWW",
}

func newSet(assignments ...models.Assignment) *RobotSet {
	level, err := models.Convert(room, assignments)
	So(err, ShouldBeNil)
	rs, err := NewRobotSet(level.Grid, level.Assignments)
	So(err, ShouldBeNil)
	return rs
}

func TestRobotSet(t *testing.T) {
	Convey("Given two robots in the room", t, func() {
		rs := newSet(
			models.Assignment{Start: 6, Goal: 8},
			models.Assignment{Start: 16, Goal: 18},
		)

		Convey("Lookups follow robot index", func() {
			So(rs.Len(), ShouldEqual, 2)
			So(rs.Positions(), ShouldResemble, []int{6, 16})
			So(rs.Goals(), ShouldResemble, []int{8, 18})
			So(rs.IsAnyAt(16), ShouldBeTrue)
			So(rs.IsAnyAt(12), ShouldBeFalse)
			So(rs.IndexAt(16), ShouldEqual, 1)
			So(rs.IndexAt(12), ShouldEqual, -1)
			So(rs.GoalIndexAt(18), ShouldEqual, 1)
			So(rs.GoalIndexAt(6), ShouldEqual, -1)
			So(rs.IsGoalReachedAt(8), ShouldBeFalse)
		})

		Convey("All-on-goals needs every robot on its own goal", func() {
			So(OnGoals([]int{8, 18}, rs.Goals()), ShouldBeTrue)
			So(OnGoals([]int{18, 8}, rs.Goals()), ShouldBeFalse)
			So(rs.AllOnGoals(), ShouldBeFalse)
		})

		Convey("Manual moves are applied when legal", func() {
			So(rs.MoveManually(0, models.Right), ShouldBeTrue)
			So(rs.MoveManually(0, models.Up), ShouldBeFalse)
			So(rs.Positions(), ShouldResemble, []int{7, 16})
			So(rs.Facing(0), ShouldEqual, models.Up)
			So(rs.MoveManually(5, models.Up), ShouldBeFalse)

			Convey("ReInit takes the current positions as the new starts", func() {
				rs.Push(1, models.Right)
				rs.ReInit()
				So(rs.Start(0), ShouldEqual, 7)
				So(rs.Pending(1), ShouldEqual, 0)
				So(rs.Replaying(), ShouldBeFalse)
			})
		})

		Convey("A loaded plan replays in forward order", func() {
			err := rs.Load([][]models.Direction{
				{models.Right, models.Right},
				{models.None, models.Right},
			})
			So(err, ShouldBeNil)
			So(rs.Replaying(), ShouldBeTrue)
			So(rs.Pending(0), ShouldEqual, 2)

			Convey("Manual moves are rejected meanwhile", func() {
				So(rs.MoveManually(1, models.Up), ShouldBeFalse)
				So(rs.Positions(), ShouldResemble, []int{6, 16})
			})

			Convey("Advancing lands both robots on their goals", func() {
				So(rs.Advance(), ShouldBeTrue)
				So(rs.Positions(), ShouldResemble, []int{7, 16})
				So(rs.Advance(), ShouldBeTrue)
				So(rs.Positions(), ShouldResemble, []int{8, 17})
				So(rs.Replaying(), ShouldBeFalse)
				So(rs.Advance(), ShouldBeFalse)
				So(rs.Advance(), ShouldBeFalse)
				So(rs.IsOnGoal(0), ShouldBeTrue)
				So(rs.IsOnGoal(1), ShouldBeFalse)
				So(rs.IsGoalReachedAt(8), ShouldBeTrue)
			})
		})

		Convey("An illegal replay move is dropped, not retried", func() {
			err := rs.Load([][]models.Direction{
				{models.Up, models.Right},
				{},
			})
			So(err, ShouldBeNil)
			So(rs.Advance(), ShouldBeTrue)
			So(rs.Positions(), ShouldResemble, []int{6, 16})
			So(rs.Facing(0), ShouldEqual, models.Up)
			So(rs.Pending(0), ShouldEqual, 1)
			So(rs.Advance(), ShouldBeTrue)
			So(rs.Positions(), ShouldResemble, []int{7, 16})
			So(rs.Advance(), ShouldBeFalse)
		})

		Convey("A plan must cover every robot", func() {
			So(rs.Load([][]models.Direction{{models.Up}}), ShouldNotBeNil)
		})
	})

	Convey("An empty assignment list is rejected", t, func() {
		level, err := models.Convert(room, []models.Assignment{{Start: 6, Goal: 8}})
		So(err, ShouldBeNil)
		_, err = NewRobotSet(level.Grid, nil)
		So(errors.Is(err, ErrNoRobots), ShouldBeTrue)
	})
}
