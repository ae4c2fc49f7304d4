package main

import (
	"context"
	"testing"
	"time"

	"robosearch/heuristics"
	"robosearch/models"
	"robosearch/session"

	. "github.com/smartystreets/goconvey/convey"
)

func TestReplayPump(t *testing.T) {
	Convey("Given a solved debug level", t, func() {
		level, err := models.Convert(models.DebugLevel, models.DebugAssignments)
		So(err, ShouldBeNil)
		sess, err := session.New(level, nil)
		So(err, ShouldBeNil)
		_, err = sess.LaunchSearch(context.Background(), heuristics.ManhattanKind)
		So(err, ShouldBeNil)

		Convey("The pump replays the plan and publishes snapshots", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			snapshots := make(chan session.Snapshot)
			go replay(ctx, sess, time.Millisecond, snapshots)

			var last session.Snapshot
			for !sess.IsRobotOnGoal(0) || last.State != "idle" {
				select {
				case last = <-snapshots:
				case <-ctx.Done():
					t.Fatal("replay did not finish")
				}
			}
			So(last.Robots[0].Pos, ShouldEqual, 18)
			So(last.Replaying, ShouldBeFalse)
		})

		Convey("Snapshots are dropped while nobody listens", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				replay(ctx, sess, time.Millisecond, make(chan session.Snapshot))
				close(done)
			}()
			time.Sleep(50 * time.Millisecond)
			cancel()
			<-done
			So(sess.RobotPositions(), ShouldResemble, []int{18})
		})
	})
}

func TestSelectLevel(t *testing.T) {
	Convey("Level selection", t, func() {
		Convey("A level file wins", func() {
			path := "levels/crossing.txt"
			levelPath = &path
			level, err := selectLevel()
			So(err, ShouldBeNil)
			So(len(level.Assignments), ShouldEqual, 2)
		})
		Convey("Without a file the default level is used", func() {
			empty := ""
			off := false
			levelPath, dbg = &empty, &off
			level, err := selectLevel()
			So(err, ShouldBeNil)
			So(level.Assignments, ShouldResemble, models.DefaultAssignments)
		})
	})
}
