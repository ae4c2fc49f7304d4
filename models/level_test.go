package models

import (
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestReadLevel(t *testing.T) {
	Convey("Given a level file", t, func() {
		Convey("Robots, separator and rows are decoded", func() {
			level, err := ReadLevel(strings.NewReader("6,18\n12, 8\n;\nWWWWW\nWETEW\nWEEEW\nWEEEW\nWWWWW\n"))
			So(err, ShouldBeNil)
			So(level.Assignments, ShouldResemble, []Assignment{{6, 18}, {12, 8}})
			So(level.Grid.Rows(), ShouldEqual, 5)
			So(level.Grid.At(7), ShouldEqual, Trap)
			So(level.Grid.At(8), ShouldEqual, Goal)
		})

		Convey("The shipped level files load", func() {
			crossing, err := LoadLevel("../levels/crossing.txt")
			So(err, ShouldBeNil)
			So(crossing.Assignments, ShouldResemble, []Assignment{{11, 13}, {7, 17}})
			traps, err := LoadLevel("../levels/traps.txt")
			So(err, ShouldBeNil)
			So(len(traps.Assignments), ShouldEqual, 3)
			So(traps.Grid.At(43), ShouldEqual, Trap)
			_, err = LoadLevel("../levels/absent.txt")
			So(err, ShouldNotBeNil)
		})

		Convey("A missing separator is rejected", func() {
			_, err := ReadLevel(strings.NewReader("6,18\nWWWWW\n"))
			So(errors.Is(err, ErrBadLevel), ShouldBeTrue)
		})

		Convey("A malformed robot line is rejected", func() {
			_, err := ReadLevel(strings.NewReader("6;18\n;\nWWW\nWEW\nWWW\n"))
			So(errors.Is(err, ErrBadLevel), ShouldBeTrue)
		})
	})
}

func TestConvert(t *testing.T) {
	Convey("Level validation", t, func() {
		Convey("The built-in levels are valid", func() {
			_, err := Convert(DebugLevel, DebugAssignments)
			So(err, ShouldBeNil)
			_, err = Convert(DefaultLevel, DefaultAssignments)
			So(err, ShouldBeNil)
		})

		Convey("Zero robots are rejected", func() {
			_, err := Convert(DebugLevel, nil)
			So(errors.Is(err, ErrBadLevel), ShouldBeTrue)
		})

		Convey("An open border is rejected", func() {
			_, err := Convert([]string{"WWW", "EEW", "WWW"}, []Assignment{{4, 4}})
			So(errors.Is(err, ErrBadLevel), ShouldBeTrue)
		})

		Convey("Ragged rows are rejected", func() {
			_, err := Convert([]string{"WWWW", "WEW", "WWWW"}, []Assignment{{5, 5}})
			So(errors.Is(err, ErrBadLevel), ShouldBeTrue)
		})

		Convey("A robot starting in a wall is rejected", func() {
			_, err := Convert(DebugLevel, []Assignment{{0, 18}})
			So(errors.Is(err, ErrBadLevel), ShouldBeTrue)
		})

		Convey("Shared starts or goals are rejected", func() {
			_, err := Convert(DebugLevel, []Assignment{{6, 18}, {6, 12}})
			So(errors.Is(err, ErrBadLevel), ShouldBeTrue)
			_, err = Convert(DebugLevel, []Assignment{{6, 18}, {7, 18}})
			So(errors.Is(err, ErrBadLevel), ShouldBeTrue)
		})

		Convey("Off-grid positions are rejected", func() {
			_, err := Convert(DebugLevel, []Assignment{{6, 40}})
			So(errors.Is(err, ErrOutOfBounds), ShouldBeTrue)
		})
	})
}
