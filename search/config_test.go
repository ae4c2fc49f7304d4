package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"robosearch/heuristics"

	. "github.com/smartystreets/goconvey/convey"
)

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "search.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromYaml(t *testing.T) {
	Convey("Given a search config file", t, func() {
		Convey("Every field is decoded from def", func() {
			path := writeConfig(t, `
kind: search
def:
  heuristic: manhattan
  variant: sequential
  reopen: false
  max_expansions: 5000
  search_deadline:
    duration: 2s
  replay_interval: 100ms
`)
			cfg, err := FromYaml(path)
			So(err, ShouldBeNil)
			kind, err := cfg.HeuristicKind()
			So(err, ShouldBeNil)
			So(kind, ShouldEqual, heuristics.ManhattanKind)
			So(cfg.Variant, ShouldEqual, Sequential)
			So(cfg.Reopen, ShouldBeFalse)
			So(cfg.MaxExpansions, ShouldEqual, 5000)
			every, err := cfg.ReplayEvery()
			So(err, ShouldBeNil)
			So(every, ShouldEqual, 100*time.Millisecond)
			So(cfg.Options(), ShouldResemble, Options{Variant: Sequential, MaxExpansions: 5000})

			Convey("The deadline bounds the derived context", func() {
				ctx, cancel, err := cfg.WithSearchDeadline(context.Background())
				So(err, ShouldBeNil)
				defer cancel()
				deadline, ok := ctx.Deadline()
				So(ok, ShouldBeTrue)
				So(time.Until(deadline), ShouldBeLessThanOrEqualTo, 2*time.Second)
			})
		})

		Convey("Missing fields keep their defaults", func() {
			cfg, err := FromYaml(writeConfig(t, "kind: search\ndef:\n  heuristic: euclidean\n"))
			So(err, ShouldBeNil)
			So(cfg.Variant, ShouldEqual, Simultaneous)
			So(cfg.Reopen, ShouldBeTrue)
			So(cfg.ReplayInterval, ShouldEqual, "250ms")

			ctx, cancel, err := cfg.WithSearchDeadline(context.Background())
			So(err, ShouldBeNil)
			defer cancel()
			_, ok := ctx.Deadline()
			So(ok, ShouldBeFalse)
		})

		Convey("An unknown heuristic is rejected", func() {
			_, err := FromYaml(writeConfig(t, "kind: search\ndef:\n  heuristic: astral\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("A config of another kind is rejected", func() {
			_, err := FromYaml(writeConfig(t, "kind: alpha_mc\ndef:\n  heuristic: dijkstra\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("A missing file is an error", func() {
			_, err := FromYaml(filepath.Join(t.TempDir(), "absent.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
