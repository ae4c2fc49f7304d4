package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"robosearch/models"
	"robosearch/search"
	"robosearch/session"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestServer(ctx context.Context) (*Server, *session.Session) {
	level, err := models.Convert(models.DefaultLevel, models.DefaultAssignments)
	So(err, ShouldBeNil)
	sess, err := session.New(level, nil)
	So(err, ShouldBeNil)
	server, err := NewServer(ctx, "localhost:0", sess, make(chan session.Snapshot))
	So(err, ShouldBeNil)
	return server, sess
}

func do(server *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	Convey("Given a server over the default level", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		server, sess := newTestServer(ctx)

		Convey("The index renders the board and the status panel", func() {
			rec := do(server, http.MethodGet, "/")
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := rec.Body.String()
			So(body, ShouldContainSubstring, `id="robot-0"`)
			So(body, ShouldContainSubstring, `id="robot-1"`)
			So(body, ShouldContainSubstring, `id="status-state"`)
			So(body, ShouldContainSubstring, "/ws")
		})

		Convey("Stats report the current snapshot", func() {
			rec := do(server, http.MethodGet, "/stats")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var snap session.Snapshot
			So(json.Unmarshal(rec.Body.Bytes(), &snap), ShouldBeNil)
			So(snap.State, ShouldEqual, "idle")
			So(len(snap.Robots), ShouldEqual, 2)
			So(snap.Robots[0].Pos, ShouldEqual, 28)
		})

		Convey("A manual move is applied", func() {
			rec := do(server, http.MethodPost, "/robots/0/right")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(sess.RobotPositions(), ShouldResemble, []int{29, 13})
		})

		Convey("Bad move requests are rejected", func() {
			So(do(server, http.MethodPost, "/robots/7/up").Code, ShouldEqual, http.StatusNotFound)
			So(do(server, http.MethodPost, "/robots/0/sideways").Code, ShouldEqual, http.StatusBadRequest)
			So(do(server, http.MethodGet, "/robots/0/up").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("A search returns its stats and locks out manual moves during replay", func() {
			rec := do(server, http.MethodPost, "/search/dijkstra")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var stats search.Stats
			So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
			So(stats.Outcome, ShouldEqual, "solved")
			So(stats.Heuristic, ShouldEqual, "dijkstra")

			So(do(server, http.MethodPost, "/robots/0/right").Code, ShouldEqual, http.StatusConflict)
			So(do(server, http.MethodPost, "/search/manhattan").Code, ShouldEqual, http.StatusConflict)
		})

		Convey("An unknown heuristic is a bad request", func() {
			So(do(server, http.MethodPost, "/search/astral").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}
