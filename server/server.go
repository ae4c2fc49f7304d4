package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"robosearch/heuristics"
	"robosearch/models"
	"robosearch/search"
	"robosearch/server/fastview"
	"robosearch/server/root_view"
	"robosearch/session"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const shutdownGracePeriod = 5 * time.Second

// Server serves the board page and its websocket, plus the small control
// API the page uses to launch searches and move robots. The element-update
// channel has a single reader, so one page is served live at a time.
type Server struct {
	addr     string
	session  *session.Session
	rootView *root_view.RootView
	router   *mux.Router
}

// NewServer builds the views over @snapshots and the routes over @sess.
func NewServer(
	ctx context.Context,
	addr string,
	sess *session.Session,
	snapshots <-chan session.Snapshot,
) (*Server, error) {
	rootView, err := root_view.NewRootView(ctx, sess.Grid(), snapshots)
	if err != nil {
		return nil, err
	}

	server := &Server{
		addr:     addr,
		session:  sess,
		rootView: rootView,
	}
	server.router = server.routes()
	return server, nil
}

func (server *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", server.serveWebsocket)
	router.HandleFunc("/stats", server.serveStats).Methods(http.MethodGet)
	router.HandleFunc("/search/{heuristic}", server.serveSearch).Methods(http.MethodPost)
	router.HandleFunc("/robots/{index:[0-9]+}/{direction}", server.serveMove).Methods(http.MethodPost)
	return router
}

// Handler exposes the routes, for tests and embedding.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (server *Server) Serve(ctx context.Context) (err error) {
	srv := &http.Server{
		Addr:    server.addr,
		Handler: server.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			log.WithError(shutdownErr).Warn("server shutdown")
		}
	}()

	log.WithField("addr", server.addr).Info("serving")
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// serveWebsocket publishes the page's element updates until it disconnects.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(server.rootView.Updates(), w, r)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	log.WithField("remote", r.RemoteAddr).Info("page connected")
	if err = cli.Sync(); err != nil {
		log.WithError(err).Warn("websocket client failed")
		return
	}
	log.WithField("remote", r.RemoteAddr).Info("page disconnected")
}

func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	model := server.rootView.Model(server.session.Snapshot())
	if err := renderTemplate(w, server.rootView, model); err != nil {
		log.WithError(err).Error("index template")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}
	return t.Execute(w, data)
}

func (server *Server) serveStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, server.session.Snapshot())
}

// serveSearch runs a search to completion; the page follows its progress
// over the websocket meanwhile. Closing the request cancels the search.
func (server *Server) serveSearch(w http.ResponseWriter, r *http.Request) {
	kind, err := heuristics.ParseKind(mux.Vars(r)["heuristic"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := server.session.LaunchSearch(r.Context(), kind)
	switch {
	case errors.Is(err, session.ErrBusy):
		writeError(w, http.StatusConflict, err)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, search.ErrExpansionLimit):
		writeError(w, http.StatusServiceUnavailable, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Stats)
}

func (server *Server) serveMove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dir, err := models.ParseDirection(vars["direction"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if index >= len(server.session.RobotPositions()) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no robot %d", index))
		return
	}
	if server.session.IsSearchingOrReplaying() {
		writeError(w, http.StatusConflict, session.ErrBusy)
		return
	}
	moved := server.session.MoveRobotManually(index, dir)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"moved":     moved,
		"positions": server.session.RobotPositions(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
