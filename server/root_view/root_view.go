package root_view

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"robosearch/heuristics"
	"robosearch/models"
	"robosearch/server/board_views"
	"robosearch/server/fastview"
	"robosearch/session"

	channerics "github.com/niceyeti/channerics/channels"
)

// RootView is the index page: the container for all view components, their
// channel wiring, and the websocket and control bootstrap script.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
	convert func(session.Snapshot) board_views.Board
}

// NewRootView builds the page's views over the snapshot stream.
func NewRootView(
	ctx context.Context,
	grid *models.Grid,
	snapshots <-chan session.Snapshot,
) (*RootView, error) {
	convert := board_views.NewConverter(grid)
	views, err := fastview.NewViewBuilder[session.Snapshot, board_views.Board]().
		WithContext(ctx).
		WithModel(snapshots, convert).
		WithView(func(
			done <-chan struct{},
			boards <-chan board_views.Board) fastview.ViewComponent {
			return board_views.NewBoardView(done, boards)
		}).
		WithView(func(
			done <-chan struct{},
			boards <-chan board_views.Board) fastview.ViewComponent {
			return board_views.NewStatusView(done, boards)
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build views: %w", err)
	}

	return &RootView{
		views:   views,
		updates: fanIn(ctx.Done(), views),
		convert: convert,
	}, nil
}

// Updates is the aggregated ele-update channel of every view.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Model converts a snapshot into the data the page template renders with.
func (rv *RootView) Model(snap session.Snapshot) board_views.Board {
	return rv.convert(snap)
}

// Parse builds the page template and returns its name. It also sets the
// func-map the child views depend on.
func (rv *RootView) Parse(
	parent *template.Template,
) (name string, err error) {
	rt := parent.Funcs(
		template.FuncMap{
			"add":  func(i, j int) int { return i + j },
			"sub":  func(i, j int) int { return i - j },
			"mult": func(i, j int) int { return i * j },
			"div":  func(i, j int) int { return i / j },
		})

	var bodySpec strings.Builder
	for _, vc := range rv.views {
		tname, parseErr := vc.Parse(rt)
		if parseErr != nil {
			return "", parseErr
		}
		bodySpec.WriteString(`{{ template "` + tname + `" . }}`)
	}

	var buttons strings.Builder
	for _, kind := range []heuristics.Kind{heuristics.ManhattanKind, heuristics.EuclideanKind, heuristics.DijkstraKind} {
		fmt.Fprintf(&buttons, `<button onclick="search('%s')">%s</button>`, kind, kind)
	}

	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + location.host + "/ws");
				ws.onopen = function (event) {
					console.log("Web socket opened")
				};
				ws.onerror = function (event) {
					console.log('WebSocket error: ', event);
				};
				// Apply the element updates pushed by the server.
				ws.onmessage = function (event) {
					const items = JSON.parse(event.data)
					for (const update of items) {
						const ele = document.getElementById(update.EleId)
						if (!ele) {
							continue
						}
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value)
							}
						}
					}
				}

				function search(kind) {
					fetch("/search/" + kind, { method: "POST" })
						.then(resp => resp.json())
						.then(body => console.log(body))
				}

				// Digits select a robot, arrow keys move it while nothing replays.
				let selected = 0
				const keys = { ArrowUp: "up", ArrowDown: "down", ArrowLeft: "left", ArrowRight: "right" }
				document.addEventListener("keydown", function (event) {
					if (event.key >= "0" && event.key <= "9") {
						selected = Number(event.key)
						document.getElementById("selected").textContent = selected
						return
					}
					const dir = keys[event.key]
					if (dir) {
						event.preventDefault()
						fetch("/robots/" + selected + "/" + dir, { method: "POST" })
					}
				})
			</script>
		</head>
		<body>
		<div>` + buttons.String() + ` robot <span id="selected">0</span></div>
		` + bodySpec.String() + `
		</body></html>
	{{ end }}
	`

	_, err = rt.Parse(indexTemplate)
	return
}

// fanIn merges the views' ele-update channels into one, batched.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(
		done,
		channerics.Merge(done, inputs...),
		time.Millisecond*20)
}

// batchify collects updates for @rate before sending, keeping only the latest
// update per element id.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, update := range updates {
				data[update.EleId] = update
			}

			if time.Since(last) > rate && len(data) > 0 {
				select {
				case output <- slicedVals(data):
					data = map[string]fastview.EleUpdate{}
					last = time.Now()
				case <-done:
					return
				}
			}
		}
	}()

	return output
}

func slicedVals[K comparable, V any](mp map[K]V) (sliced []V) {
	for _, v := range mp {
		sliced = append(sliced, v)
	}
	return
}
