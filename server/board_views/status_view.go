package board_views

import (
	"fmt"
	"html/template"

	"robosearch/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// StatusView is the search state and the diagnostic counters as a table.
type StatusView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewStatusView(
	done <-chan struct{},
	boards <-chan Board,
) (sv *StatusView) {
	sv = &StatusView{id: "status"}
	sv.updates = channerics.Convert(done, boards, sv.onUpdate)
	return
}

func (sv *StatusView) Updates() <-chan []fastview.EleUpdate {
	return sv.updates
}

func (sv *StatusView) Parse(t *template.Template) (string, error) {
	name := sv.id
	_, err := t.Parse(fmt.Sprintf(`{{ define "%s" }}
		<table id="%s">
			<tr><td>state</td><td id="status-state">{{ .Status.State }}</td></tr>
			<tr><td>heuristic</td><td id="status-heuristic">{{ .Status.Heuristic }}</td></tr>
			<tr><td>expanded</td><td id="status-expanded">{{ .Status.Expanded }}</td></tr>
			<tr><td>generated</td><td id="status-generated">{{ .Status.Generated }}</td></tr>
			<tr><td>cost</td><td id="status-cost">{{ .Status.Cost }}</td></tr>
			<tr><td>elapsed</td><td id="status-elapsed">{{ .Status.Elapsed }}</td></tr>
		</table>
	{{ end }}`, name, name))
	return name, err
}

func (sv *StatusView) onUpdate(board Board) []fastview.EleUpdate {
	st := board.Status
	fields := []struct{ id, value string }{
		{"status-state", st.State},
		{"status-heuristic", st.Heuristic},
		{"status-expanded", st.Expanded},
		{"status-generated", st.Generated},
		{"status-cost", st.Cost},
		{"status-elapsed", st.Elapsed},
	}
	updates := make([]fastview.EleUpdate, len(fields))
	for i, f := range fields {
		updates[i] = fastview.EleUpdate{
			EleId: f.id,
			Ops:   []fastview.Op{fastview.TextOp(f.value)},
		}
	}
	return updates
}
