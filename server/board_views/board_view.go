package board_views

import (
	"fmt"
	"html/template"

	"robosearch/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

const cellDim = 60

// BoardView draws the grid as svg tiles with one circle per robot. Only the
// robots move, so updates touch the robot elements alone.
type BoardView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewBoardView(
	done <-chan struct{},
	boards <-chan Board,
) (bv *BoardView) {
	bv = &BoardView{id: "board"}
	bv.updates = channerics.Convert(done, boards, bv.onUpdate)
	return
}

func (bv *BoardView) Updates() <-chan []fastview.EleUpdate {
	return bv.updates
}

// Parse requires the parent's func-map to define add, sub, mult and div.
func (bv *BoardView) Parse(t *template.Template) (string, error) {
	name := bv.id
	_, err := t.Parse(fmt.Sprintf(`{{ define "%s" }}
		{{ $dim := %d }}
		{{ $half := div $dim 2 }}
		<div id="%s">
			<svg width="{{ add (mult .Columns $dim) 1 }}px"
				height="{{ add (mult .Rows $dim) 1 }}px"
				style="shape-rendering: crispEdges;">
				{{ range $tile := .Tiles }}
				<rect
					x="{{ mult $tile.X $dim }}"
					y="{{ mult $tile.Y $dim }}"
					width="{{ $dim }}"
					height="{{ $dim }}"
					fill="{{ $tile.Fill }}"
					stroke="black"
					stroke-width="1"/>
				<text x="{{ add (mult $tile.X $dim) 3 }}" y="{{ add (mult $tile.Y $dim) 12 }}"
					font-size="9" fill="gray">{{ $tile.Label }}</text>
				{{ end }}
				{{ range $r := .Robots }}
				<rect
					x="{{ add (mult $r.GoalX $dim) 4 }}"
					y="{{ add (mult $r.GoalY $dim) 4 }}"
					width="{{ sub $dim 8 }}"
					height="{{ sub $dim 8 }}"
					fill="none"
					stroke="{{ $r.Color }}"
					stroke-dasharray="4"
					stroke-width="2"/>
				<circle id="robot-{{ $r.Index }}"
					cx="{{ add (mult $r.X $dim) $half }}"
					cy="{{ add (mult $r.Y $dim) $half }}"
					r="{{ div $dim 3 }}"
					fill="{{ $r.Color }}"
					stroke="{{ $r.Stroke }}"
					stroke-width="3"/>
				<text id="robot-{{ $r.Index }}-arrow"
					x="{{ add (mult $r.X $dim) $half }}"
					y="{{ add (mult $r.Y $dim) $half }}"
					fill="white"
					dominant-baseline="central" text-anchor="middle"
					>{{ $r.Arrow }}</text>
				{{ end }}
			</svg>
		</div>
	{{ end }}`, name, cellDim, name))
	return name, err
}

func (bv *BoardView) onUpdate(board Board) (updates []fastview.EleUpdate) {
	half := cellDim / 2
	for _, r := range board.Robots {
		cx := fmt.Sprintf("%d", r.X*cellDim+half)
		cy := fmt.Sprintf("%d", r.Y*cellDim+half)
		updates = append(updates,
			fastview.EleUpdate{
				EleId: fmt.Sprintf("robot-%d", r.Index),
				Ops: []fastview.Op{
					{Key: "cx", Value: cx},
					{Key: "cy", Value: cy},
					{Key: "stroke", Value: r.Stroke},
				},
			},
			fastview.EleUpdate{
				EleId: fmt.Sprintf("robot-%d-arrow", r.Index),
				Ops: []fastview.Op{
					{Key: "x", Value: cx},
					{Key: "y", Value: cy},
					fastview.TextOp(r.Arrow),
				},
			})
	}
	return
}
