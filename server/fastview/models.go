// fastview builds small server-side views: a data model is converted to a
// view-model, multiplexed to one or more views, and each view emits element
// updates that a websocket publisher pushes to the page.
package fastview

import (
	"html/template"
)

// EleUpdate is an element id and the operations to apply to it.
type EleUpdate struct {
	// The id by which the page finds the element.
	EleId string
	// Op keys are attribute names or 'textContent'; ('cx','120') sets the
	// attribute, ('textContent','solved') sets the element's text.
	Ops []Op
}

// Op is a key and value, usually an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// TextOp sets an element's text content.
func TextOp(value string) Op {
	return Op{Key: "textContent", Value: value}
}

// ViewComponent is a server-side view: Parse adds its template to the parent
// and returns the template name, Updates yields its element updates.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	Parse(*template.Template) (string, error)
}
