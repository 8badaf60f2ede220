package tool

import (
	"log"

	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

// crosser is implemented by elements that can test a motion segment.
type crosser interface {
	Crosses(a, b state.Vertex) bool
}

// Eraser deletes whole elements under the pointer.
type Eraser struct {
	Base
}

func NewEraser(env *Env) *Eraser { return &Eraser{Base: Base{env: env}} }

func (e *Eraser) Kind() Kind { return KindEraser }

// Continue removes the first element, in collection order, hit by the
// pointer. At most one element goes per sample.
func (e *Eraser) Continue(g Gesture) {
	radius := e.env.Settings.EraserRadius
	for _, el := range e.env.Sketch.Elements() {
		if !el.HitPoint(g.Pos, radius) && !crosses(el, g.Prev, g.Pos) {
			continue
		}
		id := el.ID()
		e.env.Sketch.Remove(id)
		e.env.Scene.Remove(id)
		e.env.Out.Send(&protocol.DeleteElement{ID: id})
		log.Printf("[ERASER] Removed %s", state.Describe(el))
		return
	}
}

func crosses(el state.Element, a, b state.Vertex) bool {
	c, ok := el.(crosser)
	if !ok || a.Eq(b) {
		return false
	}
	return c.Crosses(a, b)
}
