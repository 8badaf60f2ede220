package tool

import (
	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

// Shape drags out rectangles, circles, ellipses and triangles.
type Shape struct {
	Base
	pending commitQueue

	current *state.Shape
	preview Preview
}

func NewShape(env *Env) *Shape {
	return &Shape{
		Base:    Base{env: env},
		pending: commitQueue{env: env, kind: state.KindShape},
	}
}

func (s *Shape) Kind() Kind { return KindShape }

func (s *Shape) Start(g Gesture) {
	set := s.env.Settings
	s.current = state.NewShape(set.Style(), set.Shape, set.Fill, g.Pos)
	s.preview = s.env.Scene.NewPreview(s.current)
}

// Continue re-derives size and mirror flags from the start point.
func (s *Shape) Continue(g Gesture) {
	if s.current == nil {
		return
	}
	s.current.Span(g.Pos)
	s.preview.Update()
}

// Stop submits the shape. A shape without extent is dropped.
func (s *Shape) Stop(Gesture) {
	if s.current == nil {
		return
	}
	sh, p := s.current, s.preview
	s.current, s.preview = nil, nil
	if sh.Width == 0 && sh.Height == 0 {
		p.Remove()
		return
	}
	sh.Floor()
	p.Update()
	s.pending.push(sh, p)
	s.env.Out.Send(&protocol.SendShape{Shape: protocol.FromElement(sh)})
}

func (s *Shape) Cancel() {
	s.Base.Cancel()
	s.discard()
}

func (s *Shape) Deactivate() { s.discard() }

func (s *Shape) discard() {
	if s.preview != nil {
		s.preview.Remove()
	}
	s.current, s.preview = nil, nil
}

// Confirm reconciles the oldest unconfirmed shape with id.
func (s *Shape) Confirm(id int64) error {
	_, err := s.pending.confirm(id)
	return err
}

// Reject drops the oldest unconfirmed shape.
func (s *Shape) Reject() error {
	_, err := s.pending.reject()
	return err
}
