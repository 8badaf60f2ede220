package tool

import "SketchBoard/internal/protocol"

// Background recolours the canvas with the current colour.
type Background struct {
	Base
}

func NewBackground(env *Env) *Background { return &Background{Base: Base{env: env}} }

func (b *Background) Kind() Kind { return KindBackground }

func (b *Background) Start(Gesture) {
	c := b.env.Settings.Color
	b.env.Sketch.Background = c
	b.env.Scene.SetBackground(c)
	b.env.Out.Send(&protocol.BackgroundColor{Color: c})
}
