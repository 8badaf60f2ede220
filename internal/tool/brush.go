package tool

import (
	"time"

	"SketchBoard/internal/geometry"
	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

// Brush draws freehand strokes.
type Brush struct {
	Base
	pending commitQueue
	batch   *Batcher

	current *state.Stroke
	edit    *pendingEdit
}

// NewBrush creates a brush flushing vertices every interval.
func NewBrush(env *Env, interval time.Duration) *Brush {
	return &Brush{
		Base:    Base{env: env},
		pending: commitQueue{env: env, kind: state.KindStroke},
		batch:   NewBatcher(env.Out, interval),
	}
}

func (b *Brush) Kind() Kind { return KindBrush }

// Drawing reports whether a stroke is in progress.
func (b *Brush) Drawing() bool { return b.current != nil }

// Pending returns the number of strokes awaiting confirmation.
func (b *Brush) Pending() int { return b.pending.Len() }

func (b *Brush) Start(g Gesture) {
	b.begin(g.Pos)
}

func (b *Brush) begin(p state.Vertex) {
	s := b.env.Settings
	stroke := state.NewStroke(s.Style(), p)
	preview := b.env.Scene.NewPreview(stroke)
	b.current = stroke
	b.edit = b.pending.push(stroke, preview)
	b.batch.Begin(&protocol.StartStroke{
		X:     p.X,
		Y:     p.Y,
		Color: stroke.Style.Color,
		Width: stroke.Style.Width,
		Dash:  stroke.Style.Dash,
		Style: stroke.Style.Brush,
	})
}

// Continue appends g.Pos. When the last two vertices and g.Pos are exactly
// collinear the last vertex is moved instead, locally and on the wire.
func (b *Brush) Continue(g Gesture) {
	if b.current == nil {
		return
	}
	b.extend(g.Pos)
}

func (b *Brush) extend(v state.Vertex) {
	vs := b.current.Vertices
	if n := len(vs); n >= 2 && geometry.Collinear(vs[n-2], vs[n-1], v) {
		b.current.ReplaceLast(v)
		b.batch.ReplaceLast(v)
	} else {
		b.current.Append(v)
		b.batch.Add(v)
	}
	b.refresh()
}

func (b *Brush) refresh() {
	if id := b.current.ID(); id != state.NoID {
		b.env.Scene.Update(id, b.current)
		return
	}
	if b.edit != nil && b.edit.preview != nil {
		b.edit.preview.Update()
	}
}

func (b *Brush) Stop(Gesture) {
	b.finish()
}

func (b *Brush) finish() {
	b.batch.Flush()
	b.current = nil
	b.edit = nil
}

// Exit clips the stroke at the canvas edge and ends it.
func (b *Brush) Exit(g Gesture) {
	if b.current == nil {
		return
	}
	if p, ok := geometry.SegmentRectIntersection(g.Prev, g.Pos, b.env.Settings.Canvas); ok {
		b.extend(p)
	}
	b.finish()
}

// Enter starts a new stroke where the pointer crossed back into the canvas.
func (b *Brush) Enter(g Gesture) {
	if !g.Pressed || b.current != nil {
		return
	}
	start := g.Pos
	if p, ok := geometry.SegmentRectIntersection(g.Prev, g.Pos, b.env.Settings.Canvas); ok {
		start = p
	}
	b.begin(start)
	if !start.Eq(g.Pos) {
		b.extend(g.Pos)
	}
}

func (b *Brush) Deactivate() {
	if b.current != nil {
		b.finish()
	}
}

func (b *Brush) Cancel() {
	b.Base.Cancel()
	if b.current != nil {
		b.finish()
	}
}

// Confirm reconciles the oldest unconfirmed stroke with id.
func (b *Brush) Confirm(id int64) error {
	_, err := b.pending.confirm(id)
	return err
}

// Reject drops the oldest unconfirmed stroke. A stroke still being drawn
// ends there and its unsent vertices are dropped.
func (b *Brush) Reject() error {
	pe, err := b.pending.reject()
	if err != nil {
		return err
	}
	if pe == b.edit {
		b.batch.Discard()
		b.current, b.edit = nil, nil
	}
	return nil
}

func (b *Brush) reset() {
	b.batch.Discard()
	b.current, b.edit = nil, nil
	b.pending.clear()
}

// SetInterval changes the vertex flush period.
func (b *Brush) SetInterval(d time.Duration) { b.batch.SetInterval(d) }

// Interval returns the vertex flush period.
func (b *Brush) Interval() time.Duration { return b.batch.Interval() }

// Close stops the flush timer.
func (b *Brush) Close() { b.batch.Close() }

func (b *Brush) removed(els []state.Element) {
	if b.current == nil {
		return
	}
	for _, e := range els {
		if e == state.Element(b.current) {
			b.Cancel()
			return
		}
	}
}
