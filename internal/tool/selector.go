package tool

import (
	"log"

	"SketchBoard/internal/geometry"
	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

const (
	// MinFrameSpan is the smallest side a selection frame is drawn with.
	MinFrameSpan = 4.0
	// MinScaleSpan is the smallest side a scale gesture may shrink the frame to.
	MinScaleSpan = 10.0
	// HandleSize is the side of a resize grip.
	HandleSize = 8.0
)

// Handle indexes, clockwise from the top-left corner.
const (
	HandleTopLeft = iota
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
	handleCount
)

// SelectorState is the observable state of the selector.
type SelectorState int

const (
	StateIdle SelectorState = iota
	StateFraming
	StateHasSelection
	StateMoving
	StateScaling
	StateAddFraming
)

func (s SelectorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFraming:
		return "framing"
	case StateHasSelection:
		return "has-selection"
	case StateMoving:
		return "moving"
	case StateScaling:
		return "scaling"
	case StateAddFraming:
		return "add-framing"
	}
	return "unknown"
}

type selectMode int

const (
	modeNone selectMode = iota
	modeFraming
	modeAddFraming
	modeMoving
	modeScaling
)

// Selector selects, moves, scales, copies and deletes elements.
//
// The modifier flags are sampled when a gesture starts and that sample
// drives the whole gesture, whatever is held when it ends.
type Selector struct {
	Base

	selected []state.Element
	set      map[state.Element]bool
	// prior holds the selection cleared by an unmodified press, so that
	// clicking an already selected element deselects it. priorOrder keeps
	// its order for a cancelled press.
	prior      map[state.Element]bool
	priorOrder []state.Element

	mode      selectMode
	origin    state.Vertex
	primary   bool
	secondary bool
	handle    int
	changed   bool
}

func NewSelector(env *Env) *Selector {
	return &Selector{Base: Base{env: env}, set: make(map[state.Element]bool)}
}

func (s *Selector) Kind() Kind { return KindSelector }

// State reports where the selector is in its gesture cycle.
func (s *Selector) State() SelectorState {
	switch s.mode {
	case modeFraming:
		return StateFraming
	case modeAddFraming:
		return StateAddFraming
	case modeMoving:
		return StateMoving
	case modeScaling:
		return StateScaling
	}
	if len(s.selected) > 0 {
		return StateHasSelection
	}
	return StateIdle
}

// Selection returns the selected elements.
func (s *Selector) Selection() []state.Element {
	return append([]state.Element(nil), s.selected...)
}

// IsSelected reports whether e is selected.
func (s *Selector) IsSelected(e state.Element) bool { return s.set[e] }

// Frame returns the current selection frame.
func (s *Selector) Frame() (geometry.Rect, bool) {
	return s.MaxOutVertices()
}

// MaxOutVertices unions the outer extent of every selected element and
// widens the result to at least MinFrameSpan on each axis.
func (s *Selector) MaxOutVertices() (geometry.Rect, bool) {
	if len(s.selected) == 0 {
		return geometry.Rect{}, false
	}
	r := s.selected[0].Bounds()
	for _, e := range s.selected[1:] {
		r = r.Union(e.Bounds())
	}
	return r.EnsureSpan(MinFrameSpan), true
}

// Handles returns the eight grips of frame, indexed by the Handle constants.
func Handles(frame geometry.Rect) []geometry.Rect {
	x0, y0 := frame.X, frame.Y
	x1, y1 := frame.X+frame.Width, frame.Y+frame.Height
	xm, ym := x0+frame.Width/2, y0+frame.Height/2
	centers := [handleCount]state.Vertex{
		{X: x0, Y: y0}, {X: xm, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: ym},
		{X: x1, Y: y1}, {X: xm, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: ym},
	}
	out := make([]geometry.Rect, handleCount)
	for i, c := range centers {
		out[i] = geometry.Square(c, HandleSize)
	}
	return out
}

// handleAt hit-tests the grips of the live frame.
func (s *Selector) handleAt(p state.Vertex) int {
	f, ok := s.MaxOutVertices()
	if !ok {
		return -1
	}
	for i, h := range Handles(f) {
		if h.Contains(p) {
			return i
		}
	}
	return -1
}

func (s *Selector) Start(g Gesture) {
	s.primary, s.secondary = g.Primary, g.Secondary
	s.origin = g.Pos
	s.changed = false
	s.prior, s.priorOrder = nil, nil
	s.mode = modeNone

	if h := s.handleAt(g.Pos); h >= 0 {
		s.mode, s.handle = modeScaling, h
		return
	}
	if len(s.selected) == 0 {
		s.mode = modeFraming
		return
	}
	switch {
	case !s.primary && !s.secondary:
		s.prior, s.priorOrder = s.set, s.selected
		s.clear()
		s.mode = modeFraming
	case s.secondary && !s.primary:
		if f, ok := s.MaxOutVertices(); ok && f.Contains(g.Pos) {
			s.mode = modeMoving
		}
	case s.primary && !s.secondary:
		s.mode = modeAddFraming
	}
}

func (s *Selector) Continue(g Gesture) {
	switch s.mode {
	case modeFraming, modeAddFraming:
		s.env.Scene.ShowMarquee(geometry.RectFromPoints(s.origin, g.Pos))
	case modeMoving:
		d := g.Pos.Sub(g.Prev)
		if d.X == 0 && d.Y == 0 {
			return
		}
		for _, e := range s.selected {
			e.Move(d.X, d.Y)
			s.env.Scene.Update(e.ID(), e)
		}
		s.changed = true
		s.refresh()
	case modeScaling:
		s.scaleTo(g.Pos)
	}
}

// scaleTo drags the active handle to p. An axis that would shrink below
// MinScaleSpan keeps its current extent.
func (s *Selector) scaleTo(p state.Vertex) {
	f, ok := s.MaxOutVertices()
	if !ok {
		return
	}
	x0, y0 := f.X, f.Y
	x1, y1 := f.X+f.Width, f.Y+f.Height
	nx0, ny0, nx1, ny1 := x0, y0, x1, y1
	fixed := state.Vertex{X: x0, Y: y0}

	switch s.handle {
	case HandleTopLeft, HandleLeft, HandleBottomLeft:
		nx0, fixed.X = p.X, x1
	case HandleTopRight, HandleRight, HandleBottomRight:
		nx1 = p.X
	}
	switch s.handle {
	case HandleTopLeft, HandleTop, HandleTopRight:
		ny0, fixed.Y = p.Y, y1
	case HandleBottomLeft, HandleBottom, HandleBottomRight:
		ny1 = p.Y
	}

	sx, sy := 1.0, 1.0
	if w := nx1 - nx0; w != f.Width && w >= MinScaleSpan {
		sx = w / f.Width
	}
	if h := ny1 - ny0; h != f.Height && h >= MinScaleSpan {
		sy = h / f.Height
	}
	if sx == 1 && sy == 1 {
		return
	}
	for _, e := range s.selected {
		e.Scale(sx, sy, fixed)
		s.env.Scene.Update(e.ID(), e)
	}
	s.changed = true
	s.refresh()
}

func (s *Selector) Stop(g Gesture) {
	mode := s.mode
	s.mode = modeNone
	switch mode {
	case modeFraming, modeAddFraming:
		s.applyHits(s.hits(g.Pos))
		s.prior, s.priorOrder = nil, nil
		s.refresh()
	case modeMoving:
		s.commit(func(els []protocol.WireElement) protocol.Payload {
			return &protocol.MoveElements{Elements: els}
		})
	case modeScaling:
		s.commit(func(els []protocol.WireElement) protocol.Payload {
			return &protocol.ScaleElements{Elements: els}
		})
	}
}

// hits runs a radius test for a click and a rectangle test for a drag.
func (s *Selector) hits(end state.Vertex) []state.Element {
	var out []state.Element
	if s.origin.Eq(end) {
		radius := s.env.Settings.HitRadius
		for _, e := range s.env.Sketch.Elements() {
			if e.HitPoint(end, radius) {
				out = append(out, e)
			}
		}
		return out
	}
	r := geometry.RectFromPoints(s.origin, end)
	for _, e := range s.env.Sketch.Elements() {
		if e.HitRect(r) {
			out = append(out, e)
		}
	}
	return out
}

// applyHits adds the newly hit elements; when every hit element was already
// selected the gesture deselects them instead.
func (s *Selector) applyHits(hits []state.Element) {
	if len(hits) == 0 {
		return
	}
	allSelected := true
	for _, e := range hits {
		if !s.set[e] && !s.prior[e] {
			allSelected = false
			break
		}
	}
	if allSelected {
		s.drop(hits)
		return
	}
	for _, e := range hits {
		s.add(e)
	}
}

// commit snaps the transformed selection to integers and sends it as one message.
func (s *Selector) commit(msg func([]protocol.WireElement) protocol.Payload) {
	if !s.changed || len(s.selected) == 0 {
		s.refresh()
		return
	}
	for _, e := range s.selected {
		e.Floor()
		s.env.Scene.Update(e.ID(), e)
	}
	s.env.Out.Send(msg(protocol.FromElements(s.selected)))
	s.changed = false
	s.refresh()
}

func (s *Selector) add(e state.Element) {
	if s.set[e] {
		return
	}
	s.set[e] = true
	s.selected = append(s.selected, e)
}

func (s *Selector) drop(els []state.Element) bool {
	gone := make(map[state.Element]bool, len(els))
	for _, e := range els {
		if s.set[e] {
			gone[e] = true
			delete(s.set, e)
		}
		delete(s.prior, e)
	}
	if len(gone) == 0 {
		return false
	}
	kept := s.selected[:0]
	for _, e := range s.selected {
		if !gone[e] {
			kept = append(kept, e)
		}
	}
	s.selected = kept
	return true
}

func (s *Selector) clear() {
	s.selected = nil
	s.set = make(map[state.Element]bool)
	s.env.Scene.ClearOverlay()
}

// refresh redraws the frame and handles from live element geometry.
func (s *Selector) refresh() {
	s.env.Scene.ClearOverlay()
	if f, ok := s.MaxOutVertices(); ok {
		s.env.Scene.ShowSelection(f, Handles(f))
	}
}

// Select replaces the selection with els.
func (s *Selector) Select(els []state.Element) {
	s.selected = nil
	s.set = make(map[state.Element]bool)
	for _, e := range els {
		s.add(e)
	}
	s.refresh()
}

// Copy captures the selection and the copy origin in the clipboard.
func (s *Selector) Copy(origin state.Vertex) bool {
	if len(s.selected) == 0 {
		return false
	}
	s.env.Clipboard.Set(s.selected, origin)
	return true
}

// Paste clones the clipboard, offsets the clones by at minus the copy
// origin, snaps them to integers and submits them as one batch.
func (s *Selector) Paste(at state.Vertex) bool {
	els, origin := s.env.Clipboard.Get()
	if len(els) == 0 {
		return false
	}
	d := at.Sub(origin)
	clones := make([]state.Element, 0, len(els))
	for _, e := range els {
		c := e.Clone()
		c.Move(d.X, d.Y)
		c.Floor()
		clones = append(clones, c)
	}
	s.env.Out.Send(&protocol.CopyElements{Elements: protocol.FromElements(clones)})
	return true
}

// DeleteSelection removes every selected element in one batch.
func (s *Selector) DeleteSelection() bool {
	if len(s.selected) == 0 {
		return false
	}
	ids := make([]int64, 0, len(s.selected))
	for _, e := range s.selected {
		ids = append(ids, e.ID())
	}
	for _, e := range s.env.Sketch.RemoveMany(ids) {
		s.env.Scene.Remove(e.ID())
	}
	s.env.Out.Send(&protocol.DeleteElements{IDs: ids})
	s.clear()
	return true
}

func (s *Selector) Deactivate() {
	s.mode = modeNone
	s.prior, s.priorOrder = nil, nil
	s.clear()
}

func (s *Selector) Cancel() {
	s.Base.Cancel()
	switch s.mode {
	case modeMoving, modeScaling:
		if s.changed {
			log.Printf("[SELECT] Gesture cancelled, sending partial transform")
			s.Stop(Gesture{})
			return
		}
	}
	if s.mode == modeFraming {
		// the press cleared the selection; put back what is still there
		for _, e := range s.priorOrder {
			if s.prior[e] {
				s.add(e)
			}
		}
	}
	s.mode = modeNone
	s.prior, s.priorOrder = nil, nil
	s.refresh()
}

func (s *Selector) removed(els []state.Element) {
	if s.drop(els) {
		if len(s.selected) == 0 && (s.mode == modeMoving || s.mode == modeScaling) {
			s.mode = modeNone
		}
		s.refresh()
	}
}

func (s *Selector) changedRemotely() {
	if len(s.selected) > 0 {
		s.refresh()
	}
}
