package tool

import (
	"sync"
	"time"

	"SketchBoard/internal/geometry"
	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

type recorder struct {
	mu   sync.Mutex
	sent []protocol.Payload
}

func (r *recorder) Send(p protocol.Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, p)
}

func (r *recorder) messages() []protocol.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]protocol.Payload(nil), r.sent...)
}

func (r *recorder) types() []protocol.Type {
	var out []protocol.Type
	for _, p := range r.messages() {
		out = append(out, p.MessageType())
	}
	return out
}

func (r *recorder) last() protocol.Payload {
	msgs := r.messages()
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

type fakePreview struct {
	el      state.Element
	updates int
	removed bool
}

func (p *fakePreview) Update() { p.updates++ }
func (p *fakePreview) Remove() { p.removed = true }

type fakeScene struct {
	nodes      map[int64]state.Element
	previews   []*fakePreview
	updates    int
	background string
	marquee    *geometry.Rect
	frame      *geometry.Rect
	handles    []geometry.Rect
}

func newFakeScene() *fakeScene {
	return &fakeScene{nodes: make(map[int64]state.Element)}
}

func (s *fakeScene) Add(e state.Element)              { s.nodes[e.ID()] = e }
func (s *fakeScene) Update(id int64, e state.Element) { s.updates++; s.nodes[id] = e }
func (s *fakeScene) Remove(id int64)                  { delete(s.nodes, id) }
func (s *fakeScene) SetBackground(c string)           { s.background = c }

func (s *fakeScene) NewPreview(e state.Element) Preview {
	p := &fakePreview{el: e}
	s.previews = append(s.previews, p)
	return p
}

func (s *fakeScene) ShowMarquee(r geometry.Rect) { s.marquee = &r }

func (s *fakeScene) ShowSelection(frame geometry.Rect, handles []geometry.Rect) {
	s.frame = &frame
	s.handles = handles
}

func (s *fakeScene) ClearOverlay() {
	s.marquee, s.frame, s.handles = nil, nil, nil
}

type notes struct{ msgs []string }

func (n *notes) Notify(m string) { n.msgs = append(n.msgs, m) }

type fixture struct {
	env   *Env
	scene *fakeScene
	out   *recorder
	notes *notes
	box   *Toolbox
}

func newFixture() *fixture {
	f := &fixture{scene: newFakeScene(), out: &recorder{}, notes: &notes{}}
	f.env = &Env{
		Sketch:    state.NewSketch(),
		Scene:     f.scene,
		Out:       f.out,
		Notify:    f.notes,
		Settings:  DefaultSettings(),
		Clipboard: &Clipboard{},
	}
	f.box = NewToolbox(f.env, 0)
	return f
}

// confirmed adds e to the sketch as if the server had confirmed it.
func (f *fixture) confirmed(id int64, e state.Element) state.Element {
	e.SetID(id)
	if err := f.env.Sketch.Add(e); err != nil {
		panic(err)
	}
	f.scene.Add(e)
	return e
}

func (f *fixture) stroke(id int64, vs ...state.Vertex) *state.Stroke {
	s := state.NewStroke(state.Style{Color: "#000000", Width: 2}, vs[0])
	s.Append(vs[1:]...)
	f.confirmed(id, s)
	return s
}

func pt(x, y float64) state.Vertex { return state.Vertex{X: x, Y: y} }

func at(x, y float64) Gesture { return Gesture{Pos: pt(x, y), Prev: pt(x, y), Pressed: true} }

func move(x0, y0, x1, y1 float64) Gesture {
	return Gesture{Pos: pt(x1, y1), Prev: pt(x0, y0), Pressed: true}
}

const settle = 20 * time.Millisecond
