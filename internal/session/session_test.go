package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/geometry"
	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
	"SketchBoard/internal/tool"
)

type sent struct {
	mu   sync.Mutex
	msgs []protocol.Payload
}

func (s *sent) Send(p protocol.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, p)
}

func (s *sent) last() protocol.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.msgs) == 0 {
		return nil
	}
	return s.msgs[len(s.msgs)-1]
}

type preview struct{}

func (preview) Update() {}
func (preview) Remove() {}

type scene struct {
	nodes      map[int64]state.Element
	hidden     map[int64]bool
	redraws    int
	background string
}

func (s *scene) Add(e state.Element)                          { s.nodes[e.ID()] = e }
func (s *scene) Update(id int64, e state.Element)             { s.nodes[id] = e }
func (s *scene) Remove(id int64)                              { delete(s.nodes, id) }
func (s *scene) Hide(id int64)                                { s.hidden[id] = true }
func (s *scene) NewPreview(state.Element) tool.Preview        { return preview{} }
func (s *scene) SetBackground(c string)                       { s.background = c }
func (s *scene) ShowMarquee(geometry.Rect)                    {}
func (s *scene) ShowSelection(geometry.Rect, []geometry.Rect) {}
func (s *scene) ClearOverlay()                                {}
func (s *scene) Redraw()                                      { s.redraws++ }

type notices struct{ msgs []string }

func (n *notices) Notify(m string) { n.msgs = append(n.msgs, m) }

type harness struct {
	s      *Session
	box    *tool.Toolbox
	scene  *scene
	out    *sent
	notice *notices
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		scene:  &scene{nodes: make(map[int64]state.Element), hidden: make(map[int64]bool)},
		out:    &sent{},
		notice: &notices{},
	}
	env := &tool.Env{
		Sketch:    state.NewSketch(),
		Scene:     h.scene,
		Out:       h.out,
		Notify:    h.notice,
		Settings:  tool.DefaultSettings(),
		Clipboard: &tool.Clipboard{},
	}
	h.box = tool.NewToolbox(env, 0)
	t.Cleanup(h.box.Close)
	h.s = New(h.box, h.scene)
	require.NoError(t, h.s.Handle(&protocol.Sketch{ID: "s1", Name: "Plans", Background: "#fafafa", Role: protocol.RoleEditor}))
	return h
}

func line(id int64, vs ...float64) protocol.WireElement {
	return protocol.WireElement{ID: id, Kind: state.KindStroke, Color: "#000000", StrokeWidth: 2, Vertices: vs}
}

func TestSketchMetadata(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "Plans", h.s.Sketch().Name)
	assert.Equal(t, "#fafafa", h.scene.background)
	assert.True(t, h.s.CanDraw())
}

func TestNewSketchResetsTools(t *testing.T) {
	h := newHarness(t)
	h.box.Start(tool.Gesture{Pos: state.Vertex{X: 1, Y: 1}, Pressed: true})
	require.NoError(t, h.s.Handle(&protocol.DrawElement{Element: line(1, 0, 0, 10, 10)}))
	e, _ := h.s.Sketch().Get(1)
	h.box.Select([]state.Element{e})

	require.NoError(t, h.s.Handle(&protocol.Sketch{ID: "s2", Name: "Other", Role: protocol.RoleEditor}))
	assert.Zero(t, h.s.Sketch().Len())
	assert.Zero(t, h.box.Brush.Pending())
	assert.Empty(t, h.box.Selector.Selection())

	err := h.s.Handle(&protocol.ConfirmElement{ID: 2, Kind: state.KindStroke})
	assert.ErrorIs(t, err, tool.ErrEmptyQueue)
}

func TestSketchPartsRedrawOnLast(t *testing.T) {
	h := newHarness(t)
	redraws := h.scene.redraws
	require.NoError(t, h.s.Handle(&protocol.SketchPart{Elements: []protocol.WireElement{line(1, 0, 0, 4, 4)}}))
	assert.Equal(t, redraws, h.scene.redraws)
	require.NoError(t, h.s.Handle(&protocol.SketchPart{Elements: []protocol.WireElement{line(2, 1, 1)}, Last: true}))
	assert.Equal(t, redraws+1, h.scene.redraws)
	assert.Equal(t, 2, h.s.Sketch().Len())
}

func TestRemoteLineGrows(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.s.Handle(&protocol.DrawLine{Element: line(3, 0, 0)}))
	require.NoError(t, h.s.Handle(&protocol.ContinueLine{ID: 3, Vertices: []float64{5, 5, 9, 1}}))
	require.NoError(t, h.s.Handle(&protocol.MoveLastVertex{ID: 3, X: 10, Y: 0}))

	e, ok := h.s.Sketch().Get(3)
	require.True(t, ok)
	assert.Equal(t, []state.Vertex{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}}, e.(*state.Stroke).Vertices)
}

func TestUnknownElementIsSkippedAndNotified(t *testing.T) {
	h := newHarness(t)
	err := h.s.Handle(&protocol.ContinueLine{ID: 42, Vertices: []float64{1, 1}})
	assert.ErrorIs(t, err, state.ErrUnknownElement)
	require.Len(t, h.notice.msgs, 1)
	assert.NotContains(t, h.notice.msgs[0], "42")
}

func TestConfirmationRoutesToTool(t *testing.T) {
	h := newHarness(t)
	h.box.Start(tool.Gesture{Pos: state.Vertex{X: 1, Y: 1}, Pressed: true})
	h.box.Stop(tool.Gesture{})
	require.NoError(t, h.s.Handle(&protocol.ConfirmElement{ID: 12, Kind: state.KindStroke}))
	_, ok := h.s.Sketch().Get(12)
	assert.True(t, ok)

	err := h.s.Handle(&protocol.ConfirmElement{ID: 13, Kind: state.KindStroke})
	assert.ErrorIs(t, err, tool.ErrEmptyQueue)
}

func TestBulkDeleteHidesThenRedraws(t *testing.T) {
	h := newHarness(t)
	for id := int64(1); id <= 3; id++ {
		require.NoError(t, h.s.Handle(&protocol.DrawElement{Element: line(id, float64(id), 0)}))
	}
	redraws := h.scene.redraws
	require.NoError(t, h.s.Handle(&protocol.DeleteElements{IDs: []int64{1, 3}}))
	assert.True(t, h.scene.hidden[1])
	assert.True(t, h.scene.hidden[3])
	assert.Equal(t, redraws+1, h.scene.redraws)
	assert.Equal(t, 1, h.s.Sketch().Len())
}

func TestRemoteDeleteDropsSelection(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.s.Handle(&protocol.DrawElement{Element: line(1, 0, 0, 10, 10)}))
	require.NoError(t, h.s.Handle(&protocol.DrawElement{Element: line(2, 50, 50, 60, 60)}))
	a, _ := h.s.Sketch().Get(1)
	b, _ := h.s.Sketch().Get(2)
	h.box.Select([]state.Element{a, b})

	require.NoError(t, h.s.Handle(&protocol.DeleteElement{ID: 2}))
	assert.Equal(t, []state.Element{a}, h.box.Selector.Selection())
}

func TestOwnPasteBecomesSelection(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.s.Handle(&protocol.CopyElements{Elements: []protocol.WireElement{line(7, 0, 0), line(8, 3, 3)}}))
	assert.Len(t, h.box.Selector.Selection(), 2)
	assert.Equal(t, tool.KindSelector, h.box.Active().Kind())

	require.NoError(t, h.s.Handle(&protocol.CopiedElements{Elements: []protocol.WireElement{line(9, 1, 1)}}))
	assert.Len(t, h.box.Selector.Selection(), 2)
	assert.Equal(t, 3, h.s.Sketch().Len())
}

func TestRemoteMoveUpdatesInPlace(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.s.Handle(&protocol.DrawElement{Element: line(1, 0, 0, 10, 10)}))
	before, _ := h.s.Sketch().Get(1)

	require.NoError(t, h.s.Handle(&protocol.MoveElements{Elements: []protocol.WireElement{line(1, 5, 5, 15, 15)}}))
	after, _ := h.s.Sketch().Get(1)
	assert.Same(t, before, after)
	assert.Equal(t, state.Vertex{X: 5, Y: 5}, after.Position())
}

func TestRemoteGrowthMovesSelectionFrame(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.s.Handle(&protocol.DrawLine{Element: line(1, 0, 0, 10, 0)}))
	e, _ := h.s.Sketch().Get(1)
	h.box.Select([]state.Element{e})

	require.NoError(t, h.s.Handle(&protocol.ContinueLine{ID: 1, Vertices: []float64{100, 0}}))
	frame, ok := h.box.Selector.Frame()
	require.True(t, ok)
	assert.Greater(t, frame.Width, 100.0)

	h.box.Start(tool.Gesture{Pos: state.Vertex{X: 80, Y: 0}, Prev: state.Vertex{X: 80, Y: 0}, Pressed: true, Secondary: true})
	assert.Equal(t, tool.StateMoving, h.box.Selector.State())
}

func TestRemoteTextEdit(t *testing.T) {
	h := newHarness(t)
	label := protocol.WireElement{ID: 4, Kind: state.KindText, FontSize: 12}
	require.NoError(t, h.s.Handle(&protocol.DrawElement{Element: label}))
	require.NoError(t, h.s.Handle(&protocol.EditText{ID: 4, Text: "hello"}))
	e, _ := h.s.Sketch().Get(4)
	assert.Equal(t, "hello", e.(*state.Text).Content)

	err := h.s.Handle(&protocol.EditText{ID: 1, Text: "x"})
	assert.ErrorIs(t, err, state.ErrUnknownElement)
}

func TestViewerCannotDrawOrUndo(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.s.Handle(&protocol.UndoRedo{Undo: true}))
	require.NoError(t, h.s.Handle(&protocol.RoleUpdated{Role: protocol.RoleViewer}))
	assert.False(t, h.s.CanDraw())
	assert.False(t, h.s.Undo())
	assert.Contains(t, h.notice.msgs, "You can now only view this board")

	h.box.Start(tool.Gesture{Pressed: true})
	assert.Nil(t, h.out.last())
}

func TestUndoRedoFollowFlags(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.s.Undo())
	require.NoError(t, h.s.Handle(&protocol.UndoRedo{Undo: true, Redo: true}))
	assert.True(t, h.s.Undo())
	assert.Equal(t, &protocol.Undo{}, h.out.last())
	assert.True(t, h.s.Redo())
	assert.Equal(t, &protocol.Redo{}, h.out.last())
}

func TestKickTerminatesOnce(t *testing.T) {
	h := newHarness(t)
	var reasons []string
	h.s.OnTerminate = func(r string) { reasons = append(reasons, r) }
	require.NoError(t, h.s.Handle(&protocol.Kicked{Reason: "bye"}))
	h.s.Disconnected(nil)
	assert.Equal(t, []string{"bye"}, reasons)
	assert.False(t, h.s.CanDraw())
}

func TestHelloSetsBatchInterval(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.s.Handle(&protocol.Hello{ClientID: "c1", BatchInterval: 0}))
	assert.Equal(t, "c1", h.s.ClientID)
	assert.Equal(t, time.Duration(0), h.box.Brush.Interval())
}

func TestUsersAndChangeCallback(t *testing.T) {
	h := newHarness(t)
	changes := 0
	h.s.OnChange = func() { changes++ }
	require.NoError(t, h.s.Handle(&protocol.UserJoin{User: protocol.User{ID: "b"}}))
	require.NoError(t, h.s.Handle(&protocol.UserJoin{User: protocol.User{ID: "a"}}))
	require.NoError(t, h.s.Handle(&protocol.UserLeave{User: protocol.User{ID: "b"}}))
	assert.Equal(t, []protocol.User{{ID: "a"}}, h.s.Users())
	assert.Equal(t, 3, changes)
}

func TestOutboundOnlyTypeIsRejected(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.s.Handle(&protocol.StartStroke{}), ErrUnhandled)
}
