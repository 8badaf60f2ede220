package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/config"
	"SketchBoard/internal/protocol"
	"SketchBoard/internal/tool"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	test.NewTempApp(t)
	cfg := config.Default()
	cfg.Relay.BatchInterval.Duration = 0
	b := NewBoard(cfg)
	b.Session.Role = protocol.RoleEditor
	t.Cleanup(b.Tools.Close)
	return b
}

func (b *Board) queued() []protocol.Type {
	b.out.mu.Lock()
	defer b.out.mu.Unlock()
	var out []protocol.Type
	for _, p := range b.out.pending {
		out = append(out, p.MessageType())
	}
	return out
}

func count(types []protocol.Type, want protocol.Type) int {
	n := 0
	for _, t := range types {
		if t == want {
			n++
		}
	}
	return n
}

func press(x, y float32, mods fyne.KeyModifier) *desktop.MouseEvent {
	e := &desktop.MouseEvent{Button: desktop.MouseButtonPrimary, Modifier: mods}
	e.Position = fyne.NewPos(x, y)
	return e
}

func drag(x, y float32) *fyne.DragEvent {
	e := &fyne.DragEvent{}
	e.Position = fyne.NewPos(x, y)
	return e
}

func TestStrokeFromPointerEvents(t *testing.T) {
	b := newTestBoard(t)
	w := b.View.Board()

	w.MouseDown(press(10, 10, 0))
	w.Dragged(drag(20, 25))
	w.Dragged(drag(20, 25))
	w.Dragged(drag(40, 30))
	w.MouseUp(press(40, 30, 0))
	w.DragEnd()

	sent := b.queued()
	require.NotEmpty(t, sent)
	assert.Equal(t, protocol.TypeStartStroke, sent[0])
	assert.Equal(t, 1, count(sent, protocol.TypeStartStroke))
	assert.Equal(t, 1, b.Tools.Brush.Pending())
	assert.False(t, b.Tools.Brush.Drawing())
}

func TestLeavingCanvasSplitsStroke(t *testing.T) {
	b := newTestBoard(t)
	w := b.View.Board()

	w.MouseDown(press(10, 10, 0))
	w.Dragged(drag(-10, 10))
	assert.False(t, b.Tools.Brush.Drawing())
	w.Dragged(drag(10, 20))
	assert.True(t, b.Tools.Brush.Drawing())
	w.MouseUp(press(10, 20, 0))

	assert.Equal(t, 2, count(b.queued(), protocol.TypeStartStroke))
}

func TestViewerCannotDraw(t *testing.T) {
	b := newTestBoard(t)
	b.Session.Role = protocol.RoleViewer
	w := b.View.Board()

	w.MouseDown(press(10, 10, 0))
	w.Dragged(drag(30, 30))
	w.MouseUp(press(30, 30, 0))
	assert.Empty(t, b.queued())
}

func TestModifiersReachSelector(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Tools.SetActive(tool.KindSelector))
	w := b.View.Board()

	w.MouseDown(press(10, 10, fyne.KeyModifierShift))
	assert.Equal(t, tool.StateFraming, b.Tools.Selector.State())
	w.Dragged(drag(60, 60))
	w.MouseUp(press(60, 60, fyne.KeyModifierShift))
	assert.Equal(t, tool.StateIdle, b.Tools.Selector.State())
}

func TestUndoShortcut(t *testing.T) {
	b := newTestBoard(t)
	w := b.View.Board()

	w.TypedShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault})
	assert.Empty(t, b.queued(), "nothing to undo yet")

	b.Session.CanUndo = true
	w.TypedShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault})
	b.Session.CanRedo = true
	w.TypedShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault})
	assert.Equal(t, []protocol.Type{protocol.TypeUndo, protocol.TypeRedo}, b.queued())
}

func TestTypingGoesToOpenLabel(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Tools.SetActive(tool.KindText))
	w := b.View.Board()

	w.MouseDown(press(100, 100, 0))
	w.MouseUp(press(100, 100, 0))
	require.NotNil(t, b.Tools.Text.Editing())
	w.TypedRune('h')
	w.TypedRune('i')
	w.TypedKey(&fyne.KeyEvent{Name: fyne.KeyBackspace})
	assert.Equal(t, "h", b.Tools.Text.Editing().Content)
	w.TypedKey(&fyne.KeyEvent{Name: fyne.KeyReturn})
	assert.Nil(t, b.Tools.Text.Editing())
}

func TestOutboxHoldsUntilAttached(t *testing.T) {
	o := &outbox{}
	o.Send(&protocol.Undo{})
	o.Send(&protocol.Redo{})
	assert.Len(t, o.pending, 2)
	o.close()
}
