package ui

import (
	"fmt"
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/geometry"
	"SketchBoard/internal/render"
	"SketchBoard/internal/session"
	"SketchBoard/internal/state"
	"SketchBoard/internal/tool"
)

// BoardWidget is the drawing surface. It turns pointer and keyboard events
// into tool gestures; positions are in sketch coordinates because the widget
// is exactly the size of the scene layer.
type BoardWidget struct {
	widget.BaseWidget

	scene   *render.Scene
	tools   *tool.Toolbox
	session *session.Session

	pressed bool
	inside  bool
	last    state.Vertex
	mods    fyne.KeyModifier
	hover   state.Vertex
	focused bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Focusable = (*BoardWidget)(nil)
var _ fyne.Shortcutable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(scene *render.Scene, tools *tool.Toolbox, sess *session.Session) *BoardWidget {
	b := &BoardWidget{scene: scene, tools: tools, session: sess}
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) canvasRect() geometry.Rect {
	return b.tools.Env().Settings.Canvas
}

func toVertex(p fyne.Position) state.Vertex {
	return state.Vertex{X: float64(p.X), Y: float64(p.Y)}
}

func (b *BoardWidget) gesture(pos state.Vertex) tool.Gesture {
	return tool.Gesture{
		Pos:       pos,
		Prev:      b.last,
		Pressed:   b.pressed,
		Primary:   b.mods&fyne.KeyModifierShift != 0,
		Secondary: b.mods&fyne.KeyModifierControl != 0,
	}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	b.requestFocus()
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	pos := toVertex(e.Position)
	b.pressed = true
	b.mods = e.Modifier
	b.last = pos
	b.inside = b.canvasRect().Contains(pos)
	if !b.inside {
		return
	}
	b.tools.Start(b.gesture(pos))
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !b.pressed {
		return
	}
	b.release(toVertex(e.Position))
}

func (b *BoardWidget) release(pos state.Vertex) {
	if b.inside {
		b.tools.Stop(b.gesture(pos))
	}
	b.pressed = false
	b.mods = 0
	b.last = pos
}

// Dragged follows the pointer while the button is held, even outside the
// widget. Leaving or re-entering the canvas rect maps to Exit and Enter.
func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if !b.pressed {
		return
	}
	b.move(toVertex(e.Position))
}

func (b *BoardWidget) DragEnd() {
	if b.pressed {
		b.release(b.last)
	}
}

func (b *BoardWidget) move(pos state.Vertex) {
	if pos.Eq(b.last) {
		return
	}
	inside := b.canvasRect().Contains(pos)
	g := b.gesture(pos)
	switch {
	case b.inside && !inside:
		b.tools.Exit(g)
	case !b.inside && inside:
		b.tools.Enter(g)
	case inside:
		b.tools.Continue(g)
	}
	b.inside = inside
	b.last = pos
}

func (b *BoardWidget) MouseIn(e *desktop.MouseEvent) {
	b.hover = toVertex(e.Position)
}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	b.hover = toVertex(e.Position)
	if b.pressed {
		b.move(b.hover)
	}
}

func (b *BoardWidget) MouseOut() {}

func (b *BoardWidget) requestFocus() {
	if b.focused || fyne.CurrentApp() == nil {
		return
	}
	if c := fyne.CurrentApp().Driver().CanvasForObject(b); c != nil {
		c.Focus(b)
	}
}

func (b *BoardWidget) FocusGained() { b.focused = true }
func (b *BoardWidget) FocusLost()   { b.focused = false }

func (b *BoardWidget) TypedRune(r rune) {
	b.tools.TypeRune(r)
}

func (b *BoardWidget) TypedKey(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyBackspace:
		if !b.tools.Backspace() {
			b.deleteSelection()
		}
	case fyne.KeyDelete:
		b.deleteSelection()
	case fyne.KeyReturn, fyne.KeyEnter:
		b.tools.Commit()
	case fyne.KeyEscape:
		if !b.tools.Escape() {
			b.tools.Cancel()
		}
	}
}

func (b *BoardWidget) deleteSelection() {
	if b.session.CanDraw() {
		b.tools.Selector.DeleteSelection()
	}
}

// TypedShortcut handles copy, paste, undo and redo.
func (b *BoardWidget) TypedShortcut(s fyne.Shortcut) {
	switch sc := s.(type) {
	case *fyne.ShortcutCopy:
		b.Copy()
		return
	case *fyne.ShortcutPaste:
		b.Paste()
		return
	case *desktop.CustomShortcut:
		if sc.Modifier&fyne.KeyModifierShortcutDefault == 0 {
			return
		}
		switch {
		case sc.KeyName == fyne.KeyZ && sc.Modifier&fyne.KeyModifierShift != 0, sc.KeyName == fyne.KeyY:
			b.session.Redo()
		case sc.KeyName == fyne.KeyZ:
			b.session.Undo()
		}
		return
	}
	switch s.ShortcutName() {
	case "Undo":
		b.session.Undo()
	case "Redo":
		b.session.Redo()
	}
}

// Copy captures the selection at the pointer.
func (b *BoardWidget) Copy() {
	if b.tools.Selector.Copy(b.hover) {
		log.Printf("[SELECT] Copied %d elements", len(b.tools.Selector.Selection()))
	}
}

// Paste places the clipboard at the pointer.
func (b *BoardWidget) Paste() {
	if !b.session.CanDraw() {
		return
	}
	b.tools.Selector.Paste(b.hover)
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	frame := canvas.NewRectangle(color.Transparent)
	frame.StrokeColor = color.Gray{Y: 150}
	frame.StrokeWidth = 1
	return &boardWidgetRenderer{board: b, frame: frame}
}

type boardWidgetRenderer struct {
	board *BoardWidget
	frame *canvas.Rectangle
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.board.scene.Layer(), r.frame}
}

func (r *boardWidgetRenderer) Layout(fyne.Size) {
	r.frame.Resize(r.board.scene.Size())
}

func (r *boardWidgetRenderer) MinSize() fyne.Size { return r.board.scene.Size() }
func (r *boardWidgetRenderer) Refresh()           { canvas.Refresh(r.board) }
func (r *boardWidgetRenderer) Destroy()           {}

// StatusBar shows the latest notice. Notify may be called from any goroutine.
type StatusBar struct {
	label *widget.Label
}

func NewStatusBar() *StatusBar {
	return &StatusBar{label: widget.NewLabel("Ready")}
}

func (s *StatusBar) Notify(msg string) {
	log.Printf("[UI] %s", msg)
	fyne.Do(func() { s.label.SetText(msg) })
}

// Notifyf formats a notice.
func (s *StatusBar) Notifyf(format string, args ...any) {
	s.Notify(fmt.Sprintf(format, args...))
}

func (s *StatusBar) Object() fyne.CanvasObject { return s.label }
