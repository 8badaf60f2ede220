package tool

import (
	"fmt"
	"log"
	"time"

	"SketchBoard/internal/state"
)

// Toolbox owns one instance of every tool and routes pointer gestures to
// the active one.
type Toolbox struct {
	env    *Env
	tools  map[Kind]Tool
	active Tool

	Brush      *Brush
	Eraser     *Eraser
	Shape      *Shape
	Text       *Text
	Image      *Image
	Background *Background
	Selector   *Selector

	// Allowed gates new gestures; a viewer may not draw.
	Allowed func() bool

	gesture bool
}

// NewToolbox builds every tool over env with the brush active.
func NewToolbox(env *Env, interval time.Duration) *Toolbox {
	tb := &Toolbox{
		env:        env,
		Brush:      NewBrush(env, interval),
		Eraser:     NewEraser(env),
		Shape:      NewShape(env),
		Text:       NewText(env),
		Image:      NewImage(env),
		Background: NewBackground(env),
		Selector:   NewSelector(env),
	}
	tb.tools = map[Kind]Tool{
		KindBrush:      tb.Brush,
		KindEraser:     tb.Eraser,
		KindShape:      tb.Shape,
		KindText:       tb.Text,
		KindImage:      tb.Image,
		KindBackground: tb.Background,
		KindSelector:   tb.Selector,
	}
	tb.active = tb.Brush
	tb.active.Activate()
	return tb
}

// Env returns the environment the tools share.
func (tb *Toolbox) Env() *Env { return tb.env }

// Active returns the active tool.
func (tb *Toolbox) Active() Tool { return tb.active }

// SetActive switches tools, closing whatever the old tool had in flight.
func (tb *Toolbox) SetActive(k Kind) error {
	t, ok := tb.tools[k]
	if !ok {
		return fmt.Errorf("tool %q: unknown", k)
	}
	if t == tb.active {
		return nil
	}
	tb.active.Deactivate()
	tb.active.consumeCancel()
	tb.gesture = false
	tb.active = t
	t.Activate()
	log.Printf("[TOOL] Active tool is now %s", k)
	return nil
}

func (tb *Toolbox) allowed() bool {
	return tb.Allowed == nil || tb.Allowed()
}

// dispatch drops the call when the active tool has a pending cancel.
func (tb *Toolbox) dispatch(f func(Tool)) {
	if tb.active.consumeCancel() {
		tb.gesture = false
		return
	}
	f(tb.active)
}

func (tb *Toolbox) Start(g Gesture) {
	if !tb.allowed() {
		return
	}
	tb.gesture = true
	tb.dispatch(func(t Tool) { t.Start(g) })
}

func (tb *Toolbox) Continue(g Gesture) {
	if !tb.gesture {
		return
	}
	tb.dispatch(func(t Tool) { t.Continue(g) })
}

func (tb *Toolbox) Stop(g Gesture) {
	if !tb.gesture {
		return
	}
	tb.gesture = false
	tb.dispatch(func(t Tool) { t.Stop(g) })
}

func (tb *Toolbox) Enter(g Gesture) {
	if !g.Pressed || !tb.allowed() {
		return
	}
	tb.gesture = true
	tb.dispatch(func(t Tool) { t.Enter(g) })
}

func (tb *Toolbox) Exit(g Gesture) {
	if !tb.gesture {
		return
	}
	tb.dispatch(func(t Tool) { t.Exit(g) })
}

// Cancel abandons the active tool's gesture. Only a gesture in flight
// leaves the tool waiting to drop its next lifecycle call.
func (tb *Toolbox) Cancel() {
	tb.active.Cancel()
	if !tb.gesture {
		tb.active.consumeCancel()
	}
}

// Confirm routes a confirm-element to the tool that created that kind.
func (tb *Toolbox) Confirm(kind state.Kind, id int64) error {
	switch kind {
	case state.KindStroke:
		return tb.Brush.Confirm(id)
	case state.KindShape:
		return tb.Shape.Confirm(id)
	case state.KindText:
		return tb.Text.Confirm(id)
	case state.KindImage:
		return tb.Image.Confirm(id)
	}
	return fmt.Errorf("confirm %s %d: %w", kind, id, ErrEmptyQueue)
}

// Reject routes a reject-element to the tool that created that kind.
func (tb *Toolbox) Reject(kind state.Kind) error {
	switch kind {
	case state.KindStroke:
		return tb.Brush.Reject()
	case state.KindShape:
		return tb.Shape.Reject()
	case state.KindText:
		return tb.Text.Reject()
	case state.KindImage:
		return tb.Image.Reject()
	}
	return fmt.Errorf("reject %s: %w", kind, ErrEmptyQueue)
}

// Reset forgets every gesture, edit and unconfirmed element without
// telling the server; the sketch they belonged to was replaced.
func (tb *Toolbox) Reset() {
	tb.gesture = false
	tb.active.consumeCancel()
	tb.Brush.reset()
	tb.Shape.discard()
	tb.Shape.pending.clear()
	tb.Text.reset()
	tb.Image.pending.clear()
	tb.Selector.Deactivate()
	log.Printf("[TOOL] Tools reset for a new sketch")
}

// ElementsRemoved tells tools with parallel state that els are gone.
func (tb *Toolbox) ElementsRemoved(els []state.Element) {
	if len(els) == 0 {
		return
	}
	tb.Selector.removed(els)
	tb.Text.removed(els)
	tb.Brush.removed(els)
}

// ElementsChanged tells the selector that element geometry moved under it.
func (tb *Toolbox) ElementsChanged() {
	tb.Selector.changedRemotely()
}

// Select activates the selector with els selected.
func (tb *Toolbox) Select(els []state.Element) {
	if tb.active != Tool(tb.Selector) {
		tb.SetActive(KindSelector)
	}
	tb.Selector.Select(els)
}

// SetBatchInterval changes the brush's vertex flush period.
func (tb *Toolbox) SetBatchInterval(d time.Duration) {
	tb.Brush.SetInterval(d)
}

// TypeRune forwards a typed character to the text tool.
func (tb *Toolbox) TypeRune(r rune) bool { return tb.Text.TypeRune(r) }

// Backspace forwards to the text tool.
func (tb *Toolbox) Backspace() bool { return tb.Text.Backspace() }

// Enter key.
func (tb *Toolbox) Commit() bool { return tb.Text.Commit() }

// Escape closes an open text edit, or drops the selection.
func (tb *Toolbox) Escape() bool {
	if tb.Text.Abort() {
		return true
	}
	if tb.active == Tool(tb.Selector) && len(tb.Selector.selected) > 0 {
		tb.Selector.Deactivate()
		return true
	}
	return false
}

// Close stops the brush timer after flushing.
func (tb *Toolbox) Close() {
	tb.active.Deactivate()
	tb.Brush.Close()
}
