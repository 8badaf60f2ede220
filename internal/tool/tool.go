// Package tool implements the per-tool gesture state machines of the board.
//
// Tools draw an optimistic local preview through the Scene, send protocol
// messages through the Sender, and reconcile server confirmations in the
// order their edits were submitted.
package tool

import (
	"SketchBoard/internal/geometry"
	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

// Kind names a tool.
type Kind string

const (
	KindBrush      Kind = "brush"
	KindEraser     Kind = "eraser"
	KindShape      Kind = "shape"
	KindText       Kind = "text"
	KindImage      Kind = "image"
	KindBackground Kind = "background"
	KindSelector   Kind = "selector"
)

// Gesture is one pointer sample. The modifier flags are the ones held when
// the sample was taken.
type Gesture struct {
	Pos  state.Vertex
	Prev state.Vertex
	// Pressed is true while the primary button is held.
	Pressed   bool
	Primary   bool
	Secondary bool
}

// Sender delivers outbound messages. Implementations must be safe for use
// from the batch timer goroutine and must preserve call order.
type Sender interface {
	Send(p protocol.Payload)
}

// Notifier surfaces short user-facing messages.
type Notifier interface {
	Notify(msg string)
}

// Preview is a node rendered for an element the server has not confirmed.
type Preview interface {
	Update()
	Remove()
}

// Scene is the part of the renderer tools drive.
type Scene interface {
	Add(e state.Element)
	Update(id int64, e state.Element)
	Remove(id int64)
	NewPreview(e state.Element) Preview
	SetBackground(color string)
	ShowMarquee(r geometry.Rect)
	ShowSelection(frame geometry.Rect, handles []geometry.Rect)
	ClearOverlay()
}

// Env is what every tool works against.
type Env struct {
	Sketch    *state.Sketch
	Scene     Scene
	Out       Sender
	Notify    Notifier
	Settings  *Settings
	Clipboard *Clipboard
}

// Tool is a gesture driven state machine. Only one tool is active at a time.
type Tool interface {
	Kind() Kind
	// Activate and Deactivate run when the toolbox switches tools.
	Activate()
	Deactivate()

	Start(g Gesture)
	Continue(g Gesture)
	Stop(g Gesture)
	Enter(g Gesture)
	Exit(g Gesture)
	// Cancel abandons the gesture in flight. The next lifecycle call is dropped.
	Cancel()

	consumeCancel() bool
}

// Base gives tools no-op lifecycle hooks and the cancel flag.
type Base struct {
	env       *Env
	cancelled bool
}

func (b *Base) Activate()        {}
func (b *Base) Deactivate()      {}
func (b *Base) Start(Gesture)    {}
func (b *Base) Continue(Gesture) {}
func (b *Base) Stop(Gesture)     {}
func (b *Base) Enter(Gesture)    {}
func (b *Base) Exit(Gesture)     {}
func (b *Base) Cancel()          { b.cancelled = true }
func (b *Base) consumeCancel() bool {
	c := b.cancelled
	b.cancelled = false
	return c
}
