package protocol

import "SketchBoard/internal/state"

// Role is a participant's permission level within a sketch.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// CanDraw reports whether the role may create or change elements.
func (r Role) CanDraw() bool { return r == RoleOwner || r == RoleEditor }

// StartStroke opens a new line for the sending client.
type StartStroke struct {
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Color string    `json:"color"`
	Width float64   `json:"width"`
	Dash  []float64 `json:"dash,omitempty"`
	Style string    `json:"style,omitempty"`
}

// ContinueStroke appends a flat [x, y, x, y, ...] batch to the client's open line.
type ContinueStroke struct {
	Vertices []float64 `json:"vertices"`
}

// MoveLastVertex replaces the final vertex of a line. Outbound it targets the
// sender's open line; inbound ID names another client's line.
type MoveLastVertex struct {
	ID int64   `json:"id,omitempty"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type DeleteElement struct {
	ID int64 `json:"id"`
}

type DeleteElements struct {
	IDs []int64 `json:"ids"`
}

// StartText opens a label for live editing.
type StartText struct {
	Text WireElement `json:"text"`
}

// EditText carries the whole current content of the sender's open label.
// Inbound, ID names the label another client is editing.
type EditText struct {
	ID    int64  `json:"id,omitempty"`
	Text  string `json:"text"`
	Final bool   `json:"final,omitempty"`
}

type SendShape struct {
	Shape WireElement `json:"shape"`
}

type SendImage struct {
	Image WireElement `json:"image"`
}

// CopyElements submits pasted elements; the answer to the paster reuses the
// type with the confirmed elements.
type CopyElements struct {
	Elements []WireElement `json:"elements"`
}

// CopiedElements announces another client's paste.
type CopiedElements struct {
	Elements []WireElement `json:"elements"`
}

type MoveElements struct {
	Elements []WireElement `json:"elements"`
}

type ScaleElements struct {
	Elements []WireElement `json:"elements"`
}

type Undo struct{}

type Redo struct{}

type BackgroundColor struct {
	Color string `json:"color"`
}

// Hello is the first message of a session.
type Hello struct {
	ClientID string `json:"clientId"`
	// BatchInterval is the vertex flush period in milliseconds; 0 flushes every vertex.
	BatchInterval int `json:"batchInterval"`
}

// Sketch carries the metadata of the joined sketch and the client's role.
type Sketch struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Background string `json:"background"`
	Role       Role   `json:"role"`
	Undo       bool   `json:"undo"`
	Redo       bool   `json:"redo"`
}

// SketchPart is one batch of the initial element load. Last marks the final batch.
type SketchPart struct {
	Elements []WireElement `json:"elements"`
	Last     bool          `json:"last"`
}

// DrawElement announces a confirmed element created by another client.
type DrawElement struct {
	Element WireElement `json:"element"`
}

// DrawLine announces another client's newly started line.
type DrawLine struct {
	Element WireElement `json:"element"`
}

// ContinueLine appends a vertex batch to another client's line.
type ContinueLine struct {
	ID       int64     `json:"id"`
	Vertices []float64 `json:"vertices"`
}

// ConfirmElement assigns an id to the oldest unconfirmed edit of Kind.
type ConfirmElement struct {
	ID   int64      `json:"id"`
	Kind state.Kind `json:"kind"`
}

// RejectElement drops the oldest unconfirmed edit of Kind; the relay did not
// create it.
type RejectElement struct {
	Kind state.Kind `json:"kind"`
}

type UndoRedo struct {
	Undo bool `json:"undo"`
	Redo bool `json:"redo"`
}

type RoleUpdated struct {
	Role Role `json:"role"`
}

type Kicked struct {
	Reason string `json:"reason,omitempty"`
}

// User identifies a participant.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type UserJoin struct {
	User User `json:"user"`
}

type UserLeave struct {
	User User `json:"user"`
}

// Error is a refusal reported by the relay.
type Error struct {
	Message string `json:"message"`
}

func (*StartStroke) MessageType() Type     { return TypeStartStroke }
func (*ContinueStroke) MessageType() Type  { return TypeContinueStroke }
func (*MoveLastVertex) MessageType() Type  { return TypeMoveLastVertex }
func (*DeleteElement) MessageType() Type   { return TypeDeleteElement }
func (*DeleteElements) MessageType() Type  { return TypeDeleteElements }
func (*StartText) MessageType() Type       { return TypeStartText }
func (*EditText) MessageType() Type        { return TypeEditText }
func (*SendShape) MessageType() Type       { return TypeSendShape }
func (*SendImage) MessageType() Type       { return TypeSendImage }
func (*CopyElements) MessageType() Type    { return TypeCopyElements }
func (*CopiedElements) MessageType() Type  { return TypeCopiedElements }
func (*MoveElements) MessageType() Type    { return TypeMoveElements }
func (*ScaleElements) MessageType() Type   { return TypeScaleElements }
func (*Undo) MessageType() Type            { return TypeUndo }
func (*Redo) MessageType() Type            { return TypeRedo }
func (*BackgroundColor) MessageType() Type { return TypeBackgroundColor }
func (*Hello) MessageType() Type           { return TypeHello }
func (*Sketch) MessageType() Type          { return TypeSketch }
func (*SketchPart) MessageType() Type      { return TypeSketchPart }
func (*DrawElement) MessageType() Type     { return TypeDrawElement }
func (*DrawLine) MessageType() Type        { return TypeDrawLine }
func (*ContinueLine) MessageType() Type    { return TypeContinueLine }
func (*ConfirmElement) MessageType() Type  { return TypeConfirmElement }
func (*RejectElement) MessageType() Type   { return TypeRejectElement }
func (*UndoRedo) MessageType() Type        { return TypeUndoRedo }
func (*RoleUpdated) MessageType() Type     { return TypeRoleUpdated }
func (*Kicked) MessageType() Type          { return TypeKicked }
func (*UserJoin) MessageType() Type        { return TypeUserJoin }
func (*UserLeave) MessageType() Type       { return TypeUserLeave }
func (*Error) MessageType() Type           { return TypeError }
