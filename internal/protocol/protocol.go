// Package protocol defines the messages exchanged with the sketch relay and
// their JSON envelope.
//
// Every message travels as {"type": "<Type>", "data": {...}}. The set of types
// is closed; Decode rejects anything it does not know.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownType = errors.New("protocol: unknown message type")
	ErrUnknownKind = errors.New("protocol: unknown element kind")
	ErrOddVertices = errors.New("protocol: odd vertex coordinate count")
)

// Type names a message.
type Type string

// Outbound only.
const (
	TypeStartStroke    Type = "start-stroke"
	TypeContinueStroke Type = "continue-stroke"
	TypeStartText      Type = "start-text"
	TypeSendShape      Type = "send-shape"
	TypeSendImage      Type = "send-image"
	TypeUndo           Type = "undo"
	TypeRedo           Type = "redo"
)

// Both directions.
const (
	TypeMoveLastVertex  Type = "move-last-vertex"
	TypeDeleteElement   Type = "delete-element"
	TypeDeleteElements  Type = "delete-elements"
	TypeEditText        Type = "edit-text"
	TypeCopyElements    Type = "copy-elements"
	TypeMoveElements    Type = "move-elements"
	TypeScaleElements   Type = "scale-elements"
	TypeBackgroundColor Type = "background-color"
)

// Inbound only.
const (
	TypeHello          Type = "hello"
	TypeSketch         Type = "sketch"
	TypeSketchPart     Type = "sketch-part"
	TypeDrawElement    Type = "draw-element"
	TypeDrawLine       Type = "draw-line"
	TypeContinueLine   Type = "continue-line"
	TypeConfirmElement Type = "confirm-element"
	TypeRejectElement  Type = "reject-element"
	TypeCopiedElements Type = "copied-elements"
	TypeUndoRedo       Type = "undo-redo"
	TypeRoleUpdated    Type = "role-updated"
	TypeKicked         Type = "kicked"
	TypeUserJoin       Type = "user-join"
	TypeUserLeave      Type = "user-leave"
	TypeError          Type = "error"
)

// Payload is implemented by every message body.
type Payload interface {
	MessageType() Type
}

// Envelope is the frame every message travels in.
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

var registry = map[Type]func() Payload{
	TypeStartStroke:     func() Payload { return &StartStroke{} },
	TypeContinueStroke:  func() Payload { return &ContinueStroke{} },
	TypeStartText:       func() Payload { return &StartText{} },
	TypeSendShape:       func() Payload { return &SendShape{} },
	TypeSendImage:       func() Payload { return &SendImage{} },
	TypeUndo:            func() Payload { return &Undo{} },
	TypeRedo:            func() Payload { return &Redo{} },
	TypeMoveLastVertex:  func() Payload { return &MoveLastVertex{} },
	TypeDeleteElement:   func() Payload { return &DeleteElement{} },
	TypeDeleteElements:  func() Payload { return &DeleteElements{} },
	TypeEditText:        func() Payload { return &EditText{} },
	TypeCopyElements:    func() Payload { return &CopyElements{} },
	TypeMoveElements:    func() Payload { return &MoveElements{} },
	TypeScaleElements:   func() Payload { return &ScaleElements{} },
	TypeBackgroundColor: func() Payload { return &BackgroundColor{} },
	TypeHello:           func() Payload { return &Hello{} },
	TypeSketch:          func() Payload { return &Sketch{} },
	TypeSketchPart:      func() Payload { return &SketchPart{} },
	TypeDrawElement:     func() Payload { return &DrawElement{} },
	TypeDrawLine:        func() Payload { return &DrawLine{} },
	TypeContinueLine:    func() Payload { return &ContinueLine{} },
	TypeConfirmElement:  func() Payload { return &ConfirmElement{} },
	TypeRejectElement:   func() Payload { return &RejectElement{} },
	TypeCopiedElements:  func() Payload { return &CopiedElements{} },
	TypeUndoRedo:        func() Payload { return &UndoRedo{} },
	TypeRoleUpdated:     func() Payload { return &RoleUpdated{} },
	TypeKicked:          func() Payload { return &Kicked{} },
	TypeUserJoin:        func() Payload { return &UserJoin{} },
	TypeUserLeave:       func() Payload { return &UserLeave{} },
	TypeError:           func() Payload { return &Error{} },
}

// Encode wraps p in an envelope.
func Encode(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", p.MessageType(), err)
	}
	return json.Marshal(Envelope{Type: p.MessageType(), Data: data})
}

// Decode unwraps an envelope into its typed payload.
func Decode(b []byte) (Payload, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	newPayload, ok := registry[env.Type]
	if !ok {
		return nil, fmt.Errorf("decode %q: %w", env.Type, ErrUnknownType)
	}
	p := newPayload()
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
	}
	return p, nil
}
