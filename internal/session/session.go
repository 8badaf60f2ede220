// Package session applies inbound relay messages to the local sketch.
//
// It is the only place remote edits mutate local state. Every handler
// runs on the UI goroutine; the transport hands messages over with fyne.Do.
package session

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
	"SketchBoard/internal/tool"
)

var (
	ErrUnhandled = errors.New("session: message not handled by clients")
	ErrNotStroke = errors.New("session: element is not a line")
	ErrNotText   = errors.New("session: element is not a text")
)

// Renderer is the scene the session drives.
type Renderer interface {
	tool.Scene
	Hide(id int64)
	Redraw()
}

type handler func(p protocol.Payload) error

// Session holds what the client knows about the joined sketch besides the
// elements themselves.
type Session struct {
	sketch *state.Sketch
	scene  Renderer
	tools  *tool.Toolbox
	out    tool.Sender
	notify tool.Notifier

	handlers map[protocol.Type]handler

	ClientID string
	Role     protocol.Role
	CanUndo  bool
	CanRedo  bool
	users    map[string]protocol.User

	// OnChange fires after metadata, role, undo state or users change.
	OnChange func()
	// OnTerminate fires once when the session can no longer continue.
	OnTerminate func(reason string)
	terminated  bool
	joined      bool
}

// New wires a session over the toolbox environment. The toolbox gate is set
// to the session role.
func New(tools *tool.Toolbox, scene Renderer) *Session {
	env := tools.Env()
	s := &Session{
		sketch: env.Sketch,
		scene:  scene,
		tools:  tools,
		out:    env.Out,
		notify: env.Notify,
		users:  make(map[string]protocol.User),
	}
	s.handlers = map[protocol.Type]handler{
		protocol.TypeHello:           s.hello,
		protocol.TypeSketch:          s.sketchMeta,
		protocol.TypeSketchPart:      s.sketchPart,
		protocol.TypeDrawElement:     s.drawElement,
		protocol.TypeDrawLine:        s.drawLine,
		protocol.TypeContinueLine:    s.continueLine,
		protocol.TypeMoveLastVertex:  s.moveLastVertex,
		protocol.TypeConfirmElement:  s.confirmElement,
		protocol.TypeRejectElement:   s.rejectElement,
		protocol.TypeDeleteElement:   s.deleteElement,
		protocol.TypeDeleteElements:  s.deleteElements,
		protocol.TypeCopyElements:    s.copyElements,
		protocol.TypeCopiedElements:  s.copiedElements,
		protocol.TypeMoveElements:    s.transformElements,
		protocol.TypeScaleElements:   s.transformElements,
		protocol.TypeEditText:        s.editText,
		protocol.TypeUndoRedo:        s.undoRedo,
		protocol.TypeBackgroundColor: s.background,
		protocol.TypeRoleUpdated:     s.roleUpdated,
		protocol.TypeKicked:          s.kicked,
		protocol.TypeUserJoin:        s.userJoin,
		protocol.TypeUserLeave:       s.userLeave,
		protocol.TypeError:           s.serverError,
	}
	tools.Allowed = s.CanDraw
	return s
}

// Sketch returns the sketch being edited.
func (s *Session) Sketch() *state.Sketch { return s.sketch }

// CanDraw reports whether the current role may start gestures.
func (s *Session) CanDraw() bool { return !s.terminated && s.Role.CanDraw() }

// Handle dispatches one inbound message. Protocol errors are logged, the
// user gets a short notice, and the message is otherwise skipped.
func (s *Session) Handle(p protocol.Payload) error {
	if s.terminated {
		return nil
	}
	h, ok := s.handlers[p.MessageType()]
	if !ok {
		err := fmt.Errorf("%s: %w", p.MessageType(), ErrUnhandled)
		log.Printf("[SYNC] %v", err)
		return err
	}
	if err := h(p); err != nil {
		log.Printf("[SYNC] %s failed: %v", p.MessageType(), err)
		s.notify.Notify("The board got out of sync; some changes may be missing")
		return err
	}
	return nil
}

// Disconnected ends the session after the transport closed.
func (s *Session) Disconnected(err error) {
	reason := "Connection to the board was lost"
	if err != nil {
		log.Printf("[SYNC] Transport closed: %v", err)
	}
	s.terminate(reason)
}

func (s *Session) terminate(reason string) {
	if s.terminated {
		return
	}
	s.tools.Cancel()
	s.terminated = true
	if s.OnTerminate != nil {
		s.OnTerminate(reason)
	}
}

func (s *Session) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

// Undo asks the relay to revert this client's last edit.
func (s *Session) Undo() bool {
	if !s.CanUndo || !s.CanDraw() {
		return false
	}
	s.out.Send(&protocol.Undo{})
	return true
}

// Redo asks the relay to re-apply this client's last undone edit.
func (s *Session) Redo() bool {
	if !s.CanRedo || !s.CanDraw() {
		return false
	}
	s.out.Send(&protocol.Redo{})
	return true
}

// SetBackground recolours the sketch for everyone.
func (s *Session) SetBackground(color string) {
	if !s.CanDraw() {
		return
	}
	s.sketch.Background = color
	s.scene.SetBackground(color)
	s.out.Send(&protocol.BackgroundColor{Color: color})
}

// Users returns the connected participants sorted by id.
func (s *Session) Users() []protocol.User {
	out := make([]protocol.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Session) hello(p protocol.Payload) error {
	m := p.(*protocol.Hello)
	s.ClientID = m.ClientID
	s.tools.SetBatchInterval(time.Duration(m.BatchInterval) * time.Millisecond)
	log.Printf("[SYNC] Joined as %s, batching every %dms", m.ClientID, m.BatchInterval)
	return nil
}

func (s *Session) sketchMeta(p protocol.Payload) error {
	m := p.(*protocol.Sketch)
	s.sketch.ID, s.sketch.Name = m.ID, m.Name
	if m.Background != "" {
		s.sketch.Background = m.Background
	}
	s.sketch.Reset()
	if s.joined {
		// edits made before the first sketch are still owed confirmations
		s.tools.Reset()
	}
	s.joined = true
	s.scene.SetBackground(s.sketch.Background)
	s.Role, s.CanUndo, s.CanRedo = m.Role, m.Undo, m.Redo
	s.scene.Redraw()
	s.changed()
	return nil
}

// sketchPart loads a batch of the initial state; the scene is rebuilt once
// the last batch is in.
func (s *Session) sketchPart(p protocol.Payload) error {
	m := p.(*protocol.SketchPart)
	var errs []error
	for _, w := range m.Elements {
		e, err := w.Element()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.sketch.Add(e); err != nil {
			errs = append(errs, err)
		}
	}
	if m.Last {
		s.scene.Redraw()
		log.Printf("[SYNC] Sketch %q loaded with %d elements", s.sketch.Name, s.sketch.Len())
	}
	return errors.Join(errs...)
}

func (s *Session) add(w protocol.WireElement) (state.Element, error) {
	e, err := w.Element()
	if err != nil {
		return nil, err
	}
	if err := s.sketch.Add(e); err != nil {
		return nil, err
	}
	s.scene.Add(e)
	return e, nil
}

func (s *Session) addAll(ws []protocol.WireElement) ([]state.Element, error) {
	var (
		els  []state.Element
		errs []error
	)
	for _, w := range ws {
		e, err := s.add(w)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		els = append(els, e)
	}
	return els, errors.Join(errs...)
}

func (s *Session) drawElement(p protocol.Payload) error {
	_, err := s.add(p.(*protocol.DrawElement).Element)
	return err
}

func (s *Session) drawLine(p protocol.Payload) error {
	_, err := s.add(p.(*protocol.DrawLine).Element)
	return err
}

func (s *Session) stroke(id int64) (*state.Stroke, error) {
	e, ok := s.sketch.Get(id)
	if !ok {
		return nil, fmt.Errorf("line %d: %w", id, state.ErrUnknownElement)
	}
	st, ok := e.(*state.Stroke)
	if !ok {
		return nil, fmt.Errorf("%s: %w", state.Describe(e), ErrNotStroke)
	}
	return st, nil
}

func (s *Session) continueLine(p protocol.Payload) error {
	m := p.(*protocol.ContinueLine)
	st, err := s.stroke(m.ID)
	if err != nil {
		return err
	}
	vs, err := protocol.UnflattenVertices(m.Vertices)
	if err != nil {
		return fmt.Errorf("line %d: %w", m.ID, err)
	}
	st.Append(vs...)
	s.scene.Update(m.ID, st)
	s.tools.ElementsChanged()
	return nil
}

func (s *Session) moveLastVertex(p protocol.Payload) error {
	m := p.(*protocol.MoveLastVertex)
	st, err := s.stroke(m.ID)
	if err != nil {
		return err
	}
	st.ReplaceLast(state.Vertex{X: m.X, Y: m.Y})
	s.scene.Update(m.ID, st)
	s.tools.ElementsChanged()
	return nil
}

func (s *Session) confirmElement(p protocol.Payload) error {
	m := p.(*protocol.ConfirmElement)
	return s.tools.Confirm(m.Kind, m.ID)
}

func (s *Session) rejectElement(p protocol.Payload) error {
	return s.tools.Reject(p.(*protocol.RejectElement).Kind)
}

func (s *Session) removed(els []state.Element) {
	s.tools.ElementsRemoved(els)
}

func (s *Session) deleteElement(p protocol.Payload) error {
	id := p.(*protocol.DeleteElement).ID
	els := s.sketch.RemoveMany([]int64{id})
	if len(els) == 0 {
		return fmt.Errorf("delete %d: %w", id, state.ErrUnknownElement)
	}
	s.scene.Remove(id)
	s.removed(els)
	return nil
}

// deleteElements hides every node first and rebuilds the scene once.
func (s *Session) deleteElements(p protocol.Payload) error {
	ids := p.(*protocol.DeleteElements).IDs
	els := s.sketch.RemoveMany(ids)
	for _, e := range els {
		s.scene.Hide(e.ID())
	}
	s.scene.Redraw()
	s.removed(els)
	if len(els) < len(ids) {
		return fmt.Errorf("delete %d elements, %d known: %w", len(ids), len(els), state.ErrUnknownElement)
	}
	return nil
}

// copyElements is the confirmation of this client's own paste; the pasted
// elements become the selection.
func (s *Session) copyElements(p protocol.Payload) error {
	els, err := s.addAll(p.(*protocol.CopyElements).Elements)
	if len(els) > 0 {
		s.tools.Select(els)
	}
	return err
}

func (s *Session) copiedElements(p protocol.Payload) error {
	_, err := s.addAll(p.(*protocol.CopiedElements).Elements)
	return err
}

func (s *Session) transformElements(p protocol.Payload) error {
	var ws []protocol.WireElement
	switch m := p.(type) {
	case *protocol.MoveElements:
		ws = m.Elements
	case *protocol.ScaleElements:
		ws = m.Elements
	}
	var errs []error
	for _, w := range ws {
		cur, ok := s.sketch.Get(w.ID)
		if !ok {
			errs = append(errs, fmt.Errorf("transform %d: %w", w.ID, state.ErrUnknownElement))
			continue
		}
		next, err := w.Element()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := cur.CopyFrom(next); err != nil {
			errs = append(errs, err)
			continue
		}
		s.scene.Update(cur.ID(), cur)
	}
	s.tools.ElementsChanged()
	return errors.Join(errs...)
}

func (s *Session) editText(p protocol.Payload) error {
	m := p.(*protocol.EditText)
	e, ok := s.sketch.Get(m.ID)
	if !ok {
		return fmt.Errorf("text %d: %w", m.ID, state.ErrUnknownElement)
	}
	t, ok := e.(*state.Text)
	if !ok {
		return fmt.Errorf("%s: %w", state.Describe(e), ErrNotText)
	}
	t.SetContent(m.Text)
	s.scene.Update(m.ID, t)
	s.tools.ElementsChanged()
	return nil
}

func (s *Session) undoRedo(p protocol.Payload) error {
	m := p.(*protocol.UndoRedo)
	s.CanUndo, s.CanRedo = m.Undo, m.Redo
	s.changed()
	return nil
}

func (s *Session) background(p protocol.Payload) error {
	c := p.(*protocol.BackgroundColor).Color
	s.sketch.Background = c
	s.scene.SetBackground(c)
	return nil
}

func (s *Session) roleUpdated(p protocol.Payload) error {
	r := p.(*protocol.RoleUpdated).Role
	prev := s.Role
	s.Role = r
	if prev.CanDraw() && !r.CanDraw() {
		s.tools.Cancel()
		s.notify.Notify("You can now only view this board")
	}
	s.changed()
	return nil
}

func (s *Session) kicked(p protocol.Payload) error {
	reason := p.(*protocol.Kicked).Reason
	if reason == "" {
		reason = "You were removed from the board"
	}
	log.Printf("[SYNC] Kicked: %s", reason)
	s.terminate(reason)
	return nil
}

func (s *Session) userJoin(p protocol.Payload) error {
	u := p.(*protocol.UserJoin).User
	s.users[u.ID] = u
	s.changed()
	return nil
}

func (s *Session) userLeave(p protocol.Payload) error {
	delete(s.users, p.(*protocol.UserLeave).User.ID)
	s.changed()
	return nil
}

func (s *Session) serverError(p protocol.Payload) error {
	msg := p.(*protocol.Error).Message
	log.Printf("[SYNC] Relay refused: %s", msg)
	s.notify.Notify(msg)
	return nil
}
