package tool

import (
	"log"

	"SketchBoard/internal/protocol"
	"SketchBoard/internal/state"
)

// Text places a label and edits it inline. Every keystroke re-sends the
// whole content; Enter, Escape or a click elsewhere closes the edit.
type Text struct {
	Base
	pending commitQueue

	editing *state.Text
	edit    *pendingEdit

	// OnEdit is told when inline editing opens or closes.
	OnEdit func(editing bool)
}

func NewText(env *Env) *Text {
	return &Text{
		Base:    Base{env: env},
		pending: commitQueue{env: env, kind: state.KindText},
	}
}

func (t *Text) Kind() Kind { return KindText }

// Editing returns the label being edited, if any.
func (t *Text) Editing() *state.Text { return t.editing }

// Start closes an open edit when the click lands elsewhere, otherwise opens
// a new label at the pointer.
func (t *Text) Start(g Gesture) {
	if t.editing != nil {
		if !t.editing.HitPoint(g.Pos, 0) {
			t.finish()
		}
		return
	}
	set := t.env.Settings
	label := state.NewText(set.Style(), set.FontFamily, set.FontSize, g.Pos.Floor())
	t.edit = t.pending.push(label, t.env.Scene.NewPreview(label))
	t.editing = label
	t.env.Out.Send(&protocol.StartText{Text: protocol.FromElement(label)})
	t.notifyEdit(true)
}

// TypeRune appends r to the open label.
func (t *Text) TypeRune(r rune) bool {
	if t.editing == nil {
		return false
	}
	t.apply(t.editing.Content + string(r))
	return true
}

// Backspace drops the last rune of the open label.
func (t *Text) Backspace() bool {
	if t.editing == nil {
		return false
	}
	rs := []rune(t.editing.Content)
	if len(rs) == 0 {
		return true
	}
	t.apply(string(rs[:len(rs)-1]))
	return true
}

// Commit closes the open edit (Enter).
func (t *Text) Commit() bool {
	if t.editing == nil {
		return false
	}
	t.finish()
	return true
}

// Abort closes the open edit (Escape). The content typed so far is kept.
func (t *Text) Abort() bool { return t.Commit() }

func (t *Text) apply(content string) {
	t.editing.SetContent(content)
	t.refresh()
	t.env.Out.Send(&protocol.EditText{Text: content})
}

func (t *Text) refresh() {
	if id := t.editing.ID(); id != state.NoID {
		t.env.Scene.Update(id, t.editing)
		return
	}
	if t.edit != nil && t.edit.preview != nil {
		t.edit.preview.Update()
	}
}

// finish sends the final content. An empty label is deleted, right away when
// confirmed, otherwise as soon as its id arrives.
func (t *Text) finish() {
	label := t.editing
	t.env.Out.Send(&protocol.EditText{Text: label.Content, Final: true})
	if label.Content == "" {
		if id := label.ID(); id != state.NoID {
			t.deleteLabel(label)
		} else if t.edit != nil {
			t.edit.discard = true
			if t.edit.preview != nil {
				t.edit.preview.Remove()
				t.edit.preview = nil
			}
		}
	}
	t.editing, t.edit = nil, nil
	t.notifyEdit(false)
}

func (t *Text) deleteLabel(label state.Element) {
	id := label.ID()
	t.env.Sketch.Remove(id)
	t.env.Scene.Remove(id)
	t.env.Out.Send(&protocol.DeleteElement{ID: id})
}

func (t *Text) notifyEdit(open bool) {
	if t.OnEdit != nil {
		t.OnEdit(open)
	}
}

func (t *Text) Deactivate() {
	if t.editing != nil {
		t.finish()
	}
}

// Confirm reconciles the oldest unconfirmed label with id.
func (t *Text) Confirm(id int64) error {
	pe, err := t.pending.confirm(id)
	if err != nil {
		return err
	}
	if pe.discard {
		log.Printf("[TEXT] Dropping empty %s", state.Describe(pe.el))
		t.deleteLabel(pe.el)
	}
	return nil
}

// Reject drops the oldest unconfirmed label, closing the edit if it is the
// one being typed.
func (t *Text) Reject() error {
	pe, err := t.pending.reject()
	if err != nil {
		return err
	}
	if t.editing != nil && pe.el == state.Element(t.editing) {
		t.editing, t.edit = nil, nil
		t.notifyEdit(false)
	}
	return nil
}

func (t *Text) reset() {
	t.pending.clear()
	if t.editing != nil {
		t.editing, t.edit = nil, nil
		t.notifyEdit(false)
	}
}

// removed closes the edit when its label was deleted remotely.
func (t *Text) removed(els []state.Element) {
	if t.editing == nil {
		return
	}
	for _, e := range els {
		if e == state.Element(t.editing) {
			log.Printf("[TEXT] %s deleted while editing", state.Describe(e))
			t.editing, t.edit = nil, nil
			t.notifyEdit(false)
			return
		}
	}
}
