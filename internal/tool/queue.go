package tool

import (
	"errors"
	"fmt"
	"log"

	"SketchBoard/internal/state"
)

// ErrEmptyQueue is returned when a confirmation arrives with nothing pending.
var ErrEmptyQueue = errors.New("tool: confirmation with no pending edit")

// Queue is a FIFO.
type Queue[T any] struct {
	items []T
}

func (q *Queue[T]) Push(v T) { q.items = append(q.items, v) }

// Pop removes and returns the oldest item.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

// Peek returns the oldest item without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[0], true
}

func (q *Queue[T]) Len() int { return len(q.items) }

// pendingEdit is an element sent to the server and awaiting its id.
type pendingEdit struct {
	el      state.Element
	preview Preview
	// discard asks for deletion right after confirmation.
	discard bool
}

// commitQueue reconciles confirmations with unconfirmed edits in
// submission order.
type commitQueue struct {
	env  *Env
	kind state.Kind
	q    Queue[*pendingEdit]
}

func (c *commitQueue) push(el state.Element, p Preview) *pendingEdit {
	pe := &pendingEdit{el: el, preview: p}
	c.q.Push(pe)
	return pe
}

// confirm assigns id to the oldest pending edit, replaces its preview with
// the canonical node and appends it to the sketch.
func (c *commitQueue) confirm(id int64) (*pendingEdit, error) {
	pe, ok := c.q.Pop()
	if !ok {
		return nil, fmt.Errorf("confirm %s %d: %w", c.kind, id, ErrEmptyQueue)
	}
	pe.el.SetID(id)
	if pe.preview != nil {
		pe.preview.Remove()
		pe.preview = nil
	}
	if err := c.env.Sketch.Add(pe.el); err != nil {
		return pe, err
	}
	c.env.Scene.Add(pe.el)
	log.Printf("[COMMIT] %s confirmed, %d still pending", state.Describe(pe.el), c.q.Len())
	return pe, nil
}

// reject drops the oldest pending edit and its preview; the server refused
// to create it.
func (c *commitQueue) reject() (*pendingEdit, error) {
	pe, ok := c.q.Pop()
	if !ok {
		return nil, fmt.Errorf("reject %s: %w", c.kind, ErrEmptyQueue)
	}
	if pe.preview != nil {
		pe.preview.Remove()
		pe.preview = nil
	}
	log.Printf("[COMMIT] %s rejected, %d still pending", state.Describe(pe.el), c.q.Len())
	return pe, nil
}

// clear drops every pending edit and its preview.
func (c *commitQueue) clear() {
	for {
		pe, ok := c.q.Pop()
		if !ok {
			return
		}
		if pe.preview != nil {
			pe.preview.Remove()
		}
	}
}

func (c *commitQueue) Len() int { return c.q.Len() }
