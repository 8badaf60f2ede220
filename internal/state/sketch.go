package state

import (
	"fmt"
	"log"
)

// Sketch is the shared canvas: metadata plus the confirmed elements in
// insertion order. At most one element exists per id.
//
// A Sketch is not safe for concurrent use; the session and the active tool
// take turns on one goroutine.
type Sketch struct {
	ID         string
	Name       string
	Background string

	elements []Element
	index    map[int64]Element
}

// NewSketch creates an empty sketch with a white background.
func NewSketch() *Sketch {
	return &Sketch{
		Background: "#ffffff",
		index:      make(map[int64]Element),
	}
}

// Add appends a confirmed element.
func (s *Sketch) Add(e Element) error {
	id := e.ID()
	if id == NoID {
		return fmt.Errorf("add %s: %w", Describe(e), ErrUnconfirmed)
	}
	if _, exists := s.index[id]; exists {
		return fmt.Errorf("add %s: %w", Describe(e), ErrDuplicateID)
	}
	s.elements = append(s.elements, e)
	s.index[id] = e
	return nil
}

// Get returns the element with the given id.
func (s *Sketch) Get(id int64) (Element, bool) {
	e, ok := s.index[id]
	return e, ok
}

// Remove deletes the element with the given id, keeping the order of the rest.
func (s *Sketch) Remove(id int64) (Element, bool) {
	e, ok := s.index[id]
	if !ok {
		return nil, false
	}
	delete(s.index, id)
	for i, el := range s.elements {
		if el == e {
			s.elements = append(s.elements[:i], s.elements[i+1:]...)
			break
		}
	}
	return e, true
}

// RemoveMany deletes every known id in one pass and returns what was removed.
// Unknown ids are logged and skipped.
func (s *Sketch) RemoveMany(ids []int64) []Element {
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.index[id]; !ok {
			log.Printf("[SKETCH] Remove of unknown element %d skipped", id)
			continue
		}
		drop[id] = true
		delete(s.index, id)
	}
	if len(drop) == 0 {
		return nil
	}
	removed := make([]Element, 0, len(drop))
	kept := s.elements[:0]
	for _, e := range s.elements {
		if drop[e.ID()] {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(s.elements); i++ {
		s.elements[i] = nil
	}
	s.elements = kept
	return removed
}

// Elements returns a snapshot of the collection in insertion order.
func (s *Sketch) Elements() []Element {
	out := make([]Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// Len returns the number of elements.
func (s *Sketch) Len() int { return len(s.elements) }

// Reset drops every element, keeping the metadata.
func (s *Sketch) Reset() {
	s.elements = nil
	s.index = make(map[int64]Element)
}
