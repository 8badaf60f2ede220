// Package render turns sketch elements into fyne canvas objects.
//
// Everything lives in one layer container stacked as background, grid,
// element nodes and overlay. The overlay holds the marquee and the selection
// frame; it is not part of the sketch and survives Redraw.
package render

import (
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"SketchBoard/internal/geometry"
	"SketchBoard/internal/state"
	"SketchBoard/internal/tool"
)

var (
	gridColor    = color.NRGBA{R: 220, G: 220, B: 220, A: 100}
	marqueeColor = color.NRGBA{R: 40, G: 120, B: 230, A: 255}
	marqueeFill  = color.NRGBA{R: 40, G: 120, B: 230, A: 30}
)

// Scene is the renderer for one sketch. It must only be used from the UI
// goroutine.
type Scene struct {
	sketch *state.Sketch

	layer      *fyne.Container
	background *canvas.Rectangle
	grid       *fyne.Container
	elements   *fyne.Container
	overlay    *fyne.Container

	nodes    map[int64]fyne.CanvasObject
	previews []*Preview

	size     fyne.Size
	gridSize float32
	showGrid bool
}

// NewScene creates the layer for sk, sized to the drawable canvas.
func NewScene(sk *state.Sketch, canvasSize fyne.Size, gridSize float32, showGrid bool) *Scene {
	s := &Scene{
		sketch:   sk,
		nodes:    make(map[int64]fyne.CanvasObject),
		size:     canvasSize,
		gridSize: gridSize,
		showGrid: showGrid,
	}
	s.background = canvas.NewRectangle(colorOr(sk.Background, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	s.background.Resize(canvasSize)
	s.grid = container.NewWithoutLayout()
	s.elements = container.NewWithoutLayout()
	s.overlay = container.NewWithoutLayout()
	for _, c := range []*fyne.Container{s.grid, s.elements, s.overlay} {
		c.Resize(canvasSize)
	}
	s.layer = container.NewWithoutLayout(s.background, s.grid, s.elements, s.overlay)
	s.layer.Resize(canvasSize)
	s.buildGrid()
	return s
}

// Layer returns the container to place in the window.
func (s *Scene) Layer() *fyne.Container { return s.layer }

// Size returns the canvas size.
func (s *Scene) Size() fyne.Size { return s.size }

// Node returns the node drawn for id.
func (s *Scene) Node(id int64) (fyne.CanvasObject, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

func (s *Scene) buildGrid() {
	var lines []fyne.CanvasObject
	if s.showGrid && s.gridSize > 0 {
		for x := float32(0); x <= s.size.Width; x += s.gridSize {
			l := canvas.NewLine(gridColor)
			l.Position1, l.Position2 = fyne.NewPos(x, 0), fyne.NewPos(x, s.size.Height)
			l.StrokeWidth = 0.5
			lines = append(lines, l)
		}
		for y := float32(0); y <= s.size.Height; y += s.gridSize {
			l := canvas.NewLine(gridColor)
			l.Position1, l.Position2 = fyne.NewPos(0, y), fyne.NewPos(s.size.Width, y)
			l.StrokeWidth = 0.5
			lines = append(lines, l)
		}
	}
	s.grid.Objects = lines
	s.grid.Refresh()
}

// SetGrid changes the grid spacing and visibility.
func (s *Scene) SetGrid(size float32, visible bool) {
	s.gridSize, s.showGrid = size, visible
	s.buildGrid()
}

// SetBackground recolours the background layer.
func (s *Scene) SetBackground(c string) {
	s.background.FillColor = colorOr(c, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	s.background.Refresh()
}

// Add draws a confirmed element on top of the others.
func (s *Scene) Add(e state.Element) {
	if old, ok := s.nodes[e.ID()]; ok {
		s.elements.Remove(old)
	}
	obj, err := Render(e)
	if err != nil {
		log.Printf("[RENDER] Skipping %s: %v", state.Describe(e), err)
		return
	}
	s.nodes[e.ID()] = obj
	s.elements.Add(obj)
}

// Update re-renders the node for id in place. When the node type has to
// change it is swapped at the same stacking position.
func (s *Scene) Update(id int64, e state.Element) {
	old, ok := s.nodes[id]
	if !ok {
		s.Add(e)
		return
	}
	obj, err := update(old, e)
	if err != nil {
		log.Printf("[RENDER] Skipping update of %s: %v", state.Describe(e), err)
		return
	}
	if obj != old {
		s.replace(old, obj)
		s.nodes[id] = obj
	}
}

func (s *Scene) replace(old, obj fyne.CanvasObject) {
	for i, o := range s.elements.Objects {
		if o == old {
			s.elements.Objects[i] = obj
			s.elements.Refresh()
			return
		}
	}
	s.elements.Add(obj)
}

// Hide makes the node for id invisible without deleting it.
func (s *Scene) Hide(id int64) {
	if n, ok := s.nodes[id]; ok {
		n.Hide()
	}
}

// Remove deletes the node for id.
func (s *Scene) Remove(id int64) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	delete(s.nodes, id)
	s.elements.Remove(n)
}

// Redraw rebuilds every element node from the sketch. Previews of
// unconfirmed edits stay on top; the overlay is left alone.
func (s *Scene) Redraw() {
	s.background.FillColor = colorOr(s.sketch.Background, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	s.background.Refresh()
	s.buildGrid()

	s.nodes = make(map[int64]fyne.CanvasObject, s.sketch.Len())
	objs := make([]fyne.CanvasObject, 0, s.sketch.Len()+len(s.previews))
	for _, e := range s.sketch.Elements() {
		obj, err := Render(e)
		if err != nil {
			log.Printf("[RENDER] Skipping %s: %v", state.Describe(e), err)
			continue
		}
		s.nodes[e.ID()] = obj
		objs = append(objs, obj)
	}
	for _, p := range s.previews {
		objs = append(objs, p.obj)
	}
	s.elements.Objects = objs
	s.elements.Refresh()
}

// Preview is the node of an element not yet confirmed by the server.
type Preview struct {
	scene *Scene
	el    state.Element
	obj   fyne.CanvasObject
}

// NewPreview draws e on top of the sketch until the owning tool removes it.
func (s *Scene) NewPreview(e state.Element) tool.Preview {
	obj, err := Render(e)
	if err != nil {
		log.Printf("[RENDER] No preview for %s: %v", state.Describe(e), err)
		obj = container.NewWithoutLayout()
	}
	p := &Preview{scene: s, el: e, obj: obj}
	s.previews = append(s.previews, p)
	s.elements.Add(obj)
	return p
}

func (p *Preview) Update() {
	obj, err := update(p.obj, p.el)
	if err != nil {
		return
	}
	if obj != p.obj {
		p.scene.replace(p.obj, obj)
		p.obj = obj
	}
}

func (p *Preview) Remove() {
	s := p.scene
	for i, q := range s.previews {
		if q == p {
			s.previews = append(s.previews[:i], s.previews[i+1:]...)
			break
		}
	}
	s.elements.Remove(p.obj)
}

// ShowMarquee draws the rubber band rectangle of a frame drag.
func (s *Scene) ShowMarquee(r geometry.Rect) {
	s.overlay.Objects = []fyne.CanvasObject{overlayRect(r, marqueeColor, marqueeFill)}
	s.overlay.Refresh()
}

// ShowSelection draws the selection frame and its grips.
func (s *Scene) ShowSelection(frame geometry.Rect, handles []geometry.Rect) {
	objs := []fyne.CanvasObject{overlayRect(frame, marqueeColor, color.Transparent)}
	for _, h := range handles {
		objs = append(objs, overlayRect(h, marqueeColor, color.White))
	}
	s.overlay.Objects = objs
	s.overlay.Refresh()
}

// ClearOverlay removes the marquee and the selection frame.
func (s *Scene) ClearOverlay() {
	s.overlay.Objects = nil
	s.overlay.Refresh()
}

// OverlayLen reports how many overlay nodes are shown.
func (s *Scene) OverlayLen() int { return len(s.overlay.Objects) }
