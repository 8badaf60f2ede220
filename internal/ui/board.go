package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"SketchBoard/internal/render"
)

// BoardView scrolls the fixed size board inside the window.
type BoardView struct {
	*container.Scroll
	board *BoardWidget
	scene *render.Scene

	showGrid bool
	gridSize float32
}

func NewBoardView(board *BoardWidget, scene *render.Scene, gridSize float32, showGrid bool) *BoardView {
	v := &BoardView{
		board:    board,
		scene:    scene,
		gridSize: gridSize,
		showGrid: showGrid,
	}
	v.Scroll = container.NewScroll(board)
	v.Scroll.Resize(fyne.NewSize(800, 600))
	return v
}

func (v *BoardView) Board() *BoardWidget { return v.board }

func (v *BoardView) ResetView() {
	v.Scroll.Offset = fyne.NewPos(0, 0)
	v.Scroll.Refresh()
}

func (v *BoardView) ToggleGrid() {
	v.showGrid = !v.showGrid
	v.scene.SetGrid(v.gridSize, v.showGrid)
}

func (v *BoardView) GridVisible() bool { return v.showGrid }
