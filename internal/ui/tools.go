package ui

import (
	"fmt"
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/export"
	"SketchBoard/internal/render"
	"SketchBoard/internal/session"
	"SketchBoard/internal/state"
	"SketchBoard/internal/tool"
)

var palette = []string{"#000000", "#e53935", "#43a047", "#1e88e5", "#fdd835", "#fb8c00", "#8e24aa", "#ffffff"}

var dashes = map[string][]float64{
	"Solid":  nil,
	"Dashed": {12, 6},
	"Dotted": {2, 6},
}

var imageFilter = storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"})

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    string
	OnTapped func(string)
}

func newColorSwatch(c string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	fill, err := render.ParseColor(s.Color)
	if err != nil {
		fill = color.NRGBA{A: 255}
	}
	rect := canvas.NewRectangle(fill)
	rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar edits the tool settings and picks the active tool.
type Toolbar struct {
	tools   *tool.Toolbox
	session *session.Session
	view    *BoardView
	status  *StatusBar
	win     fyne.Window

	undo   *widget.Button
	redo   *widget.Button
	who    *widget.Label
	active *widget.Label
}

func NewToolbar(tools *tool.Toolbox, sess *session.Session, view *BoardView, status *StatusBar, win fyne.Window) *Toolbar {
	return &Toolbar{tools: tools, session: sess, view: view, status: status, win: win}
}

func (t *Toolbar) settings() *tool.Settings { return t.tools.Env().Settings }

func (t *Toolbar) use(k tool.Kind) {
	if err := t.tools.SetActive(k); err != nil {
		log.Printf("[TOOL] %v", err)
		return
	}
	t.active.SetText(string(k))
}

// Object builds the toolbar row.
func (t *Toolbar) Object() fyne.CanvasObject {
	t.active = widget.NewLabel(string(t.tools.Active().Kind()))
	t.who = widget.NewLabel("")
	t.undo = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() { t.session.Undo() })
	t.redo = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), func() { t.session.Redo() })

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { t.use(tool.KindBrush) }),    // Brush
		widget.NewToolbarAction(theme.ContentClearIcon(), func() { t.use(tool.KindEraser) }),     // Eraser
		widget.NewToolbarAction(theme.ViewFullScreenIcon(), func() { t.use(tool.KindShape) }),    // Shape
		widget.NewToolbarAction(theme.ContentAddIcon(), func() { t.use(tool.KindText) }),         // Text
		widget.NewToolbarAction(theme.FileImageIcon(), t.pickImage),                              // Image
		widget.NewToolbarAction(theme.ColorPaletteIcon(), func() { t.use(tool.KindBackground) }), // Background
		widget.NewToolbarAction(theme.ZoomFitIcon(), func() { t.use(tool.KindSelector) }),        // Select
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentCopyIcon(), t.view.Board().Copy),
		widget.NewToolbarAction(theme.ContentPasteIcon(), t.view.Board().Paste),
		widget.NewToolbarAction(theme.DeleteIcon(), t.view.Board().deleteSelection),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.GridIcon(), t.view.ToggleGrid),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), t.exportPDF),
	)

	// --- Color Palette ---
	onColorTapped := func(c string) {
		t.settings().SetColor(c)
		t.status.Notifyf("Colour %s", c)
	}
	onFillTapped := func(c string) {
		t.settings().SetFill(c)
	}
	colors := container.NewHBox()
	fills := container.NewHBox()
	for _, c := range palette {
		colors.Add(newColorSwatch(c, onColorTapped))
		fills.Add(newColorSwatch(c, onFillTapped))
	}
	noFill := widget.NewButton("None", func() { t.settings().SetFill("") })

	// --- Stroke Width Slider ---
	strokeSlider := widget.NewSlider(1.0, 50.0)
	strokeSlider.SetValue(t.settings().Width)
	strokeSlider.OnChanged = func(val float64) {
		t.settings().SetWidth(val)
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	brush := widget.NewSelect([]string{state.BrushPen, state.BrushMarker, state.BrushHighlighter}, func(b string) {
		t.settings().SetBrush(b)
	})
	brush.SetSelected(t.settings().Brush)

	dash := widget.NewSelect([]string{"Solid", "Dashed", "Dotted"}, func(d string) {
		t.settings().SetDash(dashes[d])
	})
	dash.SetSelected("Solid")

	shapes := []string{string(state.ShapeRectangle), string(state.ShapeEllipse), string(state.ShapeCircle), string(state.ShapeTriangle)}
	shape := widget.NewSelect(shapes, nil)
	shape.SetSelected(string(t.settings().Shape))
	shape.OnChanged = func(s string) {
		t.settings().SetShape(state.ShapeType(s))
		t.use(tool.KindShape)
	}

	fonts := widget.NewSelect([]string{"sans", "serif", "mono", "bold", "italic"}, func(f string) {
		t.settings().SetFont(f, t.settings().FontSize)
	})
	fonts.SetSelected(t.settings().FontFamily)

	t.refresh()
	row1 := container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		t.active,
		layout.NewSpacer(),
		t.undo,
		t.redo,
		t.who,
	)
	row2 := container.NewHBox(
		widget.NewLabel("Color:"),
		colors,
		widget.NewSeparator(),
		widget.NewLabel("Fill:"),
		fills,
		noFill,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		brush,
		dash,
		shape,
		fonts,
	)
	return container.NewVBox(row1, row2)
}

// refresh mirrors the session state: undo availability, role and people.
func (t *Toolbar) refresh() {
	if t.undo == nil {
		return
	}
	setEnabled(t.undo, t.session.CanUndo && t.session.CanDraw())
	setEnabled(t.redo, t.session.CanRedo && t.session.CanDraw())
	role := string(t.session.Role)
	if role == "" {
		role = "connecting"
	}
	t.who.SetText(fmt.Sprintf("%s · %d here", role, len(t.session.Users())+1))
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (t *Toolbar) pickImage() {
	fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			t.status.Notify("Could not open the picture")
			log.Printf("[UI] Image pick: %v", err)
			return
		}
		if r == nil {
			return
		}
		defer r.Close()
		src := r.URI().String()
		if r.URI().Scheme() == "file" {
			src = r.URI().Path()
		}
		t.settings().SetImage(src, 0)
		t.use(tool.KindImage)
		t.status.Notify("Click on the board to place the picture")
	}, t.win)
	fd.SetFilter(imageFilter)
	fd.Show()
}

func (t *Toolbar) exportPDF() {
	sk := t.session.Sketch()
	dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			log.Printf("[UI] Export: %v", err)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()
		if err := export.Write(w, w.URI().Name(), sk); err != nil {
			log.Printf("[UI] Export failed: %v", err)
			t.status.Notify("Export failed")
			return
		}
		t.status.Notifyf("Exported %d elements to %s", sk.Len(), w.URI().Name())
	}, t.win)
}
