// Package export writes a sketch out as a document.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"SketchBoard/internal/geometry"
	"SketchBoard/internal/render"
	"SketchBoard/internal/state"
)

var ErrEmpty = errors.New("export: sketch has no elements")

const (
	margin = 10.0        // mm
	pxToMM = 25.4 / 96.0 // largest scale, one screen pixel
)

// page maps sketch coordinates onto an A4 landscape page.
type page struct {
	pdf    *gofpdf.Fpdf
	origin geometry.Point
	scale  float64
	offset geometry.Point
	tr     func(string) string
}

func (p *page) pt(v state.Vertex) (float64, float64) {
	return p.offset.X + (v.X-p.origin.X)*p.scale, p.offset.Y + (v.Y-p.origin.Y)*p.scale
}

func (p *page) scaled(v float64) float64 { return v * p.scale }

// PDF renders every element of sk onto one A4 landscape page, scaled to fit.
func PDF(w io.Writer, sk *state.Sketch) error {
	els := sk.Elements()
	if len(els) == 0 {
		return ErrEmpty
	}
	bounds := els[0].Bounds()
	for _, e := range els[1:] {
		bounds = bounds.Union(e.Bounds())
	}
	bounds = bounds.EnsureSpan(1)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(sk.Name, true)
	pdf.SetCreator("SketchBoard", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pw, ph := pdf.GetPageSize()

	scale := math.Min((pw-2*margin)/bounds.Width, (ph-2*margin)/bounds.Height)
	scale = math.Min(scale, pxToMM)
	p := &page{
		pdf:    pdf,
		origin: bounds.Min(),
		scale:  scale,
		offset: geometry.Pt(margin, margin),
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}

	if sk.Background != "" {
		if bg, err := render.ParseColor(sk.Background); err == nil && bg.A > 0 {
			pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
			pdf.Rect(0, 0, pw, ph, "F")
		}
	}
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	for _, e := range els {
		switch el := e.(type) {
		case *state.Stroke:
			p.stroke(el)
		case *state.Shape:
			p.shape(el)
		case *state.Text:
			p.text(el)
		case *state.Image:
			p.image(el)
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("export %s: %w", state.Describe(e), err)
		}
	}
	return pdf.Output(w)
}

func (p *page) pen(st state.Style) {
	c := render.StrokeColor(st)
	p.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	p.pdf.SetAlpha(float64(c.A)/255, "Normal")
	p.pdf.SetLineWidth(math.Max(p.scaled(st.Width), 0.1))
	dash := make([]float64, len(st.Dash))
	for i, d := range st.Dash {
		dash[i] = p.scaled(d)
	}
	p.pdf.SetDashPattern(dash, 0)
}

func (p *page) stroke(s *state.Stroke) {
	if len(s.Vertices) == 0 {
		return
	}
	p.pen(s.Style)
	if len(s.Vertices) == 1 {
		x, y := p.pt(s.Vertices[0])
		c := render.StrokeColor(s.Style)
		p.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		p.pdf.Circle(x, y, math.Max(p.scaled(s.Style.Width)/2, 0.1), "F")
		return
	}
	pts := make([]gofpdf.PointType, len(s.Vertices))
	for i, v := range s.Vertices {
		pts[i].X, pts[i].Y = p.pt(v)
	}
	// An open polyline keeps the dash phase across vertices.
	p.pdf.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.pdf.LineTo(pt.X, pt.Y)
	}
	p.pdf.DrawPath("D")
}

func (p *page) shape(s *state.Shape) {
	p.pen(s.Style)
	style := "D"
	if fill, err := render.ParseColor(s.Fill); err == nil && fill.A > 0 {
		p.pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
		style = "FD"
	}
	box := s.Box()
	x, y := p.pt(box.Min())
	w, h := p.scaled(box.Width), p.scaled(box.Height)

	switch s.Type {
	case state.ShapeCircle, state.ShapeEllipse:
		p.pdf.Ellipse(x+w/2, y+h/2, w/2, h/2, 0, style)
	case state.ShapeTriangle:
		apex, left, right := geometry.Pt(x+w/2, y), geometry.Pt(x, y+h), geometry.Pt(x+w, y+h)
		if s.MirrorY {
			apex.Y, left.Y, right.Y = y+h, y, y
		}
		p.pdf.Polygon([]gofpdf.PointType{{X: apex.X, Y: apex.Y}, {X: right.X, Y: right.Y}, {X: left.X, Y: left.Y}}, style)
	default:
		p.pdf.Rect(x, y, w, h, style)
	}
}

func fontFamily(family string) (string, string) {
	switch family {
	case "mono", "monospace":
		return "Courier", ""
	case "serif":
		return "Times", ""
	case "serif-italic", "italic":
		return "Times", "I"
	case "bold":
		return "Helvetica", "B"
	}
	return "Helvetica", ""
}

func (p *page) text(t *state.Text) {
	if t.Content == "" {
		return
	}
	c, err := render.ParseColor(t.Style.Color)
	if err != nil {
		c = color.NRGBA{A: 255}
	}
	p.pdf.SetAlpha(1, "Normal")
	p.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	family, style := fontFamily(t.FontFamily)
	size := p.scaled(t.FontSize)
	p.pdf.SetFont(family, style, 12)
	p.pdf.SetFontUnitSize(size)
	x, y := p.pt(t.Position())
	p.pdf.Text(x, y+size*0.85, p.tr(t.Content))
}

func imageType(src string) string {
	switch strings.ToLower(filepath.Ext(src)) {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	}
	return ""
}

func (p *page) image(img *state.Image) {
	x, y := p.pt(img.Position())
	w, h := p.scaled(img.Width), p.scaled(img.Height())
	typ := imageType(img.Source)
	if typ == "" {
		log.Printf("[EXPORT] %s: unsupported image format, drawing its frame", img.Source)
		p.frame(x, y, w, h)
		return
	}
	r, err := render.OpenSource(img.Source)
	if err != nil {
		log.Printf("[EXPORT] %s: %v", img.Source, err)
		p.frame(x, y, w, h)
		return
	}
	defer r.Close()
	opts := gofpdf.ImageOptions{ImageType: typ}
	p.pdf.RegisterImageOptionsReader(img.Source, opts, r)
	p.pdf.SetAlpha(1, "Normal")
	p.pdf.ImageOptions(img.Source, x, y, w, h, false, opts, 0, "")
}

func (p *page) frame(x, y, w, h float64) {
	p.pdf.SetAlpha(1, "Normal")
	p.pdf.SetDrawColor(160, 160, 160)
	p.pdf.SetLineWidth(0.2)
	p.pdf.SetDashPattern([]float64{1, 1}, 0)
	p.pdf.Rect(x, y, w, h, "D")
}
