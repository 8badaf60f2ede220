package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"SketchBoard/internal/state"
)

// Summary writes a plain text outline of sk, one block per element.
func Summary(w io.Writer, sk *state.Sketch) error {
	var b strings.Builder
	title := sk.Name
	if title == "" {
		title = "SketchBoard Export"
	}
	fmt.Fprintf(&b, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))
	if sk.Background != "" {
		fmt.Fprintf(&b, "Background: %s\n", sk.Background)
	}
	els := sk.Elements()
	fmt.Fprintf(&b, "Total elements: %d\n\n", len(els))

	for i, e := range els {
		h := e.Header()
		fmt.Fprintf(&b, "%d. %s\n", i+1, state.Describe(e))
		if h.Style.Color != "" {
			fmt.Fprintf(&b, "  Color: %s\n", h.Style.Color)
		}
		fmt.Fprintf(&b, "  Time: %s\n", h.CreatedAt.Format(time.DateTime))
		switch el := e.(type) {
		case *state.Stroke:
			fmt.Fprintf(&b, "  Points: %d\n", len(el.Vertices))
			if n := len(el.Vertices); n > 0 {
				fmt.Fprintf(&b, "  Start: (%.2f, %.2f)\n", el.Vertices[0].X, el.Vertices[0].Y)
				if n > 1 {
					fmt.Fprintf(&b, "  End: (%.2f, %.2f)\n", el.Vertices[n-1].X, el.Vertices[n-1].Y)
				}
			}
		case *state.Shape:
			fmt.Fprintf(&b, "  %s %.0fx%.0f at (%.2f, %.2f)\n", el.Type, el.Width, el.Height, el.X, el.Y)
		case *state.Text:
			fmt.Fprintf(&b, "  %q at (%.2f, %.2f)\n", el.Content, el.X, el.Y)
		case *state.Image:
			fmt.Fprintf(&b, "  %s, %.0f wide at (%.2f, %.2f)\n", el.Source, el.Width, el.X, el.Y)
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Write picks the format from the file name: .txt gets the outline,
// anything else the PDF.
func Write(w io.Writer, name string, sk *state.Sketch) error {
	if strings.EqualFold(filepath.Ext(name), ".txt") {
		return Summary(w, sk)
	}
	return PDF(w, sk)
}
