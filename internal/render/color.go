package render

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"SketchBoard/internal/state"
)

var ErrBadColor = errors.New("render: unparseable colour")

// ParseColor accepts #rgb, #rrggbb, #rrggbbaa, the SVG colour names and
// "transparent".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "transparent" {
		return color.NRGBA{}, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA(c), nil
	}
	alpha := uint8(255)
	hex := s
	if len(hex) == 9 {
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%q: %w", s, ErrBadColor)
		}
		hex, alpha = hex[:7], uint8(a)
	}
	if len(hex) != 4 && len(hex) != 7 {
		return color.NRGBA{}, fmt.Errorf("%q: %w", s, ErrBadColor)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%q: %w", s, ErrBadColor)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// colorOr parses s and falls back to def.
func colorOr(s string, def color.NRGBA) color.NRGBA {
	if s == "" {
		return def
	}
	c, err := ParseColor(s)
	if err != nil {
		return def
	}
	return c
}

// StrokeColor applies the brush style to the element colour.
func StrokeColor(st state.Style) color.NRGBA {
	c := colorOr(st.Color, color.NRGBA{A: 255})
	switch st.Brush {
	case state.BrushMarker:
		c.A = uint8(uint16(c.A) * 200 / 255)
	case state.BrushHighlighter:
		c.A = uint8(uint16(c.A) * 90 / 255)
	}
	return c
}
