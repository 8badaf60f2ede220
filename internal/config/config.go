// Package config holds the board's settings, read from a TOML file over
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"SketchBoard/internal/geometry"
	"SketchBoard/internal/tool"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Relay  Relay  `toml:"relay"`
	Canvas Canvas `toml:"canvas"`
	Tools  Tools  `toml:"tools"`
}

// Relay configures hosting and joining.
type Relay struct {
	Port      int    `toml:"port"`
	Name      string `toml:"name"`
	Address   string `toml:"address"`
	Advertise bool   `toml:"advertise"`
	Discover  bool   `toml:"discover"`
	// BatchInterval is used until the relay's hello supplies one.
	BatchInterval Duration `toml:"batch_interval"`
}

type Canvas struct {
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	GridSize float64 `toml:"grid_size"`
	ShowGrid bool    `toml:"show_grid"`
}

type Tools struct {
	Color        string  `toml:"color"`
	Width        float64 `toml:"width"`
	EraserRadius float64 `toml:"eraser_radius"`
	HitRadius    float64 `toml:"hit_radius"`
	FontFamily   string  `toml:"font_family"`
	FontSize     float64 `toml:"font_size"`
	ImageWidth   float64 `toml:"image_width"`
}

// Duration reads "50ms" style strings.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("duration %q: %w", text, ErrInvalid)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the settings a board uses with no config file.
func Default() *Config {
	s := tool.DefaultSettings()
	return &Config{
		Relay: Relay{
			Port:          8888,
			Name:          "SketchBoard",
			Advertise:     true,
			Discover:      true,
			BatchInterval: Duration{50 * time.Millisecond},
		},
		Canvas: Canvas{
			Width:    1200,
			Height:   800,
			GridSize: 20,
			ShowGrid: true,
		},
		Tools: Tools{
			Color:        s.Color,
			Width:        s.Width,
			EraserRadius: s.EraserRadius,
			HitRadius:    s.HitRadius,
			FontFamily:   s.FontFamily,
			FontSize:     s.FontSize,
			ImageWidth:   s.ImageWidth,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML from r over the defaults.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Relay.Port <= 0 || c.Relay.Port > 65535:
		return fmt.Errorf("relay port %d: %w", c.Relay.Port, ErrInvalid)
	case c.Relay.BatchInterval.Duration < 0:
		return fmt.Errorf("batch interval %s: %w", c.Relay.BatchInterval, ErrInvalid)
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("canvas %gx%g: %w", c.Canvas.Width, c.Canvas.Height, ErrInvalid)
	case c.Tools.Width <= 0:
		return fmt.Errorf("brush width %g: %w", c.Tools.Width, ErrInvalid)
	}
	return nil
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Settings builds the initial tool settings.
func (c *Config) Settings() *tool.Settings {
	s := tool.DefaultSettings()
	s.Color = c.Tools.Color
	s.Width = c.Tools.Width
	s.EraserRadius = c.Tools.EraserRadius
	s.HitRadius = c.Tools.HitRadius
	s.FontFamily, s.FontSize = c.Tools.FontFamily, c.Tools.FontSize
	s.ImageWidth = c.Tools.ImageWidth
	s.Canvas = geometry.Rect{Width: c.Canvas.Width, Height: c.Canvas.Height}
	return s
}
