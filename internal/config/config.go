// Package config loads ScribbleBoard settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"github.com/BurntSushi/toml"

	"ScribbleBoard/internal/surface"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Canvas struct {
	Width      float32 `toml:"width"`
	Height     float32 `toml:"height"`
	MinWidth   float32 `toml:"min_width"`
	MinHeight  float32 `toml:"min_height"`
	PixelRatio float64 `toml:"pixel_ratio"`
	Background Color   `toml:"background"`
	MaxPixels  int     `toml:"max_pixels"`
}

type Brush struct {
	Width float64 `toml:"width"`
	Color Color   `toml:"color"`
}

type History struct {
	MaxDepth int `toml:"max_depth"`
	MaxBytes int `toml:"max_bytes"`
}

// Config holds every setting. The zero value is not useful; start from
// Default.
type Config struct {
	Listen        string   `toml:"listen"`
	Doc           string   `toml:"doc"`
	Database      string   `toml:"database"`
	Advertise     bool     `toml:"advertise"`
	LogLevel      string   `toml:"log_level"`
	RestorePolicy string   `toml:"restore_policy"`
	SinglePoint   string   `toml:"single_point"`
	SyncInterval  Duration `toml:"sync_interval"`
	RetryInterval Duration `toml:"retry_interval"`

	Canvas  Canvas  `toml:"canvas"`
	Brush   Brush   `toml:"brush"`
	History History `toml:"history"`
}

// Default returns the built-in settings: an 800x600 black canvas with a
// 4px white brush.
func Default() Config {
	return Config{
		Listen:        ":8888",
		Doc:           "main",
		Database:      "scribbleboard.sqlite3",
		Advertise:     true,
		LogLevel:      "info",
		RestorePolicy: "clip",
		SinglePoint:   "none",
		SyncInterval:  Duration{time.Second},
		RetryInterval: Duration{2 * time.Second},
		Canvas: Canvas{
			Width:      800,
			Height:     600,
			MinWidth:   surface.DefaultMinSize.Width,
			MinHeight:  surface.DefaultMinSize.Height,
			PixelRatio: 1,
			Background: Color{A: 0xff},
			MaxPixels:  surface.DefaultMaxPixels,
		},
		Brush: Brush{
			Width: surface.DefaultBrush.Width,
			Color: Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		},
		History: History{
			MaxDepth: 100,
			MaxBytes: 256 << 20,
		},
	}
}

// Load reads path over the defaults and validates the result. Keys the
// file sets that Config does not know are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate reports every bad setting at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if c.Listen == "" {
		bad("listen is empty")
	}
	if c.Doc == "" {
		bad("doc is empty")
	}
	if _, err := c.Level(); err != nil {
		bad("log_level %q", c.LogLevel)
	}
	if _, err := ParseRestorePolicy(c.RestorePolicy); err != nil {
		bad("%v", err)
	}
	if _, err := ParseSinglePoint(c.SinglePoint); err != nil {
		bad("%v", err)
	}
	if c.SyncInterval.Duration <= 0 {
		bad("sync_interval must be positive")
	}
	if c.RetryInterval.Duration <= 0 {
		bad("retry_interval must be positive")
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		bad("canvas %vx%v must be positive", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.MinWidth <= 0 || c.Canvas.MinHeight <= 0 {
		bad("canvas minimum %vx%v must be positive", c.Canvas.MinWidth, c.Canvas.MinHeight)
	}
	if c.Canvas.PixelRatio <= 0 || math.IsNaN(c.Canvas.PixelRatio) {
		bad("pixel_ratio %v must be positive", c.Canvas.PixelRatio)
	}
	if c.Canvas.MaxPixels < 0 {
		bad("max_pixels is negative")
	}
	if c.Brush.Width <= 0 {
		bad("brush width %v must be positive", c.Brush.Width)
	}
	if c.History.MaxDepth < 0 || c.History.MaxBytes < 0 {
		bad("history limits are negative")
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// ParseRestorePolicy accepts "clip" or "scale".
func ParseRestorePolicy(s string) (surface.RestorePolicy, error) {
	switch strings.ToLower(s) {
	case "", "clip":
		return surface.RestoreClip, nil
	case "scale":
		return surface.RestoreScale, nil
	}
	return 0, fmt.Errorf("unknown restore_policy %q", s)
}

// ParseSinglePoint accepts "none" or "dot".
func ParseSinglePoint(s string) (surface.SinglePointPolicy, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return surface.SinglePointNone, nil
	case "dot":
		return surface.SinglePointDot, nil
	}
	return 0, fmt.Errorf("unknown single_point %q", s)
}

// SurfaceOptions turns the canvas, brush and history settings into
// controller options. Call Validate first; unparseable policies fall back
// to their defaults.
func (c Config) SurfaceOptions() surface.Options {
	restore, _ := ParseRestorePolicy(c.RestorePolicy)
	single, _ := ParseSinglePoint(c.SinglePoint)
	ratio := c.Canvas.PixelRatio
	return surface.Options{
		Width:       int(math.Round(float64(c.Canvas.Width) * ratio)),
		Height:      int(math.Round(float64(c.Canvas.Height) * ratio)),
		PixelRatio:  ratio,
		MinSize:     fyne.NewSize(c.Canvas.MinWidth, c.Canvas.MinHeight),
		Background:  color.NRGBA(c.Canvas.Background),
		Brush:       surface.Brush{Width: c.Brush.Width, Color: color.NRGBA(c.Brush.Color)},
		MaxPixels:   c.Canvas.MaxPixels,
		MaxDepth:    c.History.MaxDepth,
		MaxBytes:    c.History.MaxBytes,
		Restore:     restore,
		SinglePoint: single,
	}
}
