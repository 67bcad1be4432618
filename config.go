package main

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	draw9 "9fans.net/go/draw"
	"github.com/BurntSushi/toml"
)

// Config is the ishelf configuration. It is read from a TOML file and
// then overridden by environment variables and command-line flags.
type Config struct {
	Window      string      `toml:"window"`       // window size, WxH
	Tile        string      `toml:"tile"`         // tile size, WxH
	Padding     int         `toml:"padding"`      // between tiles
	PenWidth    int         `toml:"pen_width"`    // focus border width
	Radius      int         `toml:"radius"`       // focus border corner radius
	CoverMargin int         `toml:"cover_margin"` // left of the cover
	CoverWidth  int         `toml:"cover_width"`  // 0 means a third of the tile
	FontSize    int         `toml:"font_size"`    // title point size
	FontPattern string      `toml:"font_pattern"` // font file name with a %d for the size
	Grayscale   bool        `toml:"grayscale"`    // convert covers to gray for e-ink
	Colors      ColorConfig `toml:"colors"`
}

// ColorConfig holds the tile colors as #RRGGBB or #RRGGBBAA.
type ColorConfig struct {
	Background    string `toml:"background"`
	Highlight     string `toml:"highlight"`
	Border        string `toml:"border"`
	Text          string `toml:"text"`
	TextHighlight string `toml:"text_highlight"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Window:      "1300x1000",
		Tile:        "400x140",
		Padding:     4,
		PenWidth:    3,
		Radius:      8,
		CoverMargin: 8,
		FontSize:    12,
		FontPattern: "/lib/font/bit/lucsans/unicode.%d.font",
		Colors: ColorConfig{
			Background:    "#FFFFFF",
			Highlight:     "#333333",
			Border:        "#000000",
			Text:          "#000000",
			TextHighlight: "#FFFFFF",
		},
	}
}

// LoadConfig reads the configuration from path. An empty path uses the
// default search path. A missing file yields DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = configPath()
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return LoadConfigFromReader(f)
}

// LoadConfigFromReader reads TOML configuration over the defaults.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// configPath returns $XDG_CONFIG_HOME/ishelf/config.toml,
// or the same under ~/.config or $home/lib.
func configPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, progName, "config.toml")
	}
	if home := os.Getenv("home"); home != "" { // plan 9
		return filepath.Join(home, "lib", progName, "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", progName, "config.toml")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ISHELF_FONTSIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FontSize = n
		}
	}
	if v := os.Getenv("ISHELF_GRAYSCALE"); v != "" {
		cfg.Grayscale = v != "0"
	}
}

// FontSizePolicy returns the function tiles use for the title size.
func (c *Config) FontSizePolicy() func() int {
	size := c.FontSize
	if size <= 0 {
		size = DefaultConfig().FontSize
	}
	return func() int { return size }
}

// Theme builds the tile theme for tiles of tileSize.
func (c *Config) Theme(tileSize image.Point) (*Theme, error) {
	t := &Theme{
		Radius:      c.Radius,
		CoverMargin: c.CoverMargin,
		CoverWidth:  c.CoverWidth,
		FontSize:    c.FontSizePolicy(),
	}
	colors := []struct {
		name string
		val  string
		dst  *draw9.Color
	}{
		{"background", c.Colors.Background, &t.Background},
		{"highlight", c.Colors.Highlight, &t.Highlight},
		{"border", c.Colors.Border, &t.Border},
		{"text", c.Colors.Text, &t.Text},
		{"text_highlight", c.Colors.TextHighlight, &t.TextHighlight},
	}
	for _, col := range colors {
		v, err := parseColor(col.val)
		if err != nil {
			return nil, fmt.Errorf("config: color %s: %w", col.name, err)
		}
		*col.dst = v
	}
	if t.CoverWidth <= 0 {
		t.CoverWidth = tileSize.X / 3
	}
	return t, nil
}

// parseColor parses #RRGGBB or #RRGGBBAA.
func parseColor(s string) (draw9.Color, error) {
	h, ok := strings.CutPrefix(s, "#")
	if !ok || (len(h) != 6 && len(h) != 8) {
		return 0, fmt.Errorf("bad color %q", s)
	}
	if len(h) == 6 {
		h += "FF"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad color %q: %w", s, err)
	}
	return draw9.Color(v), nil
}
