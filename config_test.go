package main

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	draw9 "9fans.net/go/draw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Setenv("ISHELF_FONTSIZE", "")
	t.Setenv("ISHELF_GRAYSCALE", "")
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
tile = "300x100"
pen_width = 2
font_size = 16

[colors]
highlight = "#102030"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "300x100", cfg.Tile)
	assert.Equal(t, "1300x1000", cfg.Window)
	assert.Equal(t, 2, cfg.PenWidth)
	assert.Equal(t, 16, cfg.FontSize)
	assert.Equal(t, "#102030", cfg.Colors.Highlight)
	assert.Equal(t, "#FFFFFF", cfg.Colors.Background)
}

func TestLoadConfigBadSyntax(t *testing.T) {
	clearConfigEnv(t)
	_, err := LoadConfigFromReader(strings.NewReader("tile = "))
	assert.ErrorContains(t, err, "config:")
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("ISHELF_FONTSIZE", "20")
	t.Setenv("ISHELF_GRAYSCALE", "1")
	cfg, err := LoadConfigFromReader(strings.NewReader("font_size = 10"))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.FontSize)
	assert.True(t, cfg.Grayscale)

	t.Setenv("ISHELF_FONTSIZE", "big")
	cfg, err = LoadConfigFromReader(strings.NewReader("font_size = 10"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.FontSize)
}

func TestConfigTheme(t *testing.T) {
	cfg := DefaultConfig()
	th, err := cfg.Theme(image.Pt(300, 100))
	require.NoError(t, err)
	assert.Equal(t, draw9.Color(0xFFFFFFFF), th.Background)
	assert.Equal(t, draw9.Color(0x333333FF), th.Highlight)
	assert.Equal(t, 100, th.CoverWidth)
	assert.Equal(t, 12, th.FontSize())

	cfg.CoverWidth = 90
	cfg.FontSize = 0
	th, err = cfg.Theme(image.Pt(300, 100))
	require.NoError(t, err)
	assert.Equal(t, 90, th.CoverWidth)
	assert.Equal(t, 12, th.FontSize())

	cfg.Colors.Border = "black"
	_, err = cfg.Theme(image.Pt(300, 100))
	assert.ErrorContains(t, err, "color border")
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("#11223344")
	require.NoError(t, err)
	assert.Equal(t, draw9.Color(0x11223344), c)

	for _, s := range []string{"", "112233", "#1122", "#GG2233"} {
		_, err := parseColor(s)
		assert.Error(t, err, s)
	}
}
