// Package config loads the wlcsd YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bnema/wlcsd/internal/decor"
)

// Color is a packed ARGB8888 value. In YAML it is either an integer
// (0xAARRGGBB) or a "#RRGGBB" / "#AARRGGBB" string; six-digit strings are opaque.
type Color uint32

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a scalar", value.Line)
	}
	if strings.HasPrefix(value.Value, "#") {
		parsed, err := ParseColor(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*c = parsed
		return nil
	}
	n, err := strconv.ParseUint(value.Value, 0, 32)
	if err != nil {
		return fmt.Errorf("line %d: invalid color %q", value.Line, value.Value)
	}
	*c = Color(n)
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%08x", uint32(c))
}

// ParseColor parses "#RRGGBB" or "#AARRGGBB".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return 0, fmt.Errorf("invalid color %q: want #RRGGBB or #AARRGGBB", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		n |= 0xff000000
	}
	return Color(n), nil
}

type Colors struct {
	Titlebar    Color `yaml:"titlebar"`
	CloseButton Color `yaml:"close_button"`
	Border      Color `yaml:"border"`
	Background  Color `yaml:"background"`
}

type Cursor struct {
	Theme string `yaml:"theme"`
	Size  int    `yaml:"size"`
}

type Config struct {
	Title           string `yaml:"title"`
	AppID           string `yaml:"app_id"`
	Width           int32  `yaml:"width"`
	Height          int32  `yaml:"height"`
	MinWidth        int32  `yaml:"min_width"`
	MinHeight       int32  `yaml:"min_height"`
	BorderWidth     int32  `yaml:"border_width"`
	TitlebarHeight  int32  `yaml:"titlebar_height"`
	CloseButtonSize int32  `yaml:"close_button_size"`
	Colors          Colors `yaml:"colors"`
	Cursor          Cursor `yaml:"cursor"`
	LogLevel        string `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Title:           "Minimal Window",
		AppID:           "wlcsd",
		Width:           1280,
		Height:          720,
		MinWidth:        300,
		MinHeight:       300,
		BorderWidth:     5,
		TitlebarHeight:  30,
		CloseButtonSize: 20,
		Colors: Colors{
			Titlebar:    0xff666666,
			CloseButton: 0xffdd6666,
			Border:      0xffaaaaaa,
			Background:  0xff444444,
		},
		Cursor: Cursor{
			Theme: "default",
			Size:  24,
		},
		LogLevel: "info",
	}
}

// Metrics returns the decoration sizes.
func (c *Config) Metrics() decor.Metrics {
	return decor.Metrics{
		Border:      c.BorderWidth,
		Titlebar:    c.TitlebarHeight,
		CloseButton: c.CloseButtonSize,
	}
}

// Palette returns the fill colors.
func (c *Config) Palette() decor.Palette {
	return decor.Palette{
		Titlebar:    uint32(c.Colors.Titlebar),
		CloseButton: uint32(c.Colors.CloseButton),
		Border:      uint32(c.Colors.Border),
		Background:  uint32(c.Colors.Background),
	}
}

// ValidationError points at the offending key.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate performs strict validation of the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return &ValidationError{Path: "title", Err: fmt.Errorf("title is required")}
	}
	if c.BorderWidth < 1 {
		return &ValidationError{Path: "border_width", Err: fmt.Errorf("border_width must be >= 1")}
	}
	if c.CloseButtonSize < 1 {
		return &ValidationError{Path: "close_button_size", Err: fmt.Errorf("close_button_size must be >= 1")}
	}
	if c.TitlebarHeight < c.CloseButtonSize {
		return &ValidationError{Path: "titlebar_height", Err: fmt.Errorf("titlebar_height must be >= close_button_size (%d)", c.CloseButtonSize)}
	}

	floorW, floorH := c.Metrics().MinSize()
	if c.MinWidth < floorW {
		return &ValidationError{Path: "min_width", Err: fmt.Errorf("min_width must be >= %d for these decorations", floorW)}
	}
	if c.MinHeight < floorH {
		return &ValidationError{Path: "min_height", Err: fmt.Errorf("min_height must be >= %d for these decorations", floorH)}
	}
	if c.Width < c.MinWidth {
		return &ValidationError{Path: "width", Err: fmt.Errorf("width must be >= min_width (%d)", c.MinWidth)}
	}
	if c.Height < c.MinHeight {
		return &ValidationError{Path: "height", Err: fmt.Errorf("height must be >= min_height (%d)", c.MinHeight)}
	}

	if strings.TrimSpace(c.Cursor.Theme) == "" {
		return &ValidationError{Path: "cursor.theme", Err: fmt.Errorf("cursor.theme is required")}
	}
	if c.Cursor.Size < 1 || c.Cursor.Size > 256 {
		return &ValidationError{Path: "cursor.size", Err: fmt.Errorf("cursor.size must be between 1 and 256")}
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "wlcsd", "config.yaml"), nil
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath overlays the file at path on the defaults. A missing file yields
// the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	if err := decodeStrictYAML(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}
