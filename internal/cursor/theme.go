// Package cursor loads pointer images from XCursor themes on disk.
package cursor

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const maxInheritDepth = 16

// ErrNotFound is returned when no theme in the chain has the cursor.
var ErrNotFound = errors.New("cursor not found")

// aliases lists the legacy names tried after the primary one.
var aliases = map[string][]string{
	"left_ptr":  {"default", "arrow", "top_left_arrow"},
	"pointer":   {"hand2", "hand1", "hand", "pointing_hand"},
	"n-resize":  {"top_side", "ns-resize", "size_ver"},
	"s-resize":  {"bottom_side", "ns-resize", "size_ver"},
	"w-resize":  {"left_side", "ew-resize", "size_hor"},
	"e-resize":  {"right_side", "ew-resize", "size_hor"},
	"nw-resize": {"top_left_corner", "nwse-resize", "size_fdiag"},
	"ne-resize": {"top_right_corner", "nesw-resize", "size_bdiag"},
	"sw-resize": {"bottom_left_corner", "nesw-resize", "size_bdiag"},
	"se-resize": {"bottom_right_corner", "nwse-resize", "size_fdiag"},
}

// Names returns name followed by its known aliases.
func Names(name string) []string {
	return append([]string{name}, aliases[name]...)
}

// SearchPath returns the directories that hold cursor themes, in lookup order.
func SearchPath() []string {
	if p := os.Getenv("XCURSOR_PATH"); p != "" {
		var dirs []string
		for _, d := range filepath.SplitList(p) {
			if d != "" {
				dirs = append(dirs, expandHome(d))
			}
		}
		return dirs
	}

	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			dataHome = filepath.Join(home, ".local", "share")
		}
		dirs = append(dirs, filepath.Join(dataHome, "icons"), filepath.Join(home, ".icons"))
	}
	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, d := range filepath.SplitList(dataDirs) {
		if d != "" {
			dirs = append(dirs, filepath.Join(d, "icons"))
		}
	}
	return append(dirs, "/usr/share/pixmaps")
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}

// Theme resolves cursor names against one theme and the themes it inherits.
type Theme struct {
	name string
	size uint32
	dirs []string
	log  *slog.Logger

	cache map[string]*Image
}

type Option func(*Theme)

// WithSearchPath replaces the directories scanned for themes.
func WithSearchPath(dirs []string) Option {
	return func(t *Theme) { t.dirs = dirs }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Theme) { t.log = l }
}

// NewTheme prepares a theme. Nothing is read until a cursor is loaded.
func NewTheme(name string, size uint32, opts ...Option) *Theme {
	t := &Theme{
		name:  name,
		size:  size,
		log:   slog.Default(),
		cache: make(map[string]*Image),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.dirs == nil {
		t.dirs = SearchPath()
	}
	return t
}

func (t *Theme) Name() string { return t.name }

func (t *Theme) Size() uint32 { return t.size }

// Load finds the first of names in the theme chain. The configured theme and
// its Inherits= are tried first, then the "default" theme.
func (t *Theme) Load(names ...string) (*Image, error) {
	chain := t.chain()
	for _, name := range names {
		if img, ok := t.cache[name]; ok {
			return img, nil
		}
		for _, theme := range chain {
			img, err := t.loadFrom(theme, name)
			if err == nil {
				t.cache[name] = img
				return img, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				t.log.Warn("cursor: bad cursor file", "theme", theme, "name", name, "error", err)
			}
		}
	}
	return nil, fmt.Errorf("%w: %s in theme %q", ErrNotFound, strings.Join(names, ","), t.name)
}

// LoadOrFallback loads name or one of its aliases. When nothing matches a flat
// fallback image is returned and a warning logged.
func (t *Theme) LoadOrFallback(name string) *Image {
	img, err := t.Load(Names(name)...)
	if err != nil {
		t.log.Warn("cursor: using fallback image", "name", name, "error", err)
		img = Fallback(t.size)
		t.cache[name] = img
	}
	return img
}

func (t *Theme) loadFrom(theme, name string) (*Image, error) {
	var lastErr error = fs.ErrNotExist
	for _, dir := range t.dirs {
		data, err := os.ReadFile(filepath.Join(dir, theme, "cursors", name))
		if err != nil {
			continue
		}
		img, err := Decode(data, t.size)
		if err != nil {
			lastErr = err
			continue
		}
		return img, nil
	}
	return nil, lastErr
}

// chain returns the theme and everything it inherits, breadth first, without
// repeats, ending with "default".
func (t *Theme) chain() []string {
	seen := map[string]bool{}
	var out []string
	queue := []string{t.name}
	for depth := 0; len(queue) > 0 && depth < maxInheritDepth; depth++ {
		var next []string
		for _, name := range queue {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
			next = append(next, t.inherits(name)...)
		}
		queue = next
	}
	if !seen["default"] {
		out = append(out, "default")
	}
	return out
}

// inherits reads Inherits= from the first index.theme found for theme.
func (t *Theme) inherits(theme string) []string {
	for _, dir := range t.dirs {
		data, err := os.ReadFile(filepath.Join(dir, theme, "index.theme"))
		if err != nil {
			continue
		}
		return parseInherits(data)
	}
	return nil
}

func parseInherits(data []byte) []string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) != "Inherits" {
			continue
		}
		return strings.FieldsFunc(value, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		})
	}
	return nil
}

// EnvOverride returns the theme and size from XCURSOR_THEME and XCURSOR_SIZE,
// falling back to the given values.
func EnvOverride(name string, size uint32) (string, uint32) {
	if v := os.Getenv("XCURSOR_THEME"); v != "" {
		name = v
	}
	if v := os.Getenv("XCURSOR_SIZE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			size = uint32(n)
		}
	}
	return name, size
}
