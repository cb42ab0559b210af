// Package xkb reads the text keymaps compositors hand out over wl_keyboard and
// turns evdev key codes into keysym names.
//
// Only the keycodes and symbols sections are looked at. Types, compat and
// actions are skipped, so levels are picked from the Shift state alone.
package xkb

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// FormatTextV1 is wl_keyboard.keymap_format.xkb_v1.
	FormatTextV1 = 1

	// EvdevOffset is added to an evdev code to get the xkb keycode.
	EvdevOffset = 8

	// EvdevEscape is KEY_ESC.
	EvdevEscape = 1
)

var ErrSection = errors.New("keymap section missing")

var (
	keycodeRe = regexp.MustCompile(`<([^>]+)>\s*=\s*(\d+)\s*;`)
	aliasRe   = regexp.MustCompile(`alias\s+<([^>]+)>\s*=\s*<([^>]+)>\s*;`)
	keyRe     = regexp.MustCompile(`\bkey\s+<([^>]+)>\s*\{([^}]*)\}`)
	quotedRe  = regexp.MustCompile(`\w+(?:\[\w+\])?\s*=\s*"[^"]*"`)
	groupRe   = regexp.MustCompile(`(?:(\w+)\s*\[\s*[Gg]roup(\d+)\s*\]\s*=\s*)?\[([^\]]*)\]`)
)

// Keymap maps xkb keycodes to keysym names per group and level.
type Keymap struct {
	codes map[string]uint32
	syms  map[uint32][][]string
}

// Parse scans a text keymap.
func Parse(text []byte) (*Keymap, error) {
	src := strings.TrimRight(string(text), "\x00")

	keycodes, ok := section(src, "xkb_keycodes")
	if !ok {
		return nil, fmt.Errorf("%w: xkb_keycodes", ErrSection)
	}
	symbols, ok := section(src, "xkb_symbols")
	if !ok {
		return nil, fmt.Errorf("%w: xkb_symbols", ErrSection)
	}

	km := &Keymap{
		codes: make(map[string]uint32),
		syms:  make(map[uint32][][]string),
	}

	for _, m := range keycodeRe.FindAllStringSubmatch(keycodes, -1) {
		code, err := strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("keycode <%s>: %w", m[1], err)
		}
		km.codes[m[1]] = uint32(code)
	}
	for _, m := range aliasRe.FindAllStringSubmatch(keycodes, -1) {
		if code, ok := km.codes[m[2]]; ok {
			km.codes[m[1]] = code
		}
	}

	for _, m := range keyRe.FindAllStringSubmatch(symbols, -1) {
		code, ok := km.codes[m[1]]
		if !ok {
			continue
		}
		if groups := parseGroups(m[2]); len(groups) > 0 {
			km.syms[code] = groups
		}
	}

	return km, nil
}

// section returns the body of the first `name "..." { ... };` block.
func section(src, name string) (string, bool) {
	start := strings.Index(src, name)
	if start < 0 {
		return "", false
	}
	open := strings.IndexByte(src[start:], '{')
	if open < 0 {
		return "", false
	}
	open += start

	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[open+1 : i], true
			}
		}
	}
	return "", false
}

func parseGroups(body string) [][]string {
	body = quotedRe.ReplaceAllString(body, "")

	var groups [][]string
	next := 0
	for _, m := range groupRe.FindAllStringSubmatch(body, -1) {
		idx := next
		if m[1] != "" {
			if m[1] != "symbols" {
				continue
			}
			n, err := strconv.Atoi(m[2])
			if err != nil || n < 1 {
				continue
			}
			idx = n - 1
		}

		var levels []string
		for _, sym := range strings.Split(m[3], ",") {
			if sym = strings.TrimSpace(sym); sym != "" {
				levels = append(levels, sym)
			}
		}

		for len(groups) <= idx {
			groups = append(groups, nil)
		}
		groups[idx] = levels
		next = idx + 1
	}
	return groups
}

// Keycode returns the xkb keycode of a key name such as "ESC"
func (k *Keymap) Keycode(name string) (uint32, bool) {
	code, ok := k.codes[name]
	return code, ok
}

// Keysym returns the keysym name at keycode, group and level, or "" if the key
// has no symbols. Out of range groups wrap and out of range levels fall back to
// the first level.
func (k *Keymap) Keysym(keycode uint32, group, level int) string {
	groups := k.syms[keycode]
	if len(groups) == 0 {
		return ""
	}
	if group < 0 {
		group = 0
	}
	levels := groups[group%len(groups)]
	if len(levels) == 0 {
		levels = groups[0]
	}
	if len(levels) == 0 {
		return ""
	}
	if level < 0 || level >= len(levels) {
		level = 0
	}
	return levels[level]
}

// Lookup returns the keysym for an evdev key code under the given state.
func (k *Keymap) Lookup(evdev uint32, st State) string {
	return k.Keysym(evdev+EvdevOffset, int(st.Group), st.Level())
}
