package cursor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type frame struct {
	size, w, h, hx, hy uint32
	color              uint32
}

// buildXcursor encodes frames into an xcursor file.
func buildXcursor(t *testing.T, frames ...frame) []byte {
	t.Helper()
	var buf bytes.Buffer
	le := binary.LittleEndian
	put := func(v uint32) {
		if err := binary.Write(&buf, le, v); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	buf.WriteString(fileMagic)
	put(fileHdrSize)
	put(0x10000)
	put(uint32(len(frames)))

	pos := uint32(fileHdrSize + tocEntrySize*len(frames))
	for _, f := range frames {
		put(imageType)
		put(f.size)
		put(pos)
		pos += imageHdrSize + 4*f.w*f.h
	}
	for _, f := range frames {
		put(imageHdrSize)
		put(imageType)
		put(f.size)
		put(1)
		put(f.w)
		put(f.h)
		put(f.hx)
		put(f.hy)
		put(50)
		for i := uint32(0); i < f.w*f.h; i++ {
			put(f.color)
		}
	}
	return buf.Bytes()
}

func TestDecodeClosestSize(t *testing.T) {
	data := buildXcursor(t,
		frame{size: 24, w: 24, h: 24, hx: 1, hy: 2, color: 0xff000024},
		frame{size: 24, w: 24, h: 24, color: 0xff111111},
		frame{size: 32, w: 32, h: 32, hx: 3, hy: 4, color: 0xff000032},
		frame{size: 48, w: 48, h: 48, color: 0xff000048},
	)

	tests := []struct {
		want uint32
		size uint32
	}{
		{24, 16},
		{24, 24},
		{32, 30},
		{48, 44},
		{48, 96},
	}
	for _, tt := range tests {
		img, err := Decode(data, tt.size)
		if err != nil {
			t.Fatalf("decode %d: %v", tt.size, err)
		}
		if img.Size != tt.want || img.Width != tt.want || len(img.Pixels) != int(tt.want*tt.want) {
			t.Errorf("size %d: got nominal %d (%dx%d)", tt.size, img.Size, img.Width, img.Height)
		}
	}

	img, err := Decode(data, 24)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Pixels[0] != 0xff000024 || img.HotX != 1 || img.HotY != 2 {
		t.Errorf("expected first frame of size 24, got pixel %#x hotspot %d,%d", img.Pixels[0], img.HotX, img.HotY)
	}
}

func TestDecodeErrors(t *testing.T) {
	good := buildXcursor(t, frame{size: 24, w: 4, h: 4})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrNotXcursor},
		{"bad magic", append([]byte("Xcuz"), good[4:]...), ErrNotXcursor},
		{"truncated pixels", good[:len(good)-4], ErrNotXcursor},
		{"no images", buildXcursor(t), ErrNoImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data, 24); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func writeTheme(t *testing.T, root, theme, inherits string, cursors map[string][]byte) {
	t.Helper()
	dir := filepath.Join(root, theme, "cursors")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if inherits != "" {
		index := "[Icon Theme]\nName=" + theme + "\nInherits=" + inherits + "\n"
		if err := os.WriteFile(filepath.Join(root, theme, "index.theme"), []byte(index), 0644); err != nil {
			t.Fatalf("write index: %v", err)
		}
	}
	for name, data := range cursors {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("write cursor: %v", err)
		}
	}
}

func TestThemeInheritsAndAliases(t *testing.T) {
	root := t.TempDir()
	arrow := buildXcursor(t, frame{size: 24, w: 24, h: 24, color: 1})
	hand := buildXcursor(t, frame{size: 24, w: 24, h: 24, color: 2})

	writeTheme(t, root, "Mine", "Base", map[string][]byte{"left_ptr": arrow})
	writeTheme(t, root, "Base", "Mine", map[string][]byte{"hand2": hand})

	th := NewTheme("Mine", 24, WithSearchPath([]string{root}))

	img, err := th.Load(Names("left_ptr")...)
	if err != nil || img.Pixels[0] != 1 {
		t.Fatalf("left_ptr: %v", err)
	}
	img, err = th.Load(Names("pointer")...)
	if err != nil || img.Pixels[0] != 2 {
		t.Fatalf("pointer via inherited hand2: %v", err)
	}
	if _, err := th.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestThemeFallsBackToDefault(t *testing.T) {
	root := t.TempDir()
	writeTheme(t, root, "default", "", map[string][]byte{
		"top_side": buildXcursor(t, frame{size: 24, w: 8, h: 8, color: 3}),
	})

	th := NewTheme("Missing", 24, WithSearchPath([]string{root}))
	img := th.LoadOrFallback("n-resize")
	if img.Pixels[0] != 3 {
		t.Fatalf("expected default theme top_side, got %#x", img.Pixels[0])
	}
}

func TestThemeFallbackImage(t *testing.T) {
	th := NewTheme("Missing", 24, WithSearchPath([]string{t.TempDir()}))
	img := th.LoadOrFallback("se-resize")
	if img == nil || img.Width == 0 || len(img.Pixels) != int(img.Width*img.Height) {
		t.Fatalf("bad fallback image %+v", img)
	}
}

func TestSearchPathFromEnv(t *testing.T) {
	t.Setenv("XCURSOR_PATH", "/a:/b::/c")
	got := SearchPath()
	want := []string{"/a", "/b", "/c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSearchPathDefaults(t *testing.T) {
	t.Setenv("XCURSOR_PATH", "")
	t.Setenv("HOME", "/home/u")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("XDG_DATA_DIRS", "")
	got := SearchPath()
	want := []string{
		"/home/u/.local/share/icons",
		"/home/u/.icons",
		"/usr/local/share/icons",
		"/usr/share/icons",
		"/usr/share/pixmaps",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("XCURSOR_THEME", "Adwaita")
	t.Setenv("XCURSOR_SIZE", "48")
	name, size := EnvOverride("default", 24)
	if name != "Adwaita" || size != 48 {
		t.Fatalf("got %s/%d", name, size)
	}

	t.Setenv("XCURSOR_SIZE", "bogus")
	if _, size := EnvOverride("default", 24); size != 24 {
		t.Fatalf("bad size should be ignored, got %d", size)
	}
}
