package cursor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	fileMagic    = "Xcur"
	imageType    = 0xfffd0002
	maxDimension = 0x7fff
	tocEntrySize = 12
	fileHdrSize  = 16
	imageHdrSize = 36
)

var (
	ErrNotXcursor = errors.New("not an xcursor file")
	ErrNoImage    = errors.New("xcursor file has no image")
)

// Image is one cursor frame. Pixels are premultiplied ARGB, row major.
type Image struct {
	Size   uint32 // nominal size
	Width  uint32
	Height uint32
	HotX   uint32
	HotY   uint32
	Delay  uint32
	Pixels []uint32
}

type tocEntry struct {
	typ      uint32
	subtype  uint32
	position uint32
}

// Decode returns the first frame whose nominal size is closest to size.
func Decode(data []byte, size uint32) (*Image, error) {
	if len(data) < fileHdrSize || string(data[:4]) != fileMagic {
		return nil, ErrNotXcursor
	}
	le := binary.LittleEndian
	hdr := le.Uint32(data[4:])
	ntoc := le.Uint32(data[12:])
	if hdr < fileHdrSize || uint64(hdr)+uint64(ntoc)*tocEntrySize > uint64(len(data)) {
		return nil, fmt.Errorf("%w: truncated table of contents", ErrNotXcursor)
	}

	var best *tocEntry
	var bestDist uint32
	for i := uint32(0); i < ntoc; i++ {
		off := hdr + i*tocEntrySize
		e := tocEntry{
			typ:      le.Uint32(data[off:]),
			subtype:  le.Uint32(data[off+4:]),
			position: le.Uint32(data[off+8:]),
		}
		if e.typ != imageType {
			continue
		}
		dist := distance(e.subtype, size)
		// Frames of one size are stored in order, keep the first.
		if best == nil || dist < bestDist {
			entry := e
			best, bestDist = &entry, dist
		}
	}
	if best == nil {
		return nil, ErrNoImage
	}
	return decodeImage(data, best)
}

func decodeImage(data []byte, e *tocEntry) (*Image, error) {
	if uint64(e.position)+imageHdrSize > uint64(len(data)) {
		return nil, fmt.Errorf("%w: image chunk out of range", ErrNotXcursor)
	}
	var chunk struct {
		Header  uint32
		Type    uint32
		Subtype uint32
		Version uint32
		Width   uint32
		Height  uint32
		HotX    uint32
		HotY    uint32
		Delay   uint32
	}
	if err := binary.Read(bytes.NewReader(data[e.position:e.position+imageHdrSize]), binary.LittleEndian, &chunk); err != nil {
		return nil, fmt.Errorf("read image header: %w", err)
	}
	if chunk.Type != imageType || chunk.Subtype != e.subtype {
		return nil, fmt.Errorf("%w: image header does not match table of contents", ErrNotXcursor)
	}
	if chunk.Width == 0 || chunk.Height == 0 || chunk.Width > maxDimension || chunk.Height > maxDimension {
		return nil, fmt.Errorf("%w: bad image size %dx%d", ErrNotXcursor, chunk.Width, chunk.Height)
	}
	if chunk.HotX > chunk.Width || chunk.HotY > chunk.Height {
		return nil, fmt.Errorf("%w: hotspot outside image", ErrNotXcursor)
	}

	start := uint64(e.position) + uint64(chunk.Header)
	n := uint64(chunk.Width) * uint64(chunk.Height)
	if chunk.Header < imageHdrSize || start+n*4 > uint64(len(data)) {
		return nil, fmt.Errorf("%w: truncated pixels", ErrNotXcursor)
	}

	pixels := make([]uint32, n)
	for i := range pixels {
		pixels[i] = binary.LittleEndian.Uint32(data[start+uint64(i)*4:])
	}

	return &Image{
		Size:   chunk.Subtype,
		Width:  chunk.Width,
		Height: chunk.Height,
		HotX:   chunk.HotX,
		HotY:   chunk.HotY,
		Delay:  chunk.Delay,
		Pixels: pixels,
	}, nil
}

func distance(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// Fallback returns a plain arrow-ish image: an opaque dark square with a light
// outline, hotspot at the top left corner.
func Fallback(size uint32) *Image {
	if size < 8 {
		size = 8
	}
	side := size / 2
	img := &Image{
		Size:   size,
		Width:  side,
		Height: side,
		Pixels: make([]uint32, side*side),
	}
	for y := uint32(0); y < side; y++ {
		for x := uint32(0); x < side; x++ {
			c := uint32(0xff202020)
			if x == 0 || y == 0 || x == side-1 || y == side-1 {
				c = 0xffe0e0e0
			}
			img.Pixels[y*side+x] = c
		}
	}
	return img
}
