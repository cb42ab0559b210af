package decor

// Metrics are the fixed decoration sizes in surface-local pixels.
type Metrics struct {
	Border      int32
	Titlebar    int32
	CloseButton int32
}

// DefaultMetrics returns a 5px border, a 30px titlebar and a 20px close button.
func DefaultMetrics() Metrics {
	return Metrics{Border: 5, Titlebar: 30, CloseButton: 20}
}

// MinSize returns the smallest window size that leaves every piece and the
// content area at least one pixel in each dimension.
func (m Metrics) MinSize() (width, height int32) {
	width = 2*m.Border + 1
	if w := 2*m.Border + m.CloseButton + (m.Titlebar-m.CloseButton)/2 + 1; w > width {
		width = w
	}
	height = m.Titlebar + 2*m.Border + 1
	return width, height
}

// Palette holds the fill colors, packed ARGB8888.
type Palette struct {
	Titlebar    uint32
	CloseButton uint32
	Border      uint32
	Background  uint32
}

// DefaultPalette returns the grey scheme with a red close button.
func DefaultPalette() Palette {
	return Palette{
		Titlebar:    0xff666666,
		CloseButton: 0xffdd6666,
		Border:      0xffaaaaaa,
		Background:  0xff444444,
	}
}

// ColorOf returns the fill color of a region
func (p Palette) ColorOf(r Region) uint32 {
	switch r {
	case Titlebar:
		return p.Titlebar
	case CloseButton:
		return p.CloseButton
	default:
		return p.Border
	}
}

// Rect is a rectangle relative to the content origin.
type Rect struct {
	X, Y          int32
	Width, Height int32
}

// Empty reports whether the rectangle covers no pixel
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Overlaps reports whether r and o share at least one pixel
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Piece is one decoration region placed for a given window size.
type Piece struct {
	Region Region
	Rect   Rect
}

// Frame is the complete layout for one window size.
type Frame struct {
	Width, Height int32
	Content       Rect
	Pieces        []Piece // in Regions order
}

// Rect returns the rectangle of region r
func (f Frame) Rect(r Region) (Rect, bool) {
	for _, p := range f.Pieces {
		if p.Region == r {
			return p.Rect, true
		}
	}
	return Rect{}, false
}

// Compute lays out every decoration piece for a width x height window. The window
// size includes the decorations; the content area sits at the origin and every
// piece lies outside of it. The result depends only on its arguments.
func Compute(m Metrics, width, height int32) Frame {
	b, t, c := m.Border, m.Titlebar, m.CloseButton

	innerW := width - 2*b
	bottom := height - t - 2*b // y of the bottom border, also the content height
	sideH := height - 2*b

	rects := map[Region]Rect{
		Titlebar:          {X: 0, Y: -t, Width: innerW, Height: t},
		CloseButton:       {X: innerW - c - (t-c)/2, Y: -((t + c) / 2), Width: c, Height: c},
		BorderTop:         {X: 0, Y: -b - t, Width: innerW, Height: b},
		BorderBottom:      {X: 0, Y: bottom, Width: innerW, Height: b},
		BorderLeft:        {X: -b, Y: -t, Width: b, Height: sideH},
		BorderRight:       {X: innerW, Y: -t, Width: b, Height: sideH},
		CornerTopLeft:     {X: -b, Y: -b - t, Width: b, Height: b},
		CornerTopRight:    {X: innerW, Y: -b - t, Width: b, Height: b},
		CornerBottomLeft:  {X: -b, Y: bottom, Width: b, Height: b},
		CornerBottomRight: {X: innerW, Y: bottom, Width: b, Height: b},
	}

	f := Frame{
		Width:   width,
		Height:  height,
		Content: Rect{X: 0, Y: 0, Width: innerW, Height: bottom},
		Pieces:  make([]Piece, 0, len(Regions)),
	}
	for _, r := range Regions {
		f.Pieces = append(f.Pieces, Piece{Region: r, Rect: rects[r]})
	}
	return f
}
