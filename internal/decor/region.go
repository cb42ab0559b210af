// Package decor holds the client-side decoration model: which pieces exist, where
// they go for a given window size, which ones the pointer is over, and what a
// button press on them means.
package decor

import "strings"

// Region identifies one decoration piece. Every region is its own bit so the set
// of hovered regions fits in a Mask.
type Region uint16

const (
	BorderTop Region = 1 << iota
	BorderBottom
	BorderLeft
	BorderRight
	CornerTopLeft
	CornerTopRight
	CornerBottomLeft
	CornerBottomRight
	Titlebar
	CloseButton
)

// Regions lists every region in paint order.
var Regions = []Region{
	Titlebar,
	CloseButton,
	BorderTop,
	BorderBottom,
	BorderLeft,
	BorderRight,
	CornerTopLeft,
	CornerTopRight,
	CornerBottomLeft,
	CornerBottomRight,
}

// String returns the region name
func (r Region) String() string {
	switch r {
	case Titlebar:
		return "titlebar"
	case CloseButton:
		return "close-button"
	case BorderTop:
		return "border-top"
	case BorderBottom:
		return "border-bottom"
	case BorderLeft:
		return "border-left"
	case BorderRight:
		return "border-right"
	case CornerTopLeft:
		return "corner-top-left"
	case CornerTopRight:
		return "corner-top-right"
	case CornerBottomLeft:
		return "corner-bottom-left"
	case CornerBottomRight:
		return "corner-bottom-right"
	case 0:
		return "none"
	default:
		return "unknown"
	}
}

// Mask is a set of regions.
type Mask uint16

// Has reports whether r is in the set
func (m Mask) Has(r Region) bool {
	return r != 0 && m&Mask(r) == Mask(r)
}

// With returns the set plus r
func (m Mask) With(r Region) Mask {
	return m | Mask(r)
}

// Without returns the set minus r
func (m Mask) Without(r Region) Mask {
	return m &^ Mask(r)
}

// Empty reports whether no region is set
func (m Mask) Empty() bool {
	return m == 0
}

// Regions returns the members in paint order
func (m Mask) Regions() []Region {
	var out []Region
	for _, r := range Regions {
		if m.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m Mask) String() string {
	regions := m.Regions()
	if len(regions) == 0 {
		return "{}"
	}
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = r.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}
