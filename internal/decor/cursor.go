package decor

// CursorShape is a pointer image the client can show over its own surfaces.
type CursorShape int

const (
	CursorLeftPtr CursorShape = iota
	CursorPointer
	CursorNResize
	CursorSResize
	CursorWResize
	CursorEResize
	CursorNWResize
	CursorNEResize
	CursorSWResize
	CursorSEResize
)

var shapeNames = map[CursorShape]string{
	CursorLeftPtr:  "left_ptr",
	CursorPointer:  "pointer",
	CursorNResize:  "n-resize",
	CursorSResize:  "s-resize",
	CursorWResize:  "w-resize",
	CursorEResize:  "e-resize",
	CursorNWResize: "nw-resize",
	CursorNEResize: "ne-resize",
	CursorSWResize: "sw-resize",
	CursorSEResize: "se-resize",
}

// Name returns the cursor theme name of the shape
func (c CursorShape) Name() string {
	if name, ok := shapeNames[c]; ok {
		return name
	}
	return "left_ptr"
}

func (c CursorShape) String() string {
	return c.Name()
}

// cursorTable maps each region to the cursor shown while the pointer is over it.
// Titlebar keeps the default arrow, like the plain content area.
var cursorTable = map[Region]CursorShape{
	Titlebar:          CursorLeftPtr,
	CloseButton:       CursorPointer,
	BorderTop:         CursorNResize,
	BorderBottom:      CursorSResize,
	BorderLeft:        CursorWResize,
	BorderRight:       CursorEResize,
	CornerTopLeft:     CursorNWResize,
	CornerTopRight:    CursorNEResize,
	CornerBottomLeft:  CursorSWResize,
	CornerBottomRight: CursorSEResize,
}

// ShapeFor returns the cursor for r. Anything that is not a decoration region
// gets the default arrow.
func ShapeFor(r Region) CursorShape {
	if shape, ok := cursorTable[r]; ok {
		return shape
	}
	return CursorLeftPtr
}
