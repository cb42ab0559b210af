package window

import "github.com/bnema/wlcsd/internal/decor"

// Event is everything App reacts to. The transport translates compositor events
// into these and feeds them to App.Handle one at a time.
type Event interface {
	event()
}

// ToplevelConfigure proposes a window size. Zero means the client decides.
type ToplevelConfigure struct {
	Width, Height int32
	States        []uint32
}

// SurfaceConfigure ends a configure sequence and must be acked with Serial.
type SurfaceConfigure struct {
	Serial uint32
}

// CloseRequest is xdg_toplevel.close.
type CloseRequest struct{}

// PointerEnter reports the pointer entering one of the window's surfaces.
// Region is zero for the content surface or any surface that is not a
// decoration piece.
type PointerEnter struct {
	Serial uint32
	Region decor.Region
	X, Y   float64
}

type PointerLeave struct {
	Serial uint32
	Region decor.Region
}

type PointerMotion struct {
	Time uint32
	X, Y float64
}

type PointerButton struct {
	Serial  uint32
	Time    uint32
	Button  uint32
	Pressed bool
}

// Keymap carries the keymap text. Text is nil when Format is not the xkb text
// format, since then the transport does not read the descriptor.
type Keymap struct {
	Format uint32
	Text   []byte
}

type Key struct {
	Serial  uint32
	Time    uint32
	Code    uint32 // evdev
	Pressed bool
}

type Modifiers struct {
	Depressed, Latched, Locked, Group uint32
}

func (ToplevelConfigure) event() {}
func (SurfaceConfigure) event()  {}
func (CloseRequest) event()      {}
func (PointerEnter) event()      {}
func (PointerLeave) event()      {}
func (PointerMotion) event()     {}
func (PointerButton) event()     {}
func (Keymap) event()            {}
func (Key) event()               {}
func (Modifiers) event()         {}
