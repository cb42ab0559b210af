// Package window runs the decorated toplevel: it owns the size negotiation, the
// hovered decoration regions and the keyboard state, and turns input into
// interactive move, resize and close requests.
package window

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnema/wlcsd/internal/decor"
	"github.com/bnema/wlcsd/internal/xkb"
)

// BtnLeft is the evdev code of the primary mouse button.
const BtnLeft = 0x110

// ErrKeymapFormat is returned for a keymap in a format other than xkb text.
var ErrKeymapFormat = errors.New("unsupported keymap format")

// Drawable is a filled buffer ready to attach.
type Drawable interface {
	Size() (width, height int32)
}

// Producer creates drawables.
type Producer interface {
	DrawRect(width, height int32, color uint32) (Drawable, error)
}

// Shell issues toplevel requests.
type Shell interface {
	AckConfigure(serial uint32) error
	Move(serial uint32) error
	Resize(serial uint32, edge decor.Edge) error
}

// Piece is the sub-surface showing one decoration region. Show positions it
// relative to the content surface, attaches d and commits.
type Piece interface {
	Show(d Drawable, x, y int32) error
}

// Content is the main surface. Show attaches d and commits; Commit commits
// without a new buffer, which still applies the pending piece state.
type Content interface {
	Show(d Drawable) error
	Commit() error
}

// Cursors shows a cursor shape for the pointer enter identified by serial.
type Cursors interface {
	Set(serial uint32, shape decor.CursorShape) error
}

// Surfaces bundles the collaborators App drives.
type Surfaces struct {
	Shell    Shell
	Producer Producer
	Content  Content
	Pieces   map[decor.Region]Piece
	Cursors  Cursors
}

// Options configures an App.
type Options struct {
	Width, Height       int32
	MinWidth, MinHeight int32
	Metrics             decor.Metrics
	Palette             decor.Palette
	Logger              *slog.Logger
}

// App is the single owner of the window state. It is not safe for concurrent
// use; the event loop calls Handle from one goroutine.
type App struct {
	win     *Window
	tracker decor.Tracker
	metrics decor.Metrics
	palette decor.Palette
	frame   decor.Frame

	keymap *xkb.Keymap
	mods   xkb.State

	s   Surfaces
	log *slog.Logger
}

func NewApp(opts Options, s Surfaces) *App {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &App{
		win:     New(opts.Width, opts.Height, opts.MinWidth, opts.MinHeight),
		metrics: opts.Metrics,
		palette: opts.Palette,
		s:       s,
		log:     log,
	}
}

// Window returns the lifecycle state
func (a *App) Window() *Window {
	return a.win
}

// Mask returns the hovered decoration regions
func (a *App) Mask() decor.Mask {
	return a.tracker.Mask()
}

// Frame returns the layout of the last relayout
func (a *App) Frame() decor.Frame {
	return a.frame
}

// Closed reports whether the loop should stop
func (a *App) Closed() bool {
	return a.win.Closed()
}

// Handle processes one event to completion. A returned error is fatal for the
// session.
func (a *App) Handle(ev Event) error {
	if a.win.Closed() {
		return nil
	}

	switch e := ev.(type) {
	case ToplevelConfigure:
		if !a.win.Propose(e.Width, e.Height) {
			a.log.Debug("ignoring zero-size configure", "width", e.Width, "height", e.Height)
		}

	case SurfaceConfigure:
		if err := a.s.Shell.AckConfigure(e.Serial); err != nil {
			return fmt.Errorf("ack configure: %w", err)
		}
		if a.win.Apply() {
			a.tracker.Reset()
		}
		return a.relayout()

	case CloseRequest:
		a.log.Debug("close requested by compositor")
		a.win.RequestClose()

	case PointerEnter:
		shape := a.tracker.Enter(e.Region)
		if err := a.s.Cursors.Set(e.Serial, shape); err != nil {
			return fmt.Errorf("set cursor: %w", err)
		}

	case PointerLeave:
		a.tracker.Leave(e.Region)

	case PointerMotion:
		// hover state comes from enter and leave only

	case PointerButton:
		if e.Button != BtnLeft || !e.Pressed {
			return nil
		}
		return a.press(e.Serial)

	case Keymap:
		return a.setKeymap(e)

	case Modifiers:
		a.mods.Update(e.Depressed, e.Latched, e.Locked, e.Group)

	case Key:
		if e.Pressed && a.keysym(e.Code) == "Escape" {
			a.log.Debug("escape pressed")
			a.win.RequestClose()
		}

	default:
		a.log.Debug("unhandled event", "type", fmt.Sprintf("%T", ev))
	}
	return nil
}

func (a *App) press(serial uint32) error {
	action := a.tracker.Press()
	a.log.Debug("button press", "mask", a.tracker.Mask().String(), "action", action.String())

	switch action.Kind {
	case decor.ActionMove:
		if err := a.s.Shell.Move(serial); err != nil {
			return fmt.Errorf("move: %w", err)
		}
	case decor.ActionResize:
		if err := a.s.Shell.Resize(serial, action.Edge); err != nil {
			return fmt.Errorf("resize %s: %w", action.Edge, err)
		}
	case decor.ActionClose:
		a.win.RequestClose()
	}
	return nil
}

func (a *App) setKeymap(e Keymap) error {
	if e.Format != xkb.FormatTextV1 {
		return fmt.Errorf("%w: %d", ErrKeymapFormat, e.Format)
	}
	km, err := xkb.Parse(e.Text)
	if err != nil {
		a.log.Warn("keymap not understood, using raw key codes", "error", err)
		a.keymap = nil
		return nil
	}
	a.keymap = km
	return nil
}

func (a *App) keysym(code uint32) string {
	if a.keymap == nil {
		if code == xkb.EvdevEscape {
			return "Escape"
		}
		return ""
	}
	return a.keymap.Lookup(code, a.mods)
}
