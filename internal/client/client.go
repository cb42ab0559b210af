// Package client connects the window model to a compositor: it binds the
// globals, builds the surface tree and runs the event loop.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bnema/wlcsd"
	"github.com/bnema/wlcsd/internal/config"
	"github.com/bnema/wlcsd/internal/cursor"
	"github.com/bnema/wlcsd/internal/decor"
	"github.com/bnema/wlcsd/internal/window"
)

// Options configures a Client.
type Options struct {
	// Display is the socket name or path; empty uses WAYLAND_DISPLAY.
	Display string
	Config  *config.Config
	Logger  *slog.Logger
}

// Client is one decorated toplevel on one compositor connection.
type Client struct {
	display *wlcsd.Display

	compositor    *wlcsd.Compositor
	subcompositor *wlcsd.Subcompositor
	shm           *wlcsd.Shm
	wmBase        *wlcsd.XdgWmBase
	seat          *wlcsd.Seat

	surface       *wlcsd.Surface
	xdgSurface    *wlcsd.XdgSurface
	toplevel      *wlcsd.XdgToplevel
	pieces        map[decor.Region]*wlcsd.Subsurface
	cursorSurface *wlcsd.Surface

	pointer  *wlcsd.Pointer
	keyboard *wlcsd.Keyboard

	tr  *translator
	app *window.App
	log *slog.Logger
}

// Dial connects, binds the globals and maps the window. The window is not
// painted until the compositor's first configure is handled by Run.
func Dial(opts Options) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	display, err := wlcsd.Connect(opts.Display)
	if err != nil {
		return nil, err
	}
	display.SetLogger(log)

	c := &Client{
		display: display,
		pieces:  make(map[decor.Region]*wlcsd.Subsurface),
		tr:      newTranslator(log),
		log:     log,
	}
	if err := c.setup(cfg); err != nil {
		_ = display.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) setup(cfg *config.Config) error {
	if err := c.display.Roundtrip(); err != nil {
		return fmt.Errorf("initial roundtrip: %w", err)
	}

	ctx := c.display.Context()
	c.compositor = wlcsd.NewCompositor(ctx)
	c.subcompositor = wlcsd.NewSubcompositor(ctx)
	c.shm = wlcsd.NewShm(ctx)
	c.wmBase = wlcsd.NewXdgWmBase(ctx)
	c.seat = wlcsd.NewSeat(ctx)

	err := bindGlobals(c.display.Registry(), []requirement{
		{iface: "wl_compositor", min: 4, max: 5, proxy: c.compositor},
		{iface: "wl_subcompositor", min: 1, max: 1, proxy: c.subcompositor},
		{iface: "wl_shm", min: 1, max: 1, proxy: c.shm},
		{iface: "xdg_wm_base", min: 1, max: 4, proxy: c.wmBase},
		{iface: "wl_seat", min: 1, max: 5, proxy: c.seat},
	})
	if err != nil {
		return err
	}

	c.tr.onCapabilities = c.updateDevices
	c.seat.AddCapabilitiesHandler(c.tr)

	if err := c.createWindow(cfg); err != nil {
		return err
	}

	cursorSurface, err := c.compositor.CreateSurface()
	if err != nil {
		return fmt.Errorf("create cursor surface: %w", err)
	}
	c.cursorSurface = cursorSurface
	themeName, themeSize := cursor.EnvOverride(cfg.Cursor.Theme, uint32(cfg.Cursor.Size))
	cursors := &cursorSet{
		theme:   cursor.NewTheme(themeName, themeSize, cursor.WithLogger(c.log)),
		shm:     c.shm,
		surface: cursorSurface,
		pointer: func() *wlcsd.Pointer { return c.pointer },
		images:  make(map[decor.CursorShape]*cursorImage),
		log:     c.log,
	}

	pieces := make(map[decor.Region]window.Piece, len(c.pieces))
	for r, sub := range c.pieces {
		pieces[r] = &piece{sub: sub}
	}

	c.app = window.NewApp(window.Options{
		Width:     cfg.Width,
		Height:    cfg.Height,
		MinWidth:  cfg.MinWidth,
		MinHeight: cfg.MinHeight,
		Metrics:   cfg.Metrics(),
		Palette:   cfg.Palette(),
		Logger:    c.log,
	}, window.Surfaces{
		Shell:    &shell{xdgSurface: c.xdgSurface, toplevel: c.toplevel, seat: c.seat},
		Producer: &producer{shm: c.shm},
		Content:  &content{surface: c.surface},
		Pieces:   pieces,
		Cursors:  cursors,
	})

	// Maps the toplevel; the compositor answers with the first configure.
	if err := c.surface.Commit(); err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}
	return nil
}

func (c *Client) createWindow(cfg *config.Config) error {
	var err error
	if c.surface, err = c.compositor.CreateSurface(); err != nil {
		return fmt.Errorf("create surface: %w", err)
	}
	if c.xdgSurface, err = c.wmBase.GetXdgSurface(c.surface); err != nil {
		return fmt.Errorf("get xdg surface: %w", err)
	}
	c.xdgSurface.SetListener(c.tr)
	if c.toplevel, err = c.xdgSurface.GetToplevel(); err != nil {
		return fmt.Errorf("get toplevel: %w", err)
	}
	c.toplevel.SetListener(c.tr)

	if err := c.toplevel.SetTitle(cfg.Title); err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	if cfg.AppID != "" {
		if err := c.toplevel.SetAppID(cfg.AppID); err != nil {
			return fmt.Errorf("set app id: %w", err)
		}
	}
	if err := c.toplevel.SetMinSize(cfg.MinWidth, cfg.MinHeight); err != nil {
		return fmt.Errorf("set min size: %w", err)
	}

	for _, r := range decor.Regions {
		s, err := c.compositor.CreateSurface()
		if err != nil {
			return fmt.Errorf("create %s surface: %w", r, err)
		}
		sub, err := c.subcompositor.GetSubsurface(s, c.surface)
		if err != nil {
			return fmt.Errorf("create %s subsurface: %w", r, err)
		}
		c.pieces[r] = sub
		c.tr.regions[s.ID()] = r
	}
	return nil
}

// updateDevices follows the seat capabilities, creating or releasing the
// pointer and keyboard.
func (c *Client) updateDevices(seat *wlcsd.Seat, caps uint32) {
	hasPointer := caps&wlcsd.SeatCapabilityPointer != 0
	hasKeyboard := caps&wlcsd.SeatCapabilityKeyboard != 0

	switch {
	case hasPointer && c.pointer == nil:
		p, err := seat.GetPointer()
		if err != nil {
			c.log.Warn("get pointer", "error", err)
			break
		}
		p.SetListener(c.tr)
		c.pointer = p
	case !hasPointer && c.pointer != nil:
		if err := c.pointer.Release(); err != nil {
			c.log.Debug("release pointer", "error", err)
		}
		c.pointer = nil
	}

	switch {
	case hasKeyboard && c.keyboard == nil:
		k, err := seat.GetKeyboard()
		if err != nil {
			c.log.Warn("get keyboard", "error", err)
			break
		}
		k.SetListener(c.tr)
		c.keyboard = k
	case !hasKeyboard && c.keyboard != nil:
		if err := c.keyboard.Release(); err != nil {
			c.log.Debug("release keyboard", "error", err)
		}
		c.keyboard = nil
	}
	c.log.Debug("seat capabilities", "pointer", hasPointer, "keyboard", hasKeyboard)
}

// App exposes the window model
func (c *Client) App() *window.App {
	return c.app
}

// Run dispatches compositor events until the window is closed or ctx is done.
// Cancelling ctx closes the connection, which ends the loop cleanly.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = c.display.Close()
	})
	defer stop()

	for {
		if err := c.drain(); err != nil {
			return err
		}
		if c.app.Closed() {
			break
		}
		if err := c.display.Dispatch(); err != nil {
			if ctx.Err() != nil {
				c.log.Info("shutting down", "reason", context.Cause(ctx))
				break
			}
			return fmt.Errorf("dispatch: %w", err)
		}
	}

	c.app.Window().Terminate()
	return nil
}

func (c *Client) drain() error {
	for _, ev := range c.tr.take() {
		if err := c.app.Handle(ev); err != nil {
			return err
		}
	}
	return nil
}

// Close takes the decorations and the cursor off screen, then drops the
// connection. The compositor destroys every remaining object with it. Requests
// fail silently once Run has already closed the connection.
func (c *Client) Close() error {
	for _, sub := range c.pieces {
		_ = sub.Surface().Destroy()
	}
	if c.cursorSurface != nil {
		_ = c.cursorSurface.Destroy()
	}
	return c.display.Close()
}
