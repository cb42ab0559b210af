package client

import (
	"fmt"
	"log/slog"

	"github.com/bnema/wlcsd"
	"github.com/bnema/wlcsd/internal/cursor"
	"github.com/bnema/wlcsd/internal/decor"
	"github.com/bnema/wlcsd/internal/window"
)

type shell struct {
	xdgSurface *wlcsd.XdgSurface
	toplevel   *wlcsd.XdgToplevel
	seat       *wlcsd.Seat
}

func (s *shell) AckConfigure(serial uint32) error {
	return s.xdgSurface.AckConfigure(serial)
}

func (s *shell) Move(serial uint32) error {
	return s.toplevel.Move(s.seat, serial)
}

func (s *shell) Resize(serial uint32, edge decor.Edge) error {
	return s.toplevel.Resize(s.seat, serial, uint32(edge))
}

type producer struct {
	shm *wlcsd.Shm
}

func (p *producer) DrawRect(width, height int32, color uint32) (window.Drawable, error) {
	buf, err := p.shm.DrawRect(width, height, color)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func asBuffer(d window.Drawable) (*wlcsd.Buffer, error) {
	buf, ok := d.(*wlcsd.Buffer)
	if !ok {
		return nil, fmt.Errorf("unexpected drawable %T", d)
	}
	return buf, nil
}

// present attaches buf to surface, damages all of it and commits.
func present(surface *wlcsd.Surface, buf *wlcsd.Buffer) error {
	if err := surface.Attach(buf, 0, 0); err != nil {
		return err
	}
	w, h := buf.Size()
	if err := surface.DamageBuffer(0, 0, w, h); err != nil {
		return err
	}
	return surface.Commit()
}

// piece is one decoration sub-surface.
type piece struct {
	sub *wlcsd.Subsurface
}

func (p *piece) Show(d window.Drawable, x, y int32) error {
	buf, err := asBuffer(d)
	if err != nil {
		return err
	}
	if err := p.sub.SetPosition(x, y); err != nil {
		return err
	}
	return present(p.sub.Surface(), buf)
}

// content is the main surface. Its commit also applies the pending state of
// every synchronized piece.
type content struct {
	surface *wlcsd.Surface
}

func (c *content) Show(d window.Drawable) error {
	buf, err := asBuffer(d)
	if err != nil {
		return err
	}
	return present(c.surface, buf)
}

func (c *content) Commit() error {
	return c.surface.Commit()
}

type cursorImage struct {
	buf        *wlcsd.Buffer
	hotX, hotY int32
}

// cursorSet shows theme cursors on a dedicated surface. Images are uploaded on
// first use and kept for the session.
type cursorSet struct {
	theme   *cursor.Theme
	shm     *wlcsd.Shm
	surface *wlcsd.Surface
	pointer func() *wlcsd.Pointer
	images  map[decor.CursorShape]*cursorImage
	log     *slog.Logger
}

func (c *cursorSet) Set(serial uint32, shape decor.CursorShape) error {
	p := c.pointer()
	if p == nil {
		return nil
	}
	img, err := c.image(shape)
	if err != nil {
		c.log.Warn("cursor upload failed", "shape", shape.Name(), "error", err)
		return nil
	}
	if err := p.SetCursor(serial, c.surface, img.hotX, img.hotY); err != nil {
		return err
	}
	return present(c.surface, img.buf)
}

func (c *cursorSet) image(shape decor.CursorShape) (*cursorImage, error) {
	if img, ok := c.images[shape]; ok {
		return img, nil
	}
	src := c.theme.LoadOrFallback(shape.Name())
	buf, err := c.shm.DrawPixels(int32(src.Width), int32(src.Height), src.Pixels)
	if err != nil {
		return nil, err
	}
	img := &cursorImage{buf: buf, hotX: int32(src.HotX), hotY: int32(src.HotY)}
	c.images[shape] = img
	return img, nil
}
