package wlcsd

// XdgWmBase represents xdg_wm_base
type XdgWmBase struct {
	BaseProxy
}

// NewXdgWmBase creates an xdg_wm_base proxy ready to be bound
func NewXdgWmBase(ctx *Context) *XdgWmBase {
	return &XdgWmBase{BaseProxy: BaseProxy{context: ctx}}
}

// Dispatch answers ping with pong so the compositor never marks us unresponsive
func (w *XdgWmBase) Dispatch(event *Event) {
	if event.Opcode != 0 {
		return
	}
	serial := event.Uint32()
	if err := w.Pong(serial); err != nil {
		w.context.display.log.Debug("wlclient: pong failed", "serial", serial, "err", err)
	}
}

// Pong responds to a ping
func (w *XdgWmBase) Pong(serial uint32) error {
	return w.context.SendRequest(w, 3, serial)
}

// GetXdgSurface assigns the xdg_surface role to surface
func (w *XdgWmBase) GetXdgSurface(surface *Surface) (*XdgSurface, error) {
	xs := &XdgSurface{BaseProxy: BaseProxy{context: w.context}}
	undo := w.context.newChild(xs)

	// get_xdg_surface (opcode 2)
	if err := w.context.SendRequest(w, 2, xs.id, surface); err != nil {
		undo()
		return nil, err
	}
	return xs, nil
}

// XdgSurfaceListener receives xdg_surface events
type XdgSurfaceListener interface {
	HandleXdgSurfaceConfigure(serial uint32)
}

// XdgSurface represents xdg_surface
type XdgSurface struct {
	BaseProxy
	listener XdgSurfaceListener
}

// SetListener sets the receiver of configure events
func (s *XdgSurface) SetListener(l XdgSurfaceListener) {
	s.listener = l
}

// Dispatch handles xdg_surface.configure
func (s *XdgSurface) Dispatch(event *Event) {
	if event.Opcode == 0 && s.listener != nil {
		s.listener.HandleXdgSurfaceConfigure(event.Uint32())
	}
}

// GetToplevel assigns the xdg_toplevel role
func (s *XdgSurface) GetToplevel() (*XdgToplevel, error) {
	tl := &XdgToplevel{BaseProxy: BaseProxy{context: s.context}}
	undo := s.context.newChild(tl)

	// get_toplevel (opcode 1)
	if err := s.context.SendRequest(s, 1, tl.id); err != nil {
		undo()
		return nil, err
	}
	return tl, nil
}

// AckConfigure acknowledges a configure event
func (s *XdgSurface) AckConfigure(serial uint32) error {
	return s.context.SendRequest(s, 4, serial)
}

// XdgToplevelListener receives xdg_toplevel events
type XdgToplevelListener interface {
	HandleToplevelConfigure(width, height int32, states []uint32)
	HandleToplevelClose()
}

// XdgToplevel represents xdg_toplevel
type XdgToplevel struct {
	BaseProxy
	listener XdgToplevelListener
}

// SetListener sets the receiver of toplevel events
func (t *XdgToplevel) SetListener(l XdgToplevelListener) {
	t.listener = l
}

// Dispatch handles configure and close
func (t *XdgToplevel) Dispatch(event *Event) {
	if t.listener == nil {
		return
	}
	switch event.Opcode {
	case 0: // configure
		width := event.Int32()
		height := event.Int32()
		raw := event.Array()
		states := make([]uint32, 0, len(raw)/4)
		arr := &Event{data: raw}
		for i := 0; i+4 <= len(raw); i += 4 {
			states = append(states, arr.Uint32())
		}
		t.listener.HandleToplevelConfigure(width, height, states)
	case 1: // close
		t.listener.HandleToplevelClose()
	}
}

// SetTitle sets the window title
func (t *XdgToplevel) SetTitle(title string) error {
	return t.context.SendRequest(t, 2, title)
}

// SetAppID sets the application id
func (t *XdgToplevel) SetAppID(appID string) error {
	return t.context.SendRequest(t, 3, appID)
}

// Move starts an interactive move driven by the compositor
func (t *XdgToplevel) Move(seat *Seat, serial uint32) error {
	return t.context.SendRequest(t, 5, seat, serial)
}

// Resize starts an interactive resize along edges, an xdg_toplevel.resize_edge value
func (t *XdgToplevel) Resize(seat *Seat, serial uint32, edges uint32) error {
	return t.context.SendRequest(t, 6, seat, serial, edges)
}

// SetMinSize sets the minimum window size
func (t *XdgToplevel) SetMinSize(width, height int32) error {
	return t.context.SendRequest(t, 8, width, height)
}
