package wlcsd

// Button and key states shared by wl_pointer and wl_keyboard
const (
	StateReleased = 0
	StatePressed  = 1
)

// KeymapFormatXKBV1 is the only keymap format libxkbcommon-compatible clients accept
const KeymapFormatXKBV1 = 1

// PointerListener receives wl_pointer events. Surfaces are reported by object id.
type PointerListener interface {
	HandlePointerEnter(serial, surface uint32, x, y Fixed)
	HandlePointerLeave(serial, surface uint32)
	HandlePointerMotion(time uint32, x, y Fixed)
	HandlePointerButton(serial, time, button, state uint32)
}

// Pointer represents a wl_pointer
type Pointer struct {
	BaseProxy
	listener PointerListener
}

// SetListener sets the receiver of pointer events
func (p *Pointer) SetListener(l PointerListener) {
	p.listener = l
}

// SetCursor sets the cursor image for the enter identified by serial. A nil
// surface hides the cursor.
func (p *Pointer) SetCursor(serial uint32, surface *Surface, hotspotX, hotspotY int32) error {
	if surface == nil {
		return p.context.SendRequest(p, 0, serial, nil, hotspotX, hotspotY)
	}
	return p.context.SendRequest(p, 0, serial, surface, hotspotX, hotspotY)
}

// releaseSince is the wl_seat version that added the pointer and keyboard
// release requests.
const releaseSince = 3

// Release destroys the pointer object. Before wl_seat version 3 there is no
// request for it; the object is only forgotten locally.
func (p *Pointer) Release() error {
	p.context.Unregister(p)
	if p.version < releaseSince {
		return nil
	}
	return p.context.SendRequest(p, 1)
}

// Dispatch decodes pointer events. Axis and frame events are ignored.
func (p *Pointer) Dispatch(event *Event) {
	if p.listener == nil {
		return
	}
	switch event.Opcode {
	case 0: // enter
		serial := event.Uint32()
		surface := event.Object()
		x := event.Fixed()
		y := event.Fixed()
		p.listener.HandlePointerEnter(serial, surface, x, y)
	case 1: // leave
		serial := event.Uint32()
		surface := event.Object()
		p.listener.HandlePointerLeave(serial, surface)
	case 2: // motion
		time := event.Uint32()
		x := event.Fixed()
		y := event.Fixed()
		p.listener.HandlePointerMotion(time, x, y)
	case 3: // button
		serial := event.Uint32()
		time := event.Uint32()
		button := event.Uint32()
		state := event.Uint32()
		p.listener.HandlePointerButton(serial, time, button, state)
	}
}

// KeyboardListener receives wl_keyboard events. The keymap descriptor belongs to
// the listener, which must close it.
type KeyboardListener interface {
	HandleKeymap(format uint32, fd int, size uint32)
	HandleKey(serial, time, key, state uint32)
	HandleModifiers(serial, depressed, latched, locked, group uint32)
}

// Keyboard represents a wl_keyboard
type Keyboard struct {
	BaseProxy
	listener KeyboardListener
}

// SetListener sets the receiver of keyboard events
func (k *Keyboard) SetListener(l KeyboardListener) {
	k.listener = l
}

// Release destroys the keyboard object, locally only before wl_seat version 3.
func (k *Keyboard) Release() error {
	k.context.Unregister(k)
	if k.version < releaseSince {
		return nil
	}
	return k.context.SendRequest(k, 0)
}

// keymap (opcode 0) carries the keymap descriptor
func (k *Keyboard) fdArgs(opcode uint16) int {
	if opcode == 0 {
		return 1
	}
	return 0
}

// Dispatch decodes keyboard events. Enter, leave and repeat info are ignored.
func (k *Keyboard) Dispatch(event *Event) {
	switch event.Opcode {
	case 0: // keymap
		format := event.Uint32()
		fd := event.Fd()
		size := event.Uint32()
		if k.listener == nil {
			if fd >= 0 {
				_ = CloseFD(fd)
			}
			return
		}
		k.listener.HandleKeymap(format, fd, size)
	case 3: // key
		if k.listener == nil {
			return
		}
		serial := event.Uint32()
		time := event.Uint32()
		key := event.Uint32()
		state := event.Uint32()
		k.listener.HandleKey(serial, time, key, state)
	case 4: // modifiers
		if k.listener == nil {
			return
		}
		serial := event.Uint32()
		depressed := event.Uint32()
		latched := event.Uint32()
		locked := event.Uint32()
		group := event.Uint32()
		k.listener.HandleModifiers(serial, depressed, latched, locked, group)
	}
}
