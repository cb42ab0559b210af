package wlcsd

import (
	"encoding/binary"
	"sync"
)

// Context tracks the proxies living on one display connection
type Context struct {
	display *Display
	proxies sync.Map // map[uint32]Proxy
}

// Proxy interface for Wayland protocol objects
type Proxy interface {
	Object
	SetID(uint32)
	Context() *Context
	Dispatch(*Event)
}

// BaseProxy provides base implementation for protocol objects
type BaseProxy struct {
	id      uint32
	context *Context
	version uint32
}

// Event represents a Wayland protocol event
type Event struct {
	ProxyID uint32
	Opcode  uint16
	data    []byte
	offset  int

	display  *Display
	fdsTaken int
}

// fdCarrier is implemented by proxies with events that carry file descriptors.
// fdArgs reports how many descriptors the event opcode carries.
type fdCarrier interface {
	fdArgs(opcode uint16) int
}

// NewContext creates a new context from a display
func NewContext(display *Display) *Context {
	return &Context{
		display: display,
	}
}

// Display returns the connection the context belongs to
func (c *Context) Display() *Display {
	return c.display
}

// SendRequest sends a request through the context
func (c *Context) SendRequest(proxy Proxy, opcode uint32, args ...interface{}) error {
	return c.display.SendRequest(proxy.ID(), uint16(opcode), args...)
}

// SendRequestWithFDs sends a request with file descriptors through the context
func (c *Context) SendRequestWithFDs(proxy Proxy, opcode uint32, fds []int, args ...interface{}) error {
	return c.display.SendRequestWithFDs(proxy.ID(), uint16(opcode), fds, args...)
}

// Register registers a proxy object
func (c *Context) Register(proxy Proxy) {
	if proxy != nil && proxy.ID() != 0 {
		c.proxies.Store(proxy.ID(), proxy)
		c.display.objects.Store(proxy.ID(), proxy)
	}
}

// Unregister removes a proxy object. Proxies with descriptor-carrying events
// are remembered until delete_id so late events can release their descriptors.
func (c *Context) Unregister(proxy Proxy) {
	if proxy != nil {
		c.proxies.Delete(proxy.ID())
		c.display.objects.Delete(proxy.ID())
		if fc, ok := proxy.(fdCarrier); ok {
			c.display.zombies.Store(proxy.ID(), fc)
		}
	}
}

// AllocateID allocates a new object ID
func (c *Context) AllocateID() uint32 {
	return c.display.AllocateID()
}

// newChild allocates and registers a proxy created by a request on parent.
// The returned function undoes the registration when the request fails.
func (c *Context) newChild(p Proxy) func() {
	p.SetID(c.display.allocateID())
	c.Register(p)
	return func() { c.Unregister(p) }
}

// BaseProxy methods

// ID returns the proxy's object ID
func (p *BaseProxy) ID() uint32 {
	return p.id
}

// SetID sets the proxy's object ID
func (p *BaseProxy) SetID(id uint32) {
	p.id = id
}

// Context returns the proxy's context
func (p *BaseProxy) Context() *Context {
	return p.context
}

// Version returns the interface version the object was created with
func (p *BaseProxy) Version() uint32 {
	return p.version
}

func (p *BaseProxy) setVersion(v uint32) {
	p.version = v
}

// SetContext sets the proxy's context
func (p *BaseProxy) SetContext(ctx *Context) {
	p.context = ctx
}

// Dispatch default implementation (does nothing)
func (p *BaseProxy) Dispatch(event *Event) {}

// Event methods for extracting data

// Uint32 reads a uint32 from the event
func (e *Event) Uint32() uint32 {
	if e.offset+4 > len(e.data) {
		return 0
	}
	val := binary.LittleEndian.Uint32(e.data[e.offset:])
	e.offset += 4
	return val
}

// Int32 reads an int32 from the event
func (e *Event) Int32() int32 {
	return int32(e.Uint32())
}

// Fixed reads a fixed-point value from the event
func (e *Event) Fixed() Fixed {
	return Fixed(e.Int32())
}

// String reads a string from the event
func (e *Event) String() string {
	if e.offset+4 > len(e.data) {
		return ""
	}
	strlen := e.Uint32()
	if strlen == 0 || e.offset+int(strlen) > len(e.data) {
		return ""
	}
	// String includes null terminator in length
	str := string(e.data[e.offset : e.offset+int(strlen)-1])
	padding := (4 - (strlen % 4)) % 4
	e.offset += int(strlen + padding)
	return str
}

// Array reads a byte array from the event
func (e *Event) Array() []byte {
	if e.offset+4 > len(e.data) {
		return nil
	}
	arrlen := e.Uint32()
	if arrlen == 0 || e.offset+int(arrlen) > len(e.data) {
		return nil
	}
	arr := make([]byte, arrlen)
	copy(arr, e.data[e.offset:e.offset+int(arrlen)])
	padding := (4 - (arrlen % 4)) % 4
	e.offset += int(arrlen + padding)
	return arr
}

// Fd reads a file descriptor from the event. Descriptors arrive out-of-band via
// SCM_RIGHTS and take no space in the message body; -1 means none was queued.
func (e *Event) Fd() int {
	if e.display == nil {
		return -1
	}
	fd, ok := e.display.takeFD()
	if !ok {
		return -1
	}
	e.fdsTaken++
	return fd
}

// Object reads an object id from the event
func (e *Event) Object() uint32 {
	return e.Uint32()
}

// Seat capability constants
const (
	SeatCapabilityPointer  = 1
	SeatCapabilityKeyboard = 2
	SeatCapabilityTouch    = 4
)

// Seat represents a wl_seat
type Seat struct {
	BaseProxy
	capabilities uint32
	name         string
	capHandlers  []SeatCapabilitiesHandler
}

// SeatCapabilitiesHandler handles seat capabilities events
type SeatCapabilitiesHandler interface {
	HandleSeatCapabilities(seat *Seat, capabilities uint32)
}

// NewSeat creates a new seat proxy
func NewSeat(ctx *Context) *Seat {
	return &Seat{
		BaseProxy: BaseProxy{
			context: ctx,
		},
	}
}

// AddCapabilitiesHandler registers h for capabilities events
func (s *Seat) AddCapabilitiesHandler(h SeatCapabilitiesHandler) {
	s.capHandlers = append(s.capHandlers, h)
}

// GetPointer gets the pointer device
func (s *Seat) GetPointer() (*Pointer, error) {
	pointer := &Pointer{BaseProxy: BaseProxy{context: s.context, version: s.version}}
	undo := s.context.newChild(pointer)

	// get_pointer (opcode 0)
	if err := s.context.SendRequest(s, 0, pointer.id); err != nil {
		undo()
		return nil, err
	}
	return pointer, nil
}

// GetKeyboard gets the keyboard device
func (s *Seat) GetKeyboard() (*Keyboard, error) {
	keyboard := &Keyboard{BaseProxy: BaseProxy{context: s.context, version: s.version}}
	undo := s.context.newChild(keyboard)

	// get_keyboard (opcode 1)
	if err := s.context.SendRequest(s, 1, keyboard.id); err != nil {
		undo()
		return nil, err
	}
	return keyboard, nil
}

// Capabilities returns the seat capabilities
func (s *Seat) Capabilities() uint32 {
	return s.capabilities
}

// Name returns the seat name
func (s *Seat) Name() string {
	return s.name
}

// Dispatch handles events for the seat
func (s *Seat) Dispatch(event *Event) {
	switch event.Opcode {
	case 0: // capabilities
		s.capabilities = event.Uint32()
		for _, h := range s.capHandlers {
			h.HandleSeatCapabilities(s, s.capabilities)
		}
	case 1: // name
		s.name = event.String()
	}
}

// Surface represents a wl_surface
type Surface struct {
	BaseProxy
}

// Destroy deletes the surface. A sub-surface whose wl_surface is destroyed
// becomes inert and disappears with its content.
func (s *Surface) Destroy() error {
	err := s.context.SendRequest(s, 0)
	s.context.Unregister(s)
	return err
}

// Attach attaches a buffer to the surface. A nil buffer detaches.
func (s *Surface) Attach(buffer Object, x, y int32) error {
	if buffer == nil {
		return s.context.SendRequest(s, 1, nil, x, y)
	}
	return s.context.SendRequest(s, 1, buffer, x, y)
}

// Commit commits pending surface state
func (s *Surface) Commit() error {
	return s.context.SendRequest(s, 6)
}

// DamageBuffer marks a region of the buffer as damaged
func (s *Surface) DamageBuffer(x, y, width, height int32) error {
	return s.context.SendRequest(s, 9, x, y, width, height)
}

// Dispatch ignores surface enter/leave output events
func (s *Surface) Dispatch(event *Event) {}

// Compositor represents a wl_compositor
type Compositor struct {
	BaseProxy
}

// NewCompositor creates a new compositor proxy
func NewCompositor(ctx *Context) *Compositor {
	return &Compositor{
		BaseProxy: BaseProxy{
			context: ctx,
		},
	}
}

// CreateSurface creates a new surface
func (c *Compositor) CreateSurface() (*Surface, error) {
	surface := &Surface{BaseProxy: BaseProxy{context: c.context}}
	undo := c.context.newChild(surface)

	// create_surface (opcode 0)
	if err := c.context.SendRequest(c, 0, surface.id); err != nil {
		undo()
		return nil, err
	}
	return surface, nil
}
