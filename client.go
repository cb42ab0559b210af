// Package wlcsd is a small Wayland client that draws its own window decorations.
//
// The root package speaks the Wayland wire protocol directly over the compositor
// socket: it owns the display connection, object ids, request marshalling, event
// decoding and the protocol proxies the client needs (compositor, sub-compositor,
// shm, seat, pointer, keyboard and xdg-shell). It also holds the pixel buffer
// producer used to paint decoration pieces.
package wlcsd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// Pre-allocated buffer pool for request marshalling
var bufferPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

// Fixed represents a 24.8 fixed-point number
type Fixed int32

// Float64 converts Fixed to float64
func (f Fixed) Float64() float64 {
	return float64(f) / 256.0
}

// NewFixed creates a Fixed from float64
func NewFixed(v float64) Fixed {
	return Fixed(v * 256.0)
}

// Object represents a Wayland object
type Object interface {
	ID() uint32
}

// Display represents a connection to the Wayland display
type Display struct {
	conn      net.Conn
	objects   sync.Map // map[uint32]Object
	nextID    uint32
	sendMu    sync.Mutex
	recvMu    sync.Mutex
	listeners sync.Map // map[uint32]*sync.Map of opcode -> *[]func([]byte)

	// descriptors received but not yet claimed by an event, oldest first
	fdMu sync.Mutex
	fds  []int
	// released proxies that may still receive events carrying descriptors,
	// kept until the compositor confirms the id with delete_id
	zombies sync.Map // map[uint32]fdCarrier

	dispatcher *EventDispatcher
	log        *slog.Logger

	registry *Registry
	context  *Context

	lastError     error
	lastErrorCode uint32
	lastErrorObj  uint32

	headerBuf [8]byte

	// Pre-allocated buffer for event bodies
	eventBodyBuf [4096]byte
}

// Registry represents the global registry
type Registry struct {
	id      uint32
	display *Display
	globals map[uint32]Global
	mu      sync.RWMutex
}

// callbackObject represents a wl_callback object
type callbackObject struct {
	BaseProxy
	display *Display
}

func (c *callbackObject) ID() uint32 {
	return c.id
}

// Dispatch handles callback events (opcode 0 = done)
func (c *callbackObject) Dispatch(event *Event) {
	if event.Opcode != 0 {
		return
	}
	listeners, ok := c.display.listeners.Load(c.id)
	if !ok {
		c.display.log.Debug("wlclient: no listeners for callback", "id", c.id)
		return
	}
	handlers, ok := listeners.(*sync.Map).Load(uint16(0))
	if !ok {
		return
	}
	for _, handler := range *handlers.(*[]func([]byte)) {
		if handler != nil {
			handler(event.data)
		}
	}
}

// Global represents a global object
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// SocketPath resolves the compositor socket the way libwayland does: an absolute
// name is used as is, a relative one lives in XDG_RUNTIME_DIR, and an empty name
// falls back to WAYLAND_DISPLAY and then wayland-0.
func SocketPath(name string) (string, error) {
	if name == "" {
		name = os.Getenv("WAYLAND_DISPLAY")
		if name == "" {
			name = "wayland-0"
		}
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	runDir := os.Getenv("XDG_RUNTIME_DIR")
	if runDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR not set")
	}
	return filepath.Join(runDir, name), nil
}

// Connect connects to the Wayland display
func Connect(socketName string) (*Display, error) {
	socketPath, err := SocketPath(socketName)
	if err != nil {
		return nil, err
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Wayland: %w", err)
	}

	d := newDisplay(conn)

	if err := d.getRegistry(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to get registry: %w", err)
	}

	// The caller does the initial roundtrip after setting up handlers.
	return d, nil
}

func newDisplay(conn net.Conn) *Display {
	d := &Display{
		conn:       conn,
		nextID:     2, // 1 is reserved for wl_display
		dispatcher: NewEventDispatcher(),
		log:        slog.Default(),
	}
	d.context = NewContext(d)
	d.objects.Store(uint32(1), d)

	d.registry = &Registry{
		id:      d.allocateID(),
		display: d,
		globals: make(map[uint32]Global),
	}
	d.objects.Store(d.registry.id, d.registry)
	return d
}

// SetLogger replaces the logger used for protocol tracing.
func (d *Display) SetLogger(l *slog.Logger) {
	if l != nil {
		d.log = l
	}
}

// Close closes the display connection and every descriptor still pending.
func (d *Display) Close() error {
	err := d.conn.Close()
	d.fdMu.Lock()
	for _, fd := range d.fds {
		_ = CloseFD(fd)
	}
	d.fds = nil
	d.fdMu.Unlock()
	return err
}

// ID returns the display's object ID (always 1)
func (d *Display) ID() uint32 {
	return 1
}

// RegisterEventHandler registers an event handler for a non-proxy object
func (d *Display) RegisterEventHandler(objectID uint32, opcode uint16, handler EventHandler) {
	d.dispatcher.RegisterHandler(objectID, opcode, handler)
}

func (d *Display) allocateID() uint32 {
	return atomic.AddUint32(&d.nextID, 1) - 1
}

// AllocateID allocates a new object ID
func (d *Display) AllocateID() uint32 {
	return d.allocateID()
}

// SendRequest sends a request to the compositor
func (d *Display) SendRequest(objectID uint32, opcode uint16, args ...interface{}) error {
	return d.SendRequestWithFDs(objectID, opcode, nil, args...)
}

// SendRequestWithFDs sends a request with file descriptors
func (d *Display) SendRequestWithFDs(objectID uint32, opcode uint16, fds []int, args ...interface{}) error {
	data, err := d.encodeRequest(objectID, opcode, args...)
	if err != nil {
		return err
	}
	defer bufferPool.Put(data)
	return d.sendmsgWithFDs(data.Bytes(), fds)
}

// encodeRequest marshals a full message into a pooled buffer. The caller returns
// the buffer to bufferPool.
func (d *Display) encodeRequest(objectID uint32, opcode uint16, args ...interface{}) (*bytes.Buffer, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	var header [8]byte
	_, _ = buf.Write(header[:])

	for _, arg := range args {
		if err := d.marshalArg(buf, arg); err != nil {
			bufferPool.Put(buf)
			return nil, fmt.Errorf("failed to marshal argument: %w", err)
		}
	}

	bufLen := buf.Len()
	if bufLen > 0xFFFF {
		bufferPool.Put(buf)
		return nil, fmt.Errorf("message too large: %d bytes", bufLen)
	}
	size := uint32(bufLen)
	data := buf.Bytes()
	binary.LittleEndian.PutUint32(data[0:4], objectID)
	// Upper 16 bits = size, lower 16 bits = opcode
	binary.LittleEndian.PutUint32(data[4:8], (size<<16)|uint32(opcode))
	return buf, nil
}

// marshalArg marshals a single argument
func (d *Display) marshalArg(buf *bytes.Buffer, arg interface{}) error {
	switch v := arg.(type) {
	case uint32:
		return binary.Write(buf, binary.LittleEndian, v)
	case int32:
		return binary.Write(buf, binary.LittleEndian, v)
	case Fixed:
		return binary.Write(buf, binary.LittleEndian, int32(v))
	case string:
		// String format: length (including null) + string + null + padding
		strlen := len(v) + 1
		if err := binary.Write(buf, binary.LittleEndian, uint32(strlen)); err != nil {
			return err
		}
		_, _ = buf.WriteString(v)
		_ = buf.WriteByte(0)
		padding := (4 - (strlen % 4)) % 4
		for i := 0; i < padding; i++ {
			_ = buf.WriteByte(0)
		}
	case []byte:
		arrlen := len(v)
		if err := binary.Write(buf, binary.LittleEndian, uint32(arrlen)); err != nil {
			return err
		}
		_, _ = buf.Write(v)
		padding := (4 - (arrlen % 4)) % 4
		for i := 0; i < padding; i++ {
			_ = buf.WriteByte(0)
		}
	case Object:
		return binary.Write(buf, binary.LittleEndian, v.ID())
	case nil:
		return binary.Write(buf, binary.LittleEndian, uint32(0))
	case uintptr:
		// File descriptors travel only as SCM_RIGHTS ancillary data.
		return nil
	default:
		return fmt.Errorf("unsupported argument type: %T", arg)
	}
	return nil
}

// Dispatch reads and dispatches a single event. Any error returned here means the
// connection is unusable.
func (d *Display) Dispatch() error {
	d.recvMu.Lock()
	defer d.recvMu.Unlock()

	base := d.pendingFDs()
	arrived, err := d.readFull(d.headerBuf[:])
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	objectID := binary.LittleEndian.Uint32(d.headerBuf[0:4])
	sizeOpcode := binary.LittleEndian.Uint32(d.headerBuf[4:8])
	size := sizeOpcode >> 16
	opcode := uint16(sizeOpcode & 0xffff)
	if size < 8 {
		return fmt.Errorf("invalid message size %d for object %d", size, objectID)
	}

	var body []byte
	if size > 8 {
		bodySize := size - 8
		if bodySize <= uint32(len(d.eventBodyBuf)) {
			body = d.eventBodyBuf[:bodySize]
		} else {
			body = make([]byte, bodySize)
		}
		n, err := d.readFull(body)
		arrived += n
		if err != nil {
			return fmt.Errorf("failed to read body: %w", err)
		}
	}

	if objectID == 1 {
		return d.handleDisplayEvent(opcode, body)
	}

	obj, ok := d.objects.Load(objectID)
	if !ok {
		d.discard(objectID, opcode, base, arrived)
		return nil
	}

	if proxy, ok := obj.(Proxy); ok && proxy != nil {
		event := &Event{
			ProxyID: objectID,
			Opcode:  opcode,
			data:    body,
			display: d,
		}
		proxy.Dispatch(event)
		if c, ok := proxy.(fdCarrier); ok {
			// descriptors the handler left unclaimed
			d.dropFDs(0, c.fdArgs(opcode)-event.fdsTaken)
		}
		return nil
	}

	d.dispatcher.Dispatch(objectID, opcode, body)
	return nil
}

// readFull fills buf, keeping any descriptors that arrive on the way.
func (d *Display) readFull(buf []byte) (received int, err error) {
	for n := 0; n < len(buf); {
		m, r, err := d.recvmsgWithFDs(buf[n:])
		received += r
		if err != nil {
			return received, err
		}
		if m == 0 {
			return received, io.EOF
		}
		n += m
	}
	return received, nil
}

// discard drops an event for an object that is not registered. Events for
// released objects are expected until delete_id; their descriptors are closed
// according to the event signature. For ids never seen, the descriptors that
// arrived with the message itself are closed.
func (d *Display) discard(objectID uint32, opcode uint16, base, arrived int) {
	d.log.Debug("wlclient: event for unknown object", "id", objectID, "opcode", opcode)
	if z, ok := d.zombies.Load(objectID); ok {
		d.dropFDs(0, z.(fdCarrier).fdArgs(opcode))
		return
	}
	d.dropFDs(base, arrived)
}

// handleDisplayEvent handles events on the display object
func (d *Display) handleDisplayEvent(opcode uint16, data []byte) error {
	switch opcode {
	case 0: // error
		if len(data) < 8 {
			return errors.New("invalid error event")
		}
		e := &Event{ProxyID: 1, data: data}
		objectID := e.Uint32()
		code := e.Uint32()
		message := e.String()

		d.lastError = fmt.Errorf("protocol error: object %d, code %d: %s", objectID, code, message)
		d.lastErrorCode = code
		d.lastErrorObj = objectID
		return d.lastError

	case 1: // delete_id
		if len(data) < 4 {
			return errors.New("invalid delete_id event")
		}
		id := binary.LittleEndian.Uint32(data[0:4])
		d.objects.Delete(id)
		d.context.proxies.Delete(id)
		d.zombies.Delete(id)
	}

	return nil
}

// LastError returns the last protocol error reported by the compositor.
func (d *Display) LastError() error {
	return d.lastError
}

// Roundtrip performs a synchronous roundtrip to the compositor
func (d *Display) Roundtrip() error {
	callbackID := d.allocateID()
	done := make(chan struct{}, 1)

	d.AddListener(callbackID, 0, func(_ []byte) {
		d.objects.Delete(callbackID)
		d.listeners.Delete(callbackID)
		done <- struct{}{}
	})

	d.objects.Store(callbackID, &callbackObject{
		BaseProxy: BaseProxy{
			context: d.Context(),
			id:      callbackID,
		},
		display: d,
	})

	// wl_display.sync (opcode 0)
	if err := d.SendRequest(1, 0, callbackID); err != nil {
		return err
	}

	const maxIterations = 10000
	for i := 0; i < maxIterations; i++ {
		if err := d.Dispatch(); err != nil {
			return err
		}
		select {
		case <-done:
			d.log.Debug("wlclient: roundtrip complete", "callback", callbackID)
			return nil
		default:
		}
	}

	return fmt.Errorf("roundtrip failed: max iterations reached")
}

// AddListener adds an event listener for an object
func (d *Display) AddListener(objectID uint32, opcode uint16, handler func([]byte)) {
	listeners, _ := d.listeners.LoadOrStore(objectID, &sync.Map{})
	opcodeMap := listeners.(*sync.Map)

	handlers, _ := opcodeMap.LoadOrStore(opcode, &[]func([]byte){})
	handlerSlice := handlers.(*[]func([]byte))
	*handlerSlice = append(*handlerSlice, handler)
}

func (d *Display) getRegistry() error {
	d.RegisterEventHandler(d.registry.id, 0, d.registry.handleGlobal)
	d.RegisterEventHandler(d.registry.id, 1, d.registry.handleGlobalRemove)

	// wl_display.get_registry (opcode 1)
	return d.SendRequest(1, 1, d.registry.id)
}

// Registry returns the global registry
func (d *Display) Registry() *Registry {
	return d.registry
}

// Context returns the proxy context of the connection
func (d *Display) Context() *Context {
	return d.context
}

// ID returns the registry's object ID
func (r *Registry) ID() uint32 {
	return r.id
}

func (r *Registry) handleGlobal(e *Event) {
	name := e.Uint32()
	iface := e.String()
	version := e.Uint32()
	if iface == "" {
		return
	}

	r.display.log.Debug("wlclient: global announced", "interface", iface, "version", version, "name", name)

	r.mu.Lock()
	r.globals[name] = Global{
		Name:      name,
		Interface: iface,
		Version:   version,
	}
	r.mu.Unlock()
}

func (r *Registry) handleGlobalRemove(e *Event) {
	name := e.Uint32()

	r.mu.Lock()
	delete(r.globals, name)
	r.mu.Unlock()
}

// Bind binds a global to proxy. A zero proxy id is allocated here.
func (r *Registry) Bind(name uint32, iface string, version uint32, proxy Proxy) error {
	if proxy.ID() == 0 {
		proxy.SetID(r.display.allocateID())
	}
	if proxy.Context() == nil {
		setter, ok := proxy.(interface{ SetContext(*Context) })
		if !ok {
			return fmt.Errorf("proxy doesn't have context and can't set it")
		}
		setter.SetContext(r.display.Context())
	}

	if v, ok := proxy.(interface{ setVersion(uint32) }); ok {
		v.setVersion(version)
	}
	proxy.Context().Register(proxy)

	if err := r.display.SendRequest(r.id, 0, name, iface, version, proxy.ID()); err != nil {
		proxy.Context().Unregister(proxy)
		return err
	}
	r.display.log.Debug("wlclient: bound global", "interface", iface, "version", version, "id", proxy.ID())
	return nil
}

// GetGlobals returns all announced globals
func (r *Registry) GetGlobals() map[uint32]Global {
	r.mu.RLock()
	defer r.mu.RUnlock()

	globals := make(map[uint32]Global, len(r.globals))
	for k, v := range r.globals {
		globals[k] = v
	}
	return globals
}

// FindGlobal returns the first announced global implementing iface. Several
// seats or outputs may exist; the lowest name wins.
func (r *Registry) FindGlobal(iface string) (Global, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found Global
	ok := false
	for _, g := range r.globals {
		if g.Interface == iface && (!ok || g.Name < found.Name) {
			found, ok = g, true
		}
	}
	return found, ok
}
