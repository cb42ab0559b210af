package wlcsd

import (
	"fmt"
)

// Wayland pixel formats
const (
	// 32-bit formats
	FormatARGB8888 = 0
	FormatXRGB8888 = 1
)

// Shm represents wl_shm
type Shm struct {
	BaseProxy
	formats []uint32
}

// NewShm creates a wl_shm proxy ready to be bound
func NewShm(ctx *Context) *Shm {
	return &Shm{BaseProxy: BaseProxy{context: ctx}}
}

// Formats returns the pixel formats announced by the compositor
func (s *Shm) Formats() []uint32 {
	return s.formats
}

// Dispatch handles wl_shm.format
func (s *Shm) Dispatch(event *Event) {
	if event.Opcode == 0 {
		s.formats = append(s.formats, event.Uint32())
	}
}

// CreatePool creates a wl_shm_pool backed by fd. The compositor receives its own
// copy of the descriptor, so the caller may close fd once this returns.
func (s *Shm) CreatePool(fd int, size int32) (*ShmPool, error) {
	pool := &ShmPool{BaseProxy: BaseProxy{context: s.context}, size: size}
	undo := s.context.newChild(pool)

	// create_pool (opcode 0): new_id, fd, size
	err := s.context.SendRequestWithFDs(s, 0, []int{fd}, pool.id, uintptr(fd), size)
	if err != nil {
		undo()
		return nil, fmt.Errorf("create shm pool: %w", err)
	}
	return pool, nil
}

// ShmPool represents wl_shm_pool
type ShmPool struct {
	BaseProxy
	size int32
}

// Size returns the pool size
func (p *ShmPool) Size() int32 {
	return p.size
}

// CreateBuffer creates a wl_buffer from a slice of the pool
func (p *ShmPool) CreateBuffer(offset, width, height, stride int32, format uint32) (*Buffer, error) {
	if int64(offset)+int64(height)*int64(stride) > int64(p.size) {
		return nil, fmt.Errorf("insufficient space in pool: need %d, have %d", height*stride, p.size-offset)
	}

	buffer := &Buffer{
		BaseProxy: BaseProxy{context: p.context},
		width:     width,
		height:    height,
	}
	undo := p.context.newChild(buffer)

	// create_buffer (opcode 0)
	if err := p.context.SendRequest(p, 0, buffer.id, offset, width, height, stride, format); err != nil {
		undo()
		return nil, fmt.Errorf("create buffer: %w", err)
	}
	return buffer, nil
}

// Destroy destroys the pool. Buffers created from it stay valid.
func (p *ShmPool) Destroy() error {
	err := p.context.SendRequest(p, 1)
	p.context.Unregister(p)
	return err
}

// Buffer represents wl_buffer
type Buffer struct {
	BaseProxy
	width      int32
	height     int32
	persistent bool
	destroyed  bool
}

// Size returns the buffer dimensions in pixels
func (b *Buffer) Size() (width, height int32) {
	return b.width, b.height
}

// Dispatch handles wl_buffer.release. Transient buffers are handed to the
// compositor for a single attach and are destroyed once it lets go of them.
func (b *Buffer) Dispatch(event *Event) {
	if event.Opcode != 0 || b.persistent {
		return
	}
	if err := b.Destroy(); err != nil {
		b.context.display.log.Debug("wlclient: buffer destroy failed", "id", b.id, "err", err)
	}
}

// Destroy destroys the buffer
func (b *Buffer) Destroy() error {
	if b.destroyed {
		return nil
	}
	b.destroyed = true
	err := b.context.SendRequest(b, 0)
	b.context.Unregister(b)
	return err
}
