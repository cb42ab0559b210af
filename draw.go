package wlcsd

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrAllocation reports that a shared memory buffer could not be created or mapped.
var ErrAllocation = errors.New("shm allocation failed")

// DrawRect allocates a width x height ARGB8888 buffer filled with color.
//
// The backing descriptor is closed and the mapping released before DrawRect
// returns; the compositor keeps its own mapping. The buffer destroys itself when
// the compositor releases it, so each call must be attached exactly once.
func (s *Shm) DrawRect(width, height int32, color uint32) (*Buffer, error) {
	return s.draw(width, height, false, func(data []byte) {
		for i := 0; i+4 <= len(data); i += 4 {
			binary.NativeEndian.PutUint32(data[i:], color)
		}
	})
}

// DrawPixels allocates a buffer holding a copy of pixels (row-major ARGB8888).
// The buffer survives release and can be attached repeatedly; the caller owns it.
func (s *Shm) DrawPixels(width, height int32, pixels []uint32) (*Buffer, error) {
	if width > 0 && height > 0 && len(pixels) < int(width)*int(height) {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d image", ErrAllocation, len(pixels), width, height)
	}
	return s.draw(width, height, true, func(data []byte) {
		for i := 0; i+4 <= len(data); i += 4 {
			binary.NativeEndian.PutUint32(data[i:], pixels[i/4])
		}
	})
}

func (s *Shm) draw(width, height int32, persistent bool, fill func([]byte)) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrAllocation, width, height)
	}
	stride := width * 4
	size := int64(stride) * int64(height)
	if size > 1<<31-1 {
		return nil, fmt.Errorf("%w: %dx%d exceeds pool limits", ErrAllocation, width, height)
	}

	fd, err := CreateAnonymousFile(size)
	if err != nil {
		return nil, fmt.Errorf("%w: create anonymous file: %w", ErrAllocation, err)
	}

	data, err := MapMemory(fd, int(size))
	if err != nil {
		_ = CloseFD(fd)
		return nil, fmt.Errorf("%w: map memory: %w", ErrAllocation, err)
	}

	pool, err := s.CreatePool(fd, int32(size))
	if err != nil {
		_ = UnmapMemory(data)
		_ = CloseFD(fd)
		return nil, err
	}
	buffer, err := pool.CreateBuffer(0, width, height, stride, FormatARGB8888)
	_ = pool.Destroy()
	_ = CloseFD(fd)
	if err != nil {
		_ = UnmapMemory(data)
		return nil, err
	}
	buffer.persistent = persistent

	fill(data)

	if err := UnmapMemory(data); err != nil {
		s.context.display.log.Debug("wlclient: munmap failed", "err", err)
	}
	return buffer, nil
}
