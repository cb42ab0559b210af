//go:build linux
// +build linux

package wlcsd

import (
	"fmt"
	"net"
	"sync"

	"golang.org/x/sys/unix"
)

var controlBufferPool = sync.Pool{
	New: func() interface{} {
		// libwayland sends at most 28 descriptors per sendmsg
		return make([]byte, unix.CmsgSpace(28*4))
	},
}

// recvmsgWithFDs reads into buf. Descriptors passed along with the bytes are
// appended to the connection's pending list and their count returned.
func (d *Display) recvmsgWithFDs(buf []byte) (n int, received int, err error) {
	uc, ok := d.conn.(*net.UnixConn)
	if !ok {
		n, err = d.conn.Read(buf)
		return n, 0, err
	}

	oob := controlBufferPool.Get().([]byte)
	defer controlBufferPool.Put(oob)

	n, oobn, _, _, err := uc.ReadMsgUnix(buf, oob)
	if err != nil {
		return 0, 0, err
	}
	if oobn == 0 {
		return n, 0, nil
	}

	scms, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return n, 0, fmt.Errorf("parse control message: %w", err)
	}
	for _, scm := range scms {
		if scm.Header.Level != unix.SOL_SOCKET || scm.Header.Type != unix.SCM_RIGHTS {
			continue
		}
		fds, err := unix.ParseUnixRights(&scm)
		if err != nil {
			return n, received, fmt.Errorf("parse unix rights: %w", err)
		}
		d.fdMu.Lock()
		d.fds = append(d.fds, fds...)
		d.fdMu.Unlock()
		received += len(fds)
	}
	return n, received, nil
}

// takeFD pops the oldest pending descriptor. Descriptors are consumed in the
// order the compositor sent them, whatever read delivered them.
func (d *Display) takeFD() (int, bool) {
	d.fdMu.Lock()
	defer d.fdMu.Unlock()
	if len(d.fds) == 0 {
		return -1, false
	}
	fd := d.fds[0]
	d.fds = d.fds[1:]
	if len(d.fds) == 0 {
		d.fds = nil
	}
	return fd, true
}

// pendingFDs reports how many received descriptors no event has claimed yet.
func (d *Display) pendingFDs() int {
	d.fdMu.Lock()
	defer d.fdMu.Unlock()
	return len(d.fds)
}

// dropFDs closes count descriptors starting at index from of the pending list.
func (d *Display) dropFDs(from, count int) {
	d.fdMu.Lock()
	defer d.fdMu.Unlock()
	if from < 0 || from >= len(d.fds) || count <= 0 {
		return
	}
	end := min(from+count, len(d.fds))
	for _, fd := range d.fds[from:end] {
		if err := unix.Close(fd); err != nil {
			d.log.Debug("wlclient: close unclaimed fd", "fd", fd, "err", err)
		}
	}
	d.fds = append(d.fds[:from], d.fds[end:]...)
	if len(d.fds) == 0 {
		d.fds = nil
	}
}

// sendmsgWithFDs sends a message potentially containing file descriptors
func (d *Display) sendmsgWithFDs(buf []byte, fds []int) error {
	d.sendMu.Lock()
	defer d.sendMu.Unlock()

	if len(fds) == 0 {
		_, err := d.conn.Write(buf)
		return err
	}

	uc, ok := d.conn.(*net.UnixConn)
	if !ok {
		return fmt.Errorf("cannot pass file descriptors over %T", d.conn)
	}
	_, _, err := uc.WriteMsgUnix(buf, unix.UnixRights(fds...), nil)
	return err
}

// Memory mapping helpers for shared memory buffers

// CreateAnonymousFile creates an anonymous file for shared memory
func CreateAnonymousFile(size int64) (fd int, err error) {
	// memfd_create first (Linux 3.17+)
	fd, err = unix.MemfdCreate("wlcsd-shm", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err == nil {
		if err = unix.Ftruncate(fd, size); err != nil {
			_ = unix.Close(fd)
			return -1, err
		}

		// Seal against resizing; the compositor maps the same pages.
		_, err = unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS,
			unix.F_SEAL_SHRINK|unix.F_SEAL_GROW|unix.F_SEAL_SEAL)
		if err != nil {
			_ = unix.Close(fd)
			return -1, err
		}

		return fd, nil
	}

	// Fallback to O_TMPFILE if available
	fd, err = unix.Open("/dev/shm", unix.O_TMPFILE|unix.O_RDWR|unix.O_CLOEXEC, 0600)
	if err == nil {
		if err = unix.Ftruncate(fd, size); err != nil {
			_ = unix.Close(fd)
			return -1, err
		}
		return fd, nil
	}

	// Final fallback: create temp file and unlink
	name := fmt.Sprintf("/dev/shm/wlcsd-%d", unix.Getpid())
	fd, err = unix.Open(name, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC, 0600)
	if err != nil {
		return -1, err
	}
	_ = unix.Unlink(name)

	if err = unix.Ftruncate(fd, size); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	return fd, nil
}

// MapMemory maps a file descriptor into memory
func MapMemory(fd int, size int) ([]byte, error) {
	return unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// MapReadOnly maps a file descriptor privately and read-only, as required for
// keymaps handed out by the compositor.
func MapReadOnly(fd int, size int) ([]byte, error) {
	return unix.Mmap(fd, 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
}

// UnmapMemory unmaps memory
func UnmapMemory(data []byte) error {
	return unix.Munmap(data)
}

// CloseFD closes a descriptor received from the compositor
func CloseFD(fd int) error {
	return unix.Close(fd)
}
