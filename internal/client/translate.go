package client

import (
	"log/slog"

	"github.com/bnema/wlcsd"
	"github.com/bnema/wlcsd/internal/decor"
	"github.com/bnema/wlcsd/internal/window"
)

// translator receives proxy callbacks and queues them as window events. It does
// no window logic itself, so App sees every event in compositor order.
type translator struct {
	regions map[uint32]decor.Region // surface id -> decoration region
	queue   []window.Event
	log     *slog.Logger

	// onCapabilities runs when the seat reports its devices.
	onCapabilities func(seat *wlcsd.Seat, caps uint32)
}

func newTranslator(log *slog.Logger) *translator {
	return &translator{
		regions: make(map[uint32]decor.Region),
		log:     log,
	}
}

func (t *translator) push(ev window.Event) {
	t.queue = append(t.queue, ev)
}

// take returns the queued events and empties the queue.
func (t *translator) take() []window.Event {
	q := t.queue
	t.queue = nil
	return q
}

func (t *translator) HandleXdgSurfaceConfigure(serial uint32) {
	t.push(window.SurfaceConfigure{Serial: serial})
}

func (t *translator) HandleToplevelConfigure(width, height int32, states []uint32) {
	t.push(window.ToplevelConfigure{Width: width, Height: height, States: states})
}

func (t *translator) HandleToplevelClose() {
	t.push(window.CloseRequest{})
}

func (t *translator) HandlePointerEnter(serial, surface uint32, x, y wlcsd.Fixed) {
	t.push(window.PointerEnter{
		Serial: serial,
		Region: t.regions[surface],
		X:      x.Float64(),
		Y:      y.Float64(),
	})
}

func (t *translator) HandlePointerLeave(serial, surface uint32) {
	t.push(window.PointerLeave{Serial: serial, Region: t.regions[surface]})
}

func (t *translator) HandlePointerMotion(time uint32, x, y wlcsd.Fixed) {
	t.push(window.PointerMotion{Time: time, X: x.Float64(), Y: y.Float64()})
}

func (t *translator) HandlePointerButton(serial, time, button, state uint32) {
	t.push(window.PointerButton{
		Serial:  serial,
		Time:    time,
		Button:  button,
		Pressed: state == wlcsd.StatePressed,
	})
}

// HandleKeymap copies the keymap out of the shared descriptor and closes it.
func (t *translator) HandleKeymap(format uint32, fd int, size uint32) {
	ev := window.Keymap{Format: format}
	if fd < 0 {
		t.log.Warn("keymap event without descriptor")
		t.push(ev)
		return
	}
	defer func() {
		if err := wlcsd.CloseFD(fd); err != nil {
			t.log.Debug("close keymap fd", "error", err)
		}
	}()

	if format == wlcsd.KeymapFormatXKBV1 && size > 0 {
		data, err := wlcsd.MapReadOnly(fd, int(size))
		if err != nil {
			t.log.Warn("map keymap", "error", err)
		} else {
			ev.Text = append([]byte(nil), data...)
			if err := wlcsd.UnmapMemory(data); err != nil {
				t.log.Debug("unmap keymap", "error", err)
			}
		}
	}
	t.push(ev)
}

func (t *translator) HandleKey(serial, time, key, state uint32) {
	t.push(window.Key{
		Serial:  serial,
		Time:    time,
		Code:    key,
		Pressed: state == wlcsd.StatePressed,
	})
}

func (t *translator) HandleModifiers(serial, depressed, latched, locked, group uint32) {
	t.push(window.Modifiers{
		Depressed: depressed,
		Latched:   latched,
		Locked:    locked,
		Group:     group,
	})
}

func (t *translator) HandleSeatCapabilities(seat *wlcsd.Seat, caps uint32) {
	if t.onCapabilities != nil {
		t.onCapabilities(seat, caps)
	}
}
