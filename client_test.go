package wlcsd

import (
	"bytes"
	"math"
	"testing"
)

func TestFixed(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.0, 1.0},
		{0.5, 0.5},
		{123.456, 123.456},
		{-1.5, -1.5},
		{0, 0},
		{256, 256},
	}
	for _, tt := range tests {
		if got := NewFixed(tt.in).Float64(); math.Abs(got-tt.want) > 0.01 {
			t.Errorf("NewFixed(%v).Float64() = %v", tt.in, got)
		}
	}
	if raw := int32(NewFixed(1)); raw != 256 {
		t.Errorf("1.0 encodes as %d, want 256", raw)
	}
}

func TestEventDispatcherRoutesByObjectAndOpcode(t *testing.T) {
	tests := []struct {
		name     string
		objectID uint32
		opcode   uint16
	}{
		{"low id", 2, 0},
		{"second opcode", 2, 1},
		{"extended id", 5000, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewEventDispatcher()
			var got *Event
			d.RegisterHandler(tt.objectID, tt.opcode, func(e *Event) {
				got = &Event{ProxyID: e.ProxyID, Opcode: e.Opcode, data: append([]byte(nil), e.data...)}
			})

			d.Dispatch(tt.objectID, tt.opcode+1, nil)
			if got != nil {
				t.Fatal("handler ran for another opcode")
			}
			d.Dispatch(tt.objectID, tt.opcode, []byte{1, 2, 3, 4})
			if got == nil {
				t.Fatal("handler not called")
			}
			if got.ProxyID != tt.objectID || got.Opcode != tt.opcode || !bytes.Equal(got.data, []byte{1, 2, 3, 4}) {
				t.Errorf("event = %+v", got)
			}
		})
	}
}

func TestEventDispatcherIgnoresLargeOpcodes(t *testing.T) {
	d := NewEventDispatcher()
	called := false
	d.RegisterHandler(2, 32, func(*Event) { called = true })
	d.Dispatch(2, 32, nil)
	if called {
		t.Fatal("opcode 32 should be rejected")
	}
}

func TestMarshalArg(t *testing.T) {
	d := &Display{nextID: 2}
	tests := []struct {
		name string
		arg  interface{}
		want []byte
	}{
		{"uint32", uint32(0x12345678), []byte{0x78, 0x56, 0x34, 0x12}},
		{"int32", int32(-1), []byte{0xff, 0xff, 0xff, 0xff}},
		{"fixed", NewFixed(1.0), []byte{0x00, 0x01, 0x00, 0x00}},
		{"string", "test", []byte{5, 0, 0, 0, 't', 'e', 's', 't', 0, 0, 0, 0}},
		{"empty string", "", []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{"nil object", nil, []byte{0, 0, 0, 0}},
		{"object", &Surface{BaseProxy: BaseProxy{id: 7}}, []byte{7, 0, 0, 0}},
		{"array", []byte{1, 0, 0, 0, 4}, []byte{5, 0, 0, 0, 1, 0, 0, 0, 4, 0, 0, 0}},
		{"fd", uintptr(9), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := d.marshalArg(&buf, tt.arg); err != nil {
				t.Fatalf("marshalArg: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.want) {
				t.Errorf("marshalArg(%v) = %v, want %v", tt.arg, buf.Bytes(), tt.want)
			}
		})
	}
}

func TestAllocateID(t *testing.T) {
	d := &Display{nextID: 2}
	for want := uint32(2); want < 5; want++ {
		if got := d.allocateID(); got != want {
			t.Fatalf("allocateID = %d, want %d", got, want)
		}
	}
}

func TestNewDisplayReservesIDs(t *testing.T) {
	d := newDisplay(nil)
	if d.Registry().ID() != 2 {
		t.Errorf("registry id = %d, want 2", d.Registry().ID())
	}
	if obj, ok := d.objects.Load(uint32(1)); !ok || obj != d {
		t.Error("id 1 must be the display")
	}
	if next := d.AllocateID(); next != 3 {
		t.Errorf("first free id = %d, want 3", next)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := &Registry{id: 2, globals: map[uint32]Global{
		1: {Name: 1, Interface: "wl_compositor", Version: 4},
		2: {Name: 2, Interface: "wl_seat", Version: 7},
		9: {Name: 9, Interface: "wl_seat", Version: 5},
	}}

	if n := len(r.GetGlobals()); n != 3 {
		t.Errorf("GetGlobals returned %d globals, want 3", n)
	}
	g, ok := r.FindGlobal("wl_seat")
	if !ok || g.Name != 2 || g.Version != 7 {
		t.Errorf("FindGlobal(wl_seat) = %+v, %v", g, ok)
	}
	if _, ok := r.FindGlobal("xdg_wm_base"); ok {
		t.Error("xdg_wm_base should not be found")
	}
}

func TestSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "wayland-1")
	tests := []struct {
		name string
		want string
	}{
		{"", "/run/user/1000/wayland-1"},
		{"wayland-9", "/run/user/1000/wayland-9"},
		{"/tmp/custom.sock", "/tmp/custom.sock"},
	}
	for _, tt := range tests {
		got, err := SocketPath(tt.name)
		if err != nil {
			t.Fatalf("SocketPath(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("SocketPath(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func BenchmarkEventDispatch(b *testing.B) {
	d := NewEventDispatcher()
	d.RegisterHandler(123, 1, func(*Event) {})
	data := []byte{0x01, 0x02, 0x03, 0x04}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Dispatch(123, 1, data)
	}
}

func BenchmarkEncodeRequest(b *testing.B) {
	d := &Display{}
	for i := 0; i < b.N; i++ {
		buf, err := d.encodeRequest(5, 1, int32(10), int32(20), int32(300), int32(30))
		if err != nil {
			b.Fatal(err)
		}
		bufferPool.Put(buf)
	}
}
