package decor

import (
	"math/rand"
	"testing"
)

func TestComputeNoOverlapWithContent(t *testing.T) {
	m := DefaultMetrics()
	for w := int32(300); w <= 1400; w += 37 {
		for h := int32(300); h <= 1100; h += 41 {
			f := Compute(m, w, h)
			for _, p := range f.Pieces {
				if p.Rect.Overlaps(f.Content) {
					t.Fatalf("%dx%d: %s %+v overlaps content %+v", w, h, p.Region, p.Rect, f.Content)
				}
			}
		}
	}
}

func TestComputeBordersDoNotOverlap(t *testing.T) {
	f := Compute(DefaultMetrics(), 800, 600)
	borders := []Region{
		BorderTop, BorderBottom, BorderLeft, BorderRight,
		CornerTopLeft, CornerTopRight, CornerBottomLeft, CornerBottomRight,
	}
	for i, a := range borders {
		ra, _ := f.Rect(a)
		for _, b := range borders[i+1:] {
			rb, _ := f.Rect(b)
			if ra.Overlaps(rb) {
				t.Errorf("%s %+v overlaps %s %+v", a, ra, b, rb)
			}
		}
	}
}

func TestComputeCloseButtonInsideTitlebar(t *testing.T) {
	for _, w := range []int32{300, 640, 1280} {
		f := Compute(DefaultMetrics(), w, 480)
		tb, _ := f.Rect(Titlebar)
		cb, _ := f.Rect(CloseButton)
		if cb.X < tb.X || cb.X+cb.Width > tb.X+tb.Width || cb.Y < tb.Y || cb.Y+cb.Height > tb.Y+tb.Height {
			t.Errorf("width %d: close button %+v not inside titlebar %+v", w, cb, tb)
		}
	}
}

func TestCompute640x480(t *testing.T) {
	f := Compute(DefaultMetrics(), 640, 480)

	tests := []struct {
		region Region
		want   Rect
	}{
		{Titlebar, Rect{X: 0, Y: -30, Width: 630, Height: 30}},
		{CloseButton, Rect{X: 605, Y: -25, Width: 20, Height: 20}},
		{BorderTop, Rect{X: 0, Y: -35, Width: 630, Height: 5}},
		{BorderBottom, Rect{X: 0, Y: 440, Width: 630, Height: 5}},
		{BorderLeft, Rect{X: -5, Y: -30, Width: 5, Height: 470}},
		{BorderRight, Rect{X: 630, Y: -30, Width: 5, Height: 470}},
		{CornerTopLeft, Rect{X: -5, Y: -35, Width: 5, Height: 5}},
		{CornerTopRight, Rect{X: 630, Y: -35, Width: 5, Height: 5}},
		{CornerBottomLeft, Rect{X: -5, Y: 440, Width: 5, Height: 5}},
		{CornerBottomRight, Rect{X: 630, Y: 440, Width: 5, Height: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.region.String(), func(t *testing.T) {
			got, ok := f.Rect(tt.region)
			if !ok {
				t.Fatalf("missing piece")
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}

	if want := (Rect{Width: 630, Height: 440}); f.Content != want {
		t.Errorf("content = %+v, want %+v", f.Content, want)
	}
}

func TestComputeIdempotent(t *testing.T) {
	a := Compute(DefaultMetrics(), 1024, 768)
	b := Compute(DefaultMetrics(), 1024, 768)
	if a.Content != b.Content || len(a.Pieces) != len(b.Pieces) {
		t.Fatalf("frames differ: %+v vs %+v", a, b)
	}
	for i := range a.Pieces {
		if a.Pieces[i] != b.Pieces[i] {
			t.Errorf("piece %d: %+v vs %+v", i, a.Pieces[i], b.Pieces[i])
		}
	}
}

func TestComputePieceOrder(t *testing.T) {
	f := Compute(DefaultMetrics(), 500, 400)
	if len(f.Pieces) != len(Regions) {
		t.Fatalf("got %d pieces, want %d", len(f.Pieces), len(Regions))
	}
	for i, p := range f.Pieces {
		if p.Region != Regions[i] {
			t.Errorf("piece %d is %s, want %s", i, p.Region, Regions[i])
		}
	}
}

func TestMinSizeKeepsPiecesVisible(t *testing.T) {
	m := DefaultMetrics()
	w, h := m.MinSize()
	f := Compute(m, w, h)
	if f.Content.Empty() {
		t.Errorf("content empty at %dx%d", w, h)
	}
	for _, p := range f.Pieces {
		if p.Rect.Empty() {
			t.Errorf("%s empty at %dx%d", p.Region, w, h)
		}
	}
}

func TestRegionsAreDistinctBits(t *testing.T) {
	var seen Mask
	for _, r := range Regions {
		if r == 0 || r&(r-1) != 0 {
			t.Errorf("%s is not a single bit", r)
		}
		if seen.Has(r) {
			t.Errorf("%s repeated", r)
		}
		seen = seen.With(r)
	}
}

func TestTrackerMaskMatchesUnmatchedEnters(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		var tr Tracker
		open := map[Region]bool{}
		for step := 0; step < 30; step++ {
			r := Regions[rng.Intn(len(Regions))]
			if rng.Intn(2) == 0 {
				tr.Enter(r)
				open[r] = true
			} else {
				tr.Leave(r)
				delete(open, r)
			}
		}
		var want Mask
		for r := range open {
			want = want.With(r)
		}
		if tr.Mask() != want {
			t.Fatalf("round %d: mask %s, want %s", round, tr.Mask(), want)
		}
	}
}

func TestTrackerLeaveUnsetIsNoop(t *testing.T) {
	var tr Tracker
	tr.Enter(Titlebar)
	tr.Leave(CloseButton)
	if tr.Mask() != Mask(Titlebar) {
		t.Errorf("mask = %s, want {titlebar}", tr.Mask())
	}
}

func TestTrackerLeaveCloseButtonOnlyClearsItself(t *testing.T) {
	var tr Tracker
	tr.Enter(Titlebar)
	tr.Enter(CloseButton)
	tr.Leave(CloseButton)
	if !tr.Mask().Has(Titlebar) || tr.Mask().Has(CloseButton) {
		t.Errorf("mask = %s, want {titlebar}", tr.Mask())
	}
}

func TestTrackerEnterCursor(t *testing.T) {
	tests := []struct {
		region Region
		want   string
	}{
		{Titlebar, "left_ptr"},
		{CloseButton, "pointer"},
		{BorderTop, "n-resize"},
		{BorderBottom, "s-resize"},
		{BorderLeft, "w-resize"},
		{BorderRight, "e-resize"},
		{CornerTopLeft, "nw-resize"},
		{CornerTopRight, "ne-resize"},
		{CornerBottomLeft, "sw-resize"},
		{CornerBottomRight, "se-resize"},
		{0, "left_ptr"},
	}
	for _, tt := range tests {
		t.Run(tt.region.String(), func(t *testing.T) {
			var tr Tracker
			if got := tr.Enter(tt.region).Name(); got != tt.want {
				t.Errorf("cursor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrackerEnterContentSetsNoBit(t *testing.T) {
	var tr Tracker
	tr.Enter(0)
	if !tr.Mask().Empty() {
		t.Errorf("mask = %s, want empty", tr.Mask())
	}
}

func TestTrackerReset(t *testing.T) {
	var tr Tracker
	tr.Enter(BorderLeft)
	tr.Enter(CornerTopLeft)
	tr.Reset()
	if !tr.Mask().Empty() {
		t.Errorf("mask = %s after reset", tr.Mask())
	}
	if got := tr.Press(); got.Kind != ActionNone {
		t.Errorf("press after reset = %s, want none", got)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		mask Mask
		want Action
	}{
		{"empty", 0, Action{Kind: ActionNone}},
		{"titlebar", Mask(Titlebar), Action{Kind: ActionMove}},
		{"close", Mask(CloseButton), Action{Kind: ActionClose}},
		{"titlebar beats corner", Mask(Titlebar | CornerTopLeft), Action{Kind: ActionMove}},
		{"titlebar beats close", Mask(Titlebar | CloseButton), Action{Kind: ActionMove}},
		{"close beats border", Mask(CloseButton | BorderTop), Action{Kind: ActionClose}},
		{"corner beats edge", Mask(CornerBottomRight | BorderRight), Action{Kind: ActionResize, Edge: EdgeBottomRight}},
		{"top-left", Mask(CornerTopLeft), Action{Kind: ActionResize, Edge: EdgeTopLeft}},
		{"top-right", Mask(CornerTopRight), Action{Kind: ActionResize, Edge: EdgeTopRight}},
		{"bottom-left", Mask(CornerBottomLeft), Action{Kind: ActionResize, Edge: EdgeBottomLeft}},
		{"top", Mask(BorderTop), Action{Kind: ActionResize, Edge: EdgeTop}},
		{"bottom", Mask(BorderBottom), Action{Kind: ActionResize, Edge: EdgeBottom}},
		{"left", Mask(BorderLeft), Action{Kind: ActionResize, Edge: EdgeLeft}},
		{"right", Mask(BorderRight), Action{Kind: ActionResize, Edge: EdgeRight}},
		{"top beats left", Mask(BorderTop | BorderLeft), Action{Kind: ActionResize, Edge: EdgeTop}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.mask); got != tt.want {
				t.Errorf("Resolve(%s) = %s, want %s", tt.mask, got, tt.want)
			}
		})
	}
}

func TestPriorityCoversEveryRegion(t *testing.T) {
	var covered Mask
	for _, r := range priority {
		covered = covered.With(r.region)
	}
	for _, r := range Regions {
		if !covered.Has(r) {
			t.Errorf("%s has no action", r)
		}
	}
}

func TestEdgeValues(t *testing.T) {
	if EdgeTopLeft != EdgeTop|EdgeLeft || EdgeBottomRight != EdgeBottom|EdgeRight {
		t.Errorf("corner edges are not unions of their sides")
	}
}
