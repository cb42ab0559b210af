package window

// Phase is the window lifecycle state.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseConfigured
	PhaseClosing
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseConfigured:
		return "configured"
	case PhaseClosing:
		return "closing"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Window holds the negotiated size and lifecycle phase of the toplevel. Sizes
// include the decorations.
type Window struct {
	width, height       int32
	minWidth, minHeight int32

	pendingWidth, pendingHeight int32
	hasPending                  bool

	phase Phase
}

// New returns a window in PhaseInitializing with the given start size. The start
// size is raised to the minimum if needed.
func New(width, height, minWidth, minHeight int32) *Window {
	return &Window{
		width:     max(width, minWidth),
		height:    max(height, minHeight),
		minWidth:  minWidth,
		minHeight: minHeight,
	}
}

func (w *Window) Size() (width, height int32) {
	return w.width, w.height
}

func (w *Window) MinSize() (width, height int32) {
	return w.minWidth, w.minHeight
}

func (w *Window) Phase() Phase {
	return w.phase
}

// Propose records a size from xdg_toplevel.configure. A zero dimension is
// ignored and reported as false; otherwise the size is clamped to the minimum
// and replaces any earlier pending size.
func (w *Window) Propose(width, height int32) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	w.pendingWidth = max(width, w.minWidth)
	w.pendingHeight = max(height, w.minHeight)
	w.hasPending = true
	return true
}

// Apply commits the pending size on xdg_surface.configure and reports whether
// the size changed. The first call moves the window to PhaseConfigured.
func (w *Window) Apply() (changed bool) {
	if w.hasPending {
		changed = w.pendingWidth != w.width || w.pendingHeight != w.height
		w.width, w.height = w.pendingWidth, w.pendingHeight
		w.hasPending = false
	}
	if w.phase == PhaseInitializing {
		w.phase = PhaseConfigured
	}
	return changed
}

// RequestClose moves the window to PhaseClosing. It cannot be undone.
func (w *Window) RequestClose() {
	if w.phase < PhaseClosing {
		w.phase = PhaseClosing
	}
}

// Closed reports whether a close was requested
func (w *Window) Closed() bool {
	return w.phase >= PhaseClosing
}

// Terminate marks the end of the event loop.
func (w *Window) Terminate() {
	w.phase = PhaseTerminated
}
