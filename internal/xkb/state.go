package xkb

// Real modifier bits in the order xkbcomp assigns them.
const (
	ModShift uint32 = 1 << iota
	ModLock
	ModControl
	ModMod1
	ModMod2
	ModMod3
	ModMod4
	ModMod5
)

// State is the last wl_keyboard.modifiers update.
type State struct {
	Depressed uint32
	Latched   uint32
	Locked    uint32
	Group     uint32
}

// Update replaces the state
func (s *State) Update(depressed, latched, locked, group uint32) {
	s.Depressed = depressed
	s.Latched = latched
	s.Locked = locked
	s.Group = group
}

// Effective returns the active modifier mask
func (s State) Effective() uint32 {
	return s.Depressed | s.Latched | s.Locked
}

// Level returns the shift level: 1 while Shift is active, else 0.
func (s State) Level() int {
	if s.Effective()&ModShift != 0 {
		return 1
	}
	return 0
}
