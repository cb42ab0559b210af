package decor

// Tracker records which decoration regions the pointer is over.
//
// Enter and leave arrive per surface, so each region is tracked on its own bit.
// A region is cleared only by its own leave or by Reset.
type Tracker struct {
	mask Mask
}

// Enter marks r as hovered and returns the cursor to show. A zero region stands
// for a surface that is not a decoration piece; it changes nothing in the mask
// and gets the default arrow.
func (t *Tracker) Enter(r Region) CursorShape {
	if r != 0 {
		t.mask = t.mask.With(r)
	}
	return ShapeFor(r)
}

// Leave clears r. Leaving a region that is not set is a no-op. The cursor is not
// re-resolved: the next enter does that.
func (t *Tracker) Leave(r Region) {
	t.mask = t.mask.Without(r)
}

// Reset forgets every hovered region. Called when a resize moves the pieces so
// no decision is made against a rectangle that is no longer there.
func (t *Tracker) Reset() {
	t.mask = 0
}

// Mask returns the hovered regions
func (t *Tracker) Mask() Mask {
	return t.mask
}

// Press resolves the action for a button press at the current position.
func (t *Tracker) Press() Action {
	return Resolve(t.mask)
}
