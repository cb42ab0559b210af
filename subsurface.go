package wlcsd

// Subcompositor represents wl_subcompositor
type Subcompositor struct {
	BaseProxy
}

// NewSubcompositor creates a wl_subcompositor proxy ready to be bound
func NewSubcompositor(ctx *Context) *Subcompositor {
	return &Subcompositor{BaseProxy: BaseProxy{context: ctx}}
}

// GetSubsurface gives surface the sub-surface role with parent as its parent.
// New sub-surfaces start in synchronized mode: their state is applied on the
// parent's next commit.
func (c *Subcompositor) GetSubsurface(surface, parent *Surface) (*Subsurface, error) {
	sub := &Subsurface{BaseProxy: BaseProxy{context: c.context}, surface: surface}
	undo := c.context.newChild(sub)

	// get_subsurface (opcode 1)
	if err := c.context.SendRequest(c, 1, sub.id, surface, parent); err != nil {
		undo()
		return nil, err
	}
	return sub, nil
}

// Subsurface represents wl_subsurface
type Subsurface struct {
	BaseProxy
	surface *Surface
}

// Surface returns the wl_surface carrying the sub-surface role
func (s *Subsurface) Surface() *Surface {
	return s.surface
}

// SetPosition sets the position relative to the parent's surface origin
func (s *Subsurface) SetPosition(x, y int32) error {
	return s.context.SendRequest(s, 1, x, y)
}
