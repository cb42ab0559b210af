package decor

import "fmt"

// Edge is a resize edge. Values match xdg_toplevel.resize_edge.
type Edge uint32

const (
	EdgeNone        Edge = 0
	EdgeTop         Edge = 1
	EdgeBottom      Edge = 2
	EdgeLeft        Edge = 4
	EdgeTopLeft     Edge = 5
	EdgeBottomLeft  Edge = 6
	EdgeRight       Edge = 8
	EdgeTopRight    Edge = 9
	EdgeBottomRight Edge = 10
)

func (e Edge) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	case EdgeLeft:
		return "left"
	case EdgeTopLeft:
		return "top-left"
	case EdgeBottomLeft:
		return "bottom-left"
	case EdgeRight:
		return "right"
	case EdgeTopRight:
		return "top-right"
	case EdgeBottomRight:
		return "bottom-right"
	default:
		return fmt.Sprintf("edge(%d)", uint32(e))
	}
}

// ActionKind is what a button press on the decorations does.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionMove
	ActionClose
	ActionResize
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionMove:
		return "move"
	case ActionClose:
		return "close"
	case ActionResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Action is the single interactive request a press resolves to.
type Action struct {
	Kind ActionKind
	Edge Edge // only for ActionResize
}

func (a Action) String() string {
	if a.Kind == ActionResize {
		return "resize(" + a.Edge.String() + ")"
	}
	return a.Kind.String()
}

type rule struct {
	region Region
	action Action
}

// priority is evaluated top to bottom and the first hovered region wins. The order
// follows the logical z-order of the decorations: titlebar, close button, corners,
// then edges.
var priority = []rule{
	{Titlebar, Action{Kind: ActionMove}},
	{CloseButton, Action{Kind: ActionClose}},
	{CornerTopLeft, Action{Kind: ActionResize, Edge: EdgeTopLeft}},
	{CornerTopRight, Action{Kind: ActionResize, Edge: EdgeTopRight}},
	{CornerBottomLeft, Action{Kind: ActionResize, Edge: EdgeBottomLeft}},
	{CornerBottomRight, Action{Kind: ActionResize, Edge: EdgeBottomRight}},
	{BorderTop, Action{Kind: ActionResize, Edge: EdgeTop}},
	{BorderBottom, Action{Kind: ActionResize, Edge: EdgeBottom}},
	{BorderLeft, Action{Kind: ActionResize, Edge: EdgeLeft}},
	{BorderRight, Action{Kind: ActionResize, Edge: EdgeRight}},
}

// Resolve picks exactly one action for a press with the given hovered regions.
func Resolve(m Mask) Action {
	for _, r := range priority {
		if m.Has(r.region) {
			return r.action
		}
	}
	return Action{Kind: ActionNone}
}
