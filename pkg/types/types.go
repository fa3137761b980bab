package types

// Side identifies one half of a split frame.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Sides returns both halves in output order.
func Sides() []Side {
	return []Side{SideLeft, SideRight}
}

func (s Side) String() string {
	return string(s)
}
