package blink

import "strconv"

// State is the two-state cycle of a task machine.
type State int

// Machine states. Values outside this set are reset to StateOn.
const (
	StateOn State = iota
	StateOff
)

func (s State) String() string {
	switch s {
	case StateOn:
		return "on"
	case StateOff:
		return "off"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	return s == StateOn || s == StateOff
}
