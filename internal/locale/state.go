package locale

import "fmt"

// State classifies a record by structural validity.
type State int

const (
	// OK marks a record proven to be referenced. Terminal.
	OK State = iota
	// Unused is a complete row whose usage has not been checked yet.
	Unused
	// TooShort is a row cut off early by an explicit stop marker.
	TooShort
	// BadEnd is a truncated row without a stop marker. The game fails on these.
	BadEnd
)

var stateNames = map[State]string{
	OK:       "OK",
	Unused:   "UNUSED",
	TooShort: "TOO_SHORT",
	BadEnd:   "BAD_END",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Broken reports whether the row will misbehave in game.
func (s State) Broken() bool {
	return s == TooShort || s == BadEnd
}

// CanPromote reports whether a record in state s may become OK.
func (s State) CanPromote() bool {
	return s == Unused
}

// ParseState is the inverse of State.String.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}

// States lists every state in declaration order.
func States() []State {
	return []State{OK, Unused, TooShort, BadEnd}
}
