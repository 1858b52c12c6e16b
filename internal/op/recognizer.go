package op

// Recognizer attempts to reconstruct one specific composite operation from
// a fixed-size window of atomic events.
//
// Consolidate is handed a window of exactly Arity() events, in trace order.
// It returns (composite, true) when the window forms the operation, and
// (nil, false) for an ordinary mismatch - a frequent, expected outcome that
// the consolidator answers by trying the next registered recognizer.
// A window of the wrong length is a caller bug; implementations treat it as
// a mismatch rather than panicking.
//
// Implementations must not mutate the window.
type Recognizer interface {
	// Kind is the single operation variety this recognizer reconstructs.
	Kind() Kind

	// Arity is the fixed number of atomic events one match consumes.
	// Must be in [1, consolidator.MaxWindow).
	Arity() int

	// Consolidate verifies the window and builds the composite.
	Consolidate(window []Event) (*Composite, bool)
}
