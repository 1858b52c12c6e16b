package op

import (
	"fmt"
	"strings"
)

// Action distinguishes the two atomic event varieties.
type Action string

const (
	// ActionRead is an atomic read of one slot.
	ActionRead Action = "read"
	// ActionWrite is an atomic write to one slot.
	ActionWrite Action = "write"
)

// Valid reports whether the action is one of the known varieties.
func (a Action) Valid() bool {
	return a == ActionRead || a == ActionWrite
}

// Locator names a variable or a slot within a structure, e.g. "x" or
// "a[3]". Index is the optional path into an indexed structure.
type Locator struct {
	ID    string `json:"id" yaml:"id"`
	Index []int  `json:"index,omitempty" yaml:"index,omitempty"`
}

// Equal reports whether two locators name the same slot.
func (l Locator) Equal(other Locator) bool {
	if l.ID != other.ID || len(l.Index) != len(other.Index) {
		return false
	}
	for i, v := range l.Index {
		if other.Index[i] != v {
			return false
		}
	}
	return true
}

// String returns a human-readable form like "x" or "a[3][1]".
func (l Locator) String() string {
	if len(l.Index) == 0 {
		return l.ID
	}
	var b strings.Builder
	b.WriteString(l.ID)
	for _, i := range l.Index {
		fmt.Fprintf(&b, "[%d]", i)
	}
	return b.String()
}

// Event is a single atomic read or write captured by the instrumentation.
//
// For writes, Prev is the value the target slot held before the write.
// The instrumentation records it so recognizers can verify value movement
// (a swap is two writes where each written value equals the other slot's
// prior value) without replaying the whole trace.
type Event struct {
	Action Action   `json:"action" yaml:"action"`
	Target Locator  `json:"target" yaml:"target"`
	Source *Locator `json:"source,omitempty" yaml:"source,omitempty"`
	Value  int64    `json:"value" yaml:"value"`
	Prev   int64    `json:"prev,omitempty" yaml:"prev,omitempty"`

	// Seq is the event's logical position in the trace, assigned at load
	// time. Strictly increasing within a trace.
	Seq int64 `json:"seq" yaml:"seq,omitempty"`
}

// String renders the event for diagnostics, e.g. "write x=5 (was 3)".
func (e Event) String() string {
	if e.Action == ActionWrite {
		return fmt.Sprintf("write %s=%d (was %d)", e.Target, e.Value, e.Prev)
	}
	return fmt.Sprintf("read %s=%d", e.Target, e.Value)
}
