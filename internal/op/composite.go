package op

import "github.com/google/uuid"

// Composite is a higher-level operation reconstructed from a window of
// atomic events. It replaces the window in an interpreted trace.
type Composite struct {
	// ID is a UUIDv7, time-sortable for debugging and trace visualization.
	ID string `json:"id"`

	// Kind identifies the operation variety for downstream consumers.
	Kind Kind `json:"kind"`

	// Window holds the atomic events the composite consumed, in trace order.
	Window []Event `json:"window"`

	// Operands are the slots the operation touched, in the order the
	// recognizer reports them (for a swap: the two exchanged slots).
	Operands []Locator `json:"operands"`
}

// NewComposite builds a composite over a copy of the window.
// Copying keeps the composite valid even if the caller reuses the
// backing slice while scanning a trace.
func NewComposite(kind Kind, window []Event, operands ...Locator) *Composite {
	w := make([]Event, len(window))
	copy(w, window)
	return &Composite{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Kind:     kind,
		Window:   w,
		Operands: operands,
	}
}

// Span returns the sequence range [from, to] the composite covers.
// Both are 0 for an empty window.
func (c *Composite) Span() (from, to int64) {
	if len(c.Window) == 0 {
		return 0, 0
	}
	return c.Window[0].Seq, c.Window[len(c.Window)-1].Seq
}
