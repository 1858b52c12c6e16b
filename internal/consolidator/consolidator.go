package consolidator

import (
	"sort"

	"github.com/roach88/retrace/internal/op"
)

// MaxWindow is the exclusive upper bound on consolidation window size.
// Valid recognizer arities are 1..MaxWindow-1.
const MaxWindow = 100

// Consolidator matches windows of atomic events against registered
// recognizers and reconstructs the composite operations they form.
//
// The zero value is not usable; construct with New or Default.
type Consolidator struct {
	// slots maps arity to its recognizers in registration order.
	// Slots are deleted when emptied so bound rescans only visit
	// populated arities.
	slots map[int][]op.Recognizer

	// min and max are the derived arity bounds. Meaningful only while
	// bounded is true; an empty table has no bounds, not sentinel ones.
	min, max int
	bounded  bool
}

// New creates an empty consolidator with no recognizers registered.
func New() *Consolidator {
	return &Consolidator{slots: make(map[int][]op.Recognizer)}
}

// Default creates a consolidator with the standard recognizers registered.
// Currently that is the swap recognizer.
func Default() *Consolidator {
	c := New()
	// Arity is in range by construction, the error cannot occur.
	_ = c.Register(op.Swap{})
	return c
}

// Register adds a recognizer to the slot for its arity.
//
// Registration is idempotent per kind: if the slot already holds a
// recognizer of the same kind the call is a no-op, not an error. A kind's
// arity is fixed, so scanning only the target slot is enough to enforce
// global kind uniqueness.
//
// Returns a *WindowError if the recognizer's arity is outside
// [1, MaxWindow).
func (c *Consolidator) Register(r op.Recognizer) error {
	arity := r.Arity()
	if arity < 1 || arity >= MaxWindow {
		return &WindowError{Size: arity}
	}

	for _, existing := range c.slots[arity] {
		if existing.Kind() == r.Kind() {
			return nil
		}
	}
	c.slots[arity] = append(c.slots[arity], r)

	if !c.bounded {
		c.min, c.max = arity, arity
		c.bounded = true
		return nil
	}
	if arity < c.min {
		c.min = arity
	}
	if arity > c.max {
		c.max = arity
	}
	return nil
}

// Unregister removes the recognizer of the given kind from the given arity
// slot. Removal is idempotent: when no such recognizer exists the table is
// left unchanged and the call returns normally.
//
// When the removed recognizer held an extremal arity, both bounds are
// recomputed by rescanning every slot.
func (c *Consolidator) Unregister(kind op.Kind, arity int) {
	slot, ok := c.slots[arity]
	if !ok {
		return
	}

	victim := -1
	for i, r := range slot {
		if r.Kind() == kind {
			victim = i
			break
		}
	}
	if victim < 0 {
		// Nothing to remove; the bounds checks below must not run
		// against an absent victim.
		return
	}

	slot = append(slot[:victim:victim], slot[victim+1:]...)
	if len(slot) == 0 {
		delete(c.slots, arity)
	} else {
		c.slots[arity] = slot
	}

	if arity == c.min || arity == c.max {
		c.recalculateBounds()
	}
}

// recalculateBounds rederives min and max from scratch with independent
// comparisons. O(populated slots).
func (c *Consolidator) recalculateBounds() {
	c.bounded = false
	for arity := range c.slots {
		if !c.bounded {
			c.min, c.max = arity, arity
			c.bounded = true
			continue
		}
		if arity < c.min {
			c.min = arity
		}
		if arity > c.max {
			c.max = arity
		}
	}
}

// TryConsolidate attempts to consolidate the window into a composite
// operation. Recognizers registered for the window's length are tried in
// registration order and the first match wins.
//
// (nil, false, nil) means no recognizer matched - an expected, frequent
// outcome, including for lengths with no recognizers at all. The error is
// non-nil only for a window of MaxWindow events or more.
func (c *Consolidator) TryConsolidate(window []op.Event) (*op.Composite, bool, error) {
	if len(window) >= MaxWindow {
		return nil, false, &WindowError{Size: len(window)}
	}
	for _, r := range c.slots[len(window)] {
		if comp, ok := r.Consolidate(window); ok {
			return comp, true, nil
		}
	}
	return nil, false, nil
}

// Registration describes one registered recognizer for introspection.
type Registration struct {
	Kind  op.Kind `json:"kind"`
	Arity int     `json:"arity"`
}

// Registrations returns every registered recognizer in stable order:
// ascending arity, then registration order within a slot.
func (c *Consolidator) Registrations() []Registration {
	arities := make([]int, 0, len(c.slots))
	for arity := range c.slots {
		arities = append(arities, arity)
	}
	sort.Ints(arities)

	var regs []Registration
	for _, arity := range arities {
		for _, r := range c.slots[arity] {
			regs = append(regs, Registration{Kind: r.Kind(), Arity: arity})
		}
	}
	return regs
}

// Kinds returns every registered operation kind in the same stable order
// as Registrations.
func (c *Consolidator) Kinds() []op.Kind {
	regs := c.Registrations()
	kinds := make([]op.Kind, len(regs))
	for i, reg := range regs {
		kinds[i] = reg.Kind
	}
	return kinds
}

// Recognizes reports whether a recognizer of the given kind is registered.
func (c *Consolidator) Recognizes(kind op.Kind) bool {
	for _, slot := range c.slots {
		for _, r := range slot {
			if r.Kind() == kind {
				return true
			}
		}
	}
	return false
}

// Bounds returns the minimum and maximum registered arity. ok is false for
// an empty consolidator, in which case min and max are meaningless.
func (c *Consolidator) Bounds() (min, max int, ok bool) {
	return c.min, c.max, c.bounded
}
