// Package interpreter walks a full trace of atomic events and consolidates
// the windows the consolidator recognizes, passing everything else through
// untouched.
//
// Window selection lives here, not in the consolidator: the consolidator
// only answers whether one candidate window forms a composite. The
// interpreter decides which windows to try - at each position it offers
// sizes from the largest registered arity down to the smallest, so a larger
// composite is never shadowed by a smaller one starting at the same event.
//
// The walk is a deterministic single pass: same events in, same entries
// out. No randomness, no concurrency.
package interpreter

import (
	"github.com/roach88/retrace/internal/consolidator"
	"github.com/roach88/retrace/internal/op"
)

// Entry is one element of an interpreted trace: either an atomic event
// that nothing consolidated, or a composite operation replacing its
// window. Exactly one field is set.
type Entry struct {
	Event     *op.Event     `json:"event,omitempty"`
	Composite *op.Composite `json:"composite,omitempty"`
}

// Result is an interpreted trace.
type Result struct {
	// Entries is the trace in order, with consolidated windows replaced
	// by their composites.
	Entries []Entry `json:"entries"`

	// Composites lists just the consolidated operations, in trace order.
	Composites []*op.Composite `json:"composites"`
}

// Interpreter drives a consolidator over whole traces.
type Interpreter struct {
	cons *consolidator.Consolidator
}

// New creates an interpreter over the given consolidator.
func New(cons *consolidator.Consolidator) *Interpreter {
	return &Interpreter{cons: cons}
}

// Interpret consolidates the trace greedily. At each position it tries
// window sizes from min(remaining, maxArity) down to minArity; on a match
// it emits the composite and resumes after the consumed window, otherwise
// it passes the single event through and advances by one.
func (it *Interpreter) Interpret(events []op.Event) (*Result, error) {
	res := &Result{}

	minArity, maxArity, bounded := it.cons.Bounds()
	if !bounded {
		// Nothing registered: the trace passes through unchanged.
		for i := range events {
			res.Entries = append(res.Entries, Entry{Event: &events[i]})
		}
		return res, nil
	}

	for i := 0; i < len(events); {
		limit := maxArity
		if rem := len(events) - i; rem < limit {
			limit = rem
		}

		var matched *op.Composite
		consumed := 0
		for size := limit; size >= minArity; size-- {
			comp, ok, err := it.cons.TryConsolidate(events[i : i+size])
			if err != nil {
				return nil, err
			}
			if ok {
				matched, consumed = comp, size
				break
			}
		}

		if matched != nil {
			res.Entries = append(res.Entries, Entry{Composite: matched})
			res.Composites = append(res.Composites, matched)
			i += consumed
			continue
		}
		res.Entries = append(res.Entries, Entry{Event: &events[i]})
		i++
	}
	return res, nil
}
