package op

// Swap recognizes a pairwise exchange of two slot values: two writes to
// distinct slots where each written value equals the value the other slot
// held before the exchange.
//
//	write x=5 (was 3)
//	write y=3 (was 5)
//
// consolidates into swap(x, y). Values that merely move without exchanging
// (write y=9 above) do not match.
type Swap struct{}

// Kind returns KindSwap.
func (Swap) Kind() Kind { return KindSwap }

// Arity returns 2: a swap consumes exactly two writes.
func (Swap) Arity() int { return 2 }

// Consolidate verifies the exchange and yields the swap composite.
func (Swap) Consolidate(window []Event) (*Composite, bool) {
	if len(window) != 2 {
		return nil, false
	}
	a, b := window[0], window[1]
	if a.Action != ActionWrite || b.Action != ActionWrite {
		return nil, false
	}
	if a.Target.Equal(b.Target) {
		return nil, false
	}
	if a.Value != b.Prev || b.Value != a.Prev {
		return nil, false
	}
	return NewComposite(KindSwap, window, a.Target, b.Target), true
}
