package consolidator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/retrace/internal/op"
)

// stub is a configurable recognizer for registry tests. Its match function
// may be nil, in which case it never matches.
type stub struct {
	kind  op.Kind
	arity int
	match func(window []op.Event) bool
}

func (s stub) Kind() op.Kind { return s.kind }
func (s stub) Arity() int    { return s.arity }

func (s stub) Consolidate(window []op.Event) (*op.Composite, bool) {
	if len(window) != s.arity || s.match == nil || !s.match(window) {
		return nil, false
	}
	return op.NewComposite(s.kind, window), true
}

func window(n int) []op.Event {
	events := make([]op.Event, n)
	for i := range events {
		events[i] = op.Event{
			Action: op.ActionWrite,
			Target: op.Locator{ID: "x"},
			Seq:    int64(i + 1),
		}
	}
	return events
}

func TestRegister_Idempotent(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(stub{kind: "rotate", arity: 3}))
	require.NoError(t, c.Register(stub{kind: "rotate", arity: 3}))

	assert.Equal(t, []op.Kind{"rotate"}, c.Kinds(),
		"duplicate registration must leave exactly one recognizer of the kind")
}

func TestRegister_InvalidArity(t *testing.T) {
	c := New()

	for _, arity := range []int{0, -1, MaxWindow, MaxWindow + 7} {
		err := c.Register(stub{kind: "bogus", arity: arity})
		require.Error(t, err, "arity %d", arity)
		assert.True(t, IsWindowError(err))

		var we *WindowError
		require.ErrorAs(t, err, &we)
		assert.Equal(t, arity, we.Size)
	}

	assert.Empty(t, c.Kinds())
	_, _, ok := c.Bounds()
	assert.False(t, ok, "rejected registrations must not establish bounds")
}

func TestWindowError_Message(t *testing.T) {
	c := New()

	// Register rejects arity 0; the message must not claim 0 is a valid
	// window size in general, only that this size is unsupported.
	err := c.Register(stub{kind: "bogus", arity: 0})
	require.Error(t, err)
	assert.EqualError(t, err, "unsupported window size 0 (max 99)")

	// TryConsolidate accepts length 0 and only rejects oversized windows.
	_, _, err = c.TryConsolidate(window(MaxWindow))
	require.Error(t, err)
	assert.EqualError(t, err, "unsupported window size 100 (max 99)")
}

func TestBounds_CoverRegisteredArities(t *testing.T) {
	c := New()
	for _, arity := range []int{4, 2, 9} {
		require.NoError(t, c.Register(stub{kind: op.Kind(string(rune('a' + arity))), arity: arity}))

		min, max, ok := c.Bounds()
		require.True(t, ok)
		assert.LessOrEqual(t, min, arity)
		assert.GreaterOrEqual(t, max, arity)
	}

	min, max, ok := c.Bounds()
	require.True(t, ok)
	assert.Equal(t, 2, min)
	assert.Equal(t, 9, max)
}

func TestBounds_EmptyConsolidator(t *testing.T) {
	_, _, ok := New().Bounds()
	assert.False(t, ok)
}

func TestUnregister_RecomputesBoundsOnExtremalRemoval(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(stub{kind: "pair", arity: 2}))
	require.NoError(t, c.Register(stub{kind: "triple", arity: 3}))
	require.NoError(t, c.Register(stub{kind: "quint", arity: 5}))

	c.Unregister("quint", 5)

	min, max, ok := c.Bounds()
	require.True(t, ok)
	assert.Equal(t, 2, min)
	assert.Equal(t, 3, max, "max must fall to the next-highest registered arity")

	c.Unregister("pair", 2)

	min, max, ok = c.Bounds()
	require.True(t, ok)
	assert.Equal(t, 3, min, "min must rise to the next-lowest registered arity")
	assert.Equal(t, 3, max)
}

func TestUnregister_LastRecognizerClearsBounds(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(stub{kind: "pair", arity: 2}))

	c.Unregister("pair", 2)

	_, _, ok := c.Bounds()
	assert.False(t, ok)
	assert.Empty(t, c.Kinds())
}

func TestUnregister_AbsentKindIsNoOp(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(stub{kind: "pair", arity: 2}))

	// Never registered at all.
	c.Unregister("ghost", 2)
	// Registered kind, wrong slot.
	c.Unregister("pair", 7)
	// Arity nothing was ever registered at, including out-of-range.
	c.Unregister("pair", 0)
	c.Unregister("pair", MaxWindow+1)

	assert.Equal(t, []op.Kind{"pair"}, c.Kinds())
	min, max, ok := c.Bounds()
	require.True(t, ok)
	assert.Equal(t, 2, min)
	assert.Equal(t, 2, max)
}

func TestTryConsolidate_EmptySlot(t *testing.T) {
	c := New()

	comp, ok, err := c.TryConsolidate(window(4))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, comp)

	// Zero-length windows are valid input and simply never match.
	comp, ok, err = c.TryConsolidate(nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, comp)
}

func TestTryConsolidate_OversizedWindow(t *testing.T) {
	c := Default()

	comp, ok, err := c.TryConsolidate(window(MaxWindow))
	require.Error(t, err)
	assert.True(t, IsWindowError(err))
	assert.False(t, ok)
	assert.Nil(t, comp)
}

func TestTryConsolidate_FirstMatchWins(t *testing.T) {
	c := New()
	always := func([]op.Event) bool { return true }
	require.NoError(t, c.Register(stub{kind: "first", arity: 2, match: always}))
	require.NoError(t, c.Register(stub{kind: "second", arity: 2, match: always}))

	comp, ok, err := c.TryConsolidate(window(2))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, op.Kind("first"), comp.Kind,
		"registration order defines precedence")
}

func TestTryConsolidate_MismatchFallsThrough(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(stub{kind: "never", arity: 2}))
	require.NoError(t, c.Register(stub{kind: "always", arity: 2, match: func([]op.Event) bool { return true }}))

	comp, ok, err := c.TryConsolidate(window(2))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, op.Kind("always"), comp.Kind,
		"a mismatch must fall through to the next recognizer")
}

func TestKinds_StableOrder(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(stub{kind: "A", arity: 3}))
	require.NoError(t, c.Register(stub{kind: "B", arity: 1}))
	require.NoError(t, c.Register(stub{kind: "C", arity: 1}))

	assert.Equal(t, []op.Kind{"B", "C", "A"}, c.Kinds(),
		"ascending arity, then registration order within a slot")
}

func TestRegistrations(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(stub{kind: "A", arity: 3}))
	require.NoError(t, c.Register(stub{kind: "B", arity: 1}))

	assert.Equal(t, []Registration{
		{Kind: "B", Arity: 1},
		{Kind: "A", Arity: 3},
	}, c.Registrations())
}

func TestRecognizes(t *testing.T) {
	c := Default()
	assert.True(t, c.Recognizes(op.KindSwap))
	assert.False(t, c.Recognizes("rotate"))
}

func TestDefault_EndToEndSwap(t *testing.T) {
	c := Default()

	// x and y exchanged their prior values 3 and 5.
	exchange := []op.Event{
		{Action: op.ActionWrite, Target: op.Locator{ID: "x"}, Value: 5, Prev: 3, Seq: 1},
		{Action: op.ActionWrite, Target: op.Locator{ID: "y"}, Value: 3, Prev: 5, Seq: 2},
	}
	comp, ok, err := c.TryConsolidate(exchange)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, op.KindSwap, comp.Kind)

	// Not a true exchange: y receives a value x never held.
	moved := []op.Event{
		{Action: op.ActionWrite, Target: op.Locator{ID: "x"}, Value: 5, Prev: 3, Seq: 1},
		{Action: op.ActionWrite, Target: op.Locator{ID: "y"}, Value: 9, Prev: 5, Seq: 2},
	}
	comp, ok, err = c.TryConsolidate(moved)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, comp)
}
