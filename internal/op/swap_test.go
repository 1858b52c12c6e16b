package op

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEvent(target string, value, prev int64) Event {
	return Event{
		Action: ActionWrite,
		Target: Locator{ID: target},
		Value:  value,
		Prev:   prev,
	}
}

func TestSwap_Consolidate_Exchange(t *testing.T) {
	// x held 3, y held 5; after the window they exchanged values.
	window := []Event{
		writeEvent("x", 5, 3),
		writeEvent("y", 3, 5),
	}

	comp, ok := Swap{}.Consolidate(window)
	require.True(t, ok, "true exchange should consolidate")
	require.NotNil(t, comp)

	assert.Equal(t, KindSwap, comp.Kind)
	assert.NotEmpty(t, comp.ID)
	assert.Equal(t, window, comp.Window)
	require.Len(t, comp.Operands, 2)
	assert.Equal(t, "x", comp.Operands[0].ID)
	assert.Equal(t, "y", comp.Operands[1].ID)
}

func TestSwap_Consolidate_NotAnExchange(t *testing.T) {
	// y receives 9, which x never held - values moved but did not exchange.
	window := []Event{
		writeEvent("x", 5, 3),
		writeEvent("y", 9, 5),
	}

	comp, ok := Swap{}.Consolidate(window)
	assert.False(t, ok)
	assert.Nil(t, comp)
}

func TestSwap_Consolidate_Mismatches(t *testing.T) {
	testCases := []struct {
		name   string
		window []Event
	}{
		{
			name: "same target twice",
			window: []Event{
				writeEvent("x", 5, 3),
				writeEvent("x", 3, 5),
			},
		},
		{
			name: "read in window",
			window: []Event{
				{Action: ActionRead, Target: Locator{ID: "x"}, Value: 3},
				writeEvent("y", 3, 5),
			},
		},
		{
			name:   "wrong window length",
			window: []Event{writeEvent("x", 5, 3)},
		},
		{
			name:   "empty window",
			window: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			comp, ok := Swap{}.Consolidate(tc.window)
			assert.False(t, ok)
			assert.Nil(t, comp)
		})
	}
}

func TestSwap_Consolidate_IndexedSlots(t *testing.T) {
	// a[0] and a[1] exchange: distinct slots of the same variable.
	window := []Event{
		{Action: ActionWrite, Target: Locator{ID: "a", Index: []int{0}}, Value: 7, Prev: 2},
		{Action: ActionWrite, Target: Locator{ID: "a", Index: []int{1}}, Value: 2, Prev: 7},
	}

	comp, ok := Swap{}.Consolidate(window)
	require.True(t, ok)
	assert.Equal(t, "a[0]", comp.Operands[0].String())
	assert.Equal(t, "a[1]", comp.Operands[1].String())
}

func TestSwap_Contract(t *testing.T) {
	assert.Equal(t, KindSwap, Swap{}.Kind())
	assert.Equal(t, 2, Swap{}.Arity())
}
