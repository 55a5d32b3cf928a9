package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReplaysCurrentValue(t *testing.T) {
	s := NewSignal(42)

	var got []int
	cancel := s.Subscribe(func(v int) { got = append(got, v) })
	defer cancel()

	assert.Equal(t, []int{42}, got)
}

func TestSetNotifiesAllSubscribersInOrder(t *testing.T) {
	s := NewSignal("")

	var order []string
	cancelA := s.Subscribe(func(v string) { order = append(order, "a:"+v) })
	defer cancelA()
	cancelB := s.Subscribe(func(v string) { order = append(order, "b:"+v) })
	defer cancelB()

	s.Set("x")

	assert.Equal(t, []string{"a:", "b:", "a:x", "b:x"}, order)
	assert.Equal(t, "x", s.Get())
}

func TestCancelStopsDelivery(t *testing.T) {
	s := NewSignal(0)

	var count int
	cancel := s.Subscribe(func(int) { count++ })
	require.Equal(t, 1, count)

	cancel()
	s.Set(1)
	assert.Equal(t, 1, count)
}

func TestCallbackMayReadSignal(t *testing.T) {
	s := NewSignal(0)

	var seen int
	cancel := s.Subscribe(func(v int) {
		// Reading back into the signal must not deadlock.
		seen = s.Get()
	})
	defer cancel()

	s.Set(7)
	assert.Equal(t, 7, seen)
}
