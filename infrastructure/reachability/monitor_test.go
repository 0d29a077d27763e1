package reachability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorInitialState(t *testing.T) {
	assert.True(t, NewMonitor(true).Online())
	assert.False(t, NewMonitor(false).Online())
}

func TestMonitorNotifiesOnTransition(t *testing.T) {
	m := NewMonitor(true)

	var got []bool
	m.Subscribe(func(online bool) {
		got = append(got, online)
	})

	m.SetOnline(false)
	m.SetOnline(true)

	assert.Equal(t, []bool{false, true}, got)
	assert.True(t, m.Online())
}

func TestMonitorSkipsRedundantSet(t *testing.T) {
	m := NewMonitor(true)

	calls := 0
	m.Subscribe(func(bool) { calls++ })

	m.SetOnline(true)
	m.SetOnline(true)
	assert.Equal(t, 0, calls)
}

func TestMonitorNotifiesInSubscriptionOrder(t *testing.T) {
	m := NewMonitor(true)

	var order []string
	m.Subscribe(func(bool) { order = append(order, "first") })
	m.Subscribe(func(bool) { order = append(order, "second") })
	m.Subscribe(func(bool) { order = append(order, "third") })

	m.SetOnline(false)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestMonitorPanickingSubscriberIsIsolated(t *testing.T) {
	m := NewMonitor(true)

	reached := false
	m.Subscribe(func(bool) { panic("listener bug") })
	m.Subscribe(func(bool) { reached = true })

	require.NotPanics(t, func() { m.SetOnline(false) })
	assert.True(t, reached)
	assert.False(t, m.Online())
}

func TestMonitorUnsubscribe(t *testing.T) {
	m := NewMonitor(true)

	calls := 0
	unsubscribe := m.Subscribe(func(bool) { calls++ })

	m.SetOnline(false)
	require.Equal(t, 1, calls)

	unsubscribe()
	m.SetOnline(true)
	assert.Equal(t, 1, calls)

	// Unsubscribing twice is harmless.
	unsubscribe()
}
