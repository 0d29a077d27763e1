// Package reachability tracks whether the remote recipe service is
// currently reachable and fans transitions out to subscribers.
package reachability

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type subscriber struct {
	id int
	fn func(online bool)
}

// Monitor holds the online/offline state. SetOnline updates the state
// synchronously and notifies subscribers in subscription order; a panicking
// subscriber never prevents the remaining ones from running.
type Monitor struct {
	mu          sync.Mutex
	online      bool
	nextID      int
	subscribers []subscriber
}

// NewMonitor starts in the given state. Services normally start optimistic
// (online) and let the prober or the first failed call correct it.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online}
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records the new state and, on a transition, notifies every
// subscriber synchronously.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]subscriber, len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()

	if online {
		logrus.Info("[REACHABILITY] Back online")
	} else {
		logrus.Warn("[REACHABILITY] Connection lost, entering offline mode")
	}

	for _, s := range subs {
		notify(s, online)
	}
}

func notify(s subscriber, online bool) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[REACHABILITY] Subscriber %d panicked: %v", s.id, r)
		}
	}()
	s.fn(online)
}

// Subscribe registers a listener and returns its unsubscribe func.
func (m *Monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subscribers = append(m.subscribers, subscriber{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subscribers {
			if s.id == id {
				m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
				return
			}
		}
	}
}
