package match

import (
	"errors"
	"reflect"

	"github.com/Billy-Davies-2/scorebored/internal/logger"
)

// ErrNilListener is returned by AddListener for a nil listener.
var ErrNilListener = errors.New("nil match listener")

// Listener is notified when the match is activated or deactivated.
type Listener interface {
	MatchStarted()
	MatchEnded()
}

// ListenerFuncs adapts plain functions to Listener. Either field may be nil.
// Register it by pointer so RemoveListener can find it again.
type ListenerFuncs struct {
	Started func()
	Ended   func()
}

func (l *ListenerFuncs) MatchStarted() {
	if l.Started != nil {
		l.Started()
	}
}

func (l *ListenerFuncs) MatchEnded() {
	if l.Ended != nil {
		l.Ended()
	}
}

// AddListener registers l. Listeners are notified in registration order.
func (m *Match) AddListener(l Listener) error {
	if l == nil {
		return ErrNilListener
	}
	m.listeners = append(m.listeners, l)
	return nil
}

// RemoveListener unregisters the first occurrence of l and reports whether
// it was registered. Listeners whose type cannot be compared, such as structs
// holding a slice, are never found; register those by pointer.
func (m *Match) RemoveListener(l Listener) bool {
	if l == nil || !reflect.TypeOf(l).Comparable() {
		return false
	}
	for i, registered := range m.listeners {
		if registered == l {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// notify calls fn for every listener. A panicking listener is logged and
// skipped so the rest still hear about the change.
func (m *Match) notify(event string, fn func(Listener)) {
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Match listener panicked", "event", event, "panic", r)
				}
			}()
			fn(l)
		}()
	}
}
