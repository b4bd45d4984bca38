package session

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/pigeonchat/pigeon/internal/bus"
)

// State represents the auth lifecycle of a session.
type State string

const (
	SignedOut      State = "SIGNED_OUT"
	Authenticating State = "AUTHENTICATING"
	Authenticated  State = "AUTHENTICATED"
	Failed         State = "FAILED"
)

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	SignedOut:      {Authenticating},
	Authenticating: {Authenticated, SignedOut, Failed},
	Authenticated:  {SignedOut, Failed},
	Failed:         {Authenticating, SignedOut},
}

// Machine tracks and enforces auth state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a state machine starting signed out.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: SignedOut,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Returns an error if the
// transition is not allowed.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      bus.KindSessionStatusChanged,
			Timestamp: time.Now(),
			Payload: StatusChange{
				From: from,
				To:   to,
			},
		})
	}
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
