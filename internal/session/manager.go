package session

import (
	"context"
	"sync"
	"time"

	"github.com/pigeonchat/pigeon/internal/bus"
	"github.com/pigeonchat/pigeon/internal/chat"
	"go.uber.org/zap"
)

// AuthAPI is the slice of the backend the manager needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, chat.User, error)
	Register(ctx context.Context, name, email, password string) (string, chat.User, error)
	Me(ctx context.Context) (chat.User, error)
	SetToken(token string)
}

// Manager owns the current authenticated identity. It implements
// chat.SessionProvider for the sync controller and announces auth
// changes on the bus, which is what triggers the initial load and the
// reset.
type Manager struct {
	name    string
	api     AuthAPI
	machine *Machine
	bus     *bus.Bus
	logger  *zap.Logger

	mu   sync.RWMutex
	user *chat.User
}

// NewManager creates a session manager for the named session.
func NewManager(name string, api AuthAPI, machine *Machine, b *bus.Bus, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		name:    name,
		api:     api,
		machine: machine,
		bus:     b,
		logger:  logger,
	}
}

// CurrentUser returns the signed-in user, or nil.
func (m *Manager) CurrentUser() *chat.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// IsAuthenticated reports whether a user is signed in.
func (m *Manager) IsAuthenticated() bool {
	return m.machine.Current() == Authenticated
}

// Restore tries to resume a previous session from the persisted token.
// Returns true when an identity was recovered.
func (m *Manager) Restore(ctx context.Context) bool {
	token := LoadToken(m.name)
	if token == "" {
		return false
	}
	if err := m.machine.Transition(Authenticating); err != nil {
		return false
	}

	m.api.SetToken(token)
	user, err := m.api.Me(ctx)
	if err != nil {
		m.logger.Info("stored token rejected", zap.Error(err))
		m.api.SetToken("")
		_ = m.machine.Transition(SignedOut)
		return false
	}

	m.become(user)
	return true
}

// Login authenticates with credentials and persists the token.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := m.machine.Transition(Authenticating); err != nil {
		return err
	}

	token, user, err := m.api.Login(ctx, email, password)
	if err != nil {
		_ = m.machine.Transition(SignedOut)
		return err
	}

	if err := SaveToken(m.name, token); err != nil {
		m.logger.Warn("persisting token failed", zap.Error(err))
	}
	m.become(user)
	return nil
}

// Register creates an account and signs it in.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	if err := m.machine.Transition(Authenticating); err != nil {
		return err
	}

	token, user, err := m.api.Register(ctx, name, email, password)
	if err != nil {
		_ = m.machine.Transition(SignedOut)
		return err
	}

	if err := SaveToken(m.name, token); err != nil {
		m.logger.Warn("persisting token failed", zap.Error(err))
	}
	m.become(user)
	return nil
}

// Logout drops the identity and the persisted token. The signed-out
// event it publishes makes the sync controller reset the store.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()

	m.api.SetToken("")
	if err := ClearToken(m.name); err != nil {
		m.logger.Warn("clearing token failed", zap.Error(err))
	}
	_ = m.machine.Transition(SignedOut)
	if m.bus != nil {
		m.bus.Publish(bus.Event{Kind: bus.KindSessionSignedOut, Timestamp: time.Now()})
	}
	m.logger.Info("signed out")
}

func (m *Manager) become(user chat.User) {
	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()

	_ = m.machine.Transition(Authenticated)
	if m.bus != nil {
		m.bus.Publish(bus.Event{Kind: bus.KindSessionAuthenticated, Timestamp: time.Now(), Payload: user.ID})
	}
	m.logger.Info("authenticated", zap.String("user_id", user.ID), zap.String("name", user.Name))
}
