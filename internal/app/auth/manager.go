package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"eventflow/internal/logging"
	"eventflow/internal/store"
)

// DefaultDelay is the simulated latency of login and signup.
const DefaultDelay = 600 * time.Millisecond

// Status is the auth state of a profile.
type Status string

const (
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// SessionUser is the public part of a user carried by a session.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the persisted sign-in of a profile.
type Session struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// Config wires a Manager.
type Config struct {
	Users    *Directory
	Sessions store.KV
	Issuer   TokenIssuer
	Delay    time.Duration
}

// Manager tracks one profile's session.
type Manager struct {
	users    *Directory
	sessions store.KV
	issuer   TokenIssuer
	delay    time.Duration

	mu       sync.Mutex
	session  *Session
	ready    atomic.Bool
	inFlight atomic.Int32
}

// NewManager restores the persisted session. The manager reports loading
// until the restore finishes.
func NewManager(ctx context.Context, cfg Config) *Manager {
	m := &Manager{
		users:    cfg.Users,
		sessions: cfg.Sessions,
		issuer:   cfg.Issuer,
		delay:    cfg.Delay,
	}
	if m.issuer == nil {
		m.issuer = RandomIssuer{}
	}

	var s Session
	ok, err := store.LoadJSON(ctx, m.sessions, store.KeyAuthSession, &s)
	switch {
	case err != nil:
		logging.PersistenceError(ctx, "load", store.KeyAuthSession, err)
	case ok && s.Token != "":
		m.session = &s
	}
	m.ready.Store(true)
	return m
}

// Loading is true while the session is being restored or a login or signup
// is in flight.
func (m *Manager) Loading() bool {
	return !m.ready.Load() || m.inFlight.Load() > 0
}

// Status reports the current auth state.
func (m *Manager) Status() Status {
	if m.Loading() {
		return StatusLoading
	}
	if _, ok := m.Current(); ok {
		return StatusAuthenticated
	}
	return StatusAnonymous
}

// Current returns the signed-in user, if any.
func (m *Manager) Current() (SessionUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return SessionUser{}, false
	}
	return m.session.User, true
}

// Login checks credentials and starts a session.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	m.inFlight.Add(1)
	defer m.inFlight.Add(-1)

	if err := m.wait(ctx); err != nil {
		return Session{}, err
	}

	u, err := m.users.Verify(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return m.start(ctx, u.Public())
}

// Signup creates an account and signs it in.
func (m *Manager) Signup(ctx context.Context, name, email, password string) (Session, error) {
	m.inFlight.Add(1)
	defer m.inFlight.Add(-1)

	if err := m.wait(ctx); err != nil {
		return Session{}, err
	}

	u, err := m.users.Create(ctx, name, email, password)
	if err != nil {
		return Session{}, err
	}
	return m.start(ctx, u.Public())
}

// Logout ends the session. It is a no-op when nobody is signed in.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	if err := m.sessions.Remove(ctx, store.KeyAuthSession); err != nil {
		logging.PersistenceError(ctx, "remove", store.KeyAuthSession, err)
	}
}

// Authenticate resolves a bearer token to the signed-in user.
func (m *Manager) Authenticate(token string) (SessionUser, error) {
	if token == "" {
		return SessionUser{}, ErrUnauthorized
	}
	if err := m.issuer.Verify(token); err != nil {
		return SessionUser{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil || subtle.ConstantTimeCompare([]byte(m.session.Token), []byte(token)) != 1 {
		return SessionUser{}, ErrUnauthorized
	}
	return m.session.User, nil
}

func (m *Manager) start(ctx context.Context, user SessionUser) (Session, error) {
	token, err := m.issuer.Issue(user)
	if err != nil {
		return Session{}, fmt.Errorf("create token: %w", err)
	}
	s := Session{Token: token, User: user}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = &s
	if err := store.SaveJSON(ctx, m.sessions, store.KeyAuthSession, s); err != nil {
		logging.PersistenceError(ctx, "save", store.KeyAuthSession, err)
	}
	return s, nil
}

func (m *Manager) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
