package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"meeting-room-client/internal/model"
	"meeting-room-client/internal/store"
)

// Identity is the logged-in user. The zero value means nobody is logged in.
type Identity struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// LoggedIn reports whether the identity names a user.
func (i Identity) LoggedIn() bool {
	return i.UserID != 0
}

func identityOf(u model.User) Identity {
	return Identity{UserID: u.ID, Name: u.Name, Email: u.Email}
}

// Authenticator is the part of the remote client the manager uses.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (model.User, error)
	Signup(ctx context.Context, name, email, password string) (model.User, error)
}

// IdentityStore persists the current user across restarts.
type IdentityStore interface {
	CurrentUser(ctx context.Context) (model.User, error)
	SaveCurrentUser(ctx context.Context, user model.User) error
	ClearCurrentUser(ctx context.Context) error
}

// Manager owns the current user of the client and notifies subscribers when it changes.
type Manager struct {
	auth  Authenticator
	store IdentityStore
	log   *zap.Logger

	mu          sync.Mutex
	current     Identity
	subscribers map[int]chan Identity
	nextSub     int
}

// NewManager creates a manager with nobody logged in. Call Restore to load the persisted user.
func NewManager(auth Authenticator, identities IdentityStore, log *zap.Logger) *Manager {
	return &Manager{
		auth:        auth,
		store:       identities,
		log:         log,
		subscribers: make(map[int]chan Identity),
	}
}

// Restore loads the persisted identity, if any.
func (m *Manager) Restore(ctx context.Context) (Identity, error) {
	user, err := m.store.CurrentUser(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, nil
	}
	if err != nil {
		return Identity{}, fmt.Errorf("failed to restore session: %w", err)
	}
	id := identityOf(user)
	m.set(id)
	m.log.Info("session restored", zap.Int64("user_id", id.UserID))
	return id, nil
}

// Current returns the logged-in identity.
func (m *Manager) Current() Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Login authenticates against the booking service and makes the user current.
func (m *Manager) Login(ctx context.Context, email, password string) (Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Identity{}, ErrMissingCredentials
	}

	user, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.log.Warn("login failed", zap.String("email", email), zap.Error(err))
		return Identity{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	return m.adopt(ctx, user), nil
}

// Signup registers an account and makes it current.
func (m *Manager) Signup(ctx context.Context, name, email, password string) (Identity, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return Identity{}, ErrMissingCredentials
	}

	user, err := m.auth.Signup(ctx, name, email, password)
	if err != nil {
		m.log.Warn("signup failed", zap.String("email", email), zap.Error(err))
		return Identity{}, fmt.Errorf("%w: %w", ErrSignupFailed, err)
	}
	return m.adopt(ctx, user), nil
}

// Logout forgets the current user.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.ClearCurrentUser(ctx); err != nil {
		m.log.Error("failed to clear persisted session", zap.Error(err))
	}
	m.set(Identity{})
}

// Subscribe returns a channel that receives the identity after every change, and a function
// that ends the subscription. Only the latest identity is buffered; a slow reader skips
// intermediate values.
func (m *Manager) Subscribe() (<-chan Identity, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Identity, 1)
	m.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subscribers, id)
			close(ch)
		})
	}
}

func (m *Manager) adopt(ctx context.Context, user model.User) Identity {
	if err := m.store.SaveCurrentUser(ctx, user); err != nil {
		m.log.Error("failed to persist session", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	id := identityOf(user)
	m.set(id)
	m.log.Info("session started", zap.Int64("user_id", id.UserID))
	return id
}

func (m *Manager) set(id Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == id {
		return
	}
	m.current = id
	for _, ch := range m.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- id
	}
}
