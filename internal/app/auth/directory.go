package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"eventflow/internal/logging"
	"eventflow/internal/store"
)

var (
	// ErrInvalidCredentials is the only login failure callers see.
	ErrInvalidCredentials = errors.New("Invalid email or password.")
	// ErrEmailTaken signals the email already has an account.
	ErrEmailTaken = errors.New("An account with this email already exists.")

	dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")
)

// User is a stored account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public strips the credential.
func (u User) Public() SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Directory is the user table shared by every profile. It is stored as one
// document mapping user id to User.
type Directory struct {
	mu   sync.Mutex
	kv   store.KV
	cost int
}

// NewDirectory wraps kv. cost is the bcrypt cost; zero uses bcrypt.DefaultCost.
func NewDirectory(kv store.KV, cost int) *Directory {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Directory{kv: kv, cost: cost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *Directory) load(ctx context.Context) map[string]User {
	users := map[string]User{}
	if _, err := store.LoadJSON(ctx, d.kv, store.KeyUsers, &users); err != nil {
		logging.PersistenceError(ctx, "load", store.KeyUsers, err)
		return map[string]User{}
	}
	return users
}

// Verify checks a password. Unknown emails and wrong passwords both return
// ErrInvalidCredentials after a bcrypt comparison.
func (d *Directory) Verify(ctx context.Context, email, password string) (User, error) {
	d.mu.Lock()
	users := d.load(ctx)
	d.mu.Unlock()

	email = normalizeEmail(email)
	for _, u := range users {
		if normalizeEmail(u.Email) != email {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			return User{}, ErrInvalidCredentials
		}
		return u, nil
	}

	_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
	return User{}, ErrInvalidCredentials
}

// Create registers a user. The whole table is rewritten; a failed write is
// returned to the caller since the account would otherwise vanish.
func (d *Directory) Create(ctx context.Context, name, email, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := randomID("usr_", 10)
	if err != nil {
		return User{}, fmt.Errorf("create user id: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	users := d.load(ctx)
	key := normalizeEmail(email)
	for _, u := range users {
		if normalizeEmail(u.Email) == key {
			return User{}, ErrEmailTaken
		}
	}

	u := User{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	users[id] = u
	if err := store.SaveJSON(ctx, d.kv, store.KeyUsers, users); err != nil {
		return User{}, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// Count returns the number of registered users.
func (d *Directory) Count(ctx context.Context) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.load(ctx))
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomID(prefix string, n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = idAlphabet[int(b[i])%len(idAlphabet)]
	}
	return prefix + string(b), nil
}
