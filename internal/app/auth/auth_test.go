package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"eventflow/internal/store"
)

func newTestManager(t *testing.T, kv store.KV, delay time.Duration) (*Manager, *Directory) {
	t.Helper()
	dir := NewDirectory(kv, bcrypt.MinCost)
	m := NewManager(context.Background(), Config{
		Users:    dir,
		Sessions: store.WithPrefix(kv, "tab-1"),
		Delay:    delay,
	})
	return m, dir
}

func TestLoginWrongPasswordIsIndistinguishable(t *testing.T) {
	ctx := context.Background()
	m, dir := newTestManager(t, store.NewMemory(), 0)
	_, err := dir.Create(ctx, "X", "x@x.com", "Correct1pass")
	require.NoError(t, err)

	_, wrongPassword := m.Login(ctx, "x@x.com", "bad")
	_, unknownUser := m.Login(ctx, "nobody@x.com", "bad")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, "Invalid email or password.", wrongPassword.Error())
	assert.Equal(t, StatusAnonymous, m.Status())
}

func TestSignupLogsIn(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	m, dir := newTestManager(t, kv, 0)

	s, err := m.Signup(ctx, "Ada Lovelace", "ada@example.com", "Analytic1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.User.ID, "usr_"))
	assert.Len(t, s.User.ID, len("usr_")+10)
	assert.True(t, strings.HasPrefix(s.Token, "tok_mock_"))
	assert.Equal(t, StatusAuthenticated, m.Status())
	assert.Equal(t, 1, dir.Count(ctx))

	_, err = m.Signup(ctx, "Imposter", "ADA@example.com ", "Analytic1")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Passwords are never stored in the clear.
	raw, err := kv.Get(ctx, store.KeyUsers)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Analytic1")
}

func TestSessionSurvivesRestartAndLogout(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	m, _ := newTestManager(t, kv, 0)
	s, err := m.Signup(ctx, "Ada", "ada@example.com", "Analytic1")
	require.NoError(t, err)

	restored, _ := newTestManager(t, kv, 0)
	u, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, s.User, u)

	got, err := restored.Authenticate(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User, got)

	restored.Logout(ctx)
	assert.Equal(t, StatusAnonymous, restored.Status())
	_, err = restored.Authenticate(s.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	again, _ := newTestManager(t, kv, 0)
	_, ok = again.Current()
	assert.False(t, ok)
}

func TestLoginAfterSignupInAnotherProfile(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	dir := NewDirectory(kv, bcrypt.MinCost)

	a := NewManager(ctx, Config{Users: dir, Sessions: store.WithPrefix(kv, "a")})
	b := NewManager(ctx, Config{Users: dir, Sessions: store.WithPrefix(kv, "b")})

	_, err := a.Signup(ctx, "Ada", "ada@example.com", "Analytic1")
	require.NoError(t, err)
	_, ok := b.Current()
	assert.False(t, ok, "sessions are per profile")

	_, err = b.Login(ctx, "ada@example.com", "Analytic1")
	require.NoError(t, err)
	assert.Equal(t, StatusAuthenticated, b.Status())
}

func TestLoadingWhileInFlight(t *testing.T) {
	m, dir := newTestManager(t, store.NewMemory(), 200*time.Millisecond)
	_, err := dir.Create(context.Background(), "X", "x@x.com", "Correct1pass")
	require.NoError(t, err)
	assert.False(t, m.Loading())

	done := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "x@x.com", "Correct1pass")
		done <- err
	}()

	assert.Eventually(t, m.Loading, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatusLoading, m.Status())
	require.NoError(t, <-done)
	assert.False(t, m.Loading())
	assert.Equal(t, StatusAuthenticated, m.Status())
}

func TestLoginCancelled(t *testing.T) {
	m, _ := newTestManager(t, store.NewMemory(), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Login(ctx, "x@x.com", "whatever")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, m.Loading())
}

func TestJWTIssuer(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	issuer := NewJWTIssuer("s3cret", time.Hour)
	m := NewManager(ctx, Config{Users: NewDirectory(kv, bcrypt.MinCost), Sessions: kv, Issuer: issuer})

	s, err := m.Signup(ctx, "Ada", "ada@example.com", "Analytic1")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(s.Token, "."))

	_, err = m.Authenticate(s.Token)
	require.NoError(t, err)

	other := NewJWTIssuer("different", time.Hour)
	forged, err := other.Issue(s.User)
	require.NoError(t, err)
	assert.ErrorIs(t, issuer.Verify(forged), ErrUnauthorized)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Authenticate(s.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
