package identity

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryRepo struct {
	mu     sync.Mutex
	users  map[string]*User
	hashes map[string]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:  make(map[string]*User),
		hashes: make(map[string]string),
	}
}

func (r *memoryRepo) Create(ctx context.Context, user *User, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return ErrUserExists
	}
	u := *user
	r.users[user.Username] = &u
	r.hashes[user.Username] = passwordHash
	return nil
}

func (r *memoryRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryRepo) GetCredentials(ctx context.Context, username string) (*User, string, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return u, r.hashes[username], nil
}

func (r *memoryRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.LastLogin = at
			return nil
		}
	}
	return ErrUserNotFound
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	svc := NewService(repo, ServiceConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, slog.Default())
	return svc, repo
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	_, hash, err := repo.GetCredentials(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2secret", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2secret")))
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "", "hunter2secret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "", "othersecret1")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "", "", "hunter2secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(context.Background(), "bob", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAndVerifyToken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "", "hunter2secret")
	require.NoError(t, err)

	token, loggedIn, err := svc.Login(ctx, "alice", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.False(t, loggedIn.LastLogin.IsZero())

	subject, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "", "hunter2secret")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "hunter2secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestService()

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		_, err := svc.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "", "hunter2secret")
	require.NoError(t, err)

	// Issue a token in the past so it is expired at verification time.
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.generateToken(user)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	svcA, _ := newTestService()
	svcB := NewService(newMemoryRepo(), ServiceConfig{
		JWTSecret:  "different-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, slog.Default())

	user, err := svcA.Register(context.Background(), "alice", "", "hunter2secret")
	require.NoError(t, err)

	token, err := svcA.generateToken(user)
	require.NoError(t, err)

	_, err = svcB.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
