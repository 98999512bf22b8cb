package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"helios/internal/eventbus"
	"helios/internal/exec"
	"helios/internal/identity"
	"helios/internal/pool"
	"helios/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryUserRepo struct {
	mu     sync.Mutex
	users  map[string]*identity.User
	hashes map[string]string
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		users:  make(map[string]*identity.User),
		hashes: make(map[string]string),
	}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *identity.User, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return identity.ErrUserExists
	}
	u := *user
	r.users[user.Username] = &u
	r.hashes[user.Username] = passwordHash
	return nil
}

func (r *memoryUserRepo) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryUserRepo) GetCredentials(ctx context.Context, username string) (*identity.User, string, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return u, r.hashes[username], nil
}

func (r *memoryUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

type nopBus struct{}

func (nopBus) Publish(ctx context.Context, sessionID string, event eventbus.Event) error {
	return nil
}

func (nopBus) Subscribe(ctx context.Context, sessionID string) (<-chan eventbus.Event, error) {
	ch := make(chan eventbus.Event)
	close(ch)
	return ch, nil
}

func newTestRouter(t *testing.T, capacity int) *gin.Engine {
	t.Helper()
	return newTestRouterWithBus(t, capacity, nopBus{})
}

func newTestRouterWithBus(t *testing.T, capacity int, bus eventbus.EventBus) *gin.Engine {
	t.Helper()
	return newTestRouterWith(t, capacity, bus, nil)
}

func newTestRouterWith(t *testing.T, capacity int, bus eventbus.EventBus, store AuditStore) *gin.Engine {
	t.Helper()

	logger := slog.Default()

	mgr := pool.NewManager(pool.Config{SessionTTL: time.Minute}, nil, logger)
	require.NoError(t, mgr.Initialize(capacity))

	ids := identity.NewService(newMemoryUserRepo(), identity.ServiceConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, logger)

	return NewRouter(RouterDeps{
		Pool:     mgr,
		Identity: ids,
		Executor: exec.NewExecutor(nil, 5*time.Second, logger),
		Displays: stream.NewRegistry("localhost", 5900),
		Bus:      bus,
		Audit:    store,
		Logger:   logger,
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Username: username,
		Password: "hunter2secret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: username,
		Password: "hunter2secret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, 1)

	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter(t, 1)

	for _, path := range []string{"/api/v1/sessions", "/api/v1/stats"} {
		w := doJSON(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/stats", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	r := newTestRouter(t, 1)
	registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: "alice",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDuplicateConflict(t *testing.T) {
	r := newTestRouter(t, 1)
	registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Username: "alice",
		Password: "hunter2secret",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t, 2)
	token := registerAndLogin(t, r, "alice")

	// Allocate.
	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var sess SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.NotEmpty(t, sess.ID)
	assert.NotEmpty(t, sess.DesktopID)
	assert.Equal(t, "active", sess.Status)

	// Fetch it back.
	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+sess.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Heartbeat.
	w = doJSON(t, r, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/heartbeat", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Display resolution for the streaming bridge.
	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+sess.ID+"/display", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var display DisplayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &display))
	assert.Equal(t, sess.DesktopID, display.DesktopID)
	assert.NotEmpty(t, display.VNCAddr)

	// List shows it.
	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list SessionListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Sessions, 1)

	// Release, then the session is gone.
	w = doJSON(t, r, http.MethodDelete, "/api/v1/sessions/"+sess.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/sessions/"+sess.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/"+sess.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPoolExhaustionMapsTo503(t *testing.T) {
	r := newTestRouter(t, 1)
	token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/sessions", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHeartbeatUnknownSession(t *testing.T) {
	r := newTestRouter(t, 1)
	token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions/no-such-id/heartbeat", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	r := newTestRouter(t, 3)
	token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Available)
	assert.Equal(t, 1, stats.Allocated)
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, stats.Total, stats.Available+stats.Allocated)
}

func TestExecEndpoint(t *testing.T) {
	r := newTestRouter(t, 1)
	token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/v1/exec", token, ExecRequest{Command: "echo hello"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ExecResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.ExitCode)
	assert.Equal(t, "hello", resp.Stdout)

	w = doJSON(t, r, http.MethodPost, "/api/v1/exec", token, ExecRequest{Command: "rm -rf /"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/exec", token, ExecRequest{Command: "ls ; reboot"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionsAreScopedToUser(t *testing.T) {
	r := newTestRouter(t, 4)
	aliceToken := registerAndLogin(t, r, "alice")
	bobToken := registerAndLogin(t, r, "bob")

	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions", aliceToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/v1/sessions", bobToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	for i, token := range []string{aliceToken, bobToken} {
		w = doJSON(t, r, http.MethodGet, "/api/v1/sessions", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var list SessionListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Len(t, list.Sessions, 1, fmt.Sprintf("user %d", i))
	}
}
