package pool

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"helios/internal/monitor"

	"github.com/google/uuid"
)

// Manager owns the desktop instance table and the active session registry.
// Every mutation runs under one mutex covering both tables, so "find an
// available instance, mark it, register the session" is a single atomic step
// and no two allocations can ever receive the same instance.
type Manager struct {
	mu        sync.Mutex
	cfg       Config
	logger    *slog.Logger
	recorder  Recorder
	now       func() time.Time
	instances []*DesktopInstance
	byID      map[string]*DesktopInstance
	sessions  map[string]*Session
}

func NewManager(cfg Config, recorder Recorder, logger *slog.Logger) *Manager {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &Manager{
		cfg:      cfg,
		logger:   logger.With("component", "desktop-pool"),
		recorder: recorder,
		now:      time.Now,
	}
}

// Initialize creates capacity instances, all available. Calling it twice
// without a teardown is a startup bug and fails with ErrAlreadyInitialized.
func (m *Manager) Initialize(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidArgument, capacity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.instances != nil {
		return ErrAlreadyInitialized
	}

	now := m.now()
	m.instances = make([]*DesktopInstance, 0, capacity)
	m.byID = make(map[string]*DesktopInstance, capacity)
	m.sessions = make(map[string]*Session)

	for i := range capacity {
		inst := &DesktopInstance{
			ID:        fmt.Sprintf("desktop-%03d", i),
			Status:    InstanceAvailable,
			CreatedAt: now,
		}
		m.instances = append(m.instances, inst)
		m.byID[inst.ID] = inst
	}

	monitor.PoolDesktopsTotal.Set(float64(capacity))
	monitor.PoolDesktopsAvailable.Set(float64(capacity))

	m.logger.Info("Desktop pool initialized", "capacity", capacity, "session_ttl", m.cfg.SessionTTL)
	return nil
}

// Allocate claims the first available instance for userID and returns the new
// session. Fails fast with ErrPoolExhausted when nothing is free.
func (m *Manager) Allocate(userID string) (Session, error) {
	if userID == "" {
		return Session{}, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}

	start := time.Now()
	m.mu.Lock()

	if m.instances == nil {
		m.mu.Unlock()
		return Session{}, ErrNotInitialized
	}

	var inst *DesktopInstance
	for _, candidate := range m.instances {
		if candidate.Status == InstanceAvailable {
			inst = candidate
			break
		}
	}
	if inst == nil {
		m.mu.Unlock()
		monitor.PoolExhaustedTotal.Inc()
		return Session{}, ErrPoolExhausted
	}

	now := m.now()
	sess := &Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		DesktopID:    inst.ID,
		Status:       SessionActive,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.cfg.SessionTTL),
		LastActiveAt: now,
	}

	inst.Status = InstanceAllocated
	inst.AssignedSessionID = sess.ID
	m.sessions[sess.ID] = sess

	snapshot := *sess
	m.updateGaugesLocked()
	m.mu.Unlock()

	monitor.PoolAllocationLatency.Observe(time.Since(start).Seconds())
	m.recorder.Record(Event{
		Type:      EventAllocated,
		SessionID: snapshot.ID,
		UserID:    snapshot.UserID,
		DesktopID: snapshot.DesktopID,
		Timestamp: now,
	})

	m.logger.Info("Session allocated",
		"session_id", snapshot.ID,
		"user_id", snapshot.UserID,
		"desktop_id", snapshot.DesktopID,
	)
	return snapshot, nil
}

// Release ends the session and returns its instance to the pool. A second
// Release on the same id reports ErrSessionNotFound and changes nothing.
func (m *Manager) Release(sessionID string) error {
	ev, err := m.reclaim(sessionID, SessionEnded, EventReleased)
	if err != nil {
		return err
	}

	m.recorder.Record(ev)
	m.logger.Info("Session released", "session_id", ev.SessionID, "desktop_id", ev.DesktopID)
	return nil
}

// Heartbeat stamps last_active_at. It does not extend expires_at; expiry is
// absolute from creation.
func (m *Manager) Heartbeat(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	sess.LastActiveAt = m.now()
	return nil
}

// SweepExpired reclaims every active session whose deadline has passed and
// returns the number reclaimed. Candidates are collected under the lock, but
// each reclamation reacquires it, so the sweep never holds the pool for the
// whole scan and allocations interleave freely.
func (m *Manager) SweepExpired() int {
	m.mu.Lock()
	now := m.now()
	var expired []string
	for id, sess := range m.sessions {
		if now.After(sess.ExpiresAt) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	reclaimed := 0
	for _, id := range expired {
		ev, err := m.reclaim(id, SessionExpired, EventExpired)
		if err != nil {
			// Released concurrently between the scan and now. Not ours to count.
			continue
		}

		m.recorder.Record(ev)
		monitor.SessionsExpiredTotal.Inc()
		m.logger.Info("Session expired", "session_id", ev.SessionID, "desktop_id", ev.DesktopID)
		reclaimed++
	}

	return reclaimed
}

// reclaim is the shared release/expire transition: remove the session from the
// active registry and reset its instance, atomically.
func (m *Manager) reclaim(sessionID string, status SessionStatus, evType EventType) (Event, error) {
	if sessionID == "" {
		return Event{}, fmt.Errorf("%w: empty session id", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return Event{}, ErrSessionNotFound
	}

	now := m.now()
	sess.Status = status
	delete(m.sessions, sessionID)

	inst := m.byID[sess.DesktopID]
	inst.Status = InstanceAvailable
	inst.AssignedSessionID = ""
	inst.LastReleasedAt = now

	m.updateGaugesLocked()

	return Event{
		Type:      evType,
		SessionID: sess.ID,
		UserID:    sess.UserID,
		DesktopID: sess.DesktopID,
		Timestamp: now,
	}, nil
}

// Stats returns a consistent utilization snapshot.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{Total: len(m.instances), ActiveSessions: len(m.sessions)}
	for _, inst := range m.instances {
		switch inst.Status {
		case InstanceAvailable:
			s.Available++
		case InstanceAllocated:
			s.Allocated++
		}
	}
	return s
}

func (m *Manager) GetSession(sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("%w: empty session id", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *sess, nil
}

// ListSessions returns active sessions ordered by creation time, oldest first.
// userID narrows the result to one user when non-empty. The slice is a fresh
// snapshot, not a live view.
func (m *Manager) ListSessions(userID string) []Session {
	m.mu.Lock()
	sessions := make([]Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		if userID != "" && sess.UserID != userID {
			continue
		}
		sessions = append(sessions, *sess)
	}
	m.mu.Unlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions
}

func (m *Manager) updateGaugesLocked() {
	available := 0
	for _, inst := range m.instances {
		if inst.Status == InstanceAvailable {
			available++
		}
	}
	monitor.PoolDesktopsAvailable.Set(float64(available))
	monitor.SessionsActiveCount.Set(float64(len(m.sessions)))
}
