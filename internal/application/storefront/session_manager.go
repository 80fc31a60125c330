package storefront

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
)

// DefaultSessionIdleTTL is how long an untouched session is kept
const DefaultSessionIdleTTL = 30 * time.Minute

// SessionManagerConfig holds session lifecycle settings
type SessionManagerConfig struct {
	IdleTTL     time.Duration
	MaxSessions int // 0 means unlimited
	Session     SessionConfig
}

// SessionManager owns the in-memory sessions. Sessions live for the process
// lifetime at most and are evicted after IdleTTL without intents.
type SessionManager struct {
	cfg    SessionManagerConfig
	deps   SessionDeps
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a SessionManager
func NewSessionManager(cfg SessionManagerConfig, deps SessionDeps) *SessionManager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultSessionIdleTTL
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &SessionManager{
		cfg:      cfg,
		deps:     deps,
		logger:   deps.Logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session
func (m *SessionManager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, shared.ErrTooManySessions
	}

	id := uuid.NewString()
	session := NewSession(id, m.cfg.Session, m.deps)
	m.sessions[id] = session

	m.logger.Debug("Session created", zap.String("session_id", id), zap.Int("active", len(m.sessions)))
	return session, nil
}

// Get returns the session with the given id
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, shared.ErrSessionNotFound
	}
	return session, nil
}

// Len returns the number of live sessions
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle since before now-IdleTTL and returns how many
// were removed.
func (m *SessionManager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	var evicted []*Session
	for id, session := range m.sessions {
		if session.LastActive().Before(cutoff) {
			evicted = append(evicted, session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, session := range evicted {
		session.Close()
	}
	if len(evicted) > 0 {
		m.logger.Info("Idle sessions evicted", zap.Int("evicted", len(evicted)), zap.Int("active", m.Len()))
	}
	return len(evicted)
}

// ReconcileAll reconciles every session with the current catalog
func (m *SessionManager) ReconcileAll() {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.mu.RUnlock()

	for _, session := range sessions {
		session.Reconcile()
	}
}

// CloseAll stops every session's timers and drops them
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
