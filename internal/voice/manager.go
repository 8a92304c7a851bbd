package voice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/nearby/internal/logger"
)

// Manager owns every voice session of the process.
type Manager struct {
	backend     Backend
	cfg         Config
	idleTimeout time.Duration
	logger      logger.Logger
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(backend Backend, cfg Config, idleTimeout time.Duration, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	if idleTimeout <= 0 {
		idleTimeout = 10 * time.Minute
	}
	return &Manager{
		backend:     backend,
		cfg:         cfg,
		idleTimeout: idleTimeout,
		logger:      log,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Start creates and opens a session. A session whose connection failed is
// still registered so the client can read the error, until closed.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	s := newSession(uuid.NewString(), m.backend, m.cfg, m.logger, m.now)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	if err := s.Open(ctx); err != nil {
		return s, err
	}
	m.logger.Info("voice session started", logger.String("id", s.ID()))
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close ends and forgets a session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s.Close()
}

// Reap closes sessions idle for longer than the idle timeout and returns
// how many were removed.
func (m *Manager) Reap() int {
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		if err := s.Close(); err != nil {
			m.logger.Debug("error closing idle voice session", logger.String("id", s.ID()), logger.Error(err))
		}
	}
	return len(stale)
}

// CloseAll is called on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		_ = s.Close()
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
