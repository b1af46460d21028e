package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kgexplorer/application/loaders"
	"kgexplorer/application/store"
	"kgexplorer/infrastructure/cache"
	apperrors "kgexplorer/pkg/errors"
	"kgexplorer/pkg/observability"
)

// DefaultIdleTTL is how long a session may sit untouched before the
// sweeper reclaims it.
const DefaultIdleTTL = 2 * time.Hour

// PersisterFactory returns the persister backing one session's durable
// state. A nil factory leaves sessions unpersisted.
type PersisterFactory func(sessionID string) store.Persister

// Manager owns the live sessions. Sessions are created on demand, looked
// up by id and reclaimed after an idle period.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	api         loaders.API
	detailCache *cache.DetailCache
	persisters  PersisterFactory
	idleTTL     time.Duration
	now         func() time.Time
	metrics     *observability.Metrics
	logger      *zap.Logger

	stop chan struct{}
	once sync.Once
}

// NewManager creates a session manager.
func NewManager(api loaders.API, detailCache *cache.DetailCache, persisters PersisterFactory, idleTTL time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Manager {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:    make(map[string]*Session),
		api:         api,
		detailCache: detailCache,
		persisters:  persisters,
		idleTTL:     idleTTL,
		now:         time.Now,
		metrics:     metrics,
		logger:      logger,
		stop:        make(chan struct{}),
	}
}

// Create starts a new session and returns it.
func (m *Manager) Create() *Session {
	id := uuid.New().String()

	var persister store.Persister
	if m.persisters != nil {
		persister = m.persisters(id)
	}
	s := newSession(id, persister, m.api, m.detailCache, m.metrics, m.logger)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.metrics.SessionOpened()
	m.logger.Info("session created", zap.String("session_id", id))
	return s
}

// Get returns a live session and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("session not found")
	}
	s.lastActive = m.now().UTC()
	return s, nil
}

// Delete removes a session immediately.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.metrics.SessionClosed()
		m.logger.Info("session deleted", zap.String("session_id", id))
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SetIdleTTL changes the idle window applied by subsequent sweeps.
// Non-positive values are ignored.
func (m *Manager) SetIdleTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.idleTTL = ttl
	m.mu.Unlock()
	m.logger.Info("session idle ttl updated", zap.Duration("idle_ttl", ttl))
}

// StartSweeper reclaims idle sessions on the given interval until Stop.
func (m *Manager) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweeper.
func (m *Manager) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Manager) sweep() {
	m.mu.Lock()
	cutoff := m.now().UTC().Add(-m.idleTTL)
	var expired []string
	for id, s := range m.sessions {
		if s.lastActive.Before(cutoff) {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.metrics.SessionClosed()
		m.logger.Info("session expired", zap.String("session_id", id))
	}
}
