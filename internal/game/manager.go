package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/keio-howl/howlhub/internal/club"
)

// Manager owns at most one live session. The dashboard is operated by a
// single GM, but the HTTP server itself is concurrent, so access is
// serialized here.
type Manager struct {
	mu      sync.Mutex
	session *Session
	rng     *rand.Rand
}

// NewManager creates a manager with a time-seeded shuffle source.
func NewManager() *Manager {
	return &Manager{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewManagerWithRand creates a manager with the given source, for tests that
// need deterministic role assignment.
func NewManagerWithRand(rng *rand.Rand) *Manager {
	return &Manager{rng: rng}
}

// Start opens a new session, discarding any previous one.
func (m *Manager) Start(participants []club.PlayerInfo, roleCounts map[Role]int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil && m.session.Phase != PhaseResult {
		log.Warn("Discarding unfinished session", "phase", m.session.Phase, "turn", m.session.Turn)
	}
	session, err := NewSession(participants, roleCounts, m.rng)
	if err != nil {
		return nil, err
	}
	m.session = session
	log.Info("Session started", "participants", len(participants))
	return session, nil
}

// Current returns the live session, or ErrNoSession.
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ErrNoSession
	}
	return m.session, nil
}

// Reset discards all session state.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		log.Info("Session discarded", "phase", m.session.Phase, "turn", m.session.Turn)
	}
	m.session = nil
}

// WithSession runs fn against the live session under the manager lock, so a
// read-modify-write from an HTTP handler cannot interleave with another.
func (m *Manager) WithSession(fn func(*Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ErrNoSession
	}
	return fn(m.session)
}
