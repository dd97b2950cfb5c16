package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a no-op Metrics implementation that records call counts.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	MatchesRecordedCount     int
	MatchesUndoneCount       int
	SessionsStartedCount     int
	SessionsCompletedCount   int
	MembershipRequestsCount  int
	MembershipApprovalsCount int
	SlackNotifSentCount      int
	SlackNotifFailedCount    int
	StartupTime              float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) IncMatchesRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesRecordedCount++
}

func (m *Mock) IncMatchesUndone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesUndoneCount++
}

func (m *Mock) IncSessionsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsStartedCount++
}

func (m *Mock) IncSessionsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsCompletedCount++
}

func (m *Mock) IncMembershipRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MembershipRequestsCount++
}

func (m *Mock) IncMembershipApprovals() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MembershipApprovalsCount++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifSentCount++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifFailedCount++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTime = duration
}
