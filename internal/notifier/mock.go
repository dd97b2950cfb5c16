package notifier

import (
	"sync"

	"github.com/keio-howl/howlhub/internal/rating"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendResultNotificationFunc func(record ResultRecord, dryRun bool) error
	SendMembershipApprovedFunc func(playerName string, termNumber int, dryRun bool) error
	SendLeaderboardFunc        func(entries []rating.Entry, dryRun bool) error

	// Call records
	SendResultNotificationCalls []ResultRecord
	SendMembershipApprovedCalls []struct {
		PlayerName string
		TermNumber int
	}
	SendLeaderboardCalls [][]rating.Entry
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendMembershipApprovedCalls = nil
	m.SendLeaderboardCalls = nil
}

func (m *Mock) SendResultNotification(record ResultRecord, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, record)
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(record, dryRun)
	}
	return nil
}

func (m *Mock) SendMembershipApproved(playerName string, termNumber int, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMembershipApprovedCalls = append(m.SendMembershipApprovedCalls, struct {
		PlayerName string
		TermNumber int
	}{playerName, termNumber})
	if m.SendMembershipApprovedFunc != nil {
		return m.SendMembershipApprovedFunc(playerName, termNumber, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(entries []rating.Entry, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, entries)
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(entries, dryRun)
	}
	return nil
}
