package club

import (
	"sync"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc        func(playerID, studentID, name string) error
	GetActivePlayersFunc func() ([]PlayerInfo, error)
	GetAllPlayersFunc    func() ([]PlayerInfo, error)
	DeactivatePlayerFunc func(playerID string) error
	IsKnownPlayerFunc    func(playerID string) bool
	RecordMatchFunc      func(gameDate, memo string, winners, losers []string) (string, error)
	UndoLastMatchFunc    func() (string, int, error)
	GetMatchResultsFunc  func() ([]MatchResult, error)
	GetPlayerRecordsFunc func() ([]PlayerRecord, error)
	ClearFunc            func()

	// Call records
	AddPlayerCalls []struct {
		PlayerID  string
		StudentID string
		Name      string
	}
	DeactivatePlayerCalls []string
	RecordMatchCalls      []struct {
		GameDate string
		Memo     string
		Winners  []string
		Losers   []string
	}
	UndoLastMatchCalls int
	ClearCalls         int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = nil
	m.DeactivatePlayerCalls = nil
	m.RecordMatchCalls = nil
	m.UndoLastMatchCalls = 0
	m.ClearCalls = 0
}

func (m *MockStore) AddPlayer(playerID, studentID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = append(m.AddPlayerCalls, struct {
		PlayerID  string
		StudentID string
		Name      string
	}{playerID, studentID, name})
	if m.AddPlayerFunc != nil {
		return m.AddPlayerFunc(playerID, studentID, name)
	}
	return nil
}

func (m *MockStore) GetActivePlayers() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetActivePlayersFunc != nil {
		return m.GetActivePlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) DeactivatePlayer(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeactivatePlayerCalls = append(m.DeactivatePlayerCalls, playerID)
	if m.DeactivatePlayerFunc != nil {
		return m.DeactivatePlayerFunc(playerID)
	}
	return nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) RecordMatch(gameDate, memo string, winners, losers []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordMatchCalls = append(m.RecordMatchCalls, struct {
		GameDate string
		Memo     string
		Winners  []string
		Losers   []string
	}{gameDate, memo, winners, losers})
	if m.RecordMatchFunc != nil {
		return m.RecordMatchFunc(gameDate, memo, winners, losers)
	}
	return "", nil
}

func (m *MockStore) UndoLastMatch() (string, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UndoLastMatchCalls++
	if m.UndoLastMatchFunc != nil {
		return m.UndoLastMatchFunc()
	}
	return "", 0, nil
}

func (m *MockStore) GetMatchResults() ([]MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchResultsFunc != nil {
		return m.GetMatchResultsFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayerRecords() ([]PlayerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerRecordsFunc != nil {
		return m.GetPlayerRecordsFunc()
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
