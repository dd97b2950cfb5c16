package membership

import (
	"sync"
)

// MockStore is a mock implementation of the membership Store for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	SubmitFunc           func(app Application) (*Request, error)
	ListPendingFunc      func() ([]Request, error)
	ApproveFunc          func(requestID string) (*Request, error)
	RejectFunc           func(requestID string) error
	ListTransactionsFunc func() ([]Transaction, error)

	// Call records
	SubmitCalls  []Application
	ApproveCalls []string
	RejectCalls  []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmitCalls = nil
	m.ApproveCalls = nil
	m.RejectCalls = nil
}

func (m *MockStore) Submit(app Application) (*Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmitCalls = append(m.SubmitCalls, app)
	if m.SubmitFunc != nil {
		return m.SubmitFunc(app)
	}
	return &Request{Status: StatusPending}, nil
}

func (m *MockStore) ListPending() ([]Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc()
	}
	return nil, nil
}

func (m *MockStore) Approve(requestID string) (*Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApproveCalls = append(m.ApproveCalls, requestID)
	if m.ApproveFunc != nil {
		return m.ApproveFunc(requestID)
	}
	return &Request{ID: requestID, Status: StatusApproved}, nil
}

func (m *MockStore) Reject(requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RejectCalls = append(m.RejectCalls, requestID)
	if m.RejectFunc != nil {
		return m.RejectFunc(requestID)
	}
	return nil
}

func (m *MockStore) ListTransactions() ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc()
	}
	return nil, nil
}
