package membership

// Store defines the interface for the membership workflow.
type Store interface {
	Submit(app Application) (*Request, error)
	ListPending() ([]Request, error)
	Approve(requestID string) (*Request, error)
	Reject(requestID string) error
	ListTransactions() ([]Transaction, error)
}
