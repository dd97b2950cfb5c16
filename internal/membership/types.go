package membership

import (
	"database/sql"
	"errors"
	"sync"
)

// store handles all database operations for the membership workflow.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Status of a membership request. APPROVED and REJECTED are terminal.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

const (
	// emailDomain is the institutional domain applicants must use.
	emailDomain = "@keio.jp"
	// epochYear anchors the cohort (term) number: term = transfer year - epoch.
	epochYear = 2022
	// membershipFee is the fixed joining fee recorded on approval, in yen.
	membershipFee = 5000
)

var (
	// ErrMissingFields is returned when a required application field is empty.
	ErrMissingFields = errors.New("all application fields are required")
	// ErrInvalidEmail is returned when the email is not on the institutional domain.
	ErrInvalidEmail = errors.New("email must be a " + emailDomain + " address")
	// ErrNotFound is returned when no request matches the given id.
	ErrNotFound = errors.New("membership request not found")
	// ErrNotPending is returned when approving or rejecting a request already
	// in a terminal state.
	ErrNotPending = errors.New("membership request is not pending")
)

// Application is the intake form payload.
type Application struct {
	StudentName     string `json:"student_name"`
	StudentIDNumber string `json:"student_id_number"`
	PlayerName      string `json:"player_name"`
	Faculty         string `json:"faculty"`
	Gender          string `json:"gender"`
	Email           string `json:"email"`
	TransferName    string `json:"transfer_name"`
	TransferDate    string `json:"transfer_date"` // YYYY-MM-DD
}

// Request is a stored membership request.
type Request struct {
	ID              string `json:"id"`
	StudentName     string `json:"student_name"`
	StudentIDNumber string `json:"student_id_number"`
	PlayerName      string `json:"player_name"`
	Faculty         string `json:"faculty"`
	Gender          string `json:"gender"`
	Email           string `json:"email"`
	TransferName    string `json:"transfer_name"`
	TransferDate    string `json:"transfer_date"`
	TermNumber      int    `json:"term_number"`
	Status          Status `json:"status"`
	CreatedAt       string `json:"created_at"`
}

// Transaction is one finance ledger entry.
type Transaction struct {
	ID          string `json:"id"`
	Type        string `json:"type"` // IN or OUT
	Category    string `json:"category"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
}
