package membership

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new membership Store over the shared club database.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// Submit validates the intake form and writes a PENDING request. The term
// number is computed from the transfer date's year against the club's
// founding year. Nothing is written when validation fails.
func (s *store) Submit(app Application) (*Request, error) {
	required := []string{app.StudentName, app.StudentIDNumber, app.PlayerName, app.Email, app.TransferName, app.TransferDate}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return nil, ErrMissingFields
		}
	}
	if !strings.Contains(app.Email, emailDomain) {
		return nil, ErrInvalidEmail
	}
	transferDate, err := time.Parse("2006-01-02", app.TransferDate)
	if err != nil {
		return nil, fmt.Errorf("invalid transfer date %q: %w", app.TransferDate, err)
	}
	termNumber := transferDate.Year() - epochYear

	req := &Request{
		ID:              uuid.NewString(),
		StudentName:     app.StudentName,
		StudentIDNumber: app.StudentIDNumber,
		PlayerName:      app.PlayerName,
		Faculty:         app.Faculty,
		Gender:          app.Gender,
		Email:           app.Email,
		TransferName:    app.TransferName,
		TransferDate:    app.TransferDate,
		TermNumber:      termNumber,
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339Nano),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO membership_requests
			(id, student_name, student_id_number, player_name, faculty, gender, email, transfer_name, transfer_date, term_number, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, req.ID, req.StudentName, req.StudentIDNumber, req.PlayerName, req.Faculty, req.Gender,
		req.Email, req.TransferName, req.TransferDate, req.TermNumber, req.Status, req.CreatedAt)
	if err != nil {
		log.Error("Failed to insert membership request", "error", err)
		return nil, err
	}

	log.Info("Membership request submitted", "requestID", req.ID, "term", req.TermNumber)
	return req, nil
}

// ListPending returns PENDING requests, newest first.
func (s *store) ListPending() ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, student_name, student_id_number, player_name, faculty, gender, email, transfer_name, transfer_date, term_number, status, created_at
		FROM membership_requests
		WHERE status = ?
		ORDER BY created_at DESC
	`, StatusPending)
	if err != nil {
		log.Error("Failed to query pending requests", "error", err)
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var r Request
		if err := rows.Scan(&r.ID, &r.StudentName, &r.StudentIDNumber, &r.PlayerName, &r.Faculty, &r.Gender,
			&r.Email, &r.TransferName, &r.TransferDate, &r.TermNumber, &r.Status, &r.CreatedAt); err != nil {
			log.Error("Failed to scan membership request row", "error", err)
			continue
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *store) getForUpdate(tx *sql.Tx, requestID string) (*Request, error) {
	var r Request
	err := tx.QueryRow(`
		SELECT id, student_name, student_id_number, player_name, faculty, gender, email, transfer_name, transfer_date, term_number, status, created_at
		FROM membership_requests WHERE id = ?
	`, requestID).Scan(&r.ID, &r.StudentName, &r.StudentIDNumber, &r.PlayerName, &r.Faculty, &r.Gender,
		&r.Email, &r.TransferName, &r.TransferDate, &r.TermNumber, &r.Status, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, ErrNotPending
	}
	return &r, nil
}

// Approve adds the applicant to the active roster, records the fixed joining
// fee as income, and marks the request APPROVED. The three writes happen in
// one transaction. Terminal requests cannot be approved again.
func (s *store) Approve(requestID string) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	req, err := s.getForUpdate(tx, requestID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	_, err = tx.Exec(
		"INSERT INTO players (id, student_id, name, is_active) VALUES (?, ?, ?, 1)",
		uuid.NewString(), req.StudentIDNumber, req.PlayerName,
	)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert player: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO transactions (id, type, category, amount, description, created_by, created_at)
		VALUES (?, 'IN', 'membership fee', ?, ?, 'admin approval', ?)
	`, uuid.NewString(), membershipFee, "new member: "+req.StudentName, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	_, err = tx.Exec("UPDATE membership_requests SET status = ? WHERE id = ?", StatusApproved, requestID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	req.Status = StatusApproved
	log.Info("Membership request approved", "requestID", requestID, "player", req.PlayerName)
	return req, nil
}

// Reject marks a PENDING request REJECTED. No roster or ledger side effects.
func (s *store) Reject(requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if _, err := s.getForUpdate(tx, requestID); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.Exec("UPDATE membership_requests SET status = ? WHERE id = ?", StatusRejected, requestID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info("Membership request rejected", "requestID", requestID)
	return nil
}

// ListTransactions returns the finance ledger, newest first.
func (s *store) ListTransactions() ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, type, category, amount, description, created_by, created_at
		FROM transactions ORDER BY created_at DESC
	`)
	if err != nil {
		log.Error("Failed to query transactions", "error", err)
		return nil, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.Category, &t.Amount, &t.Description, &t.CreatedBy, &t.CreatedAt); err != nil {
			log.Error("Failed to scan transaction row", "error", err)
			continue
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
