package club

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

// AddPlayer inserts a new roster entry, or reactivates/renames an existing one.
func (s *store) AddPlayer(playerID, studentID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return err
	}

	if !exists {
		_, err = s.db.Exec(
			"INSERT INTO players (id, student_id, name, is_active) VALUES (?, ?, ?, 1)",
			playerID, studentID, name,
		)
		if err != nil {
			log.Error("Failed to add player", "error", err, "playerID", playerID)
			return err
		}
		log.Info("Added new player to the roster", "playerID", playerID, "name", name)
		return nil
	}

	_, err = s.db.Exec(
		"UPDATE players SET student_id = ?, name = ?, is_active = 1 WHERE id = ?",
		studentID, name, playerID,
	)
	if err != nil {
		log.Error("Failed to update player", "error", err, "playerID", playerID)
		return err
	}
	log.Info("Updated existing roster entry", "playerID", playerID, "name", name)
	return nil
}

// GetActivePlayers returns the active roster, sorted by name. This is the
// directory view consumed by the GM assistant and the membership surface.
func (s *store) GetActivePlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPlayers("SELECT id, student_id, name, is_active FROM players WHERE is_active = 1 ORDER BY name")
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPlayers("SELECT id, student_id, name, is_active FROM players ORDER BY name")
}

func (s *store) queryPlayers(query string) ([]PlayerInfo, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		log.Error("Failed to query players", "error", err)
		return nil, err
	}
	defer rows.Close()

	var players []PlayerInfo
	for rows.Next() {
		var p PlayerInfo
		var name sql.NullString
		if err := rows.Scan(&p.ID, &p.StudentID, &name, &p.IsActive); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		p.Name = name.String // handle NULL name from db
		players = append(players, p)
	}
	return players, rows.Err()
}

// DeactivatePlayer marks a roster entry inactive. Players are never deleted.
func (s *store) DeactivatePlayer(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE players SET is_active = 0 WHERE id = ?", playerID)
	if err != nil {
		log.Error("Failed to deactivate player", "error", err, "playerID", playerID)
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("player %s not found", playerID)
	}
	log.Info("Deactivated player", "playerID", playerID)
	return nil
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

// RecordMatch appends one ledger row per participant. All rows of the batch
// share a single creation timestamp; UndoLastMatch deletes by exact timestamp
// match, so the timestamp must be unique per batch (fixed-width nanoseconds).
// Validation happens before any write: an overlapping or empty participant
// set leaves the ledger untouched.
func (s *store) RecordMatch(gameDate, memo string, winners, losers []string) (string, error) {
	if len(winners) == 0 && len(losers) == 0 {
		return "", ErrNoParticipants
	}
	winnerSet := make(map[string]bool, len(winners))
	for _, id := range winners {
		winnerSet[id] = true
	}
	for _, id := range losers {
		if winnerSet[id] {
			return "", fmt.Errorf("%w: %s", ErrWinnerLoserOverlap, id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := time.Now().UTC().Format(timestampLayout)

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO match_results (id, game_date, player_id, is_win, memo, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return "", err
	}
	defer stmt.Close()

	insert := func(playerID string, isWin int) error {
		_, err := stmt.Exec(uuid.NewString(), gameDate, playerID, isWin, memo, createdAt)
		return err
	}
	for _, id := range winners {
		if err := insert(id, 1); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("failed to insert winner row: %w", err)
		}
	}
	for _, id := range losers {
		if err := insert(id, 0); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("failed to insert loser row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	log.Info("Recorded match", "winners", len(winners), "losers", len(losers), "createdAt", createdAt)
	return createdAt, nil
}

// UndoLastMatch deletes every ledger row sharing the most recent creation
// timestamp, i.e. the last recorded match as a whole. Returns the timestamp
// and the number of rows removed.
func (s *store) UndoLastMatch() (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastCreatedAt sql.NullString
	err := s.db.QueryRow("SELECT MAX(created_at) FROM match_results").Scan(&lastCreatedAt)
	if err != nil {
		log.Error("Failed to find last recorded match", "error", err)
		return "", 0, err
	}
	if !lastCreatedAt.Valid {
		return "", 0, ErrLedgerEmpty
	}

	res, err := s.db.Exec("DELETE FROM match_results WHERE created_at = ?", lastCreatedAt.String)
	if err != nil {
		log.Error("Failed to delete last match batch", "error", err, "createdAt", lastCreatedAt.String)
		return "", 0, err
	}
	affected, _ := res.RowsAffected()
	log.Info("Removed last recorded match", "createdAt", lastCreatedAt.String, "rows", affected)
	return lastCreatedAt.String, int(affected), nil
}

// GetMatchResults returns the full ledger, newest first.
func (s *store) GetMatchResults() ([]MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT mr.id, mr.game_date, mr.player_id, COALESCE(p.name, ''), mr.is_win, mr.memo, mr.created_at
		FROM match_results mr
		LEFT JOIN players p ON p.id = mr.player_id
		ORDER BY mr.created_at DESC
	`)
	if err != nil {
		log.Error("Failed to query match results", "error", err)
		return nil, err
	}
	defer rows.Close()

	var results []MatchResult
	for rows.Next() {
		var r MatchResult
		if err := rows.Scan(&r.ID, &r.GameDate, &r.PlayerID, &r.PlayerName, &r.IsWin, &r.Memo, &r.CreatedAt); err != nil {
			log.Error("Failed to scan match result row", "error", err)
			continue
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetPlayerRecords aggregates the ledger into per-player win/games counts,
// keyed by player identifier.
func (s *store) GetPlayerRecords() ([]PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT mr.player_id, COALESCE(p.name, ''), SUM(mr.is_win), COUNT(*)
		FROM match_results mr
		LEFT JOIN players p ON p.id = mr.player_id
		GROUP BY mr.player_id, p.name
	`)
	if err != nil {
		log.Error("Failed to query player records", "error", err)
		return nil, err
	}
	defer rows.Close()

	var records []PlayerRecord
	for rows.Next() {
		var r PlayerRecord
		if err := rows.Scan(&r.PlayerID, &r.PlayerName, &r.Wins, &r.Games); err != nil {
			log.Error("Failed to scan player record row", "error", err)
			continue
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"match_results", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}
