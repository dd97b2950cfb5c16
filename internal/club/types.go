package club

import (
	"database/sql"
	"errors"
	"sync"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// timestampLayout is the batch creation timestamp format. Nanoseconds are
// zero-padded to a fixed width, so lexicographic order on the stored strings
// always equals chronological order; UndoLastMatch relies on this when it
// selects MAX(created_at). RFC3339Nano would drop trailing zeros and break
// the ordering for whole-second timestamps.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrNoParticipants is returned when a match is recorded with nobody selected.
	ErrNoParticipants = errors.New("no participants selected")
	// ErrWinnerLoserOverlap is returned when a player appears as both winner and loser.
	ErrWinnerLoserOverlap = errors.New("player listed as both winner and loser")
	// ErrLedgerEmpty is returned by UndoLastMatch when there is nothing to undo.
	ErrLedgerEmpty = errors.New("match ledger is empty")
)

// PlayerInfo represents a roster entry.
type PlayerInfo struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
}

// MatchResult is one row of the append-only match ledger. A single recorded
// match inserts one row per participant; all rows of the batch share the same
// CreatedAt value, which is the unit of "one registered match" for undo.
type MatchResult struct {
	ID         string `json:"id"`
	GameDate   string `json:"game_date"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	IsWin      int    `json:"is_win"`
	Memo       string `json:"memo"`
	CreatedAt  string `json:"created_at"`
}

// PlayerRecord is the per-player win/games aggregation feeding the rating service.
type PlayerRecord struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Wins       int    `json:"wins"`
	Games      int    `json:"games"`
}
