package club

// ClubStore defines the interface for interacting with the club's data.
type ClubStore interface {
	AddPlayer(playerID, studentID, name string) error
	GetActivePlayers() ([]PlayerInfo, error)
	GetAllPlayers() ([]PlayerInfo, error)
	DeactivatePlayer(playerID string) error
	IsKnownPlayer(playerID string) bool
	RecordMatch(gameDate, memo string, winners, losers []string) (string, error)
	UndoLastMatch() (string, int, error)
	GetMatchResults() ([]MatchResult, error)
	GetPlayerRecords() ([]PlayerRecord, error)
	Clear()
}
