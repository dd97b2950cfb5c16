package notifier

import (
	"github.com/keio-howl/howlhub/internal/rating"
)

// ResultRecord describes a committed match result for notification purposes.
// It is also the payload published on the notify-result topic.
type ResultRecord struct {
	GameDate    string   `json:"game_date" msgpack:"game_date"`
	Memo        string   `json:"memo" msgpack:"memo"`
	WinningTeam string   `json:"winning_team" msgpack:"winning_team"`
	WinnerNames []string `json:"winner_names" msgpack:"winner_names"`
	LoserNames  []string `json:"loser_names" msgpack:"loser_names"`
}

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For committed GM session results
	SendResultNotification(record ResultRecord, dryRun bool) error
	// For approved membership applications
	SendMembershipApproved(playerName string, termNumber int, dryRun bool) error
	// For posting the current ranking to the club channel
	SendLeaderboard(entries []rating.Entry, dryRun bool) error
}
