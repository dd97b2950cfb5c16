package rating

import (
	"math"
	"sort"

	"github.com/keio-howl/howlhub/internal/club"
)

// Tier represents a player's percentile-based reputation tier.
type Tier string

const (
	TierS      Tier = "S-Class (Top 10%)"
	TierA      Tier = "A-Class (Top 30%)"
	TierB      Tier = "B-Class (Top 60%)"
	TierRookie Tier = "Rookie"
)

// Entry is one leaderboard line.
type Entry struct {
	Rank       int     `json:"rank"`
	Tier       Tier    `json:"tier"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	Games      int     `json:"games"`
	exact      float64 // full-precision score, used for ranking only
}

// Score computes the reputation score for a player with the given win and
// games-played counts. The win rate is Laplace-smoothed (+1/+2) so that tiny
// samples cannot produce extreme ratings, then multiplied by ln(n+1)*100 so
// that volume of play raises confidence. Monotonically non-decreasing in wins
// for a fixed games count.
func Score(wins, games int) float64 {
	if games < 1 {
		return 0
	}
	return (float64(wins+1) / float64(games+2)) * math.Log(float64(games+1)) * 100
}

// TierFor maps a competition rank to a tier given the total player count.
// p = rank/total; band upper bounds are inclusive.
func TierFor(rank, total int) Tier {
	p := float64(rank) / float64(total)
	switch {
	case p <= 0.10:
		return TierS
	case p <= 0.30:
		return TierA
	case p <= 0.60:
		return TierB
	default:
		return TierRookie
	}
}

// Leaderboard ranks the given per-player records. Players are sorted by
// full-precision score descending and assigned standard competition ranks:
// every player's rank is 1 + the number of strictly higher-scored players, so
// tied players share a rank and the next distinct score skips ahead. The
// displayed score is rounded to the nearest integer.
func Leaderboard(records []club.PlayerRecord) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		if r.Games < 1 {
			continue
		}
		exact := Score(r.Wins, r.Games)
		entries = append(entries, Entry{
			PlayerID:   r.PlayerID,
			PlayerName: r.PlayerName,
			Score:      int(math.Round(exact)),
			Wins:       r.Wins,
			Games:      r.Games,
			exact:      exact,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].exact > entries[j].exact
	})

	total := len(entries)
	for i := range entries {
		higher := 0
		for j := range entries {
			if entries[j].exact > entries[i].exact {
				higher++
			}
		}
		entries[i].Rank = 1 + higher
		entries[i].Tier = TierFor(entries[i].Rank, total)
	}
	return entries
}
