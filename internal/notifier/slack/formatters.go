package slack

import (
	"fmt"
	"strings"

	"github.com/keio-howl/howlhub/internal/notifier"
	"github.com/keio-howl/howlhub/internal/rating"
	"github.com/slack-go/slack"
)

// formatResultNotification creates the Slack message for a committed game using Block Kit.
func (s *Notifier) formatResultNotification(record notifier.ResultRecord) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header - The Header block itself provides bolding. No asterisks needed.
	headerText := slack.NewTextBlockObject("plain_text", "🐺 Game finished! 🐺", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Details
	detailsText := fmt.Sprintf("Played on %s", record.GameDate)
	if record.Memo != "" {
		detailsText = fmt.Sprintf("%s\nMemo: %s", detailsText, record.Memo)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	// Result
	resultHeaderText := "Result:"
	switch record.WinningTeam {
	case "village":
		resultHeaderText = "Result: The village prevails! 🏆"
	case "werewolf":
		resultHeaderText = "Result: The werewolves feast! 🏆"
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultHeaderText, true, false), nil, nil))

	// Winners and losers side by side.
	var resultsFields []*slack.TextBlockObject
	if len(record.WinnerNames) > 0 {
		winnersText := "Winners:\n" + bulletList(record.WinnerNames)
		resultsFields = append(resultsFields, slack.NewTextBlockObject("plain_text", winnersText, true, false))
	}
	if len(record.LoserNames) > 0 {
		losersText := "Losers:\n" + bulletList(record.LoserNames)
		resultsFields = append(resultsFields, slack.NewTextBlockObject("plain_text", losersText, true, false))
	}
	if len(resultsFields) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(nil, resultsFields, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatMembershipApproved creates the Slack message welcoming a new member.
func (s *Notifier) formatMembershipApproved(playerName string, termNumber int) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🌕 New member approved! 🌕", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Welcome %s to the club (term %d)!", playerName, termNumber)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	contextText := slack.NewTextBlockObject("plain_text", "💰 Membership fee of ¥5,000 recorded.", true, false)
	blocks = append(blocks, slack.NewContextBlock("", contextText))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the player ranking.
func (s *Notifier) formatLeaderboard(entries []rating.Entry) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Club Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(entries) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No games recorded yet. Go play some werewolf!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player Ranks
	for _, entry := range entries {
		var medal string
		switch entry.Rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s\n> *Score*: %d | *Tier*: %s | *Wins*: %d/%d",
			entry.Rank,
			medal,
			entry.PlayerName,
			entry.Score,
			entry.Tier,
			entry.Wins,
			entry.Games,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

func bulletList(names []string) string {
	items := make([]string, 0, len(names))
	for _, name := range names {
		items = append(items, fmt.Sprintf("• %s", name))
	}
	return strings.Join(items, "\n")
}
