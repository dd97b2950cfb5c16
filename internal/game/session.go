package game

import (
	"fmt"
	"math/rand"

	"github.com/keio-howl/howlhub/internal/club"
)

// Session is a single in-memory GM session. It is never persisted: the
// manager discards it wholesale on reset. All methods mutate state only
// after their validations pass.
type Session struct {
	Players []SessionPlayer `json:"players"`
	Phase   Phase           `json:"phase"`
	Turn    int             `json:"turn"`
	Events  []Event         `json:"events"`
	Winner  Team            `json:"winner,omitempty"`

	// Ephemeral divination result, cleared after one read.
	seerResult *SeerResult
}

// NewSession assigns roles and opens the first day. The configured role
// counts must sum to exactly the participant count and include at least one
// werewolf. The full role multiset is shuffled uniformly and assigned to
// participants by position.
func NewSession(participants []club.PlayerInfo, roleCounts map[Role]int, rng *rand.Rand) (*Session, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	total := 0
	for _, count := range roleCounts {
		if count < 0 {
			return nil, fmt.Errorf("%w: negative count", ErrRoleCountMismatch)
		}
		total += count
	}
	if total != len(participants) {
		return nil, fmt.Errorf("%w: %d roles for %d participants", ErrRoleCountMismatch, total, len(participants))
	}
	if roleCounts[RoleWerewolf] < 1 {
		return nil, ErrNoWerewolf
	}

	roles := make([]Role, 0, total)
	for _, role := range Roles {
		for i := 0; i < roleCounts[role]; i++ {
			roles = append(roles, role)
		}
	}
	rng.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})

	players := make([]SessionPlayer, len(participants))
	for i, p := range participants {
		players[i] = SessionPlayer{
			ID:    p.ID,
			Name:  p.Name,
			Role:  roles[i],
			Alive: true,
			Team:  TeamFor(roles[i]),
		}
	}

	s := &Session{
		Players: players,
		Phase:   PhaseDay,
		Turn:    1,
	}
	s.appendEvent(Event{Kind: EventStart, Phase: PhaseDay, Turn: 1, Detail: "game started"})
	return s, nil
}

func (s *Session) appendEvent(e Event) {
	s.Events = append(s.Events, e)
}

func (s *Session) player(id string) *SessionPlayer {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// Living returns the living participants in session order.
func (s *Session) Living() []SessionPlayer {
	var living []SessionPlayer
	for _, p := range s.Players {
		if p.Alive {
			living = append(living, p)
		}
	}
	return living
}

func (s *Session) livingWithRole(role Role) *SessionPlayer {
	for i := range s.Players {
		if s.Players[i].Alive && s.Players[i].Role == role {
			return &s.Players[i]
		}
	}
	return nil
}

// checkWinner evaluates the win condition over the living participants.
// Village wins when no werewolf survives; werewolves win at parity or
// better against the village-aligned count. Returns "" while undecided.
func (s *Session) checkWinner() Team {
	wolves := 0
	villagers := 0
	for _, p := range s.Players {
		if !p.Alive {
			continue
		}
		if p.Role == RoleWerewolf {
			wolves++
		}
		if p.Team == TeamVillage {
			villagers++
		}
	}
	if wolves == 0 {
		return TeamVillage
	}
	if wolves >= villagers {
		return TeamWerewolf
	}
	return ""
}

func (s *Session) finish(winner Team) {
	s.Winner = winner
	s.Phase = PhaseResult
	s.appendEvent(Event{
		Kind:   EventGameEnd,
		Phase:  PhaseResult,
		Turn:   s.Turn,
		Detail: fmt.Sprintf("%s team wins", winner),
	})
}

// Execute resolves the day phase's single execution. The chosen participant
// is marked dead and the win condition is evaluated; the session moves to
// RESULT if decided, otherwise to NIGHT within the same day-night cycle.
func (s *Session) Execute(playerID string) error {
	if s.Phase != PhaseDay {
		return fmt.Errorf("%w: expected DAY, in %s", ErrWrongPhase, s.Phase)
	}
	target := s.player(playerID)
	if target == nil {
		return ErrUnknownPlayer
	}
	if !target.Alive {
		return ErrPlayerDead
	}

	target.Alive = false
	s.appendEvent(Event{
		Kind:       EventExecution,
		Phase:      PhaseDay,
		Turn:       s.Turn,
		PlayerID:   target.ID,
		PlayerName: target.Name,
		Detail:     fmt.Sprintf("Day %d: %s was executed", s.Turn, target.Name),
	})

	if winner := s.checkWinner(); winner != "" {
		s.finish(winner)
		return nil
	}
	s.Phase = PhaseNight
	return nil
}

// ResolveNight applies the collected night actions in order: divination,
// then the attack (fully negated when the guard chose the same target), then
// the win check. An undecided game returns to DAY with the turn counter
// incremented.
func (s *Session) ResolveNight(actions NightActions) error {
	if s.Phase != PhaseNight {
		return fmt.Errorf("%w: expected NIGHT, in %s", ErrWrongPhase, s.Phase)
	}

	seer := s.livingWithRole(RoleSeer)
	knight := s.livingWithRole(RoleKnight)

	if err := s.validateNightTargets(actions, seer, knight); err != nil {
		return err
	}

	s.seerResult = nil
	if seer != nil && actions.DivineTargetID != "" {
		target := s.player(actions.DivineTargetID)
		s.seerResult = &SeerResult{
			TargetID:   target.ID,
			TargetName: target.Name,
			IsWerewolf: target.Role == RoleWerewolf,
		}
	}

	switch {
	case actions.AttackTargetID == "":
		s.appendEvent(Event{
			Kind:   EventNoAttack,
			Phase:  PhaseNight,
			Turn:   s.Turn,
			Detail: fmt.Sprintf("Night %d: nobody was attacked", s.Turn),
		})
	case knight != nil && actions.GuardTargetID == actions.AttackTargetID:
		target := s.player(actions.AttackTargetID)
		s.appendEvent(Event{
			Kind:       EventAttackBlocked,
			Phase:      PhaseNight,
			Turn:       s.Turn,
			PlayerID:   target.ID,
			PlayerName: target.Name,
			Detail:     fmt.Sprintf("Night %d: the attack was guarded", s.Turn),
		})
	default:
		target := s.player(actions.AttackTargetID)
		target.Alive = false
		s.appendEvent(Event{
			Kind:       EventAttack,
			Phase:      PhaseNight,
			Turn:       s.Turn,
			PlayerID:   target.ID,
			PlayerName: target.Name,
			Detail:     fmt.Sprintf("Night %d: %s was attacked", s.Turn, target.Name),
		})
	}

	if winner := s.checkWinner(); winner != "" {
		s.finish(winner)
		return nil
	}
	s.Phase = PhaseDay
	s.Turn++
	return nil
}

// validateNightTargets rejects any selection before state is mutated.
// The attack may target any living non-werewolf; divination and guarding
// require the acting role to be alive and cannot target the actor.
func (s *Session) validateNightTargets(actions NightActions, seer, knight *SessionPlayer) error {
	if actions.AttackTargetID != "" {
		target := s.player(actions.AttackTargetID)
		if target == nil || !target.Alive {
			return fmt.Errorf("%w: attack target must be a living participant", ErrInvalidTarget)
		}
		if target.Role == RoleWerewolf {
			return fmt.Errorf("%w: werewolves cannot attack their own", ErrInvalidTarget)
		}
	}
	if actions.DivineTargetID != "" {
		if seer == nil {
			return fmt.Errorf("%w: no living seer", ErrInvalidTarget)
		}
		target := s.player(actions.DivineTargetID)
		if target == nil || !target.Alive || target.ID == seer.ID {
			return fmt.Errorf("%w: divination target must be a living participant other than the seer", ErrInvalidTarget)
		}
	}
	if actions.GuardTargetID != "" {
		if knight == nil {
			return fmt.Errorf("%w: no living knight", ErrInvalidTarget)
		}
		target := s.player(actions.GuardTargetID)
		if target == nil || !target.Alive || target.ID == knight.ID {
			return fmt.Errorf("%w: guard target must be a living participant other than the knight", ErrInvalidTarget)
		}
	}
	return nil
}

// ConsumeSeerResult returns the pending divination result, if any, and
// clears it. The result is shown exactly once, on the next day render.
func (s *Session) ConsumeSeerResult() *SeerResult {
	r := s.seerResult
	s.seerResult = nil
	return r
}

// MediumReportFor returns the alignment of the player executed at the end of
// the previous day, visible only while a medium lives and from the second
// day onwards. It walks the structured event log backwards for the most
// recent execution.
func (s *Session) MediumReportFor() *MediumReport {
	if s.Phase != PhaseDay || s.Turn <= 1 {
		return nil
	}
	if s.livingWithRole(RoleMedium) == nil {
		return nil
	}
	for i := len(s.Events) - 1; i >= 0; i-- {
		if s.Events[i].Kind != EventExecution {
			continue
		}
		executed := s.player(s.Events[i].PlayerID)
		if executed == nil {
			return nil
		}
		return &MediumReport{
			TargetID:   executed.ID,
			TargetName: executed.Name,
			IsWerewolf: executed.Role == RoleWerewolf,
		}
	}
	return nil
}

// ResultBoard derives the default winner and loser identifier sets from each
// participant's team versus the recorded winning side. The operator may
// override both sets before committing.
func (s *Session) ResultBoard() (winners, losers []string) {
	if s.Phase != PhaseResult {
		return nil, nil
	}
	for _, p := range s.Players {
		if p.Team == s.Winner {
			winners = append(winners, p.ID)
		} else {
			losers = append(losers, p.ID)
		}
	}
	return winners, losers
}
