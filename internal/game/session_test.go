package game

import (
	"math/rand"
	"testing"

	"github.com/keio-howl/howlhub/internal/club"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParticipants(n int) []club.PlayerInfo {
	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel"}
	players := make([]club.PlayerInfo, n)
	for i := 0; i < n; i++ {
		players[i] = club.PlayerInfo{ID: names[i][:1], Name: names[i], IsActive: true}
	}
	return players
}

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// sessionWithRoles builds a running session with fixed role assignments, for
// tests that need a known board rather than a shuffled one.
func sessionWithRoles(roles map[string]Role) *Session {
	s := &Session{Phase: PhaseDay, Turn: 1}
	for id, role := range roles {
		s.Players = append(s.Players, SessionPlayer{
			ID:    id,
			Name:  id,
			Role:  role,
			Alive: true,
			Team:  TeamFor(role),
		})
	}
	return s
}

func TestNewSession_RoleCountMismatchRejected(t *testing.T) {
	participants := testParticipants(5)
	counts := map[Role]int{RoleWerewolf: 1, RoleVillager: 3} // sums to 4

	_, err := NewSession(participants, counts, testRng())
	assert.ErrorIs(t, err, ErrRoleCountMismatch)
}

func TestNewSession_EmptyParticipantsRejected(t *testing.T) {
	_, err := NewSession(nil, map[Role]int{}, testRng())
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestNewSession_RequiresWerewolf(t *testing.T) {
	participants := testParticipants(3)
	counts := map[Role]int{RoleVillager: 3}

	_, err := NewSession(participants, counts, testRng())
	assert.ErrorIs(t, err, ErrNoWerewolf)
}

func TestNewSession_AssignsConfiguredMultiset(t *testing.T) {
	participants := testParticipants(5)
	counts := map[Role]int{RoleWerewolf: 1, RoleMadman: 1, RoleSeer: 1, RoleKnight: 1, RoleVillager: 1}

	s, err := NewSession(participants, counts, testRng())
	require.NoError(t, err)

	assert.Equal(t, PhaseDay, s.Phase)
	assert.Equal(t, 1, s.Turn)
	require.Len(t, s.Players, 5)

	assigned := make(map[Role]int)
	for _, p := range s.Players {
		assert.True(t, p.Alive)
		assert.Equal(t, TeamFor(p.Role), p.Team)
		assigned[p.Role]++
	}
	assert.Equal(t, counts, assigned)

	require.Len(t, s.Events, 1)
	assert.Equal(t, EventStart, s.Events[0].Kind)
}

func TestTeamFor(t *testing.T) {
	assert.Equal(t, TeamWerewolf, TeamFor(RoleWerewolf))
	assert.Equal(t, TeamWerewolf, TeamFor(RoleMadman))
	assert.Equal(t, TeamVillage, TeamFor(RoleSeer))
	assert.Equal(t, TeamVillage, TeamFor(RoleKnight))
	assert.Equal(t, TeamVillage, TeamFor(RoleMedium))
	assert.Equal(t, TeamVillage, TeamFor(RoleVillager))
}

func TestExecute_TransitionsToNight(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf": RoleWerewolf,
		"v1":   RoleVillager,
		"v2":   RoleVillager,
		"v3":   RoleVillager,
	})

	require.NoError(t, s.Execute("v1"))

	assert.Equal(t, PhaseNight, s.Phase)
	assert.Equal(t, 1, s.Turn, "turn must not change on DAY to NIGHT")
	assert.False(t, s.player("v1").Alive)

	last := s.Events[len(s.Events)-1]
	assert.Equal(t, EventExecution, last.Kind)
	assert.Equal(t, "v1", last.PlayerID)
	assert.Equal(t, 1, last.Turn)
}

func TestExecute_WolfParityEndsGame(t *testing.T) {
	// 1 wolf, 2 villagers: executing a villager leaves 1 vs 1 and the
	// werewolf side wins at parity.
	s := sessionWithRoles(map[string]Role{
		"wolf": RoleWerewolf,
		"v1":   RoleVillager,
		"v2":   RoleVillager,
	})

	require.NoError(t, s.Execute("v1"))

	assert.Equal(t, PhaseResult, s.Phase)
	assert.Equal(t, TeamWerewolf, s.Winner)
	assert.Equal(t, EventGameEnd, s.Events[len(s.Events)-1].Kind)
}

func TestExecute_LastWolfEndsGame(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf": RoleWerewolf,
		"v1":   RoleVillager,
		"v2":   RoleVillager,
		"v3":   RoleVillager,
	})

	require.NoError(t, s.Execute("wolf"))

	assert.Equal(t, PhaseResult, s.Phase)
	assert.Equal(t, TeamVillage, s.Winner)
}

func TestExecute_Validation(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf": RoleWerewolf,
		"v1":   RoleVillager,
		"v2":   RoleVillager,
		"v3":   RoleVillager,
	})

	assert.ErrorIs(t, s.Execute("stranger"), ErrUnknownPlayer)

	require.NoError(t, s.Execute("v1"))
	assert.ErrorIs(t, s.Execute("v2"), ErrWrongPhase)

	s.Phase = PhaseDay
	assert.ErrorIs(t, s.Execute("v1"), ErrPlayerDead)
}

func TestResolveNight_GuardBlocksAttack(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf":   RoleWerewolf,
		"knight": RoleKnight,
		"v1":     RoleVillager,
		"v2":     RoleVillager,
		"v3":     RoleVillager,
	})
	s.Phase = PhaseNight

	err := s.ResolveNight(NightActions{AttackTargetID: "v1", GuardTargetID: "v1"})
	require.NoError(t, err)

	assert.True(t, s.player("v1").Alive, "guarded target must survive")
	assert.Equal(t, PhaseDay, s.Phase)
	assert.Equal(t, 2, s.Turn, "turn increments on NIGHT to DAY")

	var blocked bool
	for _, e := range s.Events {
		if e.Kind == EventAttackBlocked {
			blocked = true
		}
		assert.NotEqual(t, EventAttack, e.Kind, "no successful attack may be logged")
	}
	assert.True(t, blocked, "a blocked attack must be logged")
}

func TestResolveNight_AttackKills(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf": RoleWerewolf,
		"v1":   RoleVillager,
		"v2":   RoleVillager,
		"v3":   RoleVillager,
	})
	s.Phase = PhaseNight

	require.NoError(t, s.ResolveNight(NightActions{AttackTargetID: "v1"}))

	assert.False(t, s.player("v1").Alive)
	assert.Equal(t, PhaseDay, s.Phase)
	assert.Equal(t, 2, s.Turn)
	assert.Equal(t, EventAttack, s.Events[len(s.Events)-1].Kind)
}

func TestResolveNight_NoAttackLogged(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf": RoleWerewolf,
		"v1":   RoleVillager,
		"v2":   RoleVillager,
	})
	s.Phase = PhaseNight

	require.NoError(t, s.ResolveNight(NightActions{}))

	assert.Equal(t, EventNoAttack, s.Events[len(s.Events)-1].Kind)
	assert.Len(t, s.Living(), 3)
}

func TestResolveNight_AttackEndingGame(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf": RoleWerewolf,
		"v1":   RoleVillager,
		"v2":   RoleVillager,
	})
	s.Phase = PhaseNight

	require.NoError(t, s.ResolveNight(NightActions{AttackTargetID: "v1"}))

	assert.Equal(t, PhaseResult, s.Phase)
	assert.Equal(t, TeamWerewolf, s.Winner)
}

func TestResolveNight_TargetValidation(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf": RoleWerewolf,
		"seer": RoleSeer,
		"v1":   RoleVillager,
		"v2":   RoleVillager,
	})
	s.Phase = PhaseNight

	// Werewolves cannot attack their own.
	err := s.ResolveNight(NightActions{AttackTargetID: "wolf"})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	// The seer cannot divine themself.
	err = s.ResolveNight(NightActions{DivineTargetID: "seer"})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	// No knight in the session, so guarding is not offered.
	err = s.ResolveNight(NightActions{GuardTargetID: "v1"})
	assert.ErrorIs(t, err, ErrInvalidTarget)

	// Failed validations must not mutate anything.
	assert.Equal(t, PhaseNight, s.Phase)
	assert.Len(t, s.Living(), 4)
}

func TestConsumeSeerResult_ShownOnce(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf": RoleWerewolf,
		"seer": RoleSeer,
		"v1":   RoleVillager,
		"v2":   RoleVillager,
	})
	s.Phase = PhaseNight

	require.NoError(t, s.ResolveNight(NightActions{DivineTargetID: "wolf"}))

	result := s.ConsumeSeerResult()
	require.NotNil(t, result)
	assert.Equal(t, "wolf", result.TargetID)
	assert.True(t, result.IsWerewolf)

	assert.Nil(t, s.ConsumeSeerResult(), "result is cleared after one read")
}

func TestMediumReport(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf":   RoleWerewolf,
		"medium": RoleMedium,
		"v1":     RoleVillager,
		"v2":     RoleVillager,
		"v3":     RoleVillager,
	})

	// Day 1: no report before any execution.
	assert.Nil(t, s.MediumReportFor())
}

func TestMediumReport_AfterExecution(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf":   RoleWerewolf,
		"medium": RoleMedium,
		"v1":     RoleVillager,
		"v2":     RoleVillager,
		"v3":     RoleVillager,
	})

	require.NoError(t, s.Execute("v1"))
	require.NoError(t, s.ResolveNight(NightActions{}))
	require.Equal(t, PhaseDay, s.Phase)
	require.Equal(t, 2, s.Turn)

	report := s.MediumReportFor()
	require.NotNil(t, report)
	assert.Equal(t, "v1", report.TargetID)
	assert.False(t, report.IsWerewolf)
}

func TestMediumReport_RequiresLivingMedium(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf":   RoleWerewolf,
		"medium": RoleMedium,
		"v1":     RoleVillager,
		"v2":     RoleVillager,
		"v3":     RoleVillager,
	})

	require.NoError(t, s.Execute("medium"))
	require.NoError(t, s.ResolveNight(NightActions{}))

	assert.Nil(t, s.MediumReportFor())
}

func TestResultBoard_DefaultsFromTeams(t *testing.T) {
	s := sessionWithRoles(map[string]Role{
		"wolf":   RoleWerewolf,
		"madman": RoleMadman,
		"v1":     RoleVillager,
		"v2":     RoleVillager,
	})

	// Kill a villager: 1 wolf vs 1 villager means the werewolf side wins.
	require.NoError(t, s.Execute("v1"))
	require.Equal(t, PhaseResult, s.Phase)

	winners, losers := s.ResultBoard()
	assert.ElementsMatch(t, []string{"wolf", "madman"}, winners)
	assert.ElementsMatch(t, []string{"v1", "v2"}, losers)
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManagerWithRand(testRng())

	_, err := m.Current()
	assert.ErrorIs(t, err, ErrNoSession)

	participants := testParticipants(4)
	counts := map[Role]int{RoleWerewolf: 1, RoleVillager: 3}
	s, err := m.Start(participants, counts)
	require.NoError(t, err)
	require.NotNil(t, s)

	current, err := m.Current()
	require.NoError(t, err)
	assert.Same(t, s, current)

	m.Reset()
	_, err = m.Current()
	assert.ErrorIs(t, err, ErrNoSession)
}
