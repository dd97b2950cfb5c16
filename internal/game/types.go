package game

import "errors"

// Phase is the GM session state marker.
type Phase string

const (
	PhaseSetup  Phase = "SETUP"
	PhaseDay    Phase = "DAY"
	PhaseNight  Phase = "NIGHT"
	PhaseResult Phase = "RESULT"
)

// Role is one of the fixed set of assignable roles.
type Role string

const (
	RoleWerewolf Role = "werewolf"
	RoleMadman   Role = "madman"
	RoleSeer     Role = "seer"
	RoleKnight   Role = "knight"
	RoleMedium   Role = "medium"
	RoleVillager Role = "villager"
)

// Roles lists every assignable role, in setup-form order.
var Roles = []Role{RoleWerewolf, RoleMadman, RoleSeer, RoleKnight, RoleMedium, RoleVillager}

// Team is a win-condition alignment.
type Team string

const (
	TeamWerewolf Team = "werewolf"
	TeamVillage  Team = "village"
)

// TeamFor derives a participant's team from their role. Only the werewolf
// and the madman are werewolf-aligned; everyone else sides with the village.
func TeamFor(role Role) Team {
	if role == RoleWerewolf || role == RoleMadman {
		return TeamWerewolf
	}
	return TeamVillage
}

// SessionPlayer is one participant in the running session.
type SessionPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Alive bool   `json:"alive"`
	Team  Team   `json:"team"`
}

// EventKind classifies a session log entry.
type EventKind string

const (
	EventStart         EventKind = "start"
	EventExecution     EventKind = "execution"
	EventAttack        EventKind = "attack"
	EventAttackBlocked EventKind = "attack_blocked"
	EventNoAttack      EventKind = "no_attack"
	EventGameEnd       EventKind = "game_end"
)

// Event is a structured session log entry. Carrying the subject identifier
// and turn as typed fields means consumers never have to parse the narrative
// text back apart.
type Event struct {
	Kind       EventKind `json:"kind"`
	Phase      Phase     `json:"phase"`
	Turn       int       `json:"turn"`
	PlayerID   string    `json:"player_id,omitempty"`
	PlayerName string    `json:"player_name,omitempty"`
	Detail     string    `json:"detail"`
}

// SeerResult is the divination outcome revealed on the next day render, once.
type SeerResult struct {
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
	IsWerewolf bool   `json:"is_werewolf"`
}

// MediumReport reveals the alignment of the most recently executed player.
type MediumReport struct {
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
	IsWerewolf bool   `json:"is_werewolf"`
}

// NightActions collects the up-to-three independent night selections.
// Empty target IDs mean the corresponding action is skipped.
type NightActions struct {
	AttackTargetID string `json:"attack_target_id"`
	DivineTargetID string `json:"divine_target_id"`
	GuardTargetID  string `json:"guard_target_id"`
}

var (
	ErrNoSession         = errors.New("no session in progress")
	ErrWrongPhase        = errors.New("action not valid in current phase")
	ErrNoParticipants    = errors.New("no participants selected")
	ErrRoleCountMismatch = errors.New("role counts do not match participant count")
	ErrNoWerewolf        = errors.New("at least one werewolf is required")
	ErrUnknownPlayer     = errors.New("player is not in this session")
	ErrPlayerDead        = errors.New("player is already dead")
	ErrInvalidTarget     = errors.New("invalid target for this action")
)
