// Package game provides the entity model shared by the election and
// society subsystems: players, roles, stages, messages, and the
// promise/payment records the bribe ledger operates on.
package game

import (
	"github.com/google/uuid"
)

// Stage is the top-level lifecycle of a session.
type Stage uint8

const (
	StageCampaigning Stage = iota
	StageVoting
	StageRunning
	StageEnded
)

// String returns the display name used by the wire snapshot and logs.
func (s Stage) String() string {
	switch s {
	case StageCampaigning:
		return "Campaigning"
	case StageVoting:
		return "Voting"
	case StageRunning:
		return "Running"
	case StageEnded:
		return "Ended"
	}
	return "Unknown"
}

// Role is a government position. Exactly one player holds a role at a
// time once assignment completes.
type Role uint8

const (
	RolePresident Role = iota
	RoleChiefJustice
	RoleTreasury
	RoleLabor
	RoleEducation
	RoleConstruction
	RoleTransportation
	RolePublicHealth
	RoleAgriculture
	RoleResource
)

// NumRoles is the total number of government positions.
const NumRoles = 10

// RoleOrder is the fixed clockwise seating order used for turn
// sequencing during the running stage. It never depends on the order
// roles were assigned in.
var RoleOrder = [NumRoles]Role{
	RolePresident, RoleChiefJustice, RoleTreasury, RoleLabor,
	RoleEducation, RoleConstruction, RoleTransportation,
	RolePublicHealth, RoleAgriculture, RoleResource,
}

// AllRoles returns every role in fixed order.
func AllRoles() []Role {
	out := make([]Role, NumRoles)
	copy(out, RoleOrder[:])
	return out
}

func (r Role) String() string {
	switch r {
	case RolePresident:
		return "President"
	case RoleChiefJustice:
		return "Supreme Court Chief Justice"
	case RoleTreasury:
		return "Head: Treasury"
	case RoleLabor:
		return "Head: Labor"
	case RoleEducation:
		return "Head: Education"
	case RoleConstruction:
		return "Head: Construction"
	case RoleTransportation:
		return "Head: Transportation"
	case RolePublicHealth:
		return "Head: Public Health"
	case RoleAgriculture:
		return "Head: Agriculture"
	case RoleResource:
		return "Head: Resource Allocation"
	}
	return "Unknown"
}

// IsDepartmentHead reports whether the role is one of the eight
// department heads (everything except President and Chief Justice).
func (r Role) IsDepartmentHead() bool {
	return r != RolePresident && r != RoleChiefJustice
}

// Player is one seat in the session. Index is stable for the lifetime
// of a game and doubles as the identifier on the wire.
type Player struct {
	Index         int     `json:"index"`
	Name          string  `json:"name"`
	Role          *Role   `json:"role,omitempty"`
	Gold          int     `json:"gold"`
	PersonalScore float64 `json:"personal_score"`
}

// HasRole reports whether the player holds the given role.
func (p *Player) HasRole(r Role) bool {
	return p.Role != nil && *p.Role == r
}

// ChatMessage is a private message or a rally. Rallies have no target
// and are visible to every player. Messages are immutable once sent;
// slice order is insertion order and doubles as the same-round
// tie-break for display.
type ChatMessage struct {
	From    int    `json:"from"`
	To      *int   `json:"to,omitempty"` // nil = rally (broadcast)
	Text    string `json:"text"`
	IsRally bool   `json:"is_rally"`
	Round   int    `json:"round"`
}

// CandidateDeclaration records which roles a player is running for.
// A redeclaration by the same player replaces the previous one.
type CandidateDeclaration struct {
	PlayerIndex int    `json:"player_index"`
	Roles       []Role `json:"roles"` // at most 2
}

// Vote is one ballot: a voter's chosen candidates for one role. A
// multi-candidate ballot counts toward every listed candidate.
type Vote struct {
	VoterIndex int   `json:"voter_index"`
	Role       Role  `json:"role"`
	Chosen     []int `json:"chosen"`
}

// PromiseStatus tracks the lifecycle of a promise. Rejected promises
// are removed outright, so the status only ever moves awaiting →
// accepted.
type PromiseStatus uint8

const (
	PromiseAwaiting PromiseStatus = iota
	PromiseAccepted
	PromiseRejected
)

func (s PromiseStatus) String() string {
	switch s {
	case PromiseAwaiting:
		return "awaiting"
	case PromiseAccepted:
		return "accepted"
	case PromiseRejected:
		return "rejected"
	}
	return "unknown"
}

// Promise is a bribe offer: gold after a delay in exchange for a
// locked vote. The offer is structured from creation — no string
// round-tripping of amounts or roles.
type Promise struct {
	ID          uuid.UUID     `json:"id"`
	Proposer    int           `json:"proposer"`
	Recipient   int           `json:"recipient"`
	GoldAmount  int           `json:"gold_amount"`
	DelayRounds int           `json:"delay_rounds"`
	DesiredRole Role          `json:"desired_role"`
	Status      PromiseStatus `json:"status"`
}

// LockedVote is the vote commitment created when a promise is
// accepted. It is consumed automatically at tally time for that voter
// and role.
type LockedVote struct {
	Role      Role `json:"role"`
	Candidate int  `json:"candidate"`
}

// ScheduledPayment is a deferred gold transfer. The counter is
// decremented once per round boundary; at zero the transfer is
// attempted and the record discarded whether or not the payer could
// afford it.
type ScheduledPayment struct {
	From           int `json:"from"`
	To             int `json:"to"`
	Amount         int `json:"amount"`
	TurnsRemaining int `json:"turns_remaining"`
}

// ExecutiveOrder is a president-only audit record. Orders take effect
// two turns after being proposed; the effect itself is an open
// product question and nothing in the simulation consumes them.
type ExecutiveOrder struct {
	ID            uuid.UUID `json:"id"`
	Description   string    `json:"description"`
	ProposedTurn  int       `json:"proposed_turn"`
	EffectiveTurn int       `json:"effective_turn"`
	Cancelled     bool      `json:"cancelled"`
}

// VetoRecord notes a presidential veto.
type VetoRecord struct {
	ID     uuid.UUID `json:"id"`
	Turn   int       `json:"turn"`
	Reason string    `json:"reason"`
}

// GovernmentProjectStatus is the lifecycle of a tracked project.
type GovernmentProjectStatus uint8

const (
	ProjectProposed GovernmentProjectStatus = iota
	ProjectInProgress
	ProjectCompleted
	ProjectCancelledByVeto
)

func (s GovernmentProjectStatus) String() string {
	switch s {
	case ProjectProposed:
		return "proposed"
	case ProjectInProgress:
		return "inProgress"
	case ProjectCompleted:
		return "completed"
	case ProjectCancelledByVeto:
		return "cancelledByVeto"
	}
	return "unknown"
}

// GovernmentProject is a department-sponsored initiative the President
// can veto. Like executive orders it is an audit record: vetoing sets
// the status and nothing else.
type GovernmentProject struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Department  Role                    `json:"department"`
	Description string                  `json:"description"`
	Status      GovernmentProjectStatus `json:"status"`
	TurnStarted int                     `json:"turn_started"`
}

// Vetoable reports whether the project can still be vetoed.
func (p *GovernmentProject) Vetoable() bool {
	return p.Status == ProjectProposed || p.Status == ProjectInProgress
}
