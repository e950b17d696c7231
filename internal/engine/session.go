// Package engine implements the game core: the campaign → voting →
// running → ended lifecycle, the election, the promise ledger, and the
// per-round society simulation. A Session owns all mutable state for
// one game; every mutation goes through a Session method and either
// fully applies or returns an error with no state change.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/jzheng/societygame/internal/game"
	"github.com/jzheng/societygame/internal/society"
)

// Fixed prices and pacing, in gold and rounds.
const (
	StartingGold       = 100
	ChatCost           = 1
	RallyCost          = 5
	SpeechCost         = 2
	ExecutiveOrderCost = 5
	PromiseFee         = 1
	PaymentDelayRounds = 2
	OrderEffectDelay   = 2
)

// Defaults for a fresh session.
const (
	DefaultPlayers        = 10
	DefaultCampaignRounds = 5
	DefaultMaxRounds      = 50
)

// Config controls session shape. Zero values fall back to defaults.
type Config struct {
	Players        int
	CampaignRounds int
	MaxRounds      int
	Seed           int64
}

func (c Config) withDefaults() Config {
	if c.Players <= 0 {
		c.Players = DefaultPlayers
	}
	if c.CampaignRounds <= 0 {
		c.CampaignRounds = DefaultCampaignRounds
	}
	if c.MaxRounds <= 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	return c
}

// Event is a notable occurrence, kept for the API event feed and
// persisted alongside the session.
type Event struct {
	Round       int    `json:"round" db:"round"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "election", "ledger", "society", "chat", "political"
}

// maxEvents bounds the in-memory event log.
const maxEvents = 1000

// Session holds the complete state of one game.
type Session struct {
	Config Config

	Stage         game.Stage
	Players       []game.Player
	CurrentIndex  int
	TurnNumber    int
	CampaignRound int

	// Running-stage turn order: player indices in fixed role order.
	TurnOrder []int
	TurnPos   int

	// Election state.
	VotingPhase  VotingPhase
	RevoteRole   game.Role // valid while VotingPhase == PhaseRevote
	Declarations []game.CandidateDeclaration
	Votes        []game.Vote
	RevoteQueue  []game.Role           // tied roles awaiting revote, fixed role order
	RevotePools  map[game.Role][]int   // tied role → candidate pool

	// Promise ledger.
	Promises          []game.Promise
	LockedVotes       map[int]game.LockedVote
	ScheduledPayments []game.ScheduledPayment

	// Communications.
	Messages []game.ChatMessage

	// Presidential records.
	ExecutiveOrders    []game.ExecutiveOrder
	VetoRecords        []game.VetoRecord
	GovernmentProjects []game.GovernmentProject

	// Simulated world.
	Society         *society.State
	PendingApproval *ProposedBuilding

	Events []Event

	rng *rand.Rand
}

// ProposedBuilding is a construction request awaiting department
// approval. One at a time.
type ProposedBuilding struct {
	Building    society.Building `json:"building"`
	RequestedBy int              `json:"requested_by"`
}

// NewSession creates a fresh session in the campaigning stage.
func NewSession(cfg Config) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		Config:      cfg,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		LockedVotes: make(map[int]game.LockedVote),
		RevotePools: make(map[game.Role][]int),
	}
	s.initModel()
	return s
}

// initModel builds the starting entity model.
func (s *Session) initModel() {
	s.Stage = game.StageCampaigning
	s.Players = make([]game.Player, s.Config.Players)
	for i := range s.Players {
		s.Players[i] = game.Player{
			Index: i,
			Name:  fmt.Sprintf("Player %d", i+1),
			Gold:  StartingGold,
		}
	}
	s.CurrentIndex = 0
	s.TurnNumber = 1
	s.CampaignRound = 1
	s.TurnOrder = nil
	s.TurnPos = 0

	s.VotingPhase = PhaseNominations
	s.Declarations = nil
	s.Votes = nil
	s.RevoteQueue = nil
	s.RevotePools = make(map[game.Role][]int)

	s.Promises = nil
	s.LockedVotes = make(map[int]game.LockedVote)
	s.ScheduledPayments = nil
	s.Messages = nil
	s.ExecutiveOrders = nil
	s.VetoRecords = nil
	s.GovernmentProjects = nil

	s.Society = society.NewBaseState()
	s.PendingApproval = nil
	s.Events = nil
}

// ResetGame discards all state and returns to the campaigning stage.
func (s *Session) ResetGame() {
	s.initModel()
	slog.Info("game reset", "players", len(s.Players))
}

// CurrentPlayer returns the player whose turn it is.
func (s *Session) CurrentPlayer() *game.Player {
	return &s.Players[s.CurrentIndex]
}

// player validates and returns a player by index.
func (s *Session) player(i int) (*game.Player, error) {
	if i < 0 || i >= len(s.Players) {
		return nil, game.ErrInvalidPlayer
	}
	return &s.Players[i], nil
}

// playerWithRole returns the index of the player holding the role, or
// -1 if the role is unassigned.
func (s *Session) playerWithRole(r game.Role) int {
	for i := range s.Players {
		if s.Players[i].HasRole(r) {
			return i
		}
	}
	return -1
}

// spend deducts gold from a player, refusing rather than clamping.
func (s *Session) spend(idx, amount int) error {
	p, err := s.player(idx)
	if err != nil {
		return err
	}
	if p.Gold < amount {
		return game.ErrInsufficientGold
	}
	p.Gold -= amount
	return nil
}

// Reseed replaces the random source. Used when restoring a saved
// game whose seed differs from the server configuration, so the
// shuffle fallback stays reproducible for that game.
func (s *Session) Reseed(seed int64) {
	s.Config.Seed = seed
	s.rng = rand.New(rand.NewSource(seed))
}

// ensureActive refuses mutation once the game has ended. Only
// ResetGame moves an ended session.
func (s *Session) ensureActive() error {
	if s.Stage == game.StageEnded {
		return game.ErrInvalidStage
	}
	return nil
}

// EmitEvent appends to the event log, trimming old entries.
func (s *Session) EmitEvent(e Event) {
	s.Events = append(s.Events, e)
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

// round returns the counter that stamps events for the current stage.
func (s *Session) round() int {
	if s.Stage == game.StageCampaigning {
		return s.CampaignRound
	}
	return s.TurnNumber
}
