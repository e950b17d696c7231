// Running-stage turn flow: the fixed role-order cursor, the round
// boundary that advances the world, and end-game scoring.
package engine

import (
	"log/slog"

	"github.com/jzheng/societygame/internal/game"
)

// Role weights for end-game scoring.
const (
	presidentWeight    = 0.14
	chiefJusticeWeight = 0.12
	defaultRoleWeight  = 0.09
)

// rebuildTurnOrder derives the turn order from current role holders:
// the fixed role order, restricted to assigned players. Falls back to
// seat-index order when no roles are assigned at all. The cursor is
// reset to the President (or the first seat in the order).
func (s *Session) rebuildTurnOrder() {
	var order []int
	for _, role := range game.RoleOrder {
		if idx := s.playerWithRole(role); idx >= 0 {
			order = append(order, idx)
		}
	}
	if len(order) == 0 {
		order = make([]int, len(s.Players))
		for i := range order {
			order[i] = i
		}
	}
	s.TurnOrder = order
	s.TurnPos = 0

	if pres := s.playerWithRole(game.RolePresident); pres >= 0 {
		s.CurrentIndex = pres
	} else {
		s.CurrentIndex = order[0]
	}
}

// EndTurn hands the turn to the next seat in role order. Wrapping
// past the last seat is the round boundary: the society advances one
// simulation step, scheduled payments mature, and the round counter
// increments. Running out of rounds finalizes the game.
func (s *Session) EndTurn(actor int) error {
	if s.Stage != game.StageRunning {
		return game.ErrInvalidStage
	}
	if _, err := s.player(actor); err != nil {
		return err
	}
	if actor != s.CurrentIndex {
		return game.ErrUnauthorized
	}
	if len(s.TurnOrder) == 0 {
		s.rebuildTurnOrder()
	}

	if s.TurnPos >= len(s.TurnOrder)-1 {
		s.TurnPos = 0
		s.advanceWorld()
		s.maturePayments()
		s.TurnNumber++
		if s.TurnNumber > s.Config.MaxRounds {
			s.finishGame()
			return nil
		}
	} else {
		s.TurnPos++
	}

	s.CurrentIndex = s.TurnOrder[s.TurnPos]
	return nil
}

// roleWeight returns the scoring weight for a role. Unassigned
// players score at the default weight.
func roleWeight(r *game.Role) float64 {
	if r == nil {
		return defaultRoleWeight
	}
	switch *r {
	case game.RolePresident:
		return presidentWeight
	case game.RoleChiefJustice:
		return chiefJusticeWeight
	}
	return defaultRoleWeight
}

// finishGame computes every player's personal score and ends the
// session. personalScore = roleWeight × totalSocietyPoints + 10 ×
// gold. Only ResetGame mutates state past this point.
func (s *Session) finishGame() {
	total := float64(s.Society.TotalPoints())
	for i := range s.Players {
		p := &s.Players[i]
		p.PersonalScore = roleWeight(p.Role)*total + 10*float64(p.Gold)
	}
	s.Stage = game.StageEnded
	slog.Info("game over",
		"rounds", s.Config.MaxRounds,
		"society_points", int(total),
	)
	s.EmitEvent(Event{Round: s.TurnNumber, Description: "the government's term ends", Category: "political"})
}
