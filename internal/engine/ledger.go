// The promise/bribe ledger: structured offers of deferred gold in
// exchange for locked votes, and the payment-maturation step that
// runs at every round boundary.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jzheng/societygame/internal/game"
)

// ProposePromise creates an awaiting promise from proposer to
// recipient: goldAmount after the standard delay, in exchange for a
// vote for the proposer for desiredRole. The proposal fee is charged
// up front and is not refunded on rejection.
func (s *Session) ProposePromise(proposer, recipient, goldAmount int, desiredRole game.Role) (*game.Promise, error) {
	if err := s.ensureActive(); err != nil {
		return nil, err
	}
	if _, err := s.player(proposer); err != nil {
		return nil, err
	}
	if _, err := s.player(recipient); err != nil {
		return nil, err
	}
	if err := s.spend(proposer, PromiseFee); err != nil {
		return nil, err
	}
	p := game.Promise{
		ID:          uuid.New(),
		Proposer:    proposer,
		Recipient:   recipient,
		GoldAmount:  goldAmount,
		DelayRounds: PaymentDelayRounds,
		DesiredRole: desiredRole,
		Status:      game.PromiseAwaiting,
	}
	s.Promises = append(s.Promises, p)
	s.EmitEvent(Event{
		Round:       s.round(),
		Description: fmt.Sprintf("%s promises %s %d gold", s.Players[proposer].Name, s.Players[recipient].Name, goldAmount),
		Category:    "ledger",
	})
	return &s.Promises[len(s.Promises)-1], nil
}

// AcceptPromise marks the promise accepted, locks the recipient's
// vote for the proposer, and schedules the offered payment.
func (s *Session) AcceptPromise(id uuid.UUID) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	p := s.findPromise(id)
	if p == nil {
		return game.ErrNotFound
	}
	// A promise only ever moves awaiting → accepted; a replayed
	// accept must not lock or schedule anything twice.
	if p.Status != game.PromiseAwaiting {
		return game.ErrInvalidStage
	}
	p.Status = game.PromiseAccepted

	s.LockedVotes[p.Recipient] = game.LockedVote{
		Role:      p.DesiredRole,
		Candidate: p.Proposer,
	}
	s.ScheduledPayments = append(s.ScheduledPayments, game.ScheduledPayment{
		From:           p.Proposer,
		To:             p.Recipient,
		Amount:         p.GoldAmount,
		TurnsRemaining: p.DelayRounds,
	})
	s.EmitEvent(Event{
		Round:       s.round(),
		Description: fmt.Sprintf("%s accepts a promise from %s", s.Players[p.Recipient].Name, s.Players[p.Proposer].Name),
		Category:    "ledger",
	})
	return nil
}

// RejectPromise removes an awaiting promise entirely. No history is
// kept. An accepted promise cannot be rejected; its locked vote and
// scheduled payment stand.
func (s *Session) RejectPromise(id uuid.UUID) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	for i := range s.Promises {
		if s.Promises[i].ID == id {
			if s.Promises[i].Status != game.PromiseAwaiting {
				return game.ErrInvalidStage
			}
			s.Promises = append(s.Promises[:i], s.Promises[i+1:]...)
			return nil
		}
	}
	return game.ErrNotFound
}

// PromisesFor returns the promises a player is the recipient of.
func (s *Session) PromisesFor(idx int) []game.Promise {
	var out []game.Promise
	for _, p := range s.Promises {
		if p.Recipient == idx {
			out = append(out, p)
		}
	}
	return out
}

func (s *Session) findPromise(id uuid.UUID) *game.Promise {
	for i := range s.Promises {
		if s.Promises[i].ID == id {
			return &s.Promises[i]
		}
	}
	return nil
}

// maturePayments runs once per round boundary: every pending payment
// counts down, and matured ones transfer gold if the payer can cover
// the full amount. An unaffordable transfer is skipped silently but
// the record is discarded either way — a broke payer simply never
// pays.
func (s *Session) maturePayments() {
	kept := s.ScheduledPayments[:0]
	for _, sp := range s.ScheduledPayments {
		sp.TurnsRemaining--
		if sp.TurnsRemaining > 0 {
			kept = append(kept, sp)
			continue
		}
		if s.Players[sp.From].Gold >= sp.Amount {
			s.Players[sp.From].Gold -= sp.Amount
			s.Players[sp.To].Gold += sp.Amount
			s.EmitEvent(Event{
				Round:       s.TurnNumber,
				Description: fmt.Sprintf("%s pays %s %d gold", s.Players[sp.From].Name, s.Players[sp.To].Name, sp.Amount),
				Category:    "ledger",
			})
		} else {
			slog.Info("scheduled payment defaulted",
				"from", sp.From, "to", sp.To, "amount", sp.Amount,
				"payer_gold", s.Players[sp.From].Gold,
			)
		}
	}
	s.ScheduledPayments = kept
}
