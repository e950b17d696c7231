// Construction requests and department approval. Approval converts
// workers, charges the Construction head, consumes materials, and
// queues the project; the per-round countdown lives in simulation.go.
package engine

import (
	"fmt"

	"github.com/jzheng/societygame/internal/game"
	"github.com/jzheng/societygame/internal/society"
)

// RequestBuilding files a construction request on behalf of a player.
// Only one request can await approval at a time.
func (s *Session) RequestBuilding(b society.Building, requestedBy int) error {
	if s.Stage != game.StageRunning {
		return game.ErrInvalidStage
	}
	if _, err := s.player(requestedBy); err != nil {
		return err
	}
	if s.PendingApproval != nil {
		return game.ErrApprovalPending
	}
	s.PendingApproval = &ProposedBuilding{Building: b, RequestedBy: requestedBy}
	return nil
}

// CanApprove reports whether the player heads the department that
// signs off on the pending building.
func (s *Session) CanApprove(idx int) bool {
	if s.PendingApproval == nil {
		return false
	}
	p, err := s.player(idx)
	if err != nil {
		return false
	}
	return p.HasRole(s.PendingApproval.Building.Approver())
}

// ApprovePendingBuilding validates and commits the pending request:
// the required uneducated workers are upgraded to educated (a
// workforce conversion, not a removal), the Construction head pays
// the gold cost, the material pool is drawn down, and the project
// joins the queue. Any failed precondition leaves everything
// untouched.
func (s *Session) ApprovePendingBuilding(approver int) error {
	if s.PendingApproval == nil {
		return game.ErrNoPendingApproval
	}
	if !s.CanApprove(approver) {
		return game.ErrUnauthorized
	}

	proposal := *s.PendingApproval
	req := proposal.Building.Requirements()
	soc := s.Society

	if soc.UneducatedCount() < req.Workers {
		return game.ErrInsufficientWorkers
	}
	builder := s.playerWithRole(game.RoleConstruction)
	if builder < 0 {
		return game.ErrNotFound
	}
	if s.Players[builder].Gold < req.Gold {
		return game.ErrInsufficientGold
	}
	if soc.RawMaterials < req.RawMaterials {
		return game.ErrInsufficientMaterial
	}

	s.convertUneducatedWorkers(req.Workers)
	s.Players[builder].Gold -= req.Gold
	soc.RawMaterials -= req.RawMaterials

	soc.Projects = append(soc.Projects, society.ConstructionProject{
		Kind:           req.Kind,
		TurnsRemaining: req.Kind.BuildTurns(),
		InitiatedBy:    proposal.RequestedBy,
	})
	s.PendingApproval = nil

	s.EmitEvent(Event{
		Round:       s.TurnNumber,
		Description: fmt.Sprintf("%s construction approved by %s", proposal.Building, s.Players[approver].Name),
		Category:    "society",
	})
	return nil
}

// DenyPendingBuilding discards the pending request.
func (s *Session) DenyPendingBuilding(approver int) error {
	if s.PendingApproval == nil {
		return game.ErrNoPendingApproval
	}
	if !s.CanApprove(approver) {
		return game.ErrUnauthorized
	}
	s.PendingApproval = nil
	return nil
}

// convertUneducatedWorkers upgrades count uneducated members to
// educated status, consuming them as construction workforce.
func (s *Session) convertUneducatedWorkers(count int) {
	for i := range s.Society.Population {
		if count == 0 {
			return
		}
		p := &s.Society.Population[i]
		if !p.Dead && p.Uneducated() {
			p.Tier = society.TierEducated
			count--
		}
	}
}
