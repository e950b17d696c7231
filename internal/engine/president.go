// Presidential powers: speeches, executive orders, and vetoes.
// Orders and vetoes are audit records; whether they should feed back
// into the simulation is an open product question.
package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jzheng/societygame/internal/game"
)

// SendPresidentialSpeech broadcasts a discounted rally available only
// to the President.
func (s *Session) SendPresidentialSpeech(actor int, text string) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	p, err := s.player(actor)
	if err != nil {
		return err
	}
	if !p.HasRole(game.RolePresident) {
		return game.ErrUnauthorized
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return game.ErrEmptyText
	}
	if err := s.spend(actor, SpeechCost); err != nil {
		return err
	}
	s.Messages = append(s.Messages, game.ChatMessage{
		From:    actor,
		Text:    "PRESIDENTIAL SPEECH: " + trimmed,
		IsRally: true,
		Round:   s.round(),
	})
	return nil
}

// IssueExecutiveOrder queues an order that takes effect two turns
// later. President only.
func (s *Session) IssueExecutiveOrder(actor int, description string) (*game.ExecutiveOrder, error) {
	if err := s.ensureActive(); err != nil {
		return nil, err
	}
	p, err := s.player(actor)
	if err != nil {
		return nil, err
	}
	if !p.HasRole(game.RolePresident) {
		return nil, game.ErrUnauthorized
	}
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return nil, game.ErrEmptyText
	}
	if err := s.spend(actor, ExecutiveOrderCost); err != nil {
		return nil, err
	}
	eo := game.ExecutiveOrder{
		ID:            uuid.New(),
		Description:   trimmed,
		ProposedTurn:  s.TurnNumber,
		EffectiveTurn: s.TurnNumber + OrderEffectDelay,
	}
	s.ExecutiveOrders = append(s.ExecutiveOrders, eo)
	slog.Info("executive order queued", "effective_turn", eo.EffectiveTurn)
	s.EmitEvent(Event{
		Round:       s.TurnNumber,
		Description: fmt.Sprintf("executive order issued, effective turn %d", eo.EffectiveTurn),
		Category:    "political",
	})
	return &s.ExecutiveOrders[len(s.ExecutiveOrders)-1], nil
}

// UseVeto records a presidential veto with its stated reason.
func (s *Session) UseVeto(actor int, reason string) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	p, err := s.player(actor)
	if err != nil {
		return err
	}
	if !p.HasRole(game.RolePresident) {
		return game.ErrUnauthorized
	}
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return game.ErrEmptyText
	}
	s.VetoRecords = append(s.VetoRecords, game.VetoRecord{
		ID:     uuid.New(),
		Turn:   s.TurnNumber,
		Reason: trimmed,
	})
	s.EmitEvent(Event{
		Round:       s.TurnNumber,
		Description: "the President uses a veto",
		Category:    "political",
	})
	return nil
}

// ProposeGovernmentProject records a department-sponsored project for
// the audit trail. Department heads propose for their own department;
// the President may propose for any.
func (s *Session) ProposeGovernmentProject(actor int, name string, department game.Role, description string) (*game.GovernmentProject, error) {
	if err := s.ensureActive(); err != nil {
		return nil, err
	}
	p, err := s.player(actor)
	if err != nil {
		return nil, err
	}
	if !p.HasRole(department) && !p.HasRole(game.RolePresident) {
		return nil, game.ErrUnauthorized
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, game.ErrEmptyText
	}
	gp := game.GovernmentProject{
		ID:          uuid.New(),
		Name:        trimmed,
		Department:  department,
		Description: strings.TrimSpace(description),
		Status:      game.ProjectProposed,
		TurnStarted: s.TurnNumber,
	}
	s.GovernmentProjects = append(s.GovernmentProjects, gp)
	return &s.GovernmentProjects[len(s.GovernmentProjects)-1], nil
}

// VetoableProjects returns the projects that can still be vetoed.
func (s *Session) VetoableProjects() []game.GovernmentProject {
	var out []game.GovernmentProject
	for _, gp := range s.GovernmentProjects {
		if gp.Vetoable() {
			out = append(out, gp)
		}
	}
	return out
}

// VetoProject cancels a tracked project. President only. The status
// flips to cancelledByVeto; no resources are reclaimed.
func (s *Session) VetoProject(actor int, id uuid.UUID) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	p, err := s.player(actor)
	if err != nil {
		return err
	}
	if !p.HasRole(game.RolePresident) {
		return game.ErrUnauthorized
	}
	for i := range s.GovernmentProjects {
		gp := &s.GovernmentProjects[i]
		if gp.ID == id {
			if !gp.Vetoable() {
				return game.ErrInvalidStage
			}
			gp.Status = game.ProjectCancelledByVeto
			s.EmitEvent(Event{
				Round:       s.TurnNumber,
				Description: fmt.Sprintf("project %q cancelled by presidential veto", gp.Name),
				Category:    "political",
			})
			return nil
		}
	}
	return game.ErrNotFound
}
