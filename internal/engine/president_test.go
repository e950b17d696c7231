package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/jzheng/societygame/internal/game"
)

// presidentialSession seats player 0 as President and player 1 as
// Treasury head.
func presidentialSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(Config{Players: 3, Seed: 1})
	pres, treasury := game.RolePresident, game.RoleTreasury
	s.Players[0].Role = &pres
	s.Players[1].Role = &treasury
	s.Stage = game.StageRunning
	s.rebuildTurnOrder()
	return s
}

func TestPresidentialSpeech(t *testing.T) {
	s := presidentialSession(t)

	if err := s.SendPresidentialSpeech(1, "attention"); !errors.Is(err, game.ErrUnauthorized) {
		t.Fatalf("non-president speech: got %v, want ErrUnauthorized", err)
	}

	if err := s.SendPresidentialSpeech(0, "a new era"); err != nil {
		t.Fatalf("speech: %v", err)
	}
	if got := s.Players[0].Gold; got != StartingGold-SpeechCost {
		t.Errorf("president gold = %d, want %d", got, StartingGold-SpeechCost)
	}
	if len(s.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(s.Messages))
	}
	m := s.Messages[0]
	if !m.IsRally {
		t.Error("speech must broadcast like a rally")
	}
	if !strings.HasPrefix(m.Text, "PRESIDENTIAL SPEECH: ") {
		t.Errorf("speech text = %q, want the presidential prefix", m.Text)
	}
}

func TestExecutiveOrderDelayedEffect(t *testing.T) {
	s := presidentialSession(t)
	s.TurnNumber = 4

	if _, err := s.IssueExecutiveOrder(1, "nope"); !errors.Is(err, game.ErrUnauthorized) {
		t.Fatalf("non-president order: got %v, want ErrUnauthorized", err)
	}

	eo, err := s.IssueExecutiveOrder(0, "ration review")
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if eo.ProposedTurn != 4 || eo.EffectiveTurn != 4+OrderEffectDelay {
		t.Errorf("order turns = %d/%d, want 4/%d", eo.ProposedTurn, eo.EffectiveTurn, 4+OrderEffectDelay)
	}
	if got := s.Players[0].Gold; got != StartingGold-ExecutiveOrderCost {
		t.Errorf("president gold = %d, want %d", got, StartingGold-ExecutiveOrderCost)
	}
	if len(s.ExecutiveOrders) != 1 {
		t.Errorf("orders recorded = %d, want 1", len(s.ExecutiveOrders))
	}
}

func TestVetoRecord(t *testing.T) {
	s := presidentialSession(t)

	if err := s.UseVeto(0, "  "); !errors.Is(err, game.ErrEmptyText) {
		t.Fatalf("blank reason: got %v, want ErrEmptyText", err)
	}
	if err := s.UseVeto(0, "overreach"); err != nil {
		t.Fatalf("veto: %v", err)
	}
	if len(s.VetoRecords) != 1 || s.VetoRecords[0].Reason != "overreach" {
		t.Fatalf("veto records = %+v, want one with the stated reason", s.VetoRecords)
	}
}

func TestGovernmentProjectLifecycle(t *testing.T) {
	s := presidentialSession(t)

	// Department heads propose for their own department only.
	if _, err := s.ProposeGovernmentProject(1, "audit", game.RoleEducation, ""); !errors.Is(err, game.ErrUnauthorized) {
		t.Fatalf("cross-department proposal: got %v, want ErrUnauthorized", err)
	}
	gp, err := s.ProposeGovernmentProject(1, "mint reform", game.RoleTreasury, "new coinage")
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	// The President may propose for any department.
	if _, err := s.ProposeGovernmentProject(0, "school audit", game.RoleEducation, ""); err != nil {
		t.Fatalf("presidential proposal: %v", err)
	}

	if got := len(s.VetoableProjects()); got != 2 {
		t.Fatalf("vetoable projects = %d, want 2", got)
	}

	if err := s.VetoProject(1, gp.ID); !errors.Is(err, game.ErrUnauthorized) {
		t.Fatalf("non-president veto: got %v, want ErrUnauthorized", err)
	}
	if err := s.VetoProject(0, gp.ID); err != nil {
		t.Fatalf("veto: %v", err)
	}
	if s.GovernmentProjects[0].Status != game.ProjectCancelledByVeto {
		t.Errorf("status = %v, want cancelledByVeto", s.GovernmentProjects[0].Status)
	}
	if err := s.VetoProject(0, gp.ID); !errors.Is(err, game.ErrInvalidStage) {
		t.Fatalf("double veto: got %v, want ErrInvalidStage", err)
	}
	if got := len(s.VetoableProjects()); got != 1 {
		t.Fatalf("vetoable projects after veto = %d, want 1", got)
	}

	if err := s.VetoProject(0, uuid.New()); !errors.Is(err, game.ErrNotFound) {
		t.Fatalf("unknown project: got %v, want ErrNotFound", err)
	}
}
