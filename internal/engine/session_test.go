package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jzheng/societygame/internal/game"
	"github.com/jzheng/societygame/internal/society"
)

func TestConfigDefaults(t *testing.T) {
	s := NewSession(Config{})
	if len(s.Players) != DefaultPlayers {
		t.Errorf("players = %d, want %d", len(s.Players), DefaultPlayers)
	}
	if s.Config.CampaignRounds != DefaultCampaignRounds {
		t.Errorf("campaign rounds = %d, want %d", s.Config.CampaignRounds, DefaultCampaignRounds)
	}
	if s.Config.MaxRounds != DefaultMaxRounds {
		t.Errorf("max rounds = %d, want %d", s.Config.MaxRounds, DefaultMaxRounds)
	}
	if s.Stage != game.StageCampaigning {
		t.Errorf("stage = %s, want campaigning", s.Stage)
	}
	for i, p := range s.Players {
		if p.Gold != StartingGold {
			t.Errorf("player %d gold = %d, want %d", i, p.Gold, StartingGold)
		}
		if p.Role != nil {
			t.Errorf("player %d starts with a role", i)
		}
	}
}

func TestSpendRefusesOverdraft(t *testing.T) {
	s := NewSession(Config{Players: 2, Seed: 1})
	s.Players[0].Gold = 3

	if err := s.spend(0, 5); !errors.Is(err, game.ErrInsufficientGold) {
		t.Fatalf("got %v, want ErrInsufficientGold", err)
	}
	if s.Players[0].Gold != 3 {
		t.Fatalf("failed spend must not clamp, gold = %d", s.Players[0].Gold)
	}
	if err := s.spend(0, 3); err != nil {
		t.Fatalf("exact spend: %v", err)
	}
	if s.Players[0].Gold != 0 {
		t.Fatalf("gold = %d, want 0", s.Players[0].Gold)
	}
}

func TestResetGameRestoresInitialModel(t *testing.T) {
	s := NewSession(Config{Players: 4, Seed: 9})
	if err := s.SendRally(0, "remember me"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ProposePromise(0, 1, 10, game.RoleLabor); err != nil {
		t.Fatal(err)
	}
	if err := s.QuickAssignRoles(); err != nil {
		t.Fatal(err)
	}
	s.Society.RawMaterials = 99

	s.ResetGame()

	if s.Stage != game.StageCampaigning {
		t.Errorf("stage = %s, want campaigning", s.Stage)
	}
	if s.TurnNumber != 1 || s.CampaignRound != 1 || s.CurrentIndex != 0 {
		t.Errorf("counters = %d/%d/%d, want 1/1/0", s.TurnNumber, s.CampaignRound, s.CurrentIndex)
	}
	for i, p := range s.Players {
		if p.Gold != StartingGold || p.Role != nil || p.PersonalScore != 0 {
			t.Errorf("player %d not reset: %+v", i, p)
		}
	}
	if len(s.Messages) != 0 || len(s.Promises) != 0 || len(s.LockedVotes) != 0 || len(s.Events) != 0 {
		t.Error("reset must clear messages, promises, locked votes, and events")
	}
	if len(s.Society.Population) != society.BasePopulation || s.Society.RawMaterials != society.BaseRawMaterials {
		t.Error("reset must rebuild the base society")
	}
}

func TestEndedGameRefusesMutation(t *testing.T) {
	s := NewSession(Config{Players: 3, Seed: 1})
	pres := game.RolePresident
	s.Players[0].Role = &pres
	s.Stage = game.StageEnded

	actions := []struct {
		name string
		call func() error
	}{
		{"text", func() error { return s.SendText(0, 1, "psst") }},
		{"rally", func() error { return s.SendRally(0, "one more term") }},
		{"propose promise", func() error {
			_, err := s.ProposePromise(0, 1, 10, game.RoleLabor)
			return err
		}},
		{"speech", func() error { return s.SendPresidentialSpeech(0, "farewell") }},
		{"executive order", func() error {
			_, err := s.IssueExecutiveOrder(0, "one last decree")
			return err
		}},
		{"veto", func() error { return s.UseVeto(0, "never") }},
		{"government project", func() error {
			_, err := s.ProposeGovernmentProject(0, "legacy", game.RoleTreasury, "")
			return err
		}},
	}
	for _, a := range actions {
		if err := a.call(); !errors.Is(err, game.ErrInvalidStage) {
			t.Errorf("%s after the game ended: got %v, want ErrInvalidStage", a.name, err)
		}
	}

	if len(s.Messages) != 0 || len(s.Promises) != 0 || len(s.ExecutiveOrders) != 0 || len(s.VetoRecords) != 0 {
		t.Error("post-game actions must leave no records")
	}
	if s.Players[0].Gold != StartingGold {
		t.Errorf("gold = %d, want untouched %d", s.Players[0].Gold, StartingGold)
	}

	// ResetGame is the one legal move out of the terminal stage.
	s.ResetGame()
	if s.Stage != game.StageCampaigning {
		t.Fatalf("stage after reset = %s, want campaigning", s.Stage)
	}
	if err := s.SendText(0, 1, "hello again"); err != nil {
		t.Fatalf("text after reset: %v", err)
	}
}

func TestEventLogIsBounded(t *testing.T) {
	s := NewSession(Config{Players: 2, Seed: 1})
	for i := 0; i < maxEvents+50; i++ {
		s.EmitEvent(Event{Round: 1, Description: fmt.Sprintf("event %d", i), Category: "society"})
	}
	if len(s.Events) != maxEvents {
		t.Fatalf("events = %d, want capped at %d", len(s.Events), maxEvents)
	}
	if s.Events[len(s.Events)-1].Description != fmt.Sprintf("event %d", maxEvents+49) {
		t.Fatal("trim must drop the oldest events, not the newest")
	}
}
