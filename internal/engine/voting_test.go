package engine

import (
	"errors"
	"testing"

	"github.com/jzheng/societygame/internal/game"
)

// votingSession returns a session fast-forwarded to the nominations
// phase.
func votingSession(t *testing.T, players int) *Session {
	t.Helper()
	s := NewSession(Config{Players: players, CampaignRounds: 1, Seed: 7})
	s.Stage = game.StageVoting
	s.VotingPhase = PhaseNominations
	s.CurrentIndex = 0
	return s
}

// advancePhase moves the cursor past every player, wrapping the
// current phase.
func advancePhase(t *testing.T, s *Session) {
	t.Helper()
	for i := 0; i < len(s.Players); i++ {
		if err := s.AdvanceVotingPlayer(); err != nil {
			t.Fatalf("advance at player %d: %v", i, err)
		}
	}
}

func declare(t *testing.T, s *Session, player int, roles ...game.Role) {
	t.Helper()
	if err := s.DeclareCandidacy(player, roles); err != nil {
		t.Fatalf("declare player %d: %v", player, err)
	}
}

func vote(t *testing.T, s *Session, player int, role game.Role, chosen ...int) {
	t.Helper()
	if err := s.CastVote(player, role, chosen); err != nil {
		t.Fatalf("vote player %d: %v", player, err)
	}
}

func TestDeclareCandidacyRules(t *testing.T) {
	s := votingSession(t, 4)

	if err := s.DeclareCandidacy(1, []game.Role{game.RolePresident}); !errors.Is(err, game.ErrUnauthorized) {
		t.Fatalf("out-of-turn declaration: got %v, want ErrUnauthorized", err)
	}
	too := []game.Role{game.RolePresident, game.RoleTreasury, game.RoleLabor}
	if err := s.DeclareCandidacy(0, too); !errors.Is(err, game.ErrTooManyRoles) {
		t.Fatalf("three roles: got %v, want ErrTooManyRoles", err)
	}

	declare(t, s, 0, game.RolePresident, game.RoleTreasury)
	declare(t, s, 0, game.RoleLabor)
	if len(s.Declarations) != 1 {
		t.Fatalf("redeclaration must replace, got %d declarations", len(s.Declarations))
	}
	if got := s.Declarations[0].Roles; len(got) != 1 || got[0] != game.RoleLabor {
		t.Fatalf("redeclaration roles = %v, want [Labor]", got)
	}

	s.VotingPhase = PhaseVoting
	if err := s.DeclareCandidacy(0, []game.Role{game.RolePresident}); !errors.Is(err, game.ErrInvalidStage) {
		t.Fatalf("declaration after nominations: got %v, want ErrInvalidStage", err)
	}
}

func TestCastVoteValidation(t *testing.T) {
	s := votingSession(t, 4)
	declare(t, s, 0, game.RolePresident)
	advancePhase(t, s)

	if s.VotingPhase != PhaseVoting {
		t.Fatalf("phase = %s, want voting", s.VotingPhase)
	}
	if err := s.CastVote(0, game.RolePresident, []int{1}); !errors.Is(err, game.ErrInvalidBallot) {
		t.Fatalf("vote for non-candidate: got %v, want ErrInvalidBallot", err)
	}
	if err := s.CastVote(0, game.RolePresident, nil); !errors.Is(err, game.ErrInvalidBallot) {
		t.Fatalf("empty ballot: got %v, want ErrInvalidBallot", err)
	}
	if err := s.CastVote(0, game.RoleTreasury, []int{0}); !errors.Is(err, game.ErrInvalidBallot) {
		t.Fatalf("vote for role with no candidates: got %v, want ErrInvalidBallot", err)
	}

	vote(t, s, 0, game.RolePresident, 0)
	vote(t, s, 0, game.RolePresident, 0)
	if len(s.Votes) != 1 {
		t.Fatalf("revoting must replace, got %d ballots", len(s.Votes))
	}
}

func TestElectionUniqueWinners(t *testing.T) {
	s := votingSession(t, 4)

	declare(t, s, 0, game.RolePresident)
	if err := s.AdvanceVotingPlayer(); err != nil {
		t.Fatal(err)
	}
	declare(t, s, 1, game.RoleChiefJustice)
	for i := 0; i < 3; i++ {
		if err := s.AdvanceVotingPlayer(); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 4; i++ {
		vote(t, s, i, game.RolePresident, 0)
		vote(t, s, i, game.RoleChiefJustice, 1)
		if err := s.AdvanceVotingPlayer(); err != nil {
			t.Fatal(err)
		}
	}

	if s.VotingPhase != PhaseReveal {
		t.Fatalf("phase = %s, want revealAssignments", s.VotingPhase)
	}
	if !s.Players[0].HasRole(game.RolePresident) {
		t.Errorf("player 0 should be President, has %v", s.Players[0].Role)
	}
	if !s.Players[1].HasRole(game.RoleChiefJustice) {
		t.Errorf("player 1 should be Chief Justice, has %v", s.Players[1].Role)
	}

	// Leftover players pick up roles too, with no duplicates.
	seen := make(map[game.Role]bool)
	for i, p := range s.Players {
		if p.Role == nil {
			t.Fatalf("player %d left without a role", i)
		}
		if seen[*p.Role] {
			t.Fatalf("role %s assigned twice", *p.Role)
		}
		seen[*p.Role] = true
	}

	if err := s.ContinueToRunning(); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if s.Stage != game.StageRunning {
		t.Fatalf("stage = %s, want running", s.Stage)
	}
	if s.CurrentIndex != 0 {
		t.Fatalf("cursor should open on the President, got %d", s.CurrentIndex)
	}
}

func TestTieTriggersRestrictedRevote(t *testing.T) {
	s := votingSession(t, 4)

	declare(t, s, 0, game.RolePresident)
	if err := s.AdvanceVotingPlayer(); err != nil {
		t.Fatal(err)
	}
	declare(t, s, 1, game.RolePresident)
	for i := 0; i < 3; i++ {
		if err := s.AdvanceVotingPlayer(); err != nil {
			t.Fatal(err)
		}
	}

	ballots := [][]int{{0}, {1}, {0}, {1}}
	for i, b := range ballots {
		vote(t, s, i, game.RolePresident, b...)
		if err := s.AdvanceVotingPlayer(); err != nil {
			t.Fatal(err)
		}
	}

	if s.VotingPhase != PhaseRevote {
		t.Fatalf("2-2 split should force a revote, phase = %s", s.VotingPhase)
	}
	if s.RevoteRole != game.RolePresident {
		t.Fatalf("revote role = %s, want President", s.RevoteRole)
	}
	if got := s.CandidatesFor(game.RolePresident); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("revote pool = %v, want [0 1]", got)
	}
	if err := s.CastVote(0, game.RoleTreasury, []int{0}); !errors.Is(err, game.ErrInvalidBallot) {
		t.Fatalf("ballot outside the revote role: got %v, want ErrInvalidBallot", err)
	}

	ballots = [][]int{{0}, {0}, {0}, {1}}
	for i, b := range ballots {
		vote(t, s, i, game.RolePresident, b...)
		if err := s.AdvanceVotingPlayer(); err != nil {
			t.Fatal(err)
		}
	}

	if !s.Players[0].HasRole(game.RolePresident) {
		t.Fatalf("revote majority winner not seated, player 0 role = %v", s.Players[0].Role)
	}
	if s.VotingPhase != PhaseReveal {
		t.Fatalf("phase = %s, want revealAssignments", s.VotingPhase)
	}
}

func TestLockedVotesOverrideBallots(t *testing.T) {
	s := votingSession(t, 4)

	declare(t, s, 0, game.RolePresident)
	if err := s.AdvanceVotingPlayer(); err != nil {
		t.Fatal(err)
	}
	declare(t, s, 1, game.RolePresident)
	for i := 0; i < 3; i++ {
		if err := s.AdvanceVotingPlayer(); err != nil {
			t.Fatal(err)
		}
	}

	// Players 2 and 3 sold their presidential votes to player 1.
	s.LockedVotes[2] = game.LockedVote{Role: game.RolePresident, Candidate: 1}
	s.LockedVotes[3] = game.LockedVote{Role: game.RolePresident, Candidate: 1}

	// Player 2 tries to vote for 0 anyway; player 3 abstains.
	vote(t, s, 0, game.RolePresident, 0)
	if err := s.AdvanceVotingPlayer(); err != nil {
		t.Fatal(err)
	}
	vote(t, s, 1, game.RolePresident, 1)
	if err := s.AdvanceVotingPlayer(); err != nil {
		t.Fatal(err)
	}
	vote(t, s, 2, game.RolePresident, 0)
	for i := 0; i < 2; i++ {
		if err := s.AdvanceVotingPlayer(); err != nil {
			t.Fatal(err)
		}
	}

	if !s.Players[1].HasRole(game.RolePresident) {
		t.Fatalf("locked votes should elect player 1, role = %v", s.Players[1].Role)
	}
}

func TestMultiCandidateBallotCountsEach(t *testing.T) {
	s := votingSession(t, 3)
	declare(t, s, 0, game.RolePresident)
	if err := s.AdvanceVotingPlayer(); err != nil {
		t.Fatal(err)
	}
	declare(t, s, 1, game.RolePresident)
	for i := 0; i < 2; i++ {
		if err := s.AdvanceVotingPlayer(); err != nil {
			t.Fatal(err)
		}
	}

	vote(t, s, 0, game.RolePresident, 0, 1)
	counts := s.tally(game.RolePresident, nil)
	if counts[0] != 1 || counts[1] != 1 {
		t.Fatalf("approval ballot counts = %v, want 1 for each", counts)
	}
}

func TestNoBallotsStillSeatsEveryone(t *testing.T) {
	s := votingSession(t, 10)
	advancePhase(t, s) // nominations, nobody declares
	advancePhase(t, s) // voting, nobody votes

	if s.VotingPhase != PhaseReveal {
		t.Fatalf("phase = %s, want revealAssignments", s.VotingPhase)
	}
	seen := make(map[game.Role]bool)
	for i, p := range s.Players {
		if p.Role == nil {
			t.Fatalf("player %d left without a role", i)
		}
		if seen[*p.Role] {
			t.Fatalf("role %s assigned twice", *p.Role)
		}
		seen[*p.Role] = true
	}
}

func TestQuickAssignRoles(t *testing.T) {
	s := NewSession(Config{Players: 10, Seed: 3})
	if err := s.QuickAssignRoles(); err != nil {
		t.Fatalf("quick assign: %v", err)
	}
	if s.Stage != game.StageRunning {
		t.Fatalf("stage = %s, want running", s.Stage)
	}
	seen := make(map[game.Role]bool)
	for i, p := range s.Players {
		if p.Role == nil {
			t.Fatalf("player %d left without a role", i)
		}
		if seen[*p.Role] {
			t.Fatalf("role %s assigned twice", *p.Role)
		}
		seen[*p.Role] = true
	}
	if len(s.TurnOrder) != 10 {
		t.Fatalf("turn order length = %d, want 10", len(s.TurnOrder))
	}
}
