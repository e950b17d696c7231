// The election: nominations, ballots, tallying, tie revotes, and the
// unfilled-role fallback. Runs once, between the campaigning and
// running stages.
package engine

import (
	"log/slog"
	"sort"

	"github.com/jzheng/societygame/internal/game"
)

// VotingPhase is the state of the election machine.
type VotingPhase uint8

const (
	PhaseNominations VotingPhase = iota
	PhaseVoting
	PhaseRevote
	PhaseReveal
	PhaseFinished
)

func (p VotingPhase) String() string {
	switch p {
	case PhaseNominations:
		return "nominations"
	case PhaseVoting:
		return "voting"
	case PhaseRevote:
		return "revote"
	case PhaseReveal:
		return "revealAssignments"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// DeclareCandidacy records which roles the acting player runs for.
// A redeclaration replaces the previous one; it never accumulates.
func (s *Session) DeclareCandidacy(actor int, roles []game.Role) error {
	if s.Stage != game.StageVoting || s.VotingPhase != PhaseNominations {
		return game.ErrInvalidStage
	}
	if _, err := s.player(actor); err != nil {
		return err
	}
	if actor != s.CurrentIndex {
		return game.ErrUnauthorized
	}
	if len(roles) > 2 {
		return game.ErrTooManyRoles
	}
	for i := 0; i < len(s.Declarations); i++ {
		if s.Declarations[i].PlayerIndex == actor {
			s.Declarations = append(s.Declarations[:i], s.Declarations[i+1:]...)
			i--
		}
	}
	s.Declarations = append(s.Declarations, game.CandidateDeclaration{
		PlayerIndex: actor,
		Roles:       append([]game.Role(nil), roles...),
	})
	return nil
}

// CandidatesFor returns the declared candidate indices for a role, in
// ascending player order. During a revote for that role, the pool is
// restricted to the previously tied candidates.
func (s *Session) CandidatesFor(role game.Role) []int {
	if s.VotingPhase == PhaseRevote {
		if pool, ok := s.RevotePools[role]; ok {
			return append([]int(nil), pool...)
		}
	}
	var out []int
	for _, d := range s.Declarations {
		for _, r := range d.Roles {
			if r == role {
				out = append(out, d.PlayerIndex)
				break
			}
		}
	}
	sort.Ints(out)
	return out
}

// CastVote records the acting player's ballot for one role, replacing
// any earlier ballot by the same voter for the same role. Every
// chosen candidate must have declared for the role (or, during a
// revote, be in the tied pool).
func (s *Session) CastVote(actor int, role game.Role, chosen []int) error {
	if s.Stage != game.StageVoting {
		return game.ErrInvalidStage
	}
	if s.VotingPhase != PhaseVoting && s.VotingPhase != PhaseRevote {
		return game.ErrInvalidStage
	}
	if s.VotingPhase == PhaseRevote && role != s.RevoteRole {
		return game.ErrInvalidBallot
	}
	if _, err := s.player(actor); err != nil {
		return err
	}
	if actor != s.CurrentIndex {
		return game.ErrUnauthorized
	}
	candidates := s.CandidatesFor(role)
	if len(candidates) == 0 || len(chosen) == 0 {
		return game.ErrInvalidBallot
	}
	valid := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		valid[c] = true
	}
	for _, c := range chosen {
		if !valid[c] {
			return game.ErrInvalidBallot
		}
	}
	s.removeVote(actor, role)
	s.Votes = append(s.Votes, game.Vote{
		VoterIndex: actor,
		Role:       role,
		Chosen:     append([]int(nil), chosen...),
	})
	return nil
}

// AdvanceVotingPlayer moves the election cursor one player forward.
// Wrapping past the last player completes the current phase:
// nominations open the ballot, a completed ballot is tallied, and a
// completed revote ballot is re-tallied.
func (s *Session) AdvanceVotingPlayer() error {
	if s.Stage != game.StageVoting {
		return game.ErrInvalidStage
	}
	if s.VotingPhase == PhaseReveal || s.VotingPhase == PhaseFinished {
		return game.ErrInvalidStage
	}
	if s.CurrentIndex < len(s.Players)-1 {
		s.CurrentIndex++
		return nil
	}
	s.CurrentIndex = 0
	switch s.VotingPhase {
	case PhaseNominations:
		s.Votes = nil
		s.VotingPhase = PhaseVoting
	case PhaseVoting:
		s.computeResults()
	case PhaseRevote:
		s.computeRevote(s.RevoteRole)
	}
	return nil
}

// ContinueToRunning is the explicit continue action after the results
// reveal. It seats the President (or the first seated player as a
// fallback) and enters the running stage.
func (s *Session) ContinueToRunning() error {
	if s.Stage != game.StageVoting || s.VotingPhase != PhaseReveal {
		return game.ErrInvalidStage
	}
	s.VotingPhase = PhaseFinished
	s.Stage = game.StageRunning
	s.rebuildTurnOrder()
	slog.Info("government seated, running stage begins",
		"turn_order", len(s.TurnOrder),
		"president", s.playerWithRole(game.RolePresident),
	)
	s.EmitEvent(Event{Round: s.TurnNumber, Description: "the new government takes office", Category: "election"})
	return nil
}

// removeVote drops a voter's ballot for one role, if present.
func (s *Session) removeVote(voter int, role game.Role) {
	for i := 0; i < len(s.Votes); i++ {
		if s.Votes[i].VoterIndex == voter && s.Votes[i].Role == role {
			s.Votes = append(s.Votes[:i], s.Votes[i+1:]...)
			i--
		}
	}
}

// injectLockedVotes overwrites each committed voter's ballot for the
// promised role. Runs before every tally, so locked votes survive
// revote cycles too.
func (s *Session) injectLockedVotes() {
	for voter, lv := range s.LockedVotes {
		s.removeVote(voter, lv.Role)
		s.Votes = append(s.Votes, game.Vote{
			VoterIndex: voter,
			Role:       lv.Role,
			Chosen:     []int{lv.Candidate},
		})
	}
}

// tally counts chosen-candidate occurrences for one role. A ballot
// listing several candidates counts toward every one of them. When
// pool is non-nil only pooled candidates are counted.
func (s *Session) tally(role game.Role, pool []int) map[int]int {
	var pooled map[int]bool
	if pool != nil {
		pooled = make(map[int]bool, len(pool))
		for _, c := range pool {
			pooled[c] = true
		}
	}
	counts := make(map[int]int)
	for _, v := range s.Votes {
		if v.Role != role {
			continue
		}
		for _, c := range v.Chosen {
			if pooled != nil && !pooled[c] {
				continue
			}
			counts[c]++
		}
	}
	return counts
}

// winners returns the candidates with the maximum count, sorted.
func winners(counts map[int]int) []int {
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return nil
	}
	var out []int
	for c, n := range counts {
		if n == max {
			out = append(out, c)
		}
	}
	sort.Ints(out)
	return out
}

// computeResults tallies the full ballot: unique winners take their
// roles immediately, tied roles queue for revotes in fixed role
// order, and once everything determinate is settled the leftover
// players and roles are paired off at random.
func (s *Session) computeResults() {
	s.injectLockedVotes()

	s.RevoteQueue = nil
	s.RevotePools = make(map[game.Role][]int)

	for _, role := range game.RoleOrder {
		w := winners(s.tally(role, nil))
		switch {
		case len(w) == 1:
			r := role
			s.Players[w[0]].Role = &r
			s.EmitEvent(Event{
				Round:       s.TurnNumber,
				Description: s.Players[w[0]].Name + " is elected " + role.String(),
				Category:    "election",
			})
		case len(w) > 1:
			s.RevoteQueue = append(s.RevoteQueue, role)
			s.RevotePools[role] = w
		}
	}

	if len(s.RevoteQueue) > 0 {
		s.startRevote(s.RevoteQueue[0])
		return
	}
	s.finishAssignments()
}

// computeRevote re-tallies one tied role restricted to its tied
// candidate pool. A continued tie re-runs the same revote.
func (s *Session) computeRevote(role game.Role) {
	s.injectLockedVotes()

	w := winners(s.tally(role, s.RevotePools[role]))
	if len(w) != 1 {
		// Still tied (or nobody voted) — same role, same pool, again.
		s.startRevote(role)
		return
	}

	r := role
	s.Players[w[0]].Role = &r
	s.EmitEvent(Event{
		Round:       s.TurnNumber,
		Description: s.Players[w[0]].Name + " wins the revote for " + role.String(),
		Category:    "election",
	})
	delete(s.RevotePools, role)
	if len(s.RevoteQueue) > 0 && s.RevoteQueue[0] == role {
		s.RevoteQueue = s.RevoteQueue[1:]
	}

	if len(s.RevoteQueue) > 0 {
		s.startRevote(s.RevoteQueue[0])
		return
	}
	s.finishAssignments()
}

// startRevote clears the stale ballots for the tied role and opens a
// fresh revote round for it.
func (s *Session) startRevote(role game.Role) {
	for i := 0; i < len(s.Votes); i++ {
		if s.Votes[i].Role == role {
			s.Votes = append(s.Votes[:i], s.Votes[i+1:]...)
			i--
		}
	}
	s.VotingPhase = PhaseRevote
	s.RevoteRole = role
	s.CurrentIndex = 0
	slog.Info("revote", "role", role.String(), "pool", s.RevotePools[role])
}

// finishAssignments pairs leftover players and roles, rebuilds the
// turn order, and moves to the results reveal.
func (s *Session) finishAssignments() {
	s.assignUnfilledRoles()
	s.rebuildTurnOrder()
	s.VotingPhase = PhaseReveal
}

// assignUnfilledRoles pairs unassigned roles with role-less players by
// seeded shuffle. Not preference-weighted.
func (s *Session) assignUnfilledRoles() {
	taken := make(map[game.Role]bool)
	for i := range s.Players {
		if s.Players[i].Role != nil {
			taken[*s.Players[i].Role] = true
		}
	}
	var available []game.Role
	for _, r := range game.RoleOrder {
		if !taken[r] {
			available = append(available, r)
		}
	}
	s.rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})
	for i := range s.Players {
		if s.Players[i].Role != nil {
			continue
		}
		if len(available) == 0 {
			break
		}
		r := available[len(available)-1]
		available = available[:len(available)-1]
		s.Players[i].Role = &r
	}
}

// QuickAssignRoles skips the election entirely: every player gets a
// random role and the session jumps straight to the running stage.
// Used by the demo CLI and local testing.
func (s *Session) QuickAssignRoles() error {
	if s.Stage == game.StageEnded {
		return game.ErrInvalidStage
	}
	roles := game.AllRoles()
	s.rng.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})
	for i := range s.Players {
		if i >= len(roles) {
			break
		}
		r := roles[i]
		s.Players[i].Role = &r
	}
	s.assignUnfilledRoles()
	s.VotingPhase = PhaseFinished
	s.Stage = game.StageRunning
	s.rebuildTurnOrder()
	return nil
}
