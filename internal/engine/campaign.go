// Campaign-stage flow: chat, rallies, and the per-player campaign
// cursor that eventually tips the session into the voting stage.
package engine

import (
	"log/slog"
	"strings"

	"github.com/jzheng/societygame/internal/game"
)

// SendText sends a private message from the sender to one recipient.
// Costs ChatCost gold.
func (s *Session) SendText(sender, to int, text string) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	if _, err := s.player(sender); err != nil {
		return err
	}
	if _, err := s.player(to); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return game.ErrEmptyText
	}
	if err := s.spend(sender, ChatCost); err != nil {
		return err
	}
	target := to
	s.Messages = append(s.Messages, game.ChatMessage{
		From:  sender,
		To:    &target,
		Text:  trimmed,
		Round: s.round(),
	})
	return nil
}

// SendRally broadcasts a rally to every player. Costs RallyCost gold.
func (s *Session) SendRally(sender int, text string) error {
	if err := s.ensureActive(); err != nil {
		return err
	}
	if _, err := s.player(sender); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return game.ErrEmptyText
	}
	if err := s.spend(sender, RallyCost); err != nil {
		return err
	}
	s.Messages = append(s.Messages, game.ChatMessage{
		From:    sender,
		Text:    trimmed,
		IsRally: true,
		Round:   s.round(),
	})
	s.EmitEvent(Event{
		Round:       s.round(),
		Description: s.Players[sender].Name + " holds a rally",
		Category:    "chat",
	})
	return nil
}

// Inbox returns the messages visible to one player: everything
// addressed to them plus all rallies, excluding their own sends.
// Insertion order is preserved, which breaks same-round ties.
func (s *Session) Inbox(idx int) []game.ChatMessage {
	var out []game.ChatMessage
	for _, m := range s.Messages {
		if m.From == idx {
			continue
		}
		if m.IsRally || (m.To != nil && *m.To == idx) {
			out = append(out, m)
		}
	}
	return out
}

// Conversation returns the message thread between two players,
// including rallies either of them sent.
func (s *Session) Conversation(i, j int) []game.ChatMessage {
	var out []game.ChatMessage
	for _, m := range s.Messages {
		if m.IsRally {
			if m.From == i || m.From == j {
				out = append(out, m)
			}
			continue
		}
		if m.To == nil {
			continue
		}
		if (m.From == i && *m.To == j) || (m.From == j && *m.To == i) {
			out = append(out, m)
		}
	}
	return out
}

// AdvanceCampaignPlayer moves the campaign cursor one player forward.
// Wrapping past the last player starts a new campaign round; running
// out of campaign rounds moves the session to the voting stage.
func (s *Session) AdvanceCampaignPlayer() error {
	if s.Stage != game.StageCampaigning {
		return game.ErrInvalidStage
	}
	if s.CurrentIndex < len(s.Players)-1 {
		s.CurrentIndex++
		return nil
	}
	s.CurrentIndex = 0
	s.CampaignRound++
	if s.CampaignRound > s.Config.CampaignRounds {
		s.Stage = game.StageVoting
		s.VotingPhase = PhaseNominations
		slog.Info("campaign over, voting begins", "rounds", s.Config.CampaignRounds)
		s.EmitEvent(Event{Round: s.Config.CampaignRounds, Description: "campaign season ends, nominations open", Category: "election"})
	}
	return nil
}
