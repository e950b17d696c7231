package engine

import (
	"github.com/jzheng/societygame/internal/game"
	"github.com/jzheng/societygame/internal/society"
)

// Snapshot is the render view handed to the presentation layer: stage
// and cursor, counters, and society aggregates. Players carry their
// role names so clients never need the role enum.
type Snapshot struct {
	Stage         string `json:"stage"`
	VotingPhase   string `json:"voting_phase,omitempty"`
	RevoteRole    string `json:"revote_role,omitempty"`
	CurrentIndex  int    `json:"current_index"`
	CurrentPlayer string `json:"current_player"`
	TurnNumber    int    `json:"turn_number"`
	CampaignRound int    `json:"campaign_round"`
	MaxRounds     int    `json:"max_rounds"`

	Players []PlayerView `json:"players"`
	Society SocietyView  `json:"society"`

	Promises        int  `json:"open_promises"`
	PendingBuilding bool `json:"pending_building"`
}

// PlayerView is a player as shown to clients.
type PlayerView struct {
	Index int     `json:"index"`
	Name  string  `json:"name"`
	Role  string  `json:"role,omitempty"`
	Gold  int     `json:"gold"`
	Score float64 `json:"score,omitempty"`
}

// SocietyView aggregates the simulated world for display.
type SocietyView struct {
	Population     int                   `json:"population"`
	Uneducated     int                   `json:"uneducated"`
	Educated       int                   `json:"educated"`
	Food           int                   `json:"food"`
	FoodBreakdown  society.FoodBreakdown `json:"food_breakdown"`
	RawMaterials   int                   `json:"raw_materials"`
	SmallBuildings int                   `json:"small_buildings"`
	BigBuildings   int                   `json:"big_buildings"`
	Machinery      int                   `json:"machinery"`
	Projects       int                   `json:"projects"`
	TotalPoints    int                   `json:"total_points"`
}

// Snapshot builds the current render view.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Stage:         s.Stage.String(),
		CurrentIndex:  s.CurrentIndex,
		CurrentPlayer: s.CurrentPlayer().Name,
		TurnNumber:    s.TurnNumber,
		CampaignRound: s.CampaignRound,
		MaxRounds:     s.Config.MaxRounds,
		Players:       make([]PlayerView, len(s.Players)),
		Society:       s.societyView(),
		Promises:      len(s.Promises),
	}
	if s.Stage == game.StageVoting {
		snap.VotingPhase = s.VotingPhase.String()
		if s.VotingPhase == PhaseRevote {
			snap.RevoteRole = s.RevoteRole.String()
		}
	}
	snap.PendingBuilding = s.PendingApproval != nil
	for i := range s.Players {
		p := &s.Players[i]
		pv := PlayerView{Index: p.Index, Name: p.Name, Gold: p.Gold, Score: p.PersonalScore}
		if p.Role != nil {
			pv.Role = p.Role.String()
		}
		snap.Players[i] = pv
	}
	return snap
}

func (s *Session) societyView() SocietyView {
	soc := s.Society
	return SocietyView{
		Population:     len(soc.Population),
		Uneducated:     soc.CountTier(society.TierUneducated),
		Educated:       soc.CountTier(society.TierEducated),
		Food:           len(soc.FoodStock),
		FoodBreakdown:  society.Breakdown(soc.FoodStock),
		RawMaterials:   soc.RawMaterials,
		SmallBuildings: soc.SmallBuildings,
		BigBuildings:   soc.BigBuildings,
		Machinery:      soc.Machinery,
		Projects:       len(soc.Projects),
		TotalPoints:    soc.TotalPoints(),
	}
}
