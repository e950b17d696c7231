// The society simulation step. Runs exactly once per round boundary,
// always in the same order: health, food aging, consumption, project
// progress, production, mortality cleanup.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/jzheng/societygame/internal/society"
)

// Production rates per uneducated laborer per round.
const (
	foodPerLaborer     = 2
	laborersPerOreUnit = 10
)

// advanceWorld executes one simulation step against the society.
func (s *Session) advanceWorld() {
	s.progressPopulation()
	s.progressFood()
	s.progressProjects()
	s.produceResources()
	s.removeDeadPopulation()

	b := society.Breakdown(s.Society.FoodStock)
	slog.Info("round report",
		"round", s.TurnNumber,
		"population", len(s.Society.Population),
		"uneducated", s.Society.UneducatedCount(),
		"food", len(s.Society.FoodStock),
		"food_fresh", b.Fresh,
		"raw_materials", s.Society.RawMaterials,
		"projects", len(s.Society.Projects),
		"society_points", s.Society.TotalPoints(),
	)
}

// progressPopulation advances every member's health one round.
func (s *Session) progressPopulation() {
	for i := range s.Society.Population {
		s.Society.Population[i].ProgressHealth()
	}
}

// progressFood ages the stock, discards consumed and spoiled units,
// then feeds the population one unit per head. A shortfall leaves one
// hungered turn per unmet unit, spread over the first members, and
// empties the stock.
func (s *Session) progressFood() {
	soc := s.Society
	for i := range soc.FoodStock {
		soc.FoodStock[i].ProgressRound()
	}

	kept := soc.FoodStock[:0]
	for _, f := range soc.FoodStock {
		if !f.Consumed && !f.Spoiled() {
			kept = append(kept, f)
		}
	}
	soc.FoodStock = kept

	need := len(soc.Population)
	if len(soc.FoodStock) >= need {
		soc.FoodStock = soc.FoodStock[need:]
		return
	}

	deficit := need - len(soc.FoodStock)
	if deficit > len(soc.Population) {
		deficit = len(soc.Population)
	}
	for i := 0; i < deficit; i++ {
		soc.Population[i].HungeredTurns++
	}
	soc.FoodStock = soc.FoodStock[:0]
	if deficit > 0 {
		s.EmitEvent(Event{
			Round:       s.TurnNumber,
			Description: fmt.Sprintf("food shortage: %d people go hungry", deficit),
			Category:    "society",
		})
	}
}

// progressProjects counts construction down and completes finished
// projects into the matching building counter.
func (s *Session) progressProjects() {
	soc := s.Society
	kept := soc.Projects[:0]
	for _, pr := range soc.Projects {
		pr.TurnsRemaining--
		if pr.TurnsRemaining > 0 {
			kept = append(kept, pr)
			continue
		}
		switch pr.Kind {
		case society.ProjectSmall:
			soc.SmallBuildings++
		case society.ProjectBig:
			soc.BigBuildings++
		case society.ProjectMachinery:
			soc.Machinery++
		}
		s.EmitEvent(Event{
			Round:       s.TurnNumber,
			Description: fmt.Sprintf("a %s construction project completes", pr.Kind),
			Category:    "society",
		})
	}
	soc.Projects = kept
}

// produceResources adds fresh food and ore from uneducated labor.
func (s *Session) produceResources() {
	soc := s.Society
	uneducated := soc.UneducatedCount()

	for i := 0; i < foodPerLaborer*uneducated; i++ {
		soc.FoodStock = append(soc.FoodStock, society.FoodUnit{})
	}
	soc.RawMaterials += uneducated / laborersPerOreUnit
}

// removeDeadPopulation drops members flagged dead this round.
func (s *Session) removeDeadPopulation() {
	soc := s.Society
	kept := soc.Population[:0]
	died := 0
	for _, p := range soc.Population {
		if p.Dead {
			died++
			continue
		}
		kept = append(kept, p)
	}
	soc.Population = kept
	if died > 0 {
		s.EmitEvent(Event{
			Round:       s.TurnNumber,
			Description: fmt.Sprintf("%d citizens have died", died),
			Category:    "society",
		})
	}
}
