// Package society provides the simulated-world data model: the
// population, the food store, raw materials, and construction.
package society

// EducationTier is a person's workforce classification.
type EducationTier uint8

const (
	TierUneducated EducationTier = iota
	TierEducated
	TierHighSkill
	TierResearcher
)

// MaxSickness is the severity level past which a person dies.
const MaxSickness = 5

// LethalHungerTurns is the count of consecutive hungered turns that
// kills a person.
const LethalHungerTurns = 2

// Person is one member of the population.
type Person struct {
	Tier          EducationTier `json:"tier"`
	HungeredTurns int           `json:"hungered_turns"`
	SicknessLevel int           `json:"sickness_level"` // 0 = healthy, 1..5 increasing
	Dead          bool          `json:"dead"`
}

// ProgressHealth advances one round of health state: active sickness
// worsens by one level, and death triggers past the severity cap or
// after too many hungered turns.
func (p *Person) ProgressHealth() {
	if p.SicknessLevel > 0 {
		p.SicknessLevel++
	}
	if p.SicknessLevel > MaxSickness {
		p.Dead = true
	}
	if p.HungeredTurns >= LethalHungerTurns {
		p.Dead = true
	}
}

// Uneducated reports whether the person counts as uneducated labor.
func (p *Person) Uneducated() bool {
	return p.Tier == TierUneducated
}
