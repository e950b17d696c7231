package society

// Society point weights. A completed building is worth far more than
// any individual, which is what pushes governments toward
// construction in the late game.
const (
	PointsPerPerson        = 5
	PointsPerUneducated    = 10
	PointsPerEducated      = 20
	PointsPerHighSkill     = 30
	PointsPerResearcher    = 40
	PointsPerSmallBuilding = 200
	PointsPerBigBuilding   = 400
	PointsPerMachinery     = 400
)

// Base-game sizes.
const (
	BasePopulation   = 100
	BaseFoodStock    = 100
	BaseRawMaterials = 10
)

// State is the complete simulated-society state, mutated once per
// round by the engine and by construction approvals.
type State struct {
	Population   []Person   `json:"population"`
	FoodStock    []FoodUnit `json:"food_stock"`
	RawMaterials int        `json:"raw_materials"`

	SmallBuildings int `json:"small_buildings"`
	BigBuildings   int `json:"big_buildings"`
	Machinery      int `json:"machinery"`

	Projects []ConstructionProject `json:"projects"`
}

// NewBaseState creates the starting society: a fully uneducated
// population with one fresh food unit per head and a small material
// reserve.
func NewBaseState() *State {
	s := &State{
		Population:   make([]Person, BasePopulation),
		FoodStock:    make([]FoodUnit, BaseFoodStock),
		RawMaterials: BaseRawMaterials,
	}
	return s
}

// CountTier returns the number of living members at the given tier.
func (s *State) CountTier(t EducationTier) int {
	n := 0
	for i := range s.Population {
		if !s.Population[i].Dead && s.Population[i].Tier == t {
			n++
		}
	}
	return n
}

// UneducatedCount returns the uneducated-labor headcount.
func (s *State) UneducatedCount() int {
	return s.CountTier(TierUneducated)
}

// TotalPoints computes the society score used for end-game scoring.
func (s *State) TotalPoints() int {
	pts := len(s.Population) * PointsPerPerson
	pts += s.CountTier(TierUneducated) * PointsPerUneducated
	pts += s.CountTier(TierEducated) * PointsPerEducated
	pts += s.CountTier(TierHighSkill) * PointsPerHighSkill
	pts += s.CountTier(TierResearcher) * PointsPerResearcher
	pts += s.SmallBuildings * PointsPerSmallBuilding
	pts += s.BigBuildings * PointsPerBigBuilding
	pts += s.Machinery * PointsPerMachinery
	return pts
}
