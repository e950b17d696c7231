package society

import "testing"

func TestPersonHealthProgression(t *testing.T) {
	cases := []struct {
		name   string
		person Person
		dead   bool
	}{
		{"healthy", Person{}, false},
		{"mild sickness worsens", Person{SicknessLevel: 1}, false},
		{"terminal sickness", Person{SicknessLevel: MaxSickness}, true},
		{"one hungry turn", Person{HungeredTurns: 1}, false},
		{"lethal hunger", Person{HungeredTurns: LethalHungerTurns}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.person
			p.ProgressHealth()
			if p.Dead != tc.dead {
				t.Fatalf("dead = %v, want %v", p.Dead, tc.dead)
			}
		})
	}

	p := Person{SicknessLevel: 1}
	p.ProgressHealth()
	if p.SicknessLevel != 2 {
		t.Fatalf("sickness should worsen each round, level = %d", p.SicknessLevel)
	}
}

func TestFoodSpoilage(t *testing.T) {
	f := FoodUnit{}
	for i := 0; i < SpoilAge-1; i++ {
		f.ProgressRound()
		if f.Spoiled() {
			t.Fatalf("spoiled at age %d, limit is %d", f.Age, SpoilAge)
		}
	}
	f.ProgressRound()
	if !f.Spoiled() {
		t.Fatalf("not spoiled at age %d", f.Age)
	}

	eaten := FoodUnit{Consumed: true}
	eaten.ProgressRound()
	if eaten.Age != 0 {
		t.Fatal("consumed food must not age")
	}
}

func TestFoodBreakdown(t *testing.T) {
	stock := []FoodUnit{
		{},               // fresh
		{Age: 1},         // spoiling
		{Age: SpoilAge},  // spoiled
		{Consumed: true}, // counts as waste
	}
	b := Breakdown(stock)
	if b.Fresh != 1 || b.Spoiling != 1 || b.Spoiled != 2 {
		t.Fatalf("breakdown = %+v, want 1/1/2", b)
	}
}

func TestNewBaseState(t *testing.T) {
	s := NewBaseState()
	if len(s.Population) != BasePopulation {
		t.Errorf("population = %d, want %d", len(s.Population), BasePopulation)
	}
	if s.UneducatedCount() != BasePopulation {
		t.Errorf("base population should be fully uneducated")
	}
	if len(s.FoodStock) != BaseFoodStock {
		t.Errorf("food stock = %d, want %d", len(s.FoodStock), BaseFoodStock)
	}
	if s.RawMaterials != BaseRawMaterials {
		t.Errorf("raw materials = %d, want %d", s.RawMaterials, BaseRawMaterials)
	}
}

func TestTotalPoints(t *testing.T) {
	s := &State{
		Population: []Person{
			{Tier: TierUneducated},
			{Tier: TierEducated},
			{Tier: TierHighSkill},
			{Tier: TierResearcher},
			{Tier: TierResearcher, Dead: true}, // headcount only
		},
		SmallBuildings: 2,
		BigBuildings:   1,
		Machinery:      1,
	}
	// 5 heads × 5, living tiers 10+20+30+40, 2×200 + 400 + 400.
	want := 5*PointsPerPerson +
		PointsPerUneducated + PointsPerEducated + PointsPerHighSkill + PointsPerResearcher +
		2*PointsPerSmallBuilding + PointsPerBigBuilding + PointsPerMachinery
	if got := s.TotalPoints(); got != want {
		t.Fatalf("points = %d, want %d", got, want)
	}
}

func TestBuildingCatalog(t *testing.T) {
	for _, b := range AllBuildings {
		req := b.Requirements()
		if req.Workers == 0 {
			t.Errorf("%s requires no workers", b)
		}
		if req.Kind.BuildTurns() == 0 {
			t.Errorf("%s builds instantly", b)
		}
	}

	if got := BuildingHospital.Requirements().Kind.BuildTurns(); got != 3 {
		t.Errorf("big buildings take %d turns, want 3", got)
	}
	if got := BuildingMine.Requirements().Kind.BuildTurns(); got != 2 {
		t.Errorf("small buildings take %d turns, want 2", got)
	}

	approvers := map[Building]string{
		BuildingSchool:      "Head: Education",
		BuildingHospital:    "Head: Public Health",
		BuildingFederalBank: "Head: Treasury",
		BuildingGoldMine:    "Head: Resource Allocation",
	}
	for b, want := range approvers {
		if got := b.Approver().String(); got != want {
			t.Errorf("%s approver = %q, want %q", b, got, want)
		}
	}
}
