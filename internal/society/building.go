package society

import "github.com/jzheng/societygame/internal/game"

// ProjectKind classifies a construction project and decides both its
// build time and which counter it increments on completion.
type ProjectKind uint8

const (
	ProjectSmall ProjectKind = iota
	ProjectBig
	ProjectMachinery
)

func (k ProjectKind) String() string {
	switch k {
	case ProjectSmall:
		return "small"
	case ProjectBig:
		return "big"
	case ProjectMachinery:
		return "machinery"
	}
	return "unknown"
}

// BuildTurns returns the countdown length for a project kind.
func (k ProjectKind) BuildTurns() int {
	if k == ProjectBig {
		return 3
	}
	return 2
}

// ConstructionProject is a queued build. TurnsRemaining is decremented
// once per round; at zero the corresponding State counter increments
// and the project leaves the queue.
type ConstructionProject struct {
	Kind           ProjectKind `json:"kind"`
	TurnsRemaining int         `json:"turns_remaining"`
	InitiatedBy    int         `json:"initiated_by"` // player index
}

// Building enumerates the structures the Construction department can
// request.
type Building uint8

const (
	BuildingMine Building = iota
	BuildingGoldMine
	BuildingSchool
	BuildingCollege
	BuildingClinic
	BuildingHospital
	BuildingFederalBank
	BuildingMachineShop
)

// AllBuildings lists the catalog in display order.
var AllBuildings = []Building{
	BuildingMine, BuildingGoldMine, BuildingSchool, BuildingCollege,
	BuildingClinic, BuildingHospital, BuildingFederalBank,
	BuildingMachineShop,
}

func (b Building) String() string {
	switch b {
	case BuildingMine:
		return "Mine"
	case BuildingGoldMine:
		return "Gold Mine"
	case BuildingSchool:
		return "School"
	case BuildingCollege:
		return "College"
	case BuildingClinic:
		return "Clinic"
	case BuildingHospital:
		return "Hospital"
	case BuildingFederalBank:
		return "Federal Bank"
	case BuildingMachineShop:
		return "Machine Shop"
	}
	return "Unknown"
}

// Requirements lists what a building consumes when approved.
type Requirements struct {
	Workers      int
	Gold         int
	RawMaterials int
	Kind         ProjectKind
}

// Requirements returns the cost sheet for the building.
func (b Building) Requirements() Requirements {
	switch b {
	case BuildingMine:
		return Requirements{Workers: 10, Gold: 5, RawMaterials: 0, Kind: ProjectSmall}
	case BuildingGoldMine:
		return Requirements{Workers: 10, Gold: 0, RawMaterials: 5, Kind: ProjectBig}
	case BuildingSchool:
		return Requirements{Workers: 10, Gold: 0, RawMaterials: 5, Kind: ProjectSmall}
	case BuildingCollege:
		return Requirements{Workers: 10, Gold: 0, RawMaterials: 10, Kind: ProjectBig}
	case BuildingClinic:
		return Requirements{Workers: 10, Gold: 0, RawMaterials: 5, Kind: ProjectSmall}
	case BuildingHospital:
		return Requirements{Workers: 10, Gold: 0, RawMaterials: 10, Kind: ProjectBig}
	case BuildingFederalBank:
		return Requirements{Workers: 10, Gold: 10, RawMaterials: 10, Kind: ProjectBig}
	case BuildingMachineShop:
		return Requirements{Workers: 10, Gold: 5, RawMaterials: 5, Kind: ProjectMachinery}
	}
	return Requirements{}
}

// Approver returns the department head whose sign-off the building
// needs.
func (b Building) Approver() game.Role {
	switch b {
	case BuildingMine, BuildingGoldMine, BuildingMachineShop:
		return game.RoleResource
	case BuildingSchool, BuildingCollege:
		return game.RoleEducation
	case BuildingClinic, BuildingHospital:
		return game.RolePublicHealth
	case BuildingFederalBank:
		return game.RoleTreasury
	}
	return game.RoleResource
}
