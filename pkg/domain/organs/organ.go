// Package organs implements the organ side of the daily dry matter and
// nitrogen arbitration protocol.
package organs

import (
	"fmt"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

// FieldConversionFactor converts g/m2 to kg/ha when biomass is handed to
// the surface organic matter pool
const FieldConversionFactor = 10.0

// Arbitration is the contract the arbitrator uses to negotiate with an organ
type Arbitration interface {
	GetDryMatterDemand() entities.BiomassPoolType
	GetNitrogenDemand() entities.BiomassPoolType
	GetDryMatterSupply() entities.BiomassSupplyType
	GetNitrogenSupply() entities.BiomassSupplyType
	SetDryMatterPotentialAllocation(dryMatter entities.BiomassPoolType)
	SetDryMatterAllocation(dryMatter entities.BiomassAllocationType) error
	SetNitrogenAllocation(nitrogen entities.BiomassAllocationType) error
	DMDemand() entities.BiomassPoolType
	NDemand() entities.BiomassPoolType
	MinNConc() float64
	NFixationCost() float64
	MaintenanceRespiration() float64
	RemoveMaintenanceRespiration(respiration float64) error
}

// RemovableBiomass is implemented by organs that can lose biomass to
// harvest, grazing, cutting or pruning
type RemovableBiomass interface {
	RemoveBiomass(removalType string, fractions *entities.OrganBiomassRemovalType) error
}

// Lifecycle receives the plant lifecycle notifications
type Lifecycle interface {
	OnSimulationCommencing()
	OnDoDailyInitialisation()
	OnPlantSowing()
	OnPlantEnding()
}

// Organ is one plant part taking part in arbitration
type Organ interface {
	Arbitration
	RemovableBiomass
	Lifecycle

	Name() string
	IsAboveGround() bool
	Live() entities.Biomass
	Dead() entities.Biomass
	Total() entities.Biomass
	Flows() entities.FlowAccounts
	Wt() float64
	N() float64
}

// DailyProcess is implemented by organs that senesce or detach biomass
// after today's allocation has been applied
type DailyProcess interface {
	DoActualPlantGrowth()
}

// Plant is the view an organ has of the plant it belongs to
type Plant interface {
	IsAlive() bool
	CropType() string
}

// SurfaceOrganicMatter receives biomass that leaves the plant for the soil
// surface (mass and nitrogen in kg/ha)
type SurfaceOrganicMatter interface {
	Add(mass, n, pHome float64, cropType, organName string)
}

// removeRespiration takes respiration out of the metabolic and storage
// pools in proportion to their share of the two
func removeRespiration(live *entities.Biomass, respiration float64) error {
	total := live.MetabolicWt + live.StorageWt
	if respiration > total {
		return fmt.Errorf("%w: respiration %g is more than total biomass of metabolic and storage (%g) in live component",
			entities.ErrInvalidState, respiration, total)
	}
	if respiration <= 0 {
		return nil
	}
	metabolic := live.MetabolicWt
	storage := live.StorageWt
	live.MetabolicWt = metabolic - respiration*metabolic/total
	live.StorageWt = storage - respiration*storage/total
	return nil
}

// detachToSurface sends biomass to the surface organic matter pool
func detachToSurface(som SurfaceOrganicMatter, plant Plant, organName string, b entities.Biomass) {
	if som == nil || b.Wt() <= 0 {
		return
	}
	som.Add(b.Wt()*FieldConversionFactor, b.N()*FieldConversionFactor, 0, plant.CropType(), organName)
}
