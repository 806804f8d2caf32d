package organs

import (
	"fmt"
	"math"

	"github.com/vsinha/cropsim/pkg/domain/entities"
	"github.com/vsinha/cropsim/pkg/domain/services"
)

// HIReproductiveOrganConfig wires an HIReproductiveOrgan to its collaborators
type HIReproductiveOrganConfig struct {
	Name                 string
	Plant                Plant
	SurfaceOrganicMatter SurfaceOrganicMatter
	Removal              *services.BiomassRemoval

	AboveGroundWt entities.Signal
	HIIncrement   entities.Signal
	NConc         entities.Signal
	WaterContent  entities.Signal // nil when fresh weight is not available
}

// HIReproductiveOrgan is a reproductive organ whose growth follows a
// harvest index trajectory. It only has a structural channel and cannot
// remobilise reserves.
type HIReproductiveOrgan struct {
	name    string
	plant   Plant
	som     SurfaceOrganicMatter
	removal *services.BiomassRemoval

	aboveGroundWt entities.Signal
	hiIncrement   entities.Signal
	nConc         entities.Signal
	waterContent  entities.Signal

	live  entities.Biomass
	dead  entities.Biomass
	flows entities.FlowAccounts

	dryMatterDemand entities.BiomassPoolType
	nitrogenDemand  entities.BiomassPoolType
	dailyGrowth     float64
}

// Verify interface compliance
var _ Organ = (*HIReproductiveOrgan)(nil)

// NewHIReproductiveOrgan creates a harvest index organ
func NewHIReproductiveOrgan(config HIReproductiveOrganConfig) (*HIReproductiveOrgan, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("organ name cannot be empty")
	}
	if config.Plant == nil {
		return nil, fmt.Errorf("organ %s: plant cannot be nil", config.Name)
	}
	if config.AboveGroundWt == nil || config.HIIncrement == nil || config.NConc == nil {
		return nil, fmt.Errorf("organ %s: above ground weight, HI increment and N concentration signals are required", config.Name)
	}
	removal := config.Removal
	if removal == nil {
		removal = services.NewBiomassRemoval(nil)
	}

	return &HIReproductiveOrgan{
		name:          config.Name,
		plant:         config.Plant,
		som:           config.SurfaceOrganicMatter,
		removal:       removal,
		aboveGroundWt: config.AboveGroundWt,
		hiIncrement:   config.HIIncrement,
		nConc:         config.NConc,
		waterContent:  config.WaterContent,
	}, nil
}

// Name returns the organ name
func (o *HIReproductiveOrgan) Name() string { return o.name }

// IsAboveGround reports that the organ counts toward above-ground biomass
func (o *HIReproductiveOrgan) IsAboveGround() bool { return true }

// Live returns a copy of the live biomass
func (o *HIReproductiveOrgan) Live() entities.Biomass { return o.live }

// Dead returns a copy of the dead biomass
func (o *HIReproductiveOrgan) Dead() entities.Biomass { return o.dead }

// Total returns live plus dead biomass
func (o *HIReproductiveOrgan) Total() entities.Biomass { return o.live.Plus(o.dead) }

// Flows returns a copy of today's flow accounts
func (o *HIReproductiveOrgan) Flows() entities.FlowAccounts { return o.flows }

// Wt returns the total dry weight
func (o *HIReproductiveOrgan) Wt() float64 { return o.Total().Wt() }

// N returns the total nitrogen
func (o *HIReproductiveOrgan) N() float64 { return o.Total().N() }

// DailyGrowth returns the structural dry matter allocated today
func (o *HIReproductiveOrgan) DailyGrowth() float64 { return o.dailyGrowth }

// DMDemand returns the demand computed by the last GetDryMatterDemand call
func (o *HIReproductiveOrgan) DMDemand() entities.BiomassPoolType { return o.dryMatterDemand }

// NDemand returns the demand computed by the last GetNitrogenDemand call
func (o *HIReproductiveOrgan) NDemand() entities.BiomassPoolType { return o.nitrogenDemand }

// MinNConc is zero, the organ has no minimum nitrogen concentration
func (o *HIReproductiveOrgan) MinNConc() float64 { return 0 }

// NFixationCost is zero, the organ does not fix nitrogen
func (o *HIReproductiveOrgan) NFixationCost() float64 { return 0 }

// MaintenanceRespiration is zero for this organ
func (o *HIReproductiveOrgan) MaintenanceRespiration() float64 { return 0 }

// HI returns the harvest index, or 0 when above-ground weight is not positive
func (o *HIReproductiveOrgan) HI() float64 {
	aboveGroundWt := o.aboveGroundWt.Value()
	if aboveGroundWt > 0 {
		return (o.live.Wt() + o.dead.Wt()) / aboveGroundWt
	}
	return 0.0
}

// LiveFWt returns the live fresh weight, or 0 when water content is unknown
// or leaves no dry fraction
func (o *HIReproductiveOrgan) LiveFWt() float64 {
	if o.waterContent == nil {
		return 0.0
	}
	dryFraction := 1 - o.waterContent.Value()
	if dryFraction <= 0 {
		return 0.0
	}
	return o.live.Wt() / dryFraction
}

// GetDryMatterDemand computes the structural demand needed to reach
// tomorrow's harvest index
func (o *HIReproductiveOrgan) GetDryMatterDemand() entities.BiomassPoolType {
	currentWt := o.live.Wt() + o.dead.Wt()
	newHI := o.HI() + o.hiIncrement.Value()
	newWt := newHI * o.aboveGroundWt.Value()
	o.dryMatterDemand.Structural = math.Max(0.0, newWt-currentWt)
	return o.dryMatterDemand
}

// GetNitrogenDemand computes the structural nitrogen needed to hold the
// target concentration
func (o *HIReproductiveOrgan) GetNitrogenDemand() entities.BiomassPoolType {
	o.nitrogenDemand.Structural = math.Max(0.0, o.nConc.Value()*o.live.Wt()-o.live.N())
	return o.nitrogenDemand
}

// GetDryMatterSupply is always zero
func (o *HIReproductiveOrgan) GetDryMatterSupply() entities.BiomassSupplyType {
	return entities.BiomassSupplyType{}
}

// GetNitrogenSupply is always zero
func (o *HIReproductiveOrgan) GetNitrogenSupply() entities.BiomassSupplyType {
	return entities.BiomassSupplyType{}
}

// SetDryMatterPotentialAllocation is ignored by this organ
func (o *HIReproductiveOrgan) SetDryMatterPotentialAllocation(entities.BiomassPoolType) {}

// SetDryMatterAllocation adds the structural allocation to live biomass.
// It must be called at most once per day.
func (o *HIReproductiveOrgan) SetDryMatterAllocation(dryMatter entities.BiomassAllocationType) error {
	o.live.StructuralWt += dryMatter.Structural
	o.flows.Allocated.StructuralWt += dryMatter.Structural
	o.dailyGrowth = dryMatter.Structural
	return nil
}

// SetNitrogenAllocation adds the structural allocation to live nitrogen
func (o *HIReproductiveOrgan) SetNitrogenAllocation(nitrogen entities.BiomassAllocationType) error {
	o.live.StructuralN += nitrogen.Structural
	o.flows.Allocated.StructuralN += nitrogen.Structural
	return nil
}

// RemoveMaintenanceRespiration takes respiration from the metabolic and
// storage live pools. Biomass is unchanged when the amount exceeds them.
func (o *HIReproductiveOrgan) RemoveMaintenanceRespiration(respiration float64) error {
	if err := removeRespiration(&o.live, respiration); err != nil {
		return fmt.Errorf("organ %s: %w", o.name, err)
	}
	return nil
}

// RemoveBiomass applies a harvest, graze, cut or prune event
func (o *HIReproductiveOrgan) RemoveBiomass(removalType string, fractions *entities.OrganBiomassRemovalType) error {
	result, err := o.removal.RemoveBiomass(removalType, fractions, &o.live, &o.dead, &o.flows.Removed, &o.flows.Detached)
	if err != nil {
		return fmt.Errorf("organ %s: %w", o.name, err)
	}
	detachToSurface(o.som, o.plant, o.name, result.Detached)
	return nil
}

// OnSimulationCommencing starts with fresh flow accounts
func (o *HIReproductiveOrgan) OnSimulationCommencing() {
	o.flows = entities.FlowAccounts{}
}

// OnDoDailyInitialisation clears today's flows while the plant is alive
func (o *HIReproductiveOrgan) OnDoDailyInitialisation() {
	if o.plant.IsAlive() {
		o.flows.Clear()
		o.dailyGrowth = 0
	}
}

// OnPlantSowing clears all state left by a previous crop
func (o *HIReproductiveOrgan) OnPlantSowing() {
	o.clear()
}

// OnPlantEnding hands any remaining biomass to the soil surface and clears
// the organ
func (o *HIReproductiveOrgan) OnPlantEnding() {
	total := o.live.Plus(o.dead)
	if total.Wt() > 0.0 {
		o.flows.Detached.Add(o.live)
		o.flows.Detached.Add(o.dead)
		detachToSurface(o.som, o.plant, o.name, total)
	}
	o.clear()
}

func (o *HIReproductiveOrgan) clear() {
	o.live.Clear()
	o.dead.Clear()
	o.dryMatterDemand.Clear()
	o.nitrogenDemand.Clear()
	o.dailyGrowth = 0
}
