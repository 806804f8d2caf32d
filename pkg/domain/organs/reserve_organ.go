package organs

import (
	"fmt"
	"math"

	"github.com/vsinha/cropsim/pkg/domain/entities"
	"github.com/vsinha/cropsim/pkg/domain/services"
)

// ReserveOrganConfig wires a ReserveOrgan to its collaborators
type ReserveOrganConfig struct {
	Name                 string
	Plant                Plant
	SurfaceOrganicMatter SurfaceOrganicMatter
	Removal              *services.BiomassRemoval

	StructuralDemand        entities.Signal // g/m2/day, split with MetabolicFraction
	StorageDemand           entities.Signal // g/m2/day
	MetabolicFraction       float64
	MaxNConc                entities.Signal
	MinNConc                float64
	DMRetranslocationFactor entities.Signal
	NRetranslocationFactor  entities.Signal
	SenescenceRate          entities.Signal
	DetachmentRate          entities.Signal

	MaintenanceRespirationFraction float64
}

// ReserveOrgan is a vegetative organ that fills all three pools and can
// release stored dry matter and nitrogen back to the arbitrator
type ReserveOrgan struct {
	name    string
	plant   Plant
	som     SurfaceOrganicMatter
	removal *services.BiomassRemoval

	structuralDemand  entities.Signal
	storageDemand     entities.Signal
	metabolicFraction float64
	maxNConc          entities.Signal
	minNConc          float64
	dmRetransFactor   entities.Signal
	nRetransFactor    entities.Signal
	senescenceRate    entities.Signal
	detachmentRate    entities.Signal
	respirationFrac   float64

	live  entities.Biomass
	dead  entities.Biomass
	flows entities.FlowAccounts

	dryMatterDemand    entities.BiomassPoolType
	nitrogenDemand     entities.BiomassPoolType
	potentialAllocated entities.BiomassPoolType
}

// Verify interface compliance
var (
	_ Organ        = (*ReserveOrgan)(nil)
	_ DailyProcess = (*ReserveOrgan)(nil)
)

// NewReserveOrgan creates a reserve organ
func NewReserveOrgan(config ReserveOrganConfig) (*ReserveOrgan, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("organ name cannot be empty")
	}
	if config.Plant == nil {
		return nil, fmt.Errorf("organ %s: plant cannot be nil", config.Name)
	}
	if config.MetabolicFraction < 0 || config.MetabolicFraction > 1 {
		return nil, fmt.Errorf("organ %s: metabolic fraction must be between 0 and 1, got %g", config.Name, config.MetabolicFraction)
	}
	removal := config.Removal
	if removal == nil {
		removal = services.NewBiomassRemoval(nil)
	}

	return &ReserveOrgan{
		name:              config.Name,
		plant:             config.Plant,
		som:               config.SurfaceOrganicMatter,
		removal:           removal,
		structuralDemand:  config.StructuralDemand,
		storageDemand:     config.StorageDemand,
		metabolicFraction: config.MetabolicFraction,
		maxNConc:          config.MaxNConc,
		minNConc:          config.MinNConc,
		dmRetransFactor:   config.DMRetranslocationFactor,
		nRetransFactor:    config.NRetranslocationFactor,
		senescenceRate:    config.SenescenceRate,
		detachmentRate:    config.DetachmentRate,
		respirationFrac:   config.MaintenanceRespirationFraction,
	}, nil
}

func (o *ReserveOrgan) Name() string                       { return o.name }
func (o *ReserveOrgan) IsAboveGround() bool                { return true }
func (o *ReserveOrgan) Live() entities.Biomass             { return o.live }
func (o *ReserveOrgan) Dead() entities.Biomass             { return o.dead }
func (o *ReserveOrgan) Total() entities.Biomass            { return o.live.Plus(o.dead) }
func (o *ReserveOrgan) Flows() entities.FlowAccounts       { return o.flows }
func (o *ReserveOrgan) Wt() float64                        { return o.Total().Wt() }
func (o *ReserveOrgan) N() float64                         { return o.Total().N() }
func (o *ReserveOrgan) DMDemand() entities.BiomassPoolType { return o.dryMatterDemand }
func (o *ReserveOrgan) NDemand() entities.BiomassPoolType  { return o.nitrogenDemand }
func (o *ReserveOrgan) MinNConc() float64                  { return o.minNConc }
func (o *ReserveOrgan) NFixationCost() float64             { return 0 }

// PotentialAllocation returns the unconstrained allocation set today
func (o *ReserveOrgan) PotentialAllocation() entities.BiomassPoolType {
	return o.potentialAllocated
}

// MaintenanceRespiration is a fixed fraction of the metabolic and storage
// live pools
func (o *ReserveOrgan) MaintenanceRespiration() float64 {
	return o.respirationFrac * (o.live.MetabolicWt + o.live.StorageWt)
}

// GetDryMatterDemand returns today's structural, metabolic and storage demand
func (o *ReserveOrgan) GetDryMatterDemand() entities.BiomassPoolType {
	structural := math.Max(0.0, o.structuralDemand.Value())
	o.dryMatterDemand = entities.BiomassPoolType{
		Structural: structural * (1 - o.metabolicFraction),
		Metabolic:  structural * o.metabolicFraction,
		Storage:    math.Max(0.0, o.storageDemand.Value()),
	}
	return o.dryMatterDemand
}

// GetNitrogenDemand returns the nitrogen needed to bring live biomass up to
// the maximum concentration, split by pool weight
func (o *ReserveOrgan) GetNitrogenDemand() entities.BiomassPoolType {
	deficit := math.Max(0.0, o.maxNConc.Value()*o.live.Wt()-o.live.N())
	wt := o.live.Wt()
	if wt <= 0 {
		o.nitrogenDemand = entities.BiomassPoolType{Structural: deficit}
		return o.nitrogenDemand
	}
	o.nitrogenDemand = entities.BiomassPoolType{
		Structural: deficit * o.live.StructuralWt / wt,
		Metabolic:  deficit * o.live.MetabolicWt / wt,
		Storage:    deficit * o.live.StorageWt / wt,
	}
	return o.nitrogenDemand
}

// GetDryMatterSupply offers a fraction of the storage pool for retranslocation
func (o *ReserveOrgan) GetDryMatterSupply() entities.BiomassSupplyType {
	return entities.BiomassSupplyType{
		Retranslocation: math.Max(0.0, o.live.StorageWt*o.dmRetransFactor.Value()),
	}
}

// GetNitrogenSupply offers a fraction of storage nitrogen for retranslocation
func (o *ReserveOrgan) GetNitrogenSupply() entities.BiomassSupplyType {
	return entities.BiomassSupplyType{
		Retranslocation: math.Max(0.0, o.live.StorageN*o.nRetransFactor.Value()),
	}
}

// SetDryMatterPotentialAllocation records the unconstrained allocation
func (o *ReserveOrgan) SetDryMatterPotentialAllocation(dryMatter entities.BiomassPoolType) {
	o.potentialAllocated = dryMatter
}

// SetDryMatterAllocation grows each pool and gives up the granted
// retranslocation from storage
func (o *ReserveOrgan) SetDryMatterAllocation(dryMatter entities.BiomassAllocationType) error {
	if dryMatter.Retranslocation > o.live.StorageWt {
		return fmt.Errorf("%w: organ %s: dry matter retranslocation %g is more than storage %g",
			entities.ErrInvalidState, o.name, dryMatter.Retranslocation, o.live.StorageWt)
	}
	o.live.StorageWt -= dryMatter.Retranslocation
	o.live.StructuralWt += dryMatter.Structural
	o.live.MetabolicWt += dryMatter.Metabolic
	o.live.StorageWt += dryMatter.Storage

	o.flows.Allocated.StructuralWt += dryMatter.Structural
	o.flows.Allocated.MetabolicWt += dryMatter.Metabolic
	o.flows.Allocated.StorageWt += dryMatter.Storage
	return nil
}

// SetNitrogenAllocation adds nitrogen to each pool and gives up the granted
// retranslocation from storage nitrogen
func (o *ReserveOrgan) SetNitrogenAllocation(nitrogen entities.BiomassAllocationType) error {
	if nitrogen.Retranslocation > o.live.StorageN {
		return fmt.Errorf("%w: organ %s: nitrogen retranslocation %g is more than storage %g",
			entities.ErrInvalidState, o.name, nitrogen.Retranslocation, o.live.StorageN)
	}
	o.live.StorageN -= nitrogen.Retranslocation
	o.live.StructuralN += nitrogen.Structural
	o.live.MetabolicN += nitrogen.Metabolic
	o.live.StorageN += nitrogen.Storage

	o.flows.Allocated.StructuralN += nitrogen.Structural
	o.flows.Allocated.MetabolicN += nitrogen.Metabolic
	o.flows.Allocated.StorageN += nitrogen.Storage
	return nil
}

// RemoveMaintenanceRespiration takes respiration from the metabolic and
// storage live pools
func (o *ReserveOrgan) RemoveMaintenanceRespiration(respiration float64) error {
	if err := removeRespiration(&o.live, respiration); err != nil {
		return fmt.Errorf("organ %s: %w", o.name, err)
	}
	return nil
}

// DoActualPlantGrowth senesces live biomass into dead and detaches dead
// biomass to the soil surface
func (o *ReserveOrgan) DoActualPlantGrowth() {
	if rate := clampFraction(o.senescenceRate.Value()); rate > 0 {
		senesced := o.live.Scaled(rate)
		o.live.Subtract(senesced)
		o.dead.Add(senesced)
		o.flows.Senesced.Add(senesced)
	}
	if rate := clampFraction(o.detachmentRate.Value()); rate > 0 {
		detached := o.dead.Scaled(rate)
		o.dead.Subtract(detached)
		o.flows.Detached.Add(detached)
		detachToSurface(o.som, o.plant, o.name, detached)
	}
}

// RemoveBiomass applies a harvest, graze, cut or prune event
func (o *ReserveOrgan) RemoveBiomass(removalType string, fractions *entities.OrganBiomassRemovalType) error {
	result, err := o.removal.RemoveBiomass(removalType, fractions, &o.live, &o.dead, &o.flows.Removed, &o.flows.Detached)
	if err != nil {
		return fmt.Errorf("organ %s: %w", o.name, err)
	}
	detachToSurface(o.som, o.plant, o.name, result.Detached)
	return nil
}

func (o *ReserveOrgan) OnSimulationCommencing() {
	o.flows = entities.FlowAccounts{}
}

func (o *ReserveOrgan) OnDoDailyInitialisation() {
	if o.plant.IsAlive() {
		o.flows.Clear()
		o.potentialAllocated.Clear()
	}
}

func (o *ReserveOrgan) OnPlantSowing() {
	o.clear()
}

func (o *ReserveOrgan) OnPlantEnding() {
	total := o.live.Plus(o.dead)
	if total.Wt() > 0.0 {
		o.flows.Detached.Add(total)
		detachToSurface(o.som, o.plant, o.name, total)
	}
	o.clear()
}

func (o *ReserveOrgan) clear() {
	o.live.Clear()
	o.dead.Clear()
	o.dryMatterDemand.Clear()
	o.nitrogenDemand.Clear()
	o.potentialAllocated.Clear()
}

func clampFraction(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
