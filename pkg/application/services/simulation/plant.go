package simulation

import (
	"errors"
	"fmt"

	"github.com/vsinha/cropsim/pkg/domain/entities"
	"github.com/vsinha/cropsim/pkg/domain/organs"
	"github.com/vsinha/cropsim/pkg/domain/phenology"
	"github.com/vsinha/cropsim/pkg/domain/services"
)

// Plant ties the organs and phenology of one crop instance to today's
// drivers. It is the Plant and LeafCohorts view handed to its parts.
type Plant struct {
	cropType  string
	alive     bool
	today     entities.DailyDriver
	organs    []organs.Organ
	phenology *phenology.Phenology
	removal   *services.BiomassRemoval
}

var (
	_ organs.Plant          = (*Plant)(nil)
	_ phenology.LeafCohorts = (*Plant)(nil)
)

// NewPlant builds the phenology and organs described by params. Organs
// deliver detached biomass to som, which may be nil.
func NewPlant(params *entities.CropParameters, som organs.SurfaceOrganicMatter) (*Plant, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crop parameters: %w", err)
	}

	p := &Plant{
		cropType: params.CropType,
		removal:  services.NewBiomassRemoval(params.RemovalFractions),
	}

	pheno, err := phenology.Build(params.Phases, phenology.Collaborators{
		ThermalTime:     p.thermalTime,
		LeafCohorts:     p,
		FinalLeafNumber: entities.Constant(params.FinalLeafNumber),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build phenology: %w", err)
	}
	p.phenology = pheno

	for _, op := range params.Organs {
		organ, err := p.buildOrgan(op, som)
		if err != nil {
			return nil, err
		}
		p.organs = append(p.organs, organ)
	}
	return p, nil
}

func (p *Plant) buildOrgan(op entities.OrganParameters, som organs.SurfaceOrganicMatter) (organs.Organ, error) {
	switch op.Kind {
	case entities.HIReproductiveOrgan:
		config := organs.HIReproductiveOrganConfig{
			Name:                 op.Name,
			Plant:                p,
			SurfaceOrganicMatter: som,
			Removal:              p.removal,
			AboveGroundWt:        p.AboveGroundWt,
			HIIncrement:          p.gated(op.HIPhases, op.HIIncrement),
			NConc:                entities.Constant(op.NConc),
		}
		if op.WaterContent != nil {
			config.WaterContent = entities.Constant(*op.WaterContent)
		}
		return organs.NewHIReproductiveOrgan(config)
	case entities.ReserveOrgan:
		return organs.NewReserveOrgan(organs.ReserveOrganConfig{
			Name:                           op.Name,
			Plant:                          p,
			SurfaceOrganicMatter:           som,
			Removal:                        p.removal,
			StructuralDemand:               p.gated(op.GrowthPhases, op.StructuralDemand),
			StorageDemand:                  p.gated(op.GrowthPhases, op.StorageDemand),
			MetabolicFraction:              op.MetabolicFraction,
			MaxNConc:                       entities.Constant(op.MaxNConc),
			DMRetranslocationFactor:        p.gated(op.RetranslocationPhases, op.DMRetranslocationFactor),
			NRetranslocationFactor:         p.gated(op.RetranslocationPhases, op.NRetranslocationFactor),
			SenescenceRate:                 entities.Constant(op.SenescenceRate),
			DetachmentRate:                 entities.Constant(op.DetachmentRate),
			MaintenanceRespirationFraction: op.MaintenanceRespirationFraction,
		})
	default:
		return nil, fmt.Errorf("organ %s: unsupported organ kind: %s", op.Name, op.Kind)
	}
}

// gated returns value while the plant is in one of phases, and 0 otherwise.
// An empty phase list never gates.
func (p *Plant) gated(phases []string, value float64) entities.Signal {
	if len(phases) == 0 {
		return entities.Constant(value)
	}
	return func() float64 {
		for _, name := range phases {
			if p.phenology.InPhase(name) {
				return value
			}
		}
		return 0
	}
}

func (p *Plant) thermalTime() float64 { return p.today.ThermalTime }

func (p *Plant) IsAlive() bool            { return p.alive }
func (p *Plant) CropType() string         { return p.cropType }
func (p *Plant) DeadCohortNo() float64    { return p.today.DeadCohortNo }
func (p *Plant) CohortsInitialised() bool { return p.today.CohortsInitialised }

// Organs returns the organs in configuration order
func (p *Plant) Organs() []organs.Organ { return p.organs }

// Phenology returns the phase chain
func (p *Plant) Phenology() *phenology.Phenology { return p.phenology }

// Organ looks up an organ by name
func (p *Plant) Organ(name string) (organs.Organ, error) {
	names := make([]string, 0, len(p.organs))
	for _, organ := range p.organs {
		if organ.Name() == name {
			return organ, nil
		}
		names = append(names, organ.Name())
	}
	return nil, errors.New(services.UnknownNameMessage("organ", name, names))
}

// AboveGroundWt is the above-ground weight reported by the driver for
// parts not modelled here plus every above-ground organ
func (p *Plant) AboveGroundWt() float64 {
	total := p.today.OtherAboveGroundWt
	for _, organ := range p.organs {
		if organ.IsAboveGround() {
			total += organ.Wt()
		}
	}
	return total
}

// SetToday makes driver the source of today's signals
func (p *Plant) SetToday(driver entities.DailyDriver) {
	p.today = driver
}

// Commence resets every organ and the phase chain before a run
func (p *Plant) Commence() {
	p.alive = false
	for _, organ := range p.organs {
		organ.OnSimulationCommencing()
	}
	p.phenology.OnSimulationCommencing()
}

// Sow clears any previous state and brings the plant to life
func (p *Plant) Sow() {
	for _, organ := range p.organs {
		organ.OnPlantSowing()
	}
	p.alive = true
}

// DailyInitialisation clears today's flow accounts on every organ
func (p *Plant) DailyInitialisation() {
	for _, organ := range p.organs {
		organ.OnDoDailyInitialisation()
	}
}

// End hands the remaining biomass of every organ to the soil surface
func (p *Plant) End() {
	for _, organ := range p.organs {
		organ.OnPlantEnding()
	}
	p.alive = false
}
