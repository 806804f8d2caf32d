package entities

import (
	"fmt"
	"time"
)

// PhaseKind selects the completion rule of a phenological phase
type PhaseKind int

const (
	ThermalTimePhase PhaseKind = iota
	LeafDeathPhase
	EndPhase
)

// String method for PhaseKind enum
func (k PhaseKind) String() string {
	switch k {
	case ThermalTimePhase:
		return "ThermalTime"
	case LeafDeathPhase:
		return "LeafDeath"
	case EndPhase:
		return "End"
	default:
		return "Unknown"
	}
}

// OrganKind selects the arbitration behaviour of an organ
type OrganKind int

const (
	HIReproductiveOrgan OrganKind = iota
	ReserveOrgan
)

// String method for OrganKind enum
func (k OrganKind) String() string {
	switch k {
	case HIReproductiveOrgan:
		return "HIReproductive"
	case ReserveOrgan:
		return "Reserve"
	default:
		return "Unknown"
	}
}

// PhaseParameters configures one phase of the phenology chain
type PhaseParameters struct {
	Name   string
	Kind   PhaseKind
	Start  string
	End    string
	Target float64 // thermal time target, ThermalTimePhase only
}

// OrganParameters configures one organ. Fields not used by Kind are ignored.
type OrganParameters struct {
	Name string
	Kind OrganKind

	// HIReproductiveOrgan
	HIIncrement  float64
	HIPhases     []string // phases in which the HI increment applies; empty = always
	NConc        float64
	WaterContent *float64

	// ReserveOrgan
	StructuralDemand               float64
	StorageDemand                  float64
	MetabolicFraction              float64
	MaxNConc                       float64
	DMRetranslocationFactor        float64
	NRetranslocationFactor         float64
	SenescenceRate                 float64
	DetachmentRate                 float64
	MaintenanceRespirationFraction float64
	GrowthPhases                   []string // phases with structural and storage demand; empty = always
	RetranslocationPhases          []string // phases in which reserves are released; empty = always
}

// HarvestParameters decides when the crop is harvested and how
type HarvestParameters struct {
	AtPhase     string // harvest on entering this phase; empty = never
	RemovalType string
}

// CropParameters is the complete parameterisation of one crop instance
type CropParameters struct {
	CropType         string
	FinalLeafNumber  float64
	SowDate          time.Time // zero = first driver date
	Phases           []PhaseParameters
	Organs           []OrganParameters
	Harvest          HarvestParameters
	RemovalFractions map[string]OrganBiomassRemovalType
}

// Validate checks the parameters for internal consistency
func (c *CropParameters) Validate() error {
	if c.CropType == "" {
		return fmt.Errorf("crop type cannot be empty")
	}
	if c.FinalLeafNumber <= 0 {
		return fmt.Errorf("final leaf number must be positive, got %g", c.FinalLeafNumber)
	}
	if len(c.Phases) == 0 {
		return fmt.Errorf("at least one phase is required")
	}
	if len(c.Organs) == 0 {
		return fmt.Errorf("at least one organ is required")
	}

	phaseNames := make(map[string]bool, len(c.Phases))
	for i, phase := range c.Phases {
		if phase.Name == "" {
			return fmt.Errorf("phase %d: name cannot be empty", i+1)
		}
		if phaseNames[phase.Name] {
			return fmt.Errorf("duplicate phase name: %s", phase.Name)
		}
		phaseNames[phase.Name] = true
		if phase.Kind == ThermalTimePhase && phase.Target <= 0 {
			return fmt.Errorf("phase %s: thermal time target must be positive, got %g", phase.Name, phase.Target)
		}
	}

	organNames := make(map[string]bool, len(c.Organs))
	for _, organ := range c.Organs {
		if organ.Name == "" {
			return fmt.Errorf("organ name cannot be empty")
		}
		if organNames[organ.Name] {
			return fmt.Errorf("duplicate organ name: %s", organ.Name)
		}
		organNames[organ.Name] = true
		if err := organ.validate(phaseNames); err != nil {
			return fmt.Errorf("organ %s: %w", organ.Name, err)
		}
	}

	if c.Harvest.AtPhase != "" && !phaseNames[c.Harvest.AtPhase] {
		return fmt.Errorf("harvest phase not found: %s", c.Harvest.AtPhase)
	}
	for removalType, fractions := range c.RemovalFractions {
		if err := fractions.Validate(); err != nil {
			return fmt.Errorf("removal fractions for %s: %w", removalType, err)
		}
	}
	return nil
}

func (o OrganParameters) validate(phaseNames map[string]bool) error {
	var phaseLists [][]string
	switch o.Kind {
	case HIReproductiveOrgan:
		if o.NConc < 0 {
			return fmt.Errorf("nitrogen concentration cannot be negative, got %g", o.NConc)
		}
		if o.WaterContent != nil && (*o.WaterContent < 0 || *o.WaterContent >= 1) {
			return fmt.Errorf("water content must be in [0,1), got %g", *o.WaterContent)
		}
		phaseLists = [][]string{o.HIPhases}
	case ReserveOrgan:
		rates := []struct {
			name  string
			value float64
		}{
			{"metabolic fraction", o.MetabolicFraction},
			{"dm retranslocation factor", o.DMRetranslocationFactor},
			{"n retranslocation factor", o.NRetranslocationFactor},
			{"senescence rate", o.SenescenceRate},
			{"detachment rate", o.DetachmentRate},
			{"maintenance respiration fraction", o.MaintenanceRespirationFraction},
		}
		for _, r := range rates {
			if r.value < 0 || r.value > 1 {
				return fmt.Errorf("%s must be between 0 and 1, got %g", r.name, r.value)
			}
		}
		if o.StructuralDemand < 0 || o.StorageDemand < 0 {
			return fmt.Errorf("daily demands cannot be negative")
		}
		phaseLists = [][]string{o.GrowthPhases, o.RetranslocationPhases}
	default:
		return fmt.Errorf("unsupported organ kind: %s", o.Kind)
	}

	for _, list := range phaseLists {
		for _, name := range list {
			if !phaseNames[name] {
				return fmt.Errorf("phase not found: %s", name)
			}
		}
	}
	return nil
}
