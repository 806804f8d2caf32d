package entities

import "fmt"

// Removal types recognised by the default biomass removal policy
const (
	RemovalHarvest = "Harvest"
	RemovalCut     = "Cut"
	RemovalGraze   = "Graze"
	RemovalPrune   = "Prune"
)

// OrganBiomassRemovalType holds the fractions of live and dead biomass that
// a removal event exports from the system or sends to the soil surface
type OrganBiomassRemovalType struct {
	FractionLiveToRemove  float64 `json:"fraction_live_to_remove"`
	FractionDeadToRemove  float64 `json:"fraction_dead_to_remove"`
	FractionLiveToResidue float64 `json:"fraction_live_to_residue"`
	FractionDeadToResidue float64 `json:"fraction_dead_to_residue"`
}

// NewOrganBiomassRemovalType creates validated removal fractions
func NewOrganBiomassRemovalType(liveToRemove, deadToRemove, liveToResidue, deadToResidue float64) (*OrganBiomassRemovalType, error) {
	fractions := &OrganBiomassRemovalType{
		FractionLiveToRemove:  liveToRemove,
		FractionDeadToRemove:  deadToRemove,
		FractionLiveToResidue: liveToResidue,
		FractionDeadToResidue: deadToResidue,
	}
	if err := fractions.Validate(); err != nil {
		return nil, err
	}
	return fractions, nil
}

// Validate checks that every fraction is in [0,1] and that neither the
// live nor the dead pool loses more than all of its mass
func (f OrganBiomassRemovalType) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"fraction live to remove", f.FractionLiveToRemove},
		{"fraction dead to remove", f.FractionDeadToRemove},
		{"fraction live to residue", f.FractionLiveToResidue},
		{"fraction dead to residue", f.FractionDeadToResidue},
	}
	for _, n := range named {
		if n.value < 0 || n.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %g", n.name, n.value)
		}
	}
	if total := f.TotalLive(); total > 1 {
		return fmt.Errorf("%w: live removal and residue fractions sum to %g, more than 1", ErrInvalidState, total)
	}
	if total := f.TotalDead(); total > 1 {
		return fmt.Errorf("%w: dead removal and residue fractions sum to %g, more than 1", ErrInvalidState, total)
	}
	return nil
}

// TotalLive returns the fraction of live biomass leaving the organ
func (f OrganBiomassRemovalType) TotalLive() float64 {
	return f.FractionLiveToRemove + f.FractionLiveToResidue
}

// TotalDead returns the fraction of dead biomass leaving the organ
func (f OrganBiomassRemovalType) TotalDead() float64 {
	return f.FractionDeadToRemove + f.FractionDeadToResidue
}
