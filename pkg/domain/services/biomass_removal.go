package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

// BiomassRemoval apportions organ biomass into removed and detached pools
// when harvest, graze, cut or prune events occur
type BiomassRemoval struct {
	fractions map[string]entities.OrganBiomassRemovalType
}

// RemovalResult holds the biomass moved by a single removal event
type RemovalResult struct {
	Removed  entities.Biomass
	Detached entities.Biomass
}

// DefaultRemovalFractions returns the fractions used when a crop does not
// override them
func DefaultRemovalFractions() map[string]entities.OrganBiomassRemovalType {
	return map[string]entities.OrganBiomassRemovalType{
		entities.RemovalHarvest: {FractionLiveToRemove: 1.0, FractionDeadToRemove: 1.0},
		entities.RemovalCut:     {FractionLiveToRemove: 0.8, FractionDeadToRemove: 0.8},
		entities.RemovalGraze: {
			FractionLiveToRemove: 0.5, FractionLiveToResidue: 0.1,
			FractionDeadToRemove: 0.3, FractionDeadToResidue: 0.1,
		},
		entities.RemovalPrune: {FractionLiveToResidue: 0.5, FractionDeadToResidue: 0.5},
	}
}

// NewBiomassRemoval creates a removal policy from the defaults merged with
// the given overrides
func NewBiomassRemoval(overrides map[string]entities.OrganBiomassRemovalType) *BiomassRemoval {
	fractions := DefaultRemovalFractions()
	for removalType, f := range overrides {
		fractions[removalType] = f
	}
	return &BiomassRemoval{fractions: fractions}
}

// RemovalTypes returns the configured removal type names in sorted order
func (r *BiomassRemoval) RemovalTypes() []string {
	names := make([]string, 0, len(r.fractions))
	for name := range r.fractions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fractions returns the configured fractions for a removal type
func (r *BiomassRemoval) Fractions(removalType string) (entities.OrganBiomassRemovalType, error) {
	f, exists := r.fractions[removalType]
	if !exists {
		return entities.OrganBiomassRemovalType{}, fmt.Errorf("%s", UnknownNameMessage("biomass removal type", removalType, r.RemovalTypes()))
	}
	return f, nil
}

// RemoveBiomass moves biomass out of live and dead into removed and
// detached. A nil fractions value selects the configured fractions for
// removalType. Nothing is modified when the fractions are invalid.
func (r *BiomassRemoval) RemoveBiomass(
	removalType string,
	fractions *entities.OrganBiomassRemovalType,
	live, dead, removed, detached *entities.Biomass,
) (RemovalResult, error) {
	var f entities.OrganBiomassRemovalType
	if fractions != nil {
		f = *fractions
	} else {
		configured, err := r.Fractions(removalType)
		if err != nil {
			return RemovalResult{}, err
		}
		f = configured
	}
	if err := f.Validate(); err != nil {
		return RemovalResult{}, fmt.Errorf("removal fractions for %s: %w", removalType, err)
	}

	result := RemovalResult{
		Removed:  live.Scaled(f.FractionLiveToRemove).Plus(dead.Scaled(f.FractionDeadToRemove)),
		Detached: live.Scaled(f.FractionLiveToResidue).Plus(dead.Scaled(f.FractionDeadToResidue)),
	}

	*live = live.Scaled(1 - f.TotalLive())
	*dead = dead.Scaled(1 - f.TotalDead())
	removed.Add(result.Removed)
	detached.Add(result.Detached)

	return result, nil
}
