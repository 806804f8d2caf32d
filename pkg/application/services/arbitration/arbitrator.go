// Package arbitration shares daily dry matter and nitrogen supply between
// organs according to their demands.
package arbitration

import (
	"fmt"
	"math"

	"github.com/vsinha/cropsim/pkg/domain/entities"
	"github.com/vsinha/cropsim/pkg/domain/organs"
)

// ResourceResult summarises one resource (dry matter or nitrogen) for a day
type ResourceResult struct {
	Demand         float64 `json:"demand"`
	Supply         float64 `json:"supply"`
	Allocated      float64 `json:"allocated"`
	Retranslocated float64 `json:"retranslocated"`
	Unmet          float64 `json:"unmet"`
}

// OrganAllocation is what one organ was given today
type OrganAllocation struct {
	DryMatter entities.BiomassAllocationType `json:"dry_matter"`
	Nitrogen  entities.BiomassAllocationType `json:"nitrogen"`
}

// ArbitrationResult holds the outcome of one day of arbitration
type ArbitrationResult struct {
	DryMatter   ResourceResult             `json:"dry_matter"`
	Nitrogen    ResourceResult             `json:"nitrogen"`
	Allocations map[string]OrganAllocation `json:"allocations"`
}

// Arbitrator allocates structural demand first, then metabolic, then
// storage. Within a pool each organ receives its share of demand. Supply
// above the external source is drawn from organ retranslocation.
type Arbitrator struct{}

// NewArbitrator creates an arbitrator
func NewArbitrator() *Arbitrator {
	return &Arbitrator{}
}

// Arbitrate runs dry matter and then nitrogen arbitration. Nitrogen demand
// is queried after dry matter has been allocated so it reflects today's
// growth. Each organ receives exactly one allocation call per resource.
func (a *Arbitrator) Arbitrate(plantOrgans []organs.Organ, dmFixation, nUptake float64) (*ArbitrationResult, error) {
	result := &ArbitrationResult{Allocations: make(map[string]OrganAllocation, len(plantOrgans))}

	dmDemands := make([]entities.BiomassPoolType, len(plantOrgans))
	dmRetrans := make([]float64, len(plantOrgans))
	for i, organ := range plantOrgans {
		dmDemands[i] = organ.GetDryMatterDemand()
		dmRetrans[i] = organ.GetDryMatterSupply().Retranslocation
		organ.SetDryMatterPotentialAllocation(dmDemands[i])
	}
	dmAllocations, dmResult := allocate(dmDemands, dmRetrans, math.Max(0, dmFixation))
	result.DryMatter = dmResult
	for i, organ := range plantOrgans {
		if err := organ.SetDryMatterAllocation(dmAllocations[i]); err != nil {
			return nil, fmt.Errorf("dry matter allocation: %w", err)
		}
	}

	nDemands := make([]entities.BiomassPoolType, len(plantOrgans))
	nRetrans := make([]float64, len(plantOrgans))
	for i, organ := range plantOrgans {
		nDemands[i] = organ.GetNitrogenDemand()
		nRetrans[i] = organ.GetNitrogenSupply().Retranslocation
	}
	nAllocations, nResult := allocate(nDemands, nRetrans, math.Max(0, nUptake))
	result.Nitrogen = nResult
	for i, organ := range plantOrgans {
		if err := organ.SetNitrogenAllocation(nAllocations[i]); err != nil {
			return nil, fmt.Errorf("nitrogen allocation: %w", err)
		}
		result.Allocations[organ.Name()] = OrganAllocation{
			DryMatter: dmAllocations[i],
			Nitrogen:  nAllocations[i],
		}
	}

	return result, nil
}

func allocate(demands []entities.BiomassPoolType, retrans []float64, external float64) ([]entities.BiomassAllocationType, ResourceResult) {
	allocations := make([]entities.BiomassAllocationType, len(demands))

	totalRetrans := 0.0
	for _, r := range retrans {
		totalRetrans += math.Max(0, r)
	}
	supply := external + totalRetrans
	available := supply

	var totalDemand float64
	pools := []struct {
		demand func(entities.BiomassPoolType) float64
		assign func(*entities.BiomassAllocationType, float64)
	}{
		{
			func(p entities.BiomassPoolType) float64 { return p.Structural },
			func(a *entities.BiomassAllocationType, v float64) { a.Structural = v },
		},
		{
			func(p entities.BiomassPoolType) float64 { return p.Metabolic },
			func(a *entities.BiomassAllocationType, v float64) { a.Metabolic = v },
		},
		{
			func(p entities.BiomassPoolType) float64 { return p.Storage },
			func(a *entities.BiomassAllocationType, v float64) { a.Storage = v },
		},
	}

	for _, pool := range pools {
		poolDemand := 0.0
		for _, d := range demands {
			poolDemand += math.Max(0, pool.demand(d))
		}
		totalDemand += poolDemand
		if poolDemand <= 0 || available <= 0 {
			continue
		}
		given := math.Min(available, poolDemand)
		for i, d := range demands {
			share := math.Max(0, pool.demand(d)) / poolDemand
			pool.assign(&allocations[i], given*share)
		}
		available -= given
	}

	used := supply - available
	fromRetrans := math.Max(0, used-external)
	if fromRetrans > 0 && totalRetrans > 0 {
		for i, r := range retrans {
			offered := math.Max(0, r)
			allocations[i].Retranslocation = math.Min(offered, fromRetrans*offered/totalRetrans)
		}
	}

	return allocations, ResourceResult{
		Demand:         totalDemand,
		Supply:         supply,
		Allocated:      used,
		Retranslocated: fromRetrans,
		Unmet:          math.Max(0, totalDemand-used),
	}
}
