package memory

import (
	"sort"
	"sync"

	"github.com/vsinha/cropsim/pkg/domain/organs"
)

// ResidueTotal is the accumulated residue from one organ of one crop type
type ResidueTotal struct {
	CropType  string
	OrganName string
	Mass      float64 // kg/ha
	N         float64 // kg/ha
	PHome     float64
	Additions int
}

// SurfaceOrganicMatterPool accumulates residue handed to the soil
// surface, keyed by crop type and organ
type SurfaceOrganicMatterPool struct {
	totals map[residueKey]*ResidueTotal
	mutex  sync.Mutex
}

type residueKey struct {
	cropType  string
	organName string
}

// NewSurfaceOrganicMatterPool creates an empty pool
func NewSurfaceOrganicMatterPool() *SurfaceOrganicMatterPool {
	return &SurfaceOrganicMatterPool{totals: make(map[residueKey]*ResidueTotal)}
}

// Verify interface compliance
var _ organs.SurfaceOrganicMatter = (*SurfaceOrganicMatterPool)(nil)

// Add accumulates one residue delivery
func (p *SurfaceOrganicMatterPool) Add(mass, n, pHome float64, cropType, organName string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	key := residueKey{cropType: cropType, organName: organName}
	total, exists := p.totals[key]
	if !exists {
		total = &ResidueTotal{CropType: cropType, OrganName: organName}
		p.totals[key] = total
	}
	total.Mass += mass
	total.N += n
	total.PHome += pHome
	total.Additions++
}

// Totals returns the accumulated residue sorted by crop type and organ
func (p *SurfaceOrganicMatterPool) Totals() []ResidueTotal {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	totals := make([]ResidueTotal, 0, len(p.totals))
	for _, total := range p.totals {
		totals = append(totals, *total)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].CropType != totals[j].CropType {
			return totals[i].CropType < totals[j].CropType
		}
		return totals[i].OrganName < totals[j].OrganName
	})
	return totals
}

// TotalMass returns the residue mass across every crop and organ
func (p *SurfaceOrganicMatterPool) TotalMass() float64 {
	mass := 0.0
	for _, total := range p.Totals() {
		mass += total.Mass
	}
	return mass
}
