package entities

// Biomass holds the structural, metabolic and storage pools of an organ,
// each tracked as dry matter weight and nitrogen content (g/m2).
type Biomass struct {
	StructuralWt float64 `json:"structural_wt"`
	MetabolicWt  float64 `json:"metabolic_wt"`
	StorageWt    float64 `json:"storage_wt"`
	StructuralN  float64 `json:"structural_n"`
	MetabolicN   float64 `json:"metabolic_n"`
	StorageN     float64 `json:"storage_n"`
}

// Wt returns the total dry matter weight across the three pools
func (b Biomass) Wt() float64 {
	return b.StructuralWt + b.MetabolicWt + b.StorageWt
}

// N returns the total nitrogen content across the three pools
func (b Biomass) N() float64 {
	return b.StructuralN + b.MetabolicN + b.StorageN
}

// NConc returns the nitrogen concentration, or 0 when there is no weight
func (b Biomass) NConc() float64 {
	wt := b.Wt()
	if wt <= 0 {
		return 0.0
	}
	return b.N() / wt
}

// IsZero reports whether every pool is zero
func (b Biomass) IsZero() bool {
	return b == Biomass{}
}

// Add adds other to b pool by pool
func (b *Biomass) Add(other Biomass) {
	b.StructuralWt += other.StructuralWt
	b.MetabolicWt += other.MetabolicWt
	b.StorageWt += other.StorageWt
	b.StructuralN += other.StructuralN
	b.MetabolicN += other.MetabolicN
	b.StorageN += other.StorageN
}

// Subtract removes other from b pool by pool
func (b *Biomass) Subtract(other Biomass) {
	b.StructuralWt -= other.StructuralWt
	b.MetabolicWt -= other.MetabolicWt
	b.StorageWt -= other.StorageWt
	b.StructuralN -= other.StructuralN
	b.MetabolicN -= other.MetabolicN
	b.StorageN -= other.StorageN
}

// Plus returns the pool-wise sum of b and other without modifying either
func (b Biomass) Plus(other Biomass) Biomass {
	sum := b
	sum.Add(other)
	return sum
}

// Scaled returns a copy of b with every pool multiplied by fraction
func (b Biomass) Scaled(fraction float64) Biomass {
	return Biomass{
		StructuralWt: b.StructuralWt * fraction,
		MetabolicWt:  b.MetabolicWt * fraction,
		StorageWt:    b.StorageWt * fraction,
		StructuralN:  b.StructuralN * fraction,
		MetabolicN:   b.MetabolicN * fraction,
		StorageN:     b.StorageN * fraction,
	}
}

// Clear zeroes every pool
func (b *Biomass) Clear() {
	*b = Biomass{}
}

// BiomassPoolType expresses a per-pool demand for dry matter or nitrogen
type BiomassPoolType struct {
	Structural float64 `json:"structural"`
	Metabolic  float64 `json:"metabolic"`
	Storage    float64 `json:"storage"`
}

// Total returns the sum of the three pools
func (p BiomassPoolType) Total() float64 {
	return p.Structural + p.Metabolic + p.Storage
}

// Clear zeroes every pool
func (p *BiomassPoolType) Clear() {
	*p = BiomassPoolType{}
}

// BiomassSupplyType describes how much dry matter or nitrogen an organ can
// release or take up today
type BiomassSupplyType struct {
	Fixation        float64 `json:"fixation"`
	Reallocation    float64 `json:"reallocation"`
	Uptake          float64 `json:"uptake"`
	Retranslocation float64 `json:"retranslocation"`
}

// Total returns the sum of all supply sources
func (s BiomassSupplyType) Total() float64 {
	return s.Fixation + s.Reallocation + s.Uptake + s.Retranslocation
}

// BiomassAllocationType is the arbitrator's decision for one organ: what it
// receives per pool and what it must give up from its reserves
type BiomassAllocationType struct {
	Structural      float64 `json:"structural"`
	Metabolic       float64 `json:"metabolic"`
	Storage         float64 `json:"storage"`
	Reallocation    float64 `json:"reallocation"`
	Retranslocation float64 `json:"retranslocation"`
}

// Total returns the amount added to the organ's pools
func (a BiomassAllocationType) Total() float64 {
	return a.Structural + a.Metabolic + a.Storage
}

// FlowAccounts are the per-day biomass flows of one organ
type FlowAccounts struct {
	Allocated Biomass `json:"allocated"`
	Senesced  Biomass `json:"senesced"`
	Detached  Biomass `json:"detached"`
	Removed   Biomass `json:"removed"`
}

// Clear zeroes all four accounts
func (f *FlowAccounts) Clear() {
	f.Allocated.Clear()
	f.Senesced.Clear()
	f.Detached.Clear()
	f.Removed.Clear()
}
