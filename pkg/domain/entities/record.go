package entities

import "time"

// OrganRecord is the end-of-day state of one organ
type OrganRecord struct {
	Name     string          `json:"name"`
	Live     Biomass         `json:"live"`
	Dead     Biomass         `json:"dead"`
	Flows    FlowAccounts    `json:"flows"`
	DMDemand BiomassPoolType `json:"dm_demand"`
	NDemand  BiomassPoolType `json:"n_demand"`
}

// DailyRecord is the end-of-day state of the plant
type DailyRecord struct {
	Day       int           `json:"day"`
	Date      time.Time     `json:"date"`
	Alive     bool          `json:"alive"`
	Stage     float64       `json:"stage"`
	Phase     string        `json:"phase"`
	TTinPhase float64       `json:"tt_in_phase"`
	Organs    []OrganRecord `json:"organs"`
}

// Organ returns the record of the named organ
func (r *DailyRecord) Organ(name string) (*OrganRecord, bool) {
	for i := range r.Organs {
		if r.Organs[i].Name == name {
			return &r.Organs[i], true
		}
	}
	return nil, false
}

// PhaseTransition records the plant moving from one phase to the next
type PhaseTransition struct {
	Date time.Time `json:"date"`
	From string    `json:"from"`
	To   string    `json:"to"`
}

// ResidueAddition is one delivery of detached biomass to the surface
// organic matter pool, in kg/ha
type ResidueAddition struct {
	Date      time.Time `json:"date"`
	CropType  string    `json:"crop_type"`
	OrganName string    `json:"organ_name"`
	Mass      float64   `json:"mass"`
	N         float64   `json:"n"`
	PHome     float64   `json:"p_home"`
}

// HarvestReport summarises biomass removed at harvest
type HarvestReport struct {
	Date        time.Time          `json:"date"`
	RemovalType string             `json:"removal_type"`
	Removed     map[string]Biomass `json:"removed"`
	Detached    map[string]Biomass `json:"detached"`
}
