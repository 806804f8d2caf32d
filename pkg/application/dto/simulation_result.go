package dto

import (
	"github.com/vsinha/cropsim/pkg/domain/entities"
)

// SimulationResult contains the complete output of one simulation run
type SimulationResult struct {
	RunID         string                     `json:"run_id"`
	CropType      string                     `json:"crop_type"`
	DaysSimulated int                        `json:"days_simulated"`
	FinalStage    float64                    `json:"final_stage"`
	FinalPhase    string                     `json:"final_phase"`
	Records       []*entities.DailyRecord    `json:"records"`
	Transitions   []entities.PhaseTransition `json:"transitions"`
	Harvest       *entities.HarvestReport    `json:"harvest,omitempty"`
	Residues      []entities.ResidueAddition `json:"residues"`
	Totals        ResourceTotals             `json:"totals"`
}

// ResourceTotals accumulates daily arbitration outcomes over the run
type ResourceTotals struct {
	DMSupply    float64 `json:"dm_supply"`
	DMAllocated float64 `json:"dm_allocated"`
	DMUnmet     float64 `json:"dm_unmet"`
	NSupply     float64 `json:"n_supply"`
	NAllocated  float64 `json:"n_allocated"`
	NUnmet      float64 `json:"n_unmet"`
	Respiration float64 `json:"respiration"`
	ResidueMass float64 `json:"residue_mass"`
	ResidueN    float64 `json:"residue_n"`
	HarvestedWt float64 `json:"harvested_wt"`
	HarvestedN  float64 `json:"harvested_n"`
}

// FinalRecord returns the last daily record, or nil for an empty run
func (r *SimulationResult) FinalRecord() *entities.DailyRecord {
	if len(r.Records) == 0 {
		return nil
	}
	return r.Records[len(r.Records)-1]
}
