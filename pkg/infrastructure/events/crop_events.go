package events

import (
	"time"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

const (
	PlantSownEvent      = "plant.sown"
	PhaseChangedEvent   = "phase.changed"
	BiomassRemovedEvent = "biomass.removed"
	PlantEndedEvent     = "plant.ended"
)

type PlantSown struct {
	CropType string   `json:"crop_type"`
	Organs   []string `json:"organs"`
	Phase    string   `json:"phase"`
}

type PhaseChanged struct {
	Transition entities.PhaseTransition `json:"transition"`
	Stage      float64                  `json:"stage"`
}

type BiomassRemoved struct {
	RemovalType string                      `json:"removal_type"`
	Removed     map[string]entities.Biomass `json:"removed"`
	Detached    map[string]entities.Biomass `json:"detached"`
}

type PlantEnded struct {
	CropType  string  `json:"crop_type"`
	Stage     float64 `json:"stage"`
	DaysGrown int     `json:"days_grown"`
	ResidueWt float64 `json:"residue_wt"`
	ResidueN  float64 `json:"residue_n"`
}

func NewPlantSownEvent(date time.Time, cropType string, organs []string, phase string) Event {
	return NewEvent(PlantSownEvent, cropType, PlantSown{CropType: cropType, Organs: organs, Phase: phase}, date)
}

func NewPhaseChangedEvent(transition entities.PhaseTransition, stage float64) Event {
	return NewEvent(PhaseChangedEvent, transition.To, PhaseChanged{Transition: transition, Stage: stage}, transition.Date)
}

func NewBiomassRemovedEvent(report entities.HarvestReport) Event {
	return NewEvent(BiomassRemovedEvent, report.RemovalType, BiomassRemoved{
		RemovalType: report.RemovalType,
		Removed:     report.Removed,
		Detached:    report.Detached,
	}, report.Date)
}

func NewPlantEndedEvent(date time.Time, ended PlantEnded) Event {
	return NewEvent(PlantEndedEvent, ended.CropType, ended, date)
}
