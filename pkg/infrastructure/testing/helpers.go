package testing

import (
	"time"

	"github.com/vsinha/cropsim/pkg/domain/entities"
	"github.com/vsinha/cropsim/pkg/infrastructure/repositories/memory"
)

// WheatSowDate is the first day of the wheat scenario
var WheatSowDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// WheatHarvestDay is the day (1-based from sowing) the wheat scenario
// reaches maturity and is harvested
const WheatHarvestDay = 30

// BuildWheatScenario builds a small wheat crop with drivers running past
// its harvest day.
//
// With 10 degree days per day the thermal time phases end on days 5, 15
// and 25. Leaf cohorts start dying on day 21 so the last of the 10 leaves
// dies on day 30, which ends leaf death and triggers the harvest.
func BuildWheatScenario() (*entities.CropParameters, *memory.DriverRepository) {
	repo := memory.NewDriverRepository()
	if err := repo.LoadDrivers(WheatDrivers(WheatSowDate, WheatHarvestDay+5)); err != nil {
		panic(err)
	}
	return WheatCropParameters(), repo
}

// WheatCropParameters returns the wheat crop of the scenario
func WheatCropParameters() *entities.CropParameters {
	return &entities.CropParameters{
		CropType:        "wheat",
		FinalLeafNumber: 10,
		SowDate:         WheatSowDate,
		Phases: []entities.PhaseParameters{
			{Name: "Emerging", Kind: entities.ThermalTimePhase, Start: "Sowing", End: "Emergence", Target: 50},
			{Name: "Vegetative", Kind: entities.ThermalTimePhase, Start: "Emergence", End: "Flowering", Target: 100},
			{Name: "GrainFilling", Kind: entities.ThermalTimePhase, Start: "Flowering", End: "EndGrainFill", Target: 100},
			{Name: "Ripening", Kind: entities.LeafDeathPhase, Start: "EndGrainFill", End: "Maturity"},
			{Name: "Mature", Kind: entities.EndPhase, Start: "Maturity", End: "Harvested"},
		},
		Organs: []entities.OrganParameters{
			{
				Name:        "Grain",
				Kind:        entities.HIReproductiveOrgan,
				HIIncrement: 0.01,
				HIPhases:    []string{"GrainFilling"},
				NConc:       0.02,
			},
			{
				Name:                    "Stem",
				Kind:                    entities.ReserveOrgan,
				StructuralDemand:        3,
				StorageDemand:           1,
				MaxNConc:                0.01,
				DMRetranslocationFactor: 0.1,
				NRetranslocationFactor:  0.1,
				GrowthPhases:            []string{"Emerging", "Vegetative"},
				RetranslocationPhases:   []string{"GrainFilling"},
			},
		},
		Harvest: entities.HarvestParameters{AtPhase: "Mature", RemovalType: entities.RemovalHarvest},
	}
}

// WheatDrivers returns days of drivers starting at start
func WheatDrivers(start time.Time, days int) []*entities.DailyDriver {
	drivers := make([]*entities.DailyDriver, 0, days)
	for i := 0; i < days; i++ {
		day := i + 1
		deadCohorts := 0.0
		if day > 20 {
			deadCohorts = float64(day - 20)
		}
		drivers = append(drivers, &entities.DailyDriver{
			Date:               start.AddDate(0, 0, i),
			ThermalTime:        10,
			DMFixation:         5,
			NUptake:            0.05,
			DeadCohortNo:       deadCohorts,
			CohortsInitialised: true,
		})
	}
	return drivers
}
