package entities

import (
	"testing"
	"time"
)

func validCropParameters() CropParameters {
	water := 0.12
	return CropParameters{
		CropType:        "wheat",
		FinalLeafNumber: 10,
		Phases: []PhaseParameters{
			{Name: "Vegetative", Kind: ThermalTimePhase, Start: "Emergence", End: "Flowering", Target: 500},
			{Name: "LeafDeath", Kind: LeafDeathPhase, Start: "Flowering", End: "Maturity"},
			{Name: "Ripe", Kind: EndPhase, Start: "Maturity"},
		},
		Organs: []OrganParameters{
			{Name: "Grain", Kind: HIReproductiveOrgan, HIIncrement: 0.01, HIPhases: []string{"LeafDeath"}, NConc: 0.02, WaterContent: &water},
			{Name: "Stem", Kind: ReserveOrgan, StructuralDemand: 2, StorageDemand: 1, MaxNConc: 0.01, DMRetranslocationFactor: 0.05},
		},
		Harvest: HarvestParameters{AtPhase: "Ripe", RemovalType: RemovalHarvest},
	}
}

func TestCropParameters_Validation(t *testing.T) {
	params := validCropParameters()
	if err := params.Validate(); err != nil {
		t.Fatalf("Expected valid parameters to succeed: %v", err)
	}

	testCases := []struct {
		name        string
		mutate      func(*CropParameters)
		expectError string
	}{
		{"empty crop type", func(c *CropParameters) { c.CropType = "" }, "crop type cannot be empty"},
		{"zero final leaf number", func(c *CropParameters) { c.FinalLeafNumber = 0 }, "final leaf number must be positive, got 0"},
		{"no phases", func(c *CropParameters) { c.Phases = nil }, "at least one phase is required"},
		{"no organs", func(c *CropParameters) { c.Organs = nil }, "at least one organ is required"},
		{
			"duplicate phase",
			func(c *CropParameters) { c.Phases[1].Name = "Vegetative" },
			"duplicate phase name: Vegetative",
		},
		{
			"zero thermal target",
			func(c *CropParameters) { c.Phases[0].Target = 0 },
			"phase Vegetative: thermal time target must be positive, got 0",
		},
		{
			"duplicate organ",
			func(c *CropParameters) { c.Organs[1].Name = "Grain" },
			"duplicate organ name: Grain",
		},
		{
			"unknown hi phase",
			func(c *CropParameters) { c.Organs[0].HIPhases = []string{"Filling"} },
			"organ Grain: phase not found: Filling",
		},
		{
			"reserve rate out of range",
			func(c *CropParameters) { c.Organs[1].SenescenceRate = 1.5 },
			"organ Stem: senescence rate must be between 0 and 1, got 1.5",
		},
		{
			"unknown harvest phase",
			func(c *CropParameters) { c.Harvest.AtPhase = "Done" },
			"harvest phase not found: Done",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := validCropParameters()
			tc.mutate(&params)
			err := params.Validate()
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestDailyDriver_Validation(t *testing.T) {
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	driver, err := NewDailyDriver(date, 15, 10, 0.2, 300, 2, true)
	if err != nil {
		t.Fatalf("Expected valid driver creation to succeed: %v", err)
	}
	if driver.ThermalTime != 15 {
		t.Errorf("Expected thermal time 15, got %g", driver.ThermalTime)
	}

	testCases := []struct {
		name        string
		date        time.Time
		values      [5]float64
		expectError string
	}{
		{"empty date", time.Time{}, [5]float64{1, 1, 1, 1, 1}, "date cannot be empty"},
		{"negative fixation", date, [5]float64{1, -1, 1, 1, 1}, "dm fixation cannot be negative, got -1"},
		{"negative uptake", date, [5]float64{1, 1, -2, 1, 1}, "n uptake cannot be negative, got -2"},
		{"negative other weight", date, [5]float64{1, 1, 1, -3, 1}, "other above ground weight cannot be negative, got -3"},
		{"negative cohorts", date, [5]float64{1, 1, 1, 1, -4}, "dead cohort number cannot be negative, got -4"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDailyDriver(tc.date, tc.values[0], tc.values[1], tc.values[2], tc.values[3], tc.values[4], true)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}
