package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

const validCrop = `
crop_type: wheat
final_leaf_number: 10
sow_date: 2024-05-01
phases:
  - {name: Emerging, kind: ThermalTime, start: Sowing, end: Emergence, target: 100}
  - {name: GrainFilling, kind: thermaltime, start: Emergence, end: Senescing, target: 400}
  - {name: LeafDeath, kind: LeafDeath, start: Senescing, end: Maturity}
  - {name: Mature, kind: End, start: Maturity, end: Harvested}
organs:
  - name: Grain
    kind: HIReproductive
    hi_increment: 0.01
    hi_phases: [GrainFilling]
    n_conc: 0.02
    water_content: 0.12
  - name: Stem
    kind: Reserve
    structural_demand: 3
    storage_demand: 1
    max_n_conc: 0.01
    dm_retranslocation_factor: 0.1
    retranslocation_phases: [GrainFilling]
harvest:
  at_phase: Mature
  removal_type: Harvest
removal_fractions:
  Graze: {live_to_remove: 0.4, dead_to_remove: 0.2, live_to_residue: 0.1, dead_to_residue: 0.1}
`

func TestParseCrop(t *testing.T) {
	params, err := ParseCrop(strings.NewReader(validCrop))
	if err != nil {
		t.Fatalf("Failed to parse crop: %v", err)
	}

	if params.CropType != "wheat" || params.FinalLeafNumber != 10 {
		t.Errorf("Unexpected crop header %s/%g", params.CropType, params.FinalLeafNumber)
	}
	if !params.SowDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected sow date 2024-05-01, got %v", params.SowDate)
	}
	if len(params.Phases) != 4 {
		t.Fatalf("Expected 4 phases, got %d", len(params.Phases))
	}
	if params.Phases[1].Kind != entities.ThermalTimePhase {
		t.Errorf("Expected case-insensitive phase kind, got %s", params.Phases[1].Kind)
	}
	if params.Phases[2].Kind != entities.LeafDeathPhase || params.Phases[3].Kind != entities.EndPhase {
		t.Errorf("Unexpected phase kinds %s and %s", params.Phases[2].Kind, params.Phases[3].Kind)
	}

	grain := params.Organs[0]
	if grain.Kind != entities.HIReproductiveOrgan || grain.WaterContent == nil || *grain.WaterContent != 0.12 {
		t.Errorf("Unexpected grain parameters %+v", grain)
	}
	stem := params.Organs[1]
	if stem.Kind != entities.ReserveOrgan || stem.StructuralDemand != 3 || len(stem.RetranslocationPhases) != 1 {
		t.Errorf("Unexpected stem parameters %+v", stem)
	}

	graze, ok := params.RemovalFractions[entities.RemovalGraze]
	if !ok || graze.FractionLiveToRemove != 0.4 || graze.FractionDeadToResidue != 0.1 {
		t.Errorf("Unexpected graze fractions %+v", graze)
	}
	if params.Harvest.AtPhase != "Mature" {
		t.Errorf("Expected harvest at Mature, got %s", params.Harvest.AtPhase)
	}
}

func TestParseCrop_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		data     string
		contains string
	}{
		{"empty", "  \n", "crop payload is empty"},
		{"unknown field", "crop_type: wheat\ncolour: green\n", "field colour not found"},
		{"misspelt phase kind", strings.Replace(validCrop, "kind: End,", "kind: Ennd,", 1), "unknown phase kind: Ennd (did you mean End?)"},
		{"misspelt organ kind", strings.Replace(validCrop, "kind: Reserve", "kind: Reserv", 1), "unknown organ kind: Reserv (did you mean Reserve?)"},
		{"misspelt removal type", strings.Replace(validCrop, "removal_type: Harvest", "removal_type: Harvset", 1), "did you mean Harvest?"},
		{"bad sow date", strings.Replace(validCrop, "2024-05-01", "May 1", 1), "invalid sow_date format"},
		{"unknown phase reference", strings.Replace(validCrop, "hi_phases: [GrainFilling]", "hi_phases: [Filling]", 1), "organ Grain: phase not found: Filling"},
		{"bad removal fractions", strings.Replace(validCrop, "live_to_remove: 0.4", "live_to_remove: 0.95", 1), "removal fractions for Graze"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCrop(strings.NewReader(tc.data))
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("Expected error containing '%s', got '%s'", tc.contains, err.Error())
			}
		})
	}
}

func TestLoadCrop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crop.yaml")
	if err := os.WriteFile(path, []byte(validCrop), 0o600); err != nil {
		t.Fatalf("Failed to write crop file: %v", err)
	}

	params, err := LoadCrop(path)
	if err != nil {
		t.Fatalf("Failed to load crop: %v", err)
	}
	if params.CropType != "wheat" {
		t.Errorf("Expected wheat, got %s", params.CropType)
	}

	if _, err := LoadCrop(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
