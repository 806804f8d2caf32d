package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validDrivers = `date,thermal_time,dm_fixation,n_uptake,other_above_ground_wt,dead_cohort_no,cohorts_initialised
# sown on the first day
2024-05-01,12.5,4,0.1,80,0,true
2024-05-02,14,5.5,0.12,85,0.5,yes
2024-05-03,9,0,0,90,1,false
`

func TestLoader_ReadDrivers(t *testing.T) {
	drivers, err := NewLoader().ReadDrivers(strings.NewReader(validDrivers))
	if err != nil {
		t.Fatalf("Failed to read drivers: %v", err)
	}
	if len(drivers) != 3 {
		t.Fatalf("Expected 3 drivers, got %d", len(drivers))
	}

	first := drivers[0]
	if !first.Date.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected 2024-05-01, got %v", first.Date)
	}
	if first.ThermalTime != 12.5 || first.DMFixation != 4 || first.NUptake != 0.1 {
		t.Errorf("Unexpected driver values %+v", first)
	}
	if first.OtherAboveGroundWt != 80 || !first.CohortsInitialised {
		t.Errorf("Unexpected driver values %+v", first)
	}
	if !drivers[1].CohortsInitialised || drivers[2].CohortsInitialised {
		t.Error("Expected yes to parse as true and false as false")
	}
}

func TestLoader_ReadDriversErrors(t *testing.T) {
	header := strings.Join(DriverHeader, ",") + "\n"

	testCases := []struct {
		name     string
		data     string
		contains string
	}{
		{"header only", header, "at least one data row"},
		{"wrong header", "day,tt\n2024-05-01,1\n", "header mismatch"},
		{"bad date", header + "01/05/2024,1,1,1,1,1,true\n", "row 2: invalid date format"},
		{"bad number", header + "2024-05-01,warm,1,1,1,1,true\n", "row 2: invalid thermal_time"},
		{"bad bool", header + "2024-05-01,1,1,1,1,1,maybe\n", "invalid cohorts_initialised"},
		{"negative fixation", header + "2024-05-01,1,-1,1,1,1,true\n", "dm fixation cannot be negative"},
		{"dates out of order", header + "2024-05-02,1,1,1,1,1,true\n2024-05-01,1,1,1,1,1,true\n", "row 3: date 2024-05-01 is not after 2024-05-02"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().ReadDrivers(strings.NewReader(tc.data))
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("Expected error containing '%s', got '%s'", tc.contains, err.Error())
			}
		})
	}
}

func TestLoader_LoadDriversFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivers.csv")
	if err := os.WriteFile(path, []byte(validDrivers), 0o600); err != nil {
		t.Fatalf("Failed to write drivers file: %v", err)
	}

	drivers, err := NewLoader().LoadDrivers(path)
	if err != nil {
		t.Fatalf("Failed to load drivers: %v", err)
	}
	if len(drivers) != 3 {
		t.Errorf("Expected 3 drivers, got %d", len(drivers))
	}

	if _, err := NewLoader().LoadDrivers(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error for missing file")
	}
}
