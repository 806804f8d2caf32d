package memory

import (
	"strings"
	"testing"
	"time"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func TestDriverRepository_LoadDriversSortsByDate(t *testing.T) {
	repo := NewDriverRepository()

	err := repo.LoadDrivers([]*entities.DailyDriver{
		{Date: day(3), ThermalTime: 13},
		{Date: day(1), ThermalTime: 11},
		{Date: day(2), ThermalTime: 12},
	})
	if err != nil {
		t.Fatalf("Failed to load drivers: %v", err)
	}

	drivers, err := repo.GetDrivers()
	if err != nil {
		t.Fatalf("Failed to get drivers: %v", err)
	}
	if len(drivers) != 3 {
		t.Fatalf("Expected 3 drivers, got %d", len(drivers))
	}
	for i, driver := range drivers {
		if !driver.Date.Equal(day(i + 1)) {
			t.Errorf("Expected driver %d on %v, got %v", i, day(i+1), driver.Date)
		}
	}

	driver, err := repo.GetDriver("2024-05-02")
	if err != nil {
		t.Fatalf("Failed to get driver: %v", err)
	}
	if driver.ThermalTime != 12 {
		t.Errorf("Expected thermal time 12, got %g", driver.ThermalTime)
	}
}

func TestDriverRepository_Errors(t *testing.T) {
	repo := NewDriverRepository()
	if err := repo.LoadDrivers([]*entities.DailyDriver{{Date: day(1)}}); err != nil {
		t.Fatalf("Failed to load drivers: %v", err)
	}

	err := repo.LoadDrivers([]*entities.DailyDriver{{Date: day(1)}})
	if err == nil {
		t.Fatal("Expected error for duplicate date")
	}
	if !strings.Contains(err.Error(), "duplicate driver date") {
		t.Errorf("Expected duplicate date error, got '%s'", err.Error())
	}

	if _, err := repo.GetDriver("2024-06-01"); err == nil {
		t.Error("Expected error for missing date")
	}
}
