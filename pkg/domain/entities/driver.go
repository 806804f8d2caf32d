package entities

import (
	"fmt"
	"time"
)

// DailyDriver carries the externally supplied signals for one simulated day
type DailyDriver struct {
	Date               time.Time `json:"date"`
	ThermalTime        float64   `json:"thermal_time"`
	DMFixation         float64   `json:"dm_fixation"`
	NUptake            float64   `json:"n_uptake"`
	OtherAboveGroundWt float64   `json:"other_above_ground_wt"`
	DeadCohortNo       float64   `json:"dead_cohort_no"`
	CohortsInitialised bool      `json:"cohorts_initialised"`
}

// NewDailyDriver creates a validated DailyDriver
func NewDailyDriver(
	date time.Time,
	thermalTime, dmFixation, nUptake, otherAboveGroundWt, deadCohortNo float64,
	cohortsInitialised bool,
) (*DailyDriver, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("date cannot be empty")
	}
	if dmFixation < 0 {
		return nil, fmt.Errorf("dm fixation cannot be negative, got %g", dmFixation)
	}
	if nUptake < 0 {
		return nil, fmt.Errorf("n uptake cannot be negative, got %g", nUptake)
	}
	if otherAboveGroundWt < 0 {
		return nil, fmt.Errorf("other above ground weight cannot be negative, got %g", otherAboveGroundWt)
	}
	if deadCohortNo < 0 {
		return nil, fmt.Errorf("dead cohort number cannot be negative, got %g", deadCohortNo)
	}

	return &DailyDriver{
		Date:               date,
		ThermalTime:        thermalTime,
		DMFixation:         dmFixation,
		NUptake:            nUptake,
		OtherAboveGroundWt: otherAboveGroundWt,
		DeadCohortNo:       deadCohortNo,
		CohortsInitialised: cohortsInitialised,
	}, nil
}
