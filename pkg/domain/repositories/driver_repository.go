package repositories

import "github.com/vsinha/cropsim/pkg/domain/entities"

// DriverRepository provides access to the daily weather and collaborator
// drivers of a scenario
type DriverRepository interface {
	GetDrivers() ([]*entities.DailyDriver, error)
	LoadDrivers(drivers []*entities.DailyDriver) error
}
