package memory

import (
	"fmt"
	"sort"

	"github.com/vsinha/cropsim/pkg/domain/entities"
	"github.com/vsinha/cropsim/pkg/domain/repositories"
)

// DriverRepository provides in-memory daily driver storage, kept in date
// order
type DriverRepository struct {
	drivers []entities.DailyDriver
	byDate  map[string]int
}

// NewDriverRepository creates a new in-memory driver repository
func NewDriverRepository() *DriverRepository {
	return &DriverRepository{
		drivers: []entities.DailyDriver{},
		byDate:  make(map[string]int),
	}
}

// Verify interface compliance
var _ repositories.DriverRepository = (*DriverRepository)(nil)

// LoadDrivers adds drivers to the repository. Each date may appear once.
func (r *DriverRepository) LoadDrivers(drivers []*entities.DailyDriver) error {
	for _, driver := range drivers {
		key := driver.Date.Format("2006-01-02")
		if _, exists := r.byDate[key]; exists {
			return fmt.Errorf("duplicate driver date: %s", key)
		}
		r.byDate[key] = len(r.drivers)
		r.drivers = append(r.drivers, *driver)
	}

	sort.SliceStable(r.drivers, func(i, j int) bool {
		return r.drivers[i].Date.Before(r.drivers[j].Date)
	})
	for i, driver := range r.drivers {
		r.byDate[driver.Date.Format("2006-01-02")] = i
	}
	return nil
}

// GetDrivers returns every driver in date order
func (r *DriverRepository) GetDrivers() ([]*entities.DailyDriver, error) {
	drivers := make([]*entities.DailyDriver, 0, len(r.drivers))
	for i := range r.drivers {
		drivers = append(drivers, &r.drivers[i])
	}
	return drivers, nil
}

// GetDriver returns the driver for a date in YYYY-MM-DD form
func (r *DriverRepository) GetDriver(date string) (*entities.DailyDriver, error) {
	i, exists := r.byDate[date]
	if !exists {
		return nil, fmt.Errorf("driver not found for date: %s", date)
	}
	return &r.drivers[i], nil
}
