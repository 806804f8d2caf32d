package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

// DriverHeader is the expected header of a drivers CSV file
var DriverHeader = []string{
	"date", "thermal_time", "dm_fixation", "n_uptake",
	"other_above_ground_wt", "dead_cohort_no", "cohorts_initialised",
}

// Loader handles loading daily drivers from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDrivers loads daily drivers from a CSV file
func (l *Loader) LoadDrivers(filename string) ([]*entities.DailyDriver, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open drivers file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadDrivers(file)
}

// ReadDrivers parses daily drivers from CSV data
func (l *Loader) ReadDrivers(r io.Reader) ([]*entities.DailyDriver, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read drivers CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("drivers CSV must have header and at least one data row")
	}

	header := records[0]
	if !validateHeader(header, DriverHeader) {
		return nil, fmt.Errorf("drivers CSV header mismatch. Expected: %v, Got: %v", DriverHeader, header)
	}

	var drivers []*entities.DailyDriver
	var previous time.Time
	for i, record := range records[1:] {
		if len(record) != len(DriverHeader) {
			return nil, fmt.Errorf("drivers CSV row %d: expected %d columns, got %d", i+2, len(DriverHeader), len(record))
		}

		driver, err := parseDriver(record)
		if err != nil {
			return nil, fmt.Errorf("drivers CSV row %d: %w", i+2, err)
		}
		if !previous.IsZero() && !driver.Date.After(previous) {
			return nil, fmt.Errorf("drivers CSV row %d: date %s is not after %s",
				i+2, driver.Date.Format("2006-01-02"), previous.Format("2006-01-02"))
		}
		previous = driver.Date

		drivers = append(drivers, driver)
	}

	return drivers, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseDriver(record []string) (*entities.DailyDriver, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", record[0])
	}

	values := make([]float64, 5)
	for i, column := range DriverHeader[1:6] {
		values[i], err = strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %s", column, record[i+1])
		}
	}

	initialised, err := parseBool(record[6])
	if err != nil {
		return nil, err
	}

	return entities.NewDailyDriver(date, values[0], values[1], values[2], values[3], values[4], initialised)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid cohorts_initialised: %s (expected: true or false)", s)
	}
}
