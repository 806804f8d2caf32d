// Package simulation runs a crop through its daily cycle of arbitration,
// respiration, phenology and removal.
package simulation

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vsinha/cropsim/pkg/application/dto"
	"github.com/vsinha/cropsim/pkg/application/services/arbitration"
	"github.com/vsinha/cropsim/pkg/domain/entities"
	"github.com/vsinha/cropsim/pkg/domain/organs"
	"github.com/vsinha/cropsim/pkg/domain/repositories"
	"github.com/vsinha/cropsim/pkg/infrastructure/events"
)

// Recorder observes a run as it progresses
type Recorder interface {
	RecordDay(record *entities.DailyRecord)
	RecordTransition(transition entities.PhaseTransition)
	RecordArbitration(result *arbitration.ArbitrationResult)
}

type nopRecorder struct{}

func (nopRecorder) RecordDay(*entities.DailyRecord)                  {}
func (nopRecorder) RecordTransition(entities.PhaseTransition)        {}
func (nopRecorder) RecordArbitration(*arbitration.ArbitrationResult) {}

// ServiceConfig holds the optional collaborators of a Service
type ServiceConfig struct {
	// RunID names the event stream and stored records (default crop type and sow date)
	RunID string
	// EventStore receives lifecycle events when set
	EventStore events.EventStore
	// SurfaceOrganicMatter receives every residue addition when set
	SurfaceOrganicMatter organs.SurfaceOrganicMatter
	// Recorder observes days, transitions and arbitration when set
	Recorder Recorder
	// Records stores the daily records at the end of the run when set
	Records repositories.RecordRepository
	// Warnings receives non-fatal publishing failures (default stderr)
	Warnings io.Writer
}

// Service runs simulations
type Service struct {
	config     ServiceConfig
	arbitrator *arbitration.Arbitrator
}

// NewService creates a simulation service without optional collaborators
func NewService() *Service {
	return NewServiceWithConfig(ServiceConfig{})
}

// NewServiceWithConfig creates a simulation service with the given collaborators
func NewServiceWithConfig(config ServiceConfig) *Service {
	if config.Recorder == nil {
		config.Recorder = nopRecorder{}
	}
	if config.Warnings == nil {
		config.Warnings = os.Stderr
	}
	return &Service{config: config, arbitrator: arbitration.NewArbitrator()}
}

// residueCollector date-stamps residue additions and forwards them
type residueCollector struct {
	date      time.Time
	additions []entities.ResidueAddition
	next      organs.SurfaceOrganicMatter
}

func (c *residueCollector) Add(mass, n, pHome float64, cropType, organName string) {
	c.additions = append(c.additions, entities.ResidueAddition{
		Date:      c.date,
		CropType:  cropType,
		OrganName: organName,
		Mass:      mass,
		N:         n,
		PHome:     pHome,
	})
	if c.next != nil {
		c.next.Add(mass, n, pHome, cropType, organName)
	}
}

// Run simulates the crop from its sow date over the given drivers. The run
// stops early once the plant has been harvested.
func (s *Service) Run(
	ctx context.Context,
	params *entities.CropParameters,
	drivers []*entities.DailyDriver,
) (*dto.SimulationResult, error) {
	if len(drivers) == 0 {
		return nil, fmt.Errorf("no daily drivers to simulate")
	}

	residues := &residueCollector{next: s.config.SurfaceOrganicMatter}
	plant, err := NewPlant(params, residues)
	if err != nil {
		return nil, err
	}

	start, err := sowIndex(params.SowDate, drivers)
	if err != nil {
		return nil, err
	}
	sowDate := drivers[start].Date
	runID := s.config.RunID
	if runID == "" {
		runID = fmt.Sprintf("%s-%s", params.CropType, sowDate.Format("20060102"))
	}

	result := &dto.SimulationResult{
		RunID:    runID,
		CropType: params.CropType,
		Records:  make([]*entities.DailyRecord, 0, len(drivers)-start),
	}

	plant.Commence()
	residues.date = sowDate
	plant.SetToday(*drivers[start])
	plant.Sow()
	s.publish(runID, events.NewPlantSownEvent(sowDate, params.CropType, organNames(plant), plant.Phenology().CurrentPhase().Name()))

	removalType := params.Harvest.RemovalType
	if removalType == "" {
		removalType = entities.RemovalHarvest
	}

	for i, driver := range drivers[start:] {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation cancelled on %s: %w", driver.Date.Format("2006-01-02"), err)
		}

		residues.date = driver.Date
		plant.SetToday(*driver)
		plant.DailyInitialisation()

		arb, err := s.arbitrator.Arbitrate(plant.Organs(), driver.DMFixation, driver.NUptake)
		if err != nil {
			return nil, fmt.Errorf("day %d (%s): %w", i+1, driver.Date.Format("2006-01-02"), err)
		}
		s.config.Recorder.RecordArbitration(arb)
		addArbitration(&result.Totals, arb)

		for _, organ := range plant.Organs() {
			respiration := organ.MaintenanceRespiration()
			if err := organ.RemoveMaintenanceRespiration(respiration); err != nil {
				return nil, fmt.Errorf("day %d (%s): %w", i+1, driver.Date.Format("2006-01-02"), err)
			}
			result.Totals.Respiration += respiration
		}

		transitions := plant.Phenology().DoTimeStep(driver.Date)

		for _, organ := range plant.Organs() {
			if growing, ok := organ.(organs.DailyProcess); ok {
				growing.DoActualPlantGrowth()
			}
		}

		harvestToday := false
		for _, transition := range transitions {
			result.Transitions = append(result.Transitions, transition)
			s.config.Recorder.RecordTransition(transition)
			s.publish(runID, events.NewPhaseChangedEvent(transition, plant.Phenology().Stage()))
			if params.Harvest.AtPhase != "" && transition.To == params.Harvest.AtPhase {
				harvestToday = true
			}
		}

		if harvestToday {
			report, err := harvest(plant, removalType, driver.Date)
			if err != nil {
				return nil, fmt.Errorf("harvest on %s: %w", driver.Date.Format("2006-01-02"), err)
			}
			result.Harvest = report
			for _, b := range report.Removed {
				result.Totals.HarvestedWt += b.Wt()
				result.Totals.HarvestedN += b.N()
			}
			s.publish(runID, events.NewBiomassRemovedEvent(*report))
			plant.End()
		}

		record := snapshot(plant, i+1, driver.Date)
		result.Records = append(result.Records, record)
		s.config.Recorder.RecordDay(record)

		if harvestToday {
			residueWt, residueN := sumResidues(residues.additions)
			s.publish(runID, events.NewPlantEndedEvent(driver.Date, events.PlantEnded{
				CropType:  params.CropType,
				Stage:     record.Stage,
				DaysGrown: i + 1,
				ResidueWt: residueWt,
				ResidueN:  residueN,
			}))
			break
		}
	}

	result.DaysSimulated = len(result.Records)
	result.FinalStage = plant.Phenology().Stage()
	result.FinalPhase = plant.Phenology().CurrentPhase().Name()
	result.Residues = residues.additions
	result.Totals.ResidueMass, result.Totals.ResidueN = sumResidues(residues.additions)

	if s.config.Records != nil {
		if err := s.config.Records.SaveRecords(ctx, runID, result.Records); err != nil {
			return nil, fmt.Errorf("failed to save records for run %s: %w", runID, err)
		}
	}

	return result, nil
}

func (s *Service) publish(streamID string, event events.Event) {
	if s.config.EventStore == nil {
		return
	}
	if err := s.config.EventStore.AppendEvent(streamID, event); err != nil {
		fmt.Fprintf(s.config.Warnings, "Warning: failed to publish %s event: %v\n", event.Type(), err)
	}
}

// sowIndex finds the first driver on or after the sow date
func sowIndex(sowDate time.Time, drivers []*entities.DailyDriver) (int, error) {
	if sowDate.IsZero() {
		return 0, nil
	}
	for i, driver := range drivers {
		if !driver.Date.Before(sowDate) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no drivers on or after sow date %s", sowDate.Format("2006-01-02"))
}

func harvest(plant *Plant, removalType string, date time.Time) (*entities.HarvestReport, error) {
	report := &entities.HarvestReport{
		Date:        date,
		RemovalType: removalType,
		Removed:     make(map[string]entities.Biomass),
		Detached:    make(map[string]entities.Biomass),
	}
	for _, organ := range plant.Organs() {
		before := organ.Flows()
		if err := organ.RemoveBiomass(removalType, nil); err != nil {
			return nil, err
		}
		after := organ.Flows()

		removed := after.Removed
		removed.Subtract(before.Removed)
		detached := after.Detached
		detached.Subtract(before.Detached)
		report.Removed[organ.Name()] = removed
		report.Detached[organ.Name()] = detached
	}
	return report, nil
}

func snapshot(plant *Plant, day int, date time.Time) *entities.DailyRecord {
	pheno := plant.Phenology()
	record := &entities.DailyRecord{
		Day:       day,
		Date:      date,
		Alive:     plant.IsAlive(),
		Stage:     pheno.Stage(),
		Phase:     pheno.CurrentPhase().Name(),
		TTinPhase: pheno.CurrentPhase().TTinPhase(),
		Organs:    make([]entities.OrganRecord, 0, len(plant.Organs())),
	}
	for _, organ := range plant.Organs() {
		record.Organs = append(record.Organs, entities.OrganRecord{
			Name:     organ.Name(),
			Live:     organ.Live(),
			Dead:     organ.Dead(),
			Flows:    organ.Flows(),
			DMDemand: organ.DMDemand(),
			NDemand:  organ.NDemand(),
		})
	}
	return record
}

func addArbitration(totals *dto.ResourceTotals, arb *arbitration.ArbitrationResult) {
	totals.DMSupply += arb.DryMatter.Supply
	totals.DMAllocated += arb.DryMatter.Allocated
	totals.DMUnmet += arb.DryMatter.Unmet
	totals.NSupply += arb.Nitrogen.Supply
	totals.NAllocated += arb.Nitrogen.Allocated
	totals.NUnmet += arb.Nitrogen.Unmet
}

func sumResidues(additions []entities.ResidueAddition) (mass, n float64) {
	for _, a := range additions {
		mass += a.Mass
		n += a.N
	}
	return mass, n
}

func organNames(plant *Plant) []string {
	names := make([]string, 0, len(plant.Organs()))
	for _, organ := range plant.Organs() {
		names = append(names, organ.Name())
	}
	return names
}
