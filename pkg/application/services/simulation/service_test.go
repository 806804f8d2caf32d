package simulation

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/vsinha/cropsim/pkg/application/services/arbitration"
	"github.com/vsinha/cropsim/pkg/domain/entities"
	"github.com/vsinha/cropsim/pkg/infrastructure/events"
	"github.com/vsinha/cropsim/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/vsinha/cropsim/pkg/infrastructure/testing"
)

const tolerance = 1e-9

// countingRecorder counts what the service reports
type countingRecorder struct {
	days         int
	transitions  int
	arbitrations int
}

func (r *countingRecorder) RecordDay(*entities.DailyRecord)                  { r.days++ }
func (r *countingRecorder) RecordTransition(entities.PhaseTransition)        { r.transitions++ }
func (r *countingRecorder) RecordArbitration(*arbitration.ArbitrationResult) { r.arbitrations++ }

func wheatDrivers(t *testing.T) (*entities.CropParameters, []*entities.DailyDriver) {
	t.Helper()
	params, repo := testhelpers.BuildWheatScenario()
	drivers, err := repo.GetDrivers()
	if err != nil {
		t.Fatalf("Failed to get drivers: %v", err)
	}
	return params, drivers
}

func TestService_RunHarvestsAtMaturity(t *testing.T) {
	params, drivers := wheatDrivers(t)
	store := events.NewInMemoryEventStore()
	records := memory.NewRecordRepository()
	som := memory.NewSurfaceOrganicMatterPool()
	recorder := &countingRecorder{}

	service := NewServiceWithConfig(ServiceConfig{
		EventStore:           store,
		SurfaceOrganicMatter: som,
		Recorder:             recorder,
		Records:              records,
		Warnings:             &bytes.Buffer{},
	})

	result, err := service.Run(context.Background(), params, drivers)
	if err != nil {
		t.Fatalf("Failed to run simulation: %v", err)
	}

	if result.RunID != "wheat-20240501" {
		t.Errorf("Expected run id wheat-20240501, got %s", result.RunID)
	}
	if result.DaysSimulated != testhelpers.WheatHarvestDay {
		t.Errorf("Expected run to stop on harvest day %d, got %d", testhelpers.WheatHarvestDay, result.DaysSimulated)
	}
	if result.FinalPhase != "Mature" {
		t.Errorf("Expected final phase Mature, got %s", result.FinalPhase)
	}

	expected := []struct {
		day int
		to  string
	}{
		{5, "Vegetative"},
		{15, "GrainFilling"},
		{25, "Ripening"},
		{30, "Mature"},
	}
	if len(result.Transitions) != len(expected) {
		t.Fatalf("Expected %d transitions, got %d", len(expected), len(result.Transitions))
	}
	for i, want := range expected {
		got := result.Transitions[i]
		wantDate := testhelpers.WheatSowDate.AddDate(0, 0, want.day-1)
		if got.To != want.to || !got.Date.Equal(wantDate) {
			t.Errorf("Transition %d: expected %s on %s, got %s on %s",
				i, want.to, wantDate.Format("2006-01-02"), got.To, got.Date.Format("2006-01-02"))
		}
	}

	// Stem grows 4 a day while Emerging and Vegetative
	stem, ok := result.Records[14].Organ("Stem")
	if !ok {
		t.Fatal("Expected stem in day 15 record")
	}
	if math.Abs(stem.Live.Wt()-60) > tolerance {
		t.Errorf("Expected stem live weight 60 on day 15, got %g", stem.Live.Wt())
	}

	if result.Harvest == nil {
		t.Fatal("Expected a harvest report")
	}
	if result.Harvest.Removed["Grain"].Wt() <= 0 {
		t.Errorf("Expected grain to be harvested, got %g", result.Harvest.Removed["Grain"].Wt())
	}
	if math.Abs(result.Harvest.Removed["Stem"].Wt()-60) > tolerance {
		t.Errorf("Expected 60 of stem harvested, got %g", result.Harvest.Removed["Stem"].Wt())
	}
	if result.Totals.ResidueMass > tolerance || som.TotalMass() > tolerance {
		t.Errorf("Expected no residue from a full harvest, got %g", result.Totals.ResidueMass)
	}

	final := result.FinalRecord()
	if final.Alive {
		t.Error("Expected plant to have ended after harvest")
	}
	for _, organ := range final.Organs {
		if organ.Live.Wt() != 0 || organ.Dead.Wt() != 0 {
			t.Errorf("Expected %s to be empty after harvest, got live %g dead %g", organ.Name, organ.Live.Wt(), organ.Dead.Wt())
		}
	}

	if recorder.days != 30 || recorder.transitions != 4 || recorder.arbitrations != 30 {
		t.Errorf("Expected recorder to see 30 days, 4 transitions and 30 arbitrations, got %d/%d/%d",
			recorder.days, recorder.transitions, recorder.arbitrations)
	}

	stored, err := records.GetRecords(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("Failed to get stored records: %v", err)
	}
	if len(stored) != 30 {
		t.Errorf("Expected 30 stored records, got %d", len(stored))
	}

	stream, err := store.ReadEvents(result.RunID, 1)
	if err != nil {
		t.Fatalf("Failed to read events: %v", err)
	}
	wantTypes := []string{
		events.PlantSownEvent,
		events.PhaseChangedEvent, events.PhaseChangedEvent, events.PhaseChangedEvent, events.PhaseChangedEvent,
		events.BiomassRemovedEvent,
		events.PlantEndedEvent,
	}
	if len(stream) != len(wantTypes) {
		t.Fatalf("Expected %d events, got %d", len(wantTypes), len(stream))
	}
	for i, want := range wantTypes {
		if stream[i].Type() != want {
			t.Errorf("Event %d: expected %s, got %s", i, want, stream[i].Type())
		}
	}
	ended, ok := stream[len(stream)-1].Data().(events.PlantEnded)
	if !ok || ended.DaysGrown != 30 {
		t.Errorf("Expected plant ended after 30 days, got %+v", stream[len(stream)-1].Data())
	}
}

func TestService_RunWithoutHarvest(t *testing.T) {
	params, drivers := wheatDrivers(t)
	params.Harvest = entities.HarvestParameters{}

	result, err := NewService().Run(context.Background(), params, drivers[:20])
	if err != nil {
		t.Fatalf("Failed to run simulation: %v", err)
	}

	if result.DaysSimulated != 20 {
		t.Errorf("Expected all 20 days simulated, got %d", result.DaysSimulated)
	}
	if result.Harvest != nil {
		t.Error("Expected no harvest report")
	}
	if result.FinalPhase != "GrainFilling" {
		t.Errorf("Expected final phase GrainFilling, got %s", result.FinalPhase)
	}
	if !result.FinalRecord().Alive {
		t.Error("Expected plant to be alive at the end of the drivers")
	}
	// Stage 3 plus half of GrainFilling
	if math.Abs(result.FinalStage-3.5) > 1e-3 {
		t.Errorf("Expected final stage near 3.5, got %g", result.FinalStage)
	}
}

func TestService_SowDate(t *testing.T) {
	params, drivers := wheatDrivers(t)

	params.SowDate = testhelpers.WheatSowDate.AddDate(0, 0, 3)
	result, err := NewService().Run(context.Background(), params, drivers[:10])
	if err != nil {
		t.Fatalf("Failed to run simulation: %v", err)
	}
	if result.DaysSimulated != 7 {
		t.Errorf("Expected 7 days from the sow date, got %d", result.DaysSimulated)
	}
	first := result.Records[0]
	if first.Day != 1 || !first.Date.Equal(params.SowDate) {
		t.Errorf("Expected day 1 on the sow date, got day %d on %s", first.Day, first.Date.Format("2006-01-02"))
	}

	params.SowDate = testhelpers.WheatSowDate.AddDate(1, 0, 0)
	if _, err := NewService().Run(context.Background(), params, drivers); err == nil {
		t.Error("Expected error for a sow date after the last driver")
	}
}

func TestService_RunErrors(t *testing.T) {
	params, drivers := wheatDrivers(t)

	if _, err := NewService().Run(context.Background(), params, nil); err == nil {
		t.Error("Expected error for empty drivers")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewService().Run(ctx, params, drivers)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	invalid := testhelpers.WheatCropParameters()
	invalid.FinalLeafNumber = 0
	if _, err := NewService().Run(context.Background(), invalid, drivers); err == nil {
		t.Error("Expected error for invalid crop parameters")
	}
}

func TestService_PublishFailureWarns(t *testing.T) {
	params, drivers := wheatDrivers(t)
	store := events.NewInMemoryEventStore()
	failing := &events.HandlerFunc{
		Types: []string{events.PlantSownEvent},
		Fn:    func(events.Event) error { return errors.New("subscriber unavailable") },
	}
	if err := store.Subscribe(nil, failing); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	warnings := &bytes.Buffer{}

	service := NewServiceWithConfig(ServiceConfig{RunID: "warned", EventStore: store, Warnings: warnings})
	if _, err := service.Run(context.Background(), params, drivers); err != nil {
		t.Fatalf("Expected run to succeed despite publish failure, got %v", err)
	}

	if !strings.Contains(warnings.String(), "Warning: failed to publish plant.sown event") {
		t.Errorf("Expected publish warning, got %q", warnings.String())
	}
	stream, _ := store.ReadEvents("warned", 1)
	if len(stream) != 7 {
		t.Errorf("Expected events stored despite handler failure, got %d", len(stream))
	}
}
