package events

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

var sowDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func TestInMemoryEventStore_AppendVersionsPerStream(t *testing.T) {
	store := NewInMemoryEventStore()

	appends := []struct {
		stream string
		event  Event
	}{
		{"run-a", NewPlantSownEvent(sowDate, "wheat", []string{"Grain"}, "Emerging")},
		{"run-a", NewPhaseChangedEvent(entities.PhaseTransition{Date: sowDate, From: "Emerging", To: "Vegetative"}, 2)},
		{"run-b", NewPlantSownEvent(sowDate, "barley", []string{"Grain"}, "Emerging")},
	}
	for _, a := range appends {
		if err := store.AppendEvent(a.stream, a.event); err != nil {
			t.Fatalf("Failed to append event: %v", err)
		}
	}

	runA, err := store.ReadEvents("run-a", 1)
	if err != nil {
		t.Fatalf("Failed to read events: %v", err)
	}
	if len(runA) != 2 {
		t.Fatalf("Expected 2 events in run-a, got %d", len(runA))
	}
	if runA[0].Version() != 1 || runA[1].Version() != 2 {
		t.Errorf("Expected versions 1 and 2, got %d and %d", runA[0].Version(), runA[1].Version())
	}
	if runA[0].StreamID() != "run-a" {
		t.Errorf("Expected stream run-a, got %s", runA[0].StreamID())
	}
	if !runA[0].Timestamp().Equal(sowDate) {
		t.Errorf("Expected event stamped with the simulated date, got %v", runA[0].Timestamp())
	}
	changed, ok := runA[1].Data().(PhaseChanged)
	if !ok || changed.Transition.To != "Vegetative" || changed.Stage != 2 {
		t.Errorf("Unexpected phase changed payload %+v", runA[1].Data())
	}

	tail, _ := store.ReadEvents("run-a", 2)
	if len(tail) != 1 {
		t.Errorf("Expected 1 event from version 2, got %d", len(tail))
	}
	missing, _ := store.ReadEvents("run-c", 1)
	if len(missing) != 0 {
		t.Errorf("Expected no events for unknown stream, got %d", len(missing))
	}

	all, _ := store.ReadAllEvents(0)
	if len(all) != 3 || all[2].StreamID() != "run-b" {
		t.Errorf("Expected 3 events ending with run-b, got %d", len(all))
	}
	if rest, _ := store.ReadAllEvents(5); len(rest) != 0 {
		t.Errorf("Expected no events past the end, got %d", len(rest))
	}

	if err := store.AppendEvent("", runA[0]); err == nil {
		t.Error("Expected error for empty stream id")
	}
}

func TestInMemoryEventStore_Subscribers(t *testing.T) {
	store := NewInMemoryEventStore()

	var sown, everything []string
	sownHandler := &HandlerFunc{Fn: func(e Event) error {
		sown = append(sown, e.Type())
		return nil
	}}
	allHandler := &HandlerFunc{Fn: func(e Event) error {
		everything = append(everything, e.Type())
		return nil
	}}
	failing := &HandlerFunc{
		Types: []string{PlantEndedEvent},
		Fn:    func(Event) error { return errors.New("sink closed") },
	}

	if err := store.Subscribe([]string{PlantSownEvent}, sownHandler); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if err := store.Subscribe(nil, allHandler); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if err := store.Subscribe(nil, failing); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if err := store.Subscribe(nil, nil); err == nil {
		t.Error("Expected error for nil handler")
	}

	if err := store.AppendEvent("run", NewPlantSownEvent(sowDate, "wheat", nil, "Emerging")); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	err := store.AppendEvent("run", NewPlantEndedEvent(sowDate, PlantEnded{CropType: "wheat"}))
	if err == nil || !strings.Contains(err.Error(), "sink closed") {
		t.Errorf("Expected handler error to be returned, got %v", err)
	}
	if stored, _ := store.ReadEvents("run", 1); len(stored) != 2 {
		t.Errorf("Expected event stored despite handler error, got %d events", len(stored))
	}

	if len(sown) != 1 || len(everything) != 2 {
		t.Errorf("Expected 1 sown and 2 total notifications, got %d and %d", len(sown), len(everything))
	}

	if err := store.Unsubscribe(allHandler); err != nil {
		t.Fatalf("Failed to unsubscribe: %v", err)
	}
	_ = store.AppendEvent("run", NewPlantSownEvent(sowDate, "wheat", nil, "Emerging"))
	if len(everything) != 2 {
		t.Errorf("Expected no notifications after unsubscribe, got %d", len(everything))
	}
	if len(sown) != 2 {
		t.Errorf("Expected sown handler to stay subscribed, got %d", len(sown))
	}
}

func TestBiomassRemovedEvent(t *testing.T) {
	report := entities.HarvestReport{
		Date:        sowDate,
		RemovalType: entities.RemovalHarvest,
		Removed:     map[string]entities.Biomass{"Grain": {StructuralWt: 5}},
	}
	event := NewBiomassRemovedEvent(report)

	if event.Type() != BiomassRemovedEvent {
		t.Errorf("Expected type %s, got %s", BiomassRemovedEvent, event.Type())
	}
	payload, ok := event.Data().(BiomassRemoved)
	if !ok || payload.Removed["Grain"].Wt() != 5 {
		t.Errorf("Unexpected payload %+v", event.Data())
	}
}
