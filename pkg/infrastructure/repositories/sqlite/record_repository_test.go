package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

func newTestRepository(t *testing.T) *RecordRepository {
	t.Helper()
	repo, err := NewRecordRepository(filepath.Join(t.TempDir(), "nested", "records.db"))
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleRecords() []*entities.DailyRecord {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return []*entities.DailyRecord{
		{
			Day: 1, Date: start, Alive: true, Stage: 1.25, Phase: "Vegetative", TTinPhase: 50,
			Organs: []entities.OrganRecord{{
				Name:     "Grain",
				Live:     entities.Biomass{StructuralWt: 2, StructuralN: 0.04},
				DMDemand: entities.BiomassPoolType{Structural: 2},
			}},
		},
		{Day: 2, Date: start.AddDate(0, 0, 1), Alive: true, Stage: 1.5, Phase: "Vegetative", TTinPhase: 100},
	}
}

func TestRecordRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.SaveRecords(ctx, "wheat-20240501", sampleRecords()); err != nil {
		t.Fatalf("Failed to save records: %v", err)
	}
	got, err := repo.GetRecords(ctx, "wheat-20240501")
	if err != nil {
		t.Fatalf("Failed to get records: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	if got[0].Day != 1 || got[1].Day != 2 {
		t.Errorf("Expected records in day order, got days %d and %d", got[0].Day, got[1].Day)
	}
	grain, ok := got[0].Organ("Grain")
	if !ok {
		t.Fatal("Expected grain record after reload")
	}
	if grain.Live.StructuralWt != 2 || grain.DMDemand.Structural != 2 {
		t.Errorf("Unexpected grain record %+v", grain)
	}
	if !got[1].Date.Equal(sampleRecords()[1].Date) {
		t.Errorf("Expected date %v, got %v", sampleRecords()[1].Date, got[1].Date)
	}
}

func TestRecordRepository_SaveReplacesRun(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.SaveRecords(ctx, "run", sampleRecords()); err != nil {
		t.Fatalf("Failed to save records: %v", err)
	}
	if err := repo.SaveRecords(ctx, "run", sampleRecords()[:1]); err != nil {
		t.Fatalf("Failed to replace records: %v", err)
	}
	if err := repo.SaveRecords(ctx, "another", sampleRecords()); err != nil {
		t.Fatalf("Failed to save second run: %v", err)
	}

	got, err := repo.GetRecords(ctx, "run")
	if err != nil {
		t.Fatalf("Failed to get records: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected replaced run to hold 1 record, got %d", len(got))
	}

	runs, err := repo.ListRuns(ctx)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 2 || runs[0] != "another" || runs[1] != "run" {
		t.Errorf("Expected runs [another run], got %v", runs)
	}

	if _, err := repo.GetRecords(ctx, "missing"); err == nil {
		t.Error("Expected error for missing run")
	}
}

func TestRecordRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	repo, err := NewRecordRepository(path)
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}
	if err := repo.SaveRecords(ctx, "run", sampleRecords()); err != nil {
		t.Fatalf("Failed to save records: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Failed to close repository: %v", err)
	}

	reopened, err := NewRecordRepository(path)
	if err != nil {
		t.Fatalf("Failed to reopen repository: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetRecords(ctx, "run")
	if err != nil {
		t.Fatalf("Failed to get records after reopen: %v", err)
	}
	if len(got) != 2 || reopened.Path() != path {
		t.Errorf("Expected 2 records at %s, got %d at %s", path, len(got), reopened.Path())
	}
}
