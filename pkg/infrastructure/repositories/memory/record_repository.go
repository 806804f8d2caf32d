package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/cropsim/pkg/domain/entities"
	"github.com/vsinha/cropsim/pkg/domain/repositories"
)

// RecordRepository provides in-memory storage of daily records per run
type RecordRepository struct {
	runs  map[string][]entities.DailyRecord
	mutex sync.RWMutex
}

// NewRecordRepository creates a new in-memory record repository
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{runs: make(map[string][]entities.DailyRecord)}
}

// Verify interface compliance
var _ repositories.RecordRepository = (*RecordRepository)(nil)

// SaveRecords replaces the stored records of a run
func (r *RecordRepository) SaveRecords(ctx context.Context, runID string, records []*entities.DailyRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if runID == "" {
		return fmt.Errorf("run id cannot be empty")
	}

	stored := make([]entities.DailyRecord, 0, len(records))
	for _, record := range records {
		copied := *record
		copied.Organs = append([]entities.OrganRecord(nil), record.Organs...)
		stored = append(stored, copied)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.runs[runID] = stored
	return nil
}

// GetRecords returns the records of a run in day order
func (r *RecordRepository) GetRecords(ctx context.Context, runID string) ([]*entities.DailyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stored, exists := r.runs[runID]
	if !exists {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	records := make([]*entities.DailyRecord, 0, len(stored))
	for i := range stored {
		copied := stored[i]
		copied.Organs = append([]entities.OrganRecord(nil), stored[i].Organs...)
		records = append(records, &copied)
	}
	return records, nil
}

// ListRuns returns the stored run ids in sorted order
func (r *RecordRepository) ListRuns(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	runs := make([]string, 0, len(r.runs))
	for runID := range r.runs {
		runs = append(runs, runID)
	}
	sort.Strings(runs)
	return runs, nil
}
