package repositories

import (
	"context"

	"github.com/vsinha/cropsim/pkg/domain/entities"
)

// RecordRepository stores the daily records of simulation runs
type RecordRepository interface {
	SaveRecords(ctx context.Context, runID string, records []*entities.DailyRecord) error
	GetRecords(ctx context.Context, runID string) ([]*entities.DailyRecord, error)
	ListRuns(ctx context.Context) ([]string, error)
}
