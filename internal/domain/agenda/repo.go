package agenda

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateBatch(ctx context.Context, b *ScheduleBatch) error
	GetBatch(ctx context.Context, id uuid.UUID) (*ScheduleBatch, error)
	ListBatches(ctx context.Context, status string, limit, offset int) ([]*ScheduleBatch, int, error)
	UpdateItems(ctx context.Context, batchID uuid.UUID, items []*ScheduleItem) error
	MarkProcessed(ctx context.Context, b *ScheduleBatch) error
	DeleteBatch(ctx context.Context, id uuid.UUID) error
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
