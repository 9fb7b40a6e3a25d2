package agenda

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/charttrack/charttrack/internal/platform/db"
)

// ErrBatchNotFound is returned when no batch matches the id.
var ErrBatchNotFound = errors.New("batch not found")

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

// inTx runs fn inside the caller's transaction when one is already on the
// context, otherwise it opens its own.
func (r *repoPG) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.ConnFromContext(ctx) != nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, r.pool, fn)
}

const batchCols = `id, imported_at, schedule_date, imported_by, provider_name, specialty, total_items, status`

const itemCols = `id, batch_id, record_number, patient_name, age, sex, time_slot, provider_name, specialty, selected, outcome, position`

func (r *repoPG) CreateBatch(ctx context.Context, b *ScheduleBatch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.TotalItems = len(b.Items)
	if b.ImportedAt.IsZero() {
		b.ImportedAt = time.Now()
	}
	return r.inTx(ctx, func(ctx context.Context) error {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO schedule_batch (id, imported_at, schedule_date, imported_by, provider_name, specialty, total_items, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			b.ID, b.ImportedAt, b.ScheduleDate, b.ImportedBy, b.ProviderName, b.Specialty, b.TotalItems, b.Status,
		)
		if err != nil {
			return err
		}
		return r.insertItems(ctx, b.ID, b.Items)
	})
}

func (r *repoPG) insertItems(ctx context.Context, batchID uuid.UUID, items []*ScheduleItem) error {
	for i, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.BatchID = batchID
		it.Position = i
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO schedule_item (id, batch_id, record_number, patient_name, age, sex, time_slot, provider_name, specialty, selected, outcome, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			it.ID, it.BatchID, it.RecordNumber, it.PatientName, it.Age, it.Sex, it.TimeSlot,
			it.ProviderName, it.Specialty, it.Selected, it.Outcome, it.Position,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) GetBatch(ctx context.Context, id uuid.UUID) (*ScheduleBatch, error) {
	var b ScheduleBatch
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+batchCols+` FROM schedule_batch WHERE id = $1`, id).Scan(
		&b.ID, &b.ImportedAt, &b.ScheduleDate, &b.ImportedBy, &b.ProviderName, &b.Specialty, &b.TotalItems, &b.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM schedule_item WHERE batch_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it ScheduleItem
		err := rows.Scan(
			&it.ID, &it.BatchID, &it.RecordNumber, &it.PatientName, &it.Age, &it.Sex, &it.TimeSlot,
			&it.ProviderName, &it.Specialty, &it.Selected, &it.Outcome, &it.Position,
		)
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repoPG) ListBatches(ctx context.Context, status string, limit, offset int) ([]*ScheduleBatch, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM schedule_batch WHERE ($1 = '' OR status = $1)`, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+batchCols+` FROM schedule_batch
		WHERE ($1 = '' OR status = $1)
		ORDER BY imported_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var batches []*ScheduleBatch
	for rows.Next() {
		var b ScheduleBatch
		err := rows.Scan(&b.ID, &b.ImportedAt, &b.ScheduleDate, &b.ImportedBy, &b.ProviderName, &b.Specialty, &b.TotalItems, &b.Status)
		if err != nil {
			return nil, 0, err
		}
		batches = append(batches, &b)
	}
	return batches, total, rows.Err()
}

// UpdateItems replaces a draft batch's items with the reviewer's edited set.
func (r *repoPG) UpdateItems(ctx context.Context, batchID uuid.UUID, items []*ScheduleItem) error {
	return r.inTx(ctx, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM schedule_item WHERE batch_id = $1`, batchID); err != nil {
			return err
		}
		if err := r.insertItems(ctx, batchID, items); err != nil {
			return err
		}
		_, err := r.conn(ctx).Exec(ctx,
			`UPDATE schedule_batch SET total_items = $2 WHERE id = $1`, batchID, len(items))
		return err
	})
}

// MarkProcessed freezes a batch: status flips to processed and every item's
// outcome and selection are written back.
func (r *repoPG) MarkProcessed(ctx context.Context, b *ScheduleBatch) error {
	return r.inTx(ctx, func(ctx context.Context) error {
		tag, err := r.conn(ctx).Exec(ctx,
			`UPDATE schedule_batch SET status = $2 WHERE id = $1`, b.ID, StatusProcessed)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrBatchNotFound
		}
		for _, it := range b.Items {
			_, err := r.conn(ctx).Exec(ctx,
				`UPDATE schedule_item SET selected = $2, outcome = $3 WHERE id = $1`,
				it.ID, it.Selected, it.Outcome)
			if err != nil {
				return err
			}
		}
		b.Status = StatusProcessed
		return nil
	})
}

func (r *repoPG) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM schedule_batch WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBatchNotFound
	}
	return nil
}

func (r *repoPG) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM schedule_batch WHERE status = $1 AND imported_at < $2`, StatusProcessed, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
