package record

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/charttrack/charttrack/internal/platform/db"
)

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

const recordCols = `id, record_number, patient_name, age, sex, birth_date, status,
	current_location, previous_location, last_movement_at, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, rec *PatientRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_record (
			id, record_number, patient_name, age, sex, birth_date, status,
			current_location, previous_location, last_movement_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())`,
		rec.ID, rec.RecordNumber, rec.PatientName, rec.Age, rec.Sex, rec.BirthDate, rec.Status,
		rec.CurrentLocation, rec.PreviousLocation,
	)
	return mapPGError(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*PatientRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM patient_record WHERE id = $1`, id))
}

func (r *repoPG) FindByNumber(ctx context.Context, number string) (*PatientRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM patient_record WHERE record_number = $1 AND record_number <> ''`, number))
}

func (r *repoPG) FindByName(ctx context.Context, name string) (*PatientRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM patient_record WHERE patient_name = $1 ORDER BY created_at LIMIT 1`, name))
}

func (r *repoPG) Update(ctx context.Context, rec *PatientRecord) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient_record SET
			record_number=$2, patient_name=$3, age=$4, sex=$5, birth_date=$6, status=$7,
			current_location=$8, previous_location=$9, last_movement_at=$10, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.RecordNumber, rec.PatientName, rec.Age, rec.Sex, rec.BirthDate, rec.Status,
		rec.CurrentLocation, rec.PreviousLocation, rec.LastMovementAt,
	)
	if err != nil {
		return mapPGError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_record WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]*PatientRecord, int, error) {
	if query == "" {
		var total int
		if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient_record`).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err := r.conn(ctx).Query(ctx,
			`SELECT `+recordCols+` FROM patient_record ORDER BY patient_name LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		defer rows.Close()
		return collectRecords(rows, total)
	}

	// A query matches either a name fragment or an exact record number.
	where := ` WHERE patient_name ILIKE '%' || $1 || '%' OR (record_number <> '' AND record_number = $2)`
	number := NormalizeNumber(query)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient_record`+where, query, number).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM patient_record`+where+` ORDER BY patient_name LIMIT $3 OFFSET $4`,
		query, number, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectRecords(rows, total)
}

type movementRepoPG struct {
	pool *pgxpool.Pool
}

func NewMovementRepo(pool *pgxpool.Pool) MovementRepository {
	return &movementRepoPG{pool: pool}
}

func (r *movementRepoPG) conn(ctx context.Context) db.Queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const movementCols = `id, record_number, patient_name, age, origin, destination, occurred_at, actor, note`

func (r *movementRepoPG) Append(ctx context.Context, m *MovementEvent) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO movement_event (id, record_number, patient_name, age, origin, destination, occurred_at, actor, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.RecordNumber, m.PatientName, m.Age, m.Origin, m.Destination, m.OccurredAt, m.Actor, m.Note,
	)
	return err
}

func (r *movementRepoPG) List(ctx context.Context, limit, offset int) ([]*MovementEvent, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM movement_event`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+movementCols+` FROM movement_event ORDER BY occurred_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectMovements(rows, total)
}

func (r *movementRepoPG) ListByRecordNumber(ctx context.Context, number string, limit, offset int) ([]*MovementEvent, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM movement_event WHERE record_number = $1`, number).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+movementCols+` FROM movement_event WHERE record_number = $1 ORDER BY occurred_at DESC LIMIT $2 OFFSET $3`,
		number, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectMovements(rows, total)
}

func scanRecord(row pgx.Row) (*PatientRecord, error) {
	var rec PatientRecord
	err := row.Scan(
		&rec.ID, &rec.RecordNumber, &rec.PatientName, &rec.Age, &rec.Sex, &rec.BirthDate, &rec.Status,
		&rec.CurrentLocation, &rec.PreviousLocation, &rec.LastMovementAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectRecords(rows pgx.Rows, total int) ([]*PatientRecord, int, error) {
	var recs []*PatientRecord
	for rows.Next() {
		var rec PatientRecord
		err := rows.Scan(
			&rec.ID, &rec.RecordNumber, &rec.PatientName, &rec.Age, &rec.Sex, &rec.BirthDate, &rec.Status,
			&rec.CurrentLocation, &rec.PreviousLocation, &rec.LastMovementAt, &rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		recs = append(recs, &rec)
	}
	return recs, total, rows.Err()
}

func collectMovements(rows pgx.Rows, total int) ([]*MovementEvent, int, error) {
	var events []*MovementEvent
	for rows.Next() {
		var m MovementEvent
		err := rows.Scan(
			&m.ID, &m.RecordNumber, &m.PatientName, &m.Age, &m.Origin, &m.Destination,
			&m.OccurredAt, &m.Actor, &m.Note,
		)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, &m)
	}
	return events, total, rows.Err()
}

// mapPGError translates the partial unique index on record_number into the
// service-level sentinel.
func mapPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateNumber
	}
	return err
}
