package record

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *PatientRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*PatientRecord, error)
	FindByNumber(ctx context.Context, number string) (*PatientRecord, error)
	FindByName(ctx context.Context, name string) (*PatientRecord, error)
	Update(ctx context.Context, r *PatientRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit, offset int) ([]*PatientRecord, int, error)
}

type MovementRepository interface {
	Append(ctx context.Context, m *MovementEvent) error
	List(ctx context.Context, limit, offset int) ([]*MovementEvent, int, error)
	ListByRecordNumber(ctx context.Context, number string, limit, offset int) ([]*MovementEvent, int, error)
}
