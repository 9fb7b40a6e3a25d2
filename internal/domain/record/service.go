package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateNumber is returned when a non-empty record number is
	// already taken by another record.
	ErrDuplicateNumber = errors.New("record number already exists")
)

type Service struct {
	records   Repository
	movements MovementRepository
}

func NewService(records Repository, movements MovementRepository) *Service {
	return &Service{records: records, movements: movements}
}

// Create registers a new chart. The name is normalized, the number reduced to
// digits, and non-empty numbers are checked for uniqueness before insert.
func (s *Service) Create(ctx context.Context, r *PatientRecord) error {
	r.PatientName = NormalizeName(r.PatientName)
	r.RecordNumber = NormalizeNumber(r.RecordNumber)
	r.Age = ClampAge(r.Age)

	if r.PatientName == "" {
		return fmt.Errorf("patient_name is required")
	}
	if strings.TrimSpace(r.CurrentLocation) == "" {
		return fmt.Errorf("current_location is required")
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
	if !validStatuses[r.Status] {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	if r.Sex == "" {
		r.Sex = SexOther
	}
	if !validSexes[r.Sex] {
		r.Sex = NormalizeSex(r.Sex)
	}

	if r.RecordNumber != "" {
		existing, err := s.records.FindByNumber(ctx, r.RecordNumber)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if existing != nil {
			return ErrDuplicateNumber
		}
	}

	return s.records.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PatientRecord, error) {
	return s.records.GetByID(ctx, id)
}

// FindByNumber resolves a record by its normalized number. Empty numbers
// never match anything.
func (s *Service) FindByNumber(ctx context.Context, number string) (*PatientRecord, error) {
	number = NormalizeNumber(number)
	if number == "" {
		return nil, ErrNotFound
	}
	return s.records.FindByNumber(ctx, number)
}

// FindByName resolves a record by exact normalized name.
func (s *Service) FindByName(ctx context.Context, name string) (*PatientRecord, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, ErrNotFound
	}
	return s.records.FindByName(ctx, name)
}

// Update rewrites record fields. Changing the number re-checks uniqueness.
func (s *Service) Update(ctx context.Context, r *PatientRecord) error {
	r.PatientName = NormalizeName(r.PatientName)
	r.RecordNumber = NormalizeNumber(r.RecordNumber)
	r.Age = ClampAge(r.Age)

	if r.PatientName == "" {
		return fmt.Errorf("patient_name is required")
	}
	if r.Status != "" && !validStatuses[r.Status] {
		return fmt.Errorf("invalid status: %s", r.Status)
	}

	if r.RecordNumber != "" {
		existing, err := s.records.FindByNumber(ctx, r.RecordNumber)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if existing != nil && existing.ID != r.ID {
			return ErrDuplicateNumber
		}
	}

	return s.records.Update(ctx, r)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.records.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*PatientRecord, int, error) {
	return s.records.Search(ctx, query, limit, offset)
}

// Move transfers a chart to destination and appends one ledger event.
// A move to the chart's current location is a no-op: no event is written and
// previous_location keeps pointing at where the chart truly came from, so a
// repeated import to the same destination cannot erase history.
// Returns true when a movement actually happened.
func (s *Service) Move(ctx context.Context, r *PatientRecord, destination, actor string, note *string) (bool, error) {
	if strings.TrimSpace(destination) == "" {
		return false, fmt.Errorf("destination is required")
	}
	if destination == r.CurrentLocation {
		return false, nil
	}

	event := &MovementEvent{
		RecordNumber: r.RecordNumber,
		PatientName:  r.PatientName,
		Age:          r.Age,
		Origin:       r.CurrentLocation,
		Destination:  destination,
		OccurredAt:   time.Now(),
		Actor:        actor,
		Note:         note,
	}
	if err := s.movements.Append(ctx, event); err != nil {
		return false, err
	}

	r.PreviousLocation = r.CurrentLocation
	r.CurrentLocation = destination
	r.LastMovementAt = event.OccurredAt
	if err := s.records.Update(ctx, r); err != nil {
		return false, err
	}
	return true, nil
}

// MoveByID loads the record and delegates to Move.
func (s *Service) MoveByID(ctx context.Context, id uuid.UUID, destination, actor string, note *string) (*PatientRecord, bool, error) {
	r, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	moved, err := s.Move(ctx, r, destination, actor, note)
	return r, moved, err
}

// CorrectLocation is the administrative override for operator mistakes. It
// rewrites current_location (or reverts it to previous_location when revert
// is set) and appends a compensating ledger event instead of editing history.
// previous_location is deliberately left untouched.
func (s *Service) CorrectLocation(ctx context.Context, id uuid.UUID, newLocation, actor string, revert bool) (*PatientRecord, error) {
	r, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	origin := r.CurrentLocation
	note := "manual correction"
	switch {
	case revert:
		if r.PreviousLocation != "" {
			r.CurrentLocation = r.PreviousLocation
		}
		note = "movement deleted, location reverted"
	default:
		if strings.TrimSpace(newLocation) == "" {
			return nil, fmt.Errorf("location is required")
		}
		r.CurrentLocation = newLocation
	}

	r.LastMovementAt = time.Now()
	if err := s.records.Update(ctx, r); err != nil {
		return nil, err
	}

	event := &MovementEvent{
		RecordNumber: r.RecordNumber,
		PatientName:  r.PatientName,
		Age:          r.Age,
		Origin:       origin,
		Destination:  r.CurrentLocation,
		OccurredAt:   r.LastMovementAt,
		Actor:        actor,
		Note:         &note,
	}
	if err := s.movements.Append(ctx, event); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) ListMovements(ctx context.Context, number string, limit, offset int) ([]*MovementEvent, int, error) {
	if number != "" {
		return s.movements.ListByRecordNumber(ctx, NormalizeNumber(number), limit, offset)
	}
	return s.movements.List(ctx, limit, offset)
}
