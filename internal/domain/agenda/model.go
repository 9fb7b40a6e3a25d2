package agenda

import (
	"time"

	"github.com/google/uuid"
)

// Batch status values. A batch is written as draft and flips to processed
// exactly once; it never goes back.
const (
	StatusDraft     = "draft"
	StatusProcessed = "processed"
)

// Per-item outcome tags.
const (
	OutcomePending         = "pending"
	OutcomeMoved           = "moved"
	OutcomeCreatedAndMoved = "createdAndMoved"
	OutcomeError           = "error"
	OutcomeIgnored         = "ignored"
)

// ScheduleBatch is one imported provider-day schedule.
type ScheduleBatch struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	ImportedAt   time.Time       `db:"imported_at" json:"imported_at"`
	ScheduleDate string          `db:"schedule_date" json:"schedule_date"`
	ImportedBy   string          `db:"imported_by" json:"imported_by"`
	ProviderName string          `db:"provider_name" json:"provider_name"`
	Specialty    string          `db:"specialty" json:"specialty"`
	TotalItems   int             `db:"total_items" json:"total_items"`
	Status       string          `db:"status" json:"status"`
	Items        []*ScheduleItem `db:"-" json:"items,omitempty"`
}

// ScheduleItem is one appointment row recovered from the sheet.
type ScheduleItem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	BatchID      uuid.UUID `db:"batch_id" json:"batch_id"`
	RecordNumber string    `db:"record_number" json:"record_number"`
	PatientName  string    `db:"patient_name" json:"patient_name"`
	Age          int       `db:"age" json:"age"`
	Sex          string    `db:"sex" json:"sex"`
	TimeSlot     string    `db:"time_slot" json:"time_slot"`
	ProviderName string    `db:"provider_name" json:"provider_name"`
	Specialty    string    `db:"specialty" json:"specialty"`
	Selected     bool      `db:"selected" json:"selected"`
	Outcome      string    `db:"outcome" json:"outcome"`
	Position     int       `db:"position" json:"position"`
}
