package record

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Record status values.
const (
	StatusActive      = "active"
	StatusDeactivated = "deactivated"
	StatusLost        = "lost"
)

// Sex values.
const (
	SexMale   = "M"
	SexFemale = "F"
	SexOther  = "O"
)

// PatientRecord maps to the patient_record table. One row per physical chart;
// the pair (current_location, previous_location) plus the movement ledger is
// the whole point of the system.
type PatientRecord struct {
	ID               uuid.UUID `db:"id" json:"id"`
	RecordNumber     string    `db:"record_number" json:"record_number"`
	PatientName      string    `db:"patient_name" json:"patient_name"`
	Age              int       `db:"age" json:"age"`
	Sex              string    `db:"sex" json:"sex"`
	BirthDate        string    `db:"birth_date" json:"birth_date"`
	Status           string    `db:"status" json:"status"`
	CurrentLocation  string    `db:"current_location" json:"current_location"`
	PreviousLocation string    `db:"previous_location" json:"previous_location"`
	LastMovementAt   time.Time `db:"last_movement_at" json:"last_movement_at"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// MovementEvent maps to the movement_event table. Append-only; corrections
// write a new compensating event instead of editing history.
type MovementEvent struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RecordNumber string    `db:"record_number" json:"record_number"`
	PatientName  string    `db:"patient_name" json:"patient_name"`
	Age          int       `db:"age" json:"age"`
	Origin       string    `db:"origin" json:"origin"`
	Destination  string    `db:"destination" json:"destination"`
	OccurredAt   time.Time `db:"occurred_at" json:"occurred_at"`
	Actor        string    `db:"actor" json:"actor"`
	Note         *string   `db:"note" json:"note,omitempty"`
}

var validStatuses = map[string]bool{
	StatusActive: true, StatusDeactivated: true, StatusLost: true,
}

var validSexes = map[string]bool{
	SexMale: true, SexFemale: true, SexOther: true,
}

// NormalizeName upper-cases a patient name and strips everything that is not
// a letter or a space. Diacritics are preserved, not folded.
func NormalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeNumber keeps only the digits of a record number.
func NormalizeNumber(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeSex maps free-form sex markers to M/F/O. Partial matches such as
// "masc" or "feminino" are accepted.
func NormalizeSex(s string) string {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case v == SexMale || strings.HasPrefix(v, "MASC") || strings.HasPrefix(v, "MALE"):
		return SexMale
	case v == SexFemale || strings.HasPrefix(v, "FEM"):
		return SexFemale
	default:
		return SexOther
	}
}

// ClampAge coerces an age to a non-negative integer.
func ClampAge(age int) int {
	if age < 0 {
		return 0
	}
	return age
}
