package agenda

import "github.com/charttrack/charttrack/internal/domain/record"

// NormalizeItem re-applies field normalization after a manual edit: number to
// digits, name to upper-cased letters and spaces, age clamped, sex to M/F/O.
func NormalizeItem(it *ScheduleItem) {
	it.RecordNumber = record.NormalizeNumber(it.RecordNumber)
	it.PatientName = record.NormalizeName(it.PatientName)
	it.Age = record.ClampAge(it.Age)
	it.Sex = record.NormalizeSex(it.Sex)
}

// SetSelectAll flips every item's selection to the same value.
func SetSelectAll(items []*ScheduleItem, selected bool) {
	for _, it := range items {
		it.Selected = selected
	}
}
