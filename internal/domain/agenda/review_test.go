package agenda

import "testing"

func TestNormalizeItem(t *testing.T) {
	it := &ScheduleItem{
		RecordNumber: "nº 12.34",
		PatientName:  "  maria  da silva ",
		Age:          -1,
		Sex:          "fem",
	}
	NormalizeItem(it)
	if it.RecordNumber != "1234" {
		t.Errorf("RecordNumber = %q", it.RecordNumber)
	}
	if it.PatientName != "MARIA  DA SILVA" {
		t.Errorf("PatientName = %q", it.PatientName)
	}
	if it.Age != 0 {
		t.Errorf("Age = %d", it.Age)
	}
	if it.Sex != "F" {
		t.Errorf("Sex = %q", it.Sex)
	}
}

func TestSetSelectAll(t *testing.T) {
	items := []*ScheduleItem{{Selected: true}, {Selected: false}, {Selected: true}}
	SetSelectAll(items, false)
	for i, it := range items {
		if it.Selected {
			t.Errorf("item %d still selected", i)
		}
	}
	SetSelectAll(items, true)
	for i, it := range items {
		if !it.Selected {
			t.Errorf("item %d not selected", i)
		}
	}
}
