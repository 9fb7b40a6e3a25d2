package agenda

import (
	"reflect"
	"testing"

	"github.com/charttrack/charttrack/internal/domain/record"
)

func sampleSheet() [][]string {
	return [][]string{
		{"AGENDA DO DIA"},
		{"", "HORA", "PACIENTE", "IDADE", "SEXO"},
		{"PROFISSIONAL: DRA. HELENA COSTA"},
		{"ESPECIALIDADE: CARDIOLOGIA"},
		{"DATA AGENDA: 12/08/2026"},
		{"", "08:00", "MARIA DA SILVA", "42 anos", "F", "PRONTUÁRIO: 1001"},
		{"", "08:30", "JOSE SANTOS", "2 meses", "M"},
		{"", "09:00", "BLOQUEADO", "", ""},
		{"PROFISSIONAL: DR. PAULO LIMA"},
		{"ESPECIALIDADE: ORTOPEDIA"},
		{"", "10:00", "ANA PEREIRA", "15 anos", "F", "PRONT: 2002"},
	}
}

func TestParse_RecoversBatches(t *testing.T) {
	batches := Parse(sampleSheet())
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}

	first := batches[0]
	if first.ProviderName != "DRA. HELENA COSTA" {
		t.Errorf("provider = %q", first.ProviderName)
	}
	if first.Specialty != "CARDIOLOGIA" {
		t.Errorf("specialty = %q", first.Specialty)
	}
	if first.ScheduleDate != "12/08/2026" {
		t.Errorf("date = %q", first.ScheduleDate)
	}
	if first.Status != StatusDraft {
		t.Errorf("status = %q", first.Status)
	}
	if first.TotalItems != 2 || len(first.Items) != 2 {
		t.Fatalf("items = %d/%d, want 2", first.TotalItems, len(first.Items))
	}

	maria := first.Items[0]
	if maria.PatientName != "MARIA DA SILVA" || maria.RecordNumber != "1001" {
		t.Errorf("item = %+v", maria)
	}
	if maria.Age != 42 || maria.Sex != record.SexFemale || maria.TimeSlot != "08:00" {
		t.Errorf("item = %+v", maria)
	}
	if !maria.Selected || maria.Outcome != OutcomePending {
		t.Errorf("item = %+v", maria)
	}

	second := batches[1]
	if second.ProviderName != "DR. PAULO LIMA" || second.Specialty != "ORTOPEDIA" {
		t.Errorf("second batch = %+v", second)
	}
	// provider flush resets the date; the second block never declared one
	if second.ScheduleDate != "" {
		t.Errorf("second date = %q, want empty", second.ScheduleDate)
	}
}

func TestParse_NeverFailsOnGarbage(t *testing.T) {
	inputs := [][][]string{
		nil,
		{},
		{{}},
		{{"", "", ""}},
		{{"random text"}, {"more", "noise", "here"}, {"999"}},
	}
	for _, rows := range inputs {
		if got := Parse(rows); len(got) != 0 {
			t.Errorf("Parse(%v) = %d batches, want 0", rows, len(got))
		}
	}
}

func TestParse_IsDeterministic(t *testing.T) {
	a := Parse(sampleSheet())
	b := Parse(sampleSheet())
	if !reflect.DeepEqual(a, b) {
		t.Error("identical input produced different batches")
	}
}

func TestParse_NoiseRowsDropped(t *testing.T) {
	for _, word := range []string{"AGENDAMENTO", "ALTA", "RETORNO", "FALTOU", "RESERVADO", "BLOQUEADO", "TELECONSULTA"} {
		rows := [][]string{
			{"PROFISSIONAL: DR. X"},
			{"", "08:00", word + " QUALQUER"},
			{"", "09:00", "MARIA SILVA"},
		}
		batches := Parse(rows)
		if len(batches) != 1 || len(batches[0].Items) != 1 {
			t.Fatalf("%s: unexpected batches %+v", word, batches)
		}
		if batches[0].Items[0].PatientName != "MARIA SILVA" {
			t.Errorf("%s: kept wrong item %+v", word, batches[0].Items[0])
		}
	}
}

func TestParse_RecordNumberLookahead(t *testing.T) {
	// number on row+2
	rows := [][]string{
		{"", "08:00", "MARIA SILVA"},
		{"continuation"},
		{"PRONTUÁRIO: 333"},
	}
	batches := Parse(rows)
	if len(batches) != 1 || batches[0].Items[0].RecordNumber != "333" {
		t.Fatalf("row+2 lookahead failed: %+v", batches)
	}

	// number on row+3 must not be seen
	rows = [][]string{
		{"", "08:00", "MARIA SILVA"},
		{"continuation"},
		{"continuation"},
		{"PRONTUÁRIO: 444"},
	}
	batches = Parse(rows)
	if got := batches[0].Items[0].RecordNumber; got != "" {
		t.Errorf("number = %q, want empty (row+3 is out of reach)", got)
	}

	// first match wins over later rows
	rows = [][]string{
		{"", "08:00", "MARIA SILVA", "PRONT: 111"},
		{"PRONTUÁRIO: 222"},
	}
	batches = Parse(rows)
	if got := batches[0].Items[0].RecordNumber; got != "111" {
		t.Errorf("number = %q, want 111", got)
	}
}

func TestParse_RecordNumberLabels(t *testing.T) {
	labels := map[string]string{
		"PRONTUÁRIO: 10": "10",
		"PRONTUARIO 11":  "11",
		"PRONT. 12":      "12",
		"CÓDIGO: 13":     "13",
		"MATRÍCULA: 14":  "14",
		"RECORD: 15":     "15",
	}
	for label, want := range labels {
		rows := [][]string{{"", "08:00", "MARIA SILVA", label}}
		batches := Parse(rows)
		if len(batches) != 1 {
			t.Fatalf("%s: no batch", label)
		}
		if got := batches[0].Items[0].RecordNumber; got != want {
			t.Errorf("%s: number = %q, want %q", label, got, want)
		}
	}
}

func TestExtractAge(t *testing.T) {
	tests := []struct {
		row  []string
		want int
	}{
		{[]string{"08:00", "MARIA", "15 anos"}, 15},
		{[]string{"08:00", "MARIA", "2 meses"}, 0},
		{[]string{"08:00", "MARIA", "20 dias"}, 0},
		{[]string{"08:00", "MARIA", "1 ano"}, 1},
		{[]string{"08:00", "MARIA", "3 years"}, 3},
		{[]string{"08:00", "MARIA", "rabisco"}, 0},
		{[]string{"08:00", "MARIA"}, 0},
	}
	for _, tt := range tests {
		if got := extractAge(tt.row); got != tt.want {
			t.Errorf("extractAge(%v) = %d, want %d", tt.row, got, tt.want)
		}
	}
}

func TestParse_SexColumn(t *testing.T) {
	rows := [][]string{
		{"", "HORA", "PACIENTE", "SEXO"},
		{"", "08:00", "MARIA SILVA", "feminino"},
		{"", "08:30", "JOSE SANTOS", "masc"},
		{"", "09:00", "ALEX COSTA", ""},
	}
	batches := Parse(rows)
	if len(batches) != 1 || len(batches[0].Items) != 3 {
		t.Fatalf("batches = %+v", batches)
	}
	got := []string{batches[0].Items[0].Sex, batches[0].Items[1].Sex, batches[0].Items[2].Sex}
	want := []string{record.SexFemale, record.SexMale, record.SexOther}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sexes = %v, want %v", got, want)
	}
}

func TestFindSexColumn(t *testing.T) {
	rows := [][]string{
		{"", "SEXO", ""},
		{"", "", "GÊNERO"},
	}
	// last header wins
	if got := findSexColumn(rows); got != 2 {
		t.Errorf("findSexColumn = %d, want 2", got)
	}

	deep := make([][]string, 25)
	for i := range deep {
		deep[i] = []string{""}
	}
	deep[24] = []string{"SEXO"}
	// headers past the scan window are ignored
	if got := findSexColumn(deep); got != -1 {
		t.Errorf("findSexColumn = %d, want -1", got)
	}
}

func TestParse_NameHeuristics(t *testing.T) {
	rows := [][]string{
		{"", "08:00", "123", "AB", "AGENDA X", "MARIA DA SILVA"},
	}
	batches := Parse(rows)
	if len(batches) != 1 || len(batches[0].Items) != 1 {
		t.Fatalf("batches = %+v", batches)
	}
	if got := batches[0].Items[0].PatientName; got != "MARIA DA SILVA" {
		t.Errorf("name = %q", got)
	}

	// a time row with no plausible name yields no item
	rows = [][]string{{"", "08:00", "123", "9.5"}}
	if batches := Parse(rows); len(batches) != 0 {
		t.Errorf("expected no batches, got %+v", batches)
	}
}

func TestParse_SpecialtyFirstMatchWins(t *testing.T) {
	rows := [][]string{
		{"PROFISSIONAL: DR. X"},
		{"ESPECIALIDADE: CARDIOLOGIA"},
		{"ESPECIALIDADE: ORTOPEDIA"},
		{"", "08:00", "MARIA SILVA"},
	}
	batches := Parse(rows)
	if got := batches[0].Specialty; got != "CARDIOLOGIA" {
		t.Errorf("specialty = %q, want CARDIOLOGIA", got)
	}
}

func TestParse_DuplicateProviderDateKeptSeparate(t *testing.T) {
	rows := [][]string{
		{"PROFISSIONAL: DR. X"},
		{"DATA AGENDA: 01/02/2026"},
		{"", "08:00", "MARIA SILVA"},
		{"PROFISSIONAL: DR. X"},
		{"DATA AGENDA: 01/02/2026"},
		{"", "09:00", "JOSE SANTOS"},
	}
	batches := Parse(rows)
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2 independent drafts", len(batches))
	}
	if batches[0].ProviderName != batches[1].ProviderName || batches[0].ScheduleDate != batches[1].ScheduleDate {
		t.Errorf("expected duplicate provider/date batches, got %+v and %+v", batches[0], batches[1])
	}
}

func TestParse_FirstDateMarkerWins(t *testing.T) {
	rows := [][]string{
		{"PROFISSIONAL: DR. X"},
		{"DATA AGENDA: 01/02/2026"},
		{"DATA AGENDA: 15/02/2026"},
		{"", "08:00", "MARIA SILVA"},
	}
	batches := Parse(rows)
	if got := batches[0].ScheduleDate; got != "01/02/2026" {
		t.Errorf("date = %q, want 01/02/2026", got)
	}
}

func TestParse_CombinedHeaderRow(t *testing.T) {
	rows := [][]string{
		{"PROFISSIONAL: DR. HENRIQUE LIMA  ESPECIALIDADE: CARDIOLOGIA  DATA DA AGENDA: 05/03/2026"},
		{"", "08:00", "CARLOS EDUARDO MOTA", "PRONTUÁRIO: 42"},
	}
	batches := Parse(rows)
	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(batches))
	}
	b := batches[0]
	if b.ProviderName != "DR. HENRIQUE LIMA" {
		t.Errorf("provider = %q", b.ProviderName)
	}
	if b.Specialty != "CARDIOLOGIA" {
		t.Errorf("specialty = %q", b.Specialty)
	}
	if b.ScheduleDate != "05/03/2026" {
		t.Errorf("date = %q", b.ScheduleDate)
	}
	if len(b.Items) != 1 || b.Items[0].RecordNumber != "42" {
		t.Errorf("items = %+v", b.Items)
	}
}

func TestParse_DefaultsForMissingMarkers(t *testing.T) {
	rows := [][]string{
		{"", "08:00", "MARIA SILVA"},
	}
	batches := Parse(rows)
	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(batches))
	}
	b := batches[0]
	if b.ProviderName != UnknownProvider || b.Specialty != DefaultSpecialty {
		t.Errorf("batch = %q / %q, want %q / %q", b.ProviderName, b.Specialty, UnknownProvider, DefaultSpecialty)
	}
	if it := b.Items[0]; it.ProviderName != UnknownProvider || it.Specialty != DefaultSpecialty {
		t.Errorf("item = %q / %q, want defaults carried onto items", it.ProviderName, it.Specialty)
	}
}

func TestParse_DashedDateNormalized(t *testing.T) {
	rows := [][]string{
		{"DATA AGENDA: 01-02-2026"},
		{"", "08:00", "MARIA SILVA"},
	}
	batches := Parse(rows)
	if got := batches[0].ScheduleDate; got != "01/02/2026" {
		t.Errorf("date = %q, want 01/02/2026", got)
	}
}
