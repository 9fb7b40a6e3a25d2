package agenda

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charttrack/charttrack/internal/domain/record"
)

// Extraction vocabulary. Scheduling systems in the wild label these fields in
// Portuguese or English, so both spellings are accepted.
var (
	timeRe      = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)
	providerRe  = regexp.MustCompile(`(?:PROFISSIONAL|M[ÉE]DICO|DOCTOR|DR\.)\s*[:.]?\s*(.*)`)
	specialtyRe = regexp.MustCompile(`(?:ESPECIALIDADE|SPECIALTY)\s*[:.]?\s*(\S.*)`)
	dateRe      = regexp.MustCompile(`(?:DATA\s+(?:DA\s+)?AGENDA|SCHEDULE\s+DATE)\s*:?\s*(\d{2}[-/]\d{2}[-/]\d{4})`)
	numberRe    = regexp.MustCompile(`(?:PRONTU[ÁA]RIO|PRONT|C[ÓO]DIGO|MATR[ÍI]CULA|RECORD|CHART)\s*[:.]?\s*(\d+)`)
	sexHeadRe   = regexp.MustCompile(`^(?:SEXO|G[ÊE]NERO|SEX|GENDER)$`)
	ageYearsRe  = regexp.MustCompile(`(\d+)\s*(?:ANOS?|YEARS?|YRS?)`)
	ageSubRe    = regexp.MustCompile(`\d+\s*(?:M[ÊE]S(?:ES)?|DIAS?|MONTHS?|DAYS?)`)
	// markerTailRe trims a second marker sharing the same header row from a
	// captured value.
	markerTailRe = regexp.MustCompile(`\s*[-–]*\s*(?:ESPECIALIDADE|SPECIALTY|DATA\s+(?:DA\s+)?AGENDA|SCHEDULE\s+DATE)\b.*$`)
)

// Substitutes for sheets that never name their provider or specialty.
const (
	UnknownProvider  = "Médico Desconhecido"
	DefaultSpecialty = "Geral"
)

// Rows whose extracted name contains one of these are scheduler noise
// (cancellations, blocked slots, telehealth placeholders), not patients.
var noiseKeywords = []string{
	"AGENDAMENTO", "ALTA", "RETORNO", "FALTOU",
	"RESERVADO", "BLOQUEADO", "TELECONSULTA",
}

// sexHeaderScanRows bounds the header scan for the sex column.
const sexHeaderScanRows = 20

// parser is the accumulator threaded through the row walk: the provider,
// specialty and date context in effect for the rows below, the items of the
// in-progress batch, and the batches flushed so far.
type parser struct {
	rows      [][]string
	sexCol    int
	provider  string
	specialty string
	date      string
	items     []*ScheduleItem
	batches   []*ScheduleBatch
}

// markerRules are all evaluated against every row, in order, so a combined
// header such as "PROFISSIONAL: DR X  DATA DA AGENDA: 01/02/2026" contributes
// every fact it carries. A row that matched any marker is never read as an
// appointment.
var markerRules = []struct {
	name  string
	apply func(p *parser, text string) bool
}{
	{"provider", (*parser).applyProvider},
	{"specialty", (*parser).applySpecialty},
	{"date", (*parser).applyDate},
}

// Parse recovers schedule batches from a raw cell grid. It is deterministic,
// never fails, and returns zero batches when no appointment rows are found.
// Batches for a provider/date pair already imported are produced again as
// independent entries; de-duplication is a reviewer decision, not ours.
func Parse(rows [][]string) []*ScheduleBatch {
	p := &parser{rows: rows, sexCol: findSexColumn(rows)}
	for i, row := range rows {
		text := strings.ToUpper(strings.TrimSpace(strings.Join(row, " ")))
		if text == "" {
			continue
		}
		marker := false
		for _, rule := range markerRules {
			if rule.apply(p, text) {
				marker = true
			}
		}
		if !marker {
			p.applyAppointment(i, row)
		}
	}
	p.flush()
	return p.batches
}

// applyProvider flushes the in-progress batch and starts a new provider
// block. Specialty and date reset with the provider; they belong to the block
// they were read in. A specialty or date sharing the header row is picked up
// by the rules that follow.
func (p *parser) applyProvider(text string) bool {
	m := providerRe.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	p.flush()
	p.provider = strings.TrimSpace(markerTailRe.ReplaceAllString(m[1], ""))
	p.specialty = ""
	p.date = ""
	return true
}

// applySpecialty keeps the first non-empty specialty seen in the current
// provider block.
func (p *parser) applySpecialty(text string) bool {
	m := specialtyRe.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	if p.specialty == "" {
		p.specialty = strings.TrimSpace(markerTailRe.ReplaceAllString(m[1], ""))
	}
	return true
}

// applyDate keeps the first date declared in the current provider block.
func (p *parser) applyDate(text string) bool {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	if p.date == "" {
		p.date = strings.ReplaceAll(m[1], "-", "/")
	}
	return true
}

// applyAppointment treats any row holding a time token as an appointment.
// Rows with no plausible patient name, or a name made of scheduler noise,
// are dropped silently.
func (p *parser) applyAppointment(idx int, row []string) {
	timeIdx := -1
	for j, cell := range row {
		if timeRe.MatchString(strings.TrimSpace(cell)) {
			timeIdx = j
			break
		}
	}
	if timeIdx < 0 {
		return
	}

	name := extractName(row, timeIdx)
	if name == "" || isNoise(name) {
		return
	}

	item := &ScheduleItem{
		RecordNumber: extractNumber(p.rows, idx),
		PatientName:  record.NormalizeName(name),
		Age:          extractAge(row),
		Sex:          extractSex(row, p.sexCol),
		TimeSlot:     strings.TrimSpace(row[timeIdx]),
		ProviderName: p.provider,
		Specialty:    p.specialty,
		Selected:     true,
		Outcome:      OutcomePending,
		Position:     len(p.items),
	}
	p.items = append(p.items, item)
}

func (p *parser) flush() {
	if len(p.items) == 0 {
		return
	}
	provider := p.provider
	if provider == "" {
		provider = UnknownProvider
	}
	specialty := p.specialty
	if specialty == "" {
		specialty = DefaultSpecialty
	}
	for _, it := range p.items {
		if it.ProviderName == "" {
			it.ProviderName = provider
		}
		if it.Specialty == "" {
			it.Specialty = specialty
		}
	}
	p.batches = append(p.batches, &ScheduleBatch{
		ScheduleDate: p.date,
		ProviderName: provider,
		Specialty:    specialty,
		TotalItems:   len(p.items),
		Status:       StatusDraft,
		Items:        p.items,
	})
	p.items = nil
}

// findSexColumn scans the leading rows for a sex/gender header and remembers
// its column for the whole sheet. The last header found wins, matching sheets
// that repeat their header block.
func findSexColumn(rows [][]string) int {
	col := -1
	for i := 0; i < len(rows) && i < sexHeaderScanRows; i++ {
		for j, cell := range rows[i] {
			if sexHeadRe.MatchString(strings.ToUpper(strings.TrimSpace(cell))) {
				col = j
			}
		}
	}
	return col
}

// extractName picks the first cell after the time slot that reads like a
// person: longer than three characters, not a number, not a header leftover.
func extractName(row []string, timeIdx int) string {
	for _, cell := range row[timeIdx+1:] {
		c := strings.TrimSpace(cell)
		if utf8.RuneCountInString(c) <= 3 {
			continue
		}
		if _, err := strconv.ParseFloat(strings.ReplaceAll(c, ",", "."), 64); err == nil {
			continue
		}
		if strings.Contains(strings.ToUpper(c), "AGENDA") {
			continue
		}
		return c
	}
	return ""
}

func isNoise(name string) bool {
	uc := strings.ToUpper(name)
	for _, kw := range noiseKeywords {
		if strings.Contains(uc, kw) {
			return true
		}
	}
	return false
}

// extractNumber looks for a labeled record number on the row itself, then on
// the next row, then the one after that. Sheets often wrap the number onto a
// continuation line; the first match wins and nothing past row+2 is read.
func extractNumber(rows [][]string, idx int) string {
	for k := idx; k < idx+3 && k < len(rows); k++ {
		text := strings.ToUpper(strings.Join(rows[k], " "))
		if m := numberRe.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// extractAge scans the row for an age with a unit word. Ages in months or
// days collapse to zero; sub-year precision is not tracked.
func extractAge(row []string) int {
	for _, cell := range row {
		uc := strings.ToUpper(cell)
		if m := ageYearsRe.FindStringSubmatch(uc); m != nil {
			n, _ := strconv.Atoi(m[1])
			return record.ClampAge(n)
		}
		if ageSubRe.MatchString(uc) {
			return 0
		}
	}
	return 0
}

func extractSex(row []string, sexCol int) string {
	if sexCol < 0 || sexCol >= len(row) {
		return record.SexOther
	}
	return record.NormalizeSex(row[sexCol])
}
