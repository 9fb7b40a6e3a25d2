package agenda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/charttrack/charttrack/internal/domain/record"
)

var (
	// ErrNoItemsSelected rejects a processing run with nothing selected.
	ErrNoItemsSelected = errors.New("no items selected")
	// ErrUnidentifiedItems rejects the whole run when any selected item has
	// neither a name nor a record number. There is nothing safe to do with
	// such an item, and skipping it silently would hide data loss.
	ErrUnidentifiedItems = errors.New("selected item has neither name nor record number")
)

// Confirmation reasons carried by ConfirmationRequired.
const (
	ConfirmCreateByName = "create_by_name"
	ConfirmConflicts    = "conflicts"
)

// PlaceholderPatientName fills in for rows that carry a record number but no
// legible patient name. The record is still created and moved; the name can
// be fixed later from the record screen.
const PlaceholderPatientName = "PACIENTE SEM NOME"

// ConfirmationRequired is returned before any mutation when the run needs an
// explicit human acknowledgment: creating records identified only by name, or
// moving charts that already sit outside the intake location. Declining
// leaves the store untouched.
type ConfirmationRequired struct {
	Reason string          `json:"reason"`
	Items  []*ScheduleItem `json:"items"`
}

func (e *ConfirmationRequired) Error() string {
	return fmt.Sprintf("confirmation required: %s (%d items)", e.Reason, len(e.Items))
}

// ProcessRequest carries the caller's processing decision: the target
// destination and the acknowledgments already given.
type ProcessRequest struct {
	Destination     string `json:"destination"`
	AckCreateByName bool   `json:"ack_create_by_name"`
	AckConflicts    bool   `json:"ack_conflicts"`
}

// Result summarizes one processing run. Per-item outcomes live on the items
// themselves.
type Result struct {
	Created int `json:"created"`
	Moved   int `json:"moved"`
	Errored int `json:"errored"`
	Ignored int `json:"ignored"`
}

// Engine reconciles reviewed schedule items against the record store.
type Engine struct {
	records *record.Service
	intake  string
	log     zerolog.Logger
}

func NewEngine(records *record.Service, intakeLocation string, log zerolog.Logger) *Engine {
	return &Engine{records: records, intake: intakeLocation, log: log}
}

// Process validates the selected items, collects the acknowledgments the run
// needs, and then executes create-or-move once per item. Validation is
// all-or-nothing; execution is fire-and-continue, one item's failure never
// blocks its siblings. Items are mutated in place with their outcome.
func (e *Engine) Process(ctx context.Context, batch *ScheduleBatch, items []*ScheduleItem, req ProcessRequest, actor string) (*Result, error) {
	var selected []*ScheduleItem
	for _, it := range items {
		if it.Selected {
			selected = append(selected, it)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoItemsSelected
	}

	var byNameOnly []*ScheduleItem
	for _, it := range selected {
		if it.PatientName == "" && it.RecordNumber == "" {
			return nil, ErrUnidentifiedItems
		}
		if it.RecordNumber == "" {
			byNameOnly = append(byNameOnly, it)
		}
	}
	if len(byNameOnly) > 0 && !req.AckCreateByName {
		return nil, &ConfirmationRequired{Reason: ConfirmCreateByName, Items: byNameOnly}
	}

	conflicts, err := e.findConflicts(ctx, selected)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 && !req.AckConflicts {
		return nil, &ConfirmationRequired{Reason: ConfirmConflicts, Items: conflicts}
	}

	return e.execute(ctx, batch, items, req.Destination, actor), nil
}

// findConflicts flags selected items whose record already sits outside the
// intake location: the chart appears to be elsewhere, so moving it off a
// schedule import deserves a second look.
func (e *Engine) findConflicts(ctx context.Context, selected []*ScheduleItem) ([]*ScheduleItem, error) {
	var conflicts []*ScheduleItem
	for _, it := range selected {
		if it.RecordNumber == "" {
			continue
		}
		rec, err := e.records.FindByNumber(ctx, it.RecordNumber)
		if errors.Is(err, record.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec.CurrentLocation != e.intake {
			conflicts = append(conflicts, it)
		}
	}
	return conflicts, nil
}

func (e *Engine) execute(ctx context.Context, batch *ScheduleBatch, items []*ScheduleItem, destination, actor string) *Result {
	note := fmt.Sprintf("Agenda %s (%s)", batch.ProviderName, batch.ScheduleDate)
	res := &Result{}

	for _, it := range items {
		if !it.Selected {
			it.Outcome = OutcomeIgnored
			res.Ignored++
			continue
		}

		rec, err := e.resolve(ctx, it)
		if err != nil {
			e.itemError(it, res, "resolve", err)
			continue
		}

		created := false
		if rec == nil {
			name := it.PatientName
			if name == "" {
				name = PlaceholderPatientName
			}
			rec = &record.PatientRecord{
				RecordNumber:    it.RecordNumber,
				PatientName:     name,
				Age:             it.Age,
				Sex:             it.Sex,
				BirthDate:       fmt.Sprintf("00/00/%04d", time.Now().Year()-it.Age),
				CurrentLocation: e.intake,
			}
			if err := e.records.Create(ctx, rec); err != nil {
				e.itemError(it, res, "create", err)
				continue
			}
			created = true
			res.Created++
		}

		if _, err := e.records.Move(ctx, rec, destination, actor, &note); err != nil {
			e.itemError(it, res, "move", err)
			continue
		}

		if created {
			it.Outcome = OutcomeCreatedAndMoved
		} else {
			it.Outcome = OutcomeMoved
		}
		res.Moved++
	}
	return res
}

// resolve finds the existing record for an item: by number when present, by
// exact normalized name otherwise. A miss is not an error; it means create.
func (e *Engine) resolve(ctx context.Context, it *ScheduleItem) (*record.PatientRecord, error) {
	if it.RecordNumber != "" {
		rec, err := e.records.FindByNumber(ctx, it.RecordNumber)
		if errors.Is(err, record.ErrNotFound) {
			return nil, nil
		}
		return rec, err
	}
	rec, err := e.records.FindByName(ctx, it.PatientName)
	if errors.Is(err, record.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

func (e *Engine) itemError(it *ScheduleItem, res *Result, stage string, err error) {
	e.log.Warn().
		Err(err).
		Str("stage", stage).
		Str("patient_name", it.PatientName).
		Str("record_number", it.RecordNumber).
		Msg("schedule item failed")
	it.Outcome = OutcomeError
	res.Errored++
}
