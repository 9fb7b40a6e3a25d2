package agenda

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNoScheduleFound is returned when the sheet opened fine but no
	// appointment rows were recovered from it.
	ErrNoScheduleFound = errors.New("no schedule found in workbook")
	// ErrBatchProcessed guards the one-way draft to processed transition.
	ErrBatchProcessed = errors.New("batch already processed")
)

type Service struct {
	batches            Repository
	engine             *Engine
	defaultDestination string
	log                zerolog.Logger
}

func NewService(batches Repository, engine *Engine, defaultDestination string, log zerolog.Logger) *Service {
	return &Service{batches: batches, engine: engine, defaultDestination: defaultDestination, log: log}
}

// Import decodes the workbook, parses it into draft batches and persists
// them all. Batches that look like duplicates of earlier imports are stored
// anyway; the reviewer decides what to keep.
func (s *Service) Import(ctx context.Context, r io.Reader, actor string) ([]*ScheduleBatch, error) {
	rows, err := DecodeWorkbook(r)
	if err != nil {
		return nil, err
	}

	batches := Parse(rows)
	if len(batches) == 0 {
		return nil, ErrNoScheduleFound
	}

	for _, b := range batches {
		b.ImportedBy = actor
		if err := s.batches.CreateBatch(ctx, b); err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Str("actor", actor).
		Int("batches", len(batches)).
		Msg("schedule imported")
	return batches, nil
}

// ImportRows parses an already-decoded grid. The CLI importer reads files it
// decodes itself; the HTTP handler goes through Import.
func (s *Service) ImportRows(ctx context.Context, rows [][]string, actor string) ([]*ScheduleBatch, error) {
	batches := Parse(rows)
	if len(batches) == 0 {
		return nil, ErrNoScheduleFound
	}
	for _, b := range batches {
		b.ImportedBy = actor
		if err := s.batches.CreateBatch(ctx, b); err != nil {
			return nil, err
		}
	}
	return batches, nil
}

func (s *Service) GetBatch(ctx context.Context, id uuid.UUID) (*ScheduleBatch, error) {
	return s.batches.GetBatch(ctx, id)
}

func (s *Service) ListBatches(ctx context.Context, status string, limit, offset int) ([]*ScheduleBatch, int, error) {
	return s.batches.ListBatches(ctx, status, limit, offset)
}

// UpdateItems saves the reviewer's edited item set back onto a draft batch.
// Every item is re-normalized; processed batches are immutable.
func (s *Service) UpdateItems(ctx context.Context, batchID uuid.UUID, items []*ScheduleItem) (*ScheduleBatch, error) {
	b, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusDraft {
		return nil, ErrBatchProcessed
	}

	for _, it := range items {
		NormalizeItem(it)
		it.Outcome = OutcomePending
	}
	if err := s.batches.UpdateItems(ctx, batchID, items); err != nil {
		return nil, err
	}
	return s.batches.GetBatch(ctx, batchID)
}

func (s *Service) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	return s.batches.DeleteBatch(ctx, id)
}

// Process runs reconciliation for a draft batch and freezes the result.
// Validation failures and pending confirmations surface before anything is
// written; once execution starts the batch always ends up processed, with
// per-item outcomes telling what happened.
func (s *Service) Process(ctx context.Context, batchID uuid.UUID, req ProcessRequest, actor string) (*Result, *ScheduleBatch, error) {
	b, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return nil, nil, err
	}
	if b.Status != StatusDraft {
		return nil, nil, ErrBatchProcessed
	}

	if req.Destination == "" {
		req.Destination = s.defaultDestination
	}
	res, err := s.engine.Process(ctx, b, b.Items, req, actor)
	if err != nil {
		return nil, nil, err
	}

	if err := s.batches.MarkProcessed(ctx, b); err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Str("actor", actor).
		Str("batch_id", batchID.String()).
		Int("created", res.Created).
		Int("moved", res.Moved).
		Int("errored", res.Errored).
		Int("ignored", res.Ignored).
		Msg("schedule batch processed")
	return res, b, nil
}

// CleanupProcessed drops processed batches older than the retention window.
// A zero or negative retention keeps everything. Drafts are never touched.
func (s *Service) CleanupProcessed(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	n, err := s.batches.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("expired processed batches removed")
	}
	return n, nil
}
