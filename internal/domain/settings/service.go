package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Setting keys.
const (
	keyDestinations      = "destinations"
	keyBulkImportEnabled = "bulk_import_enabled"
	keyRetentionDays     = "agenda_retention_days"
)

// Defaults hold the values served before an admin writes anything.
type Defaults struct {
	Destinations  []string
	BulkImport    bool
	RetentionDays int
}

// DefaultDestinations is the stock destination list of a Brazilian hospital
// archive; admins replace it to match their own departments.
var DefaultDestinations = []string{
	"Ambulatório", "Internação", "Faturamento", "Arquivo", "Recepção",
	"Autorização", "Estatística", "Auditoria", "Outros", "Arquivo Morto",
}

type Service struct {
	repo     Repository
	defaults Defaults
}

func NewService(repo Repository, defaults Defaults) *Service {
	if len(defaults.Destinations) == 0 {
		defaults.Destinations = DefaultDestinations
	}
	return &Service{repo: repo, defaults: defaults}
}

// Destinations returns the ordered destination list used by movement pickers
// and the import flow.
func (s *Service) Destinations(ctx context.Context) ([]string, error) {
	var out []string
	err := s.get(ctx, keyDestinations, &out)
	if errors.Is(err, ErrKeyNotFound) {
		return append([]string(nil), s.defaults.Destinations...), nil
	}
	return out, err
}

func (s *Service) SetDestinations(ctx context.Context, destinations []string) error {
	var cleaned []string
	seen := make(map[string]bool)
	for _, d := range destinations {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		cleaned = append(cleaned, d)
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("destinations cannot be empty")
	}
	return s.set(ctx, keyDestinations, cleaned)
}

// BulkImportAllowed gates the schedule import endpoints.
func (s *Service) BulkImportAllowed(ctx context.Context) (bool, error) {
	var enabled bool
	err := s.get(ctx, keyBulkImportEnabled, &enabled)
	if errors.Is(err, ErrKeyNotFound) {
		return s.defaults.BulkImport, nil
	}
	return enabled, err
}

func (s *Service) SetBulkImportEnabled(ctx context.Context, enabled bool) error {
	return s.set(ctx, keyBulkImportEnabled, enabled)
}

// RetentionDays returns how long processed batches are kept; zero keeps them
// forever.
func (s *Service) RetentionDays(ctx context.Context) (int, error) {
	var days int
	err := s.get(ctx, keyRetentionDays, &days)
	if errors.Is(err, ErrKeyNotFound) {
		return s.defaults.RetentionDays, nil
	}
	return days, err
}

func (s *Service) SetRetentionDays(ctx context.Context, days int) error {
	if days < 0 {
		return fmt.Errorf("retention days cannot be negative")
	}
	return s.set(ctx, keyRetentionDays, days)
}

func (s *Service) get(ctx context.Context, key string, out interface{}) error {
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("setting %s corrupt: %w", key, err)
	}
	return nil
}

func (s *Service) set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, key, raw)
}
