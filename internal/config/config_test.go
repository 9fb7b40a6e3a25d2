package config

import "testing"

func TestValidate_DevWithoutIssuer(t *testing.T) {
	cfg := &Config{
		Env:                "development",
		IntakeLocation:     "Arquivo",
		DefaultDestination: "Ambulatório",
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("dev mode should not require AUTH_ISSUER: %v", err)
	}
}

func TestValidate_ProductionRequiresIssuer(t *testing.T) {
	cfg := &Config{
		Env:                "production",
		IntakeLocation:     "Arquivo",
		DefaultDestination: "Ambulatório",
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when AUTH_ISSUER missing in production")
	}

	cfg.AuthIssuer = "https://auth.example.com"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_IntakeLocationRequired(t *testing.T) {
	cfg := &Config{
		Env:                "development",
		IntakeLocation:     "   ",
		DefaultDestination: "Ambulatório",
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for blank INTAKE_LOCATION")
	}
}

func TestValidate_RetentionDaysNonNegative(t *testing.T) {
	cfg := &Config{
		Env:                 "development",
		IntakeLocation:      "Arquivo",
		DefaultDestination:  "Ambulatório",
		AgendaRetentionDays: -1,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative AGENDA_RETENTION_DAYS")
	}
}
