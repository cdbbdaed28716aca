package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MATCH_TOLERANCE", "")
	t.Setenv("CAMERA_READ_TIMEOUT_MS", "")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Port)
	}
	if cfg.MatchTolerance != 0.6 {
		t.Errorf("Expected default tolerance 0.6, got %v", cfg.MatchTolerance)
	}
	if cfg.CameraReadTimeout != 2*time.Second {
		t.Errorf("Expected default read timeout 2s, got %v", cfg.CameraReadTimeout)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MATCH_TOLERANCE", "0.45")
	t.Setenv("CYCLE_INTERVAL_MS", "0")
	t.Setenv("LEDGER_BACKEND", "sqlite")
	t.Setenv("SPEECH_COMMAND", "")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Port)
	}
	if cfg.MatchTolerance != 0.45 {
		t.Errorf("Expected tolerance 0.45, got %v", cfg.MatchTolerance)
	}
	if cfg.CycleInterval != 0 {
		t.Errorf("Expected zero cycle interval, got %v", cfg.CycleInterval)
	}
	if cfg.LedgerBackend != "sqlite" {
		t.Errorf("Expected sqlite backend, got %s", cfg.LedgerBackend)
	}
	if cfg.SpeechCommand != "" {
		t.Errorf("Expected speech disabled, got %q", cfg.SpeechCommand)
	}
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("MAX_CAMERA_PROBE", "many")

	if got := getEnvAsInt("MAX_CAMERA_PROBE", 10); got != 10 {
		t.Errorf("getEnvAsInt = %d, expected fallback 10", got)
	}
}
