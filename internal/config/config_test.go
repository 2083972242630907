package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default port = %d; want 8000", cfg.Server.Port)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("default driver = %q; want sqlite", cfg.Store.Driver)
	}
	if cfg.Store.EmbeddingDim != 512 {
		t.Errorf("default embedding dim = %d; want 512", cfg.Store.EmbeddingDim)
	}
	if cfg.Matching.HighThreshold != 0.75 || cfg.Matching.MediumThreshold != 0.5 {
		t.Errorf("default thresholds = %v/%v; want 0.75/0.5",
			cfg.Matching.HighThreshold, cfg.Matching.MediumThreshold)
	}
	if err := cfg.Attendance.Windows.Validate(); err != nil {
		t.Errorf("default windows invalid: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("MATCH_HIGH_THRESHOLD", "0.7")
	t.Setenv("MATCH_MEDIUM_THRESHOLD", "0.6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d; want 9000", cfg.Server.Port)
	}
	if cfg.Store.Driver != "postgres" {
		t.Errorf("driver = %q; want postgres", cfg.Store.Driver)
	}
	if cfg.Matching.HighThreshold != 0.7 || cfg.Matching.MediumThreshold != 0.6 {
		t.Errorf("thresholds = %v/%v; want 0.7/0.6",
			cfg.Matching.HighThreshold, cfg.Matching.MediumThreshold)
	}
}

func TestLoadRejectsInvertedThresholds(t *testing.T) {
	t.Setenv("MATCH_HIGH_THRESHOLD", "0.5")
	t.Setenv("MATCH_MEDIUM_THRESHOLD", "0.75")

	if _, err := Load(); err == nil {
		t.Error("expected error when medium threshold >= high threshold")
	}
}

func TestLoadWindowsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windows.yaml")
	content := `windows:
  check-in: { start: 6, end: 9 }
  late: { start: 9, end: 12 }
  none: { start: 12, end: 18 }
  check-out: { start: 18, end: 24 }
  early-check-in: { start: 0, end: 6 }
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ATTENDANCE_WINDOWS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if w := cfg.Attendance.Windows["check-in"]; w.Start != 6 || w.End != 9 {
		t.Errorf("check-in window = %+v; want 6-9", w)
	}
}

func TestLoadRejectsBrokenWindowsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "windows.yaml")
	// Gap: nothing covers 0-6.
	content := `windows:
  check-in: { start: 6, end: 24 }
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ATTENDANCE_WINDOWS_FILE", path)

	if _, err := Load(); err == nil {
		t.Error("expected error for windows file with uncovered hours")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")
	if got := envInt("TEST_INT", 7); got != 7 {
		t.Errorf("envInt with garbage = %d; want default 7", got)
	}
	t.Setenv("TEST_FLOAT", "0.25")
	if got := envFloat("TEST_FLOAT", 1); got != 0.25 {
		t.Errorf("envFloat = %v; want 0.25", got)
	}
}
