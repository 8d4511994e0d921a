package config

import (
	"testing"

	"winefit/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Data.Path != "data/winequality-red.csv" {
		t.Errorf("data path = %q", cfg.Data.Path)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("output dir = %q", cfg.Output.Dir)
	}
	if cfg.Study.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Study.Seed)
	}
	if cfg.Study.TrainSize != 800 {
		t.Errorf("train size = %d, want 800", cfg.Study.TrainSize)
	}
	if cfg.Study.Alpha != 0.05 {
		t.Errorf("alpha = %g, want 0.05", cfg.Study.Alpha)
	}
	if cfg.Study.VIFThreshold != 5.0 {
		t.Errorf("vif threshold = %g, want 5", cfg.Study.VIFThreshold)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WINEFIT_DATA", "/tmp/wine.xlsx")
	t.Setenv("WINEFIT_OUT", "/tmp/reports")
	t.Setenv("WINEFIT_SEED", "7")
	t.Setenv("WINEFIT_TRAIN_SIZE", "1000")
	t.Setenv("WINEFIT_ALPHA", "0.01")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Data.Path != "/tmp/wine.xlsx" {
		t.Errorf("data path = %q", cfg.Data.Path)
	}
	if cfg.Output.Dir != "/tmp/reports" {
		t.Errorf("output dir = %q", cfg.Output.Dir)
	}
	if cfg.Study.Seed != 7 {
		t.Errorf("seed = %d, want 7", cfg.Study.Seed)
	}
	if cfg.Study.TrainSize != 1000 {
		t.Errorf("train size = %d, want 1000", cfg.Study.TrainSize)
	}
	if cfg.Study.Alpha != 0.01 {
		t.Errorf("alpha = %g, want 0.01", cfg.Study.Alpha)
	}
}

func TestLoad_MalformedNumberFallsBack(t *testing.T) {
	t.Setenv("WINEFIT_SEED", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Study.Seed != 42 {
		t.Errorf("seed = %d, want default 42", cfg.Study.Seed)
	}
}

func TestLoad_InvalidAlphaRejected(t *testing.T) {
	t.Setenv("WINEFIT_ALPHA", "1.5")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error for alpha above 1")
	}
	if errors.GetCode(err) != errors.CodeConfigInvalid {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.CodeConfigInvalid)
	}
}

func TestLoad_InvalidTrainSizeRejected(t *testing.T) {
	t.Setenv("WINEFIT_TRAIN_SIZE", "-5")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for negative train size")
	}
}
