package config

import (
	"os"
	"testing"

	"pdfbinder/internal/common"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.WorkingDir == "" {
		t.Fatal("Expected working directory to be set")
	}
	if _, err := os.Stat(cfg.WorkingDir); err != nil {
		t.Errorf("Expected working directory to exist: %v", err)
	}

	if cfg.DatabaseDSN != ":memory:" {
		t.Errorf("Expected in-memory database DSN, got %q", cfg.DatabaseDSN)
	}

	if cfg.SizeBudgetBytes != common.SizeBudgetBytes {
		t.Errorf("Expected size budget %d, got %d", common.SizeBudgetBytes, cfg.SizeBudgetBytes)
	}

	if cfg.Logger == nil {
		t.Error("Expected logger to be set")
	}
}
