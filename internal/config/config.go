package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"pdfbinder/internal/common"
)

// Config holds application configuration
type Config struct {
	// WorkingDir holds transient files (preview handles). It lives under
	// the system temp dir and is safe to wipe between sessions.
	WorkingDir string

	// DatabaseDSN points the session stats store at its sqlite database.
	// The default is an in-memory database; nothing outlives the process.
	DatabaseDSN string

	// SizeBudgetBytes caps the post-compression total of one merge.
	SizeBudgetBytes int64

	Logger *slog.Logger
}

// New creates a new configuration instance
func New() *Config {
	cfg := &Config{
		DatabaseDSN:     ":memory:",
		SizeBudgetBytes: common.SizeBudgetBytes,
		Logger:          slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}

	cfg.setupDirectories()

	return cfg
}

func (c *Config) setupDirectories() {
	c.WorkingDir = filepath.Join(os.TempDir(), "pdfbinder")
	os.MkdirAll(c.WorkingDir, common.DefaultFilePermissions)
}
