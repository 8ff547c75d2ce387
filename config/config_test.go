package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeErrorMessage(t *testing.T) {
	fallback := "操作失败"
	testErr := errors.New("internal database error")

	assert.Equal(t, fallback, SafeErrorMessage(nil, fallback))

	GlobalConfig = &Config{Server: ServerConfig{Mode: "release"}}
	defer func() { GlobalConfig = nil }()
	assert.Equal(t, fallback, SafeErrorMessage(testErr, fallback))

	GlobalConfig = &Config{Server: ServerConfig{Mode: "debug"}}
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))

	GlobalConfig = nil
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, CapitalMissingCreate, cfg.Ledger.CapitalMissing)
	assert.Equal(t, RemainderDrop, cfg.Ledger.AmortizationRemainder)
	assert.False(t, cfg.Ledger.AllowNegativeStock)
	assert.Equal(t, "50", cfg.Ledger.LowStock().String())
	assert.Equal(t, 3, cfg.Ledger.AlertWindowDays)
	assert.Same(t, cfg, GlobalConfig)
}

func TestLoadConfig_ExternalOverride(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database:\n  driver: sqlite\n  path: test.db\nledger:\n  amortization_remainder: final\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.Path)
	assert.Equal(t, RemainderFinal, cfg.Ledger.AmortizationRemainder)
	// 未覆盖的字段保持默认
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	defer func() { GlobalConfig = nil }()
	t.Setenv("LEDGER_LEDGER_CAPITAL_MISSING", "error")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, CapitalMissingError, cfg.Ledger.CapitalMissing)
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Driver: "oracle"},
		Ledger:   LedgerConfig{CapitalMissing: "create", AmortizationRemainder: "drop", LowStockThreshold: "50"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = "postgres"
	assert.NoError(t, cfg.Validate())

	cfg.Ledger.CapitalMissing = "skip"
	assert.Error(t, cfg.Validate())
}
