package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, BackendXLSX, cfg.Ledger.Backend)
	assert.Equal(t, "fra", cfg.OCR.Language)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", BackendSQLite)
	t.Setenv("LEDGER_PATH", "/tmp/ledger.db")
	t.Setenv("OCR_DPI", "150")
	t.Setenv("LEDGER_DIAL_TIMEOUT", "10s")

	cfg := LoadConfig()
	assert.Equal(t, BackendSQLite, cfg.Ledger.Backend)
	assert.Equal(t, "/tmp/ledger.db", cfg.Ledger.Path)
	assert.Equal(t, 150, cfg.OCR.DPI)
	assert.Equal(t, "10s", cfg.Ledger.DialTimeout.String())
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := LoadConfig()
	cfg.Ledger.Backend = "csv"
	assert.Error(t, cfg.Validate())
}

func TestValidatePostgresRequiresDSN(t *testing.T) {
	cfg := LoadConfig()
	cfg.Ledger.Backend = BackendPostgres
	cfg.Ledger.DSN = ""
	assert.Error(t, cfg.Validate())

	cfg.Ledger.DSN = "postgres://localhost/invoices"
	assert.NoError(t, cfg.Validate())
}
