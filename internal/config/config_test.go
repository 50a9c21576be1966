package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesense/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tablesense?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 1000, cfg.Scan.PageSize)
	assert.Equal(t, 500000, cfg.Scan.MaxScanRows)
	assert.Equal(t, 3, cfg.Scan.MaxEmptyPages)
	assert.Equal(t, 1000, cfg.Report.QuickSampleRows)
	assert.Equal(t, 50000, cfg.Report.ReportMaxRows)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DATABASE_DRIVER", "SQLITE")
	t.Setenv("PAGE_SIZE", "250")
	t.Setenv("REPORT_MAX_ROWS", "5000")
	t.Setenv("READ_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 250, cfg.Scan.PageSize)
	assert.Equal(t, 5000, cfg.Report.ReportMaxRows)
	assert.Equal(t, "5s", cfg.Server.ReadTimeout.String())
}

func TestLoadMissingDatabaseIsConfigurationError(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.GetCode(err))
}

func TestValidateRejectsBadScanBounds(t *testing.T) {
	cfg := Default()
	cfg.Database.URL = "postgres://x"
	cfg.Scan.MaxScanRows = 10

	err := Validate(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeConfiguration))
}
