package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCriteriaFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "criteria.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCriteria(t *testing.T) {
	path := writeCriteriaFile(t, "min_cap_rate: 7.5\nmin_dscr: 1.4\n")

	c, err := LoadCriteria(path)
	require.NoError(t, err)

	assert.InDelta(t, 7.5, c.MinCapRate, 0.001)
	assert.InDelta(t, 1.4, c.MinDSCR, 0.001)
	// Unset thresholds fall back to the defaults.
	assert.InDelta(t, 8.0, c.MinCashOnCash, 0.001)
	assert.InDelta(t, 12.0, c.MinIRR, 0.001)
}

func TestLoadCriteriaEmptyFileGetsDefaults(t *testing.T) {
	path := writeCriteriaFile(t, "")

	c, err := LoadCriteria(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultCriteria(), c)
}

func TestLoadCriteriaMissingFile(t *testing.T) {
	_, err := LoadCriteria(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "criteria: read")
}

func TestLoadCriteriaMalformedYAML(t *testing.T) {
	path := writeCriteriaFile(t, "min_cap_rate: [not a number\n")

	_, err := LoadCriteria(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "criteria: parse")
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	c := InvestmentCriteria{MinCapRate: 9, MinCashOnCash: 11, MinDSCR: 2, MinIRR: 15}
	assert.Equal(t, c, c.WithDefaults())
}
