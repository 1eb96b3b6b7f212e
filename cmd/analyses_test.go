//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/proppulse/underwrite/internal/model"
	"github.com/proppulse/underwrite/internal/store"
)

func TestFormatAnalysesList(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	summaries := []store.AnalysisSummary{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Address:   "450 Oakwood Apartments, Austin, TX 78701",
			Status:    model.DealStatusPass,
			Score:     87.1,
			CreatedAt: now,
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Address:   "9 Maple St, Akron, OH 44301",
			Status:    model.DealStatusFail,
			Score:     41.0,
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}

	var buf bytes.Buffer
	formatAnalysesList(&buf, summaries)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "ADDRESS")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "450 Oakwood Apartments, Austin, TX 78701")
	assert.Contains(t, output, "PASS")
	assert.Contains(t, output, "87.1")
	assert.Contains(t, output, "FAIL")
	assert.Contains(t, output, "2026-03-10 09:15")
}

func TestFormatAnalysesListEmptyScore(t *testing.T) {
	summaries := []store.AnalysisSummary{
		{ID: "short", Address: "x", Status: model.DealStatusFail, Score: 0},
	}

	var buf bytes.Buffer
	formatAnalysesList(&buf, summaries)

	assert.Contains(t, buf.String(), "0.0")
	assert.Contains(t, buf.String(), "short")
}
