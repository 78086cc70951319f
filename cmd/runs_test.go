package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detroit-open-data/ccw-yoy/internal/store"
	"github.com/detroit-open-data/ccw-yoy/internal/study"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []store.Run{
		{
			ID:           "abc12345-6789-0000-0000-000000000000",
			CreatedAt:    now,
			Field:        "zip_code",
			AnalysisType: "Percent",
			WindowStart:  time.Date(2018, 7, 13, 0, 0, 0, 0, time.UTC),
			WindowEnd:    time.Date(2021, 11, 13, 0, 0, 0, 0, time.UTC),
			Stages:       study.Stages{InWindow: 42},
		},
		{
			ID:           "def12345",
			CreatedAt:    now.Add(-time.Hour),
			Field:        "SNF",
			AnalysisType: "Total number of",
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "FIELD")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
	assert.Contains(t, output, "2025-06-15 10:30")
	assert.Contains(t, output, "zip_code")
	assert.Contains(t, output, "2018-07-13..2021-11-13")
	assert.Contains(t, output, "42")
	assert.Contains(t, output, "Total number of")
}

func TestOpenStore_Disabled(t *testing.T) {
	c := testConfig(t)
	c.Store.Driver = "none"

	_, err := openStore(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestOpenStore_SQLite(t *testing.T) {
	c := testConfig(t)

	st, err := openStore(context.Background(), c)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}
