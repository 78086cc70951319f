package yoy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detroit-open-data/ccw-yoy/internal/incident"
)

func TestParseAnalysisType(t *testing.T) {
	tests := []struct {
		in   string
		want AnalysisType
	}{
		{"Percent", Percent},
		{"percent", Percent},
		{"Absolute", Absolute},
		{"Total number of", Total},
		{"total", Total},
	}
	for _, tt := range tests {
		got, err := ParseAnalysisType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseAnalysisType("Median")
	assert.ErrorIs(t, err, ErrUnknownAnalysisType)
}

func TestAnalysisTypeString(t *testing.T) {
	assert.Equal(t, "Percent", Percent.String())
	assert.Equal(t, "Absolute", Absolute.String())
	assert.Equal(t, "Total number of", Total.String())
}

func TestParseField(t *testing.T) {
	for _, f := range Fields {
		got, err := ParseField(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseField("snf")
	require.NoError(t, err)
	assert.Equal(t, SNF, got)

	_, err = ParseField("ward")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFieldValue(t *testing.T) {
	r := incident.Record{ScoutCarArea: "1", ZipCode: "2", Precinct: "03", SNF: "Zone"}
	assert.Equal(t, "1", ScoutCarArea.Value(r))
	assert.Equal(t, "2", ZipCode.Value(r))
	assert.Equal(t, "03", Precinct.Value(r))
	assert.Equal(t, "Zone", SNF.Value(r))
	assert.Equal(t, "", Field(0).Value(r))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("Quarter")
	require.NoError(t, err)
	assert.Equal(t, ByQuarter, p)

	p, err = ParsePeriod("month")
	require.NoError(t, err)
	assert.Equal(t, ByMonth, p)

	_, err = ParsePeriod("week")
	assert.Error(t, err)
}
