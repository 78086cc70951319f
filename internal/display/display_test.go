package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

func TestVmax(t *testing.T) {
	v, ok := Vmax(yoy.ScoutCarArea, yoy.Percent)
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)

	_, ok = Vmax(yoy.ScoutCarArea, yoy.Absolute)
	assert.False(t, ok)
	_, ok = Vmax(yoy.ZipCode, yoy.Percent)
	assert.False(t, ok)
}

func TestColor(t *testing.T) {
	values := yoy.Values{"low": 7.99, "edge": 8, "high": 12}

	assert.Equal(t, Dark, Color(values, "low", yoy.ScoutCarArea, yoy.Percent))
	assert.Equal(t, Light, Color(values, "edge", yoy.ScoutCarArea, yoy.Percent))
	assert.Equal(t, Light, Color(values, "high", yoy.ScoutCarArea, yoy.Percent))
	assert.Equal(t, Dark, Color(values, "missing", yoy.ScoutCarArea, yoy.Percent))
	assert.Equal(t, Dark, Color(values, "high", yoy.ZipCode, yoy.Percent))
	assert.Equal(t, Dark, Color(values, "high", yoy.ScoutCarArea, yoy.Total))
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name   string
		values yoy.Values
		area   string
		field  yoy.Field
		typ    yoy.AnalysisType
		want   string
	}{
		{"scout total", yoy.Values{"101": 12}, "101", yoy.ScoutCarArea, yoy.Total, "12"},
		{"scout absolute missing", yoy.Values{}, "101", yoy.ScoutCarArea, yoy.Absolute, "0"},
		{"zip absolute", yoy.Values{"48205": -3}, "48205", yoy.ZipCode, yoy.Absolute, "48205:\n-3"},
		{"snf total", yoy.Values{"Osborn": 4}, "Osborn", yoy.SNF, yoy.Total, "Osborn: 4"},
		{"precinct total", yoy.Values{"03": 9}, "03", yoy.Precinct, yoy.Total, "3: 9"},
		{"scout percent", yoy.Values{"101": 2.0}, "101", yoy.ScoutCarArea, yoy.Percent, "100%"},
		{"scout percent missing", yoy.Values{}, "101", yoy.ScoutCarArea, yoy.Percent, "0%"},
		{"zip percent", yoy.Values{"48205": 1.5}, "48205", yoy.ZipCode, yoy.Percent, "48205:\n50%"},
		{"snf percent", yoy.Values{"Osborn": 0.75}, "Osborn", yoy.SNF, yoy.Percent, "Osborn: -25%"},
		{"precinct percent keeps name", yoy.Values{"03": 1.25}, "03", yoy.Precinct, yoy.Percent, "03: 25%"},
		{"half rounds to even", yoy.Values{"101": 2.5}, "101", yoy.ScoutCarArea, yoy.Total, "2"},
		{"half rounds to even up", yoy.Values{"101": 3.5}, "101", yoy.ScoutCarArea, yoy.Total, "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Label(tt.values, tt.area, tt.field, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabel_NonNumericName(t *testing.T) {
	_, err := Label(yoy.Values{}, "Downtown", yoy.ZipCode, yoy.Total)
	assert.Error(t, err)

	_, err = Label(yoy.Values{}, "Downtown", yoy.Precinct, yoy.Absolute)
	assert.Error(t, err)

	// Percent labels for precincts do not need a numeric name.
	got, err := Label(yoy.Values{}, "Downtown", yoy.Precinct, yoy.Percent)
	require.NoError(t, err)
	assert.Equal(t, "Downtown: 0%", got)
}

func TestLabel_UnknownType(t *testing.T) {
	_, err := Label(yoy.Values{}, "1", yoy.ScoutCarArea, yoy.AnalysisType(0))
	assert.ErrorIs(t, err, yoy.ErrUnknownAnalysisType)
}
