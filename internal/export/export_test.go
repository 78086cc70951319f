package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/xuri/excelize/v2"

	"github.com/detroit-open-data/ccw-yoy/internal/boundary"
	"github.com/detroit-open-data/ccw-yoy/internal/display"
	"github.com/detroit-open-data/ccw-yoy/internal/incident"
	"github.com/detroit-open-data/ccw-yoy/internal/study"
	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

func squareArea(name string, x0 float64) boundary.Area {
	mp := geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{{{
		{x0, 42}, {x0, 43}, {x0 + 1, 43}, {x0 + 1, 42}, {x0, 42},
	}}})
	return boundary.NewArea(name, mp)
}

func testReport() *study.Report {
	p := incident.DefaultParams()
	return &study.Report{
		Field:  yoy.ZipCode,
		Type:   yoy.Total,
		Title:  study.Title(yoy.ZipCode, yoy.Total),
		Window: p.FilterWindow(0),
		Stages: study.Stages{Loaded: 10, CCWOnly: 5, InWindow: 5, StudyWindow: 3},
		Values: yoy.Values{"A": 4},
		Layer: &boundary.Layer{
			Name:  yoy.ZipCode.String(),
			Areas: []boundary.Area{squareArea("A", -84), squareArea("B", -83)},
		},
		Areas: []study.AreaSummary{
			{
				Name: "B", Pre: 2, Label: "B: 0", LabelColor: display.Dark,
				Fill: display.NoData, Centroid: &incident.Point{Lon: -82.5, Lat: 42.5}, InLayer: true,
			},
			{
				Name: "A", Pre: 1, Post: 4, Value: 4, HasValue: true, Label: "A: 4",
				LabelColor: display.Light, Fill: "#800026",
				Centroid: &incident.Point{Lon: -83.5, Lat: 42.5}, InLayer: true,
			},
		},
	}
}

func testTrend() []yoy.TrendPoint {
	return []yoy.TrendPoint{
		{Period: "19Q2", Pre: 1},
		{Period: "21Q1", Post: 4, Pandemic: true},
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats([]string{"csv, xlsx", "SVG", "csv", ""})
	require.NoError(t, err)
	assert.Equal(t, []Format{CSV, XLSX, SVG}, got)

	_, err = ParseFormats([]string{"png"})
	require.Error(t, err)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "zip_code_percent", BaseName(yoy.ZipCode, yoy.Percent))
	assert.Equal(t, "snf_total", BaseName(yoy.SNF, yoy.Total))
	assert.Equal(t, "precinct_absolute", BaseName(yoy.Precinct, yoy.Absolute))
}

func TestWriteSummaryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, WriteSummaryCSV(path, testReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"name,pre,post,value,label,fill,in_layer\n"+
			"A,1,4,4,A: 4,#800026,true\n"+
			"B,2,0,,B: 0,#d9d9d9,true\n",
		string(data))
}

func TestWriteSummaryCSV_NoAreas(t *testing.T) {
	r := testReport()
	r.Areas = nil
	err := WriteSummaryCSV(filepath.Join(t.TempDir(), "summary.csv"), r)
	require.Error(t, err)
}

func TestWriteTrendCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trend.csv")
	require.NoError(t, WriteTrendCSV(path, testTrend()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "period,pre,post,pandemic\n19Q2,1,0,false\n21Q1,0,4,true\n", string(data))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteXLSX(path, testReport(), testTrend()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{SummarySheet, TrendSheet}, f.GetSheetList())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "pre", "post", "value", "label", "fill", "in_layer"}, rows[0])
	assert.Equal(t, []string{"B", "2", "0"}, rows[1][:3])
	assert.Equal(t, []string{"A", "1", "4", "4", "A: 4", "#800026"}, rows[2][:6])

	noData, err := f.GetCellStyle(SummarySheet, "D2")
	require.NoError(t, err)
	filled, err := f.GetCellStyle(SummarySheet, "D3")
	require.NoError(t, err)
	assert.NotZero(t, filled)
	assert.NotEqual(t, noData, filled)

	trend, err := f.GetRows(TrendSheet)
	require.NoError(t, err)
	require.Len(t, trend, 3)
	assert.Equal(t, []string{"21Q1", "0", "4"}, trend[2][:3])
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	at := time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC)

	m, err := Write(testReport(), Options{
		Dir:     dir,
		Formats: Formats,
		Trend:   testTrend(),
		RunID:   "run-1",
		Now:     func() time.Time { return at },
	})
	require.NoError(t, err)

	want := []string{
		"zip_code_total.csv",
		"zip_code_total_trend.csv",
		"zip_code_total.xlsx",
		"zip_code_total.geojson",
		"zip_code_total.svg",
	}
	assert.Equal(t, want, m.Files)
	for _, name := range want {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	loaded, err := LoadManifest(filepath.Join(dir, ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.True(t, at.Equal(loaded.CreatedAt))
	assert.Equal(t, "zip_code", loaded.Field)
	assert.Equal(t, "Total number of", loaded.AnalysisType)
	assert.Equal(t, WindowDates{Start: "2018-07-13", End: "2021-11-13"}, loaded.Window)
	assert.Equal(t, 5, loaded.Stages.CCWOnly)
	assert.Equal(t, 2, loaded.Areas)
	assert.Equal(t, want, loaded.Files)
}

func TestWrite_GeoJSONNeedsLayer(t *testing.T) {
	r := testReport()
	r.Layer = nil
	_, err := Write(r, Options{Dir: t.TempDir(), Formats: []Format{GeoJSON}})
	require.Error(t, err)
}
