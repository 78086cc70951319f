package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/detroit-open-data/ccw-yoy/internal/config"
	"github.com/detroit-open-data/ccw-yoy/internal/incident"
)

const ccwCharge = "WEAPONS OFFENSE - CONCEALED"

func squareFeature(prop string, value any, x0 float64) string {
	v := fmt.Sprintf("%v", value)
	if s, ok := value.(string); ok {
		v = fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf(`{"type":"Feature","properties":{%q:%s},"geometry":{"type":"Polygon",
		"coordinates":[[[%g,0],[%g,1],[%g,1],[%g,0],[%g,0]]]}}`,
		prop, v, x0, x0, x0+1, x0+1, x0)
}

func incidentFeature(id, ts string, zip int, pt []float64) string {
	geometry := "null"
	if pt != nil {
		geometry = fmt.Sprintf(`{"type":"Point","coordinates":[%g,%g]}`, pt[0], pt[1])
	}
	return fmt.Sprintf(`{"type":"Feature","geometry":%s,"properties":{"crime_id":%q,
		"charge_description":%q,"incident_timestamp":%q,"scout_car_area":null,"precinct":null,"zip_code":%d}}`,
		geometry, id, ccwCharge, ts, zip)
}

func collection(features ...string) string {
	return `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// testConfig writes a small incident export with zip and SNF layers and
// returns a config pointing at them with a temp SQLite run history.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	west := []float64{0.5, 0.5}
	east := []float64{1.5, 0.5}

	incidents := writeFile(t, dir, "incidents.geojson", collection(
		incidentFeature("c1", "2021/04/01 10:00:00", 48201, west),
		incidentFeature("c2", "2021/05/01 10:00:00", 48201, west),
		incidentFeature("c3", "2019/06/01 10:00:00", 48201, west),
		incidentFeature("c4", "2021/01/01 10:00:00", 48202, east),
		incidentFeature("c5", "2016/01/01 10:00:00", 48201, west),
	))
	zips := writeFile(t, dir, "zips.geojson", collection(
		squareFeature("ZIPCODE", 48201, 0),
		squareFeature("ZIPCODE", 48202, 1),
	))
	snf := writeFile(t, dir, "snf.geojson", collection(
		squareFeature("Proj_NAME", "Alpha", 0),
	))

	c := &config.Config{}
	c.Analysis = config.AnalysisConfig{
		PandemicDate: "2020-03-12",
		WindowAnchor: "2020-03-13",
		StudyMonths:  12,
		FilterMonths: 20,
		CCWCharges:   incident.DefaultCCWCharges(),
	}
	c.Sources.Incidents = incidents
	c.Sources.ZipCodes = config.LayerConfig{Path: zips, NameField: "ZIPCODE"}
	c.Sources.SNF = config.LayerConfig{Path: snf, NameField: "Proj_NAME"}
	c.Store = config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(dir, "runs.db")}
	c.Export = config.ExportConfig{Dir: filepath.Join(dir, "out"), Formats: []string{"csv"}}
	c.Log = config.LogConfig{Level: "info", Format: "json"}
	return c
}
