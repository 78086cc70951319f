package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/detroit-open-data/ccw-yoy/internal/incident"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "2020-03-12", cfg.Analysis.PandemicDate)
	assert.Equal(t, "2020-03-13", cfg.Analysis.WindowAnchor)
	assert.Equal(t, 12, cfg.Analysis.StudyMonths)
	assert.Equal(t, 20, cfg.Analysis.FilterMonths)
	assert.Equal(t, incident.DefaultCCWCharges(), cfg.Analysis.CCWCharges)
	assert.Equal(t, "Sources/RMS_Crime_Incidents.geojson", cfg.Sources.Incidents)
	assert.Equal(t, LayerConfig{Path: "Sources/DPD_Scout_Car_Areas", NameField: "Area"}, cfg.Sources.ScoutCarAreas)
	assert.Equal(t, LayerConfig{Path: "Sources/Detroit_Zip_Codes.geojson", NameField: "ZIPCODE"}, cfg.Sources.ZipCodes)
	assert.Equal(t, LayerConfig{Path: "Sources/DPD_Precincts.geojson", NameField: "name"}, cfg.Sources.Precincts)
	assert.Equal(t, LayerConfig{Path: "Sources/SNF.geojson", NameField: "Proj_NAME"}, cfg.Sources.SNF)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "ccw-yoy.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "out", cfg.Export.Dir)
	assert.Equal(t, []string{"csv", "geojson", "svg"}, cfg.Export.Formats)
	assert.Equal(t, "ccw-yoy/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 2*time.Minute, cfg.Fetch.Timeout)
	assert.Equal(t, 2.0, cfg.Fetch.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Empty(t, cfg.Sources.IncidentsURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
analysis:
  filter_months: 18
  ccw_charges:
    - WEAPONS OFFENSE - CONCEALED
sources:
  zip_codes:
    path: data/zips.geojson
    url: https://data.example.org/zips.geojson
fetch:
  timeout: 30s
store:
  driver: postgres
  database_url: postgres://localhost/ccw
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 18, cfg.Analysis.FilterMonths)
	assert.Equal(t, []string{"WEAPONS OFFENSE - CONCEALED"}, cfg.Analysis.CCWCharges)
	assert.Equal(t, "data/zips.geojson", cfg.Sources.ZipCodes.Path)
	assert.Equal(t, "https://data.example.org/zips.geojson", cfg.Sources.ZipCodes.URL)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/ccw", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, "ZIPCODE", cfg.Sources.ZipCodes.NameField)
	assert.Equal(t, 12, cfg.Analysis.StudyMonths)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CCW_STORE_DRIVER", "none")
	t.Setenv("CCW_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "none", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("CCW_ANALYSIS_STUDY_MONTHS", "6")
	t.Setenv("CCW_SOURCES_SNF_PATH", "/data/snf.geojson")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Analysis.StudyMonths)
	assert.Equal(t, "/data/snf.geojson", cfg.Sources.SNF.Path)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Analysis.PandemicDate = "2020-03-12"
	cfg.Analysis.WindowAnchor = "2020-03-13"
	cfg.Analysis.StudyMonths = 12
	cfg.Analysis.FilterMonths = 20
	cfg.Analysis.CCWCharges = incident.DefaultCCWCharges()
	cfg.Sources.Incidents = "incidents.geojson"
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "runs.db"
	cfg.Log.Format = "json"
	return cfg
}

func TestParams(t *testing.T) {
	p, err := validDefaults().Params()
	require.NoError(t, err)

	want := incident.DefaultParams()
	assert.True(t, want.PandemicFlagDate.Equal(p.PandemicFlagDate))
	assert.True(t, want.WindowAnchor.Equal(p.WindowAnchor))
	assert.Equal(t, time.UTC, p.WindowAnchor.Location())
	assert.Equal(t, 12, p.StudyMonths)
	assert.Equal(t, 20, p.FilterMonths)
	assert.Equal(t, want.Charges.List(), p.Charges.List())
}

func TestParams_BadDate(t *testing.T) {
	cfg := validDefaults()
	cfg.Analysis.PandemicDate = "03/12/2020"

	_, err := cfg.Params()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pandemic_date")
}

func TestParams_NoCharges(t *testing.T) {
	cfg := validDefaults()
	cfg.Analysis.CCWCharges = []string{" ", ""}

	_, err := cfg.Params()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CCW charge")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validDefaults().Validate())

	cfg := validDefaults()
	cfg.Store.Driver = "none"
	cfg.Store.DatabaseURL = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	cfg := validDefaults()
	cfg.Analysis.StudyMonths = 0
	cfg.Sources.Incidents = ""
	cfg.Store.Driver = "mysql"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "study months must be positive")
	assert.Contains(t, err.Error(), "sources.incidents is required")
	assert.Contains(t, err.Error(), "store.driver must be")
	assert.Contains(t, err.Error(), "log.format must be")

	cfg = validDefaults()
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestLoadEnvSourceURL(t *testing.T) {
	chdirTemp(t)

	t.Setenv("CCW_SOURCES_INCIDENTS_URL", "https://data.example.org/incidents.geojson")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://data.example.org/incidents.geojson", cfg.Sources.IncidentsURL)
}
