package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/detroit-open-data/ccw-yoy/internal/incident"
)

// Config holds the full application configuration.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// AnalysisConfig holds the study parameters.
type AnalysisConfig struct {
	PandemicDate string   `yaml:"pandemic_date" mapstructure:"pandemic_date"`
	WindowAnchor string   `yaml:"window_anchor" mapstructure:"window_anchor"`
	StudyMonths  int      `yaml:"study_months" mapstructure:"study_months"`
	FilterMonths int      `yaml:"filter_months" mapstructure:"filter_months"`
	CCWCharges   []string `yaml:"ccw_charges" mapstructure:"ccw_charges"`
}

// LayerConfig locates one boundary layer and the attribute naming its areas.
// URL, when set, is where the fetch command downloads Path from.
type LayerConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	NameField string `yaml:"name_field" mapstructure:"name_field"`
	URL       string `yaml:"url" mapstructure:"url"`
}

// SourcesConfig locates the input files.
type SourcesConfig struct {
	Incidents     string      `yaml:"incidents" mapstructure:"incidents"`
	IncidentsURL  string      `yaml:"incidents_url" mapstructure:"incidents_url"`
	ScoutCarAreas LayerConfig `yaml:"scout_car_areas" mapstructure:"scout_car_areas"`
	ZipCodes      LayerConfig `yaml:"zip_codes" mapstructure:"zip_codes"`
	Precincts     LayerConfig `yaml:"precincts" mapstructure:"precincts"`
	SNF           LayerConfig `yaml:"snf" mapstructure:"snf"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ExportConfig configures report output.
type ExportConfig struct {
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	Formats []string `yaml:"formats" mapstructure:"formats"`
}

// FetchConfig configures source downloads.
type FetchConfig struct {
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	MaxAttempts       int           `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

const dateLayout = "2006-01-02"

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CCW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("analysis.pandemic_date", "2020-03-12")
	v.SetDefault("analysis.window_anchor", "2020-03-13")
	v.SetDefault("analysis.study_months", 12)
	v.SetDefault("analysis.filter_months", 20)
	v.SetDefault("analysis.ccw_charges", incident.DefaultCCWCharges())
	v.SetDefault("sources.incidents", "Sources/RMS_Crime_Incidents.geojson")
	v.SetDefault("sources.scout_car_areas.path", "Sources/DPD_Scout_Car_Areas")
	v.SetDefault("sources.scout_car_areas.name_field", "Area")
	v.SetDefault("sources.zip_codes.path", "Sources/Detroit_Zip_Codes.geojson")
	v.SetDefault("sources.zip_codes.name_field", "ZIPCODE")
	v.SetDefault("sources.precincts.path", "Sources/DPD_Precincts.geojson")
	v.SetDefault("sources.precincts.name_field", "name")
	v.SetDefault("sources.snf.path", "Sources/SNF.geojson")
	v.SetDefault("sources.snf.name_field", "Proj_NAME")
	for _, key := range []string{"incidents_url", "scout_car_areas.url", "zip_codes.url", "precincts.url", "snf.url"} {
		v.SetDefault("sources."+key, "")
	}
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "ccw-yoy.db")
	v.SetDefault("export.dir", "out")
	v.SetDefault("export.formats", []string{"csv", "geojson", "svg"})
	v.SetDefault("fetch.user_agent", "ccw-yoy/1.0")
	v.SetDefault("fetch.timeout", "2m")
	v.SetDefault("fetch.requests_per_second", 2)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Params converts the analysis section into validated study parameters.
func (c *Config) Params() (incident.Params, error) {
	flag, err := time.Parse(dateLayout, strings.TrimSpace(c.Analysis.PandemicDate))
	if err != nil {
		return incident.Params{}, eris.Wrap(err, "config: analysis.pandemic_date")
	}
	anchor, err := time.Parse(dateLayout, strings.TrimSpace(c.Analysis.WindowAnchor))
	if err != nil {
		return incident.Params{}, eris.Wrap(err, "config: analysis.window_anchor")
	}

	p := incident.Params{
		PandemicFlagDate: flag,
		WindowAnchor:     anchor,
		StudyMonths:      c.Analysis.StudyMonths,
		FilterMonths:     c.Analysis.FilterMonths,
		Charges:          incident.NewChargeSet(c.Analysis.CCWCharges...),
	}
	if err := p.Validate(); err != nil {
		return incident.Params{}, eris.Wrap(err, "config: analysis")
	}
	return p, nil
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	var errs []string

	if _, err := c.Params(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Sources.Incidents == "" {
		errs = append(errs, "sources.incidents is required")
	}
	switch strings.ToLower(c.Store.Driver) {
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "none", "":
	default:
		errs = append(errs, "store.driver must be sqlite, postgres or none")
	}
	switch c.Log.Format {
	case "json", "console", "":
	default:
		errs = append(errs, "log.format must be json or console")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
