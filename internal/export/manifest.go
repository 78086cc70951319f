package export

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/detroit-open-data/ccw-yoy/internal/study"
)

// ManifestName is the file name of the manifest written next to the exports.
const ManifestName = "manifest.yaml"

const dateLayout = "2006-01-02"

// Manifest records the parameters and outputs of one exported comparison.
type Manifest struct {
	RunID        string       `yaml:"run_id,omitempty"`
	CreatedAt    time.Time    `yaml:"created_at"`
	Title        string       `yaml:"title"`
	Field        string       `yaml:"field"`
	AnalysisType string       `yaml:"analysis_type"`
	Window       WindowDates  `yaml:"window"`
	Stages       study.Stages `yaml:"stages"`
	Areas        int          `yaml:"areas"`
	Files        []string     `yaml:"files"`
}

// WindowDates is the filter window as calendar dates.
type WindowDates struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// NewManifest describes a report and the files written for it.
func NewManifest(r *study.Report, runID string, at time.Time, files []string) *Manifest {
	return &Manifest{
		RunID:        runID,
		CreatedAt:    at.UTC(),
		Title:        r.Title,
		Field:        r.Field.String(),
		AnalysisType: r.Type.String(),
		Window: WindowDates{
			Start: r.Window.Start.Format(dateLayout),
			End:   r.Window.End.Format(dateLayout),
		},
		Stages: r.Stages,
		Areas:  len(r.Areas),
		Files:  files,
	}
}

// Save writes the manifest as YAML.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "export: encode manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}

// LoadManifest reads a manifest written by Save.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: read %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "export: parse %s", path)
	}
	return &m, nil
}
