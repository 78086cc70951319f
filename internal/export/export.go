// Package export writes comparison reports to disk as CSV, XLSX, GeoJSON
// and SVG, plus a manifest describing the run.
package export

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/detroit-open-data/ccw-yoy/internal/render"
	"github.com/detroit-open-data/ccw-yoy/internal/study"
	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

// Format is an output file format.
type Format string

// Output formats.
const (
	CSV     Format = "csv"
	XLSX    Format = "xlsx"
	GeoJSON Format = "geojson"
	SVG     Format = "svg"
)

// Formats lists every supported format.
var Formats = []Format{CSV, XLSX, GeoJSON, SVG}

// ParseFormats resolves format names, ignoring blanks and duplicates.
func ParseFormats(names []string) ([]Format, error) {
	seen := map[Format]bool{}
	var out []Format
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			f := Format(strings.ToLower(strings.TrimSpace(part)))
			if f == "" || seen[f] {
				continue
			}
			if !f.valid() {
				return nil, eris.Errorf("export: unknown format %q", part)
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

func (f Format) valid() bool {
	for _, v := range Formats {
		if f == v {
			return true
		}
	}
	return false
}

// BaseName returns the file stem for a comparison, e.g. "zip_code_percent".
func BaseName(field yoy.Field, typ yoy.AnalysisType) string {
	slug := "total"
	switch typ {
	case yoy.Percent:
		slug = "percent"
	case yoy.Absolute:
		slug = "absolute"
	}
	return strings.ToLower(field.String()) + "_" + slug
}

// Options controls Write.
type Options struct {
	Dir     string
	Formats []Format
	// Trend is written alongside the summary in CSV and XLSX outputs.
	Trend []yoy.TrendPoint
	RunID string
	SVG   render.SVGOptions
	Now   func() time.Time
}

// Write exports the report in every requested format and a manifest.yaml
// listing them. It returns the manifest.
func Write(r *study.Report, opts Options) (*Manifest, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create %s", opts.Dir)
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	base := filepath.Join(opts.Dir, BaseName(r.Field, r.Type))
	var files []string
	for _, f := range opts.Formats {
		var written []string
		var err error
		switch f {
		case CSV:
			written, err = writeCSVs(base, r, opts.Trend)
		case XLSX:
			path := base + ".xlsx"
			written, err = []string{path}, WriteXLSX(path, r, opts.Trend)
		case GeoJSON:
			path := base + ".geojson"
			written, err = []string{path}, writeGeoJSON(path, r)
		case SVG:
			path := base + ".svg"
			written, err = []string{path}, writeSVG(path, r, opts.SVG)
		default:
			err = eris.Errorf("export: unknown format %q", f)
		}
		if err != nil {
			return nil, err
		}
		for _, p := range written {
			files = append(files, filepath.Base(p))
		}
	}

	m := NewManifest(r, opts.RunID, now(), files)
	if err := m.Save(filepath.Join(opts.Dir, ManifestName)); err != nil {
		return nil, err
	}
	zap.L().Info("report exported", zap.String("dir", opts.Dir), zap.Strings("files", files))
	return m, nil
}

func writeCSVs(base string, r *study.Report, trend []yoy.TrendPoint) ([]string, error) {
	path := base + ".csv"
	if err := WriteSummaryCSV(path, r); err != nil {
		return nil, err
	}
	out := []string{path}
	if len(trend) > 0 {
		tpath := base + "_trend.csv"
		if err := WriteTrendCSV(tpath, trend); err != nil {
			return nil, err
		}
		out = append(out, tpath)
	}
	return out, nil
}

func writeGeoJSON(path string, r *study.Report) error {
	data, err := render.GeoJSON(r)
	if err != nil {
		return err
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "export: write %s", path)
}

func writeSVG(path string, r *study.Report, opts render.SVGOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := render.SVG(f, r, opts); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}
