package boundary

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// shapeReader is the common surface of shp.Reader and shp.ZipReader.
type shapeReader interface {
	Next() bool
	Shape() (int, shp.Shape)
	Attribute(n int) string
	Fields() []shp.Field
	Err() error
	Close() error
}

// LoadShapefile reads a polygon shapefile. path may be a .shp file, a
// directory containing one, or a .zip archive holding one.
func LoadShapefile(path string, spec Spec) (*Layer, error) {
	reader, err := openShapefile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader.Fields(), spec.NameField)
	if nameIdx < 0 {
		return nil, eris.Errorf("boundary: field %q not found in %s", spec.NameField, path)
	}

	layer := &Layer{Name: spec.Name}
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		mp := shapeToMultiPolygon(shape)
		if mp == nil {
			skipped++
			continue
		}
		name := spec.key(decodeAttribute(reader.Attribute(nameIdx)))
		layer.Areas = append(layer.Areas, NewArea(name, mp))
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "boundary: read shapefile %s", path)
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped shapefile records",
			zap.String("layer", spec.Name),
			zap.Int("skipped", skipped),
		)
	}
	return layer, nil
}

func openShapefile(path string) (shapeReader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: stat %s", path)
	}

	if info.IsDir() {
		shpPath, err := findFileByExt(path, ".shp")
		if err != nil {
			return nil, err
		}
		path = shpPath
	}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		r, err := shp.OpenZip(path)
		if err != nil {
			return nil, eris.Wrapf(err, "boundary: open zipped shapefile %s", path)
		}
		return r, nil
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	return r, nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "boundary: read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("boundary: no %s file found in %s", ext, dir)
}

// fieldIndex returns the index of a named DBF field, or -1 if not found.
func fieldIndex(fields []shp.Field, name string) int {
	for i, f := range fields {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// decodeAttribute trims DBF padding. Municipal shapefiles are usually
// written in Windows-1252, so invalid UTF-8 is decoded from that.
func decodeAttribute(raw string) string {
	s := strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	if utf8.ValidString(s) {
		return s
	}
	decoded, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return decoded
}

// shapeToMultiPolygon converts a shapefile polygon to a multipolygon.
// Clockwise parts start a new polygon; counter-clockwise parts are holes of
// the preceding polygon. Returns nil for non-polygon or empty shapes.
func shapeToMultiPolygon(shape shp.Shape) *geom.MultiPolygon {
	p, ok := shape.(*shp.Polygon)
	if !ok || p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var current *geom.Polygon
	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 4 {
			continue
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current != nil && xy.IsRingCounterClockwise(geom.XY, flat) {
			if err := current.Push(ring); err != nil {
				zap.L().Debug("boundary: skipping malformed hole", zap.Int32("part", i), zap.Error(err))
			}
			continue
		}

		flush()
		current = geom.NewPolygon(geom.XY)
		if err := current.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			current = nil
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
