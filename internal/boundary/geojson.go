package boundary

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// LoadGeoJSON reads a GeoJSON FeatureCollection of polygons or multipolygons.
func LoadGeoJSON(path string, spec Spec) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "boundary: decode %s", path)
	}

	layer := &Layer{Name: spec.Name}
	var skipped, missingName int
	for _, f := range fc.Features {
		mp := toMultiPolygon(f.Geometry)
		if mp == nil {
			skipped++
			continue
		}
		raw, ok := f.Properties[spec.NameField]
		if !ok {
			missingName++
			continue
		}
		layer.Areas = append(layer.Areas, NewArea(spec.key(raw), mp))
	}

	if missingName > 0 && len(layer.Areas) == 0 {
		return nil, eris.Errorf("boundary: property %q not found in %s", spec.NameField, path)
	}
	if skipped > 0 || missingName > 0 {
		zap.L().Debug("boundary: skipped GeoJSON features",
			zap.String("layer", spec.Name),
			zap.Int("non_polygon", skipped),
			zap.Int("missing_name", missingName),
		)
	}
	return layer, nil
}

func toMultiPolygon(g geom.T) *geom.MultiPolygon {
	switch v := g.(type) {
	case *geom.MultiPolygon:
		if v.NumPolygons() == 0 {
			return nil
		}
		return v
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(v.Layout())
		if err := mp.Push(v); err != nil {
			return nil
		}
		return mp
	default:
		return nil
	}
}
