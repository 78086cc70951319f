// Package render draws a comparison report as a choropleth map, either as
// GeoJSON for web maps or as a standalone SVG.
package render

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/detroit-open-data/ccw-yoy/internal/study"
)

// GeoJSON encodes every area of the report's layer as a feature carrying
// its counts, comparison value, label and colours.
func GeoJSON(r *study.Report) ([]byte, error) {
	if r.Layer == nil {
		return nil, eris.Errorf("render: no %s layer loaded", r.Field)
	}

	byName := summaries(r)
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(r.Layer.Areas))}
	for _, a := range r.Layer.Areas {
		s := byName[a.Name]
		props := map[string]any{
			"name":        a.Name,
			"pre":         s.Pre,
			"post":        s.Post,
			"value":       nil,
			"label":       s.Label,
			"label_color": s.LabelColor,
			"fill":        s.Fill,
		}
		if s.HasValue {
			props["value"] = s.Value
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         a.Name,
			Geometry:   a.Geometry,
			Properties: props,
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return nil, eris.Wrap(err, "render: encode geojson")
	}
	return data, nil
}

func summaries(r *study.Report) map[string]study.AreaSummary {
	out := make(map[string]study.AreaSummary, len(r.Areas))
	for _, s := range r.Areas {
		out[s.Name] = s
	}
	return out
}
