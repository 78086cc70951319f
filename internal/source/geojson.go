package source

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/detroit-open-data/ccw-yoy/internal/incident"
)

// ReadGeoJSON reads a FeatureCollection of incident points.
func ReadGeoJSON(path string) ([]incident.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "source: decode %s", path)
	}
	if len(fc.Features) > 0 {
		for _, col := range requiredColumns {
			if _, ok := fc.Features[0].Properties[col]; !ok {
				return nil, eris.Errorf("source: required property %q not found in %s", col, path)
			}
		}
	}

	raws := make([]incident.Raw, 0, len(fc.Features))
	for _, f := range fc.Features {
		p := f.Properties
		raw := incident.Raw{
			CrimeID:           incident.FormatValue(p[ColCrimeID]),
			ChargeDescription: incident.FormatValue(p[ColChargeDescription]),
			IncidentTimestamp: incident.FormatValue(p[ColIncidentTimestamp]),
			ScoutCarArea:      p[ColScoutCarArea],
			Precinct:          p[ColPrecinct],
			ZipCode:           p[ColZipCode],
		}
		if pt, ok := f.Geometry.(*geom.Point); ok && !pt.Empty() {
			raw.Point = &incident.Point{Lon: pt.X(), Lat: pt.Y()}
		}
		raws = append(raws, raw)
	}
	return raws, nil
}
