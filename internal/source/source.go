// Package source reads RMS crime-incident charge rows from GeoJSON, CSV or
// XLSX exports.
package source

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/detroit-open-data/ccw-yoy/internal/incident"
)

// Column names of the RMS crime incidents dataset.
const (
	ColCrimeID           = "crime_id"
	ColChargeDescription = "charge_description"
	ColIncidentTimestamp = "incident_timestamp"
	ColScoutCarArea      = "scout_car_area"
	ColPrecinct          = "precinct"
	ColZipCode           = "zip_code"
)

var requiredColumns = []string{ColCrimeID, ColChargeDescription, ColIncidentTimestamp}

// Load reads incidents from path, choosing the parser from the extension.
func Load(ctx context.Context, path string) ([]incident.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "source: load cancelled")
	}

	var (
		raws []incident.Raw
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		raws, err = ReadGeoJSON(path)
	case ".csv":
		raws, err = ReadCSV(path)
	case ".xlsx":
		raws, err = ReadXLSX(path)
	default:
		return nil, eris.Errorf("source: unsupported incident file type %q", ext)
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("incidents loaded", zap.String("path", path), zap.Int("rows", len(raws)))
	return raws, nil
}

// fromTable maps a header row and string rows onto raw incidents.
func fromTable(header []string, rows [][]string) ([]incident.Raw, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, eris.Errorf("source: required column %q not found", col)
		}
	}

	get := func(row []string, col string) (string, bool) {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}
	optional := func(row []string, col string) any {
		v, ok := get(row, col)
		if !ok || v == "" {
			return nil
		}
		return v
	}

	lonCol, latCol := "longitude", "latitude"
	if _, ok := idx[lonCol]; !ok {
		lonCol, latCol = "x", "y"
	}

	raws := make([]incident.Raw, 0, len(rows))
	for _, row := range rows {
		id, _ := get(row, ColCrimeID)
		charge, _ := get(row, ColChargeDescription)
		ts, _ := get(row, ColIncidentTimestamp)
		raw := incident.Raw{
			CrimeID:           id,
			ChargeDescription: charge,
			IncidentTimestamp: ts,
			ScoutCarArea:      optional(row, ColScoutCarArea),
			Precinct:          optional(row, ColPrecinct),
			ZipCode:           optional(row, ColZipCode),
		}
		lon, lonOK := get(row, lonCol)
		lat, latOK := get(row, latCol)
		if lonOK && latOK {
			raw.Point = parsePoint(lon, lat)
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

func parsePoint(lon, lat string) *incident.Point {
	x, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return nil
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil
	}
	return &incident.Point{Lon: x, Lat: y}
}
