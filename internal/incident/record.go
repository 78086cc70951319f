// Package incident models RMS crime-incident charge rows and the pure
// transformations of the CCW study: period extraction, normalisation,
// CCW-only isolation and analysis windows.
package incident

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rotisserie/eris"
)

// Point is a WGS84 longitude/latitude pair.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Raw is one charge row as read from a source file, before normalisation.
// The geographic identifiers keep whatever type the source produced.
type Raw struct {
	CrimeID           string
	ChargeDescription string
	IncidentTimestamp string
	ScoutCarArea      any
	Precinct          any
	ZipCode           any
	Point             *Point
}

// Record is a normalised charge row with its derived fields.
type Record struct {
	CrimeID           string    `json:"crime_id"`
	ChargeDescription string    `json:"charge_description"`
	IncidentTimestamp string    `json:"incident_timestamp"`
	ScoutCarArea      string    `json:"scout_car_area"`
	Precinct          string    `json:"precinct"`
	ZipCode           string    `json:"zip_code"`
	SNF               string    `json:"snf,omitempty"`
	Point             *Point    `json:"point,omitempty"`
	Date              time.Time `json:"date"`
	IsCCW             bool      `json:"is_ccw"`
	Quarter           string    `json:"quarter"`
	Month             int       `json:"month"`
	Pandemic          bool      `json:"pandemic"`
}

// Normalize trims and canonicalises a raw row and fills in the derived fields.
func Normalize(raw Raw, p Params) (Record, error) {
	rec := Record{
		CrimeID:           strings.TrimSpace(raw.CrimeID),
		ChargeDescription: strings.TrimSpace(raw.ChargeDescription),
		IncidentTimestamp: strings.ReplaceAll(strings.TrimSpace(raw.IncidentTimestamp), "-", "/"),
		ScoutCarArea:      ScoutCarAreaKey(raw.ScoutCarArea),
		Precinct:          PrecinctKey(raw.Precinct),
		ZipCode:           FormatValue(raw.ZipCode),
		Point:             raw.Point,
	}
	if rec.CrimeID == "" {
		return Record{}, eris.New("incident: crime_id is empty")
	}
	rec.IsCCW = p.Charges.Contains(rec.ChargeDescription)

	var err error
	if rec.Date, err = ExtractDate(rec.IncidentTimestamp); err != nil {
		return Record{}, eris.Wrapf(err, "incident: normalize %s", rec.CrimeID)
	}
	if rec.Quarter, err = QuarterFromTimestamp(rec.IncidentTimestamp); err != nil {
		return Record{}, eris.Wrapf(err, "incident: normalize %s", rec.CrimeID)
	}
	if rec.Month, err = MonthFromTimestamp(rec.IncidentTimestamp); err != nil {
		return Record{}, eris.Wrapf(err, "incident: normalize %s", rec.CrimeID)
	}
	rec.Pandemic = !rec.Date.Before(p.PandemicFlagDate)
	return rec, nil
}

// FormatValue renders an identifier read from a source as a string.
// Integral numbers are printed without a decimal part and nil becomes "".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ScoutCarAreaKey renders a scout car area code, stripping leading zeros
// from all-digit codes.
func ScoutCarAreaKey(v any) string {
	s := FormatValue(v)
	if !isDigits(s) {
		return s
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return strconv.Itoa(n)
}

// PrecinctKey zero-pads numeric precincts to two digits. Strings that
// are not all digits are kept verbatim.
func PrecinctKey(v any) string {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if !isDigits(s) {
			return s
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return s
		}
		return fmt.Sprintf("%02d", n)
	case float64, float32, int, int32, int64, json.Number:
		s := FormatValue(x)
		n, err := strconv.Atoi(s)
		if err != nil {
			return s
		}
		return fmt.Sprintf("%02d", n)
	default:
		return FormatValue(v)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
