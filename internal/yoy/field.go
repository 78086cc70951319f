// Package yoy aggregates CCW incidents before and after the pandemic flag
// date and derives year-over-year comparisons per geographic area.
package yoy

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/detroit-open-data/ccw-yoy/internal/incident"
)

// ErrUnknownField is returned by ParseField for an unrecognised field name.
var ErrUnknownField = errors.New("unknown aggregation field")

// Field is a geographic partitioning scheme used as an aggregation key.
type Field int

// Aggregation fields.
const (
	ScoutCarArea Field = iota + 1
	ZipCode
	Precinct
	SNF
)

// Fields lists every aggregation field.
var Fields = []Field{ScoutCarArea, ZipCode, Precinct, SNF}

// String returns the column name of the field.
func (f Field) String() string {
	switch f {
	case ScoutCarArea:
		return "scout_car_area"
	case ZipCode:
		return "zip_code"
	case Precinct:
		return "precinct"
	case SNF:
		return "SNF"
	default:
		return "unknown"
	}
}

// Title returns a human-readable field name for titles and headers.
func (f Field) Title() string {
	switch f {
	case ScoutCarArea:
		return "scout car area"
	case ZipCode:
		return "zip code"
	case Precinct:
		return "precinct"
	case SNF:
		return "SNF zone"
	default:
		return "unknown"
	}
}

// ParseField resolves a column name (case-insensitive) to a Field.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if strings.EqualFold(strings.TrimSpace(s), f.String()) {
			return f, nil
		}
	}
	return 0, eris.Wrapf(ErrUnknownField, "yoy: parse field %q", s)
}

// Value returns the record's value for the field.
func (f Field) Value(r incident.Record) string {
	switch f {
	case ScoutCarArea:
		return r.ScoutCarArea
	case ZipCode:
		return r.ZipCode
	case Precinct:
		return r.Precinct
	case SNF:
		return r.SNF
	default:
		return ""
	}
}
