// Package display formats per-area comparison values for map labels.
package display

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

// Text colours for map labels.
const (
	Dark  = "black"
	Light = "white"
)

// scoutPercentVmax caps the colour scale for scout-car-area percent maps,
// where a few small areas would otherwise wash out the rest.
const scoutPercentVmax = 10

// Vmax returns the fixed upper bound of the colour scale for the field and
// analysis type, if one applies.
func Vmax(field yoy.Field, typ yoy.AnalysisType) (float64, bool) {
	if field == yoy.ScoutCarArea && typ == yoy.Percent {
		return scoutPercentVmax, true
	}
	return 0, false
}

// Color picks a label colour readable on the area's fill. Without a fixed
// vmax every label is dark.
func Color(values yoy.Values, name string, field yoy.Field, typ yoy.AnalysisType) string {
	vmax, ok := Vmax(field, typ)
	if !ok {
		return Dark
	}
	if values.Get(name, 0) < vmax*0.8 {
		return Dark
	}
	return Light
}

// Label returns the map label for an area. Zip codes and precincts are
// printed as integers, so a non-numeric name for those fields is an error.
func Label(values yoy.Values, name string, field yoy.Field, typ yoy.AnalysisType) (string, error) {
	switch typ {
	case yoy.Absolute, yoy.Total:
		n := roundString(values.Get(name, 0))
		switch field {
		case yoy.ScoutCarArea:
			return n, nil
		case yoy.ZipCode:
			id, err := intName(name)
			if err != nil {
				return "", err
			}
			return id + ":\n" + n, nil
		case yoy.SNF:
			return name + ": " + n, nil
		default:
			id, err := intName(name)
			if err != nil {
				return "", err
			}
			return id + ": " + n, nil
		}
	case yoy.Percent:
		pct := roundString((values.Get(name, 1)-1)*100) + "%"
		switch field {
		case yoy.ScoutCarArea:
			return pct, nil
		case yoy.ZipCode:
			id, err := intName(name)
			if err != nil {
				return "", err
			}
			return id + ":\n" + pct, nil
		default:
			return name + ": " + pct, nil
		}
	default:
		return "", eris.Wrapf(yoy.ErrUnknownAnalysisType, "display: label %d", int(typ))
	}
}

// roundString rounds half to even, matching the study's published figures.
func roundString(v float64) string {
	return strconv.FormatInt(int64(math.RoundToEven(v)), 10)
}

func intName(name string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(name))
	if err != nil {
		return "", eris.Wrapf(err, "display: area name %q is not an integer", name)
	}
	return strconv.Itoa(n), nil
}
