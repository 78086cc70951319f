package yoy

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnknownAnalysisType is returned by ParseAnalysisType for an unrecognised name.
var ErrUnknownAnalysisType = errors.New("unknown analysis type")

// AnalysisType selects how post-pandemic counts are compared with pre-pandemic counts.
type AnalysisType int

// Analysis types.
const (
	// Percent is post / pre, with an unseen pre count taken as 1.
	Percent AnalysisType = iota + 1
	// Absolute is post - pre. The pre count must exist.
	Absolute
	// Total is the post count alone.
	Total
)

// AnalysisTypes lists every analysis type.
var AnalysisTypes = []AnalysisType{Percent, Absolute, Total}

// String returns the display name used in titles and on the command line.
func (a AnalysisType) String() string {
	switch a {
	case Percent:
		return "Percent"
	case Absolute:
		return "Absolute"
	case Total:
		return "Total number of"
	default:
		return "unknown"
	}
}

// ParseAnalysisType resolves a display name (case-insensitive). "total" is
// accepted as shorthand for "Total number of".
func ParseAnalysisType(s string) (AnalysisType, error) {
	s = strings.TrimSpace(s)
	for _, a := range AnalysisTypes {
		if strings.EqualFold(s, a.String()) {
			return a, nil
		}
	}
	if strings.EqualFold(s, "total") {
		return Total, nil
	}
	return 0, eris.Wrapf(ErrUnknownAnalysisType, "yoy: parse analysis type %q", s)
}
