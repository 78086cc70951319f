package yoy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/detroit-open-data/ccw-yoy/internal/incident"
)

// Period selects the bucket used by Trend.
type Period int

// Trend periods.
const (
	ByQuarter Period = iota + 1
	ByMonth
)

func (p Period) String() string {
	switch p {
	case ByQuarter:
		return "quarter"
	case ByMonth:
		return "month"
	default:
		return "unknown"
	}
}

// ParsePeriod resolves "quarter" or "month".
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quarter", "q":
		return ByQuarter, nil
	case "month", "m":
		return ByMonth, nil
	}
	return 0, eris.Errorf("yoy: unknown trend period %q", s)
}

// TrendPoint is the number of incidents in one period.
type TrendPoint struct {
	Period   string `json:"period" dataframe:"period"`
	Pre      int    `json:"pre" dataframe:"pre"`
	Post     int    `json:"post" dataframe:"post"`
	Pandemic bool   `json:"pandemic" dataframe:"pandemic"`
}

// Trend counts records per quarter ("YYQ#") or month ("YYYY/MM"), split by
// the pandemic flag, sorted chronologically. A period straddling the flag
// date has both Pre and Post set.
func Trend(records []incident.Record, by Period) []TrendPoint {
	idx := make(map[string]*TrendPoint)
	for _, r := range records {
		key := periodKey(r, by)
		tp, ok := idx[key]
		if !ok {
			tp = &TrendPoint{Period: key}
			idx[key] = tp
		}
		if r.Pandemic {
			tp.Post++
			tp.Pandemic = true
		} else {
			tp.Pre++
		}
	}

	out := make([]TrendPoint, 0, len(idx))
	for _, tp := range idx {
		out = append(out, *tp)
	}
	// Both key formats sort lexically in chronological order.
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

func periodKey(r incident.Record, by Period) string {
	if by == ByMonth {
		return fmt.Sprintf("%04d/%02d", r.Date.Year(), r.Month)
	}
	return r.Quarter
}
