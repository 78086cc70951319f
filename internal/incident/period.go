package incident

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrMalformedTimestamp is returned when a timestamp does not start with a
// YYYY/MM/DD (or YYYY-MM-DD) date.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// ExtractDate parses the first ten characters of ts as YYYY/MM/DD.
func ExtractDate(ts string) (time.Time, error) {
	if len(ts) < 10 {
		return time.Time{}, eris.Wrapf(ErrMalformedTimestamp, "incident: extract date from %q", ts)
	}
	parts := strings.Split(slashed(ts[:10]), "/")
	if len(parts) != 3 {
		return time.Time{}, eris.Wrapf(ErrMalformedTimestamp, "incident: extract date from %q", ts)
	}

	var ymd [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, eris.Wrapf(ErrMalformedTimestamp, "incident: extract date from %q", ts)
		}
		ymd[i] = n
	}

	d := time.Date(ymd[0], time.Month(ymd[1]), ymd[2], 0, 0, 0, 0, time.UTC)
	// time.Date normalises out-of-range values; reject them instead.
	if d.Year() != ymd[0] || int(d.Month()) != ymd[1] || d.Day() != ymd[2] {
		return time.Time{}, eris.Wrapf(ErrMalformedTimestamp, "incident: invalid date in %q", ts)
	}
	return d, nil
}

// QuarterFromTimestamp returns the two-digit year and calendar quarter of
// ts, e.g. "21Q2" for 2021/05/01.
func QuarterFromTimestamp(ts string) (string, error) {
	year, month, err := yearMonth(ts)
	if err != nil {
		return "", err
	}
	quarter := (month-1)/3 + 1
	return year[2:] + "Q" + strconv.Itoa(quarter), nil
}

// MonthFromTimestamp returns the month (1-12) of ts.
func MonthFromTimestamp(ts string) (int, error) {
	_, month, err := yearMonth(ts)
	return month, err
}

// IsDuringPandemic reports whether ts falls on or after the pandemic flag date.
func (p Params) IsDuringPandemic(ts string) (bool, error) {
	d, err := ExtractDate(ts)
	if err != nil {
		return false, err
	}
	return !d.Before(p.PandemicFlagDate), nil
}

// AnalysisStart returns the window anchor minus months calendar months.
// A non-positive months uses StudyMonths.
func (p Params) AnalysisStart(months int) time.Time {
	if months <= 0 {
		months = p.StudyMonths
	}
	return addMonths(p.WindowAnchor, -months)
}

// AnalysisEnd returns the window anchor plus months calendar months.
// A non-positive months uses StudyMonths.
func (p Params) AnalysisEnd(months int) time.Time {
	if months <= 0 {
		months = p.StudyMonths
	}
	return addMonths(p.WindowAnchor, months)
}

// IsDuringAnalysis reports whether ts lies strictly inside the default
// StudyMonths window around the anchor.
func (p Params) IsDuringAnalysis(ts string) (bool, error) {
	d, err := ExtractDate(ts)
	if err != nil {
		return false, err
	}
	return inside(d, p.AnalysisStart(p.StudyMonths), p.AnalysisEnd(p.StudyMonths)), nil
}

func inside(d, start, end time.Time) bool {
	return d.After(start) && d.Before(end)
}

// addMonths shifts t by n calendar months, clamping the day to the end of
// the target month (2020/03/31 minus one month is 2020/02/29).
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

func yearMonth(ts string) (string, int, error) {
	if len(ts) < 7 {
		return "", 0, eris.Wrapf(ErrMalformedTimestamp, "incident: year and month from %q", ts)
	}
	parts := strings.Split(slashed(ts[:7]), "/")
	if len(parts) != 2 || len(parts[0]) != 4 {
		return "", 0, eris.Wrapf(ErrMalformedTimestamp, "incident: year and month from %q", ts)
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return "", 0, eris.Wrapf(ErrMalformedTimestamp, "incident: year from %q", ts)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return "", 0, eris.Wrapf(ErrMalformedTimestamp, "incident: month from %q", ts)
	}
	return parts[0], month, nil
}

func slashed(s string) string {
	return strings.ReplaceAll(s, "-", "/")
}
