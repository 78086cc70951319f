package incident

import "time"

// Window is an open date interval (Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d lies strictly inside the window.
func (w Window) Contains(d time.Time) bool {
	return inside(d, w.Start, w.End)
}

// StudyWindow returns the window of months calendar months either side of
// the anchor. A non-positive months uses StudyMonths.
func (p Params) StudyWindow(months int) Window {
	return Window{Start: p.AnalysisStart(months), End: p.AnalysisEnd(months)}
}

// FilterWindow returns the window used by FilterToWindow. A non-positive
// months uses FilterMonths, which is wider than the study window.
func (p Params) FilterWindow(months int) Window {
	if months <= 0 {
		months = p.FilterMonths
	}
	return Window{Start: addMonths(p.WindowAnchor, -months), End: addMonths(p.WindowAnchor, months)}
}

// FilterToWindow keeps records dated strictly inside FilterWindow(months).
func (p Params) FilterToWindow(records []Record, months int) []Record {
	w := p.FilterWindow(months)
	var out []Record
	for _, r := range records {
		if w.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// CountDuringAnalysis returns how many records fall inside the default study window.
func (p Params) CountDuringAnalysis(records []Record) int {
	w := p.StudyWindow(p.StudyMonths)
	n := 0
	for _, r := range records {
		if w.Contains(r.Date) {
			n++
		}
	}
	return n
}
