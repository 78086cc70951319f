package study

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/detroit-open-data/ccw-yoy/internal/boundary"
	"github.com/detroit-open-data/ccw-yoy/internal/display"
	"github.com/detroit-open-data/ccw-yoy/internal/incident"
	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

// AreaSummary is one area's row of a comparison.
type AreaSummary struct {
	Name string `json:"name"`
	Pre  int    `json:"pre"`
	Post int    `json:"post"`
	// Value is meaningful only when HasValue is set; areas with no
	// post-pandemic incidents have no comparison value.
	Value      float64         `json:"value"`
	HasValue   bool            `json:"has_value"`
	Label      string          `json:"label"`
	LabelColor string          `json:"label_color"`
	Fill       string          `json:"fill"`
	Centroid   *incident.Point `json:"centroid,omitempty"`
	// InLayer is false for aggregated keys with no matching boundary.
	InLayer bool `json:"in_layer"`
}

// Report is the result of one comparison.
type Report struct {
	Field  yoy.Field        `json:"-"`
	Type   yoy.AnalysisType `json:"-"`
	Title  string           `json:"title"`
	Window incident.Window  `json:"window"`
	Stages Stages           `json:"stages"`
	Counts yoy.Counts       `json:"counts"`
	Values yoy.Values       `json:"values"`
	Ramp   display.Ramp     `json:"-"`
	Areas  []AreaSummary    `json:"areas"`
	Layer  *boundary.Layer  `json:"-"`
}

// Title returns the map title for a comparison.
func Title(field yoy.Field, typ yoy.AnalysisType) string {
	return typ.String() + " change in CCW arrests by " + field.Title()
}

// Analyze compares the dataset's CCW-only arrests before and after the
// pandemic flag date, per value of field, inside the filter window.
func Analyze(ds *Dataset, field yoy.Field, typ yoy.AnalysisType, months int) (*Report, error) {
	p := ds.Params
	records := p.FilterToWindow(ds.Records, months)
	counts := yoy.ComparePandemic(records, field)
	values, err := yoy.Compute(counts, typ)
	if err != nil {
		return nil, eris.Wrapf(err, "study: compare by %s", field)
	}

	r := &Report{
		Field:  field,
		Type:   typ,
		Title:  Title(field, typ),
		Window: p.FilterWindow(months),
		Stages: ds.Stages,
		Counts: counts,
		Values: values,
		Ramp:   display.RampFor(values, field, typ),
	}
	r.Stages.InWindow = len(records)
	if l, ok := ds.Layer(field); ok {
		r.Layer = l
	}

	for _, name := range areaNames(r.Layer, counts) {
		r.Areas = append(r.Areas, r.summarize(name))
	}
	return r, nil
}

func (r *Report) summarize(name string) AreaSummary {
	s := AreaSummary{
		Name: name,
		Pre:  r.Counts.Pre[name],
		Post: r.Counts.Post[name],
	}
	s.Value, s.HasValue = r.Values[name]

	label, err := display.Label(r.Values, name, r.Field, r.Type)
	if err != nil {
		zap.L().Warn("area name is not numeric, labelling by name",
			zap.String("field", r.Field.String()), zap.String("area", name))
		label = name
	}
	s.Label = label
	s.LabelColor = display.Color(r.Values, name, r.Field, r.Type)

	s.Fill = display.NoData
	if s.HasValue {
		s.Fill = r.Ramp.Fill(s.Value)
	}

	if r.Layer != nil {
		if a, ok := r.Layer.Area(name); ok {
			s.InLayer = true
			lon, lat := a.Centroid()
			s.Centroid = &incident.Point{Lon: lon, Lat: lat}
		}
	}
	return s
}

// areaNames lists the layer's areas plus any non-empty aggregated key the
// layer does not have.
func areaNames(layer *boundary.Layer, counts yoy.Counts) []string {
	seen := map[string]bool{}
	var names []string
	add := func(n string) {
		if n == "" || seen[n] {
			return
		}
		seen[n] = true
		names = append(names, n)
	}
	if layer != nil {
		for _, n := range layer.Names() {
			add(n)
		}
	}
	for n := range counts.Post {
		add(n)
	}
	for n := range counts.Pre {
		add(n)
	}
	sort.Strings(names)
	return names
}

// Summary returns the area rows that have a comparison value.
func (r *Report) Summary() []AreaSummary {
	var out []AreaSummary
	for _, a := range r.Areas {
		if a.HasValue {
			out = append(out, a)
		}
	}
	return out
}
