// Package study runs the CCW year-over-year comparison end to end: it loads
// the incident export and boundary layers, isolates CCW-only arrests and
// summarises them per area.
package study

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/detroit-open-data/ccw-yoy/internal/boundary"
	"github.com/detroit-open-data/ccw-yoy/internal/incident"
	"github.com/detroit-open-data/ccw-yoy/internal/source"
	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

// Stages counts records surviving each pipeline stage.
type Stages struct {
	Loaded      int `json:"loaded" yaml:"loaded"`
	Skipped     int `json:"skipped" yaml:"skipped"`
	Normalized  int `json:"normalized" yaml:"normalized"`
	CCWOnly     int `json:"ccw_only" yaml:"ccw_only"`
	InWindow    int `json:"in_window" yaml:"in_window"`
	StudyWindow int `json:"study_window" yaml:"study_window"`
}

// Dataset is the CCW-only incident set with the layers it was joined against.
type Dataset struct {
	Params  incident.Params
	Records []incident.Record
	Layers  map[string]*boundary.Layer
	Stages  Stages
}

// Layer returns the loaded layer for field, if any.
func (d *Dataset) Layer(field yoy.Field) (*boundary.Layer, bool) {
	l, ok := d.Layers[field.String()]
	return l, ok
}

// Input names the incident export and the layers to load with it.
type Input struct {
	Incidents string
	Layers    []boundary.Spec
}

// Prepare loads the incident export and layers concurrently, normalises the
// rows, assigns SNF zones by location and keeps CCW-only arrests.
func Prepare(ctx context.Context, in Input, p incident.Params) (*Dataset, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("component", "study"))

	var (
		raws   []incident.Raw
		layers map[string]*boundary.Layer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raws, err = source.Load(gctx, in.Incidents)
		return err
	})
	g.Go(func() error {
		var err error
		layers, err = boundary.LoadAll(gctx, in.Layers)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "study: load inputs")
	}

	ds := &Dataset{Params: p, Layers: layers}
	ds.Stages.Loaded = len(raws)

	records := make([]incident.Record, 0, len(raws))
	for _, raw := range raws {
		rec, err := incident.Normalize(raw, p)
		if err != nil {
			ds.Stages.Skipped++
			log.Debug("skipping incident row", zap.String("crime_id", raw.CrimeID), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	ds.Stages.Normalized = len(records)

	if snf, ok := ds.Layer(yoy.SNF); ok {
		n := AssignSNF(records, snf)
		log.Debug("snf zones assigned", zap.Int("located", n))
	}

	ds.Records = incident.CCWOnly(records)
	ds.Stages.CCWOnly = len(ds.Records)
	ds.Stages.StudyWindow = p.CountDuringAnalysis(ds.Records)

	log.Info("incidents prepared",
		zap.Int("loaded", ds.Stages.Loaded),
		zap.Int("skipped", ds.Stages.Skipped),
		zap.Int("ccw_only", ds.Stages.CCWOnly),
		zap.Int("study_window", ds.Stages.StudyWindow),
	)
	return ds, nil
}

// AssignSNF sets the SNF zone of every record whose point falls inside one
// and returns how many were located.
func AssignSNF(records []incident.Record, layer *boundary.Layer) int {
	n := 0
	for i := range records {
		pt := records[i].Point
		if pt == nil {
			continue
		}
		if name, ok := layer.Locate(pt.Lon, pt.Lat); ok {
			records[i].SNF = name
			n++
		}
	}
	return n
}

// Options selects the comparison to run.
type Options struct {
	Input  Input
	Params incident.Params
	Field  yoy.Field
	Type   yoy.AnalysisType
	// Months is the half-width of the filter window; zero uses
	// Params.FilterMonths.
	Months int
}

// Run prepares the dataset and analyses it.
func Run(ctx context.Context, opts Options) (*Report, error) {
	ds, err := Prepare(ctx, opts.Input, opts.Params)
	if err != nil {
		return nil, err
	}
	return Analyze(ds, opts.Field, opts.Type, opts.Months)
}

// Trend returns pre/post counts per period for the dataset's CCW-only
// arrests inside the filter window.
func Trend(ds *Dataset, by yoy.Period, months int) []yoy.TrendPoint {
	return yoy.Trend(ds.Params.FilterToWindow(ds.Records, months), by)
}
