package main

import (
	"github.com/rotisserie/eris"

	"github.com/detroit-open-data/ccw-yoy/internal/boundary"
	"github.com/detroit-open-data/ccw-yoy/internal/config"
	"github.com/detroit-open-data/ccw-yoy/internal/incident"
	"github.com/detroit-open-data/ccw-yoy/internal/study"
	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

// layerSpec returns the boundary layer configured for field. It reports
// false when the layer has no path.
func layerSpec(c *config.Config, field yoy.Field) (boundary.Spec, bool) {
	spec := boundary.Spec{Name: field.String()}

	var lc config.LayerConfig
	switch field {
	case yoy.ScoutCarArea:
		lc = c.Sources.ScoutCarAreas
		spec.Key = incident.ScoutCarAreaKey
	case yoy.ZipCode:
		lc = c.Sources.ZipCodes
	case yoy.Precinct:
		lc = c.Sources.Precincts
		spec.Key = incident.PrecinctKey
	case yoy.SNF:
		lc = c.Sources.SNF
	}
	if lc.Path == "" {
		return spec, false
	}
	spec.Path = lc.Path
	spec.NameField = lc.NameField
	return spec, true
}

// studyInput builds the study input for the incident export and the layers
// of fields. SNF zones are assigned spatially, so the SNF field requires
// its layer.
func studyInput(c *config.Config, fields ...yoy.Field) (study.Input, error) {
	in := study.Input{Incidents: c.Sources.Incidents}
	for _, f := range fields {
		spec, ok := layerSpec(c, f)
		if !ok {
			if f == yoy.SNF {
				return study.Input{}, eris.New("sources.snf.path is required to aggregate by SNF")
			}
			continue
		}
		in.Layers = append(in.Layers, spec)
	}
	return in, nil
}
