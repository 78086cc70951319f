package boundary

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/detroit-open-data/ccw-yoy/internal/incident"
)

// Spec describes where a layer lives and how its areas are named.
type Spec struct {
	// Name identifies the layer, e.g. "zip_code".
	Name string
	Path string
	// NameField is the attribute holding each area's name.
	NameField string
	// Key canonicalises attribute values so they match incident fields.
	// Defaults to incident.FormatValue.
	Key func(any) string
}

func (s Spec) key(v any) string {
	if s.Key != nil {
		return s.Key(v)
	}
	return incident.FormatValue(v)
}

// Load reads a layer, choosing the format from the path: directories,
// .shp and .zip are shapefiles; .geojson and .json are GeoJSON.
func Load(spec Spec) (*Layer, error) {
	if spec.Path == "" {
		return nil, eris.Errorf("boundary: no path for layer %s", spec.Name)
	}
	if spec.NameField == "" {
		return nil, eris.Errorf("boundary: no name field for layer %s", spec.Name)
	}

	var (
		layer *Layer
		err   error
	)
	switch strings.ToLower(filepath.Ext(spec.Path)) {
	case ".geojson", ".json":
		layer, err = LoadGeoJSON(spec.Path, spec)
	default:
		layer, err = LoadShapefile(spec.Path, spec)
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("boundary layer loaded",
		zap.String("layer", spec.Name),
		zap.String("path", spec.Path),
		zap.Int("areas", len(layer.Areas)),
	)
	return layer, nil
}

// LoadAll loads every spec concurrently and returns the layers keyed by name.
func LoadAll(ctx context.Context, specs []Spec) (map[string]*Layer, error) {
	layers := make([]*Layer, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "boundary: load cancelled")
			}
			l, err := Load(spec)
			if err != nil {
				return err
			}
			layers[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Layer, len(layers))
	for _, l := range layers {
		out[l.Name] = l
	}
	return out, nil
}
