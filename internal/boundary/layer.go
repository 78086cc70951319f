// Package boundary loads the geographic partition layers (scout car areas,
// zip codes, precincts, SNF zones) and answers point-in-area queries.
package boundary

import (
	"sort"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Area is one named polygon feature of a layer.
type Area struct {
	Name     string
	Geometry *geom.MultiPolygon
	Bounds   *geom.Bounds
}

// NewArea wraps a multipolygon, precomputing its bounds.
func NewArea(name string, mp *geom.MultiPolygon) Area {
	return Area{Name: name, Geometry: mp, Bounds: mp.Bounds()}
}

// Contains reports whether the point lies inside the area (boundary
// included, holes excluded).
func (a Area) Contains(lon, lat float64) bool {
	if a.Geometry == nil {
		return false
	}
	pt := geom.Coord{lon, lat}
	if a.Bounds != nil && !a.Bounds.OverlapsPoint(geom.XY, pt) {
		return false
	}
	layout := a.Geometry.Layout()
	for i := 0; i < a.Geometry.NumPolygons(); i++ {
		poly := a.Geometry.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(layout, pt, poly.LinearRing(0).FlatCoords()) {
			continue
		}
		inHole := false
		for j := 1; j < poly.NumLinearRings(); j++ {
			if xy.IsPointInRing(layout, pt, poly.LinearRing(j).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// Centroid returns the area-weighted centroid, used to anchor labels.
func (a Area) Centroid() (lon, lat float64) {
	if a.Geometry == nil || a.Geometry.NumPolygons() == 0 {
		return 0, 0
	}
	c := xy.MultiPolygonCentroid(a.Geometry)
	return c.X(), c.Y()
}

// Layer is a set of areas forming one partitioning scheme.
type Layer struct {
	Name  string
	Areas []Area
}

// Locate returns the name of the first area containing the point.
func (l *Layer) Locate(lon, lat float64) (string, bool) {
	for _, a := range l.Areas {
		if a.Contains(lon, lat) {
			return a.Name, true
		}
	}
	return "", false
}

// Area returns the first area with the given name.
func (l *Layer) Area(name string) (Area, bool) {
	for _, a := range l.Areas {
		if a.Name == name {
			return a, true
		}
	}
	return Area{}, false
}

// Names returns the distinct area names, sorted.
func (l *Layer) Names() []string {
	seen := make(map[string]struct{}, len(l.Areas))
	var names []string
	for _, a := range l.Areas {
		if _, ok := seen[a.Name]; ok {
			continue
		}
		seen[a.Name] = struct{}{}
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}

// Bounds returns the extent of every area in the layer.
func (l *Layer) Bounds() *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	for _, a := range l.Areas {
		if a.Geometry != nil {
			b.Extend(a.Geometry)
		}
	}
	return b
}
