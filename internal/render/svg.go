package render

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/detroit-open-data/ccw-yoy/internal/display"
	"github.com/detroit-open-data/ccw-yoy/internal/study"
)

// SVGOptions sizes the map.
type SVGOptions struct {
	Width    int
	Height   int
	Margin   int
	FontSize float64
}

// DefaultSVGOptions returns a 1000x1000 canvas.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 1000, Height: 1000, Margin: 40, FontSize: 11}
}

// projection maps lon/lat onto the canvas with an equirectangular projection
// scaled by the cosine of the centre latitude.
type projection struct {
	minX, maxY float64
	kx, scale  float64
	offX, offY float64
}

func newProjection(b *geom.Bounds, opts SVGOptions) (projection, error) {
	if b.IsEmpty() {
		return projection{}, eris.New("render: layer has no geometry")
	}
	minX, minY := b.Min(0), b.Min(1)
	maxX, maxY := b.Max(0), b.Max(1)
	kx := math.Cos((minY + maxY) / 2 * math.Pi / 180)
	w := (maxX - minX) * kx
	h := maxY - minY
	if w <= 0 || h <= 0 {
		return projection{}, eris.New("render: layer extent is degenerate")
	}

	top := float64(opts.Margin) + opts.FontSize*2
	availW := float64(opts.Width - 2*opts.Margin)
	availH := float64(opts.Height-opts.Margin) - top
	scale := math.Min(availW/w, availH/h)
	return projection{
		minX:  minX,
		maxY:  maxY,
		kx:    kx,
		scale: scale,
		offX:  float64(opts.Margin) + (availW-w*scale)/2,
		offY:  top + (availH-h*scale)/2,
	}, nil
}

func (p projection) point(lon, lat float64) (float64, float64) {
	return p.offX + (lon-p.minX)*p.kx*p.scale, p.offY + (p.maxY-lat)*p.scale
}

// SVG writes the report as an SVG choropleth with a label at each area's
// centroid and the comparison title above the map.
func SVG(w io.Writer, r *study.Report, opts SVGOptions) error {
	if r.Layer == nil {
		return eris.Errorf("render: no %s layer loaded", r.Field)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultSVGOptions()
	}
	proj, err := newProjection(r.Layer.Bounds(), opts)
	if err != nil {
		return err
	}

	byName := summaries(r)
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)
	fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	fmt.Fprintf(bw, `<text x="%d" y="%.1f" font-family="sans-serif" font-size="%.1f" text-anchor="middle">%s</text>`+"\n",
		opts.Width/2, float64(opts.Margin)+opts.FontSize, opts.FontSize*1.6, escape(r.Title))

	bw.WriteString(`<g stroke="#4d4d4d" stroke-width="0.6" fill-rule="evenodd">` + "\n")
	for _, a := range r.Layer.Areas {
		fill := display.NoData
		if s, ok := byName[a.Name]; ok {
			fill = s.Fill
		}
		fmt.Fprintf(bw, `<path data-name="%s" fill="%s" d="%s"/>`+"\n", escape(a.Name), fill, pathData(a.Geometry, proj))
	}
	bw.WriteString("</g>\n")

	fmt.Fprintf(bw, `<g font-family="sans-serif" font-size="%.1f" text-anchor="middle">`+"\n", opts.FontSize)
	for _, s := range r.Areas {
		if s.Centroid == nil {
			continue
		}
		x, y := proj.point(s.Centroid.Lon, s.Centroid.Lat)
		writeLabel(bw, x, y, s.Label, display.Hex(s.LabelColor), opts.FontSize)
	}
	bw.WriteString("</g>\n</svg>\n")

	return eris.Wrap(bw.Flush(), "render: write svg")
}

func pathData(mp *geom.MultiPolygon, proj projection) string {
	var sb strings.Builder
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		for j := 0; j < poly.NumLinearRings(); j++ {
			for k, c := range poly.LinearRing(j).Coords() {
				x, y := proj.point(c.X(), c.Y())
				cmd := "L"
				if k == 0 {
					cmd = "M"
				}
				fmt.Fprintf(&sb, "%s%.2f %.2f", cmd, x, y)
			}
			sb.WriteString("Z")
		}
	}
	return sb.String()
}

// writeLabel centres a possibly multi-line label on (x, y).
func writeLabel(w io.Writer, x, y float64, label, color string, size float64) {
	lines := strings.Split(label, "\n")
	y0 := y - float64(len(lines)-1)*size/2
	fmt.Fprintf(w, `<text x="%.2f" y="%.2f" fill="%s" dominant-baseline="middle">`, x, y0, color)
	for i, line := range lines {
		dy := 0.0
		if i > 0 {
			dy = size
		}
		fmt.Fprintf(w, `<tspan x="%.2f" dy="%.1f">%s</tspan>`, x, dy, escape(line))
	}
	fmt.Fprint(w, "</text>\n")
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
