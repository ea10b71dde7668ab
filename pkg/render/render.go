// Package render draws Voronoi diagrams and sweep snapshots as SVG.
package render

import (
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/golang/geo/r2"

	"github.com/0x0FACED/go-voronoi/pkg/voronoi"
)

const (
	margin = 20

	backgroundStyle = "fill:rgb(31,31,31)"
	boundaryStyle   = "fill:none;stroke:rgb(117,117,117);stroke-width:2"
	cellStyle       = "fill:rgb(43,43,43);stroke:rgb(144,238,144);stroke-width:1"
	edgeStyle       = "stroke:rgb(144,238,144);stroke-width:1"
	siteStyle       = "fill:rgb(255,99,71)"
	pendingStyle    = "fill:none;stroke:rgb(255,99,71);stroke-width:1"
	vertexStyle     = "fill:rgb(211,211,211)"
	sweepStyle      = "stroke:rgb(0,191,255);stroke-width:1;stroke-dasharray:4,4"
	beachStyle      = "fill:none;stroke:rgb(255,215,0);stroke-width:1"
	breakpointStyle = "fill:rgb(255,215,0)"
	circleStyle     = "fill:none;stroke:rgb(186,85,211);stroke-width:1;stroke-dasharray:2,2"
)

// viewport maps plane coordinates to the picture with y pointing down.
type viewport struct {
	bounds        r2.Rect
	scale         float64
	width, height int
}

func newViewport(bounds r2.Rect, width int) viewport {
	w, h := bounds.X.Length(), bounds.Y.Length()
	inner := float64(width - 2*margin)
	scale := 1.0
	if w > 0 && inner > 0 {
		scale = inner / w
	}
	return viewport{
		bounds: bounds,
		scale:  scale,
		width:  width,
		height: int(math.Ceil(h*scale)) + 2*margin,
	}
}

func (v viewport) point(p r2.Point) (int, int) {
	x := margin + (p.X-v.bounds.X.Lo)*v.scale
	y := margin + (v.bounds.Y.Hi-p.Y)*v.scale
	return int(math.Round(x)), int(math.Round(y))
}

func (v viewport) points(pts []r2.Point) ([]int, []int) {
	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = v.point(p)
	}
	return xs, ys
}

func (v viewport) length(d float64) int {
	return max(1, int(math.Round(d*v.scale)))
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func start(w io.Writer, bounds r2.Rect, width int) (*svg.SVG, viewport, *errWriter) {
	ew := &errWriter{w: w}
	vp := newViewport(bounds, width)
	canvas := svg.New(ew)
	canvas.Start(vp.width, vp.height)
	canvas.Rect(0, 0, vp.width, vp.height, backgroundStyle)
	return canvas, vp, ew
}

// Diagram draws the cells and sites of d scaled to the given width in pixels.
func Diagram(w io.Writer, d *voronoi.Diagram, width int) error {
	canvas, vp, ew := start(w, d.Boundary.Bounds(), width)

	for i := range d.NumCells() {
		c, err := d.Cell(i)
		if err != nil {
			return err
		}
		xs, ys := vp.points(c.Polygon())
		canvas.Polygon(xs, ys, cellStyle)
	}
	xs, ys := vp.points(d.Boundary)
	canvas.Polygon(xs, ys, boundaryStyle)
	for _, p := range d.Sites {
		x, y := vp.point(p)
		canvas.Circle(x, y, 3, siteStyle)
	}
	canvas.End()
	return ew.err
}

// Snapshot draws one moment of the sweep: the edges traced so far, the beach
// line, the sweep line and the last circle event.
func Snapshot(w io.Writer, s *voronoi.Snapshot, sites []r2.Point, boundary voronoi.Polygon, width int) error {
	bounds := boundary.Bounds()
	canvas, vp, ew := start(w, bounds, width)

	xs, ys := vp.points(boundary)
	canvas.Polygon(xs, ys, boundaryStyle)

	for _, e := range s.Edges {
		x1, y1 := vp.point(e.A)
		x2, y2 := vp.point(e.B)
		canvas.Line(x1, y1, x2, y2, edgeStyle)
	}
	for _, p := range s.Vertices {
		x, y := vp.point(p)
		canvas.Circle(x, y, 2, vertexStyle)
	}

	if !math.IsInf(s.SweepY, 0) {
		drawBeachLine(canvas, vp, s, sites)
		if s.SweepY >= bounds.Y.Lo && s.SweepY <= bounds.Y.Hi {
			x1, y := vp.point(r2.Point{X: bounds.X.Lo, Y: s.SweepY})
			x2, _ := vp.point(r2.Point{X: bounds.X.Hi, Y: s.SweepY})
			canvas.Line(x1, y, x2, y, sweepStyle)
		}
	}
	for _, bp := range s.Breakpoints {
		if bounds.ContainsPoint(bp.Point) {
			x, y := vp.point(bp.Point)
			canvas.Circle(x, y, 2, breakpointStyle)
		}
	}
	if e := s.Event; e != nil && e.Kind == "circle" {
		x, y := vp.point(e.Center)
		canvas.Circle(x, y, vp.length(e.Radius), circleStyle)
	}

	for _, p := range sites {
		x, y := vp.point(p)
		// точки ниже линии заметания еще не обработаны
		if p.Y < s.SweepY {
			canvas.Circle(x, y, 3, pendingStyle)
		} else {
			canvas.Circle(x, y, 3, siteStyle)
		}
	}
	canvas.End()
	return ew.err
}

const samplesPerArc = 32

func drawBeachLine(canvas *svg.SVG, vp viewport, s *voronoi.Snapshot, sites []r2.Point) {
	bounds := vp.bounds
	for _, arc := range s.Arcs {
		site := sites[arc.Site]
		lo := math.Max(arc.Left, bounds.X.Lo)
		hi := math.Min(arc.Right, bounds.X.Hi)
		if lo > hi {
			continue
		}
		if site.Y == s.SweepY {
			// вырожденная дуга: вертикальный отрезок из точки
			x, y1 := vp.point(site)
			_, y2 := vp.point(r2.Point{X: site.X, Y: bounds.Y.Hi})
			canvas.Line(x, y1, x, y2, beachStyle)
			continue
		}

		var pts []r2.Point
		for k := range samplesPerArc + 1 {
			x := lo + (hi-lo)*float64(k)/samplesPerArc
			dx := x - site.X
			y := (dx*dx + site.Y*site.Y - s.SweepY*s.SweepY) / (2 * (site.Y - s.SweepY))
			pts = append(pts, r2.Point{X: x, Y: math.Min(y, bounds.Y.Hi)})
		}
		xs, ys := vp.points(pts)
		canvas.Polyline(xs, ys, beachStyle)
	}
}
