package voronoi

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Diagram is a Voronoi diagram clipped to a convex boundary, stored as a
// half-edge subdivision. Cell i belongs to Sites[i]; half-edges with Cell equal
// to OuterCell bound the outside of the boundary.
//
// The fields are exported for reading. Cell walks and OuterEdges panic if the
// Next links have been edited so that a cycle no longer closes.
type Diagram struct {
	Sites     []r2.Point
	Vertices  []r2.Point
	HalfEdges []HalfEdge
	// CellEdges holds one half-edge of every cell.
	CellEdges []int
	// Boundary is the clipping polygon in counter-clockwise order.
	Boundary Polygon

	eps float64
}

func (d *Diagram) NumCells() int {
	return len(d.CellEdges)
}

// Cell returns a view of the cell of site i.
// It returns an error if the index is out of range.
func (d *Diagram) Cell(i int) (Cell, error) {
	if i < 0 || i >= len(d.CellEdges) {
		return Cell{}, fmt.Errorf("voronoi: Cell: index %d out of range [0 %d)", i, len(d.CellEdges))
	}
	return Cell{idx: i, d: d}, nil
}

// Origin returns the start point of half-edge h.
func (d *Diagram) Origin(h int) r2.Point {
	return d.Vertices[d.HalfEdges[h].Origin]
}

// Destination returns the end point of half-edge h.
func (d *Diagram) Destination(h int) r2.Point {
	return d.Vertices[d.HalfEdges[d.HalfEdges[h].Twin].Origin]
}

// IsBoundary reports whether half-edge h lies on the clipping polygon.
func (d *Diagram) IsBoundary(h int) bool {
	return d.HalfEdges[h].Cell == OuterCell || d.HalfEdges[d.HalfEdges[h].Twin].Cell == OuterCell
}

// Edges returns every edge once as a segment, boundary edges included.
func (d *Diagram) Edges() [][2]r2.Point {
	out := make([][2]r2.Point, 0, len(d.HalfEdges)/2)
	for h, e := range d.HalfEdges {
		if e.Twin < h {
			continue
		}
		out = append(out, [2]r2.Point{d.Origin(h), d.Destination(h)})
	}
	return out
}

// VertexEdges returns the half-edges leaving vertex v.
func (d *Diagram) VertexEdges(v int) []int {
	var out []int
	for h, e := range d.HalfEdges {
		if e.Origin == v {
			out = append(out, h)
		}
	}
	return out
}

// OuterEdges returns the half-edges of the outside face, in order.
func (d *Diagram) OuterEdges() []int {
	for h, e := range d.HalfEdges {
		if e.Cell == OuterCell {
			return d.cycle(h)
		}
	}
	return nil
}

// Area returns the total area of all cells.
func (d *Diagram) Area() float64 {
	var sum float64
	for i := range d.CellEdges {
		sum += Cell{idx: i, d: d}.Area()
	}
	return sum
}

func (d *Diagram) cycle(start int) []int {
	out := []int{start}
	for h := d.HalfEdges[start].Next; h != start; h = d.HalfEdges[h].Next {
		out = append(out, h)
		if len(out) > len(d.HalfEdges) {
			panic(fmt.Sprintf("voronoi: half-edge cycle from %d does not close", start))
		}
	}
	return out
}

// Cell is a view of one cell of a Diagram.
type Cell struct {
	idx int
	d   *Diagram
}

func (c Cell) SiteIndex() int {
	return c.idx
}

func (c Cell) Site() r2.Point {
	return c.d.Sites[c.idx]
}

// HalfEdges returns the counter-clockwise cycle of half-edges bounding the cell.
func (c Cell) HalfEdges() []int {
	return c.d.cycle(c.d.CellEdges[c.idx])
}

// Polygon returns the cell outline counter-clockwise, without repeated points,
// starting from its lowest-x (then lowest-y) vertex.
func (c Cell) Polygon() Polygon {
	var pts Polygon
	for _, h := range c.HalfEdges() {
		p := c.d.Origin(h)
		if len(pts) > 0 && near(pts[len(pts)-1], p, c.d.eps) {
			continue
		}
		pts = append(pts, p)
	}
	for len(pts) > 1 && near(pts[0], pts[len(pts)-1], c.d.eps) {
		pts = pts[:len(pts)-1]
	}

	start := 0
	for i, p := range pts {
		s := pts[start]
		if p.X < s.X || (p.X == s.X && p.Y < s.Y) {
			start = i
		}
	}
	return append(pts[start:], pts[:start]...)
}

// Area returns the area of the cell.
func (c Cell) Area() float64 {
	var sum float64
	for _, h := range c.HalfEdges() {
		sum += c.d.Origin(h).Cross(c.d.Destination(h))
	}
	return math.Abs(sum) / 2
}

// Neighbors returns the indices of the cells sharing an edge with this one,
// in counter-clockwise order, without repeats.
func (c Cell) Neighbors() []int {
	var out []int
	seen := make(map[int]bool)
	for _, h := range c.HalfEdges() {
		n := c.d.HalfEdges[c.d.HalfEdges[h].Twin].Cell
		if n == OuterCell || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func near(a, b r2.Point, eps float64) bool {
	return a.Sub(b).Norm() <= eps
}
