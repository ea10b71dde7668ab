package voronoi

import (
	"math"

	"github.com/golang/geo/r2"
)

// Polygon is a closed polygon given by its vertices; the last vertex connects to the first.
// Either orientation is accepted by Build.
type Polygon []r2.Point

// NewBoundingBox returns the axis-aligned rectangle [xl, xr] x [yb, yt]
// as a counter-clockwise polygon starting at the lower-left corner.
func NewBoundingBox(xl, xr, yb, yt float64) Polygon {
	v := r2.RectFromPoints(r2.Point{X: xl, Y: yb}, r2.Point{X: xr, Y: yt}).Vertices()
	return Polygon(v[:])
}

// SignedArea is positive for counter-clockwise polygons.
func (p Polygon) SignedArea() float64 {
	var sum float64
	for i := range p {
		sum += p[i].Cross(p[(i+1)%len(p)])
	}
	return sum / 2
}

func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Bounds returns the smallest rectangle containing every vertex.
func (p Polygon) Bounds() r2.Rect {
	return r2.RectFromPoints(p...)
}

// CCW returns a copy oriented counter-clockwise, with repeated and collinear vertices dropped.
func (p Polygon) CCW() Polygon {
	out := make(Polygon, 0, len(p))
	for _, v := range p {
		if len(out) > 0 && out[len(out)-1] == v {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}

	// коллинеарные вершины не дают ребра, но ломают параметризацию периметра
	for changed := true; changed && len(out) >= 3; {
		changed = false
		for i := range out {
			prev := out[(i+len(out)-1)%len(out)]
			next := out[(i+1)%len(out)]
			if orient(prev, out[i], next) == 0 {
				out = append(out[:i], out[i+1:]...)
				changed = true
				break
			}
		}
	}

	if out.SignedArea() < 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// IsConvex reports whether the polygon is a simple convex polygon with non-zero area.
func (p Polygon) IsConvex() bool {
	return p.checkConvex() == nil
}

func (p Polygon) checkConvex() *NonConvexBoundaryError {
	for i, v := range p {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			return &NonConvexBoundaryError{Index: i, Reason: "non-finite coordinate"}
		}
	}
	q := p.CCW()
	if len(q) < 3 {
		return &NonConvexBoundaryError{Index: -1, Reason: "fewer than 3 distinct non-collinear vertices"}
	}
	if q.SignedArea() == 0 {
		return &NonConvexBoundaryError{Index: -1, Reason: "zero area"}
	}

	var turning float64
	for i := range q {
		a := q[(i+len(q)-1)%len(q)]
		b := q[i]
		c := q[(i+1)%len(q)]
		if orient(a, b, c) < 0 {
			return &NonConvexBoundaryError{Index: indexOf(p, b), Reason: "reflex vertex"}
		}
		in, out := b.Sub(a), c.Sub(b)
		turning += math.Atan2(in.Cross(out), in.Dot(out))
	}
	// звезда имеет все левые повороты, но обходит центр дважды
	if math.Abs(turning-2*math.Pi) > 1e-6 {
		return &NonConvexBoundaryError{Index: -1, Reason: "self-intersecting outline"}
	}
	return nil
}

// Contains reports whether x lies inside or on the boundary of a convex polygon.
func (p Polygon) Contains(x r2.Point) bool {
	q := p.CCW()
	if len(q) < 3 {
		return false
	}
	for i := range q {
		if orient(q[i], q[(i+1)%len(q)], x) < 0 {
			return false
		}
	}
	return true
}

func indexOf(p Polygon, v r2.Point) int {
	for i := range p {
		if p[i] == v {
			return i
		}
	}
	return -1
}
