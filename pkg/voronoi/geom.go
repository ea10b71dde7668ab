package voronoi

import (
	"math"
	"math/big"

	"github.com/golang/geo/r2"
)

// Bound on the rounding error of the float orientation determinant,
// relative to the magnitude of its two products.
const orientErrBound = 3.3306690738754716e-16

// orient returns +1 when a, b, c turn counter-clockwise, -1 when they turn
// clockwise and 0 when they are exactly collinear.
func orient(a, b, c r2.Point) int {
	l := (b.X - a.X) * (c.Y - a.Y)
	r := (b.Y - a.Y) * (c.X - a.X)
	det := l - r
	if math.Abs(det) > orientErrBound*(math.Abs(l)+math.Abs(r)) {
		if det > 0 {
			return 1
		}
		return -1
	}
	return exactOrient(a, b, c)
}

func exactOrient(a, b, c r2.Point) int {
	ax, ay := rat(a.X), rat(a.Y)
	bx := new(big.Rat).Sub(rat(b.X), ax)
	by := new(big.Rat).Sub(rat(b.Y), ay)
	cx := new(big.Rat).Sub(rat(c.X), ax)
	cy := new(big.Rat).Sub(rat(c.Y), ay)
	l := new(big.Rat).Mul(bx, cy)
	r := new(big.Rat).Mul(by, cx)
	return l.Cmp(r)
}

func rat(f float64) *big.Rat {
	return new(big.Rat).SetFloat64(f)
}

// circumcircle returns the center and radius of the circle through a, b and c.
// The center is computed in exact arithmetic and rounded once;
// ok is false for collinear points.
func circumcircle(a, b, c r2.Point) (center r2.Point, radius float64, ok bool) {
	ax, ay := rat(a.X), rat(a.Y)
	bx := new(big.Rat).Sub(rat(b.X), ax)
	by := new(big.Rat).Sub(rat(b.Y), ay)
	cx := new(big.Rat).Sub(rat(c.X), ax)
	cy := new(big.Rat).Sub(rat(c.Y), ay)

	d := new(big.Rat).Sub(new(big.Rat).Mul(bx, cy), new(big.Rat).Mul(by, cx))
	if d.Sign() == 0 {
		return r2.Point{}, 0, false
	}
	d.Add(d, d)

	hb := new(big.Rat).Add(new(big.Rat).Mul(bx, bx), new(big.Rat).Mul(by, by))
	hc := new(big.Rat).Add(new(big.Rat).Mul(cx, cx), new(big.Rat).Mul(cy, cy))

	ux := new(big.Rat).Sub(new(big.Rat).Mul(cy, hb), new(big.Rat).Mul(by, hc))
	ux.Quo(ux, d)
	uy := new(big.Rat).Sub(new(big.Rat).Mul(bx, hc), new(big.Rat).Mul(cx, hb))
	uy.Quo(uy, d)

	dx, _ := ux.Float64()
	dy, _ := uy.Float64()
	cxAbs, _ := ux.Add(ux, ax).Float64()
	cyAbs, _ := uy.Add(uy, ay).Float64()
	return r2.Point{X: cxAbs, Y: cyAbs}, math.Hypot(dx, dy), true
}

// breakpointX returns the x coordinate where the arc of l (on the left)
// meets the arc of r (on the right) when the sweep line is at y = sweep.
func breakpointX(l, r r2.Point, sweep float64) float64 {
	ly := l.Y - sweep
	ry := r.Y - sweep
	switch {
	case ly == 0 && ry == 0:
		return (l.X + r.X) / 2
	case ly == 0:
		return l.X
	case ry == 0:
		return r.X
	}

	// корни квадратного уравнения относительно l.X; выбираем тот,
	// где нижняя огибающая переходит с дуги l на дугу r
	rx := r.X - l.X
	a := ry - ly
	b := 2 * ly * rx
	c := ly * (ry*(ly-ry) - rx*rx)
	if a == 0 {
		return l.X + rx/2
	}
	sq := math.Sqrt(math.Max(0, b*b-4*a*c))
	var x float64
	if b >= 0 {
		x = 2 * c / (-b - sq)
	} else {
		x = (-b + sq) / (2 * a)
	}
	return l.X + x
}

// parabolaY returns the height of the arc of site at x for the given sweep position.
// It is +Inf when the site lies on the sweep line.
func parabolaY(site r2.Point, x, sweep float64) float64 {
	p := site.Y - sweep
	if p == 0 {
		return math.Inf(1)
	}
	dx := x - site.X
	return (dx*dx)/(2*p) + (site.Y+sweep)/2
}

// breakpointPoint returns the position of the breakpoint between l and r.
func breakpointPoint(l, r r2.Point, sweep float64) r2.Point {
	x := breakpointX(l, r, sweep)
	y := parabolaY(l, x, sweep)
	if math.IsInf(y, 0) {
		y = parabolaY(r, x, sweep)
	}
	return r2.Point{X: x, Y: y}
}

// projectOnSegment returns the parameter in [0, 1] of the point of ab nearest to x.
func projectOnSegment(a, b, x r2.Point) float64 {
	d := b.Sub(a)
	n := d.Dot(d)
	if n == 0 {
		return 0
	}
	t := x.Sub(a).Dot(d) / n
	return math.Max(0, math.Min(1, t))
}

func isFinite(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
