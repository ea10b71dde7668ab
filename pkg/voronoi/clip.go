package voronoi

import (
	"math"
	"slices"

	"github.com/golang/geo/r2"
	"go.uber.org/zap"
)

// clipper bounds the sweep output by the boundary polygon and closes the cells.
type clipper struct {
	v     *Voronoi
	s     *subdivision
	poly  Polygon
	eps   float64
	dead  []bool
	moved []bool
}

// boundarySlot is a distinct point on the boundary where cell chains meet or
// the outline turns.
type boundarySlot struct {
	param  float64
	point  r2.Point
	vertex int
}

func (v *Voronoi) clip() (*Diagram, error) {
	c := &clipper{
		v:     v,
		s:     v.dcel,
		poly:  v.boundary,
		eps:   v.eps,
		dead:  make([]bool, len(v.dcel.halfEdges)),
		moved: make([]bool, len(v.dcel.halfEdges)),
	}
	c.clipEdges()
	c.relink()
	if err := c.closeCells(); err != nil {
		return nil, err
	}
	final, cells, err := c.compact()
	if err != nil {
		return nil, err
	}
	v.dcel = final
	return &Diagram{
		Sites:     v.sites,
		Vertices:  final.vertices,
		HalfEdges: final.halfEdges,
		CellEdges: cells,
		Boundary:  v.boundary,
		eps:       v.eps,
	}, nil
}

func (c *clipper) isDead(h int) bool {
	return h < len(c.dead) && c.dead[h]
}

// direction points from the destination of h towards its origin at infinity.
func (c *clipper) direction(h int) r2.Point {
	he := c.s.halfEdges
	own := c.v.sites[he[h].Cell]
	other := c.v.sites[he[he[h].Twin].Cell]
	return other.Sub(own).Ortho().Mul(-1)
}

// distanceInside returns the smallest signed distance from p to the boundary edges;
// negative outside.
func (c *clipper) distanceInside(p r2.Point) float64 {
	d := math.Inf(1)
	for i := range c.poly {
		a := c.poly[i]
		e := c.poly[(i+1)%len(c.poly)].Sub(a)
		d = math.Min(d, e.Cross(p.Sub(a))/e.Norm())
	}
	return d
}

// cyrusBeck narrows [lo, hi] on the line base + t*d to the part inside the boundary.
func (c *clipper) cyrusBeck(base, d r2.Point, lo, hi float64) (float64, float64, bool) {
	for i := range c.poly {
		a := c.poly[i]
		n := c.poly[(i+1)%len(c.poly)].Sub(a).Ortho()
		num := n.Dot(base.Sub(a))
		den := n.Dot(d)
		if den == 0 {
			if num < 0 {
				return lo, hi, false
			}
			continue
		}
		t := -num / den
		if den > 0 {
			lo = math.Max(lo, t)
		} else {
			hi = math.Min(hi, t)
		}
		if lo > hi {
			return lo, hi, false
		}
	}
	return lo, hi, true
}

func (c *clipper) clipEdges() {
	s := c.s
	inside := make([]bool, len(s.vertices))
	for i, p := range s.vertices {
		inside[i] = c.distanceInside(p) >= -c.eps
	}

	removed := 0
	for h := range s.halfEdges {
		t := s.halfEdges[h].Twin
		if t < h {
			continue
		}
		a, b := s.halfEdges[h].Origin, s.halfEdges[t].Origin
		keepA := a != NoIndex && inside[a]
		keepB := b != NoIndex && inside[b]
		if keepA && keepB {
			continue
		}

		// ребро: отрезок, луч или прямая, параметр растет от начала h к концу
		var base, d r2.Point
		var lo, hi float64
		switch {
		case a != NoIndex && b != NoIndex:
			base, d, lo, hi = s.vertices[a], s.vertices[b].Sub(s.vertices[a]), 0, 1
		case b != NoIndex:
			base, d, lo, hi = s.vertices[b], c.direction(h).Mul(-1), math.Inf(-1), 0
		case a != NoIndex:
			base, d, lo, hi = s.vertices[a], c.direction(t), 0, math.Inf(1)
		default:
			l, r := c.v.sites[s.halfEdges[h].Cell], c.v.sites[s.halfEdges[t].Cell]
			base, d, lo, hi = l.Add(r).Mul(0.5), c.direction(h).Mul(-1), math.Inf(-1), math.Inf(1)
		}

		tlo, thi, ok := c.cyrusBeck(base, d, lo, hi)
		switch {
		case keepA:
			tlo = lo
			if !ok || thi < tlo {
				thi = tlo
			}
		case keepB:
			thi = hi
			if !ok || tlo > thi {
				tlo = thi
			}
		case !ok || (thi-tlo)*d.Norm() < c.eps:
			c.dead[h], c.dead[t] = true, true
			removed++
			continue
		}

		if !keepA {
			s.halfEdges[h].Origin = s.addVertex(base.Add(d.Mul(tlo)))
			c.moved[h] = true
		}
		if !keepB {
			s.halfEdges[t].Origin = s.addVertex(base.Add(d.Mul(thi)))
			c.moved[t] = true
		}
	}
	if c.v.debug {
		c.v.log.Debug("[f-clip] Ребра отсечены", zap.Int("removed", removed))
	}
}

// relink drops next/prev links through vertices that were cut away.
func (c *clipper) relink() {
	he := c.s.halfEdges
	for h := range he {
		if c.dead[h] {
			he[h].Next, he[h].Prev = NoIndex, NoIndex
			continue
		}
		if n := he[h].Next; n != NoIndex && (c.dead[n] || c.moved[he[h].Twin]) {
			he[h].Next = NoIndex
		}
		he[h].Prev = NoIndex
	}
	for h := range he {
		if n := he[h].Next; !c.dead[h] && n != NoIndex {
			he[n].Prev = h
		}
	}
}

// perimeterParam maps a point near the boundary to i + t, where i is the
// nearest boundary edge and t the position along it.
func (c *clipper) perimeterParam(p r2.Point) float64 {
	best, param := math.Inf(1), 0.0
	n := len(c.poly)
	for i := range c.poly {
		a, b := c.poly[i], c.poly[(i+1)%n]
		t := projectOnSegment(a, b, p)
		if d := a.Add(b.Sub(a).Mul(t)).Sub(p).Norm(); d < best {
			best, param = d, float64(i)+t
		}
	}
	if param >= float64(n) {
		param -= float64(n)
	}
	return param
}

// slots orders the boundary corners and chain vertices along the perimeter
// and merges those closer than eps. It returns the slots and the slot of every chain vertex.
func (c *clipper) slots(chainVertices []int) ([]boundarySlot, map[int]int) {
	type entry struct {
		param  float64
		point  r2.Point
		vertex int
	}
	entries := make([]entry, 0, len(c.poly)+len(chainVertices))
	for i, p := range c.poly {
		entries = append(entries, entry{param: float64(i), point: p, vertex: nilIndex})
	}
	for _, vtx := range chainVertices {
		p := c.s.vertices[vtx]
		entries = append(entries, entry{param: c.perimeterParam(p), point: p, vertex: vtx})
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmpFloat(a.param, b.param)
	})

	var groups [][]entry
	for _, e := range entries {
		if k := len(groups); k > 0 && groups[k-1][0].point.Sub(e.point).Norm() <= c.eps {
			groups[k-1] = append(groups[k-1], e)
			continue
		}
		groups = append(groups, []entry{e})
	}
	if k := len(groups); k > 1 && groups[k-1][0].point.Sub(groups[0][0].point).Norm() <= c.eps {
		groups[0] = append(groups[k-1], groups[0]...)
		groups = groups[:k-1]
	}

	out := make([]boundarySlot, len(groups))
	slotOf := make(map[int]int, len(chainVertices))
	merged := make(map[int]int)
	for i, g := range groups {
		slot := boundarySlot{param: g[0].param, point: g[0].point, vertex: nilIndex}
		corner := false
		for _, e := range g {
			if e.vertex == nilIndex {
				corner = true
				slot.point = e.point
				continue
			}
			if slot.vertex == nilIndex {
				slot.vertex = e.vertex
			} else if e.vertex != slot.vertex {
				merged[e.vertex] = slot.vertex
			}
			slotOf[e.vertex] = i
		}
		if corner && slot.vertex != nilIndex {
			c.s.vertices[slot.vertex] = slot.point
		} else if slot.vertex != nilIndex {
			slot.point = c.s.vertices[slot.vertex]
		}
		out[i] = slot
	}

	if len(merged) > 0 {
		for h := range c.s.halfEdges {
			if rep, ok := merged[c.s.halfEdges[h].Origin]; ok && !c.isDead(h) {
				c.s.halfEdges[h].Origin = rep
			}
		}
	}
	return out, slotOf
}

// closeCells walks the boundary counter-clockwise from every chain end to the
// next chain start of the same cell, adding boundary edges on the way. The
// outer twins of those edges form the outside face.
func (c *clipper) closeCells() error {
	s := c.s
	var ends, starts []int
	seen := make(map[int]bool)
	var chainVertices []int
	addVertex := func(vtx int) {
		if !seen[vtx] {
			seen[vtx] = true
			chainVertices = append(chainVertices, vtx)
		}
	}
	for h := range s.halfEdges {
		if c.dead[h] {
			continue
		}
		if s.halfEdges[h].Next == NoIndex {
			ends = append(ends, h)
			addVertex(s.destination(h))
		}
		if s.halfEdges[h].Prev == NoIndex {
			starts = append(starts, h)
			addVertex(s.halfEdges[h].Origin)
		}
	}

	slots, slotOf := c.slots(chainVertices)
	m := len(slots)

	slotVertex := func(k int) int {
		if slots[k].vertex == nilIndex {
			slots[k].vertex = s.addVertex(slots[k].point)
		}
		return slots[k].vertex
	}
	outer := make([]int, m)
	for k := range outer {
		outer[k] = nilIndex
	}
	// piece adds the boundary edge from slot k to slot k+1 for cell and returns its inner half-edge.
	piece := func(cell, k int) int {
		inner, out := s.addEdge(cell, OuterCell)
		s.halfEdges[inner].Origin = slotVertex(k)
		s.halfEdges[out].Origin = slotVertex((k + 1) % m)
		outer[k] = out
		return inner
	}

	if len(c.v.sites) == 1 && len(ends) == 0 {
		first := nilIndex
		prev := nilIndex
		for k := range m {
			h := piece(0, k)
			if first == nilIndex {
				first = h
			} else {
				s.link(prev, h)
			}
			prev = h
		}
		s.link(prev, first)
	} else {
		startsAt := make(map[int][]int)
		for _, h := range starts {
			k := slotOf[s.halfEdges[h].Origin]
			startsAt[k] = append(startsAt[k], h)
		}
		used := make(map[int]bool, len(starts))

		for _, e := range ends {
			cell := s.halfEdges[e].Cell
			from := slotOf[s.destination(e)]

			start, to := nilIndex, from
			for step := 0; step <= m && start == nilIndex; step++ {
				to = (from + step) % m
				for _, h := range startsAt[to] {
					if !used[h] && s.halfEdges[h].Cell == cell {
						start = h
						break
					}
				}
			}
			if start == nilIndex {
				return unreachable("close cells", "cell %d has no chain start after slot %d", cell, from)
			}
			used[start] = true

			last := e
			for k := from; k != to; k = (k + 1) % m {
				h := piece(cell, k)
				s.link(last, h)
				last = h
			}
			s.link(last, start)
		}
	}

	for k := range m {
		if outer[k] == nilIndex {
			return unreachable("close cells", "boundary between slots %d and %d belongs to no cell", k, (k+1)%m)
		}
	}
	for k := range m {
		s.link(outer[k], outer[(k+m-1)%m])
	}
	return nil
}

// compact drops removed half-edges and unused vertices and renumbers the rest.
func (c *clipper) compact() (*subdivision, []int, error) {
	s := c.s
	heMap := make([]int, len(s.halfEdges))
	vMap := make([]int, len(s.vertices))
	for i := range vMap {
		vMap[i] = nilIndex
	}
	out := &subdivision{}
	for h := range s.halfEdges {
		heMap[h] = nilIndex
		if c.isDead(h) {
			continue
		}
		heMap[h] = len(out.halfEdges)
		out.halfEdges = append(out.halfEdges, s.halfEdges[h])
		if o := s.halfEdges[h].Origin; o != NoIndex && vMap[o] == nilIndex {
			vMap[o] = len(out.vertices)
			out.vertices = append(out.vertices, s.vertices[o])
		}
	}

	remap := func(idx int, table []int) int {
		if idx == NoIndex {
			return NoIndex
		}
		return table[idx]
	}
	cells := make([]int, len(c.v.sites))
	for i := range cells {
		cells[i] = nilIndex
	}
	for h := range out.halfEdges {
		e := &out.halfEdges[h]
		e.Origin = remap(e.Origin, vMap)
		e.Twin = remap(e.Twin, heMap)
		e.Next = remap(e.Next, heMap)
		e.Prev = remap(e.Prev, heMap)
		if e.Origin == NoIndex || e.Twin == NoIndex || e.Next == NoIndex || e.Prev == NoIndex {
			return nil, nil, unreachable("compact", "half-edge %d is not fully linked", h)
		}
		if e.Cell != OuterCell && cells[e.Cell] == nilIndex {
			cells[e.Cell] = h
		}
	}
	for h, e := range out.halfEdges {
		if out.halfEdges[e.Next].Prev != h || out.halfEdges[e.Twin].Twin != h {
			return nil, nil, unreachable("compact", "half-edge %d has inconsistent links", h)
		}
	}
	for i, h := range cells {
		if h == nilIndex {
			return nil, nil, unreachable("compact", "cell %d has no edges", i)
		}
	}
	return out, cells, nil
}
