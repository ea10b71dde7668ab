package voronoi

import (
	"math"

	"go.uber.org/zap"
)

// handleCircle removes an arc that has shrunk to a point and starts the edge
// between its neighbours at the new vertex.
func (v *Voronoi) handleCircle(e event) error {
	arc := e.arc
	node := v.beach.nodes[arc]
	if !node.isLeaf() || node.prev == nilIndex || node.next == nilIndex {
		return unreachable("circle event", "arc %d has no neighbours", arc)
	}
	prev, next := node.prev, node.next
	alpha, beta, gamma := v.beach.nodes[prev].site, node.site, v.beach.nodes[next].site
	if e.triple != [3]int{alpha, beta, gamma} {
		return unreachable("circle event", "arc triple %v changed to %v", e.triple, [3]int{alpha, beta, gamma})
	}
	if v.debug {
		v.log.Debug("[f-circle] Событие круга",
			zap.Int("arc", beta),
			zap.Float64("x", e.center.X),
			zap.Float64("y", e.center.Y),
			zap.Float64("r", e.radius))
	}

	left, right := v.beach.boundingBreakpoints(arc)
	if left == nilIndex || right == nilIndex {
		return unreachable("circle event", "arc %d is missing a breakpoint", arc)
	}
	a1 := v.beach.nodes[left].edge
	b2 := v.beach.nodes[right].edge

	// три ячейки сходятся в новой вершине
	vertex := v.dcel.addVertex(e.center)
	v.dcel.halfEdges[a1].Origin = vertex
	v.dcel.halfEdges[b2].Origin = vertex
	ha, hg := v.dcel.addEdge(alpha, gamma)
	v.dcel.halfEdges[hg].Origin = vertex

	v.dcel.link(v.dcel.twin(a1), b2)
	v.dcel.link(v.dcel.twin(b2), hg)
	v.dcel.link(ha, a1)
	v.circles++

	v.dropCircle(prev)
	v.dropCircle(next)
	v.beach.remove(arc, ha)

	v.checkCircle(prev)
	v.checkCircle(next)
	return nil
}

// dropCircle invalidates the pending circle event of an arc, if any.
func (v *Voronoi) dropCircle(arc int) {
	if arc == nilIndex {
		return
	}
	v.queue.invalidate(v.beach.nodes[arc].event)
	v.beach.nodes[arc].event = nilIndex
}

// checkCircle schedules the disappearance of arc if its neighbours converge on it.
func (v *Voronoi) checkCircle(arc int) {
	if arc == nilIndex {
		return
	}
	v.dropCircle(arc)
	node := v.beach.nodes[arc]
	if node.prev == nilIndex || node.next == nilIndex {
		return
	}
	triple := [3]int{v.beach.nodes[node.prev].site, node.site, v.beach.nodes[node.next].site}
	if triple[0] == triple[2] {
		return
	}
	a, b, c := v.sites[triple[0]], v.sites[triple[1]], v.sites[triple[2]]
	// дуги сходятся только при обходе по часовой стрелке
	if orient(a, b, c) >= 0 {
		return
	}
	center, radius, ok := circumcircle(a, b, c)
	if !ok {
		return
	}
	y := center.Y - radius
	if y > v.sweep+v.eps {
		if v.debug {
			v.log.Debug("[f-circle] Круг выше линии заметания", zap.Ints("triple", triple[:]), zap.Float64("y", y))
		}
		return
	}
	y = math.Min(y, v.sweep)
	v.beach.nodes[arc].event = v.queue.pushCircle(arc, triple, center, radius, y)
}
