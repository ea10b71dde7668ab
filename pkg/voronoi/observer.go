package voronoi

import (
	"math"

	"github.com/golang/geo/r2"
)

// Notification tells an observer which stage has just completed.
type Notification int

const (
	SiteEventProcessed Notification = iota
	CircleEventProcessed
	SweepFinished
	ClippingFinished
)

func (n Notification) String() string {
	switch n {
	case SiteEventProcessed:
		return "site-event-processed"
	case CircleEventProcessed:
		return "circle-event-processed"
	case SweepFinished:
		return "sweep-finished"
	case ClippingFinished:
		return "clipping-finished"
	}
	return "unknown"
}

// Observer receives read-only snapshots of the sweep. Notify is called
// synchronously between events; the snapshot is not reused afterwards.
type Observer interface {
	Notify(n Notification, s *Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(n Notification, s *Snapshot)

func (f ObserverFunc) Notify(n Notification, s *Snapshot) {
	f(n, s)
}

// EventInfo describes the last processed event.
type EventInfo struct {
	Kind string
	// Point is the event position on the sweep line.
	Point r2.Point
	// Site is the site of a site event, or the disappearing arc's site of a circle event.
	Site   int
	Center r2.Point
	Radius float64
}

// ArcInfo is one arc of the beach line with its current x-extent.
type ArcInfo struct {
	Site        int
	Left, Right float64
}

// BreakpointInfo is the meeting point of two neighbouring arcs.
type BreakpointInfo struct {
	Left, Right int
	Point       r2.Point
}

// Segment is a finite piece of an edge, known so far.
type Segment struct {
	A, B  r2.Point
	Cells [2]int
}

// Snapshot is a copy of the sweep state at one moment.
type Snapshot struct {
	Step        int
	SweepY      float64
	Event       *EventInfo
	Arcs        []ArcInfo
	Breakpoints []BreakpointInfo
	Vertices    []r2.Point
	Edges       []Segment
	Pending     int
}

func (v *Voronoi) notify(n Notification) {
	if v.observer == nil {
		return
	}
	v.observer.Notify(n, v.Snapshot())
}

// Snapshot captures the current state of the sweep.
func (v *Voronoi) Snapshot() *Snapshot {
	s := &Snapshot{
		Step:     v.step,
		SweepY:   v.sweep,
		Vertices: append([]r2.Point(nil), v.dcel.vertices...),
		Pending:  v.queue.pending(),
	}
	if v.last != nilIndex {
		e := v.queue.events[v.last]
		info := &EventInfo{Kind: e.kind.String(), Point: e.point, Site: e.site}
		if e.kind == circleEvent {
			info.Site = e.triple[1]
			info.Center = e.center
			info.Radius = e.radius
		}
		s.Event = info
	}

	// текущие позиции точек излома, по ребру, которое они рисуют
	traced := make(map[int]r2.Point)
	if v.diagram == nil && !math.IsInf(v.sweep, 0) {
		for _, arc := range v.beach.arcs() {
			node := v.beach.nodes[arc]
			lo, hi := v.beach.arcBounds(arc, v.sweep)
			s.Arcs = append(s.Arcs, ArcInfo{Site: node.site, Left: lo, Right: hi})
			if node.next == nilIndex {
				continue
			}
			_, right := v.beach.boundingBreakpoints(arc)
			bp := v.beach.nodes[right]
			p := breakpointPoint(v.sites[bp.lsite], v.sites[bp.rsite], v.sweep)
			s.Breakpoints = append(s.Breakpoints, BreakpointInfo{Left: bp.lsite, Right: bp.rsite, Point: p})
			if isFinite(p) {
				traced[bp.edge] = p
			}
		}
	}

	he := v.dcel.halfEdges
	for h := range he {
		t := he[h].Twin
		if t < h {
			continue
		}
		a, okA := v.endpoint(h, traced)
		b, okB := v.endpoint(t, traced)
		if okA && okB {
			s.Edges = append(s.Edges, Segment{A: a, B: b, Cells: [2]int{he[h].Cell, he[t].Cell}})
		}
	}
	return s
}

func (v *Voronoi) endpoint(h int, traced map[int]r2.Point) (r2.Point, bool) {
	if o := v.dcel.halfEdges[h].Origin; o != NoIndex {
		return v.dcel.vertices[o], true
	}
	p, ok := traced[h]
	return p, ok
}
