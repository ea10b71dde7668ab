package voronoi

import (
	"github.com/golang/geo/r2"
)

type eventKind uint8

const (
	siteEvent eventKind = iota
	circleEvent
)

func (k eventKind) String() string {
	switch k {
	case siteEvent:
		return "site"
	case circleEvent:
		return "circle"
	}
	return "unknown"
}

// event is either a site event or a circle event. Events live in an arena and
// are referenced by index; a circle event is never removed from the queue,
// only marked invalid.
type event struct {
	kind eventKind
	// point is the priority position: the site itself, or the lowest point of the circle.
	point r2.Point
	seq   int

	site int

	center r2.Point
	radius float64
	arc    int
	triple [3]int
	valid  bool
}

// eventQueue orders events by y descending, x ascending, sites before circles,
// then by insertion. It may hold invalidated circle events until they surface.
type eventQueue struct {
	events []event
	tree   *rbTree[int]
}

func newEventQueue(capacity int) *eventQueue {
	q := &eventQueue{events: make([]event, 0, capacity)}
	q.tree = newRBTree(q.less)
	return q
}

func (q *eventQueue) less(a, b int) bool {
	ea, eb := &q.events[a], &q.events[b]
	if ea.point.Y != eb.point.Y {
		return ea.point.Y > eb.point.Y
	}
	if ea.point.X != eb.point.X {
		return ea.point.X < eb.point.X
	}
	if ea.kind != eb.kind {
		return ea.kind == siteEvent
	}
	return ea.seq < eb.seq
}

func (q *eventQueue) pushSite(site int, p r2.Point) int {
	return q.push(event{kind: siteEvent, point: p, site: site, arc: nilIndex, valid: true})
}

func (q *eventQueue) pushCircle(arc int, triple [3]int, center r2.Point, radius, y float64) int {
	return q.push(event{
		kind:   circleEvent,
		point:  r2.Point{X: center.X, Y: y},
		site:   nilIndex,
		center: center,
		radius: radius,
		arc:    arc,
		triple: triple,
		valid:  true,
	})
}

func (q *eventQueue) push(e event) int {
	id := len(q.events)
	e.seq = id
	q.events = append(q.events, e)
	q.tree.Insert(id)
	return id
}

// pop returns the next valid event, discarding invalidated ones on the way.
func (q *eventQueue) pop() (int, bool) {
	for {
		id, ok := q.tree.PopFirst()
		if !ok {
			return nilIndex, false
		}
		if q.events[id].valid {
			return id, true
		}
	}
}

func (q *eventQueue) invalidate(id int) {
	if id != nilIndex {
		q.events[id].valid = false
	}
}

// pending counts the valid events still queued.
func (q *eventQueue) pending() int {
	n := 0
	q.tree.Each(func(id int) bool {
		if q.events[id].valid {
			n++
		}
		return true
	})
	return n
}

func (q *eventQueue) Len() int {
	return q.tree.Len()
}
