// Package voronoi builds Voronoi diagrams of planar sites with Fortune's sweep
// and clips them to a convex polygon. The result is a half-edge subdivision
// with one counter-clockwise cell per site.
package voronoi

import (
	"math"
	"slices"

	"github.com/golang/geo/r2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const defaultRelativeEps = 1e-9

// Voronoi is a sweep in progress. It is not safe for concurrent use.
type Voronoi struct {
	sites    []r2.Point
	boundary Polygon

	log      *zap.Logger
	debug    bool
	observer Observer
	eps      float64

	queue *eventQueue
	beach *beachLine
	dcel  *subdivision

	sweep   float64
	step    int
	last    int
	circles int
	swept   bool

	diagram *Diagram
	err     error
}

// Build computes the Voronoi diagram of sites clipped to boundary.
// The cell of sites[i] has index i.
func Build(sites []r2.Point, boundary Polygon, opts ...Option) (*Diagram, error) {
	v, err := New(sites, boundary, opts...)
	if err != nil {
		return nil, err
	}
	return v.Finish()
}

// New validates the input and prepares a sweep that can be advanced with Step.
func New(sites []r2.Point, boundary Polygon, opts ...Option) (*Voronoi, error) {
	o := options{logger: zap.NewNop()}
	for _, set := range opts {
		if err := set(&o); err != nil {
			return nil, err
		}
	}
	if err := validate(sites, boundary); err != nil {
		return nil, err
	}

	v := &Voronoi{
		sites:    slices.Clone(sites),
		boundary: boundary.CCW(),
		log:      o.logger,
		debug:    o.logger.Core().Enabled(zap.DebugLevel),
		observer: o.observer,
		eps:      o.eps,
		last:     nilIndex,
	}
	if v.eps == 0 {
		v.eps = defaultRelativeEps * extent(v.boundary.Bounds())
	}
	v.queue = newEventQueue(2 * len(sites))
	v.beach = newBeachLine(v.sites)
	v.dcel = newSubdivision(len(sites))
	for i, p := range v.sites {
		v.queue.pushSite(i, p)
	}
	v.sweep = math.Inf(1)

	v.log.Info("[f] Алгоритм Форчуна запущен",
		zap.Int("sites", len(sites)),
		zap.Int("boundary", len(v.boundary)),
		zap.Float64("eps", v.eps))
	return v, nil
}

func extent(r r2.Rect) float64 {
	return max(r.X.Length(), r.Y.Length(),
		math.Abs(r.X.Lo), math.Abs(r.X.Hi), math.Abs(r.Y.Lo), math.Abs(r.Y.Hi))
}

// validate collects every problem with the input.
func validate(sites []r2.Point, boundary Polygon) error {
	var err error
	if len(sites) == 0 {
		err = multierr.Append(err, &DegenerateInputError{Index: -1, Reason: "no sites"})
	}
	finite := true
	for i, p := range sites {
		if !isFinite(p) {
			finite = false
			err = multierr.Append(err, &DegenerateInputError{Index: i, Reason: "non-finite coordinate"})
		}
	}
	if finite {
		err = multierr.Append(err, checkDuplicates(sites))
	}

	if cerr := boundary.checkConvex(); cerr != nil {
		return multierr.Append(err, cerr)
	}
	if finite {
		for i, p := range sites {
			if !boundary.Contains(p) {
				err = multierr.Append(err, &SiteOutsideBoundaryError{Index: i, Point: p})
			}
		}
	}
	return err
}

func checkDuplicates(sites []r2.Point) error {
	order := make([]int, len(sites))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmpFloat(sites[a].X, sites[b].X); c != 0 {
			return c
		}
		if c := cmpFloat(sites[a].Y, sites[b].Y); c != 0 {
			return c
		}
		return a - b
	})
	var err error
	for k := 1; k < len(order); k++ {
		a, b := order[k-1], order[k]
		if sites[a] == sites[b] {
			err = multierr.Append(err, &DuplicateSiteError{First: a, Second: b, Point: sites[a]})
		}
	}
	return err
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SweepY returns the current position of the sweep line; +Inf before the first step.
func (v *Voronoi) SweepY() float64 {
	return v.sweep
}

// Circles returns the number of circle events processed so far.
func (v *Voronoi) Circles() int {
	return v.circles
}

// Step processes the next valid event. It returns true once the queue is
// exhausted; after that, Finish clips the result.
func (v *Voronoi) Step() (bool, error) {
	if v.err != nil {
		return false, v.err
	}
	if v.swept {
		return true, nil
	}

	id, ok := v.queue.pop()
	if !ok {
		v.swept = true
		v.log.Info("[f] Заметание завершено",
			zap.Int("steps", v.step),
			zap.Int("circles", v.circles),
			zap.Int("vertices", len(v.dcel.vertices)))
		v.notify(SweepFinished)
		return true, nil
	}

	e := v.queue.events[id]
	v.sweep = e.point.Y
	v.step++

	var err error
	switch e.kind {
	case siteEvent:
		err = v.handleSite(e)
	case circleEvent:
		err = v.handleCircle(e)
	}
	if err != nil {
		v.err = err
		v.log.Error("[f] Сбой обработки события", zap.Int("step", v.step), zap.Error(err))
		return false, err
	}
	v.last = id

	switch e.kind {
	case siteEvent:
		v.notify(SiteEventProcessed)
	case circleEvent:
		v.notify(CircleEventProcessed)
	}
	return false, nil
}

// Finish runs the remaining events, clips the diagram to the boundary and returns it.
func (v *Voronoi) Finish() (*Diagram, error) {
	if v.diagram != nil {
		return v.diagram, nil
	}
	for {
		done, err := v.Step()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}

	d, err := v.clip()
	if err != nil {
		v.err = err
		v.log.Error("[f] Сбой отсечения", zap.Error(err))
		return nil, err
	}
	v.diagram = d
	v.log.Info("[f] Диаграмма построена",
		zap.Int("cells", len(d.CellEdges)),
		zap.Int("vertices", len(d.Vertices)),
		zap.Int("halfEdges", len(d.HalfEdges)))
	v.notify(ClippingFinished)
	return d, nil
}

func (v *Voronoi) handleSite(e event) error {
	p := e.site
	site := v.sites[p]
	if v.debug {
		v.log.Debug("[f-site] Событие точки", zap.Int("site", p), zap.Float64("x", site.X), zap.Float64("y", site.Y))
	}

	if v.beach.empty() {
		v.beach.root = v.beach.newLeaf(p)
		return nil
	}

	q := v.beach.locate(site.X, v.sweep)
	if q == nilIndex {
		return unreachable("site event", "no arc above site %d", p)
	}
	v.dropCircle(q)
	qsite := v.beach.nodes[q].site

	// первая строка точек: дуга q еще вырождена в вертикальный луч
	if v.sites[qsite].Y == site.Y {
		var h int
		if site.X > v.sites[qsite].X {
			h, _ = v.dcel.addEdge(qsite, p)
		} else {
			h, _ = v.dcel.addEdge(p, qsite)
		}
		pleaf := v.beach.splitTwo(q, p, h)
		v.checkCircle(v.beach.nodes[pleaf].prev)
		v.checkCircle(v.beach.nodes[pleaf].next)
		return nil
	}

	hq, hp := v.dcel.addEdge(qsite, p)
	_, qright := v.beach.splitThree(q, p, hq, hp)
	v.checkCircle(q)
	v.checkCircle(qright)
	return nil
}
