package voronoi

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/multierr"
)

// checkDiagram verifies the structural properties every built diagram must have.
func checkDiagram(t *testing.T, d *Diagram) {
	t.Helper()
	he := d.HalfEdges
	for h, e := range he {
		if e.Twin < 0 || e.Twin >= len(he) || he[e.Twin].Twin != h {
			t.Fatalf("half-edge %d: twin is not an involution", h)
		}
		if e.Cell == he[e.Twin].Cell {
			t.Fatalf("half-edge %d: both sides belong to cell %d", h, e.Cell)
		}
		if he[e.Next].Prev != h || he[e.Prev].Next != h {
			t.Fatalf("half-edge %d: next/prev disagree", h)
		}
		if he[e.Next].Cell != e.Cell {
			t.Fatalf("half-edge %d: next belongs to cell %d, want %d", h, he[e.Next].Cell, e.Cell)
		}
		if he[e.Next].Origin != he[e.Twin].Origin {
			t.Fatalf("half-edge %d: next does not start where it ends", h)
		}
	}

	perCell := make(map[int]int)
	for _, e := range he {
		perCell[e.Cell]++
	}
	for i := range d.NumCells() {
		if got := len(mustCell(t, d, i).HalfEdges()); got != perCell[i] {
			t.Fatalf("cell %d: cycle has %d half-edges, cell owns %d", i, got, perCell[i])
		}
	}
	if got := len(d.OuterEdges()); got != perCell[OuterCell] {
		t.Fatalf("outer face: cycle has %d half-edges, face owns %d", got, perCell[OuterCell])
	}

	if euler := len(d.Vertices) - len(he)/2 + d.NumCells() + 1; euler != 2 {
		t.Fatalf("V - E + F = %d, want 2", euler)
	}

	want := d.Boundary.Area()
	if got := d.Area(); math.Abs(got-want) > 1e-6*want {
		t.Fatalf("cell areas add up to %v, want %v", got, want)
	}
	for i := range d.NumCells() {
		c := mustCell(t, d, i)
		for _, n := range c.Neighbors() {
			found := false
			for _, m := range mustCell(t, d, n).Neighbors() {
				found = found || m == i
			}
			if !found {
				t.Fatalf("cell %d lists %d as a neighbour but not the other way round", i, n)
			}
		}
	}
}

func mustCell(t *testing.T, d *Diagram, i int) Cell {
	t.Helper()
	c, err := d.Cell(i)
	if err != nil {
		t.Fatalf("Cell(%d) error = %v", i, err)
	}
	return c
}

func TestBuild_Scenarios(t *testing.T) {
	opt := cmpopts.EquateApprox(0, 1e-9)
	tests := []struct {
		name     string
		boundary Polygon
		sites    []r2.Point
		want     []Polygon
	}{
		{
			name:     "single site",
			boundary: NewBoundingBox(0, 7, 0, 3),
			sites:    []r2.Point{pt(2, 2)},
			want:     []Polygon{{pt(0, 0), pt(7, 0), pt(7, 3), pt(0, 3)}},
		},
		{
			name:     "two sites on one line",
			boundary: NewBoundingBox(-5, 15, -5, 5),
			sites:    []r2.Point{pt(0, 0), pt(10, 0)},
			want: []Polygon{
				{pt(-5, -5), pt(5, -5), pt(5, 5), pt(-5, 5)},
				{pt(5, -5), pt(15, -5), pt(15, 5), pt(5, 5)},
			},
		},
		{
			name:     "sites on the corners",
			boundary: NewBoundingBox(0, 10, 0, 10),
			sites:    []r2.Point{pt(0, 0), pt(10, 0), pt(0, 10), pt(10, 10)},
			want: []Polygon{
				{pt(0, 0), pt(5, 0), pt(5, 5), pt(0, 5)},
				{pt(5, 0), pt(10, 0), pt(10, 5), pt(5, 5)},
				{pt(0, 5), pt(5, 5), pt(5, 10), pt(0, 10)},
				{pt(5, 5), pt(10, 5), pt(10, 10), pt(5, 10)},
			},
		},
		{
			name:     "horizontal row",
			boundary: NewBoundingBox(0, 10, 0, 10),
			sites:    []r2.Point{pt(2, 5), pt(5, 5), pt(8, 5)},
			want: []Polygon{
				{pt(0, 0), pt(3.5, 0), pt(3.5, 10), pt(0, 10)},
				{pt(3.5, 0), pt(6.5, 0), pt(6.5, 10), pt(3.5, 10)},
				{pt(6.5, 0), pt(10, 0), pt(10, 10), pt(6.5, 10)},
			},
		},
		{
			name:     "vertical column",
			boundary: NewBoundingBox(0, 10, 0, 10),
			sites:    []r2.Point{pt(5, 2), pt(5, 5), pt(5, 8)},
			want: []Polygon{
				{pt(0, 0), pt(10, 0), pt(10, 3.5), pt(0, 3.5)},
				{pt(0, 3.5), pt(10, 3.5), pt(10, 6.5), pt(0, 6.5)},
				{pt(0, 6.5), pt(10, 6.5), pt(10, 10), pt(0, 10)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Build(tt.sites, tt.boundary)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			checkDiagram(t, d)
			if d.NumCells() != len(tt.want) {
				t.Fatalf("NumCells() = %d, want %d", d.NumCells(), len(tt.want))
			}
			for i, want := range tt.want {
				if diff := cmp.Diff(want, mustCell(t, d, i).Polygon(), opt); diff != "" {
					t.Errorf("cell %d mismatch (-want +got):\n%s", i, diff)
				}
			}
		})
	}
}

func TestDiagram_Accessors(t *testing.T) {
	d, err := Build([]r2.Point{pt(3, 3), pt(7, 4), pt(5, 8)}, NewBoundingBox(0, 10, 0, 10))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := len(d.Edges()); got != len(d.HalfEdges)/2 {
		t.Errorf("len(Edges()) = %d, want %d", got, len(d.HalfEdges)/2)
	}

	boundary := 0
	for h := range d.HalfEdges {
		if d.IsBoundary(h) {
			boundary++
			continue
		}
		// внутреннее ребро лежит на серединном перпендикуляре своих ячеек
		a := d.Sites[d.HalfEdges[h].Cell]
		b := d.Sites[d.HalfEdges[d.HalfEdges[h].Twin].Cell]
		for _, p := range []r2.Point{d.Origin(h), d.Destination(h)} {
			if da, db := p.Sub(a).Norm(), p.Sub(b).Norm(); math.Abs(da-db) > 1e-9 {
				t.Errorf("half-edge %d: point %v is %v from one site and %v from the other", h, p, da, db)
			}
		}
	}
	if want := 2 * len(d.OuterEdges()); boundary != want {
		t.Errorf("%d boundary half-edges, want %d", boundary, want)
	}

	degree := 0
	for v := range d.Vertices {
		out := d.VertexEdges(v)
		if len(out) < 2 {
			t.Errorf("vertex %d has %d outgoing half-edges, want at least 2", v, len(out))
		}
		for _, h := range out {
			if d.Origin(h) != d.Vertices[v] {
				t.Errorf("VertexEdges(%d) lists half-edge %d starting at %v", v, h, d.Origin(h))
			}
		}
		degree += len(out)
	}
	if degree != len(d.HalfEdges) {
		t.Errorf("vertex degrees add up to %d, want %d", degree, len(d.HalfEdges))
	}

	for i := range d.NumCells() {
		c := mustCell(t, d, i)
		if c.SiteIndex() != i || c.Site() != d.Sites[i] {
			t.Errorf("Cell(%d) is the view of site %d at %v", i, c.SiteIndex(), c.Site())
		}
		if got := len(c.Neighbors()); got != 2 {
			t.Errorf("cell %d has %d neighbours, want 2", i, got)
		}
	}
	for _, i := range []int{-1, d.NumCells()} {
		if _, err := d.Cell(i); err == nil {
			t.Errorf("Cell(%d) error = nil, want out of range", i)
		}
	}
}

func TestBuild_CellAreas(t *testing.T) {
	var grid []r2.Point
	for y := 25.0; y >= 5; y -= 5 {
		for x := 0.0; x <= 20; x += 5 {
			grid = append(grid, pt(x, y))
		}
	}
	triangle := Polygon{pt(0, 100), pt(100, 100), pt(50, 0)}

	tests := []struct {
		name     string
		boundary Polygon
		sites    []r2.Point
		want     []float64
	}{
		{"diamond", NewBoundingBox(0, 10, 0, 10),
			[]r2.Point{pt(5, 7.5), pt(2.5, 5), pt(7.5, 5), pt(5, 2.5)},
			[]float64{25, 25, 25, 25}},
		{"rounding", NewBoundingBox(0, 25, 0, 25),
			[]r2.Point{pt(10, 3), pt(13.9, 6.76), pt(12, 1.2)},
			[]float64{128.59, 465.07, 31.34}},
		{"near the corner", NewBoundingBox(-1, 26, -1, 26),
			[]r2.Point{pt(2.241, 3.594), pt(3.568, 3.968), pt(6.401, 16.214), pt(2.925, 18.298)},
			[]float64{42.86, 209.3, 380.84, 96.0}},
		{"spread", NewBoundingBox(0, 30, 0, 30),
			[]r2.Point{pt(8.333, 8.333), pt(8.333, 26), pt(16.667, 8.333), pt(26, 17.667)},
			[]float64{214.58, 229.05, 221.56, 234.8}},
		{"grid", NewBoundingBox(-5, 30, -5, 30), grid,
			[]float64{
				56.25, 37.5, 37.5, 37.5, 93.75,
				37.5, 25, 25, 25, 62.5,
				37.5, 25, 25, 25, 62.5,
				37.5, 25, 25, 25, 62.5,
				93.75, 62.5, 62.5, 62.5, 156.25,
			}},
		{"triangle, one site", triangle, []r2.Point{pt(50, 50)}, []float64{5000}},
		{"triangle, three sites", triangle,
			[]r2.Point{pt(13, 93), pt(20, 89), pt(33, 69)},
			[]float64{218.59, 629.68, 4151.73}},
		{"clockwise square", Polygon{pt(15, 15), pt(15, 30), pt(30, 30), pt(30, 15)},
			[]r2.Point{pt(20.1273, 18.7303), pt(26.5107, 18.7303), pt(20.1273, 23.8437), pt(26.5107, 23.8437)},
			[]float64{52.3, 42.0, 72.48, 58.21}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Build(tt.sites, tt.boundary)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			checkDiagram(t, d)
			for i, want := range tt.want {
				if got := mustCell(t, d, i).Area(); math.Abs(got-want) > 0.006 {
					t.Errorf("cell %d area = %.4f, want %.2f", i, got, want)
				}
			}
		})
	}
}

func TestBuild_Properties(t *testing.T) {
	heptagon := make(Polygon, 7)
	for i := range heptagon {
		a := float64(i) * 2 * math.Pi / 7
		heptagon[i] = pt(50+45*math.Cos(a), 50+45*math.Sin(a))
	}
	for seed := range int64(40) {
		t.Run(fmt.Sprintf("seed%d", seed), func(t *testing.T) {
			r := rand.New(rand.NewSource(seed))
			boundary := NewBoundingBox(0, 100, 0, 100)
			var sites []r2.Point
			switch seed % 3 {
			case 0:
				sites = randomPoints(1+r.Intn(60), seed, 100)
			case 1:
				seen := make(map[r2.Point]bool)
				for range 1 + r.Intn(40) {
					p := pt(float64(r.Intn(11)*10), float64(r.Intn(11)*10))
					if !seen[p] {
						seen[p] = true
						sites = append(sites, p)
					}
				}
			default:
				boundary = heptagon
				if seed%2 == 0 {
					boundary = Polygon{pt(50, 0), pt(100, 50), pt(50, 100), pt(0, 50)}
				}
				for range 1 + r.Intn(40) {
					if p := pt(20+r.Float64()*60, 20+r.Float64()*60); boundary.Contains(p) {
						sites = append(sites, p)
					}
				}
				if len(sites) == 0 {
					sites = append(sites, pt(50, 50))
				}
			}

			d, err := Build(sites, boundary)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			checkDiagram(t, d)
			if seed%3 == 1 {
				// точки сетки лежат и на самой границе
				return
			}
			for i := range d.NumCells() {
				if c := mustCell(t, d, i); !c.Polygon().Contains(c.Site()) {
					t.Errorf("cell %d does not contain its site %v", i, c.Site())
				}
			}
		})
	}
}

func TestBuild_Scales(t *testing.T) {
	for _, size := range []float64{1e-12, 1e-10, 1e-8, 1e-6, 1, 1e6, 1e9} {
		for seed := range int64(5) {
			t.Run(fmt.Sprintf("%g/seed%d", size, seed), func(t *testing.T) {
				boundary := NewBoundingBox(0, size, 0, size)
				d, err := Build(randomPoints(30, seed, size), boundary)
				if err != nil {
					t.Fatalf("Build() error = %v", err)
				}
				checkDiagram(t, d)
			})
		}
	}
}

func TestBuild_CircleEventCount(t *testing.T) {
	// в общем положении число вершин равно 2n - 2 - h
	sites := []r2.Point{pt(10, 10), pt(90, 15), pt(85, 90), pt(12, 80), pt(40, 45), pt(60, 55), pt(55, 30)}
	v, err := New(sites, NewBoundingBox(0, 100, 0, 100))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := v.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if want := 2*len(sites) - 2 - 4; v.circles != want {
		t.Errorf("circle events = %d, want %d", v.circles, want)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	sites := randomPoints(200, 7, 100)
	a, err := Build(sites, NewBoundingBox(0, 100, 0, 100))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	b, err := Build(sites, NewBoundingBox(0, 100, 0, 100))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff(a, b, cmp.AllowUnexported(Diagram{})); diff != "" {
		t.Errorf("second Build() differs (-first +second):\n%s", diff)
	}
}

func TestBuild_PermutationInvariant(t *testing.T) {
	sites := randomPoints(80, 11, 100)
	box := NewBoundingBox(0, 100, 0, 100)
	want, err := Build(sites, box)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	perm := rand.New(rand.NewSource(3)).Perm(len(sites))
	shuffled := make([]r2.Point, len(sites))
	for k, i := range perm {
		shuffled[k] = sites[i]
	}
	got, err := Build(shuffled, box)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	sortPoints := cmpopts.SortSlices(func(a, b r2.Point) bool {
		return a.X < b.X || (a.X == b.X && a.Y < b.Y)
	})
	for k, i := range perm {
		wantCell, gotCell := mustCell(t, want, i), mustCell(t, got, k)
		if math.Abs(wantCell.Area()-gotCell.Area()) > 1e-9*want.Area() {
			t.Errorf("cell of site %v: area = %v, want %v", sites[i], gotCell.Area(), wantCell.Area())
		}
		var wantN, gotN []r2.Point
		for _, n := range wantCell.Neighbors() {
			wantN = append(wantN, sites[n])
		}
		for _, n := range gotCell.Neighbors() {
			gotN = append(gotN, shuffled[n])
		}
		if diff := cmp.Diff(wantN, gotN, sortPoints); diff != "" {
			t.Errorf("neighbours of site %v mismatch (-want +got):\n%s", sites[i], diff)
		}
	}
}

func TestStep_MatchesBuild(t *testing.T) {
	sites := randomPoints(50, 5, 100)
	box := NewBoundingBox(0, 100, 0, 100)
	want, err := Build(sites, box)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	v, err := New(sites, box)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !math.IsInf(v.SweepY(), 1) {
		t.Errorf("SweepY() before the first step = %v, want +Inf", v.SweepY())
	}
	steps := 0
	prev := math.Inf(1)
	for {
		done, err := v.Step()
		if err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if done {
			break
		}
		steps++
		if v.SweepY() > prev {
			t.Fatalf("sweep moved up from %v to %v", prev, v.SweepY())
		}
		prev = v.SweepY()
	}
	if want := len(sites) + v.circles; steps != want {
		t.Errorf("steps = %d, want %d", steps, want)
	}
	if done, err := v.Step(); !done || err != nil {
		t.Errorf("Step() after the sweep = %v, %v, want true, nil", done, err)
	}

	got, err := v.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(Diagram{})); diff != "" {
		t.Errorf("stepped diagram differs from Build (-want +got):\n%s", diff)
	}
	again, err := v.Finish()
	if err != nil || again != got {
		t.Errorf("second Finish() = %p, %v, want the cached diagram %p", again, err, got)
	}
}

func TestBuild_InputErrors(t *testing.T) {
	box := NewBoundingBox(0, 10, 0, 10)
	lShape := Polygon{pt(0, 0), pt(2, 0), pt(2, 1), pt(1, 1), pt(1, 2), pt(0, 2)}

	t.Run("no sites", func(t *testing.T) {
		_, err := Build(nil, box)
		var target *DegenerateInputError
		if !errors.As(err, &target) || target.Index != -1 {
			t.Errorf("Build() error = %v, want DegenerateInputError for the whole input", err)
		}
	})
	t.Run("non-finite site", func(t *testing.T) {
		_, err := Build([]r2.Point{pt(1, 1), pt(math.NaN(), 2)}, box)
		var target *DegenerateInputError
		if !errors.As(err, &target) || target.Index != 1 {
			t.Errorf("Build() error = %v, want DegenerateInputError for site 1", err)
		}
	})
	t.Run("duplicate sites", func(t *testing.T) {
		_, err := Build([]r2.Point{pt(1, 1), pt(2, 2), pt(1, 1)}, box)
		var target *DuplicateSiteError
		if !errors.As(err, &target) {
			t.Fatalf("Build() error = %v, want DuplicateSiteError", err)
		}
		want := DuplicateSiteError{First: 0, Second: 2, Point: pt(1, 1)}
		if diff := cmp.Diff(want, *target); diff != "" {
			t.Errorf("DuplicateSiteError mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("site outside", func(t *testing.T) {
		_, err := Build([]r2.Point{pt(1, 1), pt(11, 5)}, box)
		var target *SiteOutsideBoundaryError
		if !errors.As(err, &target) || target.Index != 1 {
			t.Errorf("Build() error = %v, want SiteOutsideBoundaryError for site 1", err)
		}
	})
	t.Run("site on the boundary", func(t *testing.T) {
		if _, err := Build([]r2.Point{pt(0, 5), pt(10, 10)}, box); err != nil {
			t.Errorf("Build() error = %v, want nil", err)
		}
	})
	t.Run("non-convex boundary", func(t *testing.T) {
		_, err := Build([]r2.Point{pt(0.5, 0.5)}, lShape)
		var target *NonConvexBoundaryError
		if !errors.As(err, &target) || target.Index != 3 {
			t.Errorf("Build() error = %v, want NonConvexBoundaryError at vertex 3", err)
		}
	})
	t.Run("all problems reported", func(t *testing.T) {
		_, err := Build(nil, lShape)
		if got := len(multierr.Errors(err)); got != 2 {
			t.Errorf("Build() reported %d errors, want 2: %v", got, err)
		}
		_, err = Build([]r2.Point{pt(1, 1), pt(1, 1), pt(20, 20)}, box)
		if got := len(multierr.Errors(err)); got != 2 {
			t.Errorf("Build() reported %d errors, want 2: %v", got, err)
		}
	})
}

// pendingCircle steps the sweep until a valid circle event is queued.
func pendingCircle(t *testing.T, v *Voronoi) *event {
	t.Helper()
	for {
		for i := range v.queue.events {
			if e := &v.queue.events[i]; e.kind == circleEvent && e.valid {
				return e
			}
		}
		done, err := v.Step()
		if err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if done {
			t.Fatalf("sweep finished without a circle event")
		}
	}
}

func TestFinish_StaleCircleEvent(t *testing.T) {
	v, err := New([]r2.Point{pt(3, 3), pt(7, 4), pt(5, 8)}, NewBoundingBox(0, 10, 0, 10))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e := pendingCircle(t, v)
	e.triple[0], e.triple[2] = e.triple[2], e.triple[0]

	d, err := v.Finish()
	var target *UnreachableStateError
	if !errors.As(err, &target) {
		t.Fatalf("Finish() error = %v, want *UnreachableStateError", err)
	}
	if d != nil {
		t.Errorf("Finish() returned a diagram along with the error")
	}
	if target.Op != "circle event" {
		t.Errorf("Op = %q, want circle event", target.Op)
	}

	if _, again := v.Step(); again != err {
		t.Errorf("Step() after failure = %v, want %v", again, err)
	}
	if d, again := v.Finish(); d != nil || again != err {
		t.Errorf("Finish() after failure = %v, %v, want nil, %v", d, again, err)
	}
}

func TestOptions_Errors(t *testing.T) {
	sites := []r2.Point{pt(1, 1)}
	box := NewBoundingBox(0, 10, 0, 10)
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil logger", WithLogger(nil)},
		{"nil observer", WithObserver(nil)},
		{"zero epsilon", WithEpsilon(0)},
		{"negative epsilon", WithEpsilon(-1)},
		{"NaN epsilon", WithEpsilon(math.NaN())},
		{"infinite epsilon", WithEpsilon(math.Inf(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(sites, box, tt.opt); err == nil {
				t.Errorf("Build() error = nil, want an option error")
			}
		})
	}

	d, err := Build(sites, box, WithEpsilon(1e-6))
	if err != nil {
		t.Fatalf("Build() with a custom epsilon: error = %v", err)
	}
	if d.eps != 1e-6 {
		t.Errorf("eps = %v, want 1e-6", d.eps)
	}
}

func BenchmarkBuild(b *testing.B) {
	sizes := []int{1e+2, 1e+3, 1e+4}
	for _, n := range sizes {
		b.Run(fmt.Sprintf("N%d", n), func(b *testing.B) {
			sites := randomPoints(n, 0, 1000)
			box := NewBoundingBox(0, 1000, 0, 1000)

			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				if _, err := Build(sites, box); err != nil {
					b.Fatalf("Build() error = %v", err)
				}
			}
		})
	}
}
