package voronoi

import (
	"github.com/golang/geo/r2"
)

const (
	// NoIndex marks a missing reference: an origin at infinity during the sweep,
	// or an unlinked next/prev.
	NoIndex = -1
	// OuterCell is the cell index of half-edges bounding the outside of the boundary.
	OuterCell = -1

	nilIndex = -1
)

// HalfEdge is one direction of an edge. The cell it bounds lies on its left,
// so every cell cycle runs counter-clockwise.
type HalfEdge struct {
	Origin int
	Twin   int
	Next   int
	Prev   int
	Cell   int
}

// subdivision is the half-edge arena shared by the sweep and the clipper.
type subdivision struct {
	vertices  []r2.Point
	halfEdges []HalfEdge
}

func newSubdivision(sites int) *subdivision {
	return &subdivision{
		vertices:  make([]r2.Point, 0, 2*sites),
		halfEdges: make([]HalfEdge, 0, 6*sites),
	}
}

func (s *subdivision) addVertex(p r2.Point) int {
	s.vertices = append(s.vertices, p)
	return len(s.vertices) - 1
}

// addEdge creates a twin pair; the first half-edge bounds left, the second bounds right.
func (s *subdivision) addEdge(left, right int) (int, int) {
	h := len(s.halfEdges)
	s.halfEdges = append(s.halfEdges,
		HalfEdge{Origin: NoIndex, Twin: h + 1, Next: NoIndex, Prev: NoIndex, Cell: left},
		HalfEdge{Origin: NoIndex, Twin: h, Next: NoIndex, Prev: NoIndex, Cell: right},
	)
	return h, h + 1
}

func (s *subdivision) link(a, b int) {
	s.halfEdges[a].Next = b
	s.halfEdges[b].Prev = a
}

func (s *subdivision) twin(h int) int {
	return s.halfEdges[h].Twin
}

// destination is the origin of the twin, possibly NoIndex.
func (s *subdivision) destination(h int) int {
	return s.halfEdges[s.halfEdges[h].Twin].Origin
}
