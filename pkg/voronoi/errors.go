package voronoi

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// DegenerateInputError reports input the sweep cannot start from:
// an empty site set or a site with a non-finite coordinate.
type DegenerateInputError struct {
	// Index of the offending site, or -1 when the whole input is at fault.
	Index  int
	Reason string
}

func (e *DegenerateInputError) Error() string {
	if e.Index < 0 {
		return "voronoi: degenerate input: " + e.Reason
	}
	return fmt.Sprintf("voronoi: degenerate input: site %d: %s", e.Index, e.Reason)
}

// DuplicateSiteError reports two sites with identical coordinates.
type DuplicateSiteError struct {
	First  int
	Second int
	Point  r2.Point
}

func (e *DuplicateSiteError) Error() string {
	return fmt.Sprintf("voronoi: sites %d and %d coincide at %v", e.First, e.Second, e.Point)
}

// NonConvexBoundaryError reports a clipping polygon that is not a proper convex polygon.
type NonConvexBoundaryError struct {
	// Index of the vertex where the problem was found, or -1.
	Index  int
	Reason string
}

func (e *NonConvexBoundaryError) Error() string {
	if e.Index < 0 {
		return "voronoi: boundary is not convex: " + e.Reason
	}
	return fmt.Sprintf("voronoi: boundary is not convex at vertex %d: %s", e.Index, e.Reason)
}

// SiteOutsideBoundaryError reports a site that lies outside the clipping polygon.
type SiteOutsideBoundaryError struct {
	Index int
	Point r2.Point
}

func (e *SiteOutsideBoundaryError) Error() string {
	return fmt.Sprintf("voronoi: site %d at %v lies outside the boundary", e.Index, e.Point)
}

// UnreachableStateError means an internal invariant was broken during construction.
// No partial diagram is returned alongside it.
type UnreachableStateError struct {
	Op     string
	Detail string
}

func (e *UnreachableStateError) Error() string {
	return fmt.Sprintf("voronoi: unreachable state in %s: %s", e.Op, e.Detail)
}

func unreachable(op, format string, args ...any) error {
	return &UnreachableStateError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
