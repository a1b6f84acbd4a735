package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors returned by Validate.
var (
	// ErrTooFewVertices indicates a polygon with fewer than three vertices.
	ErrTooFewVertices = errors.New("geometry: polygon needs at least 3 vertices")

	// ErrNonFinite indicates a NaN or infinite coordinate.
	ErrNonFinite = errors.New("geometry: coordinate is not finite")

	// ErrDegenerateEdge indicates two consecutive vertices at the same position.
	ErrDegenerateEdge = errors.New("geometry: polygon has a zero-length edge")

	// ErrSelfIntersecting indicates two non-adjacent edges that touch or cross.
	ErrSelfIntersecting = errors.New("geometry: polygon is not simple")
)

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Validate checks that the polygon is a simple closed loop usable as an
// obstacle.
func (p Polygon) Validate() error {
	n := len(p.Vertices)
	if n < 3 {
		return fmt.Errorf("%w (got %d)", ErrTooFewVertices, n)
	}

	for i, v := range p.Vertices {
		if !v.IsFinite() {
			return fmt.Errorf("%w: vertex %d", ErrNonFinite, i)
		}
	}

	for i := 0; i < n; i++ {
		if p.Edge(i).Length() <= Eps {
			return fmt.Errorf("%w: edge %d", ErrDegenerateEdge, i)
		}
	}

	// Every pair of edges that do not share a vertex must be disjoint.
	for i := 0; i < n; i++ {
		a := p.Edge(i)
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // closing edge shares vertex 0
			}
			b := p.Edge(j)
			if SegmentsIntersect(a.P1, a.P2, b.P1, b.P2) {
				return fmt.Errorf("%w: edges %d and %d", ErrSelfIntersecting, i, j)
			}
		}
	}

	return nil
}

// HasVertex reports whether q coincides with one of the polygon's vertices.
func (p Polygon) HasVertex(q Point) bool {
	for _, v := range p.Vertices {
		if v.Distance(q) <= Eps {
			return true
		}
	}
	return false
}
