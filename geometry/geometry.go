// Package geometry holds the planar primitives the planner is built on:
// points, segments and obstacle polygons, plus the distance and
// interior-intersection tests used for line-of-sight queries.
package geometry

import (
	"math"
	"sort"
)

// Eps is the absolute tolerance used for on-segment and on-boundary checks.
const Eps = 1e-9

// Point is a position in the plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Distance is the Euclidean distance between p and q.
func Distance(p, q Point) float64 {
	return p.Distance(q)
}

// Lerp returns the point a fraction t of the way from p to q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + t*(q.X-p.X), Y: p.Y + t*(q.Y-p.Y)}
}

// Segment represents a line segment between two points
type Segment struct {
	P1, P2 Point
}

// Length of the segment.
func (s Segment) Length() float64 {
	return s.P1.Distance(s.P2)
}

// Polygon is an obstacle: an ordered closed loop of vertices. The closing
// edge from the last vertex back to the first is implicit.
type Polygon struct {
	Vertices []Point `json:"vertices"`
}

// Edge returns the i-th boundary edge, from vertex i to vertex i+1 (mod n).
func (p Polygon) Edge(i int) Segment {
	n := len(p.Vertices)
	return Segment{P1: p.Vertices[i%n], P2: p.Vertices[(i+1)%n]}
}

// DistancePointToSegment returns the distance from p to the closest point of
// segment ab. The projection parameter is clamped to [0,1].
func DistancePointToSegment(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	len2 := dx*dx + dy*dy
	if len2 == 0 {
		return p.Distance(a)
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / len2
	switch {
	case t < 0:
		return p.Distance(a)
	case t > 1:
		return p.Distance(b)
	}
	return p.Distance(Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 Point) float64 {
	return (p3.X-p1.X)*(p2.Y-p1.Y) - (p2.X-p1.X)*(p3.Y-p1.Y)
}

// sign classifies an orientation value, treating anything within tol of
// zero as collinear.
func sign(v, tol float64) int {
	switch {
	case v > tol:
		return 1
	case v < -tol:
		return -1
	}
	return 0
}

// segmentsCrossProperly reports whether ab and cd cross at a single point
// interior to both. Touching at an endpoint or collinear overlap is not a
// proper crossing.
func segmentsCrossProperly(a, b, c, d Point) bool {
	tol := Eps * a.Distance(b) * c.Distance(d)

	d1 := sign(direction(c, d, a), tol)
	d2 := sign(direction(c, d, b), tol)
	d3 := sign(direction(a, b, c), tol)
	d4 := sign(direction(a, b, d), tol)

	return d1*d2 < 0 && d3*d4 < 0
}

// SegmentsIntersect reports whether the closed segments ab and cd share
// at least one point.
func SegmentsIntersect(a, b, c, d Point) bool {
	if segmentsCrossProperly(a, b, c, d) {
		return true
	}
	return DistancePointToSegment(a, c, d) <= Eps ||
		DistancePointToSegment(b, c, d) <= Eps ||
		DistancePointToSegment(c, a, b) <= Eps ||
		DistancePointToSegment(d, a, b) <= Eps
}

// OnBoundary reports whether p lies on one of the polygon's edges.
func OnBoundary(p Point, polygon Polygon) bool {
	n := len(polygon.Vertices)
	for i := 0; i < n; i++ {
		e := polygon.Edge(i)
		if DistancePointToSegment(p, e.P1, e.P2) <= Eps {
			return true
		}
	}
	return false
}

// IsPointInPolygon checks if a point is inside a polygon using ray casting.
// Points on the boundary may land on either side; use Contains for a strict
// interior test.
func IsPointInPolygon(point Point, polygon Polygon) bool {
	n := len(polygon.Vertices)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi := polygon.Vertices[i]
		vj := polygon.Vertices[j]

		// Check if the ray from point to the right crosses the edge
		if (vi.Y > point.Y) != (vj.Y > point.Y) {
			x := vj.X + (point.Y-vj.Y)*(vi.X-vj.X)/(vi.Y-vj.Y)
			if point.X < x {
				inside = !inside
			}
		}
	}

	return inside
}

// Contains reports whether p lies strictly inside the polygon's filled
// interior.
func Contains(polygon Polygon, p Point) bool {
	if len(polygon.Vertices) < 3 || OnBoundary(p, polygon) {
		return false
	}
	return IsPointInPolygon(p, polygon)
}

// SegmentIntersectsPolygonInterior reports whether the open segment passes
// through the polygon's filled interior. Running along an edge or touching a
// vertex does not count.
func SegmentIntersectsPolygonInterior(seg Segment, polygon Polygon) bool {
	n := len(polygon.Vertices)
	if n < 3 {
		return false
	}

	a, b := seg.P1, seg.P2
	dx := b.X - a.X
	dy := b.Y - a.Y
	len2 := dx*dx + dy*dy
	if len2 == 0 {
		return Contains(polygon, a)
	}

	for i := 0; i < n; i++ {
		e := polygon.Edge(i)
		if segmentsCrossProperly(a, b, e.P1, e.P2) {
			return true
		}
	}

	// No proper crossing: the segment can only enter the interior between
	// two consecutive boundary contacts, so probe each piece at its midpoint.
	ts := []float64{0, 1}
	for _, v := range polygon.Vertices {
		if DistancePointToSegment(v, a, b) > Eps {
			continue
		}
		t := ((v.X-a.X)*dx + (v.Y-a.Y)*dy) / len2
		if t > 0 && t < 1 {
			ts = append(ts, t)
		}
	}
	sort.Float64s(ts)

	for i := 1; i < len(ts); i++ {
		if ts[i]-ts[i-1] <= Eps {
			continue
		}
		mid := a.Lerp(b, (ts[i-1]+ts[i])/2)
		if Contains(polygon, mid) {
			return true
		}
	}

	return false
}

// IsPathClear checks if a straight line path between two points avoids the
// interior of every obstacle.
func IsPathClear(p1, p2 Point, obstacles []Polygon) bool {
	seg := Segment{P1: p1, P2: p2}
	for _, obstacle := range obstacles {
		if SegmentIntersectsPolygonInterior(seg, obstacle) {
			return false
		}
	}
	return true
}
