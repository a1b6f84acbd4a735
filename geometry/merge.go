package geometry

import (
	"math"
	"sort"
)

// MergeAdjacentPolygons replaces every group of polygons that share an edge
// (within tolerance) with the convex hull of the group. This is coarser than
// a true union: the hull can cover free space between the members.
func MergeAdjacentPolygons(polygons []Polygon, tolerance float64) []Polygon {
	if len(polygons) <= 1 {
		return polygons
	}

	merged := make([]bool, len(polygons))
	result := make([]Polygon, 0, len(polygons))

	for i := range polygons {
		if merged[i] {
			continue
		}
		merged[i] = true

		// Grow the group transitively so chains of neighbours end up together.
		group := []int{i}
		for k := 0; k < len(group); k++ {
			for j := range polygons {
				if !merged[j] && ShareEdge(polygons[group[k]], polygons[j], tolerance) {
					merged[j] = true
					group = append(group, j)
				}
			}
		}

		if len(group) == 1 {
			result = append(result, polygons[i])
			continue
		}

		var all []Point
		for _, idx := range group {
			all = append(all, polygons[idx].Vertices...)
		}
		result = append(result, Polygon{Vertices: ConvexHull(all)})
	}

	return result
}

// ShareEdge reports whether a and b have a common edge in either direction.
func ShareEdge(a, b Polygon, tolerance float64) bool {
	for i := range a.Vertices {
		ea := a.Edge(i)
		for j := range b.Vertices {
			eb := b.Edge(j)
			if (pointsEqual(ea.P1, eb.P1, tolerance) && pointsEqual(ea.P2, eb.P2, tolerance)) ||
				(pointsEqual(ea.P1, eb.P2, tolerance) && pointsEqual(ea.P2, eb.P1, tolerance)) {
				return true
			}
		}
	}
	return false
}

func pointsEqual(a, b Point, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance && math.Abs(a.Y-b.Y) <= tolerance
}

// ConvexHull returns the hull of points in counter-clockwise order without
// collinear vertices (Andrew's monotone chain). The input is not modified.
func ConvexHull(points []Point) []Point {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	if len(pts) < 3 {
		return pts
	}

	hull := make([]Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && direction(hull[len(hull)-2], hull[len(hull)-1], p) >= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && direction(hull[len(hull)-2], hull[len(hull)-1], p) >= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return hull[:len(hull)-1]
}
