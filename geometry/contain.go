package geometry

// RemoveContainedPolygons drops polygons that lie entirely within another
// polygon. A contained obstacle can never block a segment its container
// does not already block, so it only adds vertices to the graph.
func RemoveContainedPolygons(polygons []Polygon) []Polygon {
	if len(polygons) <= 1 {
		return polygons
	}

	contained := make([]bool, len(polygons))

	for i := 0; i < len(polygons); i++ {
		if contained[i] {
			continue
		}

		for j := 0; j < len(polygons); j++ {
			if i == j || contained[j] {
				continue
			}

			if IsPolygonContainedIn(polygons[i], polygons[j]) {
				contained[i] = true
				break
			}
		}
	}

	result := make([]Polygon, 0, len(polygons))
	for i := range polygons {
		if !contained[i] {
			result = append(result, polygons[i])
		}
	}

	return result
}

// IsPolygonContainedIn checks if polygon a is fully contained within polygon b
func IsPolygonContainedIn(a, b Polygon) bool {
	if len(a.Vertices) == 0 || len(b.Vertices) < 3 {
		return false
	}

	// Quick bounding box check first
	if !b.Bound().Contains(a.Bound().Min) || !b.Bound().Contains(a.Bound().Max) {
		return false
	}

	for _, vertex := range a.Vertices {
		if !Contains(b, vertex) && !OnBoundary(vertex, b) {
			return false
		}
	}

	for i := range a.Vertices {
		e := a.Edge(i)
		if crossesBoundary(e, b) {
			return false
		}
	}

	return true
}

// Overlaps reports whether the interiors of a and b intersect.
func Overlaps(a, b Polygon) bool {
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}
	for i := range a.Vertices {
		if SegmentIntersectsPolygonInterior(a.Edge(i), b) {
			return true
		}
	}
	for i := range b.Vertices {
		if SegmentIntersectsPolygonInterior(b.Edge(i), a) {
			return true
		}
	}
	// Identical or nested outlines without any edge entering the other.
	return IsPolygonContainedIn(a, b) || IsPolygonContainedIn(b, a)
}

func crossesBoundary(seg Segment, polygon Polygon) bool {
	for i := range polygon.Vertices {
		e := polygon.Edge(i)
		if segmentsCrossProperly(seg.P1, seg.P2, e.P1, e.P2) {
			return true
		}
	}
	return false
}
