package geometry

// SimplifyPolygon reduces polygon complexity using the Douglas-Peucker
// algorithm on the closed loop. If simplification would leave fewer than
// three vertices the polygon is returned unchanged.
func SimplifyPolygon(polygon Polygon, epsilon float64) Polygon {
	n := len(polygon.Vertices)
	if n <= 3 || epsilon <= 0 {
		return polygon
	}

	// Run on the loop closed back onto its first vertex, then drop the
	// duplicate again.
	closed := make([]Point, 0, n+1)
	closed = append(closed, polygon.Vertices...)
	closed = append(closed, polygon.Vertices[0])

	simplified := douglasPeucker(closed, epsilon)
	simplified = simplified[:len(simplified)-1]
	if len(simplified) < 3 {
		return polygon
	}

	return Polygon{Vertices: simplified}
}

// SimplifyPolygons simplifies multiple polygons
func SimplifyPolygons(polygons []Polygon, epsilon float64) []Polygon {
	simplified := make([]Polygon, len(polygons))
	for i, poly := range polygons {
		simplified[i] = SimplifyPolygon(poly, epsilon)
	}
	return simplified
}

// douglasPeucker implements the Douglas-Peucker line simplification algorithm
func douglasPeucker(points []Point, epsilon float64) []Point {
	if len(points) <= 2 {
		return points
	}

	// Find the point with maximum distance from the chord between first and last
	dmax := 0.0
	index := 0
	end := len(points) - 1

	for i := 1; i < end; i++ {
		d := DistancePointToSegment(points[i], points[0], points[end])
		if d > dmax {
			index = i
			dmax = d
		}
	}

	if dmax <= epsilon {
		return []Point{points[0], points[end]}
	}

	left := douglasPeucker(points[0:index+1], epsilon)
	right := douglasPeucker(points[index:], epsilon)

	// Combine results (removing duplicate point at index)
	result := make([]Point, 0, len(left)+len(right)-1)
	result = append(result, left[:len(left)-1]...)
	result = append(result, right...)
	return result
}
