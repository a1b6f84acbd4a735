package geometry

import "github.com/paulmach/orb"

// ToOrb converts the point to an orb.Point.
func (p Point) ToOrb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// FromOrb converts an orb.Point.
func FromOrb(p orb.Point) Point {
	return Point{X: p.X(), Y: p.Y()}
}

// Ring returns the polygon as a closed orb.Ring (first vertex repeated at
// the end, as GeoJSON expects).
func (p Polygon) Ring() orb.Ring {
	ring := make(orb.Ring, 0, len(p.Vertices)+1)
	for _, v := range p.Vertices {
		ring = append(ring, v.ToOrb())
	}
	if len(p.Vertices) > 0 {
		ring = append(ring, p.Vertices[0].ToOrb())
	}
	return ring
}

// FromRing converts an orb.Ring, dropping the closing duplicate vertex if
// present.
func FromRing(ring orb.Ring) Polygon {
	n := len(ring)
	if n > 1 && ring[0].Equal(ring[n-1]) {
		n--
	}
	polygon := Polygon{Vertices: make([]Point, 0, n)}
	for _, p := range ring[:n] {
		polygon.Vertices = append(polygon.Vertices, FromOrb(p))
	}
	return polygon
}

// Bound returns the axis-aligned bounding box of the polygon.
func (p Polygon) Bound() orb.Bound {
	if len(p.Vertices) == 0 {
		return orb.Bound{}
	}
	b := orb.Bound{Min: p.Vertices[0].ToOrb(), Max: p.Vertices[0].ToOrb()}
	for _, v := range p.Vertices[1:] {
		b = b.Extend(v.ToOrb())
	}
	return b
}

// Bound returns the bounding box of the segment.
func (s Segment) Bound() orb.Bound {
	return orb.Bound{Min: s.P1.ToOrb(), Max: s.P1.ToOrb()}.Extend(s.P2.ToOrb())
}
