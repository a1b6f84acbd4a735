package visgraph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"potential-planner/geometry"
)

// EdgeLines returns the graph edges as line segments for visualization.
func (g *Graph) EdgeLines() [][]geometry.Point {
	edges := g.Edges()
	lines := make([][]geometry.Point, 0, len(edges))
	for _, e := range edges {
		lines = append(lines, []geometry.Point{g.nodes[e.A].Pos, g.nodes[e.B].Pos})
	}
	return lines
}

// GeoJSON returns obstacles, endpoints and edges as one feature collection.
// Every feature carries a "kind" property: obstacle, edge, start or goal.
func (g *Graph) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i, obstacle := range g.obstacles {
		f := geojson.NewFeature(orb.Polygon{obstacle.Ring()})
		f.Properties["kind"] = "obstacle"
		f.Properties["index"] = i
		fc.Append(f)
	}

	for _, e := range g.Edges() {
		f := geojson.NewFeature(orb.LineString{g.nodes[e.A].Pos.ToOrb(), g.nodes[e.B].Pos.ToOrb()})
		f.Properties["kind"] = "edge"
		f.Properties["a"] = int(e.A)
		f.Properties["b"] = int(e.B)
		fc.Append(f)
	}

	for _, id := range []NodeID{g.start, g.goal} {
		node := g.nodes[id]
		f := geojson.NewFeature(node.Pos.ToOrb())
		f.Properties["kind"] = node.Kind.String()
		fc.Append(f)
	}

	return fc
}
