package visgraph

import (
	"fmt"
	"log"
	"time"

	"potential-planner/geometry"
)

// Build constructs a visibility graph from obstacle polygons and the two
// endpoints. Node 0 is Start, node 1 is Goal, and obstacle vertices follow
// in polygon order.
//
// Consecutive vertices of a polygon (including the closing pair) are always
// connected. Every other pair is connected iff the segment between them
// crosses no obstacle interior.
func Build(obstacles []geometry.Polygon, start, goal geometry.Point, opts ...Option) (*Graph, error) {
	o := newOptions(opts)
	began := time.Now()

	for i, obstacle := range obstacles {
		if err := obstacle.Validate(); err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrInvalidObstacle, i, err)
		}
	}
	if err := checkEndpoint(start, goal, obstacles); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	if err := checkEndpoint(goal, start, obstacles); err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}

	totalVertices := 0
	for _, obstacle := range obstacles {
		totalVertices += len(obstacle.Vertices)
	}
	totalNodes := totalVertices + 2
	if totalNodes > o.MaxNodes {
		return nil, fmt.Errorf("%w: %d nodes exceeds limit of %d", ErrTooManyNodes, totalNodes, o.MaxNodes)
	}

	g := &Graph{
		nodes:     make([]*Node, 0, totalNodes),
		obstacles: obstacles,
		index:     NewObstacleIndex(obstacles),
		opts:      o,
	}
	g.start = g.addNode(start, Start, -1)
	g.goal = g.addNode(goal, Goal, -1)

	// Add all polygon vertices as nodes, chained along each boundary
	for i, obstacle := range obstacles {
		first := NodeID(len(g.nodes))
		for _, vertex := range obstacle.Vertices {
			g.addNode(vertex, Vertex, i)
		}
		last := NodeID(len(g.nodes) - 1)
		for id := first; id < last; id++ {
			g.connect(id, id+1)
		}
		g.connect(last, first)
	}
	g.refreshHeuristics()

	boundaryEdges := g.edges
	totalPairs := totalNodes * (totalNodes - 1) / 2
	g.logf("   Obstacles: %d, vertices: %d\n", len(obstacles), totalVertices)
	g.logf("   Checking up to %d possible edges...\n", totalPairs)

	// Build edges: connect nodes that have line-of-sight (no collision)
	checked := 0
	for i := 0; i < len(g.nodes); i++ {
		for j := i + 1; j < len(g.nodes); j++ {
			a, b := NodeID(i), NodeID(j)
			if g.HasEdge(a, b) {
				continue
			}

			checked++
			if checked%o.ProgressEvery == 0 {
				g.logf("   Progress: %d/%d edges checked...\n", checked, totalPairs)
			}

			if g.visible(g.nodes[i].Pos, g.nodes[j].Pos) {
				g.connect(a, b)
			}
		}
	}

	g.logf("   Edges added: %d (%d boundary, %d line-of-sight) in %s\n",
		g.edges, boundaryEdges, g.edges-boundaryEdges, time.Since(began))

	return g, nil
}

// MoveEndpoint relocates Start or Goal and recomputes only the edges that
// touch it: its old edges are removed, then line of sight is tested from the
// new position to every other node. No other edge is touched.
//
// Moving the Goal changes every node's distance-to-goal, so h is refreshed
// for all nodes; node identities and the rest of the topology are kept.
func (g *Graph) MoveEndpoint(kind Kind, to geometry.Point) error {
	if g == nil {
		return ErrNilGraph
	}

	var id, other NodeID
	switch kind {
	case Start:
		id, other = g.start, g.goal
	case Goal:
		id, other = g.goal, g.start
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEndpoint, kind)
	}

	if err := checkEndpoint(to, g.nodes[other].Pos, g.obstacles); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}

	began := time.Now()
	removed := g.isolate(id)
	g.nodes[id].Pos = to

	if kind == Goal {
		g.refreshHeuristics()
	} else {
		g.nodes[id].H = to.Distance(g.nodes[g.goal].Pos)
	}

	added := 0
	for _, node := range g.nodes {
		if node.ID == id {
			continue
		}
		if g.visible(to, node.Pos) && g.connect(id, node.ID) {
			added++
		}
	}

	g.logf("   Moved %s to (%.3f, %.3f): %d edges removed, %d added in %s\n",
		kind, to.X, to.Y, removed, added, time.Since(began))
	return nil
}

// Visible reports whether the straight segment between p and q avoids every
// obstacle interior.
func (g *Graph) Visible(p, q geometry.Point) bool {
	return g.visible(p, q)
}

func (g *Graph) visible(p, q geometry.Point) bool {
	seg := geometry.Segment{P1: p, P2: q}
	for _, i := range g.index.Candidates(seg) {
		if geometry.SegmentIntersectsPolygonInterior(seg, g.obstacles[i]) {
			return false
		}
	}
	return true
}

func (g *Graph) addNode(p geometry.Point, kind Kind, obstacle int) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{ID: id, Pos: p, Kind: kind, Obstacle: obstacle})
	return id
}

func (g *Graph) refreshHeuristics() {
	goal := g.nodes[g.goal].Pos
	for _, node := range g.nodes {
		node.H = node.Pos.Distance(goal)
	}
}

func (g *Graph) logf(format string, args ...interface{}) {
	if !g.opts.Quiet {
		log.Printf(format, args...)
	}
}

// checkEndpoint rejects an endpoint position that is not finite, coincides
// with the other endpoint, or sits on an obstacle vertex.
func checkEndpoint(p, other geometry.Point, obstacles []geometry.Polygon) error {
	if !p.IsFinite() {
		return fmt.Errorf("%w: position is not finite", ErrDegenerateEndpoint)
	}
	if p.Distance(other) <= geometry.Eps {
		return fmt.Errorf("%w: start and goal coincide", ErrDegenerateEndpoint)
	}
	for i, obstacle := range obstacles {
		if obstacle.HasVertex(p) {
			return fmt.Errorf("%w: on a vertex of obstacle %d", ErrDegenerateEndpoint, i)
		}
	}
	return nil
}
