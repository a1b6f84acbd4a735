// Package visgraph builds and maintains the visibility graph the planner
// searches: one node per obstacle vertex plus a Start and a Goal, with an
// undirected edge wherever two nodes can see each other or are consecutive
// on the same obstacle boundary.
//
// The Graph is an arena. Nodes are addressed by NodeID (their index in the
// arena) and keep their identity across partial rebuilds, so search state
// stored elsewhere by NodeID stays meaningful. A Graph is not safe for
// concurrent mutation; callers serialize rebuilds and searches.
package visgraph

import (
	"errors"

	"potential-planner/geometry"
)

// Sentinel errors returned by the builder and the store.
var (
	// ErrNilGraph indicates a nil *Graph was passed in.
	ErrNilGraph = errors.New("visgraph: graph is nil")

	// ErrDegenerateEndpoint indicates Start and Goal coincide, or an endpoint
	// sits on an obstacle vertex; either would give a non-goal node h = 0.
	ErrDegenerateEndpoint = errors.New("visgraph: degenerate endpoint")

	// ErrUnknownEndpoint indicates a move request for a node that is neither
	// Start nor Goal.
	ErrUnknownEndpoint = errors.New("visgraph: not an endpoint")

	// ErrTooManyNodes indicates the scene exceeds the configured node limit.
	ErrTooManyNodes = errors.New("visgraph: too many nodes")

	// ErrInvalidObstacle wraps a geometry validation failure.
	ErrInvalidObstacle = errors.New("visgraph: invalid obstacle")
)

// NodeID is the index of a node in its Graph.
type NodeID int

// NoNode marks an absent node, e.g. the parent of Start.
const NoNode NodeID = -1

// Kind distinguishes obstacle vertices from the two endpoints.
type Kind uint8

const (
	// Vertex is a corner of an obstacle polygon.
	Vertex Kind = iota
	// Start is the search origin.
	Start
	// Goal is the search target.
	Goal
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Goal:
		return "goal"
	}
	return "vertex"
}

// Node is a graph vertex.
type Node struct {
	ID  NodeID
	Pos geometry.Point
	// H is the Euclidean distance to the Goal.
	H    float64
	Kind Kind
	// Obstacle is the index of the owning polygon, or -1 for endpoints.
	Obstacle int

	neighbors []NodeID
}

// Neighbors returns the adjacency list. The slice must not be modified.
func (n *Node) Neighbors() []NodeID {
	return n.neighbors
}

// Degree is the number of neighbors.
func (n *Node) Degree() int {
	return len(n.neighbors)
}

// Edge is an undirected edge, reported with A < B.
type Edge struct {
	A, B NodeID
}

// Stats summarizes a graph version.
type Stats struct {
	Nodes     int `json:"nodes"`
	Edges     int `json:"edges"`
	Obstacles int `json:"obstacles"`
}

// Graph owns all nodes and their adjacency for one graph version.
type Graph struct {
	nodes     []*Node
	obstacles []geometry.Polygon
	index     *ObstacleIndex
	start     NodeID
	goal      NodeID
	edges     int
	opts      Options
}

// Len is the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) *Node { return g.nodes[id] }

// Nodes returns the arena in NodeID order. The slice must not be modified.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Obstacles returns the polygons the graph was built from.
func (g *Graph) Obstacles() []geometry.Polygon { return g.obstacles }

// StartID returns the id of the Start node.
func (g *Graph) StartID() NodeID { return g.start }

// GoalID returns the id of the Goal node.
func (g *Graph) GoalID() NodeID { return g.goal }

// Start returns the Start node.
func (g *Graph) Start() *Node { return g.nodes[g.start] }

// Goal returns the Goal node.
func (g *Graph) Goal() *Node { return g.nodes[g.goal] }

// Neighbors returns the adjacency list of id.
func (g *Graph) Neighbors(id NodeID) []NodeID { return g.nodes[id].neighbors }

// Heuristic returns h(id).
func (g *Graph) Heuristic(id NodeID) float64 { return g.nodes[id].H }

// Position returns the location of id.
func (g *Graph) Position(id NodeID) geometry.Point { return g.nodes[id].Pos }

// Distance is the edge cost between a and b. Costs are not stored; they are
// recomputed from positions on every call.
func (g *Graph) Distance(a, b NodeID) float64 {
	if a == b {
		return 0
	}
	return g.nodes[a].Pos.Distance(g.nodes[b].Pos)
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b NodeID) bool {
	na, nb := g.nodes[a], g.nodes[b]
	// Scan the shorter list.
	if len(nb.neighbors) < len(na.neighbors) {
		na, b = nb, a
	}
	for _, n := range na.neighbors {
		if n == b {
			return true
		}
	}
	return false
}

// Edges returns every undirected edge once, ordered by A and then by
// adjacency order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for _, node := range g.nodes {
		for _, n := range node.neighbors {
			if node.ID < n {
				edges = append(edges, Edge{A: node.ID, B: n})
			}
		}
	}
	return edges
}

// Stats returns node, edge and obstacle counts.
func (g *Graph) Stats() Stats {
	return Stats{Nodes: len(g.nodes), Edges: g.edges, Obstacles: len(g.obstacles)}
}

// connect adds the undirected edge a-b if it is not already present.
func (g *Graph) connect(a, b NodeID) bool {
	if a == b || g.HasEdge(a, b) {
		return false
	}
	g.nodes[a].neighbors = append(g.nodes[a].neighbors, b)
	g.nodes[b].neighbors = append(g.nodes[b].neighbors, a)
	g.edges++
	return true
}

// isolate removes every edge incident to id, keeping both sides symmetric.
func (g *Graph) isolate(id NodeID) int {
	node := g.nodes[id]
	removed := len(node.neighbors)
	for _, n := range node.neighbors {
		g.nodes[n].neighbors = removeID(g.nodes[n].neighbors, id)
	}
	node.neighbors = nil
	g.edges -= removed
	return removed
}

// removeID deletes the first occurrence of id, preserving order.
func removeID(ids []NodeID, id NodeID) []NodeID {
	for i, n := range ids {
		if n == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
