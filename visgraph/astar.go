package visgraph

import (
	"container/heap"
	"math"
)

// searchNode represents a node in the A* search
type searchNode struct {
	id     NodeID
	g      float64 // Cost from start to this node
	f      float64 // Total cost (g + h)
	parent *searchNode
	index  int // Index in the heap
}

// priorityQueue implements heap.Interface for A*
type priorityQueue []*searchNode

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].f < pq[j].f
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*searchNode)
	node.index = n
	*pq = append(*pq, node)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*pq = old[0 : n-1]
	return node
}

// ShortestPath computes the optimal Start→Goal path with A*, using each
// node's H as the heuristic. It is independent of the anytime search and
// serves as the reference optimum for it. The cost is +Inf when the Goal is
// unreachable.
func ShortestPath(g *Graph) ([]NodeID, float64, bool) {
	if g == nil || len(g.nodes) == 0 {
		return nil, math.Inf(1), false
	}

	openSet := &priorityQueue{}
	heap.Init(openSet)

	startNode := &searchNode{id: g.start, g: 0, f: g.nodes[g.start].H}
	heap.Push(openSet, startNode)

	closedSet := make(map[NodeID]bool)
	openSetMap := map[NodeID]*searchNode{g.start: startNode}

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*searchNode)
		delete(openSetMap, current.id)

		// Check if we reached the goal
		if current.id == g.goal {
			var path []NodeID
			for node := current; node != nil; node = node.parent {
				path = append(path, node.id)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, current.g, true
		}

		closedSet[current.id] = true

		for _, neighborID := range g.nodes[current.id].neighbors {
			if closedSet[neighborID] {
				continue
			}

			tentativeG := current.g + g.Distance(current.id, neighborID)

			neighbor, exists := openSetMap[neighborID]
			if !exists {
				neighbor = &searchNode{
					id:     neighborID,
					g:      tentativeG,
					f:      tentativeG + g.nodes[neighborID].H,
					parent: current,
				}
				heap.Push(openSet, neighbor)
				openSetMap[neighborID] = neighbor
			} else if tentativeG < neighbor.g {
				// Found a better path to this neighbor
				neighbor.g = tentativeG
				neighbor.f = neighbor.g + g.nodes[neighborID].H
				neighbor.parent = current
				heap.Fix(openSet, neighbor.index)
			}
		}
	}

	// No path found
	return nil, math.Inf(1), false
}

// PathCost sums edge costs along a node sequence.
func (g *Graph) PathCost(path []NodeID) float64 {
	cost := 0.0
	for i := 1; i < len(path); i++ {
		cost += g.Distance(path[i-1], path[i])
	}
	return cost
}
