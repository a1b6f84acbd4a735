package potential

import (
	"fmt"
	"math"
	"time"

	"potential-planner/visgraph"
)

// Session is one anytime search over a graph. Create it with NewSession,
// drive it with RunRound (or Run), and discard it or call Reset to start
// over. The graph must not be mutated while a session is in progress;
// after a rebuild, Reset the session before running it again.
type Session struct {
	graph Graph
	open  *frontier

	g      []float64
	parent []visgraph.NodeID

	incumbent float64 // G: cost of the best solution so far
	bound     float64 // E: running minimum potential of expanded nodes

	rounds    int
	solutions int
	last      Status
}

// NewSession prepares a search over graph with g(Start) = 0 and only Start
// open.
func NewSession(graph Graph) (*Session, error) {
	if graph == nil {
		return nil, ErrNilGraph
	}
	if g, ok := graph.(*visgraph.Graph); ok && g == nil {
		return nil, ErrNilGraph
	}
	s := &Session{graph: graph, open: newFrontier(graph.Len())}
	s.Reset()
	return s, nil
}

// Reset clears every search-scoped value without touching the graph:
// g = +Inf everywhere except g(Start) = 0, no parents, G = E = +Inf, and an
// open set holding only Start.
func (s *Session) Reset() {
	n := s.graph.Len()
	if len(s.g) != n {
		s.g = make([]float64, n)
		s.parent = make([]visgraph.NodeID, n)
	}
	for i := range s.g {
		s.g[i] = math.Inf(1)
		s.parent[i] = visgraph.NoNode
	}

	s.incumbent = math.Inf(1)
	s.bound = math.Inf(1)
	s.rounds = 0
	s.solutions = 0
	s.last = 0

	start := s.graph.StartID()
	s.g[start] = 0
	s.open.reset(n)
	s.open.upsert(s.entry(start))
}

// RunRound expands open nodes until the Goal is reached or the open set
// empties.
//
// On success G drops to the new path's cost, the solution is returned with
// Status Improved, and the open set is pruned against the new G. When the
// open set empties first the session is finished: Status is NoPath if no
// solution was ever found and Converged otherwise. Calling RunRound on a
// finished session returns the same terminal status again.
func (s *Session) RunRound() RoundResult {
	if s.open.Len() == 0 {
		return s.finish(0, 0)
	}

	began := time.Now()
	s.rounds++
	goal := s.graph.GoalID()
	expanded := 0

	for s.open.Len() > 0 {
		c := s.open.popBest().id

		if c == goal {
			s.incumbent = s.g[goal]
			elapsed := time.Since(began)
			sol := s.solution(elapsed)
			s.prune()
			s.last = Improved
			return RoundResult{
				Status:   Improved,
				Solution: &sol,
				Bound:    s.bound,
				Expanded: expanded,
				Elapsed:  elapsed,
			}
		}

		if phi := s.potential(c); phi < s.bound {
			s.bound = phi
		}
		expanded++

		for _, n := range s.graph.Neighbors(c) {
			gn := s.g[c] + s.graph.Distance(c, n)
			if gn >= s.g[n] {
				continue
			}
			s.g[n] = gn
			s.parent[n] = c

			// An open node is re-keyed on its new g even when it can no
			// longer beat G; only new insertions are filtered.
			if s.open.contains(n) || gn+s.graph.Heuristic(n) < s.incumbent {
				s.open.upsert(s.entry(n))
			}
		}
	}

	return s.finish(expanded, time.Since(began))
}

// prune re-keys every open node against the tightened G and discards those
// whose potential is no longer below it.
//
// The predicate compares the dimensionless Φ(n) with the cost G. That is
// the historical behavior of this search and is kept as is.
func (s *Session) prune() int {
	s.open.unbounded = math.IsInf(s.incumbent, 1)
	return s.open.retain(func(e *entry) bool {
		e.phi = s.potential(e.id)
		return e.phi < s.incumbent
	})
}

func (s *Session) finish(expanded int, elapsed time.Duration) RoundResult {
	s.last = NoPath
	if s.solutions > 0 {
		s.last = Converged
	}
	return RoundResult{Status: s.last, Bound: s.bound, Expanded: expanded, Elapsed: elapsed}
}

// potential is Φ(id) against the current G. A node with h = 0 (the Goal)
// has potential +Inf.
func (s *Session) potential(id visgraph.NodeID) float64 {
	h := s.graph.Heuristic(id)
	if h <= 0 {
		return math.Inf(1)
	}
	return (s.incumbent - s.g[id]) / h
}

func (s *Session) entry(id visgraph.NodeID) entry {
	return entry{
		id:   id,
		goal: id == s.graph.GoalID(),
		phi:  s.potential(id),
		g:    s.g[id],
		h:    s.graph.Heuristic(id),
	}
}

// solution follows parent links from the Goal back to Start.
func (s *Session) solution(elapsed time.Duration) Solution {
	var ids []visgraph.NodeID
	for id := s.graph.GoalID(); id != visgraph.NoNode; id = s.parent[id] {
		ids = append(ids, id)
		if len(ids) > s.graph.Len() {
			// parent only changes on a strict decrease of g, so a cycle
			// means the graph was mutated under a running session.
			panic(fmt.Sprintf("potential: parent chain from goal exceeds %d nodes", s.graph.Len()))
		}
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}

	s.solutions++
	sol := Solution{
		Index:   s.solutions,
		Nodes:   ids,
		Cost:    s.incumbent,
		Elapsed: elapsed,
	}
	for _, id := range ids {
		sol.Path = append(sol.Path, s.graph.Position(id))
	}
	return sol
}

// Done reports whether the open set is empty, i.e. no further round can
// produce a solution.
func (s *Session) Done() bool { return s.open.Len() == 0 }

// Status is the status of the last round, or 0 before any round ran.
func (s *Session) Status() Status { return s.last }

// Incumbent returns G, the cost of the best solution so far (+Inf if none).
func (s *Session) Incumbent() float64 { return s.incumbent }

// Bound returns E, the running minimum potential.
func (s *Session) Bound() float64 { return s.bound }

// G returns the best known cost from Start to id.
func (s *Session) G(id visgraph.NodeID) float64 { return s.g[id] }

// Parent returns the predecessor of id on its best known path.
func (s *Session) Parent(id visgraph.NodeID) visgraph.NodeID { return s.parent[id] }

// Potential returns Φ(id) against the current G.
func (s *Session) Potential(id visgraph.NodeID) float64 { return s.potential(id) }

// InOpen reports whether id is in the open set.
func (s *Session) InOpen(id visgraph.NodeID) bool { return s.open.contains(id) }

// OpenLen is the size of the open set.
func (s *Session) OpenLen() int { return s.open.Len() }

// Rounds counts rounds that did work since the last Reset.
func (s *Session) Rounds() int { return s.rounds }

// Solutions counts solutions emitted since the last Reset.
func (s *Session) Solutions() int { return s.solutions }
