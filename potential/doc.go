// Package potential implements an anytime, bounded-cost best-first search
// (Potential Search) over a visibility graph.
//
// A Session keeps an open set ranked by the potential
//
//	Φ(n) = (G − g(n)) / h(n)
//
// where G is the cost of the best solution found so far (+Inf before the
// first one). The Goal, when open, is always selected first. Each call to
// RunRound expands nodes until the Goal is reached, tightening G to the new
// path's cost, or until the open set empties. After every improvement the
// open set is re-ranked against the new G and pruned. The sequence of
// solution costs a session emits is strictly decreasing.
//
// While G is +Inf every potential is +Inf; the ranking then uses the limit
// of Φ as G grows, which orders by smaller h first and smaller g second.
//
// Sessions own all search-scoped state (open set, G, the running minimum
// potential E, and per-node g and parent), so independent sessions over
// the same graph may run concurrently as long as nobody mutates the graph.
// A Session itself is not safe for concurrent use.
//
// Example:
//
//	s, err := potential.NewSession(g)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for !s.Done() {
//	    r := s.RunRound()
//	    if r.Status != potential.Improved {
//	        break
//	    }
//	    fmt.Println(r.Solution)
//	}
package potential
