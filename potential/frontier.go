package potential

import (
	"container/heap"

	"potential-planner/visgraph"
)

// entry is one open node with the ranking values it was last keyed on.
type entry struct {
	id    visgraph.NodeID
	goal  bool
	phi   float64
	g     float64
	h     float64
	index int // Index in the heap
}

// frontier is the open set: an indexed max-heap on Φ with the Goal pinned
// to the top. Membership is tracked per NodeID so a node is never present
// twice and its key can be refreshed in place.
type frontier struct {
	entries []*entry
	pos     []int // heap index per NodeID, -1 when absent
	// unbounded is set while no solution exists; Φ is +Inf for every node
	// then, so ranking falls back to its limit (smaller h, then smaller g).
	unbounded bool
}

func newFrontier(n int) *frontier {
	f := &frontier{pos: make([]int, n), unbounded: true}
	for i := range f.pos {
		f.pos[i] = -1
	}
	return f
}

func (f *frontier) Len() int { return len(f.entries) }

func (f *frontier) Less(i, j int) bool {
	a, b := f.entries[i], f.entries[j]
	if a.goal != b.goal {
		return a.goal
	}
	if f.unbounded {
		if a.h != b.h {
			return a.h < b.h
		}
		return a.g < b.g
	}
	return a.phi > b.phi
}

func (f *frontier) Swap(i, j int) {
	f.entries[i], f.entries[j] = f.entries[j], f.entries[i]
	f.entries[i].index = i
	f.entries[j].index = j
	f.pos[f.entries[i].id] = i
	f.pos[f.entries[j].id] = j
}

func (f *frontier) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(f.entries)
	f.pos[e.id] = e.index
	f.entries = append(f.entries, e)
}

func (f *frontier) Pop() interface{} {
	old := f.entries
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	f.pos[e.id] = -1
	f.entries = old[:n-1]
	return e
}

func (f *frontier) contains(id visgraph.NodeID) bool {
	return f.pos[id] >= 0
}

// upsert inserts e or refreshes the key of the entry already present.
func (f *frontier) upsert(e entry) {
	if i := f.pos[e.id]; i >= 0 {
		cur := f.entries[i]
		cur.phi, cur.g, cur.h, cur.goal = e.phi, e.g, e.h, e.goal
		heap.Fix(f, i)
		return
	}
	heap.Push(f, &e)
}

// popBest removes and returns the highest-ranked node.
func (f *frontier) popBest() *entry {
	return heap.Pop(f).(*entry)
}

// retain keeps the entries for which keep returns true and restores the
// heap order. keep may update an entry's key.
func (f *frontier) retain(keep func(e *entry) bool) int {
	kept := f.entries[:0]
	removed := 0
	for _, e := range f.entries {
		if keep(e) {
			kept = append(kept, e)
			continue
		}
		f.pos[e.id] = -1
		e.index = -1
		removed++
	}
	for i := len(kept); i < len(f.entries); i++ {
		f.entries[i] = nil
	}
	f.entries = kept
	for i, e := range f.entries {
		e.index = i
		f.pos[e.id] = i
	}
	heap.Init(f)
	return removed
}

func (f *frontier) reset(n int) {
	f.entries = f.entries[:0]
	if len(f.pos) != n {
		f.pos = make([]int, n)
	}
	for i := range f.pos {
		f.pos[i] = -1
	}
	f.unbounded = true
}
