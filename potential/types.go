package potential

import (
	"errors"
	"fmt"
	"time"

	"potential-planner/geometry"
	"potential-planner/visgraph"
)

// Sentinel errors.
var (
	// ErrNilGraph indicates NewSession was given a nil graph.
	ErrNilGraph = errors.New("potential: graph is nil")

	// ErrNoPath is reported by Summary.Err when the open set emptied without
	// the Goal ever being reached.
	ErrNoPath = errors.New("potential: no path exists")
)

// Graph is the read-only view of a visibility graph the search needs.
// *visgraph.Graph implements it.
type Graph interface {
	Len() int
	StartID() visgraph.NodeID
	GoalID() visgraph.NodeID
	Neighbors(id visgraph.NodeID) []visgraph.NodeID
	Heuristic(id visgraph.NodeID) float64
	Distance(a, b visgraph.NodeID) float64
	Position(id visgraph.NodeID) geometry.Point
}

// Status is the outcome of a round.
type Status int

const (
	// Improved means the round reached the Goal with a cheaper path.
	Improved Status = iota + 1
	// NoPath means the open set emptied and no solution was ever found.
	NoPath
	// Converged means the open set emptied after at least one solution; the
	// last solution is final.
	Converged
)

func (s Status) String() string {
	switch s {
	case Improved:
		return "improved"
	case NoPath:
		return "no_path"
	case Converged:
		return "converged"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for _, v := range []Status{Improved, NoPath, Converged} {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("potential: unknown status %q", text)
}

// Terminal reports whether no further round can improve the result.
func (s Status) Terminal() bool {
	return s == NoPath || s == Converged
}

// Solution is one improving Start→Goal path.
type Solution struct {
	Index   int               `json:"index"` // 1-based ordinal within the session
	Path    []geometry.Point  `json:"path"`
	Nodes   []visgraph.NodeID `json:"nodes"`
	Cost    float64           `json:"cost"`
	Elapsed time.Duration     `json:"elapsedNs"`
}

func (s Solution) String() string {
	return fmt.Sprintf("Solution #%2d | %7.2f ms | cost %.4f | %d waypoints",
		s.Index, float64(s.Elapsed)/float64(time.Millisecond), s.Cost, len(s.Path))
}

// RoundResult reports one call to RunRound.
type RoundResult struct {
	Status Status
	// Solution is set only when Status is Improved.
	Solution *Solution
	// Bound is the running minimum potential E after the round.
	Bound float64
	// Expanded counts non-goal nodes popped during the round.
	Expanded int
	Elapsed  time.Duration
}
