// Package scene loads planning scenes (obstacles plus the two endpoints)
// from JSON or GeoJSON and prepares them for graph construction.
package scene

import (
	"errors"
	"fmt"
	"log"

	"potential-planner/geometry"
	"potential-planner/visgraph"
)

var (
	// ErrMissingEndpoint indicates a scene without a Start or a Goal.
	ErrMissingEndpoint = errors.New("scene: start and goal are required")

	// ErrUnsupportedFormat indicates a file that is neither JSON nor GeoJSON.
	ErrUnsupportedFormat = errors.New("scene: unsupported file format")
)

// Scene is the input to a graph build. An empty obstacle list is valid.
type Scene struct {
	Obstacles []geometry.Polygon `json:"obstacles"`
	Start     *geometry.Point    `json:"start"`
	Goal      *geometry.Point    `json:"goal"`
}

// Validate checks that both endpoints are present and every obstacle is a
// simple polygon.
func (s *Scene) Validate() error {
	if s.Start == nil || s.Goal == nil {
		return ErrMissingEndpoint
	}
	for i, obstacle := range s.Obstacles {
		if err := obstacle.Validate(); err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
	}
	return nil
}

// Build validates the scene and constructs its visibility graph.
func (s *Scene) Build(opts ...visgraph.Option) (*visgraph.Graph, error) {
	if s.Start == nil || s.Goal == nil {
		return nil, ErrMissingEndpoint
	}
	return visgraph.Build(s.Obstacles, *s.Start, *s.Goal, opts...)
}

// PreprocessOptions controls Preprocess.
type PreprocessOptions struct {
	// SimplifyEpsilon is the Douglas-Peucker tolerance; 0 disables it.
	SimplifyEpsilon float64
	// DropContained removes obstacles lying entirely inside another.
	DropContained bool
	// MergeTolerance, when positive, replaces obstacles sharing an edge
	// (vertices equal within the tolerance) by their convex hull.
	MergeTolerance float64
	Quiet          bool
}

// Preprocess returns a copy of the scene with its obstacles reduced per
// opts. It also logs warnings for inputs the search tolerates but a user
// probably did not intend: overlapping obstacles and endpoints inside an
// obstacle.
func (s *Scene) Preprocess(opts PreprocessOptions) *Scene {
	out := &Scene{Start: s.Start, Goal: s.Goal}
	obstacles := s.Obstacles

	if opts.SimplifyEpsilon > 0 {
		before := vertexCount(obstacles)
		obstacles = geometry.SimplifyPolygons(obstacles, opts.SimplifyEpsilon)
		logf(opts, "   Simplified obstacles: %d -> %d vertices\n", before, vertexCount(obstacles))
	}

	if opts.DropContained && len(obstacles) > 1 {
		before := len(obstacles)
		obstacles = geometry.RemoveContainedPolygons(obstacles)
		logf(opts, "   Obstacles after removing contained: %d (removed %d)\n",
			len(obstacles), before-len(obstacles))
	}

	if opts.MergeTolerance > 0 && len(obstacles) > 1 {
		before := len(obstacles)
		obstacles = geometry.MergeAdjacentPolygons(obstacles, opts.MergeTolerance)
		logf(opts, "   Obstacles after merging adjacent: %d (was %d)\n", len(obstacles), before)
	}

	out.Obstacles = obstacles

	for _, w := range out.Warnings() {
		logf(opts, "⚠️  %s\n", w)
	}
	return out
}

// Warnings describes suspicious but accepted properties of the scene.
func (s *Scene) Warnings() []string {
	var warnings []string
	for i := 0; i < len(s.Obstacles); i++ {
		for j := i + 1; j < len(s.Obstacles); j++ {
			if geometry.Overlaps(s.Obstacles[i], s.Obstacles[j]) {
				warnings = append(warnings, fmt.Sprintf("obstacles %d and %d overlap", i, j))
			}
		}
	}
	for _, ep := range []struct {
		name string
		p    *geometry.Point
	}{{"start", s.Start}, {"goal", s.Goal}} {
		if ep.p == nil {
			continue
		}
		for i, obstacle := range s.Obstacles {
			if geometry.Contains(obstacle, *ep.p) {
				warnings = append(warnings, fmt.Sprintf("%s lies inside obstacle %d", ep.name, i))
			}
		}
	}
	return warnings
}

func vertexCount(polygons []geometry.Polygon) int {
	n := 0
	for _, p := range polygons {
		n += len(p.Vertices)
	}
	return n
}

func logf(opts PreprocessOptions, format string, args ...interface{}) {
	if !opts.Quiet {
		log.Printf(format, args...)
	}
}
