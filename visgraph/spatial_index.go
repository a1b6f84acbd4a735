package visgraph

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"potential-planner/geometry"
)

// boxPadding widens every box so that boxes which merely touch still
// intersect in the tree.
const boxPadding = 1e-6

// obstacleEntry wraps an obstacle's bounding box for R-tree storage
type obstacleEntry struct {
	id   int
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// ObstacleIndex answers "which obstacles could a segment hit" by bounding
// box, so a visibility test only runs the exact interior check against
// nearby polygons.
type ObstacleIndex struct {
	tree  *rtreego.Rtree
	count int
}

// NewObstacleIndex indexes the bounding boxes of the given obstacles.
func NewObstacleIndex(obstacles []geometry.Polygon) *ObstacleIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for i, obstacle := range obstacles {
		bbox, err := toRect(obstacle.Bound())
		if err != nil {
			continue
		}
		tree.Insert(&obstacleEntry{id: i, bbox: bbox})
	}

	return &ObstacleIndex{tree: tree, count: len(obstacles)}
}

// Candidates returns the indices of obstacles whose box meets the segment's
// box. If the query box cannot be built every obstacle is returned.
func (ix *ObstacleIndex) Candidates(seg geometry.Segment) []int {
	bbox, err := toRect(seg.Bound())
	if err != nil {
		all := make([]int, ix.count)
		for i := range all {
			all[i] = i
		}
		return all
	}

	results := ix.tree.SearchIntersect(bbox)
	ids := make([]int, 0, len(results))
	for _, item := range results {
		ids = append(ids, item.(*obstacleEntry).id)
	}
	return ids
}

// Size is the number of indexed obstacles.
func (ix *ObstacleIndex) Size() int {
	return ix.tree.Size()
}

// toRect converts a padded orb.Bound to an rtreego.Rect.
func toRect(b orb.Bound) (rtreego.Rect, error) {
	b = b.Pad(boxPadding)
	return rtreego.NewRect(
		rtreego.Point{b.Min.X(), b.Min.Y()},
		[]float64{b.Max.X() - b.Min.X(), b.Max.Y() - b.Min.Y()},
	)
}
