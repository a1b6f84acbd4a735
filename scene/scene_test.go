package scene

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"potential-planner/geometry"
	"potential-planner/visgraph"
)

func pt(x, y float64) *geometry.Point { return &geometry.Point{X: x, Y: y} }

func square(x, y, size float64) geometry.Polygon {
	return geometry.Polygon{Vertices: []geometry.Point{
		{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size},
	}}
}

const triangleJSON = `{
	"obstacles": [{"vertices": [{"x": 4, "y": -2}, {"x": 6, "y": -2}, {"x": 5, "y": 1}]}],
	"start": {"x": 0, "y": 0},
	"goal": {"x": 10, "y": 0}
}`

const triangleGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "properties": {"name": "rock"},
		 "geometry": {"type": "Polygon", "coordinates": [[[4, -2], [6, -2], [5, 1], [4, -2]]]}},
		{"type": "Feature", "properties": {"role": "start"},
		 "geometry": {"type": "Point", "coordinates": [0, 0]}},
		{"type": "Feature", "properties": {"role": "Goal"},
		 "geometry": {"type": "Point", "coordinates": [10, 0]}},
		{"type": "Feature", "properties": {},
		 "geometry": {"type": "LineString", "coordinates": [[0, 5], [1, 5]]}}
	]
}`

func TestDecodeJSON(t *testing.T) {
	s, err := DecodeJSON(strings.NewReader(triangleJSON))
	require.NoError(t, err)

	require.Len(t, s.Obstacles, 1)
	assert.Len(t, s.Obstacles[0].Vertices, 3)
	assert.Equal(t, pt(0, 0), s.Start)
	assert.Equal(t, pt(10, 0), s.Goal)
	assert.NoError(t, s.Validate())
}

func TestDecodeJSON_Malformed(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(`{"obstacles": [`))
	assert.Error(t, err)
}

func TestDecodeGeoJSON(t *testing.T) {
	s, err := DecodeGeoJSON([]byte(triangleGeoJSON))
	require.NoError(t, err)

	require.Len(t, s.Obstacles, 1)
	assert.Equal(t, []geometry.Point{{X: 4, Y: -2}, {X: 6, Y: -2}, {X: 5, Y: 1}}, s.Obstacles[0].Vertices,
		"closing vertex is dropped")
	assert.Equal(t, pt(0, 0), s.Start)
	assert.Equal(t, pt(10, 0), s.Goal)
}

func TestDecodeGeoJSON_MultiPolygon(t *testing.T) {
	data := `{"type": "FeatureCollection", "features": [{"type": "Feature", "properties": null,
		"geometry": {"type": "MultiPolygon", "coordinates": [
			[[[0, 0], [1, 0], [1, 1], [0, 0]]],
			[[[5, 5], [6, 5], [6, 6], [5, 6], [5, 5]], [[5.2, 5.2], [5.4, 5.2], [5.4, 5.4], [5.2, 5.2]]]
		]}}]}`

	s, err := DecodeGeoJSON([]byte(data))
	require.NoError(t, err)
	require.Len(t, s.Obstacles, 2)
	assert.Len(t, s.Obstacles[0].Vertices, 3)
	assert.Len(t, s.Obstacles[1].Vertices, 4, "holes are ignored")
	assert.Nil(t, s.Start)
	assert.ErrorIs(t, s.Validate(), ErrMissingEndpoint)
}

func TestDecodeGeoJSON_ReadsGraphExport(t *testing.T) {
	orig, err := DecodeJSON(strings.NewReader(triangleJSON))
	require.NoError(t, err)
	g, err := orig.Build(visgraph.WithQuiet())
	require.NoError(t, err)

	data, err := json.Marshal(g.GeoJSON())
	require.NoError(t, err)

	s, err := DecodeGeoJSON(data)
	require.NoError(t, err)
	assert.Equal(t, orig.Obstacles, s.Obstacles)
	assert.Equal(t, orig.Start, s.Start)
	assert.Equal(t, orig.Goal, s.Goal)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "scene.json")
	geoPath := filepath.Join(dir, "scene.geojson")
	txtPath := filepath.Join(dir, "scene.txt")
	require.NoError(t, os.WriteFile(jsonPath, []byte(triangleJSON), 0o644))
	require.NoError(t, os.WriteFile(geoPath, []byte(triangleGeoJSON), 0o644))
	require.NoError(t, os.WriteFile(txtPath, []byte(triangleJSON), 0o644))

	a, err := LoadFile(jsonPath)
	require.NoError(t, err)
	b, err := LoadFile(geoPath)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = LoadFile(txtPath)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadObstacleDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.geojson"), []byte(triangleGeoJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.geojson"), []byte(`not json`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.json"), []byte(triangleJSON), 0o644))

	polygons, err := LoadObstacleDir(dir)
	require.NoError(t, err)
	assert.Len(t, polygons, 1)
}

func TestValidate(t *testing.T) {
	s := &Scene{Start: pt(0, 0), Goal: pt(1, 1)}
	assert.NoError(t, s.Validate(), "empty obstacle list is valid")

	s.Obstacles = []geometry.Polygon{{Vertices: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}}}
	err := s.Validate()
	assert.ErrorIs(t, err, geometry.ErrTooFewVertices)
	assert.Contains(t, err.Error(), "obstacle 0")

	assert.ErrorIs(t, (&Scene{Start: pt(0, 0)}).Validate(), ErrMissingEndpoint)
}

func TestBuild_MissingEndpoint(t *testing.T) {
	_, err := (&Scene{Goal: pt(1, 1)}).Build(visgraph.WithQuiet())
	assert.ErrorIs(t, err, ErrMissingEndpoint)
}

func TestPreprocess_DropContained(t *testing.T) {
	s := &Scene{
		Obstacles: []geometry.Polygon{square(0, 0, 10), square(2, 2, 1), square(20, 0, 1)},
		Start:     pt(-5, -5),
		Goal:      pt(30, 30),
	}

	out := s.Preprocess(PreprocessOptions{DropContained: true, Quiet: true})
	assert.Equal(t, []geometry.Polygon{square(0, 0, 10), square(20, 0, 1)}, out.Obstacles)
	assert.Len(t, s.Obstacles, 3, "input is untouched")
	assert.Same(t, s.Start, out.Start)
}

func TestPreprocess_MergeAdjacent(t *testing.T) {
	s := &Scene{
		Obstacles: []geometry.Polygon{square(0, 0, 2), square(2, 0, 2)},
		Start:     pt(-1, -1),
		Goal:      pt(5, 5),
	}

	out := s.Preprocess(PreprocessOptions{MergeTolerance: 1e-9, Quiet: true})
	require.Len(t, out.Obstacles, 1)
	assert.Equal(t, []geometry.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 2}, {X: 0, Y: 2}}, out.Obstacles[0].Vertices)
}

func TestPreprocess_Simplify(t *testing.T) {
	bumpy := geometry.Polygon{Vertices: []geometry.Point{
		{X: 0, Y: 0}, {X: 5, Y: 0.01}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}}
	s := &Scene{Obstacles: []geometry.Polygon{bumpy}, Start: pt(-1, -1), Goal: pt(11, 11)}

	out := s.Preprocess(PreprocessOptions{SimplifyEpsilon: 0.1, Quiet: true})
	require.Len(t, out.Obstacles, 1)
	assert.Len(t, out.Obstacles[0].Vertices, 4)

	same := s.Preprocess(PreprocessOptions{Quiet: true})
	assert.Equal(t, s.Obstacles, same.Obstacles)
}

func TestWarnings(t *testing.T) {
	s := &Scene{
		Obstacles: []geometry.Polygon{square(0, 0, 4), square(2, 2, 4), square(10, 10, 1)},
		Start:     pt(1, 1),
		Goal:      pt(20, 20),
	}

	assert.ElementsMatch(t, []string{
		"obstacles 0 and 1 overlap",
		"start lies inside obstacle 0",
	}, s.Warnings())

	clean := &Scene{Obstacles: []geometry.Polygon{square(10, 10, 1)}, Start: pt(0, 0), Goal: pt(20, 20)}
	assert.Empty(t, clean.Warnings())
}
