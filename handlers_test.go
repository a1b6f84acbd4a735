package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"potential-planner/potential"
)

const triangleScene = `{
	"obstacles": [{"vertices": [{"x": 4, "y": -2}, {"x": 6, "y": -2}, {"x": 5, "y": 1}]}],
	"start": {"x": 0, "y": 0},
	"goal": {"x": 10, "y": 0}
}`

func testServer(t *testing.T) (*server, *httptest.Server) {
	t.Helper()
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	srv := newServer(cfg)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestSceneThenSearch(t *testing.T) {
	_, ts := testServer(t)

	resp := post(t, ts, "/scene", triangleScene)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var built GraphResponse
	decode(t, resp, &built)
	assert.True(t, built.Success)
	assert.Equal(t, 5, built.Stats.Nodes)
	assert.Equal(t, 7, built.Stats.Edges)

	resp = post(t, ts, "/search", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found SearchResponse
	decode(t, resp, &found)

	assert.True(t, found.Success)
	assert.Equal(t, potential.Converged, found.Status)
	require.NotEmpty(t, found.Solutions)
	best := found.Solutions[len(found.Solutions)-1]
	assert.InDelta(t, 2*math.Sqrt(26), best.Cost, 1e-9)
	require.NotNil(t, found.Optimum)
	assert.InDelta(t, *found.Optimum, best.Cost, 1e-9)
}

func TestSearchWithoutScene(t *testing.T) {
	_, ts := testServer(t)

	resp := post(t, ts, "/search", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e errorResponse
	decode(t, resp, &e)
	assert.False(t, e.Success)
	assert.Contains(t, e.Error, "no scene")
}

func TestSearchNoPath(t *testing.T) {
	_, ts := testServer(t)

	body := `{"obstacles": [{"vertices": [{"x": -1, "y": -1}, {"x": 1, "y": -1}, {"x": 1, "y": 1}, {"x": -1, "y": 1}]}],
		"start": {"x": 0, "y": 0}, "goal": {"x": 10, "y": 0}}`
	resp := post(t, ts, "/scene", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var built GraphResponse
	decode(t, resp, &built)
	assert.Contains(t, built.Warnings, "start lies inside obstacle 0")

	resp = post(t, ts, "/search", "{}")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found SearchResponse
	decode(t, resp, &found)
	assert.False(t, found.Success)
	assert.Equal(t, potential.NoPath, found.Status)
	assert.Empty(t, found.Solutions)
	assert.Nil(t, found.Optimum)
	assert.Nil(t, found.Bound)
	assert.Equal(t, potential.ErrNoPath.Error(), found.Message)
}

func TestSceneRejectsBadInput(t *testing.T) {
	_, ts := testServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"obstacles": [`},
		{"missing goal", `{"start": {"x": 0, "y": 0}}`},
		{"start equals goal", `{"start": {"x": 1, "y": 1}, "goal": {"x": 1, "y": 1}}`},
		{"two-vertex obstacle", `{"obstacles": [{"vertices": [{"x": 0, "y": 0}, {"x": 1, "y": 0}]}],
			"start": {"x": 5, "y": 5}, "goal": {"x": 9, "y": 9}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/scene", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSceneGeoJSON(t *testing.T) {
	_, ts := testServer(t)

	body := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[4, -2], [6, -2], [5, 1], [4, -2]]]}},
		{"type": "Feature", "properties": {"role": "start"}, "geometry": {"type": "Point", "coordinates": [0, 0]}},
		{"type": "Feature", "properties": {"role": "goal"}, "geometry": {"type": "Point", "coordinates": [10, 0]}}
	]}`
	resp, err := http.Post(ts.URL+"/scene", "application/geo+json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var built GraphResponse
	decode(t, resp, &built)
	assert.Equal(t, 5, built.Stats.Nodes)
}

func TestMoveEndpoint(t *testing.T) {
	srv, ts := testServer(t)

	body := `{"obstacles": [{"vertices": [{"x": 4, "y": 3}, {"x": 6, "y": 3}, {"x": 5, "y": 5}]}],
		"start": {"x": 0, "y": 0}, "goal": {"x": 10, "y": 0}}`
	require.Equal(t, http.StatusOK, post(t, ts, "/scene", body).StatusCode)
	require.Equal(t, http.StatusOK, post(t, ts, "/search", "").StatusCode)

	resp := post(t, ts, "/moveEndpoint", `{"endpoint": "goal", "position": {"x": 10, "y": 1}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	srv.mu.Lock()
	assert.Nil(t, srv.last, "solutions are cleared after a move")
	srv.mu.Unlock()

	resp = post(t, ts, "/search", "")
	var found SearchResponse
	decode(t, resp, &found)
	require.NotEmpty(t, found.Solutions)
	assert.InDelta(t, math.Sqrt(101), found.Solutions[0].Cost, 1e-9)

	resp = post(t, ts, "/moveEndpoint", `{"endpoint": "middle", "position": {"x": 1, "y": 1}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts, "/moveEndpoint", `{"endpoint": "start", "position": {"x": 4, "y": 3}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "obstacle vertex is a degenerate endpoint")
}

func TestGraphLines(t *testing.T) {
	_, ts := testServer(t)

	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/graphLines").StatusCode)

	require.Equal(t, http.StatusOK, post(t, ts, "/scene", triangleScene).StatusCode)
	require.Equal(t, http.StatusOK, post(t, ts, "/search", "").StatusCode)

	resp := get(t, ts, "/graphLines")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)

	kinds := map[string]int{}
	for _, f := range fc.Features {
		kinds[f.Properties.MustString("kind", "")]++
	}
	assert.Equal(t, 1, kinds["obstacle"])
	assert.Equal(t, 7, kinds["edge"])
	assert.Equal(t, 1, kinds["start"])
	assert.Equal(t, 1, kinds["goal"])
	assert.Equal(t, 1, kinds["solution"])
}

func TestRenderPNG(t *testing.T) {
	_, ts := testServer(t)
	require.Equal(t, http.StatusOK, post(t, ts, "/scene", triangleScene).StatusCode)

	resp := get(t, ts, "/render.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())

	resp = get(t, ts, "/render.png?width=200")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	img, err = png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())

	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/render.png?width=abc").StatusCode)
}

func TestHealth(t *testing.T) {
	_, ts := testServer(t)

	var health map[string]interface{}
	decode(t, get(t, ts, "/health"), &health)
	assert.Equal(t, "waiting for scene", health["status"])

	require.Equal(t, http.StatusOK, post(t, ts, "/scene", triangleScene).StatusCode)
	health = nil
	decode(t, get(t, ts, "/health"), &health)
	assert.Equal(t, "ready", health["status"])
	assert.EqualValues(t, 5, health["numNodes"])
}

func TestMethodNotAllowedAndPreflight(t *testing.T) {
	_, ts := testServer(t)

	assert.Equal(t, http.StatusMethodNotAllowed, get(t, ts, "/scene").StatusCode)
	assert.Equal(t, http.StatusMethodNotAllowed, post(t, ts, "/graphLines", "").StatusCode)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/search", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	_, ts := testServer(t)
	require.Equal(t, http.StatusOK, post(t, ts, "/scene", triangleScene).StatusCode)
	require.Equal(t, http.StatusOK, post(t, ts, "/search", "").StatusCode)

	resp := get(t, ts, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "planner_graph_builds_total")
	assert.Contains(t, buf.String(), "planner_solutions_total")
}

func TestParseFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"addr": ":9000", "maxNodes": 50, "dropContained": true}`), 0o644))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-config", path, "-scene", "scene.geojson"})
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 50, cfg.MaxNodes)
	assert.True(t, cfg.DropContained)
	assert.Equal(t, "scene.geojson", cfg.SceneFile)
	assert.Equal(t, 800, cfg.RenderWidth, "defaults fill unset fields")

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err = parseFlags(fs, []string{"-config", path, "-addr", ":7000"})
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)

	_, err = LoadConfig(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadStartupScene(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.json")
	renderPath := filepath.Join(dir, "out.png")
	require.NoError(t, os.WriteFile(scenePath, []byte(triangleScene), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.SceneFile = scenePath
	cfg.RenderFile = renderPath

	srv := newServer(cfg)
	require.NoError(t, srv.loadStartupScene())
	require.NotNil(t, srv.last)
	assert.Equal(t, potential.Converged, srv.last.Status)
	assert.FileExists(t, renderPath)
}
