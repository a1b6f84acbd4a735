package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"potential-planner/geometry"
	"potential-planner/potential"
	"potential-planner/render"
	"potential-planner/scene"
	"potential-planner/visgraph"
)

type MoveRequest struct {
	Endpoint string         `json:"endpoint"` // "start" or "goal"
	Position geometry.Point `json:"position"`
}

type SearchRequest struct {
	TimeoutMs int `json:"timeoutMs,omitempty"` // 0 runs to completion
}

type GraphResponse struct {
	Success  bool           `json:"success"`
	Stats    visgraph.Stats `json:"stats"`
	Warnings []string       `json:"warnings,omitempty"`
}

type SearchResponse struct {
	Success   bool                 `json:"success"`
	Status    potential.Status     `json:"status"`
	Solutions []potential.Solution `json:"solutions"`
	Rounds    int                  `json:"rounds"`
	Bound     *float64             `json:"bound"`   // running minimum potential; null while +Inf
	Optimum   *float64             `json:"optimum"` // A* reference cost; null when unreachable
	ElapsedMs float64              `json:"elapsedMs"`
	Message   string               `json:"message,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// server owns the current graph. Builds, moves and searches are serialized
// by mu; the Session keeps its state between /search calls only until the
// graph changes.
type server struct {
	cfg Config

	mu      sync.Mutex
	graph   *visgraph.Graph
	session *potential.Session
	last    *potential.Summary
}

func newServer(cfg Config) *server {
	return &server{cfg: cfg}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/scene", corsMiddleware(s.sceneHandler))
	mux.HandleFunc("/moveEndpoint", corsMiddleware(s.moveEndpointHandler))
	mux.HandleFunc("/search", corsMiddleware(s.searchHandler))
	mux.HandleFunc("/graphLines", corsMiddleware(s.graphLinesHandler))
	mux.HandleFunc("/render.png", corsMiddleware(s.renderHandler))
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️  Failed to encode response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Printf("❌ %v\n", err)
	writeJSON(w, status, errorResponse{Success: false, Error: err.Error()})
	log.Println("========================================")
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// install replaces the current graph and starts a fresh session on it.
// Callers hold mu.
func (s *server) install(g *visgraph.Graph) error {
	session, err := potential.NewSession(g)
	if err != nil {
		return err
	}
	s.graph = g
	s.session = session
	s.last = nil
	return nil
}

// buildScene preprocesses sc, builds its graph and installs it.
func (s *server) buildScene(sc *scene.Scene) (GraphResponse, error) {
	if err := sc.Validate(); err != nil {
		return GraphResponse{}, err
	}
	prepared := sc.Preprocess(s.cfg.preprocessOptions())

	began := time.Now()
	g, err := prepared.Build(s.cfg.graphOptions()...)
	if err != nil {
		observeGraph("full", visgraph.Stats{}, 0, err)
		return GraphResponse{}, err
	}
	observeGraph("full", g.Stats(), time.Since(began).Seconds(), nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.install(g); err != nil {
		return GraphResponse{}, err
	}
	return GraphResponse{Success: true, Stats: g.Stats(), Warnings: prepared.Warnings()}, nil
}

// search runs the current session to completion (or until ctx is done),
// logging each solution as it arrives. Callers hold mu.
func (s *server) search(ctx context.Context) (SearchResponse, error) {
	if s.graph == nil {
		return SearchResponse{}, errNoGraph
	}

	s.session.Reset()
	sum, err := potential.Run(ctx, s.session, func(sol potential.Solution) error {
		solutionsTotal.Inc()
		log.Printf("   %s\n", sol)
		return nil
	})
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return SearchResponse{}, err
	}
	observeSearch(sum)
	s.last = &sum

	_, optimum, _ := visgraph.ShortestPath(s.graph)

	resp := SearchResponse{
		Success:   sum.Status != potential.NoPath,
		Status:    sum.Status,
		Solutions: sum.Solutions,
		Rounds:    sum.Rounds,
		Bound:     finite(sum.Bound),
		Optimum:   finite(optimum),
		ElapsedMs: float64(sum.Elapsed) / float64(time.Millisecond),
	}
	if resp.Solutions == nil {
		resp.Solutions = []potential.Solution{}
	}
	switch {
	case err != nil:
		resp.Message = fmt.Sprintf("search stopped early: %v", err)
	case sum.Status == potential.NoPath:
		resp.Message = sum.Err().Error()
	}
	return resp, nil
}

var errNoGraph = errors.New("no scene loaded. POST /scene first")

// POST /scene - Build the visibility graph for a new scene
func (s *server) sceneHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🗺️  Scene request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		sc  *scene.Scene
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/geo+json") {
		var data []byte
		data, err = io.ReadAll(r.Body)
		if err == nil {
			sc, err = scene.DecodeGeoJSON(data)
		}
	} else {
		sc, err = scene.DecodeJSON(r.Body)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	log.Printf("   Obstacles: %d polygons\n", len(sc.Obstacles))

	resp, err := s.buildScene(sc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	log.Printf("✅ Graph built: %d nodes, %d edges\n", resp.Stats.Nodes, resp.Stats.Edges)
	log.Println("========================================")
	writeJSON(w, http.StatusOK, resp)
}

// POST /moveEndpoint - Move Start or Goal and rebuild only its edges
func (s *server) moveEndpointHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Move endpoint request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var kind visgraph.Kind
	switch strings.ToLower(req.Endpoint) {
	case "start":
		kind = visgraph.Start
	case "goal":
		kind = visgraph.Goal
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", visgraph.ErrUnknownEndpoint, req.Endpoint))
		return
	}

	log.Printf("   %s -> (%.6f, %.6f)\n", kind, req.Position.X, req.Position.Y)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph == nil {
		writeError(w, http.StatusBadRequest, errNoGraph)
		return
	}

	began := time.Now()
	err := s.graph.MoveEndpoint(kind, req.Position)
	observeGraph("move", s.graph.Stats(), time.Since(began).Seconds(), err)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// Search state refers to the old edges.
	s.session.Reset()
	s.last = nil

	stats := s.graph.Stats()
	log.Printf("✅ Graph updated: %d nodes, %d edges\n", stats.Nodes, stats.Edges)
	log.Println("========================================")
	writeJSON(w, http.StatusOK, GraphResponse{Success: true, Stats: stats})
}

// POST /search - Run the anytime search and return every improving solution
func (s *server) searchHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🔍 Search request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SearchRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}

	ctx := r.Context()
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	s.mu.Lock()
	resp, err := s.search(ctx)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if resp.Success {
		log.Printf("✅ %s after %d rounds, %d solutions\n", resp.Status, resp.Rounds, len(resp.Solutions))
	} else {
		log.Println("❌ No path exists")
	}
	log.Println("========================================")
	writeJSON(w, http.StatusOK, resp)
}

// GET /graphLines - Obstacles, endpoints, edges and the last solutions as GeoJSON
func (s *server) graphLinesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph == nil {
		writeError(w, http.StatusBadRequest, errNoGraph)
		return
	}

	fc := s.graph.GeoJSON()
	if s.last != nil {
		for _, sol := range s.last.Solutions {
			line := make(orb.LineString, 0, len(sol.Path))
			for _, p := range sol.Path {
				line = append(line, p.ToOrb())
			}
			f := geojson.NewFeature(line)
			f.Properties["kind"] = "solution"
			f.Properties["index"] = sol.Index
			f.Properties["cost"] = sol.Cost
			fc.Append(f)
		}
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// GET /render.png - Picture of the current graph and last search (?width=N downscales)
func (s *server) renderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	var solutions []potential.Solution
	if s.last != nil {
		solutions = s.last.Solutions
	}
	img := render.Scene(s.graph, solutions, s.cfg.renderOptions())
	s.mu.Unlock()

	var out image.Image = img
	if v := r.URL.Query().Get("width"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil || width <= 0 {
			http.Error(w, "width must be a positive integer", http.StatusBadRequest)
			return
		}
		out = render.Thumbnail(img, width)
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, out); err != nil {
		log.Printf("⚠️  Failed to encode PNG: %v\n", err)
	}
}

// GET /health - Health check endpoint
func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	hasGraph := s.graph != nil
	var stats visgraph.Stats
	if hasGraph {
		stats = s.graph.Stats()
	}
	s.mu.Unlock()

	status := "ready"
	if !hasGraph {
		status = "waiting for scene"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"hasGraph": hasGraph,
		"numNodes": stats.Nodes,
		"numEdges": stats.Edges,
	})
}

// loadStartupScene builds and searches the configured scene file, if any.
func (s *server) loadStartupScene() error {
	if s.cfg.SceneFile == "" {
		log.Println("ℹ️  No startup scene configured")
		log.Println("   POST /scene to load one")
		return nil
	}

	sc, err := scene.LoadFile(s.cfg.SceneFile)
	if err != nil {
		return err
	}
	if s.cfg.ObstacleDir != "" {
		extra, err := scene.LoadObstacleDir(s.cfg.ObstacleDir)
		if err != nil {
			return err
		}
		sc.Obstacles = append(sc.Obstacles, extra...)
	}

	resp, err := s.buildScene(sc)
	if err != nil {
		return err
	}
	log.Printf("✅ Loaded scene from %s\n", s.cfg.SceneFile)
	log.Printf("   Nodes: %d, edges: %d\n", resp.Stats.Nodes, resp.Stats.Edges)

	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.search(context.Background())
	if err != nil {
		return err
	}
	log.Printf("   Search: %s, %d solutions\n", result.Status, len(result.Solutions))

	if s.cfg.RenderFile != "" {
		img := render.Scene(s.graph, result.Solutions, s.cfg.renderOptions())
		if err := render.SaveFile(s.cfg.RenderFile, img); err != nil {
			log.Printf("⚠️  Failed to save render: %v\n", err)
		} else {
			log.Printf("   Rendered to %s\n", s.cfg.RenderFile)
		}
	}
	return nil
}

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	log.Println("========================================")
	log.Println("🚀 Potential Search Planner Server")
	log.Println("========================================")

	srv := newServer(cfg)
	if err := srv.loadStartupScene(); err != nil {
		log.Printf("⚠️  Startup scene failed: %v\n", err)
	}
	log.Println("")

	log.Printf("Server starting on %s\n", cfg.Addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /scene          - Build visibility graph for obstacles, start and goal")
	log.Println("  POST /moveEndpoint   - Move start or goal and rebuild its edges")
	log.Println("  POST /search         - Run the anytime potential search")
	log.Println("  GET  /graphLines     - Graph and solutions as GeoJSON")
	log.Println("  GET  /render.png     - Render graph and solutions")
	log.Println("  GET  /health         - Check server status")
	log.Println("  GET  /metrics        - Prometheus metrics")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")
	log.Println("")

	if err := http.ListenAndServe(cfg.Addr, srv.routes()); err != nil {
		log.Fatal(err)
	}
}
