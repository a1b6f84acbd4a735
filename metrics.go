package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"potential-planner/potential"
	"potential-planner/visgraph"
)

var (
	graphBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_graph_builds_total",
		Help: "Graph builds by kind (full, move) and result",
	}, []string{"kind", "result"})

	graphBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_graph_build_duration_seconds",
		Help:    "Graph construction duration",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
	}, []string{"kind"})

	graphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "planner_graph_nodes",
		Help: "Nodes in the current visibility graph",
	})

	graphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "planner_graph_edges",
		Help: "Undirected edges in the current visibility graph",
	})

	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_searches_total",
		Help: "Completed searches by outcome",
	}, []string{"status"})

	searchRounds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_search_rounds",
		Help:    "Rounds per search",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})

	solutionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planner_solutions_total",
		Help: "Improving solutions emitted",
	})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_search_duration_seconds",
		Help:    "Wall time of a full anytime search",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
	})
)

func observeGraph(kind string, stats visgraph.Stats, seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	graphBuildsTotal.WithLabelValues(kind, result).Inc()
	if err != nil {
		return
	}
	graphBuildDuration.WithLabelValues(kind).Observe(seconds)
	graphNodes.Set(float64(stats.Nodes))
	graphEdges.Set(float64(stats.Edges))
}

func observeSearch(sum potential.Summary) {
	searchesTotal.WithLabelValues(sum.Status.String()).Inc()
	searchRounds.Observe(float64(sum.Rounds))
	searchDuration.Observe(sum.Elapsed.Seconds())
}
