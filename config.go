package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"potential-planner/render"
	"potential-planner/scene"
	"potential-planner/visgraph"
)

// Config holds the server settings. Zero values are replaced by defaults
// after loading.
type Config struct {
	Addr            string  `json:"addr"`
	MaxNodes        int     `json:"maxNodes"`
	ProgressEvery   int     `json:"progressEvery"`
	SimplifyEpsilon float64 `json:"simplifyEpsilon"`
	DropContained   bool    `json:"dropContained"`
	MergeTolerance  float64 `json:"mergeTolerance"`
	RenderWidth     int     `json:"renderWidth"`
	RenderHeight    int     `json:"renderHeight"`
	RenderEdges     bool    `json:"renderEdges"`
	SceneFile       string  `json:"sceneFile,omitempty"`   // scene loaded and searched at startup
	ObstacleDir     string  `json:"obstacleDir,omitempty"` // extra *.geojson obstacle layers
	RenderFile      string  `json:"renderFile,omitempty"`  // PNG written after the startup search
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.MaxNodes == 0 {
		c.MaxNodes = visgraph.DefaultMaxNodes
	}
	if c.ProgressEvery == 0 {
		c.ProgressEvery = visgraph.DefaultProgressEvery
	}
	d := render.DefaultOptions()
	if c.RenderWidth == 0 {
		c.RenderWidth = d.Width
	}
	if c.RenderHeight == 0 {
		c.RenderHeight = d.Height
	}
}

// LoadConfig reads a JSON config file. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	var c Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("config: %w", err)
		}
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyDefaults()
	return c, nil
}

// parseFlags loads the config named by -config and applies the remaining
// flags on top of it.
func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	configPath := fs.String("config", "", "path to a JSON config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	sceneFile := fs.String("scene", "", "scene file (.json or .geojson) to search at startup")
	renderFile := fs.String("render", "", "write a PNG of the startup search to this path")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	c, err := LoadConfig(*configPath)
	if err != nil {
		return c, err
	}
	if *addr != "" {
		c.Addr = *addr
	}
	if *sceneFile != "" {
		c.SceneFile = *sceneFile
	}
	if *renderFile != "" {
		c.RenderFile = *renderFile
	}
	return c, nil
}

func (c Config) graphOptions() []visgraph.Option {
	return []visgraph.Option{
		visgraph.WithMaxNodes(c.MaxNodes),
		visgraph.WithProgressEvery(c.ProgressEvery),
	}
}

func (c Config) preprocessOptions() scene.PreprocessOptions {
	return scene.PreprocessOptions{
		SimplifyEpsilon: c.SimplifyEpsilon,
		DropContained:   c.DropContained,
		MergeTolerance:  c.MergeTolerance,
	}
}

func (c Config) renderOptions() render.Options {
	return render.Options{
		Width:   c.RenderWidth,
		Height:  c.RenderHeight,
		Padding: render.DefaultOptions().Padding,
		Edges:   c.RenderEdges,
	}
}
