package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"potential-planner/geometry"
)

// DecodeJSON reads a scene in the native JSON layout:
//
//	{"obstacles":[{"vertices":[{"x":0,"y":0},...]}], "start":{"x":0,"y":0}, "goal":{...}}
func DecodeJSON(r io.Reader) (*Scene, error) {
	var s Scene
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("scene: decode json: %w", err)
	}
	return &s, nil
}

// DecodeGeoJSON reads a scene from a GeoJSON FeatureCollection. Polygon and
// MultiPolygon features become obstacles (outer rings only; holes are
// ignored). Point features become endpoints when their "role" (or "kind")
// property is "start" or "goal". Other features are skipped, so the graph
// export of the server can be read back as a scene.
func DecodeGeoJSON(data []byte) (*Scene, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("scene: decode geojson: %w", err)
	}

	s := &Scene{}
	for _, f := range fc.Features {
		switch geom := f.Geometry.(type) {
		case orb.Polygon:
			s.Obstacles = appendPolygon(s.Obstacles, geom)
		case orb.MultiPolygon:
			for _, p := range geom {
				s.Obstacles = appendPolygon(s.Obstacles, p)
			}
		case orb.Point:
			p := geometry.FromOrb(geom)
			switch role(f.Properties) {
			case "start":
				s.Start = &p
			case "goal":
				s.Goal = &p
			}
		}
	}
	return s, nil
}

// LoadFile reads a scene from path; *.geojson files are decoded as GeoJSON,
// *.json as the native layout.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson":
		return DecodeGeoJSON(data)
	case ".json":
		return DecodeJSON(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// LoadObstacleDir loads every *.geojson file in dir and returns all their
// polygons. Unreadable or malformed files are logged and skipped.
func LoadObstacleDir(dir string) ([]geometry.Polygon, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, err
	}

	log.Printf("Loading obstacles from %d GeoJSON files...\n", len(files))

	var all []geometry.Polygon
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("⚠️  Failed to read %s: %v\n", file, err)
			continue
		}

		s, err := DecodeGeoJSON(data)
		if err != nil {
			log.Printf("⚠️  Failed to parse %s: %v\n", file, err)
			continue
		}

		all = append(all, s.Obstacles...)
		log.Printf("   ✅ Loaded %d polygons from %s\n", len(s.Obstacles), filepath.Base(file))
	}

	log.Printf("Total obstacles loaded: %d polygons\n", len(all))
	return all, nil
}

func appendPolygon(dst []geometry.Polygon, p orb.Polygon) []geometry.Polygon {
	if len(p) == 0 {
		return dst
	}
	return append(dst, geometry.FromRing(p[0]))
}

func role(props geojson.Properties) string {
	if r := props.MustString("role", ""); r != "" {
		return strings.ToLower(r)
	}
	return strings.ToLower(props.MustString("kind", ""))
}
