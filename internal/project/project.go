// Package project is the persisted shape of a plotted route: the waypoint
// list plus the playback settings that must survive a save/load round-trip.
package project

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/djDAOjones/router-plotter-02-sub000/internal/geom"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/route"
)

const Version = "route.v1"

// WaypointRecord is the flat serialized form of one waypoint. Unknown YAML
// fields are dropped on load; nothing is merged silently.
type WaypointRecord struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Major   bool    `yaml:"major"`
	Shape   string  `yaml:"shape,omitempty"`
	Pause   string  `yaml:"pause,omitempty"`
	PauseMS float64 `yaml:"pauseMs,omitempty"`
}

// PlaybackRecord carries the timing preferences.
type PlaybackRecord struct {
	Mode           string  `yaml:"mode"` // "speed" | "duration"
	SpeedPxPerSec  float64 `yaml:"speedPxPerSec"`
	DurationMS     float64 `yaml:"durationMs,omitempty"`
	RateMultiplier float64 `yaml:"rateMultiplier,omitempty"`
}

type Project struct {
	Version   string           `yaml:"version"`
	Waypoints []WaypointRecord `yaml:"waypoints"`
	Playback  PlaybackRecord   `yaml:"playback"`
}

// Load reads a project file and validates its version tag.
func Load(path string) (*Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Project
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	if p.Version != "" && p.Version != Version {
		return nil, fmt.Errorf("unsupported project version %q", p.Version)
	}
	return &p, nil
}

// Save writes the project file.
func Save(path string, p *Project) error {
	if p.Version == "" {
		p.Version = Version
	}
	b, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ToWaypoints converts records into engine waypoints. Empty enum fields get
// their defaults; unrecognized enum values also collapse to the defaults so
// a hand-edited file degrades deterministically.
func (p *Project) ToWaypoints() []route.Waypoint {
	out := make([]route.Waypoint, len(p.Waypoints))
	for i, r := range p.Waypoints {
		w := route.Waypoint{
			Pos:     geom.Pt(r.X, r.Y),
			Major:   r.Major,
			Shape:   route.ShapeLine,
			Pause:   route.PauseNone,
			PauseMS: r.PauseMS,
		}
		switch route.PathShape(r.Shape) {
		case route.ShapeSquiggle:
			w.Shape = route.ShapeSquiggle
		case route.ShapeRandomised:
			w.Shape = route.ShapeRandomised
		}
		if route.PauseMode(r.Pause) == route.PauseTimed {
			w.Pause = route.PauseTimed
		}
		out[i] = w
	}
	return out
}

// FromWaypoints builds the persisted form of a waypoint list plus playback
// settings.
func FromWaypoints(wps []route.Waypoint, pb PlaybackRecord) *Project {
	recs := make([]WaypointRecord, len(wps))
	for i, w := range wps {
		recs[i] = WaypointRecord{
			X:       w.Pos.X,
			Y:       w.Pos.Y,
			Major:   w.Major,
			Shape:   string(w.Shape),
			Pause:   string(w.Pause),
			PauseMS: w.PauseMS,
		}
	}
	return &Project{
		Version:   Version,
		Waypoints: recs,
		Playback:  pb,
	}
}
