package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Dims struct {
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type PathCfg struct {
	PointsPerSegment int     `yaml:"points_per_segment"`
	Tension          float64 `yaml:"tension"`
	TargetSpacing    float64 `yaml:"target_spacing"`
	MinCornerSpeed   float64 `yaml:"min_corner_speed"`
	MaxCurvature     float64 `yaml:"max_curvature"`
	Curvature        string  `yaml:"curvature"` // "angle" | "triangle"
}

type Config struct {
	Addr string `yaml:"addr"`
	FPS  int    `yaml:"fps"`

	Mode     string `yaml:"mode"` // "fit" | "fill"
	Viewport Dims   `yaml:"viewport"`
	Content  Dims   `yaml:"content"`

	SpeedPxPerSec  float64 `yaml:"speed_px_per_sec"`
	RateMultiplier float64 `yaml:"rate_multiplier"`
	RouteFile      string  `yaml:"route_file,omitempty"`

	Path PathCfg `yaml:"path"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
