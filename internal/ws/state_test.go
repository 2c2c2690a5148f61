package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/djDAOjones/router-plotter-02-sub000/internal/config"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/geom"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/route"
)

func testConfig() *config.Config {
	return &config.Config{
		FPS:           30,
		Mode:          "fit",
		Viewport:      config.Dims{W: 1000, H: 1000},
		Content:       config.Dims{W: 1000, H: 1000},
		SpeedPxPerSec: 100,
	}
}

func TestControlContentResizeRemapsRoute(t *testing.T) {
	s := NewState(testConfig())
	s.SetWaypoints([]route.Waypoint{
		{Pos: geom.Pt(0, 0), Major: true},
		{Pos: geom.Pt(0.5, 0.5)},
		{Pos: geom.Pt(1, 1), Major: true},
	})

	s.mu.RLock()
	assert.Equal(t, 0.0, s.resolved[0].Pos.X, "identity mapping before resize")
	s.mu.RUnlock()

	// Halving the content width under fit letterboxes the route: scale
	// stays 1 and the drawn area is centered with a 250px margin.
	s.applyControl(map[string]any{
		"content": map[string]any{"w": 500.0, "h": 1000.0},
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.InDelta(t, 250, s.resolved[0].Pos.X, 1e-9)
	assert.InDelta(t, 0, s.resolved[0].Pos.Y, 1e-9)
	assert.InDelta(t, 750, s.resolved[2].Pos.X, 1e-9)
	assert.InDelta(t, 1000, s.resolved[2].Pos.Y, 1e-9)
	assert.False(t, s.path.Empty(), "path rebuilt after resize")
}

func TestControlViewportResizeRemapsRoute(t *testing.T) {
	s := NewState(testConfig())
	s.SetWaypoints([]route.Waypoint{
		{Pos: geom.Pt(0, 0), Major: true},
		{Pos: geom.Pt(1, 0.5)},
		{Pos: geom.Pt(1, 1), Major: true},
	})

	s.applyControl(map[string]any{
		"viewport": map[string]any{"w": 500.0, "h": 1000.0},
	})

	// Fit into a half-width viewport scales by 0.5 and centers vertically.
	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.InDelta(t, 0, s.resolved[0].Pos.X, 1e-9)
	assert.InDelta(t, 250, s.resolved[0].Pos.Y, 1e-9)
	assert.InDelta(t, 500, s.resolved[2].Pos.X, 1e-9)
	assert.InDelta(t, 750, s.resolved[2].Pos.Y, 1e-9)
}
