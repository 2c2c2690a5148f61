package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatmullRomEndpoints(t *testing.T) {
	p0 := Pt(-10, 0)
	p1 := Pt(0, 0)
	p2 := Pt(10, 5)
	p3 := Pt(20, 5)

	at0 := CatmullRom(p0, p1, p2, p3, 0, 0.2)
	assert.InDelta(t, p1.X, at0.X, 1e-12)
	assert.InDelta(t, p1.Y, at0.Y, 1e-12)

	at1 := CatmullRom(p0, p1, p2, p3, 1, 0.2)
	assert.InDelta(t, p2.X, at1.X, 1e-12)
	assert.InDelta(t, p2.Y, at1.Y, 1e-12)
}

func TestCreatePathCounts(t *testing.T) {
	wps := []Point{Pt(0, 0), Pt(100, 0), Pt(100, 100)}
	path := CreatePath(wps, 10, 0.2)
	// Two segments of 10 samples plus the final waypoint.
	assert.Len(t, path, 21)
	assert.Equal(t, wps[0], path[0])
	assert.Equal(t, wps[2], path[len(path)-1])
}

func TestCreatePathTooFewWaypoints(t *testing.T) {
	assert.Nil(t, CreatePath(nil, 10, 0.2))
	assert.Nil(t, CreatePath([]Point{Pt(1, 2)}, 10, 0.2))
}

func TestCreatePathPassesThroughWaypoints(t *testing.T) {
	wps := []Point{Pt(0, 0), Pt(50, 20), Pt(100, 0), Pt(150, -30)}
	pps := 25
	path := CreatePath(wps, pps, 0.2)
	for i, wp := range wps[:len(wps)-1] {
		got := path[i*pps]
		assert.InDelta(t, wp.X, got.X, 1e-9, "waypoint %d x", i)
		assert.InDelta(t, wp.Y, got.Y, 1e-9, "waypoint %d y", i)
	}
}
