package route

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/djDAOjones/router-plotter-02-sub000/internal/geom"
)

// PathShape selects the post-processing applied to the curve segment that
// follows a waypoint. Minors inherit the shape of the nearest preceding
// major waypoint.
type PathShape string

const (
	ShapeLine       PathShape = "line"
	ShapeSquiggle   PathShape = "squiggle"
	ShapeRandomised PathShape = "randomised"
)

// PauseMode controls whether the playback head dwells at a major waypoint.
type PauseMode string

const (
	PauseNone  PauseMode = "none"
	PauseTimed PauseMode = "timed"
)

// Waypoint is one user-placed point. Major waypoints anchor timing and
// pausing; minor waypoints only perturb curve geometry.
type Waypoint struct {
	Pos     geom.Point
	Major   bool
	Shape   PathShape
	Pause   PauseMode
	PauseMS float64
}

// NewWaypointFrom builds a waypoint at pos, copying the fixed set of style
// fields (Shape, Pause, PauseMS) from template when one is given. Majority
// is never inherited; new points start minor so a stray click cannot pick
// up pause semantics by accident.
func NewWaypointFrom(template *Waypoint, pos geom.Point) Waypoint {
	w := Waypoint{
		Pos:   pos,
		Shape: ShapeLine,
		Pause: PauseNone,
	}
	if template != nil {
		w.Shape = template.Shape
		w.Pause = template.Pause
		w.PauseMS = template.PauseMS
	}
	return w
}

// MajorPosition anchors a major waypoint on the waypoint-index progress
// axis: Progress = WaypointIndex / (waypointCount - 1). This axis, not
// arc-length progress, is authoritative for pause triggering.
type MajorPosition struct {
	WaypointIndex int     `json:"waypointIndex"`
	Progress      float64 `json:"progress"`
}

// Fingerprint hashes waypoint content (positions, flags, shapes, pause
// fields) with FNV-1a. Structurally identical lists fingerprint equal, so
// caches keyed by it never depend on object identity.
func Fingerprint(wps []Waypoint) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	writeF := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	for _, w := range wps {
		writeF(w.Pos.X)
		writeF(w.Pos.Y)
		if w.Major {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		h.Write([]byte(w.Shape))
		h.Write([]byte(w.Pause))
		writeF(w.PauseMS)
	}
	return h.Sum64()
}

// MajorPositions returns the index-progress anchors of all major waypoints.
// Results are cached by content fingerprint; a changed list is a silent
// recompute, never a stale hit.
func MajorPositions(wps []Waypoint) []MajorPosition {
	if len(wps) < 2 {
		return nil
	}
	fp := Fingerprint(wps)
	if v, ok := majorsCache.get(fp); ok {
		return v
	}
	out := make([]MajorPosition, 0, len(wps))
	denom := float64(len(wps) - 1)
	for i, w := range wps {
		if !w.Major {
			continue
		}
		out = append(out, MajorPosition{
			WaypointIndex: i,
			Progress:      float64(i) / denom,
		})
	}
	majorsCache.put(fp, out)
	return out
}
