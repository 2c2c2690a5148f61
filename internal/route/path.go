package route

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"

	"github.com/djDAOjones/router-plotter-02-sub000/internal/geom"
)

// Options tunes path construction. Zero values are replaced by the
// corresponding defaults so a partially filled struct is usable.
type Options struct {
	PointsPerSegment int
	Tension          float64
	TargetSpacing    float64
	MinCornerSpeed   float64
	MaxCurvature     float64
	JitterAmplitude  float64
	Curvature        CurvatureStrategy
	DefaultShape     PathShape
}

// DefaultOptions returns the tuning used by the interactive editor.
func DefaultOptions() Options {
	return Options{
		PointsPerSegment: 100,
		Tension:          0.2,
		TargetSpacing:    2,
		MinCornerSpeed:   0.2,
		MaxCurvature:     0.1,
		JitterAmplitude:  2,
		Curvature:        TangentAngleCurvature{},
		DefaultShape:     ShapeLine,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PointsPerSegment <= 0 {
		o.PointsPerSegment = d.PointsPerSegment
	}
	if o.Tension <= 0 {
		o.Tension = d.Tension
	}
	if o.TargetSpacing <= 0 {
		o.TargetSpacing = d.TargetSpacing
	}
	if o.MinCornerSpeed <= 0 {
		o.MinCornerSpeed = d.MinCornerSpeed
	}
	if o.MaxCurvature <= 0 {
		o.MaxCurvature = d.MaxCurvature
	}
	if o.JitterAmplitude < 0 {
		o.JitterAmplitude = d.JitterAmplitude
	}
	if o.Curvature == nil {
		o.Curvature = d.Curvature
	}
	if o.DefaultShape == "" {
		o.DefaultShape = d.DefaultShape
	}
	return o
}

// PathPoint is one evenly-spaced sample tagged with the shape of the
// waypoint segment that owns it. Squiggle stays a tag here; rendering
// applies the actual perturbation.
type PathPoint struct {
	geom.Point
	Shape PathShape
}

// Path is the immutable result of one CalculatePath run.
type Path struct {
	Raw    []geom.Point
	Even   []PathPoint
	Length float64
}

// Empty reports whether the path has nothing to animate.
func (p Path) Empty() bool { return len(p.Even) < 2 }

// CalculatePath builds the evenly-spaced, shape-tagged point sequence for a
// waypoint list. Fewer than two waypoints, or any non-finite coordinate,
// yields an empty path; the function never panics and never returns NaN.
//
// The even spacing is in adjusted distance: each raw inter-sample distance
// is divided by a curvature-derived velocity factor, so sharp corners
// accumulate adjusted distance faster and receive proportionally more
// output points. A constant-rate head therefore slows down through corners.
func CalculatePath(wps []Waypoint, opt Options) Path {
	if len(wps) < 2 {
		return Path{}
	}
	positions := make([]geom.Point, len(wps))
	for i, w := range wps {
		if !w.Pos.IsFinite() {
			return Path{}
		}
		positions[i] = w.Pos
	}
	opt = opt.withDefaults()

	raw := geom.CreatePath(positions, opt.PointsPerSegment, opt.Tension)
	curv := estimateCurvature(raw, opt.Curvature)

	// Cumulative adjusted distance over the raw samples.
	adj := make([]float64, len(raw))
	for i := 1; i < len(raw); i++ {
		d := raw[i].Distance(raw[i-1])
		adj[i] = adj[i-1] + d/velocityFactor(curv[i], opt)
	}
	total := adj[len(adj)-1]

	even := resample(raw, adj, total, opt.TargetSpacing)
	shaped := applyShapes(even, wps, opt)

	return Path{
		Raw:    raw,
		Even:   shaped,
		Length: Length(shaped),
	}
}

// velocityFactor maps a curvature estimate into [MinCornerSpeed, 1]: zero
// curvature travels at full speed, MaxCurvature and beyond at the floor.
func velocityFactor(curvature float64, opt Options) float64 {
	n := geom.Clamp01(curvature / opt.MaxCurvature)
	f := 1 - geom.EaseInQuad(n)*(1-opt.MinCornerSpeed)
	if f < opt.MinCornerSpeed {
		f = opt.MinCornerSpeed
	}
	return f
}

func estimateCurvature(raw []geom.Point, strategy CurvatureStrategy) []float64 {
	key := rawFingerprint(raw)
	if v, ok := curvatureCache.get(key, strategy.Name()); ok {
		return v
	}
	v := strategy.Estimate(raw)
	curvatureCache.put(key, strategy.Name(), v)
	return v
}

func rawFingerprint(raw []geom.Point) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, p := range raw {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.X))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Y))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// evenSample pairs a resampled position with the raw segment it came from,
// which applyShapes later maps back to a waypoint segment.
type evenSample struct {
	pos    geom.Point
	rawIdx int
}

// resample walks uniform steps of adjusted distance, binary-searching the
// cumulative table for the bracketing raw segment and interpolating within
// it. O(log n) per output point.
func resample(raw []geom.Point, adj []float64, total, spacing float64) []evenSample {
	first := evenSample{pos: raw[0], rawIdx: 0}
	last := evenSample{pos: raw[len(raw)-1], rawIdx: len(raw) - 2}
	if total <= 0 {
		return []evenSample{first, last}
	}

	out := make([]evenSample, 0, int(total/spacing)+2)
	out = append(out, first)
	for target := spacing; target < total; target += spacing {
		i := sort.Search(len(adj), func(k int) bool { return adj[k] >= target })
		if i <= 0 {
			i = 1
		}
		if i >= len(adj) {
			break
		}
		lo, hi := adj[i-1], adj[i]
		u := 0.0
		if hi > lo {
			u = (target - lo) / (hi - lo)
		}
		out = append(out, evenSample{
			pos:    raw[i-1].Lerp(raw[i], u),
			rawIdx: i - 1,
		})
	}
	out = append(out, last)
	return out
}

// applyShapes tags every even point with the shape inherited from the
// nearest major waypoint at or before its owning segment, then applies the
// randomised jitter. Jitter is seeded from the owning waypoint coordinates
// plus the point index, never from an unseeded RNG, so identical input
// reproduces identical geometry; path length and wait detection depend on
// that stability.
func applyShapes(even []evenSample, wps []Waypoint, opt Options) []PathPoint {
	perSeg := opt.PointsPerSegment
	lastSeg := len(wps) - 2

	out := make([]PathPoint, len(even))
	for j, s := range even {
		seg := s.rawIdx / perSeg
		if seg > lastSeg {
			seg = lastSeg
		}
		owner, shape := shapeForSegment(wps, seg, opt.DefaultShape)

		p := s.pos
		if shape == ShapeRandomised && j > 0 && j < len(even)-1 && opt.JitterAmplitude > 0 {
			p = jitter(p, even[j-1].pos, wps[owner].Pos, j, opt.JitterAmplitude)
		}
		out[j] = PathPoint{Point: p, Shape: shape}
	}
	return out
}

// shapeForSegment walks backward from the segment's starting waypoint to
// the nearest major, returning its index and shape. Segments before the
// first major fall back to the default shape.
func shapeForSegment(wps []Waypoint, seg int, def PathShape) (int, PathShape) {
	for i := seg; i >= 0; i-- {
		if wps[i].Major {
			if wps[i].Shape == "" {
				return i, def
			}
			return i, wps[i].Shape
		}
	}
	return seg, def
}

// jitter displaces p perpendicular to the local travel direction by a
// deterministic, hash-derived offset in [-amp, amp].
func jitter(p, prev, ownerPos geom.Point, index int, amp float64) geom.Point {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(ownerPos.X))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(ownerPos.Y))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(index))
	h.Write(buf[:])

	// Map the hash to [-1, 1).
	u := float64(h.Sum64()>>11) / float64(1<<53)
	off := (u*2 - 1) * amp

	dir := p.Sub(prev)
	n := dir.Norm()
	if n == 0 {
		return p
	}
	// Unit normal of the travel direction.
	perp := geom.Pt(-dir.Y/n, dir.X/n)
	return p.Add(perp.Scale(off))
}

// Length sums euclidean distances between consecutive points. Fewer than
// two points is defined as zero.
func Length(points []PathPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(points); i++ {
		sum += points[i].Distance(points[i-1].Point)
	}
	return sum
}

// PointAtProgress maps progress in [0,1] onto the point slice by fractional
// index. Out-of-range progress clamps to the endpoints; an empty slice
// returns the zero point.
func PointAtProgress(points []PathPoint, progress float64) geom.Point {
	if len(points) == 0 {
		return geom.Point{}
	}
	if len(points) == 1 || progress <= 0 {
		return points[0].Point
	}
	if progress >= 1 {
		return points[len(points)-1].Point
	}
	f := progress * float64(len(points)-1)
	i := int(f)
	if i >= len(points)-1 {
		return points[len(points)-1].Point
	}
	return points[i].Lerp(points[i+1].Point, f-float64(i))
}

// SegmentIndexForProgress converts waypoint-index progress into the index of
// the waypoint segment containing it, clamped to valid segments.
func SegmentIndexForProgress(progress float64, waypointCount int) int {
	if waypointCount < 2 {
		return 0
	}
	i := int(progress * float64(waypointCount-1))
	if i < 0 {
		return 0
	}
	if i > waypointCount-2 {
		return waypointCount - 2
	}
	return i
}
