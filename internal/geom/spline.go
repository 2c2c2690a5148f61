package geom

// CatmullRom evaluates a cardinal (Catmull-Rom style) cubic between p1 and
// p2 at t in [0,1]. p0 and p3 shape the tangents; tension scales them, so
// lower tension gives a tighter, more polyline-like curve.
func CatmullRom(p0, p1, p2, p3 Point, t, tension float64) Point {
	v0 := p2.Sub(p0).Scale(tension)
	v1 := p3.Sub(p1).Scale(tension)

	t2 := t * t
	t3 := t2 * t

	// Hermite basis on (p1, p2, v0, v1).
	return Point{
		X: (2*p1.X-2*p2.X+v0.X+v1.X)*t3 + (-3*p1.X+3*p2.X-2*v0.X-v1.X)*t2 + v0.X*t + p1.X,
		Y: (2*p1.Y-2*p2.Y+v0.Y+v1.Y)*t3 + (-3*p1.Y+3*p2.Y-2*v0.Y-v1.Y)*t2 + v0.Y*t + p1.Y,
	}
}

// CreatePath samples a smooth curve through waypoints. Each consecutive pair
// contributes pointsPerSegment samples; the final waypoint is appended
// exactly once. Endpoint segments reuse their own endpoint as the missing
// neighbor, which clamps curvature at the path ends instead of extrapolating.
// Fewer than two waypoints yields an empty path.
func CreatePath(waypoints []Point, pointsPerSegment int, tension float64) []Point {
	if len(waypoints) < 2 {
		return nil
	}
	if pointsPerSegment < 1 {
		pointsPerSegment = 1
	}

	out := make([]Point, 0, (len(waypoints)-1)*pointsPerSegment+1)
	for i := 0; i < len(waypoints)-1; i++ {
		p1 := waypoints[i]
		p2 := waypoints[i+1]
		p0 := p1
		if i > 0 {
			p0 = waypoints[i-1]
		}
		p3 := p2
		if i+2 < len(waypoints) {
			p3 = waypoints[i+2]
		}
		for s := 0; s < pointsPerSegment; s++ {
			t := float64(s) / float64(pointsPerSegment)
			out = append(out, CatmullRom(p0, p1, p2, p3, t, tension))
		}
	}
	out = append(out, waypoints[len(waypoints)-1])
	return out
}
