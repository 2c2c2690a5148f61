package route

import (
	"math"

	"github.com/djDAOjones/router-plotter-02-sub000/internal/geom"
)

// CurvatureStrategy estimates per-sample turn at every point of a dense
// path. Both strategies report the first and last sample as zero and return
// values in radians-per-sample units so they are interchangeable.
type CurvatureStrategy interface {
	Name() string
	Estimate(points []geom.Point) []float64
}

// TriangleAreaCurvature is the fast O(1)-per-point estimate: the cross
// product of the two edge vectors gives twice the triangle area, and
// area/(|a||b|) is sin of the turn angle, which tracks the angle closely
// for the small per-sample turns a dense spline produces.
type TriangleAreaCurvature struct{}

func (TriangleAreaCurvature) Name() string { return "triangle" }

func (TriangleAreaCurvature) Estimate(points []geom.Point) []float64 {
	out := make([]float64, len(points))
	for i := 1; i < len(points)-1; i++ {
		a := points[i].Sub(points[i-1])
		b := points[i+1].Sub(points[i])
		la := a.Norm()
		lb := b.Norm()
		if la == 0 || lb == 0 {
			continue
		}
		cross := a.X*b.Y - a.Y*b.X
		out[i] = math.Abs(cross) / (la * lb)
	}
	return out
}

// TangentAngleCurvature is the accurate estimate: normalize both tangents
// and take atan2 of their cross and dot products, giving the exact turn
// angle even at sharp corners where sin saturates.
type TangentAngleCurvature struct{}

func (TangentAngleCurvature) Name() string { return "angle" }

func (TangentAngleCurvature) Estimate(points []geom.Point) []float64 {
	out := make([]float64, len(points))
	for i := 1; i < len(points)-1; i++ {
		a := points[i].Sub(points[i-1])
		b := points[i+1].Sub(points[i])
		la := a.Norm()
		lb := b.Norm()
		if la == 0 || lb == 0 {
			continue
		}
		a = a.Scale(1 / la)
		b = b.Scale(1 / lb)
		cross := a.X*b.Y - a.Y*b.X
		dot := a.X*b.X + a.Y*b.Y
		out[i] = math.Abs(math.Atan2(cross, dot))
	}
	return out
}

// StrategyByName selects a curvature strategy for config-level wiring.
// Unknown names fall back to the accurate angle method.
func StrategyByName(name string) CurvatureStrategy {
	switch name {
	case "triangle":
		return TriangleAreaCurvature{}
	default:
		return TangentAngleCurvature{}
	}
}
