package agent

import (
	"math"

	"github.com/lixenwraith/mapsim/surface"
)

// Route is a polyline with precomputed cumulative segment lengths
type Route struct {
	points []surface.Point
	cum    []float64
}

// NewRoute builds a route from at least one point
func NewRoute(points []surface.Point) Route {
	r := Route{
		points: append([]surface.Point(nil), points...),
		cum:    make([]float64, len(points)),
	}
	for i := 1; i < len(points); i++ {
		r.cum[i] = r.cum[i-1] + math.Hypot(points[i].X-points[i-1].X, points[i].Y-points[i-1].Y)
	}
	return r
}

// Length returns the total route length
func (r Route) Length() float64 {
	if len(r.cum) == 0 {
		return 0
	}
	return r.cum[len(r.cum)-1]
}

// PointAt interpolates the position d along the route, clamped to its ends
func (r Route) PointAt(d float64) surface.Point {
	switch {
	case len(r.points) == 0:
		return surface.Point{}
	case d <= 0:
		return r.points[0]
	case d >= r.Length():
		return r.points[len(r.points)-1]
	}

	i := 1
	for i < len(r.cum)-1 && r.cum[i] < d {
		i++
	}
	seg := r.cum[i] - r.cum[i-1]
	if seg == 0 {
		return r.points[i]
	}
	t := (d - r.cum[i-1]) / seg
	a, b := r.points[i-1], r.points[i]
	return surface.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
