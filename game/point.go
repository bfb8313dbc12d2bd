// Package game defines the world model: geometry, blobs, predicates, and the
// per-tick snapshot the planner operates on.
package game

import "math"

// Point is a 2D position or vector.
type Point struct {
	X float64
	Y float64
}

// Pt constructs a point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// FromPolar constructs the vector of length r at the given angle.
func FromPolar(r, angle float64) Point {
	return Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by k.
func (p Point) Mul(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Div returns p scaled by 1/k.
func (p Point) Div(k float64) Point {
	return Point{X: p.X / k, Y: p.Y / k}
}

// Dist returns the Euclidean distance to q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// QDist returns the squared distance to q.
func (p Point) QDist(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Angle returns the direction of p as atan2(y, x).
func (p Point) Angle() float64 {
	return math.Atan2(p.Y, p.X)
}

// Length returns the magnitude of p.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// WithLength returns p rescaled to the given length. The zero vector has no
// direction and is returned unchanged.
func (p Point) WithLength(l float64) Point {
	cur := p.Length()
	if cur == 0 {
		return Point{}
	}
	return p.Mul(l / cur)
}

// Unit returns the unit vector in the direction of p.
func (p Point) Unit() Point {
	return p.WithLength(1)
}
