// Package physics holds the stateless collision math used by the bubble field.
//
// Everything here operates on two bodies passed in by the caller for the
// duration of a single call. No references are retained and the only side
// effect is overwriting the bodies' velocities.
package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector2 is used for both positions and velocities.
type Vector2 = r2.Vec

// A Body is anything with a position, a fixed size and a mutable velocity.
type Body interface {
	Pos() Vector2
	Diameter() float64
	Vel() Vector2
	SetVel(v Vector2)
}

// IsCollided reports whether the centers of a and b are closer than a's size.
// Only the first body's diameter is used as the threshold, so the test is not
// symmetric when sizes differ.
func IsCollided(a, b Body) bool {
	pa, pb := a.Pos(), b.Pos()
	dx := math.Abs(pa.X - pb.X)
	dy := math.Abs(pa.Y - pb.Y)
	return math.Sqrt(dx*dx+dy*dy) < a.Diameter()
}

// Rotate rotates v by angle radians.
func Rotate(v Vector2, angle float64) Vector2 {
	sin, cos := math.Sin(angle), math.Cos(angle)
	return Vector2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// ResolveCollision applies an elastic collision between two unit masses.
// It reports whether the velocities were changed.
func ResolveCollision(a, b Body) bool {
	return ResolveCollisionMass(a, b, 1, 1)
}

// ResolveCollisionMass applies an elastic collision between a of mass m1 and
// b of mass m2. The velocities are rotated into the frame whose x axis joins
// the two centers, exchanged along that axis and rotated back.
//
// Nothing happens unless the relative velocity has a non-negative component
// along the displacement from a to b. That keeps pairs still overlapping from
// a previous correction from being resolved again.
func ResolveCollisionMass(a, b Body, m1, m2 float64) bool {
	pa, pb := a.Pos(), b.Pos()
	ua, ub := a.Vel(), b.Vel()

	if r2.Dot(r2.Sub(ua, ub), r2.Sub(pb, pa)) < 0 {
		return false
	}

	angle := -math.Atan2(pb.Y-pa.Y, pb.X-pa.X)

	u1 := Rotate(ua, angle)
	u2 := Rotate(ub, angle)

	v1x, v2x := Elastic1D(u1.X, u2.X, m1, m2)
	v1 := Vector2{X: v1x, Y: u1.Y}
	v2 := Vector2{X: v2x, Y: u2.Y}

	a.SetVel(Rotate(v1, -angle))
	b.SetVel(Rotate(v2, -angle))
	return true
}

// Elastic1D returns the velocities after a one dimensional elastic collision.
// With equal masses the velocities are simply exchanged.
func Elastic1D(u1, u2, m1, m2 float64) (v1, v2 float64) {
	v1 = u1*(m1-m2)/(m1+m2) + u2*2*m2/(m1+m2)
	v2 = u2*(m2-m1)/(m1+m2) + u1*2*m1/(m1+m2)
	return v1, v2
}

// KineticEnergy returns ½·m·|v|².
func KineticEnergy(m float64, v Vector2) float64 {
	return 0.5 * m * r2.Dot(v, v)
}
