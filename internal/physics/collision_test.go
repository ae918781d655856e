package physics

import (
	"fmt"
	"math"
	"testing"
)

type ball struct {
	pos  Vector2
	size float64
	vel  Vector2
}

func (b *ball) Pos() Vector2 { return b.pos }
func (b *ball) Diameter() float64 { return b.size }
func (b *ball) Vel() Vector2 { return b.vel }
func (b *ball) SetVel(v Vector2) { b.vel = v }

const tol = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) <= tol }

func nearVec(a, b Vector2) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

func TestIsCollidedThreshold(t *testing.T) {
	const s, eps = 10.0, 1e-6
	tests := []struct {
		name string
		dist float64
		want bool
	}{
		{"inside", s - eps, true},
		{"exact", s, false},
		{"outside", s + eps, false},
		{"same point", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := &ball{size: s}
			b := &ball{pos: Vector2{X: tc.dist * 0.6, Y: tc.dist * 0.8}, size: s}
			if got := IsCollided(a, b); got != tc.want {
				t.Errorf("IsCollided at distance %v = %v, want %v", tc.dist, got, tc.want)
			}
		})
	}
}

func TestIsCollidedUsesFirstSize(t *testing.T) {
	small := &ball{size: 2}
	big := &ball{pos: Vector2{X: 5}, size: 10}
	if IsCollided(small, big) {
		t.Error("small body should not see big body 5 units away")
	}
	if !IsCollided(big, small) {
		t.Error("big body should see small body 5 units away")
	}
}

func TestZeroSizeNeverCollides(t *testing.T) {
	a := &ball{}
	b := &ball{}
	if IsCollided(a, b) {
		t.Error("zero-size bodies at the same point collided")
	}
}

func TestRotateInverse(t *testing.T) {
	vs := []Vector2{{X: 1}, {X: -3.5, Y: 2}, {X: 0.25, Y: -7}, {}}
	angles := []float64{0, 0.3, math.Pi / 2, -2.1, math.Pi, 5}
	for _, v := range vs {
		for _, a := range angles {
			got := Rotate(Rotate(v, a), -a)
			if !nearVec(got, v) {
				t.Errorf("Rotate(Rotate(%v, %v), %v) = %v", v, a, -a, got)
			}
		}
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	got := Rotate(Vector2{X: 1}, math.Pi/2)
	if !nearVec(got, Vector2{Y: 1}) {
		t.Errorf("got %v, want (0, 1)", got)
	}
}

func TestResolveHeadOn(t *testing.T) {
	a := &ball{size: 10, vel: Vector2{X: 1}}
	b := &ball{pos: Vector2{X: 5}, size: 10, vel: Vector2{X: -1}}

	if !IsCollided(a, b) {
		t.Fatal("expected collision at distance 5")
	}
	if !ResolveCollision(a, b) {
		t.Fatal("approaching pair was not resolved")
	}
	if !nearVec(a.vel, Vector2{X: -1}) || !nearVec(b.vel, Vector2{X: 1}) {
		t.Errorf("velocities = %v, %v; want (-1,0), (1,0)", a.vel, b.vel)
	}
}

func TestResolveSeparatingIsNoop(t *testing.T) {
	a := &ball{size: 10, vel: Vector2{X: -1, Y: 0.5}}
	b := &ball{pos: Vector2{X: 5}, size: 10, vel: Vector2{X: 1, Y: 0.25}}
	va, vb := a.vel, b.vel

	if ResolveCollision(a, b) {
		t.Error("separating pair reported as resolved")
	}
	if a.vel != va || b.vel != vb {
		t.Errorf("velocities changed to %v, %v", a.vel, b.vel)
	}
}

func TestResolveConservesEnergy(t *testing.T) {
	tests := []struct {
		pa, pb, va, vb Vector2
	}{
		{Vector2{}, Vector2{X: 3, Y: 4}, Vector2{X: 2, Y: 1}, Vector2{X: -1, Y: -0.5}},
		{Vector2{X: 10, Y: 10}, Vector2{X: 12, Y: 9}, Vector2{X: 0.7, Y: -1.2}, Vector2{X: -2, Y: 3}},
		{Vector2{X: 1}, Vector2{X: 1, Y: 6}, Vector2{Y: 3}, Vector2{X: 0.5}},
	}
	for i, tc := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			a := &ball{pos: tc.pa, size: 10, vel: tc.va}
			b := &ball{pos: tc.pb, size: 10, vel: tc.vb}
			before := KineticEnergy(1, a.vel) + KineticEnergy(1, b.vel)
			if !ResolveCollision(a, b) {
				t.Fatal("pair was not resolved")
			}
			after := KineticEnergy(1, a.vel) + KineticEnergy(1, b.vel)
			if !near(before, after) {
				t.Errorf("energy %v before, %v after", before, after)
			}
		})
	}
}

func TestResolveCoincidentCenters(t *testing.T) {
	a := &ball{size: 10, vel: Vector2{X: 1, Y: 2}}
	b := &ball{size: 10, vel: Vector2{X: -1, Y: 0.5}}
	if !ResolveCollision(a, b) {
		t.Fatal("coincident pair was not resolved")
	}
	// atan2(0, 0) is 0, so the exchange happens along the x axis.
	if !nearVec(a.vel, Vector2{X: -1, Y: 2}) || !nearVec(b.vel, Vector2{X: 1, Y: 0.5}) {
		t.Errorf("velocities = %v, %v", a.vel, b.vel)
	}
}

func TestResolveUnequalMass(t *testing.T) {
	a := &ball{size: 10, vel: Vector2{X: 2}}
	b := &ball{pos: Vector2{X: 5}, size: 10}
	if !ResolveCollisionMass(a, b, 1, 3) {
		t.Fatal("pair was not resolved")
	}
	if !nearVec(a.vel, Vector2{X: -1}) || !nearVec(b.vel, Vector2{X: 1}) {
		t.Errorf("velocities = %v, %v; want (-1,0), (1,0)", a.vel, b.vel)
	}
	before := KineticEnergy(1, Vector2{X: 2})
	after := KineticEnergy(1, a.vel) + KineticEnergy(3, b.vel)
	if !near(before, after) {
		t.Errorf("energy %v before, %v after", before, after)
	}
}

func TestElastic1DEqualMassSwaps(t *testing.T) {
	v1, v2 := Elastic1D(3, -0.5, 1, 1)
	if v1 != -0.5 || v2 != 3 {
		t.Errorf("Elastic1D = %v, %v", v1, v2)
	}
}

func ExampleResolveCollision() {
	a := &ball{size: 10, vel: Vector2{X: 1}}
	b := &ball{pos: Vector2{X: 5}, size: 10, vel: Vector2{X: -1}}
	if IsCollided(a, b) {
		ResolveCollision(a, b)
	}
	fmt.Printf("%.1f %.1f\n", a.vel.X, b.vel.X)
	// Output: -1.0 1.0
}
