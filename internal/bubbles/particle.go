package bubbles

import (
	"math"
	"time"

	"golang.org/x/exp/rand"

	"github.com/iburimskiy/bubbles/internal/physics"
)

// A Particle is a single bubble. X and Y locate its top-left corner and Size
// is its diameter, fixed at creation.
type Particle struct {
	X, Y     float64
	Size     float64
	Velocity physics.Vector2
}

func (p *Particle) Pos() physics.Vector2 { return physics.Vector2{X: p.X, Y: p.Y} }
func (p *Particle) Diameter() float64 { return p.Size }
func (p *Particle) Vel() physics.Vector2 { return p.Velocity }
func (p *Particle) SetVel(v physics.Vector2) { p.Velocity = v }

// Bounds is the size of the drawable surface.
type Bounds struct {
	Width, Height float64
}

// BoundsFunc samples the current surface size.
type BoundsFunc func() Bounds

// A Renderable is what the renderer needs to draw one particle.
type Renderable struct {
	X, Y, Size float64
	Variant    int
}

// RandFunc returns a uniform value in [lo, hi).
type RandFunc func(lo, hi float64) float64

// NewRand returns a RandFunc backed by a PRNG seeded with seed.
func NewRand(seed uint64) RandFunc {
	r := rand.New(rand.NewSource(seed))
	return func(lo, hi float64) float64 {
		return lo + r.Float64()*(hi-lo)
	}
}

// A Clock tells the field what time it is.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// NewParticle builds a particle at the bottom-left corner of b.
// Its diameter is a fraction of the shorter side, and both velocity
// components are drawn from [MinSpeed, max(1, height/SpeedScale)], so taller
// surfaces get faster bubbles.
func NewParticle(b Bounds, rnd RandFunc, o Options) Particle {
	size := math.Min(b.Width, b.Height) / o.SizeDivisor
	top := math.Max(1, b.Height/o.SpeedScale)
	return Particle{
		X:    0,
		Y:    b.Height - size,
		Size: size,
		Velocity: physics.Vector2{
			X: rnd(o.MinSpeed, top),
			Y: rnd(o.MinSpeed, top),
		},
	}
}
