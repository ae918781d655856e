// Package bubbles simulates bubbles bouncing inside a rectangle.
//
// A Field owns every particle. The host calls Initialize once, OnFrame once
// per animation frame and Teardown when it is done. Particles appear one at a
// time during a staggered startup window and live until teardown.
package bubbles

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/iburimskiy/bubbles/internal/physics"
	"github.com/iburimskiy/bubbles/internal/schedule"
)

var (
	ErrNoBounds           = errors.New("bubbles: nil bounds provider")
	ErrAlreadyInitialized = errors.New("bubbles: field already initialized")
	ErrTornDown           = errors.New("bubbles: field torn down")
)

// Options configures a Field. Zero values are replaced by defaults.
type Options struct {
	Count           int           // particles spawned at startup
	Stagger         time.Duration // delay between two spawns
	TextureInterval time.Duration // period of the visual variant change
	Variants        int           // size of the texture palette

	SizeDivisor float64 // diameter = min(width, height) / SizeDivisor
	SpeedScale  float64 // top speed = max(1, height / SpeedScale)
	MinSpeed    float64 // lowest initial speed per axis

	Rand   RandFunc
	Clock  Clock
	Logger *log.Logger
}

// DefaultOptions returns the stock configuration: 16 bubbles, one every
// 800ms, three textures rotated every 5s.
func DefaultOptions() Options {
	return Options{
		Count:           16,
		Stagger:         800 * time.Millisecond,
		TextureInterval: 5 * time.Second,
		Variants:        3,
		SizeDivisor:     5,
		SpeedScale:      300,
		MinSpeed:        0.5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Count == 0 {
		o.Count = d.Count
	}
	if o.Stagger == 0 {
		o.Stagger = d.Stagger
	}
	if o.TextureInterval == 0 {
		o.TextureInterval = d.TextureInterval
	}
	if o.Variants <= 0 {
		o.Variants = d.Variants
	}
	if o.SizeDivisor == 0 {
		o.SizeDivisor = d.SizeDivisor
	}
	if o.SpeedScale == 0 {
		o.SpeedScale = d.SpeedScale
	}
	if o.MinSpeed == 0 {
		o.MinSpeed = d.MinSpeed
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.Rand == nil {
		o.Rand = NewRand(uint64(o.Clock.Now().UnixNano()))
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	return o
}

// FrameStats summarizes one call to Step.
type FrameStats struct {
	Frame       uint64
	Particles   int
	WallBounces int
	Collisions  int
	Energy      float64 // sum of ½|v|² over all particles
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateTornDown
)

// A Field is the particle collection plus its timers. It is safe to call from
// several goroutines: each frame runs under a single lock.
type Field struct {
	mu        sync.Mutex
	opts      Options
	particles []Particle
	variant   int
	frame     uint64
	sched     *schedule.Scheduler
	bounds    BoundsFunc
	state     state
}

// NewField returns an idle field.
func NewField(opts Options) *Field {
	opts = opts.withDefaults()
	return &Field{
		opts:  opts,
		sched: schedule.New(opts.Clock.Now()),
	}
}

// Initialize samples the bounds once, picks the first texture and schedules
// the staggered spawn and the periodic texture change.
func (f *Field) Initialize(bounds BoundsFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case stateRunning:
		return ErrAlreadyInitialized
	case stateTornDown:
		return ErrTornDown
	}
	if bounds == nil {
		return ErrNoBounds
	}

	f.sched.Advance(f.opts.Clock.Now())
	if _, err := f.sched.Every(f.opts.TextureInterval, f.pickVariant); err != nil {
		return fmt.Errorf("bubbles: texture timer: %w", err)
	}
	f.bounds = bounds
	f.pickVariant()
	b := bounds()
	f.spawn(b)
	f.state = stateRunning

	f.opts.Logger.Printf("initialized %.0fx%.0f, %d bubbles every %v", b.Width, b.Height, f.opts.Count, f.opts.Stagger)
	return nil
}

// OnFrame runs the timers that are due, advances the simulation by one step
// using freshly sampled bounds and returns what to draw.
func (f *Field) OnFrame() ([]Renderable, FrameStats) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != stateRunning {
		return nil, FrameStats{}
	}
	f.sched.Advance(f.opts.Clock.Now())
	stats := f.step(f.bounds())
	return f.renderables(), stats
}

// Teardown cancels pending spawns and the texture timer and drops every
// particle. Calling it more than once is harmless.
func (f *Field) Teardown() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == stateTornDown {
		return
	}
	n := f.sched.CancelAll()
	f.particles = nil
	f.bounds = nil
	f.state = stateTornDown
	f.opts.Logger.Printf("torn down after %d frames, %d timers cancelled", f.frame, n)
}

// Spawn schedules Count particles for b, one every Stagger.
func (f *Field) Spawn(b Bounds) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spawn(b)
}

// spawn tasks only run from OnFrame, which already holds f.mu, so a particle
// is appended whole between two steps.
func (f *Field) spawn(b Bounds) {
	for i := 1; i <= f.opts.Count; i++ {
		f.sched.After(time.Duration(i)*f.opts.Stagger, func() {
			p := NewParticle(b, f.opts.Rand, f.opts)
			f.particles = append(f.particles, p)
		})
	}
}

// Step advances every particle by one frame inside b.
func (f *Field) Step(b Bounds) FrameStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step(b)
}

// step moves, reflects and collides each particle in collection order. Every
// unordered pair is visited twice, once from each side, and reflection only
// flips the sign of the velocity without pulling the particle back inside.
func (f *Field) step(b Bounds) FrameStats {
	f.frame++
	stats := FrameStats{Frame: f.frame, Particles: len(f.particles)}

	for i := range f.particles {
		p := &f.particles[i]

		p.X += p.Velocity.X
		p.Y += p.Velocity.Y

		if p.X > b.Width-p.Size || p.X < 0 {
			p.Velocity.X *= -1
			stats.WallBounces++
		}
		if p.Y > b.Height-p.Size || p.Y < 0 {
			p.Velocity.Y *= -1
			stats.WallBounces++
		}

		for j := range f.particles {
			if i == j {
				continue
			}
			q := &f.particles[j]
			if physics.IsCollided(p, q) && physics.ResolveCollision(p, q) {
				stats.Collisions++
			}
		}
	}

	for i := range f.particles {
		stats.Energy += physics.KineticEnergy(1, f.particles[i].Velocity)
	}
	return stats
}

// Particles returns a copy of the collection.
func (f *Field) Particles() []Particle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Particle(nil), f.particles...)
}

// Renderables returns the current draw list without stepping.
func (f *Field) Renderables() []Renderable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renderables()
}

func (f *Field) renderables() []Renderable {
	out := make([]Renderable, len(f.particles))
	for i, p := range f.particles {
		out[i] = Renderable{X: p.X, Y: p.Y, Size: p.Size, Variant: f.variant}
	}
	return out
}

// Variant returns the texture every particle is drawn with.
func (f *Field) Variant() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.variant
}

// SetVariant overrides the current texture. It has no effect on physics.
func (f *Field) SetVariant(v int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.variant = clampVariant(v, f.opts.Variants)
}

// PickVariant draws a new texture uniformly from the palette.
func (f *Field) PickVariant() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pickVariant()
}

func (f *Field) pickVariant() {
	n := f.opts.Variants
	f.variant = clampVariant(int(f.opts.Rand(0, float64(n))), n)
}

func clampVariant(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
