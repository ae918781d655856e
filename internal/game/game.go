// Package game hosts the bubble field in an ebiten window.
package game

import (
	"fmt"
	"image/color"
	"log"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/bubbles/internal/bubbles"
	"github.com/iburimskiy/bubbles/internal/config"
)

var background = color.RGBA{R: 12, G: 14, B: 22, A: 255}

// Game implements ebiten.Game. Update drives the field one frame at a time
// and Layout feeds it the current window size.
type Game struct {
	conf   *config.Config
	logger *log.Logger
	field  *bubbles.Field

	colors  []color.RGBA
	sprites []*ebiten.Image

	// latest window size, written by Layout
	mu            sync.RWMutex
	width, height int

	frame []bubbles.Renderable
	stats bubbles.FrameStats
	start time.Time

	pops *popTap

	// input edge detection
	prevKey map[ebiten.Key]bool
}

// NewGame builds the field from conf and starts its spawn timers.
func NewGame(conf *config.Config, logger *log.Logger) (*Game, error) {
	colors, err := conf.Colors()
	if err != nil {
		return nil, err
	}
	seed := conf.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	g := &Game{
		conf:    conf,
		logger:  logger,
		colors:  colors,
		width:   conf.WindowWidth,
		height:  conf.WindowHeight,
		start:   time.Now(),
		prevKey: map[ebiten.Key]bool{},
	}
	count := conf.Count
	if count == 0 {
		count = -1 // Options treats zero as unset
	}
	g.field = bubbles.NewField(bubbles.Options{
		Count:           count,
		Stagger:         conf.Stagger.Duration,
		TextureInterval: conf.TextureInterval.Duration,
		Variants:        len(colors),
		SizeDivisor:     conf.SizeDivisor,
		SpeedScale:      conf.SpeedScale,
		MinSpeed:        conf.MinSpeed,
		Rand:            bubbles.NewRand(seed),
		Logger:          logger,
	})
	if err := g.field.Initialize(g.bounds); err != nil {
		return nil, fmt.Errorf("start field: %w", err)
	}
	logger.Printf("seed %d, %d textures", seed, len(colors))
	return g, nil
}

// EnableSound opens the speaker and plays a pop for every collision.
func (g *Game) EnableSound() error {
	sr := beep.SampleRate(config.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/20)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	g.pops = newPopTap(sr, config.PopVoices, g.conf.Volume)
	speaker.Play(g.pops)
	return nil
}

func (g *Game) bounds() bubbles.Bounds {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return bubbles.Bounds{Width: float64(g.width), Height: float64(g.height)}
}

func (g *Game) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}
	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	g.tick()
	return nil
}

// tick advances the field by one frame and queues collision pops.
func (g *Game) tick() {
	g.frame, g.stats = g.field.OnFrame()
	if g.pops != nil && g.stats.Collisions > 0 {
		g.pops.trigger(g.stats.Collisions, popFrequency(g.stats))
	}
}

// popFrequency lowers the pitch as the field fills up.
func popFrequency(s bubbles.FrameStats) float64 {
	return 880 - 20*float64(min(s.Particles, 20))
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	if g.sprites == nil {
		g.sprites = make([]*ebiten.Image, len(g.colors))
		for i, c := range g.colors {
			g.sprites[i] = newSprite(c, config.SpriteSize)
		}
	}

	for _, b := range g.frame {
		if b.Size <= 0 {
			continue
		}
		op := &ebiten.DrawImageOptions{}
		s := b.Size / config.SpriteSize
		op.GeoM.Scale(s, s)
		op.GeoM.Translate(b.X, b.Y)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(g.sprites[b.Variant], op)
	}

	if g.conf.ShowStats {
		ebitenutil.DebugPrintAt(screen, g.status(), 12, 12)
	}
}

func (g *Game) status() string {
	return fmt.Sprintf("%s  frame %d  bubbles %d  walls %d  hits %d  energy %.2f  TPS %.0f",
		formatDuration(time.Since(g.start)), g.stats.Frame, g.stats.Particles,
		g.stats.WallBounces, g.stats.Collisions, g.stats.Energy, ebiten.ActualTPS())
}

// Layout keeps the screen the same size as the window so the field sees
// resizes on the next frame.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.mu.Lock()
	g.width, g.height = outsideWidth, outsideHeight
	g.mu.Unlock()
	return outsideWidth, outsideHeight
}

// Close stops the timers, drops the bubbles and silences the speaker.
func (g *Game) Close() {
	g.field.Teardown()
	if g.pops != nil {
		speaker.Lock()
		speaker.Clear()
		speaker.Unlock()
		g.pops = nil
	}
}

// newSprite draws a shaded bubble of the given base color.
func newSprite(base color.RGBA, size int) *ebiten.Image {
	img := ebiten.NewImage(size, size)
	r := float32(size) / 2

	vector.DrawFilledCircle(img, r, r, r, shade(base, 1, 0.65), true)
	vector.DrawFilledCircle(img, r, r, r*0.9, base, true)
	vector.DrawFilledCircle(img, r*0.7, r*0.65, r*0.28, shade(base, 0.35, 1.4), true)
	vector.StrokeCircle(img, r, r, r-1.5, 2, color.RGBA{R: 255, G: 255, B: 255, A: 80}, true)
	return img
}
