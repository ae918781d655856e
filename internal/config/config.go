package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512

	// Bubbles
	BubbleCount     = 16
	SpawnStagger    = 800 * time.Millisecond
	TextureInterval = 5 * time.Second
	SizeDivisor     = 5
	SpeedScale      = 300
	MinSpeed        = 0.5

	// Sprite and audio
	SpriteSize = 128
	SampleRate = 44100
	PopVoices  = 16
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration written as a string such as "800ms" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds everything the program can be told from a TOML file.
type Config struct {
	WindowWidth  int    `toml:"window_width"`
	WindowHeight int    `toml:"window_height"`
	Title        string `toml:"title"`

	Count           int      `toml:"count"`            // bubbles spawned at startup
	Stagger         Duration `toml:"stagger"`          // delay between spawns
	TextureInterval Duration `toml:"texture_interval"` // period of the texture change
	SizeDivisor     float64  `toml:"size_divisor"`     // diameter = min(w, h) / size_divisor
	SpeedScale      float64  `toml:"speed_scale"`      // top speed = max(1, h / speed_scale)
	MinSpeed        float64  `toml:"min_speed"`
	Seed            uint64   `toml:"seed"` // 0 seeds from the clock

	Palette []string `toml:"palette"` // one #RRGGBB per texture

	Sound     bool    `toml:"sound"` // play a pop on every collision
	Volume    float64 `toml:"volume"`
	ShowStats bool    `toml:"show_stats"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		WindowWidth:     WindowWidth,
		WindowHeight:    WindowHeight,
		Title:           "Bubbles",
		Count:           BubbleCount,
		Stagger:         Duration{SpawnStagger},
		TextureInterval: Duration{TextureInterval},
		SizeDivisor:     SizeDivisor,
		SpeedScale:      SpeedScale,
		MinSpeed:        MinSpeed,
		Palette:         []string{"#e8414f", "#3f7fe0", "#9b4fd6"}, // red, blue, purple
		Volume:          0.3,
	}
}

// Parse reads the TOML file at path over the defaults and validates it.
func Parse(path string) (*Config, error) {
	conf := Default()
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return conf, nil
}

// Validate reports every bad field at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		bad("window size %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.Count < 0 {
		bad("count %d", c.Count)
	}
	if c.Stagger.Duration <= 0 {
		bad("stagger %v", c.Stagger)
	}
	if c.TextureInterval.Duration <= 0 {
		bad("texture_interval %v", c.TextureInterval)
	}
	if c.SizeDivisor <= 0 {
		bad("size_divisor %v", c.SizeDivisor)
	}
	if c.SpeedScale <= 0 {
		bad("speed_scale %v", c.SpeedScale)
	}
	if c.MinSpeed <= 0 || c.MinSpeed > 1 {
		bad("min_speed %v (want (0, 1])", c.MinSpeed)
	}
	if len(c.Palette) == 0 {
		bad("empty palette")
	}
	for _, s := range c.Palette {
		if _, err := ParseColor(s); err != nil {
			bad("palette: %v", err)
		}
	}
	if c.Volume < 0 || c.Volume > 1 {
		bad("volume %v (want [0, 1])", c.Volume)
	}
	return errors.Join(errs...)
}

// Colors returns the palette as RGBA values.
func (c *Config) Colors() ([]color.RGBA, error) {
	out := make([]color.RGBA, 0, len(c.Palette))
	for _, s := range c.Palette {
		clr, err := ParseColor(s)
		if err != nil {
			return nil, err
		}
		out = append(out, clr)
	}
	return out, nil
}

// ParseColor parses an opaque "#RRGGBB" color.
func ParseColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
