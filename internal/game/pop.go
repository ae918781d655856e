package game

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
)

const popLength = 60 * time.Millisecond

type voice struct {
	phase float64 // radians
	step  float64 // radians per sample
	amp   float64
	left  int // samples still to play
	total int
}

// popTap is an endless beep.Streamer that mixes short decaying sine blips.
// The frame loop queues blips with trigger while the speaker goroutine
// drains them through Stream.
type popTap struct {
	sampleRate beep.SampleRate
	volume     float64
	maxVoices  int
	voices     []voice
	mu         sync.Mutex
}

func newPopTap(sr beep.SampleRate, maxVoices int, volume float64) *popTap {
	return &popTap{
		sampleRate: sr,
		volume:     volume,
		maxVoices:  maxVoices,
	}
}

// trigger queues up to n blips at freq Hz. Blips beyond the voice limit are
// dropped. It returns how many were queued.
func (t *popTap) trigger(n int, freq float64) int {
	total := t.sampleRate.N(popLength)
	step := 2 * math.Pi * freq / float64(t.sampleRate)

	t.mu.Lock()
	defer t.mu.Unlock()

	queued := 0
	for i := 0; i < n && len(t.voices) < t.maxVoices; i++ {
		t.voices = append(t.voices, voice{
			step:  step * (1 + 0.07*float64(i)),
			amp:   t.volume,
			left:  total,
			total: total,
		})
		queued++
	}
	return queued
}

func (t *popTap) Stream(samples [][2]float64) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range samples {
		var mix float64
		for j := range t.voices {
			v := &t.voices[j]
			if v.left == 0 {
				continue
			}
			env := float64(v.left) / float64(v.total)
			mix += v.amp * env * env * math.Sin(v.phase)
			v.phase += v.step
			v.left--
		}
		mix = math.Max(-1, math.Min(1, mix))
		samples[i] = [2]float64{mix, mix}
	}

	alive := t.voices[:0]
	for _, v := range t.voices {
		if v.left > 0 {
			alive = append(alive, v)
		}
	}
	t.voices = alive
	return len(samples), true
}

func (t *popTap) Err() error { return nil }

// active returns the number of blips still sounding.
func (t *popTap) active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.voices)
}
