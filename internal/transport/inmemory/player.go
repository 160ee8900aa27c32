// Package inmemory simulates an audio engine: position advances with wall
// time while playing. It backs the daemon when no real engine is attached
// and the protocol tests.
package inmemory

import (
	"sync"
	"time"

	"github.com/tuneroom/client/internal/transport"
)

type player struct {
	mu sync.Mutex

	loaded    bool
	playing   bool
	duration  float64
	basePos   float64
	baseTime  time.Time
	durations map[string]float64

	now func() time.Time
}

// NewPlayer builds a simulated player. durations maps a source locator to
// a track duration in seconds; unknown locators load with duration 0.
func NewPlayer(durations map[string]float64) *player {
	return &player{
		durations: durations,
		now:       time.Now,
	}
}

// SetNow replaces the player's clock. Test helper.
func (p *player) SetNow(now func() time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
}

func (p *player) Load(sourceLocator string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.loaded = true
	p.playing = false
	p.duration = p.durations[sourceLocator]
	p.basePos = 0
	p.baseTime = p.now()

	return nil
}

func (p *player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return transport.ErrNoTrackLoaded
	}
	if p.playing {
		return nil
	}

	p.playing = true
	p.baseTime = p.now()

	return nil
}

func (p *player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return transport.ErrNoTrackLoaded
	}
	if !p.playing {
		return nil
	}

	p.basePos = p.positionLocked()
	p.playing = false

	return nil
}

func (p *player) SeekTo(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return transport.ErrNoTrackLoaded
	}

	if seconds < 0 {
		seconds = 0
	}
	p.basePos = seconds
	p.baseTime = p.now()

	return nil
}

func (p *player) Position() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return 0, transport.ErrNoTrackLoaded
	}

	return p.positionLocked(), nil
}

func (p *player) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.duration
}

func (p *player) positionLocked() float64 {
	pos := p.basePos
	if p.playing {
		pos += p.now().Sub(p.baseTime).Seconds()
	}

	if p.duration > 0 && pos > p.duration {
		pos = p.duration
	}

	return pos
}
