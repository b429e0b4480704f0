// Package audio plays the completion chime through the system speaker.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"
)

const sampleRate = beep.SampleRate(44100)

// Chime implements timer.Notifier. When the speaker cannot be opened it
// stays silent instead of failing.
type Chime struct {
	mu          sync.Mutex
	enabled     bool
	volume      float64
	initialized bool
	silent      bool
	log         *logrus.Entry

	// Overridden in tests.
	initSpeaker func(beep.SampleRate, int) error
	play        func(...beep.Streamer)
	clear       func()
}

// NewChime creates a chime. A disabled chime never touches the speaker.
func NewChime(enabled bool, volume float64, log logrus.FieldLogger) *Chime {
	return &Chime{
		enabled:     enabled,
		volume:      volume,
		log:         log.WithField("component", "audio"),
		initSpeaker: speaker.Init,
		play:        speaker.Play,
		clear:       speaker.Clear,
	}
}

// Initialize opens the speaker once. Failure switches to silent mode.
func (c *Chime) Initialize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || c.initialized {
		return
	}
	c.initialized = true
	if err := c.initSpeaker(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		c.silent = true
		c.log.WithError(err).Warn("speaker unavailable, chime disabled")
	}
}

// Silent reports whether the chime will produce no sound.
func (c *Chime) Silent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.enabled || c.silent
}

// NotifyFinished plays the chime. It initializes the speaker lazily.
func (c *Chime) NotifyFinished() error {
	c.Initialize()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled || c.silent {
		return nil
	}
	c.play(NewChimeStreamer(sampleRate, c.volume))
	return nil
}

// Cleanup stops any sound still playing.
func (c *Chime) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized && !c.silent {
		c.clear()
	}
}
