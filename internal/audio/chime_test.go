package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// drain streams s to completion and returns the sample count and peak.
func drain(s beep.Streamer) (int, float64) {
	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
}

func TestToneLength(t *testing.T) {
	rate := beep.SampleRate(44100)
	n, peak := drain(NewTone(440, FirstNoteLength, rate))

	if want := rate.N(FirstNoteLength); n != want {
		t.Errorf("samples = %d, want %d", n, want)
	}
	if peak <= 0 || peak > 1 {
		t.Errorf("peak = %v, want in (0, 1]", peak)
	}
}

func TestToneStartsSilent(t *testing.T) {
	rate := beep.SampleRate(44100)
	buf := make([][2]float64, 1)
	NewTone(440, FirstNoteLength, rate).Stream(buf)
	if buf[0][0] != 0 {
		t.Errorf("first sample = %v, want 0", buf[0][0])
	}
}

func TestChimeStreamerLength(t *testing.T) {
	rate := beep.SampleRate(44100)
	n, _ := drain(NewChimeStreamer(rate, 0.5))

	want := rate.N(FirstNoteLength) + rate.N(LastNoteLength)
	if n != want {
		t.Errorf("samples = %d, want %d", n, want)
	}
}

func TestChimeStreamerMuted(t *testing.T) {
	_, peak := drain(NewChimeStreamer(beep.SampleRate(44100), 0))
	if peak != 0 {
		t.Errorf("peak = %v, want silence", peak)
	}
}

func newTestChime(enabled bool, initErr error) (*Chime, *int) {
	played := 0
	c := NewChime(enabled, 0.8, quietLogger())
	c.initSpeaker = func(beep.SampleRate, int) error { return initErr }
	c.play = func(...beep.Streamer) { played++ }
	c.clear = func() {}
	return c, &played
}

func TestChimePlays(t *testing.T) {
	c, played := newTestChime(true, nil)

	if err := c.NotifyFinished(); err != nil {
		t.Fatalf("NotifyFinished: %v", err)
	}
	if *played != 1 {
		t.Errorf("played = %d, want 1", *played)
	}
	if c.Silent() {
		t.Error("chime should not be silent")
	}
}

func TestChimeSilentWhenSpeakerFails(t *testing.T) {
	c, played := newTestChime(true, errors.New("no audio device"))

	if err := c.NotifyFinished(); err != nil {
		t.Fatalf("NotifyFinished: %v", err)
	}
	if *played != 0 {
		t.Errorf("played = %d, want 0", *played)
	}
	if !c.Silent() {
		t.Error("chime should be silent after init failure")
	}
}

func TestChimeDisabled(t *testing.T) {
	initCalls := 0
	c, played := newTestChime(false, nil)
	c.initSpeaker = func(beep.SampleRate, int) error { initCalls++; return nil }

	c.NotifyFinished()
	c.Cleanup()
	if initCalls != 0 || *played != 0 {
		t.Errorf("disabled chime touched speaker: init=%d play=%d", initCalls, *played)
	}
}
