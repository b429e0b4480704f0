package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Chime note timing.
const (
	NoteAttack      = 5 * time.Millisecond
	FirstNoteLength = 120 * time.Millisecond
	LastNoteLength  = 480 * time.Millisecond
)

// tone is a sine oscillator with a linear attack and release.
type tone struct {
	freq    float64
	phase   float64
	rate    beep.SampleRate
	pos     int
	total   int
	attack  int
	release int
}

// NewTone returns a sine tone of the given length, shaped so it starts and
// ends without clicks.
func NewTone(freq float64, length time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(length)
	return &tone{
		freq:    freq,
		rate:    rate,
		total:   total,
		attack:  rate.N(NoteAttack),
		release: total / 2,
	}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.pos >= t.total {
			return i, i > 0
		}

		vol := 1.0
		if t.attack > 0 && t.pos < t.attack {
			vol = float64(t.pos) / float64(t.attack)
		}
		if left := t.total - t.pos; t.release > 0 && left < t.release {
			vol = float64(left) / float64(t.release)
		}

		val := vol * math.Sin(2*math.Pi*t.phase)
		samples[i][0] = val
		samples[i][1] = val

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.pos++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// NewChimeStreamer builds the two-note "done" chime (E6 then A6) at volume
// in [0, 1].
func NewChimeStreamer(rate beep.SampleRate, volume float64) beep.Streamer {
	seq := beep.Seq(
		NewTone(1318.51, FirstNoteLength, rate),
		NewTone(1760.00, LastNoteLength, rate),
	)
	return withVolume(seq, volume)
}

// withVolume scales s linearly. math.Log2(0) is -Inf, so zero is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
