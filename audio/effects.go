package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
)

// tailGain is the level a tone fades to by the end of its duration
const tailGain = 0.01

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator creates a new oscillator for wave generation
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase) // Keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// decay ramps gain exponentially from start to tailGain over the stream's length
type decay struct {
	streamer beep.Streamer
	start    float64
	ratio    float64 // per-sample multiplier
	gain     float64
}

// NewDecay shapes s with an exponential fade from start over duration
func NewDecay(s beep.Streamer, start float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	d := &decay{streamer: s, start: start, gain: start, ratio: 1}
	if n := rate.N(duration); n > 0 && start > tailGain {
		d.ratio = math.Pow(tailGain/start, 1/float64(n))
	}
	return d
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		samples[i][0] *= d.gain
		samples[i][1] *= d.gain
		d.gain *= d.ratio
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// newVolume wraps s in a linear gain
// math.Log2(0) is -Inf, so zero volume is mapped to silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// tone is one fading note
type tone struct {
	freq     float64
	wave     WaveType
	duration time.Duration
	gain     float64
	delay    time.Duration
}

func (t tone) streamer(rate beep.SampleRate) beep.Streamer {
	s := NewDecay(NewOscillator(t.freq, t.duration, t.wave, rate), t.gain, t.duration, rate)
	if t.delay > 0 {
		return beep.Seq(beep.Silence(rate.N(t.delay)), s)
	}
	return s
}

// voicing lists the tones of each effect; overlapping tones are mixed
func voicing(st SoundType) []tone {
	switch st {
	case SoundClick:
		return []tone{{1200, WaveSine, 100 * time.Millisecond, 0.3, 0}}
	case SoundBuy:
		return []tone{{600, WaveSquare, 100 * time.Millisecond, 0.3, 0}}
	case SoundError:
		return []tone{{150, WaveSaw, 300 * time.Millisecond, 0.5, 0}}
	case SoundAlert:
		return []tone{
			{800, WaveSaw, 500 * time.Millisecond, 0.4, 0},
			{600, WaveSaw, 500 * time.Millisecond, 0.4, 200 * time.Millisecond},
		}
	case SoundSuccess:
		return arpeggio(0.4)
	case SoundAchievement:
		return arpeggio(1)
	case SoundReboot:
		return []tone{{100, WaveSaw, time.Second, 0.8, 0}}
	case SoundTyping:
		return []tone{{1000 + rand.Float64()*500, WaveSquare, 20 * time.Millisecond, 1, 0}}
	default:
		return nil
	}
}

// arpeggio is the rising three-note figure shared by success and achievement
func arpeggio(gain float64) []tone {
	return []tone{
		{400, WaveSine, 100 * time.Millisecond, gain, 0},
		{600, WaveSine, 100 * time.Millisecond, gain, 100 * time.Millisecond},
		{800, WaveSine, 200 * time.Millisecond, gain, 200 * time.Millisecond},
	}
}

// CreateSound builds the streamer for st at the given master volume
// Returns nil for unknown types
func CreateSound(st SoundType, volume float64, rate beep.SampleRate) beep.Streamer {
	tones := voicing(st)
	if len(tones) == 0 {
		return nil
	}
	parts := make([]beep.Streamer, len(tones))
	for i, t := range tones {
		parts[i] = t.streamer(rate)
	}
	if len(parts) == 1 {
		return newVolume(parts[0], volume)
	}
	return newVolume(beep.Mix(parts...), volume)
}
