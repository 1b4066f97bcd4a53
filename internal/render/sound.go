package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/blockpi/backend/internal/sim"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"
)

const (
	SoundSampleRate = beep.SampleRate(44100)
	tickDuration    = 15 * time.Millisecond
	blockTickFreq   = 440.0
	wallTickFreq    = 880.0
)

type tick struct {
	start int
	freq  float64
}

// clickTrack plays a short decaying sine for every collision event.
type clickTrack struct {
	ticks   []tick
	first   int // earliest tick that may still be sounding
	pos     int
	total   int
	tickLen int
	rate    beep.SampleRate
}

// NewClickTrack builds a streamer with one tick per event. Playback is
// compressed so the whole run lasts at most maxSeconds.
func NewClickTrack(r sim.Result, maxSeconds float64, rate beep.SampleRate) beep.Streamer {
	duration := 0.0
	if n := len(r.Trajectory); n > 0 {
		duration = r.Trajectory[n-1].Time
	}
	scale := 1.0
	if maxSeconds > 0 && duration > maxSeconds {
		scale = maxSeconds / duration
	}

	tickLen := rate.N(tickDuration)
	ticks := make([]tick, len(r.Events))
	for i, e := range r.Events {
		freq := blockTickFreq
		if e.Kind == sim.Wall {
			freq = wallTickFreq
		}
		ticks[i] = tick{start: int(e.Time * scale * float64(rate)), freq: freq}
	}

	return &clickTrack{
		ticks:   ticks,
		total:   int(duration*scale*float64(rate)) + tickLen,
		tickLen: tickLen,
		rate:    rate,
	}
}

func (c *clickTrack) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.pos >= c.total {
			return i, i > 0
		}

		for c.first < len(c.ticks) && c.ticks[c.first].start+c.tickLen <= c.pos {
			c.first++
		}

		var val float64
		for j := c.first; j < len(c.ticks) && c.ticks[j].start <= c.pos; j++ {
			age := c.pos - c.ticks[j].start
			if age >= c.tickLen {
				continue
			}
			env := math.Exp(-5 * float64(age) / float64(c.tickLen))
			val += env * math.Sin(2*math.Pi*c.ticks[j].freq*float64(age)/float64(c.rate))
		}
		val = math.Max(-1, math.Min(1, val))

		samples[i][0] = val
		samples[i][1] = val
		c.pos++
	}
	return len(samples), true
}

func (c *clickTrack) Err() error { return nil }

// newVolume scales s; zero or negative volume yields silence.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// EncodeClickTrack writes the collision click track of r as 16-bit mono WAV.
func EncodeClickTrack(w io.WriteSeeker, r sim.Result, maxSeconds, volume float64) error {
	s := newVolume(NewClickTrack(r, maxSeconds, SoundSampleRate), volume)
	format := beep.Format{SampleRate: SoundSampleRate, NumChannels: 1, Precision: 2}
	if err := wav.Encode(w, s, format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// ClickTrackWAV returns the encoded click track in memory.
func ClickTrackWAV(r sim.Result, maxSeconds, volume float64) ([]byte, error) {
	var f memFile
	if err := EncodeClickTrack(&f, r, maxSeconds, volume); err != nil {
		return nil, err
	}
	return f.buf, nil
}

// memFile is an in-memory io.WriteSeeker; wav.Encode seeks back to patch
// the header sizes.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		if end > cap(m.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("memfile: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("memfile: negative position")
	}
	m.pos = int(abs)
	return abs, nil
}
