package render

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"

	"github.com/blockpi/backend/internal/sim"
)

func classicResult(t *testing.T, ratio float64) sim.Result {
	t.Helper()
	r, err := sim.Simulate(sim.DefaultParams(ratio, 1, -1))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestFramesAreDecodablePNGs(t *testing.T) {
	r := classicResult(t, 100)

	frames, err := Frames(r, 5)
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}
	if len(frames) != 5 {
		t.Fatalf("Expected 5 frames, got %d", len(frames))
	}

	raw, err := base64.StdEncoding.DecodeString(frames[0])
	if err != nil {
		t.Fatalf("Frame is not base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Frame is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != FrameWidth || b.Dy() != FrameHeight {
		t.Errorf("Unexpected frame size %dx%d", b.Dx(), b.Dy())
	}
}

func TestDrawFramePlacesBlocks(t *testing.T) {
	v := View{XMin: -0.1, XMax: 1.1, BlockWidth: 0.1, MassRatio: 100}
	img := DrawFrame(sim.Frame{X1: 0.5, X2: 0.2}, v)

	y := int(FrameHeight * 0.5)
	inside := func(x float64) int { return v.px(x + 0.05) }

	if c := img.RGBAAt(inside(0.5), y); c != block1Color {
		t.Errorf("Expected block 1 color at x1, got %v", c)
	}
	if c := img.RGBAAt(inside(0.2), y); c != block2Color {
		t.Errorf("Expected block 2 color at x2, got %v", c)
	}
	if c := img.RGBAAt(v.px(0)+1, FrameHeight-5); c != wallColor {
		t.Errorf("Expected wall color at the wall, got %v", c)
	}
}

func TestClickTrackLength(t *testing.T) {
	r := classicResult(t, 1)
	s := NewClickTrack(r, 2, SoundSampleRate)

	total := 0
	loud := false
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			if buf[i][0] > 0.1 || buf[i][0] < -0.1 {
				loud = true
			}
			if buf[i][0] > 1 || buf[i][0] < -1 {
				t.Fatalf("Sample out of range: %v", buf[i][0])
			}
		}
		total += n
		if !ok {
			break
		}
	}

	// 10s run compressed to 2s plus one tick tail.
	want := SoundSampleRate.N(2e9) + SoundSampleRate.N(tickDuration)
	if total < want-1 || total > want+1 {
		t.Errorf("Expected ~%d samples, got %d", want, total)
	}
	if !loud {
		t.Error("Expected audible ticks")
	}
}

func TestClickTrackWAVHeader(t *testing.T) {
	r := classicResult(t, 100)
	data, err := ClickTrackWAV(r, 1, 0.8)
	if err != nil {
		t.Fatalf("ClickTrackWAV failed: %v", err)
	}
	if len(data) < 44 {
		t.Fatalf("WAV too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Errorf("Missing RIFF/WAVE header: %q", data[:12])
	}
}

func TestMemFileSeekAndOverwrite(t *testing.T) {
	var f memFile
	f.Write([]byte("hello world"))
	f.Seek(0, 0)
	f.Write([]byte("J"))
	if string(f.buf) != "Jello world" {
		t.Errorf("Unexpected buffer %q", f.buf)
	}
	f.Seek(2, 2)
	f.Write([]byte("!"))
	if len(f.buf) != 14 || f.buf[13] != '!' {
		t.Errorf("Expected write past end to grow buffer, got %q", f.buf)
	}
}
