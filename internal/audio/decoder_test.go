package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// writeTone writes a wav file holding a constant level on both channels.
func writeTone(t *testing.T, dir string, sampleRate, frames int, level float64) string {
	t.Helper()

	path := filepath.Join(dir, "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close() //nolint:errcheck

	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{level, level}
		}
		return len(samples), true
	})
	format := beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Take(frames, tone), format); err != nil {
		t.Fatalf("unable to encode wav: %v", err)
	}
	return path
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, _, err := Decode(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, _, err := Decode(filepath.Join(t.TempDir(), "missing.mp3"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestDecodePCM(t *testing.T) {
	path := writeTone(t, t.TempDir(), 44100, 4410, 0.5)

	pcm, err := DecodePCM(path, 44100)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}

	if got, want := len(pcm), 4410*bytesPerFrame; got != want {
		t.Fatalf("expected %d bytes, got %d", want, got)
	}

	left := int16(binary.LittleEndian.Uint16(pcm[0:]))
	right := int16(binary.LittleEndian.Uint16(pcm[2:]))
	for _, v := range []int16{left, right} {
		if math.Abs(float64(v)-0.5*math.MaxInt16) > 4 {
			t.Errorf("expected sample near half scale, got %d", v)
		}
	}
}

func TestDecodePCMResamples(t *testing.T) {
	path := writeTone(t, t.TempDir(), 22050, 22050, 0.25)

	pcm, err := DecodePCM(path, 44100)
	if err != nil {
		t.Fatalf("DecodePCM failed: %v", err)
	}

	frames := len(pcm) / bytesPerFrame
	if math.Abs(float64(frames)-44100) > 44100*0.05 {
		t.Errorf("expected about 44100 frames after resampling, got %d", frames)
	}
}

func TestInt16RoundTrip(t *testing.T) {
	for _, v := range []float64{-1, -0.5, 0, 0.5, 1} {
		if got := fromInt16(toInt16(v)); math.Abs(got-v) > 1e-4 {
			t.Errorf("round trip of %v gave %v", v, got)
		}
	}
	if toInt16(2) != math.MaxInt16 || toInt16(-2) != -math.MaxInt16 {
		t.Error("expected out of range samples to clip")
	}
}
