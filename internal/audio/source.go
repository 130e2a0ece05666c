package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"

	"github.com/faiface/beep"
)

// bytesPerFrame is one 16-bit stereo frame.
const bytesPerFrame = 4

// pcmStreamer exposes decoded PCM as a beep streamer. It is only used by
// source, under the source lock.
type pcmStreamer struct {
	data []byte
	pos  int // frame index
}

func (s *pcmStreamer) frames() int {
	return len(s.data) / bytesPerFrame
}

func (s *pcmStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	remaining := s.frames() - s.pos
	if remaining <= 0 {
		return 0, false
	}
	n = min(len(samples), remaining)
	for i := range n {
		off := (s.pos + i) * bytesPerFrame
		samples[i][0] = fromInt16(int16(binary.LittleEndian.Uint16(s.data[off:])))
		samples[i][1] = fromInt16(int16(binary.LittleEndian.Uint16(s.data[off+2:])))
	}
	s.pos += n
	return n, true
}

func (s *pcmStreamer) Err() error { return nil }

// source is the io.ReadSeeker handed to oto. It renders the clip at the
// current playback rate; offsets are in bytes of the clip, not of the
// rendered output.
type source struct {
	mu sync.Mutex

	// data must stay referenced for as long as oto may read from it
	pcm  *pcmStreamer
	rate float64

	// out is pcm, or a resampler over it when rate != 1
	out beep.Streamer
	buf [][2]float64
}

func newSource(data []byte) *source {
	s := &source{
		pcm:  &pcmStreamer{data: data},
		rate: 1,
	}
	s.out = s.pcm
	return s
}

// Read implements io.Reader.
func (s *source) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := len(p) / bytesPerFrame
	if want == 0 {
		return 0, nil
	}
	if cap(s.buf) < want {
		s.buf = make([][2]float64, want)
	}
	buf := s.buf[:want]

	n, ok := s.out.Stream(buf)
	for i, frame := range buf[:n] {
		binary.LittleEndian.PutUint16(p[i*bytesPerFrame:], uint16(toInt16(frame[0])))
		binary.LittleEndian.PutUint16(p[i*bytesPerFrame+2:], uint16(toInt16(frame[1])))
	}
	if !ok || n == 0 {
		return n * bytesPerFrame, io.EOF
	}
	return n * bytesPerFrame, nil
}

// Seek implements io.Seeker over clip bytes.
func (s *source) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := offset / bytesPerFrame
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		frame += int64(s.pcm.pos)
	case io.SeekEnd:
		frame += int64(s.pcm.frames())
	default:
		return 0, errors.New("invalid whence")
	}
	if frame < 0 {
		return 0, errors.New("negative position")
	}
	frame = min(frame, int64(s.pcm.frames()))

	s.pcm.pos = int(frame)
	s.reset()
	return frame * bytesPerFrame, nil
}

// SetRate changes the playback rate. Pitch follows the rate.
func (s *source) SetRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rate == s.rate {
		return
	}
	s.rate = rate
	s.reset()
}

// Position returns the current frame.
func (s *source) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pcm.pos
}

// Len returns the clip length in frames.
func (s *source) Len() int {
	return s.pcm.frames()
}

// Rate returns the playback rate.
func (s *source) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// reset rebuilds the output chain so no resampler state from before a seek
// or rate change leaks into playback. Must be called with the lock held.
func (s *source) reset() {
	if s.rate == 1 {
		s.out = s.pcm
		return
	}
	s.out = beep.ResampleRatio(resampleQuality, s.rate, s.pcm)
}
