package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// ErrUnsupportedFormat is returned for files beep cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// resampleQuality is the beep resampler quality for format conversion.
const resampleQuality = 4

// Decode opens path and returns a streamer chosen by file extension.
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3", ".wav", ".flac", ".ogg", ".oga":
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch ext {
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".flac":
		s, format, err = flac.Decode(f)
	default:
		s, format, err = vorbis.Decode(f)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("unable to decode %s: %w", filepath.Base(path), err)
	}
	return s, format, nil
}

// DecodePCM decodes a whole file to interleaved 16-bit little endian stereo
// at sampleRate.
func DecodePCM(path string, sampleRate int) ([]byte, error) {
	s, format, err := Decode(path)
	if err != nil {
		return nil, err
	}
	defer s.Close() //nolint:errcheck

	var src beep.Streamer = s
	if int(format.SampleRate) != sampleRate {
		src = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(sampleRate), s)
	}

	pcm := make([]byte, 0, s.Len()*bytesPerFrame)
	buf := make([][2]float64, 4096)
	for {
		n, ok := src.Stream(buf)
		for _, frame := range buf[:n] {
			pcm = binary.LittleEndian.AppendUint16(pcm, uint16(toInt16(frame[0])))
			pcm = binary.LittleEndian.AppendUint16(pcm, uint16(toInt16(frame[1])))
		}
		if !ok {
			break
		}
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", filepath.Base(path), err)
	}
	return pcm, nil
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}

func fromInt16(v int16) float64 {
	return float64(v) / math.MaxInt16
}
