package block

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Language is the info string of fenced blocks handled by this package.
const Language = "audioset"

const (
	DefaultSpeed  = 1.0
	DefaultVolume = 1.0

	// MinSpeed and MaxSpeed bound the playback rate a media element accepts.
	MinSpeed = 0.0625
	MaxSpeed = 16.0

	MinVolume = 0.0
	MaxVolume = 1.0
)

// ErrNoFile is returned by Parse when the block does not name a file.
var ErrNoFile = errors.New("no file specified in audioset block")

// Block holds the directives of one audioset block. Times are in seconds.
type Block struct {
	File   string  `yaml:"file"`
	Speed  float64 `yaml:"speed"`
	Volume float64 `yaml:"volume"`
	Start  float64 `yaml:"start"`
	Stop   float64 `yaml:"stop"`
	Loop   bool    `yaml:"loop"`

	// Warnings lists directives that were ignored or adjusted.
	Warnings []string `yaml:"warnings,omitempty"`
}

// Default returns a block with every directive at its default.
func Default() Block {
	return Block{
		Speed:  DefaultSpeed,
		Volume: DefaultVolume,
	}
}

// Parse reads the body of an audioset block.
//
// Each non-empty line is either the bare word "loop" or a "key: value"
// pair split at the first colon. Keys are case-insensitive; unknown keys and
// pairs with an empty side are skipped, and a repeated key overrides the
// earlier one. When no file is named the partially parsed block is returned
// along with ErrNoFile.
func Parse(source string) (Block, error) {
	b := Default()

	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.EqualFold(line, "loop") {
			b.Loop = true
			continue
		}

		// the value is the text between the first and second colon, so
		// "start: 1:30" reads as 1 and "file: C:\a.mp3" as "C"
		parts := strings.Split(line, ":")
		if len(parts) < 2 {
			continue
		}
		rawKey, rawValue := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if rawKey == "" || rawValue == "" {
			continue
		}

		switch strings.ToLower(rawKey) {
		case "file":
			b.File = rawValue
		case "speed":
			b.Speed = b.number("speed", rawValue, DefaultSpeed, MinSpeed, MaxSpeed)
		case "volume":
			b.Volume = b.number("volume", rawValue, DefaultVolume, MinVolume, MaxVolume)
		case "start":
			b.Start = b.marker("start", rawValue)
		case "stop":
			b.Stop = b.marker("stop", rawValue)
		}
	}

	if b.File == "" {
		return b, ErrNoFile
	}
	return b, nil
}

// number parses a speed or volume directive. Unreadable values keep def and
// out of range values are clamped.
func (b *Block) number(key, raw string, def, lo, hi float64) float64 {
	v := ParseFloat(raw)
	switch {
	case math.IsNaN(v):
		b.warn("%s: %q is not a number, using %s", key, raw, formatNumber(def))
		return def
	case v < lo:
		b.warn("%s: %s is below %s, clamped", key, formatNumber(v), formatNumber(lo))
		return lo
	case v > hi:
		b.warn("%s: %s is above %s, clamped", key, formatNumber(v), formatNumber(hi))
		return hi
	}
	return v
}

// marker parses a start or stop directive. Anything that is not a finite
// positive time disables the marker.
func (b *Block) marker(key, raw string) float64 {
	v := ParseTime(raw)
	switch {
	case math.IsNaN(v):
		b.warn("%s: %q is not a time, ignored", key, raw)
		return 0
	case math.IsInf(v, 0):
		b.warn("%s: %q is not a finite time, ignored", key, raw)
		return 0
	case v < 0:
		b.warn("%s: %q is negative, ignored", key, raw)
		return 0
	}
	return v
}

func (b *Block) warn(format string, args ...any) {
	b.Warnings = append(b.Warnings, fmt.Sprintf(format, args...))
}

// HasStart reports whether a start marker is set.
func (b Block) HasStart() bool {
	return b.Start > 0
}

// HasStop reports whether a stop marker is set.
func (b Block) HasStop() bool {
	return b.Stop > 0
}

// StartAt is where playback resumes after hitting the stop marker.
func (b Block) StartAt() float64 {
	if b.HasStart() {
		return b.Start
	}
	return 0
}

// InfoLines returns the lines of the info panel shown above the player.
// Directives at their default are left out.
func (b Block) InfoLines() []string {
	var lines []string
	if b.File != "" {
		lines = append(lines, FileNameOnly(b.File))
	}
	if b.Speed != DefaultSpeed {
		lines = append(lines, "Speed: "+formatNumber(b.Speed))
	}
	if b.Volume != DefaultVolume {
		lines = append(lines, "Volume: "+formatNumber(b.Volume))
	}
	if b.HasStart() {
		lines = append(lines, "Start: "+FormatTime(b.Start))
	}
	if b.HasStop() {
		lines = append(lines, "Stop: "+FormatTime(b.Stop))
	}
	if b.Loop {
		lines = append(lines, "Loop: ON")
	}
	return lines
}

// FileNameOnly strips any directory from path, accepting both slash styles.
func FileNameOnly(path string) string {
	name := path[strings.LastIndexAny(path, `/\`)+1:]
	if name == "" {
		return path
	}
	return name
}
