package block

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    Block
		wantErr error
	}{
		{
			name:   "file only",
			source: "file: audio/clip.mp3",
			want:   Block{File: "audio/clip.mp3", Speed: 1, Volume: 1},
		},
		{
			name:   "all directives",
			source: "file: a.mp3\nspeed: 1.5\nvolume: 0.5\nstart: 10\nstop: 20\nloop",
			want:   Block{File: "a.mp3", Speed: 1.5, Volume: 0.5, Start: 10, Stop: 20, Loop: true},
		},
		{
			name:   "keys are case-insensitive and whitespace is trimmed",
			source: "  FILE :  a.mp3  \n\tSpeed:2\n   LOOP   ",
			want:   Block{File: "a.mp3", Speed: 2, Volume: 1, Loop: true},
		},
		{
			name:   "values end at the second colon",
			source: "file: a.mp3\nstart: 1:30\nstop: 1:02:03",
			want:   Block{File: "a.mp3", Speed: 1, Volume: 1, Start: 1, Stop: 1},
		},
		{
			name:   "clock form minutes only keep the first field",
			source: "file: a.mp3\nstop: 0:45",
			want:   Block{File: "a.mp3", Speed: 1, Volume: 1},
		},
		{
			name:   "later lines override earlier ones",
			source: "file: a.mp3\nfile: b.mp3\nspeed: 2\nspeed: 0.5",
			want:   Block{File: "b.mp3", Speed: 0.5, Volume: 1},
		},
		{
			name:   "unknown keys and malformed lines are ignored",
			source: "file: a.mp3\ncolor: red\njust words\n: value\nspeed:",
			want:   Block{File: "a.mp3", Speed: 1, Volume: 1},
		},
		{
			name:   "lenient numbers",
			source: "file: a.mp3\nspeed: 1.25x\nvolume: .5 please",
			want:   Block{File: "a.mp3", Speed: 1.25, Volume: 0.5},
		},
		{
			name:   "file value stops at the second colon",
			source: "file: C:/music/a.mp3",
			want:   Block{File: "C", Speed: 1, Volume: 1},
		},
		{
			name:    "missing file",
			source:  "speed: 2\nloop",
			want:    Block{Speed: 2, Volume: 1, Loop: true},
			wantErr: ErrNoFile,
		},
		{
			name:    "empty body",
			source:  "\n\n   \n",
			want:    Block{Speed: 1, Volume: 1},
			wantErr: ErrNoFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.source)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			got.Warnings = nil
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseAdjustsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		source string
		check  func(Block) bool
	}{
		{"speed not a number", "speed: fast", func(b Block) bool { return b.Speed == DefaultSpeed }},
		{"volume not a number", "volume: loud", func(b Block) bool { return b.Volume == DefaultVolume }},
		{"volume above one", "volume: 3", func(b Block) bool { return b.Volume == MaxVolume }},
		{"negative volume", "volume: -1", func(b Block) bool { return b.Volume == MinVolume }},
		{"zero speed", "speed: 0", func(b Block) bool { return b.Speed == MinSpeed }},
		{"huge speed", "speed: 100", func(b Block) bool { return b.Speed == MaxSpeed }},
		{"start not a time", "start: soon", func(b Block) bool { return b.Start == 0 }},
		{"negative stop", "stop: -5", func(b Block) bool { return b.Stop == 0 }},
		{"infinite stop", "stop: Infinity", func(b Block) bool { return b.Stop == 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := Parse("file: a.mp3\n" + tt.source)
			if !tt.check(b) {
				t.Errorf("unexpected block %+v", b)
			}
			if len(b.Warnings) != 1 {
				t.Errorf("expected one warning, got %v", b.Warnings)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1", 1},
		{"1.5", 1.5},
		{"  2.25", 2.25},
		{"1.5x", 1.5},
		{".5", 0.5},
		{"5.", 5},
		{"-3", -3},
		{"+4", 4},
		{"1e2", 100},
		{"1e", 1},
		{"12abc", 12},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFloat(tt.in); got != tt.want {
				t.Errorf("ParseFloat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for _, in := range []string{"", "abc", ".", "-", "x1"} {
		if got := ParseFloat(in); !math.IsNaN(got) {
			t.Errorf("ParseFloat(%q) = %v, want NaN", in, got)
		}
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"90", 90},
		{"12.5", 12.5},
		{"1:30", 90},
		{"0:05", 5},
		{"1:30.5", 90.5},
		{"1:02:03", 3723},
		{"2:00:00", 7200},
		{"1:2:3:4", 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseTime(tt.in); got != tt.want {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for _, in := range []string{"abc", "a:30", "1:b", ":"} {
		if got := ParseTime(in); !math.IsNaN(got) {
			t.Errorf("ParseTime(%q) = %v, want NaN", in, got)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59.9, "0:59"},
		{90, "1:30"},
		{600, "10:00"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3723.7, "1:02:03"},
		{36000, "10:00:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimeHugeMarker(t *testing.T) {
	got := FormatTime(1e300)
	if !regexp.MustCompile(`^2777\d+:\d\d:\d\d$`).MatchString(got) {
		t.Errorf("FormatTime(1e300) = %q", got)
	}

	b, err := Parse("file: a.mp3\nstart: 1e300")
	if err != nil {
		t.Fatal(err)
	}
	info := b.InfoLines()
	if last := info[len(info)-1]; !strings.HasPrefix(last, "Start: 2777") {
		t.Errorf("unexpected info line %q", last)
	}
}

func TestFileNameOnly(t *testing.T) {
	tests := map[string]string{
		"clip.mp3":           "clip.mp3",
		"audio/clip.mp3":     "clip.mp3",
		`audio\sub\clip.mp3`: "clip.mp3",
		"a/b\\c/clip.wav":    "clip.wav",
		"audio/":             "audio/",
		"":                   "",
	}
	for in, want := range tests {
		if got := FileNameOnly(in); got != want {
			t.Errorf("FileNameOnly(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInfoLines(t *testing.T) {
	tests := []struct {
		name  string
		block Block
		want  []string
	}{
		{
			name:  "defaults show only the file name",
			block: Block{File: "audio/clip.mp3", Speed: 1, Volume: 1},
			want:  []string{"clip.mp3"},
		},
		{
			name:  "every directive",
			block: Block{File: "clip.mp3", Speed: 1.5, Volume: 0.8, Start: 75, Stop: 3725, Loop: true},
			want:  []string{"clip.mp3", "Speed: 1.5", "Volume: 0.8", "Start: 1:15", "Stop: 1:02:05", "Loop: ON"},
		},
		{
			name:  "whole numbers print without a fraction",
			block: Block{File: "clip.mp3", Speed: 2, Volume: 0},
			want:  []string{"clip.mp3", "Speed: 2", "Volume: 0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.block.InfoLines(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("InfoLines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStartAt(t *testing.T) {
	if got := (Block{Start: 12}).StartAt(); got != 12 {
		t.Errorf("StartAt() = %v, want 12", got)
	}
	if got := (Block{}).StartAt(); got != 0 {
		t.Errorf("StartAt() = %v, want 0", got)
	}
}
