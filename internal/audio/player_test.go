package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/cache"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"44100Hz", Config{SampleRate: 44100}, false},
		{"48000Hz", Config{SampleRate: 48000}, false},
		{"unsupported rate", Config{SampleRate: 22050}, true},
		{"zero rate", Config{}, true},
		{"default", DefaultConfig(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateConfig(tt.config); (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// countingDecoder returns fixed PCM and counts calls.
type countingDecoder struct {
	calls int
	err   error
}

func (d *countingDecoder) decode(string, int) ([]byte, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return []byte{1, 2, 3, 4}, nil
}

func newTestStore(t *testing.T, disk *cache.DiskCache, dec *countingDecoder) *clipStore {
	t.Helper()
	return &clipStore{
		mem:        cache.NewMemoryCache(1 << 20),
		disk:       disk,
		sampleRate: 44100,
		logger:     log.New(os.Stderr),
		decode:     dec.decode,
	}
}

func writeClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClipStore_MemoryTier(t *testing.T) {
	dec := &countingDecoder{}
	s := newTestStore(t, nil, dec)
	path := writeClip(t)

	for i := 0; i < 3; i++ {
		if _, err := s.pcm(path); err != nil {
			t.Fatalf("pcm failed: %v", err)
		}
	}
	if dec.calls != 1 {
		t.Errorf("expected one decode, got %d", dec.calls)
	}
}

func TestClipStore_DiskTier(t *testing.T) {
	disk, err := cache.NewDiskCache(t.TempDir(), 1<<20, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer disk.Close() //nolint:errcheck

	path := writeClip(t)
	first := &countingDecoder{}
	if _, err := newTestStore(t, disk, first).pcm(path); err != nil {
		t.Fatal(err)
	}

	// a fresh memory tier, as in the next run
	second := &countingDecoder{}
	pcm, err := newTestStore(t, disk, second).pcm(path)
	if err != nil {
		t.Fatal(err)
	}
	if second.calls != 0 {
		t.Errorf("expected the disk tier to serve the clip, decoded %d times", second.calls)
	}
	if len(pcm) != 4 {
		t.Errorf("unexpected pcm %v", pcm)
	}

	// another sample rate needs its own decode
	other := newTestStore(t, disk, second)
	other.sampleRate = 48000
	if _, err := other.pcm(path); err != nil {
		t.Fatal(err)
	}
	if second.calls != 1 {
		t.Errorf("expected a decode for 48000Hz, got %d", second.calls)
	}
}

func TestClipStore_Errors(t *testing.T) {
	dec := &countingDecoder{err: errors.New("bad header")}
	s := newTestStore(t, nil, dec)

	if _, err := s.pcm(filepath.Join(t.TempDir(), "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not exist error, got %v", err)
	}
	if _, err := s.pcm(writeClip(t)); !errors.Is(err, dec.err) {
		t.Errorf("expected the decode error, got %v", err)
	}
}
