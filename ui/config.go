package ui

import "github.com/dgnsrekt/audioset/internal/cache"

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth  uint
	GlamourStyle     string `env:"GLAMOUR_STYLE"`
	EnableMouse      bool
	PreserveNewLines bool

	// Markdown document to open. Empty when the content came from stdin.
	Path string
	// BaseDir resolves clip files when Path is empty.
	BaseDir string

	// Audio output
	SampleRate int   `env:"AUDIOSET_SAMPLE_RATE" envDefault:"44100"`
	CacheSize  int64 `env:"AUDIOSET_CACHE_SIZE"  envDefault:"268435456"`
	// Disk is the optional persistent clip cache. Its owner closes it.
	Disk *cache.DiskCache

	// For debugging the UI
	GlamourEnabled bool `env:"AUDIOSET_ENABLE_GLAMOUR" envDefault:"true"`
}
