package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/cache"
)

// clipStore hands out decoded PCM, looking in memory, then on disk, and
// decoding only when both miss. Each decode fills both tiers.
type clipStore struct {
	mem        *cache.MemoryCache
	disk       *cache.DiskCache // may be nil
	sampleRate int
	logger     *log.Logger
	decode     func(path string, sampleRate int) ([]byte, error)
}

func (s *clipStore) pcm(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	key := cache.Key(abs, info)
	if pcm, ok := s.mem.Get(key); ok {
		return pcm, nil
	}
	diskKey := cache.RateKey(key, s.sampleRate)
	if s.disk != nil {
		if pcm, ok := s.disk.Get(diskKey); ok {
			s.logger.Debug("clip read from disk cache", "path", abs)
			_ = s.mem.Put(key, pcm)
			return pcm, nil
		}
	}

	start := time.Now()
	pcm, err := s.decode(abs, s.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(abs), err)
	}
	s.logger.Debug("clip decoded", "path", abs, "bytes", len(pcm), "took", time.Since(start))

	if err := s.mem.Put(key, pcm); err != nil {
		s.logger.Debug("clip not cached", "path", abs, "err", err)
	}
	if s.disk != nil {
		if err := s.disk.Put(diskKey, pcm); err != nil {
			s.logger.Debug("clip not stored on disk", "path", abs, "err", err)
		}
	}
	return pcm, nil
}
