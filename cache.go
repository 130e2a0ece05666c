package main

import (
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/cache"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

func getClipCachePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "audioset").CacheDir()
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return filepath.Join(dir, "clips"), nil
}

// openDiskCache returns the persistent clip cache, or nil when it is turned
// off or cannot be opened. Playback works without it.
func openDiskCache() *cache.DiskCache {
	if !viper.GetBool("audio.disk_cache") {
		return nil
	}
	dir, err := getClipCachePath()
	if err != nil {
		log.Warn("clip cache disabled", "error", err)
		return nil
	}
	dc, err := cache.NewDiskCache(dir, viper.GetInt64("audio.disk_cache_size"), viper.GetInt("audio.disk_cache_level"))
	if err != nil {
		log.Warn("clip cache disabled", "dir", dir, "error", err)
		return nil
	}
	return dc
}

func closeDiskCache(dc *cache.DiskCache) {
	if dc == nil {
		return
	}
	s := dc.Stats()
	log.Debug("closing clip cache", "items", s.ItemCount, "size", s.Size, "hits", s.Hits, "misses", s.Misses)
	if err := dc.Close(); err != nil {
		log.Warn("unable to save clip cache index", "error", err)
	}
}
