package audio

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/playback"
)

// MockPlayer is a playback.Element that simulates a clip without producing
// sound. Time only moves when Advance is called.
type MockPlayer struct {
	mu       sync.Mutex
	path     string
	duration float64
	position float64
	rate     float64
	volume   float64
	playing  bool
	ended    bool
	closed   bool
	listener playback.Listener

	// Metrics for testing
	playCount  int
	pauseCount int
	seekCount  int
}

// NewMockPlayer returns a mock holding a clip of the given length in seconds.
func NewMockPlayer(duration float64) *MockPlayer {
	return &MockPlayer{
		duration: duration,
		rate:     1,
		volume:   1,
	}
}

// SetListener registers the receiver of media events.
func (mp *MockPlayer) SetListener(l playback.Listener) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.listener = l
}

// Load records path and rewinds the simulated clip.
func (mp *MockPlayer) Load(path string) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if mp.closed {
		return ErrPlayerClosed
	}
	mp.path = path
	mp.position = 0
	mp.playing = false
	mp.ended = false
	return nil
}

// Path returns the last loaded path.
func (mp *MockPlayer) Path() string {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.path
}

// Duration returns the simulated clip length.
func (mp *MockPlayer) Duration() float64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.duration
}

// CurrentTime returns the simulated position.
func (mp *MockPlayer) CurrentTime() float64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.position
}

// Seek moves the simulated position, clamped to the clip.
func (mp *MockPlayer) Seek(seconds float64) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if mp.closed {
		return ErrPlayerClosed
	}
	mp.position = min(max(seconds, 0), mp.duration)
	if mp.position < mp.duration {
		mp.ended = false
	}
	mp.seekCount++
	return nil
}

// SetPlaybackRate sets how fast Advance moves the position.
func (mp *MockPlayer) SetPlaybackRate(r float64) error {
	if r <= 0 {
		return fmt.Errorf("playback rate must be positive, got %v", r)
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.rate = r
	return nil
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (mp *MockPlayer) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.volume = volume
	return nil
}

// Play starts simulated playback and fires a play event.
func (mp *MockPlayer) Play() error {
	mp.mu.Lock()
	if mp.closed {
		mp.mu.Unlock()
		return ErrPlayerClosed
	}
	if mp.playing {
		mp.mu.Unlock()
		return nil
	}
	if mp.ended {
		mp.position = 0
		mp.ended = false
	}
	mp.playing = true
	mp.playCount++
	mp.mu.Unlock()

	mp.dispatch(playback.Listener.OnPlay)
	return nil
}

// Pause pauses simulated playback and fires a pause event.
func (mp *MockPlayer) Pause() error {
	mp.mu.Lock()
	if !mp.playing {
		mp.mu.Unlock()
		return nil
	}
	mp.playing = false
	mp.pauseCount++
	mp.mu.Unlock()

	mp.dispatch(playback.Listener.OnPause)
	return nil
}

// Advance moves a playing clip forward by seconds of wall time, scaled by
// the playback rate, then fires timeupdate. Reaching the end fires pause and
// ended.
func (mp *MockPlayer) Advance(seconds float64) {
	mp.mu.Lock()
	if !mp.playing {
		mp.mu.Unlock()
		return
	}
	mp.position += seconds * mp.rate
	finished := mp.position >= mp.duration
	if finished {
		mp.position = mp.duration
		mp.playing = false
		mp.ended = true
	}
	mp.mu.Unlock()

	mp.dispatch(playback.Listener.OnTimeUpdate)
	// the timeupdate listener may have rewound or restarted the clip
	if finished && mp.stillEnded() {
		mp.dispatch(playback.Listener.OnPause)
		mp.dispatch(playback.Listener.OnEnded)
	}
}

func (mp *MockPlayer) stillEnded() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.ended && !mp.playing
}

// Close marks the player closed.
func (mp *MockPlayer) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.closed = true
	mp.playing = false
	return nil
}

// Paused reports whether the mock is not playing.
func (mp *MockPlayer) Paused() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return !mp.playing
}

// Rate returns the last playback rate set.
func (mp *MockPlayer) Rate() float64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.rate
}

// Volume returns the last volume set.
func (mp *MockPlayer) Volume() float64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.volume
}

// MockPlayerMetrics contains call counts for testing.
type MockPlayerMetrics struct {
	PlayCount  int
	PauseCount int
	SeekCount  int
}

// Metrics returns call counts.
func (mp *MockPlayer) Metrics() MockPlayerMetrics {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return MockPlayerMetrics{
		PlayCount:  mp.playCount,
		PauseCount: mp.pauseCount,
		SeekCount:  mp.seekCount,
	}
}

func (mp *MockPlayer) dispatch(event func(playback.Listener) error) {
	mp.mu.Lock()
	l := mp.listener
	mp.mu.Unlock()

	if l == nil {
		return
	}
	if err := event(l); err != nil {
		log.Debug("mock event handler failed", "err", err)
	}
}
