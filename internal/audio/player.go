package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/cache"
	"github.com/dgnsrekt/audioset/internal/playback"
	"github.com/ebitengine/oto/v3"
	"golang.org/x/time/rate"
)

const (
	// DefaultSampleRate is the rate of the shared output context.
	DefaultSampleRate = 44100

	channels = 2

	// pollInterval is how often the player checks for the end of media.
	pollInterval = 50 * time.Millisecond
	// timeUpdateInterval throttles timeupdate events like browsers do.
	timeUpdateInterval = 250 * time.Millisecond
)

var (
	// ErrPlayerClosed is returned by operations on a closed player.
	ErrPlayerClosed = errors.New("player is closed")
	// ErrNoClip is returned when no clip has been loaded.
	ErrNoClip = errors.New("no clip loaded")
)

// oto allows a single context per process.
var (
	contextOnce   sync.Once
	sharedContext *oto.Context
	contextErr    error
)

func otoContext(sampleRate int) (*oto.Context, error) {
	contextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   100 * time.Millisecond,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			contextErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		sharedContext = ctx
	})
	return sharedContext, contextErr
}

// Config contains configuration for the audio player.
type Config struct {
	SampleRate int // 44100 or 48000 Hz
	Cache      *cache.MemoryCache
	// Disk optionally persists decoded clips between runs.
	Disk   *cache.DiskCache
	Logger *log.Logger
}

// DefaultConfig returns the default player configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
	}
}

func validateConfig(cfg Config) error {
	if cfg.SampleRate != 44100 && cfg.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", cfg.SampleRate)
	}
	return nil
}

// Player is a playback.Element backed by the system audio device.
type Player struct {
	ctx        *oto.Context
	sampleRate int
	store      *clipStore
	logger     *log.Logger
	limiter    *rate.Limiter

	mu       sync.Mutex
	path     string
	src      *source
	player   *oto.Player
	listener playback.Listener
	volume   float64
	playing  bool
	ended    bool
	closed   bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewPlayer opens the audio device and returns an empty player.
func NewPlayer(cfg Config) (*Player, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, err := otoContext(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	p := &Player{
		ctx:        ctx,
		sampleRate: cfg.SampleRate,
		logger:     cfg.Logger,
		limiter:    rate.NewLimiter(rate.Every(timeUpdateInterval), 1),
		volume:     1,
		done:       make(chan struct{}),
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	p.store = &clipStore{
		mem:        cfg.Cache,
		disk:       cfg.Disk,
		sampleRate: cfg.SampleRate,
		logger:     p.logger,
		decode:     DecodePCM,
	}
	if p.store.mem == nil {
		p.store.mem = cache.NewMemoryCache(cache.DefaultCapacity)
	}

	p.wg.Add(1)
	go p.watch()
	return p, nil
}

// SetListener registers the receiver of media events.
func (p *Player) SetListener(l playback.Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = l
}

// Load decodes path and makes it the current clip. Any current playback is
// dropped without firing events.
func (p *Player) Load(path string) error {
	pcm, err := p.decode(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	p.release()

	p.src = newSource(pcm)
	p.player = p.ctx.NewPlayer(p.src)
	p.player.SetVolume(p.volume)
	p.path = path
	p.playing = false
	p.ended = false

	p.logger.Debug("clip loaded", "path", path, "duration", p.durationLocked())
	return nil
}

// Preload decodes path into the clip cache without loading it, so a later
// Load of the same file skips decoding.
func (p *Player) Preload(path string) error {
	_, err := p.decode(path)
	return err
}

func (p *Player) decode(path string) ([]byte, error) {
	return p.store.pcm(path)
}

// Path returns the path of the loaded clip.
func (p *Player) Path() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

// Duration returns the clip length in seconds.
func (p *Player) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.durationLocked()
}

func (p *Player) durationLocked() float64 {
	if p.src == nil {
		return 0
	}
	return float64(p.src.Len()) / float64(p.sampleRate)
}

// CurrentTime returns the audible position in seconds. Audio still queued
// in the device buffer has not been heard yet and is not counted.
func (p *Player) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.src == nil {
		return 0
	}
	frame := float64(p.src.Position())
	buffered := float64(p.player.BufferedSize()/bytesPerFrame) * p.src.Rate()
	return max(frame-buffered, 0) / float64(p.sampleRate)
}

// Paused reports whether the element is not playing.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.playing
}

// Seek moves playback to seconds, clamped to the clip.
func (p *Player) Seek(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkLocked(); err != nil {
		return err
	}

	frame := int64(max(seconds, 0) * float64(p.sampleRate))
	if _, err := p.player.Seek(frame*bytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("unable to seek: %w", err)
	}
	if frame < int64(p.src.Len()) {
		p.ended = false
	}
	return nil
}

// SetPlaybackRate changes the playback speed.
func (p *Player) SetPlaybackRate(r float64) error {
	if r <= 0 {
		return fmt.Errorf("playback rate must be positive, got %v", r)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkLocked(); err != nil {
		return err
	}
	p.src.SetRate(r)
	return nil
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (p *Player) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = volume
	if p.player != nil {
		p.player.SetVolume(volume)
	}
	return nil
}

// Play starts or resumes playback and fires a play event. Playing an ended
// clip starts it over.
func (p *Player) Play() error {
	p.mu.Lock()
	if err := p.checkLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	if p.playing {
		p.mu.Unlock()
		return nil
	}
	if p.ended {
		if _, err := p.player.Seek(0, io.SeekStart); err != nil {
			p.mu.Unlock()
			return fmt.Errorf("unable to rewind: %w", err)
		}
		p.ended = false
	}
	p.player.Play()
	p.playing = true
	p.mu.Unlock()

	p.dispatch(playback.Listener.OnPlay)
	return nil
}

// Pause pauses playback and fires a pause event.
func (p *Player) Pause() error {
	p.mu.Lock()
	if err := p.checkLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	if !p.playing {
		p.mu.Unlock()
		return nil
	}
	p.player.Pause()
	p.playing = false
	p.mu.Unlock()

	p.dispatch(playback.Listener.OnPause)
	return nil
}

// Close stops playback and releases the clip.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.release()
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// watch reports timeupdate and ended events while playing.
func (p *Player) watch() {
	defer p.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Player) poll() {
	p.mu.Lock()
	if !p.playing || p.player == nil {
		p.mu.Unlock()
		return
	}
	if err := p.player.Err(); err != nil {
		p.logger.Error("audio device", "path", p.path, "err", err)
	}

	// oto stops on its own once the source is drained
	if !p.player.IsPlaying() {
		p.playing = false
		p.ended = true
		p.mu.Unlock()

		p.dispatch(playback.Listener.OnTimeUpdate)
		// the timeupdate listener may have rewound or restarted the clip
		if p.stillEnded() {
			p.dispatch(playback.Listener.OnPause)
			p.dispatch(playback.Listener.OnEnded)
		}
		return
	}
	p.mu.Unlock()

	if p.limiter.Allow() {
		p.dispatch(playback.Listener.OnTimeUpdate)
	}
}

func (p *Player) stillEnded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ended && !p.playing
}

// dispatch delivers an event without holding the player lock, so the
// listener may call back into the player.
func (p *Player) dispatch(event func(playback.Listener) error) {
	p.mu.Lock()
	l := p.listener
	p.mu.Unlock()

	if l == nil {
		return
	}
	if err := event(l); err != nil {
		p.logger.Warn("media event handler failed", "path", p.Path(), "err", err)
	}
}

func (p *Player) checkLocked() error {
	if p.closed {
		return ErrPlayerClosed
	}
	if p.src == nil {
		return ErrNoClip
	}
	return nil
}

// release must be called with the lock held.
func (p *Player) release() {
	if p.player != nil {
		p.player.Pause()
		_ = p.player.Close()
		p.player = nil
	}
	p.src = nil
	p.path = ""
	p.playing = false
}
