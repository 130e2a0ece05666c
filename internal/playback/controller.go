package playback

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/block"
)

// Controller drives one Element according to one Block. It is the
// Listener of that element and also exposes the user-facing controls.
//
// The controller lock is never held while calling into the element, since
// elements may deliver events synchronously from Play and Pause.
type Controller struct {
	block block.Block
	el    Element

	mu          sync.Mutex
	state       State
	lastErr     error
	subscribers []func(Event)

	logger *log.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for boundary actions.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController returns a controller for b driving el.
func NewController(b block.Block, el Element, opts ...Option) *Controller {
	c := &Controller{
		block:  b,
		el:     el,
		state:  StateIdle,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Block returns the directives the controller applies.
func (c *Controller) Block() block.Block {
	return c.block
}

// Element returns the driven element.
func (c *Controller) Element() Element {
	return c.el
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the last error raised while handling an element event.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Subscribe registers fn to be called for every boundary action.
func (c *Controller) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// OnPlay applies speed and volume and, with a start marker, seeks to it.
// This runs on every play event, resumes and loop restarts included.
func (c *Controller) OnPlay() error {
	c.setState(StatePlaying)

	if err := c.el.SetPlaybackRate(c.block.Speed); err != nil {
		return c.fail(fmt.Errorf("unable to set playback rate: %w", err))
	}
	if err := c.el.SetVolume(c.block.Volume); err != nil {
		return c.fail(fmt.Errorf("unable to set volume: %w", err))
	}

	if c.block.HasStart() {
		at := c.el.CurrentTime()
		if err := c.el.Seek(c.block.Start); err != nil {
			return c.fail(fmt.Errorf("unable to seek to start: %w", err))
		}
		c.logger.Debug("Jumped to start time", "start", c.block.Start)
		c.emit(Event{Type: EventJumped, Time: at})
	}
	return nil
}

// OnTimeUpdate enforces the stop marker. Once the element reaches it,
// playback either loops back to the start or pauses and rewinds there.
func (c *Controller) OnTimeUpdate() error {
	if !c.block.HasStop() {
		return nil
	}

	at := c.el.CurrentTime()
	if at < c.block.Stop {
		return nil
	}

	target := c.block.StartAt()
	if c.block.Loop {
		if err := c.el.Seek(target); err != nil {
			return c.fail(fmt.Errorf("unable to loop back: %w", err))
		}
		if err := c.el.Play(); err != nil {
			return c.fail(fmt.Errorf("unable to restart playback: %w", err))
		}
		c.logger.Debug("Looped back to start", "start", target)
		c.emit(Event{Type: EventLoopedBack, Time: at})
		return nil
	}

	if err := c.el.Pause(); err != nil {
		return c.fail(fmt.Errorf("unable to pause at stop: %w", err))
	}
	if err := c.el.Seek(target); err != nil {
		return c.fail(fmt.Errorf("unable to rewind: %w", err))
	}
	c.setState(StateStopped)
	c.logger.Debug("Stopped at", "stop", c.block.Stop)
	c.emit(Event{Type: EventStopped, Time: at})
	return nil
}

// OnPause records a pause. A reset at the stop marker stays stopped.
func (c *Controller) OnPause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateStopped {
		c.state = StatePaused
	}
	return nil
}

// OnEnded records that the media reached its natural end.
func (c *Controller) OnEnded() error {
	c.setState(StateEnded)
	return nil
}

// Play starts or resumes the element.
func (c *Controller) Play() error {
	return c.el.Play()
}

// Pause pauses the element.
func (c *Controller) Pause() error {
	return c.el.Pause()
}

// Toggle pauses a playing element and plays any other.
func (c *Controller) Toggle() error {
	if c.State() == StatePlaying {
		return c.Pause()
	}
	return c.Play()
}

// Stop pauses the element and rewinds it to the start marker.
func (c *Controller) Stop() error {
	if err := c.el.Pause(); err != nil {
		return err
	}
	if err := c.el.Seek(c.block.StartAt()); err != nil {
		return err
	}
	c.setState(StateStopped)
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	c.logger.Error("playback", "file", c.block.File, "err", err)
	return err
}

func (c *Controller) emit(e Event) {
	c.mu.Lock()
	subs := make([]func(Event), len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}
