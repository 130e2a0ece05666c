package playback_test

import (
	"errors"
	"testing"

	"github.com/dgnsrekt/audioset/internal/audio"
	"github.com/dgnsrekt/audioset/internal/block"
	"github.com/dgnsrekt/audioset/internal/playback"
)

// setup wires a controller to a mock element the way a host would.
func setup(t *testing.T, b block.Block, duration float64) (*playback.Controller, *audio.MockPlayer, *[]playback.Event) {
	t.Helper()

	if b.Speed == 0 {
		b.Speed = 1
	}
	if b.Volume == 0 {
		b.Volume = 1
	}

	mp := audio.NewMockPlayer(duration)
	c := playback.NewController(b, mp)
	mp.SetListener(c)

	var events []playback.Event
	c.Subscribe(func(e playback.Event) {
		events = append(events, e)
	})
	return c, mp, &events
}

func TestOnPlayAppliesDirectives(t *testing.T) {
	c, mp, events := setup(t, block.Block{File: "a.mp3", Speed: 1.5, Volume: 0.5, Start: 10}, 60)

	if err := c.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if got := mp.Rate(); got != 1.5 {
		t.Errorf("expected rate 1.5, got %v", got)
	}
	if got := mp.Volume(); got != 0.5 {
		t.Errorf("expected volume 0.5, got %v", got)
	}
	if got := mp.CurrentTime(); got != 10 {
		t.Errorf("expected position 10, got %v", got)
	}
	if c.State() != playback.StatePlaying {
		t.Errorf("expected playing, got %v", c.State())
	}
	if len(*events) != 1 || (*events)[0].Type != playback.EventJumped {
		t.Errorf("expected one jumped event, got %v", *events)
	}
}

func TestOnPlayWithoutStartDoesNotSeek(t *testing.T) {
	c, mp, events := setup(t, block.Block{File: "a.mp3"}, 60)

	_ = c.Play()

	if got := mp.Metrics().SeekCount; got != 0 {
		t.Errorf("expected no seek, got %d", got)
	}
	if len(*events) != 0 {
		t.Errorf("expected no events, got %v", *events)
	}
}

func TestResumeSeeksBackToStart(t *testing.T) {
	c, mp, _ := setup(t, block.Block{File: "a.mp3", Start: 10}, 60)

	_ = c.Play()
	mp.Advance(5)
	_ = c.Pause()
	if c.State() != playback.StatePaused {
		t.Fatalf("expected paused, got %v", c.State())
	}
	if got := mp.CurrentTime(); got != 15 {
		t.Fatalf("expected position 15, got %v", got)
	}

	_ = c.Play()
	if got := mp.CurrentTime(); got != 10 {
		t.Errorf("expected every play to jump to the start marker, got %v", got)
	}
}

func TestStopMarker(t *testing.T) {
	tests := []struct {
		name      string
		block     block.Block
		advance   float64
		wantPos   float64
		wantState playback.State
		wantEvent playback.EventType
		wantPause bool
	}{
		{
			name:      "stop pauses and rewinds to start",
			block:     block.Block{File: "a.mp3", Start: 10, Stop: 20},
			advance:   11,
			wantPos:   10,
			wantState: playback.StateStopped,
			wantEvent: playback.EventStopped,
			wantPause: true,
		},
		{
			name:      "stop without start rewinds to zero",
			block:     block.Block{File: "a.mp3", Stop: 5},
			advance:   6,
			wantPos:   0,
			wantState: playback.StateStopped,
			wantEvent: playback.EventStopped,
			wantPause: true,
		},
		{
			name:      "loop goes back to start and keeps playing",
			block:     block.Block{File: "a.mp3", Start: 10, Stop: 20, Loop: true},
			advance:   11,
			wantPos:   10,
			wantState: playback.StatePlaying,
			wantEvent: playback.EventLoopedBack,
		},
		{
			name:      "loop without start goes back to zero",
			block:     block.Block{File: "a.mp3", Stop: 5, Loop: true},
			advance:   5,
			wantPos:   0,
			wantState: playback.StatePlaying,
			wantEvent: playback.EventLoopedBack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mp, events := setup(t, tt.block, 60)

			_ = c.Play()
			mp.Advance(tt.advance)

			if got := mp.CurrentTime(); got != tt.wantPos {
				t.Errorf("expected position %v, got %v", tt.wantPos, got)
			}
			if got := c.State(); got != tt.wantState {
				t.Errorf("expected state %v, got %v", tt.wantState, got)
			}
			if got := mp.Paused(); got != tt.wantPause {
				t.Errorf("expected paused=%v, got %v", tt.wantPause, got)
			}
			last := (*events)[len(*events)-1]
			if last.Type != tt.wantEvent {
				t.Errorf("expected last event %v, got %v", tt.wantEvent, last.Type)
			}
			if last.Time < tt.block.Stop {
				t.Errorf("expected boundary event at or after %v, got %v", tt.block.Stop, last.Time)
			}
		})
	}
}

func TestBeforeStopMarkerNothingHappens(t *testing.T) {
	c, mp, events := setup(t, block.Block{File: "a.mp3", Stop: 20}, 60)

	_ = c.Play()
	mp.Advance(19.5)

	if mp.Paused() || c.State() != playback.StatePlaying {
		t.Error("expected playback to continue before the stop marker")
	}
	if len(*events) != 0 {
		t.Errorf("expected no events, got %v", *events)
	}
}

func TestNoStopMarkerPlaysToEnd(t *testing.T) {
	c, mp, events := setup(t, block.Block{File: "a.mp3", Loop: true}, 3)

	_ = c.Play()
	mp.Advance(4)

	if c.State() != playback.StateEnded {
		t.Errorf("expected ended without a stop marker, got %v", c.State())
	}
	if len(*events) != 0 {
		t.Errorf("expected loop to be inert without a stop marker, got %v", *events)
	}
}

func TestStopBeforeStartLoopsEveryUpdate(t *testing.T) {
	c, mp, events := setup(t, block.Block{File: "a.mp3", Start: 30, Stop: 20, Loop: true}, 60)

	_ = c.Play()
	mp.Advance(0.25)
	mp.Advance(0.25)

	loops := 0
	for _, e := range *events {
		if e.Type == playback.EventLoopedBack {
			loops++
		}
	}
	if loops != 2 {
		t.Errorf("expected a loop-back on every update, got %d", loops)
	}
	if got := mp.CurrentTime(); got != 30 {
		t.Errorf("expected position held at start, got %v", got)
	}
	if c.State() != playback.StatePlaying {
		t.Errorf("expected playing, got %v", c.State())
	}
}

func TestStopBeforeStartStopsImmediately(t *testing.T) {
	c, mp, _ := setup(t, block.Block{File: "a.mp3", Start: 30, Stop: 20}, 60)

	_ = c.Play()
	mp.Advance(0.25)

	if c.State() != playback.StateStopped || !mp.Paused() {
		t.Errorf("expected stopped on first update, got %v", c.State())
	}
	if got := mp.CurrentTime(); got != 30 {
		t.Errorf("expected rewind to start, got %v", got)
	}
}

func TestStopAtClipEnd(t *testing.T) {
	t.Run("loop keeps the controller playing", func(t *testing.T) {
		c, mp, _ := setup(t, block.Block{File: "a.mp3", Stop: 10, Loop: true}, 10)

		_ = c.Play()
		mp.Advance(10)

		if c.State() != playback.StatePlaying || mp.Paused() {
			t.Fatalf("expected the loop to keep playing, got state %v paused=%v", c.State(), mp.Paused())
		}
		if got := mp.CurrentTime(); got != 0 {
			t.Errorf("expected loop back to 0, got %v", got)
		}

		if err := c.Toggle(); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		if !mp.Paused() || c.State() != playback.StatePaused {
			t.Errorf("expected toggle to pause, got state %v paused=%v", c.State(), mp.Paused())
		}
	})

	t.Run("without loop the clip is stopped, not ended", func(t *testing.T) {
		c, mp, _ := setup(t, block.Block{File: "a.mp3", Start: 2, Stop: 10}, 10)

		_ = c.Play()
		mp.Advance(8)

		if c.State() != playback.StateStopped {
			t.Errorf("expected stopped, got %v", c.State())
		}
		if got := mp.CurrentTime(); got != 2 {
			t.Errorf("expected rewind to 2, got %v", got)
		}
	})
}

func TestUserControls(t *testing.T) {
	c, mp, _ := setup(t, block.Block{File: "a.mp3", Start: 5}, 60)

	if err := c.Toggle(); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if c.State() != playback.StatePlaying {
		t.Fatalf("expected playing after toggle, got %v", c.State())
	}
	mp.Advance(3)

	_ = c.Toggle()
	if c.State() != playback.StatePaused {
		t.Fatalf("expected paused after second toggle, got %v", c.State())
	}

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if c.State() != playback.StateStopped {
		t.Errorf("expected stopped, got %v", c.State())
	}
	if got := mp.CurrentTime(); got != 5 {
		t.Errorf("expected rewind to start marker, got %v", got)
	}
}

type brokenElement struct {
	*audio.MockPlayer
}

func (brokenElement) SetPlaybackRate(float64) error {
	return errors.New("not supported")
}

func TestHandlerErrorsAreRecorded(t *testing.T) {
	el := brokenElement{audio.NewMockPlayer(10)}
	c := playback.NewController(block.Block{File: "a.mp3", Speed: 2, Volume: 1}, el)

	if err := c.OnPlay(); err == nil {
		t.Fatal("expected OnPlay to fail")
	}
	if c.Err() == nil {
		t.Error("expected the error to be recorded")
	}
}

func TestStateString(t *testing.T) {
	tests := map[playback.State]string{
		playback.StateIdle:    "idle",
		playback.StatePlaying: "playing",
		playback.StatePaused:  "paused",
		playback.StateStopped: "stopped",
		playback.StateEnded:   "ended",
		playback.State(99):    "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
