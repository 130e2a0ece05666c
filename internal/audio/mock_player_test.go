package audio

import (
	"errors"
	"testing"
)

type recorder struct {
	events []string
}

func (r *recorder) OnPlay() error       { r.events = append(r.events, "play"); return nil }
func (r *recorder) OnPause() error      { r.events = append(r.events, "pause"); return nil }
func (r *recorder) OnTimeUpdate() error { r.events = append(r.events, "timeupdate"); return nil }
func (r *recorder) OnEnded() error      { r.events = append(r.events, "ended"); return nil }

func TestMockPlayer_Events(t *testing.T) {
	mp := NewMockPlayer(10)
	rec := &recorder{}
	mp.SetListener(rec)

	_ = mp.Play()
	_ = mp.Play() // already playing, no event
	mp.Advance(1)
	_ = mp.Pause()
	_ = mp.Pause() // already paused, no event
	mp.Advance(1)  // paused, nothing happens

	want := []string{"play", "timeupdate", "pause"}
	if len(rec.events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, rec.events)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], rec.events[i])
		}
	}
	if got := mp.CurrentTime(); got != 1 {
		t.Errorf("expected position 1, got %v", got)
	}
}

func TestMockPlayer_RateScalesAdvance(t *testing.T) {
	mp := NewMockPlayer(10)
	_ = mp.SetPlaybackRate(2)
	_ = mp.Play()
	mp.Advance(1.5)

	if got := mp.CurrentTime(); got != 3 {
		t.Errorf("expected position 3, got %v", got)
	}
}

func TestMockPlayer_EndsAndRestarts(t *testing.T) {
	mp := NewMockPlayer(2)
	rec := &recorder{}
	mp.SetListener(rec)

	_ = mp.Play()
	mp.Advance(5)

	if !mp.Paused() {
		t.Fatal("expected player to stop at the end")
	}
	if got := mp.CurrentTime(); got != 2 {
		t.Errorf("expected position clamped to 2, got %v", got)
	}
	if last := rec.events[len(rec.events)-1]; last != "ended" {
		t.Errorf("expected ended event last, got %v", rec.events)
	}

	_ = mp.Play()
	if got := mp.CurrentTime(); got != 0 {
		t.Errorf("expected replay to start over, got %v", got)
	}
}

// rewinder restarts the clip from its timeupdate handler.
type rewinder struct {
	recorder
	mp *MockPlayer
}

func (r *rewinder) OnTimeUpdate() error {
	_ = r.recorder.OnTimeUpdate()
	_ = r.mp.Seek(0)
	return r.mp.Play()
}

func TestMockPlayer_EndSupersededByTimeUpdate(t *testing.T) {
	mp := NewMockPlayer(2)
	rec := &rewinder{mp: mp}
	mp.SetListener(rec)

	_ = mp.Play()
	mp.Advance(2)

	for _, e := range rec.events {
		if e == "pause" || e == "ended" {
			t.Errorf("expected no %s after a restart, got %v", e, rec.events)
		}
	}
	if mp.Paused() {
		t.Error("expected the player to keep playing")
	}
}

func TestMockPlayer_Validation(t *testing.T) {
	mp := NewMockPlayer(1)
	if err := mp.SetVolume(1.5); err == nil {
		t.Error("expected error for volume above 1")
	}
	if err := mp.SetPlaybackRate(0); err == nil {
		t.Error("expected error for zero rate")
	}

	_ = mp.Seek(-4)
	if mp.CurrentTime() != 0 {
		t.Error("expected negative seek to clamp to 0")
	}

	_ = mp.Close()
	if err := mp.Play(); !errors.Is(err, ErrPlayerClosed) {
		t.Errorf("expected ErrPlayerClosed, got %v", err)
	}
}
