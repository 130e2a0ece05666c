// Package playback maps the directives of an audioset block onto a live
// media element: seek on play, stop at the boundary, loop back.
package playback

// Element is a media element that plays a single clip. Times are seconds.
//
// Implementations report their own state changes through a Listener: a
// paused element that starts playing fires OnPlay, a playing element that
// pauses fires OnPause. Calling Play on a playing element, or Pause on a
// paused one, does nothing.
type Element interface {
	CurrentTime() float64
	Seek(seconds float64) error
	SetPlaybackRate(rate float64) error
	SetVolume(volume float64) error
	Play() error
	Pause() error
}

// Listener receives the events of an Element.
type Listener interface {
	OnPlay() error
	OnPause() error
	OnTimeUpdate() error
	OnEnded() error
}
