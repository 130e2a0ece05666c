// Package audio provides the terminal playback element: clips are decoded
// with beep, normalized to 16-bit stereo PCM and played through oto/v3.
// Media events are reported to a playback.Listener the way a browser
// reports them from an audio element.
package audio
