// Package queue orders the clips of a play session. It handles priority
// clips and prefetches upcoming clips so playback moves from one clip to
// the next without a decoding pause.
package queue
