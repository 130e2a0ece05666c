package playback

// State is the playback state of a clip as seen by its Controller.
type State int

const (
	// StateIdle means the clip has not been played yet.
	StateIdle State = iota
	// StatePlaying means the element is producing audio.
	StatePlaying
	// StatePaused means the user paused the element.
	StatePaused
	// StateStopped means playback hit the stop marker and was reset.
	StateStopped
	// StateEnded means the media played to its natural end.
	StateEnded
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// IsActive reports whether the clip is playing or paused mid-way.
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// EventType identifies a boundary action taken by a Controller.
type EventType int

const (
	// EventJumped fires when a play event seeks to the start marker.
	EventJumped EventType = iota
	// EventLoopedBack fires when the stop marker sends playback back to the start.
	EventLoopedBack
	// EventStopped fires when the stop marker pauses and resets playback.
	EventStopped
)

func (t EventType) String() string {
	switch t {
	case EventJumped:
		return "jumped"
	case EventLoopedBack:
		return "looped"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event describes a boundary action. Time is the element position, in
// seconds, that triggered it.
type Event struct {
	Type EventType
	Time float64
}
