// Package playback provides the queue and playback state machine.
package playback

// State represents the playback slot state.
type State int

const (
	StateIdle    State = iota // No current song
	StatePlaying              // Current song is playing
	StatePaused               // Current song is paused
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
	default:
		return "unknown"
	}
}
