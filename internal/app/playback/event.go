package playback

import "github.com/osa030/venuebox/internal/domain/song"

// EventType represents a playback event type.
type EventType int

const (
	EventSongStarted  EventType = iota // A song became current
	EventSongEnded                     // Current song reached its duration
	EventSongSkipped                   // Current song was replaced by an explicit Advance
	EventStateChanged                  // Paused or resumed
	EventQueueEmpty                    // Playback went idle because the queue ran out
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventSongStarted:
		return "song_started"
	case EventSongEnded:
		return "song_ended"
	case EventSongSkipped:
		return "song_skipped"
	case EventStateChanged:
		return "state_changed"
	case EventQueueEmpty:
		return "queue_empty"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
//
// song_ended and song_skipped are raised before the next song is pulled, so
// their State is the outgoing state. The following song_started or
// queue_empty carries the state after the advance.
type Event struct {
	Type  EventType
	Item  *song.QueueItem // Queue item the event refers to (nil for queue_empty)
	Song  *song.Song      // Song of Item
	State State           // Playback state when the event was raised
}
