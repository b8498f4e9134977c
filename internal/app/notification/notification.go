// Package notification broadcasts jukebox events to subscribers.
package notification

import (
	"time"

	"github.com/osa030/venuebox/internal/app/playback"
	"github.com/osa030/venuebox/internal/domain/song"
)

// Type identifies a notification.
type Type string

const (
	TypeSongStarted  Type = "song_started"
	TypeSongEnded    Type = "song_ended"
	TypeSongSkipped  Type = "song_skipped"
	TypeStateChanged Type = "state_changed"
	TypeQueueEmpty   Type = "queue_empty"
	TypeQueueUpdated Type = "queue_updated"
	TypeVenueUpdated Type = "venue_updated"
)

// Notification is one broadcast message.
type Notification struct {
	Type       Type
	SequenceNo uint64
	State      playback.State
	Item       *song.QueueItem
	Song       *song.Song
	QueueSize  int
	Message    string
	Timestamp  time.Time
}

// FromEvent converts a playback event.
func FromEvent(e playback.Event) *Notification {
	n := &Notification{
		State: e.State,
		Item:  e.Item,
		Song:  e.Song,
	}
	switch e.Type {
	case playback.EventSongStarted:
		n.Type = TypeSongStarted
	case playback.EventSongEnded:
		n.Type = TypeSongEnded
	case playback.EventSongSkipped:
		n.Type = TypeSongSkipped
	case playback.EventStateChanged:
		n.Type = TypeStateChanged
	case playback.EventQueueEmpty:
		n.Type = TypeQueueEmpty
	}
	return n
}
