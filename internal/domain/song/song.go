// Package song provides the Song catalog entity and the QueueItem request entity.
package song

import (
	"time"

	"github.com/osa030/venuebox/internal/domain/money"
)

// Song represents a catalog entry.
type Song struct {
	ID          string      `yaml:"id"`                                           // Stable identifier
	Title       string      `yaml:"title" validate:"required"`                    // Song title
	Artist      string      `yaml:"artist" validate:"required"`                   // Artist name
	Album       string      `yaml:"album,omitempty"`                              // Album name (optional)
	Genre       string      `yaml:"genre,omitempty"`                              // Genre (optional)
	ReleaseYear int         `yaml:"release_year,omitempty" validate:"gte=0"`      // Release year (0 if unknown)
	CoverArtURL string      `yaml:"cover_art" validate:"omitempty,url"`           // Cover art URI
	DurationSec int         `yaml:"duration" validate:"gt=0"`                     // Duration in seconds
	Price       money.Money `yaml:"price" validate:"gte=0"`                       // Price per request
}

// Duration returns the song duration.
func (s *Song) Duration() time.Duration {
	return time.Duration(s.DurationSec) * time.Second
}

// Status represents the lifecycle of a queued request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPlaying   Status = "playing"
	StatusCompleted Status = "completed"
)

// QueueItem represents a request to play a song.
type QueueItem struct {
	ID        string    // UUID
	SongID    string    // Catalog song ID (may be deleted after enqueue)
	UserID    string    // Requesting user ID
	CreatedAt time.Time // Time when added to queue
	Status    Status
}
