package filter

import (
	"context"

	"github.com/osa030/venuebox/internal/domain/song"
	"github.com/osa030/venuebox/internal/domain/user"
)

// DuplicateSongFilter rejects songs that are already playing or waiting.
type DuplicateSongFilter struct {
	queue QueueManager
}

// NewDuplicateSongFilter creates a new duplicate song filter.
func NewDuplicateSongFilter(queue QueueManager) *DuplicateSongFilter {
	return &DuplicateSongFilter{queue: queue}
}

func (f *DuplicateSongFilter) Name() string {
	return "duplicate_song_filter"
}

func (f *DuplicateSongFilter) Description() string {
	return "Rejects songs that are already playing or waiting in the queue"
}

func (f *DuplicateSongFilter) ReturnCodes() []string {
	return []string{"duplicate_song"}
}

func (f *DuplicateSongFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

// AppliesTo applies to everyone; admins cannot stack the same song either.
func (f *DuplicateSongFilter) AppliesTo(requester Requester) bool {
	return true
}

func (f *DuplicateSongFilter) Check(ctx context.Context, req Request, s song.Song, u user.User) Result {
	if f.queue != nil && f.queue.IsQueued(s.ID) {
		return Reject("duplicate_song")
	}
	return Accept()
}

func init() {
	Register("duplicate_song_filter", func(q QueueManager) Filter {
		return NewDuplicateSongFilter(q)
	})
}
