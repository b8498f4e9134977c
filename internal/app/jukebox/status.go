package jukebox

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/osa030/venuebox/internal/app/playback"
	"github.com/osa030/venuebox/internal/domain/money"
	"github.com/osa030/venuebox/internal/domain/song"
	"github.com/osa030/venuebox/internal/domain/user"
	"github.com/osa030/venuebox/internal/domain/venue"
)

// QueueEntry is a pending request with its song. Song is nil when the
// song was deleted after the request was made.
type QueueEntry struct {
	Item song.QueueItem
	Song *song.Song
}

// Status represents the current jukebox status.
type Status struct {
	Venue          venue.Venue
	State          playback.State
	Current        *song.QueueItem
	Song           *song.Song
	Elapsed        time.Duration
	Remaining      time.Duration
	Queue          []QueueEntry
	QueuedDuration time.Duration
}

// Status returns the current jukebox status.
func (m *Manager) Status() Status {
	snap := m.playback.Snapshot()

	m.mu.RLock()
	v := m.venue
	m.mu.RUnlock()

	return Status{
		Venue:          v,
		State:          snap.State,
		Current:        snap.Current,
		Song:           snap.Song,
		Elapsed:        snap.Elapsed,
		Remaining:      snap.Remaining(),
		Queue:          m.entries(snap.Queue),
		QueuedDuration: m.playback.TotalQueuedDuration(),
	}
}

// Venue returns the venue branding.
func (m *Manager) Venue() venue.Venue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.venue
}

// Songs searches the catalog. Empty query and genre list every song.
func (m *Manager) Songs(query, genre string) []song.Song {
	return m.catalog.Search(query, genre)
}

// Genres returns the catalog genres.
func (m *Manager) Genres() []string {
	return m.catalog.Genres()
}

// MyRequests returns the caller's pending requests.
func (m *Manager) MyRequests(token string) ([]QueueEntry, error) {
	u, err := m.accounts.Authenticate(token)
	if err != nil {
		return nil, err
	}
	mine := lo.Filter(m.playback.QueuedItems(), func(item song.QueueItem, _ int) bool {
		return item.UserID == u.ID
	})
	return m.entries(mine), nil
}

// Dashboard is the admin overview.
type Dashboard struct {
	Users       []user.User
	SongCount   int
	QueueSize   int
	PlayedCount int
	Revenue     money.Money
	Subscribers int
}

// Dashboard returns the admin overview.
func (m *Manager) Dashboard(ctx context.Context, token string) (Dashboard, error) {
	if _, err := m.requireAdmin(token); err != nil {
		return Dashboard{}, err
	}
	revenue, err := m.payments.Revenue(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Users:       m.accounts.All(),
		SongCount:   m.catalog.Count(),
		QueueSize:   m.playback.QueueSize(),
		PlayedCount: len(m.playback.History()),
		Revenue:     revenue,
		Subscribers: m.notification.SubscriberCount(),
	}, nil
}

func (m *Manager) entries(items []song.QueueItem) []QueueEntry {
	return lo.Map(items, func(item song.QueueItem, _ int) QueueEntry {
		s, _ := m.catalog.GetSong(item.SongID)
		return QueueEntry{Item: item, Song: s}
	})
}
