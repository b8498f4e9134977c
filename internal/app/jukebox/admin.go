package jukebox

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/app/catalog"
	"github.com/osa030/venuebox/internal/app/notification"
	"github.com/osa030/venuebox/internal/app/payment"
	"github.com/osa030/venuebox/internal/domain/failure"
	"github.com/osa030/venuebox/internal/domain/money"
	"github.com/osa030/venuebox/internal/domain/song"
	"github.com/osa030/venuebox/internal/domain/user"
	"github.com/osa030/venuebox/internal/domain/venue"
)

// AddSong adds a song to the catalog.
func (m *Manager) AddSong(token string, s song.Song) (song.Song, error) {
	admin, err := m.requireAdmin(token)
	if err != nil {
		return song.Song{}, err
	}
	added, err := m.catalog.Add(s)
	if err != nil {
		return song.Song{}, err
	}
	zlog.Info().Msgf("song added: admin=%s song_id=%s title=%s", admin.Name, added.ID, added.Title)
	return added, nil
}

// UpdateSong edits a catalog song.
func (m *Manager) UpdateSong(token, songID string, u catalog.Update) (song.Song, error) {
	admin, err := m.requireAdmin(token)
	if err != nil {
		return song.Song{}, err
	}
	updated, err := m.catalog.Update(songID, u)
	if err != nil {
		return song.Song{}, err
	}
	zlog.Info().Msgf("song updated: admin=%s song_id=%s", admin.Name, songID)
	return updated, nil
}

// DeleteSong removes a song from the catalog. Pending requests for it are
// skipped when they reach the head of the queue.
func (m *Manager) DeleteSong(token, songID string) error {
	admin, err := m.requireAdmin(token)
	if err != nil {
		return err
	}
	if err := m.catalog.Delete(songID); err != nil {
		return err
	}
	zlog.Info().Msgf("song deleted: admin=%s song_id=%s still_queued=%t", admin.Name, songID, m.playback.IsQueued(songID))
	return nil
}

// AdjustCredits adds amount (negative to deduct) to a user's credits and
// records the change actually applied. Balances are clamped at zero; a
// deduction from an empty balance fails with ErrNothingToDeduct.
func (m *Manager) AdjustCredits(ctx context.Context, token, userID string, amount money.Money) (user.User, error) {
	admin, err := m.requireAdmin(token)
	if err != nil {
		return user.User{}, err
	}
	if amount == 0 {
		return user.User{}, errors.Wrap(payment.ErrInvalidAmount, "adjustment must not be zero")
	}
	updated, applied, err := m.accounts.AdjustCredits(userID, amount)
	if err != nil {
		return user.User{}, err
	}
	if applied == 0 {
		return updated, errors.Wrapf(ErrNothingToDeduct, "user %s", userID)
	}
	if _, err := m.payments.Record(ctx, userID, applied, payment.KindAdminAdjustment); err != nil {
		return updated, err
	}
	zlog.Info().Msgf("credits adjusted: admin=%s user_id=%s requested=%s applied=%s balance=%s", admin.Name, userID, amount, applied, updated.Credits)
	return updated, nil
}

// UpdateVenue changes the venue branding.
func (m *Manager) UpdateVenue(token string, u venue.Update) (venue.Venue, error) {
	admin, err := m.requireAdmin(token)
	if err != nil {
		return venue.Venue{}, err
	}

	m.mu.Lock()
	updated := m.venue.Apply(u)
	if err := validator.New().Struct(updated); err != nil {
		m.mu.Unlock()
		return venue.Venue{}, errors.Mark(errors.Wrap(err, "invalid venue"), failure.ErrInvalidArgument)
	}
	m.venue = updated
	m.mu.Unlock()

	zlog.Info().Msgf("venue updated: admin=%s name=%s", admin.Name, updated.Name)
	m.notification.Broadcast(&notification.Notification{
		Type:    notification.TypeVenueUpdated,
		State:   m.playback.GetState(),
		Message: updated.Name,
	})
	return updated, nil
}

// Pause pauses the current song.
func (m *Manager) Pause(token string) error {
	if _, err := m.requireAdmin(token); err != nil {
		return err
	}
	return m.playback.Pause()
}

// Resume resumes the current song.
func (m *Manager) Resume(token string) error {
	if _, err := m.requireAdmin(token); err != nil {
		return err
	}
	return m.playback.Resume()
}

// Skip advances to the next request and returns its song, nil if the queue ran out.
func (m *Manager) Skip(token string) (*song.Song, error) {
	admin, err := m.requireAdmin(token)
	if err != nil {
		return nil, err
	}
	next := m.playback.Advance()
	if next != nil {
		zlog.Info().Msgf("skipped: admin=%s next=%s", admin.Name, next.Title)
	} else {
		zlog.Info().Msgf("skipped: admin=%s queue empty", admin.Name)
	}
	return next, nil
}

// ClearQueue drops every pending request and returns them. Payments are kept.
func (m *Manager) ClearQueue(token string) ([]song.QueueItem, error) {
	admin, err := m.requireAdmin(token)
	if err != nil {
		return nil, err
	}
	removed := m.playback.ClearQueue()
	zlog.Info().Msgf("queue cleared: admin=%s removed=%d", admin.Name, len(removed))
	m.broadcastQueue("queue cleared")
	return removed, nil
}
