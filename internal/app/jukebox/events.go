package jukebox

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/app/notification"
	"github.com/osa030/venuebox/internal/app/playback"
)

// playbackLoop forwards playback events to subscribers until ctx is done
// or the controller closes its event channel.
func (m *Manager) playbackLoop(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("playback loop panicked: %v", r)
			if ctx.Err() == nil {
				zlog.Info().Msg("restarting playback loop")
				go m.playbackLoop(ctx)
			}
		}
	}()

	events := m.playback.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			m.handlePlaybackEvent(event)
		}
	}
}

// handlePlaybackEvent logs and broadcasts one playback event.
func (m *Manager) handlePlaybackEvent(event playback.Event) {
	switch event.Type {
	case playback.EventSongStarted:
		if event.Song != nil {
			zlog.Info().Msgf("now playing: %s - %s (%s)", event.Song.Artist, event.Song.Title, event.Song.Duration())
		}
	case playback.EventSongEnded, playback.EventSongSkipped:
		if event.Item != nil {
			zlog.Debug().Msgf("playback event: type=%s item_id=%s", event.Type, event.Item.ID)
		}
	case playback.EventStateChanged:
		zlog.Info().Msgf("playback state: %s", event.State)
	case playback.EventQueueEmpty:
		zlog.Info().Msg("queue empty, waiting for requests")
	}

	n := notification.FromEvent(event)
	n.QueueSize = m.playback.QueueSize()
	m.notification.Broadcast(n)
}
