package playback

import (
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/domain/failure"
	"github.com/osa030/venuebox/internal/domain/song"
)

// Errors
var (
	ErrSongNotFound    = failure.Mark("song not found in catalog", failure.ErrNotFound)
	ErrUnauthenticated = failure.Mark("requesting user is required", failure.ErrUnauthenticated)
	ErrNoSong          = failure.Mark("no current song", failure.ErrInvalidState)
)

const defaultEventBuffer = 64

// Catalog is the read-only song lookup used by the controller.
// Songs may disappear from it at any time.
type Catalog interface {
	GetSong(id string) (*song.Song, bool)
}

// Config holds controller configuration.
type Config struct {
	EventBuffer int // Capacity of the events channel (default 64)
}

// Controller owns the request queue and the playback slot.
// All methods are safe for concurrent use; every mutation is serialized.
type Controller struct {
	mu sync.RWMutex

	catalog Catalog

	// Queue management
	queue   []song.QueueItem // Pending requests, head plays next
	history []song.QueueItem // Completed requests

	// Playback slot
	current     *song.QueueItem
	currentSong *song.Song
	state       State
	elapsed     time.Duration

	// Events
	eventCh chan Event
	closed  bool

	now   func() time.Time
	newID func() string
}

// NewController creates an idle controller reading songs from catalog.
func NewController(catalog Catalog, config Config) *Controller {
	buffer := config.EventBuffer
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	return &Controller{
		catalog: catalog,
		queue:   make([]song.QueueItem, 0),
		history: make([]song.QueueItem, 0),
		state:   StateIdle,
		eventCh: make(chan Event, buffer),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Enqueue appends a pending request for songID on behalf of userID.
// The current song is not affected.
func (c *Controller) Enqueue(songID, userID string) (song.QueueItem, error) {
	if userID == "" {
		return song.QueueItem{}, ErrUnauthenticated
	}
	if _, ok := c.catalog.GetSong(songID); !ok {
		return song.QueueItem{}, ErrSongNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	item := song.QueueItem{
		ID:        c.newID(),
		SongID:    songID,
		UserID:    userID,
		CreatedAt: c.now(),
		Status:    song.StatusPending,
	}
	c.queue = append(c.queue, item)
	zlog.Debug().Msgf("playback: enqueued: item=%s song=%s user=%s queue_size=%d", item.ID, songID, userID, len(c.queue))
	return item, nil
}

// Advance finishes the current song (if any) and starts the next playable
// queue head. Returns the new current song, or nil if playback went idle.
func (c *Controller) Advance() *song.Song {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.advanceLocked(EventSongSkipped)
}

// Pause stops the elapsed counter without changing the current song.
// Pausing while already paused is a no-op. Returns ErrNoSong when idle.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return ErrNoSong
	}
	if c.state != StatePlaying {
		return nil
	}

	c.state = StatePaused
	c.sendEventLocked(Event{
		Type:  EventStateChanged,
		Item:  c.currentItemLocked(),
		Song:  c.currentSongLocked(),
		State: c.state,
	})
	return nil
}

// Resume restarts a paused song. Resuming while playing is a no-op.
// Returns ErrNoSong, leaving state untouched, when there is no current song.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return ErrNoSong
	}
	if c.state != StatePaused {
		return nil
	}

	c.state = StatePlaying
	c.sendEventLocked(Event{
		Type:  EventStateChanged,
		Item:  c.currentItemLocked(),
		Song:  c.currentSongLocked(),
		State: c.state,
	})
	return nil
}

// Tick adds delta to the elapsed counter while playing. When the counter
// reaches the current song's duration the controller advances once and the
// counter restarts at zero; any excess is discarded.
func (c *Controller) Tick(delta time.Duration) {
	if delta <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying || c.currentSong == nil {
		return
	}

	c.elapsed += delta
	if c.elapsed >= c.currentSong.Duration() {
		c.advanceLocked(EventSongEnded)
	}
}

// ClearQueue removes all pending requests and returns them.
func (c *Controller) ClearQueue() []song.QueueItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.queue
	c.queue = make([]song.QueueItem, 0)
	return removed
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	State   State
	Current *song.QueueItem // nil when idle
	Song    *song.Song      // nil when idle
	Elapsed time.Duration
	Queue   []song.QueueItem
}

// Playing reports whether the playing flag is set.
func (s Snapshot) Playing() bool {
	return s.State == StatePlaying
}

// Remaining returns the time left in the current song.
func (s Snapshot) Remaining() time.Duration {
	if s.Song == nil {
		return 0
	}
	remaining := s.Song.Duration() - s.Elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	queue := make([]song.QueueItem, len(c.queue))
	copy(queue, c.queue)
	return Snapshot{
		State:   c.state,
		Current: c.currentItemLocked(),
		Song:    c.currentSongLocked(),
		Elapsed: c.elapsed,
		Queue:   queue,
	}
}

// GetState returns the playback state.
func (c *Controller) GetState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// GetCurrentSong returns the current song.
func (c *Controller) GetCurrentSong() (*song.Song, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.currentSong == nil {
		return nil, false
	}
	return c.currentSongLocked(), true
}

// Elapsed returns the elapsed time of the current song.
func (c *Controller) Elapsed() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.elapsed
}

// QueueSize returns the number of pending requests.
func (c *Controller) QueueSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.queue)
}

// QueuedItems returns a copy of the pending requests in play order.
func (c *Controller) QueuedItems() []song.QueueItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]song.QueueItem, len(c.queue))
	copy(result, c.queue)
	return result
}

// History returns a copy of the completed requests, oldest first.
func (c *Controller) History() []song.QueueItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]song.QueueItem, len(c.history))
	copy(result, c.history)
	return result
}

// AllItems returns the current request followed by the pending ones.
func (c *Controller) AllItems() []song.QueueItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]song.QueueItem, 0, len(c.queue)+1)
	if c.current != nil {
		result = append(result, *c.current)
	}
	return append(result, c.queue...)
}

// PendingCount returns how many pending requests belong to userID.
func (c *Controller) PendingCount(userID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, item := range c.queue {
		if item.UserID == userID {
			count++
		}
	}
	return count
}

// IsQueued reports whether songID is current or pending.
func (c *Controller) IsQueued(songID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current != nil && c.current.SongID == songID {
		return true
	}
	for _, item := range c.queue {
		if item.SongID == songID {
			return true
		}
	}
	return false
}

// TotalQueuedDuration returns the summed duration of pending songs.
// Orphaned requests count as zero.
func (c *Controller) TotalQueuedDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total time.Duration
	for _, item := range c.queue {
		if s, ok := c.catalog.GetSong(item.SongID); ok {
			total += s.Duration()
		}
	}
	return total
}

// Close closes the event channel. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.eventCh)
}

// advanceLocked moves the current request to history and pulls queue heads
// until one resolves in the catalog. finished is the event type reported for
// the outgoing song.
// Must be called with lock held.
func (c *Controller) advanceLocked(finished EventType) *song.Song {
	hadCurrent := c.current != nil
	if hadCurrent {
		done := *c.current
		done.Status = song.StatusCompleted
		c.history = append(c.history, done)
		c.sendEventLocked(Event{
			Type:  finished,
			Item:  &done,
			Song:  c.currentSongLocked(),
			State: c.state,
		})
	}

	c.current = nil
	c.currentSong = nil
	c.elapsed = 0

	for len(c.queue) > 0 {
		item := c.queue[0]
		c.queue = c.queue[1:]

		s, ok := c.catalog.GetSong(item.SongID)
		if !ok {
			zlog.Debug().Msgf("playback: skipping orphaned request: item=%s song=%s", item.ID, item.SongID)
			continue
		}

		item.Status = song.StatusPlaying
		c.current = &item
		c.currentSong = s
		c.state = StatePlaying

		zlog.Debug().Msgf("playback: song started: item=%s title=%s duration=%v", item.ID, s.Title, s.Duration())
		c.sendEventLocked(Event{
			Type:  EventSongStarted,
			Item:  c.currentItemLocked(),
			Song:  c.currentSongLocked(),
			State: c.state,
		})
		return c.currentSongLocked()
	}

	c.state = StateIdle
	if hadCurrent {
		c.sendEventLocked(Event{
			Type:  EventQueueEmpty,
			State: c.state,
		})
	}
	return nil
}

func (c *Controller) currentItemLocked() *song.QueueItem {
	if c.current == nil {
		return nil
	}
	item := *c.current
	return &item
}

func (c *Controller) currentSongLocked() *song.Song {
	if c.currentSong == nil {
		return nil
	}
	s := *c.currentSong
	return &s
}

// sendEventLocked sends an event without blocking. Events are dropped once
// the controller is closed.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- e:
	default:
		zlog.Warn().Msgf("playback: event channel full, dropping event: type=%s", e.Type)
	}
}
