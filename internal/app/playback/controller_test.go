package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/venuebox/internal/domain/failure"
	"github.com/osa030/venuebox/internal/domain/song"
)

// mockCatalog is a map-backed Catalog whose entries can be deleted mid-test.
type mockCatalog struct {
	mu    sync.Mutex
	songs map[string]song.Song
}

func newMockCatalog(songs ...song.Song) *mockCatalog {
	c := &mockCatalog{songs: make(map[string]song.Song)}
	for _, s := range songs {
		c.songs[s.ID] = s
	}
	return c
}

func (c *mockCatalog) GetSong(id string) (*song.Song, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.songs[id]
	if !ok {
		return nil, false
	}
	return &s, true
}

func (c *mockCatalog) delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.songs, id)
}

func testSong(id string, durationSec int) song.Song {
	return song.Song{ID: id, Title: "Song " + id, Artist: "Artist", DurationSec: durationSec, Price: 199}
}

func seconds(n float64) time.Duration {
	return time.Duration(n * float64(time.Second))
}

func newTestController(songs ...song.Song) (*Controller, *mockCatalog) {
	catalog := newMockCatalog(songs...)
	return NewController(catalog, Config{}), catalog
}

func TestController_InitialState(t *testing.T) {
	c, _ := newTestController()

	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Song)
	assert.Nil(t, snap.Current)
	assert.False(t, snap.Playing())
	assert.Equal(t, time.Duration(0), snap.Elapsed)
	assert.Empty(t, snap.Queue)
}

func TestController_Enqueue(t *testing.T) {
	c, _ := newTestController(testSong("A", 200))

	item, err := c.Enqueue("A", "user1")
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "A", item.SongID)
	assert.Equal(t, "user1", item.UserID)
	assert.Equal(t, song.StatusPending, item.Status)
	assert.False(t, item.CreatedAt.IsZero())

	assert.Equal(t, 1, c.QueueSize())
	assert.Equal(t, StateIdle, c.GetState(), "enqueue does not start playback")
}

func TestController_Enqueue_Errors(t *testing.T) {
	tests := []struct {
		name    string
		songID  string
		userID  string
		wantErr error
		kind    error
	}{
		{name: "song not in catalog", songID: "X", userID: "user1", wantErr: ErrSongNotFound, kind: failure.ErrNotFound},
		{name: "missing user", songID: "A", userID: "", wantErr: ErrUnauthenticated, kind: failure.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController(testSong("A", 200))

			_, err := c.Enqueue(tt.songID, tt.userID)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.True(t, errors.Is(err, tt.kind))
			assert.Equal(t, 0, c.QueueSize(), "queue length unchanged")
		})
	}
}

func TestController_Enqueue_DoesNotAffectCurrent(t *testing.T) {
	c, _ := newTestController(testSong("A", 200), testSong("B", 100))
	_, err := c.Enqueue("A", "user1")
	require.NoError(t, err)
	c.Advance()
	c.Tick(seconds(50))

	_, err = c.Enqueue("B", "user2")
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, "A", snap.Song.ID)
	assert.Equal(t, seconds(50), snap.Elapsed)
	assert.Equal(t, StatePlaying, snap.State)
}

func TestController_AdvanceDrainsInFIFOOrder(t *testing.T) {
	ids := []string{"A", "B", "C", "D"}
	songs := make([]song.Song, len(ids))
	for i, id := range ids {
		songs[i] = testSong(id, 100)
	}
	c, _ := newTestController(songs...)

	for _, id := range ids {
		_, err := c.Enqueue(id, "user1")
		require.NoError(t, err)
	}

	var played []string
	for range ids {
		s := c.Advance()
		require.NotNil(t, s)
		played = append(played, s.ID)
	}
	assert.Equal(t, ids, played)

	assert.Nil(t, c.Advance())
	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Song)
	assert.Equal(t, 0, c.QueueSize())
}

func TestController_AdvanceSetsPlayingState(t *testing.T) {
	c, _ := newTestController(testSong("A", 200))
	_, err := c.Enqueue("A", "user1")
	require.NoError(t, err)

	s := c.Advance()
	require.NotNil(t, s)

	snap := c.Snapshot()
	assert.Equal(t, "A", snap.Song.ID)
	require.NotNil(t, snap.Current)
	assert.Equal(t, song.StatusPlaying, snap.Current.Status)
	assert.Equal(t, time.Duration(0), snap.Elapsed)
	assert.True(t, snap.Playing())
}

func TestController_AdvanceMovesCurrentToHistory(t *testing.T) {
	c, _ := newTestController(testSong("A", 200), testSong("B", 100))
	_, _ = c.Enqueue("A", "user1")
	_, _ = c.Enqueue("B", "user1")

	c.Advance()
	c.Advance()

	history := c.History()
	require.Len(t, history, 1)
	assert.Equal(t, "A", history[0].SongID)
	assert.Equal(t, song.StatusCompleted, history[0].Status)
}

func TestController_AdvanceSkipsOrphanedReferences(t *testing.T) {
	c, catalog := newTestController(testSong("A", 100), testSong("B", 100), testSong("C", 100))
	for _, id := range []string{"A", "B", "C"} {
		_, err := c.Enqueue(id, "user1")
		require.NoError(t, err)
	}

	catalog.delete("A")

	s := c.Advance()
	require.NotNil(t, s)
	assert.Equal(t, "B", s.ID, "orphaned head is skipped")

	queued := c.QueuedItems()
	require.Len(t, queued, 1)
	assert.Equal(t, "C", queued[0].SongID, "items after the orphan are untouched")
}

func TestController_AdvanceAllOrphansGoesIdle(t *testing.T) {
	c, catalog := newTestController(testSong("A", 100), testSong("B", 100))
	_, _ = c.Enqueue("A", "user1")
	_, _ = c.Enqueue("B", "user1")
	catalog.delete("A")
	catalog.delete("B")

	assert.Nil(t, c.Advance())
	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.False(t, snap.Playing())
	assert.Empty(t, snap.Queue)
}

func TestController_PauseResume(t *testing.T) {
	c, _ := newTestController(testSong("A", 200))
	_, _ = c.Enqueue("A", "user1")
	c.Advance()
	c.Tick(seconds(42.5))

	require.NoError(t, c.Pause())
	snap := c.Snapshot()
	assert.Equal(t, StatePaused, snap.State)
	assert.False(t, snap.Playing())

	// pausing twice is a no-op
	require.NoError(t, c.Pause())
	assert.Equal(t, StatePaused, c.GetState())

	// ticks while paused do not accumulate
	c.Tick(seconds(500))
	assert.Equal(t, seconds(42.5), c.Elapsed())

	require.NoError(t, c.Resume())
	snap = c.Snapshot()
	assert.True(t, snap.Playing())
	assert.Equal(t, seconds(42.5), snap.Elapsed)
	assert.Equal(t, "A", snap.Song.ID)

	// resuming while playing is a no-op
	require.NoError(t, c.Resume())
	assert.Equal(t, StatePlaying, c.GetState())
}

func TestController_PauseResumeWithoutSong(t *testing.T) {
	c, _ := newTestController()

	err := c.Resume()
	assert.True(t, errors.Is(err, ErrNoSong))
	assert.True(t, errors.Is(err, failure.ErrInvalidState))
	assert.Equal(t, StateIdle, c.GetState())

	err = c.Pause()
	assert.True(t, errors.Is(err, ErrNoSong))
	assert.Equal(t, StateIdle, c.GetState())
}

func TestController_TickAutoAdvances(t *testing.T) {
	c, _ := newTestController(testSong("A", 200), testSong("B", 100))
	_, _ = c.Enqueue("A", "user1")
	_, _ = c.Enqueue("B", "user1")

	c.Tick(seconds(10))
	assert.Equal(t, time.Duration(0), c.Elapsed(), "tick while idle is a no-op")

	c.Advance()
	c.Tick(seconds(199.9))
	s, ok := c.GetCurrentSong()
	require.True(t, ok)
	assert.Equal(t, "A", s.ID)

	c.Tick(seconds(0.1))
	s, ok = c.GetCurrentSong()
	require.True(t, ok)
	assert.Equal(t, "B", s.ID)
	assert.Equal(t, time.Duration(0), c.Elapsed())
}

func TestController_TickIgnoresNonPositiveDelta(t *testing.T) {
	c, _ := newTestController(testSong("A", 200))
	_, _ = c.Enqueue("A", "user1")
	c.Advance()

	c.Tick(0)
	c.Tick(-seconds(5))
	assert.Equal(t, time.Duration(0), c.Elapsed())
}

func TestController_TickGranularityIndependent(t *testing.T) {
	run := func(steps ...time.Duration) Snapshot {
		c, _ := newTestController(testSong("A", 200), testSong("B", 100))
		_, _ = c.Enqueue("A", "user1")
		_, _ = c.Enqueue("B", "user1")
		c.Advance()
		for _, d := range steps {
			c.Tick(d)
		}
		return c.Snapshot()
	}

	once := run(seconds(200))
	halves := run(seconds(100), seconds(100))

	assert.Equal(t, once.State, halves.State)
	require.NotNil(t, once.Song)
	require.NotNil(t, halves.Song)
	assert.Equal(t, "B", once.Song.ID)
	assert.Equal(t, once.Song.ID, halves.Song.ID)
	assert.Equal(t, once.Elapsed, halves.Elapsed)

	var fine []time.Duration
	for i := 0; i < 2000; i++ {
		fine = append(fine, 100*time.Millisecond)
	}
	tenths := run(fine...)
	require.NotNil(t, tenths.Song)
	assert.Equal(t, "B", tenths.Song.ID)
}

func TestController_TickOneAdvancePerCall(t *testing.T) {
	c, _ := newTestController(testSong("A", 10), testSong("B", 10))
	_, _ = c.Enqueue("A", "user1")
	_, _ = c.Enqueue("B", "user1")
	c.Advance()

	c.Tick(seconds(1000))
	s, ok := c.GetCurrentSong()
	require.True(t, ok)
	assert.Equal(t, "B", s.ID, "excess time is discarded")
	assert.Equal(t, time.Duration(0), c.Elapsed())
}

func TestController_ExampleScenario(t *testing.T) {
	c, _ := newTestController(testSong("A", 200), testSong("B", 100))
	_, err := c.Enqueue("A", "user1")
	require.NoError(t, err)
	_, err = c.Enqueue("B", "user1")
	require.NoError(t, err)

	s := c.Advance()
	require.NotNil(t, s)
	snap := c.Snapshot()
	assert.Equal(t, "A", snap.Song.ID)
	assert.Equal(t, time.Duration(0), snap.Elapsed)
	assert.True(t, snap.Playing())

	c.Tick(seconds(200))
	snap = c.Snapshot()
	require.NotNil(t, snap.Song)
	assert.Equal(t, "B", snap.Song.ID)
	assert.Equal(t, time.Duration(0), snap.Elapsed)

	c.Tick(seconds(100))
	snap = c.Snapshot()
	assert.Nil(t, snap.Song)
	assert.False(t, snap.Playing())
	assert.Equal(t, StateIdle, snap.State)
}

func TestController_Events(t *testing.T) {
	c, _ := newTestController(testSong("A", 10), testSong("B", 10))
	_, _ = c.Enqueue("A", "user1")
	_, _ = c.Enqueue("B", "user1")

	c.Advance()          // started A
	_ = c.Pause()        // state changed
	_ = c.Resume()       // state changed
	c.Advance()          // skipped A, started B
	c.Tick(seconds(10))  // ended B, queue empty
	c.Close()

	var types []EventType
	for e := range c.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{
		EventSongStarted,
		EventStateChanged,
		EventStateChanged,
		EventSongSkipped,
		EventSongStarted,
		EventSongEnded,
		EventQueueEmpty,
	}, types)
}

func TestController_EventStates(t *testing.T) {
	c, _ := newTestController(testSong("A", 10))
	_, _ = c.Enqueue("A", "user1")

	c.Advance()
	require.NoError(t, c.Pause())
	c.Advance() // skip the paused song into an empty queue
	assert.Equal(t, StateIdle, c.GetState())
	c.Close()

	states := make(map[EventType]State)
	for e := range c.Events() {
		states[e.Type] = e.State
	}
	assert.Equal(t, StatePlaying, states[EventSongStarted])
	assert.Equal(t, StatePaused, states[EventSongSkipped], "outgoing state")
	assert.Equal(t, StateIdle, states[EventQueueEmpty], "state after the advance")
}

func TestController_UseAfterCloseDropsEvents(t *testing.T) {
	c, _ := newTestController(testSong("A", 10))
	c.Close()
	c.Close()

	assert.NotPanics(t, func() {
		_, _ = c.Enqueue("A", "user1")
		c.Advance()
		c.Tick(seconds(10))
	})
	_, open := <-c.Events()
	assert.False(t, open)
}

func TestController_QueueQueries(t *testing.T) {
	c, catalog := newTestController(testSong("A", 60), testSong("B", 120), testSong("C", 30))
	_, _ = c.Enqueue("A", "user1")
	_, _ = c.Enqueue("B", "user2")
	_, _ = c.Enqueue("C", "user1")
	c.Advance()

	assert.True(t, c.IsQueued("A"), "current song counts as queued")
	assert.True(t, c.IsQueued("C"))
	assert.False(t, c.IsQueued("Z"))

	assert.Equal(t, 1, c.PendingCount("user1"))
	assert.Equal(t, 1, c.PendingCount("user2"))
	assert.Equal(t, 150*time.Second, c.TotalQueuedDuration())
	assert.Len(t, c.AllItems(), 3)

	catalog.delete("B")
	assert.Equal(t, 30*time.Second, c.TotalQueuedDuration())

	removed := c.ClearQueue()
	assert.Len(t, removed, 2)
	assert.Equal(t, 0, c.QueueSize())
	assert.True(t, c.IsQueued("A"), "clearing the queue keeps the current song")
}

func TestController_SnapshotIsCopy(t *testing.T) {
	c, _ := newTestController(testSong("A", 60), testSong("B", 60))
	_, _ = c.Enqueue("A", "user1")
	_, _ = c.Enqueue("B", "user1")
	c.Advance()

	snap := c.Snapshot()
	snap.Song.Title = "mutated"
	snap.Queue[0].SongID = "mutated"

	again := c.Snapshot()
	assert.Equal(t, "Song A", again.Song.Title)
	assert.Equal(t, "B", again.Queue[0].SongID)
	assert.Equal(t, 60*time.Second, again.Remaining())
}

func TestController_ConcurrentAccess(t *testing.T) {
	c, _ := newTestController(testSong("A", 1), testSong("B", 1))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = c.Enqueue("A", "user1")
				c.Tick(500 * time.Millisecond)
				if c.GetState() == StateIdle {
					c.Advance()
				}
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.Song == nil {
		assert.Equal(t, StateIdle, snap.State)
	} else {
		assert.Equal(t, StatePlaying, snap.State)
	}
}
