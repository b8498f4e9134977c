package filter

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/venuebox/internal/domain/failure"
	"github.com/osa030/venuebox/internal/domain/song"
	"github.com/osa030/venuebox/internal/domain/user"
)

type fakeQueue struct {
	queued  map[string]bool
	pending map[string]int
	total   time.Duration
}

func (q *fakeQueue) IsQueued(songID string) bool { return q.queued[songID] }

func (q *fakeQueue) PendingCount(userID string) int { return q.pending[userID] }

func (q *fakeQueue) TotalQueuedDuration() time.Duration { return q.total }

var (
	patron = user.User{ID: "u1", Name: "John Doe"}
	admin  = user.User{ID: "a1", Name: "Admin", IsAdmin: true}
)

func TestDuplicateSongFilter_Check(t *testing.T) {
	q := &fakeQueue{queued: map[string]bool{"1": true}}
	f := NewDuplicateSongFilter(q)

	tests := []struct {
		name   string
		songID string
		user   user.User
		want   Result
	}{
		{name: "already queued", songID: "1", user: patron, want: Reject("duplicate_song")},
		{name: "admin also rejected", songID: "1", user: admin, want: Reject("duplicate_song")},
		{name: "not queued", songID: "2", user: patron, want: Accept()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Check(context.Background(), Request{UserID: tt.user.ID, SongID: tt.songID}, song.Song{ID: tt.songID}, tt.user)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserPendingFilter_Check(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		pending  int
		want     Result
	}{
		{name: "no pending", pending: 0, want: Accept()},
		{name: "default limit reached", pending: 1, want: Reject("user_pending")},
		{name: "raised limit", settings: map[string]any{"max_pending": 3}, pending: 2, want: Accept()},
		{name: "raised limit reached", settings: map[string]any{"max_pending": 3}, pending: 3, want: Reject("user_pending")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQueue{pending: map[string]int{patron.ID: tt.pending}}
			f := NewUserPendingFilter(q)
			require.NoError(t, f.ValidateConfig(tt.settings))

			got := f.Check(context.Background(), Request{UserID: patron.ID}, song.Song{ID: "9"}, patron)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserPendingFilter_ValidateConfig(t *testing.T) {
	f := NewUserPendingFilter(nil)
	assert.Error(t, f.ValidateConfig(map[string]any{"max_pending": -2}))
	assert.Error(t, f.ValidateConfig(map[string]any{"max_pending": "many"}))
	assert.NoError(t, f.ValidateConfig(map[string]any{"max_pending": "2"}))
	assert.Equal(t, 2, f.config.MaxPending)
}

func TestDurationLimitFilter_Check(t *testing.T) {
	tests := []struct {
		name        string
		minMinutes  float64
		maxMinutes  float64
		durationSec int
		want        Result
	}{
		{name: "within limits", minMinutes: 2, maxMinutes: 5, durationSec: 180, want: Accept()},
		{name: "too short", minMinutes: 3, durationSec: 120, want: Reject("duration_limit_exceeded")},
		{name: "too long", minMinutes: 1, maxMinutes: 5, durationSec: 360, want: Reject("duration_limit_exceeded")},
		{name: "exact min", minMinutes: 3, durationSec: 180, want: Accept()},
		{name: "exact max", minMinutes: 1, maxMinutes: 5, durationSec: 300, want: Accept()},
		{name: "no upper limit", minMinutes: 1, durationSec: 482, want: Accept()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDurationLimitFilter()
			f.config = &DurationLimitConfig{MinMinutes: tt.minMinutes, MaxMinutes: tt.maxMinutes}

			got := f.Check(context.Background(), Request{}, song.Song{ID: "1", DurationSec: tt.durationSec}, patron)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDurationLimitFilter_Unconfigured(t *testing.T) {
	f := NewDurationLimitFilter()
	got := f.Check(context.Background(), Request{}, song.Song{ID: "1", DurationSec: 5}, patron)
	assert.True(t, got.Accepted)
}

func TestDurationLimitFilter_ValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
		wantMin  float64
	}{
		{name: "defaults", settings: nil, wantMin: 1},
		{name: "explicit", settings: map[string]any{"min_minutes": 2.5, "max_minutes": 6}, wantMin: 2.5},
		{name: "min above max", settings: map[string]any{"min_minutes": 8, "max_minutes": 6}, wantErr: true},
		{name: "negative max", settings: map[string]any{"max_minutes": -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDurationLimitFilter()
			err := f.ValidateConfig(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, f.config.MinMinutes)
		})
	}
}

func TestQueueWaitFilter_Check(t *testing.T) {
	q := &fakeQueue{total: 30 * time.Minute}
	f := NewQueueWaitFilter(q)
	require.NoError(t, f.ValidateConfig(map[string]any{"max_wait_minutes": 45}))
	assert.True(t, f.Check(context.Background(), Request{}, song.Song{}, patron).Accepted)

	q.total = 45 * time.Minute
	assert.Equal(t, Reject("queue_full"), f.Check(context.Background(), Request{}, song.Song{}, patron))
}

func TestAppliesTo(t *testing.T) {
	tests := []struct {
		filter Filter
		patron bool
		admin  bool
	}{
		{filter: NewDuplicateSongFilter(nil), patron: true, admin: true},
		{filter: NewUserPendingFilter(nil), patron: true, admin: false},
		{filter: NewDurationLimitFilter(), patron: true, admin: false},
		{filter: NewQueueWaitFilter(nil), patron: true, admin: false},
	}

	for _, tt := range tests {
		t.Run(tt.filter.Name(), func(t *testing.T) {
			assert.Equal(t, tt.patron, tt.filter.AppliesTo(RequesterPatron))
			assert.Equal(t, tt.admin, tt.filter.AppliesTo(RequesterAdmin))
		})
	}
}

func TestChain_Execute(t *testing.T) {
	q := &fakeQueue{
		queued:  map[string]bool{"1": true},
		pending: map[string]int{patron.ID: 1, admin.ID: 4},
	}
	chain, err := Build(
		[]string{"duplicate_song_filter", "user_pending_filter"},
		map[string]map[string]any{"user_pending_filter": {"max_pending": 1}},
		q,
	)
	require.NoError(t, err)
	require.Len(t, chain.Filters(), 2)

	ctx := context.Background()

	// First rejecting filter wins.
	got := chain.Execute(ctx, Request{SongID: "1"}, song.Song{ID: "1"}, patron)
	assert.Equal(t, "duplicate_song", got.Code)

	got = chain.Execute(ctx, Request{SongID: "2"}, song.Song{ID: "2"}, patron)
	assert.Equal(t, "user_pending", got.Code)

	// Admins skip the pending limit.
	got = chain.Execute(ctx, Request{SongID: "2"}, song.Song{ID: "2"}, admin)
	assert.True(t, got.Accepted)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build([]string{"no_such_filter"}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrInvalidArgument))

	_, err = Build([]string{"user_pending_filter"}, map[string]map[string]any{
		"user_pending_filter": {"max_pending": -1},
	}, nil)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{
		"duplicate_song_filter",
		"duration_limit_filter",
		"queue_wait_filter",
		"user_pending_filter",
	}, names)

	for _, name := range names {
		factory, ok := Lookup(name)
		require.True(t, ok)
		f := factory(nil)
		assert.Equal(t, name, f.Name())
		assert.NotEmpty(t, f.ReturnCodes())
		assert.NotEmpty(t, f.Description())
	}
}
