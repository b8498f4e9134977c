package filter

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/domain/song"
	"github.com/osa030/venuebox/internal/domain/user"
)

// UserPendingConfig represents the configuration for UserPendingFilter.
type UserPendingConfig struct {
	MaxPending int `mapstructure:"max_pending" default:"1" validate:"gte=1"`
}

// UserPendingFilter limits how many requests a patron may have waiting.
type UserPendingFilter struct {
	queue  QueueManager
	config UserPendingConfig
}

// NewUserPendingFilter creates a filter allowing one pending request per patron.
func NewUserPendingFilter(queue QueueManager) *UserPendingFilter {
	return &UserPendingFilter{
		queue:  queue,
		config: UserPendingConfig{MaxPending: 1},
	}
}

func (f *UserPendingFilter) Name() string {
	return "user_pending_filter"
}

func (f *UserPendingFilter) Description() string {
	return "Limits the number of waiting requests per patron"
}

func (f *UserPendingFilter) ReturnCodes() []string {
	return []string{"user_pending"}
}

func (f *UserPendingFilter) ValidateConfig(settings map[string]any) error {
	var config UserPendingConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	f.config = config
	zlog.Info().Msgf("user pending filter config: %+v", config)
	return nil
}

// AppliesTo exempts admins.
func (f *UserPendingFilter) AppliesTo(requester Requester) bool {
	return requester == RequesterPatron
}

func (f *UserPendingFilter) Check(ctx context.Context, req Request, s song.Song, u user.User) Result {
	if f.queue == nil {
		return Accept()
	}
	if f.queue.PendingCount(u.ID) >= f.config.MaxPending {
		return Reject("user_pending")
	}
	return Accept()
}

func init() {
	Register("user_pending_filter", func(q QueueManager) Filter {
		return NewUserPendingFilter(q)
	})
}
