package filter

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/domain/song"
	"github.com/osa030/venuebox/internal/domain/user"
)

// QueueWaitConfig represents the configuration for QueueWaitFilter.
type QueueWaitConfig struct {
	MaxWaitMinutes float64 `mapstructure:"max_wait_minutes" default:"60" validate:"gt=0"`
}

// QueueWaitFilter stops accepting requests once the queued music would
// keep a new song waiting longer than the configured limit.
type QueueWaitFilter struct {
	queue  QueueManager
	config QueueWaitConfig
}

// NewQueueWaitFilter creates a new queue wait filter.
func NewQueueWaitFilter(queue QueueManager) *QueueWaitFilter {
	return &QueueWaitFilter{
		queue:  queue,
		config: QueueWaitConfig{MaxWaitMinutes: 60},
	}
}

func (f *QueueWaitFilter) Name() string {
	return "queue_wait_filter"
}

func (f *QueueWaitFilter) Description() string {
	return "Rejects requests when the queue is already longer than the wait limit"
}

func (f *QueueWaitFilter) ReturnCodes() []string {
	return []string{"queue_full"}
}

func (f *QueueWaitFilter) ValidateConfig(settings map[string]any) error {
	var config QueueWaitConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	f.config = config
	zlog.Info().Msgf("queue wait filter config: %+v", config)
	return nil
}

func (f *QueueWaitFilter) AppliesTo(requester Requester) bool {
	return requester == RequesterPatron
}

func (f *QueueWaitFilter) Check(ctx context.Context, req Request, s song.Song, u user.User) Result {
	if f.queue == nil {
		return Accept()
	}
	limit := time.Duration(f.config.MaxWaitMinutes * float64(time.Minute))
	if f.queue.TotalQueuedDuration() >= limit {
		return Reject("queue_full")
	}
	return Accept()
}

func init() {
	Register("queue_wait_filter", func(q QueueManager) Filter {
		return NewQueueWaitFilter(q)
	})
}
