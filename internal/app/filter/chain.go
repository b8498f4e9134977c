package filter

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/domain/failure"
	"github.com/osa030/venuebox/internal/domain/song"
	"github.com/osa030/venuebox/internal/domain/user"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// Build creates a chain from named filter settings in the given order.
// Unknown names and invalid settings are errors.
func Build(order []string, settings map[string]map[string]any, queue QueueManager) (*Chain, error) {
	c := NewChain()
	for _, name := range order {
		factory, ok := Lookup(name)
		if !ok {
			return nil, errors.Mark(errors.Newf("unknown filter %q", name), failure.ErrInvalidArgument)
		}
		f := factory(queue)
		if err := f.ValidateConfig(settings[name]); err != nil {
			return nil, errors.Wrapf(err, "invalid settings for filter %q", name)
		}
		c.Add(f)
		zlog.Debug().Msgf("filter enabled: %s", name)
	}
	return c, nil
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence.
// Returns immediately if any filter rejects the request.
// Filters are only applied if they declare they apply to the requester.
func (c *Chain) Execute(ctx context.Context, req Request, s song.Song, u user.User) Result {
	requester := RequesterOf(u)
	for _, f := range c.filters {
		if !f.AppliesTo(requester) {
			continue
		}

		result := f.Check(ctx, req, s, u)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
