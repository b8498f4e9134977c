// Package filter provides the filter chain for song request validation.
package filter

import (
	"context"
	"sort"
	"time"

	"github.com/osa030/venuebox/internal/domain/song"
	"github.com/osa030/venuebox/internal/domain/user"
)

// Request represents a song request to be validated.
type Request struct {
	UserID string
	SongID string
}

// Requester distinguishes who is asking for a song.
type Requester int

const (
	RequesterPatron Requester = iota
	RequesterAdmin
)

// RequesterOf returns the requester kind of a user.
func RequesterOf(u user.User) Requester {
	if u.IsAdmin {
		return RequesterAdmin
	}
	return RequesterPatron
}

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "duplicate_song", "user_pending"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// QueueManager exposes the queue queries filters need.
type QueueManager interface {
	IsQueued(songID string) bool
	PendingCount(userID string) int
	TotalQueuedDuration() time.Duration
}

// Filter is the interface for request filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates and stores the filter configuration.
	ValidateConfig(settings map[string]any) error
	// AppliesTo returns true if this filter should run for the requester.
	AppliesTo(requester Requester) bool
	// Check performs the filter check.
	Check(ctx context.Context, req Request, s song.Song, u user.User) Result
}

// registry holds registered filter factories.
var registry = make(map[string]func(QueueManager) Filter)

// Register registers a filter factory.
func Register(name string, factory func(QueueManager) Filter) {
	registry[name] = factory
}

// Lookup returns the factory registered under name.
func Lookup(name string) (func(QueueManager) Filter, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names returns the registered filter names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
