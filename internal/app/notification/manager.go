package notification

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// DefaultSendTimeout bounds how long one subscriber may block a broadcast.
const DefaultSendTimeout = 500 * time.Millisecond

// Stream receives notifications for one subscriber.
type Stream interface {
	Send(*Notification) error
}

// Manager fans notifications out to subscribed streams.
type Manager struct {
	sendMu      sync.Mutex // serializes Broadcast so streams see increasing sequence numbers
	mu          sync.RWMutex
	streams     map[string]Stream
	seq         atomic.Uint64
	sendTimeout time.Duration
	now         func() time.Time
}

// NewManager creates a notification manager.
// A non-positive timeout selects DefaultSendTimeout.
func NewManager(sendTimeout time.Duration) *Manager {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &Manager{
		streams:     make(map[string]Stream),
		sendTimeout: sendTimeout,
		now:         time.Now,
	}
}

// Subscribe registers stream and returns its subscription ID.
func (m *Manager) Subscribe(stream Stream) string {
	id := uuid.New().String()

	m.mu.Lock()
	m.streams[id] = stream
	m.mu.Unlock()
	return id
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.streams, subscriptionID)
}

// Broadcast stamps the notification with the next sequence number and sends
// it to all subscribers in parallel. Subscribers whose Send fails are dropped;
// slow ones are skipped after the send timeout. Concurrent calls are
// serialized, so each stream receives notifications in sequence order unless
// a send timed out and completes late.
func (m *Manager) Broadcast(n *Notification) {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	n.SequenceNo = m.seq.Add(1)
	if n.Timestamp.IsZero() {
		n.Timestamp = m.now()
	}

	// Snapshot so no lock is held while streams block
	m.mu.RLock()
	targets := make(map[string]Stream, len(m.streams))
	for id, s := range m.streams {
		targets[id] = s
	}
	m.mu.RUnlock()

	var (
		wg     sync.WaitGroup
		dropMu sync.Mutex
		drop   []string
	)
	for id, s := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !m.deliver(id, s, n) {
				dropMu.Lock()
				drop = append(drop, id)
				dropMu.Unlock()
			}
		}()
	}
	wg.Wait()

	for _, id := range drop {
		m.Unsubscribe(id)
	}
}

// deliver sends n to one stream. It reports false only when Send returned an
// error; a timeout leaves the subscription in place.
func (m *Manager) deliver(id string, s Stream, n *Notification) bool {
	done := make(chan error, 1)
	go func() { done <- s.Send(n) }()

	timer := time.NewTimer(m.sendTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			zlog.Debug().Msgf("notification %d to %s failed, dropping: %v", n.SequenceNo, id, err)
			return false
		}
	case <-timer.C:
		zlog.Debug().Msgf("notification %d to %s timed out", n.SequenceNo, id)
	}
	return true
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.streams)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.streams)
}
