package notification

import "github.com/cockroachdb/errors"

// ErrStreamFull is returned by ChannelStream when its buffer is full.
var ErrStreamFull = errors.New("notification stream full")

// ChannelStream delivers notifications to a buffered channel without blocking.
type ChannelStream struct {
	ch chan *Notification
}

// NewChannelStream creates a stream with the given buffer size.
func NewChannelStream(buffer int) *ChannelStream {
	return &ChannelStream{ch: make(chan *Notification, buffer)}
}

// Send queues n or fails when the buffer is full.
func (s *ChannelStream) Send(n *Notification) error {
	select {
	case s.ch <- n:
		return nil
	default:
		return ErrStreamFull
	}
}

// C returns the receive side.
func (s *ChannelStream) C() <-chan *Notification {
	return s.ch
}
