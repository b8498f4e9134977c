package jukebox

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/app/account"
	"github.com/osa030/venuebox/internal/app/filter"
	"github.com/osa030/venuebox/internal/app/notification"
	"github.com/osa030/venuebox/internal/app/payment"
	"github.com/osa030/venuebox/internal/app/playback"
	"github.com/osa030/venuebox/internal/domain/failure"
	"github.com/osa030/venuebox/internal/domain/money"
	"github.com/osa030/venuebox/internal/domain/song"
	"github.com/osa030/venuebox/internal/domain/user"
)

// Result codes returned by RequestSong besides the filter codes.
const (
	CodeSuccess             = "success"
	CodeInvalidSession      = "invalid_session"
	CodeSongNotFound        = "song_not_found"
	CodePaymentDeclined     = "payment_declined"
	CodeInsufficientCredits = "insufficient_credits"
)

// RequestResult is the outcome of a song request.
type RequestResult struct {
	Accepted    bool
	Code        string
	Message     string
	Item        *song.QueueItem
	Transaction *payment.Transaction
}

func (m *Manager) result(code string) RequestResult {
	return RequestResult{
		Accepted: code == CodeSuccess,
		Code:     code,
		Message:  m.config.GetMessage(code),
	}
}

// RequestSong pays for a song and queues it. Business rejections are
// reported through the result code; the error is reserved for failures the
// user cannot fix.
func (m *Manager) RequestSong(ctx context.Context, token, songID string, method payment.Method) (RequestResult, error) {
	if m.closed() {
		return RequestResult{}, ErrClosed
	}

	u, err := m.accounts.Authenticate(token)
	if err != nil {
		zlog.Warn().Msgf("song request rejected: song_id=%s code=%s", songID, CodeInvalidSession)
		return m.result(CodeInvalidSession), nil
	}

	s, err := m.catalog.Get(songID)
	if err != nil {
		zlog.Warn().Msgf("song request rejected: user=%s song_id=%s code=%s", u.Name, songID, CodeSongNotFound)
		return m.result(CodeSongNotFound), nil
	}

	m.requestMu.Lock()
	defer m.requestMu.Unlock()

	req := filter.Request{UserID: u.ID, SongID: s.ID}
	verdict := m.filterChain.Execute(ctx, req, s, u)
	zlog.Info().Msgf("song request: user=%s song=%s result=%t code=%s", u.Name, s.Title, verdict.Accepted, verdict.Code)
	if !verdict.Accepted {
		return m.result(verdict.Code), nil
	}

	var tx *payment.Transaction
	if s.Price > 0 {
		paid, err := m.payments.Pay(ctx, u.ID, s.ID, s.Price, method, payment.KindSongRequest)
		if err != nil {
			if code, ok := paymentRejection(err); ok {
				res := m.result(code)
				if paid.ID != "" {
					res.Transaction = &paid
				}
				return res, nil
			}
			return RequestResult{}, errors.Wrap(err, "payment failed")
		}
		tx = &paid
	}

	item, err := m.playback.Enqueue(s.ID, u.ID)
	if err != nil {
		// The song was deleted while the payment was running.
		if tx != nil {
			if verr := m.payments.Void(context.WithoutCancel(ctx), *tx); verr != nil {
				zlog.Error().Msgf("failed to void transaction %s: %v", tx.ID, verr)
			}
		}
		if errors.Is(err, playback.ErrSongNotFound) {
			return m.result(CodeSongNotFound), nil
		}
		return RequestResult{}, errors.Wrap(err, "failed to enqueue")
	}
	zlog.Info().Msgf("song queued: item_id=%s user=%s song=%s queue_size=%d", item.ID, u.Name, s.Title, m.playback.QueueSize())

	m.autoplay()
	m.broadcastQueue("")

	res := m.result(CodeSuccess)
	res.Item = &item
	res.Transaction = tx
	return res, nil
}

// autoplay starts the first request when nothing is playing.
func (m *Manager) autoplay() {
	if m.config.Playback.ManualStart {
		return
	}
	if m.playback.GetState() == playback.StateIdle {
		m.playback.Advance()
	}
}

// paymentRejection maps payment errors the user can act on to result codes.
func paymentRejection(err error) (string, bool) {
	switch {
	case errors.Is(err, account.ErrInsufficientCredits):
		return CodeInsufficientCredits, true
	case errors.Is(err, payment.ErrPaymentDeclined), errors.Is(err, failure.ErrInvalidArgument):
		return CodePaymentDeclined, true
	default:
		return "", false
	}
}

// BuyCredits charges an external payment method and adds the amount to
// the user's venue credit.
func (m *Manager) BuyCredits(ctx context.Context, token string, amount money.Money, method payment.Method) (payment.Transaction, user.User, error) {
	if m.closed() {
		return payment.Transaction{}, user.User{}, ErrClosed
	}
	u, err := m.accounts.Authenticate(token)
	if err != nil {
		return payment.Transaction{}, user.User{}, err
	}
	if method == payment.MethodVenueCredit {
		return payment.Transaction{}, user.User{}, errors.Wrap(payment.ErrInvalidMethod, "credits cannot be bought with venue credit")
	}

	tx, err := m.payments.Pay(ctx, u.ID, "", amount, method, payment.KindCreditPurchase)
	if err != nil {
		return tx, u, err
	}

	updated, _, err := m.accounts.AdjustCredits(u.ID, amount)
	if err != nil {
		return tx, u, errors.Wrap(err, "failed to add credits")
	}
	zlog.Info().Msgf("credits purchased: user=%s amount=%s balance=%s", u.Name, amount, updated.Credits)
	return tx, updated, nil
}

// Transactions returns the caller's transaction history, newest first.
func (m *Manager) Transactions(ctx context.Context, token string) ([]payment.Transaction, error) {
	u, err := m.accounts.Authenticate(token)
	if err != nil {
		return nil, err
	}
	return m.payments.History(ctx, u.ID)
}

func (m *Manager) broadcastQueue(message string) {
	m.notification.Broadcast(&notification.Notification{
		Type:      notification.TypeQueueUpdated,
		State:     m.playback.GetState(),
		QueueSize: m.playback.QueueSize(),
		Message:   message,
	})
}
