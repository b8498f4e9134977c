package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/app/jukebox"
	"github.com/osa030/venuebox/internal/app/notification"
	"github.com/osa030/venuebox/internal/app/payment"
	"github.com/osa030/venuebox/internal/domain/money"
	"github.com/osa030/venuebox/internal/infra/config"
	"github.com/osa030/venuebox/internal/infra/fixtures"
	"github.com/osa030/venuebox/internal/infra/ledger"
)

// scriptedRequest is one request made by a demo patron.
type scriptedRequest struct {
	email  string
	songID string
	method payment.Method
}

var script = []scriptedRequest{
	{email: "john@example.com", songID: "1", method: payment.MethodVenueCredit},
	{email: "jane@example.com", songID: "2", method: payment.MethodCreditCard},
	{email: "john@example.com", songID: "3", method: payment.MethodVenueCredit},
	{email: "jane@example.com", songID: "1", method: payment.MethodPayPal},
	{email: "admin@venue.com", songID: "6", method: payment.MethodVenueCredit},
	{email: "admin@venue.com", songID: "5", method: payment.MethodVenueCredit},
}

// simulate plays a scripted evening and stops once the queue drains or
// ctx is done.
func simulate(cfg *config.Config, fx *fixtures.Fixtures, duration time.Duration) error {
	l, err := ledger.Open(cfg.Ledger.DSN)
	if err != nil {
		return err
	}
	defer l.Close()

	m, err := jukebox.NewManager(cfg, fx, l)
	if err != nil {
		return err
	}
	defer m.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	stream := notification.NewChannelStream(cfg.Playback.EventBuffer)
	m.Subscribe(stream)

	runErr := make(chan error, 1)
	go func() { runErr <- m.Run(ctx) }()

	sessions := make(map[string]jukebox.Session)
	for _, step := range script {
		s, ok := sessions[step.email]
		if !ok {
			if s, err = m.Login(step.email, "demo"); err != nil {
				return errors.Wrapf(err, "login %s", step.email)
			}
			sessions[step.email] = s
		}
		res, err := m.RequestSong(ctx, s.Token, step.songID, step.method)
		if err != nil {
			return errors.Wrapf(err, "request by %s", s.User.Name)
		}
		zlog.Info().Msgf("%s -> song %s via %s: %s", s.User.Name, step.songID, step.method.Label(), res.Message)
	}

	admin := sessions["admin@venue.com"]
	if _, _, err := m.BuyCredits(ctx, sessions["jane@example.com"].Token, money.FromFloat(10), payment.MethodPayPal); err != nil {
		zlog.Warn().Msgf("credit purchase failed: %v", err)
	}

	printStatus(m.Status())

	// Follow the notifications until the queue drains.
	for waiting := true; waiting; {
		select {
		case n := <-stream.C():
			if n.Type == notification.TypeQueueEmpty {
				waiting = false
			}
		case <-ctx.Done():
			waiting = false
		}
	}
	cancel()
	if err := <-runErr; err != nil {
		return err
	}

	printStatus(m.Status())
	for _, email := range []string{"john@example.com", "jane@example.com"} {
		s := sessions[email]
		txs, err := m.Transactions(context.Background(), s.Token)
		if err != nil {
			return err
		}
		printTransactions(s.User.Name, txs)
	}
	dash, err := m.Dashboard(context.Background(), admin.Token)
	if err != nil {
		return err
	}
	printDashboard(dash)
	return nil
}
