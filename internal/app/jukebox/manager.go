// Package jukebox composes the catalog, accounts, playback, payments and
// notifications into the venue jukebox.
package jukebox

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/app/account"
	"github.com/osa030/venuebox/internal/app/catalog"
	"github.com/osa030/venuebox/internal/app/filter"
	"github.com/osa030/venuebox/internal/app/notification"
	"github.com/osa030/venuebox/internal/app/payment"
	"github.com/osa030/venuebox/internal/app/playback"
	"github.com/osa030/venuebox/internal/app/ui"
	"github.com/osa030/venuebox/internal/domain/failure"
	"github.com/osa030/venuebox/internal/domain/venue"
	"github.com/osa030/venuebox/internal/infra/config"
	"github.com/osa030/venuebox/internal/infra/fixtures"
)

var (
	ErrAdminOnly       = failure.Mark("admin privileges required", failure.ErrPermissionDenied)
	ErrClosed          = failure.Mark("jukebox is closed", failure.ErrInvalidState)
	ErrNothingToDeduct = failure.Mark("balance is already zero", failure.ErrInvalidState)
)

// FilterOrder is the order in which enabled filters run.
var FilterOrder = []string{
	"duplicate_song_filter",
	"user_pending_filter",
	"duration_limit_filter",
	"queue_wait_filter",
}

// Manager manages the venue jukebox.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config *config.Config

	// Components
	catalog      *catalog.Store
	accounts     *account.Registry
	playback     *playback.Controller
	driver       *playback.Driver
	filterChain  *filter.Chain
	payments     *payment.Processor
	ledger       payment.Ledger
	notification *notification.Manager

	venue    venue.Venue
	sessions map[string]*ui.State // UI toggles per session token

	// Serializes song requests so filter checks and enqueue see the same queue
	requestMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// Option customizes a Manager.
type Option func(*Manager)

// WithGateway replaces the configured payment gateway.
func WithGateway(g payment.Gateway) Option {
	return func(m *Manager) {
		m.payments = payment.NewProcessor(g, m.ledger, m.accounts)
	}
}

// NewManager creates a jukebox seeded with fx, storing transactions in ledger.
func NewManager(cfg *config.Config, fx *fixtures.Fixtures, ledger payment.Ledger, opts ...Option) (*Manager, error) {
	store, err := catalog.New(fx.Songs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load catalog")
	}
	accounts, err := account.NewRegistry(fx.Users)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load accounts")
	}

	controller := playback.NewController(store, playback.Config{
		EventBuffer: cfg.Playback.EventBuffer,
	})

	chain, err := filter.Build(cfg.EnabledFilters(FilterOrder), cfg.FilterSettings(), controller)
	if err != nil {
		controller.Close()
		return nil, errors.Wrap(err, "failed to build filter chain")
	}

	gateway, err := newGateway(cfg.Payment, accounts)
	if err != nil {
		controller.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		config:   cfg,
		catalog:  store,
		accounts: accounts,
		playback: controller,
		driver: playback.NewDriver(controller, playback.DriverConfig{
			Interval: cfg.Playback.TickInterval(),
			Speed:    cfg.Playback.Speed,
		}),
		filterChain:  chain,
		payments:     payment.NewProcessor(gateway, ledger, accounts),
		ledger:       ledger,
		notification: notification.NewManager(cfg.Notification.SendTimeout()),
		venue:        fx.Venue,
		sessions:     make(map[string]*ui.State),
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(m)
	}

	zlog.Info().Msgf("jukebox ready: venue=%s songs=%d users=%d filters=%d",
		m.venue.Name, store.Count(), accounts.Count(), len(chain.Filters()))
	return m, nil
}

func newGateway(cfg config.PaymentConfig, wallet payment.Wallet) (payment.Gateway, error) {
	switch cfg.Gateway {
	case "mock", "":
		g, err := payment.NewMockGateway(cfg.Settings, wallet)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create payment gateway")
		}
		return g, nil
	default:
		return nil, errors.Newf("unknown payment gateway %q", cfg.Gateway)
	}
}

// Run drives playback and broadcasts playback events until ctx is cancelled
// or the manager is closed.
func (m *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-m.ctx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		m.playbackLoop(ctx)
	}()

	zlog.Info().Msgf("playback driver started: interval=%s speed=%.1fx",
		m.config.Playback.TickInterval(), m.config.Playback.Speed)
	err := m.driver.Run(ctx)
	<-loopDone
	zlog.Info().Msg("playback driver stopped")

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Close stops Run and releases the playback controller and subscribers.
func (m *Manager) Close() {
	m.cancel()
	m.playback.Close()
	m.notification.Close()
}

// Subscribe registers a notification stream and returns its subscription ID.
func (m *Manager) Subscribe(stream notification.Stream) string {
	return m.notification.Subscribe(stream)
}

// Unsubscribe removes a notification stream.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.notification.Unsubscribe(subscriptionID)
}

// Filters returns the active request filters.
func (m *Manager) Filters() []filter.Filter {
	return m.filterChain.Filters()
}

// Message returns the configured user-facing message for a result code.
func (m *Manager) Message(code string) string {
	return m.config.GetMessage(code)
}

func (m *Manager) closed() bool {
	select {
	case <-m.ctx.Done():
		return true
	default:
		return false
	}
}
