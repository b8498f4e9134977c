package payment

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/domain/money"
)

// MockGatewayConfig configures the mock gateway.
type MockGatewayConfig struct {
	// DelayMS is how long every charge takes.
	DelayMS int `mapstructure:"delay_ms" default:"1500" validate:"gte=0"`
	// DeclineOver declines card and PayPal charges above this amount. 0 disables.
	DeclineOver float64 `mapstructure:"decline_over" validate:"gte=0"`
}

// MockGateway simulates a card processor. Venue credit charges are
// settled against the wallet.
type MockGateway struct {
	config MockGatewayConfig
	wallet Wallet
	now    func() time.Time
}

// NewMockGateway creates a mock gateway from a settings map.
func NewMockGateway(settings map[string]any, wallet Wallet) (*MockGateway, error) {
	var config MockGatewayConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, errors.Wrap(err, "failed to decode gateway settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "invalid gateway settings")
	}

	zlog.Info().Msgf("mock payment gateway config: %+v", config)
	return &MockGateway{
		config: config,
		wallet: wallet,
		now:    time.Now,
	}, nil
}

// Charge waits for the configured delay and settles the request.
func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (Transaction, error) {
	tx := req.pending(g.now())

	if g.config.DelayMS > 0 {
		timer := time.NewTimer(time.Duration(g.config.DelayMS) * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			tx.Status = StatusFailed
			return tx, errors.Wrap(ctx.Err(), "payment interrupted")
		case <-timer.C:
		}
	}

	switch req.Method {
	case MethodVenueCredit:
		if g.wallet == nil {
			tx.Status = StatusFailed
			return tx, errors.Wrap(ErrInvalidMethod, "venue credit unavailable")
		}
		if _, err := g.wallet.Charge(req.UserID, req.Amount); err != nil {
			tx.Status = StatusFailed
			return tx, err
		}
	case MethodCreditCard, MethodPayPal:
		limit := money.FromFloat(g.config.DeclineOver)
		if limit > 0 && req.Amount > limit {
			tx.Status = StatusFailed
			return tx, errors.Wrapf(ErrPaymentDeclined, "%s over %s limit", req.Amount, limit)
		}
	default:
		tx.Status = StatusFailed
		return tx, errors.Wrapf(ErrInvalidMethod, "%q", req.Method)
	}

	tx.Status = StatusCompleted
	return tx, nil
}
