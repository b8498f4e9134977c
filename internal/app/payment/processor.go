package payment

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/domain/money"
)

// Processor runs charges through a gateway and keeps the ledger in sync.
type Processor struct {
	gateway Gateway
	ledger  Ledger
	wallet  Wallet
	now     func() time.Time
}

// NewProcessor creates a processor.
func NewProcessor(gateway Gateway, ledger Ledger, wallet Wallet) *Processor {
	return &Processor{
		gateway: gateway,
		ledger:  ledger,
		wallet:  wallet,
		now:     time.Now,
	}
}

// Pay records a pending transaction, charges it and records the outcome.
// The returned transaction is valid even when err is not nil.
func (p *Processor) Pay(ctx context.Context, userID, songID string, amount money.Money, method Method, kind Kind) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return Transaction{}, err
	}

	req := ChargeRequest{
		TransactionID: uuid.New().String(),
		UserID:        userID,
		SongID:        songID,
		Amount:        amount,
		Method:        method,
		Kind:          kind,
	}
	if err := p.ledger.Record(ctx, req.pending(p.now())); err != nil {
		return Transaction{}, errors.Wrap(err, "failed to record transaction")
	}

	tx, chargeErr := p.gateway.Charge(ctx, req)
	if tx.Status == StatusPending {
		tx.Status = StatusFailed
	}

	// The outcome must be stored even if the caller gave up.
	if err := p.ledger.UpdateStatus(context.WithoutCancel(ctx), tx.ID, tx.Status); err != nil {
		zlog.Error().Err(err).Msgf("failed to update transaction %s", tx.ID)
		if chargeErr == nil {
			chargeErr = errors.Wrap(err, "failed to update transaction")
		}
	}

	if chargeErr != nil {
		zlog.Info().Msgf("payment %s failed: user=%s amount=%s method=%s: %v", tx.ID, userID, amount, method, chargeErr)
		return tx, chargeErr
	}
	zlog.Info().Msgf("payment %s completed: user=%s amount=%s method=%s", tx.ID, userID, amount, method)
	return tx, nil
}

// Void marks a completed transaction failed and returns venue credit to the user.
func (p *Processor) Void(ctx context.Context, tx Transaction) error {
	if err := p.ledger.UpdateStatus(ctx, tx.ID, StatusFailed); err != nil {
		return errors.Wrapf(err, "failed to void transaction %s", tx.ID)
	}
	if tx.Method == MethodVenueCredit && tx.Status == StatusCompleted && p.wallet != nil {
		if err := p.wallet.Refund(tx.UserID, tx.Amount); err != nil {
			return errors.Wrapf(err, "failed to refund transaction %s", tx.ID)
		}
	}
	zlog.Info().Msgf("transaction %s voided", tx.ID)
	return nil
}

// Record stores a transaction settled outside the gateway, such as an
// admin credit adjustment.
func (p *Processor) Record(ctx context.Context, userID string, amount money.Money, kind Kind) (Transaction, error) {
	tx := Transaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Amount:    amount,
		Method:    MethodVenueCredit,
		Kind:      kind,
		Status:    StatusCompleted,
		Timestamp: p.now(),
	}
	if err := p.ledger.Record(ctx, tx); err != nil {
		return Transaction{}, errors.Wrap(err, "failed to record transaction")
	}
	return tx, nil
}

// History returns a user's transactions, newest first.
func (p *Processor) History(ctx context.Context, userID string) ([]Transaction, error) {
	return p.ledger.ListByUser(ctx, userID)
}

// Revenue returns the money taken by card and PayPal.
func (p *Processor) Revenue(ctx context.Context) (money.Money, error) {
	return p.ledger.Revenue(ctx)
}
