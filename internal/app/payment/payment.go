// Package payment charges song requests and credit purchases and records
// every attempt in a transaction ledger.
package payment

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/venuebox/internal/domain/failure"
	"github.com/osa030/venuebox/internal/domain/money"
	"github.com/osa030/venuebox/internal/domain/user"
)

var (
	ErrPaymentDeclined     = failure.Mark("payment declined", failure.ErrInvalidState)
	ErrTransactionNotFound = failure.Mark("transaction not found", failure.ErrNotFound)
	ErrInvalidMethod       = failure.Mark("unknown payment method", failure.ErrInvalidArgument)
	ErrInvalidAmount       = failure.Mark("amount must be positive", failure.ErrInvalidArgument)
)

// Method is how a transaction is paid.
type Method string

const (
	MethodCreditCard  Method = "credit_card"
	MethodPayPal      Method = "paypal"
	MethodVenueCredit Method = "venue_credit"
)

// Methods lists the accepted payment methods.
var Methods = []Method{MethodCreditCard, MethodPayPal, MethodVenueCredit}

// Label returns the display label of the method.
func (m Method) Label() string {
	switch m {
	case MethodCreditCard:
		return "Credit Card"
	case MethodPayPal:
		return "PayPal"
	case MethodVenueCredit:
		return "Venue Credit"
	default:
		return string(m)
	}
}

// ParseMethod parses a method name such as "paypal".
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidMethod, "%q", s)
}

// Kind is what a transaction pays for.
type Kind string

const (
	KindSongRequest     Kind = "song_request"
	KindCreditPurchase  Kind = "credit_purchase"
	KindAdminAdjustment Kind = "admin_adjustment"
)

// Status is the settlement state of a transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Transaction is one payment attempt.
type Transaction struct {
	ID        string
	UserID    string
	SongID    string // empty unless Kind is KindSongRequest
	Amount    money.Money
	Method    Method
	Kind      Kind
	Status    Status
	Timestamp time.Time
}

// ChargeRequest asks a gateway to settle one transaction.
type ChargeRequest struct {
	TransactionID string
	UserID        string
	SongID        string
	Amount        money.Money
	Method        Method
	Kind          Kind
}

func (r ChargeRequest) pending(now time.Time) Transaction {
	return Transaction{
		ID:        r.TransactionID,
		UserID:    r.UserID,
		SongID:    r.SongID,
		Amount:    r.Amount,
		Method:    r.Method,
		Kind:      r.Kind,
		Status:    StatusPending,
		Timestamp: now,
	}
}

// Gateway settles a charge. The returned transaction carries the final
// status even when an error is returned.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Transaction, error)
}

// Wallet holds the venue credits of users.
type Wallet interface {
	Charge(userID string, amount money.Money) (user.User, error)
	Refund(userID string, amount money.Money) error
}

// Ledger stores transactions.
type Ledger interface {
	Record(ctx context.Context, tx Transaction) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	ListByUser(ctx context.Context, userID string) ([]Transaction, error)
	Revenue(ctx context.Context) (money.Money, error)
}
