// Package ledger provides a SQLite-backed transaction ledger.
package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3" // driver
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/venuebox/internal/app/payment"
	"github.com/osa030/venuebox/internal/domain/money"
)

// DefaultDSN is a process-local in-memory database.
const DefaultDSN = "file:venuebox?mode=memory&cache=shared"

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	song_id    TEXT,
	amount     INTEGER NOT NULL,
	method     TEXT NOT NULL,
	kind       TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, created_at);
`

// SQLite implements payment.Ledger.
type SQLite struct {
	db *sql.DB
}

// Open connects to dsn and creates the schema.
func Open(dsn string) (*SQLite, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite db")
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping sqlite db")
	}

	l := &SQLite{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migration failed")
	}

	zlog.Debug().Msgf("ledger opened: %s", dsn)
	return l, nil
}

func (l *SQLite) migrate() error {
	_, err := l.db.Exec(schema)
	return err
}

// Close closes the database.
func (l *SQLite) Close() error {
	return l.db.Close()
}

// Record inserts a transaction.
func (l *SQLite) Record(ctx context.Context, tx payment.Transaction) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, song_id, amount, method, kind, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.ID, tx.UserID, nullString(tx.SongID), int64(tx.Amount), string(tx.Method),
		string(tx.Kind), string(tx.Status), tx.Timestamp.UnixNano())
	if err != nil {
		return errors.Wrapf(err, "failed to insert transaction %s", tx.ID)
	}
	return nil
}

// UpdateStatus changes the status of a transaction.
func (l *SQLite) UpdateStatus(ctx context.Context, id string, status payment.Status) error {
	res, err := l.db.ExecContext(ctx, "UPDATE transactions SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return errors.Wrapf(err, "failed to update transaction %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return errors.Wrapf(payment.ErrTransactionNotFound, "%s", id)
	}
	return nil
}

// ListByUser returns a user's transactions, newest first.
func (l *SQLite) ListByUser(ctx context.Context, userID string) ([]payment.Transaction, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, user_id, song_id, amount, method, kind, status, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query transactions")
	}
	defer rows.Close()

	txs := make([]payment.Transaction, 0)
	for rows.Next() {
		var (
			tx      payment.Transaction
			songID  sql.NullString
			amount  int64
			method  string
			kind    string
			status  string
			created int64
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &songID, &amount, &method, &kind, &status, &created); err != nil {
			return nil, errors.Wrap(err, "failed to scan transaction")
		}
		if songID.Valid {
			tx.SongID = songID.String
		}
		tx.Amount = money.Money(amount)
		tx.Method = payment.Method(method)
		tx.Kind = payment.Kind(kind)
		tx.Status = payment.Status(status)
		tx.Timestamp = time.Unix(0, created)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate transactions")
	}
	return txs, nil
}

// Revenue sums completed transactions paid by card or PayPal.
func (l *SQLite) Revenue(ctx context.Context) (money.Money, error) {
	var total int64
	row := l.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE status = ? AND method != ?
	`, string(payment.StatusCompleted), string(payment.MethodVenueCredit))
	if err := row.Scan(&total); err != nil {
		return 0, errors.Wrap(err, "failed to sum revenue")
	}
	return money.Money(total), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
