package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cryptocheckout/internal/models"
)

// PostgresOrders stores order records in the orders table.
type PostgresOrders struct {
	Pool *pgxpool.Pool
}

func NewPostgresOrders(pool *pgxpool.Pool) *PostgresOrders {
	return &PostgresOrders{Pool: pool}
}

func (s *PostgresOrders) Save(ctx context.Context, record models.OrderRecord) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO orders (
			identifier, amount, currency, concept,
			rate, crypto_amount, payment_uri
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (identifier) DO UPDATE SET
			amount=EXCLUDED.amount,
			currency=EXCLUDED.currency,
			concept=EXCLUDED.concept,
			rate=EXCLUDED.rate,
			crypto_amount=EXCLUDED.crypto_amount,
			payment_uri=EXCLUDED.payment_uri
	`,
		record.Identifier,
		record.Amount,
		record.Currency,
		record.Concept,
		nullable(record.Rate),
		nullable(record.CryptoAmount),
		nullable(record.PaymentURI),
	)
	return err
}

func (s *PostgresOrders) Load(ctx context.Context, identifier string) (models.OrderRecord, bool, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT identifier, amount, currency, concept, rate, crypto_amount, payment_uri
		FROM orders WHERE identifier=$1
	`, identifier)

	var record models.OrderRecord
	var rate, cryptoAmount, paymentURI sql.NullString

	err := row.Scan(
		&record.Identifier,
		&record.Amount,
		&record.Currency,
		&record.Concept,
		&rate,
		&cryptoAmount,
		&paymentURI,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.OrderRecord{}, false, nil
		}
		return models.OrderRecord{}, false, err
	}

	if rate.Valid {
		record.Rate = rate.String
	}
	if cryptoAmount.Valid {
		record.CryptoAmount = cryptoAmount.String
	}
	if paymentURI.Valid {
		record.PaymentURI = paymentURI.String
	}
	return record, true, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
