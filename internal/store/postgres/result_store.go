package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// ResultStore implements domain.ResultStore using PostgreSQL. Declarations
// are append-only: each side's digits can be written once per market per day
// and never updated; the guard lives in the SQL, not in application code.
type ResultStore struct {
	pool *pgxpool.Pool
}

// NewResultStore creates a new ResultStore backed by the given connection pool.
func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// Get retrieves the result row for a market day. It returns domain.ErrNotFound
// when neither side has been declared yet.
func (s *ResultStore) Get(ctx context.Context, marketID, date string) (domain.Result, error) {
	var r domain.Result
	err := s.pool.QueryRow(ctx,
		`SELECT market_id, result_date::text, open_digits, close_digits,
			open_declared_at, close_declared_at
		 FROM results WHERE market_id = $1 AND result_date = $2`,
		marketID, date,
	).Scan(&r.MarketID, &r.Date, &r.OpenDigits, &r.CloseDigits,
		&r.OpenDeclaredAt, &r.CloseDeclaredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Result{}, domain.ErrNotFound
		}
		return domain.Result{}, fmt.Errorf("postgres: get result %s/%s: %w", marketID, date, err)
	}
	return r, nil
}

// DeclareOpen writes the open digits for a market day. A prior open
// declaration makes the conditional upsert match nothing, which is reported
// as ErrAlreadyDeclared.
func (s *ResultStore) DeclareOpen(ctx context.Context, marketID, date, digits string, at time.Time) error {
	const query = `
		INSERT INTO results (market_id, result_date, open_digits, open_declared_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (market_id, result_date) DO UPDATE SET
			open_digits      = EXCLUDED.open_digits,
			open_declared_at = EXCLUDED.open_declared_at
		WHERE results.open_digits IS NULL`

	tag, err := s.pool.Exec(ctx, query, marketID, date, digits, at)
	if err != nil {
		return fmt.Errorf("postgres: declare open %s/%s: %w", marketID, date, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: open %s/%s: %w", marketID, date, domain.ErrAlreadyDeclared)
	}
	return nil
}

// DeclareClose writes the close digits for a market day with the same
// append-only guard as DeclareOpen.
func (s *ResultStore) DeclareClose(ctx context.Context, marketID, date, digits string, at time.Time) error {
	const query = `
		INSERT INTO results (market_id, result_date, close_digits, close_declared_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (market_id, result_date) DO UPDATE SET
			close_digits      = EXCLUDED.close_digits,
			close_declared_at = EXCLUDED.close_declared_at
		WHERE results.close_digits IS NULL`

	tag, err := s.pool.Exec(ctx, query, marketID, date, digits, at)
	if err != nil {
		return fmt.Errorf("postgres: declare close %s/%s: %w", marketID, date, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: close %s/%s: %w", marketID, date, domain.ErrAlreadyDeclared)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ResultStore = (*ResultStore)(nil)
