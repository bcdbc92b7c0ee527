package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// BetStore implements domain.BetStore using PostgreSQL. Selected numbers are
// stored as a JSONB object of numberKey -> amount.
type BetStore struct {
	pool *pgxpool.Pool
}

// NewBetStore creates a new BetStore backed by the given connection pool.
func NewBetStore(pool *pgxpool.Pool) *BetStore {
	return &BetStore{pool: pool}
}

const betCols = `id, user_id, market_id, game_type, side, numbers,
	total_amount, bet_date::text, created_at, settled, payout, settled_at`

// Create inserts a new bet. The bet must already have passed Validate.
func (s *BetStore) Create(ctx context.Context, b domain.Bet) error {
	numbers, err := json.Marshal(b.Numbers)
	if err != nil {
		return fmt.Errorf("postgres: marshal bet %s numbers: %w", b.ID, err)
	}

	const query = `
		INSERT INTO bets (id, user_id, market_id, game_type, side, numbers,
			total_amount, bet_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.pool.Exec(ctx, query,
		b.ID, b.UserID, b.MarketID, string(b.GameType), string(b.Side),
		numbers, b.TotalAmount, b.Date, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create bet %s: %w", b.ID, err)
	}
	return nil
}

func scanBet(row pgx.Row) (domain.Bet, error) {
	var b domain.Bet
	var gameType, side string
	var numbers []byte
	err := row.Scan(
		&b.ID, &b.UserID, &b.MarketID, &gameType, &side, &numbers,
		&b.TotalAmount, &b.Date, &b.CreatedAt, &b.Settled, &b.Payout, &b.SettledAt,
	)
	if err != nil {
		return domain.Bet{}, err
	}
	b.GameType = domain.GameType(gameType)
	b.Side = domain.Side(side)
	if err := json.Unmarshal(numbers, &b.Numbers); err != nil {
		return domain.Bet{}, fmt.Errorf("unmarshal numbers for bet %s: %w", b.ID, err)
	}
	return b, nil
}

// GetByID retrieves a bet by its primary key.
func (s *BetStore) GetByID(ctx context.Context, id string) (domain.Bet, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+betCols+` FROM bets WHERE id = $1`, id)
	b, err := scanBet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Bet{}, domain.ErrNotFound
		}
		return domain.Bet{}, fmt.Errorf("postgres: get bet %s: %w", id, err)
	}
	return b, nil
}

// ListByMarketDay returns every bet placed on the market for the given market
// day, settled or not.
func (s *BetStore) ListByMarketDay(ctx context.Context, marketID, date string) ([]domain.Bet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+betCols+` FROM bets WHERE market_id = $1 AND bet_date = $2 ORDER BY created_at`,
		marketID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bets %s/%s: %w", marketID, date, err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan bet: %w", err)
		}
		bets = append(bets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list bets rows: %w", err)
	}
	return bets, nil
}

// SetPayout records a payout exactly once: the update is guarded on the
// settled flag, so a second settlement attempt matches zero rows and is
// reported as ErrAlreadySettled without touching the stored payout.
func (s *BetStore) SetPayout(ctx context.Context, id string, payout int64, settledAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bets SET payout = $2, settled = TRUE, settled_at = $3
		 WHERE id = $1 AND NOT settled`,
		id, payout, settledAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: set payout for bet %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM bets WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("postgres: check bet %s: %w", id, err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return fmt.Errorf("postgres: bet %s: %w", id, domain.ErrAlreadySettled)
	}
	return nil
}

// ListSettledBefore returns settled bets whose settlement happened strictly
// before the cutoff, for archival.
func (s *BetStore) ListSettledBefore(ctx context.Context, before time.Time) ([]domain.Bet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+betCols+` FROM bets WHERE settled AND settled_at < $1 ORDER BY settled_at`,
		before,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list settled bets: %w", err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan settled bet: %w", err)
		}
		bets = append(bets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list settled bets rows: %w", err)
	}
	return bets, nil
}

// Compile-time interface check.
var _ domain.BetStore = (*BetStore)(nil)
