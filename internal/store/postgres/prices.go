package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cardbase/internal/store"
)

// CurrentPrice returns the stored price row for a variant, if any.
func (s *Store) CurrentPrice(ctx context.Context, tx store.DBTransaction, cardID int64, finish, condition string) (*store.CardPrice, bool, error) {
	query := `
		SELECT card_id, finish, condition, price, updated_at
		FROM card_price
		WHERE card_id = $1 AND finish = $2 AND condition = $3
	`

	executor := s.getExecutor(tx)

	var price store.CardPrice
	err := executor.QueryRowContext(ctx, query, cardID, finish, condition).Scan(
		&price.CardID,
		&price.Finish,
		&price.Condition,
		&price.Price,
		&price.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &price, true, nil
}

// InsertPricePoint appends a historical price observation.
func (s *Store) InsertPricePoint(ctx context.Context, tx store.DBTransaction, point store.PricePoint) error {
	query := `
		INSERT INTO card_price_history (card_id, finish, condition, price, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, query,
		point.CardID,
		point.Finish,
		point.Condition,
		point.Price,
		point.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert price point for card %d: %w", point.CardID, err)
	}
	return nil
}

// UpsertPrice inserts or replaces the current price for a variant.
func (s *Store) UpsertPrice(ctx context.Context, tx store.DBTransaction, price store.CardPrice) error {
	query := `
		INSERT INTO card_price (card_id, finish, condition, price, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT card_price_card_id_finish_condition_key
		DO UPDATE SET
			price = EXCLUDED.price,
			updated_at = EXCLUDED.updated_at
	`

	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, query,
		price.CardID,
		price.Finish,
		price.Condition,
		price.Price,
		price.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price for card %d: %w", price.CardID, err)
	}
	return nil
}

// PruneHistory deletes history rows recorded before the cutoff.
func (s *Store) PruneHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM card_price_history WHERE recorded_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune price history: %w", err)
	}
	return result.RowsAffected()
}
