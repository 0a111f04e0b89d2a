package postgres

import (
	"context"
	"fmt"

	"cardbase/internal/store"
)

// UpsertSet inserts a set row, updating every column on conflict.
func (s *Store) UpsertSet(ctx context.Context, tx store.DBTransaction, set *store.Set) error {
	query := `
		INSERT INTO sets (id, code, name, game, series, release_date, last_updated, printed_total, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET code = EXCLUDED.code,
		    name = EXCLUDED.name,
		    game = EXCLUDED.game,
		    series = EXCLUDED.series,
		    release_date = EXCLUDED.release_date,
		    last_updated = EXCLUDED.last_updated,
		    printed_total = EXCLUDED.printed_total,
		    total = EXCLUDED.total
	`

	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, query,
		set.ID,
		set.Code,
		set.Name,
		set.Game,
		set.Series,
		set.ReleaseDate,
		set.LastUpdated,
		set.PrintedTotal,
		set.Total,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert set %s: %w", set.ID, err)
	}
	return nil
}

// SyncLegalities replaces the stored legality rows with the incoming ones.
// The sets file is a full export, so rows absent from it must not survive.
func (s *Store) SyncLegalities(ctx context.Context, tx store.DBTransaction, legalities []store.SetLegality) error {
	if len(legalities) == 0 {
		return nil
	}

	executor := s.getExecutor(tx)

	if _, err := executor.ExecContext(ctx, "DELETE FROM set_legalities"); err != nil {
		return fmt.Errorf("failed to clear legalities: %w", err)
	}

	for _, l := range legalities {
		_, err := executor.ExecContext(ctx,
			"INSERT INTO set_legalities (set_id, format, legality) VALUES ($1, $2, $3)",
			l.SetID, l.Format, l.Legality)
		if err != nil {
			return fmt.Errorf("failed to insert legality %s/%s: %w", l.SetID, l.Format, err)
		}
	}

	return nil
}

// SyncImages replaces the stored set images with the incoming ones.
func (s *Store) SyncImages(ctx context.Context, tx store.DBTransaction, images []store.SetImage) error {
	if len(images) == 0 {
		return nil
	}

	executor := s.getExecutor(tx)

	if _, err := executor.ExecContext(ctx, "DELETE FROM set_images"); err != nil {
		return fmt.Errorf("failed to clear set images: %w", err)
	}

	for _, img := range images {
		_, err := executor.ExecContext(ctx,
			"INSERT INTO set_images (set_id, image_type, url) VALUES ($1, $2, $3)",
			img.SetID, img.ImageType, img.URL)
		if err != nil {
			return fmt.Errorf("failed to insert set image %s/%s: %w", img.SetID, img.ImageType, err)
		}
	}

	return nil
}

// GetSet returns a set by id.
func (s *Store) GetSet(ctx context.Context, tx store.DBTransaction, id string) (*store.Set, error) {
	query := `
		SELECT id, code, name, game, series, release_date, last_updated, printed_total, total
		FROM sets WHERE id = $1
	`

	executor := s.getExecutor(tx)

	var set store.Set
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&set.ID,
		&set.Code,
		&set.Name,
		&set.Game,
		&set.Series,
		&set.ReleaseDate,
		&set.LastUpdated,
		&set.PrintedTotal,
		&set.Total,
	)
	if err != nil {
		return nil, err
	}

	return &set, nil
}

// ListSetIDs returns the ids of all known sets.
func (s *Store) ListSetIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM sets ORDER BY release_date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsModernSet reports whether the set uses modern card numbering.
// Modern means Scarlet & Violet, or Sword & Shield releases from the
// base swsh1 set onward.
func (s *Store) IsModernSet(ctx context.Context, tx store.DBTransaction, id string) (bool, error) {
	query := `
		SELECT series = 'SCARLET_AND_VIOLET' OR
		      (series = 'SWORD_AND_SHIELD' AND release_date >=
		       (SELECT release_date FROM sets WHERE id = 'swsh1'))
		FROM sets WHERE id = $1
	`

	executor := s.getExecutor(tx)

	var modern bool
	if err := executor.QueryRowContext(ctx, query, id).Scan(&modern); err != nil {
		return false, err
	}
	return modern, nil
}
