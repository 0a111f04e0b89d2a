package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cardbase/internal/store"
)

// FindCardID looks a card up by its upstream id within a set.
func (s *Store) FindCardID(ctx context.Context, tx store.DBTransaction, externalID, setID string) (int64, bool, error) {
	executor := s.getExecutor(tx)

	var id int64
	err := executor.QueryRowContext(ctx,
		"SELECT id FROM cards WHERE external_id = $1 AND set_id = $2",
		externalID, setID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// FindCardIDByExternalID looks a card up by its upstream id alone.
func (s *Store) FindCardIDByExternalID(ctx context.Context, tx store.DBTransaction, externalID string) (int64, bool, error) {
	executor := s.getExecutor(tx)

	var id int64
	err := executor.QueryRowContext(ctx,
		"SELECT id FROM cards WHERE external_id = $1", externalID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// InsertCard inserts a new card row and returns its id.
func (s *Store) InsertCard(ctx context.Context, tx store.DBTransaction, card *store.Card) (int64, error) {
	query := `
		INSERT INTO cards (name, game, external_id, set_id, set_number, rarity, illustrator_name, supertype)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	executor := s.getExecutor(tx)

	var id int64
	err := executor.QueryRowContext(ctx, query,
		card.Name,
		card.Game,
		card.ExternalID,
		card.SetID,
		card.SetNumber,
		card.Rarity,
		card.IllustratorName,
		card.Supertype,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card %s: %w", card.ExternalID, err)
	}
	return id, nil
}

// UpdateCard updates the base columns of an existing card.
func (s *Store) UpdateCard(ctx context.Context, tx store.DBTransaction, cardID int64, card *store.Card) error {
	query := `
		UPDATE cards
		SET name = $1,
		    game = $2,
		    set_number = $3,
		    rarity = $4,
		    illustrator_name = $5,
		    supertype = $6
		WHERE id = $7
	`

	executor := s.getExecutor(tx)
	_, err := executor.ExecContext(ctx, query,
		card.Name,
		card.Game,
		card.SetNumber,
		card.Rarity,
		card.IllustratorName,
		card.Supertype,
		cardID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card %d: %w", cardID, err)
	}
	return nil
}

// UpsertPokemonDetails inserts or updates the Pokémon details row for a card
// and returns the details id.
func (s *Store) UpsertPokemonDetails(ctx context.Context, tx store.DBTransaction, cardID int64, details *store.PokemonDetails) (int64, error) {
	query := `
		INSERT INTO card_pokemon_details (
			card_id, hit_points, retreat_cost, flavour_text,
			weakness_type, weakness_modifier, weakness_value,
			resistance_type, resistance_modifier, resistance_value
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (card_id) DO UPDATE
		SET hit_points = EXCLUDED.hit_points,
		    retreat_cost = EXCLUDED.retreat_cost,
		    flavour_text = EXCLUDED.flavour_text,
		    weakness_type = EXCLUDED.weakness_type,
		    weakness_modifier = EXCLUDED.weakness_modifier,
		    weakness_value = EXCLUDED.weakness_value,
		    resistance_type = EXCLUDED.resistance_type,
		    resistance_modifier = EXCLUDED.resistance_modifier,
		    resistance_value = EXCLUDED.resistance_value
		RETURNING id
	`

	executor := s.getExecutor(tx)

	var id int64
	err := executor.QueryRowContext(ctx, query,
		cardID,
		details.HitPoints,
		details.RetreatCost,
		details.FlavourText,
		details.WeaknessType,
		details.WeaknessModifier,
		details.WeaknessValue,
		details.ResistanceType,
		details.ResistanceModifier,
		details.ResistanceValue,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert pokemon details for card %d: %w", cardID, err)
	}
	return id, nil
}

// SyncAttacks reconciles the attacks (and their costs) stored for a details
// row against the incoming list. Attacks are matched by name; attacks that
// disappeared upstream are deleted along with their costs.
func (s *Store) SyncAttacks(ctx context.Context, tx store.DBTransaction, detailsID int64, attacks []store.Attack) error {
	executor := s.getExecutor(tx)

	rows, err := executor.QueryContext(ctx,
		"SELECT id, name, damage, text FROM card_attacks WHERE card_pokemon_details_id = $1",
		detailsID)
	if err != nil {
		return fmt.Errorf("failed to read existing attacks: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]store.Attack)
	for rows.Next() {
		var a store.Attack
		if err := rows.Scan(&a.ID, &a.Name, &a.Damage, &a.Text); err != nil {
			return err
		}
		existing[a.Name] = a
	}
	if err := rows.Err(); err != nil {
		return err
	}

	kept := make(map[int64]struct{})
	for _, attack := range attacks {
		var attackID int64
		if current, ok := existing[attack.Name]; ok {
			_, err := executor.ExecContext(ctx,
				"UPDATE card_attacks SET damage = $1, text = $2 WHERE id = $3",
				attack.Damage, attack.Text, current.ID)
			if err != nil {
				return fmt.Errorf("failed to update attack %q: %w", attack.Name, err)
			}
			attackID = current.ID
		} else {
			err := executor.QueryRowContext(ctx, `
				INSERT INTO card_attacks (card_pokemon_details_id, name, damage, text)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, detailsID, attack.Name, attack.Damage, attack.Text).Scan(&attackID)
			if err != nil {
				return fmt.Errorf("failed to insert attack %q: %w", attack.Name, err)
			}
		}
		kept[attackID] = struct{}{}

		if err := s.syncAttackCosts(ctx, executor, attackID, attack.Costs); err != nil {
			return err
		}
	}

	for _, current := range existing {
		if _, ok := kept[current.ID]; !ok {
			if _, err := executor.ExecContext(ctx, "DELETE FROM card_attacks WHERE id = $1", current.ID); err != nil {
				return fmt.Errorf("failed to delete attack %d: %w", current.ID, err)
			}
		}
	}

	return nil
}

// syncAttackCosts reconciles the energy costs of a single attack.
// An attack with no listed cost costs FREE.
func (s *Store) syncAttackCosts(ctx context.Context, executor store.DBTransaction, attackID int64, costs []string) error {
	if len(costs) == 0 {
		costs = []string{"FREE"}
	}

	rows, err := executor.QueryContext(ctx,
		"SELECT id, cost FROM card_attack_costs WHERE attack_id = $1", attackID)
	if err != nil {
		return fmt.Errorf("failed to read existing attack costs: %w", err)
	}
	defer rows.Close()

	type costRow struct {
		id   int64
		cost string
	}
	var existing []costRow
	byCost := make(map[string]int64)
	for rows.Next() {
		var r costRow
		if err := rows.Scan(&r.id, &r.cost); err != nil {
			return err
		}
		existing = append(existing, r)
		byCost[r.cost] = r.id
	}
	if err := rows.Err(); err != nil {
		return err
	}

	kept := make(map[int64]struct{})
	for _, cost := range costs {
		if id, ok := byCost[cost]; ok {
			kept[id] = struct{}{}
			continue
		}
		var id int64
		err := executor.QueryRowContext(ctx,
			"INSERT INTO card_attack_costs (attack_id, cost) VALUES ($1, $2) RETURNING id",
			attackID, cost).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert attack cost %q: %w", cost, err)
		}
		kept[id] = struct{}{}
	}

	for _, r := range existing {
		if _, ok := kept[r.id]; !ok {
			if _, err := executor.ExecContext(ctx, "DELETE FROM card_attack_costs WHERE id = $1", r.id); err != nil {
				return fmt.Errorf("failed to delete attack cost %d: %w", r.id, err)
			}
		}
	}

	return nil
}

// SyncAbilities reconciles the abilities stored for a details row.
func (s *Store) SyncAbilities(ctx context.Context, tx store.DBTransaction, detailsID int64, abilities []store.Ability) error {
	executor := s.getExecutor(tx)

	rows, err := executor.QueryContext(ctx,
		"SELECT id, name, text, type FROM card_abilities WHERE card_pokemon_details_id = $1",
		detailsID)
	if err != nil {
		return fmt.Errorf("failed to read existing abilities: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]store.Ability)
	for rows.Next() {
		var a store.Ability
		if err := rows.Scan(&a.ID, &a.Name, &a.Text, &a.Type); err != nil {
			return err
		}
		existing[a.Name] = a
	}
	if err := rows.Err(); err != nil {
		return err
	}

	kept := make(map[int64]struct{})
	for _, ability := range abilities {
		if current, ok := existing[ability.Name]; ok {
			_, err := executor.ExecContext(ctx,
				"UPDATE card_abilities SET text = $1, type = $2 WHERE id = $3",
				ability.Text, ability.Type, current.ID)
			if err != nil {
				return fmt.Errorf("failed to update ability %q: %w", ability.Name, err)
			}
			kept[current.ID] = struct{}{}
		} else {
			var id int64
			err := executor.QueryRowContext(ctx, `
				INSERT INTO card_abilities (card_pokemon_details_id, name, text, type)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, detailsID, ability.Name, ability.Text, ability.Type).Scan(&id)
			if err != nil {
				return fmt.Errorf("failed to insert ability %q: %w", ability.Name, err)
			}
			kept[id] = struct{}{}
		}
	}

	for _, current := range existing {
		if _, ok := kept[current.ID]; !ok {
			if _, err := executor.ExecContext(ctx, "DELETE FROM card_abilities WHERE id = $1", current.ID); err != nil {
				return fmt.Errorf("failed to delete ability %d: %w", current.ID, err)
			}
		}
	}

	return nil
}

// SyncTypes reconciles the energy types stored for a details row.
func (s *Store) SyncTypes(ctx context.Context, tx store.DBTransaction, detailsID int64, types []string) error {
	executor := s.getExecutor(tx)

	rows, err := executor.QueryContext(ctx,
		"SELECT type FROM card_types WHERE card_pokemon_details_id = $1", detailsID)
	if err != nil {
		return fmt.Errorf("failed to read existing types: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return err
		}
		existing[t] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	kept := make(map[string]struct{})
	for _, t := range types {
		kept[t] = struct{}{}
		if _, ok := existing[t]; ok {
			continue
		}
		_, err := executor.ExecContext(ctx,
			"INSERT INTO card_types (card_pokemon_details_id, type) VALUES ($1, $2)",
			detailsID, t)
		if err != nil {
			return fmt.Errorf("failed to insert type %q: %w", t, err)
		}
	}

	for t := range existing {
		if _, ok := kept[t]; !ok {
			_, err := executor.ExecContext(ctx,
				"DELETE FROM card_types WHERE card_pokemon_details_id = $1 AND type = $2",
				detailsID, t)
			if err != nil {
				return fmt.Errorf("failed to delete type %q: %w", t, err)
			}
		}
	}

	return nil
}

// SyncSubtypes reconciles the subtypes stored for a card.
func (s *Store) SyncSubtypes(ctx context.Context, tx store.DBTransaction, cardID int64, subtypes []string) error {
	executor := s.getExecutor(tx)

	rows, err := executor.QueryContext(ctx,
		"SELECT subtype FROM card_subtypes WHERE card_id = $1", cardID)
	if err != nil {
		return fmt.Errorf("failed to read existing subtypes: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var st string
		if err := rows.Scan(&st); err != nil {
			return err
		}
		existing[st] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	kept := make(map[string]struct{})
	for _, st := range subtypes {
		kept[st] = struct{}{}
		if _, ok := existing[st]; ok {
			continue
		}
		_, err := executor.ExecContext(ctx,
			"INSERT INTO card_subtypes (card_id, subtype) VALUES ($1, $2)",
			cardID, st)
		if err != nil {
			return fmt.Errorf("failed to insert subtype %q: %w", st, err)
		}
	}

	for st := range existing {
		if _, ok := kept[st]; !ok {
			_, err := executor.ExecContext(ctx,
				"DELETE FROM card_subtypes WHERE card_id = $1 AND subtype = $2",
				cardID, st)
			if err != nil {
				return fmt.Errorf("failed to delete subtype %q: %w", st, err)
			}
		}
	}

	return nil
}

// SyncCardImages reconciles the per-resolution image URLs stored for a card.
// Stale resolutions are left in place; only new or changed URLs are written.
func (s *Store) SyncCardImages(ctx context.Context, tx store.DBTransaction, cardID int64, images map[string]string) error {
	executor := s.getExecutor(tx)

	rows, err := executor.QueryContext(ctx,
		"SELECT resolution, url FROM card_images WHERE card_id = $1", cardID)
	if err != nil {
		return fmt.Errorf("failed to read existing card images: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]string)
	for rows.Next() {
		var resolution, url string
		if err := rows.Scan(&resolution, &url); err != nil {
			return err
		}
		existing[resolution] = url
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for resolution, url := range images {
		current, ok := existing[resolution]
		if !ok {
			_, err := executor.ExecContext(ctx,
				"INSERT INTO card_images (card_id, resolution, url) VALUES ($1, $2, $3)",
				cardID, resolution, url)
			if err != nil {
				return fmt.Errorf("failed to insert card image %q: %w", resolution, err)
			}
		} else if current != url {
			_, err := executor.ExecContext(ctx,
				"UPDATE card_images SET url = $1 WHERE card_id = $2 AND resolution = $3",
				url, cardID, resolution)
			if err != nil {
				return fmt.Errorf("failed to update card image %q: %w", resolution, err)
			}
		}
	}

	return nil
}

// SyncRules reconciles the rule texts stored for a trainer or energy card.
func (s *Store) SyncRules(ctx context.Context, tx store.DBTransaction, cardID int64, rules []string) error {
	executor := s.getExecutor(tx)

	rows, err := executor.QueryContext(ctx,
		"SELECT id, text FROM card_rules WHERE card_id = $1", cardID)
	if err != nil {
		return fmt.Errorf("failed to read existing rules: %w", err)
	}
	defer rows.Close()

	type ruleRow struct {
		id   int64
		text string
	}
	var existing []ruleRow
	byText := make(map[string]int64)
	for rows.Next() {
		var r ruleRow
		if err := rows.Scan(&r.id, &r.text); err != nil {
			return err
		}
		existing = append(existing, r)
		byText[r.text] = r.id
	}
	if err := rows.Err(); err != nil {
		return err
	}

	kept := make(map[int64]struct{})
	for _, rule := range rules {
		if id, ok := byText[rule]; ok {
			kept[id] = struct{}{}
			continue
		}
		var id int64
		err := executor.QueryRowContext(ctx,
			"INSERT INTO card_rules (card_id, text) VALUES ($1, $2) RETURNING id",
			cardID, rule).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert rule: %w", err)
		}
		kept[id] = struct{}{}
	}

	for _, r := range existing {
		if _, ok := kept[r.id]; !ok {
			if _, err := executor.ExecContext(ctx, "DELETE FROM card_rules WHERE id = $1", r.id); err != nil {
				return fmt.Errorf("failed to delete rule %d: %w", r.id, err)
			}
		}
	}

	return nil
}
