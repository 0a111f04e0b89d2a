// Package cards imports card documents, one JSON file per set, into the store.
package cards

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cardbase/internal/store"
)

// Game is the catalog game every imported card belongs to.
const Game = "POKEMON"

// SupertypePokemon is the upstream supertype that carries battle details.
const SupertypePokemon = "Pokémon"

// Store is the subset of the repositories the importer needs.
type Store interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	GetSet(ctx context.Context, tx store.DBTransaction, id string) (*store.Set, error)
	IsModernSet(ctx context.Context, tx store.DBTransaction, id string) (bool, error)
	FindCardID(ctx context.Context, tx store.DBTransaction, externalID, setID string) (int64, bool, error)
	InsertCard(ctx context.Context, tx store.DBTransaction, card *store.Card) (int64, error)
	UpdateCard(ctx context.Context, tx store.DBTransaction, cardID int64, card *store.Card) error
	UpsertPokemonDetails(ctx context.Context, tx store.DBTransaction, cardID int64, details *store.PokemonDetails) (int64, error)
	SyncAttacks(ctx context.Context, tx store.DBTransaction, detailsID int64, attacks []store.Attack) error
	SyncAbilities(ctx context.Context, tx store.DBTransaction, detailsID int64, abilities []store.Ability) error
	SyncTypes(ctx context.Context, tx store.DBTransaction, detailsID int64, types []string) error
	SyncSubtypes(ctx context.Context, tx store.DBTransaction, cardID int64, subtypes []string) error
	SyncCardImages(ctx context.Context, tx store.DBTransaction, cardID int64, images map[string]string) error
	SyncRules(ctx context.Context, tx store.DBTransaction, cardID int64, rules []string) error
}

// Importer loads card documents and reconciles them with the database.
type Importer struct {
	store Store
	log   *slog.Logger
}

// New creates a new card importer.
func New(s Store, log *slog.Logger) *Importer {
	return &Importer{store: s, log: log}
}

// cardDocument is the upstream JSON shape for a single card.
type cardDocument struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Number               string            `json:"number"`
	Rarity               *string           `json:"rarity"`
	Artist               *string           `json:"artist"`
	Supertype            string            `json:"supertype"`
	HP                   string            `json:"hp"`
	ConvertedRetreatCost int               `json:"convertedRetreatCost"`
	FlavorText           *string           `json:"flavorText"`
	Weaknesses           []modifierEntry   `json:"weaknesses"`
	Resistances          []modifierEntry   `json:"resistances"`
	Attacks              []attackDocument  `json:"attacks"`
	Abilities            []abilityDocument `json:"abilities"`
	Types                []string          `json:"types"`
	Subtypes             []string          `json:"subtypes"`
	Images               map[string]string `json:"images"`
	Rules                []string          `json:"rules"`
}

type modifierEntry struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type attackDocument struct {
	Name   string   `json:"name"`
	Cost   []string `json:"cost"`
	Damage *string  `json:"damage"`
	Text   *string  `json:"text"`
}

type abilityDocument struct {
	Name string  `json:"name"`
	Text *string `json:"text"`
	Type *string `json:"type"`
}

// ImportPath imports a single card file, or every *.json file when path is
// a directory.
func (i *Importer) ImportPath(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return i.ImportFile(ctx, path)
	}

	matches, err := filepath.Glob(filepath.Join(path, "*.json"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no JSON files found in %s", path)
	}

	for _, file := range matches {
		i.log.Info("processing card file", "path", file)
		if err := i.ImportFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

// ImportFile imports one set's worth of cards. The set id is derived from
// the file name and must already exist in the database.
func (i *Importer) ImportFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var docs []cardDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	setID := SetIDFromFilename(path)
	i.log.Info("importing cards", "set", setID, "count", len(docs))

	tx, err := i.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	set, err := i.store.GetSet(ctx, tx, setID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("set %q not found in database", setID)
		}
		return fmt.Errorf("failed to look up set %q: %w", setID, err)
	}

	modern, err := i.store.IsModernSet(ctx, tx, setID)
	if err != nil {
		return fmt.Errorf("failed to classify set %q: %w", setID, err)
	}

	processed := 0
	for _, doc := range docs {
		if err := i.importCard(ctx, tx, set, modern, doc); err != nil {
			i.log.Error("failed to process card", "name", doc.Name, "external_id", doc.ID, "error", err)
			return err
		}
		processed++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit card import: %w", err)
	}

	i.log.Info("card import completed", "set", setID, "processed", processed)
	return nil
}

func (i *Importer) importCard(ctx context.Context, tx store.DBTransaction, set *store.Set, modern bool, doc cardDocument) error {
	card := &store.Card{
		Name:            doc.Name,
		Game:            Game,
		ExternalID:      doc.ID,
		SetID:           set.ID,
		Rarity:          doc.Rarity,
		IllustratorName: doc.Artist,
	}
	if doc.Supertype != "" {
		card.Supertype = &doc.Supertype
	}
	if number := FormatSetNumber(doc.Number, set.PrintedTotal, modern); number != "" {
		card.SetNumber = &number
	}

	cardID, exists, err := i.store.FindCardID(ctx, tx, doc.ID, set.ID)
	if err != nil {
		return err
	}
	if exists {
		if err := i.store.UpdateCard(ctx, tx, cardID, card); err != nil {
			return err
		}
	} else {
		cardID, err = i.store.InsertCard(ctx, tx, card)
		if err != nil {
			return err
		}
	}

	if err := i.store.SyncSubtypes(ctx, tx, cardID, doc.Subtypes); err != nil {
		return err
	}
	if len(doc.Images) > 0 {
		if err := i.store.SyncCardImages(ctx, tx, cardID, doc.Images); err != nil {
			return err
		}
	}

	if doc.Supertype == SupertypePokemon {
		detailsID, err := i.store.UpsertPokemonDetails(ctx, tx, cardID, pokemonDetails(doc))
		if err != nil {
			return err
		}

		attacks := make([]store.Attack, 0, len(doc.Attacks))
		for _, a := range doc.Attacks {
			attacks = append(attacks, store.Attack{
				Name:   a.Name,
				Damage: a.Damage,
				Text:   a.Text,
				Costs:  a.Cost,
			})
		}
		if err := i.store.SyncAttacks(ctx, tx, detailsID, attacks); err != nil {
			return err
		}

		abilities := make([]store.Ability, 0, len(doc.Abilities))
		for _, a := range doc.Abilities {
			abilities = append(abilities, store.Ability{
				Name: a.Name,
				Text: a.Text,
				Type: a.Type,
			})
		}
		if err := i.store.SyncAbilities(ctx, tx, detailsID, abilities); err != nil {
			return err
		}

		if err := i.store.SyncTypes(ctx, tx, detailsID, doc.Types); err != nil {
			return err
		}
	} else {
		if err := i.store.SyncRules(ctx, tx, cardID, doc.Rules); err != nil {
			return err
		}
	}

	i.log.Info("processed card", "name", doc.Name, "external_id", doc.ID)
	return nil
}

// pokemonDetails extracts the Pokémon-specific columns from a document.
func pokemonDetails(doc cardDocument) *store.PokemonDetails {
	details := &store.PokemonDetails{
		RetreatCost: doc.ConvertedRetreatCost,
		FlavourText: doc.FlavorText,
	}

	if hp, ok := parseHitPoints(doc.HP); ok {
		details.HitPoints = &hp
	}

	if len(doc.Weaknesses) > 0 {
		w := doc.Weaknesses[0]
		if w.Type != "" {
			details.WeaknessType = &w.Type
		}
		details.WeaknessModifier, details.WeaknessValue = splitModifierValue(w.Value)
	}

	if len(doc.Resistances) > 0 {
		r := doc.Resistances[0]
		if r.Type != "" {
			details.ResistanceType = &r.Type
		}
		details.ResistanceModifier, details.ResistanceValue = splitModifierValue(r.Value)
	}

	return details
}

// parseHitPoints converts an HP string to an integer. Non-numeric values
// (like "None" on some promos) produce no hit points.
func parseHitPoints(hp string) (int, bool) {
	if hp == "" {
		return 0, false
	}
	for _, r := range hp {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(hp)
	if err != nil {
		return 0, false
	}
	return v, true
}

// splitModifierValue splits a weakness/resistance value like "×2" or "-30"
// into its leading modifier rune and numeric remainder.
func splitModifierValue(raw string) (*string, *int) {
	if raw == "" {
		return nil, nil
	}

	runes := []rune(raw)
	modifier := string(runes[0])

	var value *int
	if v, err := strconv.Atoi(string(runes[1:])); err == nil {
		value = &v
	}

	return &modifier, value
}

// SetIDFromFilename derives the set id from a card data file path.
func SetIDFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
