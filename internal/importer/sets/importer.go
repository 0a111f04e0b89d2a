// Package sets imports card-set metadata from JSON documents into the store.
package sets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"cardbase/internal/store"
)

// Game is the catalog game every imported set belongs to.
const Game = "POKEMON"

// Store is the subset of the set repository the importer needs.
type Store interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	UpsertSet(ctx context.Context, tx store.DBTransaction, set *store.Set) error
	SyncLegalities(ctx context.Context, tx store.DBTransaction, legalities []store.SetLegality) error
	SyncImages(ctx context.Context, tx store.DBTransaction, images []store.SetImage) error
}

// Importer loads set documents and reconciles them with the database.
type Importer struct {
	store Store
	log   *slog.Logger
}

// New creates a new set importer.
func New(s Store, log *slog.Logger) *Importer {
	return &Importer{store: s, log: log}
}

// setDocument is the upstream JSON shape for a single set.
type setDocument struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Series       string            `json:"series"`
	PTCGOCode    string            `json:"ptcgoCode"`
	ReleaseDate  string            `json:"releaseDate"`
	UpdatedAt    string            `json:"updatedAt"`
	PrintedTotal int               `json:"printedTotal"`
	Total        int               `json:"total"`
	Legalities   map[string]string `json:"legalities"`
	Images       map[string]string `json:"images"`
}

// Upstream date layouts.
const (
	releaseDateLayout = "2006/01/02"
	updatedAtLayout   = "2006/01/02 15:04:05"
)

// ImportFile reads a sets JSON file and upserts every set, then reconciles
// legalities and images, all within a single transaction.
func (i *Importer) ImportFile(ctx context.Context, path string) error {
	i.log.Info("reading set data", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	docs, err := decodeSets(raw)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	i.log.Info("processing card sets", "count", len(docs))

	sets := make([]*store.Set, 0, len(docs))
	for _, doc := range docs {
		set, err := i.toSet(doc)
		if err != nil {
			return err
		}
		sets = append(sets, set)
	}

	tx, err := i.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, set := range sets {
		if err := i.store.UpsertSet(ctx, tx, set); err != nil {
			return err
		}
	}
	i.log.Info("upserted sets", "count", len(sets))

	var legalities []store.SetLegality
	for _, doc := range docs {
		for format, legality := range doc.Legalities {
			legalities = append(legalities, store.SetLegality{
				SetID:    doc.ID,
				Format:   strings.ToUpper(format),
				Legality: legality,
			})
		}
	}
	if len(legalities) > 0 {
		if err := i.store.SyncLegalities(ctx, tx, legalities); err != nil {
			return err
		}
	}

	var images []store.SetImage
	for _, doc := range docs {
		for imageType, url := range doc.Images {
			images = append(images, store.SetImage{
				SetID:     doc.ID,
				ImageType: imageType,
				URL:       url,
			})
		}
	}
	if len(images) > 0 {
		if err := i.store.SyncImages(ctx, tx, images); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit set import: %w", err)
	}

	i.log.Info("set import completed")
	return nil
}

// decodeSets accepts the upstream export shape, an object with the set
// list under "data", and falls back to a bare array.
func decodeSets(raw []byte) ([]setDocument, error) {
	var envelope struct {
		Data []setDocument `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var docs []setDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (i *Importer) toSet(doc setDocument) (*store.Set, error) {
	// Prefer the PTCGO code; fall back to the set id.
	code := doc.PTCGOCode
	if code == "" {
		code = doc.ID
		i.log.Warn("no ptcgoCode for set, using id", "set", doc.Name, "code", code)
	}

	releaseDate, err := time.Parse(releaseDateLayout, doc.ReleaseDate)
	if err != nil {
		return nil, fmt.Errorf("invalid release date for set %s: %w", doc.ID, err)
	}

	lastUpdated, err := time.Parse(updatedAtLayout, doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updatedAt for set %s: %w", doc.ID, err)
	}

	return &store.Set{
		ID:           doc.ID,
		Code:         code,
		Name:         doc.Name,
		Game:         Game,
		Series:       MapSeries(doc.Series),
		ReleaseDate:  releaseDate,
		LastUpdated:  lastUpdated,
		PrintedTotal: doc.PrintedTotal,
		Total:        doc.Total,
	}, nil
}

// seriesMapping translates upstream series names to catalog enum values.
var seriesMapping = map[string]string{
	"base":                   "BASE",
	"gym":                    "GYM",
	"neo":                    "NEO",
	"e-card":                 "E_CARD",
	"ex":                     "EX",
	"pop":                    "POP",
	"diamond & pearl":        "DIAMOND_AND_PEARL",
	"platinum":               "PLATINUM",
	"heartgold & soulsilver": "HEARTGOLD_AND_SOULSILVER",
	"black & white":          "BLACK_AND_WHITE",
	"xy":                     "XY",
	"sun & moon":             "SUN_AND_MOON",
	"sword & shield":         "SWORD_AND_SHIELD",
	"scarlet & violet":       "SCARLET_AND_VIOLET",
	"np":                     "NP",
	"other":                  "OTHER",
}

// MapSeries maps an upstream series string to its enum value.
// Unknown series map to OTHER.
func MapSeries(series string) string {
	if mapped, ok := seriesMapping[strings.ToLower(series)]; ok {
		return mapped
	}
	return "OTHER"
}
