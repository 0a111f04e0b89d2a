package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Tx interface {
	DBTransaction
	Commit() error
	Rollback() error
}

// SetStore handles the persistence of sets, their legalities and images.
type SetStore interface {
	// UpsertSet inserts a set or updates all columns on id conflict.
	UpsertSet(ctx context.Context, tx DBTransaction, set *Set) error

	// SyncLegalities reconciles set_legalities with the given entries,
	// inserting missing rows and updating changed ones.
	SyncLegalities(ctx context.Context, tx DBTransaction, legalities []SetLegality) error

	// SyncImages reconciles set_images with the given entries.
	SyncImages(ctx context.Context, tx DBTransaction, images []SetImage) error

	// GetSet returns a set by its id.
	GetSet(ctx context.Context, tx DBTransaction, id string) (*Set, error)

	// ListSetIDs returns the ids of all known sets.
	ListSetIDs(ctx context.Context) ([]string, error)

	// IsModernSet reports whether the set uses modern numbering
	// (Scarlet & Violet, or Sword & Shield from the base set onward).
	IsModernSet(ctx context.Context, tx DBTransaction, id string) (bool, error)
}

// CardStore handles the persistence of cards and their child tables.
type CardStore interface {
	// FindCardID looks a card up by its upstream id within a set.
	// The bool result reports whether the card exists.
	FindCardID(ctx context.Context, tx DBTransaction, externalID, setID string) (int64, bool, error)

	// FindCardIDByExternalID looks a card up by its upstream id alone.
	FindCardIDByExternalID(ctx context.Context, tx DBTransaction, externalID string) (int64, bool, error)

	// InsertCard inserts a new card row and returns its id.
	InsertCard(ctx context.Context, tx DBTransaction, card *Card) (int64, error)

	// UpdateCard updates the base columns of an existing card.
	UpdateCard(ctx context.Context, tx DBTransaction, cardID int64, card *Card) error

	// UpsertPokemonDetails inserts or updates the Pokémon details row for a
	// card and returns the details id.
	UpsertPokemonDetails(ctx context.Context, tx DBTransaction, cardID int64, details *PokemonDetails) (int64, error)

	// SyncAttacks reconciles attacks (and their costs) for a details row.
	SyncAttacks(ctx context.Context, tx DBTransaction, detailsID int64, attacks []Attack) error

	// SyncAbilities reconciles abilities for a details row.
	SyncAbilities(ctx context.Context, tx DBTransaction, detailsID int64, abilities []Ability) error

	// SyncTypes reconciles energy types for a details row.
	SyncTypes(ctx context.Context, tx DBTransaction, detailsID int64, types []string) error

	// SyncSubtypes reconciles subtypes for a card.
	SyncSubtypes(ctx context.Context, tx DBTransaction, cardID int64, subtypes []string) error

	// SyncCardImages reconciles per-resolution image URLs for a card.
	SyncCardImages(ctx context.Context, tx DBTransaction, cardID int64, images map[string]string) error

	// SyncRules reconciles rule texts for a trainer or energy card.
	SyncRules(ctx context.Context, tx DBTransaction, cardID int64, rules []string) error
}

// PriceStore handles current prices and their history.
type PriceStore interface {
	// CurrentPrice returns the stored price row for a variant, if any.
	CurrentPrice(ctx context.Context, tx DBTransaction, cardID int64, finish, condition string) (*CardPrice, bool, error)

	// InsertPricePoint appends a historical price observation.
	InsertPricePoint(ctx context.Context, tx DBTransaction, point PricePoint) error

	// UpsertPrice inserts or replaces the current price for a variant.
	UpsertPrice(ctx context.Context, tx DBTransaction, price CardPrice) error

	// PruneHistory deletes history rows recorded before the cutoff and
	// returns the number of rows removed.
	PruneHistory(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunStore handles run history and captured run logs.
type RunStore interface {
	// CreateRun inserts the initial pending state of a new run.
	CreateRun(ctx context.Context, run *Run) error

	// MarkRunning transitions a run to running and stamps started_at.
	MarkRunning(ctx context.Context, runID uuid.UUID) error

	// CompleteRun marks the run as completed and saves the exit code.
	CompleteRun(ctx context.Context, runID uuid.UUID, exitCode int) error

	// FailRun marks the run as failed and saves the exit code and message.
	FailRun(ctx context.Context, runID uuid.UUID, exitCode *int, errMsg string) error

	// GetRun returns a run by its id.
	GetRun(ctx context.Context, runID uuid.UUID) (*Run, error)

	// ListRuns returns recent runs, newest first.
	ListRuns(ctx context.Context, limit, offset int) ([]Run, error)

	// AppendLog persists a chunk of log output for a run.
	AppendLog(ctx context.Context, runID uuid.UUID, content string) error

	// ListLogs returns log entries for a run after the given id.
	ListLogs(ctx context.Context, runID uuid.UUID, afterID int64, limit int) ([]RunLog, error)

	// CountActive returns the number of runs currently pending or running.
	CountActive(ctx context.Context) (int64, error)
}
