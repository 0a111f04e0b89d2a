// Package store contains the database layer for cardbase.
package store

import (
	"time"

	"github.com/google/uuid"
)

// Set represents a card set (expansion) in the catalog.
type Set struct {
	ID           string
	Code         string
	Name         string
	Game         string
	Series       string
	ReleaseDate  time.Time
	LastUpdated  time.Time
	PrintedTotal int
	Total        int
}

// SetLegality is a per-format legality entry for a set.
type SetLegality struct {
	SetID    string
	Format   string
	Legality string
}

// SetImage is a set-level image (symbol, logo).
type SetImage struct {
	SetID     string
	ImageType string
	URL       string
}

// Card represents the base card row shared by all supertypes.
type Card struct {
	ID              int64
	Name            string
	Game            string
	ExternalID      string
	SetID           string
	SetNumber       *string
	Rarity          *string
	IllustratorName *string
	Supertype       *string
}

// PokemonDetails holds the Pokémon-specific columns for a card.
type PokemonDetails struct {
	ID                 int64
	CardID             int64
	HitPoints          *int
	RetreatCost        int
	FlavourText        *string
	WeaknessType       *string
	WeaknessModifier   *string
	WeaknessValue      *int
	ResistanceType     *string
	ResistanceModifier *string
	ResistanceValue    *int
}

// Attack is a single attack on a Pokémon card, including its energy costs.
type Attack struct {
	ID     int64
	Name   string
	Damage *string
	Text   *string
	Costs  []string
}

// Ability is a single ability on a Pokémon card.
type Ability struct {
	ID   int64
	Name string
	Text *string
	Type *string
}

// CardPrice is the current price for one (card, finish, condition) variant.
type CardPrice struct {
	CardID    int64
	Finish    string
	Condition string
	Price     *float64
	UpdatedAt time.Time
}

// PricePoint is a historical price observation.
type PricePoint struct {
	CardID     int64
	Finish     string
	Condition  string
	Price      float64
	RecordedAt time.Time
}

// Finish values for price variants.
const (
	FinishNormal      = "NORMAL"
	FinishHolofoil    = "HOLOFOIL"
	FinishReverseHolo = "REVERSE_HOLO"
)

// ConditionNearMint is the only condition the upstream feed reports.
const ConditionNearMint = "NEAR_MINT"

// Run represents a single run-to-completion invocation of an import job.
type Run struct {
	ID           uuid.UUID
	JobName      string
	Status       RunStatus
	StartedAt    *time.Time
	FinishedAt   *time.Time
	ExitCode     *int
	ErrorMessage *string
	CreatedAt    time.Time
}

// RunStatus represents the state of a run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunLog is a persisted chunk of log output from a run.
type RunLog struct {
	ID        int64
	RunID     uuid.UUID
	Content   string
	CreatedAt time.Time
}
