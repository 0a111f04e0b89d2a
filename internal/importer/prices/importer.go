// Package prices refreshes card prices from the upstream feed for every
// known set, using a bounded pool of workers.
package prices

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cardbase/internal/pricefeed"
	"cardbase/internal/store"
)

// Feed fetches card price data from the upstream API.
type Feed interface {
	FetchAll(ctx context.Context, endpoint string) ([]pricefeed.Card, error)
}

// Store is the persistence surface the price importer needs.
type Store interface {
	BeginTx(ctx context.Context) (store.Tx, error)
	ListSetIDs(ctx context.Context) ([]string, error)
	FindCardIDByExternalID(ctx context.Context, tx store.DBTransaction, externalID string) (int64, bool, error)
	CurrentPrice(ctx context.Context, tx store.DBTransaction, cardID int64, finish, condition string) (*store.CardPrice, bool, error)
	InsertPricePoint(ctx context.Context, tx store.DBTransaction, point store.PricePoint) error
	UpsertPrice(ctx context.Context, tx store.DBTransaction, price store.CardPrice) error
	PruneHistory(ctx context.Context, cutoff time.Time) (int64, error)
}

// Options controls fetch parallelism, retry behaviour and history retention.
type Options struct {
	// Endpoint is the card query URL; a set filter is appended per set.
	Endpoint string

	// Workers is the number of sets fetched and imported concurrently.
	Workers int

	// MaxRetries is how many times a set fetch is attempted before the
	// set is counted as failed.
	MaxRetries int

	// RetryDelay is the pause between fetch attempts for the same set.
	RetryDelay time.Duration

	// Retention drops history rows older than this after the import.
	// Zero disables pruning.
	Retention time.Duration
}

// Importer drives a full price refresh across all sets.
type Importer struct {
	store Store
	feed  Feed
	log   *slog.Logger
	opts  Options
	now   func() time.Time
}

func New(s Store, feed Feed, log *slog.Logger, opts Options) *Importer {
	if opts.Workers <= 0 {
		opts.Workers = 3
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 10 * time.Second
	}
	return &Importer{store: s, feed: feed, log: log, opts: opts, now: time.Now}
}

// Run refreshes prices for every known set and prunes old history.
// It returns an error when one or more sets could not be imported.
func (i *Importer) Run(ctx context.Context) error {
	setIDs, err := i.store.ListSetIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sets: %w", err)
	}
	if len(setIDs) == 0 {
		i.log.Warn("no sets found, nothing to import")
		return nil
	}

	i.log.Info("starting price import", "sets", len(setIDs), "workers", i.opts.Workers)

	work := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed []string

	for w := 0; w < i.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for setID := range work {
				if err := i.importSet(ctx, setID); err != nil {
					i.log.Error("set price import failed", "set_id", setID, "error", err)
					mu.Lock()
					failed = append(failed, setID)
					mu.Unlock()
				}
			}
		}()
	}

	for _, setID := range setIDs {
		select {
		case work <- setID:
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return ctx.Err()
		}
	}
	close(work)
	wg.Wait()

	if i.opts.Retention > 0 {
		cutoff := i.now().Add(-i.opts.Retention)
		pruned, err := i.store.PruneHistory(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to prune price history: %w", err)
		}
		if pruned > 0 {
			i.log.Info("pruned price history", "rows", pruned, "cutoff", cutoff)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("price import failed for %d of %d sets: %s",
			len(failed), len(setIDs), strings.Join(failed, ", "))
	}

	i.log.Info("price import finished", "sets", len(setIDs))
	return nil
}

// importSet fetches the feed for one set, retrying transient failures,
// then writes each card's prices in its own transaction.
func (i *Importer) importSet(ctx context.Context, setID string) error {
	cards, err := i.fetchSet(ctx, setID)
	if err != nil {
		return err
	}

	i.log.Info("importing set prices", "set_id", setID, "cards", len(cards))

	for _, card := range cards {
		if card.TCGPlayer == nil {
			continue
		}
		if err := i.importCard(ctx, card); err != nil {
			return fmt.Errorf("card %s: %w", card.ID, err)
		}
	}
	return nil
}

func (i *Importer) fetchSet(ctx context.Context, setID string) ([]pricefeed.Card, error) {
	sep := "?"
	if strings.Contains(i.opts.Endpoint, "?") {
		sep = "&"
	}
	endpoint := fmt.Sprintf("%s%sq=set.id:%s", i.opts.Endpoint, sep, setID)

	var lastErr error
	for attempt := 1; attempt <= i.opts.MaxRetries; attempt++ {
		cards, err := i.feed.FetchAll(ctx, endpoint)
		if err == nil {
			return cards, nil
		}
		lastErr = err
		i.log.Warn("feed fetch failed", "set_id", setID, "attempt", attempt, "error", err)

		if attempt < i.opts.MaxRetries {
			select {
			case <-time.After(i.opts.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("fetch failed after %d attempts: %w", i.opts.MaxRetries, lastErr)
}

// feedDateLayout is the date format of the feed's tcgplayer updatedAt field.
const feedDateLayout = "2006/01/02"

// importCard writes the current price for each finish variant of a card.
// Prices are stamped with the feed's own updatedAt date, and a history
// point is recorded only when the feed publishes a new date for a variant
// that already has a stored price. Re-running the import against an
// unchanged feed is therefore a no-op for history.
func (i *Importer) importCard(ctx context.Context, card pricefeed.Card) error {
	tx, err := i.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cardID, found, err := i.store.FindCardIDByExternalID(ctx, tx, card.ID)
	if err != nil {
		return err
	}
	if !found {
		i.log.Debug("card not in database, skipping", "external_id", card.ID)
		return nil
	}

	feedDate, err := time.Parse(feedDateLayout, card.TCGPlayer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invalid feed timestamp %q: %w", card.TCGPlayer.UpdatedAt, err)
	}

	for variant, quote := range card.TCGPlayer.Prices {
		finish, ok := finishForVariant(variant)
		if !ok {
			continue
		}

		newPrice := quote.Best()

		current, exists, err := i.store.CurrentPrice(ctx, tx, cardID, finish, store.ConditionNearMint)
		if err != nil && err != sql.ErrNoRows {
			return err
		}

		if exists && newPrice != nil && !current.UpdatedAt.Equal(feedDate) {
			point := store.PricePoint{
				CardID:     cardID,
				Finish:     finish,
				Condition:  store.ConditionNearMint,
				Price:      *newPrice,
				RecordedAt: feedDate,
			}
			if err := i.store.InsertPricePoint(ctx, tx, point); err != nil {
				return err
			}
		}

		price := store.CardPrice{
			CardID:    cardID,
			Finish:    finish,
			Condition: store.ConditionNearMint,
			Price:     newPrice,
			UpdatedAt: feedDate,
		}
		if err := i.store.UpsertPrice(ctx, tx, price); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// finishForVariant maps a feed variant key to a stored finish. Variants
// outside the three tracked finishes are ignored.
func finishForVariant(variant string) (string, bool) {
	switch variant {
	case "normal":
		return store.FinishNormal, true
	case "holofoil":
		return store.FinishHolofoil, true
	case "reverseHolofoil":
		return store.FinishReverseHolo, true
	default:
		return "", false
	}
}
