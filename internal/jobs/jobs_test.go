package jobs

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cardbase/internal/config"
	"cardbase/internal/runner"
	"cardbase/internal/store"
)

type stubStore struct{}

func (stubStore) BeginTx(ctx context.Context) (store.Tx, error) { return nil, nil }
func (stubStore) UpsertSet(ctx context.Context, tx store.DBTransaction, set *store.Set) error {
	return nil
}
func (stubStore) SyncLegalities(ctx context.Context, tx store.DBTransaction, legalities []store.SetLegality) error {
	return nil
}
func (stubStore) SyncImages(ctx context.Context, tx store.DBTransaction, images []store.SetImage) error {
	return nil
}
func (stubStore) GetSet(ctx context.Context, tx store.DBTransaction, id string) (*store.Set, error) {
	return nil, sql.ErrNoRows
}
func (stubStore) ListSetIDs(ctx context.Context) ([]string, error) { return nil, nil }
func (stubStore) IsModernSet(ctx context.Context, tx store.DBTransaction, id string) (bool, error) {
	return false, nil
}
func (stubStore) FindCardID(ctx context.Context, tx store.DBTransaction, externalID, setID string) (int64, bool, error) {
	return 0, false, nil
}
func (stubStore) FindCardIDByExternalID(ctx context.Context, tx store.DBTransaction, externalID string) (int64, bool, error) {
	return 0, false, nil
}
func (stubStore) InsertCard(ctx context.Context, tx store.DBTransaction, card *store.Card) (int64, error) {
	return 0, nil
}
func (stubStore) UpdateCard(ctx context.Context, tx store.DBTransaction, cardID int64, card *store.Card) error {
	return nil
}
func (stubStore) UpsertPokemonDetails(ctx context.Context, tx store.DBTransaction, cardID int64, details *store.PokemonDetails) (int64, error) {
	return 0, nil
}
func (stubStore) SyncAttacks(ctx context.Context, tx store.DBTransaction, detailsID int64, attacks []store.Attack) error {
	return nil
}
func (stubStore) SyncAbilities(ctx context.Context, tx store.DBTransaction, detailsID int64, abilities []store.Ability) error {
	return nil
}
func (stubStore) SyncTypes(ctx context.Context, tx store.DBTransaction, detailsID int64, types []string) error {
	return nil
}
func (stubStore) SyncSubtypes(ctx context.Context, tx store.DBTransaction, cardID int64, subtypes []string) error {
	return nil
}
func (stubStore) SyncCardImages(ctx context.Context, tx store.DBTransaction, cardID int64, images map[string]string) error {
	return nil
}
func (stubStore) SyncRules(ctx context.Context, tx store.DBTransaction, cardID int64, rules []string) error {
	return nil
}
func (stubStore) CurrentPrice(ctx context.Context, tx store.DBTransaction, cardID int64, finish, condition string) (*store.CardPrice, bool, error) {
	return nil, false, nil
}
func (stubStore) InsertPricePoint(ctx context.Context, tx store.DBTransaction, point store.PricePoint) error {
	return nil
}
func (stubStore) UpsertPrice(ctx context.Context, tx store.DBTransaction, price store.CardPrice) error {
	return nil
}
func (stubStore) PruneHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestNewRegistry(t *testing.T) {
	cfg := &config.Config{
		DataDir:         "./data",
		PriceAPIURL:     "https://feed.example.com/v2/cards?select=id",
		PriceWorkers:    3,
		PriceMaxRetries: 3,
		PriceRetryDelay: time.Second,
	}

	reg, err := NewRegistry(stubStore{}, cfg, "/etc/cardbase/jobs.env")
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	want := []struct {
		name       string
		script     string
		activation runner.Activation
	}{
		{runner.JobImportSets, "src/import_sets.py", runner.ActivationManual},
		{runner.JobImportCards, "src/import_cards.py", runner.ActivationManual},
		{runner.JobImportPrices, "src/run_price_imports.py", runner.ActivationScheduled},
	}

	list := reg.List()
	if len(list) != len(want) {
		t.Fatalf("registry has %d jobs, want %d", len(list), len(want))
	}
	for i, w := range want {
		d := list[i]
		if d.Name != w.name || d.Script != w.script || d.Activation != w.activation {
			t.Errorf("job %d = {%s %s %s}, want {%s %s %s}",
				i, d.Name, d.Script, d.Activation, w.name, w.script, w.activation)
		}
		if d.EnvFile != "/etc/cardbase/jobs.env" {
			t.Errorf("job %s env file = %q", d.Name, d.EnvFile)
		}
		if d.Task == nil {
			t.Errorf("job %s has no native implementation", d.Name)
		}
	}
}
