package runner

import "testing"

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	jobs := []Descriptor{
		{Name: JobImportSets, Script: "src/import_sets.py", Activation: ActivationManual},
		{Name: JobImportCards, Script: "src/import_cards.py", Activation: ActivationManual},
		{Name: JobImportPrices, Script: "src/run_price_imports.py", Activation: ActivationScheduled},
	}
	for _, d := range jobs {
		if err := r.Register(d); err != nil {
			t.Fatalf("Register(%s) failed: %v", d.Name, err)
		}
	}

	got, ok := r.Lookup(JobImportPrices)
	if !ok {
		t.Fatal("expected to find import-prices")
	}
	if got.Activation != ActivationScheduled {
		t.Errorf("import-prices activation = %q, want scheduled", got.Activation)
	}

	if _, ok := r.Lookup("import-nothing"); ok {
		t.Error("lookup of unknown job should fail")
	}

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("List returned %d jobs, want 3", len(list))
	}
	for i, d := range list {
		if d.Name != jobs[i].Name {
			t.Errorf("List[%d] = %s, want %s (registration order)", i, d.Name, jobs[i].Name)
		}
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Descriptor{Name: JobImportSets}); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register(Descriptor{Name: JobImportSets}); err == nil {
		t.Error("expected error on duplicate registration")
	}
	if err := r.Register(Descriptor{}); err == nil {
		t.Error("expected error on empty name")
	}
}
