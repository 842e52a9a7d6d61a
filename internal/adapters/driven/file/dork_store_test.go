package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
)

func storeAt(t *testing.T) (*DorkStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dorks.json")
	return NewDorkStore(path), path
}

func TestLoadAbsentFileSeedsDefaults(t *testing.T) {
	store, path := storeAt(t)
	ctx := context.Background()

	cats, profiles, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("expected default categories")
	}
	if len(profiles) != 0 {
		t.Errorf("expected no profiles, got %d", len(profiles))
	}

	// defaults must now be on disk
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected defaults persisted: %v", err)
	}
}

func TestLoadMalformedFileSeedsDefaults(t *testing.T) {
	store, path := storeAt(t)
	if err := os.WriteFile(path, []byte(`{"categories": [not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	cats, _, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("expected default categories after malformed file")
	}
}

func TestLoadEmptyFileSeedsDefaults(t *testing.T) {
	store, path := storeAt(t)
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cats, _, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("expected default categories after empty file")
	}
}

func TestRoundTripPreservesOrderAndTooltips(t *testing.T) {
	store, _ := storeAt(t)
	ctx := context.Background()

	cats := []*domain.Category{
		domain.NewCategory("zeta", "Zeta"),
		domain.NewCategory("alpha", "Alpha"),
		domain.NewCategory("mid", "Mid"),
	}
	cats[0].Items = []string{"site:{domain}", "inurl:admin"}
	cats[0].Tooltips = map[string]string{"site:{domain}": "scope to one host"}
	cats[1].Items = []string{"ext:pdf"}

	if err := store.SaveCategories(ctx, cats); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, _, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(loaded))
	}
	// display order is not alphabetical; it must match the saved slice
	for i, want := range []string{"zeta", "alpha", "mid"} {
		if loaded[i].Key != want {
			t.Errorf("category %d: expected key %q, got %q", i, want, loaded[i].Key)
		}
	}
	if loaded[0].Items[0] != "site:{domain}" {
		t.Errorf("unexpected first item: %q", loaded[0].Items[0])
	}
	if loaded[0].Tooltips["site:{domain}"] != "scope to one host" {
		t.Error("tooltip did not survive the round trip")
	}
	if loaded[1].Label != "Alpha" {
		t.Errorf("unexpected label: %q", loaded[1].Label)
	}
}

func TestLegacyFlatShapeIsReadable(t *testing.T) {
	store, path := storeAt(t)
	legacy := `{"files": ["ext:pdf", "ext:docx"], "login pages": ["inurl:login"]}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	cats, profiles, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[0].Key != "files" || cats[1].Key != "login pages" {
		t.Errorf("unexpected order: %q, %q", cats[0].Key, cats[1].Key)
	}
	if cats[0].Label != "Files" {
		t.Errorf("expected capitalized label, got %q", cats[0].Label)
	}
	if cats[1].Label != "Login pages" {
		t.Errorf("expected capitalized label, got %q", cats[1].Label)
	}
	if len(cats[0].Items) != 2 || cats[0].Items[1] != "ext:docx" {
		t.Errorf("unexpected items: %v", cats[0].Items)
	}
	if len(profiles) != 0 {
		t.Errorf("legacy shape has no profiles, got %d", len(profiles))
	}
}

func TestLegacyFileNotRewrittenOnLoad(t *testing.T) {
	store, path := storeAt(t)
	legacy := `{"files": ["ext:pdf"]}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != legacy {
		t.Error("load must not rewrite a legacy file")
	}
}

func TestProfilePersistence(t *testing.T) {
	store, _ := storeAt(t)
	ctx := context.Background()

	cats := []*domain.Category{domain.NewCategory("files", "Files")}
	cats[0].Items = []string{"ext:pdf", "ext:docx", "ext:xlsx"}
	if err := store.SaveCategories(ctx, cats); err != nil {
		t.Fatal(err)
	}

	profile := &domain.Profile{
		Name:       "pdf hunt",
		Category:   "files",
		Checked:    []int{0, 2},
		NotIndices: []int{1},
		OrGroups:   [][]int{{0, 2}},
		Vars:       map[string]string{"domain": "example.com"},
	}
	if err := store.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("save profile failed: %v", err)
	}

	_, profiles, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := profiles["pdf hunt"]
	if !ok {
		t.Fatal("profile missing after reload")
	}
	if got.Name != "pdf hunt" || got.Category != "files" {
		t.Errorf("unexpected profile identity: %+v", got)
	}
	if len(got.Checked) != 2 || got.Checked[1] != 2 {
		t.Errorf("unexpected checked: %v", got.Checked)
	}
	if len(got.OrGroups) != 1 || len(got.OrGroups[0]) != 2 {
		t.Errorf("unexpected groups: %v", got.OrGroups)
	}
	if got.Vars["domain"] != "example.com" {
		t.Errorf("unexpected vars: %v", got.Vars)
	}

	if err := store.DeleteProfile(ctx, "pdf hunt"); err != nil {
		t.Fatalf("delete profile failed: %v", err)
	}
	_, profiles, err = store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := profiles["pdf hunt"]; ok {
		t.Error("profile still present after delete")
	}
}

func TestDeleteUnknownProfileIsNoop(t *testing.T) {
	store, _ := storeAt(t)
	ctx := context.Background()

	if _, _, err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteProfile(ctx, "never saved"); err != nil {
		t.Errorf("expected no-op, got %v", err)
	}
}

func TestSaveCategoriesKeepsProfiles(t *testing.T) {
	store, _ := storeAt(t)
	ctx := context.Background()

	cats := []*domain.Category{domain.NewCategory("files", "Files")}
	cats[0].Items = []string{"ext:pdf"}
	if err := store.SaveCategories(ctx, cats); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveProfile(ctx, &domain.Profile{Name: "keep me", Category: "files"}); err != nil {
		t.Fatal(err)
	}

	cats = append(cats, domain.NewCategory("content", "Content"))
	if err := store.SaveCategories(ctx, cats); err != nil {
		t.Fatal(err)
	}

	_, profiles, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := profiles["keep me"]; !ok {
		t.Error("saving categories dropped an existing profile")
	}
}
