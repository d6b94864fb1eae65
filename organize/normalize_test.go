package organize_test

import (
	"context"
	"testing"

	"github.com/gobeaver/shelfkit/classify"
	"github.com/gobeaver/shelfkit/driver/memory"
	"github.com/gobeaver/shelfkit/mover"
	"github.com/gobeaver/shelfkit/organize"
)

func TestNormalizerRun(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Put("library/STEMI_Guideline.pdf", []byte("g"))
	store.Put("library/untagged.pdf", []byte("u"))
	if err := store.SetTags(ctx, "library/STEMI_Guideline.pdf", map[string]string{
		classify.KeyYear:      "2019",
		classify.KeySourceOrg: "ACC",
	}); err != nil {
		t.Fatal(err)
	}

	n := &organize.Normalizer{
		Store:      store,
		Mover:      mover.New(store, false),
		Ledger:     newLedger(t),
		ScanPrefix: "library/",
	}

	summary, err := n.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Processed != 2 || summary.Failed != 0 {
		t.Fatalf("processed=%d failed=%d: %s", summary.Processed, summary.Failed, summary)
	}

	if !store.Exists("library/2019-acc-STEMI_Guideline.pdf") {
		t.Error("tagged object not renamed to its normalized form")
	}
	if store.Exists("library/STEMI_Guideline.pdf") {
		t.Error("original name left behind")
	}
	// Objects without tags stay put.
	if !store.Exists("library/untagged.pdf") {
		t.Error("untagged object was touched")
	}
	if summary.ByAction[mover.ActionSkip] != 1 {
		t.Errorf("skip actions = %d, want the untagged object skipped", summary.ByAction[mover.ActionSkip])
	}
}

func TestNormalizerDryRun(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Put("library/a.pdf", []byte("a"))
	if err := store.SetTags(ctx, "library/a.pdf", map[string]string{classify.KeyYear: "2020"}); err != nil {
		t.Fatal(err)
	}

	n := &organize.Normalizer{
		Store:      store,
		Mover:      mover.New(store, false),
		Ledger:     newLedger(t),
		ScanPrefix: "library/",
		DryRun:     true,
	}

	summary, err := n.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if summary.ByAction[mover.ActionDryRun] != 1 {
		t.Errorf("actions = %v, want one dry-run", summary.ByAction)
	}
	if !store.Exists("library/a.pdf") || store.Exists("library/2020-unknown-a.pdf") {
		t.Error("dry run changed the store")
	}
}

func TestNormalizerIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Put("library/2019-acc-x.pdf", []byte("x"))
	if err := store.SetTags(ctx, "library/2019-acc-x.pdf", map[string]string{
		classify.KeyYear:      "2019",
		classify.KeySourceOrg: "acc",
	}); err != nil {
		t.Fatal(err)
	}

	n := &organize.Normalizer{
		Store:      store,
		Mover:      mover.New(store, false),
		Ledger:     newLedger(t),
		ScanPrefix: "library/",
	}

	summary, err := n.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if summary.ByAction[mover.ActionSkip] != 1 || summary.Failed != 0 {
		t.Errorf("re-run over a normalized name: %v, want a clean skip", summary.ByAction)
	}
}
