package mover_test

import (
	"context"
	"testing"

	"github.com/gobeaver/shelfkit"
	"github.com/gobeaver/shelfkit/driver/memory"
	"github.com/gobeaver/shelfkit/mover"
)

func TestMoveSkipsAlreadyPlaced(t *testing.T) {
	store := memory.New()
	store.Put("education/guideline/x.pdf", []byte("data"))
	m := mover.New(store, false)

	out := m.Move(context.Background(), "education/guideline/x.pdf", "education/guideline/x.pdf", nil)
	if out.Action != mover.ActionSkip || out.Reason != mover.ReasonAlreadyNormalized {
		t.Errorf("got action=%q reason=%q, want skip/already_normalized", out.Action, out.Reason)
	}
	if !out.OK() {
		t.Error("idempotent skip should not be an error")
	}
}

func TestMoveDryRun(t *testing.T) {
	tests := []struct {
		name       string
		atomic     bool
		tagOnly    bool
		wantReason string
	}{
		{"copy+delete store", false, false, "would_copy+delete"},
		{"atomic store", true, false, "would_rename"},
		{"tag only", false, true, "would_tag-only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New(memory.Config{AtomicRename: tt.atomic})
			store.Put("incoming/a.pdf", []byte("data"))
			m := mover.New(store, tt.atomic)

			out := m.Move(context.Background(), "incoming/a.pdf", "education/a.pdf",
				map[string]string{"docType": "notes"},
				mover.WithDryRun(true), mover.WithTagOnly(tt.tagOnly))

			if out.Action != mover.ActionDryRun || out.Reason != tt.wantReason {
				t.Errorf("got action=%q reason=%q, want dry-run/%s", out.Action, out.Reason, tt.wantReason)
			}
			if !store.Exists("incoming/a.pdf") || store.Exists("education/a.pdf") {
				t.Error("dry run changed the store")
			}
			tags, _ := store.GetTags(context.Background(), "incoming/a.pdf")
			if len(tags) != 0 {
				t.Error("dry run wrote tags")
			}
		})
	}
}

func TestMoveTagOnly(t *testing.T) {
	store := memory.New()
	store.Put("incoming/a.pdf", []byte("data"))
	m := mover.New(store, false)

	out := m.Move(context.Background(), "incoming/a.pdf", "education/a.pdf",
		map[string]string{"docType": "guideline"}, mover.WithTagOnly(true))

	if out.Action != mover.ActionTagOnly || !out.OK() {
		t.Fatalf("got action=%q err=%v", out.Action, out.Err)
	}
	if out.Destination != "incoming/a.pdf" {
		t.Errorf("tag-only destination = %q, want the source path", out.Destination)
	}
	if store.Exists("education/a.pdf") {
		t.Error("tag-only moved the object")
	}
	tags, err := store.GetTags(context.Background(), "incoming/a.pdf")
	if err != nil || tags["docType"] != "guideline" {
		t.Errorf("tags not written in place: %v, %v", tags, err)
	}
}

func TestMoveTagOnlyWithoutTags(t *testing.T) {
	store := memory.New()
	store.Put("incoming/a.pdf", []byte("data"))
	m := mover.New(store, false)

	out := m.Move(context.Background(), "incoming/a.pdf", "education/a.pdf", nil,
		mover.WithTagOnly(true))
	if out.Action != mover.ActionSkip || out.Reason != mover.ReasonNoTags {
		t.Errorf("got action=%q reason=%q, want skip/no_tags", out.Action, out.Reason)
	}
}

func TestMoveRename(t *testing.T) {
	store := memory.New(memory.Config{AtomicRename: true})
	store.Put("incoming/a.pdf", []byte("data"))
	m := mover.New(store, true)

	tags := map[string]string{"docType": "guideline", "needs_review": "no"}
	out := m.Move(context.Background(), "incoming/a.pdf", "education/guideline/a.pdf", tags)

	if out.Action != mover.ActionRename || !out.OK() {
		t.Fatalf("got action=%q err=%v", out.Action, out.Err)
	}
	if store.Exists("incoming/a.pdf") {
		t.Error("source still present after rename")
	}
	data, ok := store.Data("education/guideline/a.pdf")
	if !ok || string(data) != "data" {
		t.Errorf("destination content = %q, %v", data, ok)
	}
	got, _ := store.GetTags(context.Background(), "education/guideline/a.pdf")
	if got["docType"] != "guideline" {
		t.Errorf("tags not attached at destination: %v", got)
	}
}

func TestMoveRenameDestinationExists(t *testing.T) {
	store := memory.New(memory.Config{AtomicRename: true})
	store.Put("incoming/a.pdf", []byte("new"))
	store.Put("education/a.pdf", []byte("old"))
	m := mover.New(store, true)

	out := m.Move(context.Background(), "incoming/a.pdf", "education/a.pdf", nil)
	if out.OK() || out.Reason != mover.ReasonRenameFailed {
		t.Fatalf("got reason=%q err=%v, want a rename failure", out.Reason, out.Err)
	}
	if data, _ := store.Data("education/a.pdf"); string(data) != "old" {
		t.Error("existing destination was overwritten without the overwrite option")
	}

	out = m.Move(context.Background(), "incoming/a.pdf", "education/a.pdf", nil,
		mover.WithOverwrite(true))
	if !out.OK() {
		t.Fatalf("overwrite rename failed: %v", out.Err)
	}
	if data, _ := store.Data("education/a.pdf"); string(data) != "new" {
		t.Error("overwrite rename did not replace the destination")
	}
}

func TestMoveCopyDelete(t *testing.T) {
	store := memory.New()
	store.Put("incoming/a.pdf", []byte("payload"))
	m := mover.New(store, false)

	tags := map[string]string{"docType": "notes"}
	out := m.Move(context.Background(), "incoming/a.pdf", "education/notes/a.pdf", tags)

	if out.Action != mover.ActionCopyDelete || !out.OK() {
		t.Fatalf("got action=%q err=%v", out.Action, out.Err)
	}
	if store.Exists("incoming/a.pdf") {
		t.Error("source still present after verified copy")
	}
	data, ok := store.Data("education/notes/a.pdf")
	if !ok || string(data) != "payload" {
		t.Errorf("destination content = %q, %v", data, ok)
	}
	got, _ := store.GetTags(context.Background(), "education/notes/a.pdf")
	if got["docType"] != "notes" {
		t.Errorf("tags not attached at destination: %v", got)
	}
}

// corruptingStore corrupts every copy it makes, so checksum verification has
// something to catch.
type corruptingStore struct {
	*memory.Store
}

func (c *corruptingStore) Copy(ctx context.Context, src, dst string) error {
	if err := c.Store.Copy(ctx, src, dst); err != nil {
		return err
	}
	c.Store.Put(dst, []byte("corrupted"))
	return nil
}

func TestMoveCopyDeleteChecksumMismatch(t *testing.T) {
	store := &corruptingStore{Store: memory.New()}
	store.Put("incoming/a.pdf", []byte("payload"))
	m := mover.New(store, false)

	out := m.Move(context.Background(), "incoming/a.pdf", "education/a.pdf", nil)

	if out.OK() || out.Reason != mover.ReasonChecksumMismatch {
		t.Fatalf("got reason=%q err=%v, want checksum_mismatch", out.Reason, out.Err)
	}
	if !shelfkit.IsChecksumMismatch(out.Err) {
		t.Errorf("error does not unwrap to the mismatch sentinel: %v", out.Err)
	}
	// The source must survive a failed verification untouched, and the bad
	// copy must be cleaned up.
	data, ok := store.Data("incoming/a.pdf")
	if !ok || string(data) != "payload" {
		t.Errorf("source damaged after mismatch: %q, %v", data, ok)
	}
	if store.Exists("education/a.pdf") {
		t.Error("corrupt destination copy not removed")
	}
}

func TestMoveMissingSource(t *testing.T) {
	store := memory.New()
	m := mover.New(store, false)

	out := m.Move(context.Background(), "incoming/gone.pdf", "education/gone.pdf", nil)
	if out.OK() || out.Reason != mover.ReasonNotFound {
		t.Errorf("got reason=%q err=%v, want blob_not_found", out.Reason, out.Err)
	}
}

func TestProbe(t *testing.T) {
	ctx := context.Background()

	if !mover.Probe(ctx, memory.New(memory.Config{AtomicRename: true})) {
		t.Error("Probe = false for a store with atomic rename")
	}
	if mover.Probe(ctx, memory.New()) {
		t.Error("Probe = true for a flat-namespace store")
	}
}
