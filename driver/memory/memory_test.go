package memory

import (
	"context"
	"testing"

	"github.com/gobeaver/shelfkit"
)

func TestListSortedWithPrefix(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Put("incoming/b.pdf", []byte("b"))
	s.Put("incoming/a.pdf", []byte("a"))
	s.Put("archive/z.pdf", []byte("z"))

	var names []string
	err := s.List(ctx, "incoming/", func(info shelfkit.ObjectInfo) error {
		names = append(names, info.Name)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "incoming/a.pdf" || names[1] != "incoming/b.pdf" {
		t.Errorf("got %v, want the incoming objects in sorted order", names)
	}
}

func TestListStopsCleanly(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Put("a", nil)
	s.Put("b", nil)

	count := 0
	err := s.List(ctx, "", func(info shelfkit.ObjectInfo) error {
		count++
		return shelfkit.ErrStopList
	})
	if err != nil {
		t.Errorf("ErrStopList surfaced to the caller: %v", err)
	}
	if count != 1 {
		t.Errorf("callback ran %d times after stop, want 1", count)
	}
}

func TestReadPrefixBounds(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Put("doc", []byte("0123456789"))

	data, err := s.ReadPrefix(ctx, "doc", 4)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "0123" {
		t.Errorf("ReadPrefix = %q, want the leading 4 bytes", data)
	}

	data, err = s.ReadPrefix(ctx, "doc", 100)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "0123456789" {
		t.Errorf("ReadPrefix past the end = %q, want everything", data)
	}

	if _, err := s.ReadPrefix(ctx, "missing", 4); !shelfkit.IsNotExist(err) {
		t.Errorf("ReadPrefix on a missing object: %v", err)
	}
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Put("doc", []byte("x"))

	want := map[string]string{"docType": "notes", "year": "2020"}
	if err := s.SetTags(ctx, "doc", want); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetTags(ctx, "doc")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["docType"] != "notes" || got["year"] != "2020" {
		t.Errorf("GetTags = %v, want %v", got, want)
	}

	// The returned map is a copy, not a live view.
	got["docType"] = "mutated"
	again, _ := s.GetTags(ctx, "doc")
	if again["docType"] != "notes" {
		t.Error("GetTags returned a live reference to internal state")
	}

	if err := s.SetTags(ctx, "missing", want); !shelfkit.IsNotExist(err) {
		t.Errorf("SetTags on a missing object: %v", err)
	}
}

func TestCopyDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Put("src", []byte("payload"))
	_ = s.SetTags(ctx, "src", map[string]string{"k": "v"})

	if err := s.Copy(ctx, "src", "dst"); err != nil {
		t.Fatal(err)
	}
	data, ok := s.Data("dst")
	if !ok || string(data) != "payload" {
		t.Errorf("copy content = %q, %v", data, ok)
	}
	tags, _ := s.GetTags(ctx, "dst")
	if tags["k"] != "v" {
		t.Errorf("copy dropped tags: %v", tags)
	}

	if err := s.Delete(ctx, "src"); err != nil {
		t.Fatal(err)
	}
	if s.Exists("src") {
		t.Error("source still present after delete")
	}
	if err := s.Delete(ctx, "src"); !shelfkit.IsNotExist(err) {
		t.Errorf("double delete: %v", err)
	}
}

func TestRenameRequiresAtomicNamespace(t *testing.T) {
	ctx := context.Background()

	flat := New()
	flat.Put("src", []byte("x"))
	if err := flat.Rename(ctx, "src", "dst", false); err == nil {
		t.Error("rename succeeded on a flat-namespace store")
	}

	hier := New(Config{AtomicRename: true})
	hier.Put("src", []byte("x"))
	if err := hier.Rename(ctx, "src", "dst", false); err != nil {
		t.Fatal(err)
	}
	if hier.Exists("src") || !hier.Exists("dst") {
		t.Error("rename did not move the object")
	}

	hier.Put("src2", []byte("y"))
	if err := hier.Rename(ctx, "src2", "dst", false); !shelfkit.IsExist(err) {
		t.Errorf("rename onto an existing object without overwrite: %v", err)
	}
	if err := hier.Rename(ctx, "src2", "dst", true); err != nil {
		t.Errorf("overwrite rename: %v", err)
	}

	caps, err := hier.AccountCapabilities(ctx)
	if err != nil || !caps.SupportsAtomicRename {
		t.Errorf("capabilities = %+v, %v", caps, err)
	}
}

func TestChecksum(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Put("doc", []byte("hello world"))

	sum, err := s.Checksum(ctx, "doc", shelfkit.ChecksumSHA256)
	if err != nil {
		t.Fatal(err)
	}
	if sum != "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" {
		t.Errorf("sha256 = %s", sum)
	}

	if _, err := s.Checksum(ctx, "missing", shelfkit.ChecksumSHA256); !shelfkit.IsNotExist(err) {
		t.Errorf("checksum on a missing object: %v", err)
	}
}
