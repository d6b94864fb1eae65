package shelfkit

import (
	"context"
	"time"
)

// ObjectInfo describes one object in the backing store.
type ObjectInfo struct {
	Name         string
	Size         int64
	LastModified time.Time
}

// IsDirMarker reports whether the entry is a zero-byte virtual directory
// marker rather than real content. Flat-namespace stores emit these to
// simulate folders.
func (o ObjectInfo) IsDirMarker() bool {
	return o.Size == 0 && len(o.Name) > 0 && o.Name[len(o.Name)-1] == '/'
}

// ============================================================================
// Core Interfaces (Interface Segregation)
// ============================================================================

// ObjectLister provides read-only access to the store listing.
// Use this type in function signatures to enforce read-only at compile time.
type ObjectLister interface {
	// List walks every object whose name starts with prefix, calling fn for
	// each one. Listing order is backend-defined and not stable across runs.
	// Returning ErrStopList from fn stops the walk cleanly; any other error
	// aborts it and is returned to the caller.
	List(ctx context.Context, prefix string, fn func(ObjectInfo) error) error
}

// ObjectTagger reads and writes the index tags attached to an object.
type ObjectTagger interface {
	// GetTags returns the tags currently attached to the object.
	GetTags(ctx context.Context, name string) (map[string]string, error)

	// SetTags replaces the tags attached to the object.
	SetTags(ctx context.Context, name string, tags map[string]string) error
}

// ObjectStore is the full set of store primitives the pipeline consumes.
type ObjectStore interface {
	ObjectLister
	ObjectTagger

	// ReadPrefix reads at most maxBytes leading bytes of the object.
	// Used for bounded content previews only; object bodies are never
	// cached beyond this.
	ReadPrefix(ctx context.Context, name string, maxBytes int64) ([]byte, error)

	// Copy performs a server-side copy of src to dst. It returns only after
	// the copy has completed on the server; implementations backed by
	// asynchronous copy APIs must confirm completion before returning.
	Copy(ctx context.Context, src, dst string) error

	// Delete removes the object.
	Delete(ctx context.Context, name string) error

	// Checksum computes a content digest of the object using the given
	// algorithm. Returns the digest as a hex-encoded string.
	Checksum(ctx context.Context, name string, algorithm ChecksumAlgorithm) (string, error)
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================
// Stores may expose optional capabilities. Use type assertion to check:
//
//	if r, ok := store.(CanRename); ok {
//	    r.Rename(ctx, src, dst, false)
//	}

// Capabilities describes account-level features of the backing store.
type Capabilities struct {
	// SupportsAtomicRename is true when the store has hierarchical namespace
	// semantics: a metadata-preserving rename within one container with no
	// window where both, or neither, copy exists.
	SupportsAtomicRename bool
}

// CanProbe indicates the store can report its account-level capabilities.
type CanProbe interface {
	AccountCapabilities(ctx context.Context) (Capabilities, error)
}

// CanRename indicates the store supports atomic namespace renames.
// Only meaningful when AccountCapabilities reports SupportsAtomicRename.
type CanRename interface {
	// Rename atomically moves src to dst within the same container.
	Rename(ctx context.Context, src, dst string, overwrite bool) error

	// CreateDir creates a directory, including parents. Creating a
	// directory that already exists is not an error.
	CreateDir(ctx context.Context, path string) error
}
