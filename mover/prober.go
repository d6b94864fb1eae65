// Package mover relocates classified objects safely. A capability probe run
// once per run picks between two strategies: an atomic namespace rename when
// the store's hierarchical namespace allows it, or a checksum-verified
// copy-then-delete otherwise.
package mover

import (
	"context"

	"github.com/gobeaver/shelfkit"
)

// Probe asks the store once whether atomic, metadata-preserving rename is
// available. It never fails: any probe error means "no atomic rename", which
// falls back to the conservative copy-then-delete strategy. A wrong "rename
// available" answer risks a lost file; a wrong "unavailable" answer only
// costs copy bandwidth.
func Probe(ctx context.Context, store shelfkit.ObjectStore) bool {
	prober, ok := store.(shelfkit.CanProbe)
	if !ok {
		return false
	}
	if _, ok := store.(shelfkit.CanRename); !ok {
		return false
	}

	caps, err := prober.AccountCapabilities(ctx)
	if err != nil {
		return false
	}
	return caps.SupportsAtomicRename
}
