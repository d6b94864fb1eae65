// Package shelfkit classifies unsorted documents in a remote object store and
// safely reorganizes them into a canonical folder taxonomy, attaching index
// tags as it goes. No file is lost, silently corrupted, or duplicated during
// the move.
//
// The pipeline is a batch job: list the scan prefix, classify each item from
// its filename (plus an optional bounded content preview), resolve a
// deterministic destination path, relocate the item, and append the outcome
// to an audit ledger. Relocation uses one of two strategies decided once per
// run: an atomic namespace rename when the store has hierarchical namespace
// semantics, or a checksum-verified copy-then-delete otherwise.
//
// # Storage Backends
//
// Stores implement the [ObjectStore] interface. Three drivers ship with
// shelfkit:
//
//   - Azure Blob Storage / ADLS Gen2 (github.com/gobeaver/shelfkit/driver/azure)
//   - S3-compatible stores (github.com/gobeaver/shelfkit/driver/s3)
//   - In-memory (github.com/gobeaver/shelfkit/driver/memory)
//
// Optional capabilities such as atomic rename are exposed through capability
// interfaces ([CanRename], [CanProbe]) checked by type assertion.
//
// # Basic Usage
//
//	store, err := shelfkit.CreateStore(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p := &organize.Pipeline{
//	    Store:    store,
//	    Engine:   classify.NewEngine(),
//	    Resolver: taxonomy.Resolver{Root: "education"},
//	    Mover:    mover.New(store, mover.Probe(ctx, store)),
//	    Ledger:   ledger,
//	    DryRun:   true,
//	}
//	summary, err := p.Run(ctx)
//
// Dry run is the default everywhere; live changes are opt-in.
package shelfkit
