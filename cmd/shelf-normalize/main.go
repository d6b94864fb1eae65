// Command shelf-normalize renames already-tagged objects in place to the
// self-describing {year}-{source_org}-{basename} form derived from their
// stored tags. It classifies nothing and never crosses directories. Runs are
// dry by default; pass -dry-run=false to apply changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gobeaver/shelfkit"
	"github.com/gobeaver/shelfkit/audit"
	"github.com/gobeaver/shelfkit/mover"
	"github.com/gobeaver/shelfkit/organize"

	_ "github.com/gobeaver/shelfkit/driver/azure"
	_ "github.com/gobeaver/shelfkit/driver/memory"
	_ "github.com/gobeaver/shelfkit/driver/s3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dryRun    = flag.Bool("dry-run", true, "report what would happen without changing the store")
		overwrite = flag.Bool("overwrite", false, "allow renames onto existing destinations")
		prefix    = flag.String("prefix", "", "scan prefix (overrides SHELFKIT_SCAN_PREFIX)")
		maxItems  = flag.Int("max-items", 0, "stop after processing this many items (0 = all)")
		auditPath = flag.String("audit", "", "audit ledger path (default: per-run file in the working directory)")
	)
	flag.Parse()

	cfg, err := shelfkit.GetConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *prefix != "" {
		cfg.ScanPrefix = *prefix
	}

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := shelfkit.CreateStore(cfg)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	atomic := mover.Probe(ctx, store)
	log.Info("store ready", "driver", cfg.Driver, "container", cfg.Container, "atomic_rename", atomic)

	ledger, err := audit.NewLedger(*auditPath)
	if err != nil {
		return err
	}
	defer ledger.Close()
	log.Info("audit ledger opened", "path", ledger.Path(), "run_id", ledger.RunID())

	normalizer := &organize.Normalizer{
		Store:      store,
		Mover:      mover.New(store, atomic, mover.WithChecksum(shelfkit.ChecksumAlgorithm(cfg.Checksum))),
		Ledger:     ledger,
		Log:        log,
		ScanPrefix: cfg.ScanPrefix,
		MaxItems:   *maxItems,
		DryRun:     *dryRun,
		Overwrite:  *overwrite,
	}

	summary, err := normalizer.Run(ctx)
	if summary != nil {
		fmt.Println(summary.String())
	}
	if err != nil {
		log.Error("run aborted", "error", err, "audit", ledger.Path())
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
