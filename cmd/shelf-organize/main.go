// Command shelf-organize scans a prefix of the document store, classifies
// each file by its clinical tag schema, and relocates it to its canonical
// taxonomy location. Runs are dry by default; pass -dry-run=false to apply
// changes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gobwas/glob"
	"golang.org/x/time/rate"

	"github.com/gobeaver/shelfkit"
	"github.com/gobeaver/shelfkit/audit"
	"github.com/gobeaver/shelfkit/classify"
	"github.com/gobeaver/shelfkit/mover"
	"github.com/gobeaver/shelfkit/organize"
	"github.com/gobeaver/shelfkit/taxonomy"

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
		tagOnly   = flag.Bool("tag-only", false, "set classification tags in place without moving anything")
		overwrite = flag.Bool("overwrite", false, "allow renames onto existing destinations")
		prefix    = flag.String("prefix", "", "scan prefix (overrides SHELFKIT_SCAN_PREFIX)")
		include   = flag.String("include", "", "only process object names matching this glob")
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
	log.Info("store ready",
		"driver", cfg.Driver,
		"container", cfg.Container,
		"atomic_rename", atomic,
	)

	ledger, err := audit.NewLedger(*auditPath)
	if err != nil {
		return err
	}
	defer ledger.Close()
	log.Info("audit ledger opened", "path", ledger.Path(), "run_id", ledger.RunID())

	var includeGlob glob.Glob
	if *include != "" {
		includeGlob, err = glob.Compile(*include)
		if err != nil {
			return fmt.Errorf("invalid include glob: %w", err)
		}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	pipeline := &organize.Pipeline{
		Store:        store,
		Engine:       newEngine(cfg, log),
		Resolver:     taxonomy.Resolver{Root: cfg.TaxonomyRoot},
		Mover:        mover.New(store, atomic, mover.WithChecksum(shelfkit.ChecksumAlgorithm(cfg.Checksum))),
		Ledger:       ledger,
		Log:          log,
		ScanPrefix:   cfg.ScanPrefix,
		MaxItems:     *maxItems,
		Include:      includeGlob,
		Limiter:      limiter,
		PreviewBytes: cfg.PreviewBytes,
		DryRun:       *dryRun,
		TagOnly:      *tagOnly,
		Overwrite:    *overwrite,
	}

	summary, err := pipeline.Run(ctx)
	if summary != nil {
		fmt.Println(summary.String())
	}
	if err != nil {
		// The run aborted mid-scan; everything processed so far is in the
		// ledger and stays done.
		log.Error("run aborted", "error", err, "audit", ledger.Path())
		return nil
	}

	if !*dryRun && !*tagOnly {
		placement, perr := organize.CountPlacement(ctx, store, cfg.TaxonomyRoot)
		if perr != nil {
			log.Warn("placement check failed", "error", perr)
		} else {
			fmt.Println(placement.String())
		}
	}
	return nil
}

// newEngine wires the keyword classifier with whichever enrichment providers
// are configured. Missing provider config just means heuristics only.
func newEngine(cfg *shelfkit.Config, log *slog.Logger) *classify.Engine {
	enrichers := []classify.Enricher{
		classify.NewPDFTextEnricher(classify.DefaultRules()),
	}
	if ai, ok := classify.NewOpenAIEnricher(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel); ok {
		enrichers = append(enrichers, ai)
	}
	return classify.NewEngine(
		classify.WithEnrichers(enrichers...),
		classify.WithLogger(log),
	)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
