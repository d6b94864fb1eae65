// Command shelf-review exports a CSV inventory of objects whose tags match a
// filter, for triaging items the classifier quarantined. It reads tags and
// writes nothing back to the store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gobeaver/shelfkit"
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
		prefix   = flag.String("prefix", "", "scan prefix (default: the taxonomy root)")
		tag      = flag.String("tag", "needs_review=yes", "tag filter, comma-separated key=value pairs (empty matches everything)")
		out      = flag.String("out", "-", "output CSV path, - for stdout")
		maxItems = flag.Int("max-items", 0, "stop after exporting this many rows (0 = all)")
	)
	flag.Parse()

	cfg, err := shelfkit.GetConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := shelfkit.CreateStore(cfg)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	filter, err := parseFilter(*tag)
	if err != nil {
		return err
	}

	scanPrefix := *prefix
	if scanPrefix == "" {
		scanPrefix = cfg.TaxonomyRoot + "/"
	}

	var w io.Writer = os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	exporter := &organize.ReviewExporter{
		Store:      store,
		Filter:     filter,
		ScanPrefix: scanPrefix,
		MaxItems:   *maxItems,
	}

	n, err := exporter.Export(ctx, w)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	log.Info("export complete", "rows", n, "prefix", scanPrefix)
	return nil
}

// parseFilter turns "k=v,k2=v2" into a tag filter. An empty string matches
// every object.
func parseFilter(s string) (organize.TagFilter, error) {
	if s == "" {
		return nil, nil
	}
	filter := make(organize.TagFilter)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid tag filter %q, want key=value", pair)
		}
		filter[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return filter, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
