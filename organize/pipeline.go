// Package organize drives the classification-and-reorganization pipeline:
// list the scan prefix, classify each item, resolve its canonical
// destination, relocate it through the safe mover, and append every outcome
// to the audit ledger.
package organize

import (
	"context"
	"log/slog"
	"path"

	"github.com/gobwas/glob"
	"golang.org/x/time/rate"

	"github.com/gobeaver/shelfkit"
	"github.com/gobeaver/shelfkit/audit"
	"github.com/gobeaver/shelfkit/classify"
	"github.com/gobeaver/shelfkit/mover"
	"github.com/gobeaver/shelfkit/taxonomy"
)

// Pipeline holds the per-run state of one invocation. Items are processed
// strictly sequentially: one item is fully classified, resolved, moved and
// audited before the next begins, so no two items can race for a colliding
// destination.
type Pipeline struct {
	Store    shelfkit.ObjectStore
	Engine   *classify.Engine
	Resolver taxonomy.Resolver
	Mover    *mover.Mover
	Ledger   *audit.Ledger
	Log      *slog.Logger

	// ScanPrefix bounds the listing.
	ScanPrefix string

	// MaxItems stops the scan after N processed items (0 = no cap).
	// Completed work is never rolled back.
	MaxItems int

	// Include optionally filters the listing by a glob over object names.
	Include glob.Glob

	// Limiter optionally paces store requests.
	Limiter *rate.Limiter

	// PreviewBytes bounds the content peek (0 = classify.DefaultPreviewBytes).
	PreviewBytes int64

	DryRun    bool
	TagOnly   bool
	Overwrite bool
}

// Run processes every item under the scan prefix and returns the run tally.
// Per-item failures are recorded in the ledger and do not abort the run;
// only listing and ledger failures do.
func (p *Pipeline) Run(ctx context.Context) (*audit.Summary, error) {
	log := p.logger()
	if p.DryRun {
		log.Info("dry run: no changes will be made")
	}
	log.Info("scanning",
		"prefix", p.ScanPrefix,
		"atomic_rename", p.Mover.Atomic(),
		"tag_only", p.TagOnly,
	)

	summary := audit.NewSummary()
	processed := 0

	err := p.Store.List(ctx, p.ScanPrefix, func(item shelfkit.ObjectInfo) error {
		if item.IsDirMarker() {
			return nil
		}
		if p.Include != nil && !p.Include.Match(item.Name) {
			return nil
		}
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		rec := p.processItem(ctx, item)
		if err := p.Ledger.Append(rec); err != nil {
			return err
		}
		summary.Add(rec)

		if rec.Status == "ok" {
			log.Info("processed", "source", rec.SourcePath, "destination", rec.Destination, "action", rec.Action)
		} else {
			log.Warn("failed", "source", rec.SourcePath, "reason", rec.Error)
		}

		processed++
		if p.MaxItems > 0 && processed >= p.MaxItems {
			log.Info("max item cap reached, stopping scan", "max_items", p.MaxItems)
			return shelfkit.ErrStopList
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	log.Info("run complete", "summary", summary.String())
	return summary, nil
}

// processItem takes one item through classify → resolve → move. It always
// returns a record; errors are folded into it.
func (p *Pipeline) processItem(ctx context.Context, item shelfkit.ObjectInfo) audit.Record {
	filename := path.Base(item.Name)

	// Bounded content peek, only when the filename alone does not reveal a
	// year. Read failures are not fatal: the classifier is total and falls
	// back to its defaults.
	var preview []byte
	if classify.NeedsPreview(filename) {
		maxBytes := p.PreviewBytes
		if maxBytes <= 0 {
			maxBytes = classify.DefaultPreviewBytes
		}
		if data, err := p.Store.ReadPrefix(ctx, item.Name, maxBytes); err == nil {
			preview = data
		}
	}

	tags := p.Engine.ClassifyWithEnrichment(ctx, filename, preview)
	dst := p.Resolver.Resolve(tags, filename)

	out := p.Mover.Move(ctx, item.Name, dst, tags.Map(),
		mover.WithDryRun(p.DryRun),
		mover.WithTagOnly(p.TagOnly),
		mover.WithOverwrite(p.Overwrite),
	)
	return audit.NewRecord(out, tags.Map())
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}
