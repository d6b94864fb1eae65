package organize

import (
	"context"
	"log/slog"
	"path"

	"github.com/gobeaver/shelfkit"
	"github.com/gobeaver/shelfkit/audit"
	"github.com/gobeaver/shelfkit/mover"
	"github.com/gobeaver/shelfkit/taxonomy"
)

// Normalizer renames already-tagged objects in place to the self-describing
// {year}-{source_org}-{basename} form derived from their stored tags. It
// moves nothing across directories and classifies nothing; objects without
// tags are skipped.
type Normalizer struct {
	Store  shelfkit.ObjectStore
	Mover  *mover.Mover
	Ledger *audit.Ledger
	Log    *slog.Logger

	ScanPrefix string
	MaxItems   int
	DryRun     bool
	Overwrite  bool
}

// Run normalizes every tagged object under the scan prefix. Same failure
// semantics as the organize pipeline: per-item failures are recorded and the
// run continues.
func (n *Normalizer) Run(ctx context.Context) (*audit.Summary, error) {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	if n.DryRun {
		log.Info("dry run: no changes will be made")
	}

	summary := audit.NewSummary()
	processed := 0

	err := n.Store.List(ctx, n.ScanPrefix, func(item shelfkit.ObjectInfo) error {
		if item.IsDirMarker() {
			return nil
		}

		rec := n.normalizeItem(ctx, item)
		if err := n.Ledger.Append(rec); err != nil {
			return err
		}
		summary.Add(rec)

		if rec.Status == "ok" {
			log.Info("normalized", "source", rec.SourcePath, "destination", rec.Destination, "action", rec.Action)
		} else {
			log.Warn("failed", "source", rec.SourcePath, "reason", rec.Error)
		}

		processed++
		if n.MaxItems > 0 && processed >= n.MaxItems {
			log.Info("max item cap reached, stopping scan", "max_items", n.MaxItems)
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

func (n *Normalizer) normalizeItem(ctx context.Context, item shelfkit.ObjectInfo) audit.Record {
	tags, err := n.Store.GetTags(ctx, item.Name)
	if err != nil {
		reason := ""
		if shelfkit.IsNotExist(err) {
			reason = mover.ReasonNotFound
		}
		return audit.NewRecord(mover.Outcome{
			Action: mover.ActionSkip,
			Source: item.Name,
			Reason: reason,
			Err:    err,
		}, nil)
	}
	if len(tags) == 0 {
		return audit.NewRecord(mover.Outcome{
			Action: mover.ActionSkip,
			Source: item.Name,
			Reason: mover.ReasonNoTags,
		}, nil)
	}

	dst := taxonomy.NormalizedName(item.Name, tags)
	if dir := path.Dir(item.Name); dir != "." {
		dst = path.Join(dir, dst)
	}

	out := n.Mover.Move(ctx, item.Name, dst, tags,
		mover.WithDryRun(n.DryRun),
		mover.WithOverwrite(n.Overwrite),
	)
	return audit.NewRecord(out, tags)
}
