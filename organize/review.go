package organize

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gobeaver/shelfkit"
	"github.com/gobeaver/shelfkit/classify"
	"github.com/gobeaver/shelfkit/taxonomy"
)

// TagFilter matches objects by their stored tag values. A nil or empty filter
// matches everything; multiple entries must all match.
type TagFilter map[string]string

// Matches reports whether the given tag set satisfies every filter entry.
func (f TagFilter) Matches(tags map[string]string) bool {
	for k, want := range f {
		if tags[k] != want {
			return false
		}
	}
	return true
}

// NeedsReviewFilter matches objects quarantined by the classifier.
func NeedsReviewFilter() TagFilter {
	return TagFilter{classify.KeyNeedsReview: "yes"}
}

// ReviewExporter writes a CSV inventory of objects whose tags match a filter,
// one row per object, so reviewers can triage quarantined items without
// touching the store. The export reads tags and writes nothing back.
type ReviewExporter struct {
	Store  shelfkit.ObjectStore
	Filter TagFilter

	ScanPrefix string
	MaxItems   int
}

// Export scans the prefix and writes matching objects to w. It returns the
// number of rows written. Objects whose tags cannot be read are skipped, not
// failed: a review export should survive a partially tagged corpus.
func (e *ReviewExporter) Export(ctx context.Context, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)

	header := []string{"name", "size", "last_modified"}
	for _, k := range classify.Keys() {
		header = append(header, "tag_"+k)
	}
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write export header: %w", err)
	}

	matched := 0
	err := e.Store.List(ctx, e.ScanPrefix, func(item shelfkit.ObjectInfo) error {
		if item.IsDirMarker() {
			return nil
		}

		tags, err := e.Store.GetTags(ctx, item.Name)
		if err != nil {
			return nil
		}
		if !e.Filter.Matches(tags) {
			return nil
		}

		row := []string{
			item.Name,
			strconv.FormatInt(item.Size, 10),
			item.LastModified.UTC().Format(time.RFC3339),
		}
		for _, k := range classify.Keys() {
			row = append(row, tags[k])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}

		matched++
		if e.MaxItems > 0 && matched >= e.MaxItems {
			return shelfkit.ErrStopList
		}
		return nil
	})
	if err != nil {
		return matched, err
	}

	cw.Flush()
	return matched, cw.Error()
}

// Placement summarizes where objects under a taxonomy root have landed.
type Placement struct {
	Total       int
	Organized   int
	Quarantined int
}

// String renders the placement tally for the console summary.
func (p Placement) String() string {
	return fmt.Sprintf("%d objects placed, %d organized, %d awaiting review",
		p.Total, p.Organized, p.Quarantined)
}

// CountPlacement walks the taxonomy root and tallies organized versus
// quarantined objects. Run after a live organize pass as a cheap sanity check
// that items actually arrived where the ledger says they did.
func CountPlacement(ctx context.Context, store shelfkit.ObjectLister, root string) (Placement, error) {
	if root == "" {
		root = taxonomy.DefaultRoot
	}
	quarantine := path.Join(root, taxonomy.QuarantineDir) + "/"

	var p Placement
	err := store.List(ctx, root+"/", func(item shelfkit.ObjectInfo) error {
		if item.IsDirMarker() {
			return nil
		}
		p.Total++
		if strings.HasPrefix(item.Name, quarantine) {
			p.Quarantined++
		} else {
			p.Organized++
		}
		return nil
	})
	return p, err
}
