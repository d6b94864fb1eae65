// Package taxonomy derives canonical destination paths from classification
// tags. Resolution is deterministic and total: the same tags and filename
// always produce the same path, with no I/O, randomness or clock dependency.
package taxonomy

import (
	"path"
	"strings"

	"github.com/gobeaver/shelfkit/classify"
)

// DefaultRoot is the top of the canonical folder taxonomy.
const DefaultRoot = "education"

// QuarantineDir is the single flat location for items the classifier could
// not confidently categorize, pending manual review.
const QuarantineDir = "_unsorted"

// Resolver composes destination paths under a taxonomy root.
type Resolver struct {
	// Root of the taxonomy. Empty means DefaultRoot.
	Root string
}

func (r Resolver) root() string {
	if r.Root == "" {
		return DefaultRoot
	}
	return r.Root
}

// Resolve returns the canonical destination path for a classified file.
//
// Low-confidence items (needs_review=yes) all land flat under the quarantine
// directory, keyed only by filename: a taxonomy placement would lend the
// classification more trust than it has earned. Everything else is grouped
// by document type first (the primary navigation axis for readers), then
// narrowed by clinical topic, recency, and provenance.
func (r Resolver) Resolve(tags classify.Tags, filename string) string {
	if tags.NeedsReview == "yes" {
		return path.Join(r.root(), QuarantineDir, filename)
	}

	docType := valueOr(tags.DocType, classify.FallbackDocType)
	condition := valueOr(tags.Condition, classify.FallbackCondition)
	year := valueOr(tags.Year, classify.UnknownYear)
	org := valueOr(tags.SourceOrg, classify.FallbackSourceOrg)

	return path.Join(r.root(), docType, condition, year, org, filename)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// NormalizedName derives a self-describing filename from an object's stored
// tags: {year}-{source_org}-{original basename}. Used by the normalizer pass
// to rename already-tagged objects in place.
func NormalizedName(name string, tags map[string]string) string {
	year := strings.TrimSpace(tags[classify.KeyYear])
	if year == "" {
		year = classify.UnknownYear
	}

	org := strings.TrimSpace(tags[classify.KeySourceOrg])
	if org == "" {
		org = "unknown"
	} else {
		org = strings.ReplaceAll(strings.ToLower(org), " ", "_")
	}

	base := path.Base(name)
	prefix := year + "-" + org + "-"
	if strings.HasPrefix(base, prefix) {
		// Already normalized; renaming again would stack prefixes.
		return base
	}
	return prefix + base
}
