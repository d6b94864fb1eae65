package classify

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

var yearRe = regexp.MustCompile(`20\d{2}|19\d{2}`)

// Engine evaluates the ordered rule table against filenames. The zero-cost
// construction path uses the embedded default rules.
type Engine struct {
	rules     *RuleSet
	enrichers []Enricher
	log       *slog.Logger
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithRules replaces the embedded default rule set.
func WithRules(rs *RuleSet) EngineOption {
	return func(e *Engine) { e.rules = rs }
}

// WithEnrichers adds optional enrichment providers, applied in order after
// the heuristic pass. Providers can only raise confidence; the heuristic
// baseline is unchanged when they are absent or fail.
func WithEnrichers(providers ...Enricher) EngineOption {
	return func(e *Engine) { e.enrichers = append(e.enrichers, providers...) }
}

// WithLogger sets the logger used to report enrichment provider failures.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates a classification engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.rules == nil {
		e.rules = DefaultRules()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// Classify produces the tag set for a filename and an optional bounded
// content preview. It is a pure function of its inputs: no I/O, no clock, no
// hidden state. Every tag key is always present in the result; needs_review
// is "yes" exactly when no docType keyword group matched.
func (e *Engine) Classify(filename string, preview []byte) Tags {
	base := strings.ToLower(filename)

	tags := Tags{
		Audience:       "clinician",
		RetentionClass: "refresh_annual",
		PHI:            "no",
		NeedsReview:    "no",
	}

	// docType: first matching keyword group wins, no voting or scoring.
	var presetOrg string
	if rule, ok := matchFirst(base, e.rules.DocTypes); ok {
		tags.DocType = rule.Value
		tags.EvidenceLevel = rule.Evidence
		presetOrg = rule.Org
	} else {
		tags.DocType = FallbackDocType
		tags.NeedsReview = "yes"
	}

	// condition: canonical codes first, then the synonym pass.
	if cond, ok := matchCanonical(base, e.rules.Conditions.Canonical); ok {
		tags.Condition = cond
	} else if rule, ok := matchFirst(base, e.rules.Conditions.Synonyms); ok {
		tags.Condition = rule.Value
	} else {
		tags.Condition = FallbackCondition
	}

	// source_org: canonical names first; a docType rule's preset org only
	// survives when the canonical pass misses.
	if org, ok := matchCanonical(base, e.rules.SourceOrgs.Canonical); ok {
		tags.SourceOrg = org
	} else if presetOrg != "" {
		tags.SourceOrg = presetOrg
	} else if rule, ok := matchFirst(base, e.rules.SourceOrgs.Synonyms); ok {
		tags.SourceOrg = rule.Value
	} else {
		tags.SourceOrg = FallbackSourceOrg
	}

	// year: filename first, then the content preview. Previews carrying a
	// binary signature are ignored; extraction from those formats belongs
	// to the enrichment providers.
	tags.Year = yearRe.FindString(filename)
	if tags.Year == "" {
		if text := TextPreview(preview); len(text) > 0 {
			tags.Year = string(yearRe.Find(text))
		}
	}
	if tags.Year == "" {
		tags.Year = UnknownYear
	}

	return tags
}

// ClassifyWithEnrichment runs the heuristic pass, then offers low-confidence
// results to the configured enrichment providers. A provider failure keeps
// the heuristic baseline; providers can never lower confidence.
func (e *Engine) ClassifyWithEnrichment(ctx context.Context, filename string, preview []byte) Tags {
	tags := e.Classify(filename, preview)
	if len(e.enrichers) == 0 {
		return tags
	}

	for _, p := range e.enrichers {
		if tags.NeedsReview != "yes" && tags.Year != UnknownYear {
			break
		}
		enriched, err := p.Enrich(ctx, filename, preview, tags)
		if err != nil {
			e.log.Warn("enrichment provider failed", "provider", p.Name(), "file", filename, "error", err)
			continue
		}
		tags = e.accept(tags, enriched)
	}

	return tags
}

// accept merges an enriched tag set into the baseline. Only fields currently
// holding fallback values may change, the docType must come from the closed
// list, and needs_review clears only when the provider supplied a docType.
func (e *Engine) accept(base, enriched Tags) Tags {
	if base.NeedsReview == "yes" && enriched.DocType != "" && enriched.DocType != base.DocType {
		if rule, ok := e.docTypeRule(enriched.DocType); ok {
			base.DocType = rule.Value
			base.EvidenceLevel = rule.Evidence
			base.NeedsReview = "no"
		}
	}
	if base.Condition == FallbackCondition && enriched.Condition != "" {
		if v, ok := matchCanonical(strings.ToLower(enriched.Condition), e.rules.Conditions.Canonical); ok {
			base.Condition = v
		}
	}
	if base.Year == UnknownYear && yearRe.MatchString(enriched.Year) {
		base.Year = yearRe.FindString(enriched.Year)
	}
	return base
}

func (e *Engine) docTypeRule(value string) (KeywordRule, bool) {
	for _, r := range e.rules.DocTypes {
		if r.Value == value {
			return r, true
		}
	}
	return KeywordRule{}, false
}
