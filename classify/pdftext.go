package classify

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFTextEnricher extracts plain text from a PDF preview and re-runs the
// keyword cascade over it. It only helps when the whole document fits inside
// the preview window; truncated PDFs fail to parse and are skipped.
type PDFTextEnricher struct {
	rules *RuleSet
}

// NewPDFTextEnricher creates the provider. A nil rule set uses the embedded
// defaults.
func NewPDFTextEnricher(rules *RuleSet) *PDFTextEnricher {
	if rules == nil {
		rules = DefaultRules()
	}
	return &PDFTextEnricher{rules: rules}
}

// Name implements Enricher
func (p *PDFTextEnricher) Name() string { return "pdf-text" }

// Enrich implements Enricher
func (p *PDFTextEnricher) Enrich(ctx context.Context, filename string, preview []byte, tags Tags) (Tags, error) {
	if !bytes.HasPrefix(preview, []byte("%PDF")) {
		return tags, nil
	}

	text, err := extractPDFText(preview)
	if err != nil {
		return tags, fmt.Errorf("pdf text extraction: %w", err)
	}
	if text == "" {
		return tags, nil
	}

	base := strings.ToLower(text)

	if tags.NeedsReview == "yes" {
		if rule, ok := matchFirst(base, p.rules.DocTypes); ok {
			tags.DocType = rule.Value
		}
	}
	if tags.Condition == FallbackCondition {
		if cond, ok := matchCanonical(base, p.rules.Conditions.Canonical); ok {
			tags.Condition = cond
		} else if rule, ok := matchFirst(base, p.rules.Conditions.Synonyms); ok {
			tags.Condition = rule.Value
		}
	}
	if tags.Year == UnknownYear {
		if y := yearRe.FindString(text); y != "" {
			tags.Year = y
		}
	}

	return tags, nil
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	pages := r.NumPage()
	if pages > 3 {
		pages = 3 // leading pages carry the title, year and society names
	}
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

var _ Enricher = (*PDFTextEnricher)(nil)
