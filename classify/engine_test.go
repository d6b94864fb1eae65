package classify

import (
	"context"
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name     string
		filename string
		preview  []byte
		want     Tags
	}{
		{
			name:     "guideline with org condition and year in filename",
			filename: "2019_ACC_AHA_STEMI_Guideline.pdf",
			want: Tags{
				DocType:        "guideline",
				Condition:      "STEMI",
				SourceOrg:      "ACC",
				Year:           "2019",
				Audience:       "clinician",
				EvidenceLevel:  "guideline",
				RetentionClass: "refresh_annual",
				PHI:            "no",
				NeedsReview:    "no",
			},
		},
		{
			name:     "unclassifiable filename quarantines",
			filename: "scan0042.bin",
			want: Tags{
				DocType:        "notes",
				Condition:      "cardiology_general",
				SourceOrg:      "internal",
				Year:           "unknown",
				Audience:       "clinician",
				RetentionClass: "refresh_annual",
				PHI:            "no",
				NeedsReview:    "yes",
			},
		},
		{
			name:     "textbook keeps preset org when canonical pass misses",
			filename: "goldman_cecil_chapter_hf.pdf",
			want: Tags{
				DocType:        "textbook_chapter",
				Condition:      "HF",
				SourceOrg:      "Goldman-Cecil",
				Year:           "unknown",
				Audience:       "clinician",
				RetentionClass: "refresh_annual",
				PHI:            "no",
				NeedsReview:    "no",
			},
		},
		{
			name:     "hyphenated canonical org matches hyphen-insensitively",
			filename: "Goldman-Cecil-Chapter-AF-2020.pdf",
			want: Tags{
				DocType:        "textbook_chapter",
				Condition:      "AF",
				SourceOrg:      "Goldman-Cecil",
				Year:           "2020",
				Audience:       "clinician",
				RetentionClass: "refresh_annual",
				PHI:            "no",
				NeedsReview:    "no",
			},
		},
		{
			name:     "doc type priority is rule order not specificity",
			filename: "randomized_trial_review.pdf",
			want: Tags{
				DocType:        "article_RCT",
				Condition:      "cardiology_general",
				SourceOrg:      "internal",
				Year:           "unknown",
				Audience:       "clinician",
				EvidenceLevel:  "RCT",
				RetentionClass: "refresh_annual",
				PHI:            "no",
				NeedsReview:    "no",
			},
		},
		{
			name:     "year falls back to the text preview",
			filename: "syncope_pathway_notes.txt",
			preview:  []byte("Syncope workup pathway, updated 2021 per committee review."),
			want: Tags{
				DocType:        "protocol_handout",
				Condition:      "syncope",
				SourceOrg:      "internal",
				Year:           "2021",
				Audience:       "clinician",
				RetentionClass: "refresh_annual",
				PHI:            "no",
				NeedsReview:    "no",
			},
		},
		{
			name:     "binary preview is ignored for year extraction",
			filename: "esc_syncope_slide_deck.pptx",
			preview:  append([]byte{0x50, 0x4b, 0x03, 0x04}, []byte("2018")...),
			want: Tags{
				DocType:        "slide_deck",
				Condition:      "syncope",
				SourceOrg:      "ESC",
				Year:           "unknown",
				Audience:       "clinician",
				RetentionClass: "refresh_annual",
				PHI:            "no",
				NeedsReview:    "no",
			},
		},
		{
			name:     "empty filename still yields a complete tag set",
			filename: "",
			want: Tags{
				DocType:        "notes",
				Condition:      "cardiology_general",
				SourceOrg:      "internal",
				Year:           "unknown",
				Audience:       "clinician",
				RetentionClass: "refresh_annual",
				PHI:            "no",
				NeedsReview:    "yes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Classify(tt.filename, tt.preview)
			if got != tt.want {
				t.Errorf("Classify(%q)\n got  %+v\n want %+v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	engine := NewEngine()
	first := engine.Classify("2022_esc_af_guidelines.pdf", nil)
	for i := 0; i < 5; i++ {
		if got := engine.Classify("2022_esc_af_guidelines.pdf", nil); got != first {
			t.Fatalf("classification changed between runs: %+v != %+v", got, first)
		}
	}
}

func TestClassifyEveryKeyPresent(t *testing.T) {
	engine := NewEngine()
	m := engine.Classify("whatever.xyz", nil).Map()
	if len(m) != len(Keys()) {
		t.Fatalf("tag map has %d keys, want %d", len(m), len(Keys()))
	}
	for _, k := range Keys() {
		if _, ok := m[k]; !ok {
			t.Errorf("tag %q is missing", k)
		}
	}
}

type fakeEnricher struct {
	name   string
	result Tags
	err    error
	calls  int
}

func (f *fakeEnricher) Name() string { return f.name }

func (f *fakeEnricher) Enrich(ctx context.Context, filename string, preview []byte, tags Tags) (Tags, error) {
	f.calls++
	if f.err != nil {
		return Tags{}, f.err
	}
	return f.result, nil
}

func TestClassifyWithEnrichment(t *testing.T) {
	t.Run("provider raises a quarantined item", func(t *testing.T) {
		fake := &fakeEnricher{name: "fake", result: Tags{DocType: "guideline", Year: "2017"}}
		engine := NewEngine(WithEnrichers(fake))

		got := engine.ClassifyWithEnrichment(context.Background(), "scan0042.bin", nil)
		if fake.calls != 1 {
			t.Fatalf("provider called %d times, want 1", fake.calls)
		}
		if got.DocType != "guideline" || got.NeedsReview != "no" {
			t.Errorf("docType=%q needs_review=%q, want guideline/no", got.DocType, got.NeedsReview)
		}
		if got.EvidenceLevel != "guideline" {
			t.Errorf("evidence_level=%q, want the rule's side value", got.EvidenceLevel)
		}
		if got.Year != "2017" {
			t.Errorf("year=%q, want 2017", got.Year)
		}
	})

	t.Run("unknown doc type from provider is rejected", func(t *testing.T) {
		fake := &fakeEnricher{name: "fake", result: Tags{DocType: "scribbles"}}
		engine := NewEngine(WithEnrichers(fake))

		got := engine.ClassifyWithEnrichment(context.Background(), "scan0042.bin", nil)
		if got.DocType != FallbackDocType || got.NeedsReview != "yes" {
			t.Errorf("got docType=%q needs_review=%q, want fallback quarantined", got.DocType, got.NeedsReview)
		}
	})

	t.Run("provider failure keeps the heuristic baseline", func(t *testing.T) {
		fake := &fakeEnricher{name: "fake", err: errors.New("provider down")}
		engine := NewEngine(WithEnrichers(fake))

		got := engine.ClassifyWithEnrichment(context.Background(), "scan0042.bin", nil)
		want := engine.Classify("scan0042.bin", nil)
		if got != want {
			t.Errorf("failed provider changed result: %+v != %+v", got, want)
		}
	})

	t.Run("confident results skip providers", func(t *testing.T) {
		fake := &fakeEnricher{name: "fake", result: Tags{DocType: "review"}}
		engine := NewEngine(WithEnrichers(fake))

		engine.ClassifyWithEnrichment(context.Background(), "2019_ACC_AHA_STEMI_Guideline.pdf", nil)
		if fake.calls != 0 {
			t.Errorf("provider called %d times for a confident result, want 0", fake.calls)
		}
	})
}
