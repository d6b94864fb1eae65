package classify

// Tag keys attached to every classified object. Every key is always present
// in a produced tag set.
const (
	KeyDocType        = "docType"
	KeyCondition      = "condition"
	KeySourceOrg      = "source_org"
	KeyYear           = "year"
	KeyAudience       = "audience"
	KeyEvidenceLevel  = "evidence_level"
	KeyRetentionClass = "retention_class"
	KeyPHI            = "phi"
	KeyNeedsReview    = "needs_review"
)

// Conservative fallback values used when a category cannot be determined.
const (
	FallbackDocType   = "notes"
	FallbackCondition = "cardiology_general"
	FallbackSourceOrg = "internal"
	UnknownYear       = "unknown"
)

// Keys lists the tag schema keys in canonical order.
func Keys() []string {
	return []string{
		KeyDocType, KeyCondition, KeySourceOrg, KeyYear, KeyAudience,
		KeyEvidenceLevel, KeyRetentionClass, KeyPHI, KeyNeedsReview,
	}
}

// Tags is the fixed-schema tag set produced for every classified object.
type Tags struct {
	DocType        string `json:"docType"`
	Condition      string `json:"condition"`
	SourceOrg      string `json:"source_org"`
	Year           string `json:"year"`
	Audience       string `json:"audience"`
	EvidenceLevel  string `json:"evidence_level"`
	RetentionClass string `json:"retention_class"`
	PHI            string `json:"phi"`
	NeedsReview    string `json:"needs_review"`
}

// Map converts the tag set to the key/value form stored on the object.
func (t Tags) Map() map[string]string {
	return map[string]string{
		KeyDocType:        t.DocType,
		KeyCondition:      t.Condition,
		KeySourceOrg:      t.SourceOrg,
		KeyYear:           t.Year,
		KeyAudience:       t.Audience,
		KeyEvidenceLevel:  t.EvidenceLevel,
		KeyRetentionClass: t.RetentionClass,
		KeyPHI:            t.PHI,
		KeyNeedsReview:    t.NeedsReview,
	}
}

// FromMap reconstructs a tag set from stored object tags. Keys the schema
// does not know are dropped.
func FromMap(m map[string]string) Tags {
	return Tags{
		DocType:        m[KeyDocType],
		Condition:      m[KeyCondition],
		SourceOrg:      m[KeySourceOrg],
		Year:           m[KeyYear],
		Audience:       m[KeyAudience],
		EvidenceLevel:  m[KeyEvidenceLevel],
		RetentionClass: m[KeyRetentionClass],
		PHI:            m[KeyPHI],
		NeedsReview:    m[KeyNeedsReview],
	}
}
