package classify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// KeywordRule maps an ordered keyword group to a canonical tag value.
// Evidence and Org carry side values some docType rules set alongside the
// value itself.
type KeywordRule struct {
	Value    string   `yaml:"value"`
	Keywords []string `yaml:"keywords"`
	Evidence string   `yaml:"evidence"`
	Org      string   `yaml:"org"`
}

// CategoryRules holds one category's matching configuration: a canonical
// value list matched verbatim first, then an ordered synonym pass.
type CategoryRules struct {
	Canonical []string      `yaml:"canonical"`
	Synonyms  []KeywordRule `yaml:"synonyms"`
}

// RuleSet is the full ordered rule table the classifier evaluates.
type RuleSet struct {
	DocTypes   []KeywordRule `yaml:"doc_types"`
	Conditions CategoryRules `yaml:"conditions"`
	SourceOrgs CategoryRules `yaml:"source_orgs"`
}

// ParseRules decodes a rule set from YAML.
func ParseRules(data []byte) (*RuleSet, error) {
	rs := &RuleSet{}
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if len(rs.DocTypes) == 0 {
		return nil, fmt.Errorf("rules define no doc types")
	}
	return rs, nil
}

// LoadRules reads a rule set from a YAML file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// DefaultRules returns the embedded rule set.
func DefaultRules() *RuleSet {
	rs, err := ParseRules(embeddedRules)
	if err != nil {
		// The embedded asset is validated by tests; a failure here means a
		// broken build.
		panic(err)
	}
	return rs
}

// matchFirst returns the value of the first rule with a keyword contained in
// base. Rules are tested in order; the first hit wins and no further rules
// are tested.
func matchFirst(base string, rules []KeywordRule) (KeywordRule, bool) {
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(base, kw) {
				return r, true
			}
		}
	}
	return KeywordRule{}, false
}

// matchCanonical returns the first canonical value contained verbatim in
// base. Matching is case-insensitive and hyphen-insensitive; the returned
// value keeps its canonical spelling.
func matchCanonical(base string, values []string) (string, bool) {
	flat := strings.ReplaceAll(base, "-", "")
	for _, v := range values {
		needle := strings.ReplaceAll(strings.ToLower(v), "-", "")
		if strings.Contains(flat, needle) {
			return v, true
		}
	}
	return "", false
}
