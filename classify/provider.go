package classify

import "context"

// Enricher is an optional, capability-gated classification provider. The
// heuristic engine works correctly with every provider absent; a provider's
// presence can only raise confidence, never change the deterministic
// baseline contract.
//
// Enrich receives the heuristic tag set and returns a (possibly) improved
// one. The engine sanitizes the result: only low-confidence fields are
// accepted, and docType values outside the closed list are ignored.
type Enricher interface {
	// Name identifies the provider in logs.
	Name() string

	// Enrich proposes improved tags for the file. Errors are logged and the
	// heuristic baseline is kept.
	Enrich(ctx context.Context, filename string, preview []byte, tags Tags) (Tags, error)
}
