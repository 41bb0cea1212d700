// Package testutil provides deterministic helpers for tests: a fixed run
// token generator and fault-injecting candidate factories.
package testutil

// FixedTokenGenerator returns the same run token every time.
//
// This keeps journal rows and golden snapshots byte-identical across test
// runs. Stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a fixed token generator.
// An empty token defaults to "test-run-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-run-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
// Implements journal.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
