package testutil

// FixedRunGenerator returns the same run id every time.
//
// Cache rows written with it are byte-identical across test runs, which keeps
// golden output stable.
//
// Thread-safety: FixedRunGenerator is stateless and safe for concurrent use.
type FixedRunGenerator struct {
	id string
}

// NewFixedRunGenerator creates a fixed run id generator.
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunGenerator(id string) *FixedRunGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunGenerator{id: id}
}

// Generate returns the fixed run id. Implements driver.RunIDGenerator.
func (g *FixedRunGenerator) Generate() string {
	return g.id
}
