package testutil

// DefaultRunID is returned by a FixedRunID created with an empty id.
const DefaultRunID = "test-run-default"

// FixedRunID generates the same run ID every time.
//
// Unlike engine.FixedGenerator, which hands out a list of IDs in order, this
// one never runs out; use it when a test runs a script once or does not care
// about distinct IDs.
//
// Thread-safety: stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a fixed generator. Scenarios usually set the ID:
//
//	run_id: "run-00000000-0000-0000-0000-000000000001"
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunID{id: id}
}

// Generate implements engine.RunIDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}
