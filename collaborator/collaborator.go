// Package collaborator defines the external learning collaborator the
// engine consumes but does not implement. All calls are optional:
// absence of a collaborator must never raise, only degrade to
// default/empty results - the engine handles a nil Collaborator by
// skipping the boundary entirely.
package collaborator

// Context is the enrichment returned for an embedding. Tier is an
// opaque maturity/trust level owned by the collaborator.
type Context struct {
	Tier            int              `json:"tier"`
	TierName        string           `json:"tier_name"`
	Novelty         float64          `json:"novelty"`
	Recommendations []map[string]any `json:"recommendations,omitempty"`
}

// Collaborator is the consumed-only interface to the learning system.
type Collaborator interface {
	// RecordOutcome reports a processing outcome for learning attribution.
	RecordOutcome(embedding []float32, targetID string, success bool, metadata map[string]any) error

	// GetContext returns enrichment for an embedding.
	GetContext(embedding []float32) (*Context, error)

	// Stats returns collaborator telemetry, empty on failure.
	Stats() map[string]any

	// Shutdown releases the collaborator connection.
	Shutdown() error
}
