package socket

import (
	"log/slog"
	"maps"

	"github.com/cortexmesh/substrate/errors"
	"github.com/cortexmesh/substrate/signal"
)

// Comprehension socket identifiers
const (
	ComprehensionID      = "substrate:comprehension"
	comprehensionVersion = "0.1.0"
)

// Comprehension is the sensory-type processing socket. It is an
// acknowledged pass-through: it validates connection state, annotates
// the signal's metadata, and re-sources the signal to itself. Semantic
// parsing, intent classification, and entity extraction are deferred.
type Comprehension struct {
	*Base
	logger *slog.Logger
}

// NewComprehension creates the comprehension socket.
func NewComprehension(logger *slog.Logger) *Comprehension {
	return &Comprehension{
		Base:   NewBase(ComprehensionID, signal.TypeSensory),
		logger: logger,
	}
}

// Process annotates and passes the signal through. The input is never
// mutated; the result is a new signal sourced from this socket.
func (c *Comprehension) Process(sig *signal.Signal) (*signal.Signal, error) {
	if !c.Connected() {
		c.RecordError()
		return nil, errors.WrapInvalid(errors.ErrNotConnected, "Comprehension", "Process", "connection check")
	}

	c.RecordProcess()

	enriched := make(map[string]any, len(sig.Metadata())+2)
	maps.Copy(enriched, sig.Metadata())
	enriched["comprehension_processed"] = true
	enriched["comprehension_version"] = comprehensionVersion

	c.logger.Debug("Comprehension processed signal", "signal_id", sig.ID())

	return sig.WithUpdates(
		signal.UpdateSource(c.ID()),
		signal.UpdateMetadata(enriched),
	), nil
}
