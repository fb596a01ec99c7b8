package socket

import (
	"log/slog"
	"maps"

	"github.com/cortexmesh/substrate/errors"
	"github.com/cortexmesh/substrate/signal"
)

// Monitoring socket identifiers
const (
	MonitoringID      = "substrate:monitoring"
	monitoringVersion = "0.1.0"
)

// Monitoring is the health-type processing socket. Like Comprehension it
// is a pass-through today: anomaly detection and metric aggregation over
// health signals are deferred.
type Monitoring struct {
	*Base
	logger *slog.Logger
}

// NewMonitoring creates the monitoring socket.
func NewMonitoring(logger *slog.Logger) *Monitoring {
	return &Monitoring{
		Base:   NewBase(MonitoringID, signal.TypeHealth),
		logger: logger,
	}
}

// Process annotates and passes the signal through.
func (m *Monitoring) Process(sig *signal.Signal) (*signal.Signal, error) {
	if !m.Connected() {
		m.RecordError()
		return nil, errors.WrapInvalid(errors.ErrNotConnected, "Monitoring", "Process", "connection check")
	}

	m.RecordProcess()

	enriched := make(map[string]any, len(sig.Metadata())+2)
	maps.Copy(enriched, sig.Metadata())
	enriched["monitoring_processed"] = true
	enriched["monitoring_version"] = monitoringVersion

	m.logger.Debug("Monitoring processed signal", "signal_id", sig.ID())

	return sig.WithUpdates(
		signal.UpdateSource(m.ID()),
		signal.UpdateMetadata(enriched),
	), nil
}
