// Package manager owns socket registration, lifecycle, type-based signal
// routing, and aggregated health reporting. A Manager is the only owner
// of its registry and type index; external code never mutates them
// directly. All operations are safe for concurrent callers.
package manager

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cortexmesh/substrate/errors"
	"github.com/cortexmesh/substrate/health"
	"github.com/cortexmesh/substrate/metric"
	"github.com/cortexmesh/substrate/signal"
	"github.com/cortexmesh/substrate/socket"
)

// DefaultMaxSockets bounds the registry when no limit is configured.
const DefaultMaxSockets = 16

// Pass-through reasons recorded on the route metrics
const (
	passThroughNoSocket     = "no_socket"
	passThroughProcessError = "process_error"
)

// Manager coordinates socket lifecycle and routes signals to the first
// connected socket of matching type.
//
// Usage:
//
//	m := manager.New(16, logger)
//	m.Register(socket.NewComprehension(logger))
//	m.Register(socket.NewMonitoring(logger))
//	m.ConnectAll()
//
//	result := m.Route(sig)
//	report := m.HealthReport()
//
//	m.DisconnectAll()
type Manager struct {
	mu         sync.RWMutex
	sockets    map[string]socket.Socket
	typeIndex  map[signal.Type][]string
	maxSockets int
	hardware   *Capabilities

	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithMetrics wires a metrics instance. Without it the manager skips
// all instrumentation.
func WithMetrics(m *metric.Metrics) Option {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// New creates a manager bounded at maxSockets registered sockets.
// A maxSockets of zero or less falls back to DefaultMaxSockets.
func New(maxSockets int, logger *slog.Logger, opts ...Option) *Manager {
	if maxSockets <= 0 {
		maxSockets = DefaultMaxSockets
	}
	m := &Manager{
		sockets:    make(map[string]socket.Socket),
		typeIndex:  make(map[signal.Type][]string),
		maxSockets: maxSockets,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a socket to the registry and its type bucket, preserving
// insertion order within the bucket. Fails with ErrDuplicateRegistration
// for a known id and ErrCapacityExceeded at the configured maximum; on
// failure the registry is unchanged.
func (m *Manager) Register(s socket.Socket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sockets[s.ID()]; exists {
		return errors.WrapInvalid(errors.ErrDuplicateRegistration, "Manager", "Register", "duplicate id check")
	}
	if len(m.sockets) >= m.maxSockets {
		return errors.WrapInvalid(errors.ErrCapacityExceeded, "Manager", "Register", "capacity check")
	}

	m.sockets[s.ID()] = s
	m.typeIndex[s.Type()] = append(m.typeIndex[s.Type()], s.ID())

	if m.metrics != nil {
		m.metrics.SocketsRegistered.Set(float64(len(m.sockets)))
	}

	m.logger.Info("Registered socket",
		"socket_id", s.ID(),
		"socket_type", s.Type().String(),
		"hardware_affinity", string(s.HardwareAffinity()))
	return nil
}

// Unregister removes a socket from both registry structures. A no-op for
// an absent id. A still-connected socket is disconnected best-effort.
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	s, exists := m.sockets[id]
	if !exists {
		m.mu.Unlock()
		return
	}

	delete(m.sockets, id)
	bucket := m.typeIndex[s.Type()]
	m.typeIndex[s.Type()] = slices.DeleteFunc(bucket, func(sid string) bool {
		return sid == id
	})
	if m.metrics != nil {
		m.metrics.SocketsRegistered.Set(float64(len(m.sockets)))
	}
	m.mu.Unlock()

	if s.Connected() {
		s.Disconnect()
		m.logger.Info("Disconnected socket on unregister", "socket_id", id)
	}
	m.updateConnectedGauge()
}

// Get retrieves a socket by id.
func (m *Manager) Get(id string) (socket.Socket, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sockets[id]
	return s, ok
}

// Count returns the number of registered sockets.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sockets)
}

// ConnectAll connects every registered socket independently and returns
// one outcome per socket. A socket's failure never aborts the others.
// Hardware detection runs exactly once, lazily, on the first call.
func (m *Manager) ConnectAll() map[string]bool {
	m.mu.Lock()
	if m.hardware == nil {
		hw := DetectHardware()
		m.hardware = &hw
		m.logger.Info("Hardware detected",
			"cpu_cores", hw.CPU.Cores,
			"gpu", hw.GPU.Available,
			"npu", hw.NPU.Available)
	}
	snapshot := make(map[string]socket.Socket, len(m.sockets))
	maps.Copy(snapshot, m.sockets)
	m.mu.Unlock()

	results := make(map[string]bool, len(snapshot))
	var resultsMu sync.Mutex
	var g errgroup.Group

	for id, s := range snapshot {
		id, s := id, s
		g.Go(func() error {
			err := s.Connect()

			resultsMu.Lock()
			results[id] = err == nil
			resultsMu.Unlock()

			if err != nil {
				m.logger.Error("Failed to connect socket", "socket_id", id, "error", err)
			} else {
				m.logger.Info("Connected socket", "socket_id", id)
			}
			return nil
		})
	}
	_ = g.Wait()

	m.updateConnectedGauge()
	return results
}

// DisconnectAll disconnects every registered socket, best-effort.
func (m *Manager) DisconnectAll() {
	m.mu.RLock()
	snapshot := make(map[string]socket.Socket, len(m.sockets))
	maps.Copy(snapshot, m.sockets)
	m.mu.RUnlock()

	var g errgroup.Group
	for id, s := range snapshot {
		id, s := id, s
		g.Go(func() error {
			if s.Connected() {
				s.Disconnect()
				m.logger.Info("Disconnected socket", "socket_id", id)
			}
			return nil
		})
	}
	_ = g.Wait()

	m.updateConnectedGauge()
}

// Route dispatches a signal to the first connected socket in its type
// bucket, in registration order. A process failure is absorbed here and
// converts to pass-through of the original signal; no second candidate
// is tried. An empty bucket, or no connected socket in it, also yields
// pass-through, so every signal type has a defined outcome and at most
// one socket observes a given signal per call.
func (m *Manager) Route(sig *signal.Signal) *signal.Signal {
	m.mu.RLock()
	bucket := m.typeIndex[sig.Type()]
	candidates := make([]socket.Socket, 0, len(bucket))
	for _, id := range bucket {
		candidates = append(candidates, m.sockets[id])
	}
	m.mu.RUnlock()

	for _, s := range candidates {
		if s == nil || !s.Connected() {
			continue
		}

		start := time.Now()
		result, err := s.Process(sig)
		if err != nil {
			m.logger.Error("Socket failed to process signal",
				"socket_id", s.ID(),
				"signal_id", sig.ID(),
				"error", err)
			if m.metrics != nil {
				m.metrics.RoutePassThrough.WithLabelValues(sig.Type().String(), passThroughProcessError).Inc()
			}
			return sig
		}

		if m.metrics != nil {
			m.metrics.SignalsRouted.WithLabelValues(sig.Type().String(), s.ID()).Inc()
			m.metrics.ProcessingDuration.WithLabelValues(s.ID()).Observe(time.Since(start).Seconds())
		}
		return result
	}

	if m.metrics != nil {
		m.metrics.RoutePassThrough.WithLabelValues(sig.Type().String(), passThroughNoSocket).Inc()
	}
	return sig
}

// Report aggregates per-socket health into an overall status.
type Report struct {
	Status         string                         `json:"status"`
	SocketCount    int                            `json:"socket_count"`
	ConnectedCount int                            `json:"connected_count"`
	Hardware       *Capabilities                  `json:"hardware,omitempty"`
	Sockets        map[string]socket.HealthStatus `json:"sockets"`
}

// HealthReport collects each socket's health check keyed by id. The
// overall status follows health.Aggregate: no_sockets for an empty
// registry, healthy only when every socket is healthy, offline when all
// are down, degraded for any mix.
func (m *Manager) HealthReport() Report {
	m.mu.RLock()
	snapshot := make(map[string]socket.Socket, len(m.sockets))
	maps.Copy(snapshot, m.sockets)
	hardware := m.hardware
	m.mu.RUnlock()

	statuses := make([]string, 0, len(snapshot))
	socketHealth := make(map[string]socket.HealthStatus, len(snapshot))
	connected := 0
	for id, s := range snapshot {
		h := s.HealthCheck()
		socketHealth[id] = h
		statuses = append(statuses, string(h.Status))
		if h.Connected {
			connected++
		}
	}

	return Report{
		Status:         health.Aggregate(statuses),
		SocketCount:    len(snapshot),
		ConnectedCount: connected,
		Hardware:       hardware,
		Sockets:        socketHealth,
	}
}

// Hardware returns the capabilities detected by the first ConnectAll,
// or nil if detection has not run yet.
func (m *Manager) Hardware() *Capabilities {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hardware
}

func (m *Manager) updateConnectedGauge() {
	if m.metrics == nil {
		return
	}
	m.mu.RLock()
	connected := 0
	for _, s := range m.sockets {
		if s.Connected() {
			connected++
		}
	}
	m.mu.RUnlock()
	m.metrics.SocketsConnected.Set(float64(connected))
}
