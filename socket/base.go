package socket

import (
	"sync"
	"time"

	"github.com/cortexmesh/substrate/signal"
)

// Base carries the identity, connection state, and counters shared by all
// sockets. Concrete sockets embed *Base and implement Process; Base
// supplies the rest of the Socket contract.
//
// All state transitions go through Base methods so the counters stay
// consistent when lifecycle calls arrive from concurrent goroutines
// (the manager fans out ConnectAll across sockets).
type Base struct {
	id       string
	sigType  signal.Type
	affinity Affinity

	mu          sync.Mutex
	connected   bool
	connectTime time.Time
	processed   int64
	errCount    int64
	lastProcess time.Time
}

// NewBase creates the shared state for a socket with CPU affinity.
func NewBase(id string, sigType signal.Type) *Base {
	return &Base{
		id:       id,
		sigType:  sigType,
		affinity: AffinityCPU,
	}
}

// NewBaseWithAffinity creates shared socket state with an explicit
// hardware preference.
func NewBaseWithAffinity(id string, sigType signal.Type, affinity Affinity) *Base {
	b := NewBase(id, sigType)
	b.affinity = affinity
	return b
}

// ID returns the socket's unique identifier.
func (b *Base) ID() string { return b.id }

// Type returns the socket's type classification.
func (b *Base) Type() signal.Type { return b.sigType }

// HardwareAffinity returns the preferred hardware type.
func (b *Base) HardwareAffinity() Affinity { return b.affinity }

// Connected reports whether the socket is currently connected.
func (b *Base) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

// Connect transitions the socket to connected and records the connect
// time. Idempotent: reconnecting while connected is a no-op.
func (b *Base) Connect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected {
		return nil
	}
	b.connected = true
	b.connectTime = time.Now()
	return nil
}

// Disconnect transitions the socket to disconnected. Idempotent and
// never fails, even if the socket was never connected.
func (b *Base) Disconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
}

// RecordProcess increments the processed counter and stamps the
// last-process time. Called by concrete Process implementations.
func (b *Base) RecordProcess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.processed++
	b.lastProcess = time.Now()
}

// RecordError increments the error counter.
func (b *Base) RecordError() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errCount++
}

// HealthCheck returns the socket's current health. Uptime is measured
// from the connect time while connected, zero otherwise.
func (b *Base) HealthCheck() HealthStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	status := StatusOffline
	var uptime time.Duration
	if b.connected {
		status = StatusHealthy
		uptime = time.Since(b.connectTime)
	}

	return HealthStatus{
		Status:      status,
		ID:          b.id,
		Type:        b.sigType,
		Connected:   b.connected,
		Uptime:      uptime,
		Processed:   b.processed,
		Errors:      b.errCount,
		LastProcess: b.lastProcess,
	}
}
