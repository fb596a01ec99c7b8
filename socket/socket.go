// Package socket defines the processing-unit contract for the substrate.
// A socket is a pluggable unit that receives a signal, transforms it, and
// emits a new signal. The manager package owns socket lifecycle and routing.
package socket

import (
	"time"

	"github.com/cortexmesh/substrate/signal"
)

// Affinity is a socket's preferred hardware type. Advisory only: the
// manager records it but does not enforce placement today.
type Affinity string

// Supported hardware affinities
const (
	AffinityCPU Affinity = "cpu"
	AffinityGPU Affinity = "gpu"
	AffinityNPU Affinity = "npu"
)

// Status is the health state a socket reports.
type Status string

// Socket health states
const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusOffline  Status = "offline"
)

// HealthStatus describes the current health of a socket.
type HealthStatus struct {
	Status      Status        `json:"status"`
	ID          string        `json:"socket_id"`
	Type        signal.Type   `json:"socket_type"`
	Connected   bool          `json:"connected"`
	Uptime      time.Duration `json:"uptime"`
	Processed   int64         `json:"process_count"`
	Errors      int64         `json:"error_count"`
	LastProcess time.Time     `json:"last_process_time"`
}

// Socket is the contract every processing unit implements.
//
// Lifecycle: construct -> Connect() -> Process()* -> Disconnect()
//
// ID and Type are pure and constant for the instance's life. Connect is
// idempotent and returns a wrapped errors.ErrConnectFailure when resources
// are unavailable. Disconnect is idempotent and never fails, even if the
// socket was never connected. Process must not mutate its input: it returns
// a new signal and, as an observable side effect, increments the processed
// counter and last-process timestamp. Process returns a wrapped
// errors.ErrNotConnected when called while disconnected.
type Socket interface {
	ID() string
	Type() signal.Type
	HardwareAffinity() Affinity
	Connected() bool
	Connect() error
	Disconnect()
	Process(sig *signal.Signal) (*signal.Signal, error)
	HealthCheck() HealthStatus
}
