// Package health provides health aggregation for the socket substrate.
package health

import "github.com/cortexmesh/substrate/socket"

// Overall system statuses. Per-socket statuses come from the socket
// package; the aggregate adds two states of its own: no_sockets for an
// empty registry (never conflated with healthy) and error for sockets
// whose health check itself failed.
const (
	StatusHealthy   = string(socket.StatusHealthy)
	StatusDegraded  = string(socket.StatusDegraded)
	StatusOffline   = string(socket.StatusOffline)
	StatusError     = "error"
	StatusNoSockets = "no_sockets"
)

// Aggregate reduces per-socket statuses to an overall status.
// The aggregation rules are:
//   - no statuses at all -> no_sockets
//   - every status healthy -> healthy
//   - every status offline or error -> offline
//   - any other mix -> degraded
func Aggregate(statuses []string) string {
	if len(statuses) == 0 {
		return StatusNoSockets
	}

	allHealthy := true
	allDown := true
	for _, s := range statuses {
		if s != StatusHealthy {
			allHealthy = false
		}
		if s != StatusOffline && s != StatusError {
			allDown = false
		}
	}

	switch {
	case allHealthy:
		return StatusHealthy
	case allDown:
		return StatusOffline
	default:
		return StatusDegraded
	}
}
