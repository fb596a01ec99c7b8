// Package substrate provides a typed signal-processing substrate:
// immutable signals, pluggable processing sockets, type-based routing,
// and an engine that turns raw text into structured records.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│              Engine                 │  Lifecycle, text intake,
//	│  (start, stop, process, health)     │  collaborator boundary
//	└─────────────────────────────────────┘
//	           ↓ orchestrates
//	┌─────────────────────────────────────┐
//	│           Socket Manager            │  Registry, type index,
//	│   (register, connect, route)        │  health aggregation
//	└─────────────────────────────────────┘
//	           ↓ dispatches to
//	┌─────────────────────────────────────┐
//	│             Sockets                 │  Connected processing
//	│  (comprehension, monitoring, ...)   │  units, one per signal
//	└─────────────────────────────────────┘
//
// Signals are immutable value carriers: construction goes through one
// factory, change goes through copy-on-write updates, and every signal
// survives a JSON round trip losslessly. Routing is single-hop: a signal
// reaches at most one socket per Route call, and any failure converts to
// pass-through of the original signal rather than an error.
//
// # Framework Packages
//
// Core:
//   - signal: immutable typed signals and the boundary encoding
//   - socket: the processing unit contract and default sockets
//   - manager: registration, lifecycle, routing, health reporting
//   - engine: orchestration and the text processing entry point
//
// Boundary:
//   - codec: deterministic encoder and flat record decoder
//   - collaborator: the external learning interface and NATS client
//
// Infrastructure:
//   - config: YAML configuration with environment overrides
//   - errors: sentinel errors and transient/invalid/fatal classification
//   - health: status vocabulary and aggregation
//   - metric: Prometheus instrumentation
//
// # Usage
//
//	cfg := config.Default()
//	eng := engine.New(cfg, logger)
//
//	report, err := eng.Start()
//	if err != nil {
//	    return err
//	}
//	defer eng.Stop()
//
//	result, err := eng.ProcessText("hydrothermal vent temperature rising")
//
// Hosts needing more than the default sockets register their own before
// Start through eng.Manager().
//
// # Binary
//
// cmd/substrate runs the engine as a process: stdin lines in, JSON
// records out, with /healthz and /metrics served over HTTP.
package substrate
