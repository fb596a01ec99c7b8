// Package engine orchestrates the substrate: it owns the socket manager,
// the encode/decode boundary, and the optional learning collaborator,
// and exposes the text processing entry point hosts call.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cortexmesh/substrate/codec"
	"github.com/cortexmesh/substrate/collaborator"
	"github.com/cortexmesh/substrate/config"
	"github.com/cortexmesh/substrate/errors"
	"github.com/cortexmesh/substrate/manager"
	"github.com/cortexmesh/substrate/metric"
	"github.com/cortexmesh/substrate/signal"
	"github.com/cortexmesh/substrate/socket"
)

// Version identifies the substrate release in startup and health reports.
const Version = "1.0.0"

// inputSource is the source socket id stamped on signals created from
// raw host input.
const inputSource = "engine:input"

// State tracks the engine lifecycle. Transitions are forward-only:
// unstarted -> started -> stopped.
type State int

const (
	StateUnstarted State = iota
	StateStarted
	StateStopped
)

// String returns the external form of the state.
func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Engine wires sockets, routing, the codec boundary, and the optional
// collaborator into one processing surface. All methods are safe for
// concurrent callers.
type Engine struct {
	mu    sync.Mutex
	state State

	cfg     *config.Config
	manager *manager.Manager
	encoder *codec.Encoder
	decoder *codec.Decoder
	collab  collaborator.Collaborator

	processed atomic.Int64

	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithCollaborator injects a collaborator, bypassing the config-driven
// client construction at Start.
func WithCollaborator(c collaborator.Collaborator) Option {
	return func(e *Engine) {
		e.collab = c
	}
}

// WithMetrics wires a metrics instance shared with the manager.
func WithMetrics(m *metric.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an engine from config. Nothing connects until Start.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:     cfg,
		encoder: codec.NewEncoderWithDim(cfg.Engine.EmbeddingDim),
		decoder: codec.NewDecoder(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}

	mgrOpts := []manager.Option{}
	if e.metrics != nil {
		mgrOpts = append(mgrOpts, manager.WithMetrics(e.metrics))
	}
	e.manager = manager.New(cfg.Sockets.MaxSockets, logger, mgrOpts...)

	return e
}

// StartReport summarizes what Start accomplished.
type StartReport struct {
	Status       string                `json:"status"` // started | already_started
	Version      string                `json:"version"`
	Sockets      map[string]bool       `json:"sockets"`
	Collaborator string                `json:"collaborator"` // connected | standalone
	Hardware     *manager.Capabilities `json:"hardware,omitempty"`
}

// Start registers the default sockets, connects everything, and brings up
// the collaborator when configured. Collaborator failure degrades to
// standalone mode; only registration of the default sockets can fail.
// Calling Start on a started engine returns an already_started report.
func (e *Engine) Start() (*StartReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateStarted {
		return &StartReport{
			Status:       "already_started",
			Version:      Version,
			Collaborator: e.collaboratorMode(),
		}, nil
	}

	for _, s := range []socket.Socket{
		socket.NewComprehension(e.logger),
		socket.NewMonitoring(e.logger),
	} {
		if err := e.manager.Register(s); err != nil {
			return nil, errors.Wrap(err, "Engine", "Start", "register default socket")
		}
	}

	results := e.manager.ConnectAll()

	if e.collab == nil && e.cfg.Collaborator.Enabled {
		client, err := collaborator.NewNATSClient(e.cfg.Collaborator.URL,
			collaborator.WithTimeout(e.cfg.Collaborator.Timeout.AsDuration()),
			collaborator.WithLogger(e.logger),
		)
		if err != nil {
			e.logger.Warn("Collaborator unavailable, running standalone", "error", err)
		} else {
			e.collab = client
		}
	}

	e.state = StateStarted
	if e.metrics != nil {
		e.metrics.EngineStatus.Set(1)
	}

	e.logger.Info("Engine started",
		"version", Version,
		"sockets", len(results),
		"collaborator", e.collaboratorMode())

	return &StartReport{
		Status:       "started",
		Version:      Version,
		Sockets:      results,
		Collaborator: e.collaboratorMode(),
		Hardware:     e.manager.Hardware(),
	}, nil
}

// Result is the flat outcome of one ProcessText call.
type Result struct {
	codec.Record
	ProcessID string                `json:"process_id"`
	Count     int64                 `json:"count"`
	Context   *collaborator.Context `json:"context,omitempty"`
}

// ProcessText wraps text in a sensory signal, routes it, runs the
// optional collaborator boundary, and projects the outcome. Collaborator
// failures are absorbed; only an unstarted engine returns an error.
func (e *Engine) ProcessText(text string) (*Result, error) {
	e.mu.Lock()
	if e.state != StateStarted {
		e.mu.Unlock()
		return nil, errors.WrapInvalid(errors.ErrNotStarted, "Engine", "ProcessText", "state check")
	}
	collab := e.collab
	e.mu.Unlock()

	count := e.processed.Add(1)
	processID := fmt.Sprintf("%s-%d", e.cfg.Engine.ID, count)

	sig := signal.New(inputSource, signal.TypeSensory,
		map[string]any{"text": text},
		signal.WithMetadata(map[string]any{"process_id": processID}),
	)
	if e.metrics != nil {
		e.metrics.SignalsCreated.WithLabelValues(sig.Type().String()).Inc()
	}

	routed := e.manager.Route(sig)

	var ctx *collaborator.Context
	if collab != nil {
		encoding := e.encoder.Encode(routed)
		routed = routed.WithUpdates(signal.UpdateEncoding(encoding))
		ctx = e.consultCollaborator(collab, encoding)
	}

	if e.metrics != nil {
		e.metrics.TextProcessed.Inc()
	}

	return &Result{
		Record:    e.decoder.Decode(routed),
		ProcessID: processID,
		Count:     count,
		Context:   ctx,
	}, nil
}

// consultCollaborator runs the learning boundary for one signal. Every
// failure is logged and absorbed so processing never depends on the
// collaborator being reachable.
func (e *Engine) consultCollaborator(collab collaborator.Collaborator, encoding *signal.Encoding) *collaborator.Context {
	ctx, err := collab.GetContext(encoding.Embedding)
	if err != nil {
		e.logger.Warn("Collaborator context lookup failed", "error", err)
		e.recordCollabRequest("context", "error")
		return nil
	}
	e.recordCollabRequest("context", "ok")

	if err := collab.RecordOutcome(encoding.Embedding, encoding.TargetID, true, encoding.Metadata); err != nil {
		e.logger.Warn("Collaborator outcome report failed", "error", err)
		e.recordCollabRequest("outcome", "error")
	} else {
		e.recordCollabRequest("outcome", "ok")
	}

	return ctx
}

func (e *Engine) recordCollabRequest(operation, status string) {
	if e.metrics != nil {
		e.metrics.CollaboratorRequests.WithLabelValues(operation, status).Inc()
	}
}

// Stop disconnects every socket and shuts the collaborator down.
// Idempotent; stopping an unstarted engine is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateStarted {
		return
	}

	e.manager.DisconnectAll()

	if e.collab != nil {
		if err := e.collab.Shutdown(); err != nil {
			e.logger.Warn("Collaborator shutdown failed", "error", err)
		}
	}

	e.state = StateStopped
	if e.metrics != nil {
		e.metrics.EngineStatus.Set(2)
	}
	e.logger.Info("Engine stopped", "processed", e.processed.Load())
}

// Report is the engine health summary.
type Report struct {
	Status       string         `json:"status"`
	State        string         `json:"state"`
	Version      string         `json:"version"`
	Processed    int64          `json:"processed"`
	Manager      manager.Report `json:"manager"`
	Collaborator map[string]any `json:"collaborator,omitempty"`
}

// Health reports engine and per-socket status. A non-started engine is
// always offline regardless of socket states.
func (e *Engine) Health() Report {
	e.mu.Lock()
	state := e.state
	collab := e.collab
	e.mu.Unlock()

	mgrReport := e.manager.HealthReport()

	status := mgrReport.Status
	if state != StateStarted {
		status = "offline"
	}

	report := Report{
		Status:    status,
		State:     state.String(),
		Version:   Version,
		Processed: e.processed.Load(),
		Manager:   mgrReport,
	}
	if collab != nil {
		report.Collaborator = collab.Stats()
	}
	return report
}

// Manager exposes the socket manager so hosts can register additional
// sockets before Start.
func (e *Engine) Manager() *manager.Manager {
	return e.manager
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// collaboratorMode assumes e.mu is held.
func (e *Engine) collaboratorMode() string {
	if e.collab != nil {
		return "connected"
	}
	return "standalone"
}
