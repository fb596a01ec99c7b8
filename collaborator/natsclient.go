package collaborator

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/cortexmesh/substrate/errors"
)

// Request subjects on the collaborator's NATS surface
const (
	subjectContext = "substrate.learn.context"
	subjectOutcome = "substrate.learn.outcome"
	subjectStats   = "substrate.learn.stats"
)

// NATSClient talks to a learning collaborator over NATS request/reply
// with JSON payloads. It satisfies Collaborator; construction failure is
// reported to the caller, which degrades to standalone mode rather than
// aborting.
type NATSClient struct {
	conn    *nats.Conn
	timeout time.Duration
	logger  *slog.Logger
}

// ClientOption configures a NATSClient.
type ClientOption func(*NATSClient)

// WithTimeout sets the per-request timeout. Default is 2s.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *NATSClient) {
		c.timeout = timeout
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *NATSClient) {
		c.logger = logger
	}
}

// NewNATSClient connects to the collaborator at url.
func NewNATSClient(url string, opts ...ClientOption) (*NATSClient, error) {
	c := &NATSClient{
		timeout: 2 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, err := nats.Connect(url,
		nats.Name("substrate-collaborator"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, errors.WrapTransient(errors.ErrCollaboratorUnavailable,
			"NATSClient", "NewNATSClient", "connect")
	}
	c.conn = conn

	return c, nil
}

// outcomeRequest is the wire form for RecordOutcome.
type outcomeRequest struct {
	Embedding []float32      `json:"embedding"`
	TargetID  string         `json:"target_id"`
	Success   bool           `json:"success"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// contextRequest is the wire form for GetContext.
type contextRequest struct {
	Embedding []float32 `json:"embedding"`
}

// RecordOutcome reports a processing outcome for learning attribution.
func (c *NATSClient) RecordOutcome(embedding []float32, targetID string, success bool, metadata map[string]any) error {
	payload, err := json.Marshal(outcomeRequest{
		Embedding: embedding,
		TargetID:  targetID,
		Success:   success,
		Metadata:  metadata,
	})
	if err != nil {
		return errors.WrapInvalid(err, "NATSClient", "RecordOutcome", "request encode")
	}

	if _, err := c.conn.Request(subjectOutcome, payload, c.timeout); err != nil {
		return errors.WrapTransient(err, "NATSClient", "RecordOutcome", "request")
	}
	return nil
}

// GetContext returns enrichment for an embedding.
func (c *NATSClient) GetContext(embedding []float32) (*Context, error) {
	payload, err := json.Marshal(contextRequest{Embedding: embedding})
	if err != nil {
		return nil, errors.WrapInvalid(err, "NATSClient", "GetContext", "request encode")
	}

	msg, err := c.conn.Request(subjectContext, payload, c.timeout)
	if err != nil {
		return nil, errors.WrapTransient(err, "NATSClient", "GetContext", "request")
	}

	var ctx Context
	if err := json.Unmarshal(msg.Data, &ctx); err != nil {
		return nil, errors.WrapInvalid(err, "NATSClient", "GetContext", "response decode")
	}
	return &ctx, nil
}

// Stats returns collaborator telemetry, or an empty map on any failure.
func (c *NATSClient) Stats() map[string]any {
	msg, err := c.conn.Request(subjectStats, nil, c.timeout)
	if err != nil {
		c.logger.Warn("Collaborator stats unavailable", "error", err)
		return map[string]any{}
	}

	var stats map[string]any
	if err := json.Unmarshal(msg.Data, &stats); err != nil {
		c.logger.Warn("Collaborator stats decode failed", "error", err)
		return map[string]any{}
	}
	return stats
}

// Shutdown drains and closes the connection.
func (c *NATSClient) Shutdown() error {
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
		return errors.WrapTransient(err, "NATSClient", "Shutdown", "drain")
	}
	return nil
}

// Interface compliance
var _ Collaborator = (*NATSClient)(nil)
