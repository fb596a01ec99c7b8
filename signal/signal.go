// Package signal defines the immutable unit of work flowing through the
// substrate. A Signal combines a typed payload with identity, provenance,
// and routing metadata.
//
// Signals are immutable after creation - all fields are set during
// construction and cannot be modified. Any change yields a new instance
// via WithUpdates, which deep-copies map fields so a mutation of an
// override can never reach back into the original.
//
// Construction using Functional Options:
//
//	// Simple signal (most common)
//	sig := signal.New("engine:input", signal.TypeSensory, payload)
//
//	// With tuning fields
//	sig := signal.New("engine:input", signal.TypeSensory, payload,
//	    signal.WithConfidence(0.85),
//	    signal.WithPriority(8))
package signal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cortexmesh/substrate/errors"
)

// DefaultPriority is the mid-value priority assigned when none is given.
const DefaultPriority = 5

// Encoding is the externally-attached representation produced by the
// boundary encoder. It is absent (nil) until the boundary populates it.
type Encoding struct {
	Embedding []float32      `json:"embedding"`
	TargetID  string         `json:"target_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Signal is an immutable typed message on the substrate bus.
type Signal struct {
	id         string
	sigType    Type
	source     string
	payload    map[string]any
	confidence float64
	priority   int
	timestamp  time.Time
	metadata   map[string]any
	encoding   *Encoding
}

// Option is a functional option for configuring Signal construction.
type Option func(*Signal)

// WithConfidence sets the confidence value. The nominal range is [0,1]
// but it is not enforced at construction.
func WithConfidence(confidence float64) Option {
	return func(s *Signal) {
		s.confidence = confidence
	}
}

// WithPriority sets the priority value.
func WithPriority(priority int) Option {
	return func(s *Signal) {
		s.priority = priority
	}
}

// WithMetadata sets the initial metadata map. The map is copied.
func WithMetadata(metadata map[string]any) Option {
	return func(s *Signal) {
		s.metadata = deepCopyMap(metadata)
	}
}

// WithEncoding attaches a boundary encoding at construction.
func WithEncoding(encoding *Encoding) Option {
	return func(s *Signal) {
		s.encoding = copyEncoding(encoding)
	}
}

// WithTimestamp sets a specific creation timestamp instead of time.Now().
// Useful for historical data import or testing.
func WithTimestamp(ts time.Time) Option {
	return func(s *Signal) {
		s.timestamp = ts
	}
}

// New is the single factory path for signals. It always stamps a fresh
// identity and the current timestamp, so no partially-initialized
// instance can exist.
func New(source string, sigType Type, payload map[string]any, opts ...Option) *Signal {
	s := &Signal{
		id:         uuid.New().String(),
		sigType:    sigType,
		source:     source,
		payload:    deepCopyMap(payload),
		confidence: 1.0,
		priority:   DefaultPriority,
		timestamp:  time.Now(),
		metadata:   map[string]any{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ID returns the unique signal identifier.
func (s *Signal) ID() string { return s.id }

// Type returns the signal type. Fixed for the life of the instance.
func (s *Signal) Type() Type { return s.sigType }

// SourceSocket returns the id of the socket that emitted this signal.
func (s *Signal) SourceSocket() string { return s.source }

// Payload returns the structured payload. Callers must treat the map as
// read-only; use WithUpdates to derive a changed signal.
func (s *Signal) Payload() map[string]any { return s.payload }

// Confidence returns the confidence value.
func (s *Signal) Confidence() float64 { return s.confidence }

// Priority returns the priority value.
func (s *Signal) Priority() int { return s.priority }

// Timestamp returns the creation time, stamped once at construction.
func (s *Signal) Timestamp() time.Time { return s.timestamp }

// Metadata returns the annotation map. Callers must treat it as read-only.
func (s *Signal) Metadata() map[string]any { return s.metadata }

// GraphEncoding returns the boundary encoding, or nil if none attached.
func (s *Signal) GraphEncoding() *Encoding { return s.encoding }

// Update is a functional option applied by WithUpdates. The signal type
// is deliberately not updatable: it is fixed at construction.
type Update func(*Signal)

// UpdateSource replaces the originating socket id.
func UpdateSource(source string) Update {
	return func(s *Signal) {
		s.source = source
	}
}

// UpdatePayload replaces the payload. The map is deep-copied.
func UpdatePayload(payload map[string]any) Update {
	return func(s *Signal) {
		s.payload = deepCopyMap(payload)
	}
}

// UpdateConfidence replaces the confidence value.
func UpdateConfidence(confidence float64) Update {
	return func(s *Signal) {
		s.confidence = confidence
	}
}

// UpdatePriority replaces the priority value.
func UpdatePriority(priority int) Update {
	return func(s *Signal) {
		s.priority = priority
	}
}

// UpdateMetadata replaces the metadata map. The map is deep-copied.
func UpdateMetadata(metadata map[string]any) Update {
	return func(s *Signal) {
		s.metadata = deepCopyMap(metadata)
	}
}

// UpdateEncoding replaces the boundary encoding.
func UpdateEncoding(encoding *Encoding) Update {
	return func(s *Signal) {
		s.encoding = copyEncoding(encoding)
	}
}

// WithUpdates returns a new signal identical to the receiver except for
// the named updates. The receiver is never modified; unspecified fields,
// including nested maps, are unaffected by later mutation of any map
// passed to an update.
func (s *Signal) WithUpdates(updates ...Update) *Signal {
	clone := &Signal{
		id:         s.id,
		sigType:    s.sigType,
		source:     s.source,
		payload:    deepCopyMap(s.payload),
		confidence: s.confidence,
		priority:   s.priority,
		timestamp:  s.timestamp,
		metadata:   deepCopyMap(s.metadata),
		encoding:   copyEncoding(s.encoding),
	}

	for _, update := range updates {
		update(clone)
	}

	return clone
}

// Equal reports whether two signals are field-wise identical. Used by the
// routing layer's pass-through contract and in tests.
func (s *Signal) Equal(other *Signal) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.id != other.id || s.sigType != other.sigType || s.source != other.source ||
		s.confidence != other.confidence || s.priority != other.priority ||
		!s.timestamp.Equal(other.timestamp) {
		return false
	}
	a, errA := json.Marshal(s)
	b, errB := json.Marshal(other)
	if errA != nil || errB != nil {
		return false
	}
	return string(a) == string(b)
}

// wireFormat is the JSON wire representation. Timestamps travel as unix
// nanoseconds so the round trip restores them exactly.
type wireFormat struct {
	ID           string         `json:"signal_id"`
	Type         Type           `json:"signal_type"`
	SourceSocket string         `json:"source_socket"`
	Payload      map[string]any `json:"payload"`
	Confidence   float64        `json:"confidence"`
	Priority     int            `json:"priority"`
	Timestamp    int64          `json:"timestamp"`
	Metadata     map[string]any `json:"metadata"`
	Encoding     *Encoding      `json:"graph_encoding,omitempty"`
}

// MarshalJSON implements json.Marshaler. This allows signals to be
// serialized even though their fields are private.
func (s *Signal) MarshalJSON() ([]byte, error) {
	wire := wireFormat{
		ID:           s.id,
		Type:         s.sigType,
		SourceSocket: s.source,
		Payload:      s.payload,
		Confidence:   s.confidence,
		Priority:     s.priority,
		Timestamp:    s.timestamp.UnixNano(),
		Metadata:     s.metadata,
		Encoding:     s.encoding,
	}
	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler, restoring every field from
// the wire form, including the enumerated type from its string form.
func (s *Signal) UnmarshalJSON(data []byte) error {
	var wire wireFormat
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.WrapInvalid(err, "Signal", "UnmarshalJSON", "wire format decode")
	}

	s.id = wire.ID
	s.sigType = wire.Type
	s.source = wire.SourceSocket
	s.payload = wire.Payload
	s.confidence = wire.Confidence
	s.priority = wire.Priority
	s.timestamp = time.Unix(0, wire.Timestamp)
	s.metadata = wire.Metadata
	s.encoding = wire.Encoding

	if s.payload == nil {
		s.payload = map[string]any{}
	}
	if s.metadata == nil {
		s.metadata = map[string]any{}
	}
	return nil
}

// deepCopyMap copies a string-keyed map, recursing into nested
// map[string]any values and copying []any slices. Deep enough that
// mutating a copy never reaches the original.
func deepCopyMap(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}

func copyEncoding(e *Encoding) *Encoding {
	if e == nil {
		return nil
	}
	out := &Encoding{TargetID: e.TargetID}
	if e.Metadata != nil {
		out.Metadata = deepCopyMap(e.Metadata)
	}
	if e.Embedding != nil {
		out.Embedding = make([]float32, len(e.Embedding))
		copy(out.Embedding, e.Embedding)
	}
	return out
}
