package codec

import (
	"github.com/cortexmesh/substrate/signal"
)

// Record is the flat output projection of a processed signal.
type Record struct {
	SignalID     string           `json:"signal_id"`
	SignalType   string           `json:"signal_type"`
	SourceSocket string           `json:"source_socket"`
	Payload      map[string]any   `json:"payload"`
	Confidence   float64          `json:"confidence"`
	Priority     int              `json:"priority"`
	Metadata     map[string]any   `json:"metadata"`
	Encoding     *signal.Encoding `json:"graph_encoding,omitempty"`
}

// Decoder projects signals into output records.
type Decoder struct{}

// NewDecoder creates a decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode is a pure projection: every field is exposed verbatim, with the
// signal type in its external string form.
func (d *Decoder) Decode(sig *signal.Signal) Record {
	return Record{
		SignalID:     sig.ID(),
		SignalType:   sig.Type().String(),
		SourceSocket: sig.SourceSocket(),
		Payload:      sig.Payload(),
		Confidence:   sig.Confidence(),
		Priority:     sig.Priority(),
		Metadata:     sig.Metadata(),
		Encoding:     sig.GraphEncoding(),
	}
}
