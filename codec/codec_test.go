package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexmesh/substrate/signal"
)

func TestEncode_TargetID(t *testing.T) {
	enc := NewEncoder()
	sig := signal.New("substrate:comprehension", signal.TypeSensory, map[string]any{"text": "hi"})

	result := enc.Encode(sig)
	assert.Equal(t, "sensory:substrate:comprehension", result.TargetID)
}

func TestEncode_Metadata(t *testing.T) {
	enc := NewEncoder()
	sig := signal.New("test:src", signal.TypeInference, map[string]any{"text": "hi"},
		signal.WithConfidence(0.7),
		signal.WithPriority(3),
	)

	result := enc.Encode(sig)
	assert.Equal(t, sig.ID(), result.Metadata["signal_id"])
	assert.Equal(t, "inference", result.Metadata["signal_type"])
	assert.Equal(t, "test:src", result.Metadata["source_socket"])
	assert.Equal(t, 0.7, result.Metadata["confidence"])
	assert.Equal(t, 3, result.Metadata["priority"])
}

func TestEncode_TextKeyOrder(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		other   map[string]any
	}{
		{"text wins over content", map[string]any{"text": "a", "content": "b"}, map[string]any{"text": "x", "content": "b"}},
		{"content wins over message", map[string]any{"content": "a", "message": "b"}, map[string]any{"content": "x", "message": "b"}},
		{"message wins over query", map[string]any{"message": "a", "query": "b"}, map[string]any{"message": "x", "query": "b"}},
	}

	enc := NewEncoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := enc.Encode(signal.New("s", signal.TypeSensory, tt.payload))
			b := enc.Encode(signal.New("s", signal.TypeSensory, tt.other))
			// Changing only the higher-precedence key changes the embedding
			assert.NotEqual(t, a.Embedding, b.Embedding)

			// Changing a lower-precedence key does not
			lower := map[string]any{}
			for k, v := range tt.payload {
				lower[k] = v
			}
			for k := range lower {
				if k != "text" && k != firstKey(tt.payload) {
					lower[k] = "changed"
				}
			}
			c := enc.Encode(signal.New("s", signal.TypeSensory, lower))
			assert.Equal(t, a.Embedding, c.Embedding)
		})
	}
}

// firstKey returns the highest-precedence text key present in the payload.
func firstKey(payload map[string]any) string {
	for _, k := range []string{"text", "content", "message", "query"} {
		if _, ok := payload[k]; ok {
			return k
		}
	}
	return ""
}

func TestEncode_NonStringTextKeySkipped(t *testing.T) {
	enc := NewEncoder()
	a := enc.Encode(signal.New("s", signal.TypeSensory, map[string]any{"text": 42.0, "content": "real"}))
	b := enc.Encode(signal.New("s", signal.TypeSensory, map[string]any{"text": 43.0, "content": "real"}))
	// A non-string "text" is skipped in favor of "content", so both
	// signals embed the same representative text.
	assert.Equal(t, a.Embedding, b.Embedding)
}

func TestEncode_FallbackStringifiesPayload(t *testing.T) {
	enc := NewEncoder()
	a := enc.Encode(signal.New("s", signal.TypeSensory, map[string]any{"k": "v1"}))
	b := enc.Encode(signal.New("s", signal.TypeSensory, map[string]any{"k": "v2"}))
	assert.NotEqual(t, a.Embedding, b.Embedding)
}

func TestEncode_Deterministic(t *testing.T) {
	enc := NewEncoder()
	a := enc.Encode(signal.New("s", signal.TypeSensory, map[string]any{"text": "same"}))
	b := enc.Encode(signal.New("s", signal.TypeSensory, map[string]any{"text": "same"}))
	assert.Equal(t, a.Embedding, b.Embedding)
}

func TestEncode_Normalized(t *testing.T) {
	enc := NewEncoder()
	result := enc.Encode(signal.New("s", signal.TypeSensory, map[string]any{"text": "normalize me"}))

	require.Len(t, result.Embedding, DefaultEmbeddingDim)

	var sum float64
	for _, v := range result.Embedding {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5, "embedding is L2-normalized")
}

func TestNormalize_NearZeroLeftUnmodified(t *testing.T) {
	vec := []float32{0, 0, 0}
	result := normalize(vec)
	assert.Equal(t, []float32{0, 0, 0}, result, "near-zero vectors skip division")
}

func TestNewEncoderWithDim(t *testing.T) {
	enc := NewEncoderWithDim(16)
	result := enc.Encode(signal.New("s", signal.TypeSensory, map[string]any{"text": "short"}))
	assert.Len(t, result.Embedding, 16)

	fallback := NewEncoderWithDim(-1)
	result = fallback.Encode(signal.New("s", signal.TypeSensory, map[string]any{"text": "short"}))
	assert.Len(t, result.Embedding, DefaultEmbeddingDim)
}

func TestDecode_VerbatimProjection(t *testing.T) {
	encoding := &signal.Encoding{
		Embedding: []float32{0.5, 0.5},
		TargetID:  "sensory:test:src",
		Metadata:  map[string]any{"dim": 2.0},
	}
	sig := signal.New("test:src", signal.TypeSensory,
		map[string]any{"text": "hello"},
		signal.WithConfidence(0.9),
		signal.WithPriority(7),
		signal.WithMetadata(map[string]any{"hop": 1.0}),
		signal.WithEncoding(encoding),
	)

	record := NewDecoder().Decode(sig)

	assert.Equal(t, sig.ID(), record.SignalID)
	assert.Equal(t, "sensory", record.SignalType)
	assert.Equal(t, "test:src", record.SourceSocket)
	assert.Equal(t, map[string]any{"text": "hello"}, record.Payload)
	assert.Equal(t, 0.9, record.Confidence)
	assert.Equal(t, 7, record.Priority)
	assert.Equal(t, map[string]any{"hop": 1.0}, record.Metadata)
	assert.Equal(t, sig.GraphEncoding(), record.Encoding)
}

func TestDecode_NoEncoding(t *testing.T) {
	record := NewDecoder().Decode(signal.New("s", signal.TypeHealth, nil))
	assert.Nil(t, record.Encoding)
	assert.NotNil(t, record.Payload)
	assert.NotNil(t, record.Metadata)
}
