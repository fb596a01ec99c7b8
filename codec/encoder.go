// Package codec holds the boundary adapters between substrate signals
// and the external learning collaborator: an Encoder producing embedding
// records and a Decoder projecting signals into flat output records.
package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cortexmesh/substrate/signal"
)

// DefaultEmbeddingDim is the embedding width produced by the encoder.
const DefaultEmbeddingDim = 384

// normEpsilon guards the L2 normalization against near-zero division.
const normEpsilon = 1e-12

// textKeys is the fixed, ordered set of payload keys checked for
// representative text before falling back to the whole payload.
var textKeys = [...]string{"text", "content", "message", "query"}

// Encoder translates signals into the collaborator's representation.
// Embeddings are deterministic, derived from a hash of the signal's
// representative text; a model-backed embedding backend is deferred.
type Encoder struct {
	dim int
}

// NewEncoder creates an encoder producing DefaultEmbeddingDim-wide vectors.
func NewEncoder() *Encoder {
	return &Encoder{dim: DefaultEmbeddingDim}
}

// NewEncoderWithDim creates an encoder with an explicit embedding width.
func NewEncoderWithDim(dim int) *Encoder {
	if dim <= 0 {
		dim = DefaultEmbeddingDim
	}
	return &Encoder{dim: dim}
}

// Encode produces the collaborator-facing encoding for a signal. The
// target id derives deterministically from "{type}:{sourceSocket}".
func (e *Encoder) Encode(sig *signal.Signal) *signal.Encoding {
	text := extractText(sig)

	return &signal.Encoding{
		Embedding: e.embed(text),
		TargetID:  fmt.Sprintf("%s:%s", sig.Type().String(), sig.SourceSocket()),
		Metadata: map[string]any{
			"signal_id":     sig.ID(),
			"signal_type":   sig.Type().String(),
			"source_socket": sig.SourceSocket(),
			"confidence":    sig.Confidence(),
			"priority":      sig.Priority(),
		},
	}
}

// extractText locates representative text in the payload, checking the
// well-known keys in order and falling back to a string form of the
// whole payload.
func extractText(sig *signal.Signal) string {
	payload := sig.Payload()
	for _, key := range textKeys {
		if value, ok := payload[key]; ok {
			if text, ok := value.(string); ok {
				return text
			}
		}
	}
	return fmt.Sprintf("%v", payload)
}

// embed derives a deterministic embedding from text: hash bytes are
// expanded to fill the dimension, mapped into [-1,1], then L2-normalized
// when the norm exceeds normEpsilon (left unmodified otherwise).
func (e *Encoder) embed(text string) []float32 {
	digest := sha256.Sum256([]byte(text))

	vec := make([]float32, e.dim)
	for i := range vec {
		offset := (i * 4) % (len(digest) - 3)
		raw := int32(binary.LittleEndian.Uint32(digest[offset : offset+4]))
		// Rotate the digest per lap so repeated windows differ
		raw ^= int32(i)
		vec[i] = float32(raw) / float32(math.MaxInt32)
	}

	return normalize(vec)
}

// normalize L2-normalizes a vector in place, skipping near-zero vectors.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm <= normEpsilon {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
