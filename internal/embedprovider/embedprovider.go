// Package embedprovider defines the embedding boundary the memory engine
// consumes. The engine never generates embeddings itself (spec: the
// embedding model is an external collaborator) — callers hand it a
// precomputed vector, and this package's interface is what the CLI and
// tests use to obtain one.
package embedprovider

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// Embedder generates fixed-dimension, L2-normalised embeddings for text.
// Implementations must be safe to share but are not required to be
// internally concurrent; callers needing thread-safety should wrap with
// Serialized.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Name() string
}

// Serialized wraps an Embedder with a mutex, matching the spec's
// requirement that the embedding provider is treated as single-threaded
// because the underlying inference engine is not thread-safe.
type Serialized struct {
	mu   sync.Mutex
	inner Embedder
}

// NewSerialized wraps inner so concurrent callers queue on a mutex.
func NewSerialized(inner Embedder) *Serialized {
	return &Serialized{inner: inner}
}

func (s *Serialized) Embed(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Embed(ctx, text)
}

func (s *Serialized) Dimensions() int { return s.inner.Dimensions() }
func (s *Serialized) Name() string    { return s.inner.Name() }

// Dim is the compile-time vector dimension the store's vec0 index is sized
// for. It must match every Embedder's Dimensions().
const Dim = 384

// HashEmbedder is a deterministic, offline Embedder used by tests and by
// the CLI's --embedder=local-hash flag. It derives a unit-normalised
// pseudo-embedding from a SHA-256-seeded stream, so the same text always
// produces the same vector without any model dependency. It is not
// semantically meaningful; it exists to exercise the storage and ranking
// pipeline deterministically.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder returns a HashEmbedder producing vectors of dimension dim.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = Dim
	}
	return &HashEmbedder{dim: dim}
}

func (h *HashEmbedder) Dimensions() int { return h.dim }
func (h *HashEmbedder) Name() string    { return "local-hash" }

func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dim)
	seed := sha256.Sum256([]byte(text))
	state := binary.LittleEndian.Uint64(seed[:8])
	for i := range vec {
		state = state*6364136223846793005 + 1442695040888963407
		// Map the top bits to a signed unit range.
		v := float32(int32(state>>32)) / float32(math.MaxInt32)
		vec[i] = v
	}
	normalize(vec)
	return vec, nil
}

// normalize L2-normalises vec in place. All embeddings persisted by this
// engine must be unit vectors (see design note on L2<->cosine conversion);
// this guards the deterministic test embedder the same way a real
// provider would guarantee it.
func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return
	}
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
}

// errUnsupportedDim is returned when a caller passes an embedding whose
// length does not match the configured store dimension.
func errUnsupportedDim(got, want int) error {
	return fmt.Errorf("embedprovider: embedding dimension %d does not match configured dimension %d", got, want)
}

// ValidateDim checks that vec has exactly dim elements.
func ValidateDim(vec []float32, dim int) error {
	if len(vec) != dim {
		return errUnsupportedDim(len(vec), dim)
	}
	return nil
}
