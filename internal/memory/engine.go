// Package memory implements the cognitive-memory engine's business logic:
// the write path's dedup gate, the hybrid read path's vector+FTS fusion,
// the forget path, entity relations, and the maintenance lifecycle (decay,
// compaction, promotion, cleanup). It sits on top of package store's
// low-level CRUD primitives and never touches SQL directly.
package memory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/KyleWMiller/Loci/internal/embedprovider"
	"github.com/KyleWMiller/Loci/internal/logging"
	"github.com/KyleWMiller/Loci/internal/store"
)

// Engine is the concrete implementation behind every operation in spec.md
// §6's external-interfaces surface: store_memory, recall_memory,
// forget_memory, memory_stats, memory_inspect, store_relation. cmd/memoryengine
// adapts CLI flags onto these methods; no protocol server lives here.
type Engine struct {
	store    *store.Store
	embedder embedprovider.Embedder
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

// Option customises Engine construction.
type Option func(*Engine)

// WithClock overrides the engine's notion of "now", for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds an Engine over an already-opened store and embedder.
func New(s *store.Store, embedder embedprovider.Embedder, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		embedder: embedder,
		cfg:      cfg,
		log:      logging.For("memory"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.reconcileEmbeddingModel()
	return e
}

// reconcileEmbeddingModel persists the configured embedder's identity into
// the store's embedding_model metadata row the first time it is used
// against a store (spec §4.2's migrateV2 only seeds an empty placeholder),
// and logs a re-embed warning when a store already carries a different
// model's identity (spec §3, §6: "the model string is compared against the
// stored one and triggers a re-embed warning on mismatch").
func (e *Engine) reconcileEmbeddingModel() {
	stored, ok, err := e.store.GetMetadata(store.MetaKeyEmbeddingModel)
	if err != nil {
		e.log.Warn("read embedding_model metadata", zap.Error(err))
		return
	}
	name := e.embedder.Name()
	if !ok || stored == "" {
		if err := e.store.SetMetadata(store.MetaKeyEmbeddingModel, name); err != nil {
			e.log.Warn("seed embedding_model metadata", zap.Error(err))
		}
		return
	}
	if stored != name {
		e.log.Warn("configured embedding model differs from the model the store's existing memories were embedded with; vectors will not be comparable until re-embedded",
			zap.String("stored_model", stored), zap.String("configured_model", name))
	}
}

// Embed delegates to the configured embedder, wrapping failures as typed
// embedding errors. ctx is honoured for cancellation even though the
// underlying provider call is synchronous (spec §5: embedding inference is
// always dispatched to the worker pool by the caller; this method is what
// runs on that worker).
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, embeddingErr("embed text", err)
	}
	if err := embedprovider.ValidateDim(vec, e.embedder.Dimensions()); err != nil {
		return nil, embeddingErr("validate embedding", err)
	}
	return vec, nil
}

func (e *Engine) resolveGroup(group string) string {
	if group != "" {
		return group
	}
	return e.cfg.DefaultGroup
}
