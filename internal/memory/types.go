package memory

import (
	"encoding/json"

	"github.com/KyleWMiller/Loci/internal/memtypes"
)

// StoreMemoryRequest is the store_memory operation's input. Embedding must
// already be computed by the caller's embedder and L2-normalised.
type StoreMemoryRequest struct {
	Content     string
	Category    memtypes.Category
	Group       string
	Scope       memtypes.Scope
	HasScope    bool
	Confidence  float64
	HasConfidence bool
	Metadata    json.RawMessage
	Supersedes  string
	Embedding   []float32

	// DedupThresholdOverride, when > 0, replaces the engine's configured
	// dedup threshold for this call. Used by compaction (0.99) and
	// promotion (promotion_similarity) when they insert derived rows.
	DedupThresholdOverride float64
}

// StoreMemoryResponse is the store_memory operation's output.
type StoreMemoryResponse struct {
	ID           string
	Category     memtypes.Category
	Deduplicated bool
	Superseded   string
}

// RecallFilter narrows query-recall and carries the required group.
type RecallFilter struct {
	Group        string
	Category     memtypes.Category
	HasCategory  bool
	Scope        memtypes.Scope
	HasScope     bool
	MinConfidence float64
}

// RecallConfig tunes the query-recall algorithm; zero values fall back to
// the engine's configured defaults.
type RecallConfig struct {
	MaxResults  int
	TokenBudget int
	RRFK        int
	SummaryOnly bool
}

// RecallResult is one hydrated, scored memory in a recall response.
type RecallResult struct {
	Memory  *memtypes.Memory
	Score   float64
	Preview string // set only when the response is a summary projection
}

// RecallResponse is the shared output shape for query recall and id
// hydration.
type RecallResponse struct {
	Results      []RecallResult
	TotalMatched int
	TokenEstimate int
}

// ForgetMemoryResponse is forget_memory's output.
type ForgetMemoryResponse struct {
	ID         string
	HardDeleted bool
}

// InspectResponse is memory_inspect's output.
type InspectResponse struct {
	Memory    *memtypes.Memory
	Relations []RelationPreview
	Audit     []*memtypes.AuditEntry
}

// RelationPreview pairs a relation with an 100-char preview of its object
// memory's content.
type RelationPreview struct {
	Relation       *memtypes.Relation
	ObjectPreview  string
}

// StoreRelationResponse is store_relation's output.
type StoreRelationResponse struct {
	ID           string
	Deduplicated bool
}

// StatsResponse is memory_stats's output.
type StatsResponse struct {
	TotalCount      int
	ActiveCount     int
	SupersededCount int
	CountByCategory map[string]int
	CountByScope    map[string]int
	RelationCount   int
	FileSizeBytes   int64
	OldestCreatedAt string
	NewestCreatedAt string
}

// HealthResponse is the diagnostic command's output.
type HealthResponse struct {
	SchemaVersion    int
	EmbeddingModel   string
	IntegrityOK      bool
	VecVersion       string
	RowCount         int
}

// MaintenanceReport aggregates the outcome of one maintenance pass.
type MaintenanceReport struct {
	DecayedByCategory    map[string]int
	CompactedGroups      int
	CompactedSourceRows  int
	ClustersFound        int
	SemanticsCreated     int
	CleanedUp            int
	Errors               []error
}
