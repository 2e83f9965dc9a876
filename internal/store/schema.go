package store

import "fmt"

// schemaV1 creates the row table, the FTS5 external-content index, the
// vec0 dense-vector index, the relations table, the append-only audit
// log, and the schema metadata key-value table.
//
// The FTS and vector indexes are populated by explicit application-level
// writes during the write path (see memory.Engine), not by triggers: the
// write path treats "insert row" and "insert into FTS index" and "insert
// embedding" as three distinct, individually ordered transactional steps.
func schemaV1(dim int) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			content TEXT NOT NULL,
			source_group TEXT,
			scope TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 1.0,
			access_count INTEGER NOT NULL DEFAULT 0,
			last_accessed DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			superseded_by TEXT,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_category ON memories(category)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_scope_group ON memories(scope, source_group)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_superseded ON memories(superseded_by)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at)`,

		`CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
			content,
			category UNINDEXED,
			content=memories,
			content_rowid=rowid
		)`,

		fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS memories_vec USING vec0(
			id TEXT PRIMARY KEY,
			embedding float[%d]
		)`, dim),

		`CREATE TABLE IF NOT EXISTS relations (
			id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
			predicate TEXT NOT NULL,
			object_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			UNIQUE(subject_id, predicate, object_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_subject ON relations(subject_id)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_object ON relations(object_id)`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			operation TEXT NOT NULL,
			memory_id TEXT NOT NULL,
			details TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_memory ON audit_log(memory_id)`,

		`CREATE TABLE IF NOT EXISTS schema_metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
}
