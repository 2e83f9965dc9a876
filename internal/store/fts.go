package store

import (
	"fmt"
	"strings"
)

// InsertFTSTx adds a row to the FTS5 external-content index. content and
// category are duplicated from the memories row being inserted in the
// same transaction; FTS5 external-content tables don't read the backing
// table automatically, the application must write both sides.
func (s *Store) InsertFTSTx(tx execer, rowid int64, content, category string) error {
	_, err := tx.Exec(
		`INSERT INTO memories_fts(rowid, content, category) VALUES (?, ?, ?)`,
		rowid, content, category,
	)
	if err != nil {
		return fmt.Errorf("store: insert fts rowid %d: %w", rowid, err)
	}
	return nil
}

// DeleteFTSTx removes a row from the FTS index using the external-content
// "delete" command, which requires the original content and category to
// correctly unwind the index's internal shadow tables.
func (s *Store) DeleteFTSTx(tx execer, rowid int64, content, category string) error {
	_, err := tx.Exec(
		`INSERT INTO memories_fts(memories_fts, rowid, content, category) VALUES ('delete', ?, ?, ?)`,
		rowid, content, category,
	)
	if err != nil {
		return fmt.Errorf("store: delete fts rowid %d: %w", rowid, err)
	}
	return nil
}

// RowID looks up the implicit rowid backing a memories.id, needed because
// the FTS5 external-content table is keyed by rowid, not by our text id.
func (s *Store) RowID(id string) (int64, error) {
	var rowid int64
	err := s.DB.QueryRow(`SELECT rowid FROM memories WHERE id = ?`, id).Scan(&rowid)
	if err != nil {
		return 0, fmt.Errorf("store: rowid for %s: %w", id, err)
	}
	return rowid, nil
}

func (s *Store) RowIDTx(tx execer, id string) (int64, error) {
	var rowid int64
	err := tx.QueryRow(`SELECT rowid FROM memories WHERE id = ?`, id).Scan(&rowid)
	if err != nil {
		return 0, fmt.Errorf("store: rowid for %s: %w", id, err)
	}
	return rowid, nil
}

// FTSMatch is one row of a full-text search hit: the memory id and its
// BM25 rank (more negative is a better match, per SQLite FTS5 convention).
type FTSMatch struct {
	ID   string
	Rank float64
}

// BuildFTSQuery tokenizes a free-text query into an FTS5 MATCH expression.
// Each whitespace-delimited token is quote-stripped and then wrapped in
// double quotes so punctuation inside a token can't be misread as FTS5
// query syntax; tokens are space-joined, which FTS5 treats as an implicit
// AND of phrases.
func BuildFTSQuery(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		quoted = append(quoted, fmt.Sprintf(`"%s"`, f))
	}
	return strings.Join(quoted, " ")
}

// FTSSearch runs a BM25-ranked search against the FTS index, joining back
// to memories.rowid to recover the text id, and limits to limit hits.
func (s *Store) FTSSearch(queryText string, limit int) ([]FTSMatch, error) {
	q := BuildFTSQuery(queryText)
	if q == "" || limit <= 0 {
		return nil, nil
	}
	rows, err := s.DB.Query(
		`SELECT m.id, bm25(memories_fts) AS rank
		 FROM memories_fts
		 JOIN memories m ON m.rowid = memories_fts.rowid
		 WHERE memories_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		q, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: fts search: %w", err)
	}
	defer rows.Close()

	var out []FTSMatch
	for rows.Next() {
		var m FTSMatch
		if err := rows.Scan(&m.ID, &m.Rank); err != nil {
			return nil, fmt.Errorf("store: fts scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
