package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"math"

	_ "modernc.org/sqlite" // pure-Go driver, no cgo

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// SQLiteStore backs the index with a relational database via
// modernc.org/sqlite (pure Go, so the binary stays cgo-free), holding
// (embedding, frame_number, document_id, chunk_text, metadata) rows
// directly. Cosine search is computed in Go over a full table scan:
// SQLite has no native vector index, so this backend is a durable
// relational store, not an ANN engine.
type SQLiteStore struct {
	db *sql.DB
}

var _ VectorDatabase = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS index_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chunk_text TEXT NOT NULL,
	embedding BLOB NOT NULL,
	frame_number INTEGER NOT NULL,
	document_id TEXT NOT NULL,
	metadata TEXT
);
CREATE INDEX IF NOT EXISTS idx_document_id ON index_entries(document_id);
`

// NewSQLiteStore opens (creating if necessary) a SQLite-backed index at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, vaulterrors.IndexBackendError("failed to open sqlite database", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, vaulterrors.IndexBackendError("failed to create sqlite schema", err)
	}

	return &SQLiteStore{db: db}, nil
}

func encodeEmbedding(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeEmbedding(b []byte) []float32 {
	n := len(b) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// Upsert inserts each entry as a new row (append semantics).
func (s *SQLiteStore) Upsert(ctx context.Context, entries []IndexEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return vaulterrors.IndexBackendError("failed to begin sqlite transaction", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO index_entries (chunk_text, embedding, frame_number, document_id, metadata) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return vaulterrors.IndexBackendError("failed to prepare sqlite insert", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			_ = tx.Rollback()
			return vaulterrors.IndexBackendError("failed to marshal entry metadata", err)
		}
		if _, err := stmt.ExecContext(ctx, e.ChunkText, encodeEmbedding(e.Embedding), e.FrameNumber, e.DocumentID, string(meta)); err != nil {
			_ = tx.Rollback()
			return vaulterrors.IndexBackendError("failed to insert index entry", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return vaulterrors.IndexBackendError("failed to commit sqlite transaction", err)
	}
	return nil
}

// Search scans every row, scores it by cosine similarity in Go, and
// returns the top k.
func (s *SQLiteStore) Search(ctx context.Context, query []float32, k int) ([]IndexEntry, error) {
	if k <= 0 {
		return []IndexEntry{}, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT chunk_text, embedding, frame_number, document_id, metadata FROM index_entries")
	if err != nil {
		return nil, vaulterrors.IndexBackendError("failed to query sqlite index entries", err)
	}
	defer rows.Close()

	var scored []IndexEntry
	for rows.Next() {
		var chunkText, documentID, metaJSON string
		var embeddingBytes []byte
		var frameNumber int
		if err := rows.Scan(&chunkText, &embeddingBytes, &frameNumber, &documentID, &metaJSON); err != nil {
			return nil, vaulterrors.IndexBackendError("failed to scan sqlite row", err)
		}

		var meta map[string]string
		if metaJSON != "" {
			_ = json.Unmarshal([]byte(metaJSON), &meta)
		}

		embedding := decodeEmbedding(embeddingBytes)
		scored = append(scored, IndexEntry{
			ChunkText:   chunkText,
			Embedding:   embedding,
			FrameNumber: frameNumber,
			DocumentID:  documentID,
			Metadata:    meta,
			Similarity:  CosineSimilarity(query, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, vaulterrors.IndexBackendError("failed to iterate sqlite rows", err)
	}

	return topK(scored, k), nil
}

// Delete removes every row for documentID.
func (s *SQLiteStore) Delete(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM index_entries WHERE document_id = ?", documentID); err != nil {
		return vaulterrors.IndexBackendError("failed to delete sqlite index entries", err)
	}
	return nil
}

// Clear removes all rows.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM index_entries"); err != nil {
		return vaulterrors.IndexBackendError("failed to clear sqlite index", err)
	}
	return nil
}

// Describe reports sqlite backend introspection.
func (s *SQLiteStore) Describe(ctx context.Context) (Description, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM index_entries").Scan(&count); err != nil {
		return Description{}, vaulterrors.IndexBackendError("failed to count sqlite index entries", err)
	}

	var dims int
	var embeddingBytes []byte
	err := s.db.QueryRowContext(ctx, "SELECT embedding FROM index_entries LIMIT 1").Scan(&embeddingBytes)
	if err == nil {
		dims = len(embeddingBytes) / 4
	} else if err != sql.ErrNoRows {
		return Description{}, vaulterrors.IndexBackendError("failed to inspect sqlite index dimension", err)
	}

	return Description{Backend: "sqlite", Dimensions: dims, EntryCount: count}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
