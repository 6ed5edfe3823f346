package store

import (
	"context"
	"encoding/gob"
	"os"
	"sync"

	"github.com/gofrs/flock"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// FileStore persists the flat entry list as a gob-encoded document,
// re-written after every Upsert/Delete/Clear. It is explicitly not
// crash-safe (a process killed mid-write can corrupt the file) and is
// intended for development, not production durability. gofrs/flock
// guards against concurrent CLI processes stepping on the same file.
type FileStore struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock

	entries []IndexEntry
	dims    int
}

var _ VectorDatabase = (*FileStore)(nil)

type fileStoreDocument struct {
	Entries []IndexEntry
	Dims    int
}

// NewFileStore opens (or creates) the gob document at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, lock: flock.New(path + ".lock")}

	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *FileStore) load() error {
	locked, err := s.lock.TryRLock()
	if err != nil {
		return vaulterrors.IOError("failed to acquire read lock on file store", err)
	}
	if locked {
		defer func() { _ = s.lock.Unlock() }()
	}

	f, err := os.Open(s.path)
	if err != nil {
		return vaulterrors.IOError("failed to open file store document", err)
	}
	defer f.Close()

	var doc fileStoreDocument
	if err := gob.NewDecoder(f).Decode(&doc); err != nil {
		return vaulterrors.IOError("failed to decode file store document", err)
	}

	s.entries = doc.Entries
	s.dims = doc.Dims
	return nil
}

// persist writes the whole document back to disk. Called while s.mu is
// held by every mutating operation, so the on-disk document always
// reflects the last completed upsert/delete.
func (s *FileStore) persist() error {
	if err := s.lock.Lock(); err != nil {
		return vaulterrors.IOError("failed to acquire write lock on file store", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return vaulterrors.IOError("failed to create file store temp document", err)
	}

	doc := fileStoreDocument{Entries: s.entries, Dims: s.dims}
	if err := gob.NewEncoder(f).Encode(&doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return vaulterrors.IOError("failed to encode file store document", err)
	}
	if err := f.Close(); err != nil {
		return vaulterrors.IOError("failed to flush file store document", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return vaulterrors.IOError("failed to replace file store document", err)
	}
	return nil
}

// Upsert appends entries then persists the document.
func (s *FileStore) Upsert(_ context.Context, entries []IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if s.dims == 0 && len(e.Embedding) > 0 {
			s.dims = len(e.Embedding)
		}
		s.entries = append(s.entries, e)
	}
	return s.persist()
}

// Search performs an exhaustive cosine scan over the in-memory copy.
func (s *FileStore) Search(_ context.Context, query []float32, k int) ([]IndexEntry, error) {
	if k <= 0 {
		return []IndexEntry{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scored := make([]IndexEntry, len(s.entries))
	for i, e := range s.entries {
		scored[i] = e
		scored[i].Similarity = CosineSimilarity(query, e.Embedding)
	}

	return topK(scored, k), nil
}

// Delete removes entries for documentID and persists the document.
func (s *FileStore) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return s.persist()
}

// Clear removes all entries and persists the document.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.dims = 0
	return s.persist()
}

// Describe reports file backend introspection.
func (s *FileStore) Describe(_ context.Context) (Description, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Description{Backend: "file", Dimensions: s.dims, EntryCount: len(s.entries)}, nil
}
