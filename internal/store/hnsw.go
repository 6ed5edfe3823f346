package store

import (
	"context"
	"strconv"
	"sync"

	"github.com/coder/hnsw"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// HNSWStore is an opt-in approximate-nearest-neighbor backend built on
// coder/hnsw. Unlike MemoryStore this is not exact — it trades recall for O(log n) search
// on large corpora — so it is never the default, only a
// configuration choice (index.backend: hnsw).
type HNSWStore struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]
	dims  int

	nextKey uint64
	byKey   map[uint64]IndexEntry
	keysOf  map[string][]uint64 // document_id -> keys, for Delete
}

var _ VectorDatabase = (*HNSWStore)(nil)

// NewHNSWStore constructs an HNSWStore with cosine distance.
func NewHNSWStore() *HNSWStore {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20

	return &HNSWStore{
		graph:  graph,
		byKey:  make(map[uint64]IndexEntry),
		keysOf: make(map[string][]uint64),
	}
}

// Upsert inserts each entry as a new graph node keyed by an
// ever-increasing integer (HNSW graphs don't support arbitrary string
// IDs or removal of arbitrary nodes cheaply, so deletion is handled by
// tombstoning in byKey rather than mutating the graph — removing the
// last node trips a known coder/hnsw bug).
func (s *HNSWStore) Upsert(_ context.Context, entries []IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if s.dims == 0 && len(e.Embedding) > 0 {
			s.dims = len(e.Embedding)
		}
		if len(e.Embedding) != s.dims {
			return vaulterrors.ValidationError("embedding dimension mismatch in hnsw upsert", nil).
				WithDetail("expected", strconv.Itoa(s.dims)).
				WithDetail("got", strconv.Itoa(len(e.Embedding)))
		}

		key := s.nextKey
		s.nextKey++

		s.graph.Add(hnsw.MakeNode(key, e.Embedding))
		s.byKey[key] = e
		s.keysOf[e.DocumentID] = append(s.keysOf[e.DocumentID], key)
	}
	return nil
}

// Search asks the graph for the k nearest neighbors by cosine distance
// and converts distance back to similarity for the caller.
func (s *HNSWStore) Search(_ context.Context, query []float32, k int) ([]IndexEntry, error) {
	if k <= 0 {
		return []IndexEntry{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.byKey) == 0 {
		return []IndexEntry{}, nil
	}

	neighbors := s.graph.Search(query, k)
	results := make([]IndexEntry, 0, len(neighbors))
	for _, n := range neighbors {
		entry, ok := s.byKey[n.Key]
		if !ok {
			continue // tombstoned by a Delete
		}
		entry.Similarity = CosineSimilarity(query, entry.Embedding)
		results = append(results, entry)
	}

	return topK(results, k), nil
}

// Delete tombstones every key belonging to documentID — orphaned nodes
// stay in the graph (coder/hnsw has no safe arbitrary-node removal) but
// are filtered out of every future Search result.
func (s *HNSWStore) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.keysOf[documentID] {
		delete(s.byKey, key)
	}
	delete(s.keysOf, documentID)
	return nil
}

// Clear rebuilds an empty graph from scratch.
func (s *HNSWStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20

	s.graph = graph
	s.byKey = make(map[uint64]IndexEntry)
	s.keysOf = make(map[string][]uint64)
	s.nextKey = 0
	s.dims = 0
	return nil
}

// Describe reports hnsw backend introspection.
func (s *HNSWStore) Describe(_ context.Context) (Description, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Description{Backend: "hnsw", Dimensions: s.dims, EntryCount: len(s.byKey)}, nil
}

