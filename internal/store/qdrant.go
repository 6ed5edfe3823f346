package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// QdrantStore adapts github.com/qdrant/go-client to the VectorDatabase
// contract: collection lifecycle on construction, point upsert/search,
// and delete-by-filter keyed on document_id. It is the external-service
// counterpart to SQLiteStore's embedded relational backend.
type QdrantStore struct {
	client         *qdrant.Client
	collectionName string
	dims           uint64
}

var _ VectorDatabase = (*QdrantStore)(nil)

// QdrantConfig configures the connection and collection.
type QdrantConfig struct {
	Host           string
	Port           int
	CollectionName string
	Dimensions     int
}

// NewQdrantStore connects to Qdrant and ensures the target collection
// exists with the configured vector size and cosine distance.
func NewQdrantStore(ctx context.Context, cfg QdrantConfig) (*QdrantStore, error) {
	if cfg.CollectionName == "" {
		cfg.CollectionName = "qrvault"
	}
	if cfg.Dimensions <= 0 {
		return nil, vaulterrors.ConfigError("qdrant backend requires dimensions > 0", nil)
	}

	client, err := qdrant.NewClient(&qdrant.Config{Host: cfg.Host, Port: cfg.Port})
	if err != nil {
		return nil, vaulterrors.IndexBackendError("failed to create qdrant client", err)
	}

	s := &QdrantStore{client: client, collectionName: cfg.CollectionName, dims: uint64(cfg.Dimensions)}

	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return vaulterrors.IndexBackendError("failed to check qdrant collection", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dims,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return vaulterrors.IndexBackendError("failed to create qdrant collection", err)
	}
	return nil
}

// pointID derives a deterministic point ID from (document_id,
// frame_number) so re-upserting the same tuple is idempotent at the
// Qdrant layer even though the VectorDatabase contract only promises
// append semantics.
func pointID(documentID string, frameNumber int) uint64 {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", documentID, frameNumber)))
	var id uint64
	for i := 0; i < 8; i++ {
		id |= uint64(hash[i]) << (8 * i)
	}
	return id
}

// Upsert writes each entry as a Qdrant point with chunk_text,
// document_id, frame_number, and metadata carried as payload fields.
func (s *QdrantStore) Upsert(ctx context.Context, entries []IndexEntry) error {
	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, e := range entries {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return vaulterrors.IndexBackendError("failed to marshal entry metadata", err)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(pointID(e.DocumentID, e.FrameNumber)),
			Vectors: qdrant.NewVectors(e.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_text":   e.ChunkText,
				"document_id":  e.DocumentID,
				"frame_number": int64(e.FrameNumber),
				"metadata":     string(meta),
			}),
		})
	}

	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         points,
	}); err != nil {
		return vaulterrors.IndexBackendError("failed to upsert qdrant points", err)
	}
	return nil
}

// Search issues a nearest-neighbor query and converts Qdrant's score
// (already cosine, per the collection's configured distance) back into
// an IndexEntry.
func (s *QdrantStore) Search(ctx context.Context, query []float32, k int) ([]IndexEntry, error) {
	if k <= 0 {
		return []IndexEntry{}, nil
	}

	limit := uint64(k)
	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, vaulterrors.IndexBackendError("qdrant search failed", err)
	}

	entries := make([]IndexEntry, 0, len(result))
	for _, point := range result {
		payload := point.GetPayload()
		entries = append(entries, IndexEntry{
			ChunkText:   payloadString(payload, "chunk_text"),
			DocumentID:  payloadString(payload, "document_id"),
			FrameNumber: int(payloadInt(payload, "frame_number")),
			Metadata:    decodeMetadata(payloadString(payload, "metadata")),
			Similarity:  point.GetScore(),
		})
	}
	return entries, nil
}

// Delete removes all points whose document_id payload field matches.
func (s *QdrantStore) Delete(ctx context.Context, documentID string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						{
							ConditionOneOf: &qdrant.Condition_Field{
								Field: &qdrant.FieldCondition{
									Key:   "document_id",
									Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: documentID}},
								},
							},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return vaulterrors.IndexBackendError("failed to delete qdrant points for document", err)
	}
	return nil
}

// Clear deletes and recreates the collection.
func (s *QdrantStore) Clear(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collectionName); err != nil {
		return vaulterrors.IndexBackendError("failed to delete qdrant collection", err)
	}
	return s.ensureCollection(ctx)
}

// Describe reports qdrant backend introspection.
func (s *QdrantStore) Describe(ctx context.Context) (Description, error) {
	info, err := s.client.GetCollectionInfo(ctx, s.collectionName)
	if err != nil {
		return Description{}, vaulterrors.IndexBackendError("failed to get qdrant collection info", err)
	}
	return Description{
		Backend:    "qdrant",
		Dimensions: int(s.dims),
		EntryCount: int(info.GetPointsCount()),
	}, nil
}

// Close releases the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func payloadInt(payload map[string]*qdrant.Value, key string) int64 {
	if v, ok := payload[key]; ok {
		return v.GetIntegerValue()
	}
	return 0
}

func decodeMetadata(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var m map[string]string
	_ = json.Unmarshal([]byte(raw), &m)
	return m
}
