package database

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/types"
)

// Payload layout shared with collections written by the langchain ingestion service.
const (
	payloadContentKey     = "page_content"
	payloadMetadataKey    = "metadata"
	metadataSourceKey     = "source"
	metadataDatabaseIDKey = "database_id"
)

type QdrantStore struct {
	api        *qdrant.Client
	collection string
	vectorSize uint64
	logger     *logger.Logger
}

func NewQdrantStore(cfg config.QdrantConfig, collection string, vectorSize uint64, log *logger.Logger) (*QdrantStore, error) {
	port := cfg.Port
	if port == 0 {
		port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize qdrant client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	resp, err := client.HealthCheck(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("qdrant health check failed: %w", err)
	}
	log.Info("Connected to qdrant", nil, map[string]interface{}{
		"host":    cfg.Host,
		"port":    port,
		"version": resp.GetVersion(),
	})

	return &QdrantStore{
		api:        client,
		collection: collection,
		vectorSize: vectorSize,
		logger:     log,
	}, nil
}

func (s *QdrantStore) Close() error {
	return s.api.Close()
}

func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	collections, err := s.api.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if slices.Contains(collections, s.collection) {
		return nil
	}

	err = s.api.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %q: %w", s.collection, err)
	}
	s.logger.Info("Created qdrant collection", nil, map[string]interface{}{
		"collection":  s.collection,
		"vector_size": s.vectorSize,
	})
	return nil
}

func (s *QdrantStore) Exists(ctx context.Context, filter types.Filter) (bool, error) {
	limit := uint32(1)
	points, err := s.api.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter:         buildQdrantFilter(filter),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(false),
	})
	if err != nil {
		return false, fmt.Errorf("existence scan failed: %w", err)
	}
	return len(points) > 0, nil
}

func (s *QdrantStore) Upsert(ctx context.Context, records []types.Record) error {
	wait := true
	for _, b := range batches(len(records)) {
		points := make([]*qdrant.PointStruct, 0, b[1]-b[0])
		for _, r := range records[b[0]:b[1]] {
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewID(uuid.NewString()),
				Vectors: qdrant.NewVectors(r.Vector...),
				Payload: qdrant.NewValueMap(chunkPayload(r.Chunk)),
			})
		}
		_, err := s.api.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Points:         points,
			Wait:           &wait,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", b[0], b[1], err)
		}
		s.logger.Debug("Upserted batch", nil, map[string]interface{}{
			"from":  b[0],
			"to":    b[1],
			"total": len(records),
		})
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, vector []float32, limit int, filter types.Filter) ([]types.ScoredChunk, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	l := uint64(limit)
	resp, err := s.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &l,
		Filter:         buildQdrantFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]types.ScoredChunk, 0, len(resp))
	for _, p := range resp {
		id, err := pointID(p.GetId())
		if err != nil {
			return nil, err
		}
		results = append(results, types.ScoredChunk{
			Chunk: chunkFromPayload(p.GetPayload()),
			ID:    id,
			Score: p.GetScore(),
		})
	}
	return results, nil
}

func (s *QdrantStore) Delete(ctx context.Context, filter types.Filter) error {
	f := buildQdrantFilter(filter)
	if f == nil {
		return ErrEmptyFilter
	}
	wait := true
	_, err := s.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{Filter: f},
		},
	})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

func chunkPayload(chunk types.Chunk) map[string]any {
	return map[string]any{
		payloadContentKey: chunk.Text,
		payloadMetadataKey: map[string]any{
			metadataSourceKey:     chunk.Source,
			metadataDatabaseIDKey: chunk.DatabaseID,
		},
	}
}

func chunkFromPayload(payload map[string]*qdrant.Value) types.Chunk {
	native := convertPayload(payload)
	chunk := types.Chunk{}
	chunk.Text, _ = native[payloadContentKey].(string)
	if meta, ok := native[payloadMetadataKey].(map[string]any); ok {
		chunk.Source, _ = meta[metadataSourceKey].(string)
		chunk.DatabaseID, _ = meta[metadataDatabaseIDKey].(string)
	}
	return chunk
}

func buildQdrantFilter(filter types.Filter) *qdrant.Filter {
	var must []*qdrant.Condition
	if filter.DatabaseID != "" {
		must = append(must, qdrant.NewMatch(payloadMetadataKey+"."+metadataDatabaseIDKey, filter.DatabaseID))
	}
	if filter.Source != "" {
		must = append(must, qdrant.NewMatch(payloadMetadataKey+"."+metadataSourceKey, filter.Source))
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func pointID(id *qdrant.PointId) (string, error) {
	if id == nil {
		return "", fmt.Errorf("nil point ID")
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num), nil
	case *qdrant.PointId_Uuid:
		return v.Uuid, nil
	default:
		return "", fmt.Errorf("unexpected PointId type: %T", v)
	}
}

func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = nativeValue(v)
	}
	return result
}

func nativeValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		return convertPayload(val.StructValue.Fields)
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		items := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			items[i] = nativeValue(item)
		}
		return items
	default:
		return nil
	}
}
