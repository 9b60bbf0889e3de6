package database

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	weaviateContentProp    = "content"
	weaviateSourceProp     = "source"
	weaviateDatabaseIDProp = "databaseId"
)

type WeaviateStore struct {
	client    *weaviate.Client
	className string
	logger    *logger.Logger
}

func NewWeaviateStore(cfg config.WeaviateConfig, collection string, log *logger.Logger) (*WeaviateStore, error) {
	var scheme string
	if strings.HasPrefix(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
		wcfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     cfg.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	return &WeaviateStore{
		client:    client,
		className: weaviateClassName(collection),
		logger:    log,
	}, nil
}

// weaviateClassName maps a collection name onto Weaviate's class naming rule (leading capital).
func weaviateClassName(collection string) string {
	if collection == "" {
		return "Document"
	}
	r := []rune(collection)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func documentClass(name string) *models.Class {
	return &models.Class{
		Class: name,
		Properties: []*models.Property{
			{Name: weaviateContentProp, DataType: []string{"text"}},
			{Name: weaviateSourceProp, DataType: []string{"text"}, Tokenization: "field"},
			{Name: weaviateDatabaseIDProp, DataType: []string{"text"}, Tokenization: "field"},
		},
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
}

func (s *WeaviateStore) EnsureCollection(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}
	for _, class := range schema.Classes {
		if class.Class == s.className {
			return nil
		}
	}
	if err := s.client.Schema().ClassCreator().WithClass(documentClass(s.className)).Do(ctx); err != nil {
		return fmt.Errorf("failed to create %s class: %w", s.className, err)
	}
	s.logger.Info("Created weaviate class", nil, map[string]interface{}{"class": s.className})
	return nil
}

func (s *WeaviateStore) Exists(ctx context.Context, filter types.Filter) (bool, error) {
	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}}).
		WithLimit(1)
	if where := buildWhereFilter(filter); where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}
	result, err := getBuilder.Do(ctx)
	if err != nil {
		return false, fmt.Errorf("existence scan failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return false, fmt.Errorf("existence scan failed: %s", result.Errors[0].Message)
	}
	return len(s.objects(result.Data)) > 0, nil
}

func (s *WeaviateStore) Upsert(ctx context.Context, records []types.Record) error {
	for _, b := range batches(len(records)) {
		batcher := s.client.Batch().ObjectsBatcher()
		for _, r := range records[b[0]:b[1]] {
			batcher = batcher.WithObjects(&models.Object{
				Class: s.className,
				Properties: map[string]interface{}{
					weaviateContentProp:    r.Text,
					weaviateSourceProp:     r.Source,
					weaviateDatabaseIDProp: r.DatabaseID,
				},
				Vector: r.Vector,
			})
		}
		resp, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", b[0], b[1], err)
		}
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return fmt.Errorf("failed to insert batch %d-%d: %s", b[0], b[1], obj.Result.Errors.Error[0].Message)
			}
		}
		s.logger.Debug("Inserted batch", nil, map[string]interface{}{
			"from":  b[0],
			"to":    b[1],
			"total": len(records),
		})
	}
	return nil
}

func (s *WeaviateStore) Search(ctx context.Context, vector []float32, limit int, filter types.Filter) ([]types.ScoredChunk, error) {
	fields := []graphql.Field{
		{Name: weaviateContentProp},
		{Name: weaviateSourceProp},
		{Name: weaviateDatabaseIDProp},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "id"}}},
	}
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit)
	if where := buildWhereFilter(filter); where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("search failed: %s", result.Errors[0].Message)
	}

	var chunks []types.ScoredChunk
	for _, obj := range s.objects(result.Data) {
		chunk := types.ScoredChunk{
			Chunk: types.Chunk{
				Text:       stringProp(obj, weaviateContentProp),
				Source:     stringProp(obj, weaviateSourceProp),
				DatabaseID: stringProp(obj, weaviateDatabaseIDProp),
			},
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			chunk.ID = stringProp(additional, "id")
			if distance, ok := additional["distance"].(float64); ok {
				chunk.Score = float32(1 - distance)
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func (s *WeaviateStore) Delete(ctx context.Context, filter types.Filter) error {
	where := buildWhereFilter(filter)
	if where == nil {
		return ErrEmptyFilter
	}
	resp, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(s.className).
		WithOutput("minimal").
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if resp != nil && resp.Results != nil {
		s.logger.Debug("Deleted objects", nil, map[string]interface{}{
			"matches": resp.Results.Matches,
			"failed":  resp.Results.Failed,
		})
		if resp.Results.Failed > 0 {
			return fmt.Errorf("delete failed for %d objects", resp.Results.Failed)
		}
	}
	return nil
}

func (s *WeaviateStore) objects(data map[string]models.JSONObject) []map[string]interface{} {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := get[s.className].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

func stringProp(obj map[string]interface{}, key string) string {
	v, _ := obj[key].(string)
	return v
}

func buildWhereFilter(filter types.Filter) *filters.WhereBuilder {
	var operands []*filters.WhereBuilder
	if filter.DatabaseID != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{weaviateDatabaseIDProp}).
			WithOperator(filters.Equal).
			WithValueText(filter.DatabaseID))
	}
	if filter.Source != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{weaviateSourceProp}).
			WithOperator(filters.Equal).
			WithValueText(filter.Source))
	}
	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	default:
		return filters.Where().WithOperator(filters.And).WithOperands(operands)
	}
}
