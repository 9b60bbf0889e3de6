package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/metrics"
	"github.com/tieubaoca/docqa-be/types"
)

const (
	OperationCreateDatabase = "create_database"
	OperationAddDocument    = "add_document"
	OperationDeleteDocument = "delete_document"
	OperationAnswer         = "answer"
)

// QAOrchestrator answers a question from the chunks matching filter.
type QAOrchestrator interface {
	Answer(ctx context.Context, question string, history []types.ChatTurn, filter types.Filter) (string, error)
}

// QuestionLogger persists answered questions.
type QuestionLogger interface {
	CreateQuestionLog(ctx context.Context, log *types.QuestionLog) error
}

// NamespaceService keeps logical databases inside one vector collection.
// A database exists exactly when at least one stored chunk carries its id.
// Operations are neither locked nor transactional: two concurrent creates of
// the same id can both pass the existence check, and a failed ingestion may
// leave the chunks it already stored.
type NamespaceService struct {
	store       database.VectorStore
	fetcher     DocumentFetcher
	splitter    *TextSplitter
	embedder    Embedder
	qa          QAOrchestrator
	questionLog QuestionLogger
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

// NewNamespaceService wires the manager. questionLog and m may be nil.
func NewNamespaceService(
	store database.VectorStore,
	fetcher DocumentFetcher,
	splitter *TextSplitter,
	embedder Embedder,
	qa QAOrchestrator,
	questionLog QuestionLogger,
	m *metrics.Metrics,
	log *logger.Logger,
) *NamespaceService {
	return &NamespaceService{
		store:       store,
		fetcher:     fetcher,
		splitter:    splitter,
		embedder:    embedder,
		qa:          qa,
		questionLog: questionLog,
		metrics:     m,
		logger:      log,
	}
}

// Exists reports whether any chunk is tagged databaseID. No chunk is ever tagged
// with an empty id, and an empty filter would match the whole collection.
func (s *NamespaceService) Exists(ctx context.Context, databaseID string) (bool, error) {
	if databaseID == "" {
		return false, nil
	}
	ok, err := s.store.Exists(ctx, types.Filter{DatabaseID: databaseID})
	if err != nil {
		return false, fmt.Errorf("failed to check database %q: %w", databaseID, err)
	}
	return ok, nil
}

// CreateDatabase ingests urls under a new databaseID.
func (s *NamespaceService) CreateDatabase(ctx context.Context, databaseID string, urls []string) (err error) {
	defer func() { s.metrics.ObserveOperation(OperationCreateDatabase, err) }()

	if databaseID == "" {
		return fmt.Errorf("database_id is required: %w", ErrInvalidInput)
	}
	if len(urls) == 0 {
		return fmt.Errorf("at least one url is required: %w", ErrInvalidInput)
	}
	exists, err := s.Exists(ctx, databaseID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyExists
	}
	return s.ingest(ctx, databaseID, urls)
}

// AddDocument ingests url into an existing database. Adding the same url twice stores it twice.
func (s *NamespaceService) AddDocument(ctx context.Context, databaseID, url string) (err error) {
	defer func() { s.metrics.ObserveOperation(OperationAddDocument, err) }()

	if databaseID == "" || url == "" {
		return fmt.Errorf("database_id and url are required: %w", ErrInvalidInput)
	}
	exists, err := s.Exists(ctx, databaseID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return s.ingest(ctx, databaseID, []string{url})
}

// DeleteDocument removes every chunk of url from the database. It succeeds when
// nothing matched url. Removing the last document leaves the database nonexistent.
func (s *NamespaceService) DeleteDocument(ctx context.Context, databaseID, url string) (err error) {
	defer func() { s.metrics.ObserveOperation(OperationDeleteDocument, err) }()

	if databaseID == "" || url == "" {
		return fmt.Errorf("database_id and url are required: %w", ErrInvalidInput)
	}
	exists, err := s.Exists(ctx, databaseID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if err := s.store.Delete(ctx, types.Filter{DatabaseID: databaseID, Source: url}); err != nil {
		return fmt.Errorf("failed to delete %s from %q: %w", url, databaseID, err)
	}
	s.logger.Info("Deleted document", nil, map[string]interface{}{
		"database_id": databaseID,
		"url":         url,
	})
	return nil
}

// Answer answers question from databaseID, or from the whole collection when databaseID is empty.
func (s *NamespaceService) Answer(ctx context.Context, databaseID, question string, history []types.ChatTurn) (answer string, err error) {
	defer func() { s.metrics.ObserveOperation(OperationAnswer, err) }()

	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question is required: %w", ErrInvalidInput)
	}
	filter := types.Filter{}
	if databaseID != "" {
		exists, err := s.Exists(ctx, databaseID)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", ErrNotFound
		}
		filter.DatabaseID = databaseID
	}

	answer, err = s.qa.Answer(ctx, question, history, filter)
	if err != nil {
		return "", err
	}
	s.recordQuestion(ctx, databaseID, question, answer, len(history))
	return answer, nil
}

func (s *NamespaceService) recordQuestion(ctx context.Context, databaseID, question, answer string, turns int) {
	if s.questionLog == nil {
		return
	}
	err := s.questionLog.CreateQuestionLog(ctx, &types.QuestionLog{
		DatabaseID: databaseID,
		Question:   question,
		Answer:     answer,
		Turns:      turns,
		CreatedAt:  time.Now().Unix(),
	})
	if err != nil {
		s.logger.Warn("Failed to record question", err, map[string]interface{}{"database_id": databaseID})
	}
}

// ingest fetches, chunks, tags, embeds and stores urls under databaseID.
func (s *NamespaceService) ingest(ctx context.Context, databaseID string, urls []string) error {
	docs, err := s.fetcher.Fetch(ctx, urls)
	if err != nil {
		return err
	}
	chunks := s.splitter.Split(docs)
	if len(chunks) == 0 {
		return fmt.Errorf("no text extracted from %d url(s): %w", len(urls), ErrInvalidInput)
	}
	for i := range chunks {
		chunks[i].DatabaseID = databaseID
	}

	for start := 0; start < len(chunks); start += database.BATCH_SIZE {
		end := min(start+database.BATCH_SIZE, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("expected %d embeddings, got %d", len(batch), len(vectors))
		}

		records := make([]types.Record, len(batch))
		for i, c := range batch {
			records[i] = types.Record{Chunk: c, Vector: vectors[i]}
		}
		if err := s.store.Upsert(ctx, records); err != nil {
			return fmt.Errorf("failed to store chunks: %w", err)
		}
		s.metrics.AddChunks(len(records))
	}

	s.logger.Info("Ingested documents", nil, map[string]interface{}{
		"database_id": databaseID,
		"urls":        len(urls),
		"chunks":      len(chunks),
	})
	return nil
}
