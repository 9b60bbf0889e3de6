package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/logger"
	"github.com/tieubaoca/docqa-be/metrics"
	"github.com/tieubaoca/docqa-be/repository"
	"github.com/tieubaoca/docqa-be/service"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const mongoConnectTimeout = 10 * time.Second

func noopClose() error { return nil }

// newVectorStore opens the backend selected by vector_store.
func newVectorStore(cfg *config.Config, log *logger.Logger) (database.VectorStore, func() error, error) {
	switch cfg.VectorStore {
	case config.VectorStoreQdrant:
		store, err := database.NewQdrantStore(cfg.QdrantConfig, cfg.Collection, cfg.VectorSize, log)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.VectorStoreWeaviate:
		store, err := database.NewWeaviateStore(cfg.WeaviateConfig, cfg.Collection, log)
		if err != nil {
			return nil, nil, err
		}
		return store, noopClose, nil
	case config.VectorStoreMemory:
		log.Warn("Using the in-memory vector store, data is lost on exit", nil)
		return database.NewMemoryStore(), noopClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector_store %q", cfg.VectorStore)
	}
}

// newAIClients builds the chat model and the embedder of the configured provider.
func newAIClients(cfg *config.Config) (service.AIService, service.Embedder, func() error, error) {
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		gemini, err := service.NewGeminiService(cfg.AI.GeminiAPIKey, cfg.AI.Model)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return gemini, service.NewGeminiEmbedder(gemini, cfg.AI.EmbeddingModel), gemini.Close, nil
	default:
		chat := service.NewOpenAIService(cfg.AI.Endpoint, cfg.AI.OpenAIAPIKey, cfg.AI.Model)
		embedder := service.NewOpenAIEmbedder(cfg.AI.Endpoint, cfg.AI.OpenAIAPIKey, cfg.AI.EmbeddingModel)
		return chat, embedder, noopClose, nil
	}
}

// newQuestionRepo connects to MongoDB. It returns a nil repo when MONGODB_URI is unset.
func newQuestionRepo(ctx context.Context, cfg *config.Config) (repository.QuestionRepo, *mongo.Client, error) {
	if cfg.MongoDBURI == "" {
		return nil, nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := database.NewMongoClient(ctx, cfg.MongoDBURI)
	if err != nil {
		return nil, nil, err
	}
	collection := client.Database(cfg.MongoDatabase).Collection(repository.QuestionLogCollection)
	return repository.NewQuestionRepo(collection), client, nil
}

func newFetcher(cfg *config.Config, log *logger.Logger) *service.HTTPFetcher {
	return service.NewHTTPFetcher(cfg.Fetcher, service.NewPDFService(log), log)
}

func newQAService(cfg *config.Config, chat service.AIService, embedder service.Embedder, store database.VectorStore, log *logger.Logger) *service.QAService {
	return service.NewQAService(chat, embedder, store, cfg.AI.RetrievalLimit, log)
}

func newNamespaceService(
	cfg *config.Config,
	store database.VectorStore,
	fetcher *service.HTTPFetcher,
	embedder service.Embedder,
	qa *service.QAService,
	questionLog service.QuestionLogger,
	m *metrics.Metrics,
	log *logger.Logger,
) *service.NamespaceService {
	return service.NewNamespaceService(store, fetcher, service.NewTextSplitter(cfg.Splitter), embedder, qa, questionLog, m, log)
}

// cliNamespace assembles a NamespaceService for one-shot commands. cleanup releases
// every client it opened.
func cliNamespace(ctx context.Context, cfg *config.Config, log *logger.Logger) (ns *service.NamespaceService, cleanup func(), err error) {
	var closers []func() error
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("Failed to close client", err)
			}
		}
	}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	store, closeStore, err := newVectorStore(cfg, log)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, closeStore)
	if err := store.EnsureCollection(ctx); err != nil {
		return nil, cleanup, err
	}

	chat, embedder, closeAI, err := newAIClients(cfg)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, closeAI)

	// Questions asked from the CLI are not logged.
	qa := newQAService(cfg, chat, embedder, store, log)
	ns = newNamespaceService(cfg, store, newFetcher(cfg, log), embedder, qa, nil, nil, log)
	return ns, cleanup, nil
}
