package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tieubaoca/docqa-be/types"
)

const (
	VectorStoreQdrant   = "qdrant"
	VectorStoreWeaviate = "weaviate"
	VectorStoreMemory   = "memory"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var providerDefaults = map[string]struct{ model, embeddingModel string }{
	ProviderOpenAI: {"gpt-3.5-turbo", "text-embedding-ada-002"},
	ProviderGemini: {"gemini-1.5-flash", "text-embedding-004"},
}

// embeddingSizes are the output dimensions of the known embedding models.
var embeddingSizes = map[string]uint64{
	"text-embedding-ada-002": 1536,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-004":     768,
	"embedding-001":          768,
}

type Config struct {
	Port           string               `mapstructure:"port"`
	LogLevel       string               `mapstructure:"log_level"`
	JWTSecret      string               `mapstructure:"JWT_SECRET"`
	CORSOrigins    []string             `mapstructure:"cors_origins"`
	VectorStore    string               `mapstructure:"vector_store"`
	Collection     string               `mapstructure:"collection_name"`
	VectorSize     uint64               `mapstructure:"vector_size"`
	Splitter       types.SplitterConfig `mapstructure:"splitter"`
	Fetcher        FetcherConfig        `mapstructure:"fetcher"`
	AI             AIConfig             `mapstructure:"ai"`
	QdrantConfig   QdrantConfig         `mapstructure:"qdrant"`
	WeaviateConfig WeaviateConfig       `mapstructure:"weaviate"`
	MongoDBURI     string               `mapstructure:"MONGODB_URI"`
	MongoDatabase  string               `mapstructure:"mongo_database"`
}

type AIConfig struct {
	Provider       string `mapstructure:"provider"`
	Endpoint       string `mapstructure:"endpoint"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	RetrievalLimit int    `mapstructure:"retrieval_limit"`
	OpenAIAPIKey   string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey   string `mapstructure:"GEMINI_API_KEY"`
}

type FetcherConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
	MaxBytes    int64         `mapstructure:"max_bytes"`
}

type QdrantConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"QDRANT_API_KEY"`
	UseTLS bool   `mapstructure:"use_tls"`
}

type WeaviateConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"`
}

// LoadConfig reads the YAML file at configPath (optional) and overlays environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Secrets come from the environment, not the YAML file
	v.BindEnv("JWT_SECRET")
	v.BindEnv("MONGODB_URI")
	v.BindEnv("ai.OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("ai.GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("qdrant.QDRANT_API_KEY", "QDRANT_API_KEY")
	v.BindEnv("weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")
	v.BindEnv("qdrant.host", "QDRANT_HOST")
	v.BindEnv("qdrant.port", "QDRANT_PORT")
	v.BindEnv("collection_name", "COLLECTION_NAME")
	v.BindEnv("vector_size", "VECTOR_SIZE")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.applyProviderDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("vector_store", VectorStoreQdrant)
	v.SetDefault("collection_name", "default_collection")
	v.SetDefault("splitter.chunk_size", 1000)
	v.SetDefault("splitter.chunk_overlap", 200)
	v.SetDefault("fetcher.timeout", 30*time.Second)
	v.SetDefault("fetcher.concurrency", 4)
	v.SetDefault("fetcher.max_bytes", 20<<20)
	v.SetDefault("ai.provider", ProviderOpenAI)
	v.SetDefault("ai.retrieval_limit", 4)
	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("weaviate.host", "http://localhost:8080")
	v.SetDefault("mongo_database", "docqa")
}

// applyProviderDefaults fills the model names the provider uses when none are
// configured, and the vector size of the embedding model when vector_size is unset.
func (c *Config) applyProviderDefaults() {
	d := providerDefaults[c.AI.Provider]
	if c.AI.Model == "" {
		c.AI.Model = d.model
	}
	if c.AI.EmbeddingModel == "" {
		c.AI.EmbeddingModel = d.embeddingModel
	}
	if c.VectorSize == 0 {
		c.VectorSize = embeddingSizes[c.AI.EmbeddingModel]
	}
}

func (c *Config) Validate() error {
	switch c.VectorStore {
	case VectorStoreQdrant, VectorStoreWeaviate, VectorStoreMemory:
	default:
		return fmt.Errorf("unknown vector_store %q", c.VectorStore)
	}
	switch c.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	if c.Collection == "" {
		return errors.New("collection_name is required")
	}
	if c.VectorStore == VectorStoreQdrant && c.VectorSize == 0 {
		return fmt.Errorf("vector_size is required for embedding model %q", c.AI.EmbeddingModel)
	}
	if c.Splitter.ChunkSize <= 0 {
		return fmt.Errorf("splitter.chunk_size must be positive, got %d", c.Splitter.ChunkSize)
	}
	if c.Splitter.ChunkOverlap < 0 || c.Splitter.ChunkOverlap >= c.Splitter.ChunkSize {
		return fmt.Errorf("splitter.chunk_overlap must be in [0, %d), got %d", c.Splitter.ChunkSize, c.Splitter.ChunkOverlap)
	}
	return nil
}
