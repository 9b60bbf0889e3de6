package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiMaxBatchSize is the most contents one BatchEmbedContents request accepts.
var geminiMaxBatchSize = 100

// geminiClient is a client bound to one API key. A retired client is closed
// once the last call using it returns.
type geminiClient struct {
	client  *genai.Client
	close   func() error
	inUse   int
	retired bool
}

// GeminiService talks to Gemini with a pool of API keys. A failed call rotates
// to the next key and is retried once.
type GeminiService struct {
	apiKeys    []string
	currentKey int
	current    *geminiClient
	modelName  string
	dial       func(apiKey string) (*geminiClient, error)
	mu         sync.Mutex
}

// NewGeminiService accepts a comma separated list of API keys.
func NewGeminiService(apiKeys string, modelName string) (*GeminiService, error) {
	return newGeminiService(apiKeys, modelName, dialGemini)
}

func newGeminiService(apiKeys string, modelName string, dial func(apiKey string) (*geminiClient, error)) (*GeminiService, error) {
	var keys []string
	for _, k := range strings.Split(apiKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	service := &GeminiService{
		apiKeys:   keys,
		modelName: modelName,
		dial:      dial,
	}
	client, err := dial(keys[0])
	if err != nil {
		return nil, err
	}
	service.current = client
	return service, nil
}

func dialGemini(apiKey string) (*geminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &geminiClient{client: client, close: client.Close}, nil
}

func (s *GeminiService) acquire() *geminiClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.inUse++
	return s.current
}

func (s *GeminiService) release(c *geminiClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.inUse--
	if c.retired && c.inUse == 0 {
		c.close()
	}
}

// rotateAPIKey moves to the next key if failed is still the current client.
// Callers that failed on an already replaced client just retry on the new one.
func (s *GeminiService) rotateAPIKey(failed *geminiClient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != failed {
		return nil
	}
	if len(s.apiKeys) < 2 {
		return errors.New("no other API key to rotate to")
	}
	next := (s.currentKey + 1) % len(s.apiKeys)
	client, err := s.dial(s.apiKeys[next])
	if err != nil {
		return err
	}
	s.currentKey = next
	s.current = client

	failed.retired = true
	if failed.inUse == 0 {
		failed.close()
	}
	return nil
}

// withRotation runs call, and on failure rotates the key and runs it once more.
func (s *GeminiService) withRotation(call func(client *genai.Client) error) error {
	c := s.acquire()
	err := call(c.client)
	s.release(c)
	if err == nil {
		return nil
	}
	if rotateErr := s.rotateAPIKey(c); rotateErr != nil {
		return err
	}

	c = s.acquire()
	defer s.release(c)
	return call(c.client)
}

func (s *GeminiService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.retired = true
	if s.current.inUse > 0 {
		return nil
	}
	return s.current.close()
}

func (s *GeminiService) Chat(ctx context.Context, prompt string) (string, error) {
	var resp *genai.GenerateContentResponse
	err := s.withRotation(func(client *genai.Client) error {
		model := client.GenerativeModel(s.modelName)
		model.SetTemperature(0)
		var err error
		resp, err = model.GenerateContent(ctx, genai.Text(prompt))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("gemini chat failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	var content strings.Builder
	if cand := resp.Candidates[0]; cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content.WriteString(string(text))
			}
		}
	}
	return content.String(), nil
}

// GeminiEmbedder embeds through the client of a GeminiService, sharing its key pool.
type GeminiEmbedder struct {
	service    *GeminiService
	model      string
	embedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func NewGeminiEmbedder(service *GeminiService, model string) *GeminiEmbedder {
	e := &GeminiEmbedder{service: service, model: model}
	e.embedBatch = e.batchEmbedContents
	return e
}

// Embed sends texts in requests of at most geminiMaxBatchSize contents.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += geminiMaxBatchSize {
		end := min(start+geminiMaxBatchSize, len(texts))
		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("expected %d embeddings, got %d", end-start, len(batch))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (e *GeminiEmbedder) batchEmbedContents(ctx context.Context, texts []string) ([][]float32, error) {
	var resp *genai.BatchEmbedContentsResponse
	err := e.service.withRotation(func(client *genai.Client) error {
		em := client.EmbeddingModel(e.model)
		batch := em.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}
		var err error
		resp, err = em.BatchEmbedContents(ctx, batch)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedding failed: %w", err)
	}
	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
