package service

import "context"

// AIService sends a single prompt and returns the model's reply.
type AIService interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// Embedder maps texts to vectors, one per input and in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
