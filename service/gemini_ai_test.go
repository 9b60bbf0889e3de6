package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDialer hands out clients that only record their key and whether they were closed.
type fakeDialer struct {
	mu     sync.Mutex
	keys   []string
	closed map[string]int
}

func (d *fakeDialer) dial(apiKey string) (*geminiClient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = append(d.keys, apiKey)
	return &geminiClient{close: func() error {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed == nil {
			d.closed = map[string]int{}
		}
		d.closed[apiKey]++
		return nil
	}}, nil
}

func (d *fakeDialer) closedCount(apiKey string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed[apiKey]
}

func (d *fakeDialer) dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.keys...)
}

func TestNewGeminiServiceRequiresKey(t *testing.T) {
	_, err := NewGeminiService(" , ", "gemini-1.5-flash")
	assert.ErrorContains(t, err, "no API keys provided")
}

func TestGeminiService_RotatesOnFailure(t *testing.T) {
	d := &fakeDialer{}
	svc, err := newGeminiService("k0, k1", "m", d.dial)
	require.NoError(t, err)

	calls := 0
	err = svc.withRotation(func(*genai.Client) error {
		calls++
		if calls == 1 {
			return errors.New("quota exceeded")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"k0", "k1"}, d.dialed())
	assert.Equal(t, 1, d.closedCount("k0"))

	t.Run("single key returns the call error", func(t *testing.T) {
		svc, err := newGeminiService("only", "m", d.dial)
		require.NoError(t, err)
		err = svc.withRotation(func(*genai.Client) error { return errors.New("quota exceeded") })
		assert.ErrorContains(t, err, "quota exceeded")
	})
}

func TestGeminiService_RotationKeepsInFlightClientOpen(t *testing.T) {
	d := &fakeDialer{}
	svc, err := newGeminiService("k0,k1,k2", "m", d.dial)
	require.NoError(t, err)

	started := make(chan struct{})
	finish := make(chan struct{})
	slowDone := make(chan error)
	go func() {
		slowDone <- svc.withRotation(func(*genai.Client) error {
			close(started)
			<-finish
			return nil
		})
	}()
	<-started

	attempt := 0
	err = svc.withRotation(func(*genai.Client) error {
		attempt++
		if attempt == 1 {
			return errors.New("quota exceeded")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, d.closedCount("k0"), "client still used by another call")

	close(finish)
	require.NoError(t, <-slowDone)
	assert.Equal(t, 1, d.closedCount("k0"))
	assert.Equal(t, []string{"k0", "k1"}, d.dialed())
}

func TestGeminiService_ConcurrentFailuresRotateOnce(t *testing.T) {
	d := &fakeDialer{}
	svc, err := newGeminiService("k0,k1,k2", "m", d.dial)
	require.NoError(t, err)

	var ready sync.WaitGroup
	ready.Add(2)
	fail := make(chan struct{})
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			attempt := 0
			errs <- svc.withRotation(func(*genai.Client) error {
				attempt++
				if attempt == 1 {
					ready.Done()
					<-fail
					return errors.New("quota exceeded")
				}
				return nil
			})
		}()
	}
	ready.Wait()
	close(fail)
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	assert.Equal(t, []string{"k0", "k1"}, d.dialed(), "both failures share one rotation")
	assert.Equal(t, 1, svc.currentKey)
	assert.Equal(t, 1, d.closedCount("k0"))
}

func TestGeminiEmbedder_SplitsLargeBatches(t *testing.T) {
	defer func(n int) { geminiMaxBatchSize = n }(geminiMaxBatchSize)
	geminiMaxBatchSize = 3

	var sizes []int
	e := &GeminiEmbedder{embedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
		sizes = append(sizes, len(texts))
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = []float32{float32(len(text))}
		}
		return out, nil
	}}

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff", "g"}
	vectors, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, sizes)
	require.Len(t, vectors, len(texts))
	for i, text := range texts {
		assert.Equal(t, []float32{float32(len(text))}, vectors[i])
	}
}

func TestGeminiEmbedder_ShortBatch(t *testing.T) {
	e := &GeminiEmbedder{embedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}}
	_, err := e.Embed(context.Background(), []string{"a", "b"})
	assert.ErrorContains(t, err, "expected 2 embeddings, got 1")
}
