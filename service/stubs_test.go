package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tieubaoca/docqa-be/types"
)

type stubFetcher struct {
	mu    sync.Mutex
	docs  map[string]string
	calls int
}

func newStubFetcher(docs map[string]string) *stubFetcher {
	return &stubFetcher{docs: docs}
}

func (f *stubFetcher) Fetch(ctx context.Context, urls []string) ([]types.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	out := make([]types.Document, 0, len(urls))
	for _, u := range urls {
		content, ok := f.docs[u]
		if !ok {
			return nil, fmt.Errorf("failed to fetch %s: not found", u)
		}
		out = append(out, types.Document{Source: u, Content: content})
	}
	return out, nil
}

// letterEmbedder maps text to its letter histogram plus a constant component,
// so texts sharing words land close together.
type letterEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (e *letterEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 27)
		v[26] = 0.1
		for _, r := range strings.ToLower(t) {
			if r >= 'a' && r <= 'z' {
				v[r-'a']++
			}
		}
		vectors[i] = v
	}
	return vectors, nil
}

type stubChat struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) string
	err     error
}

func (c *stubChat) Chat(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	if c.reply != nil {
		return c.reply(prompt), nil
	}
	return "stub answer", nil
}

func (c *stubChat) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

type stubQuestionLog struct {
	mu   sync.Mutex
	logs []types.QuestionLog
	err  error
}

func (l *stubQuestionLog) CreateQuestionLog(ctx context.Context, log *types.QuestionLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.logs = append(l.logs, *log)
	return nil
}
