package service

import (
	"strings"
	"unicode"

	"github.com/tieubaoca/docqa-be/types"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

var DefaultSplitterConfig = types.SplitterConfig{
	ChunkSize:    DefaultChunkSize,
	ChunkOverlap: DefaultChunkOverlap,
}

// TextSplitter cuts text into fixed size windows that share a fixed overlap.
// Sizes count characters (runes), not bytes.
type TextSplitter struct {
	chunkSize    int
	chunkOverlap int
}

func NewTextSplitter(config types.SplitterConfig) *TextSplitter {
	size := config.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	overlap := config.ChunkOverlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &TextSplitter{
		chunkSize:    size,
		chunkOverlap: overlap,
	}
}

// Split chunks every document, tagging each chunk with its source.
func (s *TextSplitter) Split(docs []types.Document) []types.Chunk {
	var chunks []types.Chunk
	for _, doc := range docs {
		for _, text := range s.SplitText(doc.Content) {
			chunks = append(chunks, types.Chunk{
				Text:   text,
				Source: doc.Source,
			})
		}
	}
	return chunks
}

// SplitText returns the windows of text. Window i+1 starts chunkOverlap
// characters before window i ends, so the windows concatenated with their
// overlaps dropped give back the input.
func (s *TextSplitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	total := len(runes)

	var chunks []string
	start := 0
	for {
		end := start + s.chunkSize
		if end >= total {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		end = s.breakPoint(runes, start, end)
		chunks = append(chunks, string(runes[start:end]))
		start = end - s.chunkOverlap
	}
	return chunks
}

// breakPoint picks where the window [start, limit) should end. It prefers a
// paragraph break, then a line break, then a sentence end, then any whitespace,
// and falls back to limit. The result is always past start+chunkOverlap so the
// next window makes progress.
func (s *TextSplitter) breakPoint(runes []rune, start, limit int) int {
	floor := start + s.chunkOverlap + 1
	if half := start + s.chunkSize/2; half > floor {
		floor = half
	}
	if floor > limit {
		return limit
	}

	matchers := []func(i int) bool{
		func(i int) bool { return i-2 >= start && runes[i-1] == '\n' && runes[i-2] == '\n' },
		func(i int) bool { return runes[i-1] == '\n' },
		func(i int) bool {
			switch runes[i-1] {
			case '.', '!', '?':
				return true
			}
			return false
		},
		func(i int) bool { return unicode.IsSpace(runes[i-1]) },
	}
	for _, match := range matchers {
		for i := limit; i >= floor; i-- {
			if match(i) {
				return i
			}
		}
	}
	return limit
}
