package types

// Document is the plain text extracted from one fetched source.
type Document struct {
	Source  string // URL the content was fetched from
	Content string // Extracted text
}

// Chunk is a bounded, overlapping slice of a Document tagged with its owning database.
type Chunk struct {
	Text       string `json:"text"`
	Source     string `json:"source"`
	DatabaseID string `json:"database_id"`
}

// ScoredChunk is a Chunk returned by similarity search.
type ScoredChunk struct {
	Chunk
	ID    string  `json:"id"`
	Score float32 `json:"score"`
}

// Record is a Chunk paired with its embedding, ready to be stored.
type Record struct {
	Chunk
	Vector []float32
}

// Filter restricts store operations to chunk records whose metadata matches.
// Empty fields impose no constraint.
type Filter struct {
	DatabaseID string
	Source     string
}

// IsEmpty reports whether the filter matches the whole collection.
func (f Filter) IsEmpty() bool {
	return f.DatabaseID == "" && f.Source == ""
}

// SplitterConfig contains configuration options for text chunking
type SplitterConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`    // Maximum characters per chunk
	ChunkOverlap int `mapstructure:"chunk_overlap"` // Characters shared by consecutive chunks
}
