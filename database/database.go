package database

import (
	"context"
	"errors"

	"github.com/tieubaoca/docqa-be/types"
)

const BATCH_SIZE = 200

// ErrEmptyFilter guards against filtered operations silently targeting the whole collection.
var ErrEmptyFilter = errors.New("filter must constrain at least one field")

// VectorStore is the single physical collection every logical database lives in.
// Logical databases exist only as the database_id tag on stored records.
type VectorStore interface {
	// EnsureCollection creates the physical collection if it does not exist yet.
	EnsureCollection(ctx context.Context) error

	// Exists reports whether at least one record matches the filter.
	Exists(ctx context.Context, filter types.Filter) (bool, error)

	// Upsert stores records, in batches of BATCH_SIZE.
	Upsert(ctx context.Context, records []types.Record) error

	// Search returns up to limit records closest to vector among those matching the filter.
	// An empty filter searches the whole collection.
	Search(ctx context.Context, vector []float32, limit int, filter types.Filter) ([]types.ScoredChunk, error)

	// Delete removes every record matching the filter. The filter must not be empty.
	Delete(ctx context.Context, filter types.Filter) error
}

func batches(total int) [][2]int {
	var out [][2]int
	for start := 0; start < total; start += BATCH_SIZE {
		end := start + BATCH_SIZE
		if end > total {
			end = total
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
