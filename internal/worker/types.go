package worker

import (
	"context"

	"turath/internal/vector"
)

// EmbedTask is the queue payload for one chunk awaiting embedding.
type EmbedTask struct {
	ChunkID   string `json:"chunk_id"`
	Content   string `json:"content"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	Site      string `json:"site"`
	Topic     string `json:"topic"`
	Filename  string `json:"filename"`
	WordCount int    `json:"word_count"`

	// ChunkTotal is the number of chunks produced from the same file.
	// Every task carries it so the catalog row converges on the right
	// count regardless of delivery order.
	ChunkTotal int `json:"chunk_total"`

	CorrelationID string `json:"correlation_id"`
}

type Embedder interface {
	Embed(ctx context.Context, content string) ([]float32, error)
}

type Index interface {
	UpsertEntries(ctx context.Context, entries []vector.Entry) error
}

type CatalogUpdater interface {
	UpdateStatus(ctx context.Context, filename, status, errMsg string) error
	SetChunkCount(ctx context.Context, filename string, count int) error
}
