package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"

	"turath/internal/middleware"
	"turath/internal/text"
	"turath/internal/vector"
)

const embedTimeout = 60 * time.Second

// EmbedConsumer drains embed tasks off the queue: embed the chunk, upsert
// it into the index, and keep the document catalog current.
type EmbedConsumer struct {
	embedder Embedder
	index    Index
	catalog  CatalogUpdater
}

func NewEmbedConsumer(e Embedder, idx Index, catalog CatalogUpdater) *EmbedConsumer {
	return &EmbedConsumer{embedder: e, index: idx, catalog: catalog}
}

func (h *EmbedConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var task EmbedTask
	if err := json.Unmarshal(m.Body, &task); err != nil {
		// Poison pill: invalid JSON will never parse, don't retry.
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	ctx := context.Background()
	if task.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, task.CorrelationID)
	}

	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	vec, err := h.embedder.Embed(embedCtx, task.Content)
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "chunk_id", task.ChunkID, "filename", task.Filename, "error", err)
		return err // requeue
	}

	entry := vector.Entry{
		ID:     task.ChunkID,
		Vector: vec,
		Text:   task.Content,
		Meta: text.Metadata{
			Title:     task.Title,
			Source:    task.Source,
			Site:      task.Site,
			Topic:     task.Topic,
			Filename:  task.Filename,
			WordCount: task.WordCount,
		},
	}
	if err := h.index.UpsertEntries(ctx, []vector.Entry{entry}); err != nil {
		slog.ErrorContext(ctx, "index upsert failed", "chunk_id", task.ChunkID, "error", err)
		return err // requeue
	}

	// The catalog is marked per message, so a document reads completed as
	// soon as its first chunk lands while siblings may still be queued.
	if err := h.catalog.SetChunkCount(ctx, task.Filename, task.ChunkTotal); err != nil {
		slog.WarnContext(ctx, "failed to record chunk count", "filename", task.Filename, "error", err)
	}
	if err := h.catalog.UpdateStatus(ctx, task.Filename, "completed", ""); err != nil {
		slog.WarnContext(ctx, "failed to update document status", "filename", task.Filename, "error", err)
	}

	slog.DebugContext(ctx, "chunk embedded", "chunk_id", task.ChunkID, "filename", task.Filename)
	return nil
}
