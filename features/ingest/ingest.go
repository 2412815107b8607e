package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"turath/internal/config"
	"turath/internal/middleware"
	"turath/internal/text"
	"turath/internal/vector"
	"turath/internal/worker"
)

// Document catalog statuses.
const (
	StatusIngesting = "ingesting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	Site       string    `json:"site"`
	Topic      string    `json:"topic"`
	Status     string    `json:"status"`
	ChunkCount int       `json:"chunk_count"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Repository interface {
	Upsert(ctx context.Context, doc *Document) error
	UpdateStatus(ctx context.Context, filename, status, errMsg string) error
	SetChunkCount(ctx context.Context, filename string, count int) error
	List(ctx context.Context) ([]Document, error)
	Delete(ctx context.Context, filename string) error
}

type Embedder interface {
	EmbedBatch(ctx context.Context, contents []string) ([][]float32, error)
}

type Index interface {
	UpsertEntries(ctx context.Context, entries []vector.Entry) error
	DeleteByFilename(ctx context.Context, filename string) error
}

type Publisher interface {
	Publish(topic string, body []byte) error
}

// Params control chunking and embedding during an ingestion run.
type Params struct {
	ChunkSize      int
	ChunkOverlap   int
	MinChunkWords  int
	EmbedBatchSize int
}

// RunSummary reports the outcome of one directory ingestion run.
type RunSummary struct {
	Files       int `json:"files"`
	FilesFailed int `json:"files_failed"`
	Chunks      int `json:"chunks"`
}

type Service struct {
	repo      Repository
	embedder  Embedder
	index     Index
	publisher Publisher
	params    Params
}

func NewService(repo Repository, embedder Embedder, index Index, publisher Publisher, params Params) *Service {
	return &Service{
		repo:      repo,
		embedder:  embedder,
		index:     index,
		publisher: publisher,
		params:    params,
	}
}

type pendingChunk struct {
	id      string
	content string
	meta    text.Metadata
}

// RunDir synchronously ingests every .txt file under dir: normalize, chunk,
// embed in batches, upsert into the index. Chunk ids are assigned as
// chunk_N with N monotonically increasing across the whole run, so
// re-running over the same corpus overwrites in place. A file that fails to
// read or normalize is marked failed in the catalog and skipped; the run
// continues with the remaining files.
func (s *Service) RunDir(ctx context.Context, dir string) (*RunSummary, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("scan documents dir: %w", err)
	}
	sort.Strings(paths)

	summary := &RunSummary{}
	var pending []pendingChunk
	chunkCounts := make(map[string]int)

	for _, path := range paths {
		filename := filepath.Base(path)
		summary.Files++

		chunks, meta, err := s.prepareFile(ctx, path)
		if err != nil {
			summary.FilesFailed++
			slog.ErrorContext(ctx, "skipping document", "filename", filename, "error", err)
			if repoErr := s.repo.UpdateStatus(ctx, filename, StatusFailed, err.Error()); repoErr != nil {
				slog.ErrorContext(ctx, "failed to record document failure", "filename", filename, "error", repoErr)
			}
			continue
		}

		for _, chunk := range chunks {
			pending = append(pending, pendingChunk{
				id:      fmt.Sprintf("chunk_%d", len(pending)),
				content: chunk,
				meta:    meta,
			})
		}
		chunkCounts[filename] = len(chunks)
	}

	if err := s.embedAndStore(ctx, pending); err != nil {
		for filename := range chunkCounts {
			if repoErr := s.repo.UpdateStatus(ctx, filename, StatusFailed, err.Error()); repoErr != nil {
				slog.ErrorContext(ctx, "failed to record document failure", "filename", filename, "error", repoErr)
			}
		}
		return nil, err
	}

	for filename, count := range chunkCounts {
		if err := s.repo.SetChunkCount(ctx, filename, count); err != nil {
			slog.ErrorContext(ctx, "failed to record chunk count", "filename", filename, "error", err)
			continue
		}
		if err := s.repo.UpdateStatus(ctx, filename, StatusCompleted, ""); err != nil {
			slog.ErrorContext(ctx, "failed to mark document completed", "filename", filename, "error", err)
		}
		summary.Chunks += count
	}

	slog.InfoContext(ctx, "ingestion run finished",
		"files", summary.Files,
		"files_failed", summary.FilesFailed,
		"chunks", summary.Chunks,
	)
	return summary, nil
}

// EnqueueDir walks dir like RunDir but instead of embedding inline it
// publishes one embed task per chunk, leaving the work to the consumer
// pool. Used when the embed worker is enabled.
func (s *Service) EnqueueDir(ctx context.Context, dir string) (*RunSummary, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("scan documents dir: %w", err)
	}
	sort.Strings(paths)

	summary := &RunSummary{}
	nextChunk := 0
	correlationID := middleware.GetCorrelationID(ctx)

	for _, path := range paths {
		filename := filepath.Base(path)
		summary.Files++

		chunks, meta, err := s.prepareFile(ctx, path)
		if err != nil {
			summary.FilesFailed++
			slog.ErrorContext(ctx, "skipping document", "filename", filename, "error", err)
			if repoErr := s.repo.UpdateStatus(ctx, filename, StatusFailed, err.Error()); repoErr != nil {
				slog.ErrorContext(ctx, "failed to record document failure", "filename", filename, "error", repoErr)
			}
			continue
		}

		for _, chunk := range chunks {
			task := worker.EmbedTask{
				ChunkID:       fmt.Sprintf("chunk_%d", nextChunk),
				Content:       chunk,
				Title:         meta.Title,
				Source:        meta.Source,
				Site:          meta.Site,
				Topic:         meta.Topic,
				Filename:      meta.Filename,
				WordCount:     text.WordCount(chunk),
				ChunkTotal:    len(chunks),
				CorrelationID: correlationID,
			}
			body, err := json.Marshal(task)
			if err != nil {
				return nil, fmt.Errorf("marshal embed task: %w", err)
			}
			if err := s.publisher.Publish(config.TopicIngestEmbed, body); err != nil {
				return nil, fmt.Errorf("publish embed task: %w", err)
			}
			nextChunk++
		}
		summary.Chunks += len(chunks)
	}

	slog.InfoContext(ctx, "ingestion tasks enqueued",
		"files", summary.Files,
		"files_failed", summary.FilesFailed,
		"chunks", summary.Chunks,
	)
	return summary, nil
}

// Delete removes a document from both the vector index and the catalog.
func (s *Service) Delete(ctx context.Context, filename string) error {
	if err := s.index.DeleteByFilename(ctx, filename); err != nil {
		return fmt.Errorf("delete from index: %w", err)
	}
	return s.repo.Delete(ctx, filename)
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.repo.List(ctx)
}

func (s *Service) prepareFile(ctx context.Context, path string) ([]string, text.Metadata, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, text.Metadata{}, fmt.Errorf("read file: %w", err)
	}

	cleaned, meta := text.Normalize(string(raw))
	meta.Filename = filepath.Base(path)

	chunks, err := text.Chunk(cleaned, s.params.ChunkSize, s.params.ChunkOverlap, s.params.MinChunkWords)
	if err != nil {
		return nil, text.Metadata{}, fmt.Errorf("chunk file: %w", err)
	}

	doc := &Document{
		Filename: meta.Filename,
		Title:    meta.Title,
		Source:   meta.Source,
		Site:     meta.Site,
		Topic:    meta.Topic,
		Status:   StatusIngesting,
	}
	if err := s.repo.Upsert(ctx, doc); err != nil {
		return nil, text.Metadata{}, fmt.Errorf("catalog document: %w", err)
	}
	return chunks, meta, nil
}

func (s *Service) embedAndStore(ctx context.Context, pending []pendingChunk) error {
	for start := 0; start < len(pending); start += s.params.EmbedBatchSize {
		end := start + s.params.EmbedBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		contents := make([]string, len(batch))
		for i, c := range batch {
			contents[i] = c.content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, contents)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}

		entries := make([]vector.Entry, len(batch))
		for i, c := range batch {
			meta := c.meta
			meta.WordCount = text.WordCount(c.content)
			entries[i] = vector.Entry{
				ID:     c.id,
				Vector: vectors[i],
				Text:   c.content,
				Meta:   meta,
			}
		}
		if err := s.index.UpsertEntries(ctx, entries); err != nil {
			return fmt.Errorf("store batch %d-%d: %w", start, end, err)
		}
		slog.DebugContext(ctx, "stored embedding batch", "from", start, "to", end)
	}
	return nil
}
