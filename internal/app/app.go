package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"turath/features/ask"
	"turath/features/ingest"
	"turath/internal/config"
	"turath/internal/lang"
	"turath/internal/middleware"
	"turath/internal/retrieval"
	"turath/internal/synthesis"
	"turath/internal/vector"
	"turath/internal/worker"
)

type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// VectorStore is the full index surface the application wires together.
type VectorStore interface {
	UpsertEntries(ctx context.Context, entries []vector.Entry) error
	Query(ctx context.Context, vec []float32, k int) ([]vector.Hit, error)
	DeleteByFilename(ctx context.Context, filename string) error
	Count(ctx context.Context) (int, error)
}

// AIClient is the model surface, satisfied by the gemini adapter.
type AIClient interface {
	Embed(ctx context.Context, content string) ([]float32, error)
	EmbedBatch(ctx context.Context, contents []string) ([][]float32, error)
	Generate(ctx context.Context, prompt string) (string, error)
	Translate(ctx context.Context, content, targetLang string) (string, error)
}

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler       http.Handler
	AskService    *ask.Service
	IngestService *ingest.Service
	EmbedConsumer *worker.EmbedConsumer

	addr string
}

func New(
	cfg *config.Config,
	db *sql.DB,
	vecStore VectorStore,
	taskPub TaskPublisher,
	ai AIClient,
	logger *slog.Logger,
) (*App, error) {
	docRepo := ingest.NewPostgresRepo(db)

	ingestService := ingest.NewService(docRepo, ai, vecStore, taskPub, ingest.Params{
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
		MinChunkWords:  cfg.MinChunkWords,
		EmbedBatchSize: cfg.EmbedBatchSize,
	})
	ingestHandler := ingest.NewHandler(ingestService, cfg.DocumentsDir, cfg.EnableEmbedWorker)

	retrievalService := retrieval.NewService(ai, vecStore, retrieval.Settings{
		TopK:               cfg.TopK,
		ItemThreshold:      cfg.ItemSimilarityThreshold,
		AggregateThreshold: cfg.AggregateSimilarityThreshold,
	})
	synthesizer := synthesis.NewSynthesizer(ai)
	detector := lang.NewDetector()
	translator := lang.NewTranslator(ai)

	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	askService := ask.NewService(
		retrievalService, synthesizer, detector, translator,
		queryLogger, cfg.WorkingLanguage, cfg.AggregateSimilarityThreshold,
	)
	askHandler := ask.NewHandler(askService)

	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()

	mux.Handle("POST /ask", middleware.CorrelationID(enableCORS(askHandler.Ask)))

	mux.Handle("POST /ingest", middleware.CorrelationID(enableCORS(ingestHandler.Run)))
	mux.Handle("GET /documents", middleware.CorrelationID(enableCORS(ingestHandler.List)))
	mux.Handle("DELETE /documents/{filename}", middleware.CorrelationID(enableCORS(ingestHandler.Delete)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	embedConsumer := worker.NewEmbedConsumer(ai, vecStore, docRepo)

	return &App{
		Handler:       mux,
		AskService:    askService,
		IngestService: ingestService,
		EmbedConsumer: embedConsumer,
		addr:          fmt.Sprintf(":%d", cfg.ServerPort),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.addr,
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "addr", a.addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
