package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nsqio/go-nsq"
	"google.golang.org/api/option"

	"turath/internal/adapter/gemini"
	"turath/internal/app"
	"turath/internal/config"
	"turath/internal/logger"
)

func main() {
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		slog.Error("service exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.DB.Close()
	defer deps.NSQProducer.Stop()

	aiClient, err := newAIClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer aiClient.Close()

	a, err := app.New(cfg, deps.DB, deps.VectorStore, deps.NSQProducer, aiClient, log)
	if err != nil {
		return err
	}

	if cfg.EnableEmbedWorker {
		consumer, err := nsq.NewConsumer(config.TopicIngestEmbed, "embedder", nsq.NewConfig())
		if err != nil {
			return err
		}
		consumer.AddHandler(nsq.HandlerFunc(a.EmbedConsumer.HandleMessage))
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			slog.Error("failed to connect to NSQLookupd", "error", err)
		} else {
			slog.Info("embed consumer connected", "topic", config.TopicIngestEmbed)
		}
		defer consumer.Stop()
	}

	if !cfg.EnableAPI {
		slog.Info("api disabled, running worker only")
		<-ctx.Done()
		return nil
	}

	if err := a.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newAIClient(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (*gemini.Client, error) {
	return gemini.NewClient(
		ctx,
		cfg.GeminiAPIKey,
		cfg.EmbeddingModel,
		cfg.GenerationModel,
		time.Duration(cfg.ExternalTimeoutSeconds)*time.Second,
		gemini.GenerationParams{
			Temperature:     cfg.GenTemperature,
			TopP:            cfg.GenTopP,
			MaxOutputTokens: cfg.GenMaxOutputTokens,
		},
		opts...,
	)
}
