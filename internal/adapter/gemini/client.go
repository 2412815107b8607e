package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when the model produced no usable candidate.
var ErrEmptyResponse = errors.New("gemini: empty response")

// GenerationParams control the generation model for answer synthesis.
type GenerationParams struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// Client wraps a single genai connection for both embedding and generation.
type Client struct {
	client    *genai.Client
	embedName string
	genName   string
	timeout   time.Duration
	params    GenerationParams
}

func NewClient(ctx context.Context, apiKey, embedModel, genModel string, timeout time.Duration, params GenerationParams, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key not configured")
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{
		client:    client,
		embedName: embedModel,
		genName:   genModel,
		timeout:   timeout,
		params:    params,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Embed(ctx context.Context, content string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	slog.DebugContext(ctx, "embedding content", "model", c.embedName, "length", len(content))
	em := c.client.EmbeddingModel(c.embedName)
	res, err := em.EmbedContent(ctx, genai.Text(content))
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "error", err)
		return nil, err
	}
	if res.Embedding == nil {
		return nil, ErrEmptyResponse
	}
	return res.Embedding.Values, nil
}

// EmbedBatch embeds all texts in a single batch request. The result slice
// is index-aligned with the input.
func (c *Client) EmbedBatch(ctx context.Context, contents []string) ([][]float32, error) {
	if len(contents) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	em := c.client.EmbeddingModel(c.embedName)
	batch := em.NewBatch()
	for _, content := range contents {
		batch.AddContent(genai.Text(content))
	}
	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		slog.ErrorContext(ctx, "batch embedding failed", "error", err, "size", len(contents))
		return nil, err
	}
	if len(res.Embeddings) != len(contents) {
		return nil, fmt.Errorf("gemini: expected %d embeddings, got %d", len(contents), len(res.Embeddings))
	}
	vectors := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		if emb == nil {
			return nil, ErrEmptyResponse
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// Generate runs the prompt through the generation model with the configured
// sampling parameters.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.genName)
	model.SetTemperature(c.params.Temperature)
	model.SetTopP(c.params.TopP)
	model.SetMaxOutputTokens(c.params.MaxOutputTokens)

	return c.generate(ctx, model, prompt)
}

// Translate rewrites content into the target language. Translation runs at
// temperature zero so repeated calls stay stable.
func (c *Client) Translate(ctx context.Context, content, targetLang string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.genName)
	model.SetTemperature(0)

	prompt := fmt.Sprintf(
		"Translate the following text to %s. Return only the translation, with no preamble or explanation.\n\n%s",
		targetLang, content,
	)
	return c.generate(ctx, model, prompt)
}

func (c *Client) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		slog.ErrorContext(ctx, "generation failed", "model", c.genName, "error", err)
		return "", err
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
