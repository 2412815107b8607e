package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"turath/internal/vector"
)

// Settings hold the retrieval knobs. Similarity thresholds are in (0, 1];
// an item must score strictly above ItemThreshold to enter the evidence.
type Settings struct {
	TopK               int
	ItemThreshold      float64
	AggregateThreshold float64
}

type Embedder interface {
	Embed(ctx context.Context, content string) ([]float32, error)
}

type Index interface {
	Query(ctx context.Context, vec []float32, k int) ([]vector.Hit, error)
}

// RetrievedSource describes one passage that survived the relevance gate.
// Rank is the 1-based position in the raw retrieval order, so gaps appear
// when lower-ranked candidates are filtered out.
type RetrievedSource struct {
	Rank       int     `json:"rank"`
	Title      string  `json:"title"`
	Source     string  `json:"source"`
	Site       string  `json:"site"`
	Similarity float64 `json:"similarity"`
}

// Evidence is the gated retrieval result handed to answer synthesis.
type Evidence struct {
	Context       string
	Sources       []RetrievedSource
	AvgSimilarity float64
}

// Similarity converts an index distance into a similarity score in (0, 1].
// Distance zero maps to 1 and the score decays monotonically from there.
func Similarity(distance float64) float64 {
	return 1 / (1 + distance)
}

type Service struct {
	embedder Embedder
	index    Index
	settings Settings
}

func NewService(e Embedder, idx Index, settings Settings) *Service {
	return &Service{embedder: e, index: idx, settings: settings}
}

// Retrieve embeds the question, queries the index for the top-k nearest
// chunks, and keeps only those above the item similarity threshold.
func (s *Service) Retrieve(ctx context.Context, question string) (*Evidence, error) {
	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.index.Query(ctx, vec, s.settings.TopK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	var (
		sb      strings.Builder
		sources []RetrievedSource
		total   float64
	)
	for i, hit := range hits {
		sim := Similarity(hit.Distance)
		if sim <= s.settings.ItemThreshold {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(hit.Text)
		sb.WriteString("\n")
		sources = append(sources, RetrievedSource{
			Rank:       i + 1,
			Title:      hit.Meta.Title,
			Source:     hit.Meta.Source,
			Site:       hit.Meta.Site,
			Similarity: sim,
		})
		total += sim
	}

	evidence := &Evidence{Context: sb.String(), Sources: sources}
	if len(sources) > 0 {
		evidence.AvgSimilarity = total / float64(len(sources))
	}

	slog.DebugContext(ctx, "retrieval complete",
		"candidates", len(hits),
		"kept", len(sources),
		"avg_similarity", evidence.AvgSimilarity,
	)
	return evidence, nil
}
