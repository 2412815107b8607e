package synthesis

import (
	"context"
	"fmt"
	"log/slog"
)

// Generator is satisfied by the gemini adapter.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Synthesizer turns gated evidence into a grounded answer. Generation
// failures surface as a visible error string rather than an HTTP error so
// the caller still receives a well-formed response with its sources.
type Synthesizer struct {
	generator Generator
}

func NewSynthesizer(g Generator) *Synthesizer {
	return &Synthesizer{generator: g}
}

func (s *Synthesizer) Synthesize(ctx context.Context, contextBlock, question string) string {
	prompt := BuildPrompt(contextBlock, question)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "answer generation failed", "error", err)
		return fmt.Sprintf("Error: %s", err)
	}
	return answer
}
