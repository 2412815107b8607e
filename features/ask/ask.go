package ask

import (
	"context"
	"log/slog"
	"time"

	"turath/internal/middleware"
	"turath/internal/retrieval"
)

// Outcome tags describe how a question was resolved. Refusals are reported
// structurally so callers never have to string-match answer text.
const (
	OutcomeAnswered      = "answered"
	OutcomeNoSources     = "rejected_no_sources"
	OutcomeLowConfidence = "rejected_low_confidence"
)

const (
	RefusalNoSources     = "I don't have information about this topic in my knowledge base. I can only answer questions about Tunisian archaeological sites like Carthage, Dougga, El Jem, Kerkouane, Sbeitla, and Bulla Regia."
	RefusalLowConfidence = "I couldn't find relevant information about this question in my database about Tunisian archaeological sites. Please ask about sites like Carthage, Dougga, El Jem, or other Tunisian heritage locations."
)

// Result is the full answer envelope for one question.
type Result struct {
	Answer        string                      `json:"answer"`
	Outcome       string                      `json:"outcome"`
	Language      string                      `json:"language"`
	Sources       []retrieval.RetrievedSource `json:"sources"`
	AvgSimilarity float64                     `json:"avg_similarity"`
}

type Retriever interface {
	Retrieve(ctx context.Context, question string) (*retrieval.Evidence, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, contextBlock, question string) string
}

type Detector interface {
	Detect(content string) string
}

type Translator interface {
	Translate(ctx context.Context, content, sourceLang, targetLang string) string
}

type Service struct {
	retriever          Retriever
	synthesizer        Synthesizer
	detector           Detector
	translator         Translator
	queryLog           *retrieval.QueryLogger
	workingLang        string
	aggregateThreshold float64
}

func NewService(r Retriever, s Synthesizer, d Detector, t Translator, ql *retrieval.QueryLogger, workingLang string, aggregateThreshold float64) *Service {
	return &Service{
		retriever:          r,
		synthesizer:        s,
		detector:           d,
		translator:         t,
		queryLog:           ql,
		workingLang:        workingLang,
		aggregateThreshold: aggregateThreshold,
	}
}

// Answer runs the full question pipeline: detect language, translate into
// the working language, retrieve and gate evidence, synthesize or refuse,
// then translate the answer back to the user's language.
func (s *Service) Answer(ctx context.Context, question string) (*Result, error) {
	start := time.Now()

	userLang := s.detector.Detect(question)
	workingQuestion := s.translator.Translate(ctx, question, userLang, s.workingLang)

	evidence, err := s.retriever.Retrieve(ctx, workingQuestion)
	if err != nil {
		return nil, err
	}

	result := &Result{Language: userLang, AvgSimilarity: evidence.AvgSimilarity}
	switch {
	case len(evidence.Sources) == 0:
		result.Outcome = OutcomeNoSources
		result.Answer = RefusalNoSources
		result.Sources = []retrieval.RetrievedSource{}
	case evidence.AvgSimilarity < s.aggregateThreshold:
		result.Outcome = OutcomeLowConfidence
		result.Answer = RefusalLowConfidence
		result.Sources = []retrieval.RetrievedSource{}
	default:
		result.Outcome = OutcomeAnswered
		result.Answer = s.synthesizer.Synthesize(ctx, evidence.Context, workingQuestion)
		result.Sources = evidence.Sources
	}

	result.Answer = s.translator.Translate(ctx, result.Answer, s.workingLang, userLang)

	if s.queryLog != nil {
		s.queryLog.Log(retrieval.QueryLogEntry{
			Question:      question,
			Language:      userLang,
			Outcome:       result.Outcome,
			NumSources:    len(result.Sources),
			AvgSimilarity: result.AvgSimilarity,
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(ctx),
		})
	}

	slog.InfoContext(ctx, "question answered",
		"outcome", result.Outcome,
		"language", userLang,
		"num_sources", len(result.Sources),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
