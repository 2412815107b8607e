package lang

import (
	"log/slog"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// DefaultLanguage is used when detection cannot produce a confident result.
const DefaultLanguage = "en"

// Detector identifies the language of incoming questions. The candidate set
// is fixed to the languages the document corpus actually sees; restricting
// it keeps detection reliable on short queries.
type Detector struct {
	detector lingua.LanguageDetector
}

func NewDetector() *Detector {
	languages := []lingua.Language{
		lingua.English,
		lingua.French,
		lingua.Arabic,
		lingua.Spanish,
		lingua.German,
		lingua.Italian,
	}
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// Detect returns the ISO 639-1 code of the detected language, lowercased.
// Empty or undetectable input falls back to DefaultLanguage.
func (d *Detector) Detect(content string) string {
	if strings.TrimSpace(content) == "" {
		return DefaultLanguage
	}
	language, ok := d.detector.DetectLanguageOf(content)
	if !ok {
		slog.Debug("language detection inconclusive, using fallback", "fallback", DefaultLanguage)
		return DefaultLanguage
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
