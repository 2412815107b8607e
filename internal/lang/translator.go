package lang

import (
	"context"
	"log/slog"
)

// TranslationClient is satisfied by the gemini adapter.
type TranslationClient interface {
	Translate(ctx context.Context, content, targetLang string) (string, error)
}

// Translator moves text between the working language and the user's
// language. Failures degrade to returning the input untranslated so a
// translation outage never blocks an answer.
type Translator struct {
	client TranslationClient
}

func NewTranslator(client TranslationClient) *Translator {
	return &Translator{client: client}
}

func (t *Translator) Translate(ctx context.Context, content, sourceLang, targetLang string) string {
	if content == "" || sourceLang == targetLang {
		return content
	}
	out, err := t.client.Translate(ctx, content, targetLang)
	if err != nil {
		slog.WarnContext(ctx, "translation failed, returning original text",
			"source", sourceLang, "target", targetLang, "error", err)
		return content
	}
	return out
}
