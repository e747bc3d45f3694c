package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/paolopast/LangNerd/internal/llm"
)

// AnswerGenerator produces the rich-text answer for the qa branch.
type AnswerGenerator struct {
	llm    llm.Provider
	logger *log.Logger
}

func NewAnswerGenerator(provider llm.Provider, logger *log.Logger) *AnswerGenerator {
	if logger == nil {
		logger = log.Default()
	}
	return &AnswerGenerator{llm: provider, logger: logger}
}

const answerSystemPrompt = `You are the LangNerd response engine, a video game specialist.
Respond ONLY with valid semantic HTML (use <section>, <ol>, <ul>, <li>, <strong>).
Do not include markdown fences or any text outside the HTML.`

// Generate builds the answer from the supplied context block. With no
// sources it degrades to model knowledge and must say so; it must never
// invent citations.
func (g *AnswerGenerator) Generate(ctx context.Context, req Request, language, contextBlock string, sources []Source) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer strictly in the language with ISO code %q.\n", language)
	b.WriteString("Rules:\n")
	b.WriteString("1) Use ONLY verifiable facts from the context below; if information is missing, say so explicitly.\n")
	b.WriteString("2) Open with a short summary (2 sentences max) focused on the question.\n")
	b.WriteString("3) Give operational instructions as numbered steps with practical tips.\n")
	b.WriteString("4) List any requirements (level, items, recommended builds) as bullet points.\n")
	if len(sources) > 0 {
		b.WriteString("5) Close each paragraph citing at least one source as [n], matching the numbered context entries. Never cite a number that is not in the context.\n")
	} else {
		b.WriteString("5) No verified sources are available: answer from general knowledge and state clearly that the answer is unsourced. Do not emit [n] citations and do not invent URLs.\n")
	}
	b.WriteString("6) Ignore off-topic content.\n")

	if contextBlock != "" {
		fmt.Fprintf(&b, "\nVerified context:\n%s\n", contextBlock)
	} else {
		b.WriteString("\nVerified context: none.\n")
	}
	if req.Game != "" {
		fmt.Fprintf(&b, "\nGame: %s", req.Game)
	}
	if req.Focus != "" {
		fmt.Fprintf(&b, "\nFocus: %s", req.Focus)
	}
	fmt.Fprintf(&b, "\nQuestion (keep the answer strictly on topic): %s", req.Question)

	raw, err := g.llm.Generate(ctx, answerSystemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return normalizeRichText(raw, sources), nil
}
