package pipeline

import (
	"fmt"
	"strings"

	"github.com/paolopast/LangNerd/config"
)

// Planner turns a raw request into a mode and an ordered, localized query
// list. Classification is deterministic: no external calls.
type Planner struct {
	cfg config.SearchConfig

	defaultLanguage string
}

func NewPlanner(search config.SearchConfig, defaultLanguage string) *Planner {
	if defaultLanguage == "" {
		defaultLanguage = "it"
	}
	return &Planner{cfg: search, defaultLanguage: defaultLanguage}
}

// queryQualifiers are the per-language search qualifiers appended to the
// game title when deriving complementary queries.
type queryQualifiers struct {
	story    string
	missions string
	trophies string
}

var qualifiersByLanguage = map[string]queryQualifiers{
	"it": {"trama completa", "missioni guida", "lista trofei"},
	"en": {"full story explained", "missions walkthrough", "trophy list"},
	"es": {"historia completa", "guía de misiones", "lista de trofeos"},
	"fr": {"histoire complète", "guide des missions", "liste des trophées"},
	"de": {"komplette story", "missionen walkthrough", "trophäen liste"},
}

var guideKeywords = []string{
	"guide", "guida", "guía", "tutorial", "walkthrough", "panoramica",
	"overview", "completa", "complete", "platinum", "platino", "trofei",
	"trophies", "trofeos", "pdf", "documento",
}

// Classify decides the pipeline branch for a free-text request. A direct
// question wins qa; guide-intent keywords or a bare game title win guide;
// anything ambiguous stays qa, the cheaper mode.
func (p *Planner) Classify(req Request) Mode {
	q := strings.ToLower(strings.TrimSpace(req.Question))
	if q == "" && strings.TrimSpace(req.Game) != "" {
		return ModeGuide
	}
	if strings.Contains(q, "?") {
		return ModeQA
	}
	for _, kw := range guideKeywords {
		if strings.Contains(q, kw) {
			return ModeGuide
		}
	}
	return ModeQA
}

// Plan validates the request and derives the ordered search queries for the
// given mode. The question/topic must be non-empty after trimming unless a
// game title carries the request.
func (p *Planner) Plan(req Request, mode Mode) (Plan, error) {
	question := strings.TrimSpace(req.Question)
	game := strings.TrimSpace(req.Game)
	focus := strings.TrimSpace(req.Focus)

	if question == "" && game == "" {
		return Plan{}, fmt.Errorf("%w: empty question", ErrInvalidRequest)
	}
	if mode == ModeGuide && game == "" {
		// A guide needs a subject; fall back to the question text as topic.
		game = question
	}

	lang := p.NormalizeLanguage(req.Language)
	qual, ok := qualifiersByLanguage[lang]
	if !ok {
		qual = qualifiersByLanguage["en"]
	}

	var queries []string
	if question != "" {
		queries = append(queries, question)
	} else {
		queries = append(queries, game)
	}
	if game != "" {
		queries = append(queries, game+" "+qual.story)
		queries = append(queries, game+" "+qual.missions)
	}
	if mode == ModeGuide && game != "" {
		queries = append(queries, game+" "+qual.trophies)
	}
	if focus != "" && game != "" {
		queries = append(queries, game+" "+focus)
	}

	max := p.cfg.MaxQueries
	if max <= 0 {
		max = 4
	}
	queries = dedupeStrings(queries)
	if len(queries) > max {
		queries = queries[:max]
	}

	return Plan{Mode: mode, Language: lang, Queries: queries}, nil
}

// NormalizeLanguage lowers the code and keeps the primary ISO-639-1 subtag.
func (p *Planner) NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if len(code) != 2 {
		return p.defaultLanguage
	}
	return code
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
