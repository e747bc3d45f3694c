package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/paolopast/LangNerd/internal/llm"
)

// GuideGenerator produces the structured guide record for the guide branch.
// Model output is untrusted: it is schema-validated here, retried once with
// a stricter formatting instruction when malformed, and sanitized field by
// field before it reaches the exporter.
type GuideGenerator struct {
	llm    llm.Provider
	logger *log.Logger
}

func NewGuideGenerator(provider llm.Provider, logger *log.Logger) *GuideGenerator {
	if logger == nil {
		logger = log.Default()
	}
	return &GuideGenerator{llm: provider, logger: logger}
}

const guideSystemPrompt = `You are the LangNerd chief editor for video game guides.
Respond ONLY with one valid JSON object. No markdown fences, no commentary.`

const guideSchema = `{
  "game_title": str,
  "elevator_pitch": str,
  "story_overview": str,
  "world_setting": str,
  "main_characters": [{"name": str, "role": str, "description": str}],
  "relationships": str,
  "missions_and_tips": [{"title": str, "details": str, "strategy": str}],
  "trophies": [{"name": str, "tier": str, "description": str, "tips": str}],
  "advanced_insights": str
}`

func (g *GuideGenerator) buildPrompt(req Request, language, contextBlock string, degraded bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Build a complete guide from the numbered search context below. Write every field strictly in the language with ISO code %q.\n", language)
	b.WriteString("Guidelines:\n")
	b.WriteString("- Use ONLY information corroborated by the context; OMIT any field you cannot support instead of inventing filler.\n")
	b.WriteString("- story_overview must be a detailed narrative summary covering setting, main events, twists and consequences.\n")
	b.WriteString("- missions_and_tips entries need descriptive unique titles, mission details and a step-by-step strategy.\n")
	b.WriteString("- trophies entries need the correct tier (bronze/silver/gold/platinum), the unlock condition and concrete tips.\n")
	b.WriteString("- main_characters covers protagonists and antagonists with their role in the story.\n")
	b.WriteString("- Cite supporting context entries inline as [n]; never cite a number that is not in the context.\n")
	if degraded {
		b.WriteString("- No verified sources are available: build only what general knowledge supports, state prominently in elevator_pitch that sources were insufficient, and emit no [n] citations.\n")
	}
	fmt.Fprintf(&b, "Return exactly this JSON structure:\n%s\n", guideSchema)
	if contextBlock != "" {
		fmt.Fprintf(&b, "\nSearch context:\n%s\n", contextBlock)
	} else {
		b.WriteString("\nSearch context: none.\n")
	}
	if req.Game != "" {
		fmt.Fprintf(&b, "\nGame: %s", req.Game)
	}
	if req.Focus != "" {
		fmt.Fprintf(&b, "\nRequested focus: %s", req.Focus)
	}
	if req.Extra != "" {
		fmt.Fprintf(&b, "\nExtra notes from the user: %s", req.Extra)
	}
	return b.String()
}

// Generate produces a validated Guide. A malformed payload is retried at
// most once with a stricter instruction before failing.
func (g *GuideGenerator) Generate(ctx context.Context, req Request, language, contextBlock string, sources []Source, degraded bool) (Guide, error) {
	prompt := g.buildPrompt(req, language, contextBlock, degraded)

	raw, err := g.llm.Generate(ctx, guideSystemPrompt, prompt)
	if err != nil {
		return Guide{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	guide, parseErr := decodeGuide(raw)
	if parseErr != nil {
		g.logger.Printf("malformed guide payload, retrying with strict instruction: %v", parseErr)
		strict := prompt + "\n\nIMPORTANT: the previous output was not parseable. Respond with NOTHING but the raw JSON object: no fences, no prose, double-quoted keys, no trailing commas."
		raw, err = g.llm.Generate(ctx, guideSystemPrompt, strict)
		if err != nil {
			return Guide{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
		guide, parseErr = decodeGuide(raw)
		if parseErr != nil {
			return Guide{}, fmt.Errorf("%w: %v", ErrGenerationFailed, parseErr)
		}
	}

	return normalizeGuide(guide, req.Game, sources), nil
}

func decodeGuide(raw string) (Guide, error) {
	payload := extractJSONPayload(raw)
	var guide Guide
	if err := json.Unmarshal([]byte(payload), &guide); err != nil {
		return Guide{}, fmt.Errorf("decode guide: %w", err)
	}
	return guide, nil
}

// normalizeGuide enforces the guide invariants: a non-empty title, unique
// list keys, and sanitized rich text everywhere.
func normalizeGuide(guide Guide, fallbackTitle string, sources []Source) Guide {
	guide.GameTitle = strings.TrimSpace(guide.GameTitle)
	if guide.GameTitle == "" {
		guide.GameTitle = strings.TrimSpace(fallbackTitle)
	}

	guide.ElevatorPitch = normalizeRichText(guide.ElevatorPitch, sources)
	guide.StoryOverview = normalizeRichText(guide.StoryOverview, sources)
	guide.WorldSetting = normalizeRichText(guide.WorldSetting, sources)
	guide.Relationships = normalizeRichText(guide.Relationships, sources)
	guide.AdvancedInsights = normalizeRichText(guide.AdvancedInsights, sources)

	seen := make(map[string]struct{})
	characters := guide.MainCharacters[:0]
	for _, c := range guide.MainCharacters {
		c.Name = strings.TrimSpace(c.Name)
		key := strings.ToLower(c.Name)
		if c.Name == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		c.Role = normalizeRichText(c.Role, sources)
		c.Description = normalizeRichText(c.Description, sources)
		characters = append(characters, c)
	}
	guide.MainCharacters = characters

	seen = make(map[string]struct{})
	missions := guide.MissionsAndTips[:0]
	for _, m := range guide.MissionsAndTips {
		m.Title = strings.TrimSpace(m.Title)
		key := strings.ToLower(m.Title)
		if m.Title == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		m.Details = normalizeRichText(m.Details, sources)
		m.Strategy = normalizeRichText(m.Strategy, sources)
		missions = append(missions, m)
	}
	guide.MissionsAndTips = missions

	seen = make(map[string]struct{})
	trophies := guide.Trophies[:0]
	for _, t := range guide.Trophies {
		t.Name = strings.TrimSpace(t.Name)
		key := strings.ToLower(t.Name)
		if t.Name == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		t.Tier = strings.ToLower(strings.TrimSpace(t.Tier))
		t.Description = normalizeRichText(t.Description, sources)
		t.Tips = normalizeRichText(t.Tips, sources)
		trophies = append(trophies, t)
	}
	guide.Trophies = trophies

	return guide
}
