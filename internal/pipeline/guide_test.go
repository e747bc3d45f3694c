package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// providerFunc adapts a function to the llm.Provider interface.
type providerFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

func (f providerFunc) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

// scriptedProvider replays canned completions in order.
type scriptedProvider struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (s *scriptedProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, userPrompt)
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

const validGuideJSON = `{
  "game_title": "Game X",
  "elevator_pitch": "A short pitch [1]",
  "story_overview": "<p>The story</p>",
  "main_characters": [
    {"name": "Hero", "role": "protagonist", "description": "leads the party"},
    {"name": "hero", "role": "dup", "description": "dup"}
  ],
  "missions_and_tips": [
    {"title": "First Steps", "details": "details", "strategy": "strategy"},
    {"title": "first steps", "details": "dup", "strategy": "dup"}
  ],
  "trophies": [
    {"name": "Platinum Run", "tier": "Platinum", "description": "finish everything", "tips": "do it all"}
  ]
}`

func testSources() []Source {
	return []Source{{Title: "wiki", URL: "https://example.com/wiki", Snippet: "snippet"}}
}

func TestGuideGenerateParsesFencedJSON(t *testing.T) {
	provider := providerFunc(func(ctx context.Context, system, user string) (string, error) {
		return "```json\n" + validGuideJSON + "\n```", nil
	})
	g := NewGuideGenerator(provider, quietLogger())

	guide, err := g.Generate(context.Background(), Request{Game: "Game X"}, "it", "[1] wiki - https://example.com/wiki\nsnippet", testSources(), false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if guide.GameTitle != "Game X" {
		t.Fatalf("unexpected title %q", guide.GameTitle)
	}
	if !strings.Contains(guide.ElevatorPitch, `href="https://example.com/wiki"`) {
		t.Fatalf("citation not linkified: %q", guide.ElevatorPitch)
	}
}

func TestGuideGenerateDeduplicatesLists(t *testing.T) {
	provider := providerFunc(func(ctx context.Context, system, user string) (string, error) {
		return validGuideJSON, nil
	})
	g := NewGuideGenerator(provider, quietLogger())

	guide, err := g.Generate(context.Background(), Request{Game: "Game X"}, "it", "", nil, true)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(guide.MainCharacters) != 1 {
		t.Fatalf("characters not deduplicated: %+v", guide.MainCharacters)
	}
	if len(guide.MissionsAndTips) != 1 {
		t.Fatalf("missions not deduplicated: %+v", guide.MissionsAndTips)
	}
	if guide.Trophies[0].Tier != "platinum" {
		t.Fatalf("tier not normalized: %q", guide.Trophies[0].Tier)
	}
}

func TestGuideGenerateRetriesOnceOnMalformedPayload(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"sorry, no JSON here", validGuideJSON}}
	g := NewGuideGenerator(provider, quietLogger())

	guide, err := g.Generate(context.Background(), Request{Game: "Game X"}, "it", "", nil, false)
	if err != nil {
		t.Fatalf("Generate after retry: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", provider.calls)
	}
	if !strings.Contains(provider.prompts[1], "not parseable") {
		t.Fatalf("retry prompt must carry strict instruction: %q", provider.prompts[1])
	}
	if guide.GameTitle != "Game X" {
		t.Fatalf("unexpected title %q", guide.GameTitle)
	}
}

func TestGuideGenerateFailsAfterSecondMalformedPayload(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"not json", "still not json"}}
	g := NewGuideGenerator(provider, quietLogger())

	_, err := g.Generate(context.Background(), Request{Game: "Game X"}, "it", "", nil, false)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", provider.calls)
	}
}

func TestGuideGenerateWrapsBackendError(t *testing.T) {
	provider := providerFunc(func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("connection refused")
	})
	g := NewGuideGenerator(provider, quietLogger())

	_, err := g.Generate(context.Background(), Request{Game: "Game X"}, "it", "", nil, false)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestGuideGenerateKeepsCauseInChain(t *testing.T) {
	provider := providerFunc(func(ctx context.Context, system, user string) (string, error) {
		return "", context.DeadlineExceeded
	})
	g := NewGuideGenerator(provider, quietLogger())

	_, err := g.Generate(context.Background(), Request{Game: "Game X"}, "it", "", nil, false)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("timeout cause lost from the chain: %v", err)
	}
}

func TestGuideGenerateFallsBackToRequestedTitle(t *testing.T) {
	provider := providerFunc(func(ctx context.Context, system, user string) (string, error) {
		return `{"story_overview": "something"}`, nil
	})
	g := NewGuideGenerator(provider, quietLogger())

	guide, err := g.Generate(context.Background(), Request{Game: "Chrono Trigger"}, "en", "", nil, true)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if guide.GameTitle != "Chrono Trigger" {
		t.Fatalf("expected fallback title, got %q", guide.GameTitle)
	}
}

func TestGuideGenerateSanitizesModelOutput(t *testing.T) {
	provider := providerFunc(func(ctx context.Context, system, user string) (string, error) {
		return `{"game_title": "X", "story_overview": "<p>fine</p><script>alert(1)</script>"}`, nil
	})
	g := NewGuideGenerator(provider, quietLogger())

	guide, err := g.Generate(context.Background(), Request{Game: "X"}, "en", "", nil, true)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Contains(guide.StoryOverview, "<script") {
		t.Fatalf("script survived sanitization: %q", guide.StoryOverview)
	}
}

func TestGuideDegradedPromptOmitsCitations(t *testing.T) {
	var captured string
	provider := providerFunc(func(ctx context.Context, system, user string) (string, error) {
		captured = user
		return validGuideJSON, nil
	})
	g := NewGuideGenerator(provider, quietLogger())

	if _, err := g.Generate(context.Background(), Request{Game: "X"}, "en", "", nil, true); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(captured, "No verified sources are available") {
		t.Fatalf("degraded instruction missing from prompt")
	}
}
