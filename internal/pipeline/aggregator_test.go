package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paolopast/LangNerd/config"
	searchmodels "github.com/paolopast/LangNerd/tools/web_search/models"
)

// searcherFunc adapts a function to the WebSearcher interface.
type searcherFunc func(ctx context.Context, q string, k int, lang, country string) ([]searchmodels.Result, error)

func (f searcherFunc) Discover(ctx context.Context, q string, k int, lang, country string) ([]searchmodels.Result, error) {
	return f(ctx, q, k, lang, country)
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		PerQuery:      6,
		MaxSources:    6,
		ContextBudget: 12000,
		Timeout:       5 * time.Second,
	}
}

func quietLogger() *log.Logger {
	return log.New(testWriter{}, "", 0)
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestCollectDedupesByURL(t *testing.T) {
	searcher := searcherFunc(func(ctx context.Context, q string, k int, lang, country string) ([]searchmodels.Result, error) {
		return []searchmodels.Result{
			{Title: "shared", URL: "https://example.com/shared"},
			{Title: q, URL: "https://example.com/" + strings.ReplaceAll(q, " ", "-")},
		}, nil
	})
	a := NewAggregator(searcher, testSearchConfig(), quietLogger())

	sources, err := a.Collect(context.Background(), []string{"query one", "query two"}, "en")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	seen := map[string]bool{}
	for _, s := range sources {
		if seen[s.URL] {
			t.Fatalf("duplicate URL %s", s.URL)
		}
		seen[s.URL] = true
	}
	if len(sources) != 3 {
		t.Fatalf("expected 3 deduplicated sources, got %d", len(sources))
	}
}

func TestCollectOrderFollowsQueryOrder(t *testing.T) {
	// The first query is made slow on purpose; its results must still come
	// first in the merged list.
	searcher := searcherFunc(func(ctx context.Context, q string, k int, lang, country string) ([]searchmodels.Result, error) {
		if q == "slow" {
			time.Sleep(50 * time.Millisecond)
		}
		return []searchmodels.Result{{Title: q, URL: "https://example.com/" + q}}, nil
	})
	a := NewAggregator(searcher, testSearchConfig(), quietLogger())

	sources, err := a.Collect(context.Background(), []string{"slow", "fast"}, "en")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(sources) != 2 || sources[0].Title != "slow" || sources[1].Title != "fast" {
		t.Fatalf("merge order must follow query order, got %+v", sources)
	}
}

func TestCollectCapsSources(t *testing.T) {
	searcher := searcherFunc(func(ctx context.Context, q string, k int, lang, country string) ([]searchmodels.Result, error) {
		var out []searchmodels.Result
		for i := 0; i < 5; i++ {
			out = append(out, searchmodels.Result{Title: q, URL: fmt.Sprintf("https://example.com/%s/%d", q, i)})
		}
		return out, nil
	})
	cfg := testSearchConfig()
	cfg.MaxSources = 4
	a := NewAggregator(searcher, cfg, quietLogger())

	sources, err := a.Collect(context.Background(), []string{"a", "b"}, "en")
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(sources) != 4 {
		t.Fatalf("expected cap of 4, got %d", len(sources))
	}
}

func TestCollectPartialFailureAccepted(t *testing.T) {
	searcher := searcherFunc(func(ctx context.Context, q string, k int, lang, country string) ([]searchmodels.Result, error) {
		if q == "broken" {
			return nil, errors.New("boom")
		}
		return []searchmodels.Result{{Title: q, URL: "https://example.com/" + q}}, nil
	})
	a := NewAggregator(searcher, testSearchConfig(), quietLogger())

	sources, err := a.Collect(context.Background(), []string{"broken", "works"}, "en")
	if err != nil {
		t.Fatalf("partial failure must not fail the collection: %v", err)
	}
	if len(sources) != 1 || sources[0].Title != "works" {
		t.Fatalf("unexpected sources: %+v", sources)
	}
}

func TestCollectAllQueriesFailed(t *testing.T) {
	var calls int32
	searcher := searcherFunc(func(ctx context.Context, q string, k int, lang, country string) ([]searchmodels.Result, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("transport down")
	})
	a := NewAggregator(searcher, testSearchConfig(), quietLogger())

	_, err := a.Collect(context.Background(), []string{"a", "b", "c"}, "en")
	if !errors.Is(err, ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected one call per query, got %d", calls)
	}
}

func TestCollectZeroResultsIsNotAnError(t *testing.T) {
	searcher := searcherFunc(func(ctx context.Context, q string, k int, lang, country string) ([]searchmodels.Result, error) {
		return nil, nil
	})
	a := NewAggregator(searcher, testSearchConfig(), quietLogger())

	sources, err := a.Collect(context.Background(), []string{"a"}, "en")
	if err != nil {
		t.Fatalf("empty result set is valid: %v", err)
	}
	if len(sources) != 0 {
		t.Fatalf("expected no sources, got %+v", sources)
	}
}

func TestFormatContextNumbersSources(t *testing.T) {
	a := NewAggregator(nil, testSearchConfig(), quietLogger())
	block := a.FormatContext([]Source{
		{Title: "First", URL: "https://example.com/1", Snippet: "one"},
		{Title: "Second", URL: "https://example.com/2", Snippet: "two"},
	})
	if !strings.Contains(block, "[1] First - https://example.com/1") {
		t.Fatalf("missing first entry: %q", block)
	}
	if !strings.Contains(block, "[2] Second - https://example.com/2") {
		t.Fatalf("missing second entry: %q", block)
	}
}

func TestFormatContextRespectsBudget(t *testing.T) {
	cfg := testSearchConfig()
	cfg.ContextBudget = 80
	a := NewAggregator(nil, cfg, quietLogger())
	block := a.FormatContext([]Source{
		{Title: "First", URL: "https://example.com/1", Snippet: strings.Repeat("x", 40)},
		{Title: "Second", URL: "https://example.com/2", Snippet: strings.Repeat("y", 40)},
	})
	if len(block) > 80 {
		t.Fatalf("context block exceeds budget: %d bytes", len(block))
	}
	if !strings.Contains(block, "[1]") {
		t.Fatalf("first block should survive truncation: %q", block)
	}
	if strings.Contains(block, "[2]") {
		t.Fatalf("second block should be truncated away: %q", block)
	}
}
