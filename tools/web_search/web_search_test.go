package web_search

import (
	"context"
	"testing"
	"time"

	"github.com/paolopast/LangNerd/tools/web_search/models"
)

func TestNewWebSearcherKnownProviders(t *testing.T) {
	for _, p := range []Provider{SerperProvider, BraveProvider, TavilyProvider} {
		s, err := NewWebSearcher(p, "key")
		if err != nil {
			t.Fatalf("provider %s: %v", p, err)
		}
		if s == nil {
			t.Fatalf("provider %s returned nil searcher", p)
		}
	}
}

func TestNewWebSearcherUnknownProvider(t *testing.T) {
	if _, err := NewWebSearcher(Provider("bing"), "key"); err != ErrUnsupportedProvider {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}

type countingSearcher struct{ calls int }

func (c *countingSearcher) Discover(ctx context.Context, q string, k int, lang, country string) ([]models.Result, error) {
	c.calls++
	return nil, nil
}

func TestLimitedHonorsCancelledContext(t *testing.T) {
	inner := &countingSearcher{}
	// Burst 1: the second call must wait, and a cancelled context must
	// surface instead of blocking.
	l := NewLimited(inner, 0.001, 1)

	if _, err := l.Discover(context.Background(), "q", 1, "it", "it"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.Discover(ctx, "q", 1, "it", "it"); err == nil {
		t.Fatalf("expected wait to fail under cancelled context")
	}
	if inner.calls != 1 {
		t.Fatalf("rate-limited call must not reach the backend, got %d calls", inner.calls)
	}
}
