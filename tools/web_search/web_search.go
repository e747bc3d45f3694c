package web_search

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/paolopast/LangNerd/tools/web_search/brave"
	"github.com/paolopast/LangNerd/tools/web_search/models"
	"github.com/paolopast/LangNerd/tools/web_search/serper"
	"github.com/paolopast/LangNerd/tools/web_search/tavily"
)

// WebSearcher issues one external search call per invocation. Zero results
// is a valid state (empty slice, nil error); retries belong to the caller.
type WebSearcher interface {
	Discover(ctx context.Context, q string, k int, lang, country string) ([]models.Result, error)
}

type Provider string

const (
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
	TavilyProvider Provider = "tavily"
)

var ErrUnsupportedProvider = &Error{"unsupported provider"}

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey}, nil
	case TavilyProvider:
		return tavily.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// Limited wraps a WebSearcher with a token bucket so concurrent query
// fan-out cannot exceed the search backend's quota.
type Limited struct {
	inner   WebSearcher
	limiter *rate.Limiter
}

func NewLimited(inner WebSearcher, perSecond float64, burst int) *Limited {
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = int(perSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &Limited{inner: inner, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *Limited) Discover(ctx context.Context, q string, k int, lang, country string) ([]models.Result, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.inner.Discover(ctx, q, k, lang, country)
}
