package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/paolopast/LangNerd/config"
	"github.com/paolopast/LangNerd/tools/web_search"
	searchmodels "github.com/paolopast/LangNerd/tools/web_search/models"
)

// Aggregator fans the plan's queries out over the search client and merges
// the hits into one bounded, deduplicated source list.
type Aggregator struct {
	searcher web_search.WebSearcher
	cfg      config.SearchConfig
	logger   *log.Logger
}

func NewAggregator(searcher web_search.WebSearcher, cfg config.SearchConfig, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{searcher: searcher, cfg: cfg, logger: logger}
}

// Collect runs every query concurrently and merges results in query order,
// so output is deterministic regardless of completion order. Individual
// query failures are logged and skipped; if every query fails the whole
// collection fails with ErrNoSources.
func (a *Aggregator) Collect(ctx context.Context, queries []string, language string) ([]Source, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no queries planned", ErrNoSources)
	}

	perQuery := a.cfg.PerQuery
	if perQuery <= 0 {
		perQuery = 6
	}
	timeout := a.cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	country := a.cfg.Country

	results := make([][]searchmodels.Result, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			qctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			res, err := a.searcher.Discover(qctx, q, perQuery, language, country)
			if err != nil {
				errs[i] = fmt.Errorf("%w: %q: %v", ErrSearchUnavailable, q, err)
				return
			}
			results[i] = res
		}(i, q)
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			a.logger.Printf("query %d/%d failed: %v", i+1, len(queries), err)
		}
	}
	if failed == len(queries) {
		return nil, fmt.Errorf("%w: all %d queries failed", ErrNoSources, len(queries))
	}

	maxSources := a.cfg.MaxSources
	if maxSources <= 0 {
		maxSources = 6
	}

	seen := make(map[string]struct{})
	var sources []Source
	for _, batch := range results {
		for _, r := range batch {
			if r.URL == "" {
				continue
			}
			if _, ok := seen[r.URL]; ok {
				continue
			}
			seen[r.URL] = struct{}{}
			sources = append(sources, Source{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
			if len(sources) >= maxSources {
				return sources, nil
			}
		}
	}
	return sources, nil
}

// FormatContext renders the numbered context block fed to the generation
// step, truncated to the configured byte budget at a block boundary.
func (a *Aggregator) FormatContext(sources []Source) string {
	if len(sources) == 0 {
		return ""
	}
	budget := a.cfg.ContextBudget
	if budget <= 0 {
		budget = 12000
	}

	var b strings.Builder
	for i, s := range sources {
		block := fmt.Sprintf("[%d] %s - %s\n%s", i+1, s.Title, s.URL, s.Snippet)
		if b.Len() > 0 {
			if b.Len()+len(block)+2 > budget {
				break
			}
			b.WriteString("\n\n")
		} else if len(block) > budget {
			return block[:budget]
		}
		b.WriteString(block)
	}
	return b.String()
}
