package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smhanov/laconic"
	lsearch "github.com/smhanov/laconic/search"

	"agentic-rag/internal/config"
)

var ErrMissingAPIKey = errors.New("search API key is missing")

// Result is one web hit
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher runs a web query
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// RequiresKey reports whether provider needs a credential
func RequiresKey(provider string) bool {
	return provider != config.ProviderDuckDuckGo
}

const defaultTimeout = 20 * time.Second

// New builds the configured provider wrapped with result limits and domain
// filters
func New(cfg config.SearchConfig, apiKey string) (Searcher, error) {
	apiKey = strings.TrimSpace(apiKey)
	if RequiresKey(cfg.Provider) && apiKey == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrMissingAPIKey)
	}

	limit := cfg.NumResults
	if limit <= 0 {
		limit = 5
	}
	client := &http.Client{Timeout: defaultTimeout}

	var inner Searcher
	switch cfg.Provider {
	case config.ProviderFirecrawl:
		fetch := limit
		if len(cfg.IncludeDomains) > 0 || len(cfg.ExcludeDomains) > 0 {
			// filtering happens after the fact, so ask for more
			fetch = min(limit*3, 20)
		}
		inner = NewFirecrawl(apiKey, cfg.BaseURL, fetch, client)
	case config.ProviderTavily:
		inner = laconicSearcher{lsearch.NewTavilyWithClient(apiKey, cfg.Depth, client)}
	case config.ProviderBrave:
		inner = laconicSearcher{lsearch.NewBraveWithClient(apiKey, client)}
	case config.ProviderDuckDuckGo:
		inner = laconicSearcher{lsearch.NewDuckDuckGoWithClient(client)}
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}

	return &filtered{
		inner:   inner,
		limit:   limit,
		include: normalizeDomains(cfg.IncludeDomains),
		exclude: normalizeDomains(cfg.ExcludeDomains),
	}, nil
}

// laconicSearcher adapts a laconic provider
type laconicSearcher struct {
	provider laconic.SearchProvider
}

func (l laconicSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	hits, err := l.provider.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(hits))
	for i, h := range hits {
		out[i] = Result{Title: h.Title, URL: h.URL, Snippet: h.Snippet}
	}
	return out, nil
}

type filtered struct {
	inner   Searcher
	limit   int
	include []string
	exclude []string
}

func (f *filtered) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query must not be empty")
	}

	hits, err := f.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, min(len(hits), f.limit))
	for _, h := range hits {
		if !f.allowed(h.URL) {
			continue
		}
		out = append(out, h)
		if len(out) == f.limit {
			break
		}
	}
	return out, nil
}

func (f *filtered) allowed(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return len(f.include) == 0
	}
	for _, d := range f.exclude {
		if matchesDomain(host, d) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, d := range f.include {
		if matchesDomain(host, d) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
}

// matchesDomain is true for the domain itself and any subdomain of it
func matchesDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if strings.Contains(d, "://") {
			d = hostOf(d)
		}
		d = strings.TrimPrefix(d, "www.")
		d = strings.Trim(d, "./")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
