package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agentic-rag/internal/logging"
)

const DefaultFirecrawlURL = "https://api.firecrawl.dev"

// Firecrawl calls the Firecrawl search API
type Firecrawl struct {
	apiKey  string
	baseURL string
	limit   int
	client  *http.Client
}

func NewFirecrawl(apiKey, baseURL string, limit int, client *http.Client) *Firecrawl {
	if baseURL == "" {
		baseURL = DefaultFirecrawlURL
	}
	if limit <= 0 {
		limit = 5
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Firecrawl{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		client:  client,
	}
}

type firecrawlRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type firecrawlResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Markdown    string `json:"markdown"`
	} `json:"data"`
}

func (f *Firecrawl) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(f.apiKey) == "" {
		return nil, fmt.Errorf("firecrawl: %w", ErrMissingAPIKey)
	}

	payload, err := json.Marshal(firecrawlRequest{Query: query, Limit: f.limit})
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	delay := 1 * time.Second
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/v1/search", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+f.apiKey)

		resp, err = f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("firecrawl: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= 3 {
			break
		}
		resp.Body.Close()
		logging.Debug("firecrawl: rate limited, retrying in %s", delay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("firecrawl http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response firecrawlResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("firecrawl: failed to decode response: %w", err)
	}
	if !response.Success && response.Error != "" {
		return nil, fmt.Errorf("firecrawl: %s", response.Error)
	}

	results := make([]Result, 0, len(response.Data))
	for _, d := range response.Data {
		snippet := d.Description
		if snippet == "" {
			snippet = d.Markdown
		}
		results = append(results, Result{Title: d.Title, URL: d.URL, Snippet: snippet})
		if len(results) >= f.limit {
			break
		}
	}
	return results, nil
}
