package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/vyaaparik/bizagent/pkg/logger"
)

const CompetitorSearchToolName = "searchWebForCompetitorData"

// SearchResult is one entry from the web-search backend.
type SearchResult struct {
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	Link     string `json:"link"`
	Position int    `json:"position"`
}

// SearchResponse is the web-search backend's reply shape.
type SearchResponse struct {
	Results         []SearchResult         `json:"results"`
	KnowledgeGraph  map[string]interface{} `json:"knowledgeGraph,omitempty"`
	RelatedSearches []string               `json:"relatedSearches,omitempty"`
	TotalResults    int64                  `json:"totalResults,omitempty"`
	Timestamp       string                 `json:"timestamp,omitempty"`
}

// SearchClient is the web-search boundary: one POST per query.
type SearchClient interface {
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

// SerperClient talks to a Serper-style search endpoint. The search is a
// pure read, so failed requests are retried with a short backoff.
type SerperClient struct {
	endpoint   string
	apiKey     string
	maxRetries int
	httpClient *http.Client
}

func NewSerperClient(endpoint, apiKey string, timeout time.Duration, maxRetries int) *SerperClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &SerperClient{
		endpoint:   strings.TrimSpace(endpoint),
		apiKey:     strings.TrimSpace(apiKey),
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *SerperClient) Search(ctx context.Context, query string) (*SearchResponse, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("search endpoint not configured")
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
			logger.InfoCF("search", "Retrying web search", map[string]interface{}{
				"attempt": attempt + 1,
			})
		}

		resp, err := c.doSearch(ctx, query)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *SerperClient) doSearch(ctx context.Context, query string) (*SearchResponse, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) != nil || strings.TrimSpace(apiErr.Error) == "" {
			return nil, fmt.Errorf("search API failed: status=%d with no parsable error body", resp.StatusCode)
		}
		return nil, fmt.Errorf("search API failed: status=%d error=%s", resp.StatusCode, apiErr.Error)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	return &searchResp, nil
}

// Competitor is one company surfaced by a web search.
type Competitor struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

// MarketTrendNote is one trend-flavored snippet from search results.
type MarketTrendNote struct {
	Insight string `json:"insight"`
	Source  string `json:"source"`
}

// CompetitorAnalysis is the heuristic extraction from raw search results.
type CompetitorAnalysis struct {
	Competitors  []Competitor      `json:"competitors"`
	PriceRanges  []string          `json:"priceRanges"`
	MarketTrends []MarketTrendNote `json:"marketTrends"`
	AnalysisDate string            `json:"analysisDate"`
}

// CompetitorSearchReport is the success payload of searchWebForCompetitorData.
type CompetitorSearchReport struct {
	OriginalQuery      string                 `json:"originalQuery"`
	EnhancedQuery      string                 `json:"enhancedQuery"`
	SearchResults      []SearchResult         `json:"searchResults"`
	CompetitorAnalysis *CompetitorAnalysis    `json:"competitorAnalysis"`
	KnowledgeGraph     map[string]interface{} `json:"knowledgeGraph,omitempty"`
	RelatedSearches    []string               `json:"relatedSearches"`
	TotalResults       int64                  `json:"totalResults"`
	Timestamp          string                 `json:"timestamp,omitempty"`
	Sources            []string               `json:"sources"`
}

// SearchFallback is the failure payload: a diagnostic plus deterministic
// industry data so synthesis always has usable content.
type SearchFallback struct {
	Error        string                 `json:"error"`
	FallbackData *MockCompetitorDataset `json:"fallbackData"`
	Message      string                 `json:"message"`
}

var (
	domainKeywords = []string{"boat", "yacht", "marine"}
	trendKeywords  = []string{"trend", "growth", "market", "demand", "popular"}
	priceRe        = regexp.MustCompile(`(?i)₹[\d,]+|rs\.?\s*[\d,]+|inr\s*[\d,]+`)
)

// CompetitorSearchTool searches the web for competitor intelligence and
// extracts companies, price mentions, and trend notes from the results.
type CompetitorSearchTool struct {
	client SearchClient
	opts   Options
}

func NewCompetitorSearchTool(client SearchClient, opts Options) *CompetitorSearchTool {
	return &CompetitorSearchTool{client: client, opts: opts.withDefaults()}
}

func (t *CompetitorSearchTool) Name() string { return CompetitorSearchToolName }

func (t *CompetitorSearchTool) Description() string {
	return "Searches the web for current competitor information, pricing, and market analysis specific to the Indian market"
}

func (t *CompetitorSearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query for competitor and market analysis",
			},
		},
		"required": []string{"query"},
	}
}

func (t *CompetitorSearchTool) Execute(ctx context.Context, params map[string]interface{}) *Result {
	start := time.Now()

	query, _ := params["query"].(string)
	if strings.TrimSpace(query) == "" {
		return ErrorResult("query is required").WithMetadata(&Metadata{
			ExecutionTime: time.Since(start),
			Calculations:  []string{},
		})
	}

	enhancedQuery := query + " " + t.opts.SearchQualifier

	searchResp, err := t.client.Search(ctx, enhancedQuery)
	if err != nil {
		logger.WarnCF("search", "Web search failed, using fallback dataset", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return (&Result{
			Success: false,
			Data: &SearchFallback{
				Error:        fmt.Sprintf("web search failed: %v", err),
				FallbackData: MockCompetitorData(),
				Message:      "Using fallback competitor analysis based on industry knowledge",
			},
			Error: err.Error(),
		}).WithMetadata(&Metadata{
			ExecutionTime: time.Since(start),
			DataPoints:    0,
			Calculations:  []string{"fallback_analysis"},
		})
	}

	analysis := extractCompetitorInsights(searchResp.Results)

	sources := make([]string, 0, 5)
	for _, result := range searchResp.Results {
		if len(sources) >= 5 {
			break
		}
		if result.Link != "" {
			sources = append(sources, result.Link)
		}
	}

	report := &CompetitorSearchReport{
		OriginalQuery:      query,
		EnhancedQuery:      enhancedQuery,
		SearchResults:      firstN(searchResp.Results, 8),
		CompetitorAnalysis: analysis,
		KnowledgeGraph:     searchResp.KnowledgeGraph,
		RelatedSearches:    searchResp.RelatedSearches,
		TotalResults:       searchResp.TotalResults,
		Timestamp:          searchResp.Timestamp,
		Sources:            sources,
	}

	return (&Result{
		Success: true,
		Data:    report,
	}).WithMetadata(&Metadata{
		ExecutionTime: time.Since(start),
		DataPoints:    len(searchResp.Results),
		Calculations:  []string{"web_search", "competitor_extraction", "insight_analysis"},
		Sources:       sources,
	})
}

func extractCompetitorInsights(results []SearchResult) *CompetitorAnalysis {
	analysis := &CompetitorAnalysis{
		Competitors:  []Competitor{},
		PriceRanges:  []string{},
		MarketTrends: []MarketTrendNote{},
		AnalysisDate: time.Now().UTC().Format(time.RFC3339),
	}

	seenPrices := make(map[string]struct{})

	for _, result := range results {
		title := strings.ToLower(result.Title)
		snippet := strings.ToLower(result.Snippet)

		if containsAny(title, domainKeywords) || containsAny(snippet, domainKeywords) {
			for _, price := range priceRe.FindAllString(result.Snippet, -1) {
				if _, dup := seenPrices[price]; dup {
					continue
				}
				seenPrices[price] = struct{}{}
				analysis.PriceRanges = append(analysis.PriceRanges, price)
			}

			// Company name heuristic: leading words of the result title.
			words := strings.Fields(result.Title)
			name := strings.Join(firstN(words, 3), " ")

			analysis.Competitors = append(analysis.Competitors, Competitor{
				Name:        name,
				Source:      result.Link,
				Description: result.Snippet,
				Position:    result.Position,
			})
		}

		if containsAny(snippet, trendKeywords) {
			analysis.MarketTrends = append(analysis.MarketTrends, MarketTrendNote{
				Insight: result.Snippet,
				Source:  result.Link,
			})
		}
	}

	analysis.Competitors = firstN(analysis.Competitors, 5)
	analysis.PriceRanges = firstN(analysis.PriceRanges, 5)
	analysis.MarketTrends = firstN(analysis.MarketTrends, 3)
	return analysis
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
