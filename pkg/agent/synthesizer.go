package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vyaaparik/bizagent/pkg/data"
	"github.com/vyaaparik/bizagent/pkg/logger"
	"github.com/vyaaparik/bizagent/pkg/providers"
	"github.com/vyaaparik/bizagent/pkg/tools"
)

// SynthesisParseError reports model synthesis output that failed strict
// decoding. It always routes onto the degraded fallback path.
type SynthesisParseError struct {
	Raw string
	Err error
}

func (e *SynthesisParseError) Error() string {
	return fmt.Sprintf("parse synthesis: %v", e.Err)
}

func (e *SynthesisParseError) Unwrap() error { return e.Err }

// Synthesizer turns tool outputs into a narrative answer via the text
// model. Only successful tool data reaches the prompt. On any model or
// parse failure it substitutes a deterministic templated synthesis and
// reports the response as degraded.
type Synthesizer struct {
	provider providers.TextProvider
	genOpts  providers.GenerateOptions
}

func NewSynthesizer(provider providers.TextProvider) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		genOpts: providers.GenerateOptions{
			MaxTokens:   2048,
			Temperature: 0.4,
			JSONMode:    true,
		},
	}
}

// Synthesize builds the narrative for a query. The second return value is
// true when the degraded fallback produced the result.
func (s *Synthesizer) Synthesize(ctx context.Context, results map[string]*tools.Result, query string, summary data.BusinessSummary) (*Synthesis, bool) {
	webPayload := extractWebSearchPayload(results)

	synthesis, err := s.synthesizeWithModel(ctx, results, query, summary, webPayload)
	if err != nil {
		logger.WarnCF("synthesizer", "Model synthesis failed, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackSynthesis(results, query, webPayload), true
	}
	return synthesis, false
}

func (s *Synthesizer) synthesizeWithModel(ctx context.Context, results map[string]*tools.Result, query string, summary data.BusinessSummary, webPayload interface{}) (*Synthesis, error) {
	successfulData := make(map[string]interface{})
	for id, result := range results {
		if result.Success {
			successfulData[id] = result.Data
		}
	}

	toolJSON, err := json.MarshalIndent(successfulData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool results: %w", err)
	}
	webJSON, err := json.MarshalIndent(webPayload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal web search results: %w", err)
	}
	contextJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal business context: %w", err)
	}

	prompt := fmt.Sprintf(`You are Vyaaparik AI, an expert business intelligence agent with access to live web search data.
You have executed multiple analytical tools including web searches for competitor intelligence.

Original Query: %q

Tool Execution Results:
%s

Web Search Results (if available):
%s

Business Context:
%s

Based on your comprehensive analysis including live web search data, provide a response in this EXACT JSON format:
{
  "insights": "One powerful sentence summarizing the most critical business insight discovered through your multi-tool analysis including web research",
  "analysis": "Detailed markdown analysis explaining HOW you discovered insights through data analysis and web research. Reference specific competitor information, pricing data, and market intelligence gathered from web searches. Use specific numbers and percentages from both internal data and web research.",
  "recommendations": [
    "Specific, actionable recommendation based on competitor analysis and market research",
    "Another data-driven recommendation incorporating web search insights",
    "Third recommendation combining internal data with market intelligence",
    "Fourth strategic recommendation based on competitive landscape analysis",
    "Fifth growth-oriented recommendation using market research findings"
  ]
}

Critical guidelines:
- If web search was successful, prominently feature competitor insights, market trends, and pricing intelligence
- Reference specific competitor names, pricing ranges, and market data from web searches
- Combine internal business data with external market intelligence for comprehensive insights
- Use Indian Rupee (₹) formatting and consider Indian market dynamics
- If web search failed, acknowledge this but still provide value using internal data analysis`,
		query, toolJSON, webJSON, contextJSON)

	raw, err := s.provider.Generate(ctx, prompt, s.genOpts)
	if err != nil {
		return nil, fmt.Errorf("synthesis generation: %w", err)
	}

	cleaned := stripCodeFences(raw)
	var synthesis Synthesis
	if err := json.Unmarshal([]byte(cleaned), &synthesis); err != nil {
		return nil, &SynthesisParseError{Raw: cleaned, Err: err}
	}
	if strings.TrimSpace(synthesis.Insights) == "" || strings.TrimSpace(synthesis.Analysis) == "" {
		return nil, &SynthesisParseError{Raw: cleaned, Err: fmt.Errorf("empty insights or analysis")}
	}
	return &synthesis, nil
}

// extractWebSearchPayload returns the data of the first successful step
// whose ID mentions search or competitor. Step IDs are visited in sorted
// order so the extraction is deterministic.
func extractWebSearchPayload(results map[string]*tools.Result) interface{} {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if strings.Contains(id, "search") || strings.Contains(id, "competitor") {
			if result := results[id]; result.Success {
				return result.Data
			}
			return nil
		}
	}
	return nil
}

// fallbackSynthesis is the deterministic degraded-mode narrative: tool
// and data-point counts, an optional competitor section when live search
// data is present, and a fixed set of five recommendations.
func fallbackSynthesis(results map[string]*tools.Result, query string, webPayload interface{}) *Synthesis {
	successCount := 0
	dataPoints := 0
	for _, result := range results {
		if result.Success {
			successCount++
			dataPoints += result.DataPoints()
		}
	}
	webSearchPerformed := webPayload != nil

	toolIDs := make([]string, 0, len(results))
	for id := range results {
		toolIDs = append(toolIDs, id)
	}
	sort.Strings(toolIDs)

	competitorSection := ""
	if report, ok := webPayload.(*tools.CompetitorSearchReport); ok &&
		report.CompetitorAnalysis != nil && len(report.CompetitorAnalysis.Competitors) > 0 {
		competitors := report.CompetitorAnalysis.Competitors
		lines := make([]string, 0, len(competitors))
		for _, c := range competitors {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", c.Name, c.Description))
		}
		competitorSection = fmt.Sprintf(
			"\n\n### Competitive Intelligence\nLive web search identified %d key competitors in the Indian marine industry:\n%s",
			len(competitors), strings.Join(lines, "\n"))
	}

	searchNote := ""
	searchStatus := "Limited"
	if webSearchPerformed {
		searchNote = " including live web search"
		searchStatus = "Active"
	}
	researchNote := ""
	if webSearchPerformed {
		researchNote = " live market research and"
	}

	return &Synthesis{
		Insights: fmt.Sprintf(
			"Executed comprehensive business analysis using %d analytical tools%s, processing %d data points to uncover actionable insights.",
			successCount, searchNote, dataPoints),
		Analysis: fmt.Sprintf(
			"## Analysis Report\n\nA multi-dimensional analysis processed your query: %q\n\n### Analysis Execution\n- **Tools Deployed**: %s\n- **Data Points Processed**: %d\n- **Web Search Integration**: %s\n- **Analysis Depth**: Multi-tool cross-correlation%s\n\n### Key Findings\nThrough%s systematic data processing, several critical patterns in your business data require strategic attention for competitive positioning in the Indian market.",
			query, strings.Join(toolIDs, ", "), dataPoints, searchStatus, competitorSection, researchNote),
		Recommendations: []string{
			"Implement real-time competitive monitoring to track market changes and competitor pricing strategies",
			"Leverage high customer satisfaction scores in targeted marketing campaigns to differentiate from competitors",
			"Optimize inventory management for high-demand products to prevent stock-outs during peak sales periods",
			"Develop region-specific marketing strategies based on Indian market preferences and cultural factors",
			"Establish strategic partnerships with local suppliers to improve cost competitiveness against regional players",
		},
	}
}
