package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vyaaparik/bizagent/pkg/data"
	"github.com/vyaaparik/bizagent/pkg/tools"
)

func TestSynthesizer_ModelPath(t *testing.T) {
	provider := &stubProvider{response: "```json\n" + `{
		"insights": "Revenue is concentrated in speedboats.",
		"analysis": "Detailed analysis here.",
		"recommendations": ["one", "two", "three", "four", "five"]
	}` + "\n```"}
	synthesizer := NewSynthesizer(provider)

	results := map[string]*tools.Result{
		"market_trends": {Success: true, Data: "trend data"},
	}
	synthesis, degraded := synthesizer.Synthesize(context.Background(), results, "how are sales", data.BusinessSummary{})
	if degraded {
		t.Fatalf("model path must not be degraded")
	}
	if synthesis.Insights == "" || len(synthesis.Recommendations) != 5 {
		t.Fatalf("unexpected synthesis: %+v", synthesis)
	}
}

func TestSynthesizer_FallbackOnModelFailure(t *testing.T) {
	synthesizer := NewSynthesizer(&stubProvider{err: errors.New("timeout")})

	results := map[string]*tools.Result{
		"inventory_analysis": (&tools.Result{Success: true, Data: "x"}).
			WithMetadata(&tools.Metadata{DataPoints: 7}),
		"broken_step": {Success: false, Data: "diag", Error: "nope"},
	}
	synthesis, degraded := synthesizer.Synthesize(context.Background(), results, "restock?", data.BusinessSummary{})
	if !degraded {
		t.Fatalf("fallback must be flagged degraded")
	}
	if synthesis.Insights == "" || synthesis.Analysis == "" {
		t.Fatalf("fallback must produce non-empty narrative")
	}
	if len(synthesis.Recommendations) != 5 {
		t.Fatalf("fallback must return exactly 5 recommendations, got %d", len(synthesis.Recommendations))
	}
	if !strings.Contains(synthesis.Insights, "1 analytical tools") {
		t.Fatalf("expected success count in insights, got %q", synthesis.Insights)
	}
	if !strings.Contains(synthesis.Insights, "7 data points") {
		t.Fatalf("expected data point count in insights, got %q", synthesis.Insights)
	}
}

func TestSynthesizer_FallbackUnparsableReply(t *testing.T) {
	synthesizer := NewSynthesizer(&stubProvider{response: "sorry, cannot do JSON today"})

	synthesis, degraded := synthesizer.Synthesize(context.Background(), map[string]*tools.Result{}, "q", data.BusinessSummary{})
	if !degraded || synthesis == nil {
		t.Fatalf("unparsable reply must route to fallback")
	}
}

func TestSynthesizer_FallbackCompetitorSection(t *testing.T) {
	synthesizer := NewSynthesizer(&stubProvider{err: errors.New("down")})

	report := &tools.CompetitorSearchReport{
		CompetitorAnalysis: &tools.CompetitorAnalysis{
			Competitors: []tools.Competitor{
				{Name: "Coastal Marine", Description: "wide range"},
				{Name: "AquaSport", Description: "premium"},
			},
		},
	}
	results := map[string]*tools.Result{
		"web_search": {Success: true, Data: report},
	}

	synthesis, _ := synthesizer.Synthesize(context.Background(), results, "competitors?", data.BusinessSummary{})
	if !strings.Contains(synthesis.Analysis, "Competitive Intelligence") {
		t.Fatalf("expected competitor section in fallback analysis")
	}
	if !strings.Contains(synthesis.Analysis, "Coastal Marine") {
		t.Fatalf("expected competitor names in fallback analysis")
	}
	if !strings.Contains(synthesis.Insights, "including live web search") {
		t.Fatalf("expected web-search note in insights, got %q", synthesis.Insights)
	}
}

func TestExtractWebSearchPayload(t *testing.T) {
	report := &tools.CompetitorSearchReport{OriginalQuery: "q"}
	results := map[string]*tools.Result{
		"market_trends": {Success: true, Data: "trends"},
		"web_search":    {Success: true, Data: report},
	}
	payload := extractWebSearchPayload(results)
	if payload != report {
		t.Fatalf("expected search payload extracted, got %v", payload)
	}

	// A failed search step yields nil, not the failure diagnostic.
	failed := map[string]*tools.Result{
		"web_search": {Success: false, Data: "diag"},
	}
	if extractWebSearchPayload(failed) != nil {
		t.Fatalf("failed search must not leak its payload")
	}

	if extractWebSearchPayload(map[string]*tools.Result{"other": {Success: true}}) != nil {
		t.Fatalf("no search step means nil payload")
	}
}
