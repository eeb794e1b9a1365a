package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/vyaaparik/bizagent/pkg/data"
	"github.com/vyaaparik/bizagent/pkg/logger"
	"github.com/vyaaparik/bizagent/pkg/providers"
	"github.com/vyaaparik/bizagent/pkg/tools"
)

// PlanParseError reports model plan output that failed strict decoding or
// schema validation. It always routes the planner onto the fallback path.
type PlanParseError struct {
	Raw string
	Err error
}

func (e *PlanParseError) Error() string {
	return fmt.Sprintf("parse action plan: %v", e.Err)
}

func (e *PlanParseError) Unwrap() error { return e.Err }

// planSchema is the strict shape the model's plan reply must satisfy.
const planSchema = `{
	"type": "object",
	"required": ["intent", "complexity", "requiresWebSearch", "steps"],
	"properties": {
		"intent": {"type": "string", "minLength": 1},
		"complexity": {"type": "string", "enum": ["simple", "moderate", "complex"]},
		"requiresWebSearch": {"type": "boolean"},
		"steps": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "tool", "description"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"tool": {"type": "string", "minLength": 1},
					"description": {"type": "string"},
					"params": {"type": "object"},
					"dependsOn": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

// Planner turns a query plus business context into an ActionPlan. The
// primary path asks the text model for a structured plan; any model or
// parse failure falls back to a deterministic keyword rule table, so
// CreatePlan never fails and never returns an empty step list.
type Planner struct {
	provider providers.TextProvider
	registry *tools.Registry
	genOpts  providers.GenerateOptions

	// searchKeywords drive competitor search-term extraction on the
	// fallback path; productKeywords drive product-name extraction. Both
	// are tunable so the vocabulary is not baked into the logic.
	searchKeywords  []string
	productKeywords []string
}

func NewPlanner(provider providers.TextProvider, registry *tools.Registry) *Planner {
	return &Planner{
		provider: provider,
		registry: registry,
		genOpts: providers.GenerateOptions{
			MaxTokens:   1024,
			Temperature: 0.2,
			JSONMode:    true,
		},
		searchKeywords:  []string{"boat", "yacht", "marine", "water sports", "speedboat", "sailing"},
		productKeywords: []string{"yacht", "boat", "speedboat", "sailboat", "kayak", "canoe"},
	}
}

// CreatePlan builds the execution plan for a query. The competitor
// override applies regardless of which path produced the plan, and it is
// idempotent: an already-planned search step is never duplicated.
func (p *Planner) CreatePlan(ctx context.Context, query string, summary data.BusinessSummary) *ActionPlan {
	plan, err := p.planWithModel(ctx, query, summary)
	if err != nil {
		logger.WarnCF("planner", "Model planning failed, using fallback rules", map[string]interface{}{
			"error": err.Error(),
		})
		plan = p.fallbackPlan(query)
	}

	p.ensureCompetitorSearch(plan, query)
	return plan
}

func (p *Planner) planWithModel(ctx context.Context, query string, summary data.BusinessSummary) (*ActionPlan, error) {
	contextJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal business context: %w", err)
	}

	prompt := fmt.Sprintf(`You are a business intelligence planning agent with web search capabilities.
Analyze the query and create an execution plan that may include web searches for competitive intelligence.

Business Context: %s
User Query: %q

Available Tools:
%s

Based on the query, determine:
1. The primary intent (sales_analysis, inventory_management, sentiment_analysis, competitor_analysis, market_research)
2. Complexity level (simple, moderate, complex)
3. Whether web search is needed (true if query mentions competitors, market research, pricing comparison, or industry analysis)
4. Which tools to use and in what order

Respond with ONLY a JSON object:
{
  "intent": "primary_intent",
  "complexity": "simple|moderate|complex",
  "requiresWebSearch": boolean,
  "steps": [
    {
      "id": "step1",
      "tool": "toolName",
      "description": "What this step does",
      "params": {"key": "value"}
    }
  ]
}`, contextJSON, query, strings.Join(p.registry.GetSummaries(), "\n"))

	raw, err := p.provider.Generate(ctx, prompt, p.genOpts)
	if err != nil {
		return nil, fmt.Errorf("plan generation: %w", err)
	}

	plan, err := decodePlan(raw)
	if err != nil {
		return nil, err
	}

	// The model sometimes under-reports web-search need; keyword presence
	// in the query wins.
	lower := strings.ToLower(query)
	if strings.Contains(lower, "competitor") ||
		strings.Contains(lower, "competition") ||
		strings.Contains(lower, "market research") ||
		strings.Contains(lower, "pricing") ||
		strings.Contains(lower, "industry analysis") {
		plan.RequiresWebSearch = true
	}

	for _, step := range plan.Steps {
		if !p.registry.Has(step.Tool) {
			logger.WarnCF("planner", "Model planned unknown tool", map[string]interface{}{
				"tool": step.Tool,
				"step": step.ID,
			})
		}
	}

	return plan, nil
}

func decodePlan(raw string) (*ActionPlan, error) {
	cleaned := stripCodeFences(raw)

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(planSchema),
		gojsonschema.NewStringLoader(cleaned),
	)
	if err != nil {
		return nil, &PlanParseError{Raw: cleaned, Err: err}
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, issue := range result.Errors() {
			issues = append(issues, issue.String())
		}
		return nil, &PlanParseError{Raw: cleaned, Err: fmt.Errorf("schema violations: %s", strings.Join(issues, "; "))}
	}

	var plan ActionPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, &PlanParseError{Raw: cleaned, Err: err}
	}
	return &plan, nil
}

// stripCodeFences removes markdown code-fence markup the model may wrap
// around its JSON reply.
func stripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

func (p *Planner) ensureCompetitorSearch(plan *ActionPlan, query string) {
	lower := strings.ToLower(query)
	forced := strings.Contains(lower, "competitor") ||
		(strings.Contains(lower, "other") && strings.Contains(lower, "companies"))
	if !forced {
		return
	}

	plan.RequiresWebSearch = true
	for _, step := range plan.Steps {
		if step.Tool == tools.CompetitorSearchToolName {
			return
		}
	}

	logger.InfoCF("planner", "Forcing web search for competitor query", map[string]interface{}{
		"query": query,
	})
	plan.Steps = append([]PlanStep{{
		ID:          "forced_web_search",
		Tool:        tools.CompetitorSearchToolName,
		Description: "Forced web search for competitor analysis",
		Params:      map[string]interface{}{"query": query},
	}}, plan.Steps...)
}

// fallbackPlan is the deterministic rule table used when the model is
// unavailable or returned garbage. Rules apply in precedence order.
func (p *Planner) fallbackPlan(query string) *ActionPlan {
	lower := strings.ToLower(query)

	if strings.Contains(lower, "competitor") ||
		strings.Contains(lower, "competition") ||
		(strings.Contains(lower, "other") && (strings.Contains(lower, "companies") || strings.Contains(lower, "brands"))) ||
		strings.Contains(lower, "market") ||
		strings.Contains(lower, "pricing") {
		return &ActionPlan{
			Intent:            IntentCompetitorAnalysis,
			Complexity:        ComplexityComplex,
			RequiresWebSearch: true,
			Steps: []PlanStep{{
				ID:          "web_search",
				Tool:        tools.CompetitorSearchToolName,
				Description: "Search web for competitor information",
				Params:      map[string]interface{}{"query": p.competitorSearchTerms(query)},
			}},
		}
	}

	if strings.Contains(lower, "trend") || strings.Contains(lower, "sales") || strings.Contains(lower, "revenue") {
		return &ActionPlan{
			Intent:            IntentSalesAnalysis,
			Complexity:        ComplexityModerate,
			RequiresWebSearch: false,
			Steps: []PlanStep{{
				ID:          "market_trends",
				Tool:        tools.MarketTrendsToolName,
				Description: "Analyze sales trends and market performance",
				Params:      map[string]interface{}{"productCategory": "all"},
			}},
		}
	}

	if strings.Contains(lower, "inventory") || strings.Contains(lower, "stock") || strings.Contains(lower, "restock") {
		return &ActionPlan{
			Intent:            IntentInventoryManagement,
			Complexity:        ComplexityModerate,
			RequiresWebSearch: false,
			Steps: []PlanStep{{
				ID:          "inventory_analysis",
				Tool:        tools.LowStockToolName,
				Description: "Analyze inventory levels and stock requirements",
			}},
		}
	}

	if strings.Contains(lower, "product") && (strings.Contains(lower, "analyze") || strings.Contains(lower, "performance")) {
		return &ActionPlan{
			Intent:            IntentProductAnalysis,
			Complexity:        ComplexityModerate,
			RequiresWebSearch: false,
			Steps: []PlanStep{{
				ID:          "product_analysis",
				Tool:        tools.ProductAnalysisToolName,
				Description: "Detailed product performance analysis",
				Params:      map[string]interface{}{"productName": p.extractProductName(query)},
			}},
		}
	}

	return &ActionPlan{
		Intent:            IntentComprehensive,
		Complexity:        ComplexityComplex,
		RequiresWebSearch: true,
		Steps: []PlanStep{
			{
				ID:          "web_research",
				Tool:        tools.CompetitorSearchToolName,
				Description: "Research market and competitor landscape",
				Params:      map[string]interface{}{"query": "business intelligence market research India"},
			},
			{
				ID:          "inventory_check",
				Tool:        tools.LowStockToolName,
				Description: "Comprehensive inventory analysis",
			},
			{
				ID:          "market_analysis",
				Tool:        tools.MarketTrendsToolName,
				Description: "Market trend analysis",
				Params:      map[string]interface{}{"productCategory": "marine"},
			},
		},
	}
}

func (p *Planner) competitorSearchTerms(query string) string {
	lower := strings.ToLower(query)
	for _, keyword := range p.searchKeywords {
		if strings.Contains(lower, keyword) {
			return fmt.Sprintf("%s companies India competitors market analysis", keyword)
		}
	}
	return "marine boat yacht competitors India market research"
}

func (p *Planner) extractProductName(query string) string {
	words := strings.Fields(strings.ToLower(query))
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}
	for _, keyword := range p.productKeywords {
		if _, ok := wordSet[keyword]; ok {
			return keyword
		}
	}
	return p.productKeywords[0]
}
