package agent

import "time"

// Intent categories a plan can carry. The planner always emits one of
// these; the model path is normalized to the closest match.
const (
	IntentSalesAnalysis       = "sales_analysis"
	IntentInventoryManagement = "inventory_management"
	IntentSentimentAnalysis   = "sentiment_analysis"
	IntentCompetitorAnalysis  = "competitor_analysis"
	IntentMarketResearch      = "market_research"
	IntentProductAnalysis     = "product_analysis"
	IntentComprehensive       = "comprehensive_analysis"
)

// Complexity ratings. Informational only: execution never gates on them.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// PlanStep is one tool invocation within a plan. DependsOn lists step IDs
// that must complete before this step runs.
type PlanStep struct {
	ID          string                 `json:"id"`
	Tool        string                 `json:"tool"`
	Description string                 `json:"description"`
	Params      map[string]interface{} `json:"params,omitempty"`
	DependsOn   []string               `json:"dependsOn,omitempty"`
}

// ActionPlan is the planner's output: an intent classification plus an
// ordered list of tool invocations. Steps is never empty.
type ActionPlan struct {
	Intent            string     `json:"intent"`
	Complexity        string     `json:"complexity"`
	RequiresWebSearch bool       `json:"requiresWebSearch"`
	Steps             []PlanStep `json:"steps"`
}

// AnalysisStep is one timestamped progress marker emitted while a query
// moves through the pipeline.
type AnalysisStep struct {
	Step      string      `json:"step"`
	Action    string      `json:"action"`
	Progress  int         `json:"progress"`
	Result    interface{} `json:"result,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ChartPoint is one datum in a chart descriptor. Note carries sentinels
// like "unranked" when the source data had no usable value.
type ChartPoint struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Description string  `json:"description,omitempty"`
	Orders      int     `json:"orders,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	Note        string  `json:"note,omitempty"`
}

// Chart is a renderer-agnostic chart descriptor.
type Chart struct {
	Type  string       `json:"type"`
	Title string       `json:"title"`
	Data  []ChartPoint `json:"data"`
}

// Synthesis is the narrative portion of a response.
type Synthesis struct {
	Insights        string   `json:"insights"`
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
}

// ResponseMetadata summarizes how a query was processed.
type ResponseMetadata struct {
	TotalExecutionTime time.Duration `json:"totalExecutionTime"`
	ToolsUsed          []string      `json:"toolsUsed"`
	DataPointsAnalyzed int           `json:"dataPointsAnalyzed"`
	WebSearchPerformed bool          `json:"webSearchPerformed"`
}

// Response is the envelope every query produces. Degraded is true when
// any fallback path replaced a model-generated synthesis, so callers can
// flag reduced answer quality.
type Response struct {
	Insights        string            `json:"insights"`
	Analysis        string            `json:"analysis"`
	Recommendations []string          `json:"recommendations"`
	Charts          []Chart           `json:"charts"`
	Sources         []string          `json:"sources"`
	ExecutionSteps  []AnalysisStep    `json:"executionSteps,omitempty"`
	Degraded        bool              `json:"degraded,omitempty"`
	Metadata        *ResponseMetadata `json:"metadata,omitempty"`
}
