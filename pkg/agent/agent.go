package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vyaaparik/bizagent/pkg/data"
	"github.com/vyaaparik/bizagent/pkg/logger"
	"github.com/vyaaparik/bizagent/pkg/providers"
	"github.com/vyaaparik/bizagent/pkg/tools"
)

// StepFunc receives progress markers as they occur (streaming variant).
type StepFunc func(AnalysisStep)

// Options tunes an agent instance. Zero values use defaults.
type Options struct {
	// MemoryLimit caps the conversation memory entry count.
	MemoryLimit int
	// AdequateStockSlots feeds the inventory pie-chart breakdown.
	AdequateStockSlots int
}

// Agent is the query orchestrator: plan, execute, synthesize, chart, in
// sequence, with progress tracking and conversation memory. Its boundary
// absorbs every error: ProcessQuery always returns a completed response,
// degrading quality rather than surfacing failures.
type Agent struct {
	planner     *Planner
	executor    *Executor
	synthesizer *Synthesizer
	charts      *ChartDeriver
	memory      *Memory
	onStep      StepFunc

	mu    sync.Mutex
	steps []AnalysisStep
}

func New(provider providers.TextProvider, registry *tools.Registry, opts Options) *Agent {
	return &Agent{
		planner:     NewPlanner(provider, registry),
		executor:    NewExecutor(registry),
		synthesizer: NewSynthesizer(provider),
		charts:      NewChartDeriver(opts.AdequateStockSlots),
		memory:      NewMemory(opts.MemoryLimit),
	}
}

// Memory exposes the conversation history for inspection.
func (a *Agent) Memory() *Memory {
	return a.memory
}

// ProcessQuery runs the full pipeline for one query. It never returns an
// error: any failure that escapes the inner fallbacks is converted into
// the fixed degraded response here.
func (a *Agent) ProcessQuery(ctx context.Context, query string, summary data.BusinessSummary) (response *Response) {
	logger.InfoCF("agent", "Starting agentic analysis", map[string]interface{}{
		"query": query,
	})

	a.mu.Lock()
	a.steps = nil
	a.mu.Unlock()

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCF("agent", "Pipeline panicked", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			response = a.degradedResponse(start)
		}
	}()

	if ctx.Err() != nil {
		return a.degradedResponse(start)
	}

	a.addStep("intent_analysis", "Analyzing query intent and creating execution plan...", 10, nil)
	plan := a.planner.CreatePlan(ctx, query, summary)

	if ctx.Err() != nil {
		return a.degradedResponse(start)
	}

	a.addStep("tool_execution", fmt.Sprintf("Executing %d analysis tools...", len(plan.Steps)), 30, nil)
	results := a.executor.ExecuteChain(ctx, plan, a.addStep)

	webSearchPerformed := plan.RequiresWebSearch
	var allSources []string
	for _, result := range results {
		if sources := result.Sources(); len(sources) > 0 {
			webSearchPerformed = true
			allSources = append(allSources, sources...)
		}
	}

	if ctx.Err() != nil {
		return a.degradedResponse(start)
	}

	a.addStep("synthesis", "Synthesizing insights from analysis results...", 70, nil)
	synthesis, degraded := a.synthesizer.Synthesize(ctx, results, query, summary)

	if ctx.Err() != nil {
		return a.degradedResponse(start)
	}

	a.addStep("visualization", "Generating dynamic visualizations...", 90, nil)
	charts := a.charts.Derive(results)

	a.addStep("completion", "Analysis complete with live data integration!", 100, synthesis)

	a.memory.Append(MemoryEntry{
		Query:     query,
		Intent:    plan.Intent,
		Result:    synthesis,
		Timestamp: time.Now(),
	})

	toolsUsed := make([]string, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		toolsUsed = append(toolsUsed, step.Tool)
	}

	dataPoints := 0
	for _, result := range results {
		dataPoints += result.DataPoints()
	}

	return &Response{
		Insights:        synthesis.Insights,
		Analysis:        synthesis.Analysis,
		Recommendations: synthesis.Recommendations,
		Charts:          charts,
		Sources:         dedupeSources(allSources),
		ExecutionSteps:  a.snapshotSteps(),
		Degraded:        degraded,
		Metadata: &ResponseMetadata{
			TotalExecutionTime: time.Since(start),
			ToolsUsed:          toolsUsed,
			DataPointsAnalyzed: dataPoints,
			WebSearchPerformed: webSearchPerformed,
		},
	}
}

// ProcessQueryStream runs the same pipeline but emits progress markers to
// onStep as they occur. It uses an independent agent instance so
// concurrent streaming queries never interleave step logs or memory.
func (a *Agent) ProcessQueryStream(ctx context.Context, query string, summary data.BusinessSummary, onStep StepFunc) *Response {
	streaming := &Agent{
		planner:     a.planner,
		executor:    a.executor,
		synthesizer: a.synthesizer,
		charts:      a.charts,
		memory:      NewMemory(a.memory.Limit()),
		onStep:      onStep,
	}
	return streaming.ProcessQuery(ctx, query, summary)
}

func (a *Agent) addStep(step, action string, progress int, result interface{}) {
	entry := AnalysisStep{
		Step:      step,
		Action:    action,
		Progress:  progress,
		Result:    result,
		Timestamp: time.Now(),
	}

	a.mu.Lock()
	a.steps = append(a.steps, entry)
	a.mu.Unlock()

	if a.onStep != nil {
		a.onStep(entry)
	}
}

func (a *Agent) snapshotSteps() []AnalysisStep {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AnalysisStep, len(a.steps))
	copy(out, a.steps)
	return out
}

// degradedResponse is the fixed envelope returned when the pipeline
// cannot complete normally.
func (a *Agent) degradedResponse(start time.Time) *Response {
	return &Response{
		Insights: "Analysis encountered an issue during execution with web search integration.",
		Analysis: "A technical challenge occurred while processing your request with live web search capabilities. " +
			"The analysis system attempted to search the web for competitor data and market insights but faced connectivity issues. " +
			"Please try rephrasing your question or check if all required data sources are available.",
		Recommendations: []string{
			"Verify internet connectivity for web search functionality",
			"Try asking a more specific question about competitors",
			"Check if competitor search terms are relevant to your industry",
		},
		Charts:         []Chart{},
		Sources:        []string{},
		ExecutionSteps: a.snapshotSteps(),
		Degraded:       true,
		Metadata: &ResponseMetadata{
			TotalExecutionTime: time.Since(start),
			ToolsUsed:          []string{},
			DataPointsAnalyzed: 0,
			WebSearchPerformed: false,
		},
	}
}

// dedupeSources removes duplicate URLs preserving first-seen order.
func dedupeSources(sources []string) []string {
	seen := make(map[string]struct{}, len(sources))
	out := make([]string, 0, len(sources))
	for _, source := range sources {
		if _, dup := seen[source]; dup {
			continue
		}
		seen[source] = struct{}{}
		out = append(out, source)
	}
	return out
}
