package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vyaaparik/bizagent/pkg/tools"
)

type panicTool struct{}

func (t *panicTool) Name() string        { return "panics" }
func (t *panicTool) Description() string { return "always panics" }
func (t *panicTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *panicTool) Execute(ctx context.Context, params map[string]interface{}) *tools.Result {
	panic("boom")
}

type recordingTool struct {
	name string
	mu   sync.Mutex
	runs []time.Time
}

func (t *recordingTool) Name() string        { return t.name }
func (t *recordingTool) Description() string { return "records invocations" }
func (t *recordingTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *recordingTool) Execute(ctx context.Context, params map[string]interface{}) *tools.Result {
	t.mu.Lock()
	t.runs = append(t.runs, time.Now())
	t.mu.Unlock()
	return (&tools.Result{Success: true, Data: t.name}).WithMetadata(&tools.Metadata{DataPoints: 1})
}

func (t *recordingTool) lastRun() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs[len(t.runs)-1]
}

func TestExecutor_TotalExecution(t *testing.T) {
	registry := tools.NewRegistry()
	registry.Register(&recordingTool{name: "ok"})
	registry.Register(&panicTool{})

	executor := NewExecutor(registry)
	plan := &ActionPlan{
		Intent: IntentComprehensive,
		Steps: []PlanStep{
			{ID: "s1", Tool: "ok"},
			{ID: "s2", Tool: "panics"},
			{ID: "s3", Tool: "nonexistent"},
		},
	}

	results := executor.ExecuteChain(context.Background(), plan, nil)
	if len(results) != 2 {
		t.Fatalf("expected 2 entries (unknown tool skipped), got %d", len(results))
	}
	if !results["s1"].Success {
		t.Fatalf("expected s1 success")
	}
	if results["s2"].Success {
		t.Fatalf("expected panicking step to fail")
	}
	if results["s2"].Error == "" {
		t.Fatalf("expected diagnostic for panicking step")
	}
	if _, exists := results["s3"]; exists {
		t.Fatalf("unknown tool must not produce an entry")
	}
}

func TestExecutor_HonorsDependencies(t *testing.T) {
	first := &recordingTool{name: "first"}
	second := &recordingTool{name: "second"}
	registry := tools.NewRegistry()
	registry.Register(first)
	registry.Register(second)

	executor := NewExecutor(registry)
	plan := &ActionPlan{
		Steps: []PlanStep{
			{ID: "b", Tool: "second", DependsOn: []string{"a"}},
			{ID: "a", Tool: "first"},
		},
	}

	results := executor.ExecuteChain(context.Background(), plan, nil)
	if len(results) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(results))
	}
	if second.lastRun().Before(first.lastRun()) {
		t.Fatalf("dependent step ran before its dependency")
	}
}

func TestExecutor_CyclicDependenciesStillComplete(t *testing.T) {
	tool := &recordingTool{name: "tool"}
	registry := tools.NewRegistry()
	registry.Register(tool)

	executor := NewExecutor(registry)
	plan := &ActionPlan{
		Steps: []PlanStep{
			{ID: "x", Tool: "tool", DependsOn: []string{"y"}},
			{ID: "y", Tool: "tool", DependsOn: []string{"x"}},
		},
	}

	results := executor.ExecuteChain(context.Background(), plan, nil)
	if len(results) != 2 {
		t.Fatalf("cycle must not deadlock; expected 2 entries, got %d", len(results))
	}
}

func TestExecutor_ProgressEvents(t *testing.T) {
	registry := tools.NewRegistry()
	registry.Register(&recordingTool{name: "ok"})

	executor := NewExecutor(registry)
	plan := &ActionPlan{Steps: []PlanStep{{ID: "s1", Tool: "ok"}}}

	var mu sync.Mutex
	var events []string
	executor.ExecuteChain(context.Background(), plan, func(step, action string, progress int, result interface{}) {
		mu.Lock()
		events = append(events, step)
		mu.Unlock()
	})

	if len(events) != 2 || events[0] != "tool_s1" || events[1] != "complete_s1" {
		t.Fatalf("expected before/after events, got %v", events)
	}
}
