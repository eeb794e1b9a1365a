package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/vyaaparik/bizagent/pkg/logger"
	"github.com/vyaaparik/bizagent/pkg/tools"
)

// ProgressFunc receives a progress marker as the chain advances.
type ProgressFunc func(step, action string, progress int, result interface{})

// Executor runs a plan's steps against the tool registry. Execution is
// total: every runnable step produces exactly one entry keyed by step ID,
// with panics and tool failures converted into failed envelopes. Steps
// whose tool is unregistered are skipped with a warning and produce no
// entry. Dependency order is honored by batching: steps whose DependsOn
// are all satisfied run together, independents concurrently.
type Executor struct {
	registry *tools.Registry
}

func NewExecutor(registry *tools.Registry) *Executor {
	return &Executor{registry: registry}
}

func (e *Executor) ExecuteChain(ctx context.Context, plan *ActionPlan, progress ProgressFunc) map[string]*tools.Result {
	results := make(map[string]*tools.Result, len(plan.Steps))
	if progress == nil {
		progress = func(string, string, int, interface{}) {}
	}

	planned := make(map[string]struct{}, len(plan.Steps))
	for _, step := range plan.Steps {
		planned[step.ID] = struct{}{}
	}

	var mu sync.Mutex
	completed := make(map[string]struct{}, len(plan.Steps))
	pending := make([]PlanStep, len(plan.Steps))
	copy(pending, plan.Steps)

	for len(pending) > 0 {
		batch, rest := nextBatch(pending, completed, planned)
		if len(batch) == 0 {
			// Cyclic or self-referential dependencies; run the remainder
			// in declared order rather than deadlocking.
			logger.WarnCF("executor", "Unresolvable step dependencies, falling back to declared order", map[string]interface{}{
				"remaining": len(rest),
			})
			batch, rest = rest, nil
		}
		pending = rest

		var wg sync.WaitGroup
		for _, step := range batch {
			if !e.registry.Has(step.Tool) {
				logger.WarnCF("executor", "Skipping unknown tool", map[string]interface{}{
					"tool": step.Tool,
					"step": step.ID,
				})
				mu.Lock()
				completed[step.ID] = struct{}{}
				mu.Unlock()
				continue
			}

			wg.Add(1)
			go func(step PlanStep) {
				defer wg.Done()

				mu.Lock()
				done := len(results)
				mu.Unlock()
				progress("tool_"+step.ID, fmt.Sprintf("Executing %s...", step.Tool), clampProgress(30+done*10), nil)

				result := e.runStep(ctx, step)

				mu.Lock()
				results[step.ID] = result
				completed[step.ID] = struct{}{}
				done = len(results)
				mu.Unlock()

				progress("complete_"+step.ID, fmt.Sprintf("%s completed", step.Tool), clampProgress(40+done*10), map[string]interface{}{
					"success":    result.Success,
					"dataPoints": result.DataPoints(),
				})
			}(step)
		}
		wg.Wait()
	}

	return results
}

// runStep invokes one tool, converting a panic into a failed envelope so
// a misbehaving tool cannot abort the chain.
func (e *Executor) runStep(ctx context.Context, step PlanStep) (result *tools.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCF("executor", "Tool panicked", map[string]interface{}{
				"tool":  step.Tool,
				"step":  step.ID,
				"panic": fmt.Sprintf("%v", r),
			})
			result = tools.ErrorResult(fmt.Sprintf("error executing %s: %v", step.Tool, r))
		}
	}()

	return e.registry.Execute(ctx, step.Tool, step.Params)
}

// nextBatch splits pending into steps whose dependencies are satisfied
// and the rest. Dependencies on IDs outside the plan count as satisfied.
func nextBatch(pending []PlanStep, completed, planned map[string]struct{}) (batch, rest []PlanStep) {
	for _, step := range pending {
		if depsSatisfied(step, completed, planned) {
			batch = append(batch, step)
		} else {
			rest = append(rest, step)
		}
	}
	return batch, rest
}

func depsSatisfied(step PlanStep, completed, planned map[string]struct{}) bool {
	for _, dep := range step.DependsOn {
		if _, inPlan := planned[dep]; !inPlan {
			continue
		}
		if dep == step.ID {
			continue
		}
		if _, done := completed[dep]; !done {
			return false
		}
	}
	return true
}

func clampProgress(p int) int {
	if p > 65 {
		return 65
	}
	return p
}
