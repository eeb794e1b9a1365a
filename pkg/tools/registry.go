package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vyaaparik/bizagent/pkg/logger"
)

// Registry maps tool names to implementations. Lookups by unknown name
// return a failed envelope rather than an error so a bad plan step cannot
// abort a chain.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Execute runs a tool by name, logging timing and outcome. A nil result
// from a misbehaving tool is converted to a failed envelope.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]interface{}) *Result {
	logger.InfoCF("tool", "Tool execution started", map[string]interface{}{
		"tool":   name,
		"params": sanitizeParams(params),
	})

	tool, ok := r.Get(name)
	if !ok {
		logger.ErrorCF("tool", "Tool not found", map[string]interface{}{
			"tool": name,
		})
		return ErrorResult(fmt.Sprintf("tool %q not found", name))
	}

	if params == nil {
		params = map[string]interface{}{}
	}

	start := time.Now()
	result := tool.Execute(ctx, params)
	duration := time.Since(start)
	if result == nil {
		logger.ErrorCF("tool", "Tool returned nil result", map[string]interface{}{
			"tool": name,
		})
		return ErrorResult(fmt.Sprintf("tool %q returned nil result", name))
	}

	if result.Success {
		logger.InfoCF("tool", "Tool execution completed", map[string]interface{}{
			"tool":        name,
			"duration_ms": duration.Milliseconds(),
			"data_points": result.DataPoints(),
		})
	} else {
		logger.WarnCF("tool", "Tool execution failed", map[string]interface{}{
			"tool":        name,
			"duration_ms": duration.Milliseconds(),
			"error":       result.Error,
		})
	}

	return result
}

// List returns registered tool names in stable order, so planner prompts
// are deterministic.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// GetSummaries returns "name - description" lines for planner prompting.
func (r *Registry) GetSummaries() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]string, 0, len(names))
	for _, name := range names {
		summaries = append(summaries, fmt.Sprintf("- `%s` - %s", name, r.tools[name].Description()))
	}
	return summaries
}

var sensitiveParamFragments = []string{"api_key", "apikey", "token", "secret", "password"}

func sanitizeParams(params map[string]interface{}) map[string]interface{} {
	if params == nil {
		return nil
	}
	sanitized := make(map[string]interface{}, len(params))
	for key, value := range params {
		if isSensitiveParamKey(key) {
			sanitized[key] = "<redacted>"
			continue
		}
		if s, ok := value.(string); ok {
			sanitized[key] = truncateLogString(s)
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func isSensitiveParamKey(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	for _, fragment := range sensitiveParamFragments {
		if strings.Contains(normalized, fragment) {
			return true
		}
	}
	return false
}

func truncateLogString(value string) string {
	const maxLen = 256
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "...(truncated)"
}
