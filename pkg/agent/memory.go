package agent

import (
	"sync"
	"time"
)

// MemoryEntry records one answered query.
type MemoryEntry struct {
	Query     string     `json:"query"`
	Intent    string     `json:"intent"`
	Result    *Synthesis `json:"result"`
	Timestamp time.Time  `json:"timestamp"`
}

// Preferences are lightweight user hints carried across queries.
type Preferences struct {
	PreferredChartTypes []string `json:"preferredChartTypes"`
	AnalysisDepth       string   `json:"analysisDepth"`
}

const defaultMemoryLimit = 50

// Memory is the per-agent conversation history. Appends are synchronized
// so concurrent queries against one agent instance cannot lose updates,
// and the entry list is capped to keep long-lived agents bounded.
type Memory struct {
	mu      sync.Mutex
	entries []MemoryEntry
	prefs   Preferences
	limit   int
}

func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = defaultMemoryLimit
	}
	return &Memory{
		prefs: Preferences{
			PreferredChartTypes: []string{},
			AnalysisDepth:       "detailed",
		},
		limit: limit,
	}
}

func (m *Memory) Append(entry MemoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	if len(m.entries) > m.limit {
		m.entries = m.entries[len(m.entries)-m.limit:]
	}
}

// Recent returns up to n entries, newest last.
func (m *Memory) Recent(n int) []MemoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 || n > len(m.entries) {
		n = len(m.entries)
	}
	out := make([]MemoryEntry, n)
	copy(out, m.entries[len(m.entries)-n:])
	return out
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Preferences() Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs
}

func (m *Memory) Limit() int {
	return m.limit
}
