package tools

import (
	"context"
	"time"
)

// Tool is a named analytical function with a uniform result envelope.
// Implementations must never panic or return errors past Execute: every
// failure mode is reported through Result.Success=false.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, params map[string]interface{}) *Result
}

// Metadata describes how a tool call went: wall-clock duration, how many
// underlying records were examined (summed across tools later), which
// calculations ran, and any web sources surfaced.
type Metadata struct {
	ExecutionTime time.Duration `json:"executionTime"`
	DataPoints    int           `json:"dataPoints"`
	Calculations  []string      `json:"calculations"`
	Sources       []string      `json:"sources,omitempty"`
}

// Result is the envelope every tool call returns. When Success is false,
// Data holds a human-readable diagnostic (or a fallback payload), never a
// partially valid analytical payload.
type Result struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Error    string      `json:"error,omitempty"`
	Metadata *Metadata   `json:"metadata,omitempty"`
}

// ErrorResult builds a failed envelope with a diagnostic message.
func ErrorResult(diagnostic string) *Result {
	return &Result{
		Success: false,
		Data:    diagnostic,
		Error:   diagnostic,
	}
}

// WithMetadata attaches execution metadata and returns the same result for
// chaining.
func (r *Result) WithMetadata(md *Metadata) *Result {
	r.Metadata = md
	return r
}

// DataPoints returns the examined-record count, zero when no metadata is
// attached.
func (r *Result) DataPoints() int {
	if r == nil || r.Metadata == nil {
		return 0
	}
	return r.Metadata.DataPoints
}

// Sources returns the web sources surfaced by the call, if any.
func (r *Result) Sources() []string {
	if r == nil || r.Metadata == nil {
		return nil
	}
	return r.Metadata.Sources
}

// Options collects the tunable heuristics shared by the analytical tools.
// Zero values fall back to the defaults the tools were calibrated with.
type Options struct {
	// SalesWindowMonths is the assumed span of the sales ledger, used to
	// derive monthly demand from raw sale counts.
	SalesWindowMonths int
	// AdequateStockSlots is the nominal catalog size used for the
	// adequate-stock share of inventory status breakdowns.
	AdequateStockSlots int
	// DefaultMinAlert applies to inventory rows without their own
	// Min_Alert threshold.
	DefaultMinAlert int
	// SearchQualifier is appended to web-search queries to keep results
	// in the business's domain.
	SearchQualifier string
}

func DefaultOptions() Options {
	return Options{
		SalesWindowMonths:  3,
		AdequateStockSlots: 20,
		DefaultMinAlert:    5,
		SearchQualifier:    "competitors pricing Indian market boat yacht marine industry",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SalesWindowMonths <= 0 {
		o.SalesWindowMonths = d.SalesWindowMonths
	}
	if o.AdequateStockSlots <= 0 {
		o.AdequateStockSlots = d.AdequateStockSlots
	}
	if o.DefaultMinAlert <= 0 {
		o.DefaultMinAlert = d.DefaultMinAlert
	}
	if o.SearchQualifier == "" {
		o.SearchQualifier = d.SearchQualifier
	}
	return o
}

const datasetUnavailableMsg = "full dataset not available: load business data before running analysis"

func unavailableResult(start time.Time) *Result {
	return ErrorResult(datasetUnavailableMsg).WithMetadata(&Metadata{
		ExecutionTime: time.Since(start),
		DataPoints:    0,
		Calculations:  []string{},
	})
}
