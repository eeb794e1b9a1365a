package agent

import (
	"reflect"
	"testing"

	"github.com/vyaaparik/bizagent/pkg/tools"
)

func TestChartDeriver_CompetitorBar(t *testing.T) {
	report := &tools.CompetitorSearchReport{
		CompetitorAnalysis: &tools.CompetitorAnalysis{
			Competitors: []tools.Competitor{
				{Name: "Marine Solutions India Pvt Ltd", Description: "a very long description that should be clipped to fifty characters exactly", Position: 1},
				{Name: "Short", Position: 0},
			},
		},
	}
	results := map[string]*tools.Result{
		"web_search": {Success: true, Data: report},
	}

	charts := NewChartDeriver(20).Derive(results)
	if len(charts) != 1 || charts[0].Type != "bar" {
		t.Fatalf("expected one bar chart, got %+v", charts)
	}

	points := charts[0].Data
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if len(points[0].Name) > 20 || len(points[0].Description) > 50 {
		t.Fatalf("labels not truncated: %+v", points[0])
	}
	if points[0].Value != 1 || points[0].Note != "" {
		t.Fatalf("ranked competitor mishandled: %+v", points[0])
	}
	if points[1].Value != 0 || points[1].Note != "unranked" {
		t.Fatalf("expected unranked sentinel, got %+v", points[1])
	}

	// Derivation is deterministic.
	again := NewChartDeriver(20).Derive(results)
	if !reflect.DeepEqual(charts, again) {
		t.Fatalf("chart derivation not deterministic")
	}
}

func TestChartDeriver_TrendLine(t *testing.T) {
	analysis := &tools.TrendAnalysis{
		MonthlyTrends: []tools.MonthlyTrend{
			{Month: "2026-04", Revenue: 4000, Orders: 2},
			{Month: "2026-05", Revenue: 2500, Orders: 2},
		},
	}
	results := map[string]*tools.Result{
		"market_analysis": {Success: true, Data: analysis},
	}

	charts := NewChartDeriver(20).Derive(results)
	if len(charts) != 1 || charts[0].Type != "line" {
		t.Fatalf("expected one line chart, got %+v", charts)
	}
	if charts[0].Data[0].Name != "2026-04" || charts[0].Data[0].Value != 4000 || charts[0].Data[0].Orders != 2 {
		t.Fatalf("unexpected line point: %+v", charts[0].Data[0])
	}
}

func TestChartDeriver_InventoryPie(t *testing.T) {
	report := &tools.LowStockReport{
		LowStockItems: make([]tools.LowStockItem, 3),
		CriticalItems: make([]tools.LowStockItem, 1),
	}
	results := map[string]*tools.Result{
		"inventory_check": {Success: true, Data: report},
	}

	charts := NewChartDeriver(20).Derive(results)
	if len(charts) != 1 || charts[0].Type != "pie" {
		t.Fatalf("expected one pie chart, got %+v", charts)
	}

	points := charts[0].Data
	if points[0].Name != "Critical Stock" || points[0].Value != 1 {
		t.Fatalf("unexpected critical slice: %+v", points[0])
	}
	if points[1].Name != "Low Stock" || points[1].Value != 2 {
		t.Fatalf("unexpected low slice: %+v", points[1])
	}
	if points[2].Name != "Adequate Stock" || points[2].Value != 17 {
		t.Fatalf("unexpected adequate slice: %+v", points[2])
	}
}

func TestChartDeriver_AdequateFloorsAtZero(t *testing.T) {
	report := &tools.LowStockReport{
		LowStockItems: make([]tools.LowStockItem, 6),
	}
	results := map[string]*tools.Result{
		"inventory_check": {Success: true, Data: report},
	}

	charts := NewChartDeriver(4).Derive(results)
	if charts[0].Data[2].Value != 0 {
		t.Fatalf("adequate slice must floor at zero, got %v", charts[0].Data[2].Value)
	}
}

func TestChartDeriver_SkipsFailedResults(t *testing.T) {
	results := map[string]*tools.Result{
		"inventory_check": {Success: false, Data: "diag"},
		"market_analysis": {Success: true, Data: "not a trend payload"},
	}
	if charts := NewChartDeriver(20).Derive(results); len(charts) != 0 {
		t.Fatalf("expected no charts, got %+v", charts)
	}
}
