package agent

import (
	"sort"
	"strings"

	"github.com/vyaaparik/bizagent/pkg/tools"
)

// ChartDeriver derives renderable chart descriptors from successful tool
// results, matched by step-ID substring and payload type. Derivation is
// stateless and deterministic: step IDs are visited in sorted order and
// missing values become explicit sentinels, never random filler.
type ChartDeriver struct {
	// adequateStockSlots is the nominal catalog size used for the
	// adequate-stock slice of the inventory pie.
	adequateStockSlots int
}

func NewChartDeriver(adequateStockSlots int) *ChartDeriver {
	if adequateStockSlots <= 0 {
		adequateStockSlots = tools.DefaultOptions().AdequateStockSlots
	}
	return &ChartDeriver{adequateStockSlots: adequateStockSlots}
}

func (d *ChartDeriver) Derive(results map[string]*tools.Result) []Chart {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	charts := []Chart{}
	for _, id := range ids {
		result := results[id]
		if !result.Success || result.Data == nil {
			continue
		}

		if strings.Contains(id, "competitor") || strings.Contains(id, "search") {
			if report, ok := result.Data.(*tools.CompetitorSearchReport); ok {
				if chart, ok := competitorChart(report); ok {
					charts = append(charts, chart)
				}
			}
		}

		if strings.Contains(id, "market") {
			if analysis, ok := result.Data.(*tools.TrendAnalysis); ok && len(analysis.MonthlyTrends) > 0 {
				charts = append(charts, trendChart(analysis))
			}
		}

		if strings.Contains(id, "inventory") {
			if report, ok := result.Data.(*tools.LowStockReport); ok {
				charts = append(charts, d.inventoryChart(report))
			}
		}
	}

	return charts
}

func competitorChart(report *tools.CompetitorSearchReport) (Chart, bool) {
	if report.CompetitorAnalysis == nil || len(report.CompetitorAnalysis.Competitors) == 0 {
		return Chart{}, false
	}

	competitors := report.CompetitorAnalysis.Competitors
	if len(competitors) > 5 {
		competitors = competitors[:5]
	}

	points := make([]ChartPoint, 0, len(competitors))
	for _, comp := range competitors {
		name := truncateChartLabel(comp.Name, 20)
		if name == "" {
			name = "Unknown"
		}
		point := ChartPoint{
			Name:        name,
			Value:       float64(comp.Position),
			Description: truncateChartLabel(comp.Description, 50),
		}
		if comp.Position == 0 {
			point.Note = "unranked"
		}
		points = append(points, point)
	}

	return Chart{
		Type:  "bar",
		Title: "Competitor Landscape",
		Data:  points,
	}, true
}

func trendChart(analysis *tools.TrendAnalysis) Chart {
	points := make([]ChartPoint, 0, len(analysis.MonthlyTrends))
	for _, trend := range analysis.MonthlyTrends {
		points = append(points, ChartPoint{
			Name:   trend.Month,
			Value:  trend.Revenue,
			Orders: trend.Orders,
		})
	}
	return Chart{
		Type:  "line",
		Title: "Market Trend Analysis",
		Data:  points,
	}
}

func (d *ChartDeriver) inventoryChart(report *tools.LowStockReport) Chart {
	lowCount := len(report.LowStockItems)
	criticalCount := len(report.CriticalItems)
	adequate := d.adequateStockSlots - lowCount
	if adequate < 0 {
		adequate = 0
	}

	return Chart{
		Type:  "pie",
		Title: "Inventory Status Distribution",
		Data: []ChartPoint{
			{Name: "Critical Stock", Value: float64(criticalCount), Fill: "#ef4444"},
			{Name: "Low Stock", Value: float64(lowCount - criticalCount), Fill: "#f97316"},
			{Name: "Adequate Stock", Value: float64(adequate), Fill: "#22c55e"},
		},
	}
}

func truncateChartLabel(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
