package tools

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vyaaparik/bizagent/pkg/data"
)

const LowStockToolName = "getLowStockItems"

const (
	UrgencyCritical = "Critical"
	UrgencyHigh     = "High"
	UrgencyMedium   = "Medium"
)

// LowStockItem is one inventory row below its alert threshold, enriched
// with demand figures derived from the sales ledger.
type LowStockItem struct {
	Product               string  `json:"product"`
	CurrentStock          int     `json:"currentStock"`
	MinAlert              int     `json:"minAlert"`
	Category              string  `json:"category"`
	Price                 float64 `json:"price"`
	TotalRevenue          float64 `json:"totalRevenue"`
	AvgMonthlySales       string  `json:"avgMonthlySales"`
	Urgency               string  `json:"urgency"`
	EstimatedStockoutDays string  `json:"estimatedStockoutDays"`
}

// LowStockReport is the success payload of getLowStockItems.
type LowStockReport struct {
	LowStockItems     []LowStockItem `json:"lowStockItems"`
	TotalItemsLowStock int           `json:"totalItemsLowStock"`
	CriticalItems     []LowStockItem `json:"criticalItems"`
	TotalValueAtRisk  float64        `json:"totalValueAtRisk"`
}

// LowStockTool reports inventory below alert thresholds, sorted by current
// stock ascending, with urgency scoring and stockout estimates.
type LowStockTool struct {
	store *data.Store
	opts  Options
}

func NewLowStockTool(store *data.Store, opts Options) *LowStockTool {
	return &LowStockTool{store: store, opts: opts.withDefaults()}
}

func (t *LowStockTool) Name() string { return LowStockToolName }

func (t *LowStockTool) Description() string {
	return "Returns detailed analysis of products with low stock levels, including urgency and revenue impact"
}

func (t *LowStockTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []string{},
	}
}

func (t *LowStockTool) Execute(ctx context.Context, params map[string]interface{}) *Result {
	start := time.Now()

	ds, ok := t.store.Snapshot()
	if !ok {
		return unavailableResult(start)
	}

	report := &LowStockReport{
		LowStockItems: []LowStockItem{},
		CriticalItems: []LowStockItem{},
	}

	for _, item := range ds.Inventory {
		minAlert := item.MinAlert
		if minAlert <= 0 {
			minAlert = t.opts.DefaultMinAlert
		}
		if item.Stock >= minAlert {
			continue
		}

		var productRevenue float64
		salesCount := 0
		for _, s := range ds.Sales {
			if s.Product == item.Product {
				productRevenue += s.Amount
				salesCount++
			}
		}

		avgMonthlySales := 0.0
		if salesCount > 0 {
			avgMonthlySales = float64(salesCount) / float64(t.opts.SalesWindowMonths)
		}

		stockoutDays := "Unknown"
		if avgMonthlySales > 0 {
			stockoutDays = fmt.Sprintf("%d", int(math.Floor(float64(item.Stock)/(avgMonthlySales/30))))
		}

		report.LowStockItems = append(report.LowStockItems, LowStockItem{
			Product:               item.Product,
			CurrentStock:          item.Stock,
			MinAlert:              minAlert,
			Category:              item.Category,
			Price:                 item.Price,
			TotalRevenue:          productRevenue,
			AvgMonthlySales:       fmt.Sprintf("%.1f", avgMonthlySales),
			Urgency:               urgencyFor(item.Stock),
			EstimatedStockoutDays: stockoutDays,
		})
	}

	sort.SliceStable(report.LowStockItems, func(i, j int) bool {
		return report.LowStockItems[i].CurrentStock < report.LowStockItems[j].CurrentStock
	})

	report.TotalItemsLowStock = len(report.LowStockItems)
	for _, item := range report.LowStockItems {
		report.TotalValueAtRisk += item.TotalRevenue
		if item.Urgency == UrgencyCritical {
			report.CriticalItems = append(report.CriticalItems, item)
		}
	}

	return (&Result{
		Success: true,
		Data:    report,
	}).WithMetadata(&Metadata{
		ExecutionTime: time.Since(start),
		DataPoints:    len(ds.Inventory),
		Calculations:  []string{"stock_analysis", "demand_calculation", "urgency_scoring"},
	})
}

func urgencyFor(stock int) string {
	switch {
	case stock == 0:
		return UrgencyCritical
	case stock <= 2:
		return UrgencyHigh
	default:
		return UrgencyMedium
	}
}
