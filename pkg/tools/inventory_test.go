package tools

import (
	"context"
	"testing"

	"github.com/vyaaparik/bizagent/pkg/data"
)

func TestLowStock_FiltersAndSorts(t *testing.T) {
	store := data.NewStore()
	store.Set(data.Dataset{
		Sales: []data.SalesData{
			{Date: "2026-05-02", Product: "A", Quantity: 1, Amount: 1000},
			{Date: "2026-06-02", Product: "A", Quantity: 1, Amount: 1000},
			{Date: "2026-06-10", Product: "C", Quantity: 1, Amount: 500},
		},
		Inventory: []data.InventoryData{
			{Product: "A", Stock: 1, MinAlert: 5, Price: 1000},
			{Product: "B", Stock: 10, MinAlert: 5, Price: 2000},
			{Product: "C", Stock: 0, MinAlert: 5, Price: 500},
			{Product: "D", Stock: 3, MinAlert: 5, Price: 700},
		},
	})
	tool := NewLowStockTool(store, DefaultOptions())

	result := tool.Execute(context.Background(), nil)
	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}

	report := result.Data.(*LowStockReport)
	if report.TotalItemsLowStock != 3 {
		t.Fatalf("expected 3 low-stock items, got %d", report.TotalItemsLowStock)
	}
	for _, item := range report.LowStockItems {
		if item.Product == "B" {
			t.Fatalf("product B has adequate stock, should be excluded")
		}
	}
	for i := 1; i < len(report.LowStockItems); i++ {
		if report.LowStockItems[i].CurrentStock < report.LowStockItems[i-1].CurrentStock {
			t.Fatalf("items not sorted by current stock: %+v", report.LowStockItems)
		}
	}
	if report.LowStockItems[0].Product != "C" || report.LowStockItems[0].Urgency != UrgencyCritical {
		t.Fatalf("expected C first with Critical urgency, got %+v", report.LowStockItems[0])
	}
	if len(report.CriticalItems) != 1 {
		t.Fatalf("expected 1 critical item, got %d", len(report.CriticalItems))
	}
}

func TestLowStock_UrgencyLevels(t *testing.T) {
	cases := []struct {
		stock int
		want  string
	}{
		{0, UrgencyCritical},
		{1, UrgencyHigh},
		{2, UrgencyHigh},
		{3, UrgencyMedium},
	}
	for _, tc := range cases {
		if got := urgencyFor(tc.stock); got != tc.want {
			t.Fatalf("urgency for stock=%d: expected %s, got %s", tc.stock, tc.want, got)
		}
	}
}

func TestLowStock_DefaultMinAlertApplies(t *testing.T) {
	store := data.NewStore()
	store.Set(data.Dataset{
		Inventory: []data.InventoryData{
			// No MinAlert set; default of 5 applies, so stock 4 is low.
			{Product: "NoThreshold", Stock: 4},
			{Product: "AboveDefault", Stock: 6},
		},
	})
	tool := NewLowStockTool(store, DefaultOptions())

	result := tool.Execute(context.Background(), nil)
	report := result.Data.(*LowStockReport)
	if report.TotalItemsLowStock != 1 || report.LowStockItems[0].Product != "NoThreshold" {
		t.Fatalf("default threshold not applied: %+v", report)
	}
	if report.LowStockItems[0].MinAlert != 5 {
		t.Fatalf("expected resolved MinAlert 5, got %d", report.LowStockItems[0].MinAlert)
	}
}

func TestLowStock_StockoutEstimate(t *testing.T) {
	store := data.NewStore()
	store.Set(data.Dataset{
		Sales: []data.SalesData{
			{Date: "2026-05-01", Product: "A", Quantity: 1, Amount: 100},
			{Date: "2026-06-01", Product: "A", Quantity: 1, Amount: 100},
			{Date: "2026-07-01", Product: "A", Quantity: 1, Amount: 100},
		},
		Inventory: []data.InventoryData{
			{Product: "A", Stock: 2, MinAlert: 5},
			{Product: "NoSales", Stock: 1, MinAlert: 5},
		},
	})
	tool := NewLowStockTool(store, DefaultOptions())

	report := tool.Execute(context.Background(), nil).Data.(*LowStockReport)

	var withSales, withoutSales *LowStockItem
	for i := range report.LowStockItems {
		switch report.LowStockItems[i].Product {
		case "A":
			withSales = &report.LowStockItems[i]
		case "NoSales":
			withoutSales = &report.LowStockItems[i]
		}
	}
	if withSales == nil || withoutSales == nil {
		t.Fatalf("expected both items in report: %+v", report.LowStockItems)
	}

	// 3 sales over a 3-month window = 1/month; 2 units / (1/30 per day) = 60 days.
	if withSales.EstimatedStockoutDays != "60" {
		t.Fatalf("expected stockout estimate 60, got %q", withSales.EstimatedStockoutDays)
	}
	if withoutSales.EstimatedStockoutDays != "Unknown" {
		t.Fatalf("expected Unknown for product without sales, got %q", withoutSales.EstimatedStockoutDays)
	}
}
