package monitor

import (
	"context"
	"testing"

	"github.com/vyaaparik/bizagent/pkg/data"
	"github.com/vyaaparik/bizagent/pkg/tools"
)

func newWatcher(t *testing.T, store *data.Store) *LowStockWatcher {
	t.Helper()
	registry := tools.NewRegistry()
	registry.Register(tools.NewLowStockTool(store, tools.DefaultOptions()))

	watcher, err := NewLowStockWatcher(registry, "0 8 * * *")
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	return watcher
}

func TestNewLowStockWatcher_InvalidSchedule(t *testing.T) {
	if _, err := NewLowStockWatcher(tools.NewRegistry(), "every tuesday"); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestWatcher_CheckWithDataset(t *testing.T) {
	store := data.NewStore()
	store.Set(data.Dataset{
		Inventory: []data.InventoryData{
			{Product: "Speedboat X200", Stock: 0, Price: 100000, MinAlert: 5},
			{Product: "Kayak Pro", Stock: 12, Price: 10000, MinAlert: 5},
		},
	})
	watcher := newWatcher(t, store)

	report := watcher.Check(context.Background())
	if report == nil {
		t.Fatalf("expected a report")
	}
	if report.TotalItemsLowStock != 1 {
		t.Fatalf("expected 1 low-stock item, got %d", report.TotalItemsLowStock)
	}
	if len(report.CriticalItems) != 1 || report.CriticalItems[0].Product != "Speedboat X200" {
		t.Fatalf("unexpected critical items: %+v", report.CriticalItems)
	}

	last, when := watcher.LastReport()
	if last != report || when.IsZero() {
		t.Fatalf("last report not recorded")
	}
}

func TestWatcher_CheckWithoutDataset(t *testing.T) {
	watcher := newWatcher(t, data.NewStore())

	if report := watcher.Check(context.Background()); report != nil {
		t.Fatalf("expected nil report without a dataset, got %+v", report)
	}
	if last, _ := watcher.LastReport(); last != nil {
		t.Fatalf("no report should be recorded on failure")
	}
}
