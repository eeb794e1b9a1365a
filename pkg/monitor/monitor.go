package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/vyaaparik/bizagent/pkg/logger"
	"github.com/vyaaparik/bizagent/pkg/tools"
)

// LowStockWatcher periodically runs the low-stock analysis on a cron
// schedule and logs items that need restocking. The last report is kept
// for callers that want the most recent state without re-running the
// analysis.
type LowStockWatcher struct {
	registry *tools.Registry
	schedule string
	gron     *gronx.Gronx

	mu         sync.RWMutex
	lastReport *tools.LowStockReport
	lastRun    time.Time
}

func NewLowStockWatcher(registry *tools.Registry, schedule string) (*LowStockWatcher, error) {
	gron := gronx.New()
	if !gron.IsValid(schedule) {
		return nil, fmt.Errorf("invalid monitor schedule %q", schedule)
	}
	return &LowStockWatcher{
		registry: registry,
		schedule: schedule,
		gron:     gron,
	}, nil
}

// Run ticks once a minute and fires when the schedule is due. It blocks
// until the context is cancelled.
func (w *LowStockWatcher) Run(ctx context.Context) {
	logger.InfoCF("monitor", "Low-stock watcher started", map[string]interface{}{
		"schedule": w.schedule,
	})

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoCF("monitor", "Low-stock watcher stopped", nil)
			return
		case now := <-ticker.C:
			due, err := w.gron.IsDue(w.schedule, now)
			if err != nil {
				logger.WarnCF("monitor", "Schedule check failed", map[string]interface{}{
					"error": err.Error(),
				})
				continue
			}
			if due {
				w.Check(ctx)
			}
		}
	}
}

// Check runs the low-stock analysis once. It returns the report, or nil
// when the dataset is not loaded or the tool failed.
func (w *LowStockWatcher) Check(ctx context.Context) *tools.LowStockReport {
	result := w.registry.Execute(ctx, tools.LowStockToolName, nil)
	if !result.Success {
		logger.WarnCF("monitor", "Low-stock check skipped", map[string]interface{}{
			"error": result.Error,
		})
		return nil
	}

	report, ok := result.Data.(*tools.LowStockReport)
	if !ok {
		logger.ErrorCF("monitor", "Unexpected low-stock payload type", map[string]interface{}{
			"type": fmt.Sprintf("%T", result.Data),
		})
		return nil
	}

	w.mu.Lock()
	w.lastReport = report
	w.lastRun = time.Now()
	w.mu.Unlock()

	if report.TotalItemsLowStock == 0 {
		logger.InfoCF("monitor", "All inventory above alert thresholds", nil)
		return report
	}

	logger.WarnCF("monitor", "Low-stock items detected", map[string]interface{}{
		"low_stock":     report.TotalItemsLowStock,
		"critical":      len(report.CriticalItems),
		"value_at_risk": report.TotalValueAtRisk,
	})
	for _, item := range report.CriticalItems {
		logger.WarnCF("monitor", "Critical stock level", map[string]interface{}{
			"product": item.Product,
			"stock":   item.CurrentStock,
			"urgency": item.Urgency,
		})
	}
	return report
}

// LastReport returns the most recent report and when it was produced.
func (w *LowStockWatcher) LastReport() (*tools.LowStockReport, time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastReport, w.lastRun
}
