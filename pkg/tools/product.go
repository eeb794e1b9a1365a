package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vyaaparik/bizagent/pkg/data"
)

const ProductAnalysisToolName = "getFullProductAnalysis"

// ReviewSnapshot is one recent review attached to a product analysis.
type ReviewSnapshot struct {
	Rating float64 `json:"rating"`
	Review string  `json:"review"`
	Date   string  `json:"date"`
}

// SalesPoint is one recent sale attached to a product analysis.
type SalesPoint struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Quantity int     `json:"quantity"`
}

// ProductAnalysis is the success payload of getFullProductAnalysis. A query
// with zero matching rows still succeeds, with zeroed aggregates.
type ProductAnalysis struct {
	Product           string           `json:"product"`
	TotalRevenue      float64          `json:"totalRevenue"`
	SalesCount        int              `json:"salesCount"`
	TotalQuantitySold int              `json:"totalQuantitySold"`
	AverageRating     string           `json:"averageRating"`
	CurrentStock      int              `json:"currentStock"`
	Price             float64          `json:"price"`
	Category          string           `json:"category"`
	RecentReviews     []ReviewSnapshot `json:"recentReviews"`
	SalesTrend        []SalesPoint     `json:"salesTrend"`
}

// ProductAnalysisTool aggregates sales, reviews, and inventory for one
// product, matched by case-insensitive substring.
type ProductAnalysisTool struct {
	store *data.Store
}

func NewProductAnalysisTool(store *data.Store) *ProductAnalysisTool {
	return &ProductAnalysisTool{store: store}
}

func (t *ProductAnalysisTool) Name() string { return ProductAnalysisToolName }

func (t *ProductAnalysisTool) Description() string {
	return "Provides comprehensive analysis for a specific product including sales, reviews, inventory, and trends"
}

func (t *ProductAnalysisTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"productName": map[string]interface{}{
				"type":        "string",
				"description": "The exact or partial name of the product to analyze",
			},
		},
		"required": []string{"productName"},
	}
}

func (t *ProductAnalysisTool) Execute(ctx context.Context, params map[string]interface{}) *Result {
	start := time.Now()

	productName, _ := params["productName"].(string)
	if strings.TrimSpace(productName) == "" {
		return ErrorResult("productName is required").WithMetadata(&Metadata{
			ExecutionTime: time.Since(start),
			Calculations:  []string{},
		})
	}

	ds, ok := t.store.Snapshot()
	if !ok {
		return unavailableResult(start)
	}

	needle := strings.ToLower(productName)

	var productSales []data.SalesData
	for _, s := range ds.Sales {
		if strings.Contains(strings.ToLower(s.Product), needle) {
			productSales = append(productSales, s)
		}
	}

	var productReviews []data.ReviewData
	for _, r := range ds.Reviews {
		if strings.Contains(strings.ToLower(r.Product), needle) {
			productReviews = append(productReviews, r)
		}
	}

	var inventoryInfo *data.InventoryData
	for i := range ds.Inventory {
		if strings.Contains(strings.ToLower(ds.Inventory[i].Product), needle) {
			inventoryInfo = &ds.Inventory[i]
			break
		}
	}

	var totalRevenue float64
	var totalQuantity int
	for _, s := range productSales {
		totalRevenue += s.Amount
		totalQuantity += s.Quantity
	}

	var averageRating float64
	if len(productReviews) > 0 {
		var ratingTotal float64
		for _, r := range productReviews {
			ratingTotal += r.Rating
		}
		averageRating = ratingTotal / float64(len(productReviews))
	}

	analysis := &ProductAnalysis{
		Product:           productName,
		TotalRevenue:      totalRevenue,
		SalesCount:        len(productSales),
		TotalQuantitySold: totalQuantity,
		AverageRating:     fmt.Sprintf("%.2f", averageRating),
		Category:          "Unknown",
		RecentReviews:     []ReviewSnapshot{},
		SalesTrend:        []SalesPoint{},
	}
	if inventoryInfo != nil {
		analysis.CurrentStock = inventoryInfo.Stock
		analysis.Price = inventoryInfo.Price
		if inventoryInfo.Category != "" {
			analysis.Category = inventoryInfo.Category
		}
	}

	for _, r := range lastN(productReviews, 3) {
		analysis.RecentReviews = append(analysis.RecentReviews, ReviewSnapshot{
			Rating: r.Rating,
			Review: r.Review,
			Date:   r.Date,
		})
	}
	for _, s := range lastN(productSales, 5) {
		analysis.SalesTrend = append(analysis.SalesTrend, SalesPoint{
			Date:     s.Date,
			Amount:   s.Amount,
			Quantity: s.Quantity,
		})
	}

	return (&Result{
		Success: true,
		Data:    analysis,
	}).WithMetadata(&Metadata{
		ExecutionTime: time.Since(start),
		DataPoints:    len(productSales) + len(productReviews),
		Calculations:  []string{"revenue_calculation", "rating_analysis", "inventory_check"},
	})
}

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
