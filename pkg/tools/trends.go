package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vyaaparik/bizagent/pkg/data"
	"github.com/vyaaparik/bizagent/pkg/logger"
)

const MarketTrendsToolName = "analyzeMarketTrends"

// MonthlyTrend is one calendar-month bucket of category sales.
type MonthlyTrend struct {
	Month         string  `json:"month"`
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	Quantity      int     `json:"quantity"`
	AvgOrderValue float64 `json:"avgOrderValue"`
}

// ProductRevenue ranks one product by revenue within the analyzed category.
type ProductRevenue struct {
	Product string  `json:"product"`
	Revenue float64 `json:"revenue"`
}

// Seasonality flags months that deviate more than 20% from mean revenue.
type Seasonality struct {
	Pattern           string   `json:"pattern"`
	PeakMonths        []string `json:"peakMonths,omitempty"`
	LowMonths         []string `json:"lowMonths,omitempty"`
	AvgMonthlyRevenue string   `json:"avgMonthlyRevenue,omitempty"`
}

// TrendAnalysis is the success payload of analyzeMarketTrends.
type TrendAnalysis struct {
	Category      string           `json:"category"`
	TotalRevenue  float64          `json:"totalRevenue"`
	AverageRating string           `json:"averageRating"`
	TotalOrders   int              `json:"totalOrders"`
	MonthlyTrends []MonthlyTrend   `json:"monthlyTrends"`
	GrowthRate    string           `json:"growthRate"`
	TopProducts   []ProductRevenue `json:"topProducts"`
	Seasonality   Seasonality      `json:"seasonality"`
}

// seasonalityMinMonths is the minimum bucket count before peak/low month
// detection is meaningful.
const seasonalityMinMonths = 6

// MarketTrendsTool buckets category sales by calendar month and derives
// growth rate, top products, and seasonality.
type MarketTrendsTool struct {
	store *data.Store
}

func NewMarketTrendsTool(store *data.Store) *MarketTrendsTool {
	return &MarketTrendsTool{store: store}
}

func (t *MarketTrendsTool) Name() string { return MarketTrendsToolName }

func (t *MarketTrendsTool) Description() string {
	return "Analyzes market trends for a specific product category using historical sales data and pattern recognition"
}

func (t *MarketTrendsTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"productCategory": map[string]interface{}{
				"type":        "string",
				"description": "Product category to analyze trends for",
			},
		},
		"required": []string{"productCategory"},
	}
}

func (t *MarketTrendsTool) Execute(ctx context.Context, params map[string]interface{}) *Result {
	start := time.Now()

	category, _ := params["productCategory"].(string)
	if strings.TrimSpace(category) == "" {
		category = "all"
	}

	ds, ok := t.store.Snapshot()
	if !ok {
		return unavailableResult(start)
	}

	needle := strings.ToLower(category)
	matchAll := needle == "all"

	var categorySales []data.SalesData
	for _, s := range ds.Sales {
		if matchAll || strings.Contains(strings.ToLower(s.Category), needle) {
			categorySales = append(categorySales, s)
		}
	}

	var categoryRevenue float64
	for _, s := range categorySales {
		categoryRevenue += s.Amount
	}

	analysis := &TrendAnalysis{
		Category:      category,
		TotalRevenue:  categoryRevenue,
		AverageRating: fmt.Sprintf("%.2f", categoryAverageRating(ds.Reviews, categorySales)),
		TotalOrders:   len(categorySales),
		MonthlyTrends: bucketByMonth(categorySales),
		TopProducts:   topProducts(categorySales, 5),
	}
	analysis.GrowthRate = growthRate(analysis.MonthlyTrends)
	analysis.Seasonality = seasonality(analysis.MonthlyTrends)

	return (&Result{
		Success: true,
		Data:    analysis,
	}).WithMetadata(&Metadata{
		ExecutionTime: time.Since(start),
		DataPoints:    len(categorySales),
		Calculations:  []string{"trend_analysis", "growth_calculation", "seasonality_analysis"},
	})
}

func categoryAverageRating(reviews []data.ReviewData, categorySales []data.SalesData) float64 {
	inCategory := make(map[string]struct{}, len(categorySales))
	for _, s := range categorySales {
		inCategory[s.Product] = struct{}{}
	}

	var total float64
	count := 0
	for _, r := range reviews {
		if _, ok := inCategory[r.Product]; ok {
			total += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

var saleDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02-01-2006",
}

func monthKey(rawDate string) (string, bool) {
	raw := strings.TrimSpace(rawDate)
	for _, layout := range saleDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("2006-01"), true
		}
	}
	return "", false
}

func bucketByMonth(sales []data.SalesData) []MonthlyTrend {
	buckets := make(map[string]*MonthlyTrend)
	for _, s := range sales {
		month, ok := monthKey(s.Date)
		if !ok {
			logger.DebugCF("tools", "Skipping sale with unparsable date", map[string]interface{}{
				"date":    s.Date,
				"product": s.Product,
			})
			continue
		}
		bucket, ok := buckets[month]
		if !ok {
			bucket = &MonthlyTrend{Month: month}
			buckets[month] = bucket
		}
		bucket.Revenue += s.Amount
		bucket.Orders++
		bucket.Quantity += s.Quantity
	}

	trends := make([]MonthlyTrend, 0, len(buckets))
	for _, bucket := range buckets {
		if bucket.Orders > 0 {
			bucket.AvgOrderValue = bucket.Revenue / float64(bucket.Orders)
		}
		trends = append(trends, *bucket)
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Month < trends[j].Month })
	return trends
}

func growthRate(trends []MonthlyTrend) string {
	if len(trends) < 2 {
		return "Insufficient data"
	}
	first := trends[0].Revenue
	last := trends[len(trends)-1].Revenue
	if first == 0 {
		return "Insufficient data"
	}
	rate := (last - first) / first * 100
	return fmt.Sprintf("%.1f%% over %d months", rate, len(trends))
}

func topProducts(sales []data.SalesData, limit int) []ProductRevenue {
	revenue := make(map[string]float64)
	for _, s := range sales {
		revenue[s.Product] += s.Amount
	}

	ranked := make([]ProductRevenue, 0, len(revenue))
	for product, total := range revenue {
		ranked = append(ranked, ProductRevenue{Product: product, Revenue: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].Product < ranked[j].Product
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func seasonality(trends []MonthlyTrend) Seasonality {
	if len(trends) < seasonalityMinMonths {
		return Seasonality{Pattern: "Insufficient data for seasonality analysis"}
	}

	var total float64
	for _, trend := range trends {
		total += trend.Revenue
	}
	mean := total / float64(len(trends))

	var peaks, lows []string
	for _, trend := range trends {
		switch {
		case trend.Revenue > mean*1.2:
			peaks = append(peaks, trend.Month)
		case trend.Revenue < mean*0.8:
			lows = append(lows, trend.Month)
		}
	}

	pattern := "Consistent performance"
	if len(peaks) > 0 {
		pattern = "Seasonal variations detected"
	}

	return Seasonality{
		Pattern:           pattern,
		PeakMonths:        peaks,
		LowMonths:         lows,
		AvgMonthlyRevenue: fmt.Sprintf("%.0f", mean),
	}
}
