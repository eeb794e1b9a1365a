package data

// SalesData is one sales ledger row. Field names follow the CSV headers the
// upstream ingestion pipeline produces.
type SalesData struct {
	Date     string  `json:"Date"`
	Product  string  `json:"Product"`
	Category string  `json:"Category"`
	Quantity int     `json:"Quantity"`
	Amount   float64 `json:"Amount"`
}

// InventoryData is one inventory row. MinAlert <= 0 means the threshold was
// not set and the configured default applies.
type InventoryData struct {
	Product  string  `json:"Product"`
	Category string  `json:"Category"`
	Stock    int     `json:"Stock"`
	Price    float64 `json:"Price"`
	MinAlert int     `json:"Min_Alert,omitempty"`
}

// ReviewData is one customer review row.
type ReviewData struct {
	Date    string  `json:"Date"`
	Product string  `json:"Product"`
	Rating  float64 `json:"Rating"`
	Review  string  `json:"Review"`
}

// BusinessSummary is the aggregate snapshot passed to the agent as query
// context. It is produced upstream; Summarize exists for callers that only
// have the raw rows.
type BusinessSummary struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int     `json:"totalOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	AverageRating     float64 `json:"averageRating"`
}

// Dataset is the full business dataset for one session.
type Dataset struct {
	Sales     []SalesData     `json:"sales"`
	Inventory []InventoryData `json:"inventory"`
	Reviews   []ReviewData    `json:"reviews"`
}

// Summarize computes the aggregate snapshot from the raw rows.
func (d *Dataset) Summarize() BusinessSummary {
	var summary BusinessSummary
	if d == nil {
		return summary
	}

	for _, s := range d.Sales {
		summary.TotalRevenue += s.Amount
	}
	summary.TotalOrders = len(d.Sales)
	if summary.TotalOrders > 0 {
		summary.AverageOrderValue = summary.TotalRevenue / float64(summary.TotalOrders)
	}

	if len(d.Reviews) > 0 {
		var total float64
		for _, r := range d.Reviews {
			total += r.Rating
		}
		summary.AverageRating = total / float64(len(d.Reviews))
	}

	return summary
}
