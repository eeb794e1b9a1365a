package tools

// MockCompetitor is one entry in the canned competitor dataset.
type MockCompetitor struct {
	Name        string   `json:"name"`
	Pricing     string   `json:"pricing"`
	Products    []string `json:"products"`
	MarketShare string   `json:"marketShare"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
}

// MockCompetitorDataset is the deterministic industry-knowledge payload
// served when live web search is unavailable.
type MockCompetitorDataset struct {
	Competitors       []MockCompetitor  `json:"competitors"`
	MarketInsights    []string          `json:"marketInsights"`
	PricingBenchmarks map[string]string `json:"pricingBenchmarks"`
}

// MockCompetitorData returns a fresh copy of the fallback dataset so
// callers cannot mutate shared state.
func MockCompetitorData() *MockCompetitorDataset {
	return &MockCompetitorDataset{
		Competitors: []MockCompetitor{
			{
				Name:        "Marine Solutions India Pvt Ltd",
				Pricing:     "₹45,000 - ₹2,50,000",
				Products:    []string{"Fishing boats", "Speed boats", "Marine engines"},
				MarketShare: "15%",
				Strengths:   []string{"Established dealer network", "After-sales service"},
				Weaknesses:  []string{"Higher pricing", "Limited online presence"},
			},
			{
				Name:        "Coastal Marine Industries",
				Pricing:     "₹38,000 - ₹1,80,000",
				Products:    []string{"Inflatable boats", "Yacht accessories", "Safety equipment"},
				MarketShare: "12%",
				Strengths:   []string{"Competitive pricing", "Wide product range"},
				Weaknesses:  []string{"Inconsistent quality", "Slower delivery"},
			},
			{
				Name:        "AquaSport Marine",
				Pricing:     "₹52,000 - ₹3,20,000",
				Products:    []string{"Luxury yachts", "Water sports equipment", "Premium boats"},
				MarketShare: "8%",
				Strengths:   []string{"Premium brand image", "High-end clientele"},
				Weaknesses:  []string{"Niche market only", "Limited affordability"},
			},
		},
		MarketInsights: []string{
			"Indian recreational boating market growing at 8-10% annually",
			"Coastal states (Goa, Kerala, Maharashtra) drive the bulk of demand",
			"Rising demand for water sports equipment among younger demographics",
			"Government push for coastal tourism is expanding the addressable market",
		},
		PricingBenchmarks: map[string]string{
			"entry_level_boats": "₹35,000 - ₹60,000",
			"mid_range_boats":   "₹60,000 - ₹1,50,000",
			"premium_boats":     "₹1,50,000 - ₹5,00,000",
			"marine_accessories": "₹2,000 - ₹25,000",
		},
	}
}
