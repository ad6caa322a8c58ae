package domain

// Plan is a catalog entry. Purchasing a plan creates exactly one new batch;
// plans themselves are immutable and not persisted per user.
type Plan struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Credits       int    `json:"credits"`
	Price         string `json:"price"`
	PriceValue    int    `json:"price_value"`
	ValidityDays  int    `json:"validity_days"`
	ValidityLabel string `json:"validity_label"`
	Description   string `json:"description"`
	Highlight     bool   `json:"highlight"`
	ProductID     string `json:"product_id"`
}

var plans = []Plan{
	{
		ID:            "quick_try",
		Name:          "Quick Try",
		Credits:       10,
		Price:         "₹49",
		PriceValue:    49,
		ValidityDays:  15,
		ValidityLabel: "15 days",
		Description:   "10 credits to explore Styloren, valid for 15 days",
		ProductID:     "styloren_quick_try",
	},
	{
		ID:            "monthly_value",
		Name:          "Monthly Value",
		Credits:       50,
		Price:         "₹199",
		PriceValue:    199,
		ValidityDays:  30,
		ValidityLabel: "1 month",
		Description:   "50 credits for consistent styling, valid for 1 month",
		ProductID:     "styloren_monthly_value",
	},
	{
		ID:            "quarterly_saver",
		Name:          "Quarterly Saver",
		Credits:       100,
		Price:         "₹399",
		PriceValue:    399,
		ValidityDays:  90,
		ValidityLabel: "3 months",
		Description:   "100 credits for serious style planning, valid for 3 months",
		Highlight:     true,
		ProductID:     "styloren_quarterly_saver",
	},
}

// Plans returns the fixed plan catalog.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID looks up a catalog entry.
func PlanByID(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
