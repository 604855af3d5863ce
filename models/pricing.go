package models

// PlanPricing maps a service key ("subdomain", "email", "nip05", "bundle")
// to a price in sats.
type PlanPricing map[string]uint64

// PricingTable is stored at config/pricing, keyed by plan.
type PricingTable map[Plan]PlanPricing

func (t PricingTable) Lookup(plan Plan, key string) (uint64, bool) {
	if t == nil {
		return 0, false
	}
	cells, ok := t[plan]
	if !ok {
		return 0, false
	}
	price, ok := cells[key]
	return price, ok
}
