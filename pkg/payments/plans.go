package payments

import (
	"fmt"
	"strings"
)

// Subscription plans offered at onboarding. Prices are monthly, in BRL.
const (
	PlanBasic = "basic"
	PlanPro   = "pro"
)

var planPrices = map[string]float64{
	PlanBasic: 99.00,
	PlanPro:   249.00,
}

// PlanPrice returns the monthly price for a plan. An empty plan defaults to
// basic.
func PlanPrice(plan string) (float64, error) {
	plan = strings.ToLower(strings.TrimSpace(plan))
	if plan == "" {
		plan = PlanBasic
	}
	price, ok := planPrices[plan]
	if !ok {
		return 0, fmt.Errorf("unknown plan %q", plan)
	}
	return price, nil
}
