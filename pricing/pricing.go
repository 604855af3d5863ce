// Package pricing resolves the sats price of a plan and service selection.
package pricing

import (
	"gopkg.in/yaml.v3"

	"github.com/flokiorg/lokirent/constants"
	"github.com/flokiorg/lokirent/models"
)

// DefaultTable is the compiled-in matrix used for every cell missing from
// the stored pricing table.
var DefaultTable = models.PricingTable{
	models.PlanOneDay:     {constants.SERVICE_SUBDOMAIN: 10, constants.SERVICE_EMAIL: 10, constants.SERVICE_NIP05: 5, constants.SERVICE_BUNDLE: 20},
	models.PlanSevenDays:  {constants.SERVICE_SUBDOMAIN: 50, constants.SERVICE_EMAIL: 50, constants.SERVICE_NIP05: 25, constants.SERVICE_BUNDLE: 100},
	models.PlanThirtyDays: {constants.SERVICE_SUBDOMAIN: 150, constants.SERVICE_EMAIL: 150, constants.SERVICE_NIP05: 75, constants.SERVICE_BUNDLE: 300},
	models.PlanNinetyDays: {constants.SERVICE_SUBDOMAIN: 350, constants.SERVICE_EMAIL: 350, constants.SERVICE_NIP05: 175, constants.SERVICE_BUNDLE: 700},
	models.PlanOneYear:    {constants.SERVICE_SUBDOMAIN: 800, constants.SERVICE_EMAIL: 800, constants.SERVICE_NIP05: 400, constants.SERVICE_BUNDLE: 1600},
}

// Price returns the bundle price when all three kinds are selected and the
// sum of the individual prices otherwise. table may be nil.
func Price(plan models.Plan, kinds []models.ServiceKind, table models.PricingTable) (uint64, error) {
	selected := dedupe(kinds)
	if len(selected) == len(models.GetServiceKinds()) {
		return cell(plan, constants.SERVICE_BUNDLE, table)
	}

	var total uint64
	for _, kind := range selected {
		price, err := cell(plan, string(kind), table)
		if err != nil {
			return 0, err
		}
		total += price
	}
	return total, nil
}

// Resolve returns the effective table for every plan present in either the
// stored table or the defaults, with stored cells taking precedence.
func Resolve(table models.PricingTable) models.PricingTable {
	resolved := models.PricingTable{}
	for plan, cells := range DefaultTable {
		resolved[plan] = models.PlanPricing{}
		for key, price := range cells {
			resolved[plan][key] = price
		}
	}
	for plan, cells := range table {
		if _, ok := resolved[plan]; !ok {
			resolved[plan] = models.PlanPricing{}
		}
		for key, price := range cells {
			resolved[plan][key] = price
		}
	}
	return resolved
}

// Validate rejects tables with unknown plans or service keys.
func Validate(table models.PricingTable) error {
	for plan, cells := range table {
		if !plan.Valid() {
			return models.NewValidationError("unknown plan %q", plan)
		}
		for key := range cells {
			switch key {
			case constants.SERVICE_SUBDOMAIN, constants.SERVICE_EMAIL, constants.SERVICE_NIP05, constants.SERVICE_BUNDLE:
			default:
				return models.NewValidationError("unknown service %q for plan %s", key, plan)
			}
		}
	}
	return nil
}

func cell(plan models.Plan, key string, table models.PricingTable) (uint64, error) {
	if price, ok := table.Lookup(plan, key); ok {
		return price, nil
	}
	if price, ok := DefaultTable.Lookup(plan, key); ok {
		return price, nil
	}
	return 0, models.NewValidationError("no %s price configured for plan %s", key, plan)
}

func dedupe(kinds []models.ServiceKind) []models.ServiceKind {
	seen := map[models.ServiceKind]bool{}
	var out []models.ServiceKind
	for _, kind := range kinds {
		if !seen[kind] {
			seen[kind] = true
			out = append(out, kind)
		}
	}
	return out
}

// ParseTable decodes a pricing table document. JSON documents are accepted
// as well since they are valid YAML.
func ParseTable(data []byte) (models.PricingTable, error) {
	table := models.PricingTable{}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, models.NewValidationError("invalid pricing table: %v", err)
	}
	if len(table) == 0 {
		return nil, models.NewValidationError("pricing table is empty")
	}
	if err := Validate(table); err != nil {
		return nil, err
	}
	return table, nil
}

// FormatTable encodes table as YAML with plans and services sorted.
func FormatTable(table models.PricingTable) ([]byte, error) {
	return yaml.Marshal(table)
}
