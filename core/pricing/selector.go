// Package pricing selects DBU rates from a pricing table.
// Selection is an exact match on the workload tuple; there is no
// partial matching and no currency conversion at this layer.
package pricing

import (
	"fmt"

	"dbu-cost/core/types"
)

// SelectRate returns the first record whose tuple equals query.
// A nil table or a table without records yields (nil, false).
func SelectRate(table *types.PricingTable, query types.RateQuery) (*types.PricingRecord, bool) {
	if table == nil || table.Records == nil {
		return nil, false
	}
	for i := range table.Records {
		if table.Records[i].Query() == query {
			return &table.Records[i], true
		}
	}
	return nil, false
}

// DetectDuplicates reports every record whose tuple repeats an earlier one
func DetectDuplicates(records []types.PricingRecord) []string {
	var duplicates []string
	seen := make(map[string]int, len(records))
	for i, record := range records {
		key := record.Query().Key()
		if first, ok := seen[key]; ok {
			duplicates = append(duplicates, fmt.Sprintf("Duplicate workload combination detected for (%s) at indexes %d and %d", key, first, i))
			continue
		}
		seen[key] = i
	}
	return duplicates
}

// Options lists the distinct values of each selection field, in table order.
// Used by callers to present valid choices.
func Options(table *types.PricingTable) map[string][]string {
	out := map[string][]string{}
	if table == nil {
		return out
	}
	seen := map[string]map[string]bool{}
	add := func(field, value string) {
		if seen[field] == nil {
			seen[field] = map[string]bool{}
		}
		if !seen[field][value] {
			seen[field][value] = true
			out[field] = append(out[field], value)
		}
	}
	for _, r := range table.Records {
		add("cloud", r.Cloud)
		add("region", r.Region)
		add("edition", r.Edition)
		add("service", r.Service)
		add("serverless", fmt.Sprintf("%t", r.Serverless))
	}
	return out
}
