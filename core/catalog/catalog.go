// Package catalog - Pricing table decoding
// Accepts the normalized table format and the older keyed format,
// converting the latter into normalized records.
package catalog

import (
	"math"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"dbu-cost/core/types"
	"dbu-cost/internal/errors"
)

const (
	// LegacySourceURL is the source recorded on converted legacy records
	LegacySourceURL = "https://www.databricks.com/product/azure-databricks-pricing"

	legacyCloud         = "Azure"
	legacyEdition       = "Legacy"
	legacyEffectiveFrom = "1970-01-01"
	legacyVersion       = "legacy"
	legacyVMSize        = "legacy_vm"
	globalRegion        = "global"
)

var (
	regionInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	dashRun       = regexp.MustCompile(`-{2,}`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	vmSizeInvalid = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// Decode parses a pricing document. JSON is accepted as YAML.
// legacy reports whether the document was in the keyed format and converted.
func Decode(data []byte) (table *types.PricingTable, legacy bool, err error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, false, errors.Parsing("pricing document is not valid JSON or YAML", err)
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, false, errors.New(errors.TypeValidation, "pricing table failed basic validation").
			WithIssues("pricing payload is not an object")
	}

	if w := field(doc, "workloads"); w != nil && w.Kind == yaml.MappingNode {
		table, err := convertLegacy(doc)
		return table, true, err
	}

	if issues := shapeIssues(doc); len(issues) > 0 {
		return nil, false, errors.New(errors.TypeValidation, "pricing table failed basic validation").
			WithIssues(issues...)
	}

	table = &types.PricingTable{}
	if err := doc.Decode(table); err != nil {
		return nil, false, errors.Parsing("pricing document has mistyped fields", err)
	}
	return table, false, nil
}

func shapeIssues(doc *yaml.Node) []string {
	var issues []string
	if _, ok := stringValue(field(doc, "version")); !ok {
		issues = append(issues, "missing version")
	}
	if _, ok := stringValue(field(doc, "currency")); !ok {
		issues = append(issues, "missing currency")
	}
	if w := field(doc, "workloads"); w == nil || w.Kind != yaml.SequenceNode || len(w.Content) == 0 {
		issues = append(issues, "workloads must be a non-empty array")
	}
	return issues
}

// convertLegacy expands every workload × instance × region into a record
func convertLegacy(doc *yaml.Node) (*types.PricingTable, error) {
	version, ok := stringValue(field(doc, "version"))
	if !ok {
		version = legacyVersion
	}
	currency, ok := stringValue(field(doc, "currency"))
	if !ok {
		currency = string(types.CurrencyUSD)
	}

	regions := []string{globalRegion}
	if r := field(doc, "regions"); r != nil && r.Kind == yaml.MappingNode {
		regions = keys(r)
	}

	var records []types.PricingRecord
	forEachEntry(field(doc, "workloads"), func(workloadKey string, workload *yaml.Node) {
		label := workloadKey
		if l, ok := stringValue(field(workload, "label")); ok {
			label = l
		}
		forEachEntry(field(workload, "dbu_rates"), func(instanceKey string, rate *yaml.Node) {
			for _, region := range regions {
				records = append(records, types.PricingRecord{
					Cloud:         legacyCloud,
					Region:        SanitizeRegion(region),
					Edition:       legacyEdition,
					Service:       label + " / " + instanceKey,
					VMSize:        sanitizeVMSize(instanceKey),
					Serverless:    false,
					UnitRate:      numberValue(rate),
					Source:        LegacySourceURL,
					EffectiveFrom: legacyEffectiveFrom,
					Notes:         "Converted from legacy pricing.json (" + workloadKey + "/" + instanceKey + ")",
				})
			}
		})
	})

	if len(records) == 0 {
		return nil, errors.New(errors.TypeValidation, "legacy pricing did not contain convertible records").
			WithIssues("Legacy conversion yielded no workloads")
	}

	return &types.PricingTable{
		Version:  version,
		Currency: types.Currency(currency),
		Records:  records,
		Notes:    "Converted from legacy pricing.json format",
	}, nil
}

// SanitizeRegion lower-cases a region key and reduces it to [a-z0-9-].
// An empty result becomes "global".
func SanitizeRegion(region string) string {
	s := strings.ToLower(strings.TrimSpace(region))
	s = regionInvalid.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return globalRegion
	}
	return s
}

func sanitizeVMSize(instance string) string {
	s := whitespaceRun.ReplaceAllString(strings.TrimSpace(instance), "_")
	s = vmSizeInvalid.ReplaceAllString(s, "_")
	if s == "" {
		return legacyVMSize
	}
	return s
}

// field returns the value node for key in a mapping node
func field(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func keys(n *yaml.Node) []string {
	var out []string
	forEachEntry(n, func(k string, _ *yaml.Node) {
		out = append(out, k)
	})
	return out
}

// forEachEntry visits mapping entries in document order
func forEachEntry(n *yaml.Node, fn func(key string, value *yaml.Node)) {
	if n == nil || n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		fn(n.Content[i].Value, n.Content[i+1])
	}
}

// stringValue accepts non-empty string scalars; YAML dates count as strings
func stringValue(n *yaml.Node) (string, bool) {
	if n == nil || n.Kind != yaml.ScalarNode || n.Value == "" {
		return "", false
	}
	switch n.ShortTag() {
	case "!!str", "!!timestamp":
		return n.Value, true
	}
	return "", false
}

// numberValue returns a finite numeric scalar, else 0
func numberValue(n *yaml.Node) float64 {
	if n == nil || n.Kind != yaml.ScalarNode {
		return 0
	}
	if tag := n.ShortTag(); tag != "!!int" && tag != "!!float" {
		return 0
	}
	var v float64
	if err := n.Decode(&v); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
