package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dbu-cost/core/types"
	"dbu-cost/internal/errors"
)

const validJSON = `{
  "version": "2024-06-01",
  "currency": "USD",
  "workloads": [
    {
      "cloud": "Azure",
      "region": "eastus",
      "edition": "Premium",
      "service": "Jobs Compute",
      "vm_size": "Standard_DS3_v2",
      "serverless": false,
      "dbu_rate": 0.15,
      "source": "https://example.com/pricing",
      "effective_from": "2024-06-01"
    },
    {
      "cloud": "Azure",
      "region": "eastus",
      "edition": "Premium",
      "service": "SQL Compute",
      "serverless": true,
      "dbu_rate": 0.7,
      "source": "https://example.com/pricing",
      "effective_from": "2024-06-01",
      "notes": "serverless SQL"
    }
  ]
}`

const validYAML = `
version: 2024-06-01
currency: EUR
workloads:
  - cloud: AWS
    region: us-east-1
    edition: Standard
    service: All-Purpose Compute
    dbu_rate: 0.4
    source: https://example.com/aws
    effective_from: 2024-06-01
`

const legacyJSON = `{
  "currency": "USD",
  "regions": {"East US": {}, "  West--Europe ": {}},
  "workloads": {
    "jobs": {
      "label": "Jobs Compute",
      "dbu_rates": {"Standard DS3 v2": 0.15, "F8s(v2)": "n/a"}
    },
    "empty": {"label": "Nothing"}
  }
}`

func TestDecodeNormalized(t *testing.T) {
	table, legacy, err := Decode([]byte(validJSON))
	require.NoError(t, err)
	assert.False(t, legacy)
	assert.Equal(t, "2024-06-01", table.Version)
	assert.Equal(t, types.CurrencyUSD, table.Currency)
	require.Len(t, table.Records, 2)
	assert.Equal(t, 0.15, table.Records[0].UnitRate)
	assert.Equal(t, "Standard_DS3_v2", table.Records[0].VMSize)
	assert.True(t, table.Records[1].Serverless)
	assert.Equal(t, "serverless SQL", table.Records[1].Notes)
}

func TestDecodeYAML(t *testing.T) {
	table, legacy, err := Decode([]byte(validYAML))
	require.NoError(t, err)
	assert.False(t, legacy)
	assert.Equal(t, "2024-06-01", table.Version)
	assert.Equal(t, types.CurrencyEUR, table.Currency)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "2024-06-01", table.Records[0].EffectiveFrom)
	assert.NoError(t, Validate(table))
}

func TestDecodeShapeIssues(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		issues []string
	}{
		{"array payload", `[1, 2]`, []string{"pricing payload is not an object"}},
		{"empty document", ``, []string{"pricing payload is not an object"}},
		{"missing everything", `{}`, []string{"missing version", "missing currency", "workloads must be a non-empty array"}},
		{"numeric version", `{"version": 3, "currency": "USD", "workloads": [{}]}`, []string{"missing version"}},
		{"empty workloads", `{"version": "v", "currency": "USD", "workloads": []}`, []string{"workloads must be a non-empty array"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeValidation))
			assert.Equal(t, tt.issues, errors.IssuesOf(err))
		})
	}
}

func TestDecodeSyntaxError(t *testing.T) {
	_, _, err := Decode([]byte(`{"version": `))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeParsing))
}

func TestDecodeLegacy(t *testing.T) {
	table, legacy, err := Decode([]byte(legacyJSON))
	require.NoError(t, err)
	assert.True(t, legacy)
	assert.Equal(t, "legacy", table.Version)
	assert.Equal(t, types.CurrencyUSD, table.Currency)
	require.Len(t, table.Records, 4)

	first := table.Records[0]
	assert.Equal(t, "Azure", first.Cloud)
	assert.Equal(t, "east-us", first.Region)
	assert.Equal(t, "Legacy", first.Edition)
	assert.Equal(t, "Jobs Compute / Standard DS3 v2", first.Service)
	assert.Equal(t, "Standard_DS3_v2", first.VMSize)
	assert.Equal(t, 0.15, first.UnitRate)
	assert.Equal(t, LegacySourceURL, first.Source)
	assert.Equal(t, "1970-01-01", first.EffectiveFrom)
	assert.Equal(t, "Converted from legacy pricing.json (jobs/Standard DS3 v2)", first.Notes)

	assert.Equal(t, "west-europe", table.Records[1].Region)
	assert.Equal(t, "F8s_v2_", table.Records[2].VMSize)
	assert.Equal(t, 0.0, table.Records[2].UnitRate)

	assert.NoError(t, Validate(table))
}

func TestDecodeLegacyWithoutRecords(t *testing.T) {
	_, legacy, err := Decode([]byte(`{"workloads": {"jobs": {"label": "Jobs"}}}`))
	require.Error(t, err)
	assert.True(t, legacy)
	assert.True(t, errors.IsType(err, errors.TypeValidation))
	assert.Equal(t, []string{"Legacy conversion yielded no workloads"}, errors.IssuesOf(err))
}

func TestSanitizeRegion(t *testing.T) {
	tests := map[string]string{
		"eastus":          "eastus",
		"East US 2":       "east-us-2",
		"  --Japan_East ": "japan-east",
		"***":             "global",
		"":                "global",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeRegion(in), "input %q", in)
	}
}

func TestValidate(t *testing.T) {
	base := func() *types.PricingTable {
		table, _, err := Decode([]byte(validJSON))
		require.NoError(t, err)
		return table
	}

	t.Run("valid table", func(t *testing.T) {
		assert.NoError(t, Validate(base()))
	})

	tests := []struct {
		name   string
		mutate func(*types.PricingTable)
		issue  string
	}{
		{"negative rate", func(tb *types.PricingTable) { tb.Records[0].UnitRate = -0.1 }, "/workloads/0/dbu_rate must be >= 0"},
		{"missing service", func(tb *types.PricingTable) { tb.Records[1].Service = "" }, "/workloads/1/service is required"},
		{"invalid date", func(tb *types.PricingTable) { tb.Records[0].EffectiveFrom = "2024-13-01" }, "/workloads/0/effective_from must be a date (YYYY-MM-DD)"},
		{"bad source", func(tb *types.PricingTable) { tb.Records[0].Source = "not a uri" }, "/workloads/0/source must be a URI"},
		{"bad currency", func(tb *types.PricingTable) { tb.Currency = "DOLLARS" }, "/currency must be an ISO-4217 currency code"},
		{"missing version", func(tb *types.PricingTable) { tb.Version = "" }, "/version is required"},
		{"empty records", func(tb *types.PricingTable) { tb.Records = []types.PricingRecord{} }, "/workloads must contain at least 1 item(s)"},
		{
			"duplicate tuple",
			func(tb *types.PricingTable) {
				dup := tb.Records[0]
				dup.UnitRate = 0.12
				tb.Records = append(tb.Records, dup)
			},
			"Duplicate workload combination detected for (Azure||eastus||Premium||Jobs Compute||false) at indexes 0 and 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := base()
			tt.mutate(table)
			err := Validate(table)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeValidation))
			assert.Contains(t, errors.IssuesOf(err), tt.issue)
		})
	}

	t.Run("issues are aggregated", func(t *testing.T) {
		table := base()
		table.Version = ""
		table.Records[0].UnitRate = -1
		table.Records[1].Cloud = ""
		assert.Len(t, errors.IssuesOf(Validate(table)), 3)
	})

	t.Run("nil table", func(t *testing.T) {
		assert.True(t, errors.IsType(Validate(nil), errors.TypeValidation))
	})
}

func newTestLoader(t *testing.T, dir string, opts ...LoaderOption) (*Loader, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	all := append([]LoaderOption{
		WithCacheDir(dir),
		WithClock(func() time.Time { return fixed }),
		WithLogger(zap.New(core)),
	}, opts...)
	return NewLoader(all...), logs
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderStoresLastKnownGood(t *testing.T) {
	cache := t.TempDir()
	loader, _ := newTestLoader(t, cache)

	res, err := loader.Load(writeFile(t, t.TempDir(), "pricing.json", validJSON))
	require.NoError(t, err)
	assert.False(t, res.Metadata.FromCache)
	assert.Empty(t, res.Issues)
	assert.Equal(t, "2024-06-01", res.Metadata.Version)

	assert.FileExists(t, filepath.Join(cache, lkgTableFile))
	assert.FileExists(t, filepath.Join(cache, lkgMetaFile))

	cached, err := loader.LastKnownGood()
	require.NoError(t, err)
	assert.True(t, cached.Metadata.FromCache)
	assert.Equal(t, res.Table, cached.Table)
	assert.True(t, cached.Metadata.SavedAt.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)))
}

func TestLoaderFallsBackToCache(t *testing.T) {
	cache := t.TempDir()
	src := t.TempDir()
	loader, logs := newTestLoader(t, cache)

	_, err := loader.Load(writeFile(t, src, "good.json", validJSON))
	require.NoError(t, err)

	broken := `{"version": "2024-07-01", "currency": "USD", "workloads": [{"cloud": "Azure"}]}`
	res, err := loader.Load(writeFile(t, src, "broken.json", broken))
	require.NoError(t, err)
	assert.True(t, res.Metadata.FromCache)
	assert.Equal(t, "2024-06-01", res.Table.Version)
	assert.Contains(t, res.Issues, "/workloads/0/region is required")
	assert.Equal(t, 1, logs.FilterMessage("serving last known good pricing table").Len())

	res, err = loader.Load(filepath.Join(src, "missing.json"))
	require.NoError(t, err)
	assert.True(t, res.Metadata.FromCache)
	require.Len(t, res.Issues, 1)
}

func TestLoaderWithoutFallback(t *testing.T) {
	cache := t.TempDir()
	loader, _ := newTestLoader(t, cache, WithFallback(false))

	_, err := loader.Load(writeFile(t, t.TempDir(), "good.json", validJSON))
	require.NoError(t, err)

	_, err = loader.LoadBytes([]byte(`{"version": "x"}`))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeValidation))

	_, err = loader.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeLoad))
	assert.Len(t, errors.IssuesOf(err), 1)
}

func TestLoaderEmptyCache(t *testing.T) {
	loader, _ := newTestLoader(t, t.TempDir())
	_, err := loader.LoadBytes([]byte(`not: [valid`))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeParsing))

	_, err = loader.LastKnownGood()
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestLoaderLegacyConversion(t *testing.T) {
	loader, logs := newTestLoader(t, "")
	res, err := loader.LoadBytes([]byte(legacyJSON))
	require.NoError(t, err)
	assert.True(t, res.Metadata.UsedLegacyConversion)
	assert.Len(t, res.Table.Records, 4)
	assert.Equal(t, 1, logs.FilterMessage("legacy pricing format detected, converted to normalized schema").Len())
}
