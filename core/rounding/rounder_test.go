package rounding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbu-cost/core/types"
)

func opts(mode types.RoundingMode, scale int) *types.RoundingOptions {
	return &types.RoundingOptions{Mode: mode, Scale: scale}
}

func TestRoundCostDefaults(t *testing.T) {
	assert.Equal(t, 150.0, RoundCost(1000, 0.15, nil))
	assert.Equal(t, 180.0, RoundCost(1200, 0.15, nil))
	assert.Equal(t, 0.0, RoundCost(0, 0.15, nil))
}

func TestRoundCostTies(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		mode  types.RoundingMode
		scale int
		want  float64
	}{
		{"bankers 12.5 to even below", 12.5, types.RoundBankers, 0, 12},
		{"bankers 13.5 to even above", 13.5, types.RoundBankers, 0, 14},
		{"half-up 12.5 away from zero", 12.5, types.RoundHalfUp, 0, 13},
		{"half-up 13.5 away from zero", 13.5, types.RoundHalfUp, 0, 14},
		{"bankers non-tie rounds normally", 12.6, types.RoundBankers, 0, 13},
		{"bankers non-tie below", 12.4, types.RoundBankers, 0, 12},
		{"bankers at scale 1", 0.25, types.RoundBankers, 1, 0.2},
		{"bankers at scale 1 odd", 0.35, types.RoundBankers, 1, 0.4},
		{"half-up at scale 1", 0.25, types.RoundHalfUp, 1, 0.3},
		{"negative half-up away from zero", -2.5, types.RoundHalfUp, 0, -3},
		{"negative bankers", -2.5, types.RoundBankers, 0, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundCost(tt.value, 1, opts(tt.mode, tt.scale))
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestRoundCostNonFinite(t *testing.T) {
	assert.Equal(t, 0.0, RoundCost(math.Inf(1), 1, nil))
	assert.Equal(t, 0.0, RoundCost(math.NaN(), 1, nil))
	assert.Equal(t, 0.0, RoundCost(math.MaxFloat64, 10, nil))
}

func TestRoundCostIdempotent(t *testing.T) {
	o := opts(types.RoundBankers, 3)
	first := RoundCost(123.4567, 0.37, o)
	second := RoundCost(123.4567, 0.37, o)
	require.Equal(t, first, second)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, types.DefaultRounding(), Resolve(nil))
	assert.Equal(t, types.RoundingOptions{Mode: types.RoundHalfUp, Scale: 0}, Resolve(&types.RoundingOptions{Mode: "weird", Scale: -4}))
	assert.Equal(t, types.RoundingOptions{Mode: types.RoundBankers, Scale: 0}, Resolve(&types.RoundingOptions{Mode: types.RoundBankers}))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Bankers")
	require.NoError(t, err)
	assert.Equal(t, types.RoundBankers, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, types.RoundHalfUp, m)

	_, err = ParseMode("ceil")
	assert.Error(t, err)
}
