// Package rounding converts a DBU quantity and unit rate into a rounded cost.
package rounding

import (
	"fmt"
	"math"
	"strings"

	"dbu-cost/core/types"
)

// TieEpsilon is the distance from .5 within which a scaled fraction
// counts as a tie for banker's rounding. Binary floats rarely hit .5
// exactly, so ties are approximate.
const TieEpsilon = 1e-10

// RoundCost returns quantity × rate rounded per opts.
// A nil opts means half-up at scale 2. A non-finite product yields 0.
func RoundCost(quantity, rate float64, opts *types.RoundingOptions) float64 {
	return Round(quantity*rate, opts)
}

// Round rounds value per opts
func Round(value float64, opts *types.RoundingOptions) float64 {
	o := Resolve(opts)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	factor := math.Pow(10, float64(o.Scale))
	scaled := value * factor
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		// beyond float range at this scale; nothing left to round
		return value
	}

	if o.Mode == types.RoundBankers {
		floor := math.Floor(scaled)
		if math.Abs((scaled-floor)-0.5) <= TieEpsilon {
			return nearestEven(floor) / factor
		}
		return math.Round(scaled) / factor
	}
	return math.Round(scaled) / factor
}

// nearestEven picks the even integer of floor and floor+1
func nearestEven(floor float64) float64 {
	if math.Mod(floor, 2) == 0 {
		return floor
	}
	if upper := floor + 1; math.Mod(upper, 2) == 0 {
		return upper
	}
	return floor
}

// Resolve fills defaults: nil → half-up/2, unknown mode → half-up, negative scale → 0
func Resolve(opts *types.RoundingOptions) types.RoundingOptions {
	if opts == nil {
		return types.DefaultRounding()
	}
	o := *opts
	if o.Mode != types.RoundBankers {
		o.Mode = types.RoundHalfUp
	}
	if o.Scale < 0 {
		o.Scale = 0
	}
	return o
}

// ParseMode parses a user-supplied mode name
func ParseMode(s string) (types.RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half-up", "halfup", "half_up":
		return types.RoundHalfUp, nil
	case "bankers", "banker", "half-even", "half_even":
		return types.RoundBankers, nil
	default:
		return "", fmt.Errorf("unknown rounding mode %q (use half-up or bankers)", s)
	}
}
