// Package usage - Assumption ledger
// Every default, fallback and clamp taken while deriving a quantity is recorded.
package usage

import (
	"fmt"
	"math"

	"dbu-cost/core/types"
)

// Ledger accumulates assumptions and warnings for a single derivation.
// It is call-scoped and not safe for concurrent use.
type Ledger struct {
	assumptions []string
	warnings    []types.WarningCode
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		assumptions: []string{},
		warnings:    []types.WarningCode{},
	}
}

// Assume records a human-readable assumption
func (l *Ledger) Assume(format string, args ...interface{}) {
	l.assumptions = append(l.assumptions, fmt.Sprintf(format, args...))
}

// Warn records a warning code. Repeats are kept; callers dedupe.
func (l *Ledger) Warn(code types.WarningCode) {
	l.warnings = append(l.warnings, code)
}

// NonNegative returns v, or 0 with NEGATIVE_OR_NAN when v is negative or non-finite
func (l *Ledger) NonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		l.Warn(types.WarnNegativeOrNaN)
		return 0
	}
	return v
}

// Assumptions returns a copy of the recorded assumptions in order
func (l *Ledger) Assumptions() []string {
	out := make([]string, len(l.assumptions))
	copy(out, l.assumptions)
	return out
}

// Warnings returns a copy of the recorded warnings in order
func (l *Ledger) Warnings() []types.WarningCode {
	out := make([]types.WarningCode, len(l.warnings))
	copy(out, l.warnings)
	return out
}
