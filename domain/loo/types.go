// Package loo holds the leave-one-out cross-validation result types:
// expected log predictive density scores with their Pareto-k reliability
// diagnostics, and paired model comparisons.
package loo

import (
	"gopsis/domain/core"
)

// Pareto-k reliability thresholds. Above KhatThreshold the importance
// sampling approximation for that observation is untrustworthy; above
// KhatVarianceBound the estimator's variance may be infinite.
const (
	KhatThreshold     = 0.7
	KhatVarianceBound = 1.0
)

// WarningCode represents structured reliability warnings on LOO results
type WarningCode string

const (
	WarnHighParetoK          WarningCode = "HIGH_PARETO_K"         // some khat > 0.7
	WarnVeryHighParetoK      WarningCode = "VERY_HIGH_PARETO_K"    // some khat > 1.0
	WarnUnreliableComparison WarningCode = "UNRELIABLE_COMPARISON" // an input score had khat failures
	WarnFitDiagnostics       WarningCode = "FIT_DIAGNOSTICS"       // the underlying fit carried sampler warnings
)

// Warning pairs a code with human-readable context
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// PointwiseDiagnostic is the per-observation LOO result: the elpd
// contribution and the fitted Pareto tail-shape khat.
type PointwiseDiagnostic struct {
	ELPD float64 `json:"elpd"`
	Khat float64 `json:"khat"`
}

// Score is the PSIS-LOO estimate for one fitted model. Every observation is
// reported; unreliable ones are flagged via khat, never dropped.
type Score struct {
	FitID     core.FitID            `json:"fit_id"`
	Label     string                `json:"label"`
	ELPD      float64               `json:"elpd"`
	SE        float64               `json:"se"`
	Pointwise []PointwiseDiagnostic `json:"pointwise"`
	Warnings  []Warning             `json:"warnings,omitempty"`
}

// NumObs returns the observation count the score covers
func (s *Score) NumObs() int { return len(s.Pointwise) }

// CountAbove returns how many observations have khat above the threshold
func (s *Score) CountAbove(threshold float64) int {
	n := 0
	for _, p := range s.Pointwise {
		if p.Khat > threshold {
			n++
		}
	}
	return n
}

// MaxKhat returns the largest pointwise khat
func (s *Score) MaxKhat() float64 {
	max := 0.0
	for i, p := range s.Pointwise {
		if i == 0 || p.Khat > max {
			max = p.Khat
		}
	}
	return max
}

// HasWarning reports whether the score carries a warning with the given code
func (s *Score) HasWarning(code WarningCode) bool {
	for _, w := range s.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Comparison is the paired difference between two LOO scores: elpd of A
// minus elpd of B, with a standard error that accounts for per-observation
// correlation. Sign interpretation is left to the caller.
type Comparison struct {
	LabelA   string    `json:"label_a"`
	LabelB   string    `json:"label_b"`
	ELPDDiff float64   `json:"elpd_diff"`
	SE       float64   `json:"se"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// HasWarning reports whether the comparison carries a warning with the given code
func (c *Comparison) HasWarning(code WarningCode) bool {
	for _, w := range c.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
