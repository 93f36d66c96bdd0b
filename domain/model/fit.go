package model

import (
	"fmt"

	"gopsis/domain/core"
)

// WarningCode represents structured sampler reliability warnings. These are
// diagnostics, never hard failures: a non-converged fit still returns a
// result carrying its warnings.
type WarningCode string

const (
	WarnHighRhat      WarningCode = "HIGH_RHAT"      // split-Rhat above threshold
	WarnLowAcceptance WarningCode = "LOW_ACCEPTANCE" // proposal acceptance collapsed
	WarnNonFinite     WarningCode = "NON_FINITE"     // non-finite posterior density encountered
	WarnShortChain    WarningCode = "SHORT_CHAIN"    // too few kept iterations for diagnostics
)

// Warning pairs a code with human-readable context
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// Fit holds the posterior sample set for one specification: an ordered
// sequence of parameter draws (chains concatenated, chain-major) plus the
// per-observation log-likelihood of each draw, which the cross-validation
// stage consumes. Fits are immutable once constructed; downstream stages
// read them only.
type Fit struct {
	ID           core.FitID     `json:"id"`
	Spec         Spec           `json:"-"`
	ParamNames   []string       `json:"param_names"`
	Draws        [][]float64    `json:"-"` // [draw][param]
	LogLik       [][]float64    `json:"-"` // [draw][observation]
	Chains       int            `json:"chains"`
	KeptPerChain int            `json:"kept_per_chain"`
	Seed         uint64         `json:"seed"`
	Acceptance   float64        `json:"acceptance"`
	Rhat         []float64      `json:"rhat"` // per parameter
	Warnings     []Warning      `json:"warnings,omitempty"`
	CreatedAt    core.Timestamp `json:"created_at"`
}

// NumDraws returns the total retained draw count, chains x kept iterations
func (f *Fit) NumDraws() int { return len(f.Draws) }

// NumObs returns the observation count the fit was computed against
func (f *Fit) NumObs() int {
	if len(f.LogLik) == 0 {
		return 0
	}
	return len(f.LogLik[0])
}

// ParamIndex returns the draw-column index for a parameter name
func (f *Fit) ParamIndex(name string) (int, error) {
	for i, n := range f.ParamNames {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("parameter %q not in fit %s", name, f.Spec.Label())
}

// ParamColumn returns a copy of one parameter's draws
func (f *Fit) ParamColumn(name string) ([]float64, error) {
	idx, err := f.ParamIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(f.Draws))
	for i, d := range f.Draws {
		out[i] = d[idx]
	}
	return out, nil
}

// HasWarning reports whether the fit carries a warning with the given code
func (f *Fit) HasWarning(code WarningCode) bool {
	for _, w := range f.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// AddWarning attaches a structured warning
func (f *Fit) AddWarning(code WarningCode, format string, args ...interface{}) {
	f.Warnings = append(f.Warnings, Warning{Code: code, Message: fmt.Sprintf(format, args...)})
}
