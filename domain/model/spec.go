package model

import (
	"fmt"
	"strings"

	"gopsis/domain/core"
)

// Family defines the count response distribution
type Family string

const (
	Poisson     Family = "poisson"
	NegBinomial Family = "neg_binomial"
)

// Covariate names a predictor from the observation table
type Covariate string

const (
	CovRoach1    Covariate = "roach1"
	CovTreatment Covariate = "treatment"
	CovSenior    Covariate = "senior"
)

// AllCovariates is the full predictor set, in model order.
var AllCovariates = []Covariate{CovRoach1, CovTreatment, CovSenior}

// Prior is a Normal prior on a coefficient
type Prior struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// Default priors: weakly informative normals on the log-rate scale, and an
// exponential prior on the reciprocal dispersion for the NB family.
var (
	DefaultInterceptPrior = Prior{Mean: 0, Scale: 5}
	DefaultSlopePrior     = Prior{Mean: 0, Scale: 2.5}
	DefaultDispersionRate = 1.0
	DispersionParam       = "reciprocal_dispersion"
	InterceptParam        = "(Intercept)"
)

// Spec is an immutable model specification: response family, covariate
// subset, priors, and the log(exposure2) offset which is always included.
// Variants are always constructed fresh, never derived by mutating a
// previous specification in place.
type Spec struct {
	family     Family
	covariates []Covariate
	intercept  Prior
	slope      Prior
}

// NewSpec validates and constructs a specification with default priors.
func NewSpec(family Family, covariates []Covariate) (Spec, error) {
	if family != Poisson && family != NegBinomial {
		return Spec{}, core.NewSpecError(fmt.Sprintf("unknown family %q", family))
	}
	seen := make(map[Covariate]bool, len(covariates))
	for _, c := range covariates {
		if c != CovRoach1 && c != CovTreatment && c != CovSenior {
			return Spec{}, core.NewSpecError(fmt.Sprintf("unknown covariate %q", c))
		}
		if seen[c] {
			return Spec{}, core.NewSpecError(fmt.Sprintf("duplicate covariate %q", c))
		}
		seen[c] = true
	}
	copied := make([]Covariate, len(covariates))
	copy(copied, covariates)
	return Spec{
		family:     family,
		covariates: copied,
		intercept:  DefaultInterceptPrior,
		slope:      DefaultSlopePrior,
	}, nil
}

// MustNewSpec constructs a specification or panics. Test helper.
func MustNewSpec(family Family, covariates []Covariate) Spec {
	s, err := NewSpec(family, covariates)
	if err != nil {
		panic(err)
	}
	return s
}

// FullSpec is the specification with every covariate.
func FullSpec(family Family) Spec {
	return MustNewSpec(family, AllCovariates)
}

// Without derives a reduced specification as a fresh value, dropping one
// covariate. The receiver is unchanged.
func (s Spec) Without(cov Covariate) (Spec, error) {
	kept := make([]Covariate, 0, len(s.covariates))
	found := false
	for _, c := range s.covariates {
		if c == cov {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return Spec{}, core.NewSpecError(fmt.Sprintf("covariate %q not in specification", cov))
	}
	return NewSpec(s.family, kept)
}

// Family returns the response family
func (s Spec) Family() Family { return s.family }

// Covariates returns a copy of the covariate subset
func (s Spec) Covariates() []Covariate {
	out := make([]Covariate, len(s.covariates))
	copy(out, s.covariates)
	return out
}

// InterceptPrior returns the intercept prior
func (s Spec) InterceptPrior() Prior { return s.intercept }

// SlopePrior returns the shared slope prior
func (s Spec) SlopePrior() Prior { return s.slope }

// NumParams returns the parameter count: intercept + slopes, plus the
// dispersion for the NB family.
func (s Spec) NumParams() int {
	n := 1 + len(s.covariates)
	if s.family == NegBinomial {
		n++
	}
	return n
}

// ParamNames returns parameter names in draw-column order.
func (s Spec) ParamNames() []string {
	names := make([]string, 0, s.NumParams())
	names = append(names, InterceptParam)
	for _, c := range s.covariates {
		names = append(names, string(c))
	}
	if s.family == NegBinomial {
		names = append(names, DispersionParam)
	}
	return names
}

// Label returns a short human-readable model label, e.g.
// "neg_binomial(roach1+treatment+senior)".
func (s Spec) Label() string {
	if len(s.covariates) == 0 {
		return fmt.Sprintf("%s(intercept-only)", s.family)
	}
	parts := make([]string, len(s.covariates))
	for i, c := range s.covariates {
		parts[i] = string(c)
	}
	return fmt.Sprintf("%s(%s)", s.family, strings.Join(parts, "+"))
}

// Fingerprint returns a deterministic hash of the specification
func (s Spec) Fingerprint() core.Hash {
	parts := []string{string(s.family)}
	for _, c := range s.covariates {
		parts = append(parts, string(c))
	}
	parts = append(parts,
		fmt.Sprintf("icept=%g,%g", s.intercept.Mean, s.intercept.Scale),
		fmt.Sprintf("slope=%g,%g", s.slope.Mean, s.slope.Scale))
	return core.ComputeFingerprint(parts...)
}
