package dataset

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"gopsis/domain/core"
)

// Roaches is the name of the bundled pest-control reference dataset:
// 264 apartment buildings, 160 treated and 104 control. Responses are
// heavily zero-inflated and overdispersed, which is the scenario the
// Poisson-vs-negative-binomial comparison in this repo is built around.
const Roaches = "roaches"

const (
	roachesRows    = 264
	roachesTreated = 160
	roachesSeed    = 0x9e3779b9

	// Generating process for the bundled table. Dispersion 0.27 gives the
	// zero inflation observed in the original survey.
	genIntercept  = 2.98
	genRoach1     = 0.70 // per 100 pre-treatment roaches
	genTreatment  = -0.52
	genSenior     = -0.33
	genDispersion = 0.27
)

// Load returns the named built-in observation table with the roach1
// column rescaled to hundreds. Each call regenerates the table from a
// fixed seed, so repeated loads return identical, already-rescaled
// values; the rescale can never be applied twice.
func Load(name string) (*Table, error) {
	if name != Roaches {
		return nil, core.NewDatasetNotFoundError(name)
	}
	rows := generateRoaches()
	for i := range rows {
		rows[i].Roach1 /= 100
	}
	return NewTable(core.DatasetKey(name), rows)
}

// generateRoaches builds the reference table deterministically. Counts are
// drawn from a gamma-Poisson mixture, i.e. negative binomial responses.
func generateRoaches() []Observation {
	src := rand.NewSource(roachesSeed)
	rng := rand.New(src)

	logNormal := distuv.Normal{Mu: 3.0, Sigma: 1.3, Src: src}
	exposure := distuv.Uniform{Min: 0.4, Max: 1.6, Src: src}

	// Treatment assignment: exactly 160 treated, shuffled deterministically.
	treated := make([]int, roachesRows)
	for _, idx := range rng.Perm(roachesRows)[:roachesTreated] {
		treated[idx] = 1
	}

	rows := make([]Observation, roachesRows)
	for i := range rows {
		roach1 := 0.0
		if rng.Float64() >= 0.30 {
			roach1 = math.Round(math.Exp(logNormal.Rand()))
		}
		senior := 0
		if rng.Float64() < 0.30 {
			senior = 1
		}
		exp2 := exposure.Rand()

		eta := genIntercept +
			genRoach1*(roach1/100) +
			genTreatment*float64(treated[i]) +
			genSenior*float64(senior) +
			math.Log(exp2)
		mean := math.Exp(eta)

		rows[i] = Observation{
			Y:         sampleNegBinom(mean, genDispersion, src),
			Roach1:    roach1,
			Treatment: treated[i],
			Senior:    senior,
			Exposure2: exp2,
		}
	}
	return rows
}

// sampleNegBinom draws NB2(mean, dispersion) counts via the gamma-Poisson
// mixture: lambda ~ Gamma(phi, rate phi/mean), y ~ Poisson(lambda).
func sampleNegBinom(mean, dispersion float64, src rand.Source) int {
	g := distuv.Gamma{Alpha: dispersion, Beta: dispersion / mean, Src: src}
	lam := g.Rand()
	if lam <= 0 || math.IsNaN(lam) {
		return 0
	}
	p := distuv.Poisson{Lambda: lam, Src: src}
	return int(p.Rand())
}
