package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"gopsis/adapters/builtin"
	"gopsis/adapters/excel"
	"gopsis/adapters/rng"
	"gopsis/adapters/sampler"
	"gopsis/adapters/stats/loo"
	"gopsis/adapters/stats/ppc"
	"gopsis/adapters/stats/summary"
	"gopsis/app"
	"gopsis/domain/core"
	domloo "gopsis/domain/loo"
	"gopsis/domain/model"
	"gopsis/internal/config"
	"gopsis/ports"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration loading failed: %v", err)
	}

	var source ports.DatasetSource = builtin.NewSource()
	datasetName := cfg.Data.Name
	if cfg.Data.File != "" {
		source = excel.NewDataReader(cfg.Data.File)
		datasetName = cfg.Data.File
	}

	streams := rng.New()
	workbench := app.NewWorkbench(source, sampler.New(streams), loo.NewEngine(), ppc.NewChecker(streams))

	report, err := workbench.Run(context.Background(), datasetName, ports.FitConfig{
		Chains:      cfg.Sampler.Chains,
		Iterations:  cfg.Sampler.Iterations,
		Warmup:      cfg.Sampler.Warmup,
		Seed:        cfg.Sampler.Seed,
		Parallelism: cfg.Sampler.Parallelism,
	})
	if err != nil {
		switch {
		case core.IsConfigError(err):
			log.Fatalf("Workbench run failed (bad configuration or data): %v", err)
		case core.IsEstimationError(err):
			log.Fatalf("Workbench run failed (estimation): %v", err)
		default:
			log.Fatalf("Workbench run failed: %v", err)
		}
	}

	if err := printReport(report); err != nil {
		log.Fatalf("Report rendering failed: %v", err)
	}
}

func printReport(report *app.RunReport) error {
	fmt.Printf("Run %s on %q (fingerprint %s), %dms\n\n",
		report.RunID, report.Dataset, report.Fingerprint, report.RuntimeMs)

	for _, family := range []model.Family{model.Poisson, model.NegBinomial} {
		rec := report.Record(model.FullSpec(family).Label())
		if rec == nil {
			continue
		}
		fmt.Printf("Posterior %s (%d draws, acceptance %.2f)\n", rec.Label, rec.Fit.NumDraws(), rec.Fit.Acceptance)
		marginals, err := summary.Marginals(rec.Fit)
		if err != nil {
			return err
		}
		for i := range marginals {
			fmt.Printf("  %s  rhat %.3f\n", marginals[i].String(), rec.Fit.Rhat[i])
		}
		pairs, err := summary.Pairs(rec.Fit, rec.Fit.ParamNames)
		if err != nil {
			return err
		}
		for _, j := range pairs {
			fmt.Printf("  corr(%s, %s) = %+.2f\n", j.NameX, j.NameY, j.Correlation)
		}
		fmt.Println()
	}

	fmt.Println("LOO scores")
	fmt.Printf("  %-42s %10s %8s %6s %6s %8s\n", "model", "elpd", "se", ">0.7", ">1.0", "max khat")
	for _, rec := range report.Records {
		s := rec.Score
		fmt.Printf("  %-42s %10.1f %8.1f %6d %6d %8.2f\n",
			s.Label, s.ELPD, s.SE,
			s.CountAbove(domloo.KhatThreshold), s.CountAbove(domloo.KhatVarianceBound), s.MaxKhat())
	}
	fmt.Println()

	fmt.Println("Comparisons (elpd A minus B)")
	for _, cmp := range report.Comparisons {
		flag := ""
		if cmp.HasWarning(domloo.WarnUnreliableComparison) {
			flag = "  [unreliable]"
		}
		fmt.Printf("  %s  vs  %s: %.1f +/- %.1f%s\n", cmp.LabelA, cmp.LabelB, cmp.ELPDDiff, cmp.SE, flag)
	}
	fmt.Println()

	fmt.Println("Posterior predictive checks")
	for _, check := range report.Checks {
		fmt.Printf("  %s\n", check.String())
	}

	if n := report.WarningCount(); n > 0 {
		fmt.Fprintf(os.Stderr, "\n%d warnings; see log output above\n", n)
	}
	return nil
}
