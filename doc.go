// Package pmpo builds probabilistic multi-parameter optimisation (pMPO)
// models from labelled descriptor data and scores entities with them.
//
// A pMPO model is a weighted sum of per-descriptor desirability functions.
// Each selected descriptor contributes a Gaussian fitted to the good
// population, optionally multiplied by a sigmoid that switches on at the
// cutoff between the good and bad populations. Descriptors are kept when a
// Welch t-test separates the two populations, and pairs correlated above an
// r² threshold are thinned greedily in p-value order.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/pmpo/dataset"
//	    "github.com/YuminosukeSato/pmpo/pmpo"
//	)
//
//	func main() {
//	    ds, err := dataset.ReadCSVFile("compounds.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    b, err := pmpo.NewBuilder(ds, "Active", "CNS pMPO",
//	        pmpo.WithPValueCutoff(0.01),
//	        pmpo.WithR2Cutoff(0.53),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    m, err := b.Model()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println(m)
//	    fmt.Println(m.Score(map[string]float64{"TPSA": 63.6, "MW": 180.16}))
//	}
//
// # Packages
//
//   - pmpo: Builder, Model, batch scoring and evaluation
//   - label: good/bad label normalisation
//   - stats: per-descriptor statistics and the Welch t-test
//   - selection: correlation matrix, uncorrelated descriptor picking and weights
//   - function: weighted Gaussian and sigmoidal desirability functions
//   - dataset: column-oriented data loaded from CSV or SQL
//   - metrics: ROC AUC and regression errors
//   - diagnostics: curve plots of a fitted model
//   - server: HTTP scoring server with Prometheus metrics
//   - config: YAML configuration for the pmpo command
//   - core/model: model documents and gob/JSON persistence
//   - core/parallel: chunked parallel helpers
//
// The pmpo command in cmd/pmpo wraps these packages:
//
//	pmpo build --csv compounds.csv --label Active --out cns.json --plots plots/
//	pmpo score --model cns.json --input candidates.csv --id Name
//	pmpo serve --model cns.json --addr :8080
package pmpo
