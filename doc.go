// Package ebisu implements Ebisu, a Bayesian model of recall for
// flashcard-style quiz apps.
//
// Each fact carries a Model: a Beta distribution over the probability of
// recalling it Time units after the last review. Recall at any other elapsed
// time follows from raising that probability to the power elapsed/Time, which
// gives a closed-form prediction. After a quiz, the exact posterior is
// moment-matched back to a Beta distribution so the model stays a plain
// three-number value.
//
// An Engine holds the tuned constants and a concurrency-safe log-gamma cache;
// the package-level functions use a shared default engine. The calibrate
// subpackage fits initial models to review histories, and metrics exports
// engine counters to Prometheus.
//
// Basic usage:
//
//	m := ebisu.NewModel(24) // hours
//
//	p := ebisu.PredictRecall(m, 30, true)
//	m, err := ebisu.UpdateRecall(m, true, 30)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h, _ := ebisu.Halflife(m)
package ebisu
