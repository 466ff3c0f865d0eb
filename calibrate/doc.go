// Package calibrate fits an initial ebisu model to recorded quiz histories.
//
// [Calibrator.Fit] replays every history through an [ebisu.Engine] for each
// candidate prior and scores the predictions with binary cross-entropy
// against the observed outcomes. Candidates form a grid of halflives and
// shapes (alpha = beta, so the candidate's Time is its halflife) evaluated in
// parallel; the best one is then refined with [Adam] over the log of both
// parameters, following a [CosineAnnealing] learning rate.
//
// # Usage
//
//	c, err := calibrate.New(ebisu.Default(), calibrate.Config{})
//	res, err := c.Fit(ctx, histories)
//	m := res.Model
//
// # Data Requirements
//
// A history is the ordered list of quizzes for one fact, each with the time
// elapsed since the previous quiz (or since the fact was learned). At least
// one quiz is required.
package calibrate
