package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sky-flux/ebisu"
)

type prediction struct {
	Model   ebisu.Model `json:"model" yaml:"model"`
	Elapsed float64     `json:"elapsed" yaml:"elapsed"`
	Recall  float64     `json:"recall" yaml:"recall"`
	LogP    float64     `json:"log_recall" yaml:"log_recall"`
}

func (a *app) predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict recall probability after an elapsed time",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.modelFromFlags(cmd)
			if err != nil {
				return err
			}
			elapsed, _ := cmd.Flags().GetFloat64("elapsed")
			if !(elapsed >= 0) {
				return fmt.Errorf("--elapsed %g must not be negative", elapsed)
			}
			logp := a.engine.PredictRecall(m, elapsed, false)
			return printResult(cmd, prediction{
				Model:   m,
				Elapsed: elapsed,
				Recall:  a.engine.PredictRecall(m, elapsed, true),
				LogP:    logp,
			})
		},
	}
	addModelFlags(cmd)
	cmd.Flags().Float64("elapsed", 0, "Time since the last review")
	_ = cmd.MarkFlagRequired("elapsed")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a model after a quiz",
		Long: "Update a model after a quiz. Use --result for a single pass/fail " +
			"trial or --successes with --total for a binomial quiz.",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.modelFromFlags(cmd)
			if err != nil {
				return err
			}
			q, err := quizFromFlags(cmd)
			if err != nil {
				return err
			}
			tback, _ := cmd.Flags().GetFloat64("tback")
			noRebalance, _ := cmd.Flags().GetBool("no-rebalance")

			post, err := a.engine.UpdateRecallWith(m, q, ebisu.UpdateOptions{Tback: tback, DisableRebalance: noRebalance})
			if err != nil {
				return fmt.Errorf("update %v: %w", m, err)
			}
			return printResult(cmd, post)
		},
	}
	addModelFlags(cmd)
	cmd.Flags().Float64("elapsed", 0, "Time since the last review")
	cmd.Flags().String("result", "", "Quiz result: pass or fail")
	cmd.Flags().Int("successes", 0, "Successful trials (binomial quiz)")
	cmd.Flags().Int("total", 0, "Total trials (binomial quiz)")
	cmd.Flags().Float64("tback", 0, "Anchor the posterior at this time (default model time)")
	cmd.Flags().Bool("no-rebalance", false, "Keep the posterior anchored even if skewed")
	_ = cmd.MarkFlagRequired("elapsed")
	cmd.MarkFlagsMutuallyExclusive("result", "successes")
	cmd.MarkFlagsMutuallyExclusive("result", "total")
	cmd.MarkFlagsRequiredTogether("successes", "total")
	cmd.MarkFlagsOneRequired("result", "total")
	return cmd
}

// quizFromFlags builds a Bernoulli quiz from --result or a binomial one from
// --successes/--total.
func quizFromFlags(cmd *cobra.Command) (ebisu.Quiz, error) {
	elapsed, _ := cmd.Flags().GetFloat64("elapsed")
	if cmd.Flags().Changed("result") {
		result, _ := cmd.Flags().GetString("result")
		switch result {
		case "pass":
			return ebisu.Passed(elapsed), nil
		case "fail":
			return ebisu.Failed(elapsed), nil
		default:
			return ebisu.Quiz{}, fmt.Errorf("--result %q must be pass or fail", result)
		}
	}
	successes, _ := cmd.Flags().GetInt("successes")
	total, _ := cmd.Flags().GetInt("total")
	return ebisu.Binomial(successes, total, elapsed), nil
}

func (a *app) halflifeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "halflife",
		Short: "Find when a model's recall decays to a percentile",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.modelFromFlags(cmd)
			if err != nil {
				return err
			}
			p, _ := cmd.Flags().GetFloat64("percentile")
			coarse, _ := cmd.Flags().GetBool("coarse")
			tol, _ := cmd.Flags().GetFloat64("tolerance")

			t, err := a.engine.PercentileDecay(m, ebisu.DecayOptions{Percentile: p, Coarse: coarse, Tolerance: tol})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%g\n", t)
			return err
		},
	}
	addModelFlags(cmd)
	cmd.Flags().Float64("percentile", ebisu.DefaultPercentile, "Target recall probability in (0, 1)")
	cmd.Flags().Bool("coarse", false, "Order-of-magnitude estimate only")
	cmd.Flags().Float64("tolerance", 0, "Log-time tolerance (default from config)")
	return cmd
}
