package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sky-flux/ebisu"
	"github.com/sky-flux/ebisu/logger"
)

// factFile is the YAML document read by score.
type factFile struct {
	Facts []fact `yaml:"facts"`
}

type fact struct {
	ID      string      `yaml:"id"`
	Model   ebisu.Model `yaml:"model"`
	Elapsed float64     `yaml:"elapsed"`
}

type scored struct {
	ID     string  `json:"id" yaml:"id"`
	Recall float64 `json:"recall" yaml:"recall"`
}

func (a *app) scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <facts.yaml|glob>...",
		Short: "Rank facts by predicted recall, weakest first",
		Long: "Rank facts by predicted recall, weakest first. Arguments are YAML fact " +
			"files or doublestar globs such as decks/**/*.yaml.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facts, err := loadFacts(args)
			if err != nil {
				return err
			}

			models := make([]ebisu.Model, len(facts))
			elapsed := make([]float64, len(facts))
			for i, f := range facts {
				if err := f.Model.Validate(); err != nil {
					return fmt.Errorf("fact %q: %w", f.ID, err)
				}
				models[i], elapsed[i] = f.Model, f.Elapsed
			}

			recalls, err := a.engine.PredictBatch(cmd.Context(), models, elapsed, true)
			if err != nil {
				return fmt.Errorf("score: %w", err)
			}

			out := make([]scored, len(facts))
			for i, f := range facts {
				out[i] = scored{ID: f.ID, Recall: recalls[i]}
			}
			sort.SliceStable(out, func(i, j int) bool { return out[i].Recall < out[j].Recall })
			a.log.Debug(cmd.Context(), "scored facts", logger.Int("count", len(out)))

			if err := printResult(cmd, out); err != nil {
				return err
			}
			if dump, _ := cmd.Flags().GetBool("metrics"); dump {
				return a.writeMetrics(cmd)
			}
			return nil
		},
	}
	cmd.Flags().Bool("metrics", false, "Print engine metrics in Prometheus text format afterwards")
	return cmd
}

// loadFacts expands each pattern and concatenates the facts of every match.
// A pattern without glob metacharacters must name an existing file.
func loadFacts(patterns []string) ([]fact, error) {
	var facts []fact
	for _, pattern := range patterns {
		paths, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(paths) == 0 {
			paths = []string{pattern}
		}
		for _, path := range paths {
			ff, err := readFacts(path)
			if err != nil {
				return nil, err
			}
			facts = append(facts, ff...)
		}
	}
	return facts, nil
}

func readFacts(path string) ([]fact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facts: %w", err)
	}
	var ff factFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse facts %s: %w", path, err)
	}
	return ff.Facts, nil
}

// writeMetrics gathers the command's registry and writes it as Prometheus text.
func (a *app) writeMetrics(cmd *cobra.Command) error {
	families, err := a.reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.OutOrStdout(), mf); err != nil {
			return err
		}
	}
	return nil
}
