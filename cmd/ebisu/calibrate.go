package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sky-flux/ebisu/calibrate"
	"github.com/sky-flux/ebisu/logger"
)

// recordFile is the YAML document read by calibrate.
type recordFile struct {
	Records []calibrate.Record `yaml:"records"`
}

func (a *app) calibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate <records.yaml>",
		Short: "Fit an initial model to recorded quiz histories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read records: %w", err)
			}
			var rf recordFile
			if err := yaml.Unmarshal(data, &rf); err != nil {
				return fmt.Errorf("parse records %s: %w", args[0], err)
			}

			c, err := calibrate.New(a.engine, calibrate.Config{
				RefineSteps: a.cfg.RefineSteps,
				Workers:     a.cfg.Workers,
				Logger:      logger.Get(),
			})
			if err != nil {
				return err
			}
			res, err := c.Fit(cmd.Context(), calibrate.GroupRecords(rf.Records))
			if err != nil {
				return fmt.Errorf("calibrate: %w", err)
			}
			return printResult(cmd, res)
		},
	}
	return cmd
}
