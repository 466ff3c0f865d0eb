package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sky-flux/ebisu"
	"github.com/sky-flux/ebisu/internal/config"
	"github.com/sky-flux/ebisu/logger"
	"github.com/sky-flux/ebisu/metrics"
)

// app carries what every subcommand needs once the root pre-run has loaded
// configuration.
type app struct {
	cfg    *config.Config
	engine *ebisu.Engine
	log    logger.Logger
	reg    *prometheus.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "ebisu",
		Short:        "Bayesian recall model for spaced repetition",
		Long:         "ebisu predicts recall probability, updates memory models after quizzes and fits priors to review histories.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().String("env-file", "", "Load EBISU_ variables from a dotenv file (existing variables win)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides EBISU_LOG_LEVEL)")
	root.PersistentFlags().StringP("output", "o", "json", "Output format: json or yaml")

	root.AddCommand(a.predictCmd())
	root.AddCommand(a.updateCmd())
	root.AddCommand(a.halflifeCmd())
	root.AddCommand(a.scoreCmd())
	root.AddCommand(a.calibrateCmd())
	root.AddCommand(versionCmd())
	return root
}

// setup loads configuration, initializes logging and builds the engine.
func (a *app) setup(cmd *cobra.Command) error {
	if path, _ := cmd.Flags().GetString("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	if err := logger.Init(); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}

	ec := cfg.EngineConfig()
	ec.Logger = logger.Get()
	e, err := ebisu.NewEngine(ec)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	reg := prometheus.NewRegistry()
	if _, err := metrics.Register(reg, e); err != nil {
		return err
	}

	a.cfg, a.engine, a.reg = cfg, e, reg
	a.log = logger.Named("cli")
	return nil
}

// print writes v to the command's output in the selected format.
func printResult(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("output")
	return encode(cmd.OutOrStdout(), format, v)
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// addModelFlags registers --alpha, --beta and --time.
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("alpha", ebisu.DefaultAlpha, "Model alpha")
	cmd.Flags().Float64("beta", ebisu.DefaultBeta, "Model beta")
	cmd.Flags().Float64("time", 0, "Model time (default from config default_halflife)")
}

// modelFromFlags reads the model flags, defaulting time from config.
func (a *app) modelFromFlags(cmd *cobra.Command) (ebisu.Model, error) {
	alpha, _ := cmd.Flags().GetFloat64("alpha")
	beta, _ := cmd.Flags().GetFloat64("beta")
	t, _ := cmd.Flags().GetFloat64("time")
	if t == 0 {
		t = a.cfg.DefaultHalflife
	}
	m := ebisu.NewModelParams(t, alpha, beta)
	if err := m.Validate(); err != nil {
		return ebisu.Model{}, err
	}
	return m, nil
}
