package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
)

// modelFlags are the risk.Options a single-model command accepts.
type modelFlags struct {
	horizon         int
	target          string
	lowRisk         bool
	coefSet         string
	baseHazard      float64
	treatmentLogHR  float64
	highRiskCountry bool
}

func (f *modelFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.horizon, "horizon", 0, "forecast horizon in years (0 selects the model default)")
	cmd.Flags().StringVar(&f.target, "target", "", "outcome equation for dcs and recode")
	cmd.Flags().BoolVar(&f.lowRisk, "low-risk", true, "use SCORE low-risk region baselines")
	cmd.Flags().StringVar(&f.coefSet, "coef-set", "", "chs coefficient set (CHS or MESA)")
	cmd.Flags().Float64Var(&f.baseHazard, "base-hazard", 0, "chs baseline hazard override")
	cmd.Flags().Float64Var(&f.treatmentLogHR, "treatment-log-hr", 0, "dial treatment log hazard ratio")
	cmd.Flags().BoolVar(&f.highRiskCountry, "high-risk-country", false, "apply the dial high-risk country term")
}

func (f *modelFlags) options() risk.Options {
	lowRisk := f.lowRisk
	return risk.Options{
		Horizon:         f.horizon,
		Target:          strings.ToUpper(f.target),
		LowRisk:         &lowRisk,
		CoefSet:         strings.ToUpper(f.coefSet),
		BaseHazard:      f.baseHazard,
		TreatmentLogHR:  f.treatmentLogHR,
		HighRiskCountry: f.highRiskCountry,
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:          "riskctl",
		Short:        "Score cardiovascular risk models for type 2 diabetes",
		Long:         `riskctl evaluates the published cardiovascular risk equations on clinical records.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitWithOutput(cmd.ErrOrStderr(), logLevel, "text")
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newModelsCmd(),
		newFeaturesCmd(),
		newScoreCmd(),
		newBatchCmd(),
	)
	return root
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the registered models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range risk.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newFeaturesCmd() *cobra.Command {
	var flags modelFlags
	cmd := &cobra.Command{
		Use:   "features <model>",
		Short: "Show the fields a model requires and the terms it derives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := risk.New(args[0], flags.options())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"model":             m.Name(),
				"required_features": m.RequiredFeatures(),
				"feature_keys":      m.FeatureKeys(),
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
