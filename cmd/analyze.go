package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/analysis"
	"github.com/proppulse/underwrite/internal/extract"
	"github.com/proppulse/underwrite/internal/model"
)

var (
	analyzeAddress      string
	analyzeT12Path      string
	analyzeRentRollPath string
	analyzeCriteriaPath string
	analyzeForce        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Underwrite a single property",
	Long:  "Resolves property data for the address, normalizes financial inputs from optional T12 and rent roll documents, computes the deal metrics, and prints the full analysis as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var docs *model.FinancialDocumentExtract
		if analyzeT12Path != "" {
			t12, err := extract.ReadT12(analyzeT12Path)
			if err != nil {
				return eris.Wrap(err, "read t12")
			}
			docs = t12
		}
		if analyzeRentRollPath != "" {
			rr, err := extract.ReadRentRoll(analyzeRentRollPath)
			if err != nil {
				return eris.Wrap(err, "read rent roll")
			}
			docs = extract.Merge(docs, rr)
		}

		criteria := criteriaFromConfig(cfg.Criteria)
		if analyzeCriteriaPath != "" {
			criteria, err = model.LoadCriteria(analyzeCriteriaPath)
			if err != nil {
				return err
			}
		}

		result, err := env.Analyzer.Analyze(ctx, analysis.Request{
			Address:         analyzeAddress,
			Extract:         docs,
			Criteria:        &criteria,
			ForceEstimation: analyzeForce || cfg.Resolver.ForceEstimation,
		})
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		zap.L().Info("analysis complete",
			zap.String("address", result.PropertyAddress),
			zap.String("status", string(result.Decision.Status)),
			zap.Float64("score", result.Decision.Score),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeAddress, "address", "", "property address (required)")
	analyzeCmd.Flags().StringVar(&analyzeT12Path, "t12", "", "trailing twelve month statement (.xlsx or .csv)")
	analyzeCmd.Flags().StringVar(&analyzeRentRollPath, "rent-roll", "", "rent roll (.xlsx or .csv)")
	analyzeCmd.Flags().StringVar(&analyzeCriteriaPath, "criteria", "", "investment criteria YAML file")
	analyzeCmd.Flags().BoolVar(&analyzeForce, "force-estimation", false, "always produce an estimate, even for unclassifiable addresses")
	_ = analyzeCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(analyzeCmd)
}
