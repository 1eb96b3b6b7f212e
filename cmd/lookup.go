package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	lookupAddress string
	lookupForce   bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve property data for an address without underwriting",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Analyzer.QuickLookup(ctx, lookupAddress, lookupForce || cfg.Resolver.ForceEstimation)
		if err != nil {
			return eris.Wrap(err, "lookup")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupAddress, "address", "", "property address (required)")
	lookupCmd.Flags().BoolVar(&lookupForce, "force-estimation", false, "always produce an estimate, even for unclassifiable addresses")
	_ = lookupCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(lookupCmd)
}
