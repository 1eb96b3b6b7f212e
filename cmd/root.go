package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proppulse/underwrite/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "proppulse",
	Short: "Commercial real estate underwriting assistant",
	Long:  "Resolves property data from verified records, public sources, AI estimation, and heuristics, then underwrites the deal: cap rate, cash-on-cash, DSCR, IRR, NPV, and a scored pass/fail decision with a written narrative.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
