package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "agenz",
	Short: "Forensic valuation and compliance engine for Marrakech real estate",
	Long:  "Values audited properties, checks them against Moroccan acquisition and urban-planning rules, and ranks land and listings by the gap between price and computed value.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		mode := "cli"
		if cmd.Name() == "serve" {
			mode = "serve"
		}
		return cfg.Validate(mode)
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
