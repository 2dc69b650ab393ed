package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps <listings.json>",
	Short: "Compare scraped portal listings against computed fair prices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read listings")
		}
		var listings []model.ScrapedListing
		if err := json.Unmarshal(data, &listings); err != nil {
			return eris.Wrap(err, "parse listings")
		}

		tables, err := loadTables(cfg.Reference)
		if err != nil {
			return err
		}
		env := &appEnv{Tables: tables}
		out := env.analyzeListings(listings)

		zap.L().Info("listing analysis complete",
			zap.Int("listings", len(listings)),
			zap.Int("analyzed", len(out)),
		)
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	rootCmd.AddCommand(gapsCmd)
}
