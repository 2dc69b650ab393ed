package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scanSave bool

var scanCmd = &cobra.Command{
	Use:   "scan [property-id...]",
	Short: "Value a portfolio of stored properties concurrently",
	Long:  "Values the given properties, or every stored property when none are named. Failed items are logged and counted without stopping the scan.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.scanPortfolio(ctx, args)
		if err != nil {
			return err
		}

		if scanSave {
			var saved int
			for _, v := range res.Valuations {
				if err := env.saveValuation(ctx, v); err != nil {
					zap.L().Warn("save valuation failed", zap.String("property_id", v.PropertyID), zap.Error(err))
					continue
				}
				saved++
			}
			zap.L().Info("valuations saved", zap.Int("saved", saved))
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "persist each successful valuation snapshot")
	rootCmd.AddCommand(scanCmd)
}
