package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var alphaMin float64

var alphaCmd = &cobra.Command{
	Use:   "alpha",
	Short: "Rank stored land parcels by zoning upside over market price",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		opps, err := env.alphaOpportunities(ctx, alphaMin)
		if err != nil {
			return err
		}
		zap.L().Info("alpha ranking complete", zap.Int("opportunities", len(opps)))
		return printJSON(cmd.OutOrStdout(), opps)
	},
}

func init() {
	alphaCmd.Flags().Float64Var(&alphaMin, "min", -1, "minimum alpha percent (default from config)")
	rootCmd.AddCommand(alphaCmd)
}
